package audit

import (
	"encoding/json"
	"time"
)

// EventOutcome represents the result of a journaled operation
type EventOutcome string

const (
	EventOutcomeSuccess EventOutcome = "SUCCESS"
	EventOutcomeFailure EventOutcome = "FAILURE"
)

// Severity represents the importance level of a journal entry
type Severity string

const (
	SeverityDebug    Severity = "DEBUG"
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Event is one finished engine operation
type Event struct {
	ID           int64                  `json:"id"`
	Timestamp    time.Time              `json:"timestamp"`
	Network      string                 `json:"network"`
	Node         string                 `json:"node,omitempty"`
	Operation    string                 `json:"operation"`
	Outcome      EventOutcome           `json:"outcome"`
	Severity     Severity               `json:"severity"`
	Duration     time.Duration          `json:"duration"`
	ErrorType    string                 `json:"errorType,omitempty"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// Config holds the configuration for the audit service
type Config struct {
	// AsyncBufferSize is the size of the buffer for async logging
	AsyncBufferSize int
	// WorkerCount is the number of workers for async logging
	WorkerCount int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		AsyncBufferSize: 1000,
		WorkerCount:     1,
	}
}

// NewEvent creates a new event with default values
func NewEvent(network, operation string) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Network:   network,
		Operation: operation,
		Outcome:   EventOutcomeSuccess,
		Severity:  SeverityInfo,
		Details:   make(map[string]interface{}),
	}
}

// WithNode sets the node the operation targeted
func (e Event) WithNode(node string) Event {
	e.Node = node
	return e
}

// WithDetails adds details to the event
func (e Event) WithDetails(details map[string]interface{}) Event {
	e.Details = details
	return e
}

// WithSeverity sets the severity of the event
func (e Event) WithSeverity(severity Severity) Event {
	e.Severity = severity
	return e
}

// WithError marks the event failed
func (e Event) WithError(errType string, err error) Event {
	e.Outcome = EventOutcomeFailure
	e.Severity = SeverityWarning
	e.ErrorType = errType
	e.ErrorMessage = err.Error()
	return e
}

// ToJSON converts the event to a JSON string
func (e Event) ToJSON() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
