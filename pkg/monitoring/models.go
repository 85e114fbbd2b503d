package monitoring

import (
	"time"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
)

// NodeStatus represents the current status of a node
type NodeStatus string

const (
	// NodeStatusUp indicates the node answers RPC
	NodeStatusUp NodeStatus = "up"
	// NodeStatusDown indicates the node is not responding
	NodeStatusDown NodeStatus = "down"
)

// Node is a running daemon being monitored
type Node struct {
	Network string
	Name    string
	Kind    types.NodeKind
	// Status is empty until the first check
	Status           NodeStatus
	LastChecked      time.Time
	LastStatusChange time.Time
	// FailureCount tracks consecutive failures
	FailureCount int
}

// NodeCheck is the latest check result of a node
type NodeCheck struct {
	Network      string         `json:"network"`
	Node         string         `json:"node"`
	Kind         types.NodeKind `json:"kind"`
	Status       NodeStatus     `json:"status"`
	ResponseTime time.Duration  `json:"responseTime"`
	Error        string         `json:"error,omitempty"`
	FailureCount int            `json:"failureCount,omitempty"`
	Since        time.Time      `json:"since"`
	Timestamp    time.Time      `json:"timestamp"`
}
