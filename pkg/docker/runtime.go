package docker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
)

// ContainerSpec describes a container to create
type ContainerSpec struct {
	Name    string
	Image   string
	Cmd     []string
	Network string
	// Ports maps container ports to host ports (tcp, bound on 0.0.0.0)
	Ports  map[int]int
	Labels map[string]string
}

// ContainerInfo is the subset of an inspected container the engine uses
type ContainerInfo struct {
	ID      string
	Name    string
	Image   string
	Running bool
	// Ports maps container ports to the host ports actually bound
	Ports map[int]int
}

// Runtime is the container runtime used to provision regtest networks.
// Failures are returned as RUNTIME_ERROR app errors; a missing container
// is NOT_FOUND.
type Runtime interface {
	Ping(ctx context.Context) error
	CreateNetwork(ctx context.Context, name string) (string, error)
	RemoveNetwork(ctx context.Context, name string) error
	CreateContainer(ctx context.Context, spec ContainerSpec) (string, error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string, grace time.Duration) error
	RemoveContainer(ctx context.Context, id string, force bool) error
	InspectContainer(ctx context.Context, id string) (*ContainerInfo, error)
	// Exec runs cmd in the container and returns its stdout. A non-zero
	// exit is reported as an *ExecError wrapped in a RUNTIME_ERROR.
	Exec(ctx context.Context, id string, cmd []string) (string, error)
	ContainerLogs(ctx context.Context, id string, tail int) (string, error)
	ImageExists(ctx context.Context, ref string) (bool, error)
	PullImage(ctx context.Context, ref string) error
	EnsureImage(ctx context.Context, ref string) error
	Close() error
}

// ExecError is a command that ran but exited non-zero
type ExecError struct {
	Cmd      []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExecError) Error() string {
	out := strings.TrimSpace(e.Stderr)
	if out == "" {
		out = strings.TrimSpace(e.Stdout)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Cmd[0], e.ExitCode, out)
}

// Output returns stderr, or stdout when stderr is empty
func (e *ExecError) Output() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(e.Stdout)
}

// NewExecError wraps a non-zero exit in a RUNTIME_ERROR
func NewExecError(containerID string, cmd []string, code int, stdout, stderr string) error {
	execErr := &ExecError{Cmd: cmd, ExitCode: code, Stdout: stdout, Stderr: stderr}
	return errors.NewRuntimeError("command failed in container", execErr, map[string]interface{}{
		"container": containerID,
		"command":   strings.Join(cmd, " "),
		"exitCode":  code,
	})
}

// ValidateImageRef checks that ref is a well-formed image reference
func ValidateImageRef(ref string) error {
	if _, err := name.ParseReference(ref); err != nil {
		return errors.NewValidationError("invalid image reference", map[string]interface{}{
			"image": ref,
			"error": err.Error(),
		})
	}
	return nil
}
