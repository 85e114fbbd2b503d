// Package dockertest provides an in-memory docker.Runtime whose containers
// answer bitcoin-cli and lncli commands from a simulated regtest chain.
package dockertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/docker"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
)

// Container is the fake's record of a created container
type Container struct {
	ID      string
	Spec    docker.ContainerSpec
	Running bool
}

// Call is one recorded runtime invocation
type Call struct {
	Op     string
	Target string
}

// Runtime is a goroutine-safe fake container runtime
type Runtime struct {
	mu         sync.Mutex
	networks   map[string]string
	containers map[string]*Container
	images     map[string]bool
	calls      []Call
	failures   map[string]error
	nextID     int
	pingErr    error

	Chain *Chain
}

var _ docker.Runtime = (*Runtime)(nil)

// New returns an empty runtime with a fresh chain
func New() *Runtime {
	return &Runtime{
		networks:   map[string]string{},
		containers: map[string]*Container{},
		images:     map[string]bool{},
		failures:   map[string]error{},
		Chain:      NewChain(),
	}
}

// FailOn makes op fail with err. target narrows the failure to a container
// name, network name or image; an empty target matches any.
func (r *Runtime) FailOn(op, target string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op+":"+target] = err
}

// ClearFailures removes every injected failure
func (r *Runtime) ClearFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = map[string]error{}
}

// SetPingError makes Ping fail
func (r *Runtime) SetPingError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pingErr = err
}

// AddImage marks an image as present locally
func (r *Runtime) AddImage(ref string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[ref] = true
}

// CallCount returns how many times op was invoked
func (r *Runtime) CallCount(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Calls returns a copy of the call log
func (r *Runtime) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Containers returns a snapshot of every container keyed by name
func (r *Runtime) Containers() map[string]Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Container, len(r.containers))
	for _, c := range r.containers {
		out[c.Spec.Name] = *c
	}
	return out
}

// RunningCount returns the number of running containers
func (r *Runtime) RunningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.containers {
		if c.Running {
			n++
		}
	}
	return n
}

// HasNetwork reports whether a docker network exists
func (r *Runtime) HasNetwork(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.networks[name]
	return ok
}

func (r *Runtime) record(op, target string) error {
	r.calls = append(r.calls, Call{Op: op, Target: target})
	if err, ok := r.failures[op+":"+target]; ok {
		return err
	}
	if err, ok := r.failures[op+":"]; ok {
		return err
	}
	return nil
}

func (r *Runtime) lookup(id string) (*Container, error) {
	if c, ok := r.containers[id]; ok {
		return c, nil
	}
	for _, c := range r.containers {
		if c.Spec.Name == id {
			return c, nil
		}
	}
	return nil, &errors.AppError{
		Type:    errors.NotFoundError,
		Message: "container not found",
		Details: map[string]interface{}{"container": id},
	}
}

func (r *Runtime) Ping(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Ping", ""); err != nil {
		return err
	}
	return r.pingErr
}

func (r *Runtime) CreateNetwork(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateNetwork", name); err != nil {
		return "", err
	}
	if id, ok := r.networks[name]; ok {
		return id, nil
	}
	r.nextID++
	id := fmt.Sprintf("net%04d", r.nextID)
	r.networks[name] = id
	return id, nil
}

func (r *Runtime) RemoveNetwork(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("RemoveNetwork", name); err != nil {
		return err
	}
	delete(r.networks, name)
	return nil
}

func (r *Runtime) CreateContainer(ctx context.Context, spec docker.ContainerSpec) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateContainer", spec.Name); err != nil {
		return "", err
	}
	if spec.Network != "" {
		if _, ok := r.networks[spec.Network]; !ok {
			return "", errors.NewRuntimeError("network not found", nil, map[string]interface{}{"network": spec.Network})
		}
	}
	for id, c := range r.containers {
		if c.Spec.Name == spec.Name {
			delete(r.containers, id)
			r.Chain.shutdown(c.Spec.Name)
		}
	}
	r.nextID++
	id := fmt.Sprintf("c%04d%s", r.nextID, strings.Repeat("0", 8))
	r.containers[id] = &Container{ID: id, Spec: spec}
	return id, nil
}

func (r *Runtime) StartContainer(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.lookup(id)
	if err != nil {
		r.record("StartContainer", id)
		return err
	}
	if err := r.record("StartContainer", c.Spec.Name); err != nil {
		return err
	}
	c.Running = true
	r.Chain.boot(c.Spec.Name, c.Spec.Cmd)
	return nil
}

func (r *Runtime) StopContainer(ctx context.Context, id string, grace time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.lookup(id)
	if err != nil {
		r.record("StopContainer", id)
		return err
	}
	if err := r.record("StopContainer", c.Spec.Name); err != nil {
		return err
	}
	c.Running = false
	return nil
}

func (r *Runtime) RemoveContainer(ctx context.Context, id string, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.lookup(id)
	if err != nil {
		r.record("RemoveContainer", id)
		return err
	}
	if err := r.record("RemoveContainer", c.Spec.Name); err != nil {
		return err
	}
	if c.Running && !force {
		return errors.NewRuntimeError("cannot remove a running container", nil, map[string]interface{}{"container": id})
	}
	delete(r.containers, c.ID)
	r.Chain.shutdown(c.Spec.Name)
	return nil
}

func (r *Runtime) InspectContainer(ctx context.Context, id string) (*docker.ContainerInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := r.record("InspectContainer", c.Spec.Name); err != nil {
		return nil, err
	}
	ports := map[int]int{}
	for k, v := range c.Spec.Ports {
		ports[k] = v
	}
	return &docker.ContainerInfo{
		ID:      c.ID,
		Name:    c.Spec.Name,
		Image:   c.Spec.Image,
		Running: c.Running,
		Ports:   ports,
	}, nil
}

func (r *Runtime) Exec(ctx context.Context, id string, cmd []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewTimeoutError("command did not finish in time", err, nil)
	}
	r.mu.Lock()
	c, err := r.lookup(id)
	if err != nil {
		r.mu.Unlock()
		return "", err
	}
	name, running := c.Spec.Name, c.Running
	recErr := r.record("Exec", name)
	r.mu.Unlock()

	if recErr != nil {
		return "", recErr
	}
	if !running {
		return "", errors.NewRuntimeError("container is not running", nil, map[string]interface{}{"container": id})
	}

	stdout, stderr, code := r.Chain.exec(name, cmd)
	if code != 0 {
		return "", docker.NewExecError(id, cmd, code, stdout, stderr)
	}
	return stdout, nil
}

func (r *Runtime) ContainerLogs(ctx context.Context, id string, tail int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.lookup(id)
	if err != nil {
		return "", err
	}
	if err := r.record("ContainerLogs", c.Spec.Name); err != nil {
		return "", err
	}
	lines := []string{
		fmt.Sprintf("starting %s", strings.Join(c.Spec.Cmd, " ")),
		fmt.Sprintf("%s ready", c.Spec.Name),
	}
	if tail > 0 && tail < len(lines) {
		lines = lines[len(lines)-tail:]
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func (r *Runtime) ImageExists(ctx context.Context, ref string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("ImageExists", ref); err != nil {
		return false, err
	}
	return r.images[ref], nil
}

func (r *Runtime) PullImage(ctx context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("PullImage", ref); err != nil {
		return err
	}
	r.images[ref] = true
	return nil
}

func (r *Runtime) EnsureImage(ctx context.Context, ref string) error {
	exists, err := r.ImageExists(ctx, ref)
	if err != nil || exists {
		return err
	}
	return r.PullImage(ctx, ref)
}

func (r *Runtime) Close() error {
	return nil
}
