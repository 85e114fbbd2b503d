package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	pkgerrors "github.com/pkg/errors"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/logger"
)

// Label set on every resource created by this tool
const ManagedLabel = "io.regtest-tui.managed"

// Client implements Runtime on top of the Docker Engine API
type Client struct {
	cli    *client.Client
	logger *logger.Logger
}

var _ Runtime = (*Client)(nil)

// NewClient connects to the Docker daemon. An empty socket uses the
// environment (DOCKER_HOST) or the platform default.
func NewClient(socket string, logger *logger.Logger) (*Client, error) {
	opts := []client.Opt{
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	}
	if socket != "" {
		host := socket
		if !strings.Contains(host, "://") {
			host = "unix://" + host
		}
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.NewRuntimeError("failed to create docker client", err, map[string]interface{}{
			"socket": socket,
		})
	}

	return &Client{
		cli:    cli,
		logger: logger.Named("docker"),
	}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.cli.Ping(ctx); err != nil {
		return errors.NewRuntimeError("docker daemon is not reachable", err, nil)
	}
	return nil
}

// CreateNetwork creates a bridge network, or returns the ID of the existing
// network with the same name.
func (c *Client) CreateNetwork(ctx context.Context, name string) (string, error) {
	existing, err := c.cli.NetworkInspect(ctx, name, network.InspectOptions{})
	if err == nil {
		c.logger.Debug("Docker network already exists", "network", name, "id", existing.ID)
		return existing.ID, nil
	}
	if !cerrdefs.IsNotFound(err) {
		return "", errors.NewRuntimeError("failed to inspect network", err, map[string]interface{}{"network": name})
	}

	resp, err := c.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
		Labels: map[string]string{ManagedLabel: "true"},
	})
	if err != nil {
		return "", errors.NewRuntimeError("failed to create network", err, map[string]interface{}{"network": name})
	}
	c.logger.Info("Created docker network", "network", name, "id", resp.ID)
	return resp.ID, nil
}

func (c *Client) RemoveNetwork(ctx context.Context, name string) error {
	if err := c.cli.NetworkRemove(ctx, name); err != nil {
		if cerrdefs.IsNotFound(err) {
			return nil
		}
		return errors.NewRuntimeError("failed to remove network", err, map[string]interface{}{"network": name})
	}
	c.logger.Info("Removed docker network", "network", name)
	return nil
}

// CreateContainer creates a container, replacing any stale container with
// the same name.
func (c *Client) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	if err := c.cli.ContainerRemove(ctx, spec.Name, container.RemoveOptions{Force: true}); err != nil {
		if !cerrdefs.IsNotFound(err) {
			return "", errors.NewRuntimeError("failed to remove existing container", err, map[string]interface{}{
				"container": spec.Name,
			})
		}
	} else {
		c.logger.Warn("Removed stale container", "container", spec.Name)
	}

	portBindings := nat.PortMap{}
	exposed := nat.PortSet{}
	for containerPort, hostPort := range spec.Ports {
		p := nat.Port(fmt.Sprintf("%d/tcp", containerPort))
		exposed[p] = struct{}{}
		portBindings[p] = []nat.PortBinding{
			{HostIP: "0.0.0.0", HostPort: strconv.Itoa(hostPort)},
		}
	}

	labels := map[string]string{ManagedLabel: "true"}
	for k, v := range spec.Labels {
		labels[k] = v
	}

	config := &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Cmd,
		ExposedPorts: exposed,
		Labels:       labels,
	}
	hostConfig := &container.HostConfig{
		PortBindings: portBindings,
	}
	var networking *network.NetworkingConfig
	if spec.Network != "" {
		hostConfig.NetworkMode = container.NetworkMode(spec.Network)
		networking = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {},
			},
		}
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, networking, nil, spec.Name)
	if err != nil {
		return "", errors.NewRuntimeError("failed to create container", err, map[string]interface{}{
			"container": spec.Name,
			"image":     spec.Image,
		})
	}
	for _, w := range resp.Warnings {
		c.logger.Warn("Docker warning on container create", "container", spec.Name, "warning", w)
	}
	c.logger.Debug("Created container", "container", spec.Name, "id", resp.ID)
	return resp.ID, nil
}

func (c *Client) StartContainer(ctx context.Context, id string) error {
	if err := c.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return c.containerError("failed to start container", id, err)
	}
	c.logger.Debug("Started container", "id", id)
	return nil
}

func (c *Client) StopContainer(ctx context.Context, id string, grace time.Duration) error {
	timeout := int(grace.Seconds())
	if err := c.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		return c.containerError("failed to stop container", id, err)
	}
	c.logger.Debug("Stopped container", "id", id)
	return nil
}

func (c *Client) RemoveContainer(ctx context.Context, id string, force bool) error {
	if err := c.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: force}); err != nil {
		return c.containerError("failed to remove container", id, err)
	}
	c.logger.Debug("Removed container", "id", id)
	return nil
}

func (c *Client) InspectContainer(ctx context.Context, id string) (*ContainerInfo, error) {
	resp, err := c.cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, c.containerError("failed to inspect container", id, err)
	}

	info := &ContainerInfo{
		ID:    resp.ID,
		Name:  strings.TrimPrefix(resp.Name, "/"),
		Ports: map[int]int{},
	}
	if resp.Config != nil {
		info.Image = resp.Config.Image
	}
	if resp.State != nil {
		info.Running = resp.State.Running
	}
	if resp.NetworkSettings != nil {
		for port, bindings := range resp.NetworkSettings.Ports {
			for _, b := range bindings {
				hostPort, err := strconv.Atoi(b.HostPort)
				if err != nil {
					continue
				}
				info.Ports[port.Int()] = hostPort
				break
			}
		}
	}
	return info, nil
}

func (c *Client) Exec(ctx context.Context, id string, cmd []string) (string, error) {
	created, err := c.cli.ContainerExecCreate(ctx, id, container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          cmd,
	})
	if err != nil {
		return "", c.containerError("failed to create exec", id, err)
	}

	attached, err := c.cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", c.containerError("failed to attach exec", id, err)
	}
	defer attached.Close()

	var stdout, stderr bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdout, &stderr, attached.Reader)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return "", errors.NewTimeoutError("command did not finish in time", ctx.Err(), map[string]interface{}{
			"container": id,
			"command":   strings.Join(cmd, " "),
		})
	case err := <-done:
		if err != nil {
			return "", errors.NewRuntimeError("failed to read exec output", pkgerrors.Wrapf(err, "exec %s", cmd[0]), map[string]interface{}{
				"container": id,
			})
		}
	}

	inspect, err := c.cli.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return "", c.containerError("failed to inspect exec", id, err)
	}
	c.logger.Debug("Exec finished", "container", id, "command", cmd[0], "exitCode", inspect.ExitCode)
	if inspect.ExitCode != 0 {
		return "", NewExecError(id, cmd, inspect.ExitCode, stdout.String(), stderr.String())
	}
	return stdout.String(), nil
}

func (c *Client) ContainerLogs(ctx context.Context, id string, tail int) (string, error) {
	opts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: true,
		Tail:       "all",
	}
	if tail > 0 {
		opts.Tail = strconv.Itoa(tail)
	}

	rc, err := c.cli.ContainerLogs(ctx, id, opts)
	if err != nil {
		return "", c.containerError("failed to read container logs", id, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		return "", errors.NewRuntimeError("failed to read container logs", pkgerrors.Wrap(err, "demux log stream"), map[string]interface{}{
			"container": id,
		})
	}
	return buf.String(), nil
}

func (c *Client) ImageExists(ctx context.Context, ref string) (bool, error) {
	_, _, err := c.cli.ImageInspectWithRaw(ctx, ref)
	if err == nil {
		return true, nil
	}
	if cerrdefs.IsNotFound(err) {
		return false, nil
	}
	return false, errors.NewRuntimeError("failed to inspect image", err, map[string]interface{}{"image": ref})
}

func (c *Client) PullImage(ctx context.Context, ref string) error {
	c.logger.Info("Pulling image", "image", ref)
	rc, err := c.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return errors.NewRuntimeError("failed to pull image", err, map[string]interface{}{"image": ref})
	}
	defer rc.Close()

	if _, err := io.Copy(io.Discard, rc); err != nil {
		return errors.NewRuntimeError("failed to pull image", pkgerrors.Wrapf(err, "read pull progress for %s", ref), map[string]interface{}{"image": ref})
	}
	return nil
}

// EnsureImage pulls ref if it is not present locally
func (c *Client) EnsureImage(ctx context.Context, ref string) error {
	exists, err := c.ImageExists(ctx, ref)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.PullImage(ctx, ref)
}

func (c *Client) containerError(msg, id string, err error) error {
	details := map[string]interface{}{"container": id}
	if cerrdefs.IsNotFound(err) {
		return &errors.AppError{Type: errors.NotFoundError, Message: "container not found", Details: details, Err: err}
	}
	return errors.NewRuntimeError(msg, err, details)
}
