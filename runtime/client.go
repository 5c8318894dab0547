// Package runtime wraps the Docker daemon API behind the narrow set of
// calls the slave needs: a liveness probe, image acquisition, and container
// lifecycle operations.
package runtime

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// ContainerSpec describes the container to create for a workload.
type ContainerSpec struct {
	Image        string
	Env          []string
	PortBindings map[string]string // container port/proto -> host port
	NetworkMode  string
	Privileged   bool
	Binds        []string
}

// Client is the Docker-backed runtime.
type Client struct {
	cli *client.Client
}

// NewClient connects to the Docker daemon at the given transport endpoint
// (see ResolveTransport) with API version negotiation.
func NewClient(host string) (*Client, error) {
	cli, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &Client{cli: cli}, nil
}

// Close releases the underlying client connection.
func (c *Client) Close() error {
	return c.cli.Close()
}

// Ping verifies the daemon is reachable via a cheap read-only image listing.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.cli.ImageList(ctx, image.ListOptions{}); err != nil {
		return fmt.Errorf("container runtime not reachable: %w", err)
	}
	return nil
}

// CreateImage acquires name:tag on the host. With an empty source the image
// is pulled from the default registry; otherwise it is imported from the
// alternate fetch location. The returned stream carries the daemon's
// progress messages and must be drained and closed by the caller.
func (c *Client) CreateImage(ctx context.Context, name, tag, source string) (io.ReadCloser, error) {
	ref := ImageRef(name, tag)

	if source == "" {
		reader, err := c.cli.ImagePull(ctx, ref, image.PullOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to pull image %s: %w", ref, err)
		}
		return reader, nil
	}

	reader, err := c.cli.ImageImport(ctx, image.ImportSource{SourceName: source}, name, image.ImportOptions{Tag: tag})
	if err != nil {
		return nil, fmt.Errorf("failed to import image %s from %s: %w", ref, source, err)
	}
	return reader, nil
}

// CreateContainer creates a container from the spec and returns the id the
// daemon assigned to it.
func (c *Client) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for portProto, hostPort := range spec.PortBindings {
		port := nat.Port(portProto)
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{HostPort: hostPort}}
	}

	config := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		ExposedPorts: exposed,
	}
	hostConfig := &container.HostConfig{
		NetworkMode:  container.NetworkMode(spec.NetworkMode),
		PortBindings: bindings,
		Privileged:   spec.Privileged,
		Binds:        spec.Binds,
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container from %s: %w", spec.Image, err)
	}
	return resp.ID, nil
}

// StartContainer starts a created container.
func (c *Client) StartContainer(ctx context.Context, containerID string) error {
	if err := c.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container %s: %w", containerID, err)
	}
	return nil
}

// StopContainer stops a running container with the daemon's default timeout.
func (c *Client) StopContainer(ctx context.Context, containerID string) error {
	if err := c.cli.ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", containerID, err)
	}
	return nil
}

// RemoveImage force-deletes an image reference.
func (c *Client) RemoveImage(ctx context.Context, ref string) error {
	if _, err := c.cli.ImageRemove(ctx, ref, image.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove image %s: %w", ref, err)
	}
	return nil
}

// ImageRef builds the name:tag reference for an image. An empty tag means
// "latest".
func ImageRef(name, tag string) string {
	if tag == "" {
		tag = "latest"
	}
	return name + ":" + tag
}
