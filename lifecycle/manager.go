// Package lifecycle executes workload start and stop commands against the
// container runtime and maintains the registry of running workloads.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/automatica-core/automatica.core.slave/metrics"
	"github.com/automatica-core/automatica.core.slave/registry"
	"github.com/automatica-core/automatica.core.slave/runtime"
)

// servicePort is the fixed port every workload container binds, matching the
// channel port the controller and workloads communicate on.
const servicePort = "1883/tcp"
const servicePortHost = "1883"

// Runtime is the subset of runtime.Client the manager needs. Narrow on
// purpose so tests can substitute a recording fake.
type Runtime interface {
	CreateImage(ctx context.Context, name, tag, source string) (io.ReadCloser, error)
	CreateContainer(ctx context.Context, spec runtime.ContainerSpec) (string, error)
	StartContainer(ctx context.Context, containerID string) error
	StopContainer(ctx context.Context, containerID string) error
	RemoveImage(ctx context.Context, ref string) error
}

// Request identifies a workload and the image that realizes it.
type Request struct {
	ID          string
	ImageName   string
	Tag         string
	ImageSource string
}

// Config carries the host and identity values injected into every workload
// container.
type Config struct {
	Master      string
	SlaveID     string
	SlaveSecret string
	GOOS        string // host platform, decides privileged mode and binds
}

// Manager maps workload commands onto idempotent runtime operations.
//
// A single mutex serializes Start, Stop and StopAll against each other. The
// system this replaces guarded only concurrent starts, which let a
// reconnect-triggered teardown race an in-flight start; here the whole
// lifecycle shares one critical section so the registry can never observe a
// half-applied operation.
type Manager struct {
	mu       sync.Mutex
	reg      *registry.Registry
	rt       Runtime
	cfg      Config
	progress func(io.Reader)
}

// NewManager creates a Manager with an empty registry.
func NewManager(rt Runtime, cfg Config) *Manager {
	return &Manager{
		reg:      registry.New(),
		rt:       rt,
		cfg:      cfg,
		progress: runtime.ReportPull,
	}
}

// Registry exposes the managed registry for liveness reporting and tests.
func (m *Manager) Registry() *registry.Registry {
	return m.reg
}

// Start realizes a workload as a running container. Starting a workload that
// is already registered is a no-op.
func (m *Manager) Start(ctx context.Context, req Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reg.Contains(req.ID) {
		log.Printf("Warning: workload %s is already running, ignoring start", req.ID)
		metrics.CommandErrors.Inc()
		return nil
	}

	ref := runtime.ImageRef(req.ImageName, req.Tag)
	log.Printf("Starting workload %s (image %s)", req.ID, ref)

	stream, err := m.rt.CreateImage(ctx, req.ImageName, req.Tag, req.ImageSource)
	if err != nil {
		metrics.CommandErrors.Inc()
		return fmt.Errorf("start %s: %w", req.ID, err)
	}
	m.progress(stream)
	if err := stream.Close(); err != nil {
		log.Printf("Warning: failed to close image stream for %s: %v", ref, err)
	}

	containerID, err := m.rt.CreateContainer(ctx, m.containerSpec(ref, req.ID))
	if err != nil {
		metrics.CommandErrors.Inc()
		return fmt.Errorf("start %s: %w", req.ID, err)
	}

	// The mapping is committed once the runtime has accepted the create
	// call. A start failure below leaves the entry pointing at a created
	// but never-started container; teardown's stop loop cleans it up.
	m.reg.Put(req.ID, containerID)
	metrics.RunningContainers.Set(float64(m.reg.Len()))

	if err := m.rt.StartContainer(ctx, containerID); err != nil {
		metrics.CommandErrors.Inc()
		return fmt.Errorf("start %s: %w", req.ID, err)
	}

	metrics.ContainersStarted.Inc()
	log.Printf("Workload %s running in container %s", req.ID, shortID(containerID))
	return nil
}

// Stop stops the container realizing a workload and forgets it. The image is
// deleted best-effort; a delete failure never keeps the workload registered.
func (m *Manager) Stop(ctx context.Context, req Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	containerID, ok := m.reg.Get(req.ID)
	if !ok {
		log.Printf("Error: image for workload %s not found, ignoring stop", req.ID)
		metrics.CommandErrors.Inc()
		return nil
	}

	log.Printf("Stopping workload %s (container %s)", req.ID, shortID(containerID))

	if err := m.rt.StopContainer(ctx, containerID); err != nil {
		metrics.CommandErrors.Inc()
		return fmt.Errorf("stop %s: %w", req.ID, err)
	}

	ref := runtime.ImageRef(req.ImageName, req.Tag)
	if err := m.rt.RemoveImage(ctx, ref); err != nil {
		log.Printf("Warning: failed to delete image %s: %v", ref, err)
	}

	m.reg.Remove(req.ID)
	metrics.RunningContainers.Set(float64(m.reg.Len()))
	metrics.ContainersStopped.Inc()
	return nil
}

// StopAll stops every registered container and clears the registry. Used by
// connection teardown and process shutdown. Individual stop failures are
// logged and do not abort the sweep.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.reg.Snapshot()
	if len(entries) > 0 {
		log.Printf("Stopping all %d registered workloads", len(entries))
	}

	for workloadID, containerID := range entries {
		if err := m.rt.StopContainer(ctx, containerID); err != nil {
			log.Printf("Error stopping container %s for workload %s: %v", shortID(containerID), workloadID, err)
			continue
		}
		metrics.ContainersStopped.Inc()
	}

	m.reg.Clear()
	metrics.RunningContainers.Set(0)
}

// containerSpec builds the container configuration for a workload: the fixed
// service port mapped to the same host port, host networking, and the
// identity environment. Unix-like hosts additionally run privileged with
// /dev and /tmp bind-mounted from the host.
func (m *Manager) containerSpec(imageRef, workloadID string) runtime.ContainerSpec {
	spec := runtime.ContainerSpec{
		Image: imageRef,
		Env: []string{
			"MASTER=" + m.cfg.Master,
			"SLAVE_ID=" + m.cfg.SlaveID,
			"SLAVE_SECRET=" + m.cfg.SlaveSecret,
			"WORKLOAD_ID=" + workloadID,
		},
		PortBindings: map[string]string{servicePort: servicePortHost},
		NetworkMode:  "host",
	}

	if runtime.IsUnixLike(m.cfg.GOOS) {
		spec.Privileged = true
		spec.Binds = []string{"/dev:/dev", "/tmp:/tmp"}
	}
	return spec
}

func shortID(containerID string) string {
	if len(containerID) > 12 {
		return containerID[:12]
	}
	return containerID
}
