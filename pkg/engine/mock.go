package engine

import (
	"context"
	"sync"

	"github.com/devobox/devobox/pkg/errdomain"
)

// MockRuntime implements Runtime for the end-to-end scenario suite in
// spec.md §8. Each operation can be customized by setting the matching
// function field; unset fields fall back to a small in-memory model driven
// by Containers/Healths so scenario tests don't need to stub every call.
// Grounded on the teacher's MockRuntime in pkg/commands/runtime_mock.go.
type MockRuntime struct {
	CreateFunc func(ctx context.Context, spec ContainerSpec) error
	StartFunc  func(ctx context.Context, name string) error
	StopFunc   func(ctx context.Context, name string) error
	RemoveFunc func(ctx context.Context, name string) error
	StateFunc  func(ctx context.Context, name string) (ContainerState, error)
	HealthFunc func(ctx context.Context, name string) (ContainerHealth, error)
	ExecShellFunc   func(ctx context.Context, name, workdir string, command ...string) (int, error)
	ExecCaptureFunc func(ctx context.Context, name, workdir string, command ...string) (string, error)
	BuildFunc  func(ctx context.Context, tag, containerfile, buildContext string) error

	PruneContainersFunc func(ctx context.Context) error
	PruneImagesFunc     func(ctx context.Context) error
	PruneVolumesFunc    func(ctx context.Context) error
	PruneBuildCacheFunc func(ctx context.Context) error
	NukeSystemFunc      func(ctx context.Context) error

	// Containers is the in-memory fallback model: name -> state. Health
	// is read from Healths, or a HealthSequence if set, defaulting to
	// NotApplicable.
	Containers map[string]ContainerState
	Healths    map[string]ContainerHealth
	// HealthSequence, if set for a name, is consumed one value per Health
	// call and the last value repeats once exhausted — used to script the
	// Starting-Starting-Healthy traces in S1/S2.
	HealthSequence map[string][]ContainerHealth
	healthCursor   map[string]int

	Calls []MockCall

	// mu guards every field above: Up's start-and-wait protocol issues
	// Start concurrently across services (golang.org/x/sync/errgroup), so
	// the fallback model and call log must be safe for concurrent use.
	mu sync.Mutex
}

// MockCall records one invocation for assertions.
type MockCall struct {
	Method string
	Args   []interface{}
}

func (m *MockRuntime) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// ensureModel must be called with m.mu held.
func (m *MockRuntime) ensureModel() {
	if m.Containers == nil {
		m.Containers = map[string]ContainerState{}
	}
	if m.Healths == nil {
		m.Healths = map[string]ContainerHealth{}
	}
	if m.healthCursor == nil {
		m.healthCursor = map[string]int{}
	}
}

func (m *MockRuntime) Create(ctx context.Context, spec ContainerSpec) error {
	m.recordCall("Create", spec.Name)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, spec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureModel()
	if _, exists := m.Containers[spec.Name]; exists {
		return errdomain.NewEngine(KindAlreadyExists, "container already exists: "+spec.Name, "")
	}
	m.Containers[spec.Name] = Stopped
	return nil
}

func (m *MockRuntime) Start(ctx context.Context, name string) error {
	m.recordCall("Start", name)
	if m.StartFunc != nil {
		return m.StartFunc(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureModel()
	m.Containers[name] = Running
	return nil
}

func (m *MockRuntime) Stop(ctx context.Context, name string) error {
	m.recordCall("Stop", name)
	if m.StopFunc != nil {
		return m.StopFunc(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureModel()
	if _, ok := m.Containers[name]; !ok {
		return nil
	}
	m.Containers[name] = Stopped
	return nil
}

func (m *MockRuntime) Remove(ctx context.Context, name string) error {
	m.recordCall("Remove", name)
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureModel()
	if _, ok := m.Containers[name]; !ok {
		return errdomain.NewEngine(KindNotFound, "no such container: "+name, "")
	}
	delete(m.Containers, name)
	return nil
}

func (m *MockRuntime) State(ctx context.Context, name string) (ContainerState, error) {
	m.recordCall("State", name)
	if m.StateFunc != nil {
		return m.StateFunc(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureModel()
	if s, ok := m.Containers[name]; ok {
		return s, nil
	}
	return NotCreated, nil
}

func (m *MockRuntime) Health(ctx context.Context, name string) (ContainerHealth, error) {
	m.recordCall("Health", name)
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureModel()
	if seq, ok := m.HealthSequence[name]; ok && len(seq) > 0 {
		idx := m.healthCursor[name]
		if idx >= len(seq) {
			idx = len(seq) - 1
		}
		h := seq[idx]
		if m.healthCursor[name] < len(seq)-1 {
			m.healthCursor[name]++
		}
		return h, nil
	}
	if h, ok := m.Healths[name]; ok {
		return h, nil
	}
	return NotApplicable, nil
}

func (m *MockRuntime) ExecShell(ctx context.Context, name, workdir string, command ...string) (int, error) {
	m.recordCall("ExecShell", name, workdir, command)
	if m.ExecShellFunc != nil {
		return m.ExecShellFunc(ctx, name, workdir, command...)
	}
	return 0, nil
}

// ExecCapture's fallback model returns "" with no error; tests exercising a
// real listing must set ExecCaptureFunc.
func (m *MockRuntime) ExecCapture(ctx context.Context, name, workdir string, command ...string) (string, error) {
	m.recordCall("ExecCapture", name, workdir, command)
	if m.ExecCaptureFunc != nil {
		return m.ExecCaptureFunc(ctx, name, workdir, command...)
	}
	return "", nil
}

func (m *MockRuntime) Build(ctx context.Context, tag, containerfile, buildContext string) error {
	m.recordCall("Build", tag, containerfile, buildContext)
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, tag, containerfile, buildContext)
	}
	return nil
}

func (m *MockRuntime) PruneContainers(ctx context.Context) error {
	m.recordCall("PruneContainers")
	if m.PruneContainersFunc != nil {
		return m.PruneContainersFunc(ctx)
	}
	return nil
}

func (m *MockRuntime) PruneImages(ctx context.Context) error {
	m.recordCall("PruneImages")
	if m.PruneImagesFunc != nil {
		return m.PruneImagesFunc(ctx)
	}
	return nil
}

func (m *MockRuntime) PruneVolumes(ctx context.Context) error {
	m.recordCall("PruneVolumes")
	if m.PruneVolumesFunc != nil {
		return m.PruneVolumesFunc(ctx)
	}
	return nil
}

func (m *MockRuntime) PruneBuildCache(ctx context.Context) error {
	m.recordCall("PruneBuildCache")
	if m.PruneBuildCacheFunc != nil {
		return m.PruneBuildCacheFunc(ctx)
	}
	return nil
}

func (m *MockRuntime) NukeSystem(ctx context.Context) error {
	m.recordCall("NukeSystem")
	if m.NukeSystemFunc != nil {
		return m.NukeSystemFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Containers = map[string]ContainerState{}
	return nil
}

func (m *MockRuntime) Close() error { m.recordCall("Close"); return nil }
func (m *MockRuntime) Mode() string { return "mock" }

// CallCount returns how many times method was called.
func (m *MockRuntime) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// CallsOf returns the argument lists of every call to method, in order.
func (m *MockRuntime) CallsOf(method string) [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]interface{}
	for _, c := range m.Calls {
		if c.Method == method {
			out = append(out, c.Args)
		}
	}
	return out
}

var _ Runtime = (*MockRuntime)(nil)
