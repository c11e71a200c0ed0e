package looper

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

type loop struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager starts, stops and tracks named loops.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	loops    map[string]*loop
	wg       sync.WaitGroup
	Reporter StatusReporter
}

// NewManager creates a new Manager.
// The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		loops:    make(map[string]*loop),
		Reporter: reporter,
	}
}

// Start runs l in its own goroutine until ctx is done or Stop is called.
// Starting a second loop with the same name is an error.
func (m *Manager) Start(ctx context.Context, l Looper) error {
	runner, err := NewRunner(l, m.report)
	if err != nil {
		return err
	}
	return m.start(ctx, l.Name(), runner)
}

func (m *Manager) start(ctx context.Context, name string, runner *Runner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.loops[name]; exists {
		return fmt.Errorf("loop '%s' is already running", name)
	}

	ctx, cancel := context.WithCancel(ctx)
	lp := &loop{name: name, cancel: cancel, done: make(chan struct{})}
	m.loops[name] = lp

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(lp.done)
		runner.Run(ctx)

		m.mu.Lock()
		if m.loops[name] == lp {
			delete(m.loops, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels a loop by name and waits for its current run to finish.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	lp, ok := m.loops[name]
	if ok {
		delete(m.loops, name)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("loop '%s' not running", name)
	}

	lp.cancel()
	<-lp.done
	return nil
}

// Wait blocks until every started loop has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// List returns the names of active loops, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.loops))
	for k := range m.loops {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Status returns a human-readable summary of active loops.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No loops are running."
	}
	return fmt.Sprintf("Running loops: %s", strings.Join(active, ", "))
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
