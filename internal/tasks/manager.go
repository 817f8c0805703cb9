package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudpane/backend/internal/events"
)

// ErrTaskNotFound marks operations on an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// ErrNotRunning marks a cancel of a task that already finished.
var ErrNotRunning = errors.New("task is not running")

// Config tunes the simulation. Step is the progress added per tick.
type Config struct {
	Tick          time.Duration
	Step          float64
	MaxConcurrent int
}

func (c Config) withDefaults() Config {
	if c.Tick <= 0 {
		c.Tick = 200 * time.Millisecond
	}
	if c.Step <= 0 {
		c.Step = 10
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 3
	}
	return c
}

// Manager owns all background tasks. Concurrency is bounded by a
// semaphore; tasks past the limit stay pending until a slot frees up.
type Manager struct {
	mu      sync.Mutex
	tasks   map[string]*Task
	order   []string
	cancels map[string]context.CancelFunc

	cfg Config
	sem chan struct{}
	bus *events.Bus
	wg  sync.WaitGroup
	now func() time.Time
}

// NewManager creates a manager. The bus may be nil, in which case progress
// is tracked but not broadcast.
func NewManager(cfg Config, bus *events.Bus) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		tasks:   make(map[string]*Task),
		cancels: make(map[string]context.CancelFunc),
		cfg:     cfg,
		sem:     make(chan struct{}, cfg.MaxConcurrent),
		bus:     bus,
		now:     time.Now,
	}
}

// WithClock overrides the clock for deterministic tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Start launches a simulated task. onDone runs exactly once when the task
// reaches 100%, before the task is marked completed; returning an error
// fails the task instead. onDone may be nil.
//
// The task outlives the caller's context: HTTP handlers hand us a
// request-scoped ctx that dies when the response is written, so only
// Cancel and Shutdown stop a task once started.
func (m *Manager) Start(ctx context.Context, typ Type, name string, onDone func() error) (*Task, error) {
	if name == "" {
		return nil, fmt.Errorf("task name must not be empty")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	task := newTask(typ, name, m.now())

	m.mu.Lock()
	m.tasks[task.ID] = task
	m.order = append(m.order, task.ID)
	m.cancels[task.ID] = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(runCtx, task.ID, onDone)

	snapshot := *task
	return &snapshot, nil
}

func (m *Manager) run(ctx context.Context, taskID string, onDone func() error) {
	defer m.wg.Done()

	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		m.finish(taskID, StatusCanceled, nil)
		return
	}

	m.transition(taskID, StatusRunning)

	ticker := time.NewTicker(m.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.finish(taskID, StatusCanceled, nil)
			return
		case <-ticker.C:
			if m.advance(taskID) {
				var err error
				if onDone != nil {
					err = onDone()
				}
				if err != nil {
					m.finish(taskID, StatusFailed, err)
				} else {
					m.finish(taskID, StatusCompleted, nil)
				}
				return
			}
		}
	}
}

// advance bumps progress by one step and reports whether the task is done.
func (m *Manager) advance(taskID string) bool {
	m.mu.Lock()
	task, ok := m.tasks[taskID]
	if !ok || task.Status.Terminal() {
		m.mu.Unlock()
		return false
	}
	task.Progress += m.cfg.Step
	if task.Progress > 100 {
		task.Progress = 100
	}
	done := task.Progress >= 100
	evt := task.progressEvent()
	m.mu.Unlock()

	m.publish(evt)
	return done
}

func (m *Manager) transition(taskID string, status Status) {
	m.mu.Lock()
	task, ok := m.tasks[taskID]
	if !ok || task.Status.Terminal() {
		m.mu.Unlock()
		return
	}
	task.Status = status
	evt := task.progressEvent()
	m.mu.Unlock()

	m.publish(evt)
}

func (m *Manager) finish(taskID string, status Status, cause error) {
	m.mu.Lock()
	task, ok := m.tasks[taskID]
	if !ok || task.Status.Terminal() {
		m.mu.Unlock()
		return
	}
	task.Status = status
	if cause != nil {
		task.Error = cause.Error()
	}
	if status == StatusCompleted {
		task.Progress = 100
	}
	finished := m.now()
	task.FinishedAt = &finished
	delete(m.cancels, taskID)
	evt := task.progressEvent()
	m.mu.Unlock()

	m.publish(evt)
}

func (m *Manager) publish(evt ProgressEvent) {
	if m.bus != nil {
		m.bus.Publish(events.TopicTaskProgress, evt)
	}
}

// Cancel stops a pending or running task.
func (m *Manager) Cancel(taskID string) error {
	m.mu.Lock()
	task, ok := m.tasks[taskID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", taskID, ErrTaskNotFound)
	}
	if task.Status.Terminal() {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", taskID, ErrNotRunning)
	}
	cancel := m.cancels[taskID]
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// Get returns a snapshot of one task.
func (m *Manager) Get(taskID string) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", taskID, ErrTaskNotFound)
	}
	snapshot := *task
	return &snapshot, nil
}

// List returns snapshots of all tasks in creation order.
func (m *Manager) List() []*Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Task, 0, len(m.order))
	for _, taskID := range m.order {
		snapshot := *m.tasks[taskID]
		out = append(out, &snapshot)
	}
	return out
}

// Active returns how many tasks are pending or running.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, task := range m.tasks {
		if !task.Status.Terminal() {
			count++
		}
	}
	return count
}

// Shutdown cancels everything in flight and waits for the workers to exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(m.cancels))
	for _, cancel := range m.cancels {
		cancels = append(cancels, cancel)
	}
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	m.wg.Wait()
}
