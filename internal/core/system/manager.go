package system

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zeusync/tiltbox/internal/core/observability/log"
)

// Manager orchestrates all systems of the simulation.
// Handles execution order, enable state and metrics.
type Manager interface {
	// System registration

	RegisterSystem(System) error
	UnregisterSystem(name string) error
	GetSystem(name string) (System, bool)
	ListSystems() []System
	HasSystem(name string) bool

	// State

	EnableSystem(name string) error
	DisableSystem(name string) error

	// Execution control

	Update(dt time.Duration) error
	UpdatePhase(phase ExecutionPhase, dt time.Duration) error

	// Monitoring

	GetMetrics() ManagerMetrics
	GetSystemMetrics(name string) (Metrics, bool)
	GetExecutionOrder() []string

	// Events

	OnSystemError(func(string, error))
}

// ManagerMetrics provides system manager statistics
type ManagerMetrics struct {
	RegisteredSystems uint32
	EnabledSystems    uint32
	Frames            uint64
	TotalUpdateTime   time.Duration
	AverageUpdateTime time.Duration
	SystemErrorCount  map[string]uint64
	LastUpdateTime    time.Time
}

type entry struct {
	system  System
	seq     int
	enabled bool
	metrics Metrics
}

var _ Manager = (*manager)(nil)

type manager struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []*entry
	seq     int

	frames      uint64
	totalUpdate time.Duration
	lastUpdate  time.Time

	onError []func(string, error)
	logger  log.Log
}

// NewManager creates an empty manager.
func NewManager(logger log.Log) Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &manager{
		entries: make(map[string]*entry),
		logger:  logger.With(log.String("component", "system_manager")),
	}
}

func (m *manager) RegisterSystem(s System) error {
	if s == nil {
		return ErrNilSystem
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrSystemExists, s.Name())
	}
	m.seq++
	e := &entry{system: s, seq: m.seq, enabled: true}
	m.entries[s.Name()] = e
	m.rebuildOrder()

	m.logger.Debug("system registered",
		log.String("system", s.Name()),
		log.Stringer("phase", s.Phase()),
		log.Int("priority", int(s.Priority())),
	)
	return nil
}

func (m *manager) UnregisterSystem(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[name]; !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	delete(m.entries, name)
	m.rebuildOrder()
	return nil
}

func (m *manager) GetSystem(name string) (System, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	if !ok {
		return nil, false
	}
	return e.system, true
}

func (m *manager) ListSystems() []System {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]System, 0, len(m.order))
	for _, e := range m.order {
		out = append(out, e.system)
	}
	return out
}

func (m *manager) HasSystem(name string) bool {
	_, ok := m.GetSystem(name)
	return ok
}

func (m *manager) EnableSystem(name string) error  { return m.setEnabled(name, true) }
func (m *manager) DisableSystem(name string) error { return m.setEnabled(name, false) }

func (m *manager) setEnabled(name string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	e.enabled = enabled
	return nil
}

// Update runs one frame: every phase in order, systems within a phase by
// descending priority then registration order. All systems of a phase run even
// if one fails, but a failed phase stops the frame before the next phase.
func (m *manager) Update(dt time.Duration) error {
	start := time.Now()
	defer func() {
		m.mu.Lock()
		m.frames++
		m.totalUpdate += time.Since(start)
		m.lastUpdate = start
		m.mu.Unlock()
	}()

	for _, phase := range Phases() {
		if err := m.UpdatePhase(phase, dt); err != nil {
			return fmt.Errorf("phase %s: %w", phase, err)
		}
	}
	return nil
}

// UpdatePhase runs the enabled systems of a single phase.
func (m *manager) UpdatePhase(phase ExecutionPhase, dt time.Duration) error {
	m.mu.RLock()
	var run []*entry
	for _, e := range m.order {
		if e.enabled && e.system.Phase() == phase {
			run = append(run, e)
		}
	}
	handlers := append([]func(string, error){}, m.onError...)
	m.mu.RUnlock()

	var all error
	for _, e := range run {
		began := time.Now()
		err := e.system.Update(dt)
		took := time.Since(began)

		m.mu.Lock()
		e.metrics.record(took, err, began)
		m.mu.Unlock()

		if err != nil {
			name := e.system.Name()
			m.logger.Error("system update failed", log.String("system", name), log.Error(err))
			for _, h := range handlers {
				h(name, err)
			}
			all = errors.Join(all, fmt.Errorf("%s: %w", name, err))
		}
	}
	return all
}

func (m *manager) GetMetrics() ManagerMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mm := ManagerMetrics{
		RegisteredSystems: uint32(len(m.entries)),
		Frames:            m.frames,
		TotalUpdateTime:   m.totalUpdate,
		SystemErrorCount:  make(map[string]uint64, len(m.entries)),
		LastUpdateTime:    m.lastUpdate,
	}
	if m.frames > 0 {
		mm.AverageUpdateTime = m.totalUpdate / time.Duration(m.frames)
	}
	for name, e := range m.entries {
		if e.enabled {
			mm.EnabledSystems++
		}
		if e.metrics.ErrorCount > 0 {
			mm.SystemErrorCount[name] = e.metrics.ErrorCount
		}
	}
	return mm
}

func (m *manager) GetSystemMetrics(name string) (Metrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}

func (m *manager) GetExecutionOrder() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.order))
	for _, e := range m.order {
		names = append(names, e.system.Name())
	}
	return names
}

func (m *manager) OnSystemError(fn func(string, error)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.onError = append(m.onError, fn)
	m.mu.Unlock()
}

// rebuildOrder must be called with mu held.
func (m *manager) rebuildOrder() {
	m.order = m.order[:0]
	for _, e := range m.entries {
		m.order = append(m.order, e)
	}
	sort.Slice(m.order, func(i, j int) bool {
		a, b := m.order[i], m.order[j]
		if a.system.Phase() != b.system.Phase() {
			return a.system.Phase() < b.system.Phase()
		}
		if a.system.Priority() != b.system.Priority() {
			return a.system.Priority() > b.system.Priority()
		}
		return a.seq < b.seq
	})
}
