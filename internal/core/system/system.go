// Package system runs the per-frame systems of the simulation in a fixed
// phase order.
package system

import "time"

// System is one per-frame processor.
type System interface {
	Name() string
	Phase() ExecutionPhase
	Priority() Priority
	Update(dt time.Duration) error
}

// Priority orders systems within a phase. Higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when a system runs within a frame.
type ExecutionPhase uint8

const (
	// PhasePreUpdate poses the world from input before anything moves.
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	// PhasePhysics advances simulated time.
	PhasePhysics
	PhasePostUpdate
)

var phaseNames = [...]string{"pre_update", "update", "physics", "post_update"}

func (p ExecutionPhase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Phases lists every phase in execution order.
func Phases() []ExecutionPhase {
	return []ExecutionPhase{PhasePreUpdate, PhaseUpdate, PhasePhysics, PhasePostUpdate}
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
}

func (m *Metrics) record(took time.Duration, err error, at time.Time) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if took > m.MaxExecutionTime {
		m.MaxExecutionTime = took
	}
	if m.ExecutionCount == 1 || took < m.MinExecutionTime {
		m.MinExecutionTime = took
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
	m.LastExecutionTime = at
}

// Func adapts a plain function into a System.
type Func struct {
	SystemName     string
	SystemPhase    ExecutionPhase
	SystemPriority Priority
	Fn             func(dt time.Duration) error
}

var _ System = (*Func)(nil)

func (f *Func) Name() string                  { return f.SystemName }
func (f *Func) Phase() ExecutionPhase         { return f.SystemPhase }
func (f *Func) Priority() Priority            { return f.SystemPriority }
func (f *Func) Update(dt time.Duration) error { return f.Fn(dt) }
