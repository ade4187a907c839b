package movement

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/tiltbox/internal/core/observability/log"
	"github.com/zeusync/tiltbox/internal/core/system"
)

const SystemName = "movement"

var ErrEntityExists = errors.New("movement: entity already added")

var _ system.System = (*System)(nil)

// System ticks every movable entity once per frame in insertion order.
type System struct {
	mu       sync.RWMutex
	entities []*Entity
	index    map[uuid.UUID]int
	logger   log.Log
}

func NewSystem(logger log.Log) *System {
	if logger == nil {
		logger = log.NewNop()
	}
	return &System{
		index:  make(map[uuid.UUID]int),
		logger: logger.With(log.String("system", SystemName)),
	}
}

func (s *System) Name() string                 { return SystemName }
func (s *System) Phase() system.ExecutionPhase { return system.PhaseUpdate }
func (s *System) Priority() system.Priority    { return system.PriorityNormal }

// Add registers an entity.
func (s *System) Add(e *Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[e.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrEntityExists, e.Name())
	}
	s.index[e.ID()] = len(s.entities)
	s.entities = append(s.entities, e)
	return nil
}

// Remove drops an entity. It reports whether the entity was present.
func (s *System) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.entities = append(s.entities[:i], s.entities[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.entities); j++ {
		s.index[s.entities[j].ID()] = j
	}
	return true
}

// Entities returns a snapshot of the registered entities.
func (s *System) Entities() []*Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Entity(nil), s.entities...)
}

// Find returns the first entity named name.
func (s *System) Find(name string) (*Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entities {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

// Update ticks all entities. A failing entity does not stop the others.
func (s *System) Update(time.Duration) error {
	var all error
	for _, e := range s.Entities() {
		if err := e.Tick(); err != nil {
			s.logger.Warn("entity tick failed", log.String("entity", e.Name()), log.Error(err))
			all = errors.Join(all, fmt.Errorf("%s: %w", e.Name(), err))
		}
	}
	return all
}
