// Package world is a small rigid-body world made of one tiltable plate with
// walls and cubes sliding on it. It implements the physics contracts the tilt
// bridge drives and is deliberately simple: cubes collide with the plate and
// the walls, not with each other.
package world

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/tiltbox/internal/core/systems/physics"
)

var (
	_ physics.Stepper      = (*World)(nil)
	_ physics.Orientable   = (*World)(nil)
	_ physics.GravityField = (*World)(nil)
)

// Config describes the plate.
type Config struct {
	// HalfExtent is half the plate width along x and z.
	HalfExtent float64
	// WallHeight is how high the walls reach above the plate surface.
	WallHeight float64
	// Friction is the sliding friction coefficient against the plate.
	Friction float64
	// Restitution is the fraction of speed kept after hitting a wall or the
	// plate.
	Restitution float64
	// FixedStep is the integration step. Advance splits longer durations.
	FixedStep time.Duration
}

func DefaultConfig() Config {
	return Config{
		HalfExtent:  0.5,
		WallHeight:  0.6,
		Friction:    0.02,
		Restitution: 0.9,
		FixedStep:   time.Second / 120,
	}
}

func (c Config) Validate() error {
	switch {
	case !(c.HalfExtent > 0):
		return fmt.Errorf("%w: half extent %v", ErrInvalidConfig, c.HalfExtent)
	case c.WallHeight < 0:
		return fmt.Errorf("%w: wall height %v", ErrInvalidConfig, c.WallHeight)
	case c.Friction < 0:
		return fmt.Errorf("%w: friction %v", ErrInvalidConfig, c.Friction)
	case c.Restitution < 0 || c.Restitution > 1:
		return fmt.Errorf("%w: restitution %v", ErrInvalidConfig, c.Restitution)
	case c.FixedStep <= 0:
		return fmt.Errorf("%w: fixed step %v", ErrInvalidConfig, c.FixedStep)
	}
	return nil
}

const (
	// bounces slower than this come to rest
	restBounce = 0.01
	// bodies this far below the plate are gone
	lostDepth = 1.0
	// dynamic bodies beyond the wall's outer face are not pushed back in
	wallThickness = 0.1
)

// Stats counts what the world has done so far.
type Stats struct {
	Steps       uint64
	SettleSteps uint64
	SimTime     time.Duration
	Bodies      int
	Lost        int
}

// World owns the plate pose, gravity and the bodies.
type World struct {
	mu sync.RWMutex

	cfg     Config
	plate   mgl64.Quat
	gravity mgl64.Vec3
	// resolved is the pose dynamic body coordinates are expressed against. It
	// trails plate until the next Advance sweeps the bodies.
	resolved mgl64.Quat

	bodies []*Body
	byName map[string]*Body

	steps       uint64
	settleSteps uint64
	simTime     time.Duration
	// carry is simulated time not yet integrated because it is shorter than a
	// fixed step.
	carry time.Duration
}

// New creates an empty world with a level plate and gravity straight down.
func New(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &World{
		cfg:      cfg,
		plate:    mgl64.QuatIdent(),
		gravity:  mgl64.Vec3{0, -1, 0},
		resolved: mgl64.QuatIdent(),
		byName:   make(map[string]*Body),
	}, nil
}

func (w *World) Config() Config { return w.cfg }

// SetOrientation poses the plate. Kinematic bodies ride along with it. Dynamic
// bodies keep their place in world space until the next Advance sweeps them
// into the new pose, so one large jump can carry the walls past a body that a
// series of small ones would have pushed.
func (w *World) SetOrientation(q mgl64.Quat) error {
	if isNaNQuat(q) {
		return fmt.Errorf("world: orientation %v is not a number", q)
	}
	w.mu.Lock()
	w.plate = q.Normalize()
	w.mu.Unlock()
	return nil
}

func (w *World) Orientation() mgl64.Quat {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.plate
}

func (w *World) SetGravity(g mgl64.Vec3) error {
	if math.IsNaN(g[0]) || math.IsNaN(g[1]) || math.IsNaN(g[2]) {
		return fmt.Errorf("world: gravity %v is not a number", g)
	}
	w.mu.Lock()
	w.gravity = g
	w.mu.Unlock()
	return nil
}

func (w *World) Gravity() mgl64.Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.gravity
}

// LocalGravity is gravity expressed in plate coordinates.
func (w *World) LocalGravity() mgl64.Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.localGravity()
}

func (w *World) localGravity() mgl64.Vec3 {
	return w.plate.Inverse().Rotate(w.gravity)
}

// Advance integrates d of simulated time in fixed steps. A zero duration is a
// settle step: bodies are swept into the current pose, contacts are resolved
// and no time passes.
func (w *World) Advance(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeStep, d)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.sweep()
	if d == 0 {
		w.settleSteps++
		for _, b := range w.bodies {
			w.resolve(b)
		}
		return nil
	}

	w.carry += d
	h := w.cfg.FixedStep
	for w.carry >= h {
		w.step(h.Seconds())
		w.carry -= h
		w.steps++
		w.simTime += h
	}
	return nil
}

// sweep re-expresses dynamic bodies from the last resolved pose into the
// current one and resolves whatever the plate moved into.
func (w *World) sweep() {
	if w.resolved == w.plate {
		return
	}
	to := w.plate.Inverse().Mul(w.resolved).Normalize()
	for _, b := range w.bodies {
		if b.kind != KindDynamic || b.lost {
			continue
		}
		b.pos = to.Rotate(b.pos)
		b.vel = to.Rotate(b.vel)
		w.resolve(b)
	}
	w.resolved = w.plate
}

func (w *World) step(h float64) {
	g := w.localGravity()
	for _, b := range w.bodies {
		if b.kind != KindDynamic || b.lost {
			continue
		}

		b.vel = b.vel.Add(g.Mul(h))
		if w.touchingPlate(b) && g[1] < 0 {
			w.applyFriction(b, -g[1]*h)
		}
		b.pos = b.pos.Add(b.vel.Mul(h))
		w.resolve(b)
	}
}

func (w *World) touchingPlate(b *Body) bool {
	return w.overPlate(b) && b.pos[1] <= b.half+1e-9
}

func (w *World) overPlate(b *Body) bool {
	return math.Abs(b.pos[0]) <= w.cfg.HalfExtent && math.Abs(b.pos[2]) <= w.cfg.HalfExtent
}

// applyFriction slows the sliding speed by Friction*normal, stopping rather
// than reversing.
func (w *World) applyFriction(b *Body, normal float64) {
	slide := math.Hypot(b.vel[0], b.vel[2])
	if slide == 0 {
		return
	}
	loss := w.cfg.Friction * normal
	if loss >= slide {
		b.vel[0], b.vel[2] = 0, 0
		return
	}
	scale := (slide - loss) / slide
	b.vel[0] *= scale
	b.vel[2] *= scale
}

// resolve pushes b out of the walls and the plate, bouncing dynamic bodies.
// Kinematic bodies are always kept inside the walls; dynamic ones can escape
// over the top.
func (w *World) resolve(b *Body) {
	if b.lost {
		return
	}
	r := w.cfg.Restitution

	if b.pos[1]-b.half < w.cfg.WallHeight {
		limit := w.cfg.HalfExtent - b.half
		for _, axis := range [2]int{0, 2} {
			if b.kind == KindDynamic && math.Abs(b.pos[axis]) >= w.cfg.HalfExtent+wallThickness {
				continue
			}
			switch {
			case b.pos[axis] > limit:
				b.pos[axis] = limit
				if b.vel[axis] > 0 {
					b.vel[axis] = -b.vel[axis] * r
				}
			case b.pos[axis] < -limit:
				b.pos[axis] = -limit
				if b.vel[axis] < 0 {
					b.vel[axis] = -b.vel[axis] * r
				}
			}
		}
	}

	if w.overPlate(b) && b.pos[1] < b.half {
		b.pos[1] = b.half
		if b.vel[1] < 0 {
			b.vel[1] = -b.vel[1] * r
			if b.vel[1] < restBounce {
				b.vel[1] = 0
			}
		}
	}

	if b.pos[1] < -lostDepth {
		b.lost = true
		b.vel = mgl64.Vec3{}
	}
}

// AddBody places a new body. Dynamic bodies need a positive mass.
func (w *World) AddBody(name string, kind Kind, pos mgl64.Vec3, halfSize, mass float64) (*Body, error) {
	if name == "" || !(halfSize > 0) || halfSize > w.cfg.HalfExtent {
		return nil, fmt.Errorf("%w: %q half size %v", ErrInvalidBody, name, halfSize)
	}
	if kind == KindDynamic && !(mass > 0) {
		return nil, fmt.Errorf("%w: %q dynamic body needs mass, got %v", ErrInvalidBody, name, mass)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrBodyExists, name)
	}
	w.sweep()
	b := &Body{
		world: w,
		id:    uuid.New(),
		name:  name,
		kind:  kind,
		half:  halfSize,
		mass:  mass,
		pos:   pos,
	}
	w.resolve(b)
	w.bodies = append(w.bodies, b)
	w.byName[name] = b
	return b, nil
}

func (w *World) Body(name string) (*Body, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.byName[name]
	return b, ok
}

// Bodies returns the bodies sorted by name.
func (w *World) Bodies() []*Body {
	w.mu.RLock()
	out := append([]*Body(nil), w.bodies...)
	w.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := Stats{
		Steps:       w.steps,
		SettleSteps: w.settleSteps,
		SimTime:     w.simTime,
		Bodies:      len(w.bodies),
	}
	for _, b := range w.bodies {
		if b.lost {
			s.Lost++
		}
	}
	return s
}

// Digest hashes the plate pose, gravity and every body state. Two worlds fed
// the same inputs produce the same digest.
func (w *World) Digest() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	h := xxhash.New()
	buf := make([]byte, 0, 64)
	putFloats := func(vs ...float64) {
		buf = buf[:0]
		for _, v := range vs {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
		}
		_, _ = h.Write(buf)
	}

	putFloats(w.plate.W, w.plate.V[0], w.plate.V[1], w.plate.V[2])
	putFloats(w.resolved.W, w.resolved.V[0], w.resolved.V[1], w.resolved.V[2])
	putFloats(w.gravity[0], w.gravity[1], w.gravity[2])
	for _, b := range w.bodies {
		_, _ = h.WriteString(b.name)
		putFloats(b.pos[0], b.pos[1], b.pos[2], b.vel[0], b.vel[1], b.vel[2])
		if b.lost {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

func isNaNQuat(q mgl64.Quat) bool {
	return math.IsNaN(q.W) || math.IsNaN(q.V[0]) || math.IsNaN(q.V[1]) || math.IsNaN(q.V[2])
}
