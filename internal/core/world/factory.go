package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// BoxFactory makes cubes with shared settings. Names are the prefix followed
// by a counter that keeps counting across prefix changes.
type BoxFactory struct {
	world   *World
	counter int
	prefix  string
	mass    float64
	half    float64
}

func NewBoxFactory(w *World) *BoxFactory {
	return &BoxFactory{world: w, prefix: "box", half: 0.05}
}

func (f *BoxFactory) WithPrefix(prefix string) *BoxFactory {
	f.prefix = prefix
	return f
}

// WithMass sets the mass of following boxes. Zero mass makes kinematic boxes.
func (f *BoxFactory) WithMass(mass float64) *BoxFactory {
	f.mass = mass
	return f
}

// WithSize sets the edge length of following boxes.
func (f *BoxFactory) WithSize(size float64) *BoxFactory {
	f.half = size / 2
	return f
}

// Make places the next box at pos.
func (f *BoxFactory) Make(pos mgl64.Vec3) (*Body, error) {
	return f.MakeNamed("", pos)
}

// MakeNamed is Make with an explicit name. An empty name falls back to the
// numbered one. The counter advances either way.
func (f *BoxFactory) MakeNamed(name string, pos mgl64.Vec3) (*Body, error) {
	if name == "" {
		name = fmt.Sprintf("%s%d", f.prefix, f.counter)
	}
	f.counter++

	kind := KindKinematic
	if f.mass > 0 {
		kind = KindDynamic
	}
	return f.world.AddBody(name, kind, pos, f.half, f.mass)
}
