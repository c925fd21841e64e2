package app

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"github.com/ungerik/go3d/float64/vec3"

	"github.com/pthm-cable/retroterm/scene"
)

// Body links an entity to the mesh it animates.
type Body struct {
	Mesh *scene.Mesh
}

// Spin is a constant angular velocity in radians per second about X, Y and Z.
type Spin struct {
	Rate vec3.T
}

// Bob moves a mesh up and down around BaseY.
type Bob struct {
	BaseY float64
	Amp   float64
	Freq  float64 // radians per second
	Phase float64
}

// World animates scene meshes. Mesh transforms are written only from Update,
// which runs on the render goroutine.
type World struct {
	world  *ecs.World
	mapper *ecs.Map3[Body, Spin, Bob]
	filter *ecs.Filter3[Body, Spin, Bob]
	count  int
}

// NewWorld creates an empty animation world.
func NewWorld() *World {
	world := ecs.NewWorld()
	return &World{
		world:  world,
		mapper: ecs.NewMap3[Body, Spin, Bob](world),
		filter: ecs.NewFilter3[Body, Spin, Bob](world),
	}
}

// Animate registers m with the given motion. The mesh's current Y position
// becomes the bob centre.
func (w *World) Animate(m *scene.Mesh, spin vec3.T, amp, freq, phase float64) ecs.Entity {
	body := Body{Mesh: m}
	s := Spin{Rate: spin}
	b := Bob{BaseY: m.Position[1], Amp: amp, Freq: freq, Phase: phase}
	w.count++
	return w.mapper.NewEntity(&body, &s, &b)
}

// Len returns the number of animated meshes.
func (w *World) Len() int {
	return w.count
}

// Update advances every animated mesh to time t, dt seconds after the last
// call.
func (w *World) Update(t, dt float64) {
	query := w.filter.Query()
	for query.Next() {
		body, spin, bob := query.Get()
		m := body.Mesh

		for i := range m.Rotation {
			m.Rotation[i] = math.Mod(m.Rotation[i]+spin.Rate[i]*dt, 2*math.Pi)
		}
		m.Position[1] = bob.BaseY + bob.Amp*math.Sin(t*bob.Freq+bob.Phase)
	}
}
