package ecs

import "github.com/go-gl/mathgl/mgl32"

// EndReason tells a component why EndPlay is being called.
type EndReason int

const (
	EndDestroyed EndReason = iota
	EndWorldShutdown
)

func (r EndReason) String() string {
	switch r {
	case EndDestroyed:
		return "Destroyed"
	case EndWorldShutdown:
		return "WorldShutdown"
	default:
		return "Unknown"
	}
}

// Component is behaviour attached to an actor.
//
// BeginPlay runs once, at the start of the first world tick after the
// component is added. EndPlay runs once, when the owning actor is flushed
// or the world shuts down, and only for components that began play.
type Component interface {
	BeginPlay(a *Actor)
	Tick(a *Actor, dt float64)
	EndPlay(a *Actor, reason EndReason)
}

// Transform places an actor in the world.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// IdentityTransform is at the origin, unrotated, with unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Rotate applies a rotation of angle radians about axis in world space.
func (t *Transform) Rotate(angle float32, axis mgl32.Vec3) {
	if axis.Len() == 0 {
		return
	}
	t.Rotation = mgl32.QuatRotate(angle, axis.Normalize()).Mul(t.Rotation).Normalize()
}

// Forward returns the direction the actor faces (-Z in local space).
func (t Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

// Matrix returns the model matrix: translate * rotate * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
