// Package demo holds gameplay components used to exercise actor lifetime.
package demo

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/younwookim/skyview/internal/domain/texture"
	"github.com/younwookim/skyview/internal/ecs"
)

// TextureLoader loads the texture a component displays.
type TextureLoader func(path string) (*texture.Texture, error)

// SpinnerConfig configures a Spinner.
type SpinnerConfig struct {
	TexturePath      string
	DegreesPerSecond float64
	Axis             mgl32.Vec3
	// DestroyAfterTicks makes the spinner destroy its own owner on that
	// tick. Zero disables it.
	DestroyAfterTicks int
}

// DefaultSpinnerConfig spins around +Y at 90 degrees per second forever.
func DefaultSpinnerConfig() SpinnerConfig {
	return SpinnerConfig{
		DegreesPerSecond: 90,
		Axis:             mgl32.Vec3{0, 1, 0},
	}
}

// Spinner rotates its owner and, when configured, destroys it from inside
// its own Tick and then keeps touching it.
type Spinner struct {
	cfg  SpinnerConfig
	load TextureLoader

	tex     *texture.Texture
	ticks   int
	angle   float64 // degrees, unwrapped
	probe   probeResult
	ends    int
	reason  ecs.EndReason
	started bool
}

// probeResult records what the owner looked like right after it asked
// the world to destroy it.
type probeResult struct {
	requested    bool
	ownerExists  bool
	ownerAlive   bool
	secondAccept bool
	position     mgl32.Vec3
}

// NewSpinner creates a spinner. load may be nil when no texture is wanted.
func NewSpinner(cfg SpinnerConfig, load TextureLoader) *Spinner {
	return &Spinner{cfg: cfg, load: load}
}

// Spawn creates an actor owning a new Spinner.
func Spawn(w *ecs.World, name string, cfg SpinnerConfig, load TextureLoader) (*ecs.Actor, *Spinner) {
	s := NewSpinner(cfg, load)
	return w.Spawn(name, s), s
}

func (s *Spinner) BeginPlay(a *ecs.Actor) {
	s.started = true
	if s.cfg.TexturePath == "" || s.load == nil {
		return
	}
	tex, err := s.load(s.cfg.TexturePath)
	if err != nil {
		slog.Warn("demo: spinner texture not loaded", "actor", a.Name(), "path", s.cfg.TexturePath, "err", err)
		return
	}
	s.tex = tex
}

func (s *Spinner) Tick(a *ecs.Actor, dt float64) {
	s.ticks++

	step := s.cfg.DegreesPerSecond * dt
	s.angle += step
	a.Transform.Rotate(mgl32.DegToRad(float32(step)), s.cfg.Axis)

	if s.cfg.DestroyAfterTicks > 0 && s.ticks == s.cfg.DestroyAfterTicks {
		s.destroyOwner(a)
	}
}

// destroyOwner asks the world to destroy a, then keeps using it. The
// world defers removal to the end of the tick, so every access below is
// still to a live object.
func (s *Spinner) destroyOwner(a *ecs.Actor) {
	w := a.World()
	s.probe.requested = w.Destroy(a.ID())

	a.Transform.Position = a.Transform.Position.Add(mgl32.Vec3{0, 1, 0})
	s.probe.position = a.Transform.Position
	s.probe.ownerExists = w.Exists(a.ID())
	s.probe.ownerAlive = a.Alive()

	// Logged no-op.
	s.probe.secondAccept = w.Destroy(a.ID())

	slog.Info("demo: spinner destroyed its owner",
		"actor", a.Name(),
		"id", a.ID(),
		"tick", s.ticks,
		"stillExists", s.probe.ownerExists,
	)
}

func (s *Spinner) EndPlay(a *ecs.Actor, reason ecs.EndReason) {
	s.ends++
	s.reason = reason
	if s.tex != nil {
		s.tex.Release()
	}
}

// Texture returns the loaded texture, or nil.
func (s *Spinner) Texture() *texture.Texture { return s.tex }

func (s *Spinner) Started() bool { return s.started }
func (s *Spinner) Ticks() int    { return s.ticks }

// Angle returns the total rotation applied so far, in degrees.
func (s *Spinner) Angle() float64 { return s.angle }

// DestroyRequested reports whether the spinner's own destroy request was
// accepted by the world.
func (s *Spinner) DestroyRequested() bool { return s.probe.requested }

// OwnerExistsAfterDestroy reports whether the world still held the owner
// right after the destroy request.
func (s *Spinner) OwnerExistsAfterDestroy() bool { return s.probe.ownerExists }

// OwnerAliveAfterDestroy reports a.Alive() right after the destroy request.
func (s *Spinner) OwnerAliveAfterDestroy() bool { return s.probe.ownerAlive }

// SecondDestroyAccepted reports whether the repeated destroy request had
// any effect. It never should.
func (s *Spinner) SecondDestroyAccepted() bool { return s.probe.secondAccept }

// ProbePosition is the owner position written after the destroy request.
func (s *Spinner) ProbePosition() mgl32.Vec3 { return s.probe.position }

func (s *Spinner) EndPlays() int            { return s.ends }
func (s *Spinner) EndReason() ecs.EndReason { return s.reason }
