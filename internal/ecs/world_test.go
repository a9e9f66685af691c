package ecs

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probe records lifecycle calls and can run a hook on tick
type probe struct {
	name    string
	log     *[]string
	onTick  func(a *Actor)
	begins  int
	ticks   int
	ends    int
	reasons []EndReason
}

func (p *probe) BeginPlay(a *Actor) {
	p.begins++
	*p.log = append(*p.log, p.name+".begin")
}

func (p *probe) Tick(a *Actor, dt float64) {
	p.ticks++
	*p.log = append(*p.log, p.name+".tick")
	if p.onTick != nil {
		p.onTick(a)
	}
}

func (p *probe) EndPlay(a *Actor, reason EndReason) {
	p.ends++
	p.reasons = append(p.reasons, reason)
	*p.log = append(*p.log, p.name+".end")
}

func TestNewWorld(t *testing.T) {
	w := NewWorld()

	assert.NotNil(t, w)
	assert.Equal(t, ActorID(1), w.nextID)
	assert.Equal(t, 0, w.Count())
}

func TestSpawn(t *testing.T) {
	w := NewWorld()

	a1 := w.Spawn("a")
	a2 := w.Spawn("b")

	assert.Equal(t, ActorID(1), a1.ID())
	assert.Equal(t, ActorID(2), a2.ID())
	assert.NotEqual(t, a1.GUID(), a2.GUID())
	assert.Equal(t, w, a1.World())
	assert.Equal(t, IdentityTransform(), a1.Transform)
	assert.Equal(t, []*Actor{a1, a2}, w.Actors())
}

func TestActorIDNeverRecycled(t *testing.T) {
	w := NewWorld()

	a := w.Spawn("a")
	w.Destroy(a.ID())
	w.Flush()

	b := w.Spawn("b")
	assert.NotEqual(t, a.ID(), b.ID(), "Actor IDs should never be recycled")
	assert.Equal(t, ActorID(2), b.ID())
}

func TestTick_Lifecycle(t *testing.T) {
	var log []string
	w := NewWorld()
	p := &probe{name: "p", log: &log}
	a := w.Spawn("a", p)

	assert.Equal(t, 0, p.begins, "BeginPlay waits for the first tick")

	w.Tick(1.0 / 60.0)
	w.Tick(1.0 / 60.0)
	assert.Equal(t, []string{"p.begin", "p.tick", "p.tick"}, log)
	assert.Equal(t, uint64(2), w.Frame())

	require.True(t, w.Destroy(a.ID()))
	assert.True(t, a.PendingKill())
	assert.True(t, w.Exists(a.ID()), "destruction is deferred")

	w.Tick(1.0 / 60.0)
	assert.Equal(t, 2, p.ticks, "pending-kill actors do not tick")
	assert.Equal(t, 1, p.ends)
	assert.Equal(t, []EndReason{EndDestroyed}, p.reasons)
	assert.True(t, a.Destroyed())
	assert.False(t, a.Alive())
	assert.False(t, w.Exists(a.ID()))
}

func TestDestroyDuringOwnTick(t *testing.T) {
	var log []string
	w := NewWorld()

	first := &probe{name: "first", log: &log}
	second := &probe{name: "second", log: &log}
	other := &probe{name: "other", log: &log}

	first.onTick = func(a *Actor) {
		a.World().Destroy(a.ID())
		// The actor is still reachable until the end of the tick.
		a.Transform.Position = mgl32.Vec3{1, 2, 3}
		assert.True(t, a.World().Exists(a.ID()))
	}
	self := w.Spawn("self", first, second)
	w.Spawn("other", other)

	w.Tick(0.1)

	assert.Equal(t, []string{
		"first.begin", "first.tick",
		"other.begin", "other.tick",
		"first.end",
	}, log, "second never began, so it gets no EndPlay; other still ticks")
	assert.Equal(t, 0, second.begins)
	assert.True(t, self.Destroyed())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, self.Transform.Position)
}

func TestDestroyTwice(t *testing.T) {
	w := NewWorld()
	a := w.Spawn("a")

	assert.True(t, w.Destroy(a.ID()))
	assert.False(t, w.Destroy(a.ID()), "second request is a no-op")
	w.Flush()
	assert.False(t, w.Destroy(a.ID()), "destroying a flushed actor is a no-op")
	assert.False(t, w.Destroy(ActorID(999)))
}

func TestGet(t *testing.T) {
	w := NewWorld()
	a := w.Spawn("a")

	got, err := w.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	w.Destroy(a.ID())
	w.Flush()

	_, err = w.Get(a.ID())
	assert.ErrorIs(t, err, ErrActorDestroyed)

	_, err = w.Get(ActorID(42))
	assert.ErrorIs(t, err, ErrUnknownActor)

	_, err = w.Get(0)
	assert.ErrorIs(t, err, ErrUnknownActor)
}

func TestSpawnDuringTick(t *testing.T) {
	var log []string
	w := NewWorld()

	child := &probe{name: "child", log: &log}
	spawned := false
	parent := &probe{name: "parent", log: &log, onTick: func(a *Actor) {
		if !spawned {
			spawned = true
			a.World().Spawn("child", child)
		}
	}}
	w.Spawn("parent", parent)

	w.Tick(0.1)
	assert.Equal(t, 0, child.begins, "actors spawned mid-tick start next frame")

	w.Tick(0.1)
	assert.Equal(t, 1, child.begins)
	assert.Equal(t, 1, child.ticks)
}

func TestDestroyFromEndPlay(t *testing.T) {
	var log []string
	w := NewWorld()

	victim := w.Spawn("victim", &probe{name: "victim", log: &log})
	killer := &endPlayKiller{target: victim.ID()}
	k := w.Spawn("killer", killer)

	w.Tick(0.1)
	w.Destroy(k.ID())
	w.Tick(0.1)

	assert.Equal(t, 0, w.Count(), "chained destruction is flushed in the same tick")
	assert.True(t, victim.Destroyed())
}

type endPlayKiller struct{ target ActorID }

func (k *endPlayKiller) BeginPlay(a *Actor)        {}
func (k *endPlayKiller) Tick(a *Actor, dt float64) {}
func (k *endPlayKiller) EndPlay(a *Actor, reason EndReason) {
	a.World().Destroy(k.target)
}

func TestShutdown(t *testing.T) {
	var log []string
	w := NewWorld()

	a := &probe{name: "a", log: &log}
	b := &probe{name: "b", log: &log}
	w.Spawn("a", a)
	w.Spawn("b", b)
	w.Spawn("never", &probe{name: "never", log: &log})
	w.Tick(0.1)
	log = nil

	w.Spawn("late", &probe{name: "late", log: &log})
	w.Shutdown()

	assert.Equal(t, []string{"never.end", "b.end", "a.end"}, log, "newest first, unbegun components skipped")
	assert.Equal(t, []EndReason{EndWorldShutdown}, a.reasons)
	assert.Equal(t, 0, w.Count())
	assert.Empty(t, w.Actors())
}

type endPlaySpawner struct {
	log   *[]string
	spawn *Actor
}

func (s *endPlaySpawner) BeginPlay(a *Actor)        {}
func (s *endPlaySpawner) Tick(a *Actor, dt float64) {}
func (s *endPlaySpawner) EndPlay(a *Actor, reason EndReason) {
	s.spawn = a.World().Spawn("spawned-at-end", &probe{name: "spawned", log: s.log})
}

func TestShutdown_RemovesActorsSpawnedByEndPlay(t *testing.T) {
	var log []string
	w := NewWorld()
	spawner := &endPlaySpawner{log: &log}
	w.Spawn("spawner", spawner)
	w.Tick(0.1)

	w.Shutdown()

	require.NotNil(t, spawner.spawn)
	assert.True(t, spawner.spawn.Destroyed())
	assert.Empty(t, log, "the spawned actor never began play")
	assert.Equal(t, 0, w.Count())
	assert.Empty(t, w.Actors())

	_, err := w.Get(spawner.spawn.ID())
	assert.ErrorIs(t, err, ErrActorDestroyed)
}

func TestAddComponentAfterBegin(t *testing.T) {
	var log []string
	w := NewWorld()
	a := w.Spawn("a", &probe{name: "first", log: &log})
	w.Tick(0.1)

	late := &probe{name: "late", log: &log}
	a.AddComponent(late)
	w.Tick(0.1)
	assert.Equal(t, 1, late.begins)

	got, ok := FindComponent[*probe](a)
	require.True(t, ok)
	assert.Equal(t, "first", got.name)
	assert.Len(t, a.Components(), 2)
}

func TestTransform(t *testing.T) {
	tr := IdentityTransform()
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, tr.Forward())

	tr.Rotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0})
	fwd := tr.Forward()
	assert.InDelta(t, -1, fwd.X(), 1e-5)
	assert.InDelta(t, 0, fwd.Z(), 1e-5)

	tr.Rotate(1, mgl32.Vec3{})
	assert.InDelta(t, -1, tr.Forward().X(), 1e-5, "zero axis is ignored")

	tr.Position = mgl32.Vec3{1, 2, 3}
	m := tr.Matrix()
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, m.Col(3).Vec3())
}

func TestEndReason_String(t *testing.T) {
	assert.Equal(t, "Destroyed", EndDestroyed.String())
	assert.Equal(t, "WorldShutdown", EndWorldShutdown.String())
	assert.Equal(t, "Unknown", EndReason(9).String())
}
