// Package ecs hosts actors and their components with a deferred
// destruction lifecycle.
package ecs

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ActorID is a unique identifier for an actor (never recycled)
type ActorID uint64

var (
	ErrUnknownActor   = errors.New("ecs: unknown actor")
	ErrActorDestroyed = errors.New("ecs: actor destroyed")
)

type componentSlot struct {
	c     Component
	begun bool
}

// Actor owns an ordered list of components and a transform.
type Actor struct {
	Transform Transform

	id          ActorID
	guid        uuid.UUID
	name        string
	world       *World
	components  []*componentSlot
	pendingKill bool
	destroyed   bool
}

func (a *Actor) ID() ActorID     { return a.id }
func (a *Actor) GUID() uuid.UUID { return a.guid }
func (a *Actor) Name() string    { return a.name }
func (a *Actor) World() *World   { return a.world }

// PendingKill reports whether destruction was requested but not yet flushed.
func (a *Actor) PendingKill() bool { return a.pendingKill }

// Destroyed reports whether the actor has been removed from its world.
func (a *Actor) Destroyed() bool { return a.destroyed }

// Alive reports whether the actor is neither pending kill nor destroyed.
func (a *Actor) Alive() bool { return !a.pendingKill && !a.destroyed }

// AddComponent attaches c. It begins play on the next world tick.
func (a *Actor) AddComponent(c Component) {
	if a.destroyed {
		slog.Warn("ecs: component added to destroyed actor", "actor", a.name, "id", a.id)
		return
	}
	a.components = append(a.components, &componentSlot{c: c})
}

// Components returns the attached components in insertion order.
func (a *Actor) Components() []Component {
	out := make([]Component, len(a.components))
	for i, s := range a.components {
		out[i] = s.c
	}
	return out
}

// FindComponent returns the first component of type T on a.
func FindComponent[T Component](a *Actor) (T, bool) {
	for _, s := range a.components {
		if c, ok := s.c.(T); ok {
			return c, true
		}
	}
	var zero T
	return zero, false
}

// World holds all actors and the next actor ID
type World struct {
	nextID  ActorID
	actors  map[ActorID]*Actor
	order   []ActorID
	pending []ActorID
	frame   uint64
}

// NewWorld creates a new empty world
func NewWorld() *World {
	return &World{
		nextID: 1, // 0 is "nil"
		actors: make(map[ActorID]*Actor),
	}
}

// Spawn creates an actor with the given components. The components begin
// play at the start of the next Tick, so actors spawned during a tick do
// not run until the following frame.
func (w *World) Spawn(name string, components ...Component) *Actor {
	a := &Actor{
		Transform: IdentityTransform(),
		id:        w.nextID,
		guid:      uuid.New(),
		name:      name,
		world:     w,
	}
	w.nextID++
	for _, c := range components {
		a.AddComponent(c)
	}

	w.actors[a.id] = a
	w.order = append(w.order, a.id)
	slog.Debug("ecs: actor spawned", "actor", name, "id", a.id, "guid", a.guid)
	return a
}

// Destroy requests destruction of id. The actor stops ticking at once and
// is removed, with EndPlay, at the end of the current Tick (or immediately
// if called outside Tick via Flush). Returns false if the request had no
// effect.
func (w *World) Destroy(id ActorID) bool {
	a, ok := w.actors[id]
	if !ok {
		slog.Warn("ecs: destroy of unknown or destroyed actor", "id", id)
		return false
	}
	if a.pendingKill {
		slog.Warn("ecs: actor already pending destruction", "actor", a.name, "id", id)
		return false
	}
	a.pendingKill = true
	w.pending = append(w.pending, id)
	return true
}

// Get returns the live actor for id.
func (w *World) Get(id ActorID) (*Actor, error) {
	if a, ok := w.actors[id]; ok {
		return a, nil
	}
	if id != 0 && id < w.nextID {
		return nil, errors.Wrapf(ErrActorDestroyed, "actor %d", id)
	}
	return nil, errors.Wrapf(ErrUnknownActor, "actor %d", id)
}

// Exists reports whether id refers to an actor that has not been flushed.
func (w *World) Exists(id ActorID) bool {
	_, ok := w.actors[id]
	return ok
}

// Actors returns live actors in spawn order.
func (w *World) Actors() []*Actor {
	out := make([]*Actor, 0, len(w.order))
	for _, id := range w.order {
		if a, ok := w.actors[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Count returns the number of actors not yet flushed.
func (w *World) Count() int {
	return len(w.actors)
}

// Frame returns the number of completed ticks.
func (w *World) Frame() uint64 {
	return w.frame
}

// Tick begins play for new components, ticks every live actor in spawn
// order and then flushes pending destruction.
func (w *World) Tick(dt float64) {
	order := w.order
	for _, id := range order {
		a, ok := w.actors[id]
		if !ok {
			continue
		}
		n := len(a.components)
		for i := 0; i < n; i++ {
			if a.pendingKill {
				break
			}
			slot := a.components[i]
			if !slot.begun {
				slot.begun = true
				slot.c.BeginPlay(a)
				if a.pendingKill {
					break
				}
			}
			slot.c.Tick(a, dt)
		}
	}
	w.Flush()
	w.frame++
}

// Flush removes every actor pending destruction, calling EndPlay on its
// begun components in reverse order. Components must not call it.
func (w *World) Flush() {
	for len(w.pending) > 0 {
		// EndPlay may destroy further actors; take the batch first.
		batch := w.pending
		w.pending = nil
		for _, id := range batch {
			if a, ok := w.actors[id]; ok {
				w.remove(a, EndDestroyed)
			}
		}
	}
	w.compact()
}

// Shutdown ends play for every actor, newest first, and empties the world.
// Actors spawned by EndPlay during shutdown are removed too.
func (w *World) Shutdown() {
	for len(w.actors) > 0 {
		order := w.order
		w.order = nil
		for i := len(order) - 1; i >= 0; i-- {
			if a, ok := w.actors[order[i]]; ok {
				w.remove(a, EndWorldShutdown)
			}
		}
	}
	w.pending = nil
	w.order = nil
}

func (w *World) remove(a *Actor, reason EndReason) {
	for i := len(a.components) - 1; i >= 0; i-- {
		if s := a.components[i]; s.begun {
			s.c.EndPlay(a, reason)
		}
	}
	delete(w.actors, a.id)
	a.pendingKill = false
	a.destroyed = true
	slog.Debug("ecs: actor removed", "actor", a.name, "id", a.id, "reason", reason)
}

func (w *World) compact() {
	if len(w.order) == len(w.actors) {
		return
	}
	live := w.order[:0]
	for _, id := range w.order {
		if _, ok := w.actors[id]; ok {
			live = append(live, id)
		}
	}
	w.order = live
}
