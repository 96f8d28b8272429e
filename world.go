package impulse

import (
	"log/slog"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/collide"
	"github.com/akmonengine/impulse/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// World owns the bodies and advances them: forces, integration, collision detection,
// contact resolution, then sleep and events.
type World struct {
	// List of all rigid bodies in the world
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity     mgl64.Vec3
	Substeps    int
	SpatialGrid *SpatialGrid
	Workers     int

	Forces   ForceRegistry
	Contacts *collide.ContactData
	Resolver *constraint.Resolver

	SleepTime     float64
	SleepVelocity float64

	Logger *slog.Logger
	Events Events
}

// NewWorld creates an empty world from a validated config. The logger may be nil, then
// slog.Default() is used.
func NewWorld(config Config, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}

	contacts := collide.NewContactData(config.MaxContacts)
	contacts.Tolerance = config.ContactTolerance

	resolver := &constraint.Resolver{
		VelocityIterations: config.Resolver.VelocityIterations,
		PositionIterations: config.Resolver.PositionIterations,
		VelocityEpsilon:    config.Resolver.VelocityEpsilon,
		PositionEpsilon:    config.Resolver.PositionEpsilon,
	}

	events := NewEvents()
	events.logger = logger

	return &World{
		Gravity:       config.GravityVec(),
		Substeps:      config.Substeps,
		SpatialGrid:   NewSpatialGrid(config.Grid.CellSize, config.Grid.Cells),
		Workers:       config.Workers,
		Contacts:      contacts,
		Resolver:      resolver,
		SleepTime:     config.Sleep.Time,
		SleepVelocity: config.Sleep.Velocity,
		Logger:        logger,
		Events:        events,
	}
}

// AddBody adds a rigid body to the world and refreshes its derived data
func (w *World) AddBody(body *actor.RigidBody) {
	body.CalculateDerivedData()
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world, with its force generators
func (w *World) RemoveBody(body *actor.RigidBody) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}

	w.Forces.RemoveBody(body)
	w.Events.forget(body)
}

// Step advances the world by dt, split into Substeps equal substeps. Events are sent
// once, after the last substep.
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	w.Substeps = max(1, w.Substeps)
	h := dt / float64(w.Substeps)

	for range w.Substeps {
		w.Forces.UpdateForces(h)

		// integration also refreshes the derived data of the moved bodies
		w.integrate(h)

		contacts := w.detectCollision()

		w.Resolver.ResolveContacts(contacts, h)
		w.refreshDerivedData()

		w.trySleep(h)
	}

	w.Events.processSleepEvents(w.Bodies)
	w.Events.flush()
}

func (w *World) integrate(h float64) {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.Gravity)
	})
}

// detectCollision runs the broad and narrow phases. Trigger pairs only record events,
// the other pairs fill the contact buffer.
func (w *World) detectCollision() []constraint.Contact {
	w.Contacts.Reset()
	exhausted := false

	for _, pair := range BroadPhase(w.SpatialGrid, w.Bodies) {
		if pair.BodyA.IsTrigger || pair.BodyB.IsTrigger {
			if Intersects(pair.BodyA, pair.BodyB) {
				w.Events.recordPair(pair.BodyA, pair.BodyB, 0)
			}
			continue
		}

		if !w.Contacts.HasMoreContacts() {
			exhausted = true
			continue
		}

		count, supported := generateContacts(pair.BodyA, pair.BodyB, w.Contacts)
		if !supported {
			w.Logger.Debug("unsupported shape pair",
				"a", pair.BodyA.Shape.Kind(), "b", pair.BodyB.Shape.Kind())
			continue
		}
		if count > 0 {
			w.Events.recordPair(pair.BodyA, pair.BodyB, count)
		}
	}

	if exhausted {
		w.Logger.Debug("contact buffer exhausted", "capacity", w.Contacts.Capacity())
	}

	return w.Contacts.Slice()
}

// refreshDerivedData recomputes the transforms moved by the resolver
func (w *World) refreshDerivedData() {
	task(w.Workers, w.Bodies, func(body *actor.RigidBody) {
		if isActive(body) {
			body.CalculateDerivedData()
		}
	})
}

// trySleep sets the body to sleep if its velocity is lower than the threshold, for a given duration
// this method is too simple to use a task, it slows down in multiple goroutines
func (w *World) trySleep(h float64) {
	for _, body := range w.Bodies {
		body.TrySleep(h, w.SleepTime, w.SleepVelocity)
	}
}
