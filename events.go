package impulse

import (
	"log/slog"
	"unsafe"

	"github.com/akmonengine/impulse/actor"
)

const (
	TRIGGER_ENTER EventType = iota
	COLLISION_ENTER
	TRIGGER_STAY
	COLLISION_STAY
	TRIGGER_EXIT
	COLLISION_EXIT
	ON_SLEEP
	ON_WAKE
)

type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	ptrA := uintptr(unsafe.Pointer(bodyA))
	ptrB := uintptr(unsafe.Pointer(bodyB))

	if ptrB < ptrA {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

func (p pairKey) isTrigger() bool {
	return p.bodyA.IsTrigger || p.bodyB.IsTrigger
}

// inactive pairs cannot change until one of the bodies wakes up
func (p pairKey) inactive() bool {
	return !isActive(p.bodyA) && !isActive(p.bodyB)
}

type EventType uint8

func (t EventType) String() string {
	switch t {
	case TRIGGER_ENTER:
		return "trigger enter"
	case COLLISION_ENTER:
		return "collision enter"
	case TRIGGER_STAY:
		return "trigger stay"
	case COLLISION_STAY:
		return "collision stay"
	case TRIGGER_EXIT:
		return "trigger exit"
	case COLLISION_EXIT:
		return "collision exit"
	case ON_SLEEP:
		return "sleep"
	case ON_WAKE:
		return "wake"
	}
	return "unknown"
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Trigger events
type TriggerEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerEnterEvent) Type() EventType { return TRIGGER_ENTER }

type TriggerStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerStayEvent) Type() EventType { return TRIGGER_STAY }

type TriggerExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerExitEvent) Type() EventType { return TRIGGER_EXIT }

// Collision events
type CollisionEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
	// Contacts is the number of contacts generated for the pair in the last substep
	Contacts int
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA    *actor.RigidBody
	BodyB    *actor.RigidBody
	Contacts int
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers the events of a step and sends them to the listeners on flush
type Events struct {
	listeners map[EventType][]EventListener

	buffer []Event

	// pair tracking for Enter/Stay/Exit detection, the value is the contact count
	previousActivePairs map[pairKey]int
	currentActivePairs  map[pairKey]int

	sleepStates map[*actor.RigidBody]bool

	logger *slog.Logger
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]int),
		currentActivePairs:  make(map[pairKey]int),
		sleepStates:         make(map[*actor.RigidBody]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordPair marks the pair as touching during the current step. Called once per
// substep, the last count wins.
func (e *Events) recordPair(bodyA, bodyB *actor.RigidBody, contacts int) {
	e.currentActivePairs[makePairKey(bodyA, bodyB)] = contacts
}

// forget drops all tracking of a removed body
func (e *Events) forget(body *actor.RigidBody) {
	delete(e.sleepStates, body)
	for pair := range e.previousActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.currentActivePairs, pair)
		}
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit.
// Should be called after all substeps.
func (e *Events) processCollisionEvents() {
	for pair, contacts := range e.currentActivePairs {
		if pair.inactive() {
			continue
		}

		if _, ok := e.previousActivePairs[pair]; ok {
			if pair.isTrigger() {
				e.buffer = append(e.buffer, TriggerStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
			} else {
				e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB, Contacts: contacts})
			}
		} else {
			if pair.isTrigger() {
				e.buffer = append(e.buffer, TriggerEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
			} else {
				e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB, Contacts: contacts})
			}
		}
	}

	for pair, contacts := range e.previousActivePairs {
		if _, ok := e.currentActivePairs[pair]; ok {
			continue
		}
		// the broad phase skips resting pairs, they are still touching
		if pair.inactive() {
			e.currentActivePairs[pair] = contacts
			continue
		}

		if pair.isTrigger() {
			e.buffer = append(e.buffer, TriggerExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		if body.BodyType == actor.BodyTypeStatic {
			continue
		}

		sleeping := !body.IsAwake
		trackedState, exists := e.sleepStates[body]
		if !exists {
			e.sleepStates[body] = sleeping
			continue
		}

		if !trackedState && sleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: body})
			e.sleepStates[body] = true
			e.log("body fell asleep", body)
		} else if trackedState && !sleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: body})
			e.sleepStates[body] = false
			e.log("body woke up", body)
		}
	}
}

func (e *Events) log(msg string, body *actor.RigidBody) {
	if e.logger != nil {
		e.logger.Debug(msg, "body", body.Id, "position", body.Transform.Position)
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
