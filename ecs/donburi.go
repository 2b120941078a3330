package ecs

import (
	"github.com/phanxgames/treebloom"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// PhaseEventType is the Donburi event type for treebloom phase changes.
var PhaseEventType = events.NewEventType[treebloom.PhaseEvent]()

// PhaseState is the component mirroring the scene's current phase.
type PhaseState struct {
	Phase treebloom.Phase
	// Since is the scene time of the last change, in seconds.
	Since float64
	// Changes counts phase changes seen so far.
	Changes int
}

// PhaseComponent holds the PhaseState singleton created by NewDonburiStore.
var PhaseComponent = donburi.NewComponentType[PhaseState]()

var phaseQuery = donburi.NewQuery(filter.Contains(PhaseComponent))

type donburiStore struct {
	world  donburi.World
	entity donburi.Entity
}

// NewDonburiStore creates an EntityStore backed by a Donburi world. It adds
// one entity carrying PhaseComponent. Phase events are published to
// PhaseEventType and can be consumed with events.Subscribe and
// ProcessEvents.
func NewDonburiStore(world donburi.World) treebloom.EntityStore {
	return &donburiStore{world: world, entity: world.Create(PhaseComponent)}
}

func (s *donburiStore) EmitPhase(event treebloom.PhaseEvent) {
	if s.world.Valid(s.entity) {
		st := PhaseComponent.Get(s.world.Entry(s.entity))
		st.Phase = event.To
		st.Since = event.Time
		st.Changes++
	}
	PhaseEventType.Publish(s.world, event)
}

// CurrentPhase returns the PhaseState of world, if a store was attached.
func CurrentPhase(world donburi.World) (PhaseState, bool) {
	entry, ok := phaseQuery.First(world)
	if !ok {
		return PhaseState{}, false
	}
	return *PhaseComponent.Get(entry), true
}
