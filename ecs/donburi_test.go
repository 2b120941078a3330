package ecs

import (
	"testing"

	"github.com/phanxgames/treebloom"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
	st, ok := CurrentPhase(world)
	if !ok {
		t.Fatal("expected a phase entity")
	}
	if st.Phase != treebloom.PhaseTree || st.Changes != 0 {
		t.Errorf("initial state: %+v", st)
	}
}

func TestDonburiStore_EmitPhase(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []treebloom.PhaseEvent
	PhaseEventType.Subscribe(world, func(w donburi.World, e treebloom.PhaseEvent) {
		received = append(received, e)
	})

	store.EmitPhase(treebloom.PhaseEvent{From: treebloom.PhaseTree, To: treebloom.PhaseBlooming, Time: 1})
	store.EmitPhase(treebloom.PhaseEvent{From: treebloom.PhaseBlooming, To: treebloom.PhaseNebula, Progress: 1, Time: 3.5})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("expected no events before ProcessEvents, got %d", len(received))
	}
	PhaseEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[1].To != treebloom.PhaseNebula || received[1].Progress != 1 {
		t.Errorf("event 1: %+v", received[1])
	}

	st, _ := CurrentPhase(world)
	if st.Phase != treebloom.PhaseNebula || st.Since != 3.5 || st.Changes != 2 {
		t.Errorf("state after events: %+v", st)
	}
}

func TestDonburiStore_SceneIntegration(t *testing.T) {
	world := donburi.NewWorld()
	cfg := treebloom.DefaultSceneConfig()
	cfg.Particles.Count = 10
	cfg.Ornaments.Count = 5
	cfg.Seed = 1
	scene := treebloom.NewScene(cfg)
	scene.SetEntityStore(NewDonburiStore(world))

	var phases []treebloom.Phase
	PhaseEventType.Subscribe(world, func(w donburi.World, e treebloom.PhaseEvent) {
		phases = append(phases, e.To)
	})

	scene.InjectGesture(treebloom.GestureOpenPalm)
	for i := 0; i < 200; i++ {
		scene.Update(1.0 / 60)
	}
	events.ProcessAllEvents(world)

	if len(phases) != 2 || phases[0] != treebloom.PhaseBlooming || phases[1] != treebloom.PhaseNebula {
		t.Errorf("phases = %v, want [blooming nebula]", phases)
	}
}

func TestDonburiStore_ImplementsEntityStore(t *testing.T) {
	world := donburi.NewWorld()
	var store treebloom.EntityStore = NewDonburiStore(world)
	_ = store // compile-time interface check
}
