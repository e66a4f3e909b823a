package model

import (
	"math/rand"
	"testing"

	"lostfound-server/internal/collision"
	"lostfound-server/internal/geom"
)

// straightMap builds a single horizontal road from (0,0) to (40,0), matching
// the deterministic spawn-point fixture used throughout these scenarios.
func straightMap() *Map {
	m := NewMap("map1", "Straight", 2, 3)
	m.AddRoad(NewRoad(Horizontal, geom.Point2D{X: 0, Y: 0}, 40))
	m.LootSettings = LootSettings{Probability: 0, Values: []uint{10, 20}}
	return m
}

// lShapedMap adds a vertical branch at x=40 so a dog travelling east along
// the horizontal road can transition onto it.
func lShapedMap() *Map {
	m := NewMap("map2", "L-Shaped", 2, 3)
	m.AddRoad(NewRoad(Horizontal, geom.Point2D{X: 0, Y: 0}, 40))
	m.AddRoad(NewRoad(Vertical, geom.Point2D{X: 40, Y: 0}, 30))
	m.LootSettings = LootSettings{Probability: 0, Values: []uint{10}}
	return m
}

func TestJoinThenMoveAdvancesByExactlyDogSpeed(t *testing.T) {
	m := straightMap()
	session := NewGameSession(m, rand.New(rand.NewSource(1)))
	dog := session.addDogAtRoad("Alice", 0)

	if dog.Position != (geom.Point2D{X: 0, Y: 0}) {
		t.Fatalf("expected deterministic spawn at road start, got %+v", dog.Position)
	}

	if err := dog.SetAction("R", m.DogSpeed); err != nil {
		t.Fatalf("SetAction: %v", err)
	}

	session.Tick(1000)

	want := geom.Point2D{X: m.DogSpeed, Y: 0}
	if dog.Position != want {
		t.Fatalf("after a 1000ms tick at dog_speed=%v, want position %+v, got %+v", m.DogSpeed, want, dog.Position)
	}
}

func TestRoadTransitionOntoPerpendicularBranch(t *testing.T) {
	m := lShapedMap()
	session := NewGameSession(m, rand.New(rand.NewSource(1)))
	dog := session.addDogAtRoad("Alice", 0)

	// Drive the dog to the far end of the horizontal road, one tick at a time,
	// so it clamps at the L joint rather than overshooting past it.
	if err := dog.SetAction("R", m.DogSpeed); err != nil {
		t.Fatalf("SetAction: %v", err)
	}
	for i := 0; i < 25; i++ {
		session.Tick(1000)
		if dog.Velocity.X == 0 && dog.Velocity.Y == 0 {
			break
		}
	}

	if dog.Position.X != 40.4 {
		t.Fatalf("expected dog to clamp at x=40.4 (road half-width past the joint), got %+v", dog.Position)
	}
	if dog.CurrentRoad != 0 {
		t.Fatalf("expected dog to still be considered on the horizontal road after clamping, got road %d", dog.CurrentRoad)
	}

	// Now turn onto the vertical branch: the dog is within the branch's
	// perpendicular band (x in [39.6, 40.4]) so the transition should succeed.
	dog.Position = geom.Point2D{X: 40, Y: 0}
	dog.CurrentRoad = 0
	if err := dog.SetAction("D", m.DogSpeed); err != nil {
		t.Fatalf("SetAction: %v", err)
	}
	session.Tick(1000)

	if dog.CurrentRoad != 1 {
		t.Fatalf("expected transition onto the vertical road (index 1), got road %d", dog.CurrentRoad)
	}
	if dog.Position.Y != m.DogSpeed {
		t.Fatalf("expected dog to have moved south by dog_speed after transitioning, got %+v", dog.Position)
	}
}

func TestPickupFillsBagThenStopsAtCapacity(t *testing.T) {
	m := straightMap()
	m.BagCapacity = 1
	session := NewGameSession(m, rand.New(rand.NewSource(1)))
	dog := session.addDogAtRoad("Alice", 0)
	dog.BagCapacity = 1

	session.Loot.Restore(LostObject{ID: 0, Type: 0, Position: geom.Point2D{X: 1, Y: 0}})
	session.Loot.Restore(LostObject{ID: 1, Type: 1, Position: geom.Point2D{X: 2, Y: 0}})

	if err := dog.SetAction("R", m.DogSpeed); err != nil {
		t.Fatalf("SetAction: %v", err)
	}
	session.Tick(1000)

	if len(dog.Bag) != 1 {
		t.Fatalf("expected exactly one item picked up this tick (bag capacity 1), got %d", len(dog.Bag))
	}
	if dog.Bag[0].ID != 0 {
		t.Fatalf("expected the nearer item (id 0) to be picked up first, got id %d", dog.Bag[0].ID)
	}
	if session.Loot.Count() != 1 {
		t.Fatalf("expected the second item to remain on the ground, got %d items left", session.Loot.Count())
	}
}

func TestReturnToBaseCreditsScoreAndEmptiesBag(t *testing.T) {
	m := straightMap()
	if err := m.AddOffice(Office{ID: "base", Position: geom.Point2D{X: 5, Y: 0}}); err != nil {
		t.Fatalf("AddOffice: %v", err)
	}

	session := NewGameSession(m, rand.New(rand.NewSource(1)))
	dog := session.addDogAtRoad("Alice", 0)
	dog.Position = geom.Point2D{X: 4, Y: 0}
	dog.Bag = []FoundObject{{ID: 0, Type: 0}, {ID: 1, Type: 1}}

	if err := dog.SetAction("R", m.DogSpeed); err != nil {
		t.Fatalf("SetAction: %v", err)
	}
	session.Tick(1000)

	wantScore := m.LootSettings.Values[0] + m.LootSettings.Values[1]
	if dog.Score != wantScore {
		t.Fatalf("expected score %d after returning to base, got %d", wantScore, dog.Score)
	}
	if len(dog.Bag) != 0 {
		t.Fatalf("expected bag to be emptied after a base return, got %d items", len(dog.Bag))
	}
}

func TestReorderForPickupInvertsTimeExceptAtSegmentEnd(t *testing.T) {
	events := []collision.Event{
		{ItemID: 1, Time: 0.25},
		{ItemID: 2, Time: 0.75},
		{ItemID: 3, Time: 1.0}, // the segment's endpoint: carved out, not inverted
	}

	got := reorderForPickup(events)

	wantOrder := []int{2, 1, 3}
	for i, ev := range got {
		if ev.ItemID != wantOrder[i] {
			t.Fatalf("position %d: want item %d, got item %d (full order %+v)", i, wantOrder[i], ev.ItemID, got)
		}
	}
}
