package app

import (
	"math/rand"
	"testing"

	"lostfound-server/internal/geom"
	"lostfound-server/internal/model"
)

func newTestApp(t *testing.T) (*Application, model.MapID) {
	t.Helper()

	m := model.NewMap("map1", "Town", 2, 3)
	m.AddRoad(model.NewRoad(model.Horizontal, geom.Point2D{X: 0, Y: 0}, 40))
	m.LootSettings = model.LootSettings{Probability: 0, Values: []uint{10}}

	game := model.NewGame(false)
	if err := game.AddMap(m); err != nil {
		t.Fatalf("AddMap: %v", err)
	}

	a := New(game, rand.New(rand.NewSource(1)), rand.New(rand.NewSource(2)), rand.New(rand.NewSource(3)))
	t.Cleanup(a.Close)
	return a, m.ID
}

func TestJoinGameRejectsUnknownMap(t *testing.T) {
	a, _ := newTestApp(t)
	_, _, _, err := a.JoinGame("no-such-map", "Alice")
	if err == nil || err.Kind != KindMapNotFound {
		t.Fatalf("want KindMapNotFound, got %+v", err)
	}
}

func TestJoinGameRejectsEmptyName(t *testing.T) {
	a, mapID := newTestApp(t)
	_, _, _, err := a.JoinGame(mapID, "")
	if err == nil || err.Kind != KindInvalidArgument {
		t.Fatalf("want KindInvalidArgument, got %+v", err)
	}
}

func TestJoinGameThenSetPlayerAction(t *testing.T) {
	a, mapID := newTestApp(t)

	tok, _, dogID, err := a.JoinGame(mapID, "Alice")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if len(tok) != 32 {
		t.Fatalf("want a 32-char token, got %q", tok)
	}

	if err := a.SetPlayerAction(tok, "R"); err != nil {
		t.Fatalf("SetPlayerAction: %v", err)
	}

	states, err := a.GetGameStateList(tok)
	if err != nil {
		t.Fatalf("GetGameStateList: %v", err)
	}
	if len(states) != 1 || states[0].DogID != dogID {
		t.Fatalf("want one dog state for %d, got %+v", dogID, states)
	}
	if states[0].Velocity[0] <= 0 {
		t.Fatalf("want positive X velocity after moving right, got %+v", states[0].Velocity)
	}
}

func TestSetPlayerActionRejectsMalformedToken(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.SetPlayerAction("not-a-real-token", "R")
	if err == nil || err.Kind != KindInvalidToken {
		t.Fatalf("want KindInvalidToken, got %+v", err)
	}
}

func TestSetPlayerActionRejectsWellFormedUnboundToken(t *testing.T) {
	a, _ := newTestApp(t)
	unbound := Token("0123456789abcdef0123456789abcdef")
	err := a.SetPlayerAction(unbound, "R")
	if err == nil || err.Kind != KindUnknownToken {
		t.Fatalf("want KindUnknownToken, got %+v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	a, mapID := newTestApp(t)

	tok, _, dogID, err := a.JoinGame(mapID, "Alice")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if err := a.SetPlayerAction(tok, "R"); err != nil {
		t.Fatalf("SetPlayerAction: %v", err)
	}
	a.Tick(1000)

	state := a.Export()

	game := model.NewGame(false)
	m := model.NewMap(mapID, "Town", 2, 3)
	m.AddRoad(model.NewRoad(model.Horizontal, geom.Point2D{X: 0, Y: 0}, 40))
	if err := game.AddMap(m); err != nil {
		t.Fatalf("AddMap: %v", err)
	}
	b := New(game, rand.New(rand.NewSource(9)), rand.New(rand.NewSource(9)), rand.New(rand.NewSource(9)))
	t.Cleanup(b.Close)

	if err := b.Import(state); err != nil {
		t.Fatalf("Import: %v", err)
	}

	restored, err := b.GetGameStateList(tok)
	if err != nil {
		t.Fatalf("GetGameStateList after import: %v", err)
	}
	if len(restored) != 1 || restored[0].DogID != dogID {
		t.Fatalf("want restored dog %d, got %+v", dogID, restored)
	}
	if restored[0].Position[0] != 2 {
		t.Fatalf("want restored position x=2 (moved one tick at speed 2), got %+v", restored[0].Position)
	}
}
