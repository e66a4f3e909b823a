package model

import (
	"fmt"
	"math/rand"
)

// Game is the static registry of Maps, plus the live GameSessions bound to
// them. At most one session exists per map (§3) — JoinSession creates it
// lazily on first use.
type Game struct {
	maps     map[MapID]*Map
	mapOrder []MapID
	sessions map[MapID]*GameSession

	// randomizeSpawnPoints controls whether AddDog picks a random road
	// (production) or always road 0 (deterministic tests), mirroring the
	// --randomize-spawn-points flag (§4.10).
	randomizeSpawnPoints bool
}

// NewGame creates an empty registry.
func NewGame(randomizeSpawnPoints bool) *Game {
	return &Game{
		maps:                 make(map[MapID]*Map),
		sessions:             make(map[MapID]*GameSession),
		randomizeSpawnPoints: randomizeSpawnPoints,
	}
}

// AddMap registers a map definition, rejecting duplicate IDs.
func (g *Game) AddMap(m *Map) error {
	if _, exists := g.maps[m.ID]; exists {
		return fmt.Errorf("model: duplicate map id %q", m.ID)
	}
	g.maps[m.ID] = m
	g.mapOrder = append(g.mapOrder, m.ID)
	return nil
}

// Maps returns every registered map, in registration order.
func (g *Game) Maps() []*Map {
	out := make([]*Map, 0, len(g.mapOrder))
	for _, id := range g.mapOrder {
		out = append(out, g.maps[id])
	}
	return out
}

// FindMap looks up a map by id.
func (g *Game) FindMap(id MapID) (*Map, bool) {
	m, ok := g.maps[id]
	return m, ok
}

// Session returns the live session for a map, if one has been created.
func (g *Game) Session(id MapID) (*GameSession, bool) {
	s, ok := g.sessions[id]
	return s, ok
}

// Sessions returns every currently live session.
func (g *Game) Sessions() []*GameSession {
	out := make([]*GameSession, 0, len(g.sessions))
	for _, s := range g.sessions {
		out = append(out, s)
	}
	return out
}

// JoinSession creates a GameSession for mapID on first use and returns it
// together with a freshly spawned Dog for name. rng seeds both session
// creation and the dog's spawn point; callers inject one per §5.
func (g *Game) JoinSession(mapID MapID, name string, rng *rand.Rand) (*GameSession, *Dog, error) {
	m, ok := g.maps[mapID]
	if !ok {
		return nil, nil, fmt.Errorf("model: unknown map id %q", mapID)
	}

	session, ok := g.sessions[mapID]
	if !ok {
		session = NewGameSession(m, rng)
		g.sessions[mapID] = session
	}

	var dog *Dog
	if g.randomizeSpawnPoints {
		dog = session.AddDog(name)
	} else {
		dog = session.addDogAtRoad(name, 0)
	}
	return session, dog, nil
}

// EnsureSession returns the session for mapID, creating an empty one if
// none exists yet. Used by Application.Import to rebuild sessions without
// spawning a dog the way JoinSession does.
func (g *Game) EnsureSession(mapID MapID, rng *rand.Rand) (*GameSession, error) {
	if _, ok := g.maps[mapID]; !ok {
		return nil, fmt.Errorf("model: unknown map id %q", mapID)
	}
	session, ok := g.sessions[mapID]
	if !ok {
		session = NewGameSession(g.maps[mapID], rng)
		g.sessions[mapID] = session
	}
	return session, nil
}

// Tick advances every live session.
func (g *Game) Tick(deltaMs float64) {
	for _, s := range g.sessions {
		s.Tick(deltaMs)
	}
}
