package app

import (
	"math/rand"
	"sort"

	"lostfound-server/internal/model"
)

// PlayerListEntry is the public shape of a player sharing a map's session.
type PlayerListEntry struct {
	DogID model.DogID
	Name  string
}

// DogState is the public shape of one dog's live state.
type DogState struct {
	DogID     model.DogID
	Name      string
	Position  [2]float64
	Velocity  [2]float64
	Direction string
	Score     uint
	Bag       []model.FoundObject
}

// MapSummary is the public, listing-only shape of a Map.
type MapSummary struct {
	ID   model.MapID
	Name string
}

// Application is the single entry point the HTTP layer talks to. Every
// method that touches game state dispatches onto the strand so concurrent
// HTTP requests never race with the tick loop or each other.
type Application struct {
	strand  *strand
	game    *model.Game
	players *players
	simRng  *rand.Rand
}

// New creates an Application. simRng drives map/dog/loot randomness;
// tokenRngA/B drive token minting. All three are caller-supplied (§5) —
// Application never reaches for math/rand's package-level default source.
func New(game *model.Game, simRng, tokenRngA, tokenRngB *rand.Rand) *Application {
	return &Application{
		strand:  newStrand(),
		game:    game,
		players: newPlayers(tokenRngA, tokenRngB),
		simRng:  simRng,
	}
}

// Close stops the strand goroutine. Callers should do this during shutdown,
// after they've stopped feeding it new Tick/request jobs.
func (a *Application) Close() { a.strand.Close() }

// ListMaps returns a summary of every registered map, independent of the
// strand since the map registry is immutable after startup.
func (a *Application) ListMaps() []MapSummary {
	maps := a.game.Maps()
	out := make([]MapSummary, 0, len(maps))
	for _, m := range maps {
		out = append(out, MapSummary{ID: m.ID, Name: m.Name})
	}
	return out
}

// FindMap looks up one map's static definition.
func (a *Application) FindMap(id model.MapID) (*model.Map, *Error) {
	m, ok := a.game.FindMap(id)
	if !ok {
		return nil, mapNotFound("no such map %q", id)
	}
	return m, nil
}

// JoinGame creates a player and a dog for them on mapID, returning a bearer
// token the caller must present on every subsequent call.
func (a *Application) JoinGame(mapID model.MapID, name string) (Token, PlayerID, model.DogID, *Error) {
	if name == "" {
		return "", 0, 0, invalidArgument("player name must not be empty")
	}
	if _, ok := a.game.FindMap(mapID); !ok {
		return "", 0, 0, mapNotFound("no such map %q", mapID)
	}

	type joinResult struct {
		tok   Token
		id    PlayerID
		dogID model.DogID
	}

	res, err := submit(a.strand, func() (joinResult, *Error) {
		_, dog, joinErr := a.game.JoinSession(mapID, name, a.simRng)
		if joinErr != nil {
			return joinResult{}, internal("%s", joinErr)
		}
		tok, player := a.players.add(name, mapID, dog.ID)
		return joinResult{tok: tok, id: player.ID, dogID: dog.ID}, nil
	})
	if err != nil {
		return "", 0, 0, err
	}
	return res.tok, res.id, res.dogID, nil
}

// SetPlayerAction applies a move command for the token's dog.
func (a *Application) SetPlayerAction(tok Token, dir string) *Error {
	return submitVoid(a.strand, func() *Error {
		player, rerr := a.players.resolve(tok)
		if rerr != nil {
			return rerr
		}
		session, ok := a.game.Session(player.MapID)
		if !ok {
			return internal("player %d has no session for map %q", player.ID, player.MapID)
		}
		dog := session.Dog(player.DogID)
		if dog == nil {
			return internal("player %d's dog %d is missing", player.ID, player.DogID)
		}
		m, _ := a.game.FindMap(player.MapID)
		if err := dog.SetAction(dir, m.DogSpeed); err != nil {
			return invalidArgument("%s", err)
		}
		return nil
	})
}

// GetPlayerList returns every player sharing the caller's map session.
func (a *Application) GetPlayerList(tok Token) ([]PlayerListEntry, *Error) {
	return submit(a.strand, func() ([]PlayerListEntry, *Error) {
		player, rerr := a.players.resolve(tok)
		if rerr != nil {
			return nil, rerr
		}
		var out []PlayerListEntry
		for _, p := range a.players.all() {
			if p.MapID != player.MapID {
				continue
			}
			out = append(out, PlayerListEntry{DogID: p.DogID, Name: p.Name})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].DogID < out[j].DogID })
		return out, nil
	})
}

// GetGameStateList returns the live state of every dog in the caller's map.
func (a *Application) GetGameStateList(tok Token) ([]DogState, *Error) {
	return submit(a.strand, func() ([]DogState, *Error) {
		player, rerr := a.players.resolve(tok)
		if rerr != nil {
			return nil, rerr
		}
		session, ok := a.game.Session(player.MapID)
		if !ok {
			return nil, internal("player %d has no session for map %q", player.ID, player.MapID)
		}
		var out []DogState
		for _, d := range session.Dogs() {
			out = append(out, DogState{
				DogID:     d.ID,
				Name:      d.Name,
				Position:  [2]float64{d.Position.X, d.Position.Y},
				Velocity:  [2]float64{d.Velocity.X, d.Velocity.Y},
				Direction: string(d.Direction),
				Score:     d.Score,
				Bag:       d.Bag,
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].DogID < out[j].DogID })
		return out, nil
	})
}

// GetLostObjects returns every item currently lying on the caller's map.
func (a *Application) GetLostObjects(tok Token) ([]model.LostObject, *Error) {
	return submit(a.strand, func() ([]model.LostObject, *Error) {
		player, rerr := a.players.resolve(tok)
		if rerr != nil {
			return nil, rerr
		}
		session, ok := a.game.Session(player.MapID)
		if !ok {
			return nil, internal("player %d has no session for map %q", player.ID, player.MapID)
		}
		out := session.Loot.All()
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out, nil
	})
}

// SessionSummary is the read-only debug view of one map's live session.
type SessionSummary struct {
	MapID     model.MapID
	Active    bool
	DogCount  int
	LootCount int
}

// DebugSessions reports per-map session occupancy for the /debug/maps
// introspection route. Read-only, dispatched on the strand like everything
// else that touches session state.
func (a *Application) DebugSessions() []SessionSummary {
	out, _ := submit(a.strand, func() ([]SessionSummary, *Error) {
		var summaries []SessionSummary
		for _, m := range a.game.Maps() {
			session, ok := a.game.Session(m.ID)
			if !ok {
				summaries = append(summaries, SessionSummary{MapID: m.ID, Active: false})
				continue
			}
			summaries = append(summaries, SessionSummary{
				MapID:     m.ID,
				Active:    true,
				DogCount:  len(session.Dogs()),
				LootCount: session.Loot.Count(),
			})
		}
		return summaries, nil
	})
	return out
}

// Tick advances every live session by deltaMs. Called by the server's
// ticker loop, never concurrently with itself or with a request job — the
// strand guarantees that ordering regardless of caller.
func (a *Application) Tick(deltaMs float64) {
	submitVoid(a.strand, func() *Error {
		a.game.Tick(deltaMs)
		return nil
	})
}
