package app

import (
	"lostfound-server/internal/geom"
	"lostfound-server/internal/model"
)

func point(v [2]float64) geom.Point2D { return geom.Point2D{X: v[0], Y: v[1]} }
func vec(v [2]float64) geom.Vec2D     { return geom.Vec2D{X: v[0], Y: v[1]} }

// DogRecord is the flat, serializable shape of one Dog, used by the
// snapshot reader/writer (§4.6).
type DogRecord struct {
	ID          model.DogID
	Name        string
	BagCapacity int
	Position    [2]float64
	PrevPos     [2]float64
	Velocity    [2]float64
	Direction   string
	CurrentRoad int
	Score       uint
	Bag         []model.FoundObject
}

// SessionRecord is one map's live session, flattened for serialization.
type SessionRecord struct {
	MapID model.MapID
	Dogs  []DogRecord
	Loot  []model.LostObject
}

// PlayerRecord is one joined player plus their bearer token.
type PlayerRecord struct {
	ID    PlayerID
	Token Token
	Name  string
	MapID model.MapID
	DogID model.DogID
}

// State is the full snapshot of everything Application needs to resume
// after a restart: every joined player and every live session's dogs and
// loot. Static map definitions are not included — they are reloaded from
// the config file on every startup (§4.6, §4.7).
type State struct {
	Players  []PlayerRecord
	Sessions []SessionRecord
}

// Export captures the current state for persistence, on the strand so it
// never races a concurrent Tick or request.
func (a *Application) Export() State {
	state, _ := submit(a.strand, func() (State, *Error) {
		var st State
		for _, p := range a.players.all() {
			tok, _ := a.players.tokenOf(p.ID)
			st.Players = append(st.Players, PlayerRecord{
				ID: p.ID, Token: tok, Name: p.Name, MapID: p.MapID, DogID: p.DogID,
			})
		}
		for _, m := range a.game.Maps() {
			session, ok := a.game.Session(m.ID)
			if !ok {
				continue
			}
			rec := SessionRecord{MapID: m.ID}
			for _, d := range session.Dogs() {
				rec.Dogs = append(rec.Dogs, DogRecord{
					ID:          d.ID,
					Name:        d.Name,
					BagCapacity: d.BagCapacity,
					Position:    [2]float64{d.Position.X, d.Position.Y},
					PrevPos:     [2]float64{d.PreviousPosition.X, d.PreviousPosition.Y},
					Velocity:    [2]float64{d.Velocity.X, d.Velocity.Y},
					Direction:   string(d.Direction),
					CurrentRoad: d.CurrentRoad,
					Score:       d.Score,
					Bag:         d.Bag,
				})
			}
			rec.Loot = session.Loot.All()
			st.Sessions = append(st.Sessions, rec)
		}
		return st, nil
	})
	return state
}

// Import rebuilds player and session state from a snapshot. Called once,
// before the server starts accepting requests.
func (a *Application) Import(st State) *Error {
	return submitVoid(a.strand, func() *Error {
		for _, rec := range st.Sessions {
			session, err := a.game.EnsureSession(rec.MapID, a.simRng)
			if err != nil {
				return internal("%s", err)
			}
			for _, dr := range rec.Dogs {
				dog := &model.Dog{
					ID:               dr.ID,
					Name:             dr.Name,
					BagCapacity:      dr.BagCapacity,
					Position:         point(dr.Position),
					PreviousPosition: point(dr.PrevPos),
					Velocity:         vec(dr.Velocity),
					Direction:        model.FacingDirection(dr.Direction),
					CurrentRoad:      dr.CurrentRoad,
					Bag:              dr.Bag,
					Score:            dr.Score,
				}
				session.RestoreDog(dog)
			}
			for _, obj := range rec.Loot {
				session.Loot.Restore(obj)
			}
		}
		for _, pr := range st.Players {
			player := &Player{ID: pr.ID, Name: pr.Name, MapID: pr.MapID, DogID: pr.DogID}
			a.players.restore(player, pr.Token)
		}
		return nil
	})
}
