package app

import (
	"fmt"
	"math/rand"

	"lostfound-server/internal/model"
)

// PlayerID identifies a joined player for the lifetime of the process.
type PlayerID uint32

// Token is the opaque bearer credential returned by JoinGame and required
// on every subsequent per-player call.
type Token string

// Player binds a human-visible name to a Dog in a particular map's session.
type Player struct {
	ID    PlayerID
	Name  string
	MapID model.MapID
	DogID model.DogID
}

// players is the in-memory registry of joined players and their tokens. It
// is only ever touched from the strand goroutine, so it carries no locking
// of its own (§5).
type players struct {
	byID    map[PlayerID]*Player
	byToken map[Token]PlayerID
	nextID  PlayerID

	tokenRngA *rand.Rand
	tokenRngB *rand.Rand
}

func newPlayers(tokenRngA, tokenRngB *rand.Rand) *players {
	return &players{
		byID:      make(map[PlayerID]*Player),
		byToken:   make(map[Token]PlayerID),
		tokenRngA: tokenRngA,
		tokenRngB: tokenRngB,
	}
}

// add registers a new player and mints a token for them. Token generation
// draws from two independently seeded generators (§9) rather than a single
// source or a UUID library, and retries on the vanishingly unlikely chance
// of a collision.
func (p *players) add(name string, mapID model.MapID, dogID model.DogID) (Token, *Player) {
	id := p.nextID
	p.nextID++

	player := &Player{ID: id, Name: name, MapID: mapID, DogID: dogID}
	p.byID[id] = player

	var tok Token
	for {
		tok = p.mintToken()
		if _, taken := p.byToken[tok]; !taken {
			break
		}
	}
	p.byToken[tok] = id

	return tok, player
}

func (p *players) mintToken() Token {
	return Token(fmt.Sprintf("%016x%016x", p.tokenRngA.Uint64(), p.tokenRngB.Uint64()))
}

// resolve maps a bearer token to its player, per §7: a malformed token
// (wrong length, non-hex) is invalidToken; a well-formed but unbound one is
// unknownToken.
func (p *players) resolve(tok Token) (*Player, *Error) {
	if !isValidTokenShape(tok) {
		return nil, invalidToken("malformed token")
	}
	id, ok := p.byToken[tok]
	if !ok {
		return nil, unknownToken("unknown token")
	}
	return p.byID[id], nil
}

func isValidTokenShape(tok Token) bool {
	if len(tok) != 32 {
		return false
	}
	for _, c := range tok {
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isHex {
			return false
		}
	}
	return true
}

// restore inserts a player+token pair read back from a snapshot.
func (p *players) restore(player *Player, tok Token) {
	p.byID[player.ID] = player
	p.byToken[tok] = player.ID
	if player.ID >= p.nextID {
		p.nextID = player.ID + 1
	}
}

// tokenOf returns the bearer token currently bound to a player, if any.
func (p *players) tokenOf(id PlayerID) (Token, bool) {
	for tok, pid := range p.byToken {
		if pid == id {
			return tok, true
		}
	}
	return "", false
}

// all returns every joined player, in join order.
func (p *players) all() []*Player {
	out := make([]*Player, 0, len(p.byID))
	for id := PlayerID(0); id < p.nextID; id++ {
		if pl, ok := p.byID[id]; ok {
			out = append(out, pl)
		}
	}
	return out
}
