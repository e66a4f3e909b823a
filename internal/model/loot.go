package model

import (
	"time"

	"lostfound-server/internal/geom"
	"lostfound-server/internal/loot"
)

// LostObjectID identifies a spawned item within a GameSession.
type LostObjectID int

// LostObject is an item lying on the map, not yet picked up by any dog.
type LostObject struct {
	ID       LostObjectID
	Type     uint
	Position geom.Point2D
}

// LootSettings configures a map's loot-spawn behaviour (§4.2, §6.2).
type LootSettings struct {
	Period      time.Duration
	Probability float64
	Values      []uint
}

// Loot owns the spawn generator and the live set of LostObjects for one map.
// It wraps internal/loot.Generator with position/id bookkeeping; the
// generator itself never reaches for a process-global random source (§5) —
// the random sources passed to NewLoot and Spawn are supplied by the owning
// GameSession.
type Loot struct {
	settings LootSettings
	gen      *loot.Generator
	nextID   LostObjectID
	objects  map[LostObjectID]LostObject
}

// NewLoot builds a Loot for a map. source is injected rather than read from
// a global, matching the rest of the simulation's RNG discipline.
func NewLoot(settings LootSettings, source loot.Source) *Loot {
	return &Loot{
		settings: settings,
		gen:      loot.New(settings.Period, settings.Probability, source),
		objects:  make(map[LostObjectID]LostObject),
	}
}

// TypeCount returns how many distinct loot types this map's values table has.
func (l *Loot) TypeCount() int { return len(l.settings.Values) }

// ValueOf returns the score value of a loot type, or 0 if out of range.
func (l *Loot) ValueOf(lootType uint) uint {
	if int(lootType) >= len(l.settings.Values) {
		return 0
	}
	return l.settings.Values[lootType]
}

// Count returns the number of items currently lying on the map.
func (l *Loot) Count() int { return len(l.objects) }

// All returns every live LostObject, in no particular order.
func (l *Loot) All() []LostObject {
	out := make([]LostObject, 0, len(l.objects))
	for _, o := range l.objects {
		out = append(out, o)
	}
	return out
}

// Remove deletes an item, e.g. once it has been picked up.
func (l *Loot) Remove(id LostObjectID) {
	delete(l.objects, id)
}

// Restore inserts a LostObject read back from a snapshot and advances
// nextID past it so future spawns never reuse a restored id.
func (l *Loot) Restore(obj LostObject) {
	l.objects[obj.ID] = obj
	if obj.ID >= l.nextID {
		l.nextID = obj.ID + 1
	}
}

// Spawn runs one generation step (§4.2) and materializes the resulting
// number of items at random positions on roads, picking a uniformly random
// type for each from typeSource, reduced modulo TypeCount() into
// [0, TypeCount()).
func (l *Loot) Spawn(timeDelta time.Duration, looterCount uint, roads []Road, posSource func() (roadIdx int, u, v float64), typeSource func() uint) {
	n := l.gen.Generate(timeDelta, uint(l.Count()), looterCount)
	for i := uint(0); i < n; i++ {
		roadIdx, u, v := posSource()
		if roadIdx < 0 || roadIdx >= len(roads) {
			continue
		}
		pos := roads[roadIdx].RandomPoint(u, v)
		lootType := typeSource()
		if l.TypeCount() > 0 {
			lootType = lootType % uint(l.TypeCount())
		} else {
			lootType = 0
		}
		l.objects[l.nextID] = LostObject{ID: l.nextID, Type: lootType, Position: pos}
		l.nextID++
	}
}
