package model

import (
	"math/rand"
	"sort"
	"time"

	"lostfound-server/internal/collision"
	"lostfound-server/internal/geom"
)

// gathererHalfWidth is the fixed collision half-width used when turning a
// Dog's movement segment into a collision.Gatherer. The same gatherer
// geometry is reused unchanged for both the pickup phase and the
// return-to-base phase (§4.4 steps 1, 3, 4).
const gathererHalfWidth = 0.3

// GameSession holds the live, mutable state for one Map: its dogs and the
// loot currently on the ground. Exactly one GameSession exists per active
// Map at a time (§3) — enforced by Game, not by GameSession itself.
type GameSession struct {
	Map  *Map
	Loot *Loot

	dogs      map[DogID]*Dog
	nextDogID DogID

	// rng is injected by the owner (Application via Game), never a process
	// global (§5) — this keeps GameSession deterministic under test.
	rng *rand.Rand
}

// NewGameSession creates a session bound to m, with loot spawning driven by
// rng. rng must not be nil.
func NewGameSession(m *Map, rng *rand.Rand) *GameSession {
	return &GameSession{
		Map:  m,
		Loot: NewLoot(m.LootSettings, func() float64 { return rng.Float64() }),
		dogs: make(map[DogID]*Dog),
		rng:  rng,
	}
}

// AddDog creates and registers a new Dog at a random point on a random road,
// matching the "join mid-road" spawn behaviour of §4.5.
func (s *GameSession) AddDog(name string) *Dog {
	id := s.nextDogID
	s.nextDogID++

	roadIdx := 0
	pos := geom.Point2D{}
	if len(s.Map.Roads) > 0 {
		roadIdx = s.rng.Intn(len(s.Map.Roads))
		pos = s.Map.Roads[roadIdx].RandomPoint(s.rng.Float64(), s.rng.Float64())
	}

	d := NewDog(id, name, s.Map.BagCapacity, pos, roadIdx)
	s.dogs[id] = d
	return d
}

// addDogAtRoad spawns a dog pinned to a fixed road index instead of a
// randomly chosen one, used when spawn-point randomization is disabled
// (§4.10 --randomize-spawn-points=false, the deterministic test mode).
func (s *GameSession) addDogAtRoad(name string, roadIdx int) *Dog {
	id := s.nextDogID
	s.nextDogID++

	pos := geom.Point2D{}
	if roadIdx >= 0 && roadIdx < len(s.Map.Roads) {
		pos = s.Map.Roads[roadIdx].Start
	} else {
		roadIdx = 0
	}

	d := NewDog(id, name, s.Map.BagCapacity, pos, roadIdx)
	s.dogs[id] = d
	return d
}

// RestoreDog inserts a fully-formed Dog, as produced by a snapshot reader,
// and advances nextDogID past it if necessary so future AddDog calls never
// collide with a restored id.
func (s *GameSession) RestoreDog(d *Dog) {
	s.dogs[d.ID] = d
	if d.ID >= s.nextDogID {
		s.nextDogID = d.ID + 1
	}
}

// Dog returns the dog with the given id, or nil if it does not exist.
func (s *GameSession) Dog(id DogID) *Dog { return s.dogs[id] }

// Dogs returns every dog in the session, in no particular order.
func (s *GameSession) Dogs() []*Dog {
	out := make([]*Dog, 0, len(s.dogs))
	for _, d := range s.dogs {
		out = append(out, d)
	}
	return out
}

type segment struct {
	dogID DogID
	prev  geom.Point2D
	next  geom.Point2D
}

// Tick advances the session by deltaMs milliseconds, running the full
// per-tick pipeline in order: move dogs, spawn loot, resolve pickups,
// resolve base returns (§4.4).
func (s *GameSession) Tick(deltaMs float64) {
	segments := s.moveDogs(deltaMs)

	s.spawnLoot(deltaMs)

	s.resolvePickups(segments)
	s.resolveBaseReturns(segments)
}

func (s *GameSession) moveDogs(deltaMs float64) []segment {
	segments := make([]segment, 0, len(s.dogs))
	for id, d := range s.dogs {
		prev, next := d.Advance(deltaMs, s.Map.Roads)
		segments = append(segments, segment{dogID: id, prev: prev, next: next})
	}
	return segments
}

func (s *GameSession) spawnLoot(deltaMs float64) {
	if len(s.Map.Roads) == 0 {
		return
	}
	posSource := func() (int, float64, float64) {
		return s.rng.Intn(len(s.Map.Roads)), s.rng.Float64(), s.rng.Float64()
	}
	typeSource := func() uint {
		return uint(s.rng.Int63())
	}
	s.Loot.Spawn(time.Duration(deltaMs*float64(time.Millisecond)), uint(len(s.dogs)), s.Map.Roads, posSource, typeSource)
}

// resolvePickups runs the collision detector between loot items and dog
// movement segments, then applies pickups per the chosen event-ordering
// policy (§9): events are processed in descending time order — last touch
// along the tick wins when a dog's path crosses the same item's vicinity
// more than once — except events at time≈1, the segment's very endpoint,
// which are processed last of all, nearest (smallest squared distance)
// first, so a dog's final
// sub-step never preempts an earlier, more certain pickup made by another
// dog during the same tick.
func (s *GameSession) resolvePickups(segments []segment) {
	lost := s.Loot.All()
	if len(lost) == 0 {
		return
	}

	citems := make([]collision.Item, 0, len(lost))
	for _, lo := range lost {
		citems = append(citems, collision.Item{ID: int(lo.ID), Position: lo.Position, Radius: 0})
	}

	gatherers := make([]collision.Gatherer, 0, len(segments))
	for i, seg := range segments {
		gatherers = append(gatherers, collision.Gatherer{ID: i, Start: seg.prev, End: seg.next, Width: gathererHalfWidth})
	}

	events := collision.FindGatherEvents(citems, gatherers)
	events = reorderForPickup(events)

	lostByID := make(map[LostObjectID]LostObject, len(lost))
	for _, lo := range lost {
		lostByID[lo.ID] = lo
	}

	for _, ev := range events {
		seg := segments[ev.GathererID]
		dog := s.dogs[seg.dogID]
		if dog == nil || dog.BagFull() {
			continue
		}
		obj, ok := lostByID[LostObjectID(ev.ItemID)]
		if !ok {
			continue
		}
		if dog.PutToBag(FoundObject{ID: int(obj.ID), Type: obj.Type}) {
			s.Loot.Remove(obj.ID)
			delete(lostByID, obj.ID)
		}
	}
}

// reorderForPickup inverts the detector's ascending time order to descending
// (§9's "last touch wins"), except events at time≈1 are carved out and
// appended at the end, sorted by SqDistance ascending, instead of being
// inverted with the rest.
func reorderForPickup(events []collision.Event) []collision.Event {
	const eps = 1e-9

	var normal, atEnd []collision.Event
	for _, ev := range events {
		if ev.Time >= 1-eps {
			atEnd = append(atEnd, ev)
		} else {
			normal = append(normal, ev)
		}
	}

	sort.SliceStable(normal, func(i, j int) bool { return normal[i].Time > normal[j].Time })
	sort.SliceStable(atEnd, func(i, j int) bool { return atEnd[i].SqDistance < atEnd[j].SqDistance })

	return append(normal, atEnd...)
}

// resolveBaseReturns credits score for every dog whose movement segment this
// tick crossed an office, then empties its bag.
func (s *GameSession) resolveBaseReturns(segments []segment) {
	offices := s.Map.Offices()
	if len(offices) == 0 {
		return
	}

	citems := make([]collision.Item, 0, len(offices))
	for i, o := range offices {
		citems = append(citems, collision.Item{ID: i, Position: o.Position, Radius: officeRadius})
	}

	gatherers := make([]collision.Gatherer, 0, len(segments))
	for i, seg := range segments {
		gatherers = append(gatherers, collision.Gatherer{ID: i, Start: seg.prev, End: seg.next, Width: gathererHalfWidth})
	}

	events := collision.FindGatherEvents(citems, gatherers)
	for _, ev := range events {
		seg := segments[ev.GathererID]
		dog := s.dogs[seg.dogID]
		if dog == nil {
			continue
		}
		dog.EmptyBag(s.Map.LootSettings.Values)
	}
}
