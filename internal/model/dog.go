package model

import (
	"fmt"

	"lostfound-server/internal/geom"
)

// FacingDirection is the avatar's current facing, independent of whether it
// is currently moving.
type FacingDirection string

const (
	North FacingDirection = "U"
	South FacingDirection = "D"
	West  FacingDirection = "L"
	East  FacingDirection = "R"
)

// FoundObject is an item id+type pair carried in a Dog's bag.
type FoundObject struct {
	ID   int
	Type uint
}

// DogID uniquely identifies a Dog within its GameSession.
type DogID uint32

// Dog is a player-controlled avatar.
type Dog struct {
	ID          DogID
	Name        string
	BagCapacity int

	Position         geom.Point2D
	PreviousPosition geom.Point2D
	Velocity         geom.Vec2D
	Direction        FacingDirection

	// CurrentRoad is the index, into the owning Map's Roads slice, of the
	// road the dog is currently considered to be travelling on.
	CurrentRoad int

	Bag   []FoundObject
	Score uint
}

// NewDog creates a Dog at the given spawn position, already associated with
// roadIndex.
func NewDog(id DogID, name string, bagCapacity int, pos geom.Point2D, roadIndex int) *Dog {
	return &Dog{
		ID:          id,
		Name:        name,
		BagCapacity: bagCapacity,
		Position:    pos,
		Direction:   North,
		CurrentRoad: roadIndex,
	}
}

// SetAction applies a move command (§4.5): "", "L", "R", "U", "D". speed is
// the map's dog_speed. An empty command zeros velocity but preserves facing.
// Any other value is an error the caller should surface as invalidArgument.
func (d *Dog) SetAction(dir string, speed float64) error {
	switch dir {
	case "":
		d.Velocity = geom.Vec2D{}
		return nil
	case string(West):
		d.Direction = West
		d.Velocity = geom.Vec2D{X: -speed, Y: 0}
	case string(East):
		d.Direction = East
		d.Velocity = geom.Vec2D{X: speed, Y: 0}
	case string(North):
		d.Direction = North
		d.Velocity = geom.Vec2D{X: 0, Y: -speed}
	case string(South):
		d.Direction = South
		d.Velocity = geom.Vec2D{X: 0, Y: speed}
	default:
		return fmt.Errorf("unknown move direction %q", dir)
	}
	return nil
}

// BagFull reports whether the bag has reached its capacity.
func (d *Dog) BagFull() bool {
	return len(d.Bag) >= d.BagCapacity
}

// PutToBag appends a found object, failing silently (returns false) if the
// bag is already full — callers check BagFull first per §4.4 step 3.
func (d *Dog) PutToBag(obj FoundObject) bool {
	if d.BagFull() {
		return false
	}
	d.Bag = append(d.Bag, obj)
	return true
}

// EmptyBag credits score for every carried item using the given value table
// (indexed by item type) and clears the bag. Score is monotonically
// non-decreasing (§3).
func (d *Dog) EmptyBag(values []uint) {
	for _, obj := range d.Bag {
		if int(obj.Type) < len(values) {
			d.Score += values[obj.Type]
		}
	}
	d.Bag = d.Bag[:0]
}

// Advance moves the dog by deltaMs milliseconds along roads, implementing the
// constrained-movement algorithm of §4.3, and returns the gatherer segment
// (previous position → new position) to feed the collision detector.
func (d *Dog) Advance(deltaMs float64, roads []Road) (prev, next geom.Point2D) {
	d.PreviousPosition = d.Position

	if d.Velocity.X == 0 && d.Velocity.Y == 0 {
		return d.Position, d.Position
	}

	dt := deltaMs / 1000.0
	candidate := d.Position.Add(d.Velocity.Scale(dt))

	current := roads[d.CurrentRoad]
	if !current.Contains(candidate) {
		if idx, ok := findTransition(roads, d.CurrentRoad, candidate); ok {
			d.CurrentRoad = idx
		}
		current = roads[d.CurrentRoad]
		candidate = clampToRoad(current, candidate, d)
	}

	d.Position = candidate
	return d.PreviousPosition, d.Position
}

// findTransition scans roads for one the avatar can transition onto from
// fromIdx given the tentative new position, per §4.3 step 3.
func findTransition(roads []Road, fromIdx int, pPrime geom.Point2D) (int, bool) {
	current := roads[fromIdx]
	for j, candidate := range roads {
		if j == fromIdx {
			continue
		}
		if canTransition(current, candidate, pPrime) {
			return j, true
		}
	}
	return fromIdx, false
}

// canTransition implements the two bullets of §4.3 step 3, generalized
// across direction pairs rather than duplicated per axis/sign (§9).
func canTransition(current, candidate Road, pPrime geom.Point2D) bool {
	curAlong := roadAxis(current.Direction)

	if candidate.Direction == current.Direction {
		// Collinear: candidate's start or end coincides with current's end or start.
		matches := approxEqual(axisCoord(candidate.End, curAlong), axisCoord(current.Start, curAlong)) ||
			approxEqual(axisCoord(candidate.Start, curAlong), axisCoord(current.End, curAlong))
		if !matches {
			return false
		}
	} else {
		// Perpendicular: candidate passes through one of current's axis endpoints.
		candFixed := axisCoord(candidate.Start, curAlong)
		matches := approxEqual(candFixed, axisCoord(current.Start, curAlong)) ||
			approxEqual(candFixed, axisCoord(current.End, curAlong))
		if !matches {
			return false
		}
	}

	return candidate.Contains(pPrime)
}

// clampToRoad clamps p to road's bounds along the axis of motion and zeros
// the corresponding velocity component on the dog if clamping occurred
// (§4.3 step 4 — the avatar has hit a dead end).
func clampToRoad(road Road, p geom.Point2D, d *Dog) geom.Point2D {
	bounds := road.Bounds()

	if d.Velocity.X != 0 {
		if p.X < bounds.Min.X {
			p.X = bounds.Min.X
			d.Velocity.X = 0
		} else if p.X > bounds.Max.X {
			p.X = bounds.Max.X
			d.Velocity.X = 0
		}
	}
	if d.Velocity.Y != 0 {
		if p.Y < bounds.Min.Y {
			p.Y = bounds.Min.Y
			d.Velocity.Y = 0
		} else if p.Y > bounds.Max.Y {
			p.Y = bounds.Max.Y
			d.Velocity.Y = 0
		}
	}
	return p
}

type axis int

const (
	axisX axis = iota
	axisY
)

func roadAxis(d Direction) axis {
	if d == Horizontal {
		return axisX
	}
	return axisY
}

func axisCoord(p geom.Point2D, a axis) float64 {
	if a == axisX {
		return p.X
	}
	return p.Y
}

func approxEqual(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < eps
}
