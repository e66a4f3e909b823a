// Package collision implements pickup-event detection against moving
// line segments, matching the behaviour of the original game server's
// collision_detector component.
package collision

import (
	"sort"

	"github.com/sirupsen/logrus"

	"lostfound-server/internal/geom"
	"lostfound-server/pkg/logger"
)

// epsilon is the tolerance used for the projection-parameter and
// squared-distance comparisons below.
const epsilon = 1e-10

// Item is a point with a collection radius — a lost object or a base.
type Item struct {
	ID       int
	Position geom.Point2D
	Radius   float64
}

// Gatherer is a line segment a dog travels during one tick.
type Gatherer struct {
	ID       int
	Start    geom.Point2D
	End      geom.Point2D
	Width    float64
}

// Event records one (item, gatherer) pair that collided during the tick.
type Event struct {
	ItemID     int
	GathererID int
	SqDistance float64
	Time       float64
}

// tryCollect computes the collision result for one item/gatherer pair.
// It mirrors collision_detector.h's TryCollectPoint + CollectionResult.IsCollected.
func tryCollect(item Item, g Gatherer) (Event, bool) {
	d := g.End.Sub(g.Start)
	sqLen := d.SqLen()
	if sqLen == 0 {
		return Event{}, false
	}

	toItem := item.Position.Sub(g.Start)
	t := toItem.Dot(d) / sqLen

	if t < -epsilon || t > 1+epsilon {
		return Event{}, false
	}

	clampedT := t
	if clampedT < 0 {
		clampedT = 0
	} else if clampedT > 1 {
		clampedT = 1
	}

	closest := g.Start.Add(d.Scale(clampedT))
	sqDist := item.Position.Sub(closest).SqLen()

	limit := item.Radius + g.Width
	if sqDist > limit*limit+epsilon {
		return Event{}, false
	}

	return Event{
		ItemID:     item.ID,
		GathererID: g.ID,
		SqDistance: sqDist,
		Time:       clampedT,
	}, true
}

// FindGatherEvents enumerates every (item, gatherer) collision in the tick,
// sorted by Time ascending with SqDistance as the tiebreak (§4.1).
func FindGatherEvents(items []Item, gatherers []Gatherer) []Event {
	detLogger := logger.Log.WithFields(logrus.Fields{
		"component": "collision_detector",
		"items":     len(items),
		"gatherers": len(gatherers),
	})
	detLogger.Debug("scanning for gather events")

	events := make([]Event, 0)
	for _, it := range items {
		for _, g := range gatherers {
			if ev, ok := tryCollect(it, g); ok {
				events = append(events, ev)
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if timesEqual(events[i].Time, events[j].Time) {
			return events[i].SqDistance < events[j].SqDistance
		}
		return events[i].Time < events[j].Time
	})

	detLogger.WithField("events", len(events)).Debug("gather events found")
	return events
}

func timesEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < epsilon
}
