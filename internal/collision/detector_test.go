package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lostfound-server/internal/geom"
)

// TestFindGatherEvents_Literal reproduces the reference scenario's literal
// items/gatherers table and checks the exact ordered event list it produces.
func TestFindGatherEvents_Literal(t *testing.T) {
	items := []Item{
		{ID: 0, Position: geom.Point2D{X: 0.4, Y: 0.6}, Radius: 0},
		{ID: 1, Position: geom.Point2D{X: 0.6, Y: 0}, Radius: 0},
		{ID: 2, Position: geom.Point2D{X: 39.4, Y: 0.7}, Radius: 0},
		{ID: 3, Position: geom.Point2D{X: 10, Y: 10.4}, Radius: 0},
		{ID: 4, Position: geom.Point2D{X: 29.7, Y: 39.9}, Radius: 0.3},
		{ID: 5, Position: geom.Point2D{X: 3, Y: 2}, Radius: 1.4},
		{ID: 6, Position: geom.Point2D{X: 3, Y: 6}, Radius: 1.4},
	}

	gatherers := []Gatherer{
		{ID: 0, Start: geom.Point2D{X: 0, Y: 0.5}, End: geom.Point2D{X: 0, Y: 0.5}, Width: 0.6},
		{ID: 1, Start: geom.Point2D{X: 0.4, Y: 0}, End: geom.Point2D{X: 0.4, Y: 0}, Width: 0.6},
		{ID: 2, Start: geom.Point2D{X: 0, Y: 0}, End: geom.Point2D{X: 0.5, Y: 0}, Width: 0.6},
		{ID: 3, Start: geom.Point2D{X: 0.3, Y: 0.2}, End: geom.Point2D{X: 1.5, Y: 0.2}, Width: 0.6},
		{ID: 4, Start: geom.Point2D{X: 1.2, Y: 0}, End: geom.Point2D{X: 0, Y: 0}, Width: 0.6},
		{ID: 5, Start: geom.Point2D{X: 0, Y: 0.8}, End: geom.Point2D{X: 0, Y: 0}, Width: 0.6},
		{ID: 6, Start: geom.Point2D{X: 0, Y: 0}, End: geom.Point2D{X: 0, Y: 0}, Width: 0.6},
		{ID: 7, Start: geom.Point2D{X: 39, Y: 0}, End: geom.Point2D{X: 39.5, Y: 0}, Width: 0.6},
		{ID: 8, Start: geom.Point2D{X: 10, Y: 10}, End: geom.Point2D{X: 10, Y: 10.8}, Width: 0.6},
		{ID: 9, Start: geom.Point2D{X: 10, Y: 11}, End: geom.Point2D{X: 10, Y: 10.5}, Width: 0.6},
		{ID: 10, Start: geom.Point2D{X: 10, Y: 9.9}, End: geom.Point2D{X: 10, Y: 10.7}, Width: 0.6},
		{ID: 11, Start: geom.Point2D{X: 15, Y: 10}, End: geom.Point2D{X: 15, Y: 10.5}, Width: 0.6},
		{ID: 12, Start: geom.Point2D{X: 10, Y: 10}, End: geom.Point2D{X: 10, Y: 9.5}, Width: 0.6},
		{ID: 13, Start: geom.Point2D{X: 29.2, Y: 39}, End: geom.Point2D{X: 29.9, Y: 39}, Width: 0.6},
		{ID: 14, Start: geom.Point2D{X: 1, Y: 1}, End: geom.Point2D{X: 5, Y: 5}, Width: 0.6},
	}

	events := FindGatherEvents(items, gatherers)

	expected := []Event{
		{ItemID: 0, GathererID: 3, SqDistance: 0.16, Time: 0.083333333333333356},
		{ItemID: 1, GathererID: 3, SqDistance: 0.04, Time: 0.25},
		{ItemID: 0, GathererID: 5, SqDistance: 0.16, Time: 0.25},
		{ItemID: 5, GathererID: 14, SqDistance: 0.5, Time: 0.375},
		{ItemID: 1, GathererID: 4, SqDistance: 0, Time: 0.5},
		{ItemID: 3, GathererID: 8, SqDistance: 0, Time: 0.5},
		{ItemID: 3, GathererID: 10, SqDistance: 0, Time: 0.62500000000000078},
		{ItemID: 0, GathererID: 4, SqDistance: 0.36, Time: 0.66666666666666663},
		{ItemID: 4, GathererID: 13, SqDistance: 0.81, Time: 0.71428571428571508},
		{ItemID: 0, GathererID: 2, SqDistance: 0.36, Time: 0.8},
		{ItemID: 1, GathererID: 5, SqDistance: 0.36, Time: 1},
	}

	require.Len(t, events, len(expected))
	for i, exp := range expected {
		got := events[i]
		require.Equal(t, exp.ItemID, got.ItemID, "event %d item id", i)
		require.Equal(t, exp.GathererID, got.GathererID, "event %d gatherer id", i)
		require.InDelta(t, exp.SqDistance, got.SqDistance, 1e-9, "event %d sq_distance", i)
		require.InDelta(t, exp.Time, got.Time, 1e-9, "event %d time", i)
	}
}

func TestFindGatherEvents_ZeroLengthGathererNeverCollides(t *testing.T) {
	items := []Item{{ID: 0, Position: geom.Point2D{X: 5, Y: 5}, Radius: 10}}
	gatherers := []Gatherer{{ID: 0, Start: geom.Point2D{X: 5, Y: 5}, End: geom.Point2D{X: 5, Y: 5}, Width: 10}}

	events := FindGatherEvents(items, gatherers)
	require.Empty(t, events)
}
