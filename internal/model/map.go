package model

import "fmt"

// MapID identifies a Map within the Game registry.
type MapID string

// Map is an immutable description of one playable level: its road graph,
// buildings, offices and loot configuration. A Map does not hold any live
// game state — that lives in a GameSession bound to it.
type Map struct {
	ID          MapID
	Name        string
	DogSpeed    float64
	BagCapacity int

	Roads     []Road
	Buildings []Building
	offices   []Office
	officeIDs map[string]struct{}

	LootSettings LootSettings
}

// NewMap creates an empty Map ready to have roads, buildings and offices
// added to it by a config loader.
func NewMap(id MapID, name string, dogSpeed float64, bagCapacity int) *Map {
	return &Map{
		ID:          id,
		Name:        name,
		DogSpeed:    dogSpeed,
		BagCapacity: bagCapacity,
		officeIDs:   make(map[string]struct{}),
	}
}

// AddRoad appends a road to the map's graph.
func (m *Map) AddRoad(r Road) { m.Roads = append(m.Roads, r) }

// AddBuilding appends a building. Buildings never affect movement (§3).
func (m *Map) AddBuilding(b Building) { m.Buildings = append(m.Buildings, b) }

// AddOffice appends an office, rejecting a duplicate ID without mutating the
// map — mirroring the original model's duplicate-check-before-insert pattern.
func (m *Map) AddOffice(o Office) error {
	if _, exists := m.officeIDs[o.ID]; exists {
		return fmt.Errorf("model: duplicate office id %q on map %q", o.ID, m.ID)
	}
	m.officeIDs[o.ID] = struct{}{}
	m.offices = append(m.offices, o)
	return nil
}

// Offices returns the map's offices.
func (m *Map) Offices() []Office { return m.offices }

// OfficeRadius is the fixed collection radius used when materializing an
// Office as a collision Item.
func OfficeRadius() float64 { return officeRadius }
