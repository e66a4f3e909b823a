// Package config loads the JSON map-configuration file described in §6.2
// into a slice of ready-to-use model.Map values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"lostfound-server/internal/geom"
	"lostfound-server/internal/model"
)

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

type fileDoc struct {
	DefaultDogSpeed     float64    `json:"defaultDogSpeed"`
	DefaultBagCapacity  int        `json:"defaultBagCapacity"`
	LootGeneratorConfig lootGenDoc `json:"lootGeneratorConfig"`
	Maps                []mapDoc   `json:"maps"`
}

type lootGenDoc struct {
	Period      float64 `json:"period"`
	Probability float64 `json:"probability"`
}

type mapDoc struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	DogSpeed    *float64    `json:"dogSpeed"`
	BagCapacity *int        `json:"bagCapacity"`
	LootTypes   []lootType  `json:"lootTypes"`
	Roads       []roadDoc   `json:"roads"`
	Buildings   []buildDoc  `json:"buildings"`
	Offices     []officeDoc `json:"offices"`
}

type lootType struct {
	Value uint `json:"value"`
}

type roadDoc struct {
	X0 float64  `json:"x0"`
	Y0 float64  `json:"y0"`
	X1 *float64 `json:"x1"`
	Y1 *float64 `json:"y1"`
}

type buildDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type officeDoc struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Load reads a map-configuration file and returns one model.Map per entry.
// loot type counts are resolved as [0, len(lootTypes)) throughout (§9's
// off-by-one fix) rather than the original source's size-minus-one.
func Load(path string) ([]*model.Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc fileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	maps := make([]*model.Map, 0, len(doc.Maps))
	for i, md := range doc.Maps {
		if md.ID == "" {
			return nil, fmt.Errorf("config: maps[%d] missing id", i)
		}

		dogSpeed := doc.DefaultDogSpeed
		if md.DogSpeed != nil {
			dogSpeed = *md.DogSpeed
		}
		bagCapacity := doc.DefaultBagCapacity
		if md.BagCapacity != nil {
			bagCapacity = *md.BagCapacity
		}

		m := model.NewMap(model.MapID(md.ID), md.Name, dogSpeed, bagCapacity)

		for _, rd := range md.Roads {
			switch {
			case rd.X1 != nil:
				m.AddRoad(model.NewRoad(model.Horizontal, geom.Point2D{X: rd.X0, Y: rd.Y0}, *rd.X1))
			case rd.Y1 != nil:
				m.AddRoad(model.NewRoad(model.Vertical, geom.Point2D{X: rd.X0, Y: rd.Y0}, *rd.Y1))
			default:
				return nil, fmt.Errorf("config: map %q road %+v has neither x1 nor y1", md.ID, rd)
			}
		}

		for _, bd := range md.Buildings {
			m.AddBuilding(model.Building{Bounds: geom.Rect{
				Min: geom.Point2D{X: bd.X, Y: bd.Y},
				Max: geom.Point2D{X: bd.X + bd.W, Y: bd.Y + bd.H},
			}})
		}

		for _, od := range md.Offices {
			office := model.Office{
				ID:       od.ID,
				Position: geom.Point2D{X: od.X, Y: od.Y},
				OffsetX:  od.OffsetX,
				OffsetY:  od.OffsetY,
			}
			if err := m.AddOffice(office); err != nil {
				return nil, fmt.Errorf("config: map %q: %w", md.ID, err)
			}
		}

		values := make([]uint, len(md.LootTypes))
		for i, lt := range md.LootTypes {
			values[i] = lt.Value
		}
		m.LootSettings = model.LootSettings{
			Period:      secondsToDuration(doc.LootGeneratorConfig.Period),
			Probability: doc.LootGeneratorConfig.Probability,
			Values:      values,
		}

		maps = append(maps, m)
	}

	return maps, nil
}
