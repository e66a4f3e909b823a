package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"lostfound-server/internal/app"
	"lostfound-server/internal/geom"
	"lostfound-server/internal/model"
)

// Load reads a snapshot previously written by Save. A missing file is
// reported as the os.Open error, unwrapped, so callers that want "start
// fresh if there's nothing to restore" can check os.IsNotExist on it.
func Load(path string) (app.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return app.State{}, err
	}
	defer f.Close()
	return readBinary(f)
}

func readBinary(r io.Reader) (app.State, error) {
	var header fileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return app.State{}, fmt.Errorf("snapshot: read header: %w", err)
	}
	if string(header.Magic[:]) != magicHeader {
		return app.State{}, fmt.Errorf("snapshot: bad magic")
	}
	if header.Version != version1 {
		return app.State{}, fmt.Errorf("snapshot: unsupported version %d", header.Version)
	}

	var state app.State

	for i := int32(0); i < header.PlayerCount; i++ {
		tok, err := readString(r)
		if err != nil {
			return app.State{}, fmt.Errorf("player %d token: %w", i, err)
		}
		name, err := readString(r)
		if err != nil {
			return app.State{}, fmt.Errorf("player %d name: %w", i, err)
		}
		mapID, err := readString(r)
		if err != nil {
			return app.State{}, fmt.Errorf("player %d map id: %w", i, err)
		}
		var ph playerHeader
		if err := binary.Read(r, binary.LittleEndian, &ph); err != nil {
			return app.State{}, fmt.Errorf("player %d header: %w", i, err)
		}
		state.Players = append(state.Players, app.PlayerRecord{
			ID:    app.PlayerID(ph.ID),
			Token: app.Token(tok),
			Name:  name,
			MapID: model.MapID(mapID),
			DogID: model.DogID(ph.DogID),
		})
	}

	for i := int32(0); i < header.SessionCount; i++ {
		mapID, err := readString(r)
		if err != nil {
			return app.State{}, fmt.Errorf("session %d map id: %w", i, err)
		}
		var sh sessionHeader
		if err := binary.Read(r, binary.LittleEndian, &sh); err != nil {
			return app.State{}, fmt.Errorf("session %d header: %w", i, err)
		}

		rec := app.SessionRecord{MapID: model.MapID(mapID)}

		for j := int32(0); j < sh.DogCount; j++ {
			var dh dogHeader
			if err := binary.Read(r, binary.LittleEndian, &dh); err != nil {
				return app.State{}, fmt.Errorf("session %d dog %d header: %w", i, j, err)
			}
			name, err := readString(r)
			if err != nil {
				return app.State{}, fmt.Errorf("session %d dog %d name: %w", i, j, err)
			}
			direction, err := readString(r)
			if err != nil {
				return app.State{}, fmt.Errorf("session %d dog %d direction: %w", i, j, err)
			}
			dr := app.DogRecord{
				ID:          model.DogID(dh.ID),
				Name:        name,
				BagCapacity: int(dh.BagCapacity),
				Position:    [2]float64{dh.PosX, dh.PosY},
				PrevPos:     [2]float64{dh.PrevX, dh.PrevY},
				Velocity:    [2]float64{dh.VelX, dh.VelY},
				Direction:   direction,
				CurrentRoad: int(dh.CurrentRoad),
				Score:       uint(dh.Score),
			}
			for k := uint16(0); k < dh.BagCount; k++ {
				var item bagItemRecord
				if err := binary.Read(r, binary.LittleEndian, &item); err != nil {
					return app.State{}, fmt.Errorf("session %d dog %d bag item %d: %w", i, j, k, err)
				}
				dr.Bag = append(dr.Bag, model.FoundObject{ID: int(item.ID), Type: uint(item.Type)})
			}
			rec.Dogs = append(rec.Dogs, dr)
		}

		for j := int32(0); j < sh.LootCount; j++ {
			var item lootItemRecord
			if err := binary.Read(r, binary.LittleEndian, &item); err != nil {
				return app.State{}, fmt.Errorf("session %d loot %d: %w", i, j, err)
			}
			rec.Loot = append(rec.Loot, model.LostObject{
				ID:       model.LostObjectID(item.ID),
				Type:     uint(item.Type),
				Position: geom.Point2D{X: item.PosX, Y: item.PosY},
			})
		}

		state.Sessions = append(state.Sessions, rec)
	}

	return state, nil
}

// readString reads a length-prefixed (uint16) UTF-8 string.
func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
