package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"lostfound-server/internal/app"
)

// Save writes state to path atomically: the file is built up in a temp file
// next to the destination (path + "_tmp"), then renamed into place, so a crash mid-write
// never leaves a half-written snapshot where the server expects a good one.
func Save(path string, state app.State) error {
	tmpPath := path + "_tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if err := writeBinary(tmp, state); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("snapshot: rename into place: %w", err)
	}
	return nil
}

func writeBinary(w io.Writer, state app.State) error {
	header := fileHeader{
		Version:      version1,
		PlayerCount:  int32(len(state.Players)),
		SessionCount: int32(len(state.Sessions)),
	}
	copy(header.Magic[:], magicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	for _, p := range state.Players {
		if err := writeString(w, string(p.Token)); err != nil {
			return err
		}
		if err := writeString(w, p.Name); err != nil {
			return err
		}
		if err := writeString(w, string(p.MapID)); err != nil {
			return err
		}
		ph := playerHeader{ID: uint32(p.ID), DogID: uint32(p.DogID)}
		if err := binary.Write(w, binary.LittleEndian, &ph); err != nil {
			return fmt.Errorf("player header: %w", err)
		}
	}

	for _, s := range state.Sessions {
		if err := writeString(w, string(s.MapID)); err != nil {
			return err
		}
		sh := sessionHeader{DogCount: int32(len(s.Dogs)), LootCount: int32(len(s.Loot))}
		if err := binary.Write(w, binary.LittleEndian, &sh); err != nil {
			return fmt.Errorf("session header: %w", err)
		}

		for _, d := range s.Dogs {
			if len(d.Bag) > 65535 {
				return fmt.Errorf("dog %d bag too large: %d", d.ID, len(d.Bag))
			}
			dh := dogHeader{
				ID:          uint32(d.ID),
				BagCapacity: int32(d.BagCapacity),
				PosX:        d.Position[0],
				PosY:        d.Position[1],
				PrevX:       d.PrevPos[0],
				PrevY:       d.PrevPos[1],
				VelX:        d.Velocity[0],
				VelY:        d.Velocity[1],
				CurrentRoad: int32(d.CurrentRoad),
				Score:       uint32(d.Score),
				BagCount:    uint16(len(d.Bag)),
			}
			if err := binary.Write(w, binary.LittleEndian, &dh); err != nil {
				return fmt.Errorf("dog header: %w", err)
			}
			if err := writeString(w, d.Name); err != nil {
				return err
			}
			if err := writeString(w, d.Direction); err != nil {
				return err
			}
			for _, item := range d.Bag {
				rec := bagItemRecord{ID: int32(item.ID), Type: uint32(item.Type)}
				if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
					return fmt.Errorf("bag item: %w", err)
				}
			}
		}

		for _, lo := range s.Loot {
			rec := lootItemRecord{ID: int32(lo.ID), Type: uint32(lo.Type), PosX: lo.Position.X, PosY: lo.Position.Y}
			if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
				return fmt.Errorf("loot item: %w", err)
			}
		}
	}

	return nil
}

// writeString writes a length-prefixed (uint16) UTF-8 string.
func writeString(w io.Writer, s string) error {
	b := []byte(s)
	if len(b) > 65535 {
		return fmt.Errorf("string too long: %d bytes", len(b))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return err
}
