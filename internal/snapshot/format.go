// Package snapshot persists and restores an app.State to a binary file, so
// the server can resume joined players and in-progress sessions across a
// restart (§4.6).
package snapshot

const (
	magicHeader = "LNF1"
	version1    = uint32(1)
)

// fileHeader is written and read whole via encoding/binary, same as the
// replay format this is grounded on: no slices or strings, only fixed-size
// fields, so binary.Write/Read can handle it directly.
type fileHeader struct {
	Magic        [4]byte
	Version      uint32
	PlayerCount  int32
	SessionCount int32
}

type sessionHeader struct {
	DogCount int32
	LootCount int32
}

type dogHeader struct {
	ID          uint32
	BagCapacity int32
	PosX        float64
	PosY        float64
	PrevX       float64
	PrevY       float64
	VelX        float64
	VelY        float64
	CurrentRoad int32
	Score       uint32
	BagCount    uint16
}

type bagItemRecord struct {
	ID   int32
	Type uint32
}

type lootItemRecord struct {
	ID   int32
	Type uint32
	PosX float64
	PosY float64
}

type playerHeader struct {
	ID    uint32
	DogID uint32
}
