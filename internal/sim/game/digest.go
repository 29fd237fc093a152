package game

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

// Digest hashes the full simulation state. Two games fed the same seed and
// the same inputs produce the same digest at every tick.
func (g *Game) Digest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, g.tick)
	digestWriteU64(h, &tmp, g.seed)
	digestWriteI64(h, &tmp, int64(g.world.Width))
	digestWriteI64(h, &tmp, int64(g.world.Height))

	h.Write([]byte{byte(g.body.Dir()), byte(g.body.Pending()), boolByte(g.body.GrowPending())})
	cells := g.body.Cells()
	digestWriteU64(h, &tmp, uint64(len(cells)))
	for _, c := range cells {
		digestWriteI64(h, &tmp, int64(c.X))
		digestWriteI64(h, &tmp, int64(c.Y))
	}

	digestWriteI64(h, &tmp, int64(g.food.X))
	digestWriteI64(h, &tmp, int64(g.food.Y))
	digestWriteU64(h, &tmp, g.score)
	h.Write([]byte{boolByte(g.over)})
	h.Write([]byte(g.cause))

	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
