package game

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// UIDLength is the number of hex characters in a participant UID.
const UIDLength = 7

// RandSource interface for dependency injection of randomness in tests.
type RandSource interface {
	Intn(n int) int
}

// NewUID returns a 7-character uppercase hex identifier: the fast-moving
// low bits of a 100ns-resolution timestamp followed by 16 random bits, so
// ids minted in the same tick still differ.
func NewUID() string {
	return newUID(nil)
}

// NewUIDWithRandSource is NewUID with a deterministic random source.
func NewUIDWithRandSource(rs RandSource) string {
	return newUID(rs)
}

func newUID(rs RandSource) string {
	ticks := uint64(time.Now().UnixNano() / 100)

	var tail uint16
	if rs != nil {
		tail = uint16(rs.Intn(1 << 16))
	} else {
		var b [2]byte
		if _, err := rand.Read(b[:]); err != nil {
			panic("uid: failed to read random bytes: " + err.Error())
		}
		tail = binary.BigEndian.Uint16(b[:])
	}

	v := uint32(ticks&0xFFF)<<16 | uint32(tail)
	return fmt.Sprintf("%07X", v)
}
