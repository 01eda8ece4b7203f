package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedRand struct{ v int }

func (f fixedRand) Intn(n int) int { return f.v % n }

func TestNewUIDShape(t *testing.T) {
	uid := NewUID()
	assert.Len(t, uid, UIDLength)
	for _, r := range uid {
		assert.Contains(t, "0123456789ABCDEF", string(r))
	}
}

func TestNewUIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		uid := NewUID()
		assert.False(t, seen[uid], "duplicate uid %s", uid)
		seen[uid] = true
	}
}

func TestNewUIDWithRandSource(t *testing.T) {
	uid := NewUIDWithRandSource(fixedRand{v: 0})
	assert.Len(t, uid, UIDLength)
}
