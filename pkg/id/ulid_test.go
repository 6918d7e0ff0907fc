package id

import (
	"bytes"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIsSortableAndUnique(t *testing.T) {
	gen := NewULIDGenerator()

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.Generate()
	}

	assert.True(t, sort.StringsAreSorted(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		assert.Len(t, v, 26)
		assert.True(t, IsValid(v))
		seen[v] = struct{}{}
	}
	assert.Len(t, seen, len(ids))
}

func TestFixedClockAndEntropy(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	newGen := func() *ULIDGenerator {
		return NewULIDGenerator(
			WithClock(func() time.Time { return at }),
			WithEntropy(bytes.NewReader(bytes.Repeat([]byte{0x01}, 64))),
		)
	}

	assert.Equal(t, newGen().Generate(), newGen().Generate())
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(New()))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("not-a-ulid"))
}
