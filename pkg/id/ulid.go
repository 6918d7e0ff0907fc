// Package id generates time-sortable identifiers for query runs.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces string identifiers.
type Generator interface {
	Generate() string
}

// ULIDGenerator 使用 ULID 算法生成时间可排序的唯一 ID。
// 使用单调熵源，同一毫秒内生成的 ID 依然有序。
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// ULIDOption configures a ULIDGenerator.
type ULIDOption func(*ULIDGenerator)

// WithEntropy replaces the crypto/rand entropy source.
func WithEntropy(r io.Reader) ULIDOption {
	return func(g *ULIDGenerator) {
		g.entropy = ulid.Monotonic(r, 0)
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ULIDOption {
	return func(g *ULIDGenerator) {
		g.now = now
	}
}

// NewULIDGenerator creates a monotonic ULID generator.
func NewULIDGenerator(opts ...ULIDOption) *ULIDGenerator {
	g := &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new 26 character ULID.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

// IsValid reports whether s parses as a ULID.
func IsValid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

var defaultGenerator = NewULIDGenerator()

// New returns a ULID from the package generator.
func New() string {
	return defaultGenerator.Generate()
}
