// Package idgen provides trace ID generators.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/artpar/fieldmap/ports"
)

// UUID generates UUID v4 trace IDs.
type UUID struct{}

// New returns a new UUID v4.
func (UUID) New() string {
	return uuid.New().String()
}

// Ensure interface compliance.
var _ ports.IDGenerator = UUID{}

// Sequential generates prefixed sequential IDs, for tests that need
// deterministic trace IDs.
type Sequential struct {
	prefix  string
	counter uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New returns the next ID.
func (s *Sequential) New() string {
	return s.prefix + strconv.FormatUint(atomic.AddUint64(&s.counter, 1), 10)
}

// Ensure interface compliance.
var _ ports.IDGenerator = (*Sequential)(nil)
