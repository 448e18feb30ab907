package id

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator hands out opaque record identifiers.
type Generator interface {
	NewID() string
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func() string

// NewID implements Generator.
func (f GeneratorFunc) NewID() string { return f() }

// UUID generates random (version 4) UUIDs.
type UUID struct{}

// NewID implements Generator.
func (UUID) NewID() string { return uuid.NewString() }

// Sequence generates deterministic ids like "exp-001", "exp-002".
// It is safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence returns a Sequence starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix, next: 1}
}

// NewID implements Generator.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := FormatSeqID(s.prefix, s.next)
	s.next++
	return id
}

// FormatSeqID returns an id like "exp-001".
func FormatSeqID(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}
