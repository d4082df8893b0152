// Package id provides identifier generation for the session service.
//
// Two kinds of identifiers are issued:
//   - SUID: process-wide monotonic int64 carried by networks, nodes, edges,
//     views and tables. Archive readers keep persisted SUIDs and advance the
//     counter past them.
//   - ULID: lexicographically sortable IDs with type prefixes (sess_*, req_*)
//     for saved sessions, requests and listeners.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// SUIDs
// ============================================================================

// SUID is a session-unique identifier
type SUID int64

var suidCounter atomic.Int64

// NextSUID issues a new SUID
func NextSUID() SUID {
	return SUID(suidCounter.Add(1))
}

// ObserveSUID advances the counter past an externally issued SUID so that
// later NextSUID calls never collide with it
func ObserveSUID(s SUID) {
	for {
		cur := suidCounter.Load()
		if int64(s) <= cur || suidCounter.CompareAndSwap(cur, int64(s)) {
			return
		}
	}
}

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// SessionID identifies a saved session
type SessionID string

// RequestID identifies an API request
type RequestID string

// ListenerID identifies a registered session listener or hook
type ListenerID string

const (
	SessionPrefix  = "sess"
	RequestPrefix  = "req"
	ListenerPrefix = "lsn"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewListenerID generates a new listener ID
func NewListenerID() ListenerID {
	return ListenerID(Default().GenerateWithPrefix(ListenerPrefix))
}

func (id SessionID) String() string  { return string(id) }
func (id RequestID) String() string  { return string(id) }
func (id ListenerID) String() string { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}

