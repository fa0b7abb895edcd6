// Package id generates the identifiers used to correlate calls in logs.
//
// IDs are prefixed ULIDs:
//   - Lexicographic sortability: IDs sort by creation time
//   - Prefixed types: call_* for single calls, upl_* for upload batches
//   - Type safety: separate types prevent mixing call and upload IDs
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// CallID identifies a single dispatched call
type CallID string

// UploadID identifies an upload batch
type UploadID string

const (
	CallPrefix   = "call"
	UploadPrefix = "upl"
	TracePrefix  = "trc"
	SpanPrefix   = "spn"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewCallID generates a new call ID
func NewCallID() CallID {
	return CallID(Default().GenerateWithPrefix(CallPrefix))
}

// NewUploadID generates a new upload batch ID
func NewUploadID() UploadID {
	return UploadID(Default().GenerateWithPrefix(UploadPrefix))
}

// NewTraceID generates an identifier for an outbound trace
func NewTraceID() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

// NewSpanID generates an identifier for one span within a trace
func NewSpanID() string {
	return Default().GenerateWithPrefix(SpanPrefix)
}

func (id CallID) String() string   { return string(id) }
func (id UploadID) String() string { return string(id) }

// Timestamp extracts the creation time of a prefixed or bare ID
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
