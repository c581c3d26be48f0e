package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/progression"
	"github.com/roach88/eartrain/internal/session"
)

// SchemaVersion is the persisted state layout version. Snapshots written
// with any other version are discarded.
const SchemaVersion = 1

// DomainState prefixes the snapshot checksum.
const DomainState = "eartrain/state/v1"

// State is everything the engine knows about one learner on one
// curriculum.
type State struct {
	Curriculum string            `json:"curriculum"`
	Progress   progression.State `json:"progress"`
	Deck       cards.Deck        `json:"deck"`
	Session    session.Session   `json:"session"`
	Ordering   session.Ordering  `json:"ordering"`
	// Questions counts answered questions, ordering drills included.
	Questions int `json:"questions"`
}

// Snapshot decoding failures. All of them mean "no usable state".
var (
	ErrCorruptSnapshot    = errors.New("engine: corrupt snapshot")
	ErrChecksumMismatch   = errors.New("engine: snapshot checksum mismatch")
	ErrVersionMismatch    = errors.New("engine: snapshot schema version mismatch")
	ErrCurriculumMismatch = errors.New("engine: snapshot belongs to another curriculum")
)

type envelope struct {
	Version    int             `json:"version"`
	Curriculum string          `json:"curriculum"`
	Checksum   string          `json:"checksum"`
	State      json.RawMessage `json:"state"`
}

// EncodeState serializes st into a checksummed envelope.
func EncodeState(st State) ([]byte, error) {
	body, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return json.Marshal(envelope{
		Version:    SchemaVersion,
		Curriculum: st.Curriculum,
		Checksum:   checksum(body),
		State:      body,
	})
}

// DecodeState parses a snapshot written by EncodeState for curriculum.
func DecodeState(data []byte, curriculum string) (State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if env.Version != SchemaVersion {
		return State{}, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, env.Version, SchemaVersion)
	}
	if env.Curriculum != curriculum {
		return State{}, fmt.Errorf("%w: %q", ErrCurriculumMismatch, env.Curriculum)
	}
	if len(env.State) == 0 || checksum(env.State) != env.Checksum {
		return State{}, ErrChecksumMismatch
	}

	var st State
	if err := json.Unmarshal(env.State, &st); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if st.Curriculum != curriculum {
		return State{}, fmt.Errorf("%w: %q", ErrCurriculumMismatch, st.Curriculum)
	}
	if st.Deck.Entries == nil {
		st.Deck.Entries = map[cards.ID]cards.Entry{}
	}
	return st, nil
}

// checksum computes SHA256(domain + 0x00 + data).
func checksum(data []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainState))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
