// Package cards tracks memory state per card: whether it has been
// introduced, how often and when it was reviewed, and whether it has been
// retired. Every operation returns a new Deck; inputs are never modified.
package cards

import (
	"maps"
	"slices"
	"time"

	"github.com/roach88/eartrain/internal/memory"
	"github.com/roach88/eartrain/internal/urgency"
)

// DefaultReliableThreshold is the retrievability a card must exceed to
// count as reliably learned.
const DefaultReliableThreshold = 0.9

// ID identifies a card, e.g. "C4|G4:compare-0".
type ID string

// Entry is the bookkeeping for one card. A nil Card means the card has
// never been reviewed. Retired implies Card != nil.
type Entry struct {
	ID             ID           `json:"id"`
	Card           *memory.Card `json:"card,omitempty"`
	LastReviewedAt *time.Time   `json:"last_reviewed_at,omitempty"`
	ReviewCount    int          `json:"review_count"`
	LastGrade      memory.Grade `json:"last_grade,omitempty"`
	Retired        bool         `json:"retired,omitempty"`
}

// Introduced reports whether the card has been reviewed at least once.
func (e Entry) Introduced() bool {
	return e.Card != nil
}

// HistoryEntry is one answered question. History is append-only.
type HistoryEntry struct {
	ID        string       `json:"id"`
	At        time.Time    `json:"at"`
	CardID    ID           `json:"card_id"`
	Items     []string     `json:"items,omitempty"`
	Grade     memory.Grade `json:"grade"`
	Correct   bool         `json:"correct"`
	Counted   bool         `json:"counted"`
	Guesses   []string     `json:"guesses,omitempty"`
	TimingsMs []int64      `json:"timings_ms,omitempty"`
}

// Deck maps card identity to its entry. Order records creation order so
// iteration is deterministic.
type Deck struct {
	Entries map[ID]Entry   `json:"entries"`
	Order   []ID           `json:"order"`
	History []HistoryEntry `json:"history"`
}

// NewDeck returns a deck containing a fresh entry for each id.
func NewDeck(ids ...ID) Deck {
	return Deck{Entries: map[ID]Entry{}}.Add(ids...)
}

// Get returns the entry for id.
func (d Deck) Get(id ID) (Entry, bool) {
	e, ok := d.Entries[id]
	return e, ok
}

// Has reports whether id has an entry.
func (d Deck) Has(id ID) bool {
	_, ok := d.Entries[id]
	return ok
}

// Len returns the number of entries.
func (d Deck) Len() int {
	return len(d.Order)
}

// All returns every entry in creation order.
func (d Deck) All() []Entry {
	out := make([]Entry, 0, len(d.Order))
	for _, id := range d.Order {
		out = append(out, d.Entries[id])
	}
	return out
}

// Add creates new, unreviewed entries. Existing ids are left untouched.
func (d Deck) Add(ids ...ID) Deck {
	out := d.clone()
	for _, id := range ids {
		if _, ok := out.Entries[id]; ok {
			continue
		}
		out.Entries[id] = Entry{ID: id}
		out.Order = append(out.Order, id)
	}
	return out
}

// Retire marks introduced cards as retired. Unknown or never-reviewed ids
// are ignored. Retirement is one-way.
func (d Deck) Retire(ids ...ID) Deck {
	out := d.clone()
	for _, id := range ids {
		e, ok := out.Entries[id]
		if !ok || e.Card == nil || e.Retired {
			continue
		}
		e.Retired = true
		out.Entries[id] = e
	}
	return out
}

// Review is the input to RecordReview.
type Review struct {
	CardID  ID
	Grade   memory.Grade
	At      time.Time
	EntryID string
	Items   []string
	Correct bool
	Counted bool
	Guesses []string
	Timings []time.Duration
}

// RecordReview applies one review to the deck. A never-reviewed card is
// initialized from the grade; otherwise the card is graded using the days
// elapsed since its last review. Unknown ids are created on the fly.
func RecordReview(m *memory.Model, d Deck, r Review) Deck {
	out := d.clone()
	e, ok := out.Entries[r.CardID]
	if !ok {
		e = Entry{ID: r.CardID}
		out.Order = append(out.Order, r.CardID)
	}

	var next memory.Card
	if e.Card == nil {
		next = m.NewCard(r.Grade)
	} else {
		next = m.GradeCard(*e.Card, daysBetween(*e.LastReviewedAt, r.At), r.Grade)
	}
	at := r.At
	e.Card = &next
	e.LastReviewedAt = &at
	e.ReviewCount++
	e.LastGrade = r.Grade
	out.Entries[r.CardID] = e

	h := HistoryEntry{
		ID:      r.EntryID,
		At:      r.At,
		CardID:  r.CardID,
		Items:   nonEmpty(r.Items),
		Grade:   r.Grade,
		Correct: r.Correct,
		Counted: r.Counted,
		Guesses: nonEmpty(r.Guesses),
	}
	if len(r.Timings) > 0 {
		h.TimingsMs = make([]int64, len(r.Timings))
		for i, t := range r.Timings {
			h.TimingsMs[i] = t.Milliseconds()
		}
	}
	out.History = append(slices.Clip(out.History), h)
	return out
}

// Due is an introduced, active card annotated with its retrievability.
type Due struct {
	Entry          Entry
	Retrievability float64
}

// DueCards returns every introduced, non-retired card ranked most-forgotten
// first. There is no due-date cutoff; callers apply their own.
func DueCards(d Deck, now time.Time) []Due {
	byID := make(map[string]Entry)
	var cs []urgency.Candidate
	for _, id := range d.Order {
		e := d.Entries[id]
		if e.Card == nil || e.Retired {
			continue
		}
		byID[string(id)] = e
		cs = append(cs, urgency.Candidate{ID: string(id), Retrievability: RetrievabilityAt(e, now)})
	}

	ranked := urgency.Rank(cs)
	out := make([]Due, len(ranked))
	for i, c := range ranked {
		out[i] = Due{Entry: byID[c.ID], Retrievability: c.Retrievability}
	}
	return out
}

// RetrievabilityAt returns the entry's retrievability at now, or 0 for a
// card that has never been reviewed.
func RetrievabilityAt(e Entry, now time.Time) float64 {
	if e.Card == nil || e.LastReviewedAt == nil {
		return 0
	}
	return memory.Retrievability(*e.Card, daysBetween(*e.LastReviewedAt, now))
}

// IsReliablyLearned reports whether the card exists, its latest answer was
// not wrong, and its retrievability at now exceeds threshold.
func IsReliablyLearned(e Entry, now time.Time, threshold float64) bool {
	if e.Card == nil || e.LastGrade == memory.Again {
		return false
	}
	return RetrievabilityAt(e, now) > threshold
}

func (d Deck) clone() Deck {
	out := Deck{
		Entries: make(map[ID]Entry, len(d.Entries)+1),
		Order:   slices.Clip(d.Order),
		History: d.History,
	}
	maps.Copy(out.Entries, d.Entries)
	return out
}

func daysBetween(from, to time.Time) float64 {
	days := to.Sub(from).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}
