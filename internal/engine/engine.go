package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/curriculum"
	"github.com/roach88/eartrain/internal/memory"
	"github.com/roach88/eartrain/internal/progression"
	"github.com/roach88/eartrain/internal/session"
	"github.com/roach88/eartrain/internal/urgency"
)

// Snapshots persists one opaque blob per curriculum.
// Implemented by store.Store.
type Snapshots interface {
	// LoadSnapshot returns nil, nil when nothing is stored.
	LoadSnapshot(ctx context.Context, curriculum string) ([]byte, error)
	SaveSnapshot(ctx context.Context, curriculum string, data []byte) error
	ClearSnapshot(ctx context.Context, curriculum string) error
}

// Engine runs the question/answer loop for one curriculum.
type Engine struct {
	curriculum *curriculum.Curriculum
	model      *memory.Model
	clock      Clock
	rnd        Random
	ids        IDGenerator
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRandom sets the random source. Default: the math/rand/v2 global
// source.
func WithRandom(r Random) Option {
	return func(e *Engine) { e.rnd = r }
}

// WithIDGenerator sets the history id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithModel sets the memory model. Default: memory.Default().
func WithModel(m *memory.Model) Option {
	return func(e *Engine) { e.model = m }
}

// New creates an Engine for c, which must have been prepared by a
// curriculum loader or (*Curriculum).Prepare.
func New(c *curriculum.Curriculum, opts ...Option) *Engine {
	e := &Engine{
		curriculum: c,
		model:      memory.Default(),
		clock:      SystemClock{},
		rnd:        globalRandom{},
		ids:        UUIDv7Generator{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Curriculum returns the engine's curriculum.
func (e *Engine) Curriculum() *curriculum.Curriculum {
	return e.curriculum
}

// Initial returns the state of a learner who has never answered anything.
func (e *Engine) Initial() State {
	progress, deck := progression.Initial(e.curriculum)
	return State{
		Curriculum: e.curriculum.Name,
		Progress:   progress,
		Deck:       deck,
		Ordering:   session.Ordering{Mode: session.ModeNormal},
	}
}

// Next chooses the next question. It touches the session, so the returned
// state must replace st even if the question is discarded.
func (e *Engine) Next(st State) (State, Question, error) {
	now := e.clock.Now()
	c := e.curriculum

	var started bool
	st.Session, started = session.Touch(st.Session, now, c.Policy.InactivityGap())
	if started {
		e.logger.Debug("session started", "gap", st.Session.Gap().String())
	}

	if st.Ordering.Pending() && len(st.Progress.Vocabulary) >= 2 {
		st.Ordering = st.Ordering.Issue()
		q := orderingQuestion(st.Progress.Vocabulary, c.Policy.OrderingSize, e.rnd)
		return st, q, nil
	}

	id, src, err := e.pick(st, now)
	if err != nil {
		return st, Question{}, err
	}
	q, err := cardQuestion(c, st.Progress.Vocabulary, id, src, e.rnd)
	if err != nil {
		return st, Question{}, err
	}
	return st, q, nil
}

// pick chooses the card to ask. Fresh material and reviews are mixed by
// the session's repeat probability; an empty plan falls back to a fresh
// initial-variant question on a random group.
func (e *Engine) pick(st State, now time.Time) (cards.ID, Source, error) {
	plan := session.Select(e.curriculum, st.Deck, st.Progress.Pending, now)
	last := st.Progress.Streaks.Target

	wantRepeat := e.rnd.Float64() < session.RepeatProbability(st.Session, now)
	if len(plan.New) > 0 && (!wantRepeat || len(plan.Due) == 0) {
		return plan.New[0], SourceNew, nil
	}
	if len(plan.Due) > 0 {
		cs := make([]urgency.Candidate, 0, len(plan.Due))
		for _, d := range plan.Due {
			if d.Entry.ID == last && len(plan.Due) > 1 {
				continue
			}
			cs = append(cs, urgency.Candidate{ID: string(d.Entry.ID), Retrievability: d.Retrievability})
		}
		if c, ok := urgency.MostUrgent(cs, e.curriculum.Policy.ReliableThreshold); ok {
			return cards.ID(c.ID), SourceReview, nil
		}
		return cards.ID(cs[intN(e.rnd, len(cs))].ID), SourceReview, nil
	}

	id, err := e.fallback(st)
	return id, SourceFallback, err
}

// fallback picks a random group of the vocabulary and asks its first
// unlocked, unretired variant.
func (e *Engine) fallback(st State) (cards.ID, error) {
	c := e.curriculum
	vocabulary := st.Progress.Vocabulary
	var group string
	if c.GroupSize == 1 {
		if len(vocabulary) == 0 {
			return "", newVocabularyTooSmallError(0)
		}
		group = vocabulary[intN(e.rnd, len(vocabulary))]
	} else {
		pair, err := Pair(vocabulary, e.rnd)
		if err != nil {
			return "", err
		}
		group = c.GroupKey(pair[0], pair[1])
	}
	ids := c.VariantCards(group)
	for _, id := range ids {
		if !st.Progress.IsUnlocked(id) {
			continue
		}
		if entry, ok := st.Deck.Get(id); ok && entry.Retired {
			continue
		}
		return id, nil
	}
	return ids[0], nil
}

// Response is the learner's answer to a Question.
type Response struct {
	Question Question
	Correct  bool
	// Attempt is 1 for the first try at this question; retries count up.
	// Zero is treated as 1.
	Attempt int
	Guesses []string
	// Timings are response times per attempt. The first drives Easy
	// grading.
	Timings []time.Duration
	// Grade overrides the derived grade when set.
	Grade memory.Grade
}

// Answer records a response. Card answers update the memory model, the
// history and the progression; ordering answers only advance the ordering
// drill. The events list unlocks and retirements in the order they
// happened. Unknown or locked cards return an *Error and st unchanged.
func (e *Engine) Answer(st State, r Response) (State, progression.Events, error) {
	now := e.clock.Now()
	c := e.curriculum

	var (
		group string
		v     curriculum.Variant
	)
	if r.Question.Kind != KindOrdering {
		var err error
		group, v, err = resolveCard(c, r.Question.Card)
		if err != nil {
			return st, nil, err
		}
		if !st.Progress.IsUnlocked(r.Question.Card) {
			return st, nil, newUnknownCardError(ErrCodeCardLocked, string(r.Question.Card), "card is not unlocked")
		}
	}

	st.Session, _ = session.Touch(st.Session, now, c.Policy.InactivityGap())
	st.Questions++

	if r.Question.Kind == KindOrdering {
		st.Ordering = st.Ordering.ObserveOrdering(c.Policy, r.Correct)
		return st, nil, nil
	}

	attempt := max(r.Attempt, 1)
	counted := attempt == 1
	grade := r.Grade
	if !grade.IsValid() {
		var response time.Duration
		if len(r.Timings) > 0 {
			response = r.Timings[0]
		}
		grade = DeriveGrade(r.Correct, attempt, response, c.Policy.EasyResponse())
	}

	deck := cards.RecordReview(e.model, st.Deck, cards.Review{
		CardID:  r.Question.Card,
		Grade:   grade,
		At:      now,
		EntryID: e.ids.Generate(),
		Items:   r.Question.Items,
		Correct: r.Correct,
		Counted: counted,
		Guesses: r.Guesses,
		Timings: r.Timings,
	})

	var events progression.Events
	st.Progress, st.Deck, events = progression.Apply(st.Progress, c, deck, progression.Answer{
		Card:    r.Question.Card,
		Group:   group,
		Variant: v.Name,
		Correct: r.Correct,
		Counted: counted,
	}, now)
	st.Ordering = st.Ordering.Observe(c.Policy, r.Correct, counted)

	for _, ev := range events {
		e.logger.Debug("progression",
			"kind", string(ev.Kind),
			"mechanism", string(ev.Mechanism),
			"card", string(ev.Card),
			"unit", ev.Unit,
		)
	}
	return st, events, nil
}

// Load reads the persisted state. Missing, corrupt, foreign or outdated
// snapshots yield the initial state; only storage errors are returned.
func (e *Engine) Load(ctx context.Context, snaps Snapshots) (State, error) {
	data, err := snaps.LoadSnapshot(ctx, e.curriculum.Name)
	if err != nil {
		return State{}, fmt.Errorf("load snapshot: %w", err)
	}
	if data == nil {
		return e.Initial(), nil
	}
	st, err := DecodeState(data, e.curriculum.Name)
	if err != nil {
		e.logger.Warn("discarding unusable snapshot",
			"curriculum", e.curriculum.Name,
			"error", err,
			"version_mismatch", errors.Is(err, ErrVersionMismatch),
		)
		return e.Initial(), nil
	}
	return st, nil
}

// Save persists st.
func (e *Engine) Save(ctx context.Context, snaps Snapshots, st State) error {
	data, err := EncodeState(st)
	if err != nil {
		return err
	}
	if err := snaps.SaveSnapshot(ctx, e.curriculum.Name, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Reset clears all progress, history included, and returns the initial
// state.
func (e *Engine) Reset(ctx context.Context, snaps Snapshots) (State, error) {
	if err := snaps.ClearSnapshot(ctx, e.curriculum.Name); err != nil {
		return State{}, fmt.Errorf("clear snapshot: %w", err)
	}
	e.logger.Info("progress reset", "curriculum", e.curriculum.Name)
	return e.Initial(), nil
}
