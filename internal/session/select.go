package session

import (
	"slices"
	"time"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/curriculum"
)

// Plan is the material for one session. New cards are introduced in
// order; Due cards are ranked most urgent first. Complete is true when
// every pending card has already been introduced.
type Plan struct {
	New      []cards.ID  `json:"new"`
	Due      []cards.Due `json:"-"`
	Complete bool        `json:"complete"`
}

// DueIDs returns the ids of the planned reviews.
func (p Plan) DueIDs() []cards.ID {
	ids := make([]cards.ID, len(p.Due))
	for i, d := range p.Due {
		ids[i] = d.Entry.ID
	}
	return ids
}

// Empty reports whether the plan has nothing to ask.
func (p Plan) Empty() bool {
	return len(p.New) == 0 && len(p.Due) == 0
}

// Bootstrap returns the fixed first-session material: the initial variant
// of every seed group, in seed order.
func Bootstrap(c *curriculum.Curriculum) []cards.ID {
	groups := c.BootstrapGroups()
	ids := make([]cards.ID, len(groups))
	for i, g := range groups {
		ids[i] = c.VariantCards(g)[0]
	}
	return ids
}

// Select plans a session and re-evaluates completion on every call. Before
// any card has been introduced the plan is the bootstrap set. Afterwards at most NewPerSession cards come from the
// pending queue and the rest, up to SessionSize, are due reviews; reviews
// of groups not yet in the plan are preferred over a second card of the
// same group.
func Select(c *curriculum.Curriculum, d cards.Deck, pending []cards.ID, now time.Time) Plan {
	if !anyIntroduced(d) {
		return Plan{New: Bootstrap(c)}
	}

	p := c.Policy
	plan := Plan{Complete: IsComplete(d, pending)}
	seen := make(map[string]bool)
	for _, id := range pending {
		if len(plan.New) == p.NewPerSession {
			break
		}
		if e, ok := d.Get(id); ok && e.Introduced() {
			continue
		}
		plan.New = append(plan.New, id)
		seen[groupOf(id)] = true
	}

	room := p.SessionSize - len(plan.New)
	due := cards.DueCards(d, now)
	var repeats []cards.Due
	for _, du := range due {
		if len(plan.Due) == room {
			break
		}
		g := groupOf(du.Entry.ID)
		if seen[g] {
			repeats = append(repeats, du)
			continue
		}
		seen[g] = true
		plan.Due = append(plan.Due, du)
	}
	for _, du := range repeats {
		if len(plan.Due) == room {
			break
		}
		plan.Due = append(plan.Due, du)
	}
	// Restore urgency order across both passes.
	rank := make(map[cards.ID]int, len(due))
	for i, du := range due {
		rank[du.Entry.ID] = i
	}
	slices.SortFunc(plan.Due, func(a, b cards.Due) int {
		return rank[a.Entry.ID] - rank[b.Entry.ID]
	})
	return plan
}

// IsComplete reports whether every known card has been introduced at
// least once.
func IsComplete(d cards.Deck, known []cards.ID) bool {
	for _, id := range known {
		if e, ok := d.Get(id); !ok || !e.Introduced() {
			return false
		}
	}
	return true
}

func anyIntroduced(d cards.Deck) bool {
	return slices.ContainsFunc(d.All(), cards.Entry.Introduced)
}

func groupOf(id cards.ID) string {
	g, _, _ := curriculum.ParseCardKey(id)
	return g
}
