package engine

import (
	"slices"

	"github.com/roach88/eartrain/internal/cards"
	"github.com/roach88/eartrain/internal/curriculum"
)

// Kind distinguishes regular card questions from ordering drills.
type Kind string

const (
	KindCard     Kind = "card"
	KindOrdering Kind = "ordering"
)

// Source says why a card question was chosen.
type Source string

const (
	SourceNew      Source = "new"
	SourceReview   Source = "review"
	SourceFallback Source = "fallback"
)

// maxDecoys bounds the wrong choices offered next to the right one.
const maxDecoys = 3

// Question describes what to present. Playback and rendering belong to the
// caller.
type Question struct {
	Kind    Kind     `json:"kind"`
	Source  Source   `json:"source,omitempty"`
	Card    cards.ID `json:"card,omitempty"`
	Group   string   `json:"group,omitempty"`
	Variant string   `json:"variant,omitempty"`
	// Items are the units to play, in playback order. For an ordering
	// drill the learner must sort them by pitch.
	Items []string `json:"items"`
	// Choices are the answer options for single-presentation and
	// identification questions, the right answer included.
	Choices []string `json:"choices,omitempty"`
}

// Pair draws two distinct units from vocabulary. A vocabulary of fewer than
// two units is caller misuse and yields a VOCABULARY_TOO_SMALL error.
func Pair(vocabulary []string, rnd Random) ([2]string, error) {
	if len(vocabulary) < 2 {
		return [2]string{}, newVocabularyTooSmallError(len(vocabulary))
	}
	i := intN(rnd, len(vocabulary))
	j := intN(rnd, len(vocabulary)-1)
	if j >= i {
		j++
	}
	return [2]string{vocabulary[i], vocabulary[j]}, nil
}

// orderingQuestion draws up to size distinct units for an ordering drill.
func orderingQuestion(vocabulary []string, size int, rnd Random) Question {
	pool := slices.Clone(vocabulary)
	shuffle(rnd, pool)
	return Question{Kind: KindOrdering, Items: pool[:min(size, len(pool))]}
}

// cardQuestion builds the presentation of card id.
func cardQuestion(c *curriculum.Curriculum, vocabulary []string, id cards.ID, src Source, rnd Random) (Question, error) {
	group, v, err := resolveCard(c, id)
	if err != nil {
		return Question{}, err
	}
	q := Question{Kind: KindCard, Source: src, Card: id, Group: group, Variant: v.Name}

	var units []string
	if v.Scope == curriculum.ScopeFamily {
		units = familyMembers(c, vocabulary, group)
	} else {
		units = curriculum.GroupUnits(group)
	}

	if len(units) == 1 || v.Single || v.Scope == curriculum.ScopeFamily {
		target := units[intN(rnd, len(units))]
		q.Items = []string{target}
		q.Choices = choices(vocabulary, target, rnd)
		return q, nil
	}

	q.Items = slices.Clone(units)
	shuffle(rnd, q.Items)
	return q, nil
}

// familyMembers returns the vocabulary units of family, or every
// curriculum unit of the family when none is in the vocabulary yet.
func familyMembers(c *curriculum.Curriculum, vocabulary []string, family string) []string {
	inFamily := func(u string) bool { return c.Family(u) == family }
	var members []string
	for _, u := range vocabulary {
		if inFamily(u) {
			members = append(members, u)
		}
	}
	if len(members) == 0 {
		members = slices.DeleteFunc(slices.Clone(c.Units), func(u string) bool { return !inFamily(u) })
	}
	return members
}

// choices offers target among up to maxDecoys other vocabulary units.
func choices(vocabulary []string, target string, rnd Random) []string {
	decoys := slices.DeleteFunc(slices.Clone(vocabulary), func(u string) bool { return u == target })
	shuffle(rnd, decoys)
	out := append([]string{target}, decoys[:min(maxDecoys, len(decoys))]...)
	shuffle(rnd, out)
	return out
}

// resolveCard checks that id names a known variant of a known group.
func resolveCard(c *curriculum.Curriculum, id cards.ID) (string, curriculum.Variant, error) {
	group, name, ok := curriculum.ParseCardKey(id)
	if !ok {
		return "", curriculum.Variant{}, newUnknownCardError(ErrCodeUnknownVariant, string(id), "card id has no variant")
	}
	v, ok := c.Variant(name)
	if !ok {
		return "", curriculum.Variant{}, newUnknownCardError(ErrCodeUnknownVariant, string(id), "variant "+name+" is not defined")
	}

	if v.Scope == curriculum.ScopeFamily {
		if !slices.ContainsFunc(c.Units, func(u string) bool { return c.Family(u) == group }) {
			return "", v, newUnknownCardError(ErrCodeUnknownGroup, string(id), "family "+group+" is not defined")
		}
		return group, v, nil
	}

	units := curriculum.GroupUnits(group)
	if len(units) != c.GroupSize || c.GroupKey(units...) != group {
		return "", v, newUnknownCardError(ErrCodeUnknownGroup, string(id), "group "+group+" is malformed")
	}
	for _, u := range units {
		if c.UnitIndex(u) < 0 {
			return "", v, newUnknownCardError(ErrCodeUnknownGroup, string(id), "unit "+u+" is not defined")
		}
	}
	if len(units) == 2 && units[0] == units[1] {
		return "", v, newUnknownCardError(ErrCodeUnknownGroup, string(id), "group repeats a unit")
	}
	return group, v, nil
}
