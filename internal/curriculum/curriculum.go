// Package curriculum describes what an exercise teaches: the base units in
// introduction order, how units combine into groups (single units or
// pairs), the ordered variants each group is asked in, retirement rules and
// the progression thresholds.
//
// # Key scheme
//
// A group key joins its units in introduction order with "|", e.g. "C4|G4".
// A card key appends the variant name: "C4|G4:compare-0". Family-scoped
// variants are keyed by family instead of group: "C:family".
package curriculum

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/eartrain/internal/cards"
)

// Scope says what a variant's card is keyed by.
type Scope string

const (
	ScopeGroup  Scope = "group"
	ScopeFamily Scope = "family"
)

// ErrUnknownVariant is returned by CardKey for a variant name the
// curriculum does not define.
var ErrUnknownVariant = errors.New("curriculum: unknown variant")

// Variant is one presentation of a group. Variants unlock in declaration
// order.
type Variant struct {
	Name    string `yaml:"name" json:"name"`
	Scope   Scope  `yaml:"scope,omitempty" json:"scope,omitempty"`
	Single  bool   `yaml:"single,omitempty" json:"single,omitempty"`
	Mastery bool   `yaml:"mastery,omitempty" json:"mastery,omitempty"`
}

// RetirementRule retires a Prerequisite variant's card once every
// FinalForm card it covers is reliably learned.
type RetirementRule struct {
	Prerequisite string `yaml:"prerequisite" json:"prerequisite"`
	FinalForm    string `yaml:"final_form" json:"final_form"`
}

// Curriculum is the unlock-order table for one exercise.
type Curriculum struct {
	Name       string            `yaml:"name" json:"name"`
	GroupSize  int               `yaml:"group_size" json:"group_size"`
	Units      []string          `yaml:"units" json:"units"`
	Seeds      []string          `yaml:"seeds" json:"seeds"`
	Families   map[string]string `yaml:"families,omitempty" json:"families,omitempty"`
	Variants   []Variant         `yaml:"variants" json:"variants"`
	Retirement []RetirementRule  `yaml:"retirement,omitempty" json:"retirement,omitempty"`
	Policy     Policy            `yaml:"policy,omitempty" json:"policy,omitempty"`
}

// Prepare normalizes unit names, fills policy defaults and validates.
// Loaders call it; hand-built curricula must too.
func (c *Curriculum) Prepare() error {
	c.normalize()
	c.Policy = c.Policy.withDefaults()
	return c.Validate()
}

func (c *Curriculum) normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.GroupSize == 0 {
		c.GroupSize = 2
	}
	for i, u := range c.Units {
		c.Units[i] = NormalizeUnit(u)
	}
	for i, u := range c.Seeds {
		c.Seeds[i] = NormalizeUnit(u)
	}
	if len(c.Families) > 0 {
		fams := make(map[string]string, len(c.Families))
		for u, f := range c.Families {
			fams[NormalizeUnit(u)] = NormalizeUnit(f)
		}
		c.Families = fams
	}
	for i := range c.Variants {
		if c.Variants[i].Scope == "" {
			c.Variants[i].Scope = ScopeGroup
		}
	}
}

// NormalizeUnit trims and NFC-normalizes a unit name so that "C♯4" typed
// with a combining sequence matches the precomposed form.
func NormalizeUnit(u string) string {
	return norm.NFC.String(strings.TrimSpace(u))
}

// Validate checks structural consistency.
func (c *Curriculum) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.GroupSize != 1 && c.GroupSize != 2 {
		return fmt.Errorf("group_size must be 1 or 2, got %d", c.GroupSize)
	}
	if len(c.Units) == 0 {
		return fmt.Errorf("units list is required and must be non-empty")
	}
	seen := make(map[string]bool, len(c.Units))
	for i, u := range c.Units {
		if u == "" {
			return fmt.Errorf("units[%d]: empty unit name", i)
		}
		if strings.ContainsAny(u, "|:") {
			return fmt.Errorf("units[%d]: %q must not contain '|' or ':'", i, u)
		}
		if seen[u] {
			return fmt.Errorf("units[%d]: duplicate unit %q", i, u)
		}
		seen[u] = true
	}
	if len(c.Seeds) < c.GroupSize {
		return fmt.Errorf("seeds: need at least %d seed units, got %d", c.GroupSize, len(c.Seeds))
	}
	for i, s := range c.Seeds {
		if !seen[s] {
			return fmt.Errorf("seeds[%d]: %q is not a curriculum unit", i, s)
		}
		if slices.Index(c.Seeds, s) != i {
			return fmt.Errorf("seeds[%d]: duplicate seed %q", i, s)
		}
	}

	if len(c.Variants) == 0 {
		return fmt.Errorf("variants list is required and must be non-empty")
	}
	names := make(map[string]bool, len(c.Variants))
	for i, v := range c.Variants {
		if v.Name == "" {
			return fmt.Errorf("variants[%d]: name is required", i)
		}
		if names[v.Name] {
			return fmt.Errorf("variants[%d]: duplicate variant %q", i, v.Name)
		}
		names[v.Name] = true
		switch v.Scope {
		case ScopeGroup:
		case ScopeFamily:
			if c.GroupSize != 1 {
				return fmt.Errorf("variants[%d]: family scope requires group_size 1", i)
			}
			if i == 0 {
				return fmt.Errorf("variants[0]: the initial variant must be group scoped")
			}
		default:
			return fmt.Errorf("variants[%d]: unknown scope %q", i, v.Scope)
		}
	}
	if c.hasFamilyVariant() {
		for _, u := range c.Units {
			if c.Families[u] == "" {
				return fmt.Errorf("families: unit %q has no family", u)
			}
		}
	}

	for i, r := range c.Retirement {
		pre, ok := c.Variant(r.Prerequisite)
		if !ok {
			return fmt.Errorf("retirement[%d]: unknown prerequisite variant %q", i, r.Prerequisite)
		}
		fin, ok := c.Variant(r.FinalForm)
		if !ok {
			return fmt.Errorf("retirement[%d]: unknown final_form variant %q", i, r.FinalForm)
		}
		if fin.Scope != ScopeGroup {
			return fmt.Errorf("retirement[%d]: final_form %q must be group scoped", i, r.FinalForm)
		}
		if pre.Name == fin.Name {
			return fmt.Errorf("retirement[%d]: a variant cannot retire itself", i)
		}
	}

	return c.Policy.validate()
}

func (c *Curriculum) hasFamilyVariant() bool {
	return slices.ContainsFunc(c.Variants, func(v Variant) bool { return v.Scope == ScopeFamily })
}

// UnitIndex returns the unit's position in introduction order, or -1.
func (c *Curriculum) UnitIndex(u string) int {
	return slices.Index(c.Units, u)
}

// Variant looks up a variant by name.
func (c *Curriculum) Variant(name string) (Variant, bool) {
	i := slices.IndexFunc(c.Variants, func(v Variant) bool { return v.Name == name })
	if i < 0 {
		return Variant{}, false
	}
	return c.Variants[i], true
}

// InitialVariant is the variant seeded when a group first appears.
func (c *Curriculum) InitialVariant() Variant {
	return c.Variants[0]
}

// Family returns the unit's family, or "" when it has none.
func (c *Curriculum) Family(unit string) string {
	return c.Families[unit]
}

// GroupKey joins units in introduction order.
func (c *Curriculum) GroupKey(units ...string) string {
	sorted := slices.Clone(units)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return c.UnitIndex(a) - c.UnitIndex(b)
	})
	return strings.Join(sorted, "|")
}

// GroupUnits splits a group key into its units.
func GroupUnits(group string) []string {
	if group == "" {
		return nil
	}
	return strings.Split(group, "|")
}

// NewGroups returns the groups formed when unit joins vocabulary (which
// must not yet contain it).
func (c *Curriculum) NewGroups(vocabulary []string, unit string) []string {
	if c.GroupSize == 1 {
		return []string{unit}
	}
	groups := make([]string, 0, len(vocabulary))
	for _, v := range vocabulary {
		if v == unit {
			continue
		}
		groups = append(groups, c.GroupKey(v, unit))
	}
	return groups
}

// BootstrapGroups returns the groups formed by the seed units, in order.
func (c *Curriculum) BootstrapGroups() []string {
	return c.Groups(c.Seeds)
}

// CardKey returns the card id for asking group in the named variant.
func (c *Curriculum) CardKey(group, variant string) (cards.ID, error) {
	v, ok := c.Variant(variant)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	return c.cardKey(group, v), nil
}

func (c *Curriculum) cardKey(group string, v Variant) cards.ID {
	if v.Scope == ScopeFamily {
		return cards.ID(c.Family(group) + ":" + v.Name)
	}
	return cards.ID(group + ":" + v.Name)
}

// ParseCardKey splits a card id into its group (or family) and variant.
func ParseCardKey(id cards.ID) (group, variant string, ok bool) {
	return strings.Cut(string(id), ":")
}

// Subsumption maps every prerequisite card to the final-form cards that
// supersede it, across the whole curriculum. Family-scoped prerequisites
// are covered by the final form of every unit in the family.
func (c *Curriculum) Subsumption() map[cards.ID][]cards.ID {
	out := make(map[cards.ID][]cards.ID)
	if c.GroupSize != 1 {
		for _, r := range c.Retirement {
			pre, _ := c.Variant(r.Prerequisite)
			fin, _ := c.Variant(r.FinalForm)
			for _, g := range c.Groups(c.Units) {
				out[c.cardKey(g, pre)] = []cards.ID{c.cardKey(g, fin)}
			}
		}
		return out
	}
	for _, r := range c.Retirement {
		pre, _ := c.Variant(r.Prerequisite)
		fin, _ := c.Variant(r.FinalForm)
		for _, u := range c.Units {
			key := c.cardKey(u, pre)
			final := c.cardKey(u, fin)
			if !slices.Contains(out[key], final) {
				out[key] = append(out[key], final)
			}
		}
	}
	return out
}

// VariantCards returns the card id of every variant of group, in unlock
// order.
func (c *Curriculum) VariantCards(group string) []cards.ID {
	ids := make([]cards.ID, len(c.Variants))
	for i, v := range c.Variants {
		ids[i] = c.cardKey(group, v)
	}
	return ids
}

// Groups returns every group formed by vocabulary, in the order the units
// were introduced.
func (c *Curriculum) Groups(vocabulary []string) []string {
	var groups []string
	for i, u := range vocabulary {
		groups = append(groups, c.NewGroups(vocabulary[:i], u)...)
	}
	return groups
}
