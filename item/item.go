// Package item implements LR configurations, dotted productions carrying
// a lookahead (follow) set, and the per-state table that hash-conses
// them by (rule, dot) while a state's closure is under construction.
package item

import (
	"sort"

	"github.com/parsegen/lalr/bitset"
	"github.com/parsegen/lalr/plink"
	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/symbol"
)

// Config is a single configuration (A -> alpha . beta, FWS).
type Config struct {
	Rule *rule.Rule
	Dot  int
	FWS  *bitset.Set

	// Fwd/Bwd are propagation-link chains into a shared plink.Arena owned
	// by the analysis engine: Bwd collects links during state
	// construction, Fwd is what the lookahead fixpoint actually walks
	// once the back-links are inverted.
	Fwd plink.Handle
	Bwd plink.Handle

	// Complete marks an item as done for the lookahead fixpoint: set once
	// its follow set has been pushed along Fwd, cleared when that set
	// grows again.
	Complete bool
}

// newConfig allocates a Config with an empty FWS of width nterminal and
// nil-valued (empty) link chains.
func newConfig(r *rule.Rule, dot int, nterminal uint) *Config {
	return &Config{
		Rule: r,
		Dot:  dot,
		FWS:  bitset.New(nterminal),
		Fwd:  plink.Nil,
		Bwd:  plink.Nil,
	}
}

// DotSymbol returns the symbol immediately after the dot, or nil if the
// dot is at the end of the RHS.
func (c *Config) DotSymbol() *symbol.Symbol {
	if c.AtEnd() {
		return nil
	}
	return c.Rule.RHS[c.Dot]
}

// AtEnd reports whether the dot has reached the end of the RHS.
func (c *Config) AtEnd() bool {
	return c.Dot >= len(c.Rule.RHS)
}

// Beta returns the RHS symbols strictly after the dot.
func (c *Config) Beta() []*symbol.Symbol {
	if c.AtEnd() {
		return nil
	}
	return c.Rule.RHS[c.Dot+1:]
}

func (c *Config) String() string {
	s := c.Rule.LHS.Name + " ->"
	for i, sym := range c.Rule.RHS {
		if i == c.Dot {
			s += " ."
		}
		s += " " + sym.Name
	}
	if c.AtEnd() {
		s += " ."
	}
	return s
}

type key struct {
	ruleIndex int
	dot       int
}

// Store hash-conses configurations by (rule index, dot) while one state's
// closure is being built. It must be created fresh per state: two
// distinct states can legitimately contain items with identical
// (rule, dot) but different follow sets, so this table is never a
// process-wide singleton.
type Store struct {
	nterminal uint
	byKey     map[key]*Config
	order     []*Config
}

// NewStore returns an empty, scoped configuration table.
func NewStore(nterminal uint) *Store {
	return &Store{
		nterminal: nterminal,
		byKey:     map[key]*Config{},
	}
}

// GetOrCreate returns the Config for (r, dot), creating it (with an
// empty FWS) on first request. The second return reports whether a new
// Config was created.
func (s *Store) GetOrCreate(r *rule.Rule, dot int) (*Config, bool) {
	k := key{r.Index(), dot}
	if c, ok := s.byKey[k]; ok {
		return c, false
	}
	c := newConfig(r, dot, s.nterminal)
	s.byKey[k] = c
	s.order = append(s.order, c)
	return c, true
}

// Lookup returns the Config for (r, dot) without creating it.
func (s *Store) Lookup(r *rule.Rule, dot int) (*Config, bool) {
	c, ok := s.byKey[key{r.Index(), dot}]
	return c, ok
}

// All returns every configuration in insertion order.
func (s *Store) All() []*Config {
	return s.order
}

// Sorted returns every configuration ordered by (rule index, dot), the
// canonical basis/closure ordering required before hashing or comparing
// two item sets.
func (s *Store) Sorted() []*Config {
	out := make([]*Config, len(s.order))
	copy(out, s.order)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rule.Index() != out[j].Rule.Index() {
			return out[i].Rule.Index() < out[j].Rule.Index()
		}
		return out[i].Dot < out[j].Dot
	})
	return out
}

// Len returns the number of distinct configurations held.
func (s *Store) Len() int {
	return len(s.order)
}
