// Package rule implements the grammar's ordered production store: rules
// keyed by LHS, two-pass index assignment, and precedence inference for
// rules that don't declare one explicitly.
package rule

import (
	"fmt"

	"github.com/parsegen/lalr/symbol"
)

// Rule is a single grammar production LHS -> RHS.
type Rule struct {
	LHS       *symbol.Symbol
	RHS       []*symbol.Symbol
	RHSAlias  []*symbol.Symbol // nil entries where no alias was given
	PrecSym   *symbol.Symbol   // nil if the rule has no precedence
	Code      string
	HasCode   bool
	Line      int
	index     int // assigned by Set.Freeze
	LHSIsStart bool

	CanReduce   bool // reachable and reducible; set during analysis
	NeverReduce bool // user-forced via %fallback-style directive
	DoesReduce  bool // survives compression; not set by any phase of this module
}

// RuleIndex implements symbol.RuleRef.
func (r *Rule) RuleIndex() int { return r.index }

// Index returns the rule's position in the final two-pass ordering.
func (r *Rule) Index() int { return r.index }

func (r *Rule) String() string {
	s := r.LHS.Name + " ->"
	for _, sym := range r.RHS {
		s += " " + sym.Name
	}
	return s
}

// Set is the ordered collection of a grammar's rules, indexed by LHS for
// closure construction.
type Set struct {
	rules     []*Rule
	byLHS     map[*symbol.Symbol][]*Rule
	frozen    bool
}

// NewSet returns an empty rule set.
func NewSet() *Set {
	return &Set{byLHS: map[*symbol.Symbol][]*Rule{}}
}

// Add appends a new rule to the set. lhs must be a nonterminal. Add does
// not assign Index; call Freeze once every rule has been added.
func (s *Set) Add(lhs *symbol.Symbol, rhs, rhsAlias []*symbol.Symbol, precsym *symbol.Symbol, code string, hasCode bool, line int) (*Rule, error) {
	if s.frozen {
		return nil, fmt.Errorf("rule set is frozen")
	}
	if lhs.Kind != symbol.Nonterminal {
		return nil, fmt.Errorf("rule LHS %s must be a nonterminal", lhs.Name)
	}
	if rhsAlias != nil && len(rhsAlias) != len(rhs) {
		return nil, fmt.Errorf("rhsAlias length %d does not match RHS length %d", len(rhsAlias), len(rhs))
	}
	r := &Rule{
		LHS:      lhs,
		RHS:      rhs,
		RHSAlias: rhsAlias,
		PrecSym:  precsym,
		Code:     code,
		HasCode:  hasCode,
		Line:     line,
		index:    -1,
	}
	if lhs.RuleHead == nil {
		lhs.RuleHead = r
	}
	s.rules = append(s.rules, r)
	s.byLHS[lhs] = append(s.byLHS[lhs], r)
	return r, nil
}

// InferPrecedence fills PrecSym on every rule that didn't declare one
// explicitly, by scanning its RHS left to right for the first symbol with
// a defined precedence. For a multiterminal, the symbol's own
// subsymbols are scanned for the first one with a defined precedence.
func (s *Set) InferPrecedence() {
	for _, r := range s.rules {
		if r.PrecSym != nil {
			continue
		}
		for _, sym := range r.RHS {
			if sym.Kind == symbol.Multiterminal {
				if p := firstSubsymbolWithPrecedence(sym); p != nil {
					r.PrecSym = p
					break
				}
				continue
			}
			if sym.Precedence != symbol.PrecUnset {
				r.PrecSym = sym
				break
			}
		}
	}
}

func firstSubsymbolWithPrecedence(mt *symbol.Symbol) *symbol.Symbol {
	for _, sub := range mt.Subsymbols {
		if sub.Precedence != symbol.PrecUnset {
			return sub
		}
	}
	return nil
}

// Freeze assigns each rule's final Index in two passes: rules carrying an
// explicit action (HasCode) are numbered first, then the rest. It also
// marks LHSIsStart on every rule whose LHS is the augmented start symbol.
func (s *Set) Freeze(startSymbol *symbol.Symbol) error {
	if s.frozen {
		return fmt.Errorf("rule set already frozen")
	}
	idx := 0
	for _, r := range s.rules {
		if r.HasCode {
			r.index = idx
			idx++
		}
	}
	for _, r := range s.rules {
		if !r.HasCode {
			r.index = idx
			idx++
		}
	}
	for _, r := range s.rules {
		r.LHSIsStart = r.LHS == startSymbol
	}
	s.frozen = true
	return nil
}

// All returns every rule, in final Index order (valid only after Freeze;
// otherwise in insertion order).
func (s *Set) All() []*Rule {
	if !s.frozen {
		return s.rules
	}
	out := make([]*Rule, len(s.rules))
	for _, r := range s.rules {
		out[r.index] = r
	}
	return out
}

// ByLHS returns every rule whose LHS is sym, in insertion order.
func (s *Set) ByLHS(sym *symbol.Symbol) []*Rule {
	return s.byLHS[sym]
}

// StartRule returns the augmented start rule: the first rule added to
// the set, before the two-pass Freeze reordering. Exactly one rule is
// the augmented start rule, and it is always the first one seen.
func (s *Set) StartRule() *Rule {
	if len(s.rules) == 0 {
		return nil
	}
	return s.rules[0]
}

// Len returns the number of rules in the set.
func (s *Set) Len() int { return len(s.rules) }
