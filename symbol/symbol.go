// Package symbol implements the grammar symbol table: classification of
// terminals, nonterminals and multiterminals, precedence and
// associativity, per-symbol FIRST sets, and the final index assignment
// that partitions symbol space into [terminals | nonterminals |
// multiterminals].
package symbol

import (
	"fmt"
	"sort"
	"unicode"

	"github.com/parsegen/lalr/bitset"
	"github.com/parsegen/lalr/intern"
)

// Kind classifies a Symbol.
type Kind int

const (
	Terminal Kind = iota
	Nonterminal
	Multiterminal
)

func (k Kind) String() string {
	switch k {
	case Terminal:
		return "terminal"
	case Nonterminal:
		return "nonterminal"
	case Multiterminal:
		return "multiterminal"
	default:
		return "unknown"
	}
}

// Assoc is a symbol's declared associativity.
type Assoc int

const (
	AssocUnknown Assoc = iota
	AssocLeft
	AssocRight
	AssocNone
)

// PrecUnset is the sentinel precedence value meaning "no precedence
// declared".
const PrecUnset = -1

// RuleRef is the minimal view of a rule.Rule that this package needs, so
// that Symbol.RuleHead can point at the head of a nonterminal's rule chain
// without symbol importing rule (which itself imports symbol for LHS/RHS).
type RuleRef interface {
	RuleIndex() int
}

// Symbol is a grammar terminal, nonterminal, or multiterminal.
type Symbol struct {
	Name   string
	handle intern.Handle

	Kind       Kind
	Index      int // assigned by Table.Freeze; -1 until then
	Precedence int // PrecUnset if undeclared
	Assoc      Assoc

	// Nonterminals only.
	FirstSet *bitset.Set
	Nullable bool
	RuleHead RuleRef

	// Multiterminals only: the constituent terminals.
	Subsymbols []*Symbol

	Fallback       *Symbol
	Destructor     string
	Datatype       string
	DtNum          int
	CarriesContent bool

	useCnt int
}

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Name
}

// IsTerminal reports whether s is a Terminal or Multiterminal, since both
// shift on input, and multiterminal/terminal identity compares equal for
// action lookup purposes.
func (s *Symbol) IsTerminal() bool {
	return s.Kind == Terminal || s.Kind == Multiterminal
}

// Table is the symbol table: keyed by name, populated during grammar
// construction, then frozen into a stable index space.
type Table struct {
	interner *intern.Store
	byHandle map[intern.Handle]*Symbol
	order    []*Symbol // creation order, pre-freeze

	frozen    bool
	terminals []*Symbol
	nonterms  []*Symbol
	multis    []*Symbol

	nterminal int // includes $ but excludes {default}
	nsymbol   int // terminals + nonterminals, excludes {default} and multiterminals

	defaultSym *Symbol
}

// EOF is the name of the built-in end-of-input terminal, always assigned
// index 0.
const EOF = "$"

// DefaultSentinelName is the synthetic nonterminal inserted at freeze time
// to mark the boundary between nonterminals and multiterminals, and to
// serve as the lookahead value default-reduction actions key on.
const DefaultSentinelName = "{default}"

// NewTable returns a Table pre-populated with the "$" end-of-input
// terminal at index 0.
func NewTable() *Table {
	t := &Table{
		interner: intern.New(),
		byHandle: map[intern.Handle]*Symbol{},
	}
	eof := t.create(EOF, Terminal)
	eof.Precedence = PrecUnset
	return t
}

func classify(name string) Kind {
	r := []rune(name)[0]
	if unicode.IsUpper(r) {
		return Terminal
	}
	return Nonterminal
}

func (t *Table) create(name string, kind Kind) *Symbol {
	h := t.interner.Intern(name)
	sym := &Symbol{
		Name:       name,
		handle:     h,
		Kind:       kind,
		Index:      -1,
		Precedence: PrecUnset,
		Assoc:      AssocUnknown,
	}
	if kind == Nonterminal {
		sym.FirstSet = nil // filled in once nterminal is known, during analysis
	}
	t.byHandle[h] = sym
	t.order = append(t.order, sym)
	return sym
}

// GetOrCreate returns the Symbol named name, classifying it on first
// creation by the initial-letter rule: uppercase initial is a Terminal,
// lowercase initial is a Nonterminal. Multiterminals must be created
// explicitly via CreateMultiterminal. Repeated calls return the existing
// entry and bump its use count.
func (t *Table) GetOrCreate(name string) (*Symbol, error) {
	if t.frozen {
		return nil, fmt.Errorf("symbol table is frozen")
	}
	if name == "" {
		return nil, fmt.Errorf("symbol name must not be empty")
	}
	if h, ok := t.interner.Find(name); ok {
		sym := t.byHandle[h]
		sym.useCnt++
		return sym, nil
	}
	return t.create(name, classify(name)), nil
}

// CreateMultiterminal declares a %token_class symbol whose subsymbols are
// all terminals. Every subName must already resolve to a Terminal.
func (t *Table) CreateMultiterminal(name string, subNames []string) (*Symbol, error) {
	if t.frozen {
		return nil, fmt.Errorf("symbol table is frozen")
	}
	if _, ok := t.interner.Find(name); ok {
		return nil, fmt.Errorf("duplicate symbol name: %s", name)
	}
	subs := make([]*Symbol, 0, len(subNames))
	for _, sn := range subNames {
		sub, err := t.GetOrCreate(sn)
		if err != nil {
			return nil, err
		}
		if sub.Kind != Terminal {
			return nil, fmt.Errorf("multiterminal %s: member %s is not a terminal", name, sn)
		}
		subs = append(subs, sub)
	}
	sym := t.create(name, Multiterminal)
	sym.Subsymbols = subs
	return sym, nil
}

// Lookup returns the symbol named name without creating it.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	h, ok := t.interner.Find(name)
	if !ok {
		return nil, false
	}
	return t.byHandle[h], true
}

// EOFSymbol returns the built-in end-of-input terminal.
func (t *Table) EOFSymbol() *Symbol {
	s, _ := t.Lookup(EOF)
	return s
}

// Freeze partitions the symbol space into [terminals | nonterminals |
// multiterminals], sorted within each partition by original creation
// order, and assigns each a dense Index. It also inserts the {default}
// sentinel nonterminal at the boundary between nonterminals and
// multiterminals. Freeze is idempotent-unsafe: call it exactly once,
// after the whole grammar has been parsed.
func (t *Table) Freeze() error {
	if t.frozen {
		return fmt.Errorf("symbol table already frozen")
	}

	for _, sym := range t.order {
		switch sym.Kind {
		case Terminal:
			t.terminals = append(t.terminals, sym)
		case Nonterminal:
			t.nonterms = append(t.nonterms, sym)
		case Multiterminal:
			t.multis = append(t.multis, sym)
		}
	}

	// $ must stay at index 0: it was created first, so a stable sort on
	// creation order already guarantees this, but assert it defensively.
	if len(t.terminals) == 0 || t.terminals[0].Name != EOF {
		panic("symbol: $ sentinel is not the first terminal")
	}

	sort.SliceStable(t.terminals, func(i, j int) bool { return false })
	sort.SliceStable(t.nonterms, func(i, j int) bool { return false })
	sort.SliceStable(t.multis, func(i, j int) bool { return false })

	t.defaultSym = &Symbol{
		Name:       DefaultSentinelName,
		Kind:       Nonterminal,
		Index:      -1,
		Precedence: PrecUnset,
	}

	idx := 0
	for _, sym := range t.terminals {
		sym.Index = idx
		idx++
	}
	t.nterminal = idx
	for _, sym := range t.nonterms {
		sym.Index = idx
		idx++
	}
	t.defaultSym.Index = idx
	idx++
	t.nsymbol = idx - 1 // excludes {default}
	for _, sym := range t.multis {
		sym.Index = idx
		idx++
	}

	for _, sym := range t.nonterms {
		sym.FirstSet = bitset.New(uint(t.nterminal))
	}

	t.frozen = true
	return nil
}

// NTerminal returns the number of terminals, including $, after Freeze.
func (t *Table) NTerminal() int { return t.nterminal }

// NSymbol returns the number of terminals plus nonterminals (excluding
// {default} and multiterminals) after Freeze.
func (t *Table) NSymbol() int { return t.nsymbol }

// DefaultSymbol returns the synthetic {default} sentinel inserted by
// Freeze.
func (t *Table) DefaultSymbol() *Symbol { return t.defaultSym }

// Terminals returns terminals in final index order.
func (t *Table) Terminals() []*Symbol { return t.terminals }

// Nonterminals returns nonterminals (excluding {default}) in final index
// order.
func (t *Table) Nonterminals() []*Symbol { return t.nonterms }

// Multiterminals returns multiterminals in final index order.
func (t *Table) Multiterminals() []*Symbol { return t.multis }

// All returns every symbol the table knows about, terminals first, then
// nonterminals, then {default}, then multiterminals, in final index order.
func (t *Table) All() []*Symbol {
	out := make([]*Symbol, 0, len(t.terminals)+len(t.nonterms)+1+len(t.multis))
	out = append(out, t.terminals...)
	out = append(out, t.nonterms...)
	out = append(out, t.defaultSym)
	out = append(out, t.multis...)
	return out
}
