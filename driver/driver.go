// Package driver implements the fixed-order phase orchestration: build
// the symbol table and rule set from an input.Grammar, run the analysis
// and compression engines, pack the action tables, and assemble the
// report.
package driver

import (
	"fmt"

	"github.com/parsegen/lalr/acttab"
	"github.com/parsegen/lalr/analysis"
	"github.com/parsegen/lalr/compress"
	"github.com/parsegen/lalr/diag"
	"github.com/parsegen/lalr/input"
	"github.com/parsegen/lalr/report"
	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/state"
	"github.com/parsegen/lalr/symbol"
)

// Option configures a compilation run.
type Option func(*options)

type options struct{}

// Compile is the sole entry point: it builds the symbol table and rule
// set from g, runs the LR analysis and compression pipeline, and packs
// the result into input.CompiledTables. If the grammar has accumulated
// errors, CompiledTables is nil but the report still describes what was
// found, since later phases are skipped once earlier ones have produced
// errors that would make their output meaningless.
func Compile(g *input.Grammar, opts ...Option) (*input.CompiledTables, *report.Report, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	diags := diag.NewLog()

	symbols, byName, err := buildSymbols(g)
	if err != nil {
		return nil, nil, err
	}
	if err := symbols.Freeze(); err != nil {
		return nil, nil, err
	}

	start, ok := byName[g.Directives.StartSymbol]
	if !ok {
		return nil, nil, fmt.Errorf("driver: start symbol %q not declared", g.Directives.StartSymbol)
	}

	rules, err := buildRules(g, byName)
	if err != nil {
		return nil, nil, err
	}
	if rules.StartRule() == nil || rules.StartRule().LHS != start {
		return nil, nil, fmt.Errorf("driver: the first declared rule must have the start symbol %q as its LHS", start.Name)
	}
	if err := rules.Freeze(start); err != nil {
		return nil, nil, err
	}

	eng, err := analysis.NewEngine(symbols, rules, diags)
	if err != nil {
		return nil, nil, err
	}
	if err := eng.Run(); err != nil {
		return nil, nil, err
	}

	rep := report.Build(symbols, rules, eng.States, diags, nil)
	if diags.HasErrors() {
		return nil, rep, nil
	}

	var wildcard *symbol.Symbol
	if g.Directives.WildcardSymbol != "" {
		w, ok := byName[g.Directives.WildcardSymbol]
		if !ok {
			return nil, nil, fmt.Errorf("driver: wildcard symbol %q not declared", g.Directives.WildcardSymbol)
		}
		wildcard = w
	}

	comp := compress.NewEngine(symbols, rules, eng.States, wildcard)
	comp.Run()

	tables := packTables(symbols, rules, eng.States, comp)
	rep = report.Build(symbols, rules, eng.States, diags, comp.DefaultReduces)
	return tables, rep, nil
}

// buildSymbols constructs the symbol table from g.Symbols in two passes
// (terminals/nonterminals, then multiterminals, since CreateMultiterminal
// requires its subsymbols to already exist), then resolves fallback
// links in a third pass.
func buildSymbols(g *input.Grammar) (*symbol.Table, map[string]*symbol.Symbol, error) {
	tab := symbol.NewTable()
	byName := map[string]*symbol.Symbol{}

	for _, sp := range g.Symbols {
		if sp.Kind == symbol.Multiterminal {
			continue
		}
		sym, err := tab.GetOrCreate(sp.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("driver: symbol %q: %w", sp.Name, err)
		}
		applySpec(sym, sp)
		byName[sp.Name] = sym
	}

	for _, sp := range g.Symbols {
		if sp.Kind != symbol.Multiterminal {
			continue
		}
		sym, err := tab.CreateMultiterminal(sp.Name, sp.Subsymbols)
		if err != nil {
			return nil, nil, fmt.Errorf("driver: multiterminal %q: %w", sp.Name, err)
		}
		applySpec(sym, sp)
		byName[sp.Name] = sym
	}

	for _, sp := range g.Symbols {
		if sp.Fallback == "" {
			continue
		}
		fb, ok := byName[sp.Fallback]
		if !ok {
			return nil, nil, fmt.Errorf("driver: symbol %q falls back to undeclared symbol %q", sp.Name, sp.Fallback)
		}
		byName[sp.Name].Fallback = fb
	}

	return tab, byName, nil
}

func applySpec(sym *symbol.Symbol, sp input.SymbolSpec) {
	sym.Precedence = sp.Precedence
	sym.Assoc = sp.Assoc
	sym.Destructor = sp.Destructor
	sym.Datatype = sp.Datatype
	sym.CarriesContent = sp.Datatype != ""
}

func buildRules(g *input.Grammar, byName map[string]*symbol.Symbol) (*rule.Set, error) {
	rules := rule.NewSet()
	for _, rs := range g.Rules {
		lhs, ok := byName[rs.LHS]
		if !ok {
			return nil, fmt.Errorf("driver: rule LHS %q not declared", rs.LHS)
		}
		rhs := make([]*symbol.Symbol, len(rs.RHS))
		for i, name := range rs.RHS {
			sym, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("driver: rule %q RHS symbol %q not declared", rs.LHS, name)
			}
			rhs[i] = sym
		}
		var rhsAlias []*symbol.Symbol
		if len(rs.RHSAlias) > 0 {
			rhsAlias = make([]*symbol.Symbol, len(rs.RHSAlias))
			for i, name := range rs.RHSAlias {
				if name == "" {
					continue
				}
				sym, ok := byName[name]
				if !ok {
					return nil, fmt.Errorf("driver: rule %q RHS alias %q not declared", rs.LHS, name)
				}
				rhsAlias[i] = sym
			}
		}
		var precSym *symbol.Symbol
		if rs.PrecSym != "" {
			sym, ok := byName[rs.PrecSym]
			if !ok {
				return nil, fmt.Errorf("driver: rule %q precedence symbol %q not declared", rs.LHS, rs.PrecSym)
			}
			precSym = sym
		}
		if _, err := rules.Add(lhs, rhs, rhsAlias, precSym, rs.Code, rs.Code != "", rs.Line); err != nil {
			return nil, fmt.Errorf("driver: rule %q: %w", rs.LHS, err)
		}
	}
	return rules, nil
}

// emittable reports whether an action tag survives into the packed
// tables: conflict markers and superseded fusion candidates are dropped.
func emittable(tag state.ActionTag) bool {
	switch tag {
	case state.Shift, state.ShiftReduce, state.Reduce, state.Accept, state.ErrorAction:
		return true
	default:
		return false
	}
}

// packTables folds every state's surviving actions into a single shared
// acttab.Table and assembles input.CompiledTables. Terminal rows
// (including the {default} pseudo-lookahead at index nterminal) are
// packed in safe mode; nonterminal GOTO rows are packed in unsafe mode,
// so both bands share one packed array.
func packTables(symbols *symbol.Table, rules *rule.Set, states *state.Store, comp *compress.Engine) *input.CompiledTables {
	nterminal := symbols.NTerminal()
	nsymbol := symbols.NSymbol()
	nrule := rules.Len()
	all := states.All()
	nstate := len(all)

	defaultSym := symbols.DefaultSymbol()
	tab := acttab.NewTable(nsymbol+1, nterminal)

	entries := make([]input.StateEntry, len(all))
	for _, st := range all {
		for _, a := range st.Actions {
			if !emittable(a.Tag) {
				continue
			}
			if a.Sp != defaultSym && a.Sp.Kind != symbol.Terminal {
				continue
			}
			lookahead := a.Sp.Index
			if a.Sp == defaultSym {
				lookahead = nterminal
			}
			tab.Add(lookahead, encodeAction(nstate, nrule, a))
		}

		itknOfst := state.NoOffset
		if tab.HasPending() {
			itknOfst = tab.Insert(true)
		}

		for _, a := range st.Actions {
			if !emittable(a.Tag) || a.Sp.Kind != symbol.Nonterminal || a.Sp == defaultSym {
				continue
			}
			tab.Add(a.Sp.Index, encodeAction(nstate, nrule, a))
		}

		intOfst := state.NoOffset
		if tab.HasPending() {
			intOfst = tab.Insert(false)
		}

		defRule := -1
		if st.DefaultReduceRule != nil {
			defRule = st.DefaultReduceRule.Index()
		}
		entries[st.StateNum] = input.StateEntry{
			StateNum:      st.StateNum,
			ITknOfst:      itknOfst,
			INtOfst:       intOfst,
			DefaultReduce: defRule,
			AutoReduce:    st.AutoReduce,
		}
	}

	aaction := make([]input.ActionEntry, tab.Size())
	for i := range aaction {
		aaction[i] = input.ActionEntry{Lookahead: tab.Lookahead(i), Action: tab.Action(i)}
	}

	fallback := make([]int, nterminal)
	for i, t := range symbols.Terminals() {
		if t.Fallback != nil {
			fallback[i] = t.Fallback.Index
		} else {
			fallback[i] = -1
		}
	}

	return &input.CompiledTables{
		NState:        nstate,
		NXState:       comp.NxState(),
		NRule:         nrule,
		NSymbol:       nsymbol,
		NTerminal:     nterminal,
		SortedStates:  entries,
		AAction:       aaction,
		FallbackTable: fallback,
	}
}

// NewAcceptorForGrammar compiles g and wraps the result in an Acceptor,
// for callers that need to walk the compiled table directly instead of
// handing it to an emitter (the CLI's run subcommand, round-trip tests).
// It re-derives the rule set Compile builds internally, since
// input.CompiledTables deliberately omits the RHS-length/LHS-index shape
// Acceptor needs.
func NewAcceptorForGrammar(g *input.Grammar, opts ...Option) (*Acceptor, *input.CompiledTables, *report.Report, error) {
	tables, rep, err := Compile(g, opts...)
	if err != nil {
		return nil, nil, rep, err
	}
	if tables == nil {
		return nil, nil, rep, fmt.Errorf("driver: grammar has errors, cannot build an acceptor")
	}

	symbols, byName, err := buildSymbols(g)
	if err != nil {
		return nil, nil, rep, err
	}
	if err := symbols.Freeze(); err != nil {
		return nil, nil, rep, err
	}
	start, ok := byName[g.Directives.StartSymbol]
	if !ok {
		return nil, nil, rep, fmt.Errorf("driver: start symbol %q not declared", g.Directives.StartSymbol)
	}
	rules, err := buildRules(g, byName)
	if err != nil {
		return nil, nil, rep, err
	}
	if err := rules.Freeze(start); err != nil {
		return nil, nil, rep, err
	}

	lens, lhs := RuleTables(rules)
	return NewAcceptor(tables, lens, lhs), tables, rep, nil
}

// RuleTables extracts the per-rule RHS length and LHS symbol index in
// rule-index order, the shape Acceptor needs and input.CompiledTables
// deliberately omits.
func RuleTables(rules *rule.Set) (lens, lhs []int) {
	all := rules.All()
	lens = make([]int, len(all))
	lhs = make([]int, len(all))
	for i, r := range all {
		lens[i] = len(r.RHS)
		lhs[i] = r.LHS.Index
	}
	return lens, lhs
}

func encodeAction(nstate, nrule int, a *state.Action) int {
	switch a.Tag {
	case state.Shift:
		return int(input.Encode(nstate, nrule, input.ActionShift, a.Target.StateNum, -1))
	case state.ShiftReduce:
		return int(input.Encode(nstate, nrule, input.ActionShiftReduce, -1, a.Rule.Index()))
	case state.Reduce:
		return int(input.Encode(nstate, nrule, input.ActionReduce, -1, a.Rule.Index()))
	case state.Accept:
		return int(input.Encode(nstate, nrule, input.ActionAccept, -1, -1))
	case state.ErrorAction:
		return int(input.Encode(nstate, nrule, input.ActionError, -1, -1))
	default:
		panic(fmt.Sprintf("driver: action tag %s cannot be encoded", a.Tag))
	}
}
