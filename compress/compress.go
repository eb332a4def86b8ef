// Package compress implements the post-analysis table-shrinking passes:
// default-reduction compression, Shift -> ShiftReduce fusion (with the
// single-RHS/no-code splice), and the final state resort by action
// density.
package compress

import (
	"sort"

	"github.com/parsegen/lalr/report"
	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/state"
	"github.com/parsegen/lalr/symbol"
)

// Engine drives the compression passes over an already-resolved
// automaton.
type Engine struct {
	Symbols  *symbol.Table
	Rules    *rule.Set
	States   *state.Store
	Wildcard *symbol.Symbol // nil if the grammar declares none

	// DefaultReduces records, for every state in which the wildcard is a
	// lookahead or which has at least one non-start reduce, why
	// CompressDefaultReductions did or didn't pick a default rule. A
	// state with neither gets no entry.
	DefaultReduces []report.DefaultReduceEntry
}

// NewEngine returns a compression Engine.
func NewEngine(symbols *symbol.Table, rules *rule.Set, states *state.Store, wildcard *symbol.Symbol) *Engine {
	return &Engine{Symbols: symbols, Rules: rules, States: states, Wildcard: wildcard}
}

// Run executes every compression pass in order.
func (e *Engine) Run() {
	e.CompressDefaultReductions()
	e.FuseShiftReduce()
	e.Resort()
}

func isDropped(tag state.ActionTag) bool {
	switch tag {
	case state.NotUsed, state.ShResolved, state.RdResolved:
		return true
	}
	return false
}

// CompressDefaultReductions picks, per state, the most common reduce
// rule among its non-start reduces and collapses every action reducing
// by that rule onto the {default} lookahead, marking the state
// auto-reduce if nothing else survives.
func (e *Engine) CompressDefaultReductions() {
	defaultSym := e.Symbols.DefaultSymbol()

	for _, st := range e.States.All() {
		if e.Wildcard != nil && actionsOn(st, e.Wildcard) {
			e.DefaultReduces = append(e.DefaultReduces, report.DefaultReduceEntry{
				State:  st.StateNum,
				Reason: "wildcard-present",
			})
			continue
		}

		type count struct {
			r *rule.Rule
			n int
		}
		seen := map[*rule.Rule]*count{}
		var order []*count
		for _, a := range st.Actions {
			if a.Tag != state.Reduce || a.Rule.LHSIsStart {
				continue
			}
			c, ok := seen[a.Rule]
			if !ok {
				c = &count{r: a.Rule}
				seen[a.Rule] = c
				order = append(order, c)
			}
			c.n++
		}
		if len(order) == 0 {
			continue
		}
		sort.Slice(order, func(i, j int) bool {
			if order[i].n != order[j].n {
				return order[i].n > order[j].n
			}
			return order[i].r.Index() < order[j].r.Index()
		})
		rstar := order[0].r
		if order[0].n < 1 {
			continue
		}
		reason := "no-majority"
		if len(order) == 1 || order[0].n > order[1].n {
			reason = "majority-rule"
		}
		e.DefaultReduces = append(e.DefaultReduces, report.DefaultReduceEntry{
			State:  st.StateNum,
			Rule:   rstar.Index(),
			Reason: reason,
		})

		first := true
		for _, a := range st.Actions {
			if a.Tag != state.Reduce || a.Rule != rstar {
				continue
			}
			if first {
				a.Sp = defaultSym
				first = false
			} else {
				a.Tag = state.NotUsed
			}
		}
		st.SortActions()

		remaining := false
		for _, a := range st.Actions {
			if isDropped(a.Tag) {
				continue
			}
			if a.Tag == state.Reduce && a.Sp == defaultSym {
				continue
			}
			remaining = true
			break
		}
		if !remaining {
			st.AutoReduce = true
			st.DefaultReduceRule = rstar
		}
	}
}

func actionsOn(st *state.State, sym *symbol.Symbol) bool {
	for _, a := range st.Actions {
		if a.Sp == sym {
			return true
		}
	}
	return false
}

// FuseShiftReduce converts shifts into auto-reduce states into fused
// ShiftReduce actions, then splices single-RHS, code-free ShiftReduce
// actions through to what their implied reduction would have done next.
func (e *Engine) FuseShiftReduce() {
	for _, st := range e.States.All() {
		for _, a := range st.Actions {
			if a.Tag != state.Shift || a.Target == nil {
				continue
			}
			if a.Target.AutoReduce {
				a.Tag = state.ShiftReduce
				a.Rule = a.Target.DefaultReduceRule
				a.Target = nil
			}
		}
	}

	for _, st := range e.States.All() {
		for _, a := range st.Actions {
			if a.Tag != state.ShiftReduce {
				continue
			}
			r := a.Rule
			if len(r.RHS) != 1 || r.HasCode || a.Sp.Index < e.Symbols.NTerminal() {
				continue
			}
			spliced := findAction(st, r.LHS)
			if spliced == nil {
				continue
			}
			a.SpOpt = a.Sp
			switch spliced.Tag {
			case state.Shift, state.ShiftReduce:
				a.Tag = spliced.Tag
				a.Target = spliced.Target
				a.Rule = spliced.Rule
			}
		}
	}
}

func findAction(st *state.State, sp *symbol.Symbol) *state.Action {
	for _, a := range st.Actions {
		if a.Sp == sp {
			return a
		}
	}
	return nil
}

// Resort reorders states by descending action density: state 0 stays
// fixed, the rest are ordered by (more nonterminal actions, more
// terminal actions, prior state number).
func (e *Engine) Resort() {
	all := e.States.All()
	if len(all) == 0 {
		return
	}

	nterm := e.Symbols.NTerminal()
	for _, st := range all {
		nTkn, nNt := 0, 0
		for _, a := range st.Actions {
			if isDropped(a.Tag) {
				continue
			}
			if a.Sp.Index < nterm {
				nTkn++
			} else {
				nNt++
			}
		}
		st.NTknAct, st.NNtAct = nTkn, nNt
	}

	first := all[0]
	rest := make([]*state.State, len(all)-1)
	copy(rest, all[1:])
	sort.SliceStable(rest, func(i, j int) bool {
		a, b := rest[i], rest[j]
		if a.NNtAct != b.NNtAct {
			return a.NNtAct > b.NNtAct
		}
		if a.NTknAct != b.NTknAct {
			return a.NTknAct > b.NTknAct
		}
		return a.StateNum < b.StateNum
	})

	resorted := make([]*state.State, 0, len(all))
	resorted = append(resorted, first)
	resorted = append(resorted, rest...)
	for i, st := range resorted {
		st.StateNum = i
	}
	e.States.Resort(resorted)
}

// NxState returns the number of states excluding the trailing run of
// auto-reduce states. Must be called after Resort.
func (e *Engine) NxState() int {
	all := e.States.All()
	n := len(all)
	for n > 0 && all[n-1].AutoReduce {
		n--
	}
	return n
}
