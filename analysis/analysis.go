// Package analysis implements the LR analysis engine: rule precedence
// inference, the nullable/FIRST fixpoint, LR(0) state enumeration by
// closure and successor construction, LALR(1) lookahead propagation,
// reduce-action synthesis, and shift/reduce and reduce/reduce conflict
// resolution.
package analysis

import (
	"fmt"
	"sort"

	"github.com/parsegen/lalr/bitset"
	"github.com/parsegen/lalr/diag"
	"github.com/parsegen/lalr/item"
	"github.com/parsegen/lalr/plink"
	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/state"
	"github.com/parsegen/lalr/symbol"
)

// Engine owns the shared resources one analysis run threads through
// every phase: the symbol table and rule set built by the caller, the
// state store and propagation-link arena this package populates, and the
// diagnostic log conflicts and grammar errors are reported into.
type Engine struct {
	Symbols *symbol.Table
	Rules   *rule.Set
	States  *state.Store
	Links   *plink.Arena[*item.Config]
	Diags   *diag.Log

	// Start is the augmented start symbol: the LHS of the grammar's
	// first-declared rule.
	Start *symbol.Symbol
}

// NewEngine returns an Engine ready to run over an already-frozen symbol
// table and rule set.
func NewEngine(symbols *symbol.Table, rules *rule.Set, diags *diag.Log) (*Engine, error) {
	start := rules.StartRule()
	if start == nil {
		return nil, fmt.Errorf("analysis: grammar has no rules")
	}
	return &Engine{
		Symbols: symbols,
		Rules:   rules,
		States:  state.NewStore(),
		Links:   plink.NewArena[*item.Config](),
		Diags:   diags,
		Start:   start.LHS,
	}, nil
}

func (e *Engine) nterm() uint {
	return uint(e.Symbols.NTerminal())
}

// Run executes every analysis phase in a fixed order: precedence
// inference, nullable/FIRST fixpoint, state enumeration, lookahead
// propagation, action synthesis, and conflict resolution.
func (e *Engine) Run() error {
	e.Rules.InferPrecedence()
	e.ComputeNullableAndFirst()
	if err := e.BuildAutomaton(); err != nil {
		return err
	}
	e.InvertBackLinks()
	e.PropagateLookaheads()
	e.SynthesizeActions()
	e.ResolveConflicts()
	e.ReportUnreducibleRules()
	return nil
}

// ComputeNullableAndFirst runs two fixpoint passes over the rule set:
// first nullability, then terminal membership in each nonterminal's
// FIRST set.
func (e *Engine) ComputeNullableAndFirst() {
	for changed := true; changed; {
		changed = false
		for _, r := range e.Rules.All() {
			if r.LHS.Nullable {
				continue
			}
			if allNullable(r.RHS) {
				r.LHS.Nullable = true
				changed = true
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, r := range e.Rules.All() {
			if e.scanFirst(r) {
				changed = true
			}
		}
	}
}

func allNullable(rhs []*symbol.Symbol) bool {
	for _, sym := range rhs {
		if sym.Kind != symbol.Nonterminal || !sym.Nullable {
			return false
		}
	}
	return true
}

// scanFirst performs one left-to-right scan of a rule's RHS toward the
// FIRST-set fixpoint and reports whether it grew first(A).
func (e *Engine) scanFirst(r *rule.Rule) bool {
	a := r.LHS
	changed := false
	for _, x := range r.RHS {
		switch x.Kind {
		case symbol.Terminal:
			if a.FirstSet.Add(uint(x.Index)) {
				changed = true
			}
			return changed
		case symbol.Multiterminal:
			for _, sub := range x.Subsymbols {
				if a.FirstSet.Add(uint(sub.Index)) {
					changed = true
				}
			}
			return changed
		default: // Nonterminal
			if x == a {
				if !a.Nullable {
					return changed
				}
				continue
			}
			if a.FirstSet.Union(x.FirstSet) {
				changed = true
			}
			if !x.Nullable {
				return changed
			}
		}
	}
	return changed
}

// sameShiftSymbol reports whether two dot symbols should shift into the
// same successor state: identity, or both multiterminals with identical
// subsymbol sequences. Since the symbol table interns one Symbol per
// declared name, pointer identity already covers the common case; the
// subsymbol comparison catches multiterminals built from the same
// subsymbols by separate declarations.
func sameShiftSymbol(a, b *symbol.Symbol) bool {
	if a == b {
		return true
	}
	if a.Kind != symbol.Multiterminal || b.Kind != symbol.Multiterminal {
		return false
	}
	if len(a.Subsymbols) != len(b.Subsymbols) {
		return false
	}
	for i := range a.Subsymbols {
		if a.Subsymbols[i] != b.Subsymbols[i] {
			return false
		}
	}
	return true
}

func sortBasis(cfgs []*item.Config) []*item.Config {
	out := make([]*item.Config, len(cfgs))
	copy(out, cfgs)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rule.Index() != out[j].Rule.Index() {
			return out[i].Rule.Index() < out[j].Rule.Index()
		}
		return out[i].Dot < out[j].Dot
	})
	return out
}

// BuildAutomaton seeds the start state and recursively enumerates every
// reachable LR(0) state.
func (e *Engine) BuildAutomaton() error {
	seed := item.NewStore(e.nterm())
	var basis []*item.Config
	eof := e.Symbols.EOFSymbol()
	for _, r := range e.Rules.ByLHS(e.Start) {
		c, _ := seed.GetOrCreate(r, 0)
		c.FWS.Add(uint(eof.Index))
		basis = append(basis, c)
	}
	if len(basis) == 0 {
		return fmt.Errorf("analysis: start symbol %s has no rules", e.Start.Name)
	}
	_, err := e.getState(basis, seed)
	return err
}

// getState hash-conses a state by its sorted basis, computing a fresh
// closure and successors only the first time a basis is seen.
func (e *Engine) getState(basis []*item.Config, store *item.Store) (*state.State, error) {
	sorted := sortBasis(basis)
	if existing, ok := e.States.Find(sorted); ok {
		if len(existing.Basis) != len(sorted) {
			panic("analysis: matching-hash bases have different lengths")
		}
		for i, nc := range sorted {
			ec := existing.Basis[i]
			e.Links.Each(nc.Bwd, func(target *item.Config) {
				ec.Bwd = e.Links.Push(ec.Bwd, target)
			})
		}
		return existing, nil
	}

	e.closure(store)
	st := e.States.Create(sorted)
	st.Closure = store.Sorted()
	if err := e.successors(st, st.Closure); err != nil {
		return nil, err
	}
	return st, nil
}

// closure expands every config already in store toward its closure,
// including configs added while the queue drains.
func (e *Engine) closure(store *item.Store) {
	queue := append([]*item.Config{}, store.All()...)
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		b := it.DotSymbol()
		if b == nil || b.Kind != symbol.Nonterminal {
			continue
		}

		contrib, propagateAll := firstOfBeta(it.Beta(), e.nterm())

		for _, r := range e.Rules.ByLHS(b) {
			nc, created := store.GetOrCreate(r, 0)
			if created {
				queue = append(queue, nc)
			}
			nc.FWS.Union(contrib)
			if propagateAll {
				it.Fwd = e.Links.Push(it.Fwd, nc)
			}
		}
	}
}

// firstOfBeta computes the terminal contribution of beta, the RHS tail
// after a closure item's dot, and reports whether beta is nullable in
// its entirety.
func firstOfBeta(beta []*symbol.Symbol, nterm uint) (contrib *bitset.Set, propagateAll bool) {
	contrib = bitset.New(nterm)
	propagateAll = true
	for _, y := range beta {
		switch y.Kind {
		case symbol.Terminal:
			contrib.Add(uint(y.Index))
			propagateAll = false
			return contrib, propagateAll
		case symbol.Multiterminal:
			for _, sub := range y.Subsymbols {
				contrib.Add(uint(sub.Index))
			}
			propagateAll = false
			return contrib, propagateAll
		default: // Nonterminal
			contrib.Union(y.FirstSet)
			if !y.Nullable {
				propagateAll = false
				return contrib, propagateAll
			}
		}
	}
	return contrib, propagateAll
}

// successors groups the state's items by the symbol immediately after
// their dot and emits one Shift per group (one per subsymbol, for a
// multiterminal).
func (e *Engine) successors(st *state.State, items []*item.Config) error {
	visited := make(map[*item.Config]bool, len(items))
	for _, it := range items {
		if visited[it] || it.AtEnd() {
			continue
		}
		x := it.DotSymbol()

		var group []*item.Config
		for _, other := range items {
			if visited[other] || other.AtEnd() {
				continue
			}
			if sameShiftSymbol(x, other.DotSymbol()) {
				group = append(group, other)
				visited[other] = true
			}
		}

		succStore := item.NewStore(e.nterm())
		newBasis := make([]*item.Config, 0, len(group))
		for _, g := range group {
			nc, _ := succStore.GetOrCreate(g.Rule, g.Dot+1)
			nc.Bwd = e.Links.Push(nc.Bwd, g)
			newBasis = append(newBasis, nc)
		}

		succ, err := e.getState(newBasis, succStore)
		if err != nil {
			return err
		}

		if x.Kind == symbol.Multiterminal {
			for _, sub := range x.Subsymbols {
				a := st.AddAction(sub, state.Shift)
				a.Target = succ
			}
		} else {
			a := st.AddAction(x, state.Shift)
			a.Target = succ
		}
	}
	return nil
}

// InvertBackLinks converts every back-propagation link collected during
// successor construction into a forward link on its source item. This
// is the first pass of lookahead propagation; PropagateLookaheads
// follows the resulting forward links to convergence.
func (e *Engine) InvertBackLinks() {
	for _, st := range e.States.All() {
		for _, c := range st.Basis {
			e.Links.Each(c.Bwd, func(src *item.Config) {
				src.Fwd = e.Links.Push(src.Fwd, c)
			})
		}
	}
}

// PropagateLookaheads runs the forward-link fixpoint that spreads each
// item's follow set along its Fwd chain until no set grows further.
func (e *Engine) PropagateLookaheads() {
	var all []*item.Config
	for _, st := range e.States.All() {
		all = append(all, st.Closure...)
	}

	for changed := true; changed; {
		changed = false
		for _, c := range all {
			if c.Complete {
				continue
			}
			e.Links.Each(c.Fwd, func(target *item.Config) {
				if target.FWS.Union(c.FWS) {
					changed = true
					target.Complete = false
				}
			})
			c.Complete = true
		}
	}
}

// SynthesizeActions adds a Reduce action per (state, terminal) pair that
// a completed item's follow set names, plus the Accept action on the
// start symbol in state 0.
func (e *Engine) SynthesizeActions() {
	terms := e.Symbols.Terminals()
	for _, st := range e.States.All() {
		for _, c := range st.Closure {
			if !c.AtEnd() {
				continue
			}
			c.FWS.Each(func(i uint) {
				a := st.AddAction(terms[i], state.Reduce)
				a.Rule = c.Rule
			})
		}
	}

	states := e.States.All()
	if len(states) > 0 {
		states[0].AddAction(e.Start, state.Accept)
	}
}

func precedenceOf(sym *symbol.Symbol) int {
	if sym == nil {
		return symbol.PrecUnset
	}
	return sym.Precedence
}

// ResolveConflicts sorts each state's actions, then resolves every pair
// sharing a lookahead by precedence and associativity.
func (e *Engine) ResolveConflicts() {
	for _, st := range e.States.All() {
		st.SortActions()
		for i := 0; i < len(st.Actions); i++ {
			ap := st.Actions[i]
			for j := i + 1; j < len(st.Actions) && st.Actions[j].Sp == ap.Sp; j++ {
				e.resolvePair(st.StateNum, ap, st.Actions[j])
			}
		}
	}
}

// resolvePair resolves one conflicting pair. apx always sorts no later
// than apy. stateNum identifies the state the pair was found in, so the
// diagnostic log can record which state and lookahead a conflict or its
// resolution arose from.
func (e *Engine) resolvePair(stateNum int, apx, apy *state.Action) {
	switch {
	case apx.Tag == state.Shift && apy.Tag == state.Shift:
		// Unreachable by construction: two shifts on the same lookahead
		// from the same state should already have been unified into one
		// group in successors(). Preserved as a defensive assertion
		// rather than silently accepted.
		panic(fmt.Sprintf("analysis: shift/shift conflict on %s", apx.Sp.Name))

	case apx.Tag == state.Shift && apy.Tag == state.Reduce:
		spx, spy := apx.Sp, apy.Rule.PrecSym
		px, py := precedenceOf(spx), precedenceOf(spy)
		switch {
		case spy == nil || px == symbol.PrecUnset || py == symbol.PrecUnset:
			apy.Tag = state.SRConflict
			e.Diags.Conflict(diag.ConflictSR, stateNum, spx.Name, fmt.Sprintf("shift/reduce conflict on %s, resolved by default (shift wins)", spx.Name))
		case px > py:
			apy.Tag = state.RdResolved
			e.Diags.Resolution(diag.ResolutionSR, stateNum, spx.Name, "precedence", fmt.Sprintf("shift/reduce conflict on %s resolved by precedence (shift wins)", spx.Name))
		case px < py:
			apx.Tag = state.ShResolved
			e.Diags.Resolution(diag.ResolutionSR, stateNum, spx.Name, "precedence", fmt.Sprintf("shift/reduce conflict on %s resolved by precedence (reduce wins)", spx.Name))
		case spx.Assoc == symbol.AssocRight:
			apy.Tag = state.RdResolved
			e.Diags.Resolution(diag.ResolutionSR, stateNum, spx.Name, "associativity", fmt.Sprintf("shift/reduce conflict on %s resolved by right associativity (shift wins)", spx.Name))
		case spx.Assoc == symbol.AssocLeft:
			apx.Tag = state.ShResolved
			e.Diags.Resolution(diag.ResolutionSR, stateNum, spx.Name, "associativity", fmt.Sprintf("shift/reduce conflict on %s resolved by left associativity (reduce wins)", spx.Name))
		default:
			apx.Tag = state.ErrorAction
			e.Diags.Resolution(diag.ResolutionSR, stateNum, spx.Name, "associativity", fmt.Sprintf("shift/reduce conflict on %s has equal, non-associative precedence, forced to error", spx.Name))
		}

	case apx.Tag == state.Reduce && apy.Tag == state.Reduce:
		spx, spy := apx.Rule.PrecSym, apy.Rule.PrecSym
		px, py := precedenceOf(spx), precedenceOf(spy)
		switch {
		case spx == nil || spy == nil || px == symbol.PrecUnset || py == symbol.PrecUnset || px == py:
			apy.Tag = state.RRConflict
			e.Diags.Conflict(diag.ConflictRR, stateNum, apx.Sp.Name, fmt.Sprintf("reduce/reduce conflict on %s, resolved by default (earlier-declared rule wins)", apx.Sp.Name))
		case px > py:
			apy.Tag = state.RdResolved
			e.Diags.Resolution(diag.ResolutionRR, stateNum, apx.Sp.Name, "precedence", fmt.Sprintf("reduce/reduce conflict on %s resolved by precedence", apx.Sp.Name))
		case px < py:
			apx.Tag = state.RdResolved
			e.Diags.Resolution(diag.ResolutionRR, stateNum, apx.Sp.Name, "precedence", fmt.Sprintf("reduce/reduce conflict on %s resolved by precedence", apx.Sp.Name))
		}

	default:
		// One side was already resolved by an earlier pairing sharing
		// this lookahead; nothing further to do.
	}
}

// ReportUnreducibleRules marks CanReduce on every rule reached by a
// surviving Reduce action and logs a grammar diagnostic for any rule
// that never is, unless the rule was explicitly marked to skip that
// check.
func (e *Engine) ReportUnreducibleRules() {
	for _, r := range e.Rules.All() {
		r.CanReduce = false
	}
	for _, st := range e.States.All() {
		for _, a := range st.Actions {
			if a.Tag == state.Reduce {
				a.Rule.CanReduce = true
			}
		}
	}
	for _, r := range e.Rules.All() {
		if !r.CanReduce && !r.NeverReduce {
			e.Diags.Grammarf("rule %q can never be reduced", r.String())
		}
	}
}
