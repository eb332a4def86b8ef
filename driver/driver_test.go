package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parsegen/lalr/input"
	"github.com/parsegen/lalr/symbol"
)

// minimalGrammar is start -> expr ; expr -> NUM, the smallest grammar that
// exercises a shift, a fused shift-reduce, an ordinary reduce, and the
// Accept-via-GOTO transition all in one round trip.
func minimalGrammar() *input.Grammar {
	return &input.Grammar{
		Symbols: []input.SymbolSpec{
			{Name: "start", Kind: symbol.Nonterminal, Precedence: symbol.PrecUnset},
			{Name: "expr", Kind: symbol.Nonterminal, Precedence: symbol.PrecUnset},
			{Name: "NUM", Kind: symbol.Terminal, Precedence: symbol.PrecUnset},
		},
		Rules: []input.RuleSpec{
			{LHS: "start", RHS: []string{"expr"}, Line: 1},
			{LHS: "expr", RHS: []string{"NUM"}, Line: 2},
		},
		Directives: input.Directives{StartSymbol: "start"},
	}
}

// arithmeticGrammar is the classic left-recursive expr/PLUS/TIMES grammar
// with PLUS < TIMES precedence, both left-associative.
func arithmeticGrammar() *input.Grammar {
	return &input.Grammar{
		Symbols: []input.SymbolSpec{
			{Name: "start", Kind: symbol.Nonterminal, Precedence: symbol.PrecUnset},
			{Name: "expr", Kind: symbol.Nonterminal, Precedence: symbol.PrecUnset},
			{Name: "PLUS", Kind: symbol.Terminal, Precedence: 1, Assoc: symbol.AssocLeft},
			{Name: "TIMES", Kind: symbol.Terminal, Precedence: 2, Assoc: symbol.AssocLeft},
			{Name: "NUM", Kind: symbol.Terminal, Precedence: symbol.PrecUnset},
		},
		Rules: []input.RuleSpec{
			{LHS: "start", RHS: []string{"expr"}, Line: 1},
			{LHS: "expr", RHS: []string{"expr", "PLUS", "expr"}, Line: 2},
			{LHS: "expr", RHS: []string{"expr", "TIMES", "expr"}, Line: 3},
			{LHS: "expr", RHS: []string{"NUM"}, Line: 4},
		},
		Directives: input.Directives{StartSymbol: "start"},
	}
}

// danglingElseGrammar is start -> stmt; stmt -> IF stmt THEN stmt | IF
// stmt THEN stmt ELSE stmt | OTHER, the classic ambiguous grammar:
// neither ELSE nor the "IF stmt THEN stmt" rule declares a
// precedence, so the shift/reduce conflict on ELSE is genuinely
// unresolved and falls back to the default (shift wins, binding ELSE to
// the nearest unmatched IF).
func danglingElseGrammar() *input.Grammar {
	return &input.Grammar{
		Symbols: []input.SymbolSpec{
			{Name: "start", Kind: symbol.Nonterminal, Precedence: symbol.PrecUnset},
			{Name: "stmt", Kind: symbol.Nonterminal, Precedence: symbol.PrecUnset},
			{Name: "IF", Kind: symbol.Terminal, Precedence: symbol.PrecUnset},
			{Name: "THEN", Kind: symbol.Terminal, Precedence: symbol.PrecUnset},
			{Name: "ELSE", Kind: symbol.Terminal, Precedence: symbol.PrecUnset},
			{Name: "OTHER", Kind: symbol.Terminal, Precedence: symbol.PrecUnset},
		},
		Rules: []input.RuleSpec{
			{LHS: "start", RHS: []string{"stmt"}, Line: 1},
			{LHS: "stmt", RHS: []string{"IF", "stmt", "THEN", "stmt"}, Line: 2},
			{LHS: "stmt", RHS: []string{"IF", "stmt", "THEN", "stmt", "ELSE", "stmt"}, Line: 3},
			{LHS: "stmt", RHS: []string{"OTHER"}, Line: 4},
		},
		Directives: input.Directives{StartSymbol: "start"},
	}
}

func TestCompileDanglingElseResolvesToShiftByDefault(t *testing.T) {
	g := danglingElseGrammar()
	tab, byName, err := buildSymbols(g)
	require.NoError(t, err)
	require.NoError(t, tab.Freeze())
	ifTok, then, elseTok, other := byName["IF"].Index, byName["THEN"].Index, byName["ELSE"].Index, byName["OTHER"].Index

	tables, rep, err := Compile(g)
	require.NoError(t, err)
	require.NotNil(t, tables, "compile errors: %v", rep.Diagnostics)
	require.Equal(t, 0, rep.ErrorCount)

	require.Equal(t, 1, rep.ConflictCount)
	require.Len(t, rep.Conflicts, 1)
	conflict := rep.Conflicts[0]
	require.Equal(t, "shift/reduce", conflict.Kind)
	require.Equal(t, "ELSE", conflict.Lookahead)
	require.Equal(t, "unresolved", conflict.Resolution)

	a := newAcceptor(t, g)
	// IF OTHER THEN IF OTHER THEN OTHER ELSE OTHER: shift-wins default
	// binds the ELSE to the nearer IF, but membership in the language
	// holds under either binding, so acceptance alone confirms the
	// packed tables still recognize the ambiguous construct.
	ok, err := a.Accept([]int{ifTok, other, then, ifTok, other, then, other, elseTok, other})
	require.NoError(t, err)
	require.True(t, ok)
}

// newAcceptor compiles g and wraps the result in an Acceptor, rebuilding
// the same rule set Compile builds internally (deterministic from g alone)
// to get the RHS-length/LHS tables Acceptor needs and CompiledTables
// deliberately omits.
func newAcceptor(t *testing.T, g *input.Grammar) *Acceptor {
	t.Helper()
	a, tables, rep, err := NewAcceptorForGrammar(g)
	require.NoError(t, err)
	require.NotNil(t, tables, "compile errors: %v", rep.Diagnostics)
	require.Equal(t, 0, rep.ErrorCount)
	return a
}

func TestCompileMinimalGrammarAcceptsValidInput(t *testing.T) {
	g := minimalGrammar()
	tab, byName, err := buildSymbols(g)
	require.NoError(t, err)
	require.NoError(t, tab.Freeze())
	num := byName["NUM"].Index

	a := newAcceptor(t, g)
	ok, err := a.Accept([]int{num})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCompileMinimalGrammarRejectsTrailingGarbage(t *testing.T) {
	g := minimalGrammar()
	tab, byName, err := buildSymbols(g)
	require.NoError(t, err)
	require.NoError(t, tab.Freeze())
	num := byName["NUM"].Index

	a := newAcceptor(t, g)
	ok, err := a.Accept([]int{num, num})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompileMinimalGrammarRejectsEmptyInput(t *testing.T) {
	g := minimalGrammar()
	a := newAcceptor(t, g)
	ok, err := a.Accept(nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompileArithmeticGrammarAcceptsPrecedenceChain(t *testing.T) {
	g := arithmeticGrammar()
	tab, byName, err := buildSymbols(g)
	require.NoError(t, err)
	require.NoError(t, tab.Freeze())
	num, plus, times := byName["NUM"].Index, byName["PLUS"].Index, byName["TIMES"].Index

	a := newAcceptor(t, g)
	// NUM + NUM * NUM
	ok, err := a.Accept([]int{num, plus, num, times, num})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCompileArithmeticGrammarRejectsDanglingOperator(t *testing.T) {
	g := arithmeticGrammar()
	tab, byName, err := buildSymbols(g)
	require.NoError(t, err)
	require.NoError(t, tab.Freeze())
	num, plus := byName["NUM"].Index, byName["PLUS"].Index

	a := newAcceptor(t, g)
	ok, err := a.Accept([]int{num, plus})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompileReportsUndeclaredStartSymbol(t *testing.T) {
	g := minimalGrammar()
	g.Directives.StartSymbol = "nope"
	_, _, err := Compile(g)
	require.Error(t, err)
}

func TestCompileReportsUnreducibleRule(t *testing.T) {
	g := minimalGrammar()
	g.Symbols = append(g.Symbols, input.SymbolSpec{Name: "dead", Kind: symbol.Nonterminal, Precedence: symbol.PrecUnset})
	g.Symbols = append(g.Symbols, input.SymbolSpec{Name: "JUNK", Kind: symbol.Terminal, Precedence: symbol.PrecUnset})
	g.Rules = append(g.Rules, input.RuleSpec{LHS: "dead", RHS: []string{"JUNK"}, Line: 3})

	tables, rep, err := Compile(g)
	require.NoError(t, err)
	require.Nil(t, tables)
	require.Greater(t, rep.ErrorCount, 0)
}
