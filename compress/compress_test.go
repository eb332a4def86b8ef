package compress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/state"
	"github.com/parsegen/lalr/symbol"
)

func TestCompressDefaultReductionsPicksMajorityRule(t *testing.T) {
	tab := symbol.NewTable()
	a, _ := tab.GetOrCreate("AAA")
	b, _ := tab.GetOrCreate("BBB")
	c, _ := tab.GetOrCreate("CCC")
	expr, _ := tab.GetOrCreate("expr")
	// expr is not the start symbol: reduces by start-symbol rules never
	// become defaults.
	start, _ := tab.GetOrCreate("start")
	require.NoError(t, tab.Freeze())

	rules := rule.NewSet()
	majority, err := rules.Add(expr, nil, nil, nil, "", false, 1)
	require.NoError(t, err)
	minority, err := rules.Add(expr, nil, nil, nil, "", false, 2)
	require.NoError(t, err)
	require.NoError(t, rules.Freeze(start))

	st := &state.State{}
	act1 := st.AddAction(a, state.Reduce)
	act1.Rule = majority
	act2 := st.AddAction(b, state.Reduce)
	act2.Rule = majority
	act3 := st.AddAction(c, state.Reduce)
	act3.Rule = minority

	e := &Engine{Symbols: tab, Rules: rules, States: newFixedStore(st)}
	e.CompressDefaultReductions()

	def := tab.DefaultSymbol()
	var defaultActs, notUsed int
	for _, act := range st.Actions {
		if act.Tag == state.Reduce && act.Sp == def {
			defaultActs++
			require.Same(t, majority, act.Rule)
		}
		if act.Tag == state.NotUsed {
			notUsed++
		}
	}
	require.Equal(t, 1, defaultActs)
	require.Equal(t, 1, notUsed)

	require.Len(t, e.DefaultReduces, 1)
	require.Equal(t, "majority-rule", e.DefaultReduces[0].Reason)
	require.Equal(t, majority.Index(), e.DefaultReduces[0].Rule)
}

func TestCompressDefaultReductionsRecordsNoMajorityWhenTied(t *testing.T) {
	tab := symbol.NewTable()
	a, _ := tab.GetOrCreate("AAA")
	b, _ := tab.GetOrCreate("BBB")
	expr, _ := tab.GetOrCreate("expr")
	start, _ := tab.GetOrCreate("start")
	require.NoError(t, tab.Freeze())

	rules := rule.NewSet()
	first, err := rules.Add(expr, nil, nil, nil, "", false, 1)
	require.NoError(t, err)
	second, err := rules.Add(expr, nil, nil, nil, "", false, 2)
	require.NoError(t, err)
	require.NoError(t, rules.Freeze(start))

	st := &state.State{}
	act1 := st.AddAction(a, state.Reduce)
	act1.Rule = first
	act2 := st.AddAction(b, state.Reduce)
	act2.Rule = second

	e := &Engine{Symbols: tab, Rules: rules, States: newFixedStore(st)}
	e.CompressDefaultReductions()

	require.Len(t, e.DefaultReduces, 1)
	require.Equal(t, "no-majority", e.DefaultReduces[0].Reason)
	require.Equal(t, first.Index(), e.DefaultReduces[0].Rule)
}

func TestCompressSkipsWhenWildcardIsPossibleLookahead(t *testing.T) {
	tab := symbol.NewTable()
	a, _ := tab.GetOrCreate("AAA")
	any, _ := tab.GetOrCreate("ANY")
	expr, _ := tab.GetOrCreate("expr")
	require.NoError(t, tab.Freeze())

	rules := rule.NewSet()
	r, err := rules.Add(expr, nil, nil, nil, "", false, 1)
	require.NoError(t, err)
	require.NoError(t, rules.Freeze(expr))

	st := &state.State{}
	act1 := st.AddAction(a, state.Reduce)
	act1.Rule = r
	st.AddAction(any, state.Shift)

	e := &Engine{Symbols: tab, Rules: rules, States: newFixedStore(st), Wildcard: any}
	e.CompressDefaultReductions()

	require.False(t, st.AutoReduce)
	for _, act := range st.Actions {
		require.NotEqual(t, tab.DefaultSymbol(), act.Sp)
	}

	require.Len(t, e.DefaultReduces, 1)
	require.Equal(t, "wildcard-present", e.DefaultReduces[0].Reason)
}

// newFixedStore builds a *state.Store containing exactly the given
// states, for tests that need to drive Engine methods without running
// full automaton construction.
func newFixedStore(states ...*state.State) *state.Store {
	s := state.NewStore()
	for i, st := range states {
		st.StateNum = i
	}
	s.Resort(states)
	return s
}
