package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parsegen/lalr/item"
	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/symbol"
)

func buildRule(t *testing.T) *rule.Rule {
	t.Helper()
	tab := symbol.NewTable()
	expr, err := tab.GetOrCreate("expr")
	require.NoError(t, err)
	plus, err := tab.GetOrCreate("PLUS")
	require.NoError(t, err)
	rules := rule.NewSet()
	r, err := rules.Add(expr, []*symbol.Symbol{expr, plus, expr}, nil, nil, "", false, 1)
	require.NoError(t, err)
	require.NoError(t, rules.Freeze(expr))
	require.NoError(t, tab.Freeze())
	return r
}

func TestStoreFindThenCreateHashConses(t *testing.T) {
	r := buildRule(t)
	items := item.NewStore(4)
	c0, _ := items.GetOrCreate(r, 0)

	s := NewStore()
	basis := []*item.Config{c0}

	_, found := s.Find(basis)
	require.False(t, found)

	st := s.Create(basis)
	require.Equal(t, 0, st.StateNum)

	again, found := s.Find(basis)
	require.True(t, found)
	require.Same(t, st, again)
}

func TestSecondStateGetsNextNumber(t *testing.T) {
	r := buildRule(t)
	items := item.NewStore(4)
	c0, _ := items.GetOrCreate(r, 0)
	c1, _ := items.GetOrCreate(r, 1)

	s := NewStore()
	s.Create([]*item.Config{c0})
	st2 := s.Create([]*item.Config{c1})
	require.Equal(t, 1, st2.StateNum)
}

func TestSortActionsOrdersByLookaheadThenTag(t *testing.T) {
	tab := symbol.NewTable()
	a, _ := tab.GetOrCreate("AAA")
	b, _ := tab.GetOrCreate("BBB")
	require.NoError(t, tab.Freeze())

	st := &State{}
	act1 := st.AddAction(b, Reduce)
	act2 := st.AddAction(a, Shift)
	act3 := st.AddAction(a, Reduce)

	st.SortActions()
	require.Equal(t, []*Action{act2, act3, act1}, st.Actions)
}
