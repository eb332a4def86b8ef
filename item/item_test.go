package item

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/symbol"
)

func setupGrammar(t *testing.T) (*symbol.Table, *rule.Set, *rule.Rule) {
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
	return tab, rules, r
}

func TestGetOrCreateHashConsesByRuleAndDot(t *testing.T) {
	_, _, r := setupGrammar(t)
	s := NewStore(4)

	c1, created1 := s.GetOrCreate(r, 0)
	c2, created2 := s.GetOrCreate(r, 0)
	require.True(t, created1)
	require.False(t, created2)
	require.Same(t, c1, c2)

	c3, created3 := s.GetOrCreate(r, 1)
	require.True(t, created3)
	require.NotSame(t, c1, c3)
}

func TestDotSymbolAndAtEnd(t *testing.T) {
	_, _, r := setupGrammar(t)
	s := NewStore(4)

	c0, _ := s.GetOrCreate(r, 0)
	require.False(t, c0.AtEnd())
	require.Equal(t, r.RHS[0], c0.DotSymbol())

	c3, _ := s.GetOrCreate(r, 3)
	require.True(t, c3.AtEnd())
	require.Nil(t, c3.DotSymbol())
}

func TestSortedOrdersByRuleThenDot(t *testing.T) {
	tab := symbol.NewTable()
	expr, err := tab.GetOrCreate("expr")
	require.NoError(t, err)
	plus, err := tab.GetOrCreate("PLUS")
	require.NoError(t, err)

	rules := rule.NewSet()
	r, err := rules.Add(expr, []*symbol.Symbol{expr, plus, expr}, nil, nil, "", false, 1)
	require.NoError(t, err)
	r2, err := rules.Add(expr, nil, nil, nil, "", false, 2)
	require.NoError(t, err)
	require.NoError(t, rules.Freeze(expr))

	s := NewStore(4)
	s.GetOrCreate(r, 2)
	s.GetOrCreate(r2, 0)
	s.GetOrCreate(r, 0)

	sorted := s.Sorted()
	require.Len(t, sorted, 3)
	require.True(t, sorted[0].Rule.Index() <= sorted[1].Rule.Index())
	require.True(t, sorted[1].Rule.Index() <= sorted[2].Rule.Index())
	require.Equal(t, 0, sorted[0].Dot)
	require.Equal(t, 2, sorted[1].Dot)
}
