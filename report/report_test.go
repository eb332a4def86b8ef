package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parsegen/lalr/analysis"
	"github.com/parsegen/lalr/diag"
	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/symbol"
)

func buildGrammar(t *testing.T) (*symbol.Table, *rule.Set) {
	t.Helper()
	tab := symbol.NewTable()
	start, err := tab.GetOrCreate("start")
	require.NoError(t, err)
	num, err := tab.GetOrCreate("NUM")
	require.NoError(t, err)
	require.NoError(t, tab.Freeze())

	rules := rule.NewSet()
	_, err = rules.Add(start, []*symbol.Symbol{num}, nil, nil, "", false, 1)
	require.NoError(t, err)
	require.NoError(t, rules.Freeze(start))
	return tab, rules
}

func TestBuildReportCountsErrorsAndConflicts(t *testing.T) {
	tab, rules := buildGrammar(t)
	diags := diag.NewLog()
	eng, err := analysis.NewEngine(tab, rules, diags)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	r := Build(tab, rules, eng.States, diags, nil)
	require.Equal(t, rules.Len(), r.NRule)
	require.Equal(t, eng.States.Len(), r.NState)
	require.Equal(t, diags.ErrorCount(), r.ErrorCount)
	require.Equal(t, diags.ConflictCount(), r.ConflictCount)
}

func TestWriteTextIncludesStateHeaders(t *testing.T) {
	tab, rules := buildGrammar(t)
	diags := diag.NewLog()
	eng, err := analysis.NewEngine(tab, rules, diags)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, tab, rules, eng.States, diags))
	require.Contains(t, buf.String(), "state 0:")
}

func TestWriteJSONProducesValidDocument(t *testing.T) {
	tab, rules := buildGrammar(t)
	diags := diag.NewLog()
	eng, err := analysis.NewEngine(tab, rules, diags)
	require.NoError(t, err)
	require.NoError(t, eng.Run())

	r := Build(tab, rules, eng.States, diags, nil)
	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))
	require.Contains(t, buf.String(), "\"n_state\"")
}
