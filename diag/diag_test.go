package diag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCountCountsOnlyGrammarKind(t *testing.T) {
	l := NewLog()
	l.Grammarf("rule %d is unreachable", 3)
	l.Conflict(ConflictSR, 4, "PLUS", "shift/reduce on PLUS")
	l.Add(Diagnostic{Kind: Warning, Message: "unused %type"})

	require.Equal(t, 1, l.ErrorCount())
	require.Equal(t, 1, l.ConflictCount())
	require.True(t, l.HasErrors())
	require.Len(t, l.All(), 3)
}

func TestResolutionDoesNotCountAsConflict(t *testing.T) {
	l := NewLog()
	l.Resolution(ResolutionSR, 4, "PLUS", "precedence", "shift/reduce on PLUS resolved by precedence")

	require.Equal(t, 0, l.ConflictCount())
	require.Len(t, l.All(), 1)
	require.Equal(t, "precedence", l.All()[0].Resolution)
}

func TestNoErrorsWhenEmpty(t *testing.T) {
	l := NewLog()
	require.False(t, l.HasErrors())
	require.Equal(t, 0, l.ConflictCount())
}

func TestDiagnosticStringIncludesLocationWhenPresent(t *testing.T) {
	d := Diagnostic{Kind: Grammar, Message: "bad precedence", FilePath: "g.y", Row: 12}
	require.Contains(t, d.String(), "g.y:12")

	d2 := Diagnostic{Kind: Grammar, Message: "bad precedence"}
	require.NotContains(t, d2.String(), ":0:")
}
