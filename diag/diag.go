// Package diag implements the diagnostic stream the pipeline accumulates
// into across phases: grammar errors, conflict reports, and the
// sentinel that distinguishes resource exhaustion from ordinary grammar
// errors.
package diag

import (
	"errors"
	"fmt"
)

// Kind classifies a Diagnostic.
type Kind int

const (
	// Grammar covers missing rules, unreachable/unreducible rules,
	// duplicate declarations, malformed precedence, and similar
	// input-level defects.
	Grammar Kind = iota
	// ConflictSR, ConflictRR and ConflictSS record an unresolved
	// parsing-table conflict: no precedence/associativity data was
	// available to pick a winner, so the pipeline fell back to its
	// default (shift wins, or the earlier-declared rule wins) and this
	// counts toward ConflictCount.
	ConflictSR
	ConflictRR
	ConflictSS
	// ResolutionSR and ResolutionRR record a shift/reduce or
	// reduce/reduce conflict that WAS resolved, by precedence or by
	// associativity, so it does not count toward ConflictCount but is
	// still reportable, carrying which state/lookahead the conflict and
	// its resolution arose from.
	ResolutionSR
	ResolutionRR
	// Warning is a non-fatal observation that doesn't block table
	// generation (e.g. a declared but unused %type).
	Warning
)

func (k Kind) String() string {
	switch k {
	case Grammar:
		return "grammar error"
	case ConflictSR:
		return "shift/reduce conflict"
	case ConflictRR:
		return "reduce/reduce conflict"
	case ConflictSS:
		return "shift/shift conflict"
	case ResolutionSR:
		return "shift/reduce resolution"
	case ResolutionRR:
		return "reduce/reduce resolution"
	case Warning:
		return "warning"
	default:
		return "diagnostic"
	}
}

// ErrResourceExhausted is the sentinel for a failure caused by resource
// exhaustion rather than a grammar defect, kept out of the diagnostic
// stream so errors.Is(err, ErrResourceExhausted) can tell the two apart.
// No phase in this module returns it.
var ErrResourceExhausted = errors.New("resource exhausted")

// Diagnostic is one entry in the stream: a message optionally located in
// a source file.
type Diagnostic struct {
	Kind       Kind
	Message    string
	FilePath   string
	SourceName string
	Row        int

	// State and Lookahead locate a conflict or resolution diagnostic in
	// the automaton: the state it arose in and the lookahead symbol the
	// competing actions shared. Zero value ("", 0) for non-conflict
	// diagnostics such as Grammar.
	State      int
	Lookahead  string
	// Resolution names what decided a ConflictSR/RR/SS or
	// ResolutionSR/RR diagnostic: "precedence", "associativity", or
	// "unresolved". Empty for diagnostic kinds that aren't conflicts.
	Resolution string
}

func (d Diagnostic) String() string {
	if d.FilePath == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", d.FilePath, d.Row, d.Kind, d.Message)
}

// Log accumulates diagnostics across an entire pipeline run, so a single
// invocation can surface as many problems as possible rather than
// aborting on the first.
type Log struct {
	entries []Diagnostic
}

// NewLog returns an empty diagnostic log.
func NewLog() *Log {
	return &Log{}
}

// Add appends a diagnostic.
func (l *Log) Add(d Diagnostic) {
	l.entries = append(l.entries, d)
}

// Grammarf appends a Grammar-kind diagnostic with a formatted message.
func (l *Log) Grammarf(format string, args ...any) {
	l.Add(Diagnostic{Kind: Grammar, Message: fmt.Sprintf(format, args...)})
}

// Conflict appends an unresolved conflict diagnostic of the given kind,
// located at the state/lookahead pair it arose in.
func (l *Log) Conflict(kind Kind, state int, lookahead, message string) {
	l.Add(Diagnostic{Kind: kind, State: state, Lookahead: lookahead, Resolution: "unresolved", Message: message})
}

// Resolution appends a diagnostic recording that a shift/reduce or
// reduce/reduce conflict WAS resolved, by precedence or associativity,
// without counting it toward ConflictCount.
func (l *Log) Resolution(kind Kind, state int, lookahead, resolution, message string) {
	l.Add(Diagnostic{Kind: kind, State: state, Lookahead: lookahead, Resolution: resolution, Message: message})
}

// All returns every diagnostic logged so far, in emission order.
func (l *Log) All() []Diagnostic {
	return l.entries
}

// ErrorCount returns the number of Grammar-kind diagnostics, the count
// used to decide whether later phases should run.
func (l *Log) ErrorCount() int {
	n := 0
	for _, d := range l.entries {
		if d.Kind == Grammar {
			n++
		}
	}
	return n
}

// ConflictCount returns the number of conflict diagnostics of any kind,
// the count the driver uses to set exit status.
func (l *Log) ConflictCount() int {
	n := 0
	for _, d := range l.entries {
		switch d.Kind {
		case ConflictSR, ConflictRR, ConflictSS:
			n++
		}
	}
	return n
}

// HasErrors reports whether any Grammar-kind diagnostic was logged.
func (l *Log) HasErrors() bool {
	return l.ErrorCount() > 0
}
