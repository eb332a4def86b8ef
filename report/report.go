// Package report builds a JSON-serializable summary of a compiled
// grammar (states, conflicts, unreducible rules) plus WriteText, a
// human-text dump of every state. The CLI's describe subcommand does not
// use WriteText; it prints its own summary of a report read from JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/parsegen/lalr/diag"
	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/state"
	"github.com/parsegen/lalr/symbol"
)

// ConflictEntry records one resolved or unresolved conflict, with its
// provenance: which state/lookahead it arose in, and whether precedence
// or declaration order decided it.
type ConflictEntry struct {
	Kind       string `json:"kind"` // "shift/reduce", "reduce/reduce"
	State      int    `json:"state"`
	Lookahead  string `json:"lookahead"`
	Resolution string `json:"resolution"` // "precedence", "associativity", "unresolved"
	Message    string `json:"message"`
}

// DefaultReduceEntry records why CompressDefaultReductions did or didn't
// pick a default rule for a state.
type DefaultReduceEntry struct {
	State  int    `json:"state"`
	Rule   int    `json:"rule,omitempty"`
	Reason string `json:"reason"` // "majority-rule", "no-majority", "wildcard-present"
}

// Report is the machine-readable summary of one compilation.
type Report struct {
	NState        int                  `json:"n_state"`
	NRule         int                  `json:"n_rule"`
	NSymbol       int                  `json:"n_symbol"`
	NTerminal     int                  `json:"n_terminal"`
	ErrorCount    int                  `json:"error_count"`
	ConflictCount int                  `json:"conflict_count"`
	Conflicts     []ConflictEntry      `json:"conflicts,omitempty"`
	DefaultReduce []DefaultReduceEntry `json:"default_reduce,omitempty"`
	Unreducible   []string             `json:"unreducible_rules,omitempty"`
	Diagnostics   []string             `json:"diagnostics,omitempty"`
}

// Build assembles a Report from the finished pipeline's shared state.
// defaultReduces carries the per-state provenance CompressDefaultReductions
// recorded; it is nil before compression has run, which driver.Compile
// relies on for its early error-path report.
func Build(symbols *symbol.Table, rules *rule.Set, states *state.Store, diags *diag.Log, defaultReduces []DefaultReduceEntry) *Report {
	r := &Report{
		NState:        states.Len(),
		NRule:         rules.Len(),
		NSymbol:       symbols.NSymbol(),
		NTerminal:     symbols.NTerminal(),
		ErrorCount:    diags.ErrorCount(),
		ConflictCount: diags.ConflictCount(),
		DefaultReduce: defaultReduces,
	}
	for _, d := range diags.All() {
		r.Diagnostics = append(r.Diagnostics, d.String())
		switch d.Kind {
		case diag.ConflictSR, diag.ResolutionSR:
			r.Conflicts = append(r.Conflicts, ConflictEntry{Kind: "shift/reduce", State: d.State, Lookahead: d.Lookahead, Resolution: d.Resolution, Message: d.Message})
		case diag.ConflictRR, diag.ResolutionRR:
			r.Conflicts = append(r.Conflicts, ConflictEntry{Kind: "reduce/reduce", State: d.State, Lookahead: d.Lookahead, Resolution: d.Resolution, Message: d.Message})
		case diag.ConflictSS:
			r.Conflicts = append(r.Conflicts, ConflictEntry{Kind: "shift/shift", State: d.State, Lookahead: d.Lookahead, Resolution: d.Resolution, Message: d.Message})
		}
	}
	for _, rl := range rules.All() {
		if !rl.CanReduce && !rl.NeverReduce {
			r.Unreducible = append(r.Unreducible, rl.String())
		}
	}
	return r
}

// WriteJSON serializes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes a human-readable summary, one paragraph per state.
func WriteText(w io.Writer, symbols *symbol.Table, rules *rule.Set, states *state.Store, diags *diag.Log) error {
	if _, err := fmt.Fprintf(w, "states: %d, rules: %d, symbols: %d, terminals: %d\n",
		states.Len(), rules.Len(), symbols.NSymbol(), symbols.NTerminal()); err != nil {
		return err
	}
	for _, st := range states.All() {
		if _, err := fmt.Fprintf(w, "\nstate %d:\n", st.StateNum); err != nil {
			return err
		}
		for _, c := range st.Basis {
			if _, err := fmt.Fprintf(w, "  %s\n", c.String()); err != nil {
				return err
			}
		}
		for _, a := range st.Actions {
			if _, err := fmt.Fprintf(w, "  %-12s %-8s %s\n", a.Sp.Name, a.Tag.String(), actionTarget(a)); err != nil {
				return err
			}
		}
	}
	if diags.ErrorCount() > 0 || diags.ConflictCount() > 0 {
		if _, err := fmt.Fprintf(w, "\n%d error(s), %d conflict(s)\n", diags.ErrorCount(), diags.ConflictCount()); err != nil {
			return err
		}
	}
	for _, d := range diags.All() {
		if _, err := fmt.Fprintf(w, "%s\n", d.String()); err != nil {
			return err
		}
	}
	return nil
}

func actionTarget(a *state.Action) string {
	switch a.Tag {
	case state.Shift:
		if a.Target != nil {
			return fmt.Sprintf("-> state %d", a.Target.StateNum)
		}
	case state.Reduce, state.ShiftReduce:
		if a.Rule != nil {
			return a.Rule.String()
		}
	case state.Accept:
		return "(accept)"
	}
	return ""
}
