// Package input defines the external interface of the core: the
// pre-built grammar handed in by the (out-of-scope) grammar
// tokenizer/parser collaborator, and the compiled tables handed back to
// the emitter collaborator. It carries no lexical specification, since
// this core never tokenizes source text.
package input

import (
	"github.com/parsegen/lalr/symbol"
)

// SymbolSpec describes one declared symbol before the symbol table is
// built.
type SymbolSpec struct {
	Name       string        `json:"name"`
	Kind       symbol.Kind   `json:"kind"`
	Precedence int           `json:"precedence"` // symbol.PrecUnset if undeclared
	Assoc      symbol.Assoc  `json:"assoc"`
	Subsymbols []string      `json:"subsymbols,omitempty"` // multiterminal member names
	Fallback   string        `json:"fallback,omitempty"`
	Destructor string        `json:"destructor,omitempty"`
	Datatype   string        `json:"datatype,omitempty"`
}

// RuleSpec describes one declared production before the rule set is
// built.
type RuleSpec struct {
	LHS      string   `json:"lhs"`
	RHS      []string `json:"rhs"`
	RHSAlias []string `json:"rhs_alias,omitempty"`
	PrecSym  string   `json:"prec_sym,omitempty"`
	Code     string   `json:"code,omitempty"`
	Line     int      `json:"line"`
}

// Directives carries the grammar's global declarations.
type Directives struct {
	StartSymbol    string `json:"start_symbol"`
	ErrorSymbol    string `json:"error_symbol,omitempty"`
	WildcardSymbol string `json:"wildcard_symbol,omitempty"`
	ExtraArgument  string `json:"extra_argument,omitempty"`
	StackSize      string `json:"stack_size,omitempty"`
	TokenPrefix    string `json:"token_prefix,omitempty"`
	Header         string `json:"header,omitempty"`
	Trailer        string `json:"trailer,omitempty"`
}

// Grammar is the pre-built grammar this core consumes: symbols and rules
// with names still unresolved to table handles, plus directives.
type Grammar struct {
	Symbols    []SymbolSpec `json:"symbols"`
	Rules      []RuleSpec   `json:"rules"`
	Directives Directives   `json:"directives"`
}

// ActionCode encodes one packed action-table cell as a single int,
// parameterized by the table sizes that define its bands.
type ActionCode int

// Encode maps an action's target/rule into the single-int encoding:
// shift states first, then shift-reduce rules, then the three fixed
// sentinels (error, accept, no-action), then reduce rules.
func Encode(nstate, nrule int, kind ActionKind, target, ruleIndex int) ActionCode {
	switch kind {
	case ActionShift:
		return ActionCode(target)
	case ActionShiftReduce:
		return ActionCode(nstate + ruleIndex)
	case ActionError:
		return ActionCode(nstate + nrule)
	case ActionAccept:
		return ActionCode(nstate + nrule + 1)
	case ActionNone:
		return ActionCode(nstate + nrule + 2)
	case ActionReduce:
		return ActionCode(nstate + nrule + 3 + ruleIndex)
	default:
		panic("input: unknown action kind")
	}
}

// Decode inverts Encode, classifying a packed code back into its band.
func Decode(nstate, nrule int, code ActionCode) (kind ActionKind, target, ruleIndex int) {
	a := int(code)
	switch {
	case a < nstate:
		return ActionShift, a, -1
	case a < nstate+nrule:
		return ActionShiftReduce, -1, a - nstate
	case a == nstate+nrule:
		return ActionError, -1, -1
	case a == nstate+nrule+1:
		return ActionAccept, -1, -1
	case a == nstate+nrule+2:
		return ActionNone, -1, -1
	default:
		return ActionReduce, -1, a - (nstate + nrule + 3)
	}
}

// ActionKind classifies a packed action code's band.
type ActionKind int

const (
	ActionShift ActionKind = iota
	ActionShiftReduce
	ActionError
	ActionAccept
	ActionNone
	ActionReduce
)

// StateEntry is one row of sorted_states[]: a state's packed offsets and
// default-reduction bookkeeping.
type StateEntry struct {
	StateNum       int  `json:"state"`
	ITknOfst       int  `json:"i_tkn_ofst"`
	INtOfst        int  `json:"i_nt_ofst"`
	DefaultReduce  int  `json:"i_dflt_reduce"` // rule index, or -1
	AutoReduce     bool `json:"auto_reduce"`
}

// ActionEntry is one packed (lookahead, action_code) pair of aAction[].
type ActionEntry struct {
	Lookahead int `json:"lookahead"`
	Action    int `json:"action"`
}

// CompiledTables is everything the emitter collaborator needs: sizes,
// sorted states, the packed action array, and the fallback table.
type CompiledTables struct {
	NState    int `json:"n_state"`
	NXState   int `json:"nx_state"`
	NRule     int `json:"n_rule"`
	NSymbol   int `json:"n_symbol"`
	NTerminal int `json:"n_terminal"`

	SortedStates []StateEntry  `json:"sorted_states"`
	AAction      []ActionEntry `json:"a_action"`

	// FallbackTable is nterminal-sized; FallbackTable[i] is the terminal
	// index token i falls back to, or -1 if none.
	FallbackTable []int `json:"fallback_table"`
}
