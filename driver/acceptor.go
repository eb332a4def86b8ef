// Acceptor is a minimal table-walking parser used only by round-trip
// tests: it proves a compiled table accepts exactly the language of the
// grammar it was built from. It is not a production parser runtime, it
// has no error recovery and no semantic actions, only the
// state-stack push/pop/shift/reduce loop needed to drive the compiled
// action codes.
package driver

import (
	"fmt"

	"github.com/parsegen/lalr/input"
	"github.com/parsegen/lalr/state"
)

// Acceptor walks a compiled table over a fixed sequence of terminal
// indices. It needs each rule's RHS length and LHS index to drive
// reduction, which input.CompiledTables deliberately omits (the emitter
// collaborator gets that from the original rule.Set), so NewAcceptor
// takes them directly.
type Acceptor struct {
	tables    *input.CompiledTables
	ruleLens  []int
	ruleLHSes []int
	stack     []int // state numbers
}

// NewAcceptor returns an Acceptor over tables, seeded at state 0.
// ruleLens[i] and ruleLHSes[i] give rule i's RHS length and LHS symbol
// index, in the same rule-index space as the compiled tables.
func NewAcceptor(tables *input.CompiledTables, ruleLens, ruleLHSes []int) *Acceptor {
	return &Acceptor{tables: tables, ruleLens: ruleLens, ruleLHSes: ruleLHSes, stack: []int{0}}
}

func (a *Acceptor) top() int {
	return a.stack[len(a.stack)-1]
}

// lookupTerminal finds the action for lookahead terminal index t in
// state s's terminal row, falling back to the {default} pseudo-lookahead
// at index nterminal if the exact terminal isn't in the row.
func (a *Acceptor) lookupTerminal(s, t int) (input.ActionCode, bool) {
	entry := a.tables.SortedStates[s]
	if entry.AutoReduce {
		return input.Encode(a.tables.NState, a.tables.NRule, input.ActionReduce, -1, entry.DefaultReduce), true
	}
	if entry.ITknOfst == state.NoOffset {
		return 0, false
	}
	if code, ok := a.readRow(entry.ITknOfst, t); ok {
		return code, true
	}
	if code, ok := a.readRow(entry.ITknOfst, a.tables.NTerminal); ok {
		return code, true
	}
	return 0, false
}

// lookupGoto resolves the transition on nonterminal nt out of state s.
// The cell can decode to Accept or ShiftReduce as well as Shift:
// reducing the whole input down to the start symbol in state 0 is
// itself represented as a GOTO cell whose action is ACCEPT, not a state
// number, since the synthetic accept action lives in the action list
// the same way a GOTO does; and a GOTO into an auto-reduce state is
// fused by compression into a ShiftReduce, whose rule is ruleIndex.
func (a *Acceptor) lookupGoto(s, nt int) (kind input.ActionKind, target, ruleIndex int, ok bool) {
	entry := a.tables.SortedStates[s]
	if entry.INtOfst == state.NoOffset {
		return 0, 0, 0, false
	}
	code, ok := a.readRow(entry.INtOfst, nt)
	if !ok {
		return 0, 0, 0, false
	}
	kind, target, ruleIndex = input.Decode(a.tables.NState, a.tables.NRule, code)
	if kind != input.ActionShift && kind != input.ActionShiftReduce && kind != input.ActionAccept {
		return 0, 0, 0, false
	}
	return kind, target, ruleIndex, true
}

func (a *Acceptor) readRow(offset, lookahead int) (input.ActionCode, bool) {
	idx := offset + lookahead
	if idx < 0 || idx >= len(a.tables.AAction) {
		return 0, false
	}
	e := a.tables.AAction[idx]
	if e.Lookahead != lookahead {
		return 0, false
	}
	return input.ActionCode(e.Action), true
}

// Accept reports whether tokens (terminal indices, not including the
// trailing EOF terminal at index 0) is in the language the compiled
// table accepts.
func (a *Acceptor) Accept(tokens []int) (bool, error) {
	stream := append(append([]int{}, tokens...), 0) // EOF is always terminal index 0
	pos := 0

	for {
		lookahead := stream[pos]
		code, ok := a.lookupTerminal(a.top(), lookahead)
		if !ok {
			// No table entry for this lookahead in this state is itself a
			// syntax error, the same rejection an explicit ActionError
			// entry represents below.
			return false, nil
		}
		kind, target, ruleIndex := input.Decode(a.tables.NState, a.tables.NRule, code)

		switch kind {
		case input.ActionShift:
			a.stack = append(a.stack, target)
			pos++

		case input.ActionReduce:
			accepted, err := a.reduce(ruleIndex, false)
			if err != nil {
				return false, err
			}
			if accepted {
				return true, nil
			}

		case input.ActionShiftReduce:
			pos++
			accepted, err := a.reduce(ruleIndex, true)
			if err != nil {
				return false, err
			}
			if accepted {
				return true, nil
			}

		case input.ActionAccept:
			return true, nil

		case input.ActionError:
			return false, nil

		default:
			return false, fmt.Errorf("driver: unexpected action kind %d", kind)
		}
	}
}

// reduce pops rule ruleIndex's RHS off the stack and follows the GOTO
// transition on its LHS. When fused is true, the action was a
// ShiftReduce: the last RHS symbol was just consumed without ever being
// pushed, so only len(RHS)-1 frames come off the stack. The GOTO cell
// itself can decode to Accept rather than a target state (reducing the
// augmented start rule in state 0 lands there); reduce reports that as
// accepted=true instead of pushing a bogus target state. A GOTO cell
// that decodes to ShiftReduce goes straight on to that rule's fused
// reduction.
func (a *Acceptor) reduce(ruleIndex int, fused bool) (accepted bool, err error) {
	if ruleIndex < 0 || ruleIndex >= len(a.ruleLens) {
		return false, fmt.Errorf("driver: rule %d out of range", ruleIndex)
	}
	pop := a.ruleLens[ruleIndex]
	if fused {
		pop--
	}
	if pop < 0 || pop > len(a.stack)-1 {
		return false, fmt.Errorf("driver: stack underflow reducing rule %d", ruleIndex)
	}
	if pop > 0 {
		a.stack = a.stack[:len(a.stack)-pop]
	}

	lhs := a.ruleLHSes[ruleIndex]
	kind, target, next, ok := a.lookupGoto(a.top(), lhs)
	if !ok {
		return false, fmt.Errorf("driver: no GOTO for nonterminal %d in state %d", lhs, a.top())
	}
	if kind == input.ActionAccept {
		return true, nil
	}
	if kind == input.ActionShiftReduce {
		return a.reduce(next, true)
	}
	a.stack = append(a.stack, target)
	return false, nil
}
