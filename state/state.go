// Package state implements the LR(0)/LALR(1) state store: item sets
// keyed by their sorted basis, plus the per-state action list and the
// transition bookkeeping the compression and packing phases need.
package state

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sort"

	"github.com/parsegen/lalr/item"
	"github.com/parsegen/lalr/rule"
	"github.com/parsegen/lalr/symbol"
)

// NoOffset marks an unassigned or empty action-table row offset.
const NoOffset = math.MinInt32

// ActionTag classifies an Action.
type ActionTag int

const (
	Shift ActionTag = iota
	Reduce
	ShiftReduce
	Accept
	ErrorAction
	SSConflict
	SRConflict
	RRConflict
	ShResolved
	RdResolved
	NotUsed
)

func (t ActionTag) String() string {
	switch t {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case ShiftReduce:
		return "shift-reduce"
	case Accept:
		return "accept"
	case ErrorAction:
		return "error"
	case SSConflict:
		return "SS-conflict"
	case SRConflict:
		return "SR-conflict"
	case RRConflict:
		return "RR-conflict"
	case ShResolved:
		return "shift-resolved"
	case RdResolved:
		return "reduce-resolved"
	case NotUsed:
		return "not-used"
	default:
		return "unknown"
	}
}

// Action is a single entry in a state's action list: a lookahead symbol
// paired with what to do on it.
type Action struct {
	Sp    *symbol.Symbol // lookahead
	SpOpt *symbol.Symbol // secondary symbol for fused shift-reduce annotation
	Tag   ActionTag

	Target *State   // Shift
	Rule   *rule.Rule // Reduce, ShiftReduce

	// seq preserves insertion order as the final tiebreaker in the
	// action sort comparator.
	seq int
}

// State is one LR(0)/LALR(1) item set.
type State struct {
	Basis   []*item.Config // sorted by (rule index, dot)
	Closure []*item.Config // sorted, superset of Basis

	Actions []*Action

	StateNum int

	NTknAct, NNtAct   int
	ITknOfst, INtOfst int

	DefaultReduceRule *rule.Rule
	AutoReduce        bool

	actionSeq int
}

// AddAction appends a new action to s and returns it. Ordering among
// actions added in the same pass is preserved via an internal sequence
// number, used as the final tiebreaker when actions are sorted.
func (s *State) AddAction(sp *symbol.Symbol, tag ActionTag) *Action {
	a := &Action{Sp: sp, Tag: tag, seq: s.actionSeq}
	s.actionSeq++
	s.Actions = append(s.Actions, a)
	return a
}

// SortActions sorts s.Actions by (lookahead index, tag, rule-or-state
// index, insertion order), the ordering conflict resolution and
// compression both require the action list to hold.
func (s *State) SortActions() {
	sort.SliceStable(s.Actions, func(i, j int) bool {
		a, b := s.Actions[i], s.Actions[j]
		if a.Sp.Index != b.Sp.Index {
			return a.Sp.Index < b.Sp.Index
		}
		if a.Tag != b.Tag {
			return a.Tag < b.Tag
		}
		ai, bi := actionOrderKey(a), actionOrderKey(b)
		if ai != bi {
			return ai < bi
		}
		return a.seq < b.seq
	})
}

func actionOrderKey(a *Action) int {
	switch {
	case a.Rule != nil:
		return a.Rule.Index()
	case a.Target != nil:
		return a.Target.StateNum
	default:
		return -1
	}
}

// hashBasis returns a stable digest of a sorted basis, used to key the
// state store: two states are the same state iff their sorted bases
// hash equal.
func hashBasis(basis []*item.Config) [32]byte {
	h := sha256.New()
	var buf [8]byte
	for _, c := range basis {
		binary.BigEndian.PutUint64(buf[:], uint64(c.Rule.Index()))
		h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], uint64(c.Dot))
		h.Write(buf[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Store hash-conses states by their sorted basis.
type Store struct {
	byHash map[[32]byte]*State
	order  []*State
}

// NewStore returns an empty state store.
func NewStore() *Store {
	return &Store{byHash: map[[32]byte]*State{}}
}

// Find looks up a state by its already-sorted basis without creating
// one.
func (s *Store) Find(basis []*item.Config) (*State, bool) {
	st, ok := s.byHash[hashBasis(basis)]
	return st, ok
}

// Create allocates and stores a fresh state for basis, which must
// already be sorted, assigning it the next sequential StateNum. It is
// the caller's responsibility to have first called Find and confirmed
// no matching state exists.
func (s *Store) Create(basis []*item.Config) *State {
	st := &State{
		Basis:    basis,
		StateNum: len(s.order),
	}
	s.byHash[hashBasis(basis)] = st
	s.order = append(s.order, st)
	return st
}

// All returns every state in the store, in StateNum order as of
// creation (callers renumber in place after a resort, so this slice
// must be re-read afterward rather than cached).
func (s *Store) All() []*State {
	return s.order
}

// Len returns the number of states in the store.
func (s *Store) Len() int {
	return len(s.order)
}

// Resort reorders the store's internal slice to match states, which
// must be a permutation of s.All() carrying updated StateNum values.
// State 0 must remain first.
func (s *Store) Resort(states []*State) {
	s.order = states
}
