// Package acttab implements the action-table packer: merging every
// state's sparse (lookahead -> action) row into one flat array by
// offset-overlap search, searching backward-then-forward from a
// safe/unsafe starting offset depending on whether the row must
// tolerate any terminal as a lookahead.
package acttab

// Empty marks an unused slot in the packed table.
const Empty = -1

// Entry is one packed (lookahead, action) pair.
type Entry struct {
	Lookahead int
	Action    int
}

// Table accumulates one row at a time via Add, then folds it into the
// shared backing array via Insert.
type Table struct {
	nsymbol   int
	nterminal int

	entries []Entry // the packed table under construction

	pending     []Entry
	mnLookahead int
	mnAction    int
	mxLookahead int
}

// NewTable returns an empty packer sized for a grammar with nsymbol
// total symbols and nterminal terminals (the safe-mode growth bound is
// nterminal wide).
func NewTable(nsymbol, nterminal int) *Table {
	return &Table{nsymbol: nsymbol, nterminal: nterminal}
}

// Add stages one (lookahead, action) pair into the current row. Call
// Insert once every pair for a state's row has been added.
func (t *Table) Add(lookahead, action int) {
	if len(t.pending) == 0 {
		t.mxLookahead = lookahead
		t.mnLookahead = lookahead
		t.mnAction = action
	} else {
		if lookahead > t.mxLookahead {
			t.mxLookahead = lookahead
		}
		if lookahead < t.mnLookahead {
			t.mnLookahead = lookahead
			t.mnAction = action
		}
	}
	t.pending = append(t.pending, Entry{Lookahead: lookahead, Action: action})
}

// HasPending reports whether any (lookahead, action) pairs are staged
// via Add, waiting for Insert.
func (t *Table) HasPending() bool {
	return len(t.pending) > 0
}

func (t *Table) ensureLen(n int) {
	for len(t.entries) < n {
		t.entries = append(t.entries, Entry{Lookahead: Empty, Action: Empty})
	}
}

// Insert folds the pending row into the packed table and resets the row
// for the next state. safe restricts the search (and the final growth
// guarantee) so that every terminal lookahead in [0, nterminal) can be
// added to the returned offset without reading before index 0. This is
// required for terminal rows, since a malformed input can present any
// terminal; nonterminal GOTO rows can pass safe=false for a tighter
// packing.
//
// The return value is the offset to add to a lookahead to index this
// row's action in the packed table.
func (t *Table) Insert(safe bool) int {
	if len(t.pending) == 0 {
		panic("acttab: Insert called with an empty row")
	}
	mn, mnAction := t.mnLookahead, t.mnAction

	end := 0
	if safe {
		end = mn
	}

	offset := -1
	for i := len(t.entries) - 1; i >= end; i-- {
		if t.entries[i].Lookahead != mn || t.entries[i].Action != mnAction {
			continue
		}
		if !t.rowMatchesAt(i) {
			continue
		}
		if t.isExactMatch(i) {
			offset = i
			break
		}
	}

	if offset < 0 {
		for i := end; ; i++ {
			if t.fitsHoleAt(i) && !t.hasForeignClaim(i) {
				offset = i
				break
			}
		}
	}

	for _, p := range t.pending {
		k := p.Lookahead - mn + offset
		t.ensureLen(k + 1)
		t.entries[k] = p
	}
	if safe && offset+t.nterminal >= len(t.entries) {
		t.ensureLen(offset + t.nterminal + 1)
	}

	t.pending = t.pending[:0]
	return offset - mn
}

// rowMatchesAt reports whether every pending (lookahead, action) pair
// already sits at its expected position in entries relative to
// candidate offset i.
func (t *Table) rowMatchesAt(i int) bool {
	for _, p := range t.pending {
		k := p.Lookahead - t.mnLookahead + i
		if k < 0 || k >= len(t.entries) {
			return false
		}
		if t.entries[k].Lookahead != p.Lookahead || t.entries[k].Action != p.Action {
			return false
		}
	}
	return true
}

// isExactMatch reports that no defined slot in entries at offset i falls
// outside the pending row, so accepting i would not silently expose a
// stray entry from another row as if it belonged to this one.
func (t *Table) isExactMatch(i int) bool {
	n := 0
	for j, e := range t.entries {
		if e.Lookahead < 0 {
			continue
		}
		if e.Lookahead == j+t.mnLookahead-i {
			n++
		}
	}
	return n == len(t.pending)
}

// fitsHoleAt reports whether every pending pair lands on an empty slot
// at candidate offset i, growing the backing store as needed.
func (t *Table) fitsHoleAt(i int) bool {
	for _, p := range t.pending {
		k := p.Lookahead - t.mnLookahead + i
		if k < 0 {
			return false
		}
		t.ensureLen(k + 1)
		if t.entries[k].Lookahead >= 0 {
			return false
		}
	}
	return true
}

// hasForeignClaim rejects candidate offset i if some existing slot
// happens to alias a position this row would also claim, which would
// make two rows indistinguishable at runtime.
func (t *Table) hasForeignClaim(i int) bool {
	for j, e := range t.entries {
		if e.Lookahead == j+t.mnLookahead-i {
			return true
		}
	}
	return false
}

// Lookahead returns the lookahead stored at packed index n.
func (t *Table) Lookahead(n int) int {
	if n < 0 || n >= len(t.entries) {
		return Empty
	}
	return t.entries[n].Lookahead
}

// Action returns the action stored at packed index n.
func (t *Table) Action(n int) int {
	if n < 0 || n >= len(t.entries) {
		return Empty
	}
	return t.entries[n].Action
}

// Size returns the packed table's length without the trailing run of
// empty slots.
func (t *Table) Size() int {
	n := len(t.entries)
	for n > 0 && t.entries[n-1].Lookahead < 0 {
		n--
	}
	return n
}

// Entries returns the packed table verbatim, including any trailing
// empty slots.
func (t *Table) Entries() []Entry {
	return t.entries
}
