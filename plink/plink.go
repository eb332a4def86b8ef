// Package plink implements the propagation-link arena used by lookahead
// propagation: a bump-allocated arena addressed by dense integer handles,
// so link chains never require freeing individual nodes or tracking a
// "previous" pointer to unlink them.
package plink

// Handle addresses a single link within an Arena. The zero Handle is a
// valid node index; "no link" is the Nil Handle, -1.
type Handle int

const nilHandle Handle = -1

type node[T any] struct {
	target T
	next   Handle
}

// Arena is a bump allocator for propagation-link chains, generic over
// the payload a link carries (an *item.Config, in this module's usage).
// Chains are represented as a Handle into the arena plus a next-Handle
// per node; nothing is ever freed individually.
type Arena[T any] struct {
	nodes []node[T]
}

// NewArena returns an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Nil is the empty-chain sentinel Handle. Handle's zero value is a valid
// node index (the first Push returns 0), so callers must start chains
// from Nil explicitly rather than relying on a zero-valued Handle.
const Nil = nilHandle

// Push prepends target onto the chain headed by head and returns the new
// head. Pass Nil to start a fresh chain.
func (a *Arena[T]) Push(head Handle, target T) Handle {
	a.nodes = append(a.nodes, node[T]{target: target, next: head})
	return Handle(len(a.nodes) - 1)
}

// Each calls f with every target in the chain headed by head, in
// most-recently-pushed-first order.
func (a *Arena[T]) Each(head Handle, f func(target T)) {
	for h := head; h != nilHandle; h = a.nodes[h].next {
		f(a.nodes[h].target)
	}
}

// Len counts the nodes in the chain headed by head.
func (a *Arena[T]) Len(head Handle) int {
	n := 0
	a.Each(head, func(T) { n++ })
	return n
}
