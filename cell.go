package cow

// cell is the per-object copy-on-write record. It is never constructed or
// destroyed except by a Pool, and never mutated except through Pool's and
// Handle's methods.
//
// Invariants, holding at every point outside an in-progress Write or Join:
//
//  1. readPtr is never nil.
//  2. writePtr == readPtr iff the cell is clean: not on any dirty list,
//     nextDirty is nil.
//  3. writePtr != readPtr iff the cell is dirty: reachable exactly once
//     from the owning Pool's dirty list head via nextDirty.
//  4. A dirty cell exists only while the owning Pool is reader-forked.
type cell[T any, A any] struct {
	readPtr   *T
	writePtr  *T
	aux       *A
	nextDirty *cell[T, A]
}

// clean reports whether the cell's reader and writer views still alias the
// same payload.
func (c *cell[T, A]) clean() bool {
	return c.writePtr == c.readPtr
}

// clone allocates a new T and shallow-copies src into it. Go's garbage
// collector never runs destructor glue on an overwritten value the way the
// Rust original's calloc-then-assign trick had to guard against, so this
// is just new(T) plus an assignment — no zero-initialization footgun to
// route around.
func clone[T any](src *T) *T {
	dst := new(T)
	*dst = *src
	return dst
}
