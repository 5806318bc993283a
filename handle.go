package cow

// Handle is a small, copyable, goroutine-transferable reference to a cell
// owned by a Pool. Two Handles compare equal iff they name the same cell.
//
// A Handle carries no ownership of the cell's storage — it is a weak
// reference. It must not outlive the Pool that created it; the Pool does
// not detect this.
type Handle[T any, A any] struct {
	c *cell[T, A]
}

// Read invokes f with the reader-visible payload. While the owning Pool is
// reader-forked this is the snapshot frozen at the Fork; while it is not,
// it is the single payload Write mutates in place, so unforked writes show
// up at once. Safe to call from any goroutine while the owning Pool is
// reader-forked, including while its writer goroutine is concurrently
// calling Write on other handles (or on this one: a dirty cell's readPtr is
// never touched again until the matching Join).
func (h Handle[T, A]) Read(f func(*T)) {
	f(h.c.readPtr)
}

// HasAux reports whether auxiliary data has been attached via SetAux.
func (h Handle[T, A]) HasAux() bool {
	return h.c.aux != nil
}

// Aux invokes f with the handle's auxiliary data. Panics if no auxiliary
// data has been set; callers must check HasAux first when the value is
// optional.
func (h Handle[T, A]) Aux(f func(*A)) {
	if h.c.aux == nil {
		panic("cow: Handle.Aux called with no auxiliary data set; check HasAux first")
	}
	f(h.c.aux)
}

// SetAux attaches a, a non-owning reference, as this handle's auxiliary
// data. The caller is responsible for keeping a alive for as long as any
// code might call Aux on this handle; the Pool never clones or frees
// auxiliary data on Fork, Write or Join.
func (h Handle[T, A]) SetAux(a *A) {
	h.c.aux = a
}
