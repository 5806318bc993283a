package cow

import (
	"fmt"
	"sync/atomic"
)

// Pool is the writer-side manager of a population of copy-on-write cells.
// It owns every cell it has ever created, the reader-active flag, and the
// head of the intrusive dirty list. A Pool must be used from exactly one
// goroutine; Handles obtained from it may be freely copied and sent to any
// number of reader goroutines.
//
// The zero value is not usable; construct with NewPool.
type Pool[T any, A any] struct {
	roster       []*cell[T, A]
	firstDirty   *cell[T, A]
	readerActive bool

	// cloneCount and freeCount are debug-only bookkeeping: how many shadow
	// payloads Write has allocated, and how many stale reader payloads Join
	// has reclaimed, over the Pool's lifetime. Not part of the protocol;
	// exposed for tests that check the "dirty-set minimality" and
	// "idempotent join" laws against an allocator-counter oracle the way
	// the design's property tests expect.
	cloneCount atomic.Int64
	freeCount  atomic.Int64
}

// NewPool constructs an empty Pool, initially Quiescent.
func NewPool[T any, A any]() *Pool[T, A] {
	return &Pool[T, A]{}
}

// IsReaderForked reports whether the Pool is currently in the ReaderActive
// state (between a Fork and its matching Join).
func (p *Pool[T, A]) IsReaderForked() bool {
	return p.readerActive
}

// Create allocates a fresh cell holding a shallow copy of v and returns a
// Handle to it. May be called in either state; a cell created while
// reader-forked starts clean and is simply invisible to any Handle a
// reader already holds from before this call.
func (p *Pool[T, A]) Create(v T) Handle[T, A] {
	readPtr := clone(&v)
	c := &cell[T, A]{
		readPtr:  readPtr,
		writePtr: readPtr,
	}
	p.roster = append(p.roster, c)
	return Handle[T, A]{c: c}
}

// Read invokes f with the writer-visible payload — the one at writePtr,
// which reflects the writer's own in-progress edits even on a cell that
// hasn't been published via Join yet. This is distinct from Handle.Read,
// which always observes the last-published reader snapshot.
func (p *Pool[T, A]) Read(h Handle[T, A], f func(*T)) {
	f(h.c.writePtr)
}

// Write invokes f with a mutable view of h's payload.
//
// If the Pool is reader-forked and h's cell is still clean, Write first
// shadows it: clones the current payload, points writePtr at the clone,
// and splices the cell onto the front of the dirty list. f then mutates
// the clone, leaving the reader-visible readPtr untouched until Join. If
// the cell is already dirty, no further clone is made — f mutates the
// existing shadow in place, matching the "dirty-set minimality" law: only
// the first Write since a Fork pays for a clone.
func (p *Pool[T, A]) Write(h Handle[T, A], f func(*T)) {
	c := h.c
	if p.readerActive && c.clean() {
		c.writePtr = clone(c.readPtr)
		p.cloneCount.Add(1)
		c.nextDirty = p.firstDirty
		p.firstDirty = c
	}
	f(c.writePtr)
}

// Fork transitions the Pool from Quiescent to ReaderActive, freezing the
// snapshot every outstanding Handle observes until the matching Join.
//
// Panics if the Pool is already reader-forked, or if the dirty list is
// non-empty (which would only happen on an internal bug, since Join always
// drains it) — both are programming errors per the package's fatal-error
// design.
func (p *Pool[T, A]) Fork() {
	if p.readerActive {
		panic("cow: Fork called while already reader-forked")
	}
	if p.firstDirty != nil {
		panic("cow: Fork called with a non-empty dirty list")
	}
	p.readerActive = true
}

// Join transitions the Pool from ReaderActive back to Quiescent, publishing
// every cell the writer touched since the matching Fork: the stale reader
// payload is freed, the reader pointer is set to the writer pointer, and
// the cell is unlinked from the dirty list.
//
// The caller must ensure every reader goroutine holding a Handle into this
// Pool has been joined (in the goroutine sense) before calling Join; the
// Pool has no way to detect a reader still mid-Read, per the package's
// concurrency model.
//
// Panics if the Pool is not currently reader-forked.
func (p *Pool[T, A]) Join() {
	if !p.readerActive {
		panic("cow: Join called while not reader-forked")
	}
	for c := p.firstDirty; c != nil; {
		p.freeCount.Add(1)
		c.readPtr = c.writePtr
		next := c.nextDirty
		c.nextDirty = nil
		c = next
	}
	p.firstDirty = nil
	p.readerActive = false
}

// DebugCloneCount returns the number of shadow payloads Write has
// allocated over this Pool's lifetime. For tests only.
func (p *Pool[T, A]) DebugCloneCount() int64 {
	return p.cloneCount.Load()
}

// DebugFreeCount returns the number of stale reader payloads Join has
// reclaimed over this Pool's lifetime. For tests only.
func (p *Pool[T, A]) DebugFreeCount() int64 {
	return p.freeCount.Load()
}

// DebugCellCount returns the number of cells this Pool has ever created
// (its full roster). For tests only.
func (p *Pool[T, A]) DebugCellCount() int {
	return len(p.roster)
}

// DebugDirtyLen walks the dirty list and returns its length. For tests
// only; a correct Pool never needs to know this at runtime.
func (p *Pool[T, A]) DebugDirtyLen() int {
	n := 0
	for c := p.firstDirty; c != nil; c = c.nextDirty {
		n++
	}
	return n
}

// CheckInvariants walks the full roster and verifies invariants 1-4 from
// the package's cell documentation. It is the structural check the
// tagged-union reformulation discussed in the design notes would have made
// automatic; here it is an explicit, opt-in assertion instead, meant for
// tests and fuzzing harnesses rather than the hot path. Returns a
// descriptive error identifying the first violation found, or nil.
func (p *Pool[T, A]) CheckInvariants() error {
	dirty := make(map[*cell[T, A]]bool, p.DebugDirtyLen())
	for c := p.firstDirty; c != nil; c = c.nextDirty {
		if dirty[c] {
			return fmt.Errorf("cow: cell %p appears twice on the dirty list", c)
		}
		dirty[c] = true
	}
	if !p.readerActive && len(dirty) != 0 {
		return fmt.Errorf("cow: dirty list non-empty (%d cells) while Quiescent", len(dirty))
	}
	for _, c := range p.roster {
		if c.readPtr == nil {
			return fmt.Errorf("cow: cell %p has a nil readPtr", c)
		}
		if c.clean() {
			if dirty[c] {
				return fmt.Errorf("cow: clean cell %p is on the dirty list", c)
			}
			if c.nextDirty != nil {
				return fmt.Errorf("cow: clean cell %p has a non-nil nextDirty", c)
			}
		} else {
			if !p.readerActive {
				return fmt.Errorf("cow: dirty cell %p exists while Quiescent", c)
			}
			if !dirty[c] {
				return fmt.Errorf("cow: dirty cell %p is not reachable from the dirty list", c)
			}
		}
	}
	return nil
}
