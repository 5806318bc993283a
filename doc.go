/*
Package cow implements a copy-on-write object pool for a single writer
goroutine and any number of reader goroutines sharing a population of
mutable values without synchronized access on the hot path.

The writer owns a Pool and mutates freely through it. Before handing work
to readers, the writer calls Fork, which freezes the snapshot every
outstanding Handle observes. The writer keeps calling Write; on a cell the
writer hasn't touched yet since the fork, Write shadows it (clone-then-
mutate) so the frozen snapshot stays intact, and links the cell onto an
intrusive dirty list. Between a Fork and the matching Join, readers calling
Handle.Read see the payload as frozen at the Fork, never the writer's
in-flight edits. While the Pool is not forked, Write mutates the one shared
payload in place, so Handle.Read sees such a write at once.
Once every reader has been joined (by the caller, externally — the Pool
itself knows nothing about goroutine lifetimes), the writer calls Join,
which walks the dirty list, publishes each shadow as the new snapshot, and
frees the stale one.

This is the model Servo's original DOM used to let a layout/script task
pair share DOM node data without locking the read path: the caller here
plays the role that Servo's window/script bindings played there (see
domtree for a small, non-browser stand-in for that collaborator), while
this package is the COW core itself.

All of Pool's exported methods must be called from the writer goroutine
only. Handle.Read, Handle.HasAux and Handle.Aux may be called from any
goroutine; between Fork and Join they may run concurrently with the
writer's Write calls. They must not run concurrently with Join, which
repoints every dirty cell's reader view, nor with a Write made while the
Pool is not forked, which mutates the reader-visible payload in place.
*/
package cow
