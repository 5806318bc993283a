package cow_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/keilerkonzept/cow"
)

// TestProp_CowPoolInvariants is a stateful model test of the full Pool
// state machine: handles get created at arbitrary points, the pool forks
// and joins, writes land on arbitrary existing handles, and after every
// step a plain Go model of "what should handle H currently read" is
// checked against the real Pool, alongside the pool's own structural
// invariants.
func TestProp_CowPoolInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := cow.NewPool[int, struct{}]()

		var handles []cow.Handle[int, struct{}]
		// model[i]: value handles[i] ought to read right now (the
		// reader-visible snapshot), and writerModel[i]: the value
		// Pool.Read ought to return (the writer's own view).
		var model []int
		var writerModel []int

		read := func(h cow.Handle[int, struct{}]) int {
			var v int
			h.Read(func(p *int) { v = *p })
			return v
		}
		writerRead := func(h cow.Handle[int, struct{}]) int {
			var v int
			p.Read(h, func(p *int) { v = *p })
			return v
		}

		t.Repeat(map[string]func(*rapid.T){
			"Create": func(t *rapid.T) {
				v := rapid.IntRange(0, 1000).Draw(t, "initialValue")
				h := p.Create(v)
				handles = append(handles, h)
				model = append(model, v)
				writerModel = append(writerModel, v)
			},
			"Write": func(t *rapid.T) {
				if len(handles) == 0 {
					t.Skip("no handles yet")
				}
				idx := rapid.IntRange(0, len(handles)-1).Draw(t, "writeIdx")
				delta := rapid.IntRange(-10, 10).Draw(t, "delta")

				p.Write(handles[idx], func(v *int) { *v += delta })

				// model update: the writer-visible value always moves;
				// the reader-visible value only moves if we are not
				// currently forked (an unforked write is immediately
				// visible to readers too).
				writerModel[idx] += delta
				if !p.IsReaderForked() {
					model[idx] += delta
				}
			},
			"Fork": func(t *rapid.T) {
				if p.IsReaderForked() {
					t.Skip("already forked")
				}
				p.Fork()
			},
			"Join": func(t *rapid.T) {
				if !p.IsReaderForked() {
					t.Skip("not forked")
				}
				p.Join()
				// model update: joining publishes every writer-visible
				// value as the new reader-visible value.
				copy(model, writerModel)
			},
			"CheckReaderView": func(t *rapid.T) {
				for i, h := range handles {
					if got := read(h); got != model[i] {
						t.Fatalf("handle %d: reader view = %d, want %d", i, got, model[i])
					}
				}
			},
			"CheckWriterView": func(t *rapid.T) {
				for i, h := range handles {
					if got := writerRead(h); got != writerModel[i] {
						t.Fatalf("handle %d: writer view = %d, want %d", i, got, writerModel[i])
					}
				}
			},
			"CheckStructuralInvariants": func(t *rapid.T) {
				if err := p.CheckInvariants(); err != nil {
					t.Fatalf("%v", err)
				}
				if !p.IsReaderForked() && p.DebugDirtyLen() != 0 {
					t.Fatalf("dirty list non-empty (%d) while quiescent", p.DebugDirtyLen())
				}
			},
		})
	})
}
