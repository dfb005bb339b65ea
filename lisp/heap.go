package lisp

import (
	"fmt"
	"io"
)

// heapObject is implemented by every Go type stored behind a Handle.
// traceRefs appends every Value the object directly holds to refs and
// returns the extended slice, letting the collector follow pointers without
// needing to know the concrete shape of each kind of heap object.
type heapObject interface {
	traceRefs(refs []Value) []Value
}

type cell struct {
	obj    heapObject
	live   bool
	marked bool
}

// Heap is a tracing, stop-the-world, mark-and-sweep collector over an arena
// of Handle-indexed cells, per spec.md §4.1/§9's "arena-of-handles" design
// note: handles stand in for raw pointers so that Values themselves stay
// plain, comparable 16-byte structs.
type Heap struct {
	cells []cell
	free  []Handle

	rootGuards map[Handle]int
	scanRoots  []func() []Value

	allocsSinceGC int
	threshold     int

	logf func(format string, args ...interface{})
}

// NewHeap returns an empty heap. threshold is the number of allocations
// between automatic collections; 0 selects a sensible default.
func NewHeap(threshold int) *Heap {
	if threshold <= 0 {
		threshold = 4096
	}
	return &Heap{
		rootGuards: make(map[Handle]int),
		threshold:  threshold,
		logf:       func(string, ...interface{}) {},
	}
}

// SetLogger installs a diagnostic sink used to report collection cycles
// when LUMEN_LOG >= 2 (see cmd/lumen and NewRuntime).
func (h *Heap) SetLogger(w io.Writer) {
	if w == nil {
		h.logf = func(string, ...interface{}) {}
		return
	}
	h.logf = func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}
}

// AddRootProvider registers a callback consulted on every collection to
// enumerate additional roots (the VM's value stack, the current code
// block's constant pool, the global table). Providers are called in
// registration order; NewRuntime registers two, one for the global table
// and standard ports and one for the VM's live stacks.
func (h *Heap) AddRootProvider(fn func() []Value) {
	h.scanRoots = append(h.scanRoots, fn)
}

// alloc inserts obj into the arena and returns its Handle.
func (h *Heap) alloc(obj heapObject) Handle {
	h.allocsSinceGC++
	if len(h.free) > 0 {
		idx := h.free[len(h.free)-1]
		h.free = h.free[:len(h.free)-1]
		h.cells[idx] = cell{obj: obj, live: true}
		h.maybeCollect()
		return idx
	}
	h.cells = append(h.cells, cell{obj: obj, live: true})
	handle := Handle(len(h.cells) - 1)
	h.maybeCollect()
	return handle
}

func (h *Heap) get(handle Handle) heapObject {
	c := &h.cells[handle]
	if !c.live {
		panic(fmt.Sprintf("lisp: use of collected heap handle %d", handle))
	}
	return c.obj
}

// RootGuard pins a heap-allocated Value against collection until Release is
// called. Primitives that hold a heap reference across an allocating
// operation (any procedure call, any further allocation) must root it
// first, per spec.md §4.1's contract.
type RootGuard struct {
	heap   *Heap
	handle Handle
	active bool
}

// Release unpins the guarded value. Release is idempotent.
func (g *RootGuard) Release() {
	if g == nil || !g.active {
		return
	}
	g.active = false
	g.heap.rootGuards[g.handle]--
	if g.heap.rootGuards[g.handle] <= 0 {
		delete(g.heap.rootGuards, g.handle)
	}
}

// Root pins v (a no-op, returning an inactive guard, if v is not
// heap-allocated).
func (h *Heap) Root(v Value) *RootGuard {
	if !isHeapTag(v.Tag) {
		return &RootGuard{}
	}
	handle := heapHandle(v)
	h.rootGuards[handle]++
	return &RootGuard{heap: h, handle: handle, active: true}
}

func isHeapTag(t Tag) bool {
	switch t {
	case TString, TPair, TVector, TBytevector, TPort, TClosure, TPrimitive,
		TContinuation, TPromise, TSyntacticClosure, TFrame, TCode, TEnv,
		TValues, TError, TTransformer:
		return true
	}
	return false
}

func (h *Heap) maybeCollect() {
	if h.allocsSinceGC < h.threshold {
		return
	}
	h.Collect()
}

// Collect runs one mark-and-sweep cycle immediately. Mutator observable
// state is unchanged by a cycle (spec.md §5): Collect only reclaims cells
// nothing can reach anymore.
func (h *Heap) Collect() {
	h.allocsSinceGC = 0
	for i := range h.cells {
		h.cells[i].marked = false
	}

	var roots []Value
	for _, provider := range h.scanRoots {
		roots = append(roots, provider()...)
	}

	var work []Handle
	for handle := range h.rootGuards {
		work = append(work, handle)
	}
	for _, v := range roots {
		if isHeapTag(v.Tag) {
			work = append(work, heapHandle(v))
		}
	}

	var refBuf []Value
	for len(work) > 0 {
		handle := work[len(work)-1]
		work = work[:len(work)-1]
		if int(handle) >= len(h.cells) {
			continue
		}
		c := &h.cells[handle]
		if !c.live || c.marked {
			continue
		}
		c.marked = true
		refBuf = c.obj.traceRefs(refBuf[:0])
		for _, ref := range refBuf {
			if isHeapTag(ref.Tag) {
				work = append(work, heapHandle(ref))
			}
		}
	}

	collected, live := 0, 0
	for i := range h.cells {
		c := &h.cells[i]
		if !c.live {
			continue
		}
		if !c.marked {
			c.live = false
			c.obj = nil
			h.free = append(h.free, Handle(i))
			collected++
		} else {
			live++
		}
	}
	h.logf("heap: collected %d objects, %d live", collected, live)
}

// Stats reports the current live/free cell counts.
func (h *Heap) Stats() (live, free int) {
	for i := range h.cells {
		if h.cells[i].live {
			live++
		}
	}
	return live, len(h.free)
}
