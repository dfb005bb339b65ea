package lisp

// windPoint is one node in the dynamic-wind tree (spec.md's continuations
// module): every dynamic-wind call pushes a child point recording its
// before/after thunks, and rt.currentWind always names the point the VM is
// presently "inside". Capturing a continuation snapshots currentWind;
// invoking one re-winds from the invocation-time point to the captured
// point by running after-thunks up to their common ancestor and
// before-thunks back down, exactly as R5RS specifies.
type windPoint struct {
	parent *windPoint
	before Value
	after  Value
	depth  int
}

// PushWind installs a new dynamic-wind point as the current one and
// returns it; the caller (the dynamic-wind primitive) is responsible for
// restoring rt.currentWind to point.parent when the body returns or
// unwinds.
func (rt *Runtime) PushWind(before, after Value) *windPoint {
	point := &windPoint{parent: rt.currentWind, before: before, after: after, depth: rt.currentWind.depth + 1}
	rt.currentWind = point
	return point
}

// PopWind restores the parent of the current wind point. Callers must
// only call this after PushWind returned the point currently installed.
func (rt *Runtime) PopWind() {
	if rt.currentWind.parent != nil {
		rt.currentWind = rt.currentWind.parent
	}
}

// commonAncestor finds the lowest point reachable from both a and b by
// repeatedly following parent, by first equalizing depth then walking both
// pointers up in lockstep.
func commonAncestor(a, b *windPoint) *windPoint {
	for a.depth > b.depth {
		a = a.parent
	}
	for b.depth > a.depth {
		b = b.parent
	}
	for a != b {
		a = a.parent
		b = b.parent
	}
	return a
}

// pathUp collects the points from from (included) up to ancestor
// (excluded), ordered from from (innermost, run first) to just inside
// ancestor.
func pathUp(from, ancestor *windPoint) []*windPoint {
	var path []*windPoint
	for p := from; p != ancestor; p = p.parent {
		path = append(path, p)
	}
	return path
}

// pathDown is pathUp reversed: the points between ancestor and to, ordered
// outermost-first (run in this order to re-enter to).
func pathDown(to, ancestor *windPoint) []*windPoint {
	up := pathUp(to, ancestor)
	for i, j := 0, len(up)-1; i < j; i, j = i+1, j-1 {
		up[i], up[j] = up[j], up[i]
	}
	return up
}

// rewind runs the after-thunks unwinding from rt.currentWind up to
// (excluding) ancestor, then the before-thunks winding down to target,
// leaving rt.currentWind == target. apply is the VM's own procedure
// applicator (vm.go's Apply), threaded in to avoid an import cycle inside
// the same package's file boundaries being anything more than notional.
func (rt *Runtime) rewind(target *windPoint, apply func(proc Value, args []Value) Value) Value {
	ancestor := commonAncestor(rt.currentWind, target)
	for _, p := range pathUp(rt.currentWind, ancestor) {
		rt.currentWind = p.parent
		if res := apply(p.after, nil); IsError(res) {
			return res
		}
	}
	for _, p := range pathDown(target, ancestor) {
		if res := apply(p.before, nil); IsError(res) {
			return res
		}
		rt.currentWind = p
	}
	return Unspecified()
}
