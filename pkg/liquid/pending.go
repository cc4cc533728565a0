package liquid

// pending is the cooperative-async fast-path result type called for in
// §5/§9: "model render results as a value that is either ready or a
// continuation... provide a small hand-written result type rather than
// paying per-call task allocation for the common synchronous case."
//
// In this engine accessor calls during member resolution produce these;
// filter invocation and child-template load/render are plain synchronous
// calls. When ready is true the caller proceeds at once; when ready is
// false, resolve calls resumeFn in a loop on the current goroutine until
// it reports completion.
type pending struct {
	ready bool
	val   Value
	err   error
	// resumeFn, when non-nil, is invoked by the evaluator's resume loop to
	// drive the suspended operation to completion. It must be idempotent
	// after it first returns ready=true.
	resumeFn func() (Value, error, bool)
}

// readyValue builds an already-complete pending, the fast path that must
// not allocate beyond this single value (it is returned by value, not
// boxed on the heap, whenever Go's escape analysis can manage it).
func readyValue(v Value, err error) pending {
	return pending{ready: true, val: v, err: err}
}

// suspend builds a pending that is not yet ready, carrying the function
// the evaluator calls (cooperatively, never from a new goroutine) to
// attempt completion again.
func suspend(resume func() (Value, error, bool)) pending {
	return pending{resumeFn: resume}
}

// resolve drives a pending to completion synchronously. Because this
// engine's accessor/filter/loader seams are implemented as direct Go
// function calls rather than real async I/O, every pending happens to
// resolve on its first resume in this implementation; resolve still loops
// so a pending built by a slower AsyncAccessor (one that itself polls,
// e.g. across a channel) is honored correctly rather than assumed ready.
func (p pending) resolve() (Value, error) {
	if p.ready {
		return p.val, p.err
	}
	for {
		val, err, ready := p.resumeFn()
		if ready {
			return val, err
		}
	}
}
