package liquid

import (
	"context"
	"strings"
)

// loopFrame exposes the `forloop` object inside a `for` block (§3).
type loopFrame struct {
	index  int // 0-based
	length int
	parent *loopFrame
}

func (f *loopFrame) toValue() Value {
	entries := []dictEntry{
		{"index", IntValue(int64(f.index + 1))},
		{"index0", IntValue(int64(f.index))},
		{"rindex", IntValue(int64(f.length - f.index))},
		{"rindex0", IntValue(int64(f.length - f.index - 1))},
		{"first", BoolValue(f.index == 0)},
		{"last", BoolValue(f.index == f.length-1)},
		{"length", IntValue(int64(f.length))},
	}
	if f.parent != nil {
		entries = append(entries, dictEntry{"parentloop", f.parent.toValue()})
	} else {
		entries = append(entries, dictEntry{"parentloop", Nil()})
	}
	return DictionaryValue(entries)
}

// scope is one frame of the scope stack: an ordered mapping from name to
// value (§3). Using a map per frame keeps writes O(1) and reads a simple
// innermost-to-outermost walk.
type scope map[string]Value

// Context is the per-render mutable state (§3 "Template context"):
// scopes, loop frames, captures, culture, encoder, guards. It is created
// at render start, destroyed at render end, and never shared across
// concurrent renders (§5).
type Context struct {
	opts    *Options
	encoder Encoder

	scopes    []scope
	loops     []*loopFrame
	captures  []*strings.Builder
	counters  scope // separate namespace from assign'd variables, per {% increment %}/{% decrement %}
	cycles    map[string]int

	accessors *AccessorRegistry // per-render overrides layered over opts.Accessors (4.F)
	model     interface{}

	includeDepth int
	includeChain []string // visited template names along the current include chain, for cycle detection (9)

	steps      int
	outputSize int

	goCtx context.Context

	cache      map[string]*Template // parsed-template cache keyed by resolved path
}

// newContext builds the per-render state for one Render call.
func newContext(goCtx context.Context, opts *Options, model interface{}, accessors *AccessorRegistry) *Context {
	enc := opts.Encoder
	if enc == nil {
		enc = HTMLEncoder{}
	}
	if accessors == nil {
		accessors = emptyAccessorRegistry
	}
	return &Context{
		opts:      opts,
		encoder:   enc,
		scopes:    []scope{make(scope)},
		counters:  make(scope),
		cycles:    make(map[string]int),
		accessors: accessors,
		model:     model,
		goCtx:     goCtx,
		cache:     make(map[string]*Template),
	}
}

// enterScope pushes a new innermost scope, e.g. for a block's body.
func (ctx *Context) enterScope() { ctx.scopes = append(ctx.scopes, make(scope)) }

// exitScope pops the innermost scope. Callers must balance every
// enterScope with exitScope even on the error path (§8 "Scope balance").
func (ctx *Context) exitScope() { ctx.scopes = ctx.scopes[:len(ctx.scopes)-1] }

// depth reports the current scope-stack depth, used by tests asserting
// §8's scope-balance invariant.
func (ctx *Context) depth() int { return len(ctx.scopes) }

// lookup resolves a bare name: "forloop" first (the innermost loop frame,
// shadowing any variable of that name), then an innermost-to-outermost
// scope search, then the model. Undefined names evaluate to Nil, never an
// error (§7).
func (ctx *Context) lookup(name string) (Value, error) {
	if name == "forloop" {
		if len(ctx.loops) == 0 {
			return Nil(), nil
		}
		return ctx.loops[len(ctx.loops)-1].toValue(), nil
	}
	for i := len(ctx.scopes) - 1; i >= 0; i-- {
		if v, ok := ctx.scopes[i][name]; ok {
			return v, nil
		}
	}
	if ctx.model == nil {
		return Nil(), nil
	}
	return FromGo(ctx.model).GetMember(ctx, name)
}

// set writes to the innermost scope (assign's target, for-loop variable
// binding, capture's result binding).
func (ctx *Context) set(name string, v Value) {
	ctx.scopes[len(ctx.scopes)-1][name] = v
}

// setInCaptureScope binds capture's result in the scope active when the
// capture block started (4.I: "bind the buffer's string to the named
// variable in the innermost writable scope on completion"). Every block
// already pushes its own scope frame, so this is just set.
func (ctx *Context) setInCaptureScope(name string, v Value) {
	ctx.set(name, v)
}

// pushLoop installs a new forloop frame, nested under the current one if
// any (for `parentloop`).
func (ctx *Context) pushLoop(length int) *loopFrame {
	var parent *loopFrame
	if len(ctx.loops) > 0 {
		parent = ctx.loops[len(ctx.loops)-1]
	}
	f := &loopFrame{length: length, parent: parent}
	ctx.loops = append(ctx.loops, f)
	return f
}

func (ctx *Context) popLoop() { ctx.loops = ctx.loops[:len(ctx.loops)-1] }

// pushCapture redirects writes to a fresh buffer for {% capture %}.
func (ctx *Context) pushCapture() *strings.Builder {
	b := &strings.Builder{}
	ctx.captures = append(ctx.captures, b)
	return b
}

func (ctx *Context) popCapture() string {
	b := ctx.captures[len(ctx.captures)-1]
	ctx.captures = ctx.captures[:len(ctx.captures)-1]
	return b.String()
}

// increment implements {% increment var %}: returns the counter's current
// value, then advances it. Counters are a namespace separate from
// assign'd variables (Liquid semantics).
func (ctx *Context) increment(name string) int64 {
	cur := ctx.counters[name].ToNumber().IntPart()
	ctx.counters[name] = IntValue(cur + 1)
	return cur
}

// decrement implements {% decrement var %}: decrements first, then
// returns the new value.
func (ctx *Context) decrement(name string) int64 {
	cur := ctx.counters[name].ToNumber().IntPart() - 1
	ctx.counters[name] = IntValue(cur)
	return cur
}

// cycleNext advances and returns the next index for a named cycle group
// (SPEC_FULL §11: independent groups don't share rotation state).
func (ctx *Context) cycleNext(group string, n int) int {
	i := ctx.cycles[group] % n
	ctx.cycles[group] = i + 1
	return i
}

// checkGuards enforces the render-wide step budget and cancellation
// (§5 "Cancellation... checks it at each statement boundary").
func (ctx *Context) checkGuards() error {
	ctx.steps++
	if ctx.opts.MaxSteps > 0 && ctx.steps > ctx.opts.MaxSteps {
		return newEvalError("render", &stepsExceededError{steps: ctx.steps}, "step budget exceeded")
	}
	if ctx.goCtx != nil {
		select {
		case <-ctx.goCtx.Done():
			return newEvalError("render", &cancelledError{}, "context cancelled")
		default:
		}
	}
	return nil
}

// checkIteration enforces §3's max-iterations-per-loop guard.
func (ctx *Context) checkIteration(count int) error {
	if ctx.opts.MaxIterations > 0 && count > ctx.opts.MaxIterations {
		return newEvalError("for", &iterationsExceededError{count: count}, "loop iteration budget exceeded")
	}
	return nil
}

// enterInclude and leaveInclude bound include/render recursion (§5
// "Maximum recursion depth for includes") and detect cycles along the
// current include chain (9).
func (ctx *Context) enterInclude(name string) error {
	if ctx.includeDepth >= ctx.opts.maxRecursion() {
		return newEvalError("include", &recursionExceededError{depth: ctx.includeDepth}, "include depth exceeded for %q", name)
	}
	for _, seen := range ctx.includeChain {
		if seen == name {
			return newEvalError("include", nil, "cyclic include detected: %q already in chain %v", name, ctx.includeChain)
		}
	}
	ctx.includeDepth++
	ctx.includeChain = append(ctx.includeChain, name)
	return nil
}

func (ctx *Context) leaveInclude() {
	ctx.includeDepth--
	ctx.includeChain = ctx.includeChain[:len(ctx.includeChain)-1]
}
