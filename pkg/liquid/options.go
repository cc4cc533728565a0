package liquid

import (
	"log/slog"
	"time"
)

// MemberAccessStrategy selects how Object member access is policed (§6).
type MemberAccessStrategy int

const (
	// MemberAccessSafe permits only explicitly registered accessors
	// (default).
	MemberAccessSafe MemberAccessStrategy = iota
	// MemberAccessUnsafe additionally falls back to reflecting over any
	// public field or zero-arg method (UnsafeStructAccessor).
	MemberAccessUnsafe
)

// Options is the enumerated options surface of §6, treated as immutable
// after construction (§5): callers that mutate it concurrently with a
// render invoke undefined behavior.
type Options struct {
	// Filters maps name to filter callback (§6, 4.G). Built-ins are always
	// registered first; Filters here extends or overrides them
	// (last-writer-wins per name, 4.G).
	Filters map[string]FilterFunc

	// Converters holds host-value converters. Neither FromGo nor rendering
	// reads this field: host values are classified by shape only, and no
	// converter in it is ever called.
	Converters []ValueConverter

	// Accessors is the options-layer accessor registry (4.F); the
	// per-render context registry, if any, overrides it.
	Accessors *AccessorRegistry

	// MemberAccessStrategy governs Object member resolution (§6, default
	// MemberAccessSafe).
	MemberAccessStrategy MemberAccessStrategy

	// Culture selects locale for number/date formatting (§6). Empty means
	// "en_US".
	Culture string

	// Timezone is the default zone for naive date/time values (§6). Nil
	// means time.Local.
	Timezone *time.Location

	// MaxRecursion bounds include/render nesting depth (§5, default 100).
	MaxRecursion int
	// MaxSteps bounds total statements rendered (§5, 0 = unlimited).
	MaxSteps int
	// MaxIterations bounds a single loop's iteration count (§3, 0 = unlimited).
	MaxIterations int
	// MaxOutputBytes bounds total output size (§3's "output character
	// budget", 0 = unlimited).
	MaxOutputBytes int

	// Now overrides the clock seen by the `date` filter's "now"/"today"
	// and by the evaluator's cancellation bookkeeping (§6).
	Now func() time.Time

	// GreedyParser permits tag arguments to span newlines (§6).
	GreedyParser bool
	// TrimBlocks / TrimTags set the default whitespace-stripping policy
	// applied even without explicit {%- -%} markers (§6).
	TrimBlocks bool
	TrimTags   bool

	// Encoder overrides the default HTMLEncoder (§6).
	Encoder Encoder

	// Loader resolves include/render/layout template names (§1, §6).
	Loader TemplateLoader

	// Logger is carried for embedding applications such as cmd/goliquid;
	// nothing in this package writes to it (SPEC_FULL §9). logger()
	// returns slog.Default() when it is nil.
	Logger *slog.Logger

	filterTable map[string]FilterFunc // built at first use, merging builtins + Filters
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Options) timezone() *time.Location {
	if o.Timezone != nil {
		return o.Timezone
	}
	return time.Local
}

func (o *Options) accessorsOrEmpty() *AccessorRegistry {
	if o.Accessors != nil {
		return o.Accessors
	}
	return emptyAccessorRegistry
}

var emptyAccessorRegistry = NewAccessorRegistry()

func (o *Options) lookupFilter(name string) (FilterFunc, bool) {
	if o.filterTable == nil {
		o.filterTable = make(map[string]FilterFunc, len(builtinFilters)+len(o.Filters))
		for k, v := range builtinFilters {
			o.filterTable[k] = v
		}
		for k, v := range o.Filters {
			o.filterTable[k] = v // last-writer-wins: caller overrides built-ins (4.G)
		}
	}
	fn, ok := o.filterTable[name]
	return fn, ok
}

func (o *Options) maxRecursion() int {
	if o.MaxRecursion > 0 {
		return o.MaxRecursion
	}
	return 100
}
