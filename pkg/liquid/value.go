package liquid

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// valueKind tags the variant held by a Value, mirroring the capability set
// described in 4.E/§3: to_bool, to_number, to_string, to_object, equals,
// get_member, get_index, iterate, contains.
type valueKind int

const (
	KindNil valueKind = iota
	KindBool
	KindNumber
	KindString
	KindDateTime
	KindArray
	KindDictionary
	KindObject
	KindRange
	KindFunction
	// KindEmpty is the `empty`/`blank` literal (§3 grammar): it equals any
	// zero-length String, Array, or Dictionary, matching Shopify Liquid's
	// documented `{% if collection == empty %}` idiom rather than literally
	// being an empty string (which would fail to match `[] == empty`).
	KindEmpty
)

// dictEntry preserves insertion order for Dictionary iteration (§3:
// "Dictionary (mapping from string to value, insertion-ordered for
// iteration)").
type dictEntry struct {
	key   string
	value Value
}

// dict is an insertion-ordered string-keyed map.
type dict struct {
	order []string
	index map[string]int
	vals  []Value
}

func newDict() *dict {
	return &dict{index: make(map[string]int)}
}

func (d *dict) set(key string, v Value) {
	if i, ok := d.index[key]; ok {
		d.vals[i] = v
		return
	}
	d.index[key] = len(d.order)
	d.order = append(d.order, key)
	d.vals = append(d.vals, v)
}

func (d *dict) get(key string) (Value, bool) {
	if i, ok := d.index[key]; ok {
		return d.vals[i], true
	}
	return Nil(), false
}

func (d *dict) len() int { return len(d.order) }

func (d *dict) entries() []dictEntry {
	out := make([]dictEntry, len(d.order))
	for i, k := range d.order {
		out[i] = dictEntry{key: k, value: d.vals[i]}
	}
	return out
}

// liquidRange is the Range variant: integer bounds, inclusive, lazily
// enumerated (§3).
type liquidRange struct {
	from, to int64
}

func (r liquidRange) len() int64 {
	if r.to < r.from {
		return 0
	}
	return r.to - r.from + 1
}

// Function is the signature of a host-supplied invocable taking the render
// context and filter-style arguments.
type Function func(ctx *Context, args *Args) (Value, error)

// Value is the polymorphic runtime value every expression evaluates to.
// It is a small tagged union: a kind discriminant plus at most one live
// payload field, following the tagged-sum pattern over class inheritance
// recommended in 9 ("Polymorphic value is best expressed as a tagged sum
// with boxed complex variants").
type Value struct {
	kind valueKind

	b    bool
	num  decimal.Decimal
	str  string
	safe bool // string came from an escaping-safe source; see encoder.go
	t    time.Time

	arr  []Value
	dict *dict
	rng  liquidRange
	fn   Function
	obj  interface{} // opaque host value, member access via accessor registry
}

func Nil() Value                   { return Value{kind: KindNil} }
func BoolValue(b bool) Value       { return Value{kind: KindBool, b: b} }
func StringValue(s string) Value   { return Value{kind: KindString, str: s} }
func SafeStringValue(s string) Value {
	return Value{kind: KindString, str: s, safe: true}
}
func NumberValue(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }
func IntValue(i int64) Value               { return Value{kind: KindNumber, num: decimal.New(i, 0)} }
func FloatValue(f float64) Value {
	return Value{kind: KindNumber, num: decimal.NewFromFloat(f)}
}
func DateTimeValue(t time.Time) Value { return Value{kind: KindDateTime, t: t} }
func ArrayValue(items []Value) Value  { return Value{kind: KindArray, arr: items} }
func ObjectValue(o interface{}) Value { return Value{kind: KindObject, obj: o} }
func RangeValue(from, to int64) Value { return Value{kind: KindRange, rng: liquidRange{from, to}} }
func FunctionValue(fn Function) Value { return Value{kind: KindFunction, fn: fn} }

func DictionaryValue(entries []dictEntry) Value {
	d := newDict()
	for _, e := range entries {
		d.set(e.key, e.value)
	}
	return Value{kind: KindDictionary, dict: d}
}

func emptyDictionary() Value { return Value{kind: KindDictionary, dict: newDict()} }

// EmptyValue is the `empty`/`blank` literal (§3).
func EmptyValue() Value { return Value{kind: KindEmpty} }

// isZeroLength reports whether v is a String, Array, or Dictionary with no
// elements, the set of kinds the `empty`/`blank` literal compares equal to.
func (v Value) isZeroLength() bool {
	switch v.kind {
	case KindString:
		return v.str == ""
	case KindArray:
		return len(v.arr) == 0
	case KindDictionary:
		return v.dict.len() == 0
	default:
		return false
	}
}

func (v Value) Kind() valueKind { return v.kind }
func (v Value) IsNil() bool     { return v.kind == KindNil }

// IsSafe reports whether a String value is exempt from encoder escaping
// because it was produced by an escaping-safe filter or capture block
// (supplemented feature, SPEC_FULL §11).
func (v Value) IsSafe() bool { return v.kind == KindString && v.safe }

// ToBool implements the truthiness law (§3, §8): false iff Nil or
// Boolean(false); every other value, including zero and empty, is truthy.
func (v Value) ToBool() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true // includes KindEmpty: the literal itself is truthy
	}
}

// ToNumber never errors (§7: "to_number of non-numeric string is 0").
func (v Value) ToNumber() decimal.Decimal {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		if v.b {
			return decimal.New(1, 0)
		}
		return decimal.Zero
	case KindString:
		d, ok := parseLeadingDecimal(v.str)
		if ok {
			return d
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// ToString implements §7's "to_string of nil is ''" and scale-preserving
// number rendering (§3/§8: "1.0 and 1 are equal but render as ... 1.0 ...
// and ... 1 ... respectively").
func (v Value) ToString() string {
	switch v.kind {
	case KindNil:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatDecimal(v.num)
	case KindString:
		return v.str
	case KindDateTime:
		return v.t.Format(time.RFC3339)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.ToString()
		}
		return strings.Join(parts, "")
	case KindDictionary:
		return "" // Liquid renders a bare dictionary as empty text
	case KindRange:
		return fmt.Sprintf("%d..%d", v.rng.from, v.rng.to)
	case KindObject:
		return fmt.Sprintf("%v", v.obj)
	case KindFunction:
		return ""
	case KindEmpty:
		return ""
	default:
		return ""
	}
}

// ToObject exposes the host-facing representation, used by filters that
// need the underlying Go value (e.g. sort, json-ish introspection).
func (v Value) ToObject() interface{} {
	switch v.kind {
	case KindNil:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindDateTime:
		return v.t
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.ToObject()
		}
		return out
	case KindDictionary:
		out := make(map[string]interface{}, v.dict.len())
		for _, e := range v.dict.entries() {
			out[e.key] = e.value.ToObject()
		}
		return out
	case KindObject:
		return v.obj
	default:
		return nil
	}
}

// Equals implements §3's symmetric structural equality, including the
// cross-kind Number == String rule.
func (v Value) Equals(other Value) bool {
	if v.kind == KindNil || other.kind == KindNil {
		return v.kind == KindNil && other.kind == KindNil
	}
	if v.kind == KindEmpty || other.kind == KindEmpty {
		if v.kind == KindEmpty && other.kind == KindEmpty {
			return true
		}
		if v.kind == KindEmpty {
			return other.isZeroLength()
		}
		return v.isZeroLength()
	}
	if v.kind == KindNumber || other.kind == KindNumber {
		a, aok := v.asNumericForEquality()
		b, bok := other.asNumericForEquality()
		if aok && bok {
			return a.Equal(b)
		}
		return false
	}
	switch v.kind {
	case KindBool:
		return other.kind == KindBool && v.b == other.b
	case KindString:
		return other.kind == KindString && v.str == other.str
	case KindDateTime:
		return other.kind == KindDateTime && v.t.Equal(other.t)
	case KindArray:
		if other.kind != KindArray || len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equals(other.arr[i]) {
				return false
			}
		}
		return true
	case KindDictionary:
		if other.kind != KindDictionary || v.dict.len() != other.dict.len() {
			return false
		}
		for _, e := range v.dict.entries() {
			ov, ok := other.dict.get(e.key)
			if !ok || !e.value.Equals(ov) {
				return false
			}
		}
		return true
	case KindRange:
		return other.kind == KindRange && v.rng == other.rng
	default:
		return false
	}
}

func (v Value) asNumericForEquality() (decimal.Decimal, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return parseLeadingDecimal(v.str)
	default:
		return decimal.Decimal{}, false
	}
}

// Contains implements the `contains` operator: substring for strings,
// element membership for arrays, key membership for dictionaries.
func (v Value) Contains(needle Value) bool {
	switch v.kind {
	case KindString:
		return strings.Contains(v.str, needle.ToString())
	case KindArray:
		for _, e := range v.arr {
			if e.Equals(needle) {
				return true
			}
		}
		return false
	case KindDictionary:
		_, ok := v.dict.get(needle.ToString())
		return ok
	default:
		return false
	}
}

// GetMember resolves `.b` access. Dictionaries and ranges resolve directly;
// Objects delegate to the accessor registry carried on ctx.
func (v Value) GetMember(ctx *Context, name string) (Value, error) {
	switch v.kind {
	case KindDictionary:
		if val, ok := v.dict.get(name); ok {
			return val, nil
		}
		return Nil(), nil
	case KindArray:
		switch name {
		case "size":
			return IntValue(int64(len(v.arr))), nil
		case "first":
			if len(v.arr) == 0 {
				return Nil(), nil
			}
			return v.arr[0], nil
		case "last":
			if len(v.arr) == 0 {
				return Nil(), nil
			}
			return v.arr[len(v.arr)-1], nil
		}
		return Nil(), nil
	case KindString:
		if name == "size" {
			return IntValue(int64(len(v.str))), nil
		}
		return Nil(), nil
	case KindRange:
		if name == "size" {
			return IntValue(v.rng.len()), nil
		}
		if name == "first" {
			return IntValue(v.rng.from), nil
		}
		if name == "last" {
			return IntValue(v.rng.to), nil
		}
		return Nil(), nil
	case KindObject:
		return ctx.resolveMember(v.obj, name)
	default:
		return Nil(), nil
	}
}

// GetIndex resolves `a[expr]` access: integer index into Array or String
// (one character), string key into Dictionary/Object (treated as a member
// lookup). Indexing any other kind, including a Range, yields Nil.
func (v Value) GetIndex(ctx *Context, idx Value) (Value, error) {
	switch v.kind {
	case KindArray:
		i, ok := idx.intIndex(len(v.arr))
		if !ok {
			return Nil(), nil
		}
		return v.arr[i], nil
	case KindString:
		runes := []rune(v.str)
		i, ok := idx.intIndex(len(runes))
		if !ok {
			return Nil(), nil
		}
		return StringValue(string(runes[i])), nil
	case KindDictionary, KindObject:
		return v.GetMember(ctx, idx.ToString())
	default:
		return Nil(), nil
	}
}

// intIndex converts idx to a slice index supporting negative
// from-the-end access, returning ok=false if out of range.
func (idx Value) intIndex(length int) (int, bool) {
	if idx.kind != KindNumber {
		return 0, false
	}
	i := idx.num.IntPart()
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, false
	}
	return int(i), true
}

// Iterate yields the elements a `for` loop walks over. Dictionaries yield
// two-element [key, value] arrays (§3).
func (v Value) Iterate() []Value {
	switch v.kind {
	case KindArray:
		return v.arr
	case KindRange:
		n := v.rng.len()
		out := make([]Value, 0, n)
		for i := v.rng.from; i <= v.rng.to; i++ {
			out = append(out, IntValue(i))
		}
		return out
	case KindDictionary:
		entries := v.dict.entries()
		out := make([]Value, len(entries))
		for i, e := range entries {
			out[i] = ArrayValue([]Value{StringValue(e.key), e.value})
		}
		return out
	case KindString:
		if v.str == "" {
			return nil
		}
		return []Value{v}
	default:
		return nil
	}
}

// sortValues sorts a copy of vs by natural comparison (numbers, strings,
// then by ToString fallback), used by the `sort`/`sort_natural` filters.
func sortValues(vs []Value, natural bool) []Value {
	out := make([]Value, len(vs))
	copy(out, vs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.kind == KindNumber && b.kind == KindNumber {
			return a.num.LessThan(b.num)
		}
		as, bs := a.ToString(), b.ToString()
		if natural {
			as, bs = strings.ToLower(as), strings.ToLower(bs)
		}
		return as < bs
	})
	return out
}
