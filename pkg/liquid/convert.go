package liquid

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// ValueConverter is a registered host-value-to-runtime-value converter
// (§6 "value_converters"). Per 4.E step 2, a converter may itself return
// a terminal Value, or a substitute host object on which classification
// restarts; returning (Value{}, nil, false) means "not applicable, try the
// next converter".
type ValueConverter func(v interface{}) (result Value, substitute interface{}, handled bool)

// FromGo builds a Value from an arbitrary host value: passthrough of an
// existing Value, then shape-based dispatch. It calls convertChain with no
// converters and never consults Options, so Options.Converters has no
// effect on the result.
func FromGo(v interface{}) Value {
	return convertChain(v, nil)
}

func convertChain(v interface{}, converters []ValueConverter) Value {
	for {
		if val, ok := v.(Value); ok {
			return val
		}
		if v == nil {
			return Nil()
		}

		handledByConverter := false
		for _, conv := range converters {
			result, substitute, handled := conv(v)
			if !handled {
				continue
			}
			if substitute != nil {
				v = substitute
				handledByConverter = true
				break
			}
			return result
		}
		if handledByConverter {
			continue
		}

		return classifyByShape(v)
	}
}

// classifyByShape implements 4.E step 3's dispatch table.
func classifyByShape(v interface{}) Value {
	switch x := v.(type) {
	case bool:
		return BoolValue(x)
	case string:
		return StringValue(x)
	case time.Time:
		return DateTimeValue(x)
	case decimal.Decimal:
		return NumberValue(x)
	case map[string]interface{}:
		return dictFromStringMap(x)
	case []interface{}:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = FromGo(e)
		}
		return ArrayValue(items)
	case []Value:
		return ArrayValue(x)
	case Function:
		return FunctionValue(x)
	}

	rv := reflect.ValueOf(v)
	t, ok := resolveStrategy(rv)
	if ok {
		return convertByStrategy(rv, t)
	}
	return ObjectValue(v)
}

// resolveStrategy consults (and populates) the process-wide type cache
// described in 4.E / the "Accessor cache" design note (9): which
// valueKind a reflect.Type converts to, computed once per type.
func resolveStrategy(rv reflect.Value) (accessorStrategy, bool) {
	if !rv.IsValid() {
		return accessorStrategy{}, false
	}
	t := rv.Type()
	if s, ok := defaultTypeCache.get(t); ok {
		return s, true
	}

	var s accessorStrategy
	switch rv.Kind() {
	case reflect.Bool:
		s = accessorStrategy{kind: KindBool}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		s = accessorStrategy{kind: KindNumber}
	case reflect.String:
		s = accessorStrategy{kind: KindString}
	case reflect.Map:
		s = accessorStrategy{kind: KindDictionary}
	case reflect.Slice, reflect.Array:
		s = accessorStrategy{kind: KindArray}
	default:
		s = accessorStrategy{kind: KindObject}
	}
	defaultTypeCache.put(t, s)
	return s, true
}

func convertByStrategy(rv reflect.Value, s accessorStrategy) Value {
	switch s.kind {
	case KindBool:
		return BoolValue(rv.Bool())
	case KindNumber:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return FloatValue(rv.Float())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return IntValue(int64(rv.Uint()))
		default:
			return IntValue(rv.Int())
		}
	case KindString:
		return StringValue(rv.String())
	case KindDictionary:
		if rv.Type().Key().Kind() != reflect.String {
			return dictFromGenericMap(rv)
		}
		return dictFromReflectStringMap(rv)
	case KindArray:
		n := rv.Len()
		items := make([]Value, n)
		for i := 0; i < n; i++ {
			items[i] = FromGo(rv.Index(i).Interface())
		}
		return ArrayValue(items)
	default:
		return ObjectValue(rv.Interface())
	}
}

func dictFromStringMap(m map[string]interface{}) Value {
	entries := make([]dictEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, dictEntry{key: k, value: FromGo(v)})
	}
	return DictionaryValue(entries)
}

func dictFromReflectStringMap(rv reflect.Value) Value {
	entries := make([]dictEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, dictEntry{key: iter.Key().String(), value: FromGo(iter.Value().Interface())})
	}
	return DictionaryValue(entries)
}

// dictFromGenericMap handles maps keyed by a non-string type, coercing
// keys to string (4.E: "generic mappings with non-string keys ->
// Dictionary using string coercion of keys").
func dictFromGenericMap(rv reflect.Value) Value {
	entries := make([]dictEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := FromGo(iter.Key().Interface()).ToString()
		entries = append(entries, dictEntry{key: key, value: FromGo(iter.Value().Interface())})
	}
	return DictionaryValue(entries)
}
