package liquid

import (
	"net/url"
	"sort"
	"strings"

	"github.com/goodsign/monday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// init populates builtinFilters with the §6 filter list. Grounded in the
// teacher's filters.go (AlexanderGrooff/ansible-jinja-go), which takes the
// same (input, args) -> (output, error) shape for its Jinja filter table;
// the function bodies below implement Liquid semantics rather than
// Jinja's.
func init() {
	registerBuiltin("abs", filterAbs)
	registerBuiltin("append", filterAppend)
	registerBuiltin("capitalize", filterCapitalize)
	registerBuiltin("ceil", filterCeil)
	registerBuiltin("compact", filterCompact)
	registerBuiltin("date", filterDate)
	registerBuiltin("default", filterDefault)
	registerBuiltin("divided_by", filterDividedBy)
	registerBuiltin("downcase", filterDowncase)
	registerBuiltin("escape", filterEscape)
	registerBuiltin("escape_once", filterEscapeOnce)
	registerBuiltin("first", filterFirst)
	registerBuiltin("floor", filterFloor)
	registerBuiltin("join", filterJoin)
	registerBuiltin("last", filterLast)
	registerBuiltin("lstrip", filterLstrip)
	registerBuiltin("map", filterMap)
	registerBuiltin("minus", filterMinus)
	registerBuiltin("modulo", filterModulo)
	registerBuiltin("newline_to_br", filterNewlineToBr)
	registerBuiltin("plus", filterPlus)
	registerBuiltin("prepend", filterPrepend)
	registerBuiltin("remove", filterRemove)
	registerBuiltin("remove_first", filterRemoveFirst)
	registerBuiltin("replace", filterReplace)
	registerBuiltin("replace_first", filterReplaceFirst)
	registerBuiltin("reverse", filterReverse)
	registerBuiltin("round", filterRound)
	registerBuiltin("rstrip", filterRstrip)
	registerBuiltin("size", filterSize)
	registerBuiltin("slice", filterSlice)
	registerBuiltin("sort", filterSort)
	registerBuiltin("sort_natural", filterSortNatural)
	registerBuiltin("split", filterSplit)
	registerBuiltin("strip", filterStrip)
	registerBuiltin("strip_html", filterStripHTML)
	registerBuiltin("strip_newlines", filterStripNewlines)
	registerBuiltin("times", filterTimes)
	registerBuiltin("truncate", filterTruncate)
	registerBuiltin("truncatewords", filterTruncatewords)
	registerBuiltin("uniq", filterUniq)
	registerBuiltin("upcase", filterUpcase)
	registerBuiltin("url_decode", filterURLDecode)
	registerBuiltin("url_encode", filterURLEncode)
	registerBuiltin("where", filterWhere)
}

func filterAbs(in Value, args *Args, ctx *Context) (Value, error) {
	return NumberValue(in.ToNumber().Abs()), nil
}

func filterAppend(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(in.ToString() + args.At(0).ToString()), nil
}

// capitalize uses golang.org/x/text/cases for Unicode-aware title casing
// (SPEC_FULL §10); upcase/downcase use strings.ToUpper/ToLower.
func filterCapitalize(in Value, args *Args, ctx *Context) (Value, error) {
	s := in.ToString()
	if s == "" {
		return StringValue(s), nil
	}
	titler := cases.Title(language.English, cases.NoLower)
	r := []rune(s)
	first := titler.String(string(r[0]))
	return StringValue(first + strings.ToLower(string(r[1:]))), nil
}

func filterCeil(in Value, args *Args, ctx *Context) (Value, error) {
	return NumberValue(in.ToNumber().Ceil()), nil
}

func filterCompact(in Value, args *Args, ctx *Context) (Value, error) {
	items := in.Iterate()
	out := make([]Value, 0, len(items))
	for _, v := range items {
		if !v.IsNil() {
			out = append(out, v)
		}
	}
	return ArrayValue(out), nil
}

// filterDate formats a DateTime (or a string/number coerced into one) per
// a strftime-style layout, using goodsign/monday for locale-aware month
// and weekday names under ctx's culture (SPEC_FULL §10).
func filterDate(in Value, args *Args, ctx *Context) (Value, error) {
	t, ok := dateTimeOf(in, ctx)
	if !ok {
		return StringValue(in.ToString()), nil
	}
	layout := args.At(0).ToString()
	goLayout, locale := strftimeToMonday(layout, ctx.opts.Culture)
	return StringValue(monday.Format(t, goLayout, locale)), nil
}

func filterDefault(in Value, args *Args, ctx *Context) (Value, error) {
	allowFalse := args.NamedOr("allow_false", BoolValue(false)).ToBool()
	if in.IsNil() || (!allowFalse && in.kind == KindBool && !in.b) || in.isZeroLength() {
		return args.At(0), nil
	}
	return in, nil
}

func filterDividedBy(in Value, args *Args, ctx *Context) (Value, error) {
	divisor := args.At(0).ToNumber()
	if divisor.IsZero() {
		return Nil(), newEvalError("divided_by", nil, "division by zero")
	}
	if isIntegerArg(args.At(0)) && isIntegerArg(in) {
		q := in.ToNumber().Div(divisor).Truncate(0)
		return NumberValue(q), nil
	}
	return NumberValue(in.ToNumber().DivRound(divisor, 8)), nil
}

func isIntegerArg(v Value) bool {
	return v.kind == KindNumber && v.num.Exponent() >= 0
}

func filterDowncase(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(strings.ToLower(in.ToString())), nil
}

func filterEscape(in Value, args *Args, ctx *Context) (Value, error) {
	var b strings.Builder
	if err := (HTMLEncoder{}).Encode(&b, in.ToString()); err != nil {
		return Nil(), err
	}
	return SafeStringValue(b.String()), nil
}

func filterEscapeOnce(in Value, args *Args, ctx *Context) (Value, error) {
	return SafeStringValue(escapeOnce(in.ToString())), nil
}

func filterFirst(in Value, args *Args, ctx *Context) (Value, error) {
	items := in.Iterate()
	if len(items) == 0 {
		return Nil(), nil
	}
	return items[0], nil
}

func filterFloor(in Value, args *Args, ctx *Context) (Value, error) {
	return NumberValue(in.ToNumber().Floor()), nil
}

func filterJoin(in Value, args *Args, ctx *Context) (Value, error) {
	sep := ", "
	if args.Len() > 0 {
		sep = args.At(0).ToString()
	}
	items := in.Iterate()
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = v.ToString()
	}
	return StringValue(strings.Join(parts, sep)), nil
}

func filterLast(in Value, args *Args, ctx *Context) (Value, error) {
	items := in.Iterate()
	if len(items) == 0 {
		return Nil(), nil
	}
	return items[len(items)-1], nil
}

func filterLstrip(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(strings.TrimLeft(in.ToString(), " \t\n\r")), nil
}

// filterMap projects a property off every element of an array, per
// Liquid's `map: "prop"`.
func filterMap(in Value, args *Args, ctx *Context) (Value, error) {
	prop := args.At(0).ToString()
	items := in.Iterate()
	out := make([]Value, len(items))
	for i, v := range items {
		mv, err := v.GetMember(ctx, prop)
		if err != nil {
			return Nil(), err
		}
		out[i] = mv
	}
	return ArrayValue(out), nil
}

func filterMinus(in Value, args *Args, ctx *Context) (Value, error) {
	return NumberValue(in.ToNumber().Sub(args.At(0).ToNumber())), nil
}

func filterModulo(in Value, args *Args, ctx *Context) (Value, error) {
	divisor := args.At(0).ToNumber()
	if divisor.IsZero() {
		return Nil(), newEvalError("modulo", nil, "division by zero")
	}
	return NumberValue(in.ToNumber().Mod(divisor)), nil
}

func filterNewlineToBr(in Value, args *Args, ctx *Context) (Value, error) {
	replaced := strings.ReplaceAll(in.ToString(), "\n", "<br />\n")
	return SafeStringValue(replaced), nil
}

func filterPlus(in Value, args *Args, ctx *Context) (Value, error) {
	return NumberValue(in.ToNumber().Add(args.At(0).ToNumber())), nil
}

func filterPrepend(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(args.At(0).ToString() + in.ToString()), nil
}

func filterRemove(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(strings.ReplaceAll(in.ToString(), args.At(0).ToString(), "")), nil
}

func filterRemoveFirst(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(strings.Replace(in.ToString(), args.At(0).ToString(), "", 1)), nil
}

func filterReplace(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(strings.ReplaceAll(in.ToString(), args.At(0).ToString(), args.At(1).ToString())), nil
}

func filterReplaceFirst(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(strings.Replace(in.ToString(), args.At(0).ToString(), args.At(1).ToString(), 1)), nil
}

func filterReverse(in Value, args *Args, ctx *Context) (Value, error) {
	items := in.Iterate()
	out := make([]Value, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return ArrayValue(out), nil
}

func filterRound(in Value, args *Args, ctx *Context) (Value, error) {
	if args.Len() == 0 {
		return NumberValue(in.ToNumber().Round(0)), nil
	}
	places := int32(args.At(0).ToNumber().IntPart())
	return NumberValue(in.ToNumber().Round(places)), nil
}

func filterRstrip(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(strings.TrimRight(in.ToString(), " \t\n\r")), nil
}

func filterSize(in Value, args *Args, ctx *Context) (Value, error) {
	switch in.kind {
	case KindString:
		return IntValue(int64(len(in.str))), nil
	case KindArray:
		return IntValue(int64(len(in.arr))), nil
	case KindDictionary:
		return IntValue(int64(in.dict.len())), nil
	case KindRange:
		return IntValue(in.rng.len()), nil
	default:
		return IntValue(0), nil
	}
}

func filterSlice(in Value, args *Args, ctx *Context) (Value, error) {
	items := in.Iterate()
	n := len(items)
	var r []rune
	if in.kind == KindString {
		r = []rune(in.str)
		n = len(r)
	}
	start := int(args.At(0).ToNumber().IntPart())
	if start < 0 {
		start += n
	}
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	length := 1
	if args.Len() > 1 {
		length = int(args.At(1).ToNumber().IntPart())
	}
	end := start + length
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	if in.kind == KindString {
		return StringValue(string(r[start:end])), nil
	}
	return ArrayValue(items[start:end]), nil
}

func filterSort(in Value, args *Args, ctx *Context) (Value, error) {
	items := in.Iterate()
	if args.Len() > 0 {
		return sortByProperty(ctx, items, args.At(0).ToString(), false)
	}
	return ArrayValue(sortValues(items, false)), nil
}

func filterSortNatural(in Value, args *Args, ctx *Context) (Value, error) {
	items := in.Iterate()
	if args.Len() > 0 {
		return sortByProperty(ctx, items, args.At(0).ToString(), true)
	}
	return ArrayValue(sortValues(items, true)), nil
}

func sortByProperty(ctx *Context, items []Value, prop string, natural bool) (Value, error) {
	keyed := make([]Value, len(items))
	for i, v := range items {
		k, err := v.GetMember(ctx, prop)
		if err != nil {
			return Nil(), err
		}
		keyed[i] = k
	}
	out := make([]Value, len(items))
	copy(out, items)
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		av, bv := keyed[idx[a]], keyed[idx[b]]
		if av.kind == KindNumber && bv.kind == KindNumber {
			return av.num.LessThan(bv.num)
		}
		as, bs := av.ToString(), bv.ToString()
		if natural {
			as, bs = strings.ToLower(as), strings.ToLower(bs)
		}
		return as < bs
	})
	for i, j := range idx {
		out[i] = items[j]
	}
	return ArrayValue(out), nil
}

func filterSplit(in Value, args *Args, ctx *Context) (Value, error) {
	parts := strings.Split(in.ToString(), args.At(0).ToString())
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = StringValue(p)
	}
	return ArrayValue(out), nil
}

func filterStrip(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(strings.Trim(in.ToString(), " \t\n\r")), nil
}

func filterStripHTML(in Value, args *Args, ctx *Context) (Value, error) {
	return SafeStringValue(stripHTMLTags(in.ToString())), nil
}

func stripHTMLTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func filterStripNewlines(in Value, args *Args, ctx *Context) (Value, error) {
	s := strings.ReplaceAll(in.ToString(), "\r\n", "")
	s = strings.ReplaceAll(s, "\n", "")
	return StringValue(s), nil
}

func filterTimes(in Value, args *Args, ctx *Context) (Value, error) {
	return NumberValue(in.ToNumber().Mul(args.At(0).ToNumber())), nil
}

func filterTruncate(in Value, args *Args, ctx *Context) (Value, error) {
	s := in.ToString()
	length := 50
	if args.Len() > 0 {
		length = int(args.At(0).ToNumber().IntPart())
	}
	suffix := "..."
	if args.Len() > 1 {
		suffix = args.At(1).ToString()
	}
	r := []rune(s)
	if len(r) <= length {
		return StringValue(s), nil
	}
	cut := length - len([]rune(suffix))
	if cut < 0 {
		cut = 0
	}
	return StringValue(string(r[:cut]) + suffix), nil
}

func filterTruncatewords(in Value, args *Args, ctx *Context) (Value, error) {
	words := strings.Fields(in.ToString())
	n := 15
	if args.Len() > 0 {
		n = int(args.At(0).ToNumber().IntPart())
	}
	suffix := "..."
	if args.Len() > 1 {
		suffix = args.At(1).ToString()
	}
	if len(words) <= n {
		return StringValue(in.ToString()), nil
	}
	return StringValue(strings.Join(words[:n], " ") + suffix), nil
}

func filterUniq(in Value, args *Args, ctx *Context) (Value, error) {
	items := in.Iterate()
	var out []Value
	for _, v := range items {
		dup := false
		for _, existing := range out {
			if existing.Equals(v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return ArrayValue(out), nil
}

func filterUpcase(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(strings.ToUpper(in.ToString())), nil
}

func filterURLDecode(in Value, args *Args, ctx *Context) (Value, error) {
	s, err := url.QueryUnescape(in.ToString())
	if err != nil {
		return Nil(), newEvalError("url_decode", err, "invalid percent-encoding")
	}
	return StringValue(s), nil
}

func filterURLEncode(in Value, args *Args, ctx *Context) (Value, error) {
	return StringValue(url.QueryEscape(in.ToString())), nil
}

func filterWhere(in Value, args *Args, ctx *Context) (Value, error) {
	prop := args.At(0).ToString()
	items := in.Iterate()
	out := make([]Value, 0, len(items))
	for _, v := range items {
		pv, err := v.GetMember(ctx, prop)
		if err != nil {
			return Nil(), err
		}
		if args.Len() > 1 {
			if pv.Equals(args.At(1)) {
				out = append(out, v)
			}
		} else if pv.ToBool() {
			out = append(out, v)
		}
	}
	return ArrayValue(out), nil
}
