package liquid

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// languageFor maps Options.Culture (§6, e.g. "en_US") onto a BCP 47
// language.Tag for golang.org/x/text/message's locale-aware printers,
// mirroring date.go's localeFor for goodsign/monday. Unknown or empty
// cultures fall back to American English.
func languageFor(culture string) language.Tag {
	if culture == "" {
		return language.AmericanEnglish
	}
	tag, err := language.Parse(strings.ReplaceAll(culture, "_", "-"))
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// filterNumberFormat is `{{ n | number_format }}` / `{{ n | number_format:
// 2 }}` (SPEC_FULL §10): locale-aware grouped decimal formatting via
// golang.org/x/text/number, honoring Options.Culture the way `date` honors
// it via goodsign/monday.
func filterNumberFormat(in Value, args *Args, ctx *Context) (Value, error) {
	f, _ := in.ToNumber().Float64()
	var opts []number.Option
	if args.Len() > 0 {
		opts = append(opts, number.Scale(int(args.At(0).ToNumber().IntPart())))
	}
	p := message.NewPrinter(languageFor(ctx.opts.Culture))
	return StringValue(p.Sprint(number.Decimal(f, opts...))), nil
}

// filterMoney is `{{ amount | money: "USD" }}` (SPEC_FULL §10): formats a
// numeric value as a currency amount with its symbol via
// golang.org/x/text/currency, honoring Options.Culture for symbol choice
// and digit grouping.
func filterMoney(in Value, args *Args, ctx *Context) (Value, error) {
	code := "USD"
	if args.Len() > 0 {
		code = args.At(0).ToString()
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Nil(), newEvalError("money", err, "unknown currency code %q", code)
	}
	f, _ := in.ToNumber().Float64()
	amt := unit.Amount(f)
	p := message.NewPrinter(languageFor(ctx.opts.Culture))
	return StringValue(p.Sprint(currency.Symbol(amt))), nil
}

func init() {
	registerBuiltin("number_format", filterNumberFormat)
	registerBuiltin("money", filterMoney)
}
