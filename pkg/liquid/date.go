package liquid

import (
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// dateTimeOf coerces a Value into a time.Time for the `date` filter,
// accepting a DateTime value directly, "now"/"today" strings (§6 "Now
// overrides the clock"), and Unix-seconds-as-string, matching common
// Liquid usage (`{{ "now" | date: "%Y" }}`).
func dateTimeOf(v Value, ctx *Context) (time.Time, bool) {
	switch v.kind {
	case KindDateTime:
		return v.t, true
	case KindString:
		switch v.str {
		case "now", "today":
			return ctx.opts.now(), true
		}
		if secs, err := strconv.ParseInt(v.str, 10, 64); err == nil {
			return time.Unix(secs, 0).In(ctx.opts.timezone()), true
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.ParseInLocation(layout, v.str, ctx.opts.timezone()); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case KindNumber:
		return time.Unix(v.num.IntPart(), 0).In(ctx.opts.timezone()), true
	default:
		return time.Time{}, false
	}
}

// cultureLocales maps the Options.Culture tag (§6, e.g. "en_US", "fr_FR")
// onto goodsign/monday's locale constants (SPEC_FULL §10). Unknown or
// empty cultures fall back to EnUS.
var cultureLocales = map[string]monday.Locale{
	"en_US": monday.LocaleEnUS,
	"en_GB": monday.LocaleEnGB,
	"fr_FR": monday.LocaleFrFR,
	"de_DE": monday.LocaleDeDE,
	"es_ES": monday.LocaleEsES,
	"nl_NL": monday.LocaleNlNL,
	"pt_BR": monday.LocalePtBR,
	"ru_RU": monday.LocaleRuRU,
	"zh_CN": monday.LocaleZhCN,
	"ja_JP": monday.LocaleJaJP,
}

func localeFor(culture string) monday.Locale {
	if l, ok := cultureLocales[culture]; ok {
		return l
	}
	return monday.LocaleEnUS
}

// strftimeToMonday rewrites the subset of strftime directives Liquid's
// `date` filter supports (§6) into a Go reference-time layout for
// monday.Format, which localizes the month and weekday names in that
// layout. Unsupported directives are copied through unchanged.
func strftimeToMonday(layout, culture string) (string, monday.Locale) {
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		c := layout[i]
		if c != '%' || i+1 >= len(layout) {
			b.WriteByte(c)
			continue
		}
		i++
		switch layout[i] {
		case 'Y':
			b.WriteString("2006")
		case 'y':
			b.WriteString("06")
		case 'm':
			b.WriteString("01")
		case 'd':
			b.WriteString("02")
		case 'H':
			b.WriteString("15")
		case 'M':
			b.WriteString("04")
		case 'S':
			b.WriteString("05")
		case 'B':
			b.WriteString("January")
		case 'b':
			b.WriteString("Jan")
		case 'A':
			b.WriteString("Monday")
		case 'a':
			b.WriteString("Mon")
		case 'p':
			b.WriteString("PM")
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(layout[i])
		}
	}
	return b.String(), localeFor(culture)
}
