package liquid

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseLeadingDecimal parses the whole of s (surrounding whitespace
// trimmed) as a decimal, preserving the number of digits after the
// decimal point as the result's scale (§3: "Number preserves scale"). It
// accepts whatever decimal.NewFromString accepts, including a sign and
// exponent notation such as "1e3".
func parseLeadingDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// numberLiteral builds a Number Value from the exact digit run the lexer
// captured. decimal.NewFromString keeps the exponent implied by the
// literal's digits, so "1" and "1.0" keep their distinct scales (§3:
// "Number preserves scale") without any extra bookkeeping here.
func numberLiteral(text string) (Value, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Nil(), err
	}
	return NumberValue(d), nil
}

// formatDecimal renders a decimal.Decimal preserving its scale: a literal
// parsed as "1.0" keeps its one digit after the point, because
// StringFixed is given as many places as the negative exponent says.
func formatDecimal(d decimal.Decimal) string {
	exp := d.Exponent()
	if exp >= 0 {
		return d.String()
	}
	return d.StringFixed(-exp)
}
