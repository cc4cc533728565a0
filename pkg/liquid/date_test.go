package liquid

import (
	"testing"
	"time"
)

func TestDateTimeOfVariants(t *testing.T) {
	ctx := newContext(nil, &Options{
		Now: func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	}, nil, nil)

	if tm, ok := dateTimeOf(StringValue("now"), ctx); !ok || !tm.Equal(ctx.opts.now()) {
		t.Errorf("now: got %v, ok=%v", tm, ok)
	}
	if tm, ok := dateTimeOf(StringValue("2024-01-02"), ctx); !ok || tm.Year() != 2024 || tm.Month() != time.January || tm.Day() != 2 {
		t.Errorf("date string: got %v, ok=%v", tm, ok)
	}
	if tm, ok := dateTimeOf(IntValue(0), ctx); !ok || tm.Unix() != 0 {
		t.Errorf("unix seconds: got %v, ok=%v", tm, ok)
	}
	if _, ok := dateTimeOf(BoolValue(true), ctx); ok {
		t.Error("expected bool to not coerce to a date")
	}
}

func TestStrftimeToMonday(t *testing.T) {
	layout, locale := strftimeToMonday("%Y-%m-%d", "fr_FR")
	if layout != "2006-01-02" {
		t.Errorf("got layout %q", layout)
	}
	if locale != localeFor("fr_FR") {
		t.Errorf("got locale %v", locale)
	}
}

func TestLocaleForUnknownFallsBackToEnUS(t *testing.T) {
	if localeFor("xx_XX") != localeFor("en_US") {
		t.Error("expected unknown culture to fall back to en_US")
	}
}
