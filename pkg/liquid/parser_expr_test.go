package liquid

import "testing"

func evalExpr(t *testing.T, src string, model interface{}) Value {
	t.Helper()
	expr, err := parseExpression(src, 0)
	if err != nil {
		t.Fatalf("parseExpression(%q): %v", src, err)
	}
	ctx := newContext(nil, &Options{}, model, nil)
	v, err := expr.evaluate(ctx)
	if err != nil {
		t.Fatalf("evaluate(%q): %v", src, err)
	}
	return v
}

func TestParseLiteralExpressions(t *testing.T) {
	if v := evalExpr(t, `"hello"`, nil); v.ToString() != "hello" {
		t.Errorf("got %q", v.ToString())
	}
	if v := evalExpr(t, `42`, nil); v.ToNumber().IntPart() != 42 {
		t.Errorf("got %v", v)
	}
	if v := evalExpr(t, `true`, nil); !v.ToBool() {
		t.Error("expected true")
	}
	if v := evalExpr(t, `nil`, nil); !v.IsNil() {
		t.Error("expected nil")
	}
}

func TestParseMemberAndIndexChain(t *testing.T) {
	model := map[string]interface{}{
		"user": map[string]interface{}{"name": "Ada", "tags": []interface{}{"a", "b"}},
	}
	if v := evalExpr(t, `user.name`, model); v.ToString() != "Ada" {
		t.Errorf("got %q", v.ToString())
	}
	if v := evalExpr(t, `user.tags[1]`, model); v.ToString() != "b" {
		t.Errorf("got %q", v.ToString())
	}
}

func TestParseFilterChain(t *testing.T) {
	v := evalExpr(t, `name | strip | upcase`, map[string]interface{}{"name": "  bob  "})
	if v.ToString() != "BOB" {
		t.Errorf("got %q", v.ToString())
	}
}

func TestParseAndOrShortCircuit(t *testing.T) {
	if v := evalExpr(t, `false and true`, nil); v.ToBool() {
		t.Error("expected false")
	}
	if v := evalExpr(t, `true or false`, nil); !v.ToBool() {
		t.Error("expected true")
	}
}

func TestParseComparisonAndContains(t *testing.T) {
	if v := evalExpr(t, `1 < 2`, nil); !v.ToBool() {
		t.Error("expected true")
	}
	if v := evalExpr(t, `"hello" contains "ell"`, nil); !v.ToBool() {
		t.Error("expected true")
	}
}

func TestParseUnaryMinus(t *testing.T) {
	v := evalExpr(t, `-5`, nil)
	if v.ToNumber().IntPart() != -5 {
		t.Errorf("got %v", v)
	}
}

func TestParseRange(t *testing.T) {
	v := evalExpr(t, `(1..3)`, nil)
	items := v.Iterate()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
}

func TestParseEmptyLiteralMatchesZeroLengthContainers(t *testing.T) {
	model := map[string]interface{}{
		"list": []interface{}{},
		"text": "",
		"full": []interface{}{1},
	}
	if v := evalExpr(t, `list == empty`, model); !v.ToBool() {
		t.Error("expected empty array to equal `empty`")
	}
	if v := evalExpr(t, `text == blank`, model); !v.ToBool() {
		t.Error("expected empty string to equal `blank`")
	}
	if v := evalExpr(t, `full == empty`, model); v.ToBool() {
		t.Error("expected non-empty array to not equal `empty`")
	}
}

func TestParseFilterWithNamedArgs(t *testing.T) {
	v := evalExpr(t, `missing | default: "fallback", allow_false: true`, map[string]interface{}{})
	if v.ToString() != "fallback" {
		t.Errorf("got %q", v.ToString())
	}
}
