package liquid

import (
	"strings"
	"testing"
)

func TestParseUnknownTagIsParseError(t *testing.T) {
	_, err := Parse(`{% bogus %}`)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "unknown tag") {
		t.Errorf("got %v", err)
	}
}

func TestParseMismatchedEndTagIsParseError(t *testing.T) {
	_, err := Parse(`{% if true %}hi{% endfor %}`)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "endif") {
		t.Errorf("got %v", err)
	}
}

func TestParseUnmatchedStopTagIsParseError(t *testing.T) {
	_, err := Parse(`{% endif %}`)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "no matching opening tag") {
		t.Errorf("got %v", err)
	}
}

func TestParseElsifElseChain(t *testing.T) {
	tmpl, err := Parse(`{% if a %}A{% elsif b %}B{% elsif c %}C{% else %}D{% endif %}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tmpl.body) != 1 {
		t.Fatalf("expected a single if statement, got %d nodes", len(tmpl.body))
	}
	ifs, ok := tmpl.body[0].(*ifStmt)
	if !ok {
		t.Fatalf("expected *ifStmt, got %T", tmpl.body[0])
	}
	if len(ifs.branches) != 3 {
		t.Errorf("expected 3 if/elsif branches, got %d", len(ifs.branches))
	}
	if len(ifs.elseBody) == 0 {
		t.Error("expected a non-empty else body")
	}
}

func TestParseCaseWhenOrValues(t *testing.T) {
	tmpl, err := Parse(`{% case x %}{% when "a" or "b" %}ab{% endcase %}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cs, ok := tmpl.body[0].(*caseStmt)
	if !ok {
		t.Fatalf("expected *caseStmt, got %T", tmpl.body[0])
	}
	if len(cs.whens) != 1 || len(cs.whens[0].values) != 2 {
		t.Errorf("expected one when clause with 2 values, got %+v", cs.whens)
	}
}

func TestParseCaptureRequiresVariableName(t *testing.T) {
	_, err := Parse(`{% capture %}x{% endcapture %}`)
	if err == nil {
		t.Fatal("expected a parse error for missing capture variable name")
	}
}

func TestParseUnterminatedRawBlock(t *testing.T) {
	_, err := Parse(`{% raw %}no end in sight`)
	if err == nil {
		t.Fatal("expected a parse error for an unterminated raw block")
	}
	if !strings.Contains(err.Error(), "raw") {
		t.Errorf("got %v", err)
	}
}
