package liquid

import "testing"

func TestScanTemplateFragments(t *testing.T) {
	src := "Hi {{ name }}, you have {% if n > 0 %}mail{% endif %}."
	frags, err := scanTemplate(src)
	if err != nil {
		t.Fatal(err)
	}
	var kinds []fragmentKind
	for _, f := range frags {
		kinds = append(kinds, f.kind)
	}
	want := []fragmentKind{fragText, fragOutput, fragText, fragTag, fragText, fragTag, fragText}
	if len(kinds) != len(want) {
		t.Fatalf("got %d fragments, want %d: %v", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("fragment %d kind = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestScanTemplateTrimMarkers(t *testing.T) {
	src := "a  {{- name -}}  b"
	frags, err := scanTemplate(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}
	if !frags[1].trimLeft || !frags[1].trimRight {
		t.Errorf("expected output fragment to carry both trim markers: %+v", frags[1])
	}
}

func TestScanTemplateQuotedDelimiterIgnored(t *testing.T) {
	src := `{{ "a}}b" }}`
	frags, err := scanTemplate(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(frags) != 1 || frags[0].kind != fragOutput {
		t.Fatalf("expected a single output fragment, got %+v", frags)
	}
	if frags[0].content != ` "a}}b" ` {
		t.Errorf("content = %q", frags[0].content)
	}
}

func TestExprLexerTokens(t *testing.T) {
	l := newExprLexer(`foo.bar[0] | default: "x", 1.5`, 0)
	var kinds []tokenKind
	for {
		tok, err := l.next()
		if err != nil {
			t.Fatal(err)
		}
		kinds = append(kinds, tok.kind)
		if tok.kind == tokEOF {
			break
		}
	}
	want := []tokenKind{
		tokIdent, tokDot, tokIdent, tokLBracket, tokNumber, tokRBracket,
		tokPipe, tokIdent, tokColon, tokString, tokComma, tokNumber, tokEOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(kinds), kinds, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestUnterminatedDelimiterIsParseError(t *testing.T) {
	_, err := scanTemplate("hello {{ world")
	if err == nil {
		t.Fatal("expected error for unterminated delimiter")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Errorf("expected *ParseError, got %T", err)
	}
}
