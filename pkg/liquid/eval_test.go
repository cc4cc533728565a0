package liquid

import (
	"context"
	"testing"
)

func renderString(t *testing.T, src string, model interface{}, opts *Options) string {
	t.Helper()
	tmpl, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	if opts == nil {
		opts = &Options{}
	}
	out, err := tmpl.Render(context.Background(), opts, RenderRequest{Model: model})
	if err != nil {
		t.Fatalf("Render(%q): %v", src, err)
	}
	return out
}

func TestRenderOutputAndEscaping(t *testing.T) {
	out := renderString(t, `{{ html }}`, map[string]interface{}{"html": "<b>hi</b>"}, nil)
	want := "&lt;b&gt;hi&lt;/b&gt;"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderAssignAndEcho(t *testing.T) {
	out := renderString(t, `{% assign x = 1 %}{% echo x | plus: 1 %}`, nil, nil)
	if out != "2" {
		t.Errorf("got %q", out)
	}
}

func TestRenderIfElsif(t *testing.T) {
	src := `{% for n in (1..5) %}{% if n == 3 %}three{% elsif n == 5 %}five{% else %}{{ n }}{% endif %} {% endfor %}`
	out := renderString(t, src, nil, nil)
	want := "1 2 three 4 five "
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderUnless(t *testing.T) {
	out := renderString(t, `{% unless done %}pending{% endunless %}`, map[string]interface{}{"done": false}, nil)
	if out != "pending" {
		t.Errorf("got %q", out)
	}
}

func TestRenderForLoopFrame(t *testing.T) {
	src := `{% for x in items %}{{ forloop.index }}/{{ forloop.length }}{% unless forloop.last %},{% endunless %}{% endfor %}`
	out := renderString(t, src, map[string]interface{}{"items": []interface{}{"a", "b", "c"}}, nil)
	want := "1/3,2/3,3/3"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderForBreakContinue(t *testing.T) {
	src := `{% for n in (1..5) %}{% if n == 2 %}{% continue %}{% endif %}{% if n == 4 %}{% break %}{% endif %}{{ n }}{% endfor %}`
	out := renderString(t, src, nil, nil)
	if out != "13" {
		t.Errorf("got %q, want %q", out, "13")
	}
}

func TestRenderForLimitOffsetReversed(t *testing.T) {
	model := map[string]interface{}{"items": []interface{}{1, 2, 3, 4, 5}}
	out := renderString(t, `{% for x in items limit: 2 offset: 1 %}{{ x }}{% endfor %}`, model, nil)
	if out != "23" {
		t.Errorf("got %q", out)
	}
	out2 := renderString(t, `{% for x in items reversed %}{{ x }}{% endfor %}`, model, nil)
	if out2 != "54321" {
		t.Errorf("got %q", out2)
	}
}

func TestRenderCase(t *testing.T) {
	src := `{% case color %}{% when "red" %}stop{% when "green", "blue" %}go{% else %}unknown{% endcase %}`
	if got := renderString(t, src, map[string]interface{}{"color": "red"}, nil); got != "stop" {
		t.Errorf("got %q", got)
	}
	if got := renderString(t, src, map[string]interface{}{"color": "blue"}, nil); got != "go" {
		t.Errorf("got %q", got)
	}
	if got := renderString(t, src, map[string]interface{}{"color": "pink"}, nil); got != "unknown" {
		t.Errorf("got %q", got)
	}
}

func TestRenderCapture(t *testing.T) {
	src := `{% capture greeting %}Hello, {{ name }}!{% endcapture %}{{ greeting }}`
	out := renderString(t, src, map[string]interface{}{"name": "Ada"}, nil)
	if out != "Hello, Ada!" {
		t.Errorf("got %q", out)
	}
}

func TestRenderCycle(t *testing.T) {
	src := `{% for n in (1..4) %}{% cycle "odd", "even" %}{% endfor %}`
	out := renderString(t, src, nil, nil)
	if out != "oddevenoddeven" {
		t.Errorf("got %q", out)
	}
}

func TestRenderIncrementDecrement(t *testing.T) {
	out := renderString(t, `{% increment c %}{% increment c %}{% decrement c %}`, nil, nil)
	if out != "011" {
		t.Errorf("got %q", out)
	}
}

func TestRenderWhitespaceTrim(t *testing.T) {
	out := renderString(t, "a \n  {{- name -}}  \n b", map[string]interface{}{"name": "X"}, nil)
	if out != "aXb" {
		t.Errorf("got %q", out)
	}
}

func TestRenderRawBlockLiteral(t *testing.T) {
	out := renderString(t, `{% raw %}{{ not a var }}{% endraw %}`, nil, nil)
	if out != "{{ not a var }}" {
		t.Errorf("got %q", out)
	}
}

func TestRenderCommentDiscardsBody(t *testing.T) {
	out := renderString(t, `before{% comment %}{{ not.a.real.expr | }}{% endcomment %}after`, nil, nil)
	if out != "beforeafter" {
		t.Errorf("got %q", out)
	}
}

func TestRenderIncludeSharesScope(t *testing.T) {
	loader := NewInMemoryLoader(map[string]string{
		"partial": `{% assign shared = "from partial" %}`,
	})
	src := `{% include "partial" %}{{ shared }}`
	out := renderString(t, src, nil, &Options{Loader: loader})
	if out != "from partial" {
		t.Errorf("got %q", out)
	}
}

func TestRenderIncludeWith(t *testing.T) {
	loader := NewInMemoryLoader(map[string]string{
		"greeting": `Hi {{ greeting.name }}`,
	})
	src := `{% include "greeting" with person %}`
	out := renderString(t, src, map[string]interface{}{"person": map[string]interface{}{"name": "Lin"}}, &Options{Loader: loader})
	if out != "Hi Lin" {
		t.Errorf("got %q", out)
	}
}

func TestRenderRenderIsolatesScope(t *testing.T) {
	loader := NewInMemoryLoader(map[string]string{
		"partial": `{% assign shared = "leaked" %}`,
	})
	src := `{% render "partial" %}{{ shared }}`
	out := renderString(t, src, nil, &Options{Loader: loader})
	if out != "" {
		t.Errorf("expected render to isolate scope, got %q", out)
	}
}

func TestRenderRenderCannotReadCallerLocals(t *testing.T) {
	loader := NewInMemoryLoader(map[string]string{
		"partial": `{{ shared }}`,
	})
	src := `{% assign shared = "caller value" %}{% render "partial" %}`
	out := renderString(t, src, nil, &Options{Loader: loader})
	if out != "" {
		t.Errorf("expected render to not see the caller's assign'd locals, got %q", out)
	}
}

func TestRenderRenderSeesModelAndExplicitParams(t *testing.T) {
	loader := NewInMemoryLoader(map[string]string{
		"partial": `{{ site }}-{{ greeting }}`,
	})
	src := `{% render "partial", greeting: "hi" %}`
	out := renderString(t, src, map[string]interface{}{"site": "shop"}, &Options{Loader: loader})
	if out != "shop-hi" {
		t.Errorf("got %q", out)
	}
}

func TestRenderTablerow(t *testing.T) {
	src := `{% tablerow x in (1..4) cols: 2 %}{{ x }}{% endtablerow %}`
	out := renderString(t, src, nil, nil)
	want := `<tr class="row1"><td class="col1">1</td><td class="col2">2</td></tr><tr class="row2"><td class="col1">3</td><td class="col2">4</td></tr>`
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderFiltersPipeline(t *testing.T) {
	model := map[string]interface{}{"items": []interface{}{3, 1, 2}}
	out := renderString(t, `{{ items | sort | join: "," }}`, model, nil)
	if out != "1,2,3" {
		t.Errorf("got %q", out)
	}
}

func TestRenderMaxStepsGuard(t *testing.T) {
	src := `{% for n in (1..100) %}x{% endfor %}`
	_, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	tmpl, _ := Parse(src)
	_, err = tmpl.Render(context.Background(), &Options{MaxSteps: 5}, RenderRequest{})
	if err == nil {
		t.Fatal("expected step-budget error")
	}
}
