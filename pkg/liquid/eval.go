package liquid

import (
	"context"
	"io"
	"strings"
	"sync"
)

// loadTemplate resolves and parses name via the configured Loader,
// memoizing per-render in ctx.cache so an include/render chain that visits
// the same partial twice (from two different loop iterations, say) only
// parses it once (§6). The process-wide cache is keyed by resolved path and
// source together, so two loaders that return different source for the same
// path never share a parsed template.
func (ctx *Context) loadTemplate(name string, kind TemplateKind) (*Template, error) {
	if tmpl, ok := ctx.cache[name]; ok {
		return tmpl, nil
	}
	path, err := ctx.opts.Loader.Resolve(name, kind)
	if err != nil {
		return nil, newEvalError("include", err, "resolving template %q", name)
	}
	src, err := ctx.opts.Loader.Load(path)
	if err != nil {
		return nil, newEvalError("include", err, "loading template %q", name)
	}
	tmpl, err := globalTemplateCache.getOrParse(path+"\x00"+src, src)
	if err != nil {
		return nil, newEvalError("include", err, "parsing template %q", name)
	}
	ctx.cache[name] = tmpl
	return tmpl, nil
}

// TemplateCache memoizes parsed Templates by a caller-chosen key (e.g. a
// resolved file path), so re-rendering the same named template across many
// requests parses it only once.
type TemplateCache struct {
	mu    sync.RWMutex
	byKey map[string]*Template
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{byKey: make(map[string]*Template)}
}

func (c *TemplateCache) getOrParse(key, src string) (*Template, error) {
	c.mu.RLock()
	tmpl, ok := c.byKey[key]
	c.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	parsed, err := Parse(src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.byKey[key]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.byKey[key] = parsed
	c.mu.Unlock()
	return parsed, nil
}

// globalTemplateCache backs every render's include/render resolution; it
// is process-wide so two unrelated Template.Render calls sharing a Loader
// still only parse a given partial once, the same way defaultTypeCache
// amortizes reflection across renders (cache.go).
var globalTemplateCache = NewTemplateCache()

// RenderRequest bundles the per-render inputs that sit alongside the
// immutable Options: the model root and an optional context-layer
// accessor registry that overrides Options.Accessors (4.F).
type RenderRequest struct {
	Model     interface{}
	Accessors *AccessorRegistry
}

// Render executes the template against req, returning the rendered text.
func (t *Template) Render(goCtx context.Context, opts *Options, req RenderRequest) (string, error) {
	var buf strings.Builder
	if err := t.RenderTo(goCtx, &buf, opts, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTo executes the template, streaming output to w (§5: rendering
// writes directly to an io.Writer rather than building an intermediate
// string, so large templates don't force a full buffer in memory unless
// the caller's writer does).
func (t *Template) RenderTo(goCtx context.Context, w io.Writer, opts *Options, req RenderRequest) error {
	if opts == nil {
		opts = &Options{}
	}
	ctx := newContext(goCtx, opts, req.Model, req.Accessors)
	_, err := renderStatements(t.body, ctx, w)
	return err
}
