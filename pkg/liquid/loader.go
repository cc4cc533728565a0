package liquid

import "fmt"

// TemplateKind distinguishes a full view from a partial for resolution
// purposes (§6).
type TemplateKind int

const (
	KindView TemplateKind = iota
	KindPartial
)

// TemplateLoader is the external collaborator the evaluator delegates
// include/render/layout resolution to (§1, §6). How it is satisfied —
// in-memory, file system, packaged resources — is outside the core.
type TemplateLoader interface {
	// Resolve turns a logical template name into a loader-specific path,
	// e.g. by trying a list of location format strings such as
	// "/Views/{0}.liquid" and returning the first hit.
	Resolve(name string, kind TemplateKind) (string, error)
	// Load returns the raw template source at path.
	Load(path string) (string, error)
}

// InMemoryLoader is the trivial TemplateLoader used by tests and by
// embedding applications that keep templates in a map rather than on a
// file system; it satisfies the interface without pulling in any
// file-system or HTTP dependency, keeping those explicitly out of scope
// (§1).
type InMemoryLoader struct {
	Templates map[string]string
}

func NewInMemoryLoader(templates map[string]string) *InMemoryLoader {
	return &InMemoryLoader{Templates: templates}
}

func (l *InMemoryLoader) Resolve(name string, _ TemplateKind) (string, error) {
	if _, ok := l.Templates[name]; !ok {
		return "", fmt.Errorf("template %q not found", name)
	}
	return name, nil
}

func (l *InMemoryLoader) Load(path string) (string, error) {
	src, ok := l.Templates[path]
	if !ok {
		return "", fmt.Errorf("template %q not found", path)
	}
	return src, nil
}
