package liquid

import "testing"

type person struct {
	Name string
	Age  int
}

func (p person) Greeting() string { return "hi " + p.Name }

func TestResolveMemberViaRegisteredAccessor(t *testing.T) {
	registry := NewAccessorRegistry()
	registry.Register(person{}, "name", func(obj interface{}, name string) (Value, bool) {
		return StringValue(obj.(person).Name), true
	})
	ctx := newContext(nil, &Options{Accessors: registry}, nil, nil)
	v, err := ctx.resolveMember(person{Name: "Ada"}, "name")
	if err != nil {
		t.Fatal(err)
	}
	if v.ToString() != "Ada" {
		t.Errorf("got %q", v.ToString())
	}
}

func TestResolveMemberSafeModeIgnoresUnregisteredFields(t *testing.T) {
	ctx := newContext(nil, &Options{}, nil, nil)
	v, err := ctx.resolveMember(person{Name: "Ada"}, "Name")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNil() {
		t.Errorf("expected Nil under MemberAccessSafe for an unregistered field, got %v", v)
	}
}

func TestResolveMemberUnsafeModeReflectsFieldsAndMethods(t *testing.T) {
	ctx := newContext(nil, &Options{MemberAccessStrategy: MemberAccessUnsafe}, nil, nil)
	v, err := ctx.resolveMember(person{Name: "Ada", Age: 30}, "Name")
	if err != nil {
		t.Fatal(err)
	}
	if v.ToString() != "Ada" {
		t.Errorf("field: got %q", v.ToString())
	}
	m, err := ctx.resolveMember(person{Name: "Ada"}, "Greeting")
	if err != nil {
		t.Fatal(err)
	}
	if m.ToString() != "hi Ada" {
		t.Errorf("method: got %q", m.ToString())
	}
}
