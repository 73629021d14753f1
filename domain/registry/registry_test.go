package registry

import (
	"errors"
	"reflect"
	"testing"

	"github.com/artpar/fieldmap/domain/diag"
)

func TestProcessorsRegister(t *testing.T) {
	r := NewProcessors()
	if err := r.Register("upper", func(v any) any { return v }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !r.Has("upper") {
		t.Error("Has(upper) = false, want true")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}
}

func TestProcessorsRegisterInvalid(t *testing.T) {
	r := NewProcessors()

	err := r.Register("", func(v any) any { return v })
	if !errors.Is(err, diag.ErrEmptyName) {
		t.Errorf("Register(\"\") err = %v, want ErrEmptyName", err)
	}

	err = r.Register("x", nil)
	if !errors.Is(err, diag.ErrNilFunc) {
		t.Errorf("Register(x, nil) err = %v, want ErrNilFunc", err)
	}
	if r.Has("x") {
		t.Error("invalid registration still stored")
	}
}

func TestProcessorsRegisterAll(t *testing.T) {
	r := NewProcessors()
	_ = r.Register("keep", func(v any) any { return "old" })

	err := r.RegisterAll(map[string]Processor{
		"keep": func(v any) any { return "new" },
		"add":  func(v any) any { return v },
	})
	if err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	fn, _ := r.Get("keep")
	if got := fn(nil); got != "new" {
		t.Errorf("merge did not overwrite: got %v, want new", got)
	}
	want := []string{"add", "keep"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestProcessorsRegisterAllAtomic(t *testing.T) {
	r := NewProcessors()
	err := r.RegisterAll(map[string]Processor{
		"good": func(v any) any { return v },
		"bad":  nil,
	})
	if !errors.Is(err, diag.ErrNilFunc) {
		t.Fatalf("RegisterAll err = %v, want ErrNilFunc", err)
	}
	if r.Has("good") {
		t.Error("failed batch partially applied")
	}
}

func TestModifiersRegister(t *testing.T) {
	r := NewModifiers()
	err := r.Register("default", func(v, params any) Modification {
		if v == nil {
			return Modification{Value: params, Replace: true}
		}
		return Modification{}
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	fn, ok := r.Get("default")
	if !ok {
		t.Fatal("Get(default) ok = false")
	}
	mod := fn(nil, "fallback")
	if !mod.Replace || mod.Value != "fallback" {
		t.Errorf("modifier = %+v, want replace with fallback", mod)
	}
}

func TestModifiersRegisterInvalid(t *testing.T) {
	r := NewModifiers()
	if err := r.Register("", nil); !errors.Is(err, diag.ErrEmptyName) {
		t.Errorf("Register err = %v, want ErrEmptyName", err)
	}
	if err := r.Register("m", nil); !errors.Is(err, diag.ErrNilFunc) {
		t.Errorf("Register err = %v, want ErrNilFunc", err)
	}
}

func TestRegisterErrorsAreConfiguration(t *testing.T) {
	r := NewProcessors()
	err := r.Register("", nil)
	var d diag.Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("error %v is not a Diagnostic", err)
	}
	if d.Kind != diag.Configuration {
		t.Errorf("Kind = %v, want Configuration", d.Kind)
	}
}
