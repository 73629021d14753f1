package template

import (
	"reflect"
	"testing"

	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/pkg/ordered"
)

func fields(pairs ...string) *ordered.Map {
	m := ordered.NewMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

func TestParseDeclaration(t *testing.T) {
	tests := []struct {
		decl string
		want Declaration
	}{
		{"user", Declaration{Name: "user"}},
		{"user extends base", Declaration{Name: "user", Parents: []string{"base"}}},
		{"user extends [a,b]", Declaration{Name: "user", Parents: []string{"a", "b"}}},
		{"user extends [ a , b ]", Declaration{Name: "user", Parents: []string{"a", "b"}}},
		{"user extends []", Declaration{Name: "user"}},
		{" spaced extends base", Declaration{Name: "spaced", Parents: []string{"base"}}},
		{"plain extends", Declaration{Name: "plain extends"}},
	}
	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			if got := ParseDeclaration(tt.decl); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDeclaration(%q) = %+v, want %+v", tt.decl, got, tt.want)
			}
		})
	}
}

func TestResolveNoClause(t *testing.T) {
	r := NewRegistry()
	own := fields("a", "int")
	name, merged, diags := r.Resolve("plain", own)
	if name != "plain" {
		t.Errorf("name = %q, want plain", name)
	}
	if len(diags) != 0 {
		t.Errorf("diags = %v, want none", diags)
	}
	if !reflect.DeepEqual(merged.Keys(), []string{"a"}) {
		t.Errorf("keys = %v, want [a]", merged.Keys())
	}
}

func TestResolvePrecedence(t *testing.T) {
	r := NewRegistry()
	r.Describe("A", fields("shared", "fromA", "x", "fromA", "onlyA", "1"))
	r.Describe("B", fields("shared", "fromB", "onlyB", "2"))

	name, merged, diags := r.Resolve("C extends [A,B]", fields("x", "fromC"))
	if name != "C" {
		t.Errorf("name = %q, want C", name)
	}
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}

	// later template wins on shared keys, own fields win over all
	if v, _ := merged.Get("shared"); v != "fromB" {
		t.Errorf("shared = %v, want fromB", v)
	}
	if v, _ := merged.Get("x"); v != "fromC" {
		t.Errorf("x = %v, want fromC", v)
	}

	// key order follows first declaration
	want := []string{"shared", "x", "onlyA", "onlyB"}
	if got := merged.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestDescribeExtendsTemplate(t *testing.T) {
	r := NewRegistry()
	r.Describe("base", fields("id", "int"))
	diags := r.Describe("timestamped extends base", fields("at", "string"))
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}

	tpl, ok := r.Get("timestamped")
	if !ok {
		t.Fatal("Get(timestamped) = false")
	}
	want := []string{"id", "at"}
	if got := tpl.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestNoForwardReferences(t *testing.T) {
	r := NewRegistry()
	diags := r.Describe("early extends late", fields("a", "1"))
	if !diags.HasKind(diag.Reference) {
		t.Fatalf("diags = %v, want reference diagnostic", diags)
	}

	// describing late afterwards does not retroactively change early
	r.Describe("late", fields("b", "2"))
	tpl, _ := r.Get("early")
	if tpl.Has("b") {
		t.Error("forward reference resolved retroactively")
	}
}

func TestResolveUnknownTemplateSkipped(t *testing.T) {
	r := NewRegistry()
	r.Describe("known", fields("k", "int"))
	_, merged, diags := r.Resolve("c extends [missing,known]", fields("own", "trim"))

	if !diags.HasKind(diag.Reference) {
		t.Errorf("diags = %v, want reference diagnostic", diags)
	}
	want := []string{"k", "own"}
	if got := merged.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v (merge continues past missing)", got, want)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Describe("t", fields("a", "1"))
	tpl, _ := r.Get("t")
	tpl.Set("b", "2")

	again, _ := r.Get("t")
	if again.Has("b") {
		t.Error("mutating a Get result changed the registry")
	}
}
