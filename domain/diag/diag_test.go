package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Configuration, "configuration"},
		{Reference, "reference"},
		{Parse, "parse"},
		{RecursionLimit, "recursion_limit"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{
		Kind:      Reference,
		Container: "user",
		Field:     "email",
		Err:       ErrNotRegistered,
	}
	msg := d.Error()
	for _, want := range []string{"reference", "container=user", "field=email", "not registered"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestDiagnosticUnwrap(t *testing.T) {
	d := Diagnostic{Kind: Configuration, Err: ErrEmptyName}
	if !errors.Is(d, ErrEmptyName) {
		t.Error("errors.Is(d, ErrEmptyName) = false, want true")
	}
	if errors.Is(d, ErrNilFunc) {
		t.Error("errors.Is(d, ErrNilFunc) = true, want false")
	}
}

func TestListHasKindAndFilter(t *testing.T) {
	l := List{}
	l = l.Add(Diagnostic{Kind: Parse, Field: "a"})
	l = l.Add(Diagnostic{Kind: Reference, Field: "b"})
	l = l.Add(Diagnostic{Kind: Parse, Field: "c"})

	if !l.HasKind(Parse) {
		t.Error("HasKind(Parse) = false, want true")
	}
	if l.HasKind(RecursionLimit) {
		t.Error("HasKind(RecursionLimit) = true, want false")
	}

	parses := l.Filter(Parse)
	if len(parses) != 2 || parses[0].Field != "a" || parses[1].Field != "c" {
		t.Errorf("Filter(Parse) = %v, want fields a then c", parses)
	}
}

func TestListMergeKeepsOrder(t *testing.T) {
	a := List{{Kind: Parse, Field: "1"}}
	b := List{{Kind: Reference, Field: "2"}, {Kind: Parse, Field: "3"}}
	merged := a.Merge(b)
	if len(merged) != 3 {
		t.Fatalf("Merge len = %d, want 3", len(merged))
	}
	wantFields := []string{"1", "2", "3"}
	for i, want := range wantFields {
		if merged[i].Field != want {
			t.Errorf("merged[%d].Field = %q, want %q", i, merged[i].Field, want)
		}
	}
}
