package datapath

import "testing"

func sample() map[string]any {
	return map[string]any{
		"user": map[string]any{
			"name": "ada",
			"tags": []any{"x", "y"},
			"address": map[string]any{
				"city": "London",
			},
		},
		"count": float64(3),
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		path   []string
		want   any
		wantOK bool
	}{
		{"top level", []string{"count"}, float64(3), true},
		{"nested map", []string{"user", "address", "city"}, "London", true},
		{"slice index", []string{"user", "tags", "1"}, "y", true},
		{"missing key", []string{"user", "phone"}, nil, false},
		{"index out of range", []string{"user", "tags", "5"}, nil, false},
		{"negative index", []string{"user", "tags", "-1"}, nil, false},
		{"non-numeric index", []string{"user", "tags", "first"}, nil, false},
		{"descend into scalar", []string{"count", "x"}, nil, false},
		{"empty path returns root", nil, nil, true},
	}
	root := sample()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(root, tt.path...)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%v) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if len(tt.path) == 0 {
				return // root compare not meaningful via ==
			}
			if ok && got != tt.want {
				t.Errorf("Lookup(%v) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupNilRoot(t *testing.T) {
	if v, ok := Lookup(nil, "a"); ok || v != nil {
		t.Errorf("Lookup(nil, a) = %v, %v, want nil, false", v, ok)
	}
}

func TestLookupDotted(t *testing.T) {
	root := sample()
	if v, ok := LookupDotted(root, "user.name"); !ok || v != "ada" {
		t.Errorf("LookupDotted(user.name) = %v, %v, want ada, true", v, ok)
	}
	if _, ok := LookupDotted(root, ""); !ok {
		t.Error("LookupDotted(\"\") ok = false, want true (root)")
	}
}

func TestLookupYAMLStyleMap(t *testing.T) {
	root := map[any]any{"a": map[any]any{"b": 7}}
	if v, ok := Lookup(root, "a", "b"); !ok || v != 7 {
		t.Errorf("Lookup over map[any]any = %v, %v, want 7, true", v, ok)
	}
}
