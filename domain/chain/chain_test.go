package chain

import (
	"reflect"
	"strings"
	"testing"

	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/domain/registry"
)

func testRegistries(t *testing.T) (*registry.Processors, *registry.Modifiers) {
	t.Helper()
	procs := registry.NewProcessors()
	mods := registry.NewModifiers()

	err := procs.RegisterAll(map[string]registry.Processor{
		"trim": func(v any) any {
			s, _ := v.(string)
			return strings.TrimSpace(s)
		},
		"upper": func(v any) any {
			s, _ := v.(string)
			return strings.ToUpper(s)
		},
		"double": func(v any) any {
			n, _ := v.(float64)
			return n * 2
		},
	})
	if err != nil {
		t.Fatalf("register processors: %v", err)
	}

	err = mods.RegisterAll(map[string]registry.Modifier{
		"allow": func(v, params any) registry.Modification {
			list, _ := params.([]any)
			for _, item := range list {
				if item == v {
					return registry.Modification{}
				}
			}
			return registry.Modification{Break: true}
		},
		"default": func(v, params any) registry.Modification {
			if v == nil || v == "" {
				return registry.Modification{Value: params, Replace: true}
			}
			return registry.Modification{}
		},
		"halt": func(v, params any) registry.Modification {
			return registry.Modification{Value: params, Replace: true, Break: true}
		},
	})
	if err != nil {
		t.Fatalf("register modifiers: %v", err)
	}
	return procs, mods
}

func TestCompile(t *testing.T) {
	tests := []struct {
		spec string
		want []Token
	}{
		{"", nil},
		{"int", []Token{{Name: "int"}}},
		{"trim.upper", []Token{{Name: "trim"}, {Name: "upper"}}},
		{"default:25", []Token{{Name: "default", RawParams: "25", IsModifier: true}}},
		{
			"allow:[1,2].double",
			[]Token{
				{Name: "allow", RawParams: "[1,2]", IsModifier: true},
				{Name: "double"},
			},
		},
		{
			`prepend:"+".string`,
			[]Token{
				{Name: "prepend", RawParams: `"+"`, IsModifier: true},
				{Name: "string"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if got := Compile(tt.spec); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Compile(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestRunOrderSensitive(t *testing.T) {
	procs, mods := testRegistries(t)

	got, diags := Run("trim.upper", " ab ", procs, mods)
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	if got != "AB" {
		t.Errorf("trim.upper(\" ab \") = %v, want AB", got)
	}

	// Reversed order uppercases first, then trims the same spaces away;
	// the intermediate differs even when the end value matches.
	got, _ = Run("upper.trim", " ab ", procs, mods)
	if got != "AB" {
		t.Errorf("upper.trim(\" ab \") = %v, want AB", got)
	}
}

func TestRunBreakHaltsChain(t *testing.T) {
	procs, mods := testRegistries(t)

	got, _ := Run("allow:[1,2].double", float64(3), procs, mods)
	if got != float64(3) {
		t.Errorf("allow:[1,2].double(3) = %v, want 3 (double must not run)", got)
	}

	got, _ = Run("allow:[1,2].double", float64(2), procs, mods)
	if got != float64(4) {
		t.Errorf("allow:[1,2].double(2) = %v, want 4", got)
	}
}

func TestRunBreakWithReplace(t *testing.T) {
	procs, mods := testRegistries(t)
	got, _ := Run(`halt:"stop".upper`, "x", procs, mods)
	if got != "stop" {
		t.Errorf("halt chain = %v, want stop", got)
	}
}

func TestRunModifierReplaces(t *testing.T) {
	procs, mods := testRegistries(t)
	got, _ := Run("default:25", nil, procs, mods)
	if got != float64(25) {
		t.Errorf("default:25(nil) = %v, want 25", got)
	}
	got, _ = Run("default:25", float64(7), procs, mods)
	if got != float64(7) {
		t.Errorf("default:25(7) = %v, want 7", got)
	}
}

func TestRunUnregisteredProcessor(t *testing.T) {
	procs, mods := testRegistries(t)
	got, diags := Run("nope", "value", procs, mods)
	if got != nil {
		t.Errorf("unregistered processor result = %v, want nil", got)
	}
	if !diags.HasKind(diag.Reference) {
		t.Errorf("diags = %v, want a reference diagnostic", diags)
	}
}

func TestRunUnregisteredModifierSkipped(t *testing.T) {
	procs, mods := testRegistries(t)
	got, diags := Run("nope:1.upper", "ab", procs, mods)
	if got != "AB" {
		t.Errorf("result = %v, want AB (unknown modifier skipped)", got)
	}
	if !diags.HasKind(diag.Reference) {
		t.Errorf("diags = %v, want a reference diagnostic", diags)
	}
}

func TestRunMalformedParamsSkipped(t *testing.T) {
	procs, mods := testRegistries(t)
	got, diags := Run("default:{broken.upper", "ab", procs, mods)
	// the dot inside the malformed payload splits the token, so the
	// chain sees default:{broken then upper
	if got != "AB" {
		t.Errorf("result = %v, want AB", got)
	}
	if !diags.HasKind(diag.Parse) {
		t.Errorf("diags = %v, want a parse diagnostic", diags)
	}
}

func TestRunEmptySpec(t *testing.T) {
	procs, mods := testRegistries(t)
	got, diags := Run("", "unchanged", procs, mods)
	if got != "unchanged" || len(diags) != 0 {
		t.Errorf("Run(\"\") = %v, %v; want unchanged, no diags", got, diags)
	}
}
