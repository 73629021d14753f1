package app

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/artpar/fieldmap/domain/registry"
)

// evalCacheSize bounds the compiled-program cache behind the eval
// modifier.
const evalCacheSize = 256

// RegisterStandard installs the built-in processors and modifiers on
// the model's registries.
func RegisterStandard(m *Model) error {
	if err := m.Processors.RegisterAll(standardProcessors()); err != nil {
		return err
	}
	mods, err := standardModifiers()
	if err != nil {
		return err
	}
	return m.Modifiers.RegisterAll(mods)
}

func standardProcessors() map[string]registry.Processor {
	return map[string]registry.Processor{
		"int":    func(v any) any { return toInt(v) },
		"float":  func(v any) any { return toFloat(v) },
		"bool":   func(v any) any { return toBool(v) },
		"string": func(v any) any { return toString(v) },

		"trim":  func(v any) any { return strings.TrimSpace(toString(v)) },
		"lower": func(v any) any { return strings.ToLower(toString(v)) },
		"upper": func(v any) any { return strings.ToUpper(toString(v)) },
		"title": func(v any) any { return titleCase(toString(v)) },

		"length": func(v any) any { return length(v) },
		"first": func(v any) any {
			arr, ok := toSlice(v)
			if !ok || len(arr) == 0 {
				return nil
			}
			return arr[0]
		},
		"last": func(v any) any {
			arr, ok := toSlice(v)
			if !ok || len(arr) == 0 {
				return nil
			}
			return arr[len(arr)-1]
		},
		"compact": func(v any) any {
			arr, ok := toSlice(v)
			if !ok {
				return v
			}
			out := make([]any, 0, len(arr))
			for _, item := range arr {
				if item == nil || item == "" {
					continue
				}
				out = append(out, item)
			}
			return out
		},

		"base64": func(v any) any {
			return base64.StdEncoding.EncodeToString(toBytes(v))
		},
		"unbase64": func(v any) any {
			decoded, err := base64.StdEncoding.DecodeString(toString(v))
			if err != nil {
				return nil
			}
			return string(decoded)
		},
		"urlencode": func(v any) any { return url.QueryEscape(toString(v)) },
		"urldecode": func(v any) any {
			decoded, err := url.QueryUnescape(toString(v))
			if err != nil {
				return nil
			}
			return decoded
		},
		"json": func(v any) any {
			b, err := json.Marshal(v)
			if err != nil {
				return nil
			}
			return string(b)
		},
		"unjson": func(v any) any {
			data := toBytes(v)
			if len(data) == 0 {
				return nil
			}
			var out any
			if err := json.Unmarshal(data, &out); err != nil {
				return nil
			}
			return out
		},
	}
}

func standardModifiers() (map[string]registry.Modifier, error) {
	programs, err := lru.New[string, *vm.Program](evalCacheSize)
	if err != nil {
		return nil, fmt.Errorf("eval cache: %w", err)
	}

	return map[string]registry.Modifier{
		"default": func(v, params any) registry.Modification {
			if v == nil || v == "" {
				return registry.Modification{Value: params, Replace: true}
			}
			return registry.Modification{}
		},

		"allow": func(v, params any) registry.Modification {
			list, _ := toSlice(params)
			if containsScalar(list, v) {
				return registry.Modification{}
			}
			return registry.Modification{Break: true}
		},

		"deny": func(v, params any) registry.Modification {
			list, _ := toSlice(params)
			if containsScalar(list, v) {
				return registry.Modification{Break: true}
			}
			return registry.Modification{}
		},

		"round": func(v, params any) registry.Modification {
			factor := math.Pow(10, float64(toInt(params)))
			return registry.Modification{Value: math.Round(toFloat(v)*factor) / factor, Replace: true}
		},

		"prepend": func(v, params any) registry.Modification {
			return registry.Modification{Value: toString(params) + toString(v), Replace: true}
		},

		"append": func(v, params any) registry.Modification {
			return registry.Modification{Value: toString(v) + toString(params), Replace: true}
		},

		"pick": func(v, params any) registry.Modification {
			obj, ok := v.(map[string]any)
			if !ok {
				return registry.Modification{Value: nil, Replace: true}
			}
			keys, _ := toSlice(params)
			out := make(map[string]any, len(keys))
			for _, k := range keys {
				key := toString(k)
				if val, exists := obj[key]; exists {
					out[key] = val
				}
			}
			return registry.Modification{Value: out, Replace: true}
		},

		"at": func(v, params any) registry.Modification {
			switch p := params.(type) {
			case string:
				obj, ok := v.(map[string]any)
				if !ok {
					return registry.Modification{Value: nil, Replace: true}
				}
				return registry.Modification{Value: obj[p], Replace: true}
			case float64:
				arr, ok := toSlice(v)
				i := int(p)
				if !ok || i < 0 || i >= len(arr) {
					return registry.Modification{Value: nil, Replace: true}
				}
				return registry.Modification{Value: arr[i], Replace: true}
			default:
				return registry.Modification{Err: fmt.Errorf("at: params must be an index or key, got %T", params)}
			}
		},

		"eval": func(v, params any) registry.Modification {
			src := toString(params)
			if src == "" {
				return registry.Modification{Err: fmt.Errorf("eval: empty expression")}
			}
			program, ok := programs.Get(src)
			if !ok {
				compiled, err := expr.Compile(src, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
				if err != nil {
					return registry.Modification{Err: fmt.Errorf("eval: compile %q: %w", src, err)}
				}
				programs.Add(src, compiled)
				program = compiled
			}
			out, err := expr.Run(program, map[string]any{"value": v})
			if err != nil {
				return registry.Modification{Err: fmt.Errorf("eval: run %q: %w", src, err)}
			}
			return registry.Modification{Value: out, Replace: true}
		},
	}, nil
}

// titleCase capitalizes the first letter of every space-separated word
// and lowers the rest, preserving the original whitespace.
func titleCase(s string) string {
	runes := []rune(s)
	atStart := true
	for i, r := range runes {
		if unicode.IsSpace(r) {
			atStart = true
			continue
		}
		if atStart {
			runes[i] = unicode.ToUpper(r)
			atStart = false
			continue
		}
		runes[i] = unicode.ToLower(r)
	}
	return string(runes)
}

func length(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case string:
		return len(t)
	case []byte:
		return len(t)
	case map[string]any:
		return len(t)
	default:
		if arr, ok := toSlice(v); ok {
			return len(arr)
		}
		return 0
	}
}

// containsScalar reports whether list holds v, comparing numbers by
// value so JSON params (float64) match integer data.
func containsScalar(list []any, v any) bool {
	for _, item := range list {
		if scalarEqual(item, v) {
			return true
		}
	}
	return false
}

func scalarEqual(a, b any) bool {
	an, aok := numeric(a)
	bn, bok := numeric(b)
	if aok || bok {
		return aok && bok && an == bn
	}
	switch a.(type) {
	case nil, bool, string:
	default:
		return false
	}
	switch b.(type) {
	case nil, bool, string:
	default:
		return false
	}
	return a == b
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
