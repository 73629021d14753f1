// Package chain compiles and executes processor-spec strings, the
// right-hand side of a field mapping entry. A spec is a dot-separated
// token list applied left to right to an accumulator:
//
//	trim.upper              two processors
//	default:25.int          a modifier with JSON params, then a processor
//	allow:[1,2].double      a breaking modifier guarding a processor
//
// Everything after the first ':' in a token is a JSON parameter payload
// for a modifier; tokens without ':' name processors. The separator
// split is literal, so modifier params must not contain '.'.
package chain

import (
	"encoding/json"
	"strings"

	"github.com/artpar/fieldmap/domain/diag"
	"github.com/artpar/fieldmap/domain/registry"
)

// Token is one compiled chain step.
type Token struct {
	Name       string
	RawParams  string
	IsModifier bool
}

// Compile splits a processor-spec string into tokens. An empty spec
// compiles to no tokens.
func Compile(spec string) []Token {
	if spec == "" {
		return nil
	}
	parts := strings.Split(spec, ".")
	tokens := make([]Token, len(parts))
	for i, part := range parts {
		if idx := strings.Index(part, ":"); idx >= 0 {
			tokens[i] = Token{Name: part[:idx], RawParams: part[idx+1:], IsModifier: true}
			continue
		}
		tokens[i] = Token{Name: part}
	}
	return tokens
}

// Run executes spec against v and returns the final accumulator plus
// any diagnostics collected along the way. Failures degrade locally:
// a malformed or unregistered modifier token is skipped, an
// unregistered processor sets the accumulator to nil. Run never fails
// outright.
func Run(spec string, v any, procs *registry.Processors, mods *registry.Modifiers) (any, diag.List) {
	acc := v
	var diags diag.List
	for _, tok := range Compile(spec) {
		if tok.IsModifier {
			fn, ok := mods.Get(tok.Name)
			if !ok {
				diags = diags.Add(diag.Diagnostic{
					Kind:    diag.Reference,
					Message: "modifier " + tok.Name,
					Err:     diag.ErrNotRegistered,
				})
				continue
			}
			var params any
			if tok.RawParams != "" {
				if err := json.Unmarshal([]byte(tok.RawParams), &params); err != nil {
					diags = diags.Add(diag.Diagnostic{
						Kind:    diag.Parse,
						Message: "modifier " + tok.Name + " params " + tok.RawParams,
						Err:     err,
					})
					continue
				}
			}
			mod := fn(acc, params)
			if mod.Err != nil {
				diags = diags.Add(diag.Diagnostic{
					Kind:    diag.Parse,
					Message: "modifier " + tok.Name,
					Err:     mod.Err,
				})
				continue
			}
			if mod.Replace {
				acc = mod.Value
			}
			if mod.Break {
				return acc, diags
			}
			continue
		}

		fn, ok := procs.Get(tok.Name)
		if !ok {
			// Documented policy: an unknown processor yields an absent
			// value, not the untouched input.
			acc = nil
			diags = diags.Add(diag.Diagnostic{
				Kind:    diag.Reference,
				Message: "processor " + tok.Name,
				Err:     diag.ErrNotRegistered,
			})
			continue
		}
		acc = fn(acc)
	}
	return acc, diags
}
