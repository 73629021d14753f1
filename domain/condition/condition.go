// Package condition evaluates guard expressions, the `if(...)` clause
// of a field-spec key. Evaluation has two phases: reference tokens are
// substituted by their resolved values, then the resulting expression
// is evaluated under a deliberately small grammar: one comparison
// (`==`, `!=`, `<`, `<=`, `>`, `>=`) between two literals, or a single
// literal checked for truthiness. Operands are JSON literals or quoted
// strings. Nothing is ever executed as code.
package condition

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/artpar/fieldmap/domain/fieldspec"
)

// Resolver resolves an external reference found inside a guard
// expression. Returning false marks the value as absent.
type Resolver func(ref fieldspec.Ref) (any, bool)

// Substitute replaces every whitespace-delimited token carrying an
// external marker (`^`, `&`, `@name`) with the JSON encoding of its
// resolved value; absent values become null. Other tokens pass through
// untouched, and the tokens are rejoined with single spaces.
func Substitute(expr string, resolve Resolver) string {
	tokens := strings.Fields(expr)
	for i, tok := range tokens {
		ref := fieldspec.ParseRef(tok)
		if !ref.IsExternal() {
			continue
		}
		v, ok := resolve(ref)
		if !ok {
			tokens[i] = "null"
			continue
		}
		enc, err := json.Marshal(v)
		if err != nil {
			tokens[i] = "null"
			continue
		}
		tokens[i] = string(enc)
	}
	return strings.Join(tokens, " ")
}

// Evaluate substitutes references and evaluates the result. An absent
// (empty) expression is true.
func Evaluate(expr string, resolve Resolver) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	return Eval(Substitute(expr, resolve))
}

// Eval evaluates an already-substituted expression. It accepts exactly
// one operand (truthiness) or one binary comparison; anything else is
// an error.
func Eval(expr string) (bool, error) {
	tokens := scan(expr)
	switch len(tokens) {
	case 1:
		v, err := operand(tokens[0])
		if err != nil {
			return false, err
		}
		return truthy(v), nil
	case 3:
		left, err := operand(tokens[0])
		if err != nil {
			return false, err
		}
		right, err := operand(tokens[2])
		if err != nil {
			return false, err
		}
		return compare(left, tokens[1], right)
	default:
		return false, fmt.Errorf("expression %q: want one operand or one comparison, got %d tokens", expr, len(tokens))
	}
}

// scan splits on whitespace but keeps quoted strings (single or double
// quotes) whole, so substituted string values survive intact.
func scan(s string) []string {
	var tokens []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(s) && (s[j] != c || s[j-1] == '\\') {
				j++
			}
			if j < len(s) {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		default:
			j := i
			for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != '\n' && s[j] != '\r' {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		}
	}
	return tokens
}

// operand parses one literal: quoted string, or a JSON scalar
// (true/false/null/number).
func operand(tok string) (any, error) {
	if len(tok) >= 2 && (tok[0] == '\'' || tok[0] == '"') {
		if tok[len(tok)-1] != tok[0] {
			return nil, fmt.Errorf("unterminated string %s", tok)
		}
		if tok[0] == '"' {
			var s string
			if err := json.Unmarshal([]byte(tok), &s); err != nil {
				return nil, fmt.Errorf("bad string literal %s: %w", tok, err)
			}
			return s, nil
		}
		return tok[1 : len(tok)-1], nil
	}
	var v any
	if err := json.Unmarshal([]byte(tok), &v); err != nil {
		return nil, fmt.Errorf("bad operand %q", tok)
	}
	switch v.(type) {
	case nil, bool, float64, string:
		return v, nil
	default:
		return nil, fmt.Errorf("operand %q is not a scalar", tok)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func compare(left any, op string, right any) (bool, error) {
	switch op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	case "<", "<=", ">", ">=":
		return relational(left, op, right)
	default:
		return false, fmt.Errorf("unsupported operator %q", op)
	}
}

// equal compares scalars of the same type; values of different types
// are never equal.
func equal(a, b any) bool {
	switch at := a.(type) {
	case nil:
		return b == nil
	case bool:
		bt, ok := b.(bool)
		return ok && at == bt
	case float64:
		bt, ok := b.(float64)
		return ok && at == bt
	case string:
		bt, ok := b.(string)
		return ok && at == bt
	default:
		return false
	}
}

func relational(a any, op string, b any) (bool, error) {
	if an, aok := a.(float64); aok {
		bn, bok := b.(float64)
		if !bok {
			return false, fmt.Errorf("cannot order %T against %T", a, b)
		}
		return order(op, an < bn, an == bn), nil
	}
	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return false, fmt.Errorf("cannot order %T against %T", a, b)
		}
		return order(op, as < bs, as == bs), nil
	}
	return false, fmt.Errorf("operands of %q must be two numbers or two strings", op)
}

func order(op string, less, eq bool) bool {
	switch op {
	case "<":
		return less
	case "<=":
		return less || eq
	case ">":
		return !less && !eq
	default: // ">="
		return !less
	}
}
