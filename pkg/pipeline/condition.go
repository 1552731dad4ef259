package pipeline

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
)

// Evaluate runs a when-predicate against the context. A nil condition
// is true (step always runs). The only error paths are malformed
// operand lists and bad $expr expressions; reference misses are not
// errors, they just compare as null / fail $exists. $exists is false
// for both a missing path and an explicit null value.
func Evaluate(cond *Condition, ctx *StepContext) (bool, error) {
	if cond == nil {
		return true, nil
	}
	switch {
	case cond.Exists != "":
		v, isRef, ok := ctx.ResolveRef(cond.Exists)
		if !isRef {
			// A literal string trivially exists.
			return true, nil
		}
		// An explicit null does not count as existing.
		return ok && v != nil, nil
	case cond.Eq != nil:
		a, b, err := operandPair("$eq", cond.Eq, ctx)
		if err != nil {
			return false, err
		}
		return equalValues(a, b), nil
	case cond.Ne != nil:
		a, b, err := operandPair("$ne", cond.Ne, ctx)
		if err != nil {
			return false, err
		}
		return !equalValues(a, b), nil
	case cond.Gt != nil:
		return compareNumbers("$gt", cond.Gt, ctx, func(a, b float64) bool { return a > b })
	case cond.Gte != nil:
		return compareNumbers("$gte", cond.Gte, ctx, func(a, b float64) bool { return a >= b })
	case cond.Lt != nil:
		return compareNumbers("$lt", cond.Lt, ctx, func(a, b float64) bool { return a < b })
	case cond.Lte != nil:
		return compareNumbers("$lte", cond.Lte, ctx, func(a, b float64) bool { return a <= b })
	case cond.And != nil:
		for i := range cond.And {
			ok, err := Evaluate(&cond.And[i], ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case cond.Or != nil:
		for i := range cond.Or {
			ok, err := Evaluate(&cond.Or[i], ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case cond.Not != nil:
		ok, err := Evaluate(cond.Not, ctx)
		return !ok, err
	case cond.Expr != "":
		return evalExpr(cond.Expr, ctx)
	default:
		// Empty node: no constraint.
		return true, nil
	}
}

// operandPair resolves a two-element operand list. Each operand may be
// a reference token or a literal; unresolved references become null.
func operandPair(op string, operands []any, ctx *StepContext) (any, any, error) {
	if len(operands) != 2 {
		return nil, nil, fmt.Errorf("%s expects exactly 2 operands, got %d", op, len(operands))
	}
	return resolveOperand(operands[0], ctx), resolveOperand(operands[1], ctx), nil
}

func resolveOperand(v any, ctx *StepContext) any {
	s, isString := v.(string)
	if !isString {
		return v
	}
	resolved, isRef, ok := ctx.ResolveRef(s)
	if !isRef {
		return s
	}
	if !ok {
		return nil
	}
	return resolved
}

func compareNumbers(op string, operands []any, ctx *StepContext, cmp func(a, b float64) bool) (bool, error) {
	a, b, err := operandPair(op, operands, ctx)
	if err != nil {
		return false, err
	}
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if !aok || !bok {
		// Ordered comparison on non-numbers is false, not an error.
		return false, nil
	}
	return cmp(fa, fb), nil
}

// equalValues compares with strict equality on primitives and
// structural equality on containers. Numeric values compare by value
// across Go's int/float representations, since JSON decodes to float64
// while YAML decodes to int.
func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, present := bv[k]
			if !present || !equalValues(v, bval) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// evalExpr evaluates an expr-lang boolean expression against an
// environment of prev, first, input and every completed alias.
func evalExpr(src string, ctx *StepContext) (bool, error) {
	env := map[string]any{}
	if v, ok := ctx.prev(); ok {
		env["prev"] = v
	}
	if v, ok := ctx.at(0); ok {
		env["first"] = v
	}
	env["input"] = ctx.input
	for alias := range ctx.aliases {
		if v, ok := ctx.byAlias(alias); ok {
			env[alias] = v
		}
	}
	out, err := expr.Eval(src, env)
	if err != nil {
		return false, fmt.Errorf("$expr %q: %w", src, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("$expr %q: expected bool, got %T", src, out)
	}
	return b, nil
}
