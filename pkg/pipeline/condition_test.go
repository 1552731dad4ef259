package pipeline

import "testing"

func TestEvaluateLeafConditions(t *testing.T) {
	ctx := NewStepContext(map[string]any{"count": float64(3)})
	ctx.Record("user", map[string]any{
		"tier":  "premium",
		"age":   float64(30),
		"email": nil,
	}, true)

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"nil condition handled by caller", Condition{}, true},
		{"exists hit", Condition{Exists: "$steps.user.tier"}, true},
		{"exists explicit null is false", Condition{Exists: "$steps.user.email"}, false},
		{"exists miss", Condition{Exists: "$steps.user.phone"}, false},
		{"eq strings", Condition{Eq: []any{"$steps.user.tier", "premium"}}, true},
		{"eq mismatch", Condition{Eq: []any{"$steps.user.tier", "standard"}}, false},
		{"eq numbers across int and float", Condition{Eq: []any{"$steps.user.age", 30}}, true},
		{"eq unresolved ref compares as null", Condition{Eq: []any{"$steps.user.phone", nil}}, true},
		{"ne", Condition{Ne: []any{"$steps.user.tier", "standard"}}, true},
		{"gt true", Condition{Gt: []any{"$steps.user.age", 18}}, true},
		{"gt false", Condition{Gt: []any{"$steps.user.age", 30}}, false},
		{"gte boundary", Condition{Gte: []any{"$steps.user.age", 30}}, true},
		{"lt input ref", Condition{Lt: []any{"$input.count", 5}}, true},
		{"lte", Condition{Lte: []any{"$input.count", 3}}, true},
		{"ordered compare on non-number is false", Condition{Gt: []any{"$steps.user.tier", 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(&tt.cond, ctx)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateCombinators(t *testing.T) {
	ctx := NewStepContext(nil)
	ctx.Record("u", map[string]any{"tier": "premium", "active": true}, true)

	yes := Condition{Eq: []any{"$steps.u.tier", "premium"}}
	no := Condition{Eq: []any{"$steps.u.tier", "basic"}}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"and all true", Condition{And: []Condition{yes, {Exists: "$steps.u.active"}}}, true},
		{"and short-circuits false", Condition{And: []Condition{no, yes}}, false},
		{"empty and is true", Condition{And: []Condition{}}, true},
		{"or first true", Condition{Or: []Condition{yes, no}}, true},
		{"or all false", Condition{Or: []Condition{no, no}}, false},
		{"empty or is false", Condition{Or: []Condition{}}, false},
		{"not", Condition{Not: &no}, true},
		{"nested", Condition{And: []Condition{yes, {Or: []Condition{no, yes}}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(&tt.cond, ctx)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateExpr(t *testing.T) {
	ctx := NewStepContext(map[string]any{"limit": 10})
	ctx.Record("user", map[string]any{"age": 30, "tier": "premium"}, true)

	got, err := Evaluate(&Condition{Expr: `user.age > 21 && user.tier == "premium"`}, ctx)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got {
		t.Errorf("expr over alias env = false, want true")
	}

	got, err = Evaluate(&Condition{Expr: `prev.age < input.limit`}, ctx)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got {
		t.Errorf("prev.age < input.limit = true, want false")
	}

	if _, err := Evaluate(&Condition{Expr: `user.age + 1`}, ctx); err == nil {
		t.Errorf("non-boolean expr must error")
	}
	if _, err := Evaluate(&Condition{Expr: `&&bogus`}, ctx); err == nil {
		t.Errorf("unparsable expr must error")
	}
}

func TestEvaluateOperandArity(t *testing.T) {
	ctx := NewStepContext(nil)
	if _, err := Evaluate(&Condition{Eq: []any{"only-one"}}, ctx); err == nil {
		t.Errorf("$eq with one operand must error")
	}
	if _, err := Evaluate(&Condition{Gt: []any{1, 2, 3}}, ctx); err == nil {
		t.Errorf("$gt with three operands must error")
	}
}
