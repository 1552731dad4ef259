package pipeline

import (
	"strconv"
	"strings"
)

// StepContext is the reference space one run accumulates: the request
// input plus one entry per processed step. It is owned by the engine
// for the lifetime of a single run and never shared across goroutines.
type StepContext struct {
	input   any
	entries []stepEntry
	aliases map[string]int
}

type stepEntry struct {
	alias    string
	data     any
	executed bool
}

// NewStepContext builds an empty context seeded with the request input.
func NewStepContext(input any) *StepContext {
	return &StepContext{input: input, aliases: map[string]int{}}
}

// Record appends one step's outcome. Skipped steps are recorded with
// executed=false: they keep index positions stable but are never valid
// reference targets.
func (c *StepContext) Record(alias string, data any, executed bool) {
	c.entries = append(c.entries, stepEntry{alias: alias, data: data, executed: executed})
	if alias != "" {
		c.aliases[alias] = len(c.entries) - 1
	}
}

func (c *StepContext) prev() (any, bool) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].executed {
			return c.entries[i].data, true
		}
	}
	return nil, false
}

func (c *StepContext) at(index int) (any, bool) {
	if index < 0 || index >= len(c.entries) || !c.entries[index].executed {
		return nil, false
	}
	return c.entries[index].data, true
}

func (c *StepContext) byAlias(alias string) (any, bool) {
	i, ok := c.aliases[alias]
	if !ok {
		return nil, false
	}
	return c.at(i)
}

// ResolveRef resolves a single reference token against the context.
// isRef is false when s is not a reference at all (plain string);
// ok is false when it is a reference that does not resolve (missing
// step, forward reference, skipped target, or dead path).
func (c *StepContext) ResolveRef(s string) (value any, isRef, ok bool) {
	base, path, kind := parseRef(s)
	switch kind {
	case refNone:
		return nil, false, false
	case refPrev:
		value, ok = c.prev()
	case refFirst:
		value, ok = c.at(0)
	case refInput:
		value, ok = c.input, true
	case refIndex:
		n, err := strconv.Atoi(base)
		if err != nil {
			return nil, true, false
		}
		value, ok = c.at(n)
	case refAlias:
		value, ok = c.byAlias(base)
	}
	if !ok {
		return nil, true, false
	}
	if path != "" {
		value, ok = ResolvePath(value, path)
	}
	return value, true, ok
}

type refKind int

const (
	refNone refKind = iota
	refPrev
	refFirst
	refInput
	refIndex
	refAlias
)

// parseRef splits a candidate token into its base ($prev, $first,
// $input, a $steps index, or a $steps alias) and the trailing path.
func parseRef(s string) (base, path string, kind refKind) {
	for _, simple := range []struct {
		prefix string
		kind   refKind
	}{
		{"$prev", refPrev},
		{"$first", refFirst},
		{"$input", refInput},
	} {
		if s == simple.prefix {
			return "", "", simple.kind
		}
		if strings.HasPrefix(s, simple.prefix+".") {
			return "", s[len(simple.prefix)+1:], simple.kind
		}
	}
	if strings.HasPrefix(s, "$steps[") {
		close := strings.IndexByte(s, ']')
		if close < 0 {
			return "", "", refNone
		}
		base = s[len("$steps["):close]
		rest := s[close+1:]
		switch {
		case rest == "":
			return base, "", refIndex
		case strings.HasPrefix(rest, "."):
			return base, rest[1:], refIndex
		default:
			return "", "", refNone
		}
	}
	if strings.HasPrefix(s, "$steps.") {
		rest := s[len("$steps."):]
		if rest == "" {
			return "", "", refNone
		}
		if dot := strings.IndexByte(rest, '.'); dot >= 0 {
			return rest[:dot], rest[dot+1:], refAlias
		}
		return rest, "", refAlias
	}
	return "", "", refNone
}

// ResolveValue recursively substitutes reference tokens throughout a
// step input, so literals and references mix freely at any depth.
// Unresolved references become null; their tokens are returned for
// strict-mode handling by the caller.
func ResolveValue(v any, ctx *StepContext) (any, []string) {
	var unresolved []string
	resolved := resolveValue(v, ctx, &unresolved)
	return resolved, unresolved
}

func resolveValue(v any, ctx *StepContext, unresolved *[]string) any {
	switch val := v.(type) {
	case string:
		resolved, isRef, ok := ctx.ResolveRef(val)
		if !isRef {
			return val
		}
		if !ok {
			*unresolved = append(*unresolved, val)
			return nil
		}
		return resolved
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = resolveValue(child, ctx, unresolved)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = resolveValue(child, ctx, unresolved)
		}
		return out
	default:
		return v
	}
}
