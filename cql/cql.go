// Package cql parses the string query language used by debug tooling into
// archetype filters. The grammar supports CONTAINS(a, b), EXACT(a, b), ALL(),
// negation with !, grouping with parentheses, and the & and | operators.
package cql

import (
	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"github.com/quillworld/archon/filter"
	"github.com/quillworld/archon/types"
)

// Resolver maps a component name from the query text to its registered ID.
type Resolver func(name string) (types.ComponentID, error)

type operator int

const (
	opAnd operator = iota
	opOr
)

var operatorMap = map[string]operator{"&": opAnd, "|": opOr}

// Capture tells participle how to turn the matched token into an operator.
func (o *operator) Capture(s []string) error {
	if len(s) == 0 {
		return eris.New("invalid operator")
	}
	op, ok := operatorMap[s[0]]
	if !ok {
		return eris.New("invalid operator")
	}
	*o = op
	return nil
}

type componentName struct {
	Name string `parser:"@Ident"`
}

type allExpr struct{}

func (a *allExpr) Capture(values []string) error {
	if values[0] == "ALL" && values[1] == "(" && values[2] == ")" {
		*a = allExpr{}
	}
	return nil
}

type notExpr struct {
	SubExpression *value `parser:"'!' @@"`
}

type exactExpr struct {
	Components []*componentName `parser:"'EXACT' '(' (@@ ',')* @@ ')'"`
}

type containsExpr struct {
	Components []*componentName `parser:"'CONTAINS' '(' (@@ ',')* @@ ')'"`
}

type value struct {
	All           *allExpr      `parser:"@('ALL' '(' ')')"`
	Exact         *exactExpr    `parser:"| @@"`
	Contains      *containsExpr `parser:"| @@"`
	Not           *notExpr      `parser:"| @@"`
	Subexpression *term         `parser:"| '(' @@ ')'"`
}

type factor struct {
	Base *value `parser:"@@"`
}

type opFactor struct {
	Operator operator `parser:"@('&' | '|')"`
	Factor   *factor  `parser:"@@"`
}

type term struct {
	Left  *factor     `parser:"@@"`
	Right []*opFactor `parser:"@@*"`
}

var parser = participle.MustBuild[term]()

func resolveAll(names []*componentName, resolve Resolver) ([]types.ComponentID, error) {
	ids := make([]types.ComponentID, 0, len(names))
	for _, n := range names {
		id, err := resolve(n.Name)
		if err != nil {
			return nil, eris.Wrapf(err, "unknown component %q in query", n.Name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func valueToFilter(v *value, resolve Resolver) (filter.ComponentFilter, error) {
	switch {
	case v.Not != nil:
		inner, err := valueToFilter(v.Not.SubExpression, resolve)
		if err != nil {
			return nil, err
		}
		return filter.Not(inner), nil
	case v.Exact != nil:
		if len(v.Exact.Components) == 0 {
			return nil, eris.New("EXACT cannot have zero parameters")
		}
		ids, err := resolveAll(v.Exact.Components, resolve)
		if err != nil {
			return nil, err
		}
		return filter.Exact(ids...), nil
	case v.Contains != nil:
		if len(v.Contains.Components) == 0 {
			return nil, eris.New("CONTAINS cannot have zero parameters")
		}
		ids, err := resolveAll(v.Contains.Components, resolve)
		if err != nil {
			return nil, err
		}
		return filter.Contains(ids...), nil
	case v.All != nil:
		return filter.All(), nil
	case v.Subexpression != nil:
		return termToFilter(v.Subexpression, resolve)
	default:
		return nil, eris.New("malformed query expression")
	}
}

func termToFilter(t *term, resolve Resolver) (filter.ComponentFilter, error) {
	if t.Left == nil {
		return nil, eris.New("not enough values in expression")
	}
	acc, err := valueToFilter(t.Left.Base, resolve)
	if err != nil {
		return nil, err
	}
	for _, rhs := range t.Right {
		next, err := valueToFilter(rhs.Factor.Base, resolve)
		if err != nil {
			return nil, err
		}
		switch rhs.Operator {
		case opAnd:
			acc = filter.And(acc, next)
		case opOr:
			acc = filter.Or(acc, next)
		default:
			return nil, eris.New("invalid operator")
		}
	}
	return acc, nil
}

// Parse compiles the query text into a ComponentFilter, resolving component
// names through the given Resolver.
func Parse(text string, resolve Resolver) (filter.ComponentFilter, error) {
	t, err := parser.ParseString("", text)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse query")
	}
	return termToFilter(t, resolve)
}
