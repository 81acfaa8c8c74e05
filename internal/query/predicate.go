package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/feral-file/ff-market-sync/internal/store"
)

// Operand is a SQL value expression with its positional parameters, e.g. a column
// or a converted price expression
type Operand struct {
	SQL    string
	Params []any
}

// Col returns the operand of a plain column
func Col(name string) Operand {
	return Operand{SQL: name}
}

// Predicate is a node of a filter expression, compiled to a SQL condition
type Predicate interface {
	Compile() (store.Condition, error)
}

func params(op Operand, extra ...any) []any {
	out := make([]any, 0, len(op.Params)+len(extra))
	out = append(out, op.Params...)
	return append(out, extra...)
}

// Eq matches rows where the operand equals Value
type Eq struct {
	Operand Operand
	Value   any
}

func (p Eq) Compile() (store.Condition, error) {
	return store.Condition{Clause: p.Operand.SQL + " = ?", Params: params(p.Operand, p.Value)}, nil
}

// In matches rows where the operand is one of Values, which must be a slice
type In struct {
	Operand Operand
	Values  any
}

func (p In) Compile() (store.Condition, error) {
	return store.Condition{Clause: p.Operand.SQL + " IN ?", Params: params(p.Operand, p.Values)}, nil
}

// Compare matches rows where "operand Op value" holds
type Compare struct {
	Operand Operand
	Op      string
	Value   any
}

var comparisonOperators = map[string]bool{"<": true, "<=": true, ">": true, ">=": true, "!=": true}

func (p Compare) Compile() (store.Condition, error) {
	if !comparisonOperators[p.Op] {
		return store.Condition{}, fmt.Errorf("unsupported comparison operator: %s", p.Op)
	}
	return store.Condition{Clause: fmt.Sprintf("%s %s ?", p.Operand.SQL, p.Op), Params: params(p.Operand, p.Value)}, nil
}

// Range matches rows where the operand is within [Min, Max]; a nil bound is open
type Range struct {
	Operand Operand
	Min     any
	Max     any
}

func (p Range) Compile() (store.Condition, error) {
	var parts And
	if p.Min != nil {
		parts = append(parts, Compare{Operand: p.Operand, Op: ">=", Value: p.Min})
	}
	if p.Max != nil {
		parts = append(parts, Compare{Operand: p.Operand, Op: "<=", Value: p.Max})
	}
	if len(parts) == 0 {
		return store.Condition{}, fmt.Errorf("range without bounds on %s", p.Operand.SQL)
	}
	return parts.Compile()
}

// TextMatch matches rows where any of the operands contains Text, case-insensitively
type TextMatch struct {
	Operands []Operand
	Text     string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (p TextMatch) Compile() (store.Condition, error) {
	pattern := "%" + likeEscaper.Replace(p.Text) + "%"
	or := make(Or, 0, len(p.Operands))
	for _, op := range p.Operands {
		or = append(or, ilike{operand: op, pattern: pattern})
	}
	return or.Compile()
}

type ilike struct {
	operand Operand
	pattern string
}

func (p ilike) Compile() (store.Condition, error) {
	return store.Condition{Clause: p.operand.SQL + " ILIKE ?", Params: params(p.operand, p.pattern)}, nil
}

// JSONContains matches rows whose jsonb operand contains the JSON encoding of Value
type JSONContains struct {
	Operand Operand
	Value   any
}

func (p JSONContains) Compile() (store.Condition, error) {
	data, err := json.Marshal(p.Value)
	if err != nil {
		return store.Condition{}, fmt.Errorf("failed to encode jsonb value: %w", err)
	}
	return store.Condition{Clause: p.Operand.SQL + " @> ?::jsonb", Params: params(p.Operand, string(data))}, nil
}

// Exists matches rows for which the correlated subquery returns a row
type Exists struct {
	Subquery string
	Params   []any
}

func (p Exists) Compile() (store.Condition, error) {
	return store.Condition{Clause: "EXISTS (" + p.Subquery + ")", Params: p.Params}, nil
}

// IsNull matches rows where the operand is NULL, or not NULL when Not is set
type IsNull struct {
	Operand Operand
	Not     bool
}

func (p IsNull) Compile() (store.Condition, error) {
	if p.Not {
		return store.Condition{Clause: p.Operand.SQL + " IS NOT NULL", Params: p.Operand.Params}, nil
	}
	return store.Condition{Clause: p.Operand.SQL + " IS NULL", Params: p.Operand.Params}, nil
}

// And matches rows matching every predicate; an empty And matches everything
type And []Predicate

func (p And) Compile() (store.Condition, error) {
	return join(p, " AND ", "TRUE")
}

// Or matches rows matching at least one predicate; an empty Or matches nothing
type Or []Predicate

func (p Or) Compile() (store.Condition, error) {
	return join(p, " OR ", "FALSE")
}

// Not negates a predicate
type Not struct {
	Predicate Predicate
}

func (p Not) Compile() (store.Condition, error) {
	inner, err := p.Predicate.Compile()
	if err != nil {
		return store.Condition{}, err
	}
	return store.Condition{Clause: "NOT (" + inner.Clause + ")", Params: inner.Params}, nil
}

func join(predicates []Predicate, sep, empty string) (store.Condition, error) {
	switch len(predicates) {
	case 0:
		return store.Condition{Clause: empty}, nil
	case 1:
		return predicates[0].Compile()
	}

	clauses := make([]string, 0, len(predicates))
	var ps []any
	for _, p := range predicates {
		c, err := p.Compile()
		if err != nil {
			return store.Condition{}, err
		}
		clauses = append(clauses, c.Clause)
		ps = append(ps, c.Params...)
	}
	return store.Condition{Clause: "(" + strings.Join(clauses, sep) + ")", Params: ps}, nil
}
