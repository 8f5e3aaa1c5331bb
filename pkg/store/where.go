package store

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Op is a comparison operator of a condition.
type Op string

const (
	OpEq   Op = "="
	OpNe   Op = "<>"
	OpLt   Op = "<"
	OpLe   Op = "<="
	OpGt   Op = ">"
	OpGe   Op = ">="
	OpLike Op = "LIKE"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_.]*$`)

// ValidIdent reports if s can be used as a table or column name.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}

// Cond is a single (column, operator, value) triple.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

// Eq creates an equality condition. A nil value, or a nil pointer, matches
// NULL.
func Eq(col string, val any) Cond { return Cond{Column: col, Op: OpEq, Value: val} }

// Ne creates an inequality condition. A nil value matches NOT NULL.
func Ne(col string, val any) Cond { return Cond{Column: col, Op: OpNe, Value: val} }

// Lt creates a "less than" condition.
func Lt(col string, val any) Cond { return Cond{Column: col, Op: OpLt, Value: val} }

// Gt creates a "greater than" condition.
func Gt(col string, val any) Cond { return Cond{Column: col, Op: OpGt, Value: val} }

// Like creates a LIKE condition.
func Like(col, pattern string) Cond { return Cond{Column: col, Op: OpLike, Value: pattern} }

// Where is a flat conjunction or disjunction of conditions. The zero value
// matches every row.
type Where struct {
	or    bool
	conds []Cond
}

// And joins conditions with AND.
func And(conds ...Cond) Where {
	return Where{conds: conds}
}

// Or joins conditions with OR.
func Or(conds ...Cond) Where {
	return Where{or: true, conds: conds}
}

// IsEmpty is true when Where has no conditions.
func (w Where) IsEmpty() bool {
	return len(w.conds) == 0
}

// Build renders the predicate with positional placeholders. It returns
// an empty string for an empty Where.
func (w Where) Build() (string, []any, error) {
	if w.IsEmpty() {
		return "", nil, nil
	}
	parts := make([]string, 0, len(w.conds))
	args := make([]any, 0, len(w.conds))
	for _, c := range w.conds {
		if !ValidIdent(c.Column) {
			return "", nil, fmt.Errorf("invalid column name %q", c.Column)
		}
		val := Value(c.Value)
		switch c.Op {
		case OpEq, OpNe:
			if val == nil {
				null := "IS NULL"
				if c.Op == OpNe {
					null = "IS NOT NULL"
				}
				parts = append(parts, c.Column+" "+null)
				continue
			}
		case OpLt, OpLe, OpGt, OpGe, OpLike:
			if val == nil {
				return "", nil, fmt.Errorf("operator %s cannot compare %s with NULL",
					c.Op, c.Column)
			}
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", c.Column, c.Op))
		args = append(args, val)
	}

	sep := " AND "
	if w.or {
		sep = " OR "
	}
	return strings.Join(parts, sep), args, nil
}

// Assign sets a column to a value in inserts and updates.
type Assign struct {
	Column string
	Value  any
}

// Set creates an Assign. Nil pointers are written as NULL.
func Set(col string, val any) Assign {
	return Assign{Column: col, Value: val}
}

// Value dereferences pointers, a nil pointer becomes nil.
func Value(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// ValidOrder reports if s is a column name optionally followed by ASC or
// DESC.
func ValidOrder(s string) bool {
	fs := strings.Fields(s)
	switch len(fs) {
	case 1:
		return ValidIdent(fs[0])
	case 2:
		dir := strings.ToUpper(fs[1])
		return ValidIdent(fs[0]) && (dir == "ASC" || dir == "DESC")
	default:
		return false
	}
}
