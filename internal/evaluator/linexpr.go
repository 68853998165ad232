package evaluator

import (
	"fmt"
	"sort"
	"strings"
)

// VarKind distinguishes the two families a LinExpr term can reference:
// a host-declared external variable, or a reified ColloML function.
type VarKind int

const (
	VarExtern VarKind = iota
	VarReified
)

// VarRef identifies one decision-variable instance: a family name plus
// its coerced argument values (e.g. `$chosen(student)`). FromList is
// non-nil only for a term produced by a list-form reification
// (`$[name](args)`), holding its index into the target function's
// returned constraint list (spec.md §4.6's `ScriptVar{name, from_list,
// params}`).
type VarRef struct {
	Kind     VarKind
	Name     string
	Args     []Value
	FromList *int
}

func (r VarRef) key() string {
	parts := make([]string, len(r.Args))
	for i, a := range r.Args {
		parts[i] = canonicalKey(a)
	}
	kind := "x"
	if r.Kind == VarReified {
		kind = "r"
	}
	suffix := ""
	if r.FromList != nil {
		suffix = fmt.Sprintf("#%d", *r.FromList)
	}
	return kind + ":" + r.Name + "(" + strings.Join(parts, ",") + ")" + suffix
}

func (r VarRef) String() string {
	parts := make([]string, len(r.Args))
	for i, a := range r.Args {
		parts[i] = a.Inspect()
	}
	name := r.Name
	if r.FromList != nil {
		name = fmt.Sprintf("%s[%d]", r.Name, *r.FromList)
	}
	return fmt.Sprintf("$%s(%s)", name, strings.Join(parts, ","))
}

// LinExprVal is a linear combination of decision-variable terms plus a
// constant offset: sum(coeff_i * var_i) + const.
//
// Canonical form (spec.md Open Question ii): terms are folded by key
// (duplicate variable references sum their coefficients), zero-
// coefficient terms are dropped, and the remaining terms are sorted by
// key before any equality comparison or memoization-key computation —
// so two LinExprs built in different orders or with redundant terms
// compare and hash identically.
type LinExprVal struct {
	Terms map[string]int32
	Refs  map[string]VarRef
	Const int32
}

func (*LinExprVal) value() {}

func NewLinExpr() *LinExprVal {
	return &LinExprVal{Terms: make(map[string]int32), Refs: make(map[string]VarRef)}
}

func IntAsLinExpr(v int32) *LinExprVal {
	l := NewLinExpr()
	l.Const = v
	return l
}

func VarAsLinExpr(ref VarRef) *LinExprVal {
	l := NewLinExpr()
	k := ref.key()
	l.Terms[k] = 1
	l.Refs[k] = ref
	return l
}

func (l *LinExprVal) clone() *LinExprVal {
	out := NewLinExpr()
	out.Const = l.Const
	for k, v := range l.Terms {
		out.Terms[k] = v
	}
	for k, v := range l.Refs {
		out.Refs[k] = v
	}
	return out
}

func (l *LinExprVal) Inspect() string { return l.canonicalString() }

// Add returns l + r, folding shared terms and dropping zero coefficients.
func Add(l, r *LinExprVal) *LinExprVal {
	out := l.clone()
	out.Const += r.Const
	for k, coeff := range r.Terms {
		out.Terms[k] += coeff
		out.Refs[k] = r.Refs[k]
	}
	out.dropZeros()
	return out
}

// Scale returns l multiplied by a constant factor.
func Scale(l *LinExprVal, factor int32) *LinExprVal {
	out := NewLinExpr()
	out.Const = l.Const * factor
	for k, coeff := range l.Terms {
		c := coeff * factor
		if c != 0 {
			out.Terms[k] = c
			out.Refs[k] = l.Refs[k]
		}
	}
	return out
}

// Negate returns -l.
func Negate(l *LinExprVal) *LinExprVal { return Scale(l, -1) }

// Sub returns l - r.
func Sub(l, r *LinExprVal) *LinExprVal { return Add(l, Negate(r)) }

func (l *LinExprVal) dropZeros() {
	for k, coeff := range l.Terms {
		if coeff == 0 {
			delete(l.Terms, k)
			delete(l.Refs, k)
		}
	}
}

func (l *LinExprVal) sortedKeys() []string {
	keys := make([]string, 0, len(l.Terms))
	for k := range l.Terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// canonicalString renders l in its canonical, deterministic term order;
// used both for display and (prefixed) as a memoization/equality key.
func (l *LinExprVal) canonicalString() string {
	keys := l.sortedKeys()
	if len(keys) == 0 {
		return fmt.Sprintf("%d", l.Const)
	}
	var b strings.Builder
	for i, k := range keys {
		coeff := l.Terms[k]
		if i > 0 {
			if coeff < 0 {
				b.WriteString(" - ")
			} else {
				b.WriteString(" + ")
			}
		} else if coeff < 0 {
			b.WriteString("-")
		}
		abs := coeff
		if abs < 0 {
			abs = -abs
		}
		if abs != 1 {
			fmt.Fprintf(&b, "%d*", abs)
		}
		b.WriteString(l.Refs[k].String())
	}
	if l.Const != 0 {
		if l.Const > 0 {
			fmt.Fprintf(&b, " + %d", l.Const)
		} else {
			fmt.Fprintf(&b, " - %d", -l.Const)
		}
	}
	return b.String()
}

// ConstraintOp is the relational operator a Constraint asserts against
// zero once its expression has been canonicalized to `lhs - rhs`.
type ConstraintOp string

const (
	ConstrEq ConstraintOp = "=="
	ConstrLe ConstraintOp = "<="
	ConstrGe ConstraintOp = ">="
)

// AtomicConstraint is one `Expr Op 0` row, built by subtracting a
// constraint operator's right-hand side from its left-hand side at
// construction time (spec.md's `===`/`<==`/`>==` operators).
type AtomicConstraint struct {
	Op   ConstraintOp
	Expr *LinExprVal
}

// ConstraintVal is a conjunction of atomic linear relations. A bare
// `a === b` is a single-atom conjunction; `forall`/`and`-combination of
// Constraint-typed expressions concatenates atoms, since every model
// row must independently hold (spec.md §4.2's Constraint type and the
// `forall` operation).
type ConstraintVal struct {
	Atoms []AtomicConstraint
}

func (ConstraintVal) value() {}
func (c ConstraintVal) Inspect() string {
	parts := make([]string, len(c.Atoms))
	for i, a := range c.Atoms {
		parts[i] = fmt.Sprintf("%s %s 0", a.Expr.canonicalString(), a.Op)
	}
	return strings.Join(parts, " and ")
}

func NewConstraint(op ConstraintOp, lhs, rhs *LinExprVal) ConstraintVal {
	return ConstraintVal{Atoms: []AtomicConstraint{{Op: op, Expr: Sub(lhs, rhs)}}}
}

// AndConstraints concatenates every atom of every operand into one
// conjunction, in operand order.
func AndConstraints(cs ...ConstraintVal) ConstraintVal {
	var out ConstraintVal
	for _, c := range cs {
		out.Atoms = append(out.Atoms, c.Atoms...)
	}
	return out
}
