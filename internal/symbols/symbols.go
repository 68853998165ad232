// Package symbols holds the global environment built from a ColloML
// program during the checker's first pass: function signatures, type
// aliases, enum declarations, reified decision-variable families, and
// the host-declared object/external-variable schemas a program may
// refer to. The evaluator and checker share this table read-only once
// population finishes.
package symbols

import (
	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/types"
)

// FuncSig is a declared function's signature and body, as populated by
// the checker's first pass before any body is type-checked.
type FuncSig struct {
	Name    string
	Pub     bool
	Params  []Param
	Output  types.ExprType
	Body    ast.Expression
	Doc     *ast.Docstring
	Used    bool
	DeclSp  ast.Node
}

// Param is a checked, resolved function parameter.
type Param struct {
	Name string
	Type types.ExprType
}

// TypeAliasDef is a `type Name = T;` declaration, resolved to a lattice
// type once cycle-checking has run.
type TypeAliasDef struct {
	Name          string
	RawUnderlying ast.TypeExpr    // as written, before resolution
	Underlying    types.ExprType  // filled in once Resolved
	Resolving     bool            // cycle-detection sentinel, true while DFS is in-flight
	Resolved      bool
}

// EnumDef is an `enum Name = ...;` declaration with its resolved variants.
type EnumDef struct {
	Name     string
	Variants map[string]types.Custom
	Order    []string // declaration order, for deterministic iteration

	// Payload maps a tuple- or struct-shaped variant to its resolved
	// field type(s), so `.0`-style tuple indexing and field access can
	// see through a match-bound variant name to its carried data. Unit
	// variants have no entry.
	Payload map[string]types.ExprType
}

// ReifyKind distinguishes a scalar `$name` family from a list-form `$[name]`.
type ReifyKind int

const (
	ReifyScalar ReifyKind = iota
	ReifyList
)

// ReifyDef binds a decision-variable family name to the Constraint-valued
// function it reifies.
type ReifyDef struct {
	VarName  string
	Pub      bool
	Kind     ReifyKind
	TargetFn string
}

// ObjectSchema describes a host-declared object type: its name and the
// fields the host exposes via field_access, per spec.md's Env contract.
type ObjectSchema struct {
	Name   string
	Fields map[string]types.ExprType
	Order  []string
}

// ExternVarSchema describes a host-declared external decision-variable
// family available to reification and direct reference.
type ExternVarSchema struct {
	Name   string
	Params []types.ExprType
	Kind   ReifyKind
}

// GlobalEnv is the fully-populated symbol table for one ColloML program,
// plus the host-supplied schemas it was checked against.
type GlobalEnv struct {
	Funcs       map[string]*FuncSig
	Aliases     map[string]*TypeAliasDef
	Enums       map[string]*EnumDef
	Reifies     map[string]*ReifyDef
	ObjectTypes map[string]*ObjectSchema
	ExternVars  map[string]*ExternVarSchema
}

func NewGlobalEnv() *GlobalEnv {
	return &GlobalEnv{
		Funcs:       make(map[string]*FuncSig),
		Aliases:     make(map[string]*TypeAliasDef),
		Enums:       make(map[string]*EnumDef),
		Reifies:     make(map[string]*ReifyDef),
		ObjectTypes: make(map[string]*ObjectSchema),
		ExternVars:  make(map[string]*ExternVarSchema),
	}
}

// LookupCustomUnderlying resolves a Custom type's root name to its
// underlying lattice type through the alias table, for use by
// can-convert / subtype checks that need to see past a named alias.
func (g *GlobalEnv) LookupCustomUnderlying(root string) (types.ExprType, bool) {
	a, ok := g.Aliases[root]
	if !ok || !a.Resolved {
		return types.ExprType{}, false
	}
	return a.Underlying, true
}

// CycleError reports a set of type aliases whose definitions form a cycle.
type CycleError struct {
	Names []string
}

// ResolveAliasCycles runs a DFS over all type aliases' raw bodies using
// only TypeName references (a cycle can only pass through another
// alias's name), detecting cycles before any alias is resolved to a
// lattice type. Aliases participating in a cycle are all reported
// together, matching spec.md §4.3's "all participating names reported
// together". Non-cyclic aliases are returned in a safe resolution
// order (dependencies before dependents) for the checker to resolve.
func (g *GlobalEnv) ResolveAliasCycles() (order []string, cycles []CycleError) {
	state := make(map[string]int) // 0=unvisited, 1=on-stack, 2=done
	var stack []string

	var visit func(name string) bool
	visit = func(name string) bool {
		switch state[name] {
		case 2:
			return true
		case 1:
			idx := 0
			for i, s := range stack {
				if s == name {
					idx = i
					break
				}
			}
			cyc := append([]string{}, stack[idx:]...)
			cycles = append(cycles, CycleError{Names: cyc})
			return false
		}
		alias, ok := g.Aliases[name]
		if !ok {
			return true
		}
		state[name] = 1
		stack = append(stack, name)
		ok2 := true
		for _, ref := range referencedTypeNames(alias.RawUnderlying) {
			if _, isAlias := g.Aliases[ref]; !isAlias {
				continue
			}
			if !visit(ref) {
				ok2 = false
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = 2
		if ok2 {
			order = append(order, name)
		}
		return ok2
	}

	for name := range g.Aliases {
		if state[name] == 0 {
			visit(name)
		}
	}
	return order, cycles
}

// referencedTypeNames walks a TypeExpr and collects every bare TypeName
// it mentions (module-qualified names are excluded: aliases are always
// local, so a `mod::Name` reference cannot participate in a local cycle).
func referencedTypeNames(t ast.TypeExpr) []string {
	var names []string
	var walk func(ast.TypeExpr)
	walk = func(t ast.TypeExpr) {
		switch n := t.(type) {
		case *ast.TypeName:
			if n.Module == "" {
				names = append(names, n.Name)
			}
		case *ast.TypeOptional:
			walk(n.Inner)
		case *ast.TypeUnion:
			for _, m := range n.Members {
				walk(m)
			}
		case *ast.TypeList:
			walk(n.Elem)
		case *ast.TypeTuple:
			for _, e := range n.Elems {
				walk(e)
			}
		case *ast.TypeStruct:
			for _, f := range n.Fields {
				walk(f.Type)
			}
		}
	}
	walk(t)
	return names
}
