// Package checker implements ColloML's two-pass semantic analysis:
// pass one populates the global symbol table with every declaration's
// signature (so forward references between functions type-check),
// pass two walks each function body with a lexical scope stack,
// annotating every expression's span with its resolved types.ExprType
// and collecting diagnostics, per spec.md §4.2-§4.4.
package checker

import (
	"sort"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/diagnostics"
	"github.com/collomatique/colloml/internal/symbols"
	"github.com/collomatique/colloml/internal/token"
	"github.com/collomatique/colloml/internal/types"
)

// Checker holds the state of one semantic-analysis run over a Program.
type Checker struct {
	Global *symbols.GlobalEnv

	ExprTypes map[ast.Expression]types.ExprType

	Errors   []diagnostics.Diagnostic
	Warnings []diagnostics.Diagnostic
}

// scope is a lexical binding frame; function bodies and comprehension/
// forall/sum/fold/match bodies each push one.
type scope struct {
	vars  map[string]types.ExprType
	outer *scope
}

func newScope(outer *scope) *scope { return &scope{vars: make(map[string]types.ExprType), outer: outer} }

func (s *scope) get(name string) (types.ExprType, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return types.ExprType{}, false
}

func (s *scope) set(name string, t types.ExprType) { s.vars[name] = t }

// New creates a Checker pre-seeded with host-declared object and
// extern-variable schemas (spec.md's Env contract); those are supplied
// by the caller (the top-level colloml package) before Check runs.
func New(global *symbols.GlobalEnv) *Checker {
	return &Checker{
		Global:    global,
		ExprTypes: make(map[ast.Expression]types.ExprType),
	}
}

func (c *Checker) errorf(kind diagnostics.Kind, sp ast.Node, format string, args ...interface{}) {
	c.Errors = append(c.Errors, diagnostics.New(kind, sp.Span(), format, args...))
}

func (c *Checker) warnf(kind diagnostics.Kind, sp ast.Node, format string, args ...interface{}) {
	c.Warnings = append(c.Warnings, diagnostics.New(kind, sp.Span(), format, args...))
}

// Check runs both passes over prog, populating c.Global, c.ExprTypes and
// c.Errors/Warnings. It never panics: every malformed construct is
// reported as a diagnostic and typed Never so checking can continue.
func (c *Checker) Check(prog *ast.Program) {
	c.passOneCollectSignatures(prog)
	c.resolveTypeAliasCycles()
	c.resolveEnumPayloads(prog)
	c.passTwoCheckBodies(prog)
	c.checkReifyTargets(prog)
	c.checkUnusedFunctions()
}

// --- pass one ---

func (c *Checker) passOneCollectSignatures(prog *ast.Program) {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.TypeDecl:
			if _, dup := c.Global.Aliases[d.Name]; dup {
				c.errorf(diagnostics.KindDuplicateName, d, "type %q is declared more than once", d.Name)
				continue
			}
			c.Global.Aliases[d.Name] = &symbols.TypeAliasDef{Name: d.Name, RawUnderlying: d.Underlying}
		case *ast.EnumDecl:
			if _, dup := c.Global.Enums[d.Name]; dup {
				c.errorf(diagnostics.KindDuplicateName, d, "enum %q is declared more than once", d.Name)
				continue
			}
			ed := &symbols.EnumDef{Name: d.Name, Variants: make(map[string]types.Custom), Payload: make(map[string]types.ExprType)}
			seen := map[string]bool{}
			for _, v := range d.Variants {
				if seen[v.Name] {
					c.errorf(diagnostics.KindDuplicateName, d, "enum %q has a duplicate variant %q", d.Name, v.Name)
					continue
				}
				seen[v.Name] = true
				ed.Variants[v.Name] = types.Custom{Root: d.Name, Variant: v.Name}
				ed.Order = append(ed.Order, v.Name)
			}
			c.Global.Enums[d.Name] = ed
		}
	}
	for _, decl := range prog.Decls {
		let, ok := decl.(*ast.Let)
		if !ok {
			continue
		}
		if _, dup := c.Global.Funcs[let.Name]; dup {
			c.errorf(diagnostics.KindDuplicateName, let, "function %q is declared more than once", let.Name)
			continue
		}
		sig := &symbols.FuncSig{Name: let.Name, Pub: let.Pub, Doc: let.Doc, Body: let.Body}
		seenParam := map[string]bool{}
		for _, p := range let.Params {
			if seenParam[p.Name] {
				c.errorf(diagnostics.KindDuplicateName, let, "parameter %q is declared more than once in %q", p.Name, let.Name)
				continue
			}
			seenParam[p.Name] = true
			sig.Params = append(sig.Params, symbols.Param{Name: p.Name, Type: c.resolveTypeExprShallow(p.Type)})
		}
		if let.OutType != nil {
			sig.Output = c.resolveTypeExprShallow(let.OutType)
		} else {
			sig.Output = types.NeverType()
		}
		c.Global.Funcs[let.Name] = sig
	}
	for _, decl := range prog.Decls {
		r, ok := decl.(*ast.Reify)
		if !ok {
			continue
		}
		if _, dup := c.Global.Reifies[r.VarName]; dup {
			c.errorf(diagnostics.KindDuplicateName, r, "reified variable %q is declared more than once", r.VarName)
			continue
		}
		kind := symbols.ReifyScalar
		if r.IsList {
			kind = symbols.ReifyList
		}
		c.Global.Reifies[r.VarName] = &symbols.ReifyDef{VarName: r.VarName, Pub: r.Pub, Kind: kind, TargetFn: r.TargetFn}
	}
}

// resolveTypeAliasCycles wraps symbols.GlobalEnv.ResolveAliasCycles and
// reports every detected cycle as one diagnostic naming every
// participating alias (spec.md §4.3).
func (c *Checker) resolveTypeAliasCycles() {
	order, cycles := c.Global.ResolveAliasCycles()
	for _, cyc := range cycles {
		sp := token.Span{}
		if alias, ok := c.Global.Aliases[cyc.Names[0]]; ok {
			sp = alias.RawUnderlying.Span()
		}
		d := diagnostics.New(diagnostics.KindCyclicTypeAlias, sp, "cyclic type alias definition involving: %v", cyc.Names)
		d.Names = cyc.Names
		c.Errors = append(c.Errors, d)
	}
	for _, name := range order {
		alias := c.Global.Aliases[name]
		alias.Underlying = c.resolveTypeExprShallow(alias.RawUnderlying)
		alias.Resolved = true
	}
}

// resolveEnumPayloads resolves each tuple- or struct-shaped enum
// variant's declared field types into the lattice, once every alias is
// resolved, so `checkTupleIndex`/field access can see through a
// match-bound variant name to its carried data (scrutinee narrowing
// only gives a tagged, payload-less types.Custom otherwise).
func (c *Checker) resolveEnumPayloads(prog *ast.Program) {
	for _, decl := range prog.Decls {
		d, ok := decl.(*ast.EnumDecl)
		if !ok {
			continue
		}
		ed, ok := c.Global.Enums[d.Name]
		if !ok {
			continue
		}
		for _, v := range d.Variants {
			switch v.Kind {
			case ast.VariantTuple:
				elems := make([]types.ExprType, len(v.TupleFields))
				for i, f := range v.TupleFields {
					elems[i] = c.resolveTypeExprShallow(f)
				}
				ed.Payload[v.Name] = types.Of(types.Tuple{Elems: elems})
			case ast.VariantStruct:
				fields := make([]types.Field, len(v.StructFields))
				for i, f := range v.StructFields {
					fields[i] = types.Field{Name: f.Name, Type: c.resolveTypeExprShallow(f.Type)}
				}
				sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
				ed.Payload[v.Name] = types.Of(types.Struct{Fields: fields})
			}
		}
	}
}

// resolveTypeExprShallow turns a parsed TypeExpr into a lattice
// ExprType, resolving TypeName leaves against primitives, aliases and
// enum variants. A declared alias name resolves to a Custom wrapper
// naming the alias, whether or not that alias is Resolved yet; its
// underlying type is filled in by resolveTypeAliasCycles.
func (c *Checker) resolveTypeExprShallow(t ast.TypeExpr) types.ExprType {
	switch n := t.(type) {
	case nil:
		return types.NeverType()
	case *ast.TypeName:
		return c.resolveTypeName(n)
	case *ast.TypeOptional:
		return types.OptionalOf(c.resolveTypeExprShallow(n.Inner))
	case *ast.TypeUnion:
		result := types.NeverType()
		for _, m := range n.Members {
			result = types.Unify(result, c.resolveTypeExprShallow(m))
		}
		return result
	case *ast.TypeList:
		return types.ListType(c.resolveTypeExprShallow(n.Elem))
	case *ast.TypeTuple:
		elems := make([]types.ExprType, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = c.resolveTypeExprShallow(e)
		}
		return types.Of(types.Tuple{Elems: elems})
	case *ast.TypeStruct:
		fields := make([]types.Field, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = types.Field{Name: f.Name, Type: c.resolveTypeExprShallow(f.Type)}
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		return types.Of(types.Struct{Fields: fields})
	default:
		return types.NeverType()
	}
}

var primitiveNames = map[string]types.Simple{
	"Int": types.Int{}, "Bool": types.Bool{}, "String": types.String{},
	"LinExpr": types.LinExpr{}, "Constraint": types.Constraint{},
	"None": types.NoneT{}, "Never": types.Never{}, "EmptyList": types.EmptyList{},
}

func (c *Checker) resolveTypeName(n *ast.TypeName) types.ExprType {
	if n.Variant != "" {
		if ed, ok := c.Global.Enums[n.Module]; ok {
			if v, ok := ed.Variants[n.Variant]; ok {
				return types.Of(v)
			}
		}
		c.errorf(diagnostics.KindUnknownType, n, "unknown enum variant %s::%s", n.Module, n.Variant)
		return types.NeverType()
	}
	if p, ok := primitiveNames[n.Name]; ok {
		return types.Of(p)
	}
	if _, ok := c.Global.Aliases[n.Name]; ok {
		return types.Of(types.Custom{Root: n.Name})
	}
	if _, ok := c.Global.Enums[n.Name]; ok {
		// A bare enum name in type position denotes the union of all its
		// variants.
		ed := c.Global.Enums[n.Name]
		result := types.NeverType()
		for _, vn := range ed.Order {
			result = types.Unify(result, types.Of(ed.Variants[vn]))
		}
		return result
	}
	if os, ok := c.Global.ObjectTypes[n.Name]; ok {
		_ = os
		return types.Of(types.Object{Name: n.Name})
	}
	c.errorf(diagnostics.KindUnknownType, n, "unknown type %q", n.Name)
	return types.NeverType()
}

// underlyingOf follows a Custom alias wrapper to its resolved lattice
// type, for use wherever a cast or operator needs to see past a name
// (spec.md §4.2's "custom types convert like their underlying type").
func (c *Checker) underlyingOf(t types.ExprType) types.ExprType {
	v, ok := t.IsSingle()
	if !ok {
		return t
	}
	custom, ok := v.(types.Custom)
	if !ok {
		return t
	}
	if custom.Variant != "" {
		if ed, ok := c.Global.Enums[custom.Root]; ok {
			if payload, ok := ed.Payload[custom.Variant]; ok {
				return payload
			}
		}
		return t
	}
	if u, ok := c.Global.LookupCustomUnderlying(custom.Root); ok {
		return u
	}
	return t
}

// checkReifyTargets validates each `reify` declaration's target function
// once every function's output type is final (declared or inferred from
// its body by passTwoCheckBodies): it must exist and return Constraint
// for a scalar reify ($name) or [Constraint] for a list-form reify
// ($[name]) — spec.md §4.2's "reify targets an existing Constraint-
// returning function" invariant, extended per §4.6 to the list form,
// consulting the ReifyKind recorded at declaration time instead of
// leaving it unconsulted dead data.
func (c *Checker) checkReifyTargets(prog *ast.Program) {
	for _, decl := range prog.Decls {
		r, ok := decl.(*ast.Reify)
		if !ok {
			continue
		}
		sig, ok := c.Global.Funcs[r.TargetFn]
		if !ok {
			c.errorf(diagnostics.KindInvalidReifyTarget, r, "reified function %q is not declared", r.TargetFn)
			continue
		}
		if r.IsList {
			elem, isList := sig.Output.ElementType()
			if !isList || !types.Subtype(elem, types.ConstraintType()) {
				c.errorf(diagnostics.KindInvalidReifyTarget, r,
					"list-form reify %q's target %q must return [Constraint], got %s", r.VarName, r.TargetFn, sig.Output.String())
			}
			continue
		}
		if !types.Subtype(sig.Output, types.ConstraintType()) {
			c.errorf(diagnostics.KindInvalidReifyTarget, r,
				"reify %q's target %q must return Constraint, got %s", r.VarName, r.TargetFn, sig.Output.String())
		}
	}
}

func (c *Checker) checkUnusedFunctions() {
	names := make([]string, 0, len(c.Global.Funcs))
	for n := range c.Global.Funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		f := c.Global.Funcs[n]
		if !f.Pub && !f.Used {
			c.warnf(diagnostics.KindUnusedFunction, f.Body, "function %q is never used", n)
		}
	}
}
