package evaluator

import (
	"sort"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/types"
)

// resolveTypeExpr mirrors the checker's resolveTypeExprShallow, used at
// evaluation time to resolve a `match` arm's `as T` annotation and a
// cast's target type against the (by now fully resolved) global
// symbol table. Duplicated rather than shared with internal/checker:
// the checker's version reports unknown names as diagnostics, which
// this copy does not, and keeping a copy here leaves the dependency
// one-way (evaluator never imports checker).
func (ev *Evaluator) resolveTypeExpr(t ast.TypeExpr) types.ExprType {
	switch n := t.(type) {
	case nil:
		return types.NeverType()
	case *ast.TypeName:
		return ev.resolveTypeName(n)
	case *ast.TypeOptional:
		return types.OptionalOf(ev.resolveTypeExpr(n.Inner))
	case *ast.TypeUnion:
		result := types.NeverType()
		for _, m := range n.Members {
			result = types.Unify(result, ev.resolveTypeExpr(m))
		}
		return result
	case *ast.TypeList:
		return types.ListType(ev.resolveTypeExpr(n.Elem))
	case *ast.TypeTuple:
		elems := make([]types.ExprType, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = ev.resolveTypeExpr(e)
		}
		return types.Of(types.Tuple{Elems: elems})
	case *ast.TypeStruct:
		fields := make([]types.Field, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = types.Field{Name: f.Name, Type: ev.resolveTypeExpr(f.Type)}
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

func (ev *Evaluator) resolveTypeName(n *ast.TypeName) types.ExprType {
	if n.Variant != "" {
		if ed, ok := ev.Global.Enums[n.Module]; ok {
			if v, ok := ed.Variants[n.Variant]; ok {
				return types.Of(v)
			}
		}
		return types.NeverType()
	}
	if p, ok := primitiveNames[n.Name]; ok {
		return types.Of(p)
	}
	if _, ok := ev.Global.Aliases[n.Name]; ok {
		return types.Of(types.Custom{Root: n.Name})
	}
	if ed, ok := ev.Global.Enums[n.Name]; ok {
		result := types.NeverType()
		for _, vn := range ed.Order {
			result = types.Unify(result, types.Of(ed.Variants[vn]))
		}
		return result
	}
	if _, ok := ev.Global.ObjectTypes[n.Name]; ok {
		return types.Of(types.Object{Name: n.Name})
	}
	return types.NeverType()
}
