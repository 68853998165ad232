package symbols

import (
	"testing"

	"github.com/collomatique/colloml/internal/ast"
)

func name(n string) ast.TypeExpr { return &ast.TypeName{Name: n} }

func TestResolveAliasCyclesDetectsSelfCycle(t *testing.T) {
	g := NewGlobalEnv()
	g.Aliases["A"] = &TypeAliasDef{Name: "A", RawUnderlying: name("A")}
	_, cycles := g.ResolveAliasCycles()
	if len(cycles) != 1 || cycles[0].Names[0] != "A" {
		t.Fatalf("expected a self-cycle on A, got %+v", cycles)
	}
}

func TestResolveAliasCyclesDetectsMutualCycle(t *testing.T) {
	g := NewGlobalEnv()
	g.Aliases["A"] = &TypeAliasDef{Name: "A", RawUnderlying: name("B")}
	g.Aliases["B"] = &TypeAliasDef{Name: "B", RawUnderlying: name("A")}
	_, cycles := g.ResolveAliasCycles()
	if len(cycles) != 1 || len(cycles[0].Names) != 2 {
		t.Fatalf("expected one 2-name cycle, got %+v", cycles)
	}
}

func TestResolveAliasCyclesOrdersAcyclicChain(t *testing.T) {
	g := NewGlobalEnv()
	g.Aliases["A"] = &TypeAliasDef{Name: "A", RawUnderlying: &ast.TypeList{Elem: name("B")}}
	g.Aliases["B"] = &TypeAliasDef{Name: "B", RawUnderlying: name("Int")}
	order, cycles := g.ResolveAliasCycles()
	if len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %+v", cycles)
	}
	posA, posB := -1, -1
	for i, n := range order {
		if n == "A" {
			posA = i
		}
		if n == "B" {
			posB = i
		}
	}
	if posB > posA {
		t.Errorf("B must resolve before A (A depends on B), order=%v", order)
	}
}
