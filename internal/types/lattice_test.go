package types

import "testing"

func TestSubtypeNeverIsBottom(t *testing.T) {
	if !Subtype(NeverType(), IntType()) {
		t.Errorf("Never should be a subtype of everything")
	}
	if Subtype(IntType(), NeverType()) {
		t.Errorf("Int should not be a subtype of Never")
	}
}

func TestSubtypeIntToLinExpr(t *testing.T) {
	if !Subtype(IntType(), LinExprType()) {
		t.Errorf("Int should be a subtype of LinExpr")
	}
	if Subtype(LinExprType(), IntType()) {
		t.Errorf("LinExpr should not be a subtype of Int (one-way)")
	}
}

func TestSubtypeEmptyListToAnyList(t *testing.T) {
	if !Subtype(EmptyListType(), ListType(IntType())) {
		t.Errorf("EmptyList should be a subtype of any List(T)")
	}
	if !Subtype(EmptyListType(), ListType(StringType())) {
		t.Errorf("EmptyList should be a subtype of List(String)")
	}
}

func TestSubtypeListCovariant(t *testing.T) {
	if !Subtype(ListType(IntType()), ListType(Of(Int{}, Bool{}))) {
		t.Errorf("List(Int) should be a subtype of List(Int|Bool)")
	}
	if Subtype(ListType(Of(Int{}, Bool{})), ListType(IntType())) {
		t.Errorf("List(Int|Bool) should not be a subtype of List(Int)")
	}
}

func TestSubtypeUnionLHS(t *testing.T) {
	union := Of(Int{}, NoneT{})
	if !Subtype(union, Of(Int{}, NoneT{}, Bool{})) {
		t.Errorf("?Int should be a subtype of Int|None|Bool")
	}
	if Subtype(union, IntType()) {
		t.Errorf("?Int should not be a subtype of Int alone")
	}
}

func TestSubtypeCustomTypesDistinct(t *testing.T) {
	a := Of(Custom{Root: "Meters"})
	b := Of(Custom{Root: "Feet"})
	if Subtype(a, b) || Subtype(b, a) {
		t.Errorf("distinct custom types with equal underlyings must not be mutual subtypes")
	}
}

func TestUnifyNormalizesDuplicatesAndEmptyList(t *testing.T) {
	u := Unify(EmptyListType(), ListType(IntType()))
	if u.String() != "[Int]" {
		t.Errorf("Unify(EmptyList, [Int]) = %s, want [Int]", u.String())
	}
	u2 := Unify(IntType(), IntType())
	if u2.String() != "Int" {
		t.Errorf("Unify(Int, Int) = %s, want Int", u2.String())
	}
}

func TestUnifyDropsNever(t *testing.T) {
	u := Unify(NeverType(), IntType())
	if u.String() != "Int" {
		t.Errorf("Unify(Never, Int) = %s, want Int", u.String())
	}
}

func TestDiffRoundTrip(t *testing.T) {
	// Property 4: for any A and any B <= A, unify(A\B, B) == A after normalization.
	a := Of(Int{}, Bool{}, NoneT{})
	b := Of(NoneT{})
	diff := Diff(a, b)
	if diff.String() != "Bool | Int" {
		t.Errorf("Diff(Int|Bool|None, None) = %s, want Bool | Int", diff.String())
	}
	rt := Unify(diff, b)
	if rt.String() != a.String() {
		t.Errorf("round-trip Unify(Diff(A,B),B) = %s, want %s", rt.String(), a.String())
	}
}

func TestDiffToNeverWhenFullyRemoved(t *testing.T) {
	a := Of(NoneT{})
	d := Diff(a, a)
	if !d.IsNever() {
		t.Errorf("Diff(A,A) should be Never, got %s", d.String())
	}
}

func TestNarrowingDirections(t *testing.T) {
	opt := OptionalOf(IntType())
	if !CanNarrowTo(opt, IntType()) {
		t.Errorf("Int should be a valid cast? / cast! target of ?Int")
	}
	if CanNarrowTo(IntType(), opt) {
		t.Errorf("?Int should not be a valid narrowing target of Int (widening, not narrowing)")
	}
	if !CanWidenTo(IntType(), opt) {
		t.Errorf("Int should be a valid `as ?Int` target")
	}
}

func TestIsArithmeticAndListLike(t *testing.T) {
	if !Of(Int{}, LinExpr{}).IsArithmetic() {
		t.Errorf("Int|LinExpr should be arithmetic")
	}
	if Of(Int{}, Bool{}).IsArithmetic() {
		t.Errorf("Int|Bool should not be arithmetic")
	}
	if !Of(EmptyList{}, List{Elem: IntType()}).IsListLike() {
		t.Errorf("EmptyList|List(Int) should be list-like")
	}
}

func TestElementTypeUnifiesAcrossListVariants(t *testing.T) {
	ut := Of(List{Elem: IntType()}, List{Elem: BoolType()})
	elem, ok := ut.ElementType()
	if !ok {
		t.Fatalf("expected list-like")
	}
	if elem.String() != "Bool | Int" {
		t.Errorf("element type = %s, want Bool | Int", elem.String())
	}
}
