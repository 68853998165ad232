package evaluator

// Env is the value-level half of spec.md's host "external collaborator"
// contract: the evaluator never performs I/O or introspects object
// identity itself, it asks the host. (The type-level half — type
// schemas used by the checker — lives in the top-level colloml
// package's Env interface, which embeds this one.)
type Env interface {
	// ObjectsWithType returns every host object of the given declared
	// type, backing `@[T]`. Ordering is the host's responsibility
	// (spec.md Open Question iii): the evaluator does not re-sort.
	ObjectsWithType(typeName string) []Value

	// FieldAccess reads a field off a host object, backing `.field` on
	// an Object-typed value.
	FieldAccess(obj ObjectVal, field string) (Value, bool)

	// PrettyPrint renders a host object for docstring interpolation; ok
	// is false when the host has no renderer for this object, in which
	// case the evaluator falls back to a structural Inspect() form.
	PrettyPrint(obj ObjectVal) (string, bool)
}
