package evaluator

// Origin records the provenance of a value produced by a function call:
// which function, with which (coerced) arguments, and the function's
// docstring rendered against those arguments — grounded on the Rust
// original's `Origin`/`EvalHistory::add_fn_to_call_history` (original_source/
// collo-ml/src/eval.rs).
type Origin struct {
	FnName         string
	Args           []Value
	PrettyDocLines []string
}

// ConstraintWithOrigin pairs a constraint with the call chain that
// produced it, so a solver-facing report can explain why a constraint
// exists (spec.md §4.5).
type ConstraintWithOrigin struct {
	Constraint ConstraintVal
	Origin     *Origin
}

// WithOrigin is a value carrying provenance. Not every value has one —
// only results of memoized function calls do.
type WithOrigin struct {
	Value  Value
	Origin *Origin // nil for values with no call provenance (literals, params)
}
