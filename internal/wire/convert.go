package wire

import (
	"fmt"

	"github.com/jhump/protoreflect/dynamic"

	"github.com/collomatique/colloml/internal/evaluator"
)

// valueToMessage converts a ColloML runtime value into a self-describing
// wire Value message, grounded on the teacher's objectToDynamicMessage/
// convertToProtoValue. StructVal, EnumVal, *LinExprVal and ConstraintVal
// have no typed field and are sent as their Inspect() rendering
// (raw_value), also when one of them is the top-level result of an
// evaluation; recorded constraints are encoded separately by
// constraintToMessage.
func valueToMessage(v evaluator.Value) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(valueDesc)
	switch vv := v.(type) {
	case evaluator.IntVal:
		if err := msg.TrySetFieldByName("int_value", int32(vv)); err != nil {
			return nil, err
		}
	case evaluator.BoolVal:
		if err := msg.TrySetFieldByName("bool_value", bool(vv)); err != nil {
			return nil, err
		}
	case evaluator.StringVal:
		if err := msg.TrySetFieldByName("string_value", string(vv)); err != nil {
			return nil, err
		}
	case evaluator.NoneVal:
		if err := msg.TrySetFieldByName("none_value", true); err != nil {
			return nil, err
		}
	case evaluator.ListVal:
		lm, err := valueListToMessage(vv.Elems)
		if err != nil {
			return nil, err
		}
		if err := msg.TrySetFieldByName("list_value", lm); err != nil {
			return nil, err
		}
	case evaluator.TupleVal:
		lm, err := valueListToMessage(vv.Elems)
		if err != nil {
			return nil, err
		}
		if err := msg.TrySetFieldByName("tuple_value", lm); err != nil {
			return nil, err
		}
	case evaluator.ObjectVal:
		om := dynamic.NewMessage(objectRefDesc)
		if err := om.TrySetFieldByName("type_name", vv.TypeName); err != nil {
			return nil, err
		}
		if err := om.TrySetFieldByName("handle", fmt.Sprint(vv.Handle)); err != nil {
			return nil, err
		}
		if err := msg.TrySetFieldByName("object_value", om); err != nil {
			return nil, err
		}
	case evaluator.CustomVal:
		return valueToMessage(vv.Inner)
	default:
		if err := msg.TrySetFieldByName("raw_value", v.Inspect()); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func valueListToMessage(elems []evaluator.Value) (*dynamic.Message, error) {
	lm := dynamic.NewMessage(valueListDesc)
	msgs := make([]interface{}, len(elems))
	for i, e := range elems {
		em, err := valueToMessage(e)
		if err != nil {
			return nil, err
		}
		msgs[i] = em
	}
	if err := lm.TrySetFieldByName("elems", msgs); err != nil {
		return nil, err
	}
	return lm, nil
}

// messageToValue decodes a wire Value message into a ColloML runtime
// value. The encoding is self-describing (the populated oneof field
// names the shape), so no declared static type is needed to decode it —
// unlike the teacher's objectToDynamicMessage, which needs a
// FieldDescriptor to know the target proto type, this direction only
// ever consumes wire.Value messages our own schema defines.
func messageToValue(msg *dynamic.Message) (evaluator.Value, error) {
	if msg == nil {
		return evaluator.NoneVal{}, nil
	}
	switch which := msg.WhichOneof("kind"); which {
	case "int_value":
		v, err := msg.TryGetFieldByName("int_value")
		if err != nil {
			return nil, err
		}
		return evaluator.IntVal(v.(int32)), nil
	case "bool_value":
		v, err := msg.TryGetFieldByName("bool_value")
		if err != nil {
			return nil, err
		}
		return evaluator.BoolVal(v.(bool)), nil
	case "string_value":
		v, err := msg.TryGetFieldByName("string_value")
		if err != nil {
			return nil, err
		}
		return evaluator.StringVal(v.(string)), nil
	case "none_value":
		return evaluator.NoneVal{}, nil
	case "list_value":
		elems, err := messageListToValues(msg, "list_value")
		if err != nil {
			return nil, err
		}
		return evaluator.ListVal{Elems: elems}, nil
	case "tuple_value":
		elems, err := messageListToValues(msg, "tuple_value")
		if err != nil {
			return nil, err
		}
		return evaluator.TupleVal{Elems: elems}, nil
	case "object_value":
		raw, err := msg.TryGetFieldByName("object_value")
		if err != nil {
			return nil, err
		}
		om, ok := raw.(*dynamic.Message)
		if !ok {
			return nil, fmt.Errorf("wire: object_value field is not a message")
		}
		typeName, err := om.TryGetFieldByName("type_name")
		if err != nil {
			return nil, err
		}
		handle, err := om.TryGetFieldByName("handle")
		if err != nil {
			return nil, err
		}
		return evaluator.ObjectVal{TypeName: typeName.(string), Handle: handle.(string)}, nil
	case "raw_value":
		return nil, fmt.Errorf("wire: raw_value is not decodable back into a structured ColloML value")
	default:
		return evaluator.NoneVal{}, nil
	}
}

func messageListToValues(msg *dynamic.Message, field string) ([]evaluator.Value, error) {
	raw, err := msg.TryGetFieldByName(field)
	if err != nil {
		return nil, err
	}
	lm, ok := raw.(*dynamic.Message)
	if !ok {
		return nil, fmt.Errorf("wire: %s field is not a message", field)
	}
	elemsRaw, err := lm.TryGetFieldByName("elems")
	if err != nil {
		return nil, err
	}
	slice, ok := elemsRaw.([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]evaluator.Value, len(slice))
	for i, e := range slice {
		em, ok := e.(*dynamic.Message)
		if !ok {
			return nil, fmt.Errorf("wire: %s[%d] is not a message", field, i)
		}
		v, err := messageToValue(em)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// constraintToMessage renders one recorded constraint (with its
// provenance) into a wire Constraint message: each atomic relation's
// canonical LinExpr form plus comparison operator, and the name of the
// reified function whose evaluation produced it (spec.md §4.5's Origin).
func constraintToMessage(cwo evaluator.ConstraintWithOrigin) (*dynamic.Message, error) {
	cm := dynamic.NewMessage(constraintDesc)
	atoms := make([]interface{}, len(cwo.Constraint.Atoms))
	for i, a := range cwo.Constraint.Atoms {
		am := dynamic.NewMessage(atomicConstraintDesc)
		if err := am.TrySetFieldByName("op", string(a.Op)); err != nil {
			return nil, err
		}
		if err := am.TrySetFieldByName("expr", a.Expr.Inspect()); err != nil {
			return nil, err
		}
		atoms[i] = am
	}
	if err := cm.TrySetFieldByName("atoms", atoms); err != nil {
		return nil, err
	}
	if cwo.Origin != nil {
		if err := cm.TrySetFieldByName("origin_function", cwo.Origin.FnName); err != nil {
			return nil, err
		}
	}
	return cm, nil
}
