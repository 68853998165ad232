// Package wire serves a checked ColloML program's evaluation results
// over gRPC to an external ILP-solver process. It is a thin layer on
// top of the public colloml.CheckedAST API — it never reaches into the
// checker or evaluator internals — grounded on the teacher's
// internal/evaluator/builtins_grpc.go, which parses .proto descriptors
// at runtime via protoreflect/desc/protoparse and builds grpc.ServiceDesc
// by hand rather than depending on protoc-generated code.
package wire

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

// schemaSource is the hand-authored schema for the wire protocol: one
// request/response pair generic over every ColloML function, plus a
// self-describing Value message so a single Solver service can carry
// any ColloML value without per-function generated types.
const schemaSource = `
syntax = "proto3";

package colloml.wire;

message ObjectRef {
  string type_name = 1;
  string handle = 2;
}

message ValueList {
  repeated Value elems = 1;
}

message Value {
  oneof kind {
    int32 int_value = 1;
    bool bool_value = 2;
    string string_value = 3;
    ValueList list_value = 4;
    ValueList tuple_value = 5;
    ObjectRef object_value = 6;
    bool none_value = 7;
    string raw_value = 8;
  }
}

message AtomicConstraint {
  string op = 1;
  string expr = 2;
}

message Constraint {
  repeated AtomicConstraint atoms = 1;
  string origin_function = 2;
}

message EvalRequest {
  string function = 1;
  repeated Value args = 2;
}

message EvalResponse {
  Value result = 1;
  repeated Constraint constraints = 2;
}

service Solver {
  rpc Eval(EvalRequest) returns (EvalResponse);
  rpc EvalWithVariables(EvalRequest) returns (EvalResponse);
}
`

const schemaFileName = "colloml_wire.proto"

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*desc.FileDescriptor)

	valueDesc            *desc.MessageDescriptor
	valueListDesc        *desc.MessageDescriptor
	objectRefDesc        *desc.MessageDescriptor
	constraintDesc       *desc.MessageDescriptor
	atomicConstraintDesc *desc.MessageDescriptor
	evalRequestDesc      *desc.MessageDescriptor
	evalResponseDesc     *desc.MessageDescriptor
	solverServiceDesc    *desc.ServiceDescriptor
)

// init parses the built-in schema once at process start, the same way
// builtinGrpcLoadProto parses a host-supplied .proto file — except this
// schema is fixed and embedded, since the wire package serves exactly
// one generic Solver service rather than arbitrary host-defined ones.
func init() {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			schemaFileName: schemaSource,
		}),
	}
	fds, err := parser.ParseFiles(schemaFileName)
	if err != nil {
		panic(fmt.Sprintf("wire: failed to parse built-in schema: %v", err))
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	for _, fd := range fds {
		registry[fd.GetName()] = fd
	}

	fd := fds[0]
	valueDesc = fd.FindMessage("colloml.wire.Value")
	valueListDesc = fd.FindMessage("colloml.wire.ValueList")
	objectRefDesc = fd.FindMessage("colloml.wire.ObjectRef")
	constraintDesc = fd.FindMessage("colloml.wire.Constraint")
	atomicConstraintDesc = fd.FindMessage("colloml.wire.AtomicConstraint")
	evalRequestDesc = fd.FindMessage("colloml.wire.EvalRequest")
	evalResponseDesc = fd.FindMessage("colloml.wire.EvalResponse")
	solverServiceDesc = fd.FindService("colloml.wire.Solver")
	if valueDesc == nil || evalRequestDesc == nil || evalResponseDesc == nil || solverServiceDesc == nil {
		panic("wire: built-in schema missing an expected message or service")
	}
}

// findService looks up a service descriptor by fully-qualified name in
// the registry, mirroring the teacher's findServiceDescriptor — kept as
// a registry lookup rather than a bare package var so a future version
// serving host-supplied .proto files alongside this one can reuse it.
func findService(name string) *desc.ServiceDescriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, fd := range registry {
		if sd := fd.FindService(name); sd != nil {
			return sd
		}
	}
	return nil
}
