package wire

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/collomatique/colloml"
	"github.com/collomatique/colloml/internal/evaluator"
)

type noObjectsEnv struct{}

func (noObjectsEnv) TypeSchemas() []colloml.ObjectTypeSchema           { return nil }
func (noObjectsEnv) ExternVarSchemas() []colloml.ExternVarSchema       { return nil }
func (noObjectsEnv) ObjectsWithType(string) []evaluator.Value          { return nil }
func (noObjectsEnv) FieldAccess(evaluator.ObjectVal, string) (evaluator.Value, bool) {
	return nil, false
}
func (noObjectsEnv) PrettyPrint(evaluator.ObjectVal) (string, bool) { return "", false }
func (noObjectsEnv) TypeName(obj evaluator.ObjectVal) string       { return obj.TypeName }

func TestValueToMessageRoundTrip(t *testing.T) {
	cases := []evaluator.Value{
		evaluator.IntVal(42),
		evaluator.BoolVal(true),
		evaluator.StringVal("hi"),
		evaluator.NoneVal{},
		evaluator.ListVal{Elems: []evaluator.Value{evaluator.IntVal(1), evaluator.IntVal(2)}},
		evaluator.TupleVal{Elems: []evaluator.Value{evaluator.IntVal(1), evaluator.StringVal("a")}},
		evaluator.ObjectVal{TypeName: "Student", Handle: "s1"},
	}
	for _, v := range cases {
		msg, err := valueToMessage(v)
		if err != nil {
			t.Fatalf("valueToMessage(%v): %v", v, err)
		}
		got, err := messageToValue(msg)
		if err != nil {
			t.Fatalf("messageToValue: %v", err)
		}
		if got.Inspect() != v.Inspect() {
			t.Fatalf("round-trip mismatch: want %s, got %s", v.Inspect(), got.Inspect())
		}
	}
}

func TestServerEvalOverGRPC(t *testing.T) {
	src := `pub let double(x: Int): Int = x + x;`
	env := noObjectsEnv{}
	checked, cerr := colloml.New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	srv := NewServer(checked, env)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = srv.grpcServer.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	argMsg, err := valueToMessage(evaluator.IntVal(21))
	if err != nil {
		t.Fatalf("valueToMessage: %v", err)
	}
	req := dynamic.NewMessage(evalRequestDesc)
	if err := req.TrySetFieldByName("function", "double"); err != nil {
		t.Fatalf("set function: %v", err)
	}
	if err := req.TrySetFieldByName("args", []interface{}{argMsg}); err != nil {
		t.Fatalf("set args: %v", err)
	}

	resp := dynamic.NewMessage(evalResponseDesc)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Invoke(ctx, "/colloml.wire.Solver/Eval", req, resp); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	resultRaw, err := resp.TryGetFieldByName("result")
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	resultMsg, ok := resultRaw.(*dynamic.Message)
	if !ok {
		t.Fatalf("expected result to be a message, got %T", resultRaw)
	}
	v, err := messageToValue(resultMsg)
	if err != nil {
		t.Fatalf("messageToValue: %v", err)
	}
	iv, ok := v.(evaluator.IntVal)
	if !ok || int32(iv) != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
}

func TestEntrySignatureRejectsNonPubFunction(t *testing.T) {
	src := `
let helper(x: Int): Int = x;
pub let run(x: Int): Int = helper(x);
`
	env := noObjectsEnv{}
	checked, cerr := colloml.New(src, env)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}
	_, _, pub, ok := checked.EntrySignature("helper")
	if !ok {
		t.Fatalf("expected helper to be a known function")
	}
	if pub {
		t.Fatalf("expected helper to not be pub")
	}
}
