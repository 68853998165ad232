package wire

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/collomatique/colloml"
	"github.com/collomatique/colloml/internal/clilog"
)

// Server exposes a single checked ColloML program's entry functions
// over gRPC as the colloml.wire.Solver service. It reuses the one
// in-process CheckedAST (read-only) across every call and constructs a
// fresh EvalHistory per RPC, per SPEC_FULL.md §5 — there is no
// server-wide mutable state beyond the grpc.Server itself, mirroring
// the teacher's GrpcServerObject/grpcRegister pattern but with a fixed
// service descriptor instead of a host-registered implementation
// object.
type Server struct {
	grpcServer *grpc.Server
	checked    *colloml.CheckedAST
	env        colloml.Env
}

// NewServer wraps a checked program and the Env it was checked against.
// The Env is also the one passed to every evaluation this server
// serves, so it must be safe to call concurrently from many goroutines
// (spec.md's Env contract places no such requirement on the core, but a
// server that fans RPCs out across goroutines does).
func NewServer(checked *colloml.CheckedAST, env colloml.Env) *Server {
	s := &Server{
		grpcServer: grpc.NewServer(),
		checked:    checked,
		env:        env,
	}
	s.register()
	return s
}

// register builds a grpc.ServiceDesc by hand from the built-in Solver
// service descriptor, one MethodDesc per non-streaming RPC — grounded
// on the teacher's builtinGrpcRegister, which does the same from a
// desc.ServiceDescriptor parsed at runtime rather than a generated
// *_grpc.pb.go.
func (s *Server) register() {
	sd := &grpc.ServiceDesc{
		ServiceName: solverServiceDesc.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Metadata:    schemaFileName,
	}

	for _, method := range solverServiceDesc.GetMethods() {
		if method.IsClientStreaming() || method.IsServerStreaming() {
			continue // the Solver service is unary-only; no streaming methods are declared
		}
		methodName := method.GetName()
		sd.Methods = append(sd.Methods, grpc.MethodDesc{
			MethodName: methodName,
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
				server := srv.(*Server)
				return server.handle(ctx, methodName, dec)
			},
		})
	}

	s.grpcServer.RegisterService(sd, s)
}

// handle decodes an EvalRequest, dispatches to the named ColloML
// function through the public CheckedAST API, and encodes the result
// back into an EvalResponse — the gRPC analogue of the teacher's
// FunxyGrpcHandler.HandleUnary.
func (s *Server) handle(ctx context.Context, methodName string, dec func(interface{}) error) (interface{}, error) {
	// A per-call request id, logged alongside the dispatched function
	// name so an operator can correlate a slow or failing RPC in
	// server logs — grounded on the teacher's use of uuid for LSP
	// session/document identifiers (cmd/lsp/server.go); the wire
	// service has no durable session concept of its own, so the id is
	// scoped to a single call rather than a connection.
	reqID := uuid.New()

	reqMsg := dynamic.NewMessage(evalRequestDesc)
	if err := dec(reqMsg); err != nil {
		return nil, err
	}

	fnName, err := reqMsg.TryGetFieldByName("function")
	if err != nil {
		return nil, err
	}
	argsRaw, err := reqMsg.TryGetFieldByName("args")
	if err != nil {
		return nil, err
	}
	argMsgs, _ := argsRaw.([]interface{})
	args := make([]colloml.Value, len(argMsgs))
	for i, am := range argMsgs {
		m, ok := am.(*dynamic.Message)
		if !ok {
			return nil, fmt.Errorf("wire: args[%d] is not a message", i)
		}
		v, err := messageToValue(m)
		if err != nil {
			return nil, fmt.Errorf("wire: decoding args[%d]: %w", i, err)
		}
		args[i] = v
	}

	name := fnName.(string)
	_, _, pub, ok := s.checked.EntrySignature(name)
	if !ok {
		clilog.Default.Error("%s %s: unknown function %q", reqID, methodName, name)
		return nil, fmt.Errorf("wire: unknown function %q", name)
	}
	if !pub {
		clilog.Default.Error("%s %s: %q is not pub", reqID, methodName, name)
		return nil, fmt.Errorf("wire: function %q is not pub, and cannot be called as an entry point", name)
	}
	clilog.Default.Info("%s %s %s(%d args)", reqID, methodName, name, len(args))

	var result colloml.Value
	var constraints []interface{}

	switch methodName {
	case "EvalWithVariables":
		v, defs, evalErr := s.checked.EvalFnWithVariables(s.env, name, args)
		if evalErr != nil {
			return nil, evalErr
		}
		result = v
		for _, cwo := range defs.Constraints {
			cm, err := constraintToMessage(cwo)
			if err != nil {
				return nil, err
			}
			constraints = append(constraints, cm)
		}
	default: // "Eval"
		v, evalErr := s.checked.EvalFn(s.env, name, args)
		if evalErr != nil {
			return nil, evalErr
		}
		result = v
	}

	resultMsg, err := valueToMessage(result)
	if err != nil {
		return nil, err
	}

	respMsg := dynamic.NewMessage(evalResponseDesc)
	if err := respMsg.TrySetFieldByName("result", resultMsg); err != nil {
		return nil, err
	}
	if constraints != nil {
		if err := respMsg.TrySetFieldByName("constraints", constraints); err != nil {
			return nil, err
		}
	}
	return respMsg, nil
}

// Serve blocks, accepting connections on addr until the listener errs
// or the server is stopped.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("wire: listen on %s: %w", addr, err)
	}
	return s.grpcServer.Serve(lis)
}

// Stop gracefully stops the underlying grpc.Server, letting in-flight
// RPCs finish.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}
