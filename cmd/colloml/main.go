// Command colloml is the CLI front end for the ColloML frontend: it
// parses and type-checks a .colloml source file, optionally evaluates
// one of its pub functions against a demo SQLite-backed environment,
// and can serve a checked program over gRPC for an external solver.
//
// Usage follows the teacher's own cmd/funxy/main.go convention: a
// subcommand plus manually-parsed flags, no flag package or cobra.
//
//	colloml check <file.colloml>
//	colloml eval  <file.colloml> --schema <schema.yaml> --db <path> --fn <name> [args...]
//	colloml serve <file.colloml> --schema <schema.yaml> --db <path> --addr <host:port>
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/collomatique/colloml"
	"github.com/collomatique/colloml/internal/clilog"
	"github.com/collomatique/colloml/internal/config"
	"github.com/collomatique/colloml/internal/diagnostics"
	"github.com/collomatique/colloml/internal/evaluator"
	"github.com/collomatique/colloml/internal/hostenv"
	"github.com/collomatique/colloml/internal/types"
	"github.com/collomatique/colloml/internal/wire"
)

func usage() {
	fmt.Fprintf(os.Stderr, "colloml %s\n", config.Version)
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s check <file%s>\n", os.Args[0], config.SourceFileExt)
	fmt.Fprintf(os.Stderr, "  %s eval  <file%s> --schema <schema.yaml> --db <path> --fn <name> [args...]\n", os.Args[0], config.SourceFileExt)
	fmt.Fprintf(os.Stderr, "  %s serve <file%s> --schema <schema.yaml> --db <path> --addr <host:port>\n", os.Args[0], config.SourceFileExt)
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	file := os.Args[2]
	rest := os.Args[3:]

	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %s\n", file, err)
		os.Exit(1)
	}

	switch cmd {
	case "check":
		runCheck(file, string(source))
	case "eval":
		runEval(file, string(source), rest)
	case "serve":
		runServe(file, string(source), rest)
	default:
		usage()
		os.Exit(2)
	}
}

// flags is a bare-bones `--name value` parser in the teacher's manual
// os.Args-scanning style (cmd/funxy/main.go's `-o`/`--host`/`--embed`
// handling), returning the recognized flags plus any leftover
// positional arguments.
func flags(args []string, names ...string) (map[string]string, []string) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make(map[string]string, len(names))
	var positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if len(a) > 2 && a[:2] == "--" && want[a[2:]] {
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "flag --%s requires a value\n", a[2:])
				os.Exit(2)
			}
			out[a[2:]] = args[i+1]
			i++
			continue
		}
		positional = append(positional, a)
	}
	return out, positional
}

func runCheck(file, source string) {
	_, cerr := colloml.New(source, noopEnv{})
	if cerr != nil {
		printCompileError(file, source, cerr)
		os.Exit(1)
	}
	fmt.Printf("%s: ok\n", file)
}

func runEval(file, source string, rest []string) {
	f, positional := flags(rest, "schema", "db", "fn")
	if f["schema"] == "" || f["db"] == "" || f["fn"] == "" {
		fmt.Fprintln(os.Stderr, "eval requires --schema, --db and --fn")
		os.Exit(2)
	}

	env := openHostEnv(f["schema"], f["db"])
	checked, cerr := colloml.New(source, env)
	if cerr != nil {
		printCompileError(file, source, cerr)
		os.Exit(1)
	}

	params, _, pub, ok := checked.EntrySignature(f["fn"])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown function %q\n", f["fn"])
		os.Exit(1)
	}
	if !pub {
		fmt.Fprintf(os.Stderr, "function %q is not pub\n", f["fn"])
		os.Exit(1)
	}
	args, err := parseScalarArgs(params, positional)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	start := time.Now()
	val, defs, eerr := checked.EvalFnWithVariables(env, f["fn"], args)
	elapsed := time.Since(start)
	if eerr != nil {
		fmt.Fprintf(os.Stderr, "evaluation error: %s\n", eerr.Error())
		os.Exit(1)
	}

	fmt.Printf("%s = %s\n", f["fn"], val.Inspect())
	fmt.Printf("%s constraint(s) recorded in %s\n",
		humanize.Comma(int64(len(defs.Constraints))), elapsed)
	for _, cwo := range defs.Constraints {
		fmt.Printf("  %s\n", cwo.Constraint.Inspect())
	}
}

func runServe(file, source string, rest []string) {
	f, _ := flags(rest, "schema", "db", "addr")
	if f["schema"] == "" || f["db"] == "" || f["addr"] == "" {
		fmt.Fprintln(os.Stderr, "serve requires --schema, --db and --addr")
		os.Exit(2)
	}

	env := openHostEnv(f["schema"], f["db"])
	checked, cerr := colloml.New(source, env)
	if cerr != nil {
		printCompileError(file, source, cerr)
		os.Exit(1)
	}

	srv := wire.NewServer(checked, env)
	clilog.Default.Info("serving %s on %s", file, f["addr"])
	if err := srv.Serve(f["addr"]); err != nil {
		clilog.Default.Error("%s", err)
		os.Exit(1)
	}
}

func openHostEnv(schemaPath, dbPath string) *hostenv.Env {
	cfg, err := hostenv.LoadConfig(schemaPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	db, err := hostenv.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening %s: %s\n", dbPath, err)
		os.Exit(1)
	}
	return hostenv.NewEnv(db, cfg)
}

// parseScalarArgs coerces command-line strings into ColloML values for
// an entry function's declared Int/Bool/String parameters. Any
// collection- or object-typed parameter is expected to be built inside
// the program itself via `@[T]`, not passed positionally on the
// command line.
func parseScalarArgs(params []types.ExprType, positional []string) ([]colloml.Value, error) {
	if len(positional) != len(params) {
		return nil, fmt.Errorf("expected %d argument(s), got %d", len(params), len(positional))
	}
	args := make([]colloml.Value, len(params))
	for i, p := range params {
		simple, ok := p.IsSingle()
		if !ok {
			return nil, fmt.Errorf("argument %d: type %s is not a CLI-passable scalar; build it inside the program via @[T]", i+1, p.String())
		}
		switch simple.(type) {
		case types.Int:
			n, err := strconv.Atoi(positional[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %q is not an Int", i+1, positional[i])
			}
			args[i] = evaluator.IntVal(int32(n))
		case types.Bool:
			b, err := strconv.ParseBool(positional[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %q is not a Bool", i+1, positional[i])
			}
			args[i] = evaluator.BoolVal(b)
		case types.String:
			args[i] = evaluator.StringVal(positional[i])
		default:
			return nil, fmt.Errorf("argument %d: type %s is not a CLI-passable scalar", i+1, p.String())
		}
	}
	return args, nil
}

func renderDiag(file, source string, d diagnostics.Diagnostic) string {
	return diagnostics.Render(file, source, d)
}

func printCompileError(file, source string, cerr *colloml.CompileError) {
	switch {
	case cerr.ParseError != nil:
		fmt.Fprintln(os.Stderr, renderDiag(file, source, *cerr.ParseError))
	case cerr.AstError != nil:
		fmt.Fprintln(os.Stderr, renderDiag(file, source, *cerr.AstError))
	case cerr.InconsistentGlobalEnv != nil:
		fmt.Fprintln(os.Stderr, renderDiag(file, source, *cerr.InconsistentGlobalEnv))
	default:
		for _, d := range cerr.SemanticsErrors {
			fmt.Fprintln(os.Stderr, renderDiag(file, source, d))
		}
		for _, w := range cerr.SemanticsWarnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", renderDiag(file, source, w))
		}
	}
}

// noopEnv is used by `colloml check`, which only needs to parse and
// type-check a program against no host schema at all — any reference to
// an object type or external variable is simply reported as unknown.
type noopEnv struct{}

func (noopEnv) TypeSchemas() []colloml.ObjectTypeSchema     { return nil }
func (noopEnv) ExternVarSchemas() []colloml.ExternVarSchema { return nil }
func (noopEnv) ObjectsWithType(string) []evaluator.Value    { return nil }
func (noopEnv) FieldAccess(evaluator.ObjectVal, string) (evaluator.Value, bool) {
	return nil, false
}
func (noopEnv) PrettyPrint(evaluator.ObjectVal) (string, bool) { return "", false }
func (noopEnv) TypeName(obj evaluator.ObjectVal) string        { return obj.TypeName }
