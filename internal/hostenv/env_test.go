package hostenv

import (
	"database/sql"
	"testing"

	"github.com/collomatique/colloml/internal/evaluator"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(`CREATE TABLE students (name TEXT, age INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO students (name, age) VALUES (?, ?), (?, ?)`,
		"Alice", 20, "Bob", 21); err != nil {
		t.Fatalf("seed rows: %v", err)
	}
	return db
}

func TestEnvObjectsWithTypeOrderedByRowid(t *testing.T) {
	db := newTestDB(t)
	cfg := &Config{Objects: []ObjectConfig{{
		Name:    "Student",
		Table:   "students",
		Display: "name",
		Fields: []FieldConfig{
			{Name: "name", Column: "name", Kind: "string"},
			{Name: "age", Column: "age", Kind: "int"},
		},
	}}}
	env := NewEnv(db, cfg)

	objs := env.ObjectsWithType("Student")
	if len(objs) != 2 {
		t.Fatalf("expected 2 students, got %d", len(objs))
	}

	first, ok := objs[0].(evaluator.ObjectVal)
	if !ok {
		t.Fatalf("expected ObjectVal, got %T", objs[0])
	}

	name, ok := env.FieldAccess(first, "name")
	if !ok {
		t.Fatalf("expected name field to resolve")
	}
	if sv, ok := name.(evaluator.StringVal); !ok || string(sv) != "Alice" {
		t.Fatalf("expected Alice, got %v", name)
	}

	age, ok := env.FieldAccess(first, "age")
	if !ok {
		t.Fatalf("expected age field to resolve")
	}
	if iv, ok := age.(evaluator.IntVal); !ok || int32(iv) != 20 {
		t.Fatalf("expected 20, got %v", age)
	}

	pretty, ok := env.PrettyPrint(first)
	if !ok || pretty != "Alice" {
		t.Fatalf("expected pretty-print %q, got %q (ok=%v)", "Alice", pretty, ok)
	}
}

func TestEnvTypeSchemasAndExternVarSchemas(t *testing.T) {
	db := newTestDB(t)
	cfg := &Config{
		Objects: []ObjectConfig{{
			Name:  "Student",
			Table: "students",
			Fields: []FieldConfig{
				{Name: "name", Column: "name", Kind: "string"},
			},
		}},
		ExternVars: []ExternVarConfig{{Name: "chosen", Params: []string{"Student"}}},
	}
	env := NewEnv(db, cfg)

	schemas := env.TypeSchemas()
	if len(schemas) != 1 || schemas[0].Name != "Student" || len(schemas[0].Fields) != 1 {
		t.Fatalf("unexpected type schemas: %+v", schemas)
	}

	vars := env.ExternVarSchemas()
	if len(vars) != 1 || vars[0].Name != "chosen" || len(vars[0].Params) != 1 {
		t.Fatalf("unexpected extern var schemas: %+v", vars)
	}
}
