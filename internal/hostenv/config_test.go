package hostenv

import "testing"

func TestParseConfig(t *testing.T) {
	data := []byte(`
objects:
  - name: Student
    table: students
    display: name
    fields:
      - name: name
        column: name
        kind: string
      - name: age
        column: age
        kind: int
extern_vars:
  - name: chosen
    params: [Student]
`)
	cfg, err := ParseConfig(data, "schema.yaml")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(cfg.Objects) != 1 || cfg.Objects[0].Name != "Student" {
		t.Fatalf("unexpected objects: %+v", cfg.Objects)
	}
	if len(cfg.Objects[0].Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(cfg.Objects[0].Fields))
	}
	if len(cfg.ExternVars) != 1 || cfg.ExternVars[0].Name != "chosen" {
		t.Fatalf("unexpected extern vars: %+v", cfg.ExternVars)
	}
}

func TestParseConfigRejectsDuplicateObjectName(t *testing.T) {
	data := []byte(`
objects:
  - name: Student
    table: students
  - name: Student
    table: other_students
`)
	if _, err := ParseConfig(data, "schema.yaml"); err == nil {
		t.Fatalf("expected a validation error for a duplicate object name")
	}
}

func TestParseConfigRejectsFieldMissingKind(t *testing.T) {
	data := []byte(`
objects:
  - name: Student
    table: students
    fields:
      - name: age
        column: age
`)
	if _, err := ParseConfig(data, "schema.yaml"); err == nil {
		t.Fatalf("expected a validation error for a field missing its kind")
	}
}
