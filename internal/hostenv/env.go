package hostenv

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/collomatique/colloml"
	"github.com/collomatique/colloml/internal/evaluator"
	"github.com/collomatique/colloml/internal/types"
)

// Open opens a SQLite database through the pure-Go modernc.org/sqlite
// driver, registered by this package's blank import above.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite", dsn)
}

// Env is a demo colloml.Env backed by one SQL table per declared
// object type. Objects are addressed by SQLite rowid; field_access and
// pretty_print issue one query per call rather than caching, which is
// adequate for the demo/test scale this package targets (a real host
// would cache or batch as its own access patterns require).
type Env struct {
	db     *sql.DB
	cfg    *Config
	byName map[string]ObjectConfig
}

func NewEnv(db *sql.DB, cfg *Config) *Env {
	byName := make(map[string]ObjectConfig, len(cfg.Objects))
	for _, o := range cfg.Objects {
		byName[o.Name] = o
	}
	return &Env{db: db, cfg: cfg, byName: byName}
}

func (e *Env) objectConfig(name string) (ObjectConfig, bool) {
	oc, ok := e.byName[name]
	return oc, ok
}

func kindToType(kind string) types.ExprType {
	switch kind {
	case "int":
		return types.Of(types.Int{})
	case "bool":
		return types.Of(types.Bool{})
	case "string":
		return types.Of(types.String{})
	default:
		return types.Of(types.Object{Name: kind})
	}
}

// TypeSchemas implements colloml.Env.
func (e *Env) TypeSchemas() []colloml.ObjectTypeSchema {
	out := make([]colloml.ObjectTypeSchema, len(e.cfg.Objects))
	for i, o := range e.cfg.Objects {
		fields := make([]colloml.FieldSchema, len(o.Fields))
		for j, f := range o.Fields {
			fields[j] = colloml.FieldSchema{Name: f.Name, Type: kindToType(f.Kind)}
		}
		out[i] = colloml.ObjectTypeSchema{Name: o.Name, Fields: fields}
	}
	return out
}

// ExternVarSchemas implements colloml.Env.
func (e *Env) ExternVarSchemas() []colloml.ExternVarSchema {
	out := make([]colloml.ExternVarSchema, len(e.cfg.ExternVars))
	for i, v := range e.cfg.ExternVars {
		params := make([]types.ExprType, len(v.Params))
		for j, p := range v.Params {
			params[j] = kindToType(p)
		}
		out[i] = colloml.ExternVarSchema{Name: v.Name, Params: params}
	}
	return out
}

// ObjectsWithType implements evaluator.Env, backing `@[T]`. Rows are
// returned ordered by rowid, giving a deterministic iteration order
// across runs against the same database (spec.md Open Question iii).
func (e *Env) ObjectsWithType(typeName string) []evaluator.Value {
	oc, ok := e.objectConfig(typeName)
	if !ok {
		return nil
	}
	rows, err := e.db.Query(fmt.Sprintf("SELECT rowid FROM %s ORDER BY rowid", oc.Table))
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []evaluator.Value
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			continue
		}
		out = append(out, evaluator.ObjectVal{TypeName: typeName, Handle: id})
	}
	return out
}

// FieldAccess implements evaluator.Env, backing `.field` on an
// Object-typed value.
func (e *Env) FieldAccess(obj evaluator.ObjectVal, field string) (evaluator.Value, bool) {
	oc, ok := e.objectConfig(obj.TypeName)
	if !ok {
		return nil, false
	}
	var fc *FieldConfig
	for i := range oc.Fields {
		if oc.Fields[i].Name == field {
			fc = &oc.Fields[i]
			break
		}
	}
	if fc == nil {
		return nil, false
	}
	id, ok := obj.Handle.(int64)
	if !ok {
		return nil, false
	}
	row := e.db.QueryRow(fmt.Sprintf("SELECT %s FROM %s WHERE rowid = ?", fc.Column, oc.Table), id)
	switch fc.Kind {
	case "int":
		var v int64
		if err := row.Scan(&v); err != nil {
			return nil, false
		}
		return evaluator.IntVal(int32(v)), true
	case "bool":
		var v bool
		if err := row.Scan(&v); err != nil {
			return nil, false
		}
		return evaluator.BoolVal(v), true
	case "string":
		var v string
		if err := row.Scan(&v); err != nil {
			return nil, false
		}
		return evaluator.StringVal(v), true
	default:
		var v int64
		if err := row.Scan(&v); err != nil {
			return nil, false
		}
		return evaluator.ObjectVal{TypeName: fc.Kind, Handle: v}, true
	}
}

// PrettyPrint implements evaluator.Env, used by docstring
// interpolation. Renders the configured Display field if one is set,
// otherwise a "Type#rowid" fallback.
func (e *Env) PrettyPrint(obj evaluator.ObjectVal) (string, bool) {
	oc, ok := e.objectConfig(obj.TypeName)
	if !ok {
		return "", false
	}
	if oc.Display == "" {
		id, _ := obj.Handle.(int64)
		return fmt.Sprintf("%s#%d", obj.TypeName, id), true
	}
	v, ok := e.FieldAccess(obj, oc.Display)
	if !ok {
		return "", false
	}
	if sv, ok := v.(evaluator.StringVal); ok {
		return string(sv), true
	}
	return v.Inspect(), true
}

// TypeName implements colloml.Env.
func (e *Env) TypeName(obj evaluator.ObjectVal) string { return obj.TypeName }
