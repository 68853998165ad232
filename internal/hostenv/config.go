// Package hostenv is a demo implementation of the top-level colloml.Env
// contract, backing object types and field access with a SQL table per
// type and loading its own name/type mapping from a YAML config file —
// grounded on the teacher's internal/ext.Config
// (_examples/funvibe-funxy/internal/ext/config.go): a yaml.v3-tagged
// struct tree, loaded with os.ReadFile + yaml.Unmarshal, validated once
// at load time rather than field-by-field at use time.
//
// This package is illustrative, not the only way to implement Env: a
// real host's object model (the scheduling/timetabling domain) would
// usually already have its own persistence layer and would implement
// colloml.Env directly against it rather than going through a generic
// SQL-table mapping like this one.
package hostenv

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level schema.yaml configuration: every object type
// the host exposes (backed by one SQL table each) and every external
// decision-variable family ColloML programs may reference.
type Config struct {
	Objects    []ObjectConfig    `yaml:"objects"`
	ExternVars []ExternVarConfig `yaml:"extern_vars"`
}

// ObjectConfig declares one object type: its ColloML-visible name, the
// SQL table backing it, and the ordered fields exposed through
// field_access. Rows are addressed by their SQLite rowid.
type ObjectConfig struct {
	Name   string        `yaml:"name"`
	Table  string        `yaml:"table"`
	Fields []FieldConfig `yaml:"fields"`
	// Display names the field used to render the object for docstring
	// interpolation (pretty_print); if empty, objects render as "Type#rowid".
	Display string `yaml:"display,omitempty"`
}

// FieldConfig maps one ColloML-visible field name to a SQL column and
// its scalar ColloML type.
type FieldConfig struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
	// Kind is one of "int", "bool", "string", or an object type name
	// declared elsewhere in Objects (a foreign-key column holding
	// another object type's rowid).
	Kind string `yaml:"kind"`
}

// ExternVarConfig declares one external decision-variable family: a
// name and the (object-type-or-primitive) kinds of its parameters.
type ExternVarConfig struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
}

// LoadConfig reads and parses a schema.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading host schema %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses schema.yaml content from bytes; path is used only
// in error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing host schema %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate(path string) error {
	seenObjects := make(map[string]bool, len(c.Objects))
	for _, o := range c.Objects {
		if o.Name == "" || o.Table == "" {
			return fmt.Errorf("%s: object entries require both name and table", path)
		}
		if seenObjects[o.Name] {
			return fmt.Errorf("%s: object type %q declared more than once", path, o.Name)
		}
		seenObjects[o.Name] = true
		seenFields := make(map[string]bool, len(o.Fields))
		for _, f := range o.Fields {
			if f.Name == "" || f.Column == "" || f.Kind == "" {
				return fmt.Errorf("%s: object %q has a field missing name/column/kind", path, o.Name)
			}
			if seenFields[f.Name] {
				return fmt.Errorf("%s: object %q has duplicate field %q", path, o.Name, f.Name)
			}
			seenFields[f.Name] = true
		}
	}
	seenVars := make(map[string]bool, len(c.ExternVars))
	for _, v := range c.ExternVars {
		if v.Name == "" {
			return fmt.Errorf("%s: extern_vars entry missing a name", path)
		}
		if seenVars[v.Name] {
			return fmt.Errorf("%s: external variable %q declared more than once", path, v.Name)
		}
		seenVars[v.Name] = true
	}
	return nil
}
