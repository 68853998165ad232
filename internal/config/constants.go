// Package config holds process-wide constants shared by the CLI, the demo
// host environment and the wire-export server. The core frontend
// (lexer/parser/ast/types/symbols/checker/evaluator) does not depend on it.
package config

// Version is the current ColloML toolchain version.
var Version = "0.1.0"

// SourceFileExt is the canonical ColloML source file extension.
const SourceFileExt = ".colloml"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".colloml", ".cml"}

// HasSourceExt returns true if path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name, if present.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// IsTestMode normalizes non-deterministic-looking output (e.g. generated
// names) for golden-file tests. Set once at process startup.
var IsTestMode = false

// MaxRawStringTildes is the largest tilde run the raw-string syntax accepts.
const MaxRawStringTildes = 5
