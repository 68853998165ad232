// Package clilog is the ambient logger for the CLI and wire-export
// layers. It is deliberately not part of the core: spec.md's §7 error
// handling design returns diagnostics as values, never logs them, so
// this package exists only for *operational* events (a file was loaded,
// an RPC was received, an evaluation took N) — grounded on the
// teacher's own `fmt.Fprintf(os.Stderr, "...: %s\n", ...)` convention in
// cmd/funxy/main.go, generalized into leveled, timestamped lines
// instead of one-off Fprintf calls scattered through the CLI.
package clilog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

type Level int

const (
	Info Level = iota
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "?"
	}
}

// Logger writes leveled, timestamped lines to an output stream,
// colorizing the level tag when the stream is a real terminal.
type Logger struct {
	out    io.Writer
	color  bool
	prefix string
}

// New builds a Logger writing to out, with prefix prepended to every
// line (e.g. the subcommand name). Color is auto-detected via isatty,
// the same check the teacher's CLI does before colorizing diagnostic
// spans (builtins_term.go).
func New(out io.Writer, prefix string) *Logger {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{out: out, color: color, prefix: prefix}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	tag := level.String()
	if l.color {
		tag = colorFor(level) + tag + "\x1b[0m"
	}
	ts := time.Now().UTC().Format("15:04:05.000")
	if l.prefix != "" {
		fmt.Fprintf(l.out, "%s [%s] %s: %s\n", ts, tag, l.prefix, msg)
		return
	}
	fmt.Fprintf(l.out, "%s [%s] %s\n", ts, tag, msg)
}

func colorFor(level Level) string {
	switch level {
	case Warn:
		return "\x1b[33m"
	case Error:
		return "\x1b[31m"
	default:
		return "\x1b[36m"
	}
}

func (l *Logger) Info(format string, args ...interface{})  { l.log(Info, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(Warn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(Error, format, args...) }

// Default is a Logger writing to stderr with no prefix, for commands
// that don't need per-subcommand tagging.
var Default = New(os.Stderr, "")
