// Package render is the small CLI output helper shared by cmd/aqua's
// subcommands: JSON mode, quiet mode, and colorized human-readable text,
// generalized from the teacher's per-file jsonOutput/quietFlag globals and
// printJSON/FatalErrorRespectJSON helpers (cmd/bd/main.go, cmd/bd/errors.go,
// cmd/bd/reflect.go) into one place so commands don't each reimplement the
// three-way branch (spec.md §12 supplemented feature).
package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/aquacoord/aqua/internal/errs"
)

var (
	JSONMode  bool
	QuietMode bool

	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// Green, Yellow, Red, Cyan expose the package's color functions for
// commands that want a one-off colorized fragment inline.
func Green(a ...interface{}) string  { return green(a...) }
func Yellow(a ...interface{}) string { return yellow(a...) }
func Red(a ...interface{}) string    { return red(a...) }
func Cyan(a ...interface{}) string   { return cyan(a...) }

// JSON prints v as indented JSON to stdout (teacher: printJSON).
func JSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		Fatal("%v", err)
	}
	fmt.Println(string(data))
}

// Line prints a plain informational line, suppressed in quiet mode.
func Line(format string, args ...interface{}) {
	if !QuietMode {
		fmt.Printf(format+"\n", args...)
	}
}

// Result prints v as JSON when JSONMode is set, or runs human when it
// isn't — the standard shape for a command that supports --json
// (spec.md §6 "JSON output mode returns a structured object per
// command").
func Result(v interface{}, human func()) {
	if JSONMode {
		JSON(v)
		return
	}
	human()
}

// Fatal writes a human-readable error to stderr and exits 1, or emits
// the spec.md §7 JSON error body ({"error": "<kind>", "message": "..."})
// when JSONMode is set (teacher: FatalErrorRespectJSON).
func Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if JSONMode {
		data, _ := json.MarshalIndent(map[string]string{"error": "", "message": msg}, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}

// FatalErr reports err using its errs.Kind as the JSON "error" field
// (spec.md §7 error taxonomy), exiting with errs.ExitCode(err).
func FatalErr(err error) {
	kind := errs.Kind(err)
	if JSONMode {
		data, _ := json.MarshalIndent(map[string]string{"error": kind, "message": err.Error()}, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	}
	os.Exit(errs.ExitCode(err))
}
