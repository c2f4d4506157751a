// Package maincmd implements the command dispatch for the lox binary:
// argument parsing, usage text, and the reflection-based lookup from a
// command name to the Cmd method that implements it, the same shape as
// the teacher's own internal/maincmd.Cmd (buildCmds), repointed at the
// four commands spec.md's CLI surface names instead of the teacher's
// parse/resolve/tokenize triad.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "lox"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<arg>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the Lox programming language.

The <command> can be one of:
       run <path>                Compile and execute a script file.
       repl                      Start an interactive read-eval-print loop.
       eval <source>             Compile and execute a source string.
       selftest                  Run the built-in test battery and report
                                 the results.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Runtime tracing and GC behavior are controlled by LOX_* environment
variables; see RuntimeConfig in internal/maincmd/config.go.

More information on the lox repository:
       https://github.com/mna/loxvm
`, binName)
)

// Exit codes, matching the reference clox CLI's convention (spec.md §6).
const (
	ExitSuccess      = 0
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitFileError    = 74
)

// Cmd holds the parsed top-level flags and dispatches to the subcommand
// method matching the first positional argument.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if cmdName == "run" && len(c.args[1:]) != 1 {
		return errors.New("run: exactly one script path must be provided")
	}
	if cmdName == "eval" && len(c.args[1:]) != 1 {
		return errors.New("eval: exactly one source string must be provided")
	}
	return nil
}

// Main parses args, dispatches to the selected command, and returns the
// process exit code. Commands that fail with a specific exit code (a
// compile error, a runtime error, a file-read failure) wrap it in an
// *exitError; anything else maps to mainer.Failure.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return mainer.ExitCode(ee.code)
		}
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of strings
// as input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

// exitError pairs an error with the specific process exit code it must
// produce, so Main doesn't need to special-case every command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}
