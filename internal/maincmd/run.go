package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/loxvm/lang/machine"
	"github.com/mna/loxvm/lang/scanner"
)

// Run executes the script at the single path in args, the "r <path>"
// command of the external interface.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return withExitCode(ExitFileError, fmt.Errorf("read %s: %w", args[0], err))
	}
	return interpretToExitCode(ctx, stdio, args[0], src)
}

// interpretToExitCode compiles and runs src, printing diagnostics to
// stdio.Stderr and mapping the failure kind to the process exit code the
// external interface specifies: 65 for a compile error, 70 for a runtime
// error.
func interpretToExitCode(ctx context.Context, stdio mainer.Stdio, filename string, src []byte) error {
	vm := newVM(stdio)
	err := vm.Interpret(ctx, filename, src)
	return reportInterpretError(stdio, err)
}

func reportInterpretError(stdio mainer.Stdio, err error) error {
	if err == nil {
		return nil
	}

	var rerr *machine.RuntimeError
	if errors.As(err, &rerr) {
		rerr.PrintTrace(stdio.Stderr)
		return withExitCode(ExitRuntimeError, err)
	}

	scanner.PrintError(stdio.Stderr, err)
	return withExitCode(ExitCompileError, err)
}

// newVM builds a VM wired to stdio and the LOX_* environment toggles.
func newVM(stdio mainer.Stdio) *machine.VM {
	cfg := loadRuntimeConfig()
	vm := machine.New()
	vm.Stdout = stdio.Stdout
	vm.Stderr = stdio.Stderr
	vm.StressGC = cfg.StressGC
	vm.LogGC = cfg.LogGC
	vm.TraceExec = cfg.TraceExec
	return vm
}
