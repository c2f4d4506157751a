package maincmd

import (
	"context"
	"errors"

	"github.com/mna/mainer"
)

// Eval compiles and runs the single source string in args, the "e <source>"
// command of the external interface.
func (c *Cmd) Eval(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return withExitCode(ExitCompileError, errors.New("eval: exactly one source string must be provided"))
	}
	return interpretToExitCode(ctx, stdio, "<eval>", []byte(args[0]))
}
