package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"
)

// Repl starts an interactive read-eval-print loop, the "s" command of the
// external interface: each line is compiled and run against one persistent
// VM (so globals declared on one line stay visible on the next), and its
// result value is printed. The loop ends on EOF or a line that is exactly
// "q", matching the sentinel the external interface names.
//
// mainer.Stdio carries no Stdin stream (only Stdout/Stderr), so the REPL
// reads directly from os.Stdin, the same source every other command line
// in this package leaves untouched.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	vm := newVM(stdio)

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !in.Scan() {
			break
		}

		line := in.Text()
		if strings.TrimSpace(line) == "q" {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		err := vm.Interpret(ctx, "<repl>", []byte(line))
		if err != nil {
			reportInterpretError(stdio, err)
			continue
		}
		fmt.Fprintln(stdio.Stdout, vm.Result.String())
	}
	return in.Err()
}
