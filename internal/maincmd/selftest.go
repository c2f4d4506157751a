package maincmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/loxvm/lang/machine"
)

// selfTest is one case in the built-in battery: source is run as a
// standalone script against a fresh VM and its combined stdout must equal
// want exactly.
type selfTest struct {
	name   string
	source string
	want   string
}

// selfTests exercises every language feature spec.md's Testable Properties
// section calls out: arithmetic and string operations, control flow,
// closures over locals, and classes with inheritance and super calls.
var selfTests = []selfTest{
	{
		name:   "arithmetic",
		source: `print 1 + 2 * 3 - 4 / 2;`,
		want:   "5\n",
	},
	{
		name:   "string concatenation",
		source: `print "foo" + "bar";`,
		want:   "foobar\n",
	},
	{
		name:   "truthiness",
		source: `print !nil; print !!nil; print 0 == 0;`,
		want:   "true\nfalse\ntrue\n",
	},
	{
		name: "control flow",
		source: `
var total = 0;
var i = 0;
while (i < 5) {
  if (i != 2) {
    total = total + i;
  }
  i = i + 1;
}
print total;
`,
		want: "8\n",
	},
	{
		name: "closures capture by reference",
		source: `
fun makeCounter() {
  var count = 0;
  fun counter() {
    count = count + 1;
    return count;
  }
  return counter;
}
var c = makeCounter();
print c();
print c();
print c();
`,
		want: "1\n2\n3\n",
	},
	{
		name: "classes and inheritance",
		source: `
class Animal {
  speak() {
    return "...";
  }
  describe() {
    print "a creature that says " + this.speak();
  }
}
class Dog < Animal {
  speak() {
    return "woof";
  }
}
Dog().describe();
`,
		want: "a creature that says woof\n",
	},
	{
		name: "super calls",
		source: `
class A {
  greet() {
    print "hello from A";
  }
}
class B < A {
  greet() {
    super.greet();
    print "hello from B";
  }
}
B().greet();
`,
		want: "hello from A\nhello from B\n",
	},
}

// Selftest runs the built-in test battery and reports pass/fail for each
// case, the "t" command of the external interface.
func (c *Cmd) Selftest(ctx context.Context, stdio mainer.Stdio, args []string) error {
	failures := 0
	for _, tc := range selfTests {
		var out bytes.Buffer
		vm := machine.New()
		vm.Stdout = &out
		vm.Stderr = &out

		err := vm.Interpret(ctx, tc.name, []byte(tc.source))
		got := out.String()

		switch {
		case err != nil:
			failures++
			fmt.Fprintf(stdio.Stdout, "FAIL %s: %s\n", tc.name, err)
		case got != tc.want:
			failures++
			fmt.Fprintf(stdio.Stdout, "FAIL %s: got %q, want %q\n", tc.name, got, tc.want)
		default:
			fmt.Fprintf(stdio.Stdout, "PASS %s\n", tc.name)
		}
	}

	fmt.Fprintf(stdio.Stdout, "%d/%d passed\n", len(selfTests)-failures, len(selfTests))
	if failures > 0 {
		return withExitCode(ExitRuntimeError, fmt.Errorf("%d selftest case(s) failed", failures))
	}
	return nil
}
