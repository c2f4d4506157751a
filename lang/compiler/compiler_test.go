package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func compileOK(t *testing.T, src string) *FunctionProto {
	t.Helper()
	proto, err := Compile("test", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, proto)
	return proto
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	proto := compileOK(t, "print 1 + 2 * 3;")
	require.Contains(t, Disassemble(proto), "OP_MULTIPLY")
	require.Contains(t, Disassemble(proto), "OP_ADD")
	require.Contains(t, Disassemble(proto), "OP_PRINT")
}

func TestCompileGlobalVariable(t *testing.T) {
	proto := compileOK(t, "var a = 1; print a;")
	out := Disassemble(proto)
	require.Contains(t, out, "OP_DEFINE_GLOBAL")
	require.Contains(t, out, "OP_GET_GLOBAL")
}

func TestCompileLocalVariable(t *testing.T) {
	proto := compileOK(t, "{ var a = 1; print a; }")
	out := Disassemble(proto)
	require.Contains(t, out, "OP_GET_LOCAL")
	require.NotContains(t, out, "OP_DEFINE_GLOBAL")
}

func TestCompileIfElse(t *testing.T) {
	proto := compileOK(t, `if (true) { print 1; } else { print 2; }`)
	out := Disassemble(proto)
	require.Contains(t, out, "OP_JUMP_IF_FALSE")
	require.Contains(t, out, "OP_JUMP ")
}

func TestCompileWhileLoop(t *testing.T) {
	proto := compileOK(t, `while (true) { print 1; }`)
	require.Contains(t, Disassemble(proto), "OP_LOOP")
}

func TestCompileForLoopDesugarsToWhile(t *testing.T) {
	proto := compileOK(t, `for (var i = 0; i < 10; i = i + 1) { print i; }`)
	out := Disassemble(proto)
	require.Contains(t, out, "OP_LOOP")
	require.Contains(t, out, "OP_LESS")
}

func TestCompileFunctionAndClosure(t *testing.T) {
	proto := compileOK(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	out := Disassemble(proto)
	require.Contains(t, out, "OP_CLOSURE")
	require.Contains(t, out, "outer")
	require.Contains(t, out, "inner")
}

func TestCompileClassWithMethodsAndInheritance(t *testing.T) {
	proto := compileOK(t, `
		class Animal {
			speak() { print "..."; }
		}
		class Dog < Animal {
			speak() { super.speak(); }
		}
	`)
	out := Disassemble(proto)
	require.Contains(t, out, "OP_CLASS")
	require.Contains(t, out, "OP_INHERIT")
	require.Contains(t, out, "OP_METHOD")
	require.Contains(t, out, "OP_SUPER_INVOKE")
}

func TestCompileReturnAtTopLevel(t *testing.T) {
	// top-level return is accepted: eval/repl use it to surface a result.
	proto, err := Compile("test", []byte("return 1;"))
	require.NoError(t, err)
	require.Contains(t, Disassemble(proto), "OP_RETURN")
}

func TestCompileErrorSynchronizesAfterBadStatement(t *testing.T) {
	// two independent syntax errors should both be reported, proving
	// panic-mode recovery advances past the first one instead of
	// cascading into spurious follow-on errors.
	_, err := Compile("test", []byte("var = 1;\nvar = 2;"))
	require.Error(t, err)
	list, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	require.GreaterOrEqual(t, len(list.Unwrap()), 2)
}

func TestCompileTooManyLocalsOverflowsSlot(t *testing.T) {
	var src string
	src += "{\n"
	for i := 0; i < 300; i++ {
		src += "var a" + itoa(i) + " = 0;\n"
	}
	src += "}\n"
	_, err := Compile("test", []byte(src))
	require.Error(t, err)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
