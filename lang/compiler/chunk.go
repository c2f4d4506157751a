package compiler

// Increment this to force recompilation of saved bytecode files.
const Version = 0

// FunctionKind distinguishes the few call-shapes the VM must special-case:
// a bare script's implicit top-level function, plain functions and
// methods, and initializers (methods named "init", which return the
// receiver).
type FunctionKind uint8

const (
	FunctionScript FunctionKind = iota
	FunctionPlain
	FunctionMethod
	FunctionInitializer
)

// UpvalueDesc records where a closure captures one upvalue from: either a
// local slot in the immediately enclosing function's frame, or an upvalue
// already captured by that enclosing function (chained capture, the way
// clox's compiler.c resolveUpvalue recurses outward).
type UpvalueDesc struct {
	Index   uint8
	IsLocal bool
}

// FunctionProto is the compile-time artifact for one function body: its
// bytecode, its constant pool, and enough metadata for the machine package
// to build a runtime Function/Closure pair from it. FunctionProto never
// refers to machine.Value directly — constants are stored as plain Go
// values (float64, string, *FunctionProto) so that this package has no
// dependency on lang/machine; it is lang/machine that depends on
// lang/compiler, loading a FunctionProto the way the teacher's
// lang/machine.Module loads a compiler.Program's untyped Constants slice
// into typed machine.Values.
type FunctionProto struct {
	Name      string
	Arity     int
	Kind      FunctionKind
	Code      []byte
	Lines     []int // Lines[i] is the source line of Code[i], parallel array
	Constants []any // float64 | string | *FunctionProto
	Upvalues  []UpvalueDesc
}

func newFunctionProto(name string, kind FunctionKind) *FunctionProto {
	return &FunctionProto{Name: name, Kind: kind}
}

// writeByte appends a single byte, recording its source line for runtime
// error reporting.
func (fp *FunctionProto) writeByte(b byte, line int) int {
	fp.Code = append(fp.Code, b)
	fp.Lines = append(fp.Lines, line)
	return len(fp.Code) - 1
}

func (fp *FunctionProto) writeOp(op Opcode, line int) int {
	return fp.writeByte(byte(op), line)
}

func (fp *FunctionProto) writeUint16(v uint16, line int) {
	fp.writeByte(byte(v>>8), line)
	fp.writeByte(byte(v), line)
}

// addConstant appends value to the constant pool, returning its index.
// Constants are not deduplicated across unrelated literals (matching
// clox), except that the compiler itself dedups via its name table
// (see compiler.go's use of github.com/dolthub/swiss for identifier
// constants).
func (fp *FunctionProto) addConstant(value any) int {
	fp.Constants = append(fp.Constants, value)
	return len(fp.Constants) - 1
}
