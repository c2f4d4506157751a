package machine

import (
	"fmt"

	"github.com/mna/loxvm/lang/compiler"
)

// ObjFunction is the runtime counterpart of a compiler.FunctionProto: the
// same bytecode and line table, plus a constant pool that has been
// converted from the compiler's untyped []any into typed Values (nested
// FunctionProtos become nested *ObjFunction, recursively), the way the
// teacher's machine.Module converts a compiler.Program's raw constants
// into typed Values in makeToplevelFunction.
type ObjFunction struct {
	Name      string
	Arity     int
	Kind      compiler.FunctionKind
	Code      []byte
	Lines     []int
	Constants []Value
	UpvalueCount int
}

func (fn *ObjFunction) String() string {
	if fn.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", fn.Name)
}

func (c *ObjClosure) String() string { return c.function().String() }

// ObjUpvalue is a reference to a variable captured by a closure. While
// Location points into a live call frame's stack slice the upvalue is
// "open"; close copies the value out and repoints Location at Closed,
// exactly as clox's closeUpvalues does with OP_CLOSE_UPVALUE. The VM keeps
// open upvalues in a slice (vm.openUpvalues) ordered by stack slot rather
// than clox's intrusive linked list, since Go slices make the "insert
// before a shallower slot" search just as cheap without an extra pointer
// field.
type ObjUpvalue struct {
	Location *Value
	Closed   Value
	slot     int // original stack index, used only while open
}

func (uv *ObjUpvalue) close() {
	uv.Closed = *uv.Location
	uv.Location = &uv.Closed
}

// ObjClosure pairs a compiled function with the upvalues it captured at
// the point of its OP_CLOSURE instruction. Fn and Upvalues are stored as
// *Obj (rather than *ObjFunction/*ObjUpvalue directly) so the collector can
// mark them without a separate lookup table back from the inner struct to
// its heap wrapper.
type ObjClosure struct {
	Fn       *Obj // Type == ObjTypeFunction
	Upvalues []*Obj // each Type == ObjTypeUpvalue
}

func (c *ObjClosure) function() *ObjFunction { return c.Fn.fn }

// NativeFn is a Go-implemented Lox function, called directly by the VM's
// OP_CALL handling without pushing a bytecode call frame.
type NativeFn func(vm *VM, args []Value) (Value, error)

// ObjNative wraps a NativeFn as a callable Lox value (e.g. the global
// clock() function).
type ObjNative struct {
	Name string
	Fn   NativeFn
}
