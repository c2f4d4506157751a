//go:build !loxnanbox

// Package machine implements the runtime representation of Lox values, the
// heap object model, the tracing garbage collector, the open-addressed
// string/global table, and the bytecode-dispatching VM.
//
// This file is the default build: Value is a tagged union, the
// straightforward encoding clox itself uses when NAN_BOXING is off. Building
// with -tags loxnanbox swaps in value_nanbox.go, which packs every Value
// into a single float64-shaped 64 bits the way clox does when NAN_BOXING is
// defined; both files expose the exact same API so the rest of the package
// never branches on which representation is active, matching the teacher's
// own design note that these two encodings are interchangeable and chosen
// at build time, not at runtime.
package machine

import "fmt"

// ValueKind discriminates the tagged union held in a Value.
type ValueKind uint8

const (
	ValNil ValueKind = iota
	ValBool
	ValNumber
	ValObj
)

// Value is any Lox runtime value. The zero Value is nil.
type Value struct {
	kind   ValueKind
	number float64
	obj    *Obj
}

// NilValue is the canonical nil value.
var NilValue = Value{kind: ValNil}

func BoolValue(b bool) Value {
	v := Value{kind: ValBool}
	if b {
		v.number = 1
	}
	return v
}

func NumberValue(n float64) Value { return Value{kind: ValNumber, number: n} }

func ObjValue(o *Obj) Value { return Value{kind: ValObj, obj: o} }

func (v Value) IsNil() bool    { return v.kind == ValNil }
func (v Value) IsBool() bool   { return v.kind == ValBool }
func (v Value) IsNumber() bool { return v.kind == ValNumber }
func (v Value) IsObj() bool    { return v.kind == ValObj }

func (v Value) AsBool() bool     { return v.number != 0 }
func (v Value) AsNumber() float64 { return v.number }
func (v Value) AsObj() *Obj       { return v.obj }

// IsFalsey implements Lox's truthiness rule: nil and false are falsey,
// everything else (including 0 and "") is truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal implements Lox's == for values of any type, including cross-type
// comparisons (which are always false, never an error).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case ValNil:
		return true
	case ValBool:
		return a.AsBool() == b.AsBool()
	case ValNumber:
		return a.number == b.number
	case ValObj:
		return objectsEqual(a.obj, b.obj)
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValNil:
		return "nil"
	case ValBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case ValNumber:
		return formatNumber(v.number)
	case ValObj:
		return v.obj.String()
	default:
		return fmt.Sprintf("<invalid value kind %d>", v.kind)
	}
}

// formatNumber matches clox's printf("%g", ...) behavior closely enough for
// integral doubles to print without a trailing ".0" (e.g. "3" not "3.0"),
// which Lox programs and this repository's golden tests rely on.
func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

// TypeName returns a short lowercase string naming v's runtime type, used in
// runtime type error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case ValNil:
		return "nil"
	case ValBool:
		return "boolean"
	case ValNumber:
		return "number"
	case ValObj:
		return v.obj.TypeName()
	default:
		return "unknown"
	}
}
