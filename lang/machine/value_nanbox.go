//go:build loxnanbox

package machine

import (
	"fmt"
	"math"
	"unsafe"
)

// Value is a NaN-boxed 64-bit word, the alternate encoding clox builds when
// NAN_BOXING is defined: any IEEE-754 double that is a quiet NaN has its
// mantissa bits free to repurpose, so nil/true/false/object-pointer can all
// live in the same 8 bytes a Lox number already costs, at the price of
// numbers themselves needing no decoding at all (the common case) while
// every other kind pays a few bit tests. See value.go for the tagged-union
// alternative this file is a drop-in replacement for.
//
// Storing a Go pointer in the low 48 bits of a uint64 and reconstructing it
// with unsafe.Pointer only stays safe because Go's garbage collector never
// moves heap objects; if that ever changes this encoding breaks.
type Value uint64

const (
	signBit uint64 = 1 << 63
	qnan    uint64 = 0x7ffc000000000000

	tagNil   uint64 = 1
	tagFalse uint64 = 2
	tagTrue  uint64 = 3
)

// NilValue is the canonical nil value.
var NilValue = Value(qnan | tagNil)

func BoolValue(b bool) Value {
	if b {
		return Value(qnan | tagTrue)
	}
	return Value(qnan | tagFalse)
}

func NumberValue(n float64) Value { return Value(math.Float64bits(n)) }

func ObjValue(o *Obj) Value {
	ptr := uint64(uintptr(unsafe.Pointer(o)))
	return Value(signBit | qnan | ptr)
}

func (v Value) IsNil() bool    { return v == NilValue }
func (v Value) IsBool() bool   { return uint64(v) == qnan|tagFalse || uint64(v) == qnan|tagTrue }
func (v Value) IsObj() bool    { return uint64(v)&(qnan|signBit) == qnan|signBit }
func (v Value) IsNumber() bool { return uint64(v)&qnan != qnan }

func (v Value) AsBool() bool { return uint64(v) == qnan|tagTrue }

func (v Value) AsNumber() float64 { return math.Float64frombits(uint64(v)) }

func (v Value) AsObj() *Obj {
	ptr := uintptr(uint64(v) &^ (signBit | qnan))
	return (*Obj)(unsafe.Pointer(ptr))
}

// IsFalsey implements Lox's truthiness rule: nil and false are falsey,
// everything else (including 0 and "") is truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal implements Lox's == for values of any type, including cross-type
// comparisons (which are always false, never an error). Numbers compare by
// IEEE-754 equality (so NaN != NaN, matching clox), everything else by the
// raw 64-bit pattern, except objects which compare by underlying identity
// through objectsEqual (covering interned string equality-by-value).
func Equal(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		return a.AsNumber() == b.AsNumber()
	}
	if a.IsObj() && b.IsObj() {
		return objectsEqual(a.AsObj(), b.AsObj())
	}
	return uint64(a) == uint64(b)
}

func (v Value) String() string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsObj():
		return v.AsObj().String()
	case v.IsNumber():
		return formatNumber(v.AsNumber())
	default:
		return fmt.Sprintf("<invalid value %#016x>", uint64(v))
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
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		return "boolean"
	case v.IsNumber():
		return "number"
	case v.IsObj():
		return v.AsObj().TypeName()
	default:
		return "unknown"
	}
}
