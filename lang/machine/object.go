package machine

import "fmt"

// ObjType discriminates the heap object variants.
type ObjType uint8

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeNative
	ObjTypeClosure
	ObjTypeUpvalue
	ObjTypeClass
	ObjTypeInstance
	ObjTypeBoundMethod
)

var objTypeNames = [...]string{
	ObjTypeString:      "string",
	ObjTypeFunction:    "function",
	ObjTypeNative:      "native",
	ObjTypeClosure:     "closure",
	ObjTypeUpvalue:     "upvalue",
	ObjTypeClass:       "class",
	ObjTypeInstance:    "instance",
	ObjTypeBoundMethod: "bound method",
}

func (t ObjType) String() string {
	if int(t) < len(objTypeNames) {
		return objTypeNames[t]
	}
	return fmt.Sprintf("ObjType(%d)", t)
}

// Obj is the common header embedded (by pointer, via the type-specific
// struct's first field in spirit, but in Go by composition) at the front of
// every heap-allocated value, mirroring clox's struct Obj in object.h: an
// intrusive next pointer threading every live object into one list so the
// sweep phase can walk them all without a separate registry, and a mark bit
// flipped by the tracing collector.
type Obj struct {
	Type ObjType
	mark bool
	next *Obj // intrusive linked list of every allocated object not yet swept

	str    *ObjString
	fn     *ObjFunction
	native *ObjNative
	clos   *ObjClosure
	upval  *ObjUpvalue
	class  *ObjClass
	inst   *ObjInstance
	bound  *ObjBoundMethod
}

func (o *Obj) String() string {
	switch o.Type {
	case ObjTypeString:
		return o.str.Chars
	case ObjTypeFunction:
		return o.fn.String()
	case ObjTypeNative:
		return fmt.Sprintf("<native fn %s>", o.native.Name)
	case ObjTypeClosure:
		return o.clos.String()
	case ObjTypeUpvalue:
		return "upvalue"
	case ObjTypeClass:
		return o.class.Name
	case ObjTypeInstance:
		return fmt.Sprintf("%s instance", o.inst.class().Name)
	case ObjTypeBoundMethod:
		return o.bound.Method.String()
	default:
		return "<obj>"
	}
}

func (o *Obj) TypeName() string {
	switch o.Type {
	case ObjTypeString:
		return "string"
	case ObjTypeFunction, ObjTypeClosure, ObjTypeNative, ObjTypeBoundMethod:
		return "function"
	case ObjTypeClass:
		return "class"
	case ObjTypeInstance:
		return "instance"
	case ObjTypeUpvalue:
		return "upvalue"
	default:
		return "object"
	}
}

func objectsEqual(a, b *Obj) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Type != b.Type {
		return false
	}
	if a.Type == ObjTypeString {
		// strings are interned (see Table.findString), so in practice this
		// branch is equivalent to the a==b pointer check above; it is kept
		// as a defensive fallback for strings built without going through
		// the VM's intern table.
		return a.str.Chars == b.str.Chars
	}
	return false
}

// AsString panics if o is not a string object; callers are expected to
// check Obj.Type (or Value.IsObj + the relevant As* accessor) first, the
// same contract clox's AS_STRING macro has.
func (o *Obj) AsString() *ObjString     { return o.str }
func (o *Obj) AsFunction() *ObjFunction { return o.fn }
func (o *Obj) AsNative() *ObjNative     { return o.native }
func (o *Obj) AsClosure() *ObjClosure   { return o.clos }
func (o *Obj) AsUpvalue() *ObjUpvalue   { return o.upval }
func (o *Obj) AsClass() *ObjClass       { return o.class }
func (o *Obj) AsInstance() *ObjInstance { return o.inst }
func (o *Obj) AsBoundMethod() *ObjBoundMethod { return o.bound }

func (v Value) IsString() bool      { return v.IsObj() && v.AsObj().Type == ObjTypeString }
func (v Value) IsFunction() bool    { return v.IsObj() && v.AsObj().Type == ObjTypeFunction }
func (v Value) IsClosure() bool     { return v.IsObj() && v.AsObj().Type == ObjTypeClosure }
func (v Value) IsNative() bool      { return v.IsObj() && v.AsObj().Type == ObjTypeNative }
func (v Value) IsClass() bool       { return v.IsObj() && v.AsObj().Type == ObjTypeClass }
func (v Value) IsInstance() bool    { return v.IsObj() && v.AsObj().Type == ObjTypeInstance }
func (v Value) IsBoundMethod() bool { return v.IsObj() && v.AsObj().Type == ObjTypeBoundMethod }

func (v Value) AsString() string               { return v.AsObj().str.Chars }
func (v Value) AsClosure() *ObjClosure         { return v.AsObj().clos }
func (v Value) AsFunction() *ObjFunction       { return v.AsObj().fn }
func (v Value) AsNative() *ObjNative           { return v.AsObj().native }
func (v Value) AsClass() *ObjClass             { return v.AsObj().class }
func (v Value) AsInstance() *ObjInstance       { return v.AsObj().inst }
func (v Value) AsBoundMethod() *ObjBoundMethod { return v.AsObj().bound }
