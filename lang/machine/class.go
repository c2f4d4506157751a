package machine

// ObjClass is a Lox class: a name and its own method table. Inheritance is
// implemented by copy-down (OP_INHERIT copies every entry of the
// superclass's Methods into the subclass's at class-creation time), not by
// a parent pointer walked at lookup time, exactly as clox's bindMethod
// strategy trades a larger class object for O(1) method dispatch.
type ObjClass struct {
	Name    string
	Methods *Table
}

// ObjInstance is an instance of a class: its class pointer plus its own
// field table (distinct from the class's method table). Class is stored as
// *Obj (Type == ObjTypeClass) so the collector can mark it directly.
type ObjInstance struct {
	Class  *Obj
	Fields *Table
}

func (i *ObjInstance) class() *ObjClass { return i.Class.class }

// ObjBoundMethod pairs a receiver instance with one of its class's methods,
// the value produced by `instance.method` when it is not immediately
// called (e.g. assigned to a variable). Method is *Obj (Type ==
// ObjTypeClosure) for the same reason as ObjInstance.Class.
type ObjBoundMethod struct {
	Receiver Value
	Method   *Obj
}

func (b *ObjBoundMethod) method() *ObjClosure { return b.Method.clos }
