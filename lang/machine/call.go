package machine

import "golang.org/x/exp/slices"

// callValue dispatches a value in call position: a closure pushes a new
// CallFrame, a native function runs immediately and leaves its result on
// the stack, a class value invokes it as a constructor, and a bound method
// rebinds the receiver before calling through to its closure. Mirrors
// clox's callValue in vm.c.
func (vm *VM) callValue(frame *CallFrame, callee Value, argCount int) error {
	if callee.IsObj() {
		switch callee.AsObj().Type {
		case ObjTypeClosure:
			return vm.call(frame, callee.AsObj(), argCount)
		case ObjTypeNative:
			return vm.callNative(frame, callee.AsObj().native, argCount)
		case ObjTypeClass:
			classObj := callee.AsObj()
			instObj := vm.newInstance(classObj)
			vm.stack[vm.sp-argCount-1] = ObjValue(instObj)
			if initObj, ok := classObj.class.Methods.Get(vm.initString); ok {
				return vm.call(frame, initObj.AsObj(), argCount)
			} else if argCount != 0 {
				return vm.runtimeError(frame, "expected 0 arguments but got %d", argCount)
			}
			return nil
		case ObjTypeBoundMethod:
			bound := callee.AsObj().bound
			vm.stack[vm.sp-argCount-1] = bound.Receiver
			return vm.call(frame, bound.Method, argCount)
		}
	}
	return vm.runtimeError(frame, "can only call functions and classes")
}

// call pushes a new CallFrame for closObj, reporting errors against frame
// (the caller's frame, since closObj has no frame of its own yet) the same
// way every other runtimeError call in run's dispatch loop does.
func (vm *VM) call(frame *CallFrame, closObj *Obj, argCount int) error {
	clos := closObj.clos
	fn := clos.Fn.fn
	if argCount != fn.Arity {
		return vm.runtimeError(frame, "expected %d arguments but got %d", fn.Arity, argCount)
	}
	if vm.frameCount == framesMax {
		return vm.runtimeError(frame, "stack overflow")
	}
	newFrame := &vm.frames[vm.frameCount]
	vm.frameCount++
	newFrame.closure = closObj
	newFrame.ip = 0
	newFrame.slots = vm.sp - argCount - 1
	return nil
}

func (vm *VM) callNative(frame *CallFrame, native *ObjNative, argCount int) error {
	args := vm.stack[vm.sp-argCount : vm.sp]
	result, err := native.Fn(vm, args)
	if err != nil {
		return vm.runtimeError(frame, "%s", err)
	}
	vm.sp -= argCount + 1
	vm.push(result)
	return nil
}

// invoke implements the OP_INVOKE fast path for instance.method(args):
// looks up a field first (a stored closure shadows a method, matching
// clox), falling back to a method lookup plus call without the
// intermediate OP_GET_PROPERTY/OP_CALL pair.
func (vm *VM) invoke(frame *CallFrame, name *ObjString, argCount int) error {
	receiver := vm.peek(argCount)
	if !receiver.IsInstance() {
		return vm.runtimeError(frame, "only instances have methods")
	}
	inst := receiver.AsInstance()
	if v, ok := inst.Fields.Get(name); ok {
		vm.stack[vm.sp-argCount-1] = v
		return vm.callValue(frame, v, argCount)
	}
	return vm.invokeFromClass(frame, inst.class(), name, argCount)
}

func (vm *VM) invokeFromClass(frame *CallFrame, class *ObjClass, name *ObjString, argCount int) error {
	methodObj, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError(frame, "undefined property %q", name.Chars)
	}
	return vm.call(frame, methodObj.AsObj(), argCount)
}

// bindMethod looks up name in class's method table and, on a hit, replaces
// the instance on top of the stack with a bound method value.
func (vm *VM) bindMethod(frame *CallFrame, class *ObjClass, name *ObjString) bool {
	methodObj, ok := class.Methods.Get(name)
	if !ok {
		return false
	}
	bound := vm.newBoundMethod(vm.peek(0), methodObj.AsObj())
	vm.pop()
	vm.push(ObjValue(bound))
	return true
}

// bindMethodFor is bindMethod for the `super.method` form, where the
// instance value is supplied explicitly rather than read off the stack.
func (vm *VM) bindMethodFor(frame *CallFrame, class *ObjClass, instance Value, name *ObjString) bool {
	methodObj, ok := class.Methods.Get(name)
	if !ok {
		return false
	}
	bound := vm.newBoundMethod(instance, methodObj.AsObj())
	vm.push(ObjValue(bound))
	return true
}

func (vm *VM) defineMethod(frame *CallFrame, name *ObjString) {
	method := vm.peek(0)
	class := vm.peek(1).AsClass()
	class.Methods.Set(name, method)
	vm.pop()
}

// captureUpvalue returns the open upvalue for the stack slot at index,
// reusing an existing one if another closure already captured the same
// slot, matching clox's captureUpvalue dedup behavior.
func (vm *VM) captureUpvalue(index int) *Obj {
	if i := slices.IndexFunc(vm.openUpvalues, func(o *Obj) bool { return o.upval.slot == index }); i >= 0 {
		return vm.openUpvalues[i]
	}
	uvObj := vm.newUpvalue(index)
	// Keep the list ordered by ascending slot, same invariant clox's linked
	// list maintains, so closeUpvalues and the GC can walk it in stack order.
	pos, _ := slices.BinarySearchFunc(vm.openUpvalues, index, func(o *Obj, idx int) int {
		return o.upval.slot - idx
	})
	vm.openUpvalues = slices.Insert(vm.openUpvalues, pos, uvObj)
	return uvObj
}

// closeUpvalues closes every open upvalue at slot index or later (i.e. the
// locals going out of scope), copying their values out of the stack before
// the frame that owns those slots is popped.
func (vm *VM) closeUpvalues(index int) {
	for _, o := range vm.openUpvalues {
		if o.upval.slot >= index {
			o.upval.close()
		}
	}
	vm.openUpvalues = slices.DeleteFunc(vm.openUpvalues, func(o *Obj) bool {
		return o.upval.slot >= index
	})
}
