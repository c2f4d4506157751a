package machine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/mna/loxvm/lang/compiler"
)

// framesMax bounds call depth, matching clox's FRAMES_MAX.
const framesMax = 64

// stackMax is the operand stack capacity, framesMax times the per-frame
// slot budget clox allows (UINT8_COUNT), since every frame's locals and
// temporaries share one contiguous array.
const stackMax = framesMax * 256

// CallFrame is one activation record: the closure being run, the next
// instruction to execute, and the window of the shared value stack holding
// its locals, mirroring clox's CallFrame in vm.h.
type CallFrame struct {
	closure *Obj // Type == ObjTypeClosure
	ip      int
	slots   int // index into VM.stack where this frame's window begins
}

// VM executes compiled FunctionProtos. The zero value is not ready to use;
// call New.
type VM struct {
	// Stdout, Stderr and Stdin are the I/O streams print() and any future
	// native I/O use. If nil, os.Stdout/os.Stderr/os.Stdin are used.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps bounds the number of dispatched instructions before the VM
	// cancels itself, a deliberately coarse measure of execution time. A
	// value <= 0 means no limit.
	MaxSteps int

	// StressGC runs a full collection before every allocation instead of
	// waiting for nextGC, the runtime form of clox's DEBUG_STRESS_GC.
	StressGC bool

	// LogGC prints a line to Stderr at the start and end of every
	// collection and for every object allocated or freed, the runtime form
	// of clox's DEBUG_LOG_GC.
	LogGC bool

	// TraceExec prints every instruction to Stdout just before it runs,
	// the runtime form of clox's DEBUG_TRACE_EXECUTION.
	TraceExec bool

	// Result holds the value the top-level script returned (explicitly, or
	// implicitly nil if it fell off the end), the value interpret() hands
	// back to the embedding host per the external interface.
	Result Value

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	ctx       context.Context
	ctxCancel func()
	cancelled atomic.Bool
	steps     uint64
	maxSteps  uint64

	stack [stackMax]Value
	sp    int

	frames     [framesMax]CallFrame
	frameCount int

	openUpvalues []*Obj // sorted by ascending stack slot

	globals Table
	strings Table

	objects        *Obj
	internedObjs   map[*ObjString]*Obj
	bytesAllocated int
	nextGC         int
	gray           []*Obj

	initString *ObjString
}

// New creates a VM ready to run compiled code.
func New() *VM {
	vm := &VM{
		internedObjs: make(map[*ObjString]*Obj),
		nextGC:       1 << 20,
	}
	vm.initString = vm.intern("init").str
	vm.defineNative("clock", nativeClock)
	return vm
}

func (vm *VM) init() {
	if vm.Stdout != nil {
		vm.stdout = vm.Stdout
	} else {
		vm.stdout = os.Stdout
	}
	if vm.Stderr != nil {
		vm.stderr = vm.Stderr
	} else {
		vm.stderr = os.Stderr
	}
	if vm.Stdin != nil {
		vm.stdin = vm.Stdin
	} else {
		vm.stdin = os.Stdin
	}
	if vm.MaxSteps <= 0 {
		vm.maxSteps--
	} else {
		vm.maxSteps = uint64(vm.MaxSteps)
	}
	vm.Result = NilValue
}

func (vm *VM) defineNative(name string, fn NativeFn) {
	o := vm.intern(name)
	vm.globals.Set(o.str, vm.newNative(name, fn))
}

// nativeClock implements the global clock() function: the current wall-clock
// time in seconds.
func nativeClock(vm *VM, args []Value) (Value, error) {
	return NumberValue(float64(time.Now().UnixNano()) / 1e9), nil
}

// Interpret compiles and runs a source program, returning any compile-time
// or runtime error. Compile errors are returned without running anything.
func (vm *VM) Interpret(ctx context.Context, filename string, src []byte) error {
	proto, err := compiler.Compile(filename, src)
	if err != nil {
		return err
	}
	return vm.Run(ctx, proto)
}

// Run loads and executes an already-compiled top-level function.
func (vm *VM) Run(ctx context.Context, proto *compiler.FunctionProto) error {
	vm.init()

	ctx, cancel := context.WithCancel(ctx)
	vm.ctx = ctx
	vm.ctxCancel = cancel
	go func() {
		<-ctx.Done()
		vm.cancelled.Store(true)
	}()

	base := vm.sp
	fn := vm.loadFunction(proto)
	fnObj := vm.newFunction(fn)
	vm.rootAndCollapse(base, fnObj)
	closObj := vm.newClosure(fnObj)
	vm.rootAndCollapse(base, closObj)
	if err := vm.callValue(nil, ObjValue(closObj), 0); err != nil {
		return err
	}

	return vm.run()
}

// loadFunction converts a compiler.FunctionProto (whose Constants are raw
// Go values) into a runtime ObjFunction (whose Constants are typed Values),
// recursing into nested function prototypes. This is the one place the
// machine package bridges the compiler's untyped constant pool into its
// own Value representation, keeping lang/compiler free of any dependency
// on lang/machine.
//
// Every heap object this builds (an interned string constant, a nested
// function) is pushed onto the VM stack the moment it exists and stays
// there until the ObjFunction embedding it is itself rooted by the caller,
// so a GC triggered by a later allocation in this same call tree can never
// sweep a constant reachable only from fn.Constants, a plain Go slice the
// collector doesn't walk (push-then-work-then-pop).
func (vm *VM) loadFunction(proto *compiler.FunctionProto) *ObjFunction {
	fn := &ObjFunction{
		Name:  proto.Name,
		Arity: proto.Arity,
		Kind:  proto.Kind,
		Code:  proto.Code,
		Lines: proto.Lines,
	}
	fn.Constants = make([]Value, len(proto.Constants))
	for i, c := range proto.Constants {
		switch c := c.(type) {
		case float64:
			fn.Constants[i] = NumberValue(c)
		case string:
			v := ObjValue(vm.intern(c))
			vm.push(v)
			fn.Constants[i] = v
		case *compiler.FunctionProto:
			base := vm.sp
			nested := vm.loadFunction(c)
			nestedObj := vm.newFunction(nested)
			fn.Constants[i] = vm.rootAndCollapse(base, nestedObj)
		default:
			panic(fmt.Sprintf("unexpected constant %T: %[1]v", c))
		}
	}
	fn.UpvalueCount = len(proto.Upvalues)
	return fn
}

// rootAndCollapse is the "pop" half of push-then-work-then-pop: obj was
// just built while every already-finished sibling constant since base sat
// on the stack protecting it (the "push"/"work" halves); pushing obj itself
// roots all of them transitively, since the GC blackens an ObjFunction's
// Constants and an ObjClosure's Fn, so the sentinels below it can be
// dropped once obj takes their place.
func (vm *VM) rootAndCollapse(base int, obj *Obj) Value {
	v := ObjValue(obj)
	vm.sp = base
	vm.push(v)
	return v
}

func (vm *VM) push(v Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) resetStack() {
	vm.sp = 0
	vm.frameCount = 0
	vm.openUpvalues = vm.openUpvalues[:0]
}

// run is the bytecode dispatch loop, labeled so error paths can `break loop`
// out of the switch and the for in one statement, the same control-flow
// idiom the teacher's interpreter loop uses for its inFlightErr handling.
func (vm *VM) run() error {
	frame := &vm.frames[vm.frameCount-1]
	var inFlightErr error

loop:
	for {
		vm.steps++
		if vm.steps >= vm.maxSteps {
			vm.ctxCancel()
			inFlightErr = fmt.Errorf("execution cancelled: %w", context.Cause(vm.ctx))
			break loop
		}
		if vm.cancelled.Load() {
			inFlightErr = fmt.Errorf("execution cancelled: %w", context.Cause(vm.ctx))
			break loop
		}

		if vm.TraceExec {
			vm.traceInstruction(frame)
		}

		op := Opcode(frame.function().Code[frame.ip])
		frame.ip++

		switch op {
		case OP_CONSTANT:
			vm.push(vm.readConstant(frame))

		case OP_NIL:
			vm.push(NilValue)
		case OP_TRUE:
			vm.push(BoolValue(true))
		case OP_FALSE:
			vm.push(BoolValue(false))
		case OP_POP:
			vm.pop()

		case OP_GET_LOCAL:
			slot := vm.readByte(frame)
			vm.push(vm.stack[frame.slots+int(slot)])
		case OP_SET_LOCAL:
			slot := vm.readByte(frame)
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case OP_GET_GLOBAL:
			name := vm.readString(frame)
			v, ok := vm.globals.Get(name)
			if !ok {
				inFlightErr = vm.runtimeError(frame, "undefined variable %q", name.Chars)
				break loop
			}
			vm.push(v)
		case OP_DEFINE_GLOBAL:
			name := vm.readString(frame)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case OP_SET_GLOBAL:
			name := vm.readString(frame)
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				inFlightErr = vm.runtimeError(frame, "undefined variable %q", name.Chars)
				break loop
			}

		case OP_GET_UPVALUE:
			slot := vm.readByte(frame)
			vm.push(*frame.closure.clos.Upvalues[slot].upval.Location)
		case OP_SET_UPVALUE:
			slot := vm.readByte(frame)
			*frame.closure.clos.Upvalues[slot].upval.Location = vm.peek(0)

		case OP_GET_PROPERTY:
			if !vm.peek(0).IsInstance() {
				inFlightErr = vm.runtimeError(frame, "only instances have properties")
				break loop
			}
			inst := vm.peek(0).AsInstance()
			name := vm.readString(frame)
			if v, ok := inst.Fields.Get(name); ok {
				vm.pop()
				vm.push(v)
				break
			}
			if !vm.bindMethod(frame, inst.class(), name) {
				inFlightErr = vm.runtimeError(frame, "undefined property %q", name.Chars)
				break loop
			}

		case OP_SET_PROPERTY:
			if !vm.peek(1).IsInstance() {
				inFlightErr = vm.runtimeError(frame, "only instances have fields")
				break loop
			}
			inst := vm.peek(1).AsInstance()
			name := vm.readString(frame)
			inst.Fields.Set(name, vm.peek(0))
			v := vm.pop()
			vm.pop()
			vm.push(v)

		case OP_GET_SUPER:
			name := vm.readString(frame)
			super := vm.pop().AsClass()
			inst := vm.pop()
			if !vm.bindMethodFor(frame, super, inst, name) {
				inFlightErr = vm.runtimeError(frame, "undefined property %q", name.Chars)
				break loop
			}

		case OP_EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(BoolValue(Equal(a, b)))
		case OP_GREATER, OP_LESS:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				inFlightErr = vm.runtimeError(frame, "operands must be numbers")
				break loop
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			if op == OP_GREATER {
				vm.push(BoolValue(a > b))
			} else {
				vm.push(BoolValue(a < b))
			}

		case OP_ADD:
			if vm.peek(0).IsString() && vm.peek(1).IsString() {
				b := vm.pop()
				a := vm.pop()
				vm.push(ObjValue(vm.intern(a.AsString() + b.AsString())))
			} else if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
				b := vm.pop().AsNumber()
				a := vm.pop().AsNumber()
				vm.push(NumberValue(a + b))
			} else {
				inFlightErr = vm.runtimeError(frame, "operands must be two numbers or two strings")
				break loop
			}
		case OP_SUBTRACT, OP_MULTIPLY, OP_DIVIDE:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				inFlightErr = vm.runtimeError(frame, "operands must be numbers")
				break loop
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			switch op {
			case OP_SUBTRACT:
				vm.push(NumberValue(a - b))
			case OP_MULTIPLY:
				vm.push(NumberValue(a * b))
			case OP_DIVIDE:
				vm.push(NumberValue(a / b))
			}

		case OP_NOT:
			vm.push(BoolValue(vm.pop().IsFalsey()))
		case OP_NEGATE:
			if !vm.peek(0).IsNumber() {
				inFlightErr = vm.runtimeError(frame, "operand must be a number")
				break loop
			}
			vm.push(NumberValue(-vm.pop().AsNumber()))

		case OP_PRINT:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case OP_JUMP:
			offset := vm.readUint16(frame)
			frame.ip += int(offset)
		case OP_JUMP_IF_FALSE:
			offset := vm.readUint16(frame)
			if vm.peek(0).IsFalsey() {
				frame.ip += int(offset)
			}
		case OP_LOOP:
			offset := vm.readUint16(frame)
			frame.ip -= int(offset)

		case OP_CALL:
			argCount := int(vm.readByte(frame))
			if inFlightErr = vm.callValue(frame, vm.peek(argCount), argCount); inFlightErr != nil {
				break loop
			}
			frame = &vm.frames[vm.frameCount-1]

		case OP_INVOKE:
			name := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			if inFlightErr = vm.invoke(frame, name, argCount); inFlightErr != nil {
				break loop
			}
			frame = &vm.frames[vm.frameCount-1]

		case OP_SUPER_INVOKE:
			name := vm.readString(frame)
			argCount := int(vm.readByte(frame))
			super := vm.pop().AsClass()
			if inFlightErr = vm.invokeFromClass(frame, super, name, argCount); inFlightErr != nil {
				break loop
			}
			frame = &vm.frames[vm.frameCount-1]

		case OP_CLOSURE:
			fnObj := vm.readConstant(frame).AsObj() // already wraps an ObjFunction, see loadFunction
			closObj := vm.newClosure(fnObj)
			vm.push(ObjValue(closObj)) // root it before captureUpvalue allocates
			clos := closObj.clos
			for i := range clos.Upvalues {
				isLocal := vm.readByte(frame)
				index := vm.readByte(frame)
				if isLocal != 0 {
					clos.Upvalues[i] = vm.captureUpvalue(frame.slots + int(index))
				} else {
					clos.Upvalues[i] = frame.closure.clos.Upvalues[index]
				}
			}

		case OP_CLOSE_UPVALUE:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case OP_RETURN:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				vm.Result = result
				return nil
			}
			vm.sp = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case OP_CLASS:
			name := vm.readString(frame)
			vm.push(ObjValue(vm.newClass(name.Chars)))

		case OP_INHERIT:
			superVal := vm.peek(1)
			if !superVal.IsClass() {
				inFlightErr = vm.runtimeError(frame, "superclass must be a class")
				break loop
			}
			subclass := vm.peek(0).AsClass()
			subclass.Methods.AddAll(superVal.AsClass().Methods)
			vm.pop() // subclass

		case OP_METHOD:
			name := vm.readString(frame)
			vm.defineMethod(frame, name)

		default:
			inFlightErr = vm.runtimeError(frame, "illegal opcode %s", op)
			break loop
		}

		if inFlightErr != nil {
			break loop
		}
	}

	vm.resetStack()
	return inFlightErr
}

// traceInstruction prints the current stack contents and the instruction
// about to run, the runtime equivalent of clox's disassembleInstruction
// call at the top of run's dispatch loop.
func (vm *VM) traceInstruction(frame *CallFrame) {
	fmt.Fprint(vm.stdout, "          ")
	for i := 0; i < vm.sp; i++ {
		fmt.Fprintf(vm.stdout, "[ %s ]", vm.stack[i].String())
	}
	fmt.Fprintln(vm.stdout)

	fn := frame.function()
	ip := frame.ip
	op := Opcode(fn.Code[ip])
	fmt.Fprintf(vm.stdout, "%04d %s\n", ip, op)
}

func (f *CallFrame) function() *ObjFunction { return f.closure.clos.Fn.fn }

func (vm *VM) readByte(frame *CallFrame) byte {
	b := frame.function().Code[frame.ip]
	frame.ip++
	return b
}

func (vm *VM) readUint16(frame *CallFrame) uint16 {
	hi := vm.readByte(frame)
	lo := vm.readByte(frame)
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readConstant(frame *CallFrame) Value {
	idx := vm.readByte(frame)
	return frame.function().Constants[idx]
}

func (vm *VM) readString(frame *CallFrame) *ObjString {
	return vm.readConstant(frame).AsObj().str
}
