package compiler

import "fmt"

// Opcode is a single bytecode instruction. Unlike the teacher's varint
// encoded operands, every operand here is a fixed 1 or 2 byte immediate:
// the language has no need for the teacher's uint32 operand range, and
// fixed widths make the VM's dispatch loop a straight switch with no
// decode step, matching clox's chunk.h encoding.
type Opcode uint8

//nolint:revive
const (
	OP_CONSTANT Opcode = iota // - OP_CONSTANT<u8 constant>       value
	OP_NIL                    // - OP_NIL                         nil
	OP_TRUE                   // - OP_TRUE                        true
	OP_FALSE                  // - OP_FALSE                       false
	OP_POP                    // value OP_POP                     -

	OP_GET_LOCAL     // - OP_GET_LOCAL<u8 slot>          value
	OP_SET_LOCAL     // value OP_SET_LOCAL<u8 slot>      value
	OP_GET_GLOBAL    // - OP_GET_GLOBAL<u8 name>         value
	OP_DEFINE_GLOBAL // value OP_DEFINE_GLOBAL<u8 name>  -
	OP_SET_GLOBAL    // value OP_SET_GLOBAL<u8 name>     value
	OP_GET_UPVALUE   // - OP_GET_UPVALUE<u8 slot>        value
	OP_SET_UPVALUE   // value OP_SET_UPVALUE<u8 slot>    value
	OP_GET_PROPERTY  // instance OP_GET_PROPERTY<u8 name> value
	OP_SET_PROPERTY  // instance value OP_SET_PROPERTY<u8 name> value
	OP_GET_SUPER     // instance superclass OP_GET_SUPER<u8 name> value

	OP_EQUAL
	OP_GREATER
	OP_LESS
	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_NOT
	OP_NEGATE

	OP_PRINT

	OP_JUMP          // - OP_JUMP<u16 offset>             -  (unconditional, forward)
	OP_JUMP_IF_FALSE // cond OP_JUMP_IF_FALSE<u16 offset> cond (condition stays on the stack)
	OP_LOOP          // - OP_LOOP<u16 offset>             -  (unconditional, backward)

	OP_CALL // fn arg1..argN OP_CALL<u8 argCount> result

	OP_INVOKE       // instance arg1..argN OP_INVOKE<u8 name><u8 argCount>       result
	OP_SUPER_INVOKE // instance arg1..argN superclass OP_SUPER_INVOKE<u8 name><u8 argCount> result

	OP_CLOSURE       // - OP_CLOSURE<u8 function><upvalue descriptors> closure
	OP_CLOSE_UPVALUE // value OP_CLOSE_UPVALUE -

	OP_RETURN // value OP_RETURN -

	OP_CLASS   // - OP_CLASS<u8 name>      class
	OP_INHERIT // superclass subclass OP_INHERIT superclass
	OP_METHOD  // class closure OP_METHOD<u8 name> class

	opcodeMax
)

var opcodeNames = [...]string{
	OP_CONSTANT:       "OP_CONSTANT",
	OP_NIL:            "OP_NIL",
	OP_TRUE:           "OP_TRUE",
	OP_FALSE:          "OP_FALSE",
	OP_POP:            "OP_POP",
	OP_GET_LOCAL:      "OP_GET_LOCAL",
	OP_SET_LOCAL:      "OP_SET_LOCAL",
	OP_GET_GLOBAL:     "OP_GET_GLOBAL",
	OP_DEFINE_GLOBAL:  "OP_DEFINE_GLOBAL",
	OP_SET_GLOBAL:     "OP_SET_GLOBAL",
	OP_GET_UPVALUE:    "OP_GET_UPVALUE",
	OP_SET_UPVALUE:    "OP_SET_UPVALUE",
	OP_GET_PROPERTY:   "OP_GET_PROPERTY",
	OP_SET_PROPERTY:   "OP_SET_PROPERTY",
	OP_GET_SUPER:      "OP_GET_SUPER",
	OP_EQUAL:          "OP_EQUAL",
	OP_GREATER:        "OP_GREATER",
	OP_LESS:           "OP_LESS",
	OP_ADD:            "OP_ADD",
	OP_SUBTRACT:       "OP_SUBTRACT",
	OP_MULTIPLY:       "OP_MULTIPLY",
	OP_DIVIDE:         "OP_DIVIDE",
	OP_NOT:            "OP_NOT",
	OP_NEGATE:         "OP_NEGATE",
	OP_PRINT:          "OP_PRINT",
	OP_JUMP:           "OP_JUMP",
	OP_JUMP_IF_FALSE:  "OP_JUMP_IF_FALSE",
	OP_LOOP:           "OP_LOOP",
	OP_CALL:           "OP_CALL",
	OP_INVOKE:         "OP_INVOKE",
	OP_SUPER_INVOKE:   "OP_SUPER_INVOKE",
	OP_CLOSURE:        "OP_CLOSURE",
	OP_CLOSE_UPVALUE:  "OP_CLOSE_UPVALUE",
	OP_RETURN:         "OP_RETURN",
	OP_CLASS:          "OP_CLASS",
	OP_INHERIT:        "OP_INHERIT",
	OP_METHOD:         "OP_METHOD",
}

func (op Opcode) String() string {
	if op < opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

const variableStackEffect = 0x7f

// stackEffect records the effect on the operand stack size of each kind of
// instruction. No code in this repository reads it; it documents each
// opcode's effect. Instructions whose effect depends on a runtime operand
// count (calls and invokes) use variableStackEffect as a sentinel.
var stackEffect = [...]int8{
	OP_CONSTANT:       +1,
	OP_NIL:            +1,
	OP_TRUE:           +1,
	OP_FALSE:          +1,
	OP_POP:            -1,
	OP_GET_LOCAL:      +1,
	OP_SET_LOCAL:      0,
	OP_GET_GLOBAL:     +1,
	OP_DEFINE_GLOBAL:  -1,
	OP_SET_GLOBAL:     0,
	OP_GET_UPVALUE:    +1,
	OP_SET_UPVALUE:    0,
	OP_GET_PROPERTY:   0,
	OP_SET_PROPERTY:   -1,
	OP_GET_SUPER:      -1,
	OP_EQUAL:          -1,
	OP_GREATER:        -1,
	OP_LESS:           -1,
	OP_ADD:            -1,
	OP_SUBTRACT:       -1,
	OP_MULTIPLY:       -1,
	OP_DIVIDE:         -1,
	OP_NOT:            0,
	OP_NEGATE:         0,
	OP_PRINT:          -1,
	OP_JUMP:           0,
	OP_JUMP_IF_FALSE:  0,
	OP_LOOP:           0,
	OP_CALL:           variableStackEffect,
	OP_INVOKE:         variableStackEffect,
	OP_SUPER_INVOKE:   variableStackEffect,
	OP_CLOSURE:        +1,
	OP_CLOSE_UPVALUE:  -1,
	OP_RETURN:         0,
	OP_CLASS:          +1,
	OP_INHERIT:        -1,
	OP_METHOD:         -1,
}
