package machine

import "fmt"

// Opcode mirrors compiler.Opcode byte for byte: the VM dispatch loop
// switches on this type rather than on compiler.Opcode (machine imports
// compiler only for FunctionProto and FunctionKind), so both enums are
// declared independently and kept in lock-step by hand, the same way the
// teacher keeps lang/compiler/opcode.go and lang/machine/opcode.go as two
// independently declared copies of its own opcode vocabulary.
type Opcode uint8

//nolint:revive
const (
	OP_CONSTANT Opcode = iota
	OP_NIL
	OP_TRUE
	OP_FALSE
	OP_POP

	OP_GET_LOCAL
	OP_SET_LOCAL
	OP_GET_GLOBAL
	OP_DEFINE_GLOBAL
	OP_SET_GLOBAL
	OP_GET_UPVALUE
	OP_SET_UPVALUE
	OP_GET_PROPERTY
	OP_SET_PROPERTY
	OP_GET_SUPER

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

	OP_JUMP
	OP_JUMP_IF_FALSE
	OP_LOOP

	OP_CALL

	OP_INVOKE
	OP_SUPER_INVOKE

	OP_CLOSURE
	OP_CLOSE_UPVALUE

	OP_RETURN

	OP_CLASS
	OP_INHERIT
	OP_METHOD

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
