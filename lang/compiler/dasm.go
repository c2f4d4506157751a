package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders proto and every function nested in its constant pool
// (transitively) as human-readable bytecode listings, in the same
// address-indexed style as the teacher's lang/compiler/asm.go Dasm, adapted
// from its varint/CFG decoding to this package's fixed-width operand
// encoding. The compiler tests use it; it is not a reversible assembly
// format: unlike the teacher, nothing here parses text
// back into a FunctionProto, because the compiler is this repository's only
// producer of bytecode.
func Disassemble(proto *FunctionProto) string {
	var b strings.Builder
	disassembleFunction(&b, proto)
	return b.String()
}

func disassembleFunction(b *strings.Builder, proto *FunctionProto) {
	name := proto.Name
	if name == "" {
		name = "<script>"
	}
	fmt.Fprintf(b, "== %s ==\n", name)

	for offset := 0; offset < len(proto.Code); {
		offset = disassembleInstruction(b, proto, offset)
	}

	for _, k := range proto.Constants {
		if nested, ok := k.(*FunctionProto); ok {
			b.WriteByte('\n')
			disassembleFunction(b, nested)
		}
	}
}

func disassembleInstruction(b *strings.Builder, proto *FunctionProto, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	if offset > 0 && proto.Lines[offset] == proto.Lines[offset-1] {
		fmt.Fprint(b, "   | ")
	} else {
		fmt.Fprintf(b, "%4d ", proto.Lines[offset])
	}

	op := Opcode(proto.Code[offset])
	switch op {
	case OP_CONSTANT, OP_GET_GLOBAL, OP_DEFINE_GLOBAL, OP_SET_GLOBAL,
		OP_GET_PROPERTY, OP_SET_PROPERTY, OP_GET_SUPER, OP_CLASS, OP_METHOD:
		return constantInstruction(b, op, proto, offset)
	case OP_GET_LOCAL, OP_SET_LOCAL, OP_GET_UPVALUE, OP_SET_UPVALUE, OP_CALL:
		return byteInstruction(b, op, proto, offset)
	case OP_INVOKE, OP_SUPER_INVOKE:
		return invokeInstruction(b, op, proto, offset)
	case OP_JUMP, OP_JUMP_IF_FALSE:
		return jumpInstruction(b, op, proto, offset, 1)
	case OP_LOOP:
		return jumpInstruction(b, op, proto, offset, -1)
	case OP_CLOSURE:
		return closureInstruction(b, proto, offset)
	default:
		return simpleInstruction(b, op, offset)
	}
}

func simpleInstruction(b *strings.Builder, op Opcode, offset int) int {
	fmt.Fprintf(b, "%s\n", op)
	return offset + 1
}

func byteInstruction(b *strings.Builder, op Opcode, proto *FunctionProto, offset int) int {
	slot := proto.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d\n", op, slot)
	return offset + 2
}

func constantInstruction(b *strings.Builder, op Opcode, proto *FunctionProto, offset int) int {
	idx := proto.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d '%v'\n", op, idx, proto.Constants[idx])
	return offset + 2
}

func invokeInstruction(b *strings.Builder, op Opcode, proto *FunctionProto, offset int) int {
	idx := proto.Code[offset+1]
	argCount := proto.Code[offset+2]
	fmt.Fprintf(b, "%-16s (%d args) %4d '%v'\n", op, argCount, idx, proto.Constants[idx])
	return offset + 3
}

func jumpInstruction(b *strings.Builder, op Opcode, proto *FunctionProto, offset, sign int) int {
	jump := int(proto.Code[offset+1])<<8 | int(proto.Code[offset+2])
	target := offset + 3 + sign*jump
	fmt.Fprintf(b, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func closureInstruction(b *strings.Builder, proto *FunctionProto, offset int) int {
	offset++
	idx := proto.Code[offset]
	offset++
	fmt.Fprintf(b, "%-16s %4d '%v'\n", OP_CLOSURE, idx, proto.Constants[idx])

	nested, _ := proto.Constants[idx].(*FunctionProto)
	if nested != nil {
		for range nested.Upvalues {
			isLocal := proto.Code[offset]
			offset++
			index := proto.Code[offset]
			offset++
			kind := "upvalue"
			if isLocal != 0 {
				kind = "local"
			}
			fmt.Fprintf(b, "%04d      |                     %s %d\n", offset-2, kind, index)
		}
	}
	return offset
}
