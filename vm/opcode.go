package vm

import (
	"fmt"
)

// Op is a one-byte instruction tag. The encoded value is the opcode byte
// written to bytecode.
type Op byte

const (
	OP_NULL      = Op(0x00) // No operation.
	OP_PUSH      = Op(0x01) // Push an immediate value.
	OP_DUP       = Op(0x02) // Duplicate the top of stack.
	OP_SWAP      = Op(0x03) // Exchange the top two values.
	OP_POP       = Op(0x04) // Discard the top of stack.
	OP_RET       = Op(0x05) // Terminate execution.
	OP_JIZ       = Op(0x06) // Jump if top of stack is zero.
	OP_JNZ       = Op(0x07) // Jump if top of stack is not zero.
	OP_ADDS      = Op(0x08) // Add an immediate to the top of stack.
	OP_ADD       = Op(0x09) // Pop two, push their sum.
	OP_SUBS      = Op(0x0A) // Subtract an immediate from the top of stack.
	OP_SUB       = Op(0x0B) // Pop two, push second minus top.
	OP_MULTS     = Op(0x0C) // Scale the top of stack by an immediate.
	OP_MULT      = Op(0x0D) // Pop two, push their product.
	OP_DIVS      = Op(0x0E) // Divide the top of stack by an immediate.
	OP_DIV       = Op(0x0F) // Pop two, push second divided by top.
	OP_MEMWRITE  = Op(0x10) // Write a literal value list to memory.
	OP_MEMWRITES = Op(0x11) // Pop values off the stack into memory.
	OP_MEMREAD   = Op(0x12) // Push a memory cell onto the stack.
	OP_PRINT     = Op(0x13) // Append a memory range to the output buffer.
)

// opNames maps each opcode to its canonical mnemonic.
var opNames = map[Op]string{
	OP_NULL:      "NULL",
	OP_PUSH:      "PUSH",
	OP_DUP:       "DUP",
	OP_SWAP:      "SWAP",
	OP_POP:       "POP",
	OP_RET:       "RET",
	OP_JIZ:       "JIZ",
	OP_JNZ:       "JNZ",
	OP_ADDS:      "ADDS",
	OP_ADD:       "ADD",
	OP_SUBS:      "SUBS",
	OP_SUB:       "SUB",
	OP_MULTS:     "MULTS",
	OP_MULT:      "MULT",
	OP_DIVS:      "DIVS",
	OP_DIV:       "DIV",
	OP_MEMWRITE:  "MEMWRITE",
	OP_MEMWRITES: "MEMWRITES",
	OP_MEMREAD:   "MEMREAD",
	OP_PRINT:     "PRINT",
}

// mnemonicOp maps upper-cased mnemonics back to opcodes.
var mnemonicOp = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

// String returns the canonical mnemonic for the opcode.
func (op Op) String() string {
	name, ok := opNames[op]
	if !ok {
		return fmt.Sprintf("OP(0x%02X)", byte(op))
	}
	return name
}
