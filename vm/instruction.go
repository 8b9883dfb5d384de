package vm

import (
	"fmt"
	"strings"
)

// Instruction is a single decoded machine operation. Only the operand
// fields used by the opcode are meaningful; the rest stay at their zero
// value. Instructions are immutable once constructed.
type Instruction struct {
	Op     Op      // Opcode tag.
	Value  int32   // Immediate value (PUSH, ADDS, SUBS, MULTS, DIVS).
	Target string  // Jump target, symbolic or resolved (JIZ, JNZ).
	Addr   int32   // Memory address (MEMWRITE, MEMWRITES, MEMREAD, PRINT).
	Count  int32   // Cell count (MEMWRITES, PRINT).
	Values []int32 // Literal value list (MEMWRITE).
}

// MakeOp creates an instruction for an opcode with no operands.
func MakeOp(op Op) Instruction {
	return Instruction{Op: op}
}

// MakePush creates a PUSH instruction.
func MakePush(value int32) Instruction {
	return Instruction{Op: OP_PUSH, Value: value}
}

// MakeJiz creates a jump-if-zero instruction. The target may be a label
// name or the decimal text of an instruction address.
func MakeJiz(target string) Instruction {
	return Instruction{Op: OP_JIZ, Target: target}
}

// MakeJnz creates a jump-if-not-zero instruction.
func MakeJnz(target string) Instruction {
	return Instruction{Op: OP_JNZ, Target: target}
}

// MakeAddS creates an add-immediate instruction.
func MakeAddS(value int32) Instruction {
	return Instruction{Op: OP_ADDS, Value: value}
}

// MakeSubS creates a subtract-immediate instruction.
func MakeSubS(value int32) Instruction {
	return Instruction{Op: OP_SUBS, Value: value}
}

// MakeMultS creates a multiply-immediate instruction.
func MakeMultS(value int32) Instruction {
	return Instruction{Op: OP_MULTS, Value: value}
}

// MakeDivS creates a divide-immediate instruction.
func MakeDivS(value int32) Instruction {
	return Instruction{Op: OP_DIVS, Value: value}
}

// MakeMemWrite creates a bulk literal memory write.
func MakeMemWrite(addr int32, values ...int32) Instruction {
	return Instruction{Op: OP_MEMWRITE, Addr: addr, Values: values}
}

// MakeMemWriteS creates a stack-to-memory write of count cells.
func MakeMemWriteS(addr, count int32) Instruction {
	return Instruction{Op: OP_MEMWRITES, Addr: addr, Count: count}
}

// MakeMemRead creates a memory-to-stack read.
func MakeMemRead(addr int32) Instruction {
	return Instruction{Op: OP_MEMREAD, Addr: addr}
}

// MakePrint creates an output instruction for count cells starting at addr.
func MakePrint(addr, count int32) Instruction {
	return Instruction{Op: OP_PRINT, Addr: addr, Count: count}
}

// String returns the instruction in assembly source form.
func (inst Instruction) String() string {
	switch inst.Op {
	case OP_PUSH, OP_ADDS, OP_SUBS, OP_MULTS, OP_DIVS:
		return fmt.Sprintf("%v %v", inst.Op, inst.Value)
	case OP_JIZ, OP_JNZ:
		return fmt.Sprintf("%v %v", inst.Op, inst.Target)
	case OP_MEMREAD:
		return fmt.Sprintf("%v %v", inst.Op, inst.Addr)
	case OP_MEMWRITES, OP_PRINT:
		return fmt.Sprintf("%v %v %v", inst.Op, inst.Addr, inst.Count)
	case OP_MEMWRITE:
		out := fmt.Sprintf("%v %v", inst.Op, inst.Addr)
		for _, value := range inst.Values {
			out += fmt.Sprintf(" %v", value)
		}
		return out
	default:
		return inst.Op.String()
	}
}

// Program is an ordered instruction sequence. The Nth instruction occupies
// address N; insertion order is execution order.
type Program struct {
	Instructions []Instruction
}

// String returns the program as assembly source, one instruction per line.
func (prog *Program) String() string {
	lines := make([]string, len(prog.Instructions))
	for n, inst := range prog.Instructions {
		lines[n] = inst.String()
	}
	return strings.Join(lines, "\n")
}
