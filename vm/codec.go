package vm

import (
	"bytes"
	"encoding/binary"
)

// Bytecode layout: each instruction is a one-byte opcode tag followed by
// its operands. Integer operands are 4-byte little-endian signed values;
// jump targets are raw bytes with a NUL terminator; MEMWRITE carries a
// 4-byte unsigned count ahead of its value list. There is no file header:
// instructions are decoded back-to-back until the buffer is exhausted.

// Encode serializes the program to bytecode.
func (prog *Program) Encode() (data []byte) {
	for _, inst := range prog.Instructions {
		data = appendInstruction(data, inst)
	}

	return
}

func appendI32(data []byte, value int32) []byte {
	return binary.LittleEndian.AppendUint32(data, uint32(value))
}

func appendInstruction(data []byte, inst Instruction) []byte {
	data = append(data, byte(inst.Op))

	switch inst.Op {
	case OP_PUSH, OP_ADDS, OP_SUBS, OP_MULTS, OP_DIVS:
		data = appendI32(data, inst.Value)
	case OP_JIZ, OP_JNZ:
		data = append(data, inst.Target...)
		data = append(data, 0)
	case OP_MEMREAD:
		data = appendI32(data, inst.Addr)
	case OP_MEMWRITES, OP_PRINT:
		data = appendI32(data, inst.Addr)
		data = appendI32(data, inst.Count)
	case OP_MEMWRITE:
		data = appendI32(data, inst.Addr)
		data = binary.LittleEndian.AppendUint32(data, uint32(len(inst.Values)))
		for _, value := range inst.Values {
			data = appendI32(data, value)
		}
	}

	return data
}

// Decode deserializes bytecode back into a Program. A truncated
// instruction, an unknown opcode tag, or an unterminated jump target is
// a fatal decode error reported with its byte offset.
func Decode(data []byte) (prog *Program, err error) {
	var instrs []Instruction

	offset := 0
	for offset < len(data) {
		inst, used, derr := decodeInstruction(data[offset:])
		if derr != nil {
			err = &ErrBytecode{Offset: offset, Err: derr}
			return
		}
		instrs = append(instrs, inst)
		offset += used
	}

	prog = &Program{Instructions: instrs}

	return
}

func decodeI32(data []byte, used *int) (value int32, err error) {
	if len(data) < *used+4 {
		err = ErrBytecodeTruncated
		return
	}
	value = int32(binary.LittleEndian.Uint32(data[*used:]))
	*used += 4

	return
}

func decodeTarget(data []byte, used *int) (target string, err error) {
	end := bytes.IndexByte(data[*used:], 0)
	if end < 0 {
		err = ErrTargetUnterminated
		return
	}
	target = string(data[*used : *used+end])
	*used += end + 1

	return
}

func decodeInstruction(data []byte) (inst Instruction, used int, err error) {
	op := Op(data[0])
	used = 1

	if _, ok := opNames[op]; !ok {
		err = ErrOpcode(data[0])
		return
	}
	inst.Op = op

	switch op {
	case OP_PUSH, OP_ADDS, OP_SUBS, OP_MULTS, OP_DIVS:
		inst.Value, err = decodeI32(data, &used)

	case OP_JIZ, OP_JNZ:
		inst.Target, err = decodeTarget(data, &used)

	case OP_MEMREAD:
		inst.Addr, err = decodeI32(data, &used)

	case OP_MEMWRITES, OP_PRINT:
		inst.Addr, err = decodeI32(data, &used)
		if err != nil {
			return
		}
		inst.Count, err = decodeI32(data, &used)

	case OP_MEMWRITE:
		inst.Addr, err = decodeI32(data, &used)
		if err != nil {
			return
		}
		if len(data) < used+4 {
			err = ErrBytecodeTruncated
			return
		}
		count := binary.LittleEndian.Uint32(data[used:])
		used += 4

		// Reject the count before allocating for it.
		if uint64(len(data)-used) < uint64(count)*4 {
			err = ErrBytecodeTruncated
			return
		}
		if count > 0 {
			inst.Values = make([]int32, count)
			for n := range inst.Values {
				inst.Values[n], _ = decodeI32(data, &used)
			}
		}
	}

	return
}
