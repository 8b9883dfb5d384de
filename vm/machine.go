package vm

import (
	"log"
	"strconv"
)

const (
	MEMORY_SIZE = 2048 // Linear memory size, in 32-bit cells.
)

// Machine executes a Program against an operand stack and a fixed linear
// memory, collecting PRINT output in a byte buffer. One call to Run
// processes one program to completion or to a fatal abort; the stack,
// memory, and output afterwards are the final observable state.
type Machine struct {
	Verbose bool // If set, verbosely logs each dispatched instruction.

	Stack  Stack   // Operand stack.
	Memory []int32 // Linear memory, zeroed at every Reset.
	Output []byte  // Bytes emitted by PRINT.
	Diags  []error // Recoverable diagnostics from the last run.
	Ip     int     // Current instruction address.

	prog *Program
}

// NewMachine creates a machine with zeroed memory.
func NewMachine() (m *Machine) {
	m = &Machine{
		Memory: make([]int32, MEMORY_SIZE),
	}

	return
}

// Reset clears the stack, memory, output, and diagnostics.
func (m *Machine) Reset() {
	m.Stack.Reset()
	clear(m.Memory)
	m.Output = m.Output[:0]
	m.Diags = m.Diags[:0]
	m.Ip = 0
}

// Run resets the machine and executes the program to completion. A taken
// conditional jump with an invalid target aborts execution; the returned
// error carries the faulting address. All other problems are recoverable
// and recorded in m.Diags.
func (m *Machine) Run(prog *Program) (err error) {
	m.Reset()
	m.prog = prog

	for {
		var done bool
		done, err = m.Step()
		if done || err != nil {
			return
		}
	}
}

// Step dispatches the instruction at Ip. It reports done when the program
// returns or falls off the end of the instruction sequence.
func (m *Machine) Step() (done bool, err error) {
	prog := m.prog
	if prog == nil || m.Ip >= len(prog.Instructions) {
		done = true
		return
	}

	inst := prog.Instructions[m.Ip]

	if m.Verbose {
		log.Printf("vm: %4d: %v %v", m.Ip, inst, m.Stack.Data)
	}

	switch inst.Op {
	case OP_NULL:
		// no-op

	case OP_PUSH:
		m.Stack.Push(inst.Value)

	case OP_POP:
		m.Stack.Pop()

	case OP_DUP:
		if value, ok := m.Stack.Peek(); ok {
			m.Stack.Push(value)
		}

	case OP_SWAP:
		if m.Stack.Depth() >= 2 {
			a, _ := m.Stack.Pop()
			b, _ := m.Stack.Pop()
			m.Stack.Push(a)
			m.Stack.Push(b)
		}

	case OP_RET:
		done = true
		return

	case OP_JIZ, OP_JNZ:
		return m.jump(inst)

	case OP_ADDS:
		if value, ok := m.Stack.Pop(); ok {
			m.Stack.Push(value + inst.Value)
		}

	case OP_SUBS:
		if value, ok := m.Stack.Pop(); ok {
			m.Stack.Push(value - inst.Value)
		}

	case OP_MULTS:
		// Scales the top of stack in place.
		if depth := m.Stack.Depth(); depth > 0 {
			m.Stack.Data[depth-1] *= inst.Value
		}

	case OP_DIVS:
		// Division by a zero immediate leaves the value unchanged.
		if depth := m.Stack.Depth(); depth > 0 && inst.Value != 0 {
			m.Stack.Data[depth-1] /= inst.Value
		}

	case OP_ADD, OP_SUB, OP_MULT, OP_DIV:
		m.arith(inst.Op)

	case OP_MEMWRITE:
		m.memWrite(inst)

	case OP_MEMWRITES:
		m.memWriteStack(inst)

	case OP_MEMREAD:
		m.memRead(inst)

	case OP_PRINT:
		m.print(inst)

	default:
		err = &ErrRuntime{Ip: m.Ip, Op: inst.Op, Err: ErrOpcode(byte(inst.Op))}
		return
	}

	m.Ip++
	if m.Ip >= len(prog.Instructions) {
		done = true
	}

	return
}

// diag records a recoverable diagnostic at the current address.
func (m *Machine) diag(op Op, err error) {
	re := &ErrRuntime{Ip: m.Ip, Op: op, Err: err}
	m.Diags = append(m.Diags, re)

	if m.Verbose {
		log.Printf("vm: %v", re)
	}
}

// jump handles the conditional jumps. An empty stack or an unmet
// condition falls through; a taken jump with a target that is not a
// valid instruction address is fatal.
func (m *Machine) jump(inst Instruction) (done bool, err error) {
	top, ok := m.Stack.Peek()
	taken := ok && ((inst.Op == OP_JIZ && top == 0) || (inst.Op == OP_JNZ && top != 0))
	if !taken {
		m.Ip++
		done = m.Ip >= len(m.prog.Instructions)
		return
	}

	addr, aerr := strconv.Atoi(inst.Target)
	if aerr != nil || addr < 0 || addr >= len(m.prog.Instructions) {
		err = &ErrRuntime{Ip: m.Ip, Op: inst.Op, Err: ErrJumpTarget}
		return
	}

	m.Ip = addr

	return
}

// arith handles the two-operand arithmetic forms: pop a (top) then b,
// push b op a. With fewer than two values the stack is left unchanged.
// A zero divisor skips the push, losing both operands.
func (m *Machine) arith(op Op) {
	if m.Stack.Depth() < 2 {
		m.diag(op, ErrStackUnderflow)
		return
	}

	a, _ := m.Stack.Pop()
	b, _ := m.Stack.Pop()

	switch op {
	case OP_ADD:
		m.Stack.Push(b + a)
	case OP_SUB:
		m.Stack.Push(b - a)
	case OP_MULT:
		m.Stack.Push(b * a)
	case OP_DIV:
		if a == 0 {
			m.diag(op, ErrDivideByZero)
			return
		}
		m.Stack.Push(b / a)
	}
}

// memWrite copies a literal value list into memory, truncating values
// that would run past the end of memory.
func (m *Machine) memWrite(inst Instruction) {
	if inst.Addr < 0 || inst.Addr >= MEMORY_SIZE {
		m.diag(inst.Op, ErrMemoryBounds)
		return
	}

	for n, value := range inst.Values {
		addr := int(inst.Addr) + n
		if addr >= len(m.Memory) {
			break
		}
		m.Memory[addr] = value
	}
}

// memWriteStack pops Count values and writes them to memory in their
// original push order. The whole range is bounds-checked up front.
func (m *Machine) memWriteStack(inst Instruction) {
	if inst.Addr < 0 || inst.Count < 0 ||
		int(inst.Addr)+int(inst.Count) > len(m.Memory) {
		m.diag(inst.Op, ErrMemoryBounds)
		return
	}

	values := make([]int32, 0, inst.Count)
	for i := int32(0); i < inst.Count; i++ {
		value, ok := m.Stack.Pop()
		if !ok {
			m.diag(inst.Op, ErrStackUnderflow)
			break
		}
		values = append(values, value)
	}

	// Pop order is the reverse of push order.
	for n, value := range values {
		m.Memory[int(inst.Addr)+len(values)-1-n] = value
	}
}

// memRead pushes the addressed cell. Out of bounds, nothing is pushed.
func (m *Machine) memRead(inst Instruction) {
	if inst.Addr < 0 || int(inst.Addr) >= len(m.Memory) {
		m.diag(inst.Op, ErrMemoryBounds)
		return
	}

	m.Stack.Push(m.Memory[inst.Addr])
}

// print appends the low byte of each cell in [Addr, Addr+Count) to the
// output buffer.
func (m *Machine) print(inst Instruction) {
	if inst.Addr < 0 || inst.Count < 0 ||
		int(inst.Addr)+int(inst.Count) > len(m.Memory) {
		m.diag(inst.Op, ErrMemoryBounds)
		return
	}

	for _, value := range m.Memory[inst.Addr : inst.Addr+inst.Count] {
		m.Output = append(m.Output, byte(value))
	}
}
