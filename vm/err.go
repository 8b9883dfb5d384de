package vm

import (
	"errors"

	"github.com/vortexvm/vortex/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrMnemonicUnknown  = errors.New(f("mnemonic unknown"))
	ErrOperandCount     = errors.New(f("operand count mismatch"))
	ErrEquateSyntax     = errors.New(f(".equ syntax"))
	ErrEquateDuplicate  = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate   = errors.New(f("label duplicated"))
	ErrDirectiveUnknown = errors.New(f("directive unknown"))

	// Codec errors
	ErrBytecodeTruncated  = errors.New(f("bytecode truncated"))
	ErrTargetUnterminated = errors.New(f("jump target unterminated"))

	// Machine errors
	ErrStackUnderflow = errors.New(f("stack underflow"))
	ErrDivideByZero   = errors.New(f("divide by zero"))
	ErrMemoryBounds   = errors.New(f("memory access out of bounds"))
	ErrJumpTarget     = errors.New(f("jump target invalid"))
)

// ErrOpcode reports an unrecognized opcode tag in bytecode.
type ErrOpcode byte

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x", byte(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrParseNumber reports a word that is not a valid 32-bit integer.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression reports a $(...) expression that failed to evaluate.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrLabelMissing reports a jump target that is neither a known label nor
// a non-negative instruction address.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrSyntax locates an assembly diagnostic at its source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrBytecode locates a decode failure at its byte offset.
type ErrBytecode struct {
	Offset int
	Err    error
}

func (err *ErrBytecode) Error() string {
	return f("offset %d %v", err.Offset, err.Err)
}

func (err *ErrBytecode) Unwrap() error {
	return err.Err
}

// ErrRuntime locates an execution diagnostic at its instruction address.
type ErrRuntime struct {
	Ip  int
	Op  Op
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("address %d %v %v", err.Ip, err.Op, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
