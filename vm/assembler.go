package vm

import (
	"bufio"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Assembler translates `.asv` assembly text into a Program. Malformed
// lines never abort an assembly: each is dropped and recorded in Diags.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	Label  map[string]int    // Map of jump labels to instruction addresses.
	Equate map[string]string // Map of .equ constants.
	Diags  []error           // Recoverable diagnostics from the last Parse.
}

// parenRe matches compile-time $(...) expressions.
var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// sourceLine is a cleaned instruction candidate awaiting parsing.
type sourceLine struct {
	LineNo int
	Text   string
}

// Parse assembles an input stream into a Program.
//
// The source is processed in three passes: label collection, instruction
// construction, and label resolution. The returned error reports only a
// stream read failure; per-line problems are collected in asm.Diags and
// the offending lines dropped.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	asm.Label = make(map[string]int, 16)
	asm.Equate = make(map[string]string, 16)
	asm.Diags = asm.Diags[:0]

	// Pass 1: strip comments, apply directives, and bind labels to the
	// count of instruction lines seen so far. Labels and directives do
	// not occupy an address.
	var lines []sourceLine
	var lineno int

	for scanner.Scan() {
		text := scanner.Text()
		lineno++

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		code, _, _ := strings.Cut(text, ";")
		code = strings.TrimSpace(code)

		switch {
		case len(code) == 0:
			// Blank or pure-comment line.
		case strings.HasPrefix(code, "."):
			asm.directive(code, lineno)
		case strings.HasSuffix(code, ":"):
			label := strings.TrimSpace(strings.TrimSuffix(code, ":"))
			if _, ok := asm.Label[label]; ok {
				asm.diag(lineno, code, ErrLabelDuplicate)
			}
			asm.Label[label] = len(lines)
		default:
			lines = append(lines, sourceLine{LineNo: lineno, Text: code})
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}

	// Pass 2: parse each remaining line into an instruction. A dropped
	// line still occupies the address it was counted at in pass 1.
	instrs := make([]Instruction, 0, len(lines))
	srcOf := make([]sourceLine, 0, len(lines))

	for _, line := range lines {
		words, werr := asm.expand(line)
		if werr != nil {
			asm.diag(line.LineNo, line.Text, werr)
			continue
		}

		inst, perr := parseInstruction(words)
		if perr != nil {
			asm.diag(line.LineNo, line.Text, perr)
			continue
		}

		instrs = append(instrs, inst)
		srcOf = append(srcOf, line)
	}

	// Pass 3: resolve symbolic jump targets to instruction addresses.
	// Targets that are already non-negative numbers pass through; anything
	// else stays unresolved and is reported.
	for n := range instrs {
		inst := &instrs[n]
		if inst.Op != OP_JIZ && inst.Op != OP_JNZ {
			continue
		}

		if addr, ok := asm.Label[inst.Target]; ok {
			inst.Target = strconv.Itoa(addr)
			continue
		}
		if addr, aerr := strconv.Atoi(inst.Target); aerr == nil && addr >= 0 {
			continue
		}
		asm.diag(srcOf[n].LineNo, srcOf[n].Text, ErrLabelMissing(inst.Target))
	}

	prog = &Program{Instructions: instrs}

	return
}

// diag records a recoverable per-line diagnostic.
func (asm *Assembler) diag(lineno int, line string, err error) {
	se := &ErrSyntax{LineNo: lineno, Line: line, Err: err}
	asm.Diags = append(asm.Diags, se)

	if asm.Verbose {
		log.Printf("asm: %v", se)
	}
}

// directive processes a leading-dot assembler directive.
func (asm *Assembler) directive(code string, lineno int) {
	expanded, err := asm.evalParens(code, lineno)
	if err != nil {
		asm.diag(lineno, code, err)
		return
	}

	words := strings.Fields(expanded)

	switch words[0] {
	case ".equ":
		if len(words) != 3 {
			asm.diag(lineno, code, ErrEquateSyntax)
			return
		}
		if _, ok := asm.Equate[words[1]]; ok {
			asm.diag(lineno, code, ErrEquateDuplicate)
			return
		}
		asm.Equate[words[1]] = words[2]
	default:
		asm.diag(lineno, code, ErrDirectiveUnknown)
	}
}

// expand evaluates $(...) expressions and equates, returning the words of
// an instruction line.
func (asm *Assembler) expand(line sourceLine) (words []string, err error) {
	text, err := asm.evalParens(line.Text, line.LineNo)
	if err != nil {
		return
	}

	words = strings.Fields(text)

	for n, word := range words {
		if equate, ok := asm.Equate[word]; ok {
			words[n] = equate
		}
	}

	return
}

// evalParens substitutes each $(...) expression with its computed value.
func (asm *Assembler) evalParens(text string, lineno int) (out string, err error) {
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	out = parenRe.ReplaceAllStringFunc(text, func(str string) string {
		value, verr := asm.parenEval(str[2 : len(str)-1])
		if verr != nil {
			err = verr
		}
		return strconv.FormatInt(value, 10)
	})

	return
}

// parenEval does compile-time $(...) evaluations. Every integer-valued
// equate is predefined in the expression environment.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, verr := strconv.ParseInt(str, 0, 64)
		if verr != nil {
			// Non-integer equates are not visible to expressions.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = st_int64

	return
}

// parseI32 parses a decimal 32-bit signed operand.
func parseI32(word string) (value int32, err error) {
	v64, perr := strconv.ParseInt(word, 10, 32)
	if perr != nil {
		err = ErrParseNumber(word)
		return
	}
	value = int32(v64)

	return
}

// parseInstruction parses the words of one cleaned line. Mnemonics are
// case-insensitive; operands are positional.
func parseInstruction(words []string) (inst Instruction, err error) {
	op, ok := mnemonicOp[strings.ToUpper(words[0])]
	if !ok {
		err = ErrMnemonicUnknown
		return
	}
	inst.Op = op

	switch op {
	case OP_NULL, OP_DUP, OP_SWAP, OP_POP, OP_RET,
		OP_ADD, OP_SUB, OP_MULT, OP_DIV:
		if len(words) != 1 {
			err = ErrOperandCount
		}

	case OP_PUSH, OP_ADDS, OP_SUBS, OP_MULTS, OP_DIVS:
		if len(words) != 2 {
			err = ErrOperandCount
			return
		}
		inst.Value, err = parseI32(words[1])

	case OP_JIZ, OP_JNZ:
		if len(words) != 2 {
			err = ErrOperandCount
			return
		}
		inst.Target = words[1]

	case OP_MEMREAD:
		if len(words) != 2 {
			err = ErrOperandCount
			return
		}
		inst.Addr, err = parseI32(words[1])

	case OP_MEMWRITES, OP_PRINT:
		if len(words) != 3 {
			err = ErrOperandCount
			return
		}
		inst.Addr, err = parseI32(words[1])
		if err != nil {
			return
		}
		inst.Count, err = parseI32(words[2])

	case OP_MEMWRITE:
		// Address plus zero or more values; malformed trailing tokens
		// are filtered out rather than dropping the line.
		if len(words) < 2 {
			err = ErrOperandCount
			return
		}
		inst.Addr, err = parseI32(words[1])
		if err != nil {
			return
		}
		for _, word := range words[2:] {
			if value, verr := parseI32(word); verr == nil {
				inst.Values = append(inst.Values, value)
			}
		}
	}

	return
}
