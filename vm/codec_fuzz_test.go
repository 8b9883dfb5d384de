package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzDecode(f *testing.F) {
	seeds := []*Program{
		{Instructions: []Instruction{MakeOp(OP_RET)}},
		{Instructions: []Instruction{MakePush(42), MakeAddS(-1), MakeOp(OP_RET)}},
		{Instructions: []Instruction{MakeJnz("0"), MakeJiz("main")}},
		{Instructions: []Instruction{MakeMemWrite(0, 72, 101, 108), MakePrint(0, 3)}},
		{Instructions: []Instruction{MakeMemWriteS(10, 4), MakeMemRead(10)}},
	}
	for _, prog := range seeds {
		f.Add(prog.Encode())
	}
	f.Add([]byte{0x10, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff})
	f.Add([]byte{0x06, 'm'})
	f.Add([]byte{0xff, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		assert := assert.New(t)

		prog, err := Decode(data)
		if err != nil {
			assert.Nil(prog)
			return
		}

		// Whatever decodes must re-encode to the same bytes.
		assert.Equal(data, prog.Encode())
	})
}
