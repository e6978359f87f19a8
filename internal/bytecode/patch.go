package bytecode

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"evmobf/internal/opcodes"
)

var (
	ErrOperandOverflow = errors.New("value does not fit operand")
	ErrOpcodeMismatch  = errors.New("opcode at offset does not match")
)

// FitsOperand reports whether value can be encoded in an immediate of the
// given byte width.
func FitsOperand(value *uint256.Int, width int) bool {
	return value.BitLen() <= 8*width
}

// PatchOperand overwrites the immediate of the instruction at offset with
// value, zero padded to the operand width. Only the digits in
// [offset+2, offset+size) change; the buffer length never does.
func PatchOperand(c *Code, table opcodes.Table, offset int, op opcodes.OpCode, value *uint256.Int) error {
	actual, err := c.OpcodeAt(offset)
	if err != nil {
		return err
	}
	if actual != op {
		return fmt.Errorf("%w: want %v, found %v at digit %d", ErrOpcodeMismatch, op, actual, offset)
	}
	info, err := table.Lookup(op)
	if err != nil {
		return err
	}
	if offset+info.Size > c.Len() {
		return fmt.Errorf("%w: %v at digit %d needs %d digits", ErrOutOfRange, op, offset, info.Size)
	}
	width := (info.Size - 2) / 2
	if !FitsOperand(value, width) {
		return fmt.Errorf("%w: %s needs %d bytes, %v at digit %d holds %d",
			ErrOperandOverflow, value.Hex(), (value.BitLen()+7)/8, op, offset, width)
	}
	buf := value.Bytes32()
	hex.Encode(c.digits[offset+2:offset+info.Size], buf[32-width:])
	return nil
}
