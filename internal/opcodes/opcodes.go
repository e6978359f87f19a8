// Package opcodes provides the opcode table used to decode EVM bytecode.
// A table maps an opcode byte to its mnemonic and its total encoded length
// measured in hex digits (2 for a bare opcode, 2+2k for a k-byte immediate).
package opcodes

import (
	"errors"
	"fmt"
)

// OpCode is a single EVM instruction byte.
type OpCode byte

const (
	STOP     OpCode = 0x00
	CODECOPY OpCode = 0x39
	POP      OpCode = 0x50
	JUMP     OpCode = 0x56
	JUMPI    OpCode = 0x57
	JUMPDEST OpCode = 0x5b
	PUSH0    OpCode = 0x5f
	PUSH1    OpCode = 0x60
	PUSH2    OpCode = 0x61
	PUSH32   OpCode = 0x7f
	INVALID  OpCode = 0xfe
)

// ErrUnknownOpcode is returned when a table has no entry for an opcode.
var ErrUnknownOpcode = errors.New("unknown opcode")

// IsPush reports whether op pushes an immediate literal (PUSH0 through PUSH32).
func (op OpCode) IsPush() bool {
	return op >= PUSH0 && op <= PUSH32
}

// ImmediateBytes returns the number of immediate bytes following op.
func (op OpCode) ImmediateBytes() int {
	if !op.IsPush() {
		return 0
	}
	return int(op - PUSH0)
}

// Push returns the PUSH opcode carrying an n-byte immediate.
func Push(n int) (OpCode, error) {
	if n < 0 || n > 32 {
		return 0, fmt.Errorf("no push opcode for %d immediate bytes", n)
	}
	return PUSH0 + OpCode(n), nil
}

func (op OpCode) String() string {
	if name, ok := names[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode 0x%02x not defined", byte(op))
}

// Info describes one table entry.
type Info struct {
	Name string
	Size int // total instruction length in hex digits
}

// Table resolves opcode bytes. Lookups for unlisted opcodes fail with
// ErrUnknownOpcode.
type Table interface {
	Lookup(op OpCode) (Info, error)
}

type table struct {
	entries [256]*Info
}

// New builds a table from a set of mnemonics. Instruction sizes are derived
// from the opcode: PUSH-class opcodes carry their immediate, everything else
// is one byte.
func New(mnemonics map[OpCode]string) Table {
	t := &table{}
	for op, name := range mnemonics {
		t.entries[op] = &Info{
			Name: name,
			Size: 2 + 2*op.ImmediateBytes(),
		}
	}
	return t
}

func (t *table) Lookup(op OpCode) (Info, error) {
	if info := t.entries[op]; info != nil {
		return *info, nil
	}
	return Info{}, fmt.Errorf("%w 0x%02x", ErrUnknownOpcode, byte(op))
}

var defaultTable = New(names)

// Default returns the Cancun instruction set without SELFDESTRUCT.
func Default() Table {
	return defaultTable
}
