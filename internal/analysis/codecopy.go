package analysis

import (
	"errors"

	"evmobf/internal/bytecode"
	"evmobf/internal/disasm"
	"evmobf/internal/opcodes"
)

// ErrNoCodecopyLengthPattern means init code has no PUSH that feeds
// CODECOPY's length argument.
var ErrNoCodecopyLengthPattern = errors.New("no PUSH -> CODECOPY length pattern")

// FindCodecopyLength returns the first PUSH (PUSH0 included) whose
// CodecopyLookahead-th following instruction is CODECOPY. In solc output this
// is the push of the runtime code length: PUSH len, DUP1, PUSH off, PUSH 0, CODECOPY.
func FindCodecopyLength(code *bytecode.Code, table opcodes.Table) (disasm.Inst, error) {
	stream, err := disasm.Decode(code, table)
	if err != nil {
		return disasm.Inst{}, err
	}
	for i, inst := range stream {
		if !inst.Op.IsPush() {
			continue
		}
		if j := i + CodecopyLookahead; j < len(stream) && stream[j].Op == opcodes.CODECOPY {
			return inst, nil
		}
	}
	return disasm.Inst{}, ErrNoCodecopyLengthPattern
}
