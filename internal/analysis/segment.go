package analysis

import (
	"errors"

	"evmobf/internal/bytecode"
	"evmobf/internal/disasm"
	"evmobf/internal/opcodes"
)

// ErrNoInitCodeSplit means no CODECOPY-based boundary was found. It is not
// fatal: the whole buffer is then runtime code.
var ErrNoInitCodeSplit = errors.New("no init code split")

// Split cuts a contract's creation bytecode into initialization and runtime
// code. Counting starts at the first CODECOPY (count 1) and every later
// instruction adds one; runtime code begins at the instruction that brings
// the count to SplitInstructionCount. init ++ runtime always equals code.
func Split(code *bytecode.Code, table opcodes.Table) (initCode, runtime *bytecode.Code, err error) {
	counter := 0
	passed := false
	w := disasm.NewWalker(code, table)
	for w.Next() {
		inst := w.Inst()
		if inst.Op == opcodes.CODECOPY || passed {
			passed = true
			counter++
		}
		if counter == SplitInstructionCount {
			initCode, runtime = code.SplitAt(inst.Offset)
			return initCode, runtime, nil
		}
	}
	if err := w.Err(); err != nil {
		return nil, nil, err
	}
	return nil, nil, ErrNoInitCodeSplit
}
