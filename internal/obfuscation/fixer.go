package obfuscation

import (
	"fmt"

	"github.com/holiman/uint256"

	"evmobf/internal/analysis"
	"evmobf/internal/bytecode"
	"evmobf/internal/disasm"
	"evmobf/internal/opcodes"
)

// FixRuntimeLength rewrites the PUSH that supplies CODECOPY's length in init
// code so the constructor copies runtimeLen bytes. runtimeLen is the byte
// length of the final runtime code, i.e. its last byte position plus one.
func FixRuntimeLength(initCode *bytecode.Code, runtimeLen int, table opcodes.Table) (disasm.Inst, error) {
	push, err := analysis.FindCodecopyLength(initCode, table)
	if err != nil {
		return disasm.Inst{}, err
	}
	value := uint256.NewInt(uint64(runtimeLen))
	if err := bytecode.PatchOperand(initCode, table, push.Offset, push.Op, value); err != nil {
		return disasm.Inst{}, fmt.Errorf("runtime length %d: %w", runtimeLen, err)
	}
	return push, nil
}
