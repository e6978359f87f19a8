package analysis

import (
	"github.com/holiman/uint256"

	"evmobf/internal/opcodes"
)

// JumpSite is a PUSH immediately followed by JUMP.
type JumpSite struct {
	Offset   int            // digit offset of the PUSH
	Op       opcodes.OpCode // the PUSH opcode
	Value    uint256.Int    // pushed jump target, 0 for PUSH0
	ValueHex string         // immediate digits as written, "00" for PUSH0
	Index    int            // 1-based instruction index of the PUSH
}

// Width returns the operand width of the PUSH in bytes.
func (s JumpSite) Width() int { return s.Op.ImmediateBytes() }
