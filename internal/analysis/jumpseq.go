package analysis

import (
	"evmobf/internal/bytecode"
	"evmobf/internal/disasm"
	"evmobf/internal/opcodes"
)

// FindJumpSites returns every PUSH->JUMP pair in code, in ascending offset
// order. The order matters: callers mutate sites one at a time.
func FindJumpSites(code *bytecode.Code, table opcodes.Table) ([]JumpSite, error) {
	var (
		sites []JumpSite
		prev  disasm.Inst
		have  bool
	)
	w := disasm.NewWalker(code, table)
	for w.Next() {
		cur := w.Inst()
		if have && prev.Op.IsPush() && cur.Op == opcodes.JUMP {
			sites = append(sites, newJumpSite(code, prev))
		}
		prev, have = cur, true
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	// the instruction after the last one reads as STOP, which never completes a pair
	return sites, nil
}

func newJumpSite(code *bytecode.Code, inst disasm.Inst) JumpSite {
	site := JumpSite{
		Offset:   inst.Offset,
		Op:       inst.Op,
		Index:    inst.Index,
		ValueHex: "00",
	}
	start, end := inst.Immediate()
	if end > start {
		site.ValueHex = code.Digits(start, end)
		site.Value.SetBytes(code.DecodeRange(start, end))
	}
	return site
}
