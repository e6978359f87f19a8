package disasm

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"evmobf/internal/bytecode"
	"evmobf/internal/opcodes"
)

const sample = "6042600a5652602060005b0033602f01601656003360ff5b00"

func TestDecodeSample(t *testing.T) {
	s, err := Decode(bytecode.MustParse(sample), opcodes.Default())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	wantOffsets := []int{0, 4, 8, 10, 12, 16, 20, 22, 24, 26, 30, 32, 36, 38, 40, 42, 46, 48}
	if len(s) != len(wantOffsets) {
		t.Fatalf("Decode() returned %d instructions, want %d", len(s), len(wantOffsets))
	}
	for i, inst := range s {
		if inst.Offset != wantOffsets[i] {
			t.Errorf("inst %d offset = %d, want %d", i, inst.Offset, wantOffsets[i])
		}
		if inst.Index != i+1 {
			t.Errorf("inst %d index = %d, want %d", i, inst.Index, i+1)
		}
	}
	if s[1].Op != opcodes.PUSH1 || s[2].Op != opcodes.JUMP {
		t.Errorf("inst 2,3 = %v %v, want PUSH1 JUMP", s[1].Op, s[2].Op)
	}
	if start, end := s[1].Immediate(); start != 6 || end != 8 {
		t.Errorf("Immediate() = %d,%d, want 6,8", start, end)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"undefined opcode", "6001ff", opcodes.ErrUnknownOpcode},
		{"truncated push", "600161ab", ErrTruncated},
		{"truncated push32", "7f00", ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytecode.MustParse(tt.code), opcodes.Default())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLastPositionAndCount(t *testing.T) {
	tbl := opcodes.Default()
	code := bytecode.MustParse(sample)

	n, err := Count(code, tbl)
	if err != nil || n != 18 {
		t.Errorf("Count() = %d, %v, want 18", n, err)
	}
	last, err := LastPosition(code, tbl)
	if err != nil || last != code.ByteLen()-1 {
		t.Errorf("LastPosition() = %d, %v, want %d", last, err, code.ByteLen()-1)
	}

	stop, err := bytecode.Parse("00")
	if err != nil {
		t.Fatal(err)
	}
	if last, _ := LastPosition(stop, tbl); last != 0 {
		t.Errorf("LastPosition(STOP) = %d, want 0", last)
	}
}

func TestOpcodeAt(t *testing.T) {
	tbl := opcodes.Default()
	code := bytecode.MustParse(sample)
	op, ok, err := OpcodeAt(code, tbl, 3)
	if err != nil || !ok || op != opcodes.JUMP {
		t.Errorf("OpcodeAt(3) = %v, %v, %v, want JUMP", op, ok, err)
	}
	if _, ok, _ := OpcodeAt(code, tbl, 19); ok {
		t.Error("OpcodeAt(19) ok = true past the end")
	}
}

func TestWalkerStopsAtMutation(t *testing.T) {
	tbl := opcodes.Default()
	code := bytecode.MustParse("6001")
	w := NewWalker(code, tbl)
	if !w.Next() {
		t.Fatal("Next() = false")
	}
	code.AppendOp(opcodes.JUMPDEST)
	if !w.Next() || w.Inst().Op != opcodes.JUMPDEST {
		t.Errorf("walker did not read appended JUMPDEST")
	}
	if w.Next() || w.Err() != nil {
		t.Errorf("Next() at end = true or err %v", w.Err())
	}
}

// Decoding is a pure function of the buffer.
func TestDecodeIdempotent(t *testing.T) {
	tbl := opcodes.Default()
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "code").([]byte)
		code := bytecode.FromBytes(raw)
		a, errA := Decode(code, tbl)
		b, errB := Decode(code, tbl)
		if (errA == nil) != (errB == nil) {
			t.Fatalf("errors differ: %v vs %v", errA, errB)
		}
		if len(a) != len(b) {
			t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("inst %d differs: %+v vs %+v", i, a[i], b[i])
			}
		}
		if errA == nil && len(a) > 0 && a[len(a)-1].End() != code.Len() {
			t.Fatalf("stream ends at %d, code has %d digits", a[len(a)-1].End(), code.Len())
		}
	})
}
