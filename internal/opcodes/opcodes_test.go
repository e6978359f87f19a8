package opcodes

import (
	"errors"
	"testing"
)

func TestDefaultSizes(t *testing.T) {
	tests := []struct {
		name string
		op   OpCode
		want int
	}{
		{"stop", STOP, 2},
		{"jump", JUMP, 2},
		{"jumpdest", JUMPDEST, 2},
		{"push0", PUSH0, 2},
		{"push1", PUSH1, 4},
		{"push2", PUSH2, 6},
		{"push32", PUSH32, 66},
		{"dup16", 0x8f, 2},
		{"swap1", 0x90, 2},
		{"invalid", INVALID, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Default().Lookup(tt.op)
			if err != nil {
				t.Fatalf("Lookup(%#x) error = %v", byte(tt.op), err)
			}
			if info.Size != tt.want {
				t.Errorf("Lookup(%#x).Size = %d, want %d", byte(tt.op), info.Size, tt.want)
			}
		})
	}
}

func TestDefaultRejectsUndefined(t *testing.T) {
	for _, op := range []OpCode{0x0c, 0x21, 0xef, 0xff} {
		if _, err := Default().Lookup(op); !errors.Is(err, ErrUnknownOpcode) {
			t.Errorf("Lookup(%#x) error = %v, want ErrUnknownOpcode", byte(op), err)
		}
	}
}

func TestPush(t *testing.T) {
	for n := 0; n <= 32; n++ {
		op, err := Push(n)
		if err != nil {
			t.Fatalf("Push(%d) error = %v", n, err)
		}
		if op.ImmediateBytes() != n {
			t.Errorf("Push(%d).ImmediateBytes() = %d", n, op.ImmediateBytes())
		}
	}
	if _, err := Push(33); err == nil {
		t.Error("Push(33) expected error")
	}
}

func TestString(t *testing.T) {
	if got := PUSH1.String(); got != "PUSH1" {
		t.Errorf("PUSH1.String() = %q", got)
	}
	if got := OpCode(0xff).String(); got != "opcode 0xff not defined" {
		t.Errorf("0xff.String() = %q", got)
	}
}

func TestCustomTable(t *testing.T) {
	tbl := New(map[OpCode]string{PUSH2: "PUSH2", 0xaa: "CUSTOM"})
	if info, err := tbl.Lookup(0xaa); err != nil || info.Size != 2 || info.Name != "CUSTOM" {
		t.Errorf("Lookup(0xaa) = %+v, %v", info, err)
	}
	if _, err := tbl.Lookup(JUMP); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("Lookup(JUMP) error = %v, want ErrUnknownOpcode", err)
	}
}
