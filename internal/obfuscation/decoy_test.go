package obfuscation

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"evmobf/internal/analysis"
	"evmobf/internal/bytecode"
	"evmobf/internal/opcodes"
)

func TestCatalogueDecodes(t *testing.T) {
	tbl := opcodes.Default()
	for i, frag := range DefaultCatalogue() {
		code, err := bytecode.Parse(frag)
		if err != nil {
			t.Fatalf("entry %d: Parse() error = %v", i, err)
		}
		sites, err := analysis.FindJumpSites(code, tbl)
		if err != nil {
			t.Fatalf("entry %d: FindJumpSites() error = %v", i, err)
		}
		if len(sites) == 0 {
			t.Errorf("entry %d has no internal jump", i)
		}
	}
}

// Relocating by p adds p to every internal jump target and changes nothing else.
func TestRelocateAdditive(t *testing.T) {
	tbl := opcodes.Default()
	catalogue := DefaultCatalogue()
	rapid.Check(t, func(t *rapid.T) {
		idx := rapid.IntRange(0, len(catalogue)-1).Draw(t, "index").(int)
		pos := rapid.IntRange(0, 0xff00).Draw(t, "position").(int)

		orig := bytecode.MustParse(catalogue[idx])
		moved := orig.Clone()
		if err := Relocate(moved, tbl, pos); err != nil {
			t.Fatalf("Relocate() error = %v", err)
		}
		if moved.Len() != orig.Len() {
			t.Fatalf("Relocate() changed length %d -> %d", orig.Len(), moved.Len())
		}

		before, _ := analysis.FindJumpSites(orig, tbl)
		after, err := analysis.FindJumpSites(moved, tbl)
		if err != nil {
			t.Fatalf("FindJumpSites() error = %v", err)
		}
		if len(before) != len(after) {
			t.Fatalf("site count %d -> %d", len(before), len(after))
		}
		for i := range before {
			if after[i].Value.Uint64() != before[i].Value.Uint64()+uint64(pos) {
				t.Fatalf("site %d target %d, want %d", i, after[i].Value.Uint64(), before[i].Value.Uint64()+uint64(pos))
			}
			if after[i].Offset != before[i].Offset {
				t.Fatalf("site %d moved from %d to %d", i, before[i].Offset, after[i].Offset)
			}
		}
	})
}

func TestRelocateVector(t *testing.T) {
	for i, frag := range DefaultCatalogue() {
		code := bytecode.MustParse(frag)
		if err := Relocate(code, opcodes.Default(), 100); err != nil {
			t.Fatalf("entry %d: Relocate() error = %v", i, err)
		}
		if got := code.Digits(0, 8); got != "61006f56" {
			t.Errorf("entry %d starts with %s, want 61006f56", i, got)
		}
	}
}

func TestRelocateErrors(t *testing.T) {
	if err := Relocate(bytecode.MustParse("600456"), opcodes.Default(), -1); err == nil {
		t.Error("Relocate(-1) expected error")
	}
	if err := Relocate(bytecode.MustParse("60f056"), opcodes.Default(), 0x10); !errors.Is(err, bytecode.ErrOperandOverflow) {
		t.Errorf("Relocate() error = %v, want ErrOperandOverflow", err)
	}
}

func TestRandomSelector(t *testing.T) {
	s := NewRandomSelector(42)
	n := len(DefaultCatalogue())
	seen := map[int]bool{}
	for range 2000 {
		idx, err := s.Select(n)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if idx < 1 || idx >= n {
			t.Fatalf("Select() = %d, want [1, %d)", idx, n)
		}
		seen[idx] = true
	}
	if len(seen) != n-1 {
		t.Errorf("Select() reached %d indices, want %d", len(seen), n-1)
	}

	if _, err := s.Select(1); !errors.Is(err, ErrCatalogueTooSmall) {
		t.Errorf("Select(1) error = %v, want ErrCatalogueTooSmall", err)
	}
}

func TestRandomSelectorSeeded(t *testing.T) {
	a, b := NewRandomSelector(7), NewRandomSelector(7)
	for i := range 50 {
		x, _ := a.Select(10)
		y, _ := b.Select(10)
		if x != y {
			t.Fatalf("draw %d: %d != %d with the same seed", i, x, y)
		}
	}
}

func TestFixed(t *testing.T) {
	if idx, err := Fixed(3).Select(10); err != nil || idx != 3 {
		t.Errorf("Fixed(3).Select() = %d, %v", idx, err)
	}
	if _, err := Fixed(10).Select(10); err == nil {
		t.Error("Fixed(10).Select(10) expected error")
	}
}

func TestInject(t *testing.T) {
	inj := &Injector{Catalogue: DefaultCatalogue(), Selector: Fixed(1), Table: opcodes.Default()}
	d, err := inj.Inject(0x23)
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if d.Index != 1 {
		t.Errorf("Inject() index = %d, want 1", d.Index)
	}
	if got := d.Code.Digits(0, 8); got != "61002e56" {
		t.Errorf("Inject() starts with %s, want 61002e56", got)
	}
	if DefaultCatalogue()[1][:8] != "61000b56" {
		t.Error("Inject() modified the catalogue")
	}
}
