package obfuscation

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/holiman/uint256"

	"evmobf/internal/analysis"
	"evmobf/internal/bytecode"
	"evmobf/internal/opcodes"
)

// ErrCatalogueTooSmall is returned when no catalogue entry is eligible for
// selection. Entry 0 is never selected, so at least two are needed.
var ErrCatalogueTooSmall = errors.New("decoy catalogue needs at least two entries")

// Catalogue is an ordered, immutable list of decoy fragments. Each fragment
// is position independent: its PUSH->JUMP targets are relative to its first
// byte minus one, so relocating it means adding the position of the last
// byte already in the buffer.
type Catalogue []string

var defaultCatalogue = Catalogue{
	"61000b566005600601505b603260331650603460351750603660371850600060011460ff57",
	"61000b566001600201505b6002600301506100036004025060006001146100fa5760056006035060078001506008800250600960010350",
	"61000b566001600201505b61000360040250600060011460fa57600160021060fb57600260031460fc57600560061650",
	"61000b566003600401505b6005600660078190035061000860090250600a600b1060fd57600c600d1060fe5760018001505050",
	"61000b566002600402505b6200000a60020150600160030a5061000460020650600060011460fe57600260031850600450",
	"61000b566001600201505b60036004600508506002600360040950610006600760081060fd576001600060021260fe5760098002035050",
	"61000b566005600601505b600760080150600a600903600060011460f25760028002506003905050",
	"61000b566005600601505b600b600c0250600d600e0450600160021060f357600360041060f457600560061650",
	"61000b566005600601505b600f60101650601160121750601360141850601560160650600060011460f657",
	"61000b566005600601505b6017601801506019601a0250601b601c0350601d601e0450600060011460f757",
}

// DefaultCatalogue returns the built-in decoy fragments. Every fragment is
// stack neutral and none of its conditional jumps is ever taken.
func DefaultCatalogue() Catalogue {
	return defaultCatalogue
}

// Selector picks a catalogue index.
type Selector interface {
	Select(n int) (int, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(n int) (int, error)

func (f SelectorFunc) Select(n int) (int, error) { return f(n) }

// Fixed always selects the same index. Meant for reproducible tests.
func Fixed(index int) Selector {
	return SelectorFunc(func(n int) (int, error) {
		if index < 0 || index >= n {
			return 0, fmt.Errorf("decoy index %d out of range [0, %d)", index, n)
		}
		return index, nil
	})
}

// RandomSelector picks uniformly from [1, n-1]; index 0 is never used.
type RandomSelector struct {
	rng *rand.Rand
}

// NewRandomSelector seeds the selector. A zero seed draws a random one.
func NewRandomSelector(seed uint64) *RandomSelector {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomSelector{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomSelector) Select(n int) (int, error) {
	if n < 2 {
		return 0, ErrCatalogueTooSmall
	}
	return 1 + s.rng.IntN(n-1), nil
}

// Decoy is a relocated fragment ready to append.
type Decoy struct {
	Index int
	Code  *bytecode.Code
}

// Injector relocates decoy fragments to the position they are appended at.
type Injector struct {
	Catalogue Catalogue
	Selector  Selector
	Table     opcodes.Table
}

// Inject selects a fragment and shifts every internal PUSH->JUMP target by
// position, the byte position of the last byte currently in the buffer the
// fragment will be appended to. The fragment is relocated in its own buffer.
func (inj *Injector) Inject(position int) (*Decoy, error) {
	idx, err := inj.Selector.Select(len(inj.Catalogue))
	if err != nil {
		return nil, err
	}
	code, err := bytecode.Parse(inj.Catalogue[idx])
	if err != nil {
		return nil, fmt.Errorf("decoy %d: %w", idx, err)
	}
	if err := Relocate(code, inj.Table, position); err != nil {
		return nil, fmt.Errorf("decoy %d: %w", idx, err)
	}
	return &Decoy{Index: idx, Code: code}, nil
}

// Relocate adds position to every PUSH->JUMP target in code.
func Relocate(code *bytecode.Code, table opcodes.Table, position int) error {
	if position < 0 {
		return fmt.Errorf("negative decoy position %d", position)
	}
	sites, err := analysis.FindJumpSites(code, table)
	if err != nil {
		return err
	}
	shift := uint256.NewInt(uint64(position))
	for _, site := range sites {
		target := new(uint256.Int).Add(&site.Value, shift)
		if err := bytecode.PatchOperand(code, table, site.Offset, site.Op, target); err != nil {
			return err
		}
	}
	return nil
}
