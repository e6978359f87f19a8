// Package bytecode holds the mutable hex-digit buffer that every stage of the
// obfuscator works on. Positions into a Code are digit offsets: two digits
// per byte, and every instruction starts at an even offset.
package bytecode

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"evmobf/internal/opcodes"
)

var (
	ErrInvalidHex  = errors.New("invalid hex bytecode")
	ErrOddLength   = errors.New("bytecode has odd number of hex digits")
	ErrOutOfRange  = errors.New("offset outside bytecode")
	ErrOddOffset   = errors.New("instruction offset is not byte aligned")
	ErrWidePush    = errors.New("value wider than 32 bytes")
	errEmptyString = errors.New("empty bytecode")
)

// Code is a bytecode buffer of lowercase hex digits. It only ever grows at
// its tail or is patched in place; its length is always even.
type Code struct {
	digits []byte
}

// Parse validates a hex string, optionally prefixed with 0x, and returns it
// as a Code. Surrounding whitespace is ignored.
func Parse(s string) (*Code, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, errEmptyString)
	}
	raw, err := hexutil.Decode("0x" + s)
	if err != nil {
		if errors.Is(err, hexutil.ErrOddLength) {
			return nil, fmt.Errorf("%w: %w", ErrOddLength, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return FromBytes(raw), nil
}

// MustParse is like Parse but panics on malformed input. Meant for
// compiled-in fragments and tests.
func MustParse(s string) *Code {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FromBytes encodes raw bytes into a new Code.
func FromBytes(b []byte) *Code {
	digits := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(digits, b)
	return &Code{digits: digits}
}

// Len returns the length in hex digits.
func (c *Code) Len() int { return len(c.digits) }

// ByteLen returns the length in bytes.
func (c *Code) ByteLen() int { return len(c.digits) / 2 }

// String returns the digits without a 0x prefix.
func (c *Code) String() string { return string(c.digits) }

// Hex returns the digits with a 0x prefix.
func (c *Code) Hex() string { return hexutil.Encode(c.Bytes()) }

// Bytes decodes the buffer into raw bytes.
func (c *Code) Bytes() []byte {
	b := make([]byte, hex.DecodedLen(len(c.digits)))
	// digits were validated on construction
	_, _ = hex.Decode(b, c.digits)
	return b
}

// OpcodeAt decodes the byte starting at a digit offset.
func (c *Code) OpcodeAt(offset int) (opcodes.OpCode, error) {
	if offset%2 != 0 {
		return 0, fmt.Errorf("%w: %d", ErrOddOffset, offset)
	}
	if offset < 0 || offset+2 > len(c.digits) {
		return 0, fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, offset, len(c.digits))
	}
	return opcodes.OpCode(nibble(c.digits[offset])<<4 | nibble(c.digits[offset+1])), nil
}

// Digits returns the digit text in [start, end).
func (c *Code) Digits(start, end int) string {
	return string(c.digits[start:end])
}

// DecodeRange returns the raw bytes covered by the digit range [start, end).
func (c *Code) DecodeRange(start, end int) []byte {
	b := make([]byte, (end-start)/2)
	_, _ = hex.Decode(b, c.digits[start:end])
	return b
}

// AppendOp appends bare opcodes at the tail.
func (c *Code) AppendOp(ops ...opcodes.OpCode) {
	for _, op := range ops {
		c.digits = hex.AppendEncode(c.digits, []byte{byte(op)})
	}
}

// AppendCode appends another buffer at the tail.
func (c *Code) AppendCode(o *Code) {
	c.digits = append(c.digits, o.digits...)
}

// AppendPush appends a PUSH of value using at least minBytes immediate bytes,
// widening the opcode when the value needs more.
func (c *Code) AppendPush(value *uint256.Int, minBytes int) error {
	n := max(minBytes, (value.BitLen()+7)/8)
	op, err := opcodes.Push(n)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWidePush, value.Hex())
	}
	buf := value.Bytes32()
	c.digits = hex.AppendEncode(c.digits, []byte{byte(op)})
	c.digits = hex.AppendEncode(c.digits, buf[32-n:])
	return nil
}

// Clone returns an independent copy.
func (c *Code) Clone() *Code {
	return &Code{digits: append([]byte(nil), c.digits...)}
}

// SplitAt cuts the buffer at a digit offset into two independent buffers.
func (c *Code) SplitAt(offset int) (*Code, *Code) {
	head := &Code{digits: append([]byte(nil), c.digits[:offset]...)}
	tail := &Code{digits: append([]byte(nil), c.digits[offset:]...)}
	return head, tail
}

// Concat joins buffers into a new one.
func Concat(parts ...*Code) *Code {
	n := 0
	for _, p := range parts {
		n += p.Len()
	}
	out := &Code{digits: make([]byte, 0, n)}
	for _, p := range parts {
		out.digits = append(out.digits, p.digits...)
	}
	return out
}

func nibble(d byte) byte {
	switch {
	case d >= '0' && d <= '9':
		return d - '0'
	case d >= 'a' && d <= 'f':
		return d - 'a' + 10
	}
	return 0
}
