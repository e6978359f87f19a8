// Package metadata detaches the CBOR metadata trailer solc appends to runtime
// code. The trailer is data, not instructions, and frequently fails to decode
// as code.
package metadata

import (
	"encoding/binary"

	"github.com/fxamacker/cbor/v2"

	"evmobf/internal/bytecode"
)

// knownKeys are the top-level keys solc has emitted in its metadata map.
var knownKeys = []string{"ipfs", "bzzr0", "bzzr1", "solc", "experimental"}

// Trailer is a detached metadata section, including its 2-byte length suffix.
type Trailer struct {
	Raw  []byte
	Keys []string
}

// Len returns the trailer length in bytes.
func (t *Trailer) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Raw)
}

// Code returns the trailer as a bytecode buffer ready to append.
func (t *Trailer) Code() *bytecode.Code {
	return bytecode.FromBytes(t.Raw)
}

// Detach splits runtime code into the instruction part and its metadata
// trailer. ok is false when code does not end in a recognizable trailer, in
// which case code is returned unchanged.
func Detach(code *bytecode.Code) (*bytecode.Code, *Trailer, bool) {
	raw := code.Bytes()
	if len(raw) < 2 {
		return code, nil, false
	}
	n := int(binary.BigEndian.Uint16(raw[len(raw)-2:]))
	if n == 0 || n+2 > len(raw) {
		return code, nil, false
	}
	body := raw[len(raw)-2-n : len(raw)-2]

	var fields map[string]cbor.RawMessage
	if err := cbor.Unmarshal(body, &fields); err != nil {
		return code, nil, false
	}
	var keys []string
	for _, k := range knownKeys {
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return code, nil, false
	}

	head, _ := code.SplitAt(code.Len() - 2*(n+2))
	return head, &Trailer{Raw: raw[len(raw)-2-n:], Keys: keys}, true
}
