// Package disasm walks EVM bytecode instruction by instruction. Instructions
// are not stored in the buffer; they are derived on demand from a digit
// offset and the opcode table.
package disasm

import (
	"errors"
	"fmt"

	"evmobf/internal/bytecode"
	"evmobf/internal/opcodes"
)

// ErrTruncated is returned when an immediate runs past the end of the code.
var ErrTruncated = errors.New("instruction truncated by end of code")

// Inst is a decoded instruction.
type Inst struct {
	Offset int            // digit offset of the opcode
	Op     opcodes.OpCode // opcode byte
	Size   int            // total length in digits
	Index  int            // 1-based position in the stream
}

// End returns the digit offset just past the instruction.
func (i Inst) End() int { return i.Offset + i.Size }

// Immediate returns the digit range of the instruction's operand.
func (i Inst) Immediate() (start, end int) { return i.Offset + 2, i.End() }

// Stream is a linear sequence of instructions.
type Stream []Inst

// Walker produces instructions lazily, in ascending offset order. It reads
// the buffer as it is when Next is called; after the buffer is mutated a new
// Walker must be started.
type Walker struct {
	code  *bytecode.Code
	table opcodes.Table
	next  int
	inst  Inst
	err   error
}

// NewWalker starts a walk at offset 0.
func NewWalker(code *bytecode.Code, table opcodes.Table) *Walker {
	return &Walker{code: code, table: table}
}

// Next advances to the next instruction. It returns false at the end of the
// code or on error; check Err to tell them apart.
func (w *Walker) Next() bool {
	if w.err != nil || w.next >= w.code.Len() {
		return false
	}
	op, err := w.code.OpcodeAt(w.next)
	if err != nil {
		w.err = err
		return false
	}
	info, err := w.table.Lookup(op)
	if err != nil {
		w.err = fmt.Errorf("at digit %d: %w", w.next, err)
		return false
	}
	if w.next+info.Size > w.code.Len() {
		w.err = fmt.Errorf("%w: %s at digit %d needs %d digits, %d left",
			ErrTruncated, info.Name, w.next, info.Size, w.code.Len()-w.next)
		return false
	}
	w.inst = Inst{
		Offset: w.next,
		Op:     op,
		Size:   info.Size,
		Index:  w.inst.Index + 1,
	}
	w.next += info.Size
	return true
}

// Inst returns the instruction produced by the last successful Next.
func (w *Walker) Inst() Inst { return w.inst }

// Err returns the error that stopped the walk, if any.
func (w *Walker) Err() error { return w.err }

// Decode walks the whole buffer.
func Decode(code *bytecode.Code, table opcodes.Table) (Stream, error) {
	var s Stream
	w := NewWalker(code, table)
	for w.Next() {
		s = append(s, w.Inst())
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Count returns the number of instructions in code.
func Count(code *bytecode.Code, table opcodes.Table) (int, error) {
	n := 0
	w := NewWalker(code, table)
	for w.Next() {
		n++
	}
	return n, w.Err()
}

// LastPosition returns the byte position of the final byte of the last
// instruction, which is the position a JUMP would use to reach a one-byte
// instruction at the tail. It is -1 for empty code.
func LastPosition(code *bytecode.Code, table opcodes.Table) (int, error) {
	end := 0
	w := NewWalker(code, table)
	for w.Next() {
		end = w.Inst().End()
	}
	if err := w.Err(); err != nil {
		return 0, err
	}
	return end/2 - 1, nil
}

// OpcodeAt returns the opcode of the n-th instruction (1-based). ok is false
// when the code has fewer than n instructions.
func OpcodeAt(code *bytecode.Code, table opcodes.Table, n int) (op opcodes.OpCode, ok bool, err error) {
	w := NewWalker(code, table)
	for w.Next() {
		if w.Inst().Index == n {
			return w.Inst().Op, true, nil
		}
	}
	return 0, false, w.Err()
}
