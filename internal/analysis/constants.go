// Package analysis locates the patterns the obfuscator rewrites: PUSH->JUMP
// jump sites, the boundary between initialization and runtime code, and the
// PUSH that feeds the runtime length to CODECOPY.
package analysis

// Constants for pattern matching
const (
	// SplitInstructionCount is the number of instructions counted from the
	// first CODECOPY (inclusive) at which runtime code is assumed to begin.
	SplitInstructionCount = 5

	// CodecopyLookahead is the instruction distance between the runtime-length
	// PUSH and the CODECOPY that consumes it.
	CodecopyLookahead = 4
)
