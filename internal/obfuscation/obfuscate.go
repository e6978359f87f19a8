// Package obfuscation rewrites EVM bytecode so that every direct PUSH->JUMP
// goes through a detour appended at the tail of runtime code:
//
//	PUSH detour; JUMP  ->  JUMPDEST; <decoy>; PUSH target; JUMP
//
// Execution is unchanged; static jump-target extraction sees only detours.
package obfuscation

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/holiman/uint256"

	"evmobf/internal/analysis"
	"evmobf/internal/bytecode"
	"evmobf/internal/disasm"
	"evmobf/internal/metadata"
	"evmobf/internal/opcodes"
)

// ErrStaleSite is returned when a jump site no longer holds the recorded PUSH.
var ErrStaleSite = errors.New("jump site no longer matches")

// OverflowPolicy decides what happens when a detour position does not fit
// the operand of the PUSH it is written into.
type OverflowPolicy int

const (
	OverflowFail OverflowPolicy = iota // abort the pass
	OverflowSkip                       // leave the site untouched
)

// ParseOverflowPolicy parses "fail" or "skip".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(s) {
	case "", "fail":
		return OverflowFail, nil
	case "skip":
		return OverflowSkip, nil
	}
	return 0, fmt.Errorf("unknown overflow policy %q (want fail or skip)", s)
}

func (p OverflowPolicy) String() string {
	if p == OverflowSkip {
		return "skip"
	}
	return "fail"
}

// Options configures an Obfuscator. Zero values select the defaults.
type Options struct {
	MaxSites       int // 0 processes every site
	Overflow       OverflowPolicy
	DetachMetadata bool
	Seed           uint64 // seeds the default selector, 0 for a random seed

	Table     opcodes.Table
	Catalogue Catalogue
	Selector  Selector
	Detectors []analysis.Detector // applied before the MaxSites limit
	Logger    *log.Logger
}

// Site reports one obfuscated jump site.
type Site struct {
	Index    int    `json:"index"`
	Offset   int    `json:"offset"`
	Opcode   string `json:"opcode"`
	Target   string `json:"target"`
	JumpDest int    `json:"jumpdest"`
	Decoy    int    `json:"decoy"`
}

// Result is the outcome of one pass.
type Result struct {
	Code        *bytecode.Code `json:"-"`
	InputLen    int            `json:"input_length"`
	Split       bool           `json:"split"`
	InitLen     int            `json:"init_length"`
	RuntimeLen  int            `json:"runtime_length"`
	LengthPush  int            `json:"length_push_offset"`
	MetadataLen int            `json:"metadata_length"`
	Found       int            `json:"sites_found"`
	Sites       []Site         `json:"sites"`
	Skipped     []int          `json:"skipped,omitempty"`
}

// Obfuscator runs obfuscation passes. It holds no per-pass state and may be
// reused, but not concurrently when it owns a random selector.
type Obfuscator struct {
	opts      Options
	table     opcodes.Table
	injector  *Injector
	detectors *analysis.DetectorChain
	log       *log.Logger
}

// New builds an Obfuscator from opts.
func New(opts Options) *Obfuscator {
	table := opts.Table
	if table == nil {
		table = opcodes.Default()
	}
	catalogue := opts.Catalogue
	if catalogue == nil {
		catalogue = DefaultCatalogue()
	}
	selector := opts.Selector
	if selector == nil {
		selector = NewRandomSelector(opts.Seed)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	detectors := append(append([]analysis.Detector(nil), opts.Detectors...), analysis.Limit{Max: opts.MaxSites})
	return &Obfuscator{
		opts:      opts,
		table:     table,
		injector:  &Injector{Catalogue: catalogue, Selector: selector, Table: table},
		detectors: analysis.NewDetectorChain(detectors...),
		log:       logger,
	}
}

// Obfuscate parses hex bytecode (0x prefix optional) and obfuscates it.
func (o *Obfuscator) Obfuscate(input string) (*Result, error) {
	code, err := bytecode.Parse(input)
	if err != nil {
		return nil, err
	}
	return o.ObfuscateCode(code)
}

// ObfuscateCode runs one pass over code, which is left unmodified. On error
// no partial result is returned.
func (o *Obfuscator) ObfuscateCode(code *bytecode.Code) (*Result, error) {
	res := &Result{InputLen: code.ByteLen(), LengthPush: -1}

	// the trailer ends the input whether or not init code precedes runtime code
	var trailer *metadata.Trailer
	if o.opts.DetachMetadata {
		if head, t, ok := metadata.Detach(code); ok {
			code, trailer = head, t
			o.log.Debug("detached metadata", "bytes", t.Len(), "keys", t.Keys)
		}
	}

	initCode, runtime, err := analysis.Split(code, o.table)
	switch {
	case errors.Is(err, analysis.ErrNoInitCodeSplit):
		o.log.Debug("no init code split, treating input as runtime code")
		initCode, runtime = nil, code.Clone()
	case err != nil:
		return nil, fmt.Errorf("split: %w", err)
	default:
		res.Split = true
		o.log.Debug("split", "init", initCode.ByteLen(), "runtime", runtime.ByteLen())
	}

	found, err := analysis.FindJumpSites(runtime, o.table)
	if err != nil {
		return nil, fmt.Errorf("find jump sites: %w", err)
	}
	res.Found = len(found)

	for _, site := range o.detectors.Detect(found) {
		report, err := o.detour(runtime, site)
		if errors.Is(err, bytecode.ErrOperandOverflow) && o.opts.Overflow == OverflowSkip {
			o.log.Debug("skipped site", "site", site.Index, "reason", err)
			res.Skipped = append(res.Skipped, site.Index)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("site %d at digit %d: %w", site.Index, site.Offset, err)
		}
		res.Sites = append(res.Sites, report)
	}

	if trailer != nil {
		runtime.AppendCode(trailer.Code())
		res.MetadataLen = trailer.Len()
	}
	res.RuntimeLen = runtime.ByteLen()
	res.Code = runtime

	if res.Split {
		push, err := FixRuntimeLength(initCode, runtime.ByteLen(), o.table)
		if err != nil {
			return nil, fmt.Errorf("fix runtime length: %w", err)
		}
		res.LengthPush = push.Offset
		res.InitLen = initCode.ByteLen()
		res.Code = bytecode.Concat(initCode, runtime)
	}

	o.log.Info("obfuscated",
		"sites", len(res.Sites), "found", res.Found, "skipped", len(res.Skipped),
		"in", res.InputLen, "out", res.Code.ByteLen())
	return res, nil
}

// detour rewrites one jump site. runtime is restored if any step fails, so a
// skipped site leaves no trace.
func (o *Obfuscator) detour(runtime *bytecode.Code, site analysis.JumpSite) (Site, error) {
	snapshot := runtime.Clone()
	report, err := o.applyDetour(runtime, site)
	if err != nil {
		*runtime = *snapshot
		return Site{}, err
	}
	return report, nil
}

func (o *Obfuscator) applyDetour(runtime *bytecode.Code, site analysis.JumpSite) (Site, error) {
	push, err := o.rederive(runtime, site)
	if err != nil {
		return Site{}, err
	}

	runtime.AppendOp(opcodes.JUMPDEST)
	dest, err := disasm.LastPosition(runtime, o.table)
	if err != nil {
		return Site{}, err
	}
	if err := bytecode.PatchOperand(runtime, o.table, push.Offset, push.Op, uint256.NewInt(uint64(dest))); err != nil {
		return Site{}, err
	}

	// positions are stale after every append; recompute
	last, err := disasm.LastPosition(runtime, o.table)
	if err != nil {
		return Site{}, err
	}
	decoy, err := o.injector.Inject(last)
	if err != nil {
		return Site{}, err
	}
	runtime.AppendCode(decoy.Code)

	if err := runtime.AppendPush(&site.Value, 2); err != nil {
		return Site{}, err
	}
	runtime.AppendOp(opcodes.JUMP)

	o.log.Debug("detour",
		"site", site.Index, "offset", push.Offset, "target", site.Value.Hex(),
		"jumpdest", dest, "decoy", decoy.Index)

	return Site{
		Index:    site.Index,
		Offset:   push.Offset,
		Opcode:   site.Op.String(),
		Target:   site.Value.Hex(),
		JumpDest: dest,
		Decoy:    decoy.Index,
	}, nil
}

// rederive locates a site's PUSH in the current buffer by instruction index
// instead of trusting the offset recorded before earlier mutations.
func (o *Obfuscator) rederive(runtime *bytecode.Code, site analysis.JumpSite) (disasm.Inst, error) {
	w := disasm.NewWalker(runtime, o.table)
	for w.Next() {
		inst := w.Inst()
		if inst.Index < site.Index {
			continue
		}
		if inst.Op != site.Op || inst.Offset != site.Offset {
			return disasm.Inst{}, fmt.Errorf("%w: instruction %d is %v at digit %d",
				ErrStaleSite, site.Index, inst.Op, inst.Offset)
		}
		return inst, nil
	}
	if err := w.Err(); err != nil {
		return disasm.Inst{}, err
	}
	return disasm.Inst{}, fmt.Errorf("%w: instruction %d missing", ErrStaleSite, site.Index)
}
