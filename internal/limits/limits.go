// Package limits tracks the live resource budget for one evaluation
// (spec.md §5 "Resource bounds"): call depth, value-arena bytes, and
// instruction count, plus periodic cancellation checks. It mirrors the
// teacher evaluator's own evalDepth counter and CallStack discipline,
// generalized into a reusable budget object instead of ad hoc fields.
package limits

import (
	"context"

	"github.com/melbi-lang/melbi/internal/config"
)

// Kind identifies which bound was exceeded (spec.md §6.2 ResourceExceeded.kind).
type Kind int

const (
	Memory Kind = iota
	Time
	StackDepth
)

func (k Kind) String() string {
	switch k {
	case Memory:
		return "Memory"
	case Time:
		return "Time"
	case StackDepth:
		return "StackDepth"
	}
	return "?"
}

// Exceeded reports that evaluation must stop immediately (spec.md §7:
// "Resource errors terminate evaluation immediately").
type Exceeded struct {
	Kind   Kind
	Limit  int
	Actual int
}

func (e *Exceeded) Error() string {
	return "resource exceeded: " + e.Kind.String()
}

// cancellationStride is the 2^N tree-walk-step interval at which a
// cancellation handle is polled (spec.md §5: "every 2^N-th tree-walk step,
// N is an implementation parameter in the range 10-14").
const cancellationStride = 1 << 12

// Budget tracks one evaluation's consumption against config.Limits.
type Budget struct {
	cfg          config.Limits
	ctx          context.Context
	depth        int
	arenaBytes   int
	instructions int
}

// New creates a Budget bound to ctx for cancellation checks.
func New(ctx context.Context, cfg config.Limits) *Budget {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Budget{cfg: cfg, ctx: ctx}
}

// EnterCall increments the call-depth counter; the caller must call
// ExitCall when the frame returns, even on error.
func (b *Budget) EnterCall() error {
	b.depth++
	if b.cfg.MaxCallDepth > 0 && b.depth > b.cfg.MaxCallDepth {
		return &Exceeded{Kind: StackDepth, Limit: b.cfg.MaxCallDepth, Actual: b.depth}
	}
	return nil
}

// ExitCall decrements the call-depth counter.
func (b *Budget) ExitCall() {
	b.depth--
}

// AllocBytes accounts for a newly-allocated value's approximate size.
func (b *Budget) AllocBytes(n int) error {
	b.arenaBytes += n
	if b.cfg.MaxValueBytes > 0 && b.arenaBytes > b.cfg.MaxValueBytes {
		return &Exceeded{Kind: Memory, Limit: b.cfg.MaxValueBytes, Actual: b.arenaBytes}
	}
	return nil
}

// Step counts one tree-walk step, checking the instruction ceiling and, at
// cancellationStride intervals, the cancellation context (spec.md §5).
func (b *Budget) Step() error {
	b.instructions++
	if b.cfg.MaxInstructions > 0 && b.instructions > b.cfg.MaxInstructions {
		return &Exceeded{Kind: Time, Limit: b.cfg.MaxInstructions, Actual: b.instructions}
	}
	if b.instructions%cancellationStride == 0 {
		select {
		case <-b.ctx.Done():
			return &Exceeded{Kind: Time, Limit: b.cfg.MaxInstructions, Actual: b.instructions}
		default:
		}
	}
	return nil
}
