// Package melbi is the embedding API a Go host uses to compile and run
// melbi expressions (spec.md §6.1). A Core owns one globals_schema and one
// resource-limits configuration; CompiledExpressions it produces are cheap
// to hold onto and evaluate repeatedly against different runtime globals.
package melbi

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/melbi-lang/melbi/internal/analyzer"
	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/config"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/evaluator"
	"github.com/melbi-lang/melbi/internal/pipeline"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// Core holds one host's globals_schema (spec.md §6.1) plus default resource
// limits and logging sink. It is safe to Compile from multiple goroutines;
// Bind/Set should happen during setup, before concurrent use begins.
type Core struct {
	schema  map[string]analyzer.GlobalSignature
	globals map[string]evaluator.Value
	limits  config.Limits
	logger  config.Logger
	m       *marshaller
}

// Option configures a Core at construction time.
type Option func(*Core)

// WithLimits overrides the default resource bounds (spec.md §5).
func WithLimits(l config.Limits) Option {
	return func(c *Core) { c.limits = l }
}

// WithLogger installs a structured logging sink (spec.md §6.4).
func WithLogger(l config.Logger) Option {
	return func(c *Core) { c.logger = l }
}

// New creates a Core with no bound globals, default resource limits, and a
// no-op logger until overridden.
func New(opts ...Option) *Core {
	c := &Core{
		schema:  map[string]analyzer.GlobalSignature{},
		globals: map[string]evaluator.Value{},
		limits:  config.DefaultLimits(),
		logger:  config.NopLogger,
		m:       newMarshaller(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set registers a Go value as a global melbi programs can reference by
// name. The value's type is inferred via reflection.
func (c *Core) Set(name string, val interface{}) error {
	ty, err := inferType(val)
	if err != nil {
		return fmt.Errorf("melbi: Set(%q, ...): %w", name, err)
	}
	rv, err := c.m.toValue(val)
	if err != nil {
		return fmt.Errorf("melbi: Set(%q, ...): %w", name, err)
	}
	c.schema[name] = analyzer.GlobalSignature{Type: ty}
	c.globals[name] = rv
	return nil
}

// Bind registers a Go function as a callable global (spec.md §6.1:
// "Functions passed as globals supply an opaque callable identity invoked
// by the evaluator"). impure marks the binding as is_impure for effect
// inference (spec.md §4.4.5) — set it true for anything that reads mutable
// host state (clocks, RNGs, I/O).
func (c *Core) Bind(name string, fn interface{}, impure bool) error {
	native, sig, err := c.m.bindFunc(name, fn)
	if err != nil {
		return err
	}
	c.schema[name] = analyzer.GlobalSignature{Type: sig, Impure: impure}
	c.globals[name] = native
	return nil
}

// CompiledExpression is a compile()d handle referencing a typed AST and its
// owning type arena (spec.md §6.1 item 1, §3.6). ID lets a host correlate a
// handle across log lines without leaking pointer identity.
type CompiledExpression struct {
	ID    uuid.UUID
	typed ast.TypedExpr
	diags diagnostics.List
	mgr   *typesystem.Manager
}

// Diagnostics returns every diagnostic gathered during compilation,
// including warnings that did not fail compilation (spec.md §6.2).
func (c *CompiledExpression) Diagnostics() diagnostics.List { return c.diags }

// Type returns the expression's resolved top-level type.
func (c *CompiledExpression) Type() typesystem.Type { return c.typed.Type() }

// Compile parses and type-checks source against the Core's globals_schema
// (spec.md §6.1 item 1). The returned *CompiledExpression is never nil,
// even when err is non-nil, so a host can still Hover/inspect a
// partially-broken program; err is a *CompileError exactly when compilation
// produced at least one error-severity diagnostic.
func (c *Core) Compile(source string) (*CompiledExpression, error) {
	res := pipeline.Compile(source, c.schema)
	compiled := &CompiledExpression{
		ID:    uuid.New(),
		typed: res.Typed,
		diags: res.Diagnostics,
		mgr:   res.Manager,
	}
	if res.Failed() {
		return compiled, &CompileError{Diagnostics: res.Diagnostics.Errors()}
	}
	return compiled, nil
}

// Evaluate runs a compiled expression (spec.md §6.1 item 2). envOverrides
// layers additional or replacement globals on top of the Core's own
// bindings for this one call, without mutating the Core; limits overrides
// the Core's default resource bounds for this call.
func (c *Core) Evaluate(ctx context.Context, compiled *CompiledExpression, envOverrides map[string]interface{}, limits config.Limits) (*Result, error) {
	env := make(map[string]evaluator.Value, len(c.globals)+len(envOverrides))
	for k, v := range c.globals {
		env[k] = v
	}
	for k, goVal := range envOverrides {
		rv, err := c.m.toValue(goVal)
		if err != nil {
			return nil, fmt.Errorf("melbi: Evaluate: env override %q: %w", k, err)
		}
		env[k] = rv
	}

	v, err := pipeline.Evaluate(ctx, compiled.typed, env, limits)
	if err != nil {
		return nil, asResourceError(err)
	}
	return &Result{value: v, m: c.m}, nil
}

// Limits returns the resource bounds new Evaluate calls fall back to when a
// caller does not override them (e.g. cmd/melbi's one-shot CLI).
func (c *Core) Limits() config.Limits { return c.limits }

// Eval is a convenience wrapper combining Compile and Evaluate against the
// Core's own globals and default limits, for the common case of running a
// one-off expression.
func (c *Core) Eval(ctx context.Context, source string) (*Result, error) {
	compiled, err := c.Compile(source)
	if err != nil {
		return nil, err
	}
	return c.Evaluate(ctx, compiled, nil, c.limits)
}
