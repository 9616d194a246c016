package jobquery

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Options bundles the collaborators wired by New.
type Options struct {
	LoadTimeout time.Duration
	Logger      *zerolog.Logger
	Observer    Observer
	// RangeRules replaces DefaultRangeRules when non-nil.
	RangeRules []RangeRule
}

// Engine wires a Registry, Resolver, Validator and Builder together.
type Engine struct {
	reg      *Registry
	resolver *Resolver
	builder  *Builder
	val      *Validator
}

// New returns an Engine over reg whose code lists come from src.
func New(reg *Registry, src CodeListSource, opts Options) *Engine {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	resolver := NewResolver(src,
		WithLoadTimeout(opts.LoadTimeout),
		WithResolverLogger(log),
		WithResolverObserver(opts.Observer),
	)
	val := NewValidator(resolver)
	bopts := []BuilderOption{WithBuilderLogger(log), WithBuilderObserver(opts.Observer)}
	if opts.RangeRules != nil {
		bopts = append(bopts, WithRangeRules(opts.RangeRules...))
	}
	return &Engine{
		reg:      reg,
		resolver: resolver,
		val:      val,
		builder:  NewBuilder(reg, val, bopts...),
	}
}

// Registry returns the schema the engine validates against.
func (e *Engine) Registry() *Registry { return e.reg }

// Resolver returns the engine's code-list resolver.
func (e *Engine) Resolver() *Resolver { return e.resolver }

// Build validates criteria; see Builder.Build.
func (e *Engine) Build(ctx context.Context, criteria []Criterion) *ValidatedQuery {
	return e.builder.Build(ctx, criteria)
}

// Validate checks a single value for the field key.
func (e *Engine) Validate(ctx context.Context, key, raw string) (Value, error) {
	d, ok := e.reg.Lookup(key)
	if !ok {
		return Value{}, Issues{newIssue(key, raw, CodeUnknownField, nil, nil)}
	}
	return e.val.Validate(ctx, d, raw)
}

// Preload resolves every code list the registry references.
func (e *Engine) Preload(ctx context.Context) error {
	return e.resolver.Preload(ctx, e.reg.CodeListRefs())
}

// PossibleValues lists the allowed literals of key: the closed enumeration,
// the boolean literals, or the resolved code list. Unrestricted fields return
// nil.
func (e *Engine) PossibleValues(ctx context.Context, key string) ([]string, error) {
	d, ok := e.reg.Lookup(key)
	if !ok {
		return nil, Issues{newIssue(key, "", CodeUnknownField, nil, nil)}
	}
	switch d.Kind() {
	case KindBoolean:
		t, f := d.BoolLiterals()
		return []string{t, f}, nil
	case KindEnum:
		return d.Enum, nil
	case KindCodeList:
		set, err := e.resolver.Resolve(ctx, d.CodeList.Source, d.CodeList.Field)
		if err != nil {
			return nil, err
		}
		return set.Values(), nil
	default:
		return nil, nil
	}
}
