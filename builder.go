package jobquery

import (
	"context"

	"github.com/rs/zerolog"
)

// Builder validates criteria sets into ValidatedQuery values. It holds no
// per-request state, so one Builder serves concurrent requests.
type Builder struct {
	reg   *Registry
	val   *Validator
	rules []RangeRule
	obs   Observer
	log   zerolog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithRangeRules replaces DefaultRangeRules.
func WithRangeRules(rules ...RangeRule) BuilderOption {
	return func(b *Builder) { b.rules = append([]RangeRule(nil), rules...) }
}

// WithBuilderObserver reports every criterion outcome to o; nil is ignored.
func WithBuilderObserver(o Observer) BuilderOption {
	return func(b *Builder) {
		if o != nil {
			b.obs = o
		}
	}
}

// WithBuilderLogger sets the logger for build summaries.
func WithBuilderLogger(log zerolog.Logger) BuilderOption {
	return func(b *Builder) { b.log = log }
}

// NewBuilder returns a Builder over reg. Range rules naming fields that reg
// does not declare are dropped.
func NewBuilder(reg *Registry, val *Validator, opts ...BuilderOption) *Builder {
	b := &Builder{
		reg:   reg,
		val:   val,
		rules: DefaultRangeRules,
		obs:   NopObserver{},
		log:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(b)
	}
	kept := make([]RangeRule, 0, len(b.rules))
	for _, r := range b.rules {
		if reg.Position(r.Min) < 0 || reg.Position(r.Max) < 0 {
			b.log.Debug().Str("min", r.Min).Str("max", r.Max).Msg("Skipping range rule for undeclared field")
			continue
		}
		kept = append(kept, r)
	}
	b.rules = kept
	return b
}

// Build validates every criterion and never stops early: each criterion ends
// up either accepted or in the rejection list.
func (b *Builder) Build(ctx context.Context, criteria []Criterion) *ValidatedQuery {
	q := &ValidatedQuery{reg: b.reg, values: make(map[string][]Value)}
	raws := make(map[string][]string)

	for _, c := range criteria {
		d, ok := b.reg.Lookup(c.Field)
		if !ok {
			b.reject(q, newIssue(c.Field, c.Value, CodeUnknownField, nil, nil))
			continue
		}
		v, err := b.val.Validate(ctx, d, c.Value)
		if err != nil {
			iss, ok := AsIssues(err)
			if !ok || len(iss) == 0 {
				iss = Issues{newIssue(c.Field, c.Value, CodeSourceUnavailable, nil, err)}
			}
			b.reject(q, iss...)
			continue
		}
		q.values[c.Field] = append(q.values[c.Field], v)
		raws[c.Field] = append(raws[c.Field], c.Value)
	}

	for _, rule := range b.rules {
		b.applyRange(q, raws, rule)
	}

	for k, vs := range q.values {
		for range vs {
			b.obs.CriterionObserved(k, "")
		}
	}
	b.log.Debug().
		Int("criteria", len(criteria)).
		Int("accepted", q.Accepted()).
		Int("rejected", len(q.issues)).
		Msg("Built query")
	return q
}

func (b *Builder) reject(q *ValidatedQuery, iss ...Issue) {
	q.issues = AppendIssues(q.issues, iss...)
	for _, it := range iss {
		b.obs.CriterionObserved(it.Field, it.Code)
	}
}

// applyRange drops both fields of an inverted pair and records one issue per
// dropped criterion.
func (b *Builder) applyRange(q *ValidatedQuery, raws map[string][]string, rule RangeRule) {
	los, his := q.values[rule.Min], q.values[rule.Max]
	if len(los) == 0 || len(his) == 0 {
		return
	}
	inverted := false
	for _, lo := range los {
		for _, hi := range his {
			if rule.inverted(lo, hi) {
				inverted = true
			}
		}
	}
	if !inverted {
		return
	}
	params := map[string]any{
		"min_field": rule.Min,
		"max_field": rule.Max,
		"min":       los[0].Text,
		"max":       his[0].Text,
	}
	for _, key := range []string{rule.Min, rule.Max} {
		for _, raw := range raws[key] {
			b.reject(q, newIssue(key, raw, CodeInvertedRange, params, nil))
		}
		delete(q.values, key)
		delete(raws, key)
	}
}
