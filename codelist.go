package jobquery

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CodeListSource reads a named code list as an array of entries.
type CodeListSource interface {
	Load(ctx context.Context, name string) ([]map[string]any, error)
}

// SourceFunc adapts a function to CodeListSource.
type SourceFunc func(ctx context.Context, name string) ([]map[string]any, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context, name string) ([]map[string]any, error) {
	return f(ctx, name)
}

// CodeSet is an immutable set of valid codes that remembers source order.
type CodeSet struct {
	values  []string
	members map[string]struct{}
}

// NewCodeSet builds a set from values, keeping the first occurrence of
// duplicates.
func NewCodeSet(values ...string) *CodeSet {
	s := &CodeSet{members: make(map[string]struct{}, len(values))}
	for _, v := range values {
		if _, dup := s.members[v]; dup {
			continue
		}
		s.members[v] = struct{}{}
		s.values = append(s.values, v)
	}
	return s
}

// Has reports whether code is in the set.
func (s *CodeSet) Has(code string) bool {
	_, ok := s.members[code]
	return ok
}

// Len returns the number of distinct codes.
func (s *CodeSet) Len() int { return len(s.values) }

// Values returns the codes in source order.
func (s *CodeSet) Values() []string { return slices.Clone(s.values) }

// Resolver loads code lists lazily and caches them for its lifetime.
// Concurrent first resolutions of the same source share one load.
type Resolver struct {
	src     CodeListSource
	timeout time.Duration
	log     zerolog.Logger
	obs     Observer

	loads   singleflight.Group
	entries sync.Map // source name -> []map[string]any
	sets    sync.Map // CodeListRef -> *CodeSet
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLoadTimeout bounds each source load. Zero leaves loads bounded only by
// the caller's context.
func WithLoadTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.timeout = d }
}

// WithResolverLogger sets the logger for load failures and duplicate codes.
func WithResolverLogger(log zerolog.Logger) ResolverOption {
	return func(r *Resolver) { r.log = log }
}

// WithResolverObserver reports every source load to o; nil is ignored.
func WithResolverObserver(o Observer) ResolverOption {
	return func(r *Resolver) {
		if o != nil {
			r.obs = o
		}
	}
}

// NewResolver returns a Resolver reading from src.
func NewResolver(src CodeListSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{src: src, log: zerolog.Nop(), obs: NopObserver{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the set of values of field across every entry of source.
func (r *Resolver) Resolve(ctx context.Context, source, field string) (*CodeSet, error) {
	ref := CodeListRef{Source: source, Field: field}
	if v, ok := r.sets.Load(ref); ok {
		return v.(*CodeSet), nil
	}
	entries, err := r.load(ctx, source)
	if err != nil {
		return nil, err
	}
	set, err := r.extract(ref, entries)
	if err != nil {
		return nil, err
	}
	actual, _ := r.sets.LoadOrStore(ref, set)
	return actual.(*CodeSet), nil
}

// Preload resolves refs concurrently and returns the first failure.
func (r *Resolver) Preload(ctx context.Context, refs []CodeListRef) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			if _, err := r.Resolve(gctx, ref.Source, ref.Field); err != nil {
				return fmt.Errorf("preloading %s: %w", ref, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *Resolver) load(ctx context.Context, source string) ([]map[string]any, error) {
	if v, ok := r.entries.Load(source); ok {
		return v.([]map[string]any), nil
	}
	ch := r.loads.DoChan(source, func() (any, error) {
		// a load that finished between the cache miss and DoChan
		if v, ok := r.entries.Load(source); ok {
			return v, nil
		}
		// shared by every waiter, so only the timeout bounds it
		lctx := context.WithoutCancel(ctx)
		if r.timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, r.timeout)
			defer cancel()
		}
		start := time.Now()
		entries, err := r.src.Load(lctx, source)
		if err == nil && entries == nil {
			entries = []map[string]any{}
		}
		r.obs.CodeListLoaded(source, time.Since(start), err)
		if err != nil {
			r.log.Error().Err(err).Str("source", source).Msg("Failed to load code list")
			return nil, &SourceUnavailableError{Source: source, Err: err}
		}
		r.entries.Store(source, entries)
		r.log.Debug().
			Str("source", source).
			Int("entries", len(entries)).
			Dur("took", time.Since(start)).
			Msg("Loaded code list")
		return entries, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]map[string]any), nil
	case <-ctx.Done():
		return nil, &SourceUnavailableError{Source: source, Err: ctx.Err()}
	}
}

func (r *Resolver) extract(ref CodeListRef, entries []map[string]any) (*CodeSet, error) {
	values := make([]string, 0, len(entries))
	for i, e := range entries {
		raw, ok := e[ref.Field]
		if !ok || raw == nil {
			return nil, &FieldMissingError{Source: ref.Source, Field: ref.Field, Entry: i}
		}
		values = append(values, codeString(raw))
	}
	set := NewCodeSet(values...)
	if set.Len() != len(values) {
		r.log.Warn().
			Str("source", ref.Source).
			Str("field", ref.Field).
			Int("duplicates", len(values)-set.Len()).
			Msg("Code list has duplicate codes")
	}
	return set, nil
}

func codeString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
