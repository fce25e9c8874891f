package gowick

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// WickTheorem
// ============================================================

// MaxSupportedCumulant is the highest density-cumulant order the engine
// generates.
const MaxSupportedCumulant = 6

// DefaultCacheSize is the number of canonicalized terms remembered by a
// WickTheorem unless WithCacheSize says otherwise.
const DefaultCacheSize = 65536

// Observer receives contraction measurements. Implementations must be safe
// for concurrent use.
type Observer interface {
	ContractionDone(products, contractions, terms int, elapsed time.Duration)
	CacheHit()
}

// Stats are cumulative counters over the lifetime of a WickTheorem.
type Stats struct {
	Products     int64
	Elementary   int64
	Composite    int64
	Processed    int64
	CacheHits    int64
	CacheLookups int64
}

type canonicalTerm struct {
	term SymbolicTerm
	sign int
}

// engineConfig is the snapshot of the toggles a single Contract call runs
// with.
type engineConfig struct {
	maxCumulant       int
	cumulantCapped    bool
	canonicalizeGraph bool
	interGeneral      bool
	singleThreaded    bool
	workers           int
}

// WickTheorem contracts products of diagrammatic operators. Its toggles may
// be changed between calls; a Contract call works on a snapshot of them.
type WickTheorem struct {
	spaces *SpaceContext

	mu  sync.RWMutex
	cfg engineConfig

	logger   *slog.Logger
	observer Observer
	cache    *lru.Cache[string, canonicalTerm]

	products     atomic.Int64
	elementary   atomic.Int64
	composite    atomic.Int64
	processed    atomic.Int64
	cacheHits    atomic.Int64
	cacheLookups atomic.Int64
}

// Option configures a WickTheorem.
type Option func(*WickTheorem)

// WithLogger routes engine diagnostics to l. A nil logger keeps the
// discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(w *WickTheorem) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithObserver installs hooks called as contraction proceeds.
func WithObserver(o Observer) Option { return func(w *WickTheorem) { w.observer = o } }

// WithCacheSize sets the canonical-term cache size; zero disables the
// cache.
func WithCacheSize(n int) Option {
	return func(w *WickTheorem) {
		w.cache = nil
		if n > 0 {
			w.cache, _ = lru.New[string, canonicalTerm](n)
		}
	}
}

// WithWorkers bounds the number of goroutines that expand products in
// parallel. Non-positive values keep GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(w *WickTheorem) {
		if n > 0 {
			w.cfg.workers = n
		}
	}
}

// WithMaxCumulant caps general-space contractions at cumulants of order n.
// Out-of-range values leave the default in place; SetMaxCumulant reports
// them.
func WithMaxCumulant(n int) Option {
	return func(w *WickTheorem) {
		if n >= 1 && n <= MaxSupportedCumulant {
			w.cfg.maxCumulant = n
			w.cfg.cumulantCapped = true
		}
	}
}

// WithSingleThreaded, WithCanonicalizeGraph and WithInterGeneral set the
// matching engine flags at construction time; see the Set methods.
func WithSingleThreaded(on bool) Option    { return func(w *WickTheorem) { w.cfg.singleThreaded = on } }
func WithCanonicalizeGraph(on bool) Option { return func(w *WickTheorem) { w.cfg.canonicalizeGraph = on } }
func WithInterGeneral(on bool) Option      { return func(w *WickTheorem) { w.cfg.interGeneral = on } }

// NewWickTheorem returns an engine over spaces with the default cumulant
// limit, one worker per GOMAXPROCS and a DefaultCacheSize term cache.
func NewWickTheorem(spaces *SpaceContext, opts ...Option) *WickTheorem {
	w := &WickTheorem{
		spaces: spaces,
		cfg: engineConfig{
			maxCumulant: MaxSupportedCumulant,
			workers:     runtime.GOMAXPROCS(0),
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	w.cache, _ = lru.New[string, canonicalTerm](DefaultCacheSize)
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetMaxCumulant truncates general-space contractions at cumulants of order
// n.
func (w *WickTheorem) SetMaxCumulant(n int) error {
	if n < 1 || n > MaxSupportedCumulant {
		return newError(ErrRankNotSupported, "SetMaxCumulant",
			"cumulant order %d outside [1, %d]", n, MaxSupportedCumulant)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg.maxCumulant = n
	w.cfg.cumulantCapped = true
	return nil
}

// SetCanonicalizeGraph toggles merging of equivalent contraction graphs
// before expansion. Operators with an odd number of components are rejected
// while it is on.
func (w *WickTheorem) SetCanonicalizeGraph(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg.canonicalizeGraph = on
}

// SetInterGeneral builds cumulants that mix indices of two general spaces
// instead of one cumulant family per space.
func (w *WickTheorem) SetInterGeneral(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg.interGeneral = on
}

// SetSingleThreaded disables the worker pool.
func (w *WickTheorem) SetSingleThreaded(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg.singleThreaded = on
}

// SetWorkers sets the pool size, clamped to at least one.
func (w *WickTheorem) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg.workers = n
}

func (w *WickTheorem) config() engineConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

func (w *WickTheorem) Spaces() *SpaceContext { return w.spaces }

// Stats returns the running counters accumulated over all Contract calls.
func (w *WickTheorem) Stats() Stats {
	return Stats{
		Products:     w.products.Load(),
		Elementary:   w.elementary.Load(),
		Composite:    w.composite.Load(),
		Processed:    w.processed.Load(),
		CacheHits:    w.cacheHits.Load(),
		CacheLookups: w.cacheLookups.Load(),
	}
}

// Contract applies Wick's theorem to every product of expr, scaled by
// factor, and returns the canonical sum of the terms whose number of
// uncontracted operators lies in [minRank, maxRank].
func (w *WickTheorem) Contract(ctx context.Context, factor Rational, expr *OperatorExpression, minRank, maxRank int) (*Expression, error) {
	start := time.Now()
	before := w.processed.Load()
	result := NewExpression(w.spaces)
	terms := expr.Terms()
	for _, t := range terms {
		part, err := w.ContractProduct(ctx, factor.Mul(t.Coeff), t.Product, minRank, maxRank)
		if err != nil {
			return nil, err
		}
		result.AddExpression(part, RInt(1))
	}
	elapsed := time.Since(start)
	contractions := int(w.processed.Load() - before)
	w.logger.Info("contraction finished",
		"products", len(terms),
		"contractions", contractions,
		"terms", result.Len(),
		"min_rank", minRank,
		"max_rank", maxRank,
		"elapsed", elapsed)
	if w.observer != nil {
		w.observer.ContractionDone(len(terms), contractions, result.Len(), elapsed)
	}
	return result, nil
}

// ContractProduct contracts a single operator product.
func (w *WickTheorem) ContractProduct(ctx context.Context, factor Rational, ops OperatorProduct, minRank, maxRank int) (*Expression, error) {
	const op = "Contract"
	if minRank < 0 || maxRank < minRank {
		return nil, newError(ErrInvalidState, op, "invalid rank window [%d, %d]", minRank, maxRank)
	}
	cfg := w.config()
	tab := w.spaces.snapshot()
	for _, o := range ops {
		for s := 0; s < MaxSpaces; s++ {
			if o.Cre(s)+o.Ann(s) == 0 {
				continue
			}
			if s >= tab.n {
				return nil, newError(ErrUnknownSpace, op, "operator %q uses undeclared space %d", o.Label, s)
			}
			if tab.types[s] == Composite {
				return nil, newError(ErrInvalidState, op, "operator %q acts on composite space %q", o.Label, w.spaces.Label(s))
			}
		}
	}
	if cfg.canonicalizeGraph {
		for _, o := range ops {
			if o.NumOps()%2 != 0 {
				return nil, newError(ErrRankNotSupported, op,
					"graph canonicalization needs even operators, %q has %d", o.Label, o.NumOps())
			}
		}
	}

	elementary, err := w.elementaryContractions(tab, ops, cfg)
	if err != nil {
		return nil, err
	}
	composite := compositeContractions(ops, elementary, minRank, maxRank)
	w.products.Add(1)
	w.elementary.Add(int64(len(elementary)))
	w.composite.Add(int64(len(composite)))
	w.logger.Debug("contracting product",
		"operators", len(ops),
		"elementary", len(elementary),
		"composite", len(composite))

	job := contractionJob{
		tab:        tab,
		cfg:        cfg,
		ops:        ops,
		opsRank:    ops.NumOps(),
		elementary: elementary,
		factor:     factor,
		minRank:    minRank,
		maxRank:    maxRank,
	}

	workers := cfg.workers
	if cfg.singleThreaded || workers < 2 || len(composite) < 2 {
		workers = 1
	}
	if workers > len(composite) {
		workers = max(len(composite), 1)
	}
	partials := make([]*Expression, workers)
	chunk := (len(composite) + workers - 1) / workers
	g, gCtx := errgroup.WithContext(ctx)
	for k := 0; k < workers; k++ {
		lo := min(k*chunk, len(composite))
		hi := min(lo+chunk, len(composite))
		g.Go(func() error {
			local := NewExpression(w.spaces)
			for _, cv := range composite[lo:hi] {
				if err := gCtx.Err(); err != nil {
					return err
				}
				if err := w.processContraction(job, cv, local); err != nil {
					return err
				}
			}
			partials[k] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ClassOf(err) == ClassUnknown {
			return nil, &Error{Class: ClassCapability, Op: op, Err: err}
		}
		return nil, err
	}
	result := NewExpression(w.spaces)
	for _, p := range partials {
		result.AddExpression(p, RInt(1))
	}
	return result, nil
}

type contractionJob struct {
	tab        spaceTable
	cfg        engineConfig
	ops        OperatorProduct
	opsRank    int
	elementary []ElementaryContraction
	factor     Rational
	minRank    int
	maxRank    int
}

// processContraction evaluates one composite contraction and adds the
// canonical term to out.
func (w *WickTheorem) processContraction(job contractionJob, ids []int, out *Expression) error {
	contracted := 0
	for _, c := range ids {
		contracted += job.elementary[c].NumOps()
	}
	if rank := job.opsRank - contracted; rank < job.minRank || rank > job.maxRank {
		return nil
	}
	ops := job.ops
	contractions := make(CompositeContraction, len(ids))
	for k, c := range ids {
		contractions[k] = job.elementary[c]
	}
	if job.cfg.canonicalizeGraph {
		var err error
		if ops, contractions, err = canonicalizeGraph(ops, contractions); err != nil {
			return err
		}
	}
	term, factor := evaluateContraction(job.tab, ops, contractions, job.factor)
	term, sign := w.canonical(term)
	out.Add(term, factor.MulInt(int64(sign)))
	w.processed.Add(1)
	return nil
}

// canonical canonicalizes term through the LRU cache.
func (w *WickTheorem) canonical(term SymbolicTerm) (SymbolicTerm, int) {
	if w.cache == nil {
		sign := term.Canonicalize()
		return term, sign
	}
	key := term.key()
	w.cacheLookups.Add(1)
	if hit, ok := w.cache.Get(key); ok {
		w.cacheHits.Add(1)
		if w.observer != nil {
			w.observer.CacheHit()
		}
		return hit.term.clone(), hit.sign
	}
	sign := term.Canonicalize()
	w.cache.Add(key, canonicalTerm{term: term.clone(), sign: sign})
	return term, sign
}
