package bpm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Lookup states, logged on every transition.
const (
	stateSearching        = "searching"
	stateNotFound         = "not_found"
	stateFound            = "found"
	stateExtracting       = "extracting"
	stateExtractionFailed = "extraction_failed"
	stateExtracted        = "extracted"
	stateClassifying      = "classifying"
	stateBuilding         = "building"
	stateDone             = "done"
)

// Profiler operation names.
const (
	OpExtract  = "extract_columns"
	OpClassify = "detect_environment"
	OpBuild    = "build_result"
)

var errExtractionPanicked = errors.New("column extraction panicked")

// Lookup finds a transaction row in the BPM results grid and turns it into
// a LookupResult. Neither entry point ever returns an error or panics;
// failures come back as data.
type Lookup struct {
	locator  RowLocator
	logger   *zap.Logger
	builder  *Builder
	cache    *Cache
	profiler *Profiler

	parser     NumericParser
	classifier Classifier
	extractor  ColumnExtractor // overrides both modes when set

	mu          sync.RWMutex
	performance bool
}

type Option func(*Lookup)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Lookup) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithCache sets the cache used in performance mode.
func WithCache(cache *Cache) Option {
	return func(l *Lookup) {
		l.cache = cache
	}
}

// WithPerformanceMode starts the lookup with cached parsing and
// classification.
func WithPerformanceMode(enabled bool) Option {
	return func(l *Lookup) {
		l.performance = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Lookup) {
		l.builder.now = now
	}
}

func WithProfiler(p *Profiler) Option {
	return func(l *Lookup) {
		l.profiler = p
	}
}

func WithNumericParser(p NumericParser) Option {
	return func(l *Lookup) {
		if p != nil {
			l.parser = p
		}
	}
}

func WithClassifier(c Classifier) Option {
	return func(l *Lookup) {
		if c != nil {
			l.classifier = c
		}
	}
}

// WithExtractor replaces the column extractor in both modes.
func WithExtractor(e ColumnExtractor) Option {
	return func(l *Lookup) {
		l.extractor = e
	}
}

func NewLookup(locator RowLocator, opts ...Option) *Lookup {
	l := &Lookup{
		locator: locator,
		logger:  zap.NewNop(),
		builder: NewBuilder(nil, nil),
		parser:  DefaultNumericParser{},
	}

	for _, opt := range opts {
		opt(l)
	}

	l.builder.logger = l.logger
	if l.builder.now == nil {
		l.builder.now = time.Now
	}
	if l.classifier == nil {
		l.classifier = NewClassifier(l.logger)
	}
	if l.cache == nil {
		l.cache = NewCache(DefaultNumericCacheSize, DefaultEnvironmentCacheSize)
	}

	return l
}

// SetPerformanceMode switches between the cached and uncached strategies.
// Results are identical either way.
func (l *Lookup) SetPerformanceMode(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.performance == enabled {
		return
	}
	l.performance = enabled
	l.logger.Info("performance mode changed", zap.Bool("enabled", enabled))
}

func (l *Lookup) PerformanceMode() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.performance
}

func (l *Lookup) CacheStats() CacheStats {
	return l.cache.Stats()
}

func (l *Lookup) ClearCaches() {
	l.cache.Clear()
	l.logger.Info("performance caches cleared")
}

// Metrics returns the stage timings recorded so far.
func (l *Lookup) Metrics() map[string]OperationStats {
	return l.profiler.Summary()
}

func (l *Lookup) strategies() (ColumnExtractor, Classifier) {
	parser, classifier := l.parser, l.classifier
	if l.PerformanceMode() {
		parser = NewCachedParser(l.cache, parser)
		classifier = NewCachedClassifier(l.cache, classifier)
	}

	if l.extractor != nil {
		return l.extractor, classifier
	}
	return NewExtractor(parser, l.logger), classifier
}

// LookupLegacy returns the 4th and last column of the row holding key, or
// "NotFound" for both.
func (l *Lookup) LookupLegacy(ctx context.Context, key string) (string, string) {
	return l.run(ctx, key).Legacy()
}

// LookupResult returns everything extracted from the row holding key.
func (l *Lookup) LookupResult(ctx context.Context, key string) LookupResult {
	return l.run(ctx, key)
}

func (l *Lookup) run(ctx context.Context, key string) (result LookupResult) {
	log := l.logger.With(zap.String("key", key))

	defer func() {
		if r := recover(); r != nil {
			log.Error("lookup aborted, returning not found result", zap.String("error_type", "panic"))
			result = l.builder.NotFound()
		}
	}()

	log.Debug("lookup transition", zap.String("state", stateSearching))
	row, ok := l.locate(ctx, log, key)
	if !ok {
		log.Info("lookup transition", zap.String("state", stateNotFound))
		return l.builder.NotFound()
	}

	extractor, classifier := l.strategies()

	log.Debug("lookup transition", zap.String("state", stateExtracting))
	columns, err := l.extract(extractor, row)
	if err != nil {
		log.Warn("lookup transition",
			zap.String("state", stateExtractionFailed),
			zap.String("error_type", errorType(err)))
		log.Debug("extraction failure detail", zap.Error(err))
		return l.fallback(log, row)
	}
	if len(columns) == 0 {
		log.Warn("lookup transition",
			zap.String("state", stateExtractionFailed),
			zap.String("reason", "no columns extracted"))
		return l.fallback(log, row)
	}
	log.Debug("lookup transition", zap.String("state", stateExtracted), zap.Int("columns", len(columns)))

	log.Debug("lookup transition", zap.String("state", stateClassifying))
	stop := l.profiler.Track(OpClassify)
	env := classifier.Classify(columns)
	stop()

	log.Debug("lookup transition", zap.String("state", stateBuilding))
	stop = l.profiler.Track(OpBuild)
	result = l.builder.Build(columns, env)
	stop()

	log.Info("lookup transition",
		zap.String("state", stateDone),
		zap.Int("total_columns", result.TotalColumns),
		zap.String("environment", string(result.Environment)))
	return result
}

func (l *Lookup) locate(ctx context.Context, log *zap.Logger, key string) (Row, bool) {
	if l.locator == nil {
		log.Error("no row locator configured")
		return nil, false
	}

	rows, err := l.locator.LocateRows(ctx, key)
	if err != nil {
		log.Warn("row location failed", zap.String("error_type", errorType(err)))
		log.Debug("row location failure detail", zap.Error(err))
		return nil, false
	}

	switch n := len(rows); {
	case n == 0:
		log.Info("no matching rows", zap.Int("matches", 0))
		return nil, false
	case n > 1:
		log.Info("multiple matching rows, using the first match", zap.Int("matches", n))
	default:
		log.Info("found matching row", zap.Int("matches", 1))
	}

	log.Info("lookup transition", zap.String("state", stateFound))
	return rows[0], true
}

func (l *Lookup) extract(extractor ColumnExtractor, row Row) (columns []Column, err error) {
	defer l.profiler.Track(OpExtract)()
	defer func() {
		if r := recover(); r != nil {
			columns = nil
			err = fmt.Errorf("%w: %v", errExtractionPanicked, r)
		}
	}()
	return extractor.Extract(row), nil
}

// fallback reads the 4th and last cells directly, bypassing column
// records. Any failure ends in the not-found result.
func (l *Lookup) fallback(log *zap.Logger, row Row) (result LookupResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("fallback extraction panicked", zap.String("error_type", "panic"))
			result = l.builder.NotFound()
		}
	}()

	fourth, err := row.DirectCellText(SelectFourth)
	if err != nil {
		log.Error("fallback extraction failed",
			zap.Stringer("cell", SelectFourth), zap.String("error_type", errorType(err)))
		return l.builder.NotFound()
	}
	last, err := row.DirectCellText(SelectLast)
	if err != nil {
		log.Error("fallback extraction failed",
			zap.Stringer("cell", SelectLast), zap.String("error_type", errorType(err)))
		return l.builder.NotFound()
	}

	result = l.builder.Fallback(fourth, last)
	log.Info("fallback extraction completed", zap.Bool("found", result.Found))
	return result
}

// LookupMany runs LookupResult for every key with at most limit lookups in
// flight, returning results in key order. It only fails when ctx is done.
func LookupMany(ctx context.Context, l *Lookup, keys []string, limit int) ([]LookupResult, error) {
	results := make([]LookupResult, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = l.LookupResult(gctx, key)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
