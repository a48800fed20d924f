package bpm

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// TimestampLayout is the ISO-8601 layout of LookupResult.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// UnknownTimestamp replaces the timestamp when the clock cannot be read.
const UnknownTimestamp = "unknown"

// LookupResult is the outcome of one transaction lookup. It is built once
// and never mutated; failures are carried by Found, the sentinel strings
// and EnvironmentUnknown.
type LookupResult struct {
	FourthColumn       string      `json:"fourth_column" yaml:"fourth_column"`
	LastColumn         string      `json:"last_column" yaml:"last_column"`
	SecondToLastColumn string      `json:"second_to_last_column" yaml:"second_to_last_column"`
	Environment        Environment `json:"environment" yaml:"environment"`
	TotalColumns       int         `json:"total_columns" yaml:"total_columns"`
	Found              bool        `json:"transaction_found" yaml:"transaction_found"`
	Timestamp          string      `json:"search_timestamp" yaml:"search_timestamp"`
	Columns            []Column    `json:"all_columns" yaml:"all_columns"`
}

// Legacy returns the 4th and last column, the pair older callers expect.
func (r LookupResult) Legacy() (string, string) {
	return r.FourthColumn, r.LastColumn
}

// MarshalJSON always emits all_columns as a list, never null.
func (r LookupResult) MarshalJSON() ([]byte, error) {
	type plain LookupResult
	p := plain(r)
	if p.Columns == nil {
		p.Columns = []Column{}
	}
	return json.Marshal(p)
}

// Builder assembles LookupResults.
type Builder struct {
	now    func() time.Time
	logger *zap.Logger
}

func NewBuilder(now func() time.Time, logger *zap.Logger) *Builder {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{now: now, logger: logger}
}

// Build derives the legacy positional fields from columns. Each position is
// bounds checked on its own. An empty column list yields the not-found
// result whatever env says.
func (b *Builder) Build(columns []Column, env Environment) LookupResult {
	if len(columns) == 0 {
		b.logger.Warn("no columns provided for result building, returning not found result")
		return b.NotFound()
	}

	cols := make([]Column, len(columns))
	copy(cols, columns)
	total := len(cols)

	fourth := NotFound
	if total > 3 {
		fourth = cols[3].Text
	}
	last := NotFound
	if total > 0 {
		last = cols[total-1].Text
	}
	secondToLast := NotFound
	if total > 1 {
		secondToLast = cols[total-2].Text
	}

	b.logger.Info("result built",
		zap.Int("columns", total), zap.String("environment", string(env)))

	return LookupResult{
		FourthColumn:       fourth,
		LastColumn:         last,
		SecondToLastColumn: secondToLast,
		Environment:        env,
		TotalColumns:       total,
		Found:              true,
		Timestamp:          b.timestamp(),
		Columns:            cols,
	}
}

// NotFound is the canonical result for a lookup that located nothing.
func (b *Builder) NotFound() LookupResult {
	return LookupResult{
		FourthColumn:       NotFound,
		LastColumn:         NotFound,
		SecondToLastColumn: NotFound,
		Environment:        EnvironmentUnknown,
		TotalColumns:       0,
		Found:              false,
		Timestamp:          b.timestamp(),
		Columns:            []Column{},
	}
}

// Fallback is the result of the direct positional read made when column
// extraction failed. A fourth column reading "NotFound" collapses to the
// canonical not-found result.
func (b *Builder) Fallback(fourth, last string) LookupResult {
	if fourth == NotFound {
		return b.NotFound()
	}
	return LookupResult{
		FourthColumn:       fourth,
		LastColumn:         last,
		SecondToLastColumn: ExtractionFailed,
		Environment:        EnvironmentUnknown,
		TotalColumns:       0,
		Found:              true,
		Timestamp:          b.timestamp(),
		Columns:            []Column{},
	}
}

func (b *Builder) timestamp() (ts string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("failed to read clock for result timestamp")
			ts = UnknownTimestamp
		}
	}()

	t := b.now()
	if t.IsZero() {
		return UnknownTimestamp
	}
	return t.Format(TimestampLayout)
}

// NotFoundResult is the canonical not-found result stamped with the
// current time.
func NotFoundResult() LookupResult {
	return NewBuilder(nil, nil).NotFound()
}

// BuildResult assembles a result with the wall clock and no logging.
func BuildResult(columns []Column, env Environment) LookupResult {
	return NewBuilder(nil, nil).Build(columns, env)
}
