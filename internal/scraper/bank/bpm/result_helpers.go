package bpm

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnAt returns the column at a 1-based position.
func (r LookupResult) ColumnAt(position int) (Column, bool) {
	if position < 1 || position > len(r.Columns) {
		return Column{}, false
	}
	return r.Columns[position-1], true
}

// ColumnValueAt returns the text at a 1-based position, or def.
func (r LookupResult) ColumnValueAt(position int, def string) string {
	if c, ok := r.ColumnAt(position); ok {
		return c.Text
	}
	return def
}

func (r LookupResult) NumericColumns() []Column {
	numeric := []Column{}
	for _, c := range r.Columns {
		if c.IsNumeric() {
			numeric = append(numeric, c)
		}
	}
	return numeric
}

// NumericValues lists the numeric values in column order.
func (r LookupResult) NumericValues() []int {
	values := []int{}
	for _, c := range r.Columns {
		if v, ok := c.NumericValue(); ok {
			values = append(values, v)
		}
	}
	return values
}

// ValidateColumnCount reports whether TotalColumns lies in [min, max]. A
// max <= 0 leaves the upper bound open.
func (r LookupResult) ValidateColumnCount(min, max int) bool {
	if r.TotalColumns < min {
		return false
	}
	if max > 0 && r.TotalColumns > max {
		return false
	}
	return true
}

// HasRequiredColumns reports whether every position holds usable text.
// Missing, empty and sentinel cells do not count.
func (r LookupResult) HasRequiredColumns(positions []int) bool {
	for _, p := range positions {
		c, ok := r.ColumnAt(p)
		if !ok || isPlaceholder(c.Text) {
			return false
		}
	}
	return true
}

func isPlaceholder(text string) bool {
	switch text {
	case "", NotFound, ExtractionError:
		return true
	}
	return false
}

// FindColumns returns the columns whose text matches pattern.
func (r LookupResult) FindColumns(pattern string, caseSensitive bool) ([]Column, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty column pattern")
	}
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid column pattern: %w", err)
	}

	matches := []Column{}
	for _, c := range r.Columns {
		if c.Text != "" && re.MatchString(c.Text) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// ColumnSummary is an overview of a result's columns for debugging.
type ColumnSummary struct {
	TotalColumns     int               `json:"total_columns" yaml:"total_columns"`
	NumericColumns   int               `json:"numeric_columns" yaml:"numeric_columns"`
	EmptyColumns     int               `json:"empty_columns" yaml:"empty_columns"`
	ErrorColumns     int               `json:"error_columns" yaml:"error_columns"`
	Environment      Environment       `json:"environment" yaml:"environment"`
	TransactionFound bool              `json:"transaction_found" yaml:"transaction_found"`
	KeyColumns       map[string]string `json:"key_columns" yaml:"key_columns"`
	NumericValues    []int             `json:"numeric_values,omitempty" yaml:"numeric_values,omitempty"`
	SearchTimestamp  string            `json:"search_timestamp" yaml:"search_timestamp"`
}

func (r LookupResult) Summary() ColumnSummary {
	s := ColumnSummary{
		TotalColumns:     r.TotalColumns,
		Environment:      r.Environment,
		TransactionFound: r.Found,
		KeyColumns:       map[string]string{},
		SearchTimestamp:  r.Timestamp,
	}

	for _, c := range r.Columns {
		switch {
		case c.Text == ExtractionError:
			s.ErrorColumns++
		case strings.TrimSpace(c.Text) == "":
			s.EmptyColumns++
		}
		if c.IsNumeric() {
			s.NumericColumns++
		}
	}

	if r.TotalColumns >= 4 {
		s.KeyColumns["fourth_column"] = r.FourthColumn
	}
	if r.TotalColumns >= 1 {
		s.KeyColumns["last_column"] = r.LastColumn
	}
	if r.TotalColumns >= 2 {
		s.KeyColumns["second_to_last_column"] = r.SecondToLastColumn
	}

	if values := r.NumericValues(); len(values) > 0 {
		s.NumericValues = values
	}
	return s
}

// EnvironmentDetails describes the tier a result was classified into.
type EnvironmentDetails struct {
	Environment        Environment `json:"environment"`
	Classification     string      `json:"classification"`
	NumericValuesFound []int       `json:"numeric_values_found"`
	NumericColumnCount int         `json:"numeric_column_count"`
	TotalColumns       int         `json:"total_columns"`
	DetectionTimestamp string      `json:"detection_timestamp"`
	QualifyingRange    string      `json:"qualifying_range"`
	Description        string      `json:"description"`
}

func (r LookupResult) EnvironmentInfo() EnvironmentDetails {
	values := r.NumericValues()
	return EnvironmentDetails{
		Environment:        r.Environment,
		Classification:     r.Environment.Classification(),
		NumericValuesFound: values,
		NumericColumnCount: len(values),
		TotalColumns:       r.TotalColumns,
		DetectionTimestamp: r.Timestamp,
		QualifyingRange:    r.Environment.QualifyingRange(),
		Description:        r.Environment.Description(),
	}
}
