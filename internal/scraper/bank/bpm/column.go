package bpm

import (
	"encoding/json"
	"fmt"
)

// Sentinel cell values surfaced to callers instead of errors.
const (
	NotFound         = "NotFound"
	ExtractionError  = "ExtractionError"
	ExtractionFailed = "ExtractionFailed"
)

// Column is one extracted cell of a BPM result row. The numeric value is
// only reachable through IsNumeric/NumericValue so a record can never claim
// to be numeric without carrying a value, or the other way round.
type Column struct {
	Position int    // 1-based
	Text     string // trimmed cell text
	numeric  *int
}

// NewColumn builds a column; a nil value marks the column as non-numeric.
func NewColumn(position int, text string, value *int) Column {
	c := Column{Position: position, Text: text}
	if value != nil {
		v := *value
		c.numeric = &v
	}
	return c
}

func NewTextColumn(position int, text string) Column {
	return Column{Position: position, Text: text}
}

// NewNumericColumn builds a numeric column holding value.
func NewNumericColumn(position int, text string, value int) Column {
	return Column{Position: position, Text: text, numeric: &value}
}

// ExtractionErrorColumn is the placeholder kept when a cell handle could not
// be acquired, so later positions do not shift.
func ExtractionErrorColumn(position int) Column {
	return Column{Position: position, Text: ExtractionError}
}

func (c Column) IsNumeric() bool {
	return c.numeric != nil
}

func (c Column) NumericValue() (int, bool) {
	if c.numeric == nil {
		return 0, false
	}
	return *c.numeric, true
}

func (c Column) String() string {
	return fmt.Sprintf("Col%d: %s", c.Position, c.Text)
}

// columnWire is the serialized shape of a column.
type columnWire struct {
	Position     int    `json:"position" yaml:"position"`
	Value        string `json:"value" yaml:"value"`
	IsNumeric    bool   `json:"is_numeric" yaml:"is_numeric"`
	NumericValue *int   `json:"numeric_value" yaml:"numeric_value"`
}

func (c Column) wire() columnWire {
	return columnWire{
		Position:     c.Position,
		Value:        c.Text,
		IsNumeric:    c.IsNumeric(),
		NumericValue: c.numeric,
	}
}

func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.wire())
}

// UnmarshalJSON trusts is_numeric over numeric_value: a value without the
// flag is dropped and a flag without a value decodes as non-numeric.
func (c *Column) UnmarshalJSON(data []byte) error {
	var w columnWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	value := w.NumericValue
	if !w.IsNumeric {
		value = nil
	}
	*c = NewColumn(w.Position, w.Value, value)
	return nil
}

func (c Column) MarshalYAML() (any, error) {
	return c.wire(), nil
}
