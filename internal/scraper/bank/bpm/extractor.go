package bpm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ColumnExtractor turns a row into column records.
type ColumnExtractor interface {
	Extract(row Row) []Column
}

// Extractor reads every cell of a row independently. A failing cell never
// aborts the row.
type Extractor struct {
	parser NumericParser
	logger *zap.Logger
}

func NewExtractor(parser NumericParser, logger *zap.Logger) *Extractor {
	if parser == nil {
		parser = DefaultNumericParser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{parser: parser, logger: logger}
}

// Extract returns one column per cell, or an empty slice when the row is
// nil or its cells cannot be counted. It never panics.
func (e *Extractor) Extract(row Row) []Column {
	columns := []Column{}
	if row == nil {
		e.logger.Warn("no row provided for column extraction")
		return columns
	}

	count, err := e.cellCount(row)
	if err != nil {
		e.logger.Error("failed to locate cells in result row", zap.String("error_type", errorType(err)))
		e.logger.Debug("cell count failure detail", zap.Error(err))
		return columns
	}
	if count <= 0 {
		e.logger.Warn("no cells found in result row")
		return columns
	}

	columns = make([]Column, 0, count)
	failed := 0
	for i := 0; i < count; i++ {
		col := e.extractCell(row, i)
		if col.Text == ExtractionError {
			failed++
		}
		columns = append(columns, col)
	}

	if failed > 0 {
		e.logger.Warn("column extraction completed with failures",
			zap.Int("failed", failed), zap.Int("columns", len(columns)))
	} else {
		e.logger.Info("extracted all columns", zap.Int("columns", len(columns)))
	}

	return columns
}

func (e *Extractor) cellCount(row Row) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cell count panicked: %v", r)
		}
	}()
	return row.CellCount()
}

func (e *Extractor) extractCell(row Row, i int) (col Column) {
	pos := i + 1

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("error extracting column", zap.Int("position", pos), zap.String("error_type", "panic"))
			col = ExtractionErrorColumn(pos)
		}
	}()

	cell, err := row.Cell(i)
	if err != nil || cell == nil {
		e.logger.Error("failed to get cell handle",
			zap.Int("position", pos), zap.String("error_type", errorType(err)))
		return ExtractionErrorColumn(pos)
	}

	text, err := cell.Text()
	if err != nil {
		e.logger.Warn("failed to read cell text",
			zap.Int("position", pos), zap.String("error_type", errorType(err)))
		text = ""
	}
	text = strings.TrimSpace(text)

	ok, value := e.parser.Parse(text)
	if !ok {
		value = nil
	}

	e.logger.Debug("column extracted",
		zap.Int("position", pos), zap.Bool("numeric", value != nil))
	return NewColumn(pos, text, value)
}
