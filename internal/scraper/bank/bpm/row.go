package bpm

import (
	"context"
	"fmt"
)

// Cell is a live handle on one grid cell.
type Cell interface {
	Text() (string, error)
}

// CellSelector picks a cell for the direct positional fallback.
type CellSelector int

const (
	SelectFourth CellSelector = iota
	SelectLast
)

func (s CellSelector) String() string {
	switch s {
	case SelectFourth:
		return "fourth"
	case SelectLast:
		return "last"
	default:
		return fmt.Sprintf("selector(%d)", int(s))
	}
}

// Row is one result row of the BPM grid. Every method may fail: the row
// lives in a DOM that can re-render between calls.
type Row interface {
	CellCount() (int, error)
	Cell(index int) (Cell, error)
	// DirectCellText reads a cell by position without going through the
	// per-cell handles. Only the fallback path uses it.
	DirectCellText(sel CellSelector) (string, error)
}

// RowLocator finds every grid row holding a cell titled with key.
type RowLocator interface {
	LocateRows(ctx context.Context, key string) ([]Row, error)
}

// errorType names an error without leaking its message, which can carry
// scraped field content.
func errorType(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%T", err)
}
