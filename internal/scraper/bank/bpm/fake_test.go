package bpm

import (
	"context"
	"errors"
	"fmt"
)

var (
	errStaleElement = errors.New("element is detached from the DOM")
	errNoCells      = errors.New("cell locator failed")
)

type fakeCell struct {
	text    string
	textErr error
}

func (c fakeCell) Text() (string, error) {
	if c.textErr != nil {
		return "", c.textErr
	}
	return c.text, nil
}

// fakeRow is a scripted Row. Indexes in cellErr fail on handle
// acquisition, indexes in textErr fail when reading text, indexes in
// panicAt panic on handle acquisition.
type fakeRow struct {
	texts      []string
	countErr   error
	countPanic bool
	cellErr    map[int]bool
	textErr    map[int]bool
	panicAt    map[int]bool

	direct    map[CellSelector]string
	directErr error
}

func rowOf(texts ...string) *fakeRow {
	return &fakeRow{texts: texts}
}

func (r *fakeRow) CellCount() (int, error) {
	if r.countPanic {
		panic("cell count exploded")
	}
	if r.countErr != nil {
		return 0, r.countErr
	}
	return len(r.texts), nil
}

func (r *fakeRow) Cell(i int) (Cell, error) {
	if r.panicAt[i] {
		panic(fmt.Sprintf("cell %d exploded", i))
	}
	if r.cellErr[i] {
		return nil, errStaleElement
	}
	if r.textErr[i] {
		return fakeCell{textErr: errStaleElement}, nil
	}
	return fakeCell{text: r.texts[i]}, nil
}

func (r *fakeRow) DirectCellText(sel CellSelector) (string, error) {
	if r.directErr != nil {
		return "", r.directErr
	}
	if text, ok := r.direct[sel]; ok {
		return text, nil
	}
	switch sel {
	case SelectFourth:
		if len(r.texts) < 4 {
			return "", errNoCells
		}
		return r.texts[3], nil
	case SelectLast:
		if len(r.texts) == 0 {
			return "", errNoCells
		}
		return r.texts[len(r.texts)-1], nil
	}
	return "", errNoCells
}

// fakeLocator returns rows registered under a key.
type fakeLocator struct {
	rows map[string][]Row
	err  error
}

func (l *fakeLocator) LocateRows(ctx context.Context, key string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.rows[key], nil
}

func locatorFor(key string, rows ...Row) *fakeLocator {
	return &fakeLocator{rows: map[string][]Row{key: rows}}
}

type panickingExtractor struct{}

func (panickingExtractor) Extract(Row) []Column {
	panic("extractor exploded")
}

type emptyExtractor struct{}

func (emptyExtractor) Extract(Row) []Column {
	return []Column{}
}
