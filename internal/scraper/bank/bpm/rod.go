package bpm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/grez-lucas/bank-automation/internal/scraper/bank"
)

// RodLocator finds rows in the live results grid.
type RodLocator struct {
	page    *rod.Page
	timeout time.Duration
}

func NewRodLocator(page *rod.Page, timeout time.Duration) *RodLocator {
	return &RodLocator{page: page, timeout: timeout}
}

// LocateRows queries the grid once; it does not wait for cells to appear.
// The row of each match is resolved lazily, on first access.
func (l *RodLocator) LocateRows(ctx context.Context, key string) ([]Row, error) {
	page := l.page.Context(ctx)

	els, err := page.Elements(fmt.Sprintf(SelectorCellByTitle, cssQuote(key)))
	if err != nil {
		return nil, &bank.ScraperError{App: bank.AppBPM, Operation: "LocateRows", Cause: err}
	}

	if len(els) > 0 {
		// Off-screen rows of the virtualized grid render without text.
		_ = els.First().ScrollIntoView()
	}

	rows := make([]Row, 0, len(els))
	for _, el := range els {
		rows = append(rows, &rodRow{ctx: ctx, anchor: el, timeout: l.timeout})
	}
	return rows, nil
}

// cssQuote escapes a value for a single-quoted attribute selector.
func cssQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

type rodRow struct {
	ctx     context.Context
	anchor  *rod.Element
	timeout time.Duration

	row   *rod.Element
	cells rod.Elements
}

func (r *rodRow) element() (*rod.Element, error) {
	if r.row != nil {
		return r.row, nil
	}

	ctx, cancel := r.bounded()
	defer cancel()

	row, err := r.anchor.Context(ctx).ElementX(XPathRowAncestor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bank.ErrRowNotFound, err)
	}
	r.row = row.Context(r.ctx)
	return r.row, nil
}

// bounded caps a single element query, which rod would otherwise retry
// until the lookup context ends.
func (r *rodRow) bounded() (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(r.ctx)
	}
	return context.WithTimeout(r.ctx, r.timeout)
}

func (r *rodRow) CellCount() (int, error) {
	row, err := r.element()
	if err != nil {
		return 0, err
	}

	cells, err := row.Elements(SelectorCell)
	if err != nil {
		return 0, err
	}
	r.cells = cells
	return len(cells), nil
}

func (r *rodRow) Cell(index int) (Cell, error) {
	if index < 0 || index >= len(r.cells) {
		return nil, fmt.Errorf("%w: index %d", bank.ErrCellUnavailable, index)
	}
	return rodCell{el: r.cells[index]}, nil
}

func (r *rodRow) DirectCellText(sel CellSelector) (string, error) {
	row, err := r.element()
	if err != nil {
		return "", err
	}

	var selector string
	switch sel {
	case SelectFourth:
		selector = SelectorFourthCell
	case SelectLast:
		selector = SelectorLastCell
	default:
		return "", fmt.Errorf("%w: unsupported selector %s", bank.ErrCellUnavailable, sel)
	}

	ctx, cancel := r.bounded()
	defer cancel()

	cell, err := row.Context(ctx).Element(selector)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", bank.ErrCellUnavailable, selector, err)
	}
	text, err := cell.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

type rodCell struct {
	el *rod.Element
}

func (c rodCell) Text() (string, error) {
	return c.el.Text()
}
