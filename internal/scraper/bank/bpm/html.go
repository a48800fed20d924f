package bpm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/grez-lucas/bank-automation/internal/scraper/bank"
)

// HTMLLocator finds rows in a captured snapshot of the results grid.
type HTMLLocator struct {
	doc *goquery.Document
}

func NewHTMLLocator(html string) (*HTMLLocator, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bank.ErrParsingFailed, err)
	}

	if doc.Find(SelectorCell).Length() == 0 {
		return nil, fmt.Errorf("%w: no grid cells found with selector: %s", bank.ErrParsingFailed, SelectorCell)
	}

	return &HTMLLocator{doc: doc}, nil
}

// LocateRows returns the rows containing a cell titled key, in document
// order.
func (h *HTMLLocator) LocateRows(ctx context.Context, key string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := []Row{}
	h.doc.Find(SelectorCell).Each(func(_ int, cell *goquery.Selection) {
		if title, ok := cell.Attr("title"); !ok || title != key {
			return
		}
		row := cell.Closest(SelectorRow)
		if row.Length() == 0 {
			return
		}
		rows = append(rows, &htmlRow{sel: row})
	})

	return rows, nil
}

// Keys lists every cell title found in the grid's hover column, the
// references a snapshot can be queried for.
func (h *HTMLLocator) Keys() []string {
	seen := map[string]bool{}
	keys := []string{}
	h.doc.Find(SelectorRow).Each(func(_ int, row *goquery.Selection) {
		row.Find(SelectorCell + ".hover-td").Each(func(_ int, cell *goquery.Selection) {
			title := strings.TrimSpace(cell.AttrOr("title", ""))
			if title == "" || seen[title] {
				return
			}
			seen[title] = true
			keys = append(keys, title)
		})
	})
	return keys
}

type htmlRow struct {
	sel *goquery.Selection
}

func (r *htmlRow) cells() *goquery.Selection {
	return r.sel.Find(SelectorCell)
}

func (r *htmlRow) CellCount() (int, error) {
	return r.cells().Length(), nil
}

func (r *htmlRow) Cell(index int) (Cell, error) {
	cell := r.cells().Eq(index)
	if cell.Length() == 0 {
		return nil, fmt.Errorf("%w: index %d", bank.ErrCellUnavailable, index)
	}
	return htmlCell{sel: cell}, nil
}

func (r *htmlRow) DirectCellText(sel CellSelector) (string, error) {
	var selector string
	switch sel {
	case SelectFourth:
		selector = SelectorFourthCell
	case SelectLast:
		selector = SelectorLastCell
	default:
		return "", fmt.Errorf("%w: unsupported selector %s", bank.ErrCellUnavailable, sel)
	}

	cell := r.sel.Find(selector).First()
	if cell.Length() == 0 {
		return "", fmt.Errorf("%w: %s", bank.ErrCellUnavailable, selector)
	}
	return strings.TrimSpace(cell.Text()), nil
}

type htmlCell struct {
	sel *goquery.Selection
}

func (c htmlCell) Text() (string, error) {
	return c.sel.Text(), nil
}
