package bpm

// CSS Selectors for the BPM web portal
const (
	// Results grid
	SelectorGridBody   = "div.mtex-datagrid-tbody"
	SelectorRow        = "div.trow"
	SelectorCell       = "div.tcell"
	SelectorFourthCell = "div.tcell:nth-child(4)"
	SelectorLastCell   = "div.tcell:last-child"
	// Cells carry the transaction reference in their title attribute.
	SelectorCellByTitle = "div.tcell[title='%s']"
	XPathRowAncestor    = "ancestor::div[contains(@class, 'trow')]"
	SelectorTotalColumn = "div.mtex-datagrid-tbody .trow .tcell.hover-td div"

	// Advanced search
	SelectorSearchTab     = "li.nav-item.nav-link a[href='#search']"
	SelectorSearchLabel   = "div.search-item label"
	SelectorSubmitButton  = "button.btn.btn-primary"
	ReferenceLabelPattern = "REFERENCE"

	// Market tree
	SelectorMarketName   = "li span.inf-name"
	SelectorUncheckedBox = "i.fa-square-o"
	SelectorCheckedBox   = "i.fa-check-square-o"
)
