package excel

import (
	"io"

	"seodash/domain/searchdata"
)

// Row is one data row keyed by header name. Empty cells are absent keys.
type Row map[string]interface{}

// SheetData represents one decoded sheet
type SheetData struct {
	Name    string   // Sheet name as found in the workbook
	Headers []string // Column headers
	Rows    []Row    // Data rows
}

// Upload is a file handed over by the file-selection UI
type Upload struct {
	Filename string
	Content  io.Reader
}

// SheetMapping ties a canonical sheet name to the category its rows carry
type SheetMapping struct {
	SheetName    string
	Category     searchdata.Category
	IdentityKeys []string // accepted identity columns, first match wins
	CTRAsPercent bool     // source expresses CTR on a 0-100 scale
}
