package excel

import (
	"seodash/domain/searchdata"
)

// ExcelConfig holds configuration for spreadsheet ingestion
type ExcelConfig struct {
	MaxUploadBytes int64          `json:"max_upload_bytes"`
	Mappings       []SheetMapping `json:"mappings"`
}

// DefaultMappings is the fixed category table, in sheet-processing order
func DefaultMappings() []SheetMapping {
	return []SheetMapping{
		{SheetName: "Queries", Category: searchdata.CategoryQuery, IdentityKeys: []string{"Query", "query"}, CTRAsPercent: true},
		{SheetName: "Pages", Category: searchdata.CategoryPage, IdentityKeys: []string{"Top pages", "Page", "page", "URL", "url"}, CTRAsPercent: true},
		{SheetName: "Countries", Category: searchdata.CategoryCountry, IdentityKeys: []string{"Country", "country"}, CTRAsPercent: true},
		{SheetName: "Devices", Category: searchdata.CategoryDevice, IdentityKeys: []string{"Device", "device"}, CTRAsPercent: true},
		{SheetName: "Search appearance", Category: searchdata.CategorySearchAppearance, IdentityKeys: []string{"Search Appearance", "Search appearance"}, CTRAsPercent: true},
		{SheetName: "Dates", Category: searchdata.CategoryDate, IdentityKeys: []string{"Date", "date"}, CTRAsPercent: true},
	}
}

// DefaultExcelConfig returns sensible defaults for spreadsheet ingestion
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		MaxUploadBytes: 50 * 1024 * 1024, // 50MB
		Mappings:       DefaultMappings(),
	}
}

// MappingFor returns the default mapping for category
func MappingFor(category searchdata.Category) (SheetMapping, bool) {
	for _, m := range DefaultMappings() {
		if m.Category == category {
			return m, true
		}
	}
	return SheetMapping{}, false
}
