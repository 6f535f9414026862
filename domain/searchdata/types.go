package searchdata

import (
	"encoding/json"
	"fmt"
)

// Category identifies which dimension a record was reported under
type Category string

const (
	CategoryQuery            Category = "query"
	CategoryPage             Category = "page"
	CategoryCountry          Category = "country"
	CategoryDevice           Category = "device"
	CategorySearchAppearance Category = "search_appearance"
	CategoryDate             Category = "date"
)

// Categories lists every category in sheet-processing order
var Categories = []Category{
	CategoryQuery,
	CategoryPage,
	CategoryCountry,
	CategoryDevice,
	CategorySearchAppearance,
	CategoryDate,
}

// identityFields maps a category to the JSON field carrying its identity
var identityFields = map[Category]string{
	CategoryQuery:            "query",
	CategoryPage:             "page",
	CategoryCountry:          "country",
	CategoryDevice:           "device",
	CategorySearchAppearance: "searchAppearance",
	CategoryDate:             "date",
}

// ParseCategory validates a category name
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := identityFields[c]
	return ok
}

// String returns the string representation
func (c Category) String() string {
	return string(c)
}

// IdentityField returns the JSON field name holding the identity for c
func (c Category) IdentityField() string {
	return identityFields[c]
}

// Record is one row of search-performance data.
//
// Category is the tag and Key the only identity payload, so a record can never
// carry both a query and a page. Date is independent of the category.
type Record struct {
	Category    Category
	Key         string
	Clicks      float64
	Impressions float64
	CTR         float64 // fraction, 0-1
	Position    float64
	Date        string
}

// NewRecord creates a record tagged with category
func NewRecord(category Category, key string) Record {
	return Record{Category: category, Key: key}
}

// Identity returns the identity value and whether r is tagged with category
func (r Record) Identity(category Category) (string, bool) {
	if r.Category != category {
		return "", false
	}
	return r.Key, true
}

// MarshalJSON writes the discriminated layout: the identity is emitted under
// the field named for the category.
func (r Record) MarshalJSON() ([]byte, error) {
	if !r.Category.Valid() {
		return nil, fmt.Errorf("cannot marshal record with category %q", r.Category)
	}

	out := map[string]interface{}{
		"category":    r.Category,
		"clicks":      r.Clicks,
		"impressions": r.Impressions,
		"ctr":         r.CTR,
		"position":    r.Position,
		"date":        r.Date,
	}
	// date-category records use the date itself as identity
	out[r.Category.IdentityField()] = r.Key

	return json.Marshal(out)
}

// UnmarshalJSON reads the identity from the field matching the category tag
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var category string
	if err := decodeField(raw, "category", &category); err != nil {
		return err
	}
	c, err := ParseCategory(category)
	if err != nil {
		return err
	}

	rec := Record{Category: c}
	fields := []struct {
		name string
		dst  interface{}
	}{
		{"clicks", &rec.Clicks},
		{"impressions", &rec.Impressions},
		{"ctr", &rec.CTR},
		{"position", &rec.Position},
		{"date", &rec.Date},
		{c.IdentityField(), &rec.Key},
	}
	for _, f := range fields {
		if err := decodeField(raw, f.name, f.dst); err != nil {
			return err
		}
	}

	*r = rec
	return nil
}

func decodeField(raw map[string]json.RawMessage, name string, dst interface{}) error {
	msg, ok := raw[name]
	if !ok || string(msg) == "null" {
		return nil
	}
	if err := json.Unmarshal(msg, dst); err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	return nil
}

// FilterByCategory returns the records tagged with category, in order
func FilterByCategory(records []Record, category Category) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// CountByCategory returns how many records each category holds
func CountByCategory(records []Record) map[Category]int {
	counts := make(map[Category]int)
	for _, r := range records {
		counts[r.Category]++
	}
	return counts
}
