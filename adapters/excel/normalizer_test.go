package excel

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"seodash/domain/searchdata"
)

func TestNormalizeQueryRow(t *testing.T) {
	row := Row{
		"Query":       "seo tips",
		"Clicks":      "42",
		"Impressions": "1000",
		"CTR":         "4.2%",
		"Position":    "3.1",
	}

	rec := Normalize(row, searchdata.CategoryQuery)

	assert.Equal(t, searchdata.CategoryQuery, rec.Category)
	assert.Equal(t, "seo tips", rec.Key)
	assert.Equal(t, 42.0, rec.Clicks)
	assert.Equal(t, 1000.0, rec.Impressions)
	assert.InDelta(t, 0.042, rec.CTR, 1e-12)
	assert.Equal(t, 3.1, rec.Position)
	assert.Equal(t, "", rec.Date)
}

func TestNormalizeCTR(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want float64
	}{
		{"percent string", Row{"CTR": "12.5%"}, 0.125},
		{"percent string with space", Row{"CTR": " 12.5 % "}, 0.125},
		{"lowercase key", Row{"ctr": "50%"}, 0.5},
		{"scaled number", Row{"CTR": 12.5}, 0.125},
		{"half a percent", Row{"CTR": 0.5}, 0.005},
		{"one percent", Row{"CTR": 1}, 0.01},
		{"just above one percent", Row{"CTR": 1.5}, 0.015},
		{"number string", Row{"CTR": "0.8"}, 0.008},
		{"missing", Row{}, 0},
		{"garbage", Row{"CTR": "n/a"}, 0},
		{"uppercase wins", Row{"CTR": "10%", "ctr": "90%"}, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(tt.row, searchdata.CategoryQuery)
			assert.InDelta(t, tt.want, rec.CTR, 1e-12)
		})
	}
}

func TestNormalizeCTRFractionMapping(t *testing.T) {
	mapping := SheetMapping{Category: searchdata.CategoryQuery, IdentityKeys: []string{"Query"}}

	tests := []struct {
		name string
		ctr  interface{}
		want float64
	}{
		{"fraction kept", 0.25, 0.25},
		{"fraction string kept", "0.25", 0.25},
		{"percent string still scaled", "25%", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NormalizeWith(Row{"CTR": tt.ctr}, mapping)
			assert.InDelta(t, tt.want, rec.CTR, 1e-12)
		})
	}
}

func TestNormalizeCTRIsMonotonic(t *testing.T) {
	prev := -1.0
	for _, v := range []float64{0, 0.5, 0.99, 1, 1.01, 1.5, 50, 100} {
		ctr := Normalize(Row{"CTR": v}, searchdata.CategoryQuery).CTR
		assert.Greater(t, ctr, prev, "CTR %v", v)
		prev = ctr
	}
}

func TestNormalizeNumericDefaults(t *testing.T) {
	rec := Normalize(Row{
		"Clicks":      "lots",
		"Impressions": math.NaN(),
		"Position":    "",
	}, searchdata.CategoryDevice)

	assert.Equal(t, 0.0, rec.Clicks)
	assert.Equal(t, 0.0, rec.Impressions)
	assert.Equal(t, 0.0, rec.Position)
}

func TestNormalizeAcceptsNumericTypes(t *testing.T) {
	rec := Normalize(Row{
		"clicks":      int64(7),
		"impressions": json.Number("1200"),
		"position":    float32(2.5),
		"Impressions": "1,500",
	}, searchdata.CategoryCountry)

	assert.Equal(t, 7.0, rec.Clicks)
	assert.Equal(t, 1500.0, rec.Impressions)
	assert.Equal(t, 2.5, rec.Position)
}

func TestNormalizeToleratesClicksAboveImpressions(t *testing.T) {
	rec := Normalize(Row{"Clicks": "10", "Impressions": "2"}, searchdata.CategoryQuery)
	assert.Equal(t, 10.0, rec.Clicks)
	assert.Equal(t, 2.0, rec.Impressions)
}

func TestNormalizeIdentityKeys(t *testing.T) {
	tests := []struct {
		category searchdata.Category
		row      Row
		want     string
	}{
		{searchdata.CategoryQuery, Row{"query": "lower"}, "lower"},
		{searchdata.CategoryPage, Row{"Top pages": "/top", "Page": "/page"}, "/top"},
		{searchdata.CategoryPage, Row{"url": "https://example.com/"}, "https://example.com/"},
		{searchdata.CategoryCountry, Row{"Country": "France"}, "France"},
		{searchdata.CategoryDevice, Row{"device": "MOBILE"}, "MOBILE"},
		{searchdata.CategorySearchAppearance, Row{"Search appearance": "Videos"}, "Videos"},
		{searchdata.CategorySearchAppearance, Row{"search appearance": "ignored"}, ""},
		{searchdata.CategoryDate, Row{"Date": "2024-03-01"}, "2024-03-01"},
		{searchdata.CategoryQuery, Row{"Page": "/wrong-column"}, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.category)+"/"+tt.want, func(t *testing.T) {
			rec := Normalize(tt.row, tt.category)
			assert.Equal(t, tt.category, rec.Category)
			assert.Equal(t, tt.want, rec.Key)
		})
	}
}

func TestNormalizeDateIndependentOfCategory(t *testing.T) {
	rec := Normalize(Row{"Page": "/blog", "date": "2024-02-02"}, searchdata.CategoryPage)
	assert.Equal(t, "/blog", rec.Key)
	assert.Equal(t, "2024-02-02", rec.Date)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	first, err := json.Marshal(Normalize(Row{}, searchdata.CategoryQuery))
	assert.NoError(t, err)
	second, err := json.Marshal(Normalize(Row{}, searchdata.CategoryQuery))
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.JSONEq(t, `{"category":"query","query":"","clicks":0,"impressions":0,"ctr":0,"position":0,"date":""}`, string(first))
}
