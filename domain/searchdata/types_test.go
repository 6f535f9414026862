package searchdata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("keyword")
	assert.Error(t, err)
}

func TestRecordJSONUsesCategoryField(t *testing.T) {
	rec := Record{
		Category:    CategorySearchAppearance,
		Key:         "Rich results",
		Clicks:      3,
		Impressions: 90,
		CTR:         0.0333,
		Position:    7.2,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "search_appearance", raw["category"])
	assert.Equal(t, "Rich results", raw["searchAppearance"])
	assert.NotContains(t, raw, "query")
	assert.NotContains(t, raw, "page")
	assert.Equal(t, "", raw["date"])

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rec, back)
}

func TestRecordJSONDateCategory(t *testing.T) {
	rec := Record{Category: CategoryDate, Key: "2024-03-01", Date: "2024-03-01", Clicks: 10}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "2024-03-01", back.Key)
	assert.Equal(t, "2024-03-01", back.Date)
}

func TestRecordUnmarshalIgnoresForeignIdentity(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"category":"page","query":"ignored","page":"/blog","clicks":5}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, CategoryPage, rec.Category)
	assert.Equal(t, "/blog", rec.Key)
	_, isQuery := rec.Identity(CategoryQuery)
	assert.False(t, isQuery)
}

func TestRecordUnmarshalRejectsUnknownCategory(t *testing.T) {
	var rec Record
	assert.Error(t, json.Unmarshal([]byte(`{"category":"keyword","clicks":5}`), &rec))
	assert.Error(t, json.Unmarshal([]byte(`{"category":"query","clicks":"many"}`), &rec))
}

func TestFilterAndCount(t *testing.T) {
	records := []Record{
		NewRecord(CategoryQuery, "a"),
		NewRecord(CategoryPage, "/x"),
		NewRecord(CategoryQuery, "b"),
	}

	queries := FilterByCategory(records, CategoryQuery)
	require.Len(t, queries, 2)
	assert.Equal(t, "a", queries[0].Key)
	assert.Equal(t, "b", queries[1].Key)

	assert.Empty(t, FilterByCategory(records, CategoryDevice))
	assert.Equal(t, map[Category]int{CategoryQuery: 2, CategoryPage: 1}, CountByCategory(records))
}
