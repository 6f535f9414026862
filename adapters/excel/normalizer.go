package excel

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"seodash/domain/searchdata"
)

// Accepted column spellings for the shared fields, first match wins
var (
	clicksKeys      = []string{"Clicks", "clicks"}
	impressionsKeys = []string{"Impressions", "impressions"}
	ctrKeys         = []string{"CTR", "ctr"}
	positionKeys    = []string{"Position", "position"}
	dateKeys        = []string{"Date", "date"}
)

// Normalize converts a raw row into a record tagged with category, using the
// default column table for that category.
func Normalize(row Row, category searchdata.Category) searchdata.Record {
	mapping, ok := MappingFor(category)
	if !ok {
		mapping = SheetMapping{Category: category, CTRAsPercent: true}
	}
	return NormalizeWith(row, mapping)
}

// NormalizeWith converts a raw row using mapping. Missing or malformed fields
// default to zero or the empty string; it never fails.
func NormalizeWith(row Row, mapping SheetMapping) searchdata.Record {
	rec := searchdata.NewRecord(mapping.Category, lookupString(row, mapping.IdentityKeys))

	rec.Clicks = toFloat(lookup(row, clicksKeys))
	rec.Impressions = toFloat(lookup(row, impressionsKeys))
	rec.Position = toFloat(lookup(row, positionKeys))
	rec.CTR = parseCTR(lookup(row, ctrKeys), mapping.CTRAsPercent)
	rec.Date = lookupString(row, dateKeys)

	return rec
}

func lookup(row Row, keys []string) interface{} {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func lookupString(row Row, keys []string) string {
	return toString(lookup(row, keys))
}

// parseCTR returns CTR as a fraction. A value written with "%" is always on
// the 0-100 scale; a bare number is only when percent is set.
func parseCTR(v interface{}, percent bool) float64 {
	hadPercent := false
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if strings.HasSuffix(s, "%") {
			hadPercent = true
			s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		}
		v = s
	}

	ctr := toFloat(v)
	if percent || hadPercent {
		ctr /= 100
	}
	return ctr
}

// toFloat coerces a cell value to a finite number, 0 on failure
func toFloat(v interface{}) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		f = parseNumber(t)
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Exports format large counts with a thousands separator
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return f
	}
	return 0
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
