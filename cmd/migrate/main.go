package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"seodash/domain/searchdata"
	"seodash/internal/config"
	"seodash/internal/container"
)

// Imports a record array exported from the browser dashboard's local storage
// (the "searchConsoleData" value) into the configured mirror.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <exported_json_file>")
	}
	path := os.Args[1]

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	records, skipped, err := decodeRecords(content)
	if err != nil {
		log.Fatalf("Failed to decode %s: %v", path, err)
	}
	log.Printf("Decoded %d records from %s (%d skipped)", len(records), path, skipped)

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer appContainer.Shutdown(ctx)

	if appContainer.Mirror == nil {
		log.Fatal("MIRROR_DRIVER is none, nothing to migrate into")
	}
	if err := appContainer.Store.SetRecords(ctx, records); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Printf("Migration complete: %d records stored in the %s mirror", len(records), appConfig.Mirror.Driver)
}

// legacyRecord is the flat layout where the identity sits in whichever field
// is present and ctr is a percentage
type legacyRecord struct {
	Query            *string `json:"query"`
	Page             *string `json:"page"`
	Country          *string `json:"country"`
	Device           *string `json:"device"`
	SearchAppearance *string `json:"searchAppearance"`
	Clicks           float64 `json:"clicks"`
	Impressions      float64 `json:"impressions"`
	CTR              float64 `json:"ctr"`
	Position         float64 `json:"position"`
	Date             string  `json:"date"`
}

// decodeRecords accepts both the tagged layout and the legacy flat layout.
// Elements with no identity at all are skipped.
func decodeRecords(content []byte) ([]searchdata.Record, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, 0, fmt.Errorf("expected a JSON array: %w", err)
	}

	records := make([]searchdata.Record, 0, len(raw))
	skipped := 0
	for i, element := range raw {
		var probe struct {
			Category *string `json:"category"`
		}
		if err := json.Unmarshal(element, &probe); err != nil {
			return nil, 0, fmt.Errorf("element %d: %w", i, err)
		}

		if probe.Category != nil {
			var rec searchdata.Record
			if err := json.Unmarshal(element, &rec); err != nil {
				return nil, 0, fmt.Errorf("element %d: %w", i, err)
			}
			records = append(records, rec)
			continue
		}

		var legacy legacyRecord
		if err := json.Unmarshal(element, &legacy); err != nil {
			return nil, 0, fmt.Errorf("element %d: %w", i, err)
		}
		rec, ok := legacy.toRecord()
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func (l legacyRecord) toRecord() (searchdata.Record, bool) {
	identities := []struct {
		category searchdata.Category
		value    *string
	}{
		{searchdata.CategoryQuery, l.Query},
		{searchdata.CategoryPage, l.Page},
		{searchdata.CategoryCountry, l.Country},
		{searchdata.CategoryDevice, l.Device},
		{searchdata.CategorySearchAppearance, l.SearchAppearance},
	}

	// A non-empty identity wins; a blank one only when there is no date either
	var rec searchdata.Record
	var blank *searchdata.Category
	found := false
	for _, id := range identities {
		if id.value == nil {
			continue
		}
		if strings.TrimSpace(*id.value) != "" {
			rec = searchdata.NewRecord(id.category, *id.value)
			found = true
			break
		}
		if blank == nil {
			category := id.category
			blank = &category
		}
	}
	if !found {
		switch {
		case l.Date != "":
			rec = searchdata.NewRecord(searchdata.CategoryDate, l.Date)
		case blank != nil:
			rec = searchdata.NewRecord(*blank, "")
		default:
			return rec, false
		}
	}

	rec.Clicks = l.Clicks
	rec.Impressions = l.Impressions
	rec.CTR = l.CTR
	if rec.CTR > 1 {
		rec.CTR /= 100
	}
	rec.Position = l.Position
	rec.Date = l.Date
	return rec, true
}
