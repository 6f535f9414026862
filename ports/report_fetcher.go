package ports

import (
	"context"

	"seodash/domain/searchdata"
)

// Site is a search console property the user can read
type Site struct {
	SiteURL         string `json:"siteUrl"`
	PermissionLevel string `json:"permissionLevel"`
}

// ReportRequest selects the rows to fetch from the search analytics API
type ReportRequest struct {
	SiteURL   string              `json:"site_url"`
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Category  searchdata.Category `json:"category"`
	RowLimit  int                 `json:"row_limit"`
}

// ReportFetcher fetches already-normalized records from the live API
type ReportFetcher interface {
	ListSites(ctx context.Context) ([]Site, error)
	FetchReport(ctx context.Context, req ReportRequest) ([]searchdata.Record, error)
}
