package excel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"seodash/domain/core"
	"seodash/domain/searchdata"
	"seodash/internal"
	"seodash/ports"
)

// Ingestor turns an uploaded export into normalized records
type Ingestor struct {
	config   ExcelConfig
	notifier ports.Notifier
	logger   *internal.Logger
}

// NewIngestor creates a new ingestor. A nil notifier disables notifications.
func NewIngestor(config ExcelConfig, notifier ports.Notifier, logger *internal.Logger) *Ingestor {
	if len(config.Mappings) == 0 {
		config.Mappings = DefaultMappings()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Ingestor{
		config:   config,
		notifier: notifier,
		logger:   logger.WithComponent("Ingestor"),
	}
}

// Ingest reads the whole upload, decodes it and normalizes every recognized
// sheet. It fails with core.ErrDecodeFailed when the content is not a
// workbook and core.ErrNoValidData when no recognized sheet has rows.
func (i *Ingestor) Ingest(ctx context.Context, upload Upload) ([]searchdata.Record, error) {
	records, err := i.ingest(upload)
	if err != nil {
		i.logger.Error("Ingestion of %s failed: %v", upload.Filename, err)
		i.notify(ctx, ports.NotificationError, failureMessage(err))
		return nil, err
	}

	i.notify(ctx, ports.NotificationSuccess, fmt.Sprintf("Successfully imported %d records", len(records)))
	return records, nil
}

func (i *Ingestor) ingest(upload Upload) ([]searchdata.Record, error) {
	startTime := time.Now()

	content, err := i.readAll(upload)
	if err != nil {
		return nil, core.NewDecodeError(upload.Filename, err)
	}

	workbook, err := DecodeWorkbook(upload.Filename, content)
	if err != nil {
		return nil, core.NewDecodeError(upload.Filename, err)
	}
	defer workbook.Close()

	fingerprint := core.NewHash(content)
	sheetNames := workbook.SheetNames()
	i.logger.Debug("Decoded %s (%d bytes, %s) with sheets %v", upload.Filename, len(content), fingerprint.Short(), sheetNames)

	var records []searchdata.Record
	for _, mapping := range i.config.Mappings {
		sheetName, ok := LocateSheet(sheetNames, mapping.SheetName)
		if !ok {
			i.logger.Trace("No sheet for %s, skipping", mapping.SheetName)
			continue
		}

		sheet, err := workbook.ReadSheet(sheetName)
		if err != nil {
			return nil, core.NewDecodeError(upload.Filename, err)
		}

		for _, row := range sheet.Rows {
			records = append(records, NormalizeWith(row, mapping))
		}
		i.logger.Debug("Sheet %s: %d rows as %s", sheetName, len(sheet.Rows), mapping.Category)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w in %s", core.ErrNoValidData, upload.Filename)
	}

	i.logger.Info("Ingested %d records from %s in %.2fms", len(records), upload.Filename, float64(time.Since(startTime).Nanoseconds())/1e6)
	return records, nil
}

// readAll reads the upload in one pass, bounded by MaxUploadBytes
func (i *Ingestor) readAll(upload Upload) ([]byte, error) {
	if upload.Content == nil {
		return nil, fmt.Errorf("no content")
	}

	reader := upload.Content
	limit := i.config.MaxUploadBytes
	if limit > 0 {
		reader = io.LimitReader(upload.Content, limit+1)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if limit > 0 && int64(len(content)) > limit {
		return nil, fmt.Errorf("file exceeds the %.0fMB limit", float64(limit)/(1024*1024))
	}
	return content, nil
}

func (i *Ingestor) notify(ctx context.Context, level ports.NotificationLevel, message string) {
	if i.notifier == nil {
		return
	}
	i.notifier.Notify(ctx, level, message)
}

func failureMessage(err error) string {
	if errors.Is(err, core.ErrNoValidData) {
		return "No valid data found in the uploaded file"
	}
	return "Failed to parse the uploaded file"
}
