package excel

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// Workbook is a decoded spreadsheet: named sheets of header-keyed rows
type Workbook interface {
	SheetNames() []string
	ReadSheet(name string) (*SheetData, error)
	Close() error
}

// maxArchiveBytes caps the uncompressed size of a csv export archive
const maxArchiveBytes = 256 << 20

// DecodeWorkbook decodes raw content as an xlsx workbook, a zip of csv files
// or a single csv file. The content type is sniffed; the filename only names
// the single sheet of a csv file.
func DecodeWorkbook(filename string, content []byte) (Workbook, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	mtype := mimetype.Detect(content)
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case isKind(mtype, "application/zip"):
		return openArchive(content)
	case ext == ".xlsx" || ext == ".xlsm":
		return nil, fmt.Errorf("expected an xlsx archive, got %s", mtype.String())
	case isKind(mtype, "text/plain"):
		return openCSV(filename, content)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", mtype.String())
	}
}

// isKind reports whether mtype is expected or descends from it
func isKind(mtype *mimetype.MIME, expected string) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(expected) {
			return true
		}
	}
	return false
}

type xlsxWorkbook struct {
	file *excelize.File
}

func openXLSX(content []byte) (*xlsxWorkbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	return &xlsxWorkbook{file: f}, nil
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *xlsxWorkbook) ReadSheet(name string) (*SheetData, error) {
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	return processRows(name, rows), nil
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}

// openArchive opens a zip as an xlsx workbook when it carries one, otherwise
// as a csv export with one sheet per csv entry
func openArchive(content []byte) (Workbook, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	var entries []*zip.File
	for _, entry := range archive.File {
		if entry.Name == "xl/workbook.xml" {
			workbook, err := openXLSX(content)
			if err != nil {
				return nil, err
			}
			return workbook, nil
		}
		if !entry.FileInfo().IsDir() && strings.EqualFold(path.Ext(entry.Name), ".csv") {
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("archive holds neither a workbook nor csv files")
	}

	workbook := &csvWorkbook{sheets: make(map[string][][]string, len(entries))}
	budget := int64(maxArchiveBytes)
	for _, entry := range entries {
		data, err := readEntry(entry, budget)
		if err != nil {
			return nil, err
		}
		budget -= int64(len(data))

		rows, err := parseCSV(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name, err)
		}
		workbook.add(csvSheetName(entry.Name), rows)
	}
	return workbook, nil
}

func readEntry(entry *zip.File, budget int64) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, budget+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", entry.Name, err)
	}
	if int64(len(data)) > budget {
		return nil, fmt.Errorf("archive expands beyond %dMB", maxArchiveBytes>>20)
	}
	return data, nil
}

// csvWorkbook holds csv sheets named after their files
type csvWorkbook struct {
	names  []string
	sheets map[string][][]string
}

func openCSV(filename string, content []byte) (*csvWorkbook, error) {
	rows, err := parseCSV(content)
	if err != nil {
		return nil, err
	}

	workbook := &csvWorkbook{sheets: make(map[string][][]string, 1)}
	workbook.add(csvSheetName(filename), rows)
	return workbook, nil
}

func parseCSV(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content: %w", err)
	}
	return rows, nil
}

// add registers a sheet; a repeated name keeps the first one
func (w *csvWorkbook) add(name string, rows [][]string) {
	if _, ok := w.sheets[name]; ok {
		return
	}
	w.names = append(w.names, name)
	w.sheets[name] = rows
}

// csvSheetName derives the sheet name from the file name, so an export
// archive's Queries.csv is read as the Queries sheet
func csvSheetName(filename string) string {
	base := path.Base(filepath.ToSlash(filename))
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "" || name == "." || name == "/" {
		return "Sheet1"
	}
	return name
}

func (w *csvWorkbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

func (w *csvWorkbook) ReadSheet(name string) (*SheetData, error) {
	rows, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet %s does not exist", name)
	}
	return processRows(name, rows), nil
}

func (w *csvWorkbook) Close() error {
	return nil
}

// processRows converts a raw grid into header-keyed rows. The first row is
// the header; blank cells are left out and fully blank rows are skipped.
func processRows(name string, rows [][]string) *SheetData {
	data := &SheetData{Name: name}
	if len(rows) == 0 {
		return data
	}

	headerRow := rows[0]
	data.Headers = make([]string, len(headerRow))
	for i, header := range headerRow {
		data.Headers[i] = strings.TrimSpace(header)
	}

	for _, raw := range rows[1:] {
		row := make(Row)
		for j, cell := range raw {
			if j >= len(data.Headers) || data.Headers[j] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			row[data.Headers[j]] = value
		}
		if len(row) == 0 {
			continue
		}
		data.Rows = append(data.Rows, row)
	}

	return data
}
