// Package roster reads the input roster listing the profile URLs to ingest,
// together with optional cohort metadata carried through to the spreadsheet
// sink. Rosters are xlsx workbooks or csv files, chosen by file extension.
package roster

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/profile-cli/internal/model"
)

// Recognized header names, compared case-insensitively after trimming.
const (
	colProfileURL    = "linkedin profile"
	colFullName      = "full name"
	colBatch         = "batch"
	colProgram       = "programme"
	colGender        = "gender"
	colPassingYear   = "passing year"
	colAdmissionYear = "admission year"
)

// Entry is one usable roster row.
type Entry struct {
	ProfileURL string
	FullName   string
	Roster     model.RosterMeta
}

// Options configures roster loading. The sheet options only apply to xlsx
// rosters.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	Limit      int    // if > 0, stop after this many usable entries
}

// Load reads a roster file and returns its usable entries in file order,
// together with the number of rows skipped. Rows without a personal profile
// URL are skipped: search-result URLs cannot be fetched, only /in/ profile
// URLs can. A .csv roster may carry the same header row as an xlsx roster,
// or be a plain list with the URL in the first field.
func Load(path string, opts Options) ([]Entry, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSV(path, opts)
	}
	return loadXLSX(path, opts)
}

func loadXLSX(path string, opts Options) ([]Entry, int, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "roster: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, 0, err
	}
	if len(sheet.Rows) == 0 {
		return nil, 0, eris.New("roster: empty sheet")
	}

	records := make([][]string, len(sheet.Rows))
	for i, row := range sheet.Rows {
		records[i] = rowToStrings(row)
	}

	cols := headerIndex(records[0])
	urlCol, ok := cols[colProfileURL]
	if !ok {
		return nil, 0, eris.Errorf("roster: missing %q column", colProfileURL)
	}

	entries, skipped := parseRecords(records[1:], cols, urlCol, path, opts)
	return entries, skipped, nil
}

func loadCSV(path string, opts Options) ([]Entry, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "roster: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, 0, eris.Wrap(err, "roster: read csv")
	}
	if len(records) == 0 {
		return nil, 0, eris.New("roster: empty file")
	}

	cols := headerIndex(records[0])
	urlCol, headered := cols[colProfileURL]
	if !headered {
		// Plain URL list: every record's first field is the URL.
		cols = map[string]int{}
		urlCol = 0
	} else {
		records = records[1:]
	}

	entries, skipped := parseRecords(records, cols, urlCol, path, opts)
	return entries, skipped, nil
}

// parseRecords walks data records and collects usable entries. Optional
// columns absent from cols resolve to the empty string.
func parseRecords(records [][]string, cols map[string]int, urlCol int, path string, opts Options) ([]Entry, int) {
	log := zap.L().With(zap.String("path", path))

	var entries []Entry
	skipped := 0
	for i, rec := range records {
		if opts.Limit > 0 && len(entries) >= opts.Limit {
			break
		}

		url := strings.TrimSpace(fieldAt(rec, urlCol))
		if !UsableURL(url) {
			if !emptyRecord(rec) {
				skipped++
				log.Debug("skipping roster row without usable profile URL",
					zap.Int("row", i+2), zap.String("url", url))
			}
			continue
		}

		entries = append(entries, Entry{
			ProfileURL: url,
			FullName:   strings.TrimSpace(fieldAt(rec, lookup(cols, colFullName))),
			Roster: model.RosterMeta{
				Batch:          strings.TrimSpace(fieldAt(rec, lookup(cols, colBatch))),
				Program:        strings.TrimSpace(fieldAt(rec, lookup(cols, colProgram))),
				Gender:         strings.TrimSpace(fieldAt(rec, lookup(cols, colGender))),
				AdmissionYear:  strings.TrimSpace(fieldAt(rec, lookup(cols, colAdmissionYear))),
				GraduationYear: strings.TrimSpace(fieldAt(rec, lookup(cols, colPassingYear))),
			},
		})
	}

	return entries, skipped
}

// UsableURL reports whether a roster URL points at a personal profile.
func UsableURL(url string) bool {
	return url != "" && strings.Contains(url, "/in/")
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("roster: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("roster: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		out[j] = cell.String()
	}
	return out
}

// headerIndex maps normalized header names to column positions. Unrecognized
// headers are kept too so optional columns resolve by the same lookup.
func headerIndex(record []string) map[string]int {
	cols := make(map[string]int, len(record))
	for j, field := range record {
		name := strings.ToLower(strings.TrimSpace(field))
		if name == "" {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = j
		}
	}
	return cols
}

// lookup resolves an optional column, returning -1 when the header is absent.
func lookup(cols map[string]int, name string) int {
	col, ok := cols[name]
	if !ok {
		return -1
	}
	return col
}

// fieldAt returns the value at a column, tolerating short records and absent
// optional columns.
func fieldAt(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return record[col]
}

func emptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
