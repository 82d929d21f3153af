package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createRosterXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	err := f.Save(path)
	require.NoError(t, err)
	return path
}

func TestLoad_Basic(t *testing.T) {
	path := createRosterXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Full Name", "Linkedin Profile", "Batch", "Programme", "Gender", "Passing Year", "Admission Year"},
			{"Jane Doe", "https://www.linkedin.com/in/jane-doe", "B12", "MBA", "F", "2014", "2012"},
			{"John Smith", "https://www.linkedin.com/in/john-smith", "B12", "MBA", "M", "2014", "2012"},
		},
	})

	entries, skipped, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, entries, 2)

	assert.Equal(t, "Jane Doe", entries[0].FullName)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", entries[0].ProfileURL)
	assert.Equal(t, "B12", entries[0].Roster.Batch)
	assert.Equal(t, "MBA", entries[0].Roster.Program)
	assert.Equal(t, "F", entries[0].Roster.Gender)
	assert.Equal(t, "2012", entries[0].Roster.AdmissionYear)
	assert.Equal(t, "2014", entries[0].Roster.GraduationYear)
}

func TestLoad_SkipsUnusableURLs(t *testing.T) {
	path := createRosterXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Full Name", "Linkedin Profile"},
			{"Jane Doe", "https://www.linkedin.com/in/jane-doe"},
			{"No URL", ""},
			{"Search Hit", "https://www.linkedin.com/search/results/people/?keywords=foo"},
			{"John Smith", "https://www.linkedin.com/in/john-smith"},
		},
	})

	entries, skipped, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, "Jane Doe", entries[0].FullName)
	assert.Equal(t, "John Smith", entries[1].FullName)
}

func TestLoad_BlankRowsNotCountedAsSkipped(t *testing.T) {
	path := createRosterXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Full Name", "Linkedin Profile"},
			{"", ""},
			{"Jane Doe", "https://www.linkedin.com/in/jane-doe"},
		},
	})

	entries, skipped, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, entries, 1)
}

func TestLoad_Limit(t *testing.T) {
	path := createRosterXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Full Name", "Linkedin Profile"},
			{"A", "https://www.linkedin.com/in/a"},
			{"B", "https://www.linkedin.com/in/b"},
			{"C", "https://www.linkedin.com/in/c"},
		},
	})

	entries, _, err := Load(path, Options{Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].FullName)
	assert.Equal(t, "B", entries[1].FullName)
}

func TestLoad_OptionalColumnsAbsent(t *testing.T) {
	path := createRosterXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Linkedin Profile"},
			{"https://www.linkedin.com/in/jane-doe"},
		},
	})

	entries, _, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].FullName)
	assert.Empty(t, entries[0].Roster.Batch)
}

func TestLoad_MissingURLColumn(t *testing.T) {
	path := createRosterXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Full Name", "Email"},
			{"Jane Doe", "jane@example.com"},
		},
	})

	_, _, err := Load(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestLoad_SheetName(t *testing.T) {
	path := createRosterXLSX(t, map[string][][]string{
		"Notes": {{"scratch"}},
		"Alumni": {
			{"Full Name", "Linkedin Profile"},
			{"Jane Doe", "https://www.linkedin.com/in/jane-doe"},
		},
	})

	entries, _, err := Load(path, Options{SheetName: "Alumni"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.xlsx"), Options{})
	require.Error(t, err)
}

func createRosterCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_CSVPlainURLList(t *testing.T) {
	path := createRosterCSV(t, strings.Join([]string{
		"https://www.linkedin.com/in/jane-doe",
		"https://www.linkedin.com/search/results/people/?keywords=foo",
		"https://www.linkedin.com/in/john-smith",
	}, "\n"))

	entries, skipped, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", entries[0].ProfileURL)
	assert.Empty(t, entries[0].FullName)
	assert.Equal(t, "https://www.linkedin.com/in/john-smith", entries[1].ProfileURL)
}

func TestLoad_CSVHeadered(t *testing.T) {
	path := createRosterCSV(t, strings.Join([]string{
		"Full Name,Linkedin Profile,Batch",
		"Jane Doe,https://www.linkedin.com/in/jane-doe,B12",
		"No URL,,B12",
	}, "\n"))

	entries, skipped, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, entries, 1)
	assert.Equal(t, "Jane Doe", entries[0].FullName)
	assert.Equal(t, "B12", entries[0].Roster.Batch)
}

func TestLoad_CSVLimit(t *testing.T) {
	path := createRosterCSV(t, strings.Join([]string{
		"https://www.linkedin.com/in/a",
		"https://www.linkedin.com/in/b",
		"https://www.linkedin.com/in/c",
	}, "\n"))

	entries, _, err := Load(path, Options{Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestUsableURL(t *testing.T) {
	assert.True(t, UsableURL("https://www.linkedin.com/in/jane-doe"))
	assert.False(t, UsableURL(""))
	assert.False(t, UsableURL("https://www.linkedin.com/search/results/people/?keywords=foo"))
}
