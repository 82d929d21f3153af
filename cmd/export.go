package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/profile-cli/internal/model"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump all relational tables to xlsx, csv and sql files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		ds, err := st.GetAllTables(ctx)
		if err != nil {
			return err
		}

		baseDir := exportDir
		if baseDir == "" {
			baseDir = cfg.Export.Dir
		}
		dir := filepath.Join(baseDir, "export_"+time.Now().UTC().Format("20060102_150405"))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "export: create directory")
		}

		g, _ := errgroup.WithContext(ctx)
		for _, tb := range exportTables(ds) {
			tb := tb
			g.Go(func() error {
				return writeTable(dir, tb)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("dir", dir),
			zap.Int("profiles", len(ds.Profiles)))
		fmt.Println(dir)
		return nil
	},
}

// exportTable is one relational table rendered to strings.
type exportTable struct {
	name   string
	header []string
	rows   [][]string
}

func exportTables(ds *model.Dataset) []exportTable {
	tables := []exportTable{
		{
			name: "profiles",
			header: []string{
				"profile_id", "profile_url", "profile_pic_url", "full_name",
				"headline", "summary", "country", "city", "email",
				"contact_number", "github", "twitter", "facebook", "skills",
				"connections", "languages", "follower_count", "industry",
				"fortune500", "leadership_role", "entrepreneur",
			},
		},
		{
			name:   "educations",
			header: []string{"profile_id", "institution_name", "degree", "field_of_study", "start_date", "end_date"},
		},
		{
			name:   "experiences",
			header: []string{"profile_id", "title", "company", "location", "description", "start_date", "end_date"},
		},
		{
			name:   "club_experiences",
			header: []string{"profile_id", "club_name", "role", "description", "start_date", "end_date", "location", "position"},
		},
		{
			name:   "certifications",
			header: []string{"profile_id", "name", "issuing_organization", "issue_date", "expiration_date", "credential_id", "credential_url"},
		},
	}

	for _, p := range ds.Profiles {
		tables[0].rows = append(tables[0].rows, []string{
			strconv.FormatInt(p.ProfileID, 10), p.ProfileURL, p.ProfilePicURL,
			p.FullName, p.Headline, p.Summary, p.Country, p.City, p.Email,
			p.ContactNumber, p.GitHub, p.Twitter, p.Facebook, p.Skills,
			strconv.FormatInt(p.Connections, 10), p.Languages,
			strconv.FormatInt(p.FollowerCount, 10), p.Industry,
			strconv.FormatBool(p.Fortune500), strconv.FormatBool(p.LeadershipRole),
			strconv.FormatBool(p.Entrepreneur),
		})
	}
	for _, e := range ds.Educations {
		tables[1].rows = append(tables[1].rows, []string{
			strconv.FormatInt(e.ProfileID, 10), e.InstitutionName, e.Degree,
			e.FieldOfStudy, e.StartDate, e.EndDate,
		})
	}
	for _, e := range ds.Experiences {
		tables[2].rows = append(tables[2].rows, []string{
			strconv.FormatInt(e.ProfileID, 10), e.Title, e.Company,
			e.Location, e.Description, e.StartDate, e.EndDate,
		})
	}
	for _, c := range ds.ClubExperiences {
		tables[3].rows = append(tables[3].rows, []string{
			strconv.FormatInt(c.ProfileID, 10), c.ClubName, c.Role,
			c.Description, c.StartDate, c.EndDate, c.Location, c.Position,
		})
	}
	for _, c := range ds.Certifications {
		tables[4].rows = append(tables[4].rows, []string{
			strconv.FormatInt(c.ProfileID, 10), c.Name, c.IssuingOrg,
			c.IssueDate, c.ExpirationDate, c.CredentialID, c.CredentialURL,
		})
	}
	return tables
}

func writeTable(dir string, tb exportTable) error {
	if err := writeXLSX(filepath.Join(dir, tb.name+".xlsx"), tb); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, tb.name+".csv"), tb); err != nil {
		return err
	}
	return writeSQL(filepath.Join(dir, tb.name+".sql"), tb)
}

func writeXLSX(path string, tb exportTable) error {
	f := xlsx.NewFile()
	sh, err := f.AddSheet(tb.name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", tb.name)
	}
	addRow := func(values []string) {
		row := sh.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	addRow(tb.header)
	for _, row := range tb.rows {
		addRow(row)
	}
	return eris.Wrapf(f.Save(path), "export: write %s", path)
}

func writeCSV(path string, tb exportTable) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tb.header); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	if err := w.WriteAll(tb.rows); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "export: flush %s", path)
}

func writeSQL(path string, tb exportTable) error {
	var sb strings.Builder
	for _, row := range tb.rows {
		sb.WriteString(insertStatement(tb.name, tb.header, row))
		sb.WriteByte('\n')
	}
	return eris.Wrapf(os.WriteFile(path, []byte(sb.String()), 0o644), "export: write %s", path)
}

// insertStatement renders one INSERT with all values quoted as SQL string
// literals. The dumps are meant for re-import and inspection, not as a typed
// schema migration.
func insertStatement(table string, header, row []string) string {
	values := make([]string, len(row))
	for i, v := range row {
		values[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		table, strings.Join(header, ", "), strings.Join(values, ", "))
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "export base directory (default: config export.dir)")
	rootCmd.AddCommand(exportCmd)
}
