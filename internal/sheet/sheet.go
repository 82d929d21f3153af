// Package sheet persists profiles to a five-table spreadsheet workbook. The
// workbook is merged and rewritten once per batch: rows for re-ingested
// profiles are replaced, everything else is carried over, and the file on
// disk is swapped atomically.
package sheet

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/profile-cli/internal/identity"
	"github.com/sells-group/profile-cli/internal/model"
)

const (
	sheetProfiles       = "Profiles"
	sheetEducations     = "Educations"
	sheetExperiences    = "Experiences"
	sheetClubs          = "Club Experiences"
	sheetCertifications = "Certifications"
)

var profileHeader = []string{
	"profile_id", "profile_url", "profile_pic_url", "full_name", "headline",
	"summary", "country", "city", "email", "contact_number", "github",
	"twitter", "facebook", "skills", "connections", "languages",
	"follower_count", "industry", "fortune500", "leadership_role",
	"entrepreneur", "batch", "program", "gender", "admission_year",
	"graduation_year",
}

var educationHeader = []string{
	"profile_id", "institution_name", "degree", "field_of_study",
	"start_date", "end_date",
}

var experienceHeader = []string{
	"profile_id", "title", "company", "location", "description",
	"start_date", "end_date",
}

var clubHeader = []string{
	"profile_id", "club_name", "role", "description", "start_date",
	"end_date", "location", "position",
}

var certificationHeader = []string{
	"profile_id", "name", "issuing_organization", "issue_date",
	"expiration_date", "credential_id", "credential_url",
}

// Sink writes the workbook at a fixed path.
type Sink struct {
	path string
}

// New creates a sink for the given workbook path. The file need not exist
// yet; the first merge creates it.
func New(path string) *Sink {
	return &Sink{path: path}
}

// Path returns the workbook path.
func (s *Sink) Path() string {
	return s.path
}

// workbook holds the raw row data of all five tables, headers excluded.
type workbook struct {
	profiles       [][]string
	educations     [][]string
	experiences    [][]string
	clubs          [][]string
	certifications [][]string
}

// Merge replaces the rows of every bundle's profile in the workbook and
// appends the new data. When a profile URL already appears in the workbook,
// its profile row and all child rows under its old profile ID are dropped
// first. The workbook file is replaced atomically.
func (s *Sink) Merge(bundles []*model.Bundle) error {
	if len(bundles) == 0 {
		return nil
	}

	wb, err := s.load()
	if err != nil {
		return err
	}

	replaced := wb.drop(bundles)
	wb.append(bundles)

	if err := s.write(wb); err != nil {
		return err
	}

	zap.L().Info("spreadsheet merged",
		zap.String("path", s.path),
		zap.Int("appended", len(bundles)),
		zap.Int("replaced", replaced))
	return nil
}

// load reads the current workbook. A missing file or a missing sheet yields
// empty tables.
func (s *Sink) load() (*workbook, error) {
	wb := &workbook{}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return wb, nil
	}

	f, err := xlsx.OpenFile(s.path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open workbook")
	}

	wb.profiles = tableRows(f, sheetProfiles)
	wb.educations = tableRows(f, sheetEducations)
	wb.experiences = tableRows(f, sheetExperiences)
	wb.clubs = tableRows(f, sheetClubs)
	wb.certifications = tableRows(f, sheetCertifications)
	return wb, nil
}

// drop removes the rows belonging to profiles about to be rewritten and
// returns how many profile rows were dropped. Child rows are matched by the
// profile ID the dropped profile row carried, so a re-ingest under a new ID
// still clears the old children.
func (wb *workbook) drop(bundles []*model.Bundle) int {
	urls := make(map[string]struct{}, len(bundles))
	for _, b := range bundles {
		urls[identity.CanonicalURL(b.Profile.ProfileURL)] = struct{}{}
	}

	oldIDs := make(map[string]struct{})
	kept := wb.profiles[:0]
	dropped := 0
	for _, row := range wb.profiles {
		url := identity.CanonicalURL(columnValue(row, profileHeader, "profile_url"))
		if _, gone := urls[url]; gone {
			oldIDs[columnValue(row, profileHeader, "profile_id")] = struct{}{}
			dropped++
			continue
		}
		kept = append(kept, row)
	}
	wb.profiles = kept

	// New IDs for the same profiles are dropped too; the batch re-appends
	// the fresh child rows right after.
	for _, b := range bundles {
		oldIDs[strconv.FormatInt(b.Profile.ProfileID, 10)] = struct{}{}
	}

	wb.educations = dropChildren(wb.educations, oldIDs)
	wb.experiences = dropChildren(wb.experiences, oldIDs)
	wb.clubs = dropChildren(wb.clubs, oldIDs)
	wb.certifications = dropChildren(wb.certifications, oldIDs)
	return dropped
}

func dropChildren(rows [][]string, ids map[string]struct{}) [][]string {
	kept := rows[:0]
	for _, row := range rows {
		if len(row) > 0 {
			if _, gone := ids[strings.TrimSpace(row[0])]; gone {
				continue
			}
		}
		kept = append(kept, row)
	}
	return kept
}

func (wb *workbook) append(bundles []*model.Bundle) {
	for _, b := range bundles {
		wb.profiles = append(wb.profiles, profileRow(&b.Profile))

		id := strconv.FormatInt(b.Profile.ProfileID, 10)
		for _, e := range b.Educations {
			wb.educations = append(wb.educations, []string{
				id, e.InstitutionName, e.Degree, e.FieldOfStudy, e.StartDate, e.EndDate,
			})
		}
		for _, e := range b.Experiences {
			wb.experiences = append(wb.experiences, []string{
				id, e.Title, e.Company, e.Location, e.Description, e.StartDate, e.EndDate,
			})
		}
		for _, c := range b.ClubExperiences {
			wb.clubs = append(wb.clubs, []string{
				id, c.ClubName, c.Role, c.Description, c.StartDate, c.EndDate, c.Location, c.Position,
			})
		}
		for _, c := range b.Certifications {
			wb.certifications = append(wb.certifications, []string{
				id, c.Name, c.IssuingOrg, c.IssueDate, c.ExpirationDate, c.CredentialID, c.CredentialURL,
			})
		}
	}
}

func profileRow(p *model.Profile) []string {
	return []string{
		strconv.FormatInt(p.ProfileID, 10),
		p.ProfileURL,
		p.ProfilePicURL,
		p.FullName,
		p.Headline,
		p.Summary,
		p.Country,
		p.City,
		p.Email,
		p.ContactNumber,
		p.GitHub,
		p.Twitter,
		p.Facebook,
		p.Skills,
		strconv.FormatInt(p.Connections, 10),
		p.Languages,
		strconv.FormatInt(p.FollowerCount, 10),
		p.Industry,
		strconv.FormatBool(p.Fortune500),
		strconv.FormatBool(p.LeadershipRole),
		strconv.FormatBool(p.Entrepreneur),
		p.Roster.Batch,
		p.Roster.Program,
		p.Roster.Gender,
		p.Roster.AdmissionYear,
		p.Roster.GraduationYear,
	}
}

// write saves the workbook next to the target path and renames it into
// place, so a crash mid-write never truncates the previous file.
func (s *Sink) write(wb *workbook) error {
	f := xlsx.NewFile()

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{sheetProfiles, profileHeader, wb.profiles},
		{sheetEducations, educationHeader, wb.educations},
		{sheetExperiences, experienceHeader, wb.experiences},
		{sheetClubs, clubHeader, wb.clubs},
		{sheetCertifications, certificationHeader, wb.certifications},
	}
	for _, tb := range tables {
		sh, err := f.AddSheet(tb.name)
		if err != nil {
			return eris.Wrapf(err, "sheet: add sheet %q", tb.name)
		}
		writeRow(sh, tb.header)
		for _, row := range tb.rows {
			writeRow(sh, row)
		}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".profiles-*.xlsx")
	if err != nil {
		return eris.Wrap(err, "sheet: create temp file")
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "sheet: close temp file")
	}

	if err := f.Save(tmpPath); err != nil {
		os.Remove(tmpPath)
		return eris.Wrap(err, "sheet: write workbook")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return eris.Wrap(err, "sheet: replace workbook")
	}
	return nil
}

func writeRow(sh *xlsx.Sheet, values []string) {
	row := sh.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// tableRows returns a sheet's rows minus the header. A missing sheet is an
// empty table.
func tableRows(f *xlsx.File, name string) [][]string {
	sh, ok := f.Sheet[name]
	if !ok {
		return nil
	}
	var rows [][]string
	for i, row := range sh.Rows {
		if i == 0 {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows
}

// columnValue reads a cell by header position, tolerating short rows.
func columnValue(row, header []string, name string) string {
	for i, h := range header {
		if h == name {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
	}
	return ""
}
