// Package normalize converts raw provider records into canonical typed
// profiles and partitions work history into employment vs club/association
// experience.
package normalize

import (
	"fmt"
	"strings"

	"github.com/sells-group/profile-cli/internal/model"
	"github.com/sells-group/profile-cli/pkg/proxycurl"
)

// clubKeywords marks an experience entry as club/association when any of them
// appears, case-insensitively, in the organization name or the title. The test
// runs once per entry at normalization time; the result is final.
var clubKeywords = []string{"club", "society", "association", "committee", "chapter"}

// listSeparator flattens list-valued provider fields for the flat sinks.
// One-way: the reverse split is out of scope.
const listSeparator = ", "

// Meta carries ingestion metadata assigned outside the raw record.
type Meta struct {
	ProfileID int64
	SourceURL string
	Roster    model.RosterMeta
}

// FormatPeriod renders a provider date as MM/YYYY. A nil date means the
// engagement is ongoing and renders as "Present"; a date with a missing month
// or year renders as "N/A". The distinction is load-bearing for downstream
// consumers.
func FormatPeriod(d *proxycurl.Date) string {
	if d == nil {
		return "Present"
	}
	if d.Month == 0 || d.Year == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%02d/%04d", d.Month, d.Year)
}

// IsClubEntry reports whether an experience belongs in the club/association
// collection rather than employment history.
func IsClubEntry(company, title string) bool {
	companyLower := strings.ToLower(company)
	titleLower := strings.ToLower(title)
	for _, kw := range clubKeywords {
		if strings.Contains(companyLower, kw) || strings.Contains(titleLower, kw) {
			return true
		}
	}
	return false
}

// JoinList flattens a list-valued field into a single delimited string.
func JoinList(items []string) string {
	trimmed := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	return strings.Join(trimmed, listSeparator)
}

// Normalize converts a raw provider record plus ingestion metadata into a
// canonical bundle. Missing scalars default to empty string / zero, never
// null, so both sinks stay schema-stable.
func Normalize(raw *proxycurl.Person, meta Meta) *model.Bundle {
	b := &model.Bundle{
		Profile: model.Profile{
			ProfileID:     meta.ProfileID,
			ProfileURL:    strings.TrimSpace(meta.SourceURL),
			ProfilePicURL: strings.TrimSpace(raw.ProfilePicURL),
			FullName:      strings.TrimSpace(raw.FullName),
			Headline:      strings.TrimSpace(raw.Headline),
			Summary:       strings.TrimSpace(raw.Summary),
			Country:       strings.TrimSpace(raw.CountryFullName),
			City:          strings.TrimSpace(raw.City),
			Email:         strings.TrimSpace(raw.PersonalEmail),
			ContactNumber: strings.TrimSpace(raw.PersonalNumber),
			GitHub:        strings.TrimSpace(raw.GitHubProfileID),
			Twitter:       strings.TrimSpace(raw.TwitterProfileID),
			Facebook:      strings.TrimSpace(raw.FacebookProfileID),
			Skills:        JoinList(raw.Skills),
			Languages:     JoinList(raw.Languages),
			Connections:   raw.Connections,
			FollowerCount: raw.FollowerCount,
			Industry:      strings.TrimSpace(raw.Industry),
			Roster:        meta.Roster,
		},
	}

	for _, edu := range raw.Education {
		b.Educations = append(b.Educations, model.Education{
			ProfileID:       meta.ProfileID,
			InstitutionName: strings.TrimSpace(edu.School),
			Degree:          strings.TrimSpace(edu.DegreeName),
			FieldOfStudy:    strings.TrimSpace(edu.FieldOfStudy),
			StartDate:       FormatPeriod(edu.StartsAt),
			EndDate:         FormatPeriod(edu.EndsAt),
		})
	}

	// Split work history. Provider ordering (most-recent-first) is preserved
	// within each collection.
	for _, exp := range raw.Experiences {
		title := strings.TrimSpace(exp.Title)
		company := strings.TrimSpace(exp.Company)

		if IsClubEntry(company, title) {
			b.ClubExperiences = append(b.ClubExperiences, model.ClubExperience{
				ProfileID:   meta.ProfileID,
				ClubName:    company,
				Role:        title,
				Description: strings.TrimSpace(exp.Description),
				StartDate:   FormatPeriod(exp.StartsAt),
				EndDate:     FormatPeriod(exp.EndsAt),
				Location:    strings.TrimSpace(exp.Location),
			})
			continue
		}

		b.Experiences = append(b.Experiences, model.Experience{
			ProfileID:   meta.ProfileID,
			Title:       title,
			Company:     company,
			Location:    strings.TrimSpace(exp.Location),
			Description: strings.TrimSpace(exp.Description),
			StartDate:   FormatPeriod(exp.StartsAt),
			EndDate:     FormatPeriod(exp.EndsAt),
		})
	}

	for _, cert := range raw.Certifications {
		b.Certifications = append(b.Certifications, model.Certification{
			ProfileID:      meta.ProfileID,
			Name:           strings.TrimSpace(cert.Name),
			IssuingOrg:     strings.TrimSpace(cert.Authority),
			IssueDate:      FormatPeriod(cert.StartsAt),
			ExpirationDate: FormatPeriod(cert.EndsAt),
			CredentialID:   strings.TrimSpace(cert.CredentialID),
			CredentialURL:  strings.TrimSpace(cert.CredentialURL),
		})
	}

	return b
}

// Clean re-applies scalar normalization to an already-canonical bundle. Used
// on the bulk reconciliation path when stored rows are re-ingested; applying
// it to an already-clean bundle is a no-op.
func Clean(b *model.Bundle) *model.Bundle {
	out := *b
	out.Profile.ProfileURL = strings.TrimSpace(b.Profile.ProfileURL)
	out.Profile.FullName = strings.TrimSpace(b.Profile.FullName)
	out.Profile.Headline = strings.TrimSpace(b.Profile.Headline)
	out.Profile.Summary = strings.TrimSpace(b.Profile.Summary)
	out.Profile.Country = strings.TrimSpace(b.Profile.Country)
	out.Profile.City = strings.TrimSpace(b.Profile.City)
	out.Profile.Industry = strings.TrimSpace(b.Profile.Industry)

	out.Educations = append([]model.Education(nil), b.Educations...)
	for i := range out.Educations {
		out.Educations[i].InstitutionName = strings.TrimSpace(out.Educations[i].InstitutionName)
		out.Educations[i].StartDate = cleanPeriod(out.Educations[i].StartDate)
		out.Educations[i].EndDate = cleanPeriod(out.Educations[i].EndDate)
	}
	out.Experiences = append([]model.Experience(nil), b.Experiences...)
	for i := range out.Experiences {
		out.Experiences[i].Title = strings.TrimSpace(out.Experiences[i].Title)
		out.Experiences[i].Company = strings.TrimSpace(out.Experiences[i].Company)
		out.Experiences[i].StartDate = cleanPeriod(out.Experiences[i].StartDate)
		out.Experiences[i].EndDate = cleanPeriod(out.Experiences[i].EndDate)
	}
	out.ClubExperiences = append([]model.ClubExperience(nil), b.ClubExperiences...)
	out.Certifications = append([]model.Certification(nil), b.Certifications...)

	return &out
}

// cleanPeriod normalizes an already-formatted period string. Recognized
// encodings pass through unchanged; anything blank collapses to "N/A".
func cleanPeriod(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "N/A"
	}
	return s
}
