package model

import "time"

// Profile is the canonical, fully-typed representation of a fetched
// professional profile. All scalar fields default to empty string / zero so
// both sinks stay schema-stable; list-valued provider fields (skills,
// languages) are flattened into ", "-joined strings.
type Profile struct {
	ProfileID     int64  `json:"profile_id"`
	ProfileURL    string `json:"profile_url"`
	ProfilePicURL string `json:"profile_pic_url"`
	FullName      string `json:"full_name"`
	Headline      string `json:"headline"`
	Summary       string `json:"summary"`
	Country       string `json:"country"`
	City          string `json:"city"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	GitHub        string `json:"github"`
	Twitter       string `json:"twitter"`
	Facebook      string `json:"facebook"`
	Skills        string `json:"skills"`
	Connections   int64  `json:"connections"`
	Languages     string `json:"languages"`
	FollowerCount int64  `json:"follower_count"`
	Industry      string `json:"industry"`

	Fortune500     bool `json:"fortune_500"`
	LeadershipRole bool `json:"leadership_role"`
	Entrepreneur   bool `json:"entrepreneur"`

	// Roster metadata carried through to the spreadsheet sink only.
	Roster RosterMeta `json:"roster,omitempty"`
}

// RosterMeta holds per-row metadata from the input roster spreadsheet. It is
// not part of the relational schema.
type RosterMeta struct {
	Batch          string `json:"batch,omitempty"`
	Program        string `json:"program,omitempty"`
	Gender         string `json:"gender,omitempty"`
	AdmissionYear  string `json:"admission_year,omitempty"`
	GraduationYear string `json:"graduation_year,omitempty"`
}

// Education is one education history entry, owned by exactly one profile.
type Education struct {
	ProfileID       int64  `json:"profile_id"`
	InstitutionName string `json:"institution_name"`
	Degree          string `json:"degree"`
	FieldOfStudy    string `json:"field_of_study"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
}

// Experience is one employment history entry. The employment list is ordered
// most-recent-first; classifiers only examine index 0.
type Experience struct {
	ProfileID   int64  `json:"profile_id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// ClubExperience is an experience entry reclassified out of the employment
// history at normalization time based on organization/title keywords. The
// classification is final; it is never re-evaluated downstream.
type ClubExperience struct {
	ProfileID   int64  `json:"profile_id"`
	ClubName    string `json:"club_name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Location    string `json:"location"`
	Position    string `json:"position"`
}

// Certification is one certification entry.
type Certification struct {
	ProfileID      int64  `json:"profile_id"`
	Name           string `json:"name"`
	IssuingOrg     string `json:"issuing_organization"`
	IssueDate      string `json:"issue_date"`
	ExpirationDate string `json:"expiration_date"`
	CredentialID   string `json:"credential_id"`
	CredentialURL  string `json:"credential_url"`
}

// Bundle groups a profile with its child records for persistence. Every child
// row references the bundle's profile.
type Bundle struct {
	Profile         Profile          `json:"profile"`
	Educations      []Education      `json:"educations"`
	Experiences     []Experience     `json:"experiences"`
	ClubExperiences []ClubExperience `json:"club_experiences"`
	Certifications  []Certification  `json:"certifications"`
}

// Dataset holds full-table snapshots of the five persisted tables, used by the
// spreadsheet sink merge and by the export command.
type Dataset struct {
	Profiles        []Profile        `json:"profiles"`
	Educations      []Education      `json:"educations"`
	Experiences     []Experience     `json:"experiences"`
	ClubExperiences []ClubExperience `json:"club_experiences"`
	Certifications  []Certification  `json:"certifications"`
}

// ProfileStatus records the outcome of one roster entry in a batch.
type ProfileStatus string

const (
	StatusProcessed   ProfileStatus = "processed"
	StatusDuplicate   ProfileStatus = "duplicate"
	StatusFetchFailed ProfileStatus = "fetch_failed"
	StatusInvalidURL  ProfileStatus = "invalid_url"
	StatusStoreFailed ProfileStatus = "store_failed"
)

// ProfileReport is the per-profile entry of a batch summary.
type ProfileReport struct {
	ProfileURL string        `json:"profile_url"`
	ProfileID  int64         `json:"profile_id,omitempty"`
	Status     ProfileStatus `json:"status"`
	StoreOK    bool          `json:"store_ok"`
	SheetOK    bool          `json:"sheet_ok"`
	Error      string        `json:"error,omitempty"`
}

// BatchSummary is the end-of-batch report.
type BatchSummary struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Processed  int             `json:"processed"`
	Duplicates int             `json:"duplicates"`
	Failed     int             `json:"failed"`
	SheetError string          `json:"sheet_error,omitempty"`
	Profiles   []ProfileReport `json:"profiles"`
}

// Empty reports whether the batch produced no successfully processed profiles.
func (s *BatchSummary) Empty() bool {
	return s.Processed == 0
}
