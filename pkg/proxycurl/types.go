package proxycurl

// Date is a provider month/year (optionally day) date object. A nil *Date on
// an experience or education entry means the engagement is ongoing.
type Date struct {
	Day   int `json:"day,omitempty"`
	Month int `json:"month,omitempty"`
	Year  int `json:"year,omitempty"`
}

// ExperienceEntry is one raw work-history entry. The provider returns the
// experiences list ordered most-recent-first; callers rely on that ordering.
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	StartsAt    *Date  `json:"starts_at"`
	EndsAt      *Date  `json:"ends_at"`
}

// EducationEntry is one raw education entry.
type EducationEntry struct {
	School       string `json:"school"`
	DegreeName   string `json:"degree_name"`
	FieldOfStudy string `json:"field_of_study"`
	StartsAt     *Date  `json:"starts_at"`
	EndsAt       *Date  `json:"ends_at"`
}

// CertificationEntry is one raw certification entry.
type CertificationEntry struct {
	Name          string `json:"name"`
	Authority     string `json:"issuing_organization"`
	StartsAt      *Date  `json:"starts_at"`
	EndsAt        *Date  `json:"ends_at"`
	CredentialID  string `json:"credential_id"`
	CredentialURL string `json:"credential_url"`
}

// Person is the raw profile record returned by the person endpoint.
type Person struct {
	PublicIdentifier string               `json:"public_identifier"`
	FullName         string               `json:"full_name"`
	ProfilePicURL    string               `json:"profile_pic_url"`
	Headline         string               `json:"headline"`
	Summary          string               `json:"summary"`
	CountryFullName  string               `json:"country_full_name"`
	City             string               `json:"city"`
	PersonalEmail    string               `json:"personal_email"`
	PersonalNumber   string               `json:"personal_contact_number"`
	GitHubProfileID  string               `json:"github_profile_id"`
	TwitterProfileID string               `json:"twitter_profile_id"`
	FacebookProfileID string              `json:"facebook_profile_id"`
	Skills           []string             `json:"skills"`
	Languages        []string             `json:"languages"`
	Connections      int64                `json:"connections"`
	FollowerCount    int64                `json:"follower_count"`
	Industry         string               `json:"industry"`
	Experiences      []ExperienceEntry    `json:"experiences"`
	Education        []EducationEntry     `json:"education"`
	Certifications   []CertificationEntry `json:"certifications"`
}
