package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/profile-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	profile_id      INTEGER PRIMARY KEY,
	profile_url     TEXT NOT NULL UNIQUE,
	profile_pic_url TEXT NOT NULL DEFAULT '',
	full_name       TEXT NOT NULL DEFAULT '',
	headline        TEXT NOT NULL DEFAULT '',
	summary         TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL DEFAULT '',
	email           TEXT NOT NULL DEFAULT '',
	contact_number  TEXT NOT NULL DEFAULT '',
	github          TEXT NOT NULL DEFAULT '',
	twitter         TEXT NOT NULL DEFAULT '',
	facebook        TEXT NOT NULL DEFAULT '',
	skills          TEXT NOT NULL DEFAULT '',
	connections     INTEGER NOT NULL DEFAULT 0,
	languages       TEXT NOT NULL DEFAULT '',
	follower_count  INTEGER NOT NULL DEFAULT 0,
	industry        TEXT NOT NULL DEFAULT '',
	fortune500      INTEGER NOT NULL DEFAULT 0,
	leadership_role INTEGER NOT NULL DEFAULT 0,
	entrepreneur    INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS educations (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id       INTEGER NOT NULL REFERENCES profiles(profile_id) ON DELETE CASCADE,
	institution_name TEXT NOT NULL DEFAULT '',
	degree           TEXT NOT NULL DEFAULT '',
	field_of_study   TEXT NOT NULL DEFAULT '',
	start_date       TEXT NOT NULL DEFAULT '',
	end_date         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS experiences (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id  INTEGER NOT NULL REFERENCES profiles(profile_id) ON DELETE CASCADE,
	title       TEXT NOT NULL DEFAULT '',
	company     TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL DEFAULT '',
	end_date    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS club_experiences (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id  INTEGER NOT NULL REFERENCES profiles(profile_id) ON DELETE CASCADE,
	club_name   TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL DEFAULT '',
	end_date    TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	position    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS certifications (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id           INTEGER NOT NULL REFERENCES profiles(profile_id) ON DELETE CASCADE,
	name                 TEXT NOT NULL DEFAULT '',
	issuing_organization TEXT NOT NULL DEFAULT '',
	issue_date           TEXT NOT NULL DEFAULT '',
	expiration_date      TEXT NOT NULL DEFAULT '',
	credential_id        TEXT NOT NULL DEFAULT '',
	credential_url       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ingest_runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'running',
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME,
	processed   INTEGER NOT NULL DEFAULT 0,
	duplicates  INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	summary     TEXT
);

CREATE INDEX IF NOT EXISTS idx_educations_profile_id ON educations(profile_id);
CREATE INDEX IF NOT EXISTS idx_experiences_profile_id ON experiences(profile_id);
CREATE INDEX IF NOT EXISTS idx_club_experiences_profile_id ON club_experiences(profile_id);
CREATE INDEX IF NOT EXISTS idx_certifications_profile_id ON certifications(profile_id);
CREATE INDEX IF NOT EXISTS idx_ingest_runs_started_at ON ingest_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) MaxProfileID(ctx context.Context) (int64, error) {
	var max int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(profile_id), 0) FROM profiles`).Scan(&max)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: max profile id")
	}
	return max, nil
}

func (s *SQLiteStore) KnownURLs(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT profile_url, profile_id FROM profiles`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: known urls")
	}
	defer rows.Close()

	known := make(map[string]int64)
	for rows.Next() {
		var url string
		var id int64
		if err := rows.Scan(&url, &id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan known url")
		}
		known[url] = id
	}
	return known, eris.Wrap(rows.Err(), "sqlite: known urls iterate")
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, b *model.Bundle) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save profile")
	}
	defer tx.Rollback()

	p := &b.Profile
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (
			profile_id, profile_url, profile_pic_url, full_name, headline,
			summary, country, city, email, contact_number, github, twitter,
			facebook, skills, connections, languages, follower_count,
			industry, fortune500, leadership_role, entrepreneur,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile_id) DO UPDATE SET
			profile_url = excluded.profile_url,
			profile_pic_url = excluded.profile_pic_url,
			full_name = excluded.full_name,
			headline = excluded.headline,
			summary = excluded.summary,
			country = excluded.country,
			city = excluded.city,
			email = excluded.email,
			contact_number = excluded.contact_number,
			github = excluded.github,
			twitter = excluded.twitter,
			facebook = excluded.facebook,
			skills = excluded.skills,
			connections = excluded.connections,
			languages = excluded.languages,
			follower_count = excluded.follower_count,
			industry = excluded.industry,
			fortune500 = excluded.fortune500,
			leadership_role = excluded.leadership_role,
			entrepreneur = excluded.entrepreneur,
			updated_at = excluded.updated_at`,
		p.ProfileID, p.ProfileURL, p.ProfilePicURL, p.FullName, p.Headline,
		p.Summary, p.Country, p.City, p.Email, p.ContactNumber, p.GitHub,
		p.Twitter, p.Facebook, p.Skills, p.Connections, p.Languages,
		p.FollowerCount, p.Industry, p.Fortune500, p.LeadershipRole,
		p.Entrepreneur, now, now,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert profile %d", p.ProfileID)
	}

	for _, table := range []string{"educations", "experiences", "club_experiences", "certifications"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE profile_id = ?`, p.ProfileID); err != nil {
			return eris.Wrapf(err, "sqlite: clear %s for profile %d", table, p.ProfileID)
		}
	}

	id := p.ProfileID
	for _, e := range b.Educations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO educations (profile_id, institution_name, degree, field_of_study, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, e.InstitutionName, e.Degree, e.FieldOfStudy, e.StartDate, e.EndDate,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert education for profile %d", id)
		}
	}
	for _, e := range b.Experiences {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO experiences (profile_id, title, company, location, description, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, e.Title, e.Company, e.Location, e.Description, e.StartDate, e.EndDate,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert experience for profile %d", id)
		}
	}
	for _, c := range b.ClubExperiences {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO club_experiences (profile_id, club_name, role, description, start_date, end_date, location, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.ClubName, c.Role, c.Description, c.StartDate, c.EndDate, c.Location, c.Position,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert club experience for profile %d", id)
		}
	}
	for _, c := range b.Certifications {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO certifications (profile_id, name, issuing_organization, issue_date, expiration_date, credential_id, credential_url)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, c.Name, c.IssuingOrg, c.IssueDate, c.ExpirationDate, c.CredentialID, c.CredentialURL,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert certification for profile %d", id)
		}
	}

	return eris.Wrapf(tx.Commit(), "sqlite: commit profile %d", id)
}

func (s *SQLiteStore) GetAllTables(ctx context.Context) (*model.Dataset, error) {
	ds := &model.Dataset{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT profile_id, profile_url, profile_pic_url, full_name, headline,
			summary, country, city, email, contact_number, github, twitter,
			facebook, skills, connections, languages, follower_count,
			industry, fortune500, leadership_role, entrepreneur
		FROM profiles ORDER BY profile_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select profiles")
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(
			&p.ProfileID, &p.ProfileURL, &p.ProfilePicURL, &p.FullName,
			&p.Headline, &p.Summary, &p.Country, &p.City, &p.Email,
			&p.ContactNumber, &p.GitHub, &p.Twitter, &p.Facebook, &p.Skills,
			&p.Connections, &p.Languages, &p.FollowerCount, &p.Industry,
			&p.Fortune500, &p.LeadershipRole, &p.Entrepreneur,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile")
		}
		ds.Profiles = append(ds.Profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: profiles iterate")
	}

	if err := s.selectChildren(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *SQLiteStore) selectChildren(ctx context.Context, ds *model.Dataset) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT profile_id, institution_name, degree, field_of_study, start_date, end_date
		FROM educations ORDER BY id`)
	if err != nil {
		return eris.Wrap(err, "sqlite: select educations")
	}
	for rows.Next() {
		var e model.Education
		if err := rows.Scan(&e.ProfileID, &e.InstitutionName, &e.Degree, &e.FieldOfStudy, &e.StartDate, &e.EndDate); err != nil {
			rows.Close()
			return eris.Wrap(err, "sqlite: scan education")
		}
		ds.Educations = append(ds.Educations, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: educations iterate")
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT profile_id, title, company, location, description, start_date, end_date
		FROM experiences ORDER BY id`)
	if err != nil {
		return eris.Wrap(err, "sqlite: select experiences")
	}
	for rows.Next() {
		var e model.Experience
		if err := rows.Scan(&e.ProfileID, &e.Title, &e.Company, &e.Location, &e.Description, &e.StartDate, &e.EndDate); err != nil {
			rows.Close()
			return eris.Wrap(err, "sqlite: scan experience")
		}
		ds.Experiences = append(ds.Experiences, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: experiences iterate")
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT profile_id, club_name, role, description, start_date, end_date, location, position
		FROM club_experiences ORDER BY id`)
	if err != nil {
		return eris.Wrap(err, "sqlite: select club experiences")
	}
	for rows.Next() {
		var c model.ClubExperience
		if err := rows.Scan(&c.ProfileID, &c.ClubName, &c.Role, &c.Description, &c.StartDate, &c.EndDate, &c.Location, &c.Position); err != nil {
			rows.Close()
			return eris.Wrap(err, "sqlite: scan club experience")
		}
		ds.ClubExperiences = append(ds.ClubExperiences, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: club experiences iterate")
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT profile_id, name, issuing_organization, issue_date, expiration_date, credential_id, credential_url
		FROM certifications ORDER BY id`)
	if err != nil {
		return eris.Wrap(err, "sqlite: select certifications")
	}
	for rows.Next() {
		var c model.Certification
		if err := rows.Scan(&c.ProfileID, &c.Name, &c.IssuingOrg, &c.IssueDate, &c.ExpirationDate, &c.CredentialID, &c.CredentialURL); err != nil {
			rows.Close()
			return eris.Wrap(err, "sqlite: scan certification")
		}
		ds.Certifications = append(ds.Certifications, c)
	}
	rows.Close()
	return eris.Wrap(rows.Err(), "sqlite: certifications iterate")
}

func (s *SQLiteStore) CreateIngestRun(ctx context.Context, source string) (*model.IngestRun, error) {
	run := &model.IngestRun{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert ingest run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteIngestRun(ctx context.Context, runID string, summary *model.BatchSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE ingest_runs SET status = ?, finished_at = ?, processed = ?, duplicates = ?, failed = ?, summary = ? WHERE id = ?`,
		string(model.RunStatusComplete), time.Now().UTC(),
		summary.Processed, summary.Duplicates, summary.Failed,
		string(summaryJSON), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete ingest run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("ingest run not found: %s", runID)
	}
	return nil
}
