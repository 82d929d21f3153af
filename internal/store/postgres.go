package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/profile-cli/internal/db"
	"github.com/sells-group/profile-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations.
var preparedStatements = map[string]string{
	"max_profile_id": `SELECT COALESCE(MAX(profile_id), 0) FROM profiles`,
	"known_urls":     `SELECT profile_url, profile_id FROM profiles`,
	"insert_run":     `INSERT INTO ingest_runs (id, source, status, started_at) VALUES ($1, $2, $3, $4)`,
	"complete_run":   `UPDATE ingest_runs SET status = $1, finished_at = $2, processed = $3, duplicates = $4, failed = $5, summary = $6 WHERE id = $7`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	profile_id      BIGINT PRIMARY KEY,
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
	connections     BIGINT NOT NULL DEFAULT 0,
	languages       TEXT NOT NULL DEFAULT '',
	follower_count  BIGINT NOT NULL DEFAULT 0,
	industry        TEXT NOT NULL DEFAULT '',
	fortune500      BOOLEAN NOT NULL DEFAULT false,
	leadership_role BOOLEAN NOT NULL DEFAULT false,
	entrepreneur    BOOLEAN NOT NULL DEFAULT false,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS educations (
	id               BIGSERIAL PRIMARY KEY,
	profile_id       BIGINT NOT NULL REFERENCES profiles(profile_id) ON DELETE CASCADE,
	institution_name TEXT NOT NULL DEFAULT '',
	degree           TEXT NOT NULL DEFAULT '',
	field_of_study   TEXT NOT NULL DEFAULT '',
	start_date       TEXT NOT NULL DEFAULT '',
	end_date         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS experiences (
	id          BIGSERIAL PRIMARY KEY,
	profile_id  BIGINT NOT NULL REFERENCES profiles(profile_id) ON DELETE CASCADE,
	title       TEXT NOT NULL DEFAULT '',
	company     TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL DEFAULT '',
	end_date    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS club_experiences (
	id          BIGSERIAL PRIMARY KEY,
	profile_id  BIGINT NOT NULL REFERENCES profiles(profile_id) ON DELETE CASCADE,
	club_name   TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL DEFAULT '',
	end_date    TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	position    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS certifications (
	id                   BIGSERIAL PRIMARY KEY,
	profile_id           BIGINT NOT NULL REFERENCES profiles(profile_id) ON DELETE CASCADE,
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
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ,
	processed   INTEGER NOT NULL DEFAULT 0,
	duplicates  INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	summary     JSONB
);

CREATE INDEX IF NOT EXISTS idx_profiles_profile_url ON profiles(profile_url);
CREATE INDEX IF NOT EXISTS idx_educations_profile_id ON educations(profile_id);
CREATE INDEX IF NOT EXISTS idx_experiences_profile_id ON experiences(profile_id);
CREATE INDEX IF NOT EXISTS idx_club_experiences_profile_id ON club_experiences(profile_id);
CREATE INDEX IF NOT EXISTS idx_certifications_profile_id ON certifications(profile_id);
CREATE INDEX IF NOT EXISTS idx_ingest_runs_started_at ON ingest_runs(started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) MaxProfileID(ctx context.Context) (int64, error) {
	var max int64
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(profile_id), 0) FROM profiles`).Scan(&max)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: max profile id")
	}
	return max, nil
}

func (s *PostgresStore) KnownURLs(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT profile_url, profile_id FROM profiles`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: known urls")
	}
	defer rows.Close()

	known := make(map[string]int64)
	for rows.Next() {
		var url string
		var id int64
		if err := rows.Scan(&url, &id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan known url")
		}
		known[url] = id
	}
	return known, eris.Wrap(rows.Err(), "postgres: known urls iterate")
}

// SaveProfile writes a bundle in one transaction: the profile row is
// upserted and every child table is cleared and reloaded via COPY. Children
// are never merged row-by-row; the bundle is the full truth for its profile.
func (s *PostgresStore) SaveProfile(ctx context.Context, b *model.Bundle) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save profile")
	}
	defer tx.Rollback(ctx)

	p := &b.Profile
	now := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (
			profile_id, profile_url, profile_pic_url, full_name, headline,
			summary, country, city, email, contact_number, github, twitter,
			facebook, skills, connections, languages, follower_count,
			industry, fortune500, leadership_role, entrepreneur,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $22
		)
		ON CONFLICT (profile_id) DO UPDATE SET
			profile_url = EXCLUDED.profile_url,
			profile_pic_url = EXCLUDED.profile_pic_url,
			full_name = EXCLUDED.full_name,
			headline = EXCLUDED.headline,
			summary = EXCLUDED.summary,
			country = EXCLUDED.country,
			city = EXCLUDED.city,
			email = EXCLUDED.email,
			contact_number = EXCLUDED.contact_number,
			github = EXCLUDED.github,
			twitter = EXCLUDED.twitter,
			facebook = EXCLUDED.facebook,
			skills = EXCLUDED.skills,
			connections = EXCLUDED.connections,
			languages = EXCLUDED.languages,
			follower_count = EXCLUDED.follower_count,
			industry = EXCLUDED.industry,
			fortune500 = EXCLUDED.fortune500,
			leadership_role = EXCLUDED.leadership_role,
			entrepreneur = EXCLUDED.entrepreneur,
			updated_at = EXCLUDED.updated_at`,
		p.ProfileID, p.ProfileURL, p.ProfilePicURL, p.FullName, p.Headline,
		p.Summary, p.Country, p.City, p.Email, p.ContactNumber, p.GitHub,
		p.Twitter, p.Facebook, p.Skills, p.Connections, p.Languages,
		p.FollowerCount, p.Industry, p.Fortune500, p.LeadershipRole,
		p.Entrepreneur, now,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert profile %d", p.ProfileID)
	}

	for _, table := range []string{"educations", "experiences", "club_experiences", "certifications"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE profile_id = $1`, p.ProfileID); err != nil {
			return eris.Wrapf(err, "postgres: clear %s for profile %d", table, p.ProfileID)
		}
	}

	if err := copyChildren(ctx, tx, b); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrapf(err, "postgres: commit profile %d", p.ProfileID)
	}
	return nil
}

func copyChildren(ctx context.Context, tx pgx.Tx, b *model.Bundle) error {
	id := b.Profile.ProfileID

	eduRows := make([][]any, 0, len(b.Educations))
	for _, e := range b.Educations {
		eduRows = append(eduRows, []any{id, e.InstitutionName, e.Degree, e.FieldOfStudy, e.StartDate, e.EndDate})
	}
	if _, err := db.CopyFrom(ctx, tx, "educations",
		[]string{"profile_id", "institution_name", "degree", "field_of_study", "start_date", "end_date"},
		eduRows); err != nil {
		return err
	}

	expRows := make([][]any, 0, len(b.Experiences))
	for _, e := range b.Experiences {
		expRows = append(expRows, []any{id, e.Title, e.Company, e.Location, e.Description, e.StartDate, e.EndDate})
	}
	if _, err := db.CopyFrom(ctx, tx, "experiences",
		[]string{"profile_id", "title", "company", "location", "description", "start_date", "end_date"},
		expRows); err != nil {
		return err
	}

	clubRows := make([][]any, 0, len(b.ClubExperiences))
	for _, c := range b.ClubExperiences {
		clubRows = append(clubRows, []any{id, c.ClubName, c.Role, c.Description, c.StartDate, c.EndDate, c.Location, c.Position})
	}
	if _, err := db.CopyFrom(ctx, tx, "club_experiences",
		[]string{"profile_id", "club_name", "role", "description", "start_date", "end_date", "location", "position"},
		clubRows); err != nil {
		return err
	}

	certRows := make([][]any, 0, len(b.Certifications))
	for _, c := range b.Certifications {
		certRows = append(certRows, []any{id, c.Name, c.IssuingOrg, c.IssueDate, c.ExpirationDate, c.CredentialID, c.CredentialURL})
	}
	if _, err := db.CopyFrom(ctx, tx, "certifications",
		[]string{"profile_id", "name", "issuing_organization", "issue_date", "expiration_date", "credential_id", "credential_url"},
		certRows); err != nil {
		return err
	}

	return nil
}

func (s *PostgresStore) GetAllTables(ctx context.Context) (*model.Dataset, error) {
	ds := &model.Dataset{}

	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, profile_url, profile_pic_url, full_name, headline,
			summary, country, city, email, contact_number, github, twitter,
			facebook, skills, connections, languages, follower_count,
			industry, fortune500, leadership_role, entrepreneur
		FROM profiles ORDER BY profile_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: select profiles")
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
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		ds.Profiles = append(ds.Profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: profiles iterate")
	}
	rows.Close()

	if err := s.selectEducations(ctx, ds); err != nil {
		return nil, err
	}
	if err := s.selectExperiences(ctx, ds); err != nil {
		return nil, err
	}
	if err := s.selectClubs(ctx, ds); err != nil {
		return nil, err
	}
	if err := s.selectCertifications(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *PostgresStore) selectEducations(ctx context.Context, ds *model.Dataset) error {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, institution_name, degree, field_of_study, start_date, end_date
		FROM educations ORDER BY id`)
	if err != nil {
		return eris.Wrap(err, "postgres: select educations")
	}
	defer rows.Close()
	for rows.Next() {
		var e model.Education
		if err := rows.Scan(&e.ProfileID, &e.InstitutionName, &e.Degree, &e.FieldOfStudy, &e.StartDate, &e.EndDate); err != nil {
			return eris.Wrap(err, "postgres: scan education")
		}
		ds.Educations = append(ds.Educations, e)
	}
	return eris.Wrap(rows.Err(), "postgres: educations iterate")
}

func (s *PostgresStore) selectExperiences(ctx context.Context, ds *model.Dataset) error {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, title, company, location, description, start_date, end_date
		FROM experiences ORDER BY id`)
	if err != nil {
		return eris.Wrap(err, "postgres: select experiences")
	}
	defer rows.Close()
	for rows.Next() {
		var e model.Experience
		if err := rows.Scan(&e.ProfileID, &e.Title, &e.Company, &e.Location, &e.Description, &e.StartDate, &e.EndDate); err != nil {
			return eris.Wrap(err, "postgres: scan experience")
		}
		ds.Experiences = append(ds.Experiences, e)
	}
	return eris.Wrap(rows.Err(), "postgres: experiences iterate")
}

func (s *PostgresStore) selectClubs(ctx context.Context, ds *model.Dataset) error {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, club_name, role, description, start_date, end_date, location, position
		FROM club_experiences ORDER BY id`)
	if err != nil {
		return eris.Wrap(err, "postgres: select club experiences")
	}
	defer rows.Close()
	for rows.Next() {
		var c model.ClubExperience
		if err := rows.Scan(&c.ProfileID, &c.ClubName, &c.Role, &c.Description, &c.StartDate, &c.EndDate, &c.Location, &c.Position); err != nil {
			return eris.Wrap(err, "postgres: scan club experience")
		}
		ds.ClubExperiences = append(ds.ClubExperiences, c)
	}
	return eris.Wrap(rows.Err(), "postgres: club experiences iterate")
}

func (s *PostgresStore) selectCertifications(ctx context.Context, ds *model.Dataset) error {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, name, issuing_organization, issue_date, expiration_date, credential_id, credential_url
		FROM certifications ORDER BY id`)
	if err != nil {
		return eris.Wrap(err, "postgres: select certifications")
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Certification
		if err := rows.Scan(&c.ProfileID, &c.Name, &c.IssuingOrg, &c.IssueDate, &c.ExpirationDate, &c.CredentialID, &c.CredentialURL); err != nil {
			return eris.Wrap(err, "postgres: scan certification")
		}
		ds.Certifications = append(ds.Certifications, c)
	}
	return eris.Wrap(rows.Err(), "postgres: certifications iterate")
}

func (s *PostgresStore) CreateIngestRun(ctx context.Context, source string) (*model.IngestRun, error) {
	run := &model.IngestRun{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ingest_runs (id, source, status, started_at) VALUES ($1, $2, $3, $4)`,
		run.ID, run.Source, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert ingest run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteIngestRun(ctx context.Context, runID string, summary *model.BatchSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE ingest_runs SET status = $1, finished_at = $2, processed = $3, duplicates = $4, failed = $5, summary = $6 WHERE id = $7`,
		string(model.RunStatusComplete), time.Now().UTC(),
		summary.Processed, summary.Duplicates, summary.Failed,
		summaryJSON, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete ingest run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("ingest run not found: %s", runID)
	}
	return nil
}
