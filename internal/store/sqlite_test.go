package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/profile-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleBundle(id int64, url string) *model.Bundle {
	return &model.Bundle{
		Profile: model.Profile{
			ProfileID:      id,
			ProfileURL:     url,
			FullName:       "Jane Doe",
			Headline:       "Engineer at Initech",
			Country:        "United States",
			Skills:         "Go, SQL",
			Connections:    500,
			LeadershipRole: true,
		},
		Educations: []model.Education{
			{ProfileID: id, InstitutionName: "State University", Degree: "BSc", StartDate: "08/2010", EndDate: "05/2014"},
		},
		Experiences: []model.Experience{
			{ProfileID: id, Title: "Engineer", Company: "Initech", StartDate: "06/2014", EndDate: "Present"},
			{ProfileID: id, Title: "Intern", Company: "Initech", StartDate: "06/2013", EndDate: "08/2013"},
		},
		ClubExperiences: []model.ClubExperience{
			{ProfileID: id, ClubName: "Debate Club", Role: "President"},
		},
		Certifications: []model.Certification{
			{ProfileID: id, Name: "Cloud Practitioner", IssuingOrg: "AWS"},
		},
	}
}

func TestSQLiteStore_SaveProfile_RoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, sampleBundle(1, "https://www.linkedin.com/in/jane-doe")))

	ds, err := s.GetAllTables(ctx)
	require.NoError(t, err)
	require.Len(t, ds.Profiles, 1)
	assert.Equal(t, "Jane Doe", ds.Profiles[0].FullName)
	assert.True(t, ds.Profiles[0].LeadershipRole)
	assert.False(t, ds.Profiles[0].Fortune500)
	require.Len(t, ds.Educations, 1)
	require.Len(t, ds.Experiences, 2)
	require.Len(t, ds.ClubExperiences, 1)
	require.Len(t, ds.Certifications, 1)
	assert.Equal(t, int64(1), ds.Experiences[0].ProfileID)
}

func TestSQLiteStore_SaveProfile_ReplacesChildren(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, sampleBundle(1, "https://www.linkedin.com/in/jane-doe")))

	updated := sampleBundle(1, "https://www.linkedin.com/in/jane-doe")
	updated.Profile.Headline = "CTO at Acme"
	updated.Experiences = []model.Experience{
		{ProfileID: 1, Title: "CTO", Company: "Acme", StartDate: "01/2020", EndDate: "Present"},
	}
	require.NoError(t, s.SaveProfile(ctx, updated))

	ds, err := s.GetAllTables(ctx)
	require.NoError(t, err)
	require.Len(t, ds.Profiles, 1)
	assert.Equal(t, "CTO at Acme", ds.Profiles[0].Headline)
	require.Len(t, ds.Experiences, 1)
	assert.Equal(t, "CTO", ds.Experiences[0].Title)
	// Untouched child tables are reloaded from the bundle, not duplicated.
	require.Len(t, ds.Educations, 1)
}

func TestSQLiteStore_MaxProfileID(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	max, err := s.MaxProfileID(ctx)
	require.NoError(t, err)
	assert.Zero(t, max)

	require.NoError(t, s.SaveProfile(ctx, sampleBundle(5, "https://www.linkedin.com/in/jane-doe")))
	require.NoError(t, s.SaveProfile(ctx, sampleBundle(9, "https://www.linkedin.com/in/john-smith")))

	max, err = s.MaxProfileID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), max)
}

func TestSQLiteStore_KnownURLs(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, sampleBundle(1, "https://www.linkedin.com/in/jane-doe")))
	require.NoError(t, s.SaveProfile(ctx, sampleBundle(2, "https://www.linkedin.com/in/john-smith")))

	known, err := s.KnownURLs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"https://www.linkedin.com/in/jane-doe":   1,
		"https://www.linkedin.com/in/john-smith": 2,
	}, known)
}

func TestSQLiteStore_IngestRunLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.CreateIngestRun(ctx, "roster.xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	summary := &model.BatchSummary{RunID: run.ID, Processed: 2, Duplicates: 1}
	require.NoError(t, s.CompleteIngestRun(ctx, run.ID, summary))

	err = s.CompleteIngestRun(ctx, "missing-run", summary)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
