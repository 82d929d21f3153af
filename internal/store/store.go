package store

import (
	"context"

	"github.com/sells-group/profile-cli/internal/model"
)

// Store defines the relational persistence interface for the ingestion
// pipeline. Implementations commit each profile independently; a failed
// profile never rolls back its neighbors.
type Store interface {
	// Identity
	MaxProfileID(ctx context.Context) (int64, error)
	KnownURLs(ctx context.Context) (map[string]int64, error)

	// Profiles
	SaveProfile(ctx context.Context, b *model.Bundle) error
	GetAllTables(ctx context.Context) (*model.Dataset, error)

	// Ingest runs
	CreateIngestRun(ctx context.Context, source string) (*model.IngestRun, error)
	CompleteIngestRun(ctx context.Context, runID string, summary *model.BatchSummary) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
