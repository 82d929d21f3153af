package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/profile-cli/internal/classify"
	"github.com/sells-group/profile-cli/internal/pipeline"
	"github.com/sells-group/profile-cli/internal/sheet"
	"github.com/sells-group/profile-cli/internal/store"
	"github.com/sells-group/profile-cli/pkg/proxycurl"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "profiles.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	employers, err := classify.LoadEmployers()
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	classifier := classify.New(employers,
		classify.WithEmployerThreshold(cfg.Classify.EmployerThreshold),
		classify.WithLeadershipThreshold(cfg.Classify.LeadershipThreshold),
	)

	fetcher := proxycurl.NewClient(cfg.Provider.Key,
		proxycurl.WithBaseURL(cfg.Provider.BaseURL),
		proxycurl.WithRateLimit(cfg.Provider.RateLimit),
		proxycurl.WithTimeout(time.Duration(cfg.Provider.TimeoutSecs)*time.Second),
	)

	sink := sheet.New(cfg.Sheet.Path)

	return pipeline.New(fetcher, st, sink, classifier), st, nil
}
