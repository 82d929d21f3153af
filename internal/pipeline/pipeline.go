// Package pipeline orchestrates profile ingestion: fetch, normalize,
// classify, resolve identity, persist. Profiles are processed strictly in
// roster order; one profile's failure never aborts the batch.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/profile-cli/internal/classify"
	"github.com/sells-group/profile-cli/internal/identity"
	"github.com/sells-group/profile-cli/internal/model"
	"github.com/sells-group/profile-cli/internal/normalize"
	"github.com/sells-group/profile-cli/internal/roster"
	"github.com/sells-group/profile-cli/internal/store"
	"github.com/sells-group/profile-cli/pkg/proxycurl"
)

// Sink receives the batch's bundles once at end of run. The spreadsheet sink
// implements it; tests substitute their own.
type Sink interface {
	Merge(bundles []*model.Bundle) error
}

// Pipeline wires the ingestion collaborators together.
type Pipeline struct {
	fetcher    proxycurl.Client
	store      store.Store
	sink       Sink
	classifier *classify.Classifier
}

// New creates a Pipeline with all dependencies.
func New(fetcher proxycurl.Client, st store.Store, sink Sink, classifier *classify.Classifier) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		store:      st,
		sink:       sink,
		classifier: classifier,
	}
}

// RunBatch ingests the roster entries sequentially and returns the batch
// summary. The returned error is non-nil only for batch-fatal conditions:
// identity seeding and audit-record creation. Per-profile failures land in
// the summary instead.
func (p *Pipeline) RunBatch(ctx context.Context, source string, entries []roster.Entry) (*model.BatchSummary, error) {
	log := zap.L().With(zap.String("source", source))
	log.Info("starting ingest batch", zap.Int("entries", len(entries)))

	run, err := p.store.CreateIngestRun(ctx, source)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create ingest run")
	}

	summary := &model.BatchSummary{
		RunID:     run.ID,
		StartedAt: run.StartedAt,
	}

	resolver, err := p.seedResolver(ctx)
	if err != nil {
		// No safe ID can be allocated without the high-water mark.
		return nil, err
	}

	var batch []*model.Bundle
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, eris.Wrap(err, "pipeline: batch cancelled")
		}

		report := p.processEntry(ctx, resolver, entry, &batch)
		summary.Profiles = append(summary.Profiles, report)
		switch report.Status {
		case model.StatusProcessed:
			summary.Processed++
		case model.StatusDuplicate:
			summary.Duplicates++
		default:
			summary.Failed++
		}
	}

	if err := p.sink.Merge(batch); err != nil {
		summary.SheetError = err.Error()
		for i := range summary.Profiles {
			summary.Profiles[i].SheetOK = false
		}
		log.Error("spreadsheet merge failed", zap.Error(err))
	}

	summary.FinishedAt = time.Now().UTC()
	if err := p.store.CompleteIngestRun(ctx, run.ID, summary); err != nil {
		log.Warn("failed to complete ingest run record", zap.Error(err))
	}

	log.Info("ingest batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// RunOne ingests a single profile URL.
func (p *Pipeline) RunOne(ctx context.Context, url string) (*model.BatchSummary, error) {
	return p.RunBatch(ctx, url, []roster.Entry{{ProfileURL: url}})
}

func (p *Pipeline) seedResolver(ctx context.Context) (*identity.Resolver, error) {
	max, err := p.store.MaxProfileID(ctx)
	if err != nil {
		return nil, eris.Wrap(identity.ErrHighWaterMark, err.Error())
	}
	known, err := p.store.KnownURLs(ctx)
	if err != nil {
		return nil, eris.Wrap(identity.ErrHighWaterMark, err.Error())
	}
	return identity.NewResolver(max, known), nil
}

// processEntry runs one roster entry through the full pipeline. Bundles that
// survive normalization are appended to the sheet batch even when the
// relational write fails: the sinks are independent.
func (p *Pipeline) processEntry(ctx context.Context, resolver *identity.Resolver, entry roster.Entry, batch *[]*model.Bundle) model.ProfileReport {
	log := zap.L().With(zap.String("url", entry.ProfileURL))
	report := model.ProfileReport{ProfileURL: entry.ProfileURL}

	if !roster.UsableURL(entry.ProfileURL) {
		report.Status = model.StatusInvalidURL
		log.Warn("skipping entry without usable profile URL")
		return report
	}

	res := resolver.Resolve(entry.ProfileURL)
	report.ProfileID = res.ProfileID
	if res.Duplicate {
		report.Status = model.StatusDuplicate
		log.Info("profile already ingested", zap.Int64("profile_id", res.ProfileID))
		return report
	}

	person, err := p.fetcher.FetchPerson(ctx, entry.ProfileURL)
	if err != nil {
		report.Status = model.StatusFetchFailed
		report.Error = err.Error()
		log.Error("fetch failed", zap.Error(err))
		return report
	}

	bundle := normalize.Normalize(person, normalize.Meta{
		ProfileID: res.ProfileID,
		SourceURL: entry.ProfileURL,
		Roster:    entry.Roster,
	})
	if bundle.Profile.FullName == "" {
		bundle.Profile.FullName = entry.FullName
	}

	flags := p.classifier.Apply(bundle)
	bundle.Profile.Fortune500 = flags.Fortune500
	bundle.Profile.LeadershipRole = flags.LeadershipRole
	bundle.Profile.Entrepreneur = flags.Entrepreneur

	*batch = append(*batch, bundle)
	report.SheetOK = true

	if err := p.store.SaveProfile(ctx, bundle); err != nil {
		report.Status = model.StatusStoreFailed
		report.Error = err.Error()
		log.Error("relational store write failed", zap.Error(err))
		return report
	}
	report.StoreOK = true
	report.Status = model.StatusProcessed

	log.Info("profile ingested",
		zap.Int64("profile_id", res.ProfileID),
		zap.Bool("fortune500", flags.Fortune500),
		zap.Bool("leadership", flags.LeadershipRole),
		zap.Bool("entrepreneur", flags.Entrepreneur))
	return report
}
