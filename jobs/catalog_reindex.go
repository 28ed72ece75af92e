package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Cataloger is the slice of the catalog service the reindex job drives.
type Cataloger interface {
	Invalidate(ctx context.Context) error
	Preload(ctx context.Context) error
}

// TemplateReloader refreshes the template cache alongside the catalog.
type TemplateReloader interface {
	Reload(ctx context.Context) error
}

// CatalogReindexJob reloads the reference index, option tables and
// templates. The admin grid edits the same tables the index is built from,
// so edits schedule this to keep quoting in sync.
type CatalogReindexJob struct {
	catalog   Cataloger
	templates TemplateReloader
	logger    *slog.Logger
}

// NewCatalogReindexJob constructs the reindex job.
func NewCatalogReindexJob(cat Cataloger, tpl TemplateReloader, logger *slog.Logger) *CatalogReindexJob {
	return &CatalogReindexJob{catalog: cat, templates: tpl, logger: logger}
}

// Handle processes TaskCatalogReindex tasks.
func (j *CatalogReindexJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload CatalogReindexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	started := time.Now()
	if err := j.catalog.Invalidate(ctx); err != nil {
		j.logger.Warn("invalidate catalog snapshot", slog.Any("error", err))
	}
	if err := j.catalog.Preload(ctx); err != nil {
		return err
	}
	if j.templates != nil {
		if err := j.templates.Reload(ctx); err != nil {
			j.logger.Warn("reload templates", slog.Any("error", err))
		}
	}
	j.logger.Info("catalog reindexed",
		slog.String("reason", payload.Reason),
		slog.Duration("took", time.Since(started)),
	)
	return nil
}
