package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type ExpiredSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupJob removes expired key/value entries. Expired entries already read as absent,
// so this only reclaims storage.
type CleanupJob struct {
	store ExpiredSweeper
	log   zerolog.Logger
}

func NewCleanupJob(store ExpiredSweeper, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		store: store,
		log:   log.With().Str("component", "kv_cleanup").Logger(),
	}
}

func (j *CleanupJob) Name() string {
	return "kv_cleanup"
}

func (j *CleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := j.store.DeleteExpired(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("error deleting expired entries")
		return
	}
	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("deleted expired entries")
	}
}

// Schedule registers the job on a new cron scheduler and starts it. The caller stops the
// returned scheduler on shutdown.
func (j *CleanupJob) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(spec, j); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
