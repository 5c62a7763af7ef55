package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls int
	err   error
}

func (s *countingSweeper) DeleteExpired(ctx context.Context) (int64, error) {
	s.calls++
	return 3, s.err
}

func TestCleanupJob(t *testing.T) {
	sweeper := &countingSweeper{}
	job := NewCleanupJob(sweeper, zerolog.Nop())

	assert.Equal(t, "kv_cleanup", job.Name())
	job.Run()
	assert.Equal(t, 1, sweeper.calls)

	sweeper.err = errors.New("db down")
	assert.NotPanics(t, job.Run)
	assert.Equal(t, 2, sweeper.calls)
}

func TestCleanupJobSchedule(t *testing.T) {
	job := NewCleanupJob(&countingSweeper{}, zerolog.Nop())

	c, err := job.Schedule("@hourly")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()

	_, err = job.Schedule("not a schedule")
	assert.Error(t, err)
}
