package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

type ObjectWriter interface {
	PutObject(ctx context.Context, bucket, key string, data io.Reader) error
}

// ArchivingVerdictStore saves the latest verdict through the wrapped store and keeps a
// timestamped copy of every verdict in object storage. Archive failures are logged and dropped.
type ArchivingVerdictStore struct {
	next   VerdictStore
	writer ObjectWriter
	bucket string
	now    func() time.Time
	log    zerolog.Logger
}

func NewArchivingVerdictStore(next VerdictStore, writer ObjectWriter, bucket string, log zerolog.Logger) *ArchivingVerdictStore {
	return &ArchivingVerdictStore{
		next:   next,
		writer: writer,
		bucket: bucket,
		now:    time.Now,
		log:    log.With().Str("component", "verdict_archive").Logger(),
	}
}

func ArchiveKey(symbol string, at time.Time) string {
	return fmt.Sprintf("evaluations/%s/%d.json", symbol, at.Unix())
}

func (s *ArchivingVerdictStore) SaveLatest(ctx context.Context, symbol string, verdict json.RawMessage) error {
	if err := s.next.SaveLatest(ctx, symbol, verdict); err != nil {
		return err
	}

	key := ArchiveKey(symbol, s.now())
	if err := s.writer.PutObject(ctx, s.bucket, key, bytes.NewReader(verdict)); err != nil {
		s.log.Warn().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("error archiving evaluation")
	}
	return nil
}
