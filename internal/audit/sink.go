package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/techtransfer/internal/domain"
	redisstore "github.com/gosuda/techtransfer/internal/store/redis"
)

// Sink receives every persisted record after the store accepted it.
// Delivery is best effort: errors are logged and counted, never returned to
// the mutation.
type Sink interface {
	Name() string
	Publish(ctx context.Context, rec *domain.AuditRecord) error
}

// Publisher is the pub/sub surface FeedSink writes to.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// FeedSink fans records out to the live audit feed channels.
type FeedSink struct {
	pub Publisher
}

func NewFeedSink(pub Publisher) *FeedSink {
	return &FeedSink{pub: pub}
}

func (s *FeedSink) Name() string { return "feed" }

func (s *FeedSink) Publish(ctx context.Context, rec *domain.AuditRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("audit.FeedSink.Publish: marshal: %w", err)
	}

	channels := []string{redisstore.AuditChannel()}
	if subject, ok := rec.Subject(); ok {
		channels = append(channels, redisstore.SubjectChannel(subject))
	}
	if actor, ok := rec.ActorRef(); ok {
		channels = append(channels, redisstore.ActorChannel(actor))
	}

	for _, ch := range channels {
		if err := s.pub.Publish(ctx, ch, payload); err != nil {
			return fmt.Errorf("audit.FeedSink.Publish: %s: %w", ch, err)
		}
	}
	return nil
}

// ErrSinkQueueFull is returned by AsyncSink.Publish when the delivery queue
// has no room left.
var ErrSinkQueueFull = errors.New("audit: sink queue full") //nolint:gochecknoglobals // sentinel error

// AsyncSink moves delivery to a slow sink off the request path. Publish
// only enqueues; Run delivers in the background until its context ends.
// Records still queued at that point are dropped.
type AsyncSink struct {
	sink  Sink
	queue chan *domain.AuditRecord
}

func NewAsyncSink(sink Sink, size int) *AsyncSink {
	return &AsyncSink{sink: sink, queue: make(chan *domain.AuditRecord, size)}
}

func (s *AsyncSink) Name() string { return s.sink.Name() }

func (s *AsyncSink) Publish(_ context.Context, rec *domain.AuditRecord) error {
	if w, ok := s.sink.(interface{ Watches(domain.AuditAction) bool }); ok && !w.Watches(rec.Action) {
		return nil
	}
	select {
	case s.queue <- rec:
		return nil
	default:
		return fmt.Errorf("audit.AsyncSink.Publish: %s: %w", s.sink.Name(), ErrSinkQueueFull)
	}
}

// Run delivers queued records one at a time.
func (s *AsyncSink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-s.queue:
			if err := s.sink.Publish(ctx, rec); err != nil {
				log.Warn().Err(err).
					Str("sink", s.sink.Name()).
					Int64("audit_id", rec.ID).
					Msg("audit: sink delivery failed")
			}
		}
	}
}
