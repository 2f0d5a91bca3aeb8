package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abv-ps/shop-api/internal/audit/domain"
	"github.com/abv-ps/shop-api/internal/audit/store"
	"github.com/abv-ps/shop-api/internal/metrics"
)

// EventLogger writes structured audit events into the column log store and
// exposes query and retention operations. The synchronous path blocks on the
// storage round trip; the asynchronous path hands the same write to a bounded
// worker pool so request handlers are not held on the driver.
type EventLogger struct {
	conn       store.Conn
	defaultTTL time.Duration
	log        zerolog.Logger

	jobs chan job
	wg   sync.WaitGroup

	closeOnce sync.Once
}

type job struct {
	userID    string
	eventType string
	metadata  string
	ttl       time.Duration
	pending   *Pending
}

// Pending is the handle for an asynchronous write. The event id and
// timestamp are assigned inside the offloaded unit of work, so two
// concurrent submissions never race on generation.
type Pending struct {
	done chan struct{}
	id   uuid.UUID
	err  error
}

// Done is closed once the offloaded write has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Result blocks until the write finishes and returns its outcome.
func (p *Pending) Result() (uuid.UUID, error) {
	<-p.done
	return p.id, p.err
}

// NewEventLogger creates an event logger and starts its worker pool.
// defaultTTL falls back to 24h, workers to 4 and queueSize to 256.
func NewEventLogger(conn store.Conn, defaultTTL time.Duration, workers, queueSize int) *EventLogger {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	l := &EventLogger{
		conn:       conn,
		defaultTTL: defaultTTL,
		log:        zerolog.Nop(),
		jobs:       make(chan job, queueSize),
	}
	l.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go l.worker()
	}
	return l
}

func (l *EventLogger) SetLogger(log zerolog.Logger) { l.log = log }

// Close drains the async queue and stops the workers. The underlying
// connection is owned by the caller and is not closed here.
func (l *EventLogger) Close() {
	l.closeOnce.Do(func() {
		close(l.jobs)
		l.wg.Wait()
	})
}

func (l *EventLogger) worker() {
	defer l.wg.Done()
	for j := range l.jobs {
		metrics.SetAuditQueueDepth(len(l.jobs))
		id, err := l.createLog(context.Background(), j.userID, j.eventType, j.metadata, j.ttl, "async")
		j.pending.id = id
		j.pending.err = err
		close(j.pending.done)
	}
}

// CreateLog synchronously inserts one event row. The event id and timestamp
// are generated locally inside the call; a failed insert leaves no visible
// row. ttl <= 0 applies the configured default.
func (l *EventLogger) CreateLog(ctx context.Context, userID, eventType, metadata string, ttl time.Duration) (uuid.UUID, error) {
	return l.createLog(ctx, userID, eventType, metadata, ttl, "sync")
}

func (l *EventLogger) createLog(ctx context.Context, userID, eventType, metadata string, ttl time.Duration, path string) (uuid.UUID, error) {
	eventID := uuid.New()
	ts := time.Now().UTC()
	if ttl <= 0 {
		ttl = l.defaultTTL
	}
	err := l.conn.Exec(ctx, store.InsertLog, eventID.String(), userID, eventType, ts, metadata, int(ttl.Seconds()))
	if err != nil {
		metrics.IncAuditWrite(path, "failure")
		l.log.Error().Err(err).Str("user_id", userID).Str("event_type", eventType).Msg("failed to create log")
		return uuid.Nil, fmt.Errorf("failed to create log for user %s: %w", userID, err)
	}
	metrics.IncAuditWrite(path, "success")
	l.log.Info().Str("user_id", userID).Str("event_type", eventType).Stringer("event_id", eventID).Msg("created log")
	return eventID, nil
}

// CreateLogAsync queues the insert on the worker pool and returns a handle.
// When the queue is full the submit blocks until a worker frees a slot; that
// back-pressure is the only coordination between concurrent submissions.
func (l *EventLogger) CreateLogAsync(userID, eventType, metadata string, ttl time.Duration) *Pending {
	p := &Pending{done: make(chan struct{})}
	l.jobs <- job{userID: userID, eventType: eventType, metadata: metadata, ttl: ttl, pending: p}
	metrics.SetAuditQueueDepth(len(l.jobs))
	return p
}

// Record is the fire-and-forget sink used by the shop handlers. Failures are
// logged by the worker and dropped.
func (l *EventLogger) Record(userID, eventType, metadata string) {
	_ = l.CreateLogAsync(userID, eventType, metadata, 0)
}

// RecordWait queues the insert on the worker pool and waits for its outcome.
// The write still runs offloaded; only the result crosses back. Session
// mutations use this so an audit failure surfaces to their caller.
func (l *EventLogger) RecordWait(userID, eventType, metadata string) error {
	_, err := l.CreateLogAsync(userID, eventType, metadata, 0).Result()
	return err
}

// RecentEventsByType returns all events of the given type newer than
// now-hours (strict lower bound), fully materialized. hours defaults to 24.
func (l *EventLogger) RecentEventsByType(ctx context.Context, eventType string, hours int) ([]domain.Event, error) {
	if hours <= 0 {
		hours = 24
	}
	lower := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	events, err := l.conn.SelectEvents(ctx, store.SelectRecentEvents, eventType, lower)
	if err != nil {
		l.log.Error().Err(err).Str("event_type", eventType).Msg("failed to query recent events")
		return nil, fmt.Errorf("failed to query recent %s events: %w", eventType, err)
	}
	return events, nil
}

// UpdateMetadata blindly rewrites the metadata of an event. The store
// upserts, so updating a row the TTL already removed is indistinguishable
// from a successful update.
func (l *EventLogger) UpdateMetadata(ctx context.Context, eventID uuid.UUID, metadata string) error {
	if err := l.conn.Exec(ctx, store.UpdateMetadata, metadata, eventID.String()); err != nil {
		l.log.Error().Err(err).Stringer("event_id", eventID).Msg("failed to update metadata")
		return fmt.Errorf("failed to update metadata for event %s: %w", eventID, err)
	}
	l.log.Info().Stringer("event_id", eventID).Msg("updated metadata")
	return nil
}

// DeleteOldLogs scans every row and deletes those older than now-days,
// returning the number removed. Rows the store's own TTL already dropped are
// simply not seen. O(total rows); not safe to run concurrently with itself.
func (l *EventLogger) DeleteOldLogs(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = 7
	}
	threshold := time.Now().UTC().AddDate(0, 0, -days)
	refs, err := l.conn.SelectRefs(ctx, store.SelectAllLogs)
	if err != nil {
		l.log.Error().Err(err).Msg("failed to scan logs for retention sweep")
		return 0, fmt.Errorf("failed to scan logs: %w", err)
	}
	deleted := 0
	for _, ref := range refs {
		if ref.Timestamp.Before(threshold) {
			if err := l.conn.Exec(ctx, store.DeleteLog, ref.EventID.String()); err != nil {
				l.log.Error().Err(err).Stringer("event_id", ref.EventID).Msg("failed to delete old log")
				return deleted, fmt.Errorf("failed to delete log %s: %w", ref.EventID, err)
			}
			deleted++
		}
	}
	metrics.AddSweepDeleted(deleted)
	l.log.Info().Int("deleted", deleted).Int("days", days).Msg("retention sweep finished")
	return deleted, nil
}
