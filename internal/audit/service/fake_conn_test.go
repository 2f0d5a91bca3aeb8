package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abv-ps/shop-api/internal/audit/domain"
	"github.com/abv-ps/shop-api/internal/audit/store"
)

// fakeConn is an in-memory stand-in for the column log store. It applies
// the same upsert semantics: updates and deletes of missing rows succeed.
type fakeConn struct {
	mu      sync.Mutex
	rows    map[string]fakeRow
	lastTTL int
	failing error
}

type fakeRow struct {
	userID    string
	eventType string
	ts        time.Time
	metadata  string
}

func newFakeConn() *fakeConn {
	return &fakeConn{rows: make(map[string]fakeRow)}
}

func (f *fakeConn) Exec(_ context.Context, stmt string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return f.failing
	}
	switch stmt {
	case store.InsertLog:
		f.rows[args[0].(string)] = fakeRow{
			userID:    args[1].(string),
			eventType: args[2].(string),
			ts:        args[3].(time.Time),
			metadata:  args[4].(string),
		}
		f.lastTTL = args[5].(int)
	case store.UpdateMetadata:
		id := args[1].(string)
		row := f.rows[id] // zero row when absent: blind upsert
		row.metadata = args[0].(string)
		f.rows[id] = row
	case store.DeleteLog:
		delete(f.rows, args[0].(string))
	}
	return nil
}

func (f *fakeConn) SelectEvents(_ context.Context, _ string, args ...any) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return nil, f.failing
	}
	eventType := args[0].(string)
	lower := args[1].(time.Time)
	var events []domain.Event
	for id, row := range f.rows {
		if row.eventType == eventType && row.ts.After(lower) {
			events = append(events, domain.Event{
				EventID:   uuid.MustParse(id),
				UserID:    row.userID,
				EventType: row.eventType,
				Timestamp: row.ts,
				Metadata:  row.metadata,
			})
		}
	}
	return events, nil
}

func (f *fakeConn) SelectRefs(_ context.Context, _ string, _ ...any) ([]domain.EventRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing != nil {
		return nil, f.failing
	}
	var refs []domain.EventRef
	for id, row := range f.rows {
		refs = append(refs, domain.EventRef{EventID: uuid.MustParse(id), Timestamp: row.ts})
	}
	return refs, nil
}

func (f *fakeConn) Ping(context.Context) error { return nil }

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeConn) metadata(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id.String()].metadata
}

func (f *fakeConn) setTimestamp(id uuid.UUID, ts time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[id.String()]
	row.ts = ts
	f.rows[id.String()] = row
}

func (f *fakeConn) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = err
}
