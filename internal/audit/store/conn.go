package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/abv-ps/shop-api/internal/audit/domain"
)

// Conn is the narrow slice of a CQL session the event logger needs. Tests
// substitute an in-memory fake.
type Conn interface {
	Exec(ctx context.Context, stmt string, args ...any) error
	SelectEvents(ctx context.Context, stmt string, args ...any) ([]domain.Event, error)
	SelectRefs(ctx context.Context, stmt string, args ...any) ([]domain.EventRef, error)
	Ping(ctx context.Context) error
	Close()
}

type cqlConn struct{ sess *gocql.Session }

// Dial connects to the Cassandra cluster and returns a Conn bound to the
// given keyspace.
func Dial(hosts []string, keyspace string) (Conn, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.Timeout = 5 * time.Second
	sess, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra: %w", err)
	}
	return &cqlConn{sess: sess}, nil
}

func (c *cqlConn) Exec(ctx context.Context, stmt string, args ...any) error {
	return c.sess.Query(stmt, args...).WithContext(ctx).Exec()
}

func (c *cqlConn) SelectEvents(ctx context.Context, stmt string, args ...any) ([]domain.Event, error) {
	iter := c.sess.Query(stmt, args...).WithContext(ctx).Iter()
	var (
		events    []domain.Event
		id        gocql.UUID
		userID    string
		eventType string
		ts        time.Time
		metadata  string
	)
	for iter.Scan(&id, &userID, &eventType, &ts, &metadata) {
		events = append(events, domain.Event{
			EventID:   uuid.UUID(id),
			UserID:    userID,
			EventType: eventType,
			Timestamp: ts,
			Metadata:  metadata,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *cqlConn) SelectRefs(ctx context.Context, stmt string, args ...any) ([]domain.EventRef, error) {
	iter := c.sess.Query(stmt, args...).WithContext(ctx).Iter()
	var (
		refs []domain.EventRef
		id   gocql.UUID
		ts   time.Time
	)
	for iter.Scan(&id, &ts) {
		refs = append(refs, domain.EventRef{EventID: uuid.UUID(id), Timestamp: ts})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return refs, nil
}

func (c *cqlConn) Ping(ctx context.Context) error {
	return c.sess.Query(`SELECT release_version FROM system.local`).WithContext(ctx).Exec()
}

func (c *cqlConn) Close() { c.sess.Close() }
