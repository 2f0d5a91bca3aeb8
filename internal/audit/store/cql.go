package store

// CQL statements for the append-only event log. The row TTL is applied at
// insert time; the retention sweep is a separate, coarser cleanup that scans
// ids and timestamps and deletes by primary key.
const (
	InsertLog = `INSERT INTO logs (event_id, user_id, event_type, timestamp, metadata)
    VALUES (?, ?, ?, ?, ?) USING TTL ?`

	SelectRecentEvents = `SELECT event_id, user_id, event_type, timestamp, metadata FROM logs
    WHERE event_type = ? AND timestamp > ? ALLOW FILTERING`

	UpdateMetadata = `UPDATE logs SET metadata = ? WHERE event_id = ?`

	SelectAllLogs = `SELECT event_id, timestamp FROM logs`

	DeleteLog = `DELETE FROM logs WHERE event_id = ?`
)
