package m_outbox

// Field name constants for the outbox_events table.
const (
	TableName = "outbox_events"

	EventID     = "event_id"
	EventType   = "event_type"
	AggregateID = "aggregate_id"
	Payload     = "payload"
	Status      = "status"
	CreatedAt   = "created_at"
)

// Event types
const (
	EventRecordSynced  = "record.synced"
	EventRecordAdded   = "record.added"
	EventRecordRemoved = "record.removed"
)

// Event status constants
const (
	StatusPending = "pending"
)

// SpannerDDL creates the outbox table and its created_at index.
var SpannerDDL = []string{
	`CREATE TABLE IF NOT EXISTS outbox_events (
	event_id STRING(36) NOT NULL,
	event_type STRING(50) NOT NULL,
	aggregate_id STRING(255) NOT NULL,
	payload JSON NOT NULL,
	status STRING(20) NOT NULL,
	created_at TIMESTAMP NOT NULL OPTIONS (allow_commit_timestamp = true),
) PRIMARY KEY (event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_created_at ON outbox_events(created_at)`,
}
