package domain

// SourceLoad records one completed load of a transaction source into the raw event store.
// Corresponds to source_loads table in PostgreSQL.
type SourceLoad struct {
	SourceID   string // content hash of the source artifact
	SourceName string // file path or other human-readable name
	EventCount int
	LoadedAt   int64 // Unix seconds
}
