package database

import "time"

// Database Connection Pool Constants
const (
	// DefaultMinConnections is the minimum number of connections to maintain in the pool
	DefaultMinConnections = 2

	// DefaultMaxConnections is the pool ceiling used by the app entrypoint
	DefaultMaxConnections = 10

	// DefaultMaxConnIdleTime is how long an idle connection is kept around
	DefaultMaxConnIdleTime = 5 * time.Minute

	// DefaultMaxConnLifetime bounds the total lifetime of a pooled connection
	DefaultMaxConnLifetime = 30 * time.Minute
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Successfully connected to the database"
)
