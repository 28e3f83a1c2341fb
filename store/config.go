package store

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultMaxEntryBytes is the default serialized-size ceiling for a single
// record, 16 MiB. It mirrors the per-document limit the original storage
// engine imposed.
const DefaultMaxEntryBytes = 16 << 20

// Config holds the storage configuration for the response cache.
type Config struct {
	// Driver selects the storage backend, DriverSQLite or DriverPostgres.
	Driver string

	// DSN is the driver-specific connection string. For SQLite this is a
	// file path or file: URI; for Postgres a connection URL or key=value
	// string.
	DSN string

	// MaxEntryBytes is the hard ceiling on a record's serialized payload
	// plus details. Writes above it fail with ErrEntryTooLarge.
	MaxEntryBytes int
}

// DefaultConfig returns a Config populated with sensible defaults: a local
// SQLite database and the default size ceiling.
func DefaultConfig() Config {
	return Config{
		Driver:        DriverSQLite,
		DSN:           "file:response_cache.db",
		MaxEntryBytes: DefaultMaxEntryBytes,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.MaxEntryBytes, validation.Required, validation.Min(1)),
	)
}
