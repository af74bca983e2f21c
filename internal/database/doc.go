// Package database provides the optional PostgreSQL snapshot history store.
//
// The NDJSON log is the required durable record; the database keeps a
// queryable history of the same snapshots for dashboards. When disabled
// in config, nothing here is constructed.
package database
