// Package pg manages PostgreSQL connectivity for the platform: pooled
// connections with startup retry, goose schema migrations bridged onto pgx,
// and a health check closure for readiness probes.
//
// Error helpers translate driver-level failures (no rows, unique violations,
// foreign key violations) into questions the storage layer actually asks.
package pg
