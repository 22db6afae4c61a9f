// Package redis establishes Redis connectivity with startup retry and a
// health check closure. The platform uses Redis for the action-token replay
// guard, which needs a shared, expiring keyspace across processes.
package redis
