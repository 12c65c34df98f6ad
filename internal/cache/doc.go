// Package cache provides the SQLite-backed durable key-value cache the
// attendance store writes through to.
//
// Each key holds one text value. Every write replaces the slot and stamps it
// with:
//   - revision: a fresh UUIDv7, so consecutive writes are distinguishable
//   - checksum: SHA-256 of the value, verified on every read
//   - updated_at: RFC 3339 write time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// A single connection is kept open; SQLite allows only one writer.
package cache
