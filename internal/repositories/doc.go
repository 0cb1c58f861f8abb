// Package repositories implements SQLite persistence for import state.
//
// Key Implementations:
//   - [MappingRepository] : insert-only source id to external id mappings, usable as the import mapping store
//   - [RunRepository] : import run history with status tracking and soft deletes
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
