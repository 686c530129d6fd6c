// Package store provides the SQLite-backed run ledger.
//
// Each generator run may be recorded with the hash of the artifact it wrote,
// the catalog it used and the size of the enumerated space. The ledger lets
// verify tell "artifact edited by hand" apart from "generator changed".
//
// Ordering uses the seq column (a logical counter), never wall-clock time.
// Every read orders by seq ASC, id ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
