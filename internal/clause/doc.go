// Package clause turns a GenerationCase into the fragments templates need.
//
// Build is pure: no I/O, no shared state, one fresh ClauseSet per call.
//
// Type order is fixed as CD1..CDt then SCD1..SCDs. The same order is used for
// type parameters, query constraints and arguments so generated signatures
// are reproducible run to run.
//
// Shared filter split at FilterThreshold:
//
//	index <  threshold  → unboundSCDn bool   (placeholder, never read)
//	index >= threshold  → scdn SCDn          (passed to q.SetSharedFilter)
//
// Two helpers with the same (tags, shared, whereable) differ only in which
// shared types they filter by; the placeholders keep their argument type
// sequences distinct.
package clause
