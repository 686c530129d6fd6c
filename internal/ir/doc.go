// Package ir provides the data model shared by every querygen stage.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the generation pipeline
// a one-way flow:
//
//	[enumerate] → GenerationCase → [clause] → ClauseSet → [render] → text → [assemble]
//
// Key constraints:
//   - GenerationCase values are immutable and produced only by the enumerator
//   - ClauseSet values are built fresh per case and never shared across cases
//   - Component type refs are positional (CD1..CDn, SCD1..SCDm), never user names
//   - Hashes use canonical JSON with domain separation so runs are comparable
package ir
