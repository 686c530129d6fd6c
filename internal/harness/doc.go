// Package harness provides conformance testing for the query helper generator.
//
// A scenario names one generation case, the helpers the built-in (or a custom)
// catalog must render for it, and assertions over the rendered text. The
// harness builds the clause set, renders every applicable template and checks
// the result, so a catalog or clause change that alters a contract fails here
// with the case and template named.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	catalog: custom.cue            # optional, relative to the scenario file
//	case:
//	  tags: 1
//	  shared: 0
//	  whereable: 0
//	  filter_threshold: 0
//	expect:
//	  templates: [GetSingleton, EntityCount]
//	  functions: [GetSingletonT1S0W0U0, CountEntitiesT1S0W0U0]
//	  arguments:
//	    - {name: where, type: "func(CD1) bool", kind: predicate}
//	  filter: "q.SetSharedFilter(scd1)"   # or no_filter: true
//	assertions:
//	  - type: block_contains
//	    template: EntityArray
//	    text: "if where(cd1s.At(i))"
//
// # Assertion Types
//
//   - block_contains: the named template's block (or every block) contains text
//   - block_not_contains: the named template's block (or every block) lacks text
//   - block_count: exactly count blocks were rendered
//   - parses: the blocks, behind a package clause, parse as Go source
//
// # Golden Files
//
// RunWithGolden compares the rendered blocks with testdata/golden/<name>.golden.
// Regenerate with:
//
//	go test ./internal/harness -update
package harness
