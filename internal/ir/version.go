package ir

// Version constants for the generator and its output.
const (
	// GeneratorVersion is recorded in the run ledger.
	GeneratorVersion = "0.1.0"

	// Generator is the tool name written into the artifact header.
	Generator = "querygen"
)
