package ir

import "fmt"

// CaseError reports a GenerationCase that violates an invariant.
type CaseError struct {
	Case    GenerationCase
	Field   string
	Message string
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("invalid case %s: %s %s", e.Case, e.Field, e.Message)
}
