package catalog

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// CatalogError reports an invalid catalog document or template body.
type CatalogError struct {
	Template string
	Field    string
	Message  string
	Pos      token.Pos
}

func (e *CatalogError) Error() string {
	var prefix string
	if e.Pos.IsValid() {
		prefix = fmt.Sprintf("%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	switch {
	case e.Template != "" && e.Field != "":
		return fmt.Sprintf("%stemplate %s: %s: %s", prefix, e.Template, e.Field, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s%s: %s", prefix, e.Field, e.Message)
	default:
		return prefix + e.Message
	}
}
