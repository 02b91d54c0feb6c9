package harness

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// SchemaError reports a scenario document that does not match schema.cue.
type SchemaError struct {
	Path    string
	Details string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema violation:\n%s", e.Path, e.Details)
}

// validateSchema checks a decoded YAML document against #Scenario.
// The definition is closed, so unknown fields are rejected here as well as
// by the strict YAML decoder.
func validateSchema(path string, doc any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Scenario"))

	v := ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return &SchemaError{Path: path, Details: cueerrors.Details(err, nil)}
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Path: path, Details: strings.TrimSpace(cueerrors.Details(err, nil))}
	}
	return nil
}
