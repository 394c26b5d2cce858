package scoring

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/analyze_response.json
var analyzeResponseSchema string

var compiledResponseSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(analyzeResponseSchema))
})

// validateResponse checks a 2xx body against the analyze response schema.
func validateResponse(body []byte) error {
	schema, err := compiledResponseSchema()
	if err != nil {
		return fmt.Errorf("load response schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &MalformedResponseError{Reason: "invalid json", Err: err}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, field+": "+desc.Description())
	}
	sort.Strings(problems)
	return &MalformedResponseError{Reason: strings.Join(problems, "; ")}
}
