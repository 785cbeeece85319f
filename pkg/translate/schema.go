package translate

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// batchResponse is the shape every provider is asked to return for a batch.
type batchResponse struct {
	Translations []string `json:"translations" jsonschema_description:"Translated strings, one per input item, in input order"`
}

// contentAnalysis is the shape returned by AnalyzeContent.
type contentAnalysis struct {
	Issues     []string `json:"issues" jsonschema_description:"Problems found in the content, empty when none"`
	Suggestion string   `json:"suggestion" jsonschema_description:"Improved version of the content, or empty"`
	Score      int      `json:"score" jsonschema_description:"Content quality from 0 (unusable) to 100 (excellent)"`
}

// generateSchema reflects a response type into the JSON schema map the
// provider layer forwards to each backend.
func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	s := reflector.Reflect(v)

	raw, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("marshal reflected schema: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(fmt.Sprintf("unmarshal reflected schema: %v", err))
	}
	return m
}

var (
	batchResponseSchema   = generateSchema[batchResponse]()
	contentAnalysisSchema = generateSchema[contentAnalysis]()
)

// batchSchema returns the JSON schema for a translation batch response.
func batchSchema() map[string]any {
	return batchResponseSchema
}
