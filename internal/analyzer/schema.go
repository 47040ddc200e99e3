package analyzer

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/analyze_response.v1.json
var analyzeResponseSchemaV1 []byte

var (
	schemaOnce sync.Once
	schemaV1   *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaV1, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(analyzeResponseSchemaV1))
	})
	return schemaV1, schemaErr
}

// ValidateAnalyzeResponse valida un cuerpo JSON contra el contrato v1.
func ValidateAnalyzeResponse(body []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("load schema %s: %w", ContractVersion, err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Valid() {
		return nil
	}
	fields := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		fields = append(fields, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return &ContractError{Version: ContractVersion, Fields: fields}
}
