package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pos-onboarding-workers/internal/common/errors"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Reflector is shared by worker input schemas and agent tool parameters. Job
// variables carry the whole process scope, so extra properties are allowed.
var Reflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

// SchemaFor reflects the JSON schema of v, which should be a pointer to a struct.
func SchemaFor(v interface{}) *jsonschema.Schema {
	schema := Reflector.Reflect(v)
	schema.Version = ""
	return schema
}

// SchemaJSON reflects v and returns the encoded schema.
func SchemaJSON(v interface{}) []byte {
	data, err := json.Marshal(SchemaFor(v))
	if err != nil {
		panic(fmt.Sprintf("marshal schema for %T: %v", v, err))
	}
	return data
}

// ValidateInput validates job variables against a JSON schema document.
func ValidateInput(input map[string]interface{}, schema []byte) *ValidationResult {
	return validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(input))
}

// ValidateDocument validates any JSON-encodable value against a schema document.
func ValidateDocument(schema []byte, document interface{}) *ValidationResult {
	data, err := json.Marshal(document)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "ENCODING_FAILED",
		}}}
	}
	return validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(data))
}

func validate(schema, document gojsonschema.JSONLoader) *ValidationResult {
	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "SCHEMA_INVALID",
		}}}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldOf(e),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out
}

// fieldOf names the missing property for "required" errors, which
// gojsonschema reports against the parent object.
func fieldOf(e gojsonschema.ResultError) string {
	field := e.Field()
	if e.Type() != "required" {
		return field
	}
	property, ok := e.Details()["property"].(string)
	if !ok {
		return field
	}
	if field == "(root)" {
		return property
	}
	return field + "." + property
}

// Decode copies validated variables into a typed input struct.
func Decode(variables map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(variables)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Parse validates variables against schema and decodes them into out.
func Parse(variables map[string]interface{}, schema []byte, out interface{}) error {
	result := ValidateInput(variables, schema)
	if !result.Valid {
		return errors.NewValidationFailedError(fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()))
	}
	if err := Decode(variables, out); err != nil {
		return errors.NewInputParsingFailedError(err)
	}
	return nil
}

var activityNaming = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)

// ValidateActivityNaming checks the domain.subdomain.action convention.
func ValidateActivityNaming(activityID string) error {
	if !activityNaming.MatchString(activityID) {
		return fmt.Errorf("activity ID %q must follow format: domain.subdomain.action (e.g., kyc.identity.verify)", activityID)
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a field and its children.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
