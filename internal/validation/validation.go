// Package validation checks write inputs against JSON schemas before they are
// sent, producing the same ErrorDetail shape the API returns.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/elusion/briq-go/pkg/briq"
)

// Schema names one input shape.
type Schema string

// Input schemas.
const (
	WorkspaceCreate Schema = "workspace_create"
	WorkspaceUpdate Schema = "workspace_update"
	CampaignCreate  Schema = "campaign_create"
	CampaignUpdate  Schema = "campaign_update"
	InstantMessage  Schema = "instant_message"
	CampaignMessage Schema = "campaign_message"
)

// Inputs marshal with omitempty, so an empty required string arrives as a
// missing property and a whitespace-only one fails the nonBlank pattern.
const nonBlank = `{"type": "string", "pattern": "\\S"}`

var definitions = map[Schema]string{
	WorkspaceCreate: `{
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": ` + nonBlank + `,
			"description": {"type": "string"}
		}
	}`,
	WorkspaceUpdate: `{
		"type": "object",
		"properties": {
			"name": ` + nonBlank + `,
			"description": {"type": "string"}
		}
	}`,
	CampaignCreate: `{
		"type": "object",
		"required": ["workspace_id", "name"],
		"properties": {
			"workspace_id": ` + nonBlank + `,
			"name": ` + nonBlank + `,
			"description": {"type": "string"},
			"launch_date": {"type": "string"}
		}
	}`,
	CampaignUpdate: `{
		"type": "object",
		"properties": {
			"name": ` + nonBlank + `,
			"description": {"type": "string"},
			"status": {"enum": ["draft", "scheduled", "active", "completed", "cancelled"]},
			"launch_date": {"type": "string"}
		}
	}`,
	InstantMessage: `{
		"type": "object",
		"required": ["recipients", "content", "sender_id"],
		"properties": {
			"recipients": {"type": "array", "minItems": 1, "items": ` + nonBlank + `},
			"content": ` + nonBlank + `,
			"sender_id": ` + nonBlank + `
		}
	}`,
	CampaignMessage: `{
		"type": "object",
		"required": ["campaign_id", "group_id", "content", "sender_id"],
		"properties": {
			"campaign_id": ` + nonBlank + `,
			"group_id": ` + nonBlank + `,
			"content": ` + nonBlank + `,
			"sender_id": ` + nonBlank + `
		}
	}`,
}

// rootContext is the field gojsonschema reports for top-level objects.
const rootContext = "(root)"

var (
	compileOnce sync.Once
	compiled    map[Schema]*gojsonschema.Schema
	compileErr  error
)

func load() (map[Schema]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[Schema]*gojsonschema.Schema, len(definitions))

		for name, definition := range definitions {
			schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(definition))
			if err != nil {
				compileErr = fmt.Errorf("compiling %s schema: %w", name, err)

				return
			}

			compiled[name] = schema
		}
	})

	return compiled, compileErr
}

// Validate checks input against the named schema. It returns nil when the
// input is valid, *briq.InvalidArgumentError when input is nil, and
// *briq.ValidationError with StatusCode 0 otherwise.
func Validate(name Schema, input interface{}) error {
	if input == nil {
		return &briq.InvalidArgumentError{Argument: "input", Message: "input is required"}
	}

	schemas, err := load()
	if err != nil {
		return err
	}

	schema, ok := schemas[name]
	if !ok {
		return fmt.Errorf("%w: unknown schema %q", briq.ErrInvalidArgument, name)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return &briq.InvalidArgumentError{Argument: "input", Message: err.Error()}
	}

	if result.Valid() {
		return nil
	}

	details := make([]briq.ErrorDetail, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		details = append(details, toDetail(resultErr))
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Field < details[j].Field
	})

	return &briq.ValidationError{Message: "invalid " + string(name), Errors: details}
}

func toDetail(resultErr gojsonschema.ResultError) briq.ErrorDetail {
	field := resultErr.Field()

	switch resultErr.Type() {
	case "required":
		if property, ok := resultErr.Details()["property"].(string); ok {
			switch {
			case field == rootContext || field == "":
				field = property
			case field == property || strings.HasSuffix(field, "."+property):
				// already names the property
			default:
				field = field + "." + property
			}
		}

		return briq.ErrorDetail{Field: field, Message: field + " is required", Code: "required"}
	case "pattern":
		return briq.ErrorDetail{Field: field, Message: field + " must not be blank", Code: "blank"}
	case "array_min_items":
		return briq.ErrorDetail{Field: field, Message: field + " must contain at least one entry", Code: "required"}
	case "enum":
		return briq.ErrorDetail{Field: field, Message: resultErr.Description(), Code: "invalid_value"}
	default:
		return briq.ErrorDetail{Field: field, Message: resultErr.Description(), Code: resultErr.Type()}
	}
}
