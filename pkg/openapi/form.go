package openapi

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-formbind/pkg/forms"
)

// FormOption adjusts how FormFromOperation maps an operation onto a form.
type FormOption func(*formConfig)

type formConfig struct {
	excluded map[string]struct{}
	labeler  forms.Labeler
}

// WithExcludedProperties skips the named request body properties. Use it for
// values the caller supplies out of band, such as identifiers from the URL.
func WithExcludedProperties(names ...string) FormOption {
	return func(cfg *formConfig) {
		if cfg.excluded == nil {
			cfg.excluded = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			cfg.excluded[name] = struct{}{}
		}
	}
}

// WithLabeler overrides the label derivation for properties without a title.
func WithLabeler(labeler forms.Labeler) FormOption {
	return func(cfg *formConfig) {
		if labeler != nil {
			cfg.labeler = labeler
		}
	}
}

// FormFromOperation converts an OpenAPI operation's request body into a form.
// Only flat object bodies are supported: nested objects must be excluded via
// WithExcludedProperties or flattened in the document itself.
func FormFromOperation(op Operation, options ...FormOption) (forms.Form, error) {
	cfg := formConfig{labeler: forms.DefaultLabeler}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	body := op.RequestBody
	if body.Type != "" && body.Type != "object" {
		return forms.Form{}, fmt.Errorf("openapi: operation %q request body is %q, want object", op.ID, body.Type)
	}

	required := make(map[string]struct{}, len(body.Required))
	for _, name := range body.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	form := forms.Form{
		Name:        op.ID,
		Method:      op.Method,
		Action:      op.Path,
		Summary:     op.Summary,
		Description: op.Description,
	}
	if form.Method == "" {
		form.Method = "POST"
	}

	for _, name := range names {
		if _, skip := cfg.excluded[name]; skip {
			continue
		}
		property := body.Properties[name]

		field, err := fieldFromSchema(name, property, cfg.labeler)
		if err != nil {
			return forms.Form{}, fmt.Errorf("openapi: operation %q: %w", op.ID, err)
		}
		if _, ok := required[name]; ok {
			field.Required = true
		}
		form.Fields = append(form.Fields, field)
	}

	return form, nil
}

func fieldFromSchema(name string, property Schema, labeler forms.Labeler) (forms.Field, error) {
	fieldType, err := fieldTypeForSchema(name, property)
	if err != nil {
		return forms.Field{}, err
	}

	field := forms.Field{
		Name:        name,
		Type:        fieldType,
		Label:       labeler(name),
		Description: property.Description,
		Default:     property.Default,
		Enum:        append([]any(nil), property.Enum...),
		Validations: rulesFromSchema(property),
	}
	if len(field.Enum) == 0 {
		field.Enum = nil
	}
	if property.Format == "password" {
		field.Metadata = map[string]string{"widget": "password"}
	}
	return field, nil
}

func fieldTypeForSchema(name string, property Schema) (forms.FieldType, error) {
	switch property.Type {
	case "string":
		return forms.FieldTypeString, nil
	case "integer":
		return forms.FieldTypeInteger, nil
	case "number":
		return forms.FieldTypeNumber, nil
	case "boolean":
		return forms.FieldTypeBoolean, nil
	case "array":
		if property.Items != nil && property.Items.Type == "object" {
			return "", fmt.Errorf("property %q: arrays of objects are not supported; exclude it", name)
		}
		return forms.FieldTypeArray, nil
	case "object", "":
		return "", fmt.Errorf("property %q has unsupported type %q; exclude it", name, property.Type)
	default:
		return "", fmt.Errorf("property %q has unsupported type %q; exclude it", name, property.Type)
	}
}

func rulesFromSchema(property Schema) []forms.ValidationRule {
	var rules []forms.ValidationRule
	if property.Minimum != nil {
		rules = append(rules, forms.Min(strconv.FormatFloat(*property.Minimum, 'f', -1, 64)))
	}
	if property.Maximum != nil {
		rules = append(rules, forms.Max(strconv.FormatFloat(*property.Maximum, 'f', -1, 64)))
	}
	if property.MinLength != nil {
		rules = append(rules, forms.MinLength(strconv.Itoa(*property.MinLength)))
	}
	if property.MaxLength != nil {
		rules = append(rules, forms.MaxLength(strconv.Itoa(*property.MaxLength)))
	}
	if property.Pattern != "" {
		rules = append(rules, forms.Pattern(property.Pattern))
	}
	return rules
}
