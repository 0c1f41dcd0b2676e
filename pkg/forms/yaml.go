package forms

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a form definition from YAML. Field names are required and
// must be unique; labels default to the humanised field name and the method
// defaults to POST. Used by the CLI and by callers that declare forms
// statically instead of deriving them from an argument spec.
func ParseYAML(raw []byte) (Form, error) {
	var form Form
	if err := yaml.Unmarshal(raw, &form); err != nil {
		return Form{}, fmt.Errorf("forms: parse yaml: %w", err)
	}

	if form.Name == "" {
		return Form{}, fmt.Errorf("forms: yaml definition is missing a name")
	}
	if form.Method == "" {
		form.Method = "POST"
	}

	seen := make(map[string]struct{}, len(form.Fields))
	for i := range form.Fields {
		name := form.Fields[i].Name
		if name == "" {
			return Form{}, fmt.Errorf("forms: yaml field %d is missing a name", i)
		}
		if _, dup := seen[name]; dup {
			return Form{}, fmt.Errorf("forms: yaml defines field %q twice", name)
		}
		seen[name] = struct{}{}

		if form.Fields[i].Type == "" {
			form.Fields[i].Type = FieldTypeString
		}
		if form.Fields[i].Label == "" {
			form.Fields[i].Label = DefaultLabeler(name)
		}
		if _, err := compileRules(form.Fields[i]); err != nil {
			return Form{}, err
		}
	}

	return form, nil
}
