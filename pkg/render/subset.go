package render

import (
	"strings"

	"github.com/goliatone/go-formbind/pkg/forms"
)

// FieldSubset selects which fields survive ApplySubset. Names match the field
// name exactly; tags match the comma-separated "tags" entry in a field's
// metadata. A field is kept when it matches any populated filter.
type FieldSubset struct {
	Names []string
	Tags  []string
}

// ApplySubset removes fields that do not match the supplied subset filters.
// When subset is empty or form is nil, the form is returned unchanged. Wizard
// steps use this to show a slice of a larger form without rebuilding it.
func ApplySubset(form *forms.Form, subset FieldSubset) {
	if form == nil {
		return
	}

	names := normaliseTokens(subset.Names)
	tags := normaliseTokens(subset.Tags)
	if len(names) == 0 && len(tags) == 0 {
		return
	}

	filtered := make([]forms.Field, 0, len(form.Fields))
	for _, field := range form.Fields {
		if subsetMatches(field, names, tags) {
			filtered = append(filtered, field)
		}
	}
	form.Fields = filtered
	if len(form.Fields) == 0 {
		form.Fields = nil
	}
}

func subsetMatches(field forms.Field, names, tags map[string]struct{}) bool {
	if len(names) > 0 {
		if _, ok := names[normaliseToken(field.Name)]; ok {
			return true
		}
	}
	if len(tags) > 0 && field.Metadata != nil {
		for _, tag := range strings.Split(field.Metadata["tags"], ",") {
			if _, ok := tags[normaliseToken(tag)]; ok {
				return true
			}
		}
	}
	return false
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := normaliseToken(value)
		if token == "" {
			continue
		}
		result[token] = struct{}{}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
