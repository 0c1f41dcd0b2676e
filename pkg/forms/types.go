package forms

import (
	"context"

	"github.com/goliatone/go-formbind/pkg/argspec"
)

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
)

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// ValidationRule represents a single declarative constraint applied to a
// field. Numeric bounds and length limits encode their threshold in
// Params["value"] while pattern rules preserve the expression in
// Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Min constrains numeric fields to values >= threshold.
func Min(threshold string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMin, Params: map[string]string{"value": threshold}}
}

// Max constrains numeric fields to values <= threshold.
func Max(threshold string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMax, Params: map[string]string{"value": threshold}}
}

// MinLength constrains string and array fields to a minimum length.
func MinLength(length string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMinLength, Params: map[string]string{"value": length}}
}

// MaxLength constrains string and array fields to a maximum length.
func MaxLength(length string) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMaxLength, Params: map[string]string{"value": length}}
}

// Pattern constrains string fields to a regular expression.
func Pattern(expr string) ValidationRule {
	return ValidationRule{Kind: ValidationRulePattern, Params: map[string]string{"pattern": expr}}
}

// FieldCheck validates a single bound value. Checks attached via Adapt call
// back into the argument spec's partial validation.
type FieldCheck func(ctx context.Context, value any) error

// Cleaner validates the whole cleaned-data map after every field passed. It
// may mutate the map to normalise values.
type Cleaner func(ctx context.Context, cleaned map[string]any) error

// Field models an individual input of a form. Forms are flat: fields map
// one-to-one onto function arguments.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Type        FieldType         `json:"type" yaml:"type"`
	Format      string            `json:"format,omitempty" yaml:"format,omitempty"`
	Required    bool              `json:"required" yaml:"required"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any               `json:"default,omitempty" yaml:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty" yaml:"enum,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty" yaml:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Lazy, when set, replaces the field definition at adapt time. The loader
	// receives the form under the "form" key plus the view's default
	// arguments, and must return a Field.
	Lazy argspec.Lazy `json:"-" yaml:"-"`

	checks []FieldCheck
}

// AddCheck appends a validation check to the field.
func (f *Field) AddCheck(check FieldCheck) {
	if check == nil {
		return
	}
	f.checks = append(f.checks, check)
}

// Checks returns the attached checks in attachment order.
func (f *Field) Checks() []FieldCheck {
	out := make([]FieldCheck, len(f.checks))
	copy(out, f.checks)
	return out
}

// Form is the top-level representation renderers and views consume.
type Form struct {
	Name        string            `json:"name" yaml:"name"`
	Action      string            `json:"action,omitempty" yaml:"action,omitempty"`
	Method      string            `json:"method,omitempty" yaml:"method,omitempty"`
	Summary     string            `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field           `json:"fields" yaml:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	cleaners []Cleaner
}

// Field looks up a field by name. The pointer stays valid until Fields is
// reallocated, so callers can attach checks in place.
func (f *Form) Field(name string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// AddCleaner appends a whole-form cleaner.
func (f *Form) AddCleaner(cleaner Cleaner) {
	if cleaner == nil {
		return
	}
	f.cleaners = append(f.cleaners, cleaner)
}

// Cleaners returns the attached cleaners in attachment order.
func (f *Form) Cleaners() []Cleaner {
	out := make([]Cleaner, len(f.cleaners))
	copy(out, f.cleaners)
	return out
}
