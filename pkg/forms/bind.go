package forms

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbind/pkg/argspec"
)

// BindResult carries the outcome of binding submitted values against a form:
// typed cleaned data plus field-keyed and form-level error messages.
type BindResult struct {
	CleanedData map[string]any
	FieldErrors map[string][]string
	FormErrors  []string
}

// Valid reports whether binding produced no errors.
func (r *BindResult) Valid() bool {
	return len(r.FieldErrors) == 0 && len(r.FormErrors) == 0
}

// AddFieldError records a message against a field.
func (r *BindResult) AddFieldError(name, message string) {
	message = strings.TrimSpace(message)
	if name == "" || message == "" {
		return
	}
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string][]string)
	}
	r.FieldErrors[name] = append(r.FieldErrors[name], message)
}

// AddFormError records a form-level message.
func (r *BindResult) AddFormError(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	r.FormErrors = append(r.FormErrors, message)
}

// recordError routes a check or cleaner failure onto the result. Validation
// errors attributed to a known field land there; everything else becomes a
// form-level message.
func (r *BindResult) recordError(form *Form, fallbackField string, err error) {
	if verr, ok := argspec.AsValidation(err); ok {
		target := verr.Arg
		if target == "" {
			target = fallbackField
		}
		if target != "" {
			if _, exists := form.Field(target); exists {
				r.AddFieldError(target, verr.Error())
				return
			}
		}
		r.AddFormError(verr.Error())
		return
	}
	if fallbackField != "" {
		r.AddFieldError(fallbackField, err.Error())
		return
	}
	r.AddFormError(err.Error())
}

// Bind coerces submitted values into typed cleaned data, enforces each
// field's declarative rules, runs the attached field checks, and finally the
// whole-form cleaners. Cleaners only run when every field validated, matching
// the usual form clean contract. Integer fields bind to int64 and number
// fields to float64. A non-required field that was not submitted is omitted
// from the cleaned data unless it declares a default.
func (f *Form) Bind(ctx context.Context, values url.Values) (*BindResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &BindResult{CleanedData: make(map[string]any, len(f.Fields))}

	for i := range f.Fields {
		field := &f.Fields[i]
		rules, err := compileRules(*field)
		if err != nil {
			return nil, err
		}

		value, ok, bindErr := bindField(*field, rules, values)
		if bindErr != "" {
			result.AddFieldError(field.Name, bindErr)
			continue
		}
		if !ok {
			if field.Default != nil {
				result.CleanedData[field.Name] = field.Default
			}
			continue
		}

		failed := false
		for _, check := range field.checks {
			if err := check(ctx, value); err != nil {
				result.recordError(f, field.Name, err)
				failed = true
				break
			}
		}
		if !failed {
			result.CleanedData[field.Name] = value
		}
	}

	if !result.Valid() {
		return result, nil
	}

	for _, cleaner := range f.cleaners {
		if err := cleaner(ctx, result.CleanedData); err != nil {
			result.recordError(f, "", err)
		}
	}

	return result, nil
}

// bindField coerces the raw submission for a single field. It returns the
// typed value, whether a value was produced, and a validation message when the
// submission was present but invalid.
func bindField(field Field, rules ruleSet, values url.Values) (any, bool, string) {
	raw, present := values[field.Name]

	if field.Type == FieldTypeBoolean {
		if !present || len(raw) == 0 {
			return false, true, ""
		}
		return truthy(raw[0]), true, ""
	}

	if !present || len(raw) == 0 || (field.Type != FieldTypeArray && strings.TrimSpace(raw[0]) == "") {
		if field.Required {
			return nil, false, "required"
		}
		return nil, false, ""
	}

	switch field.Type {
	case FieldTypeInteger:
		parsed, err := strconv.ParseInt(strings.TrimSpace(raw[0]), 10, 64)
		if err != nil {
			return nil, false, "enter a whole number"
		}
		if err := rules.validateNumber(float64(parsed)); err != nil {
			return nil, false, err.Error()
		}
		return parsed, true, ""
	case FieldTypeNumber:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw[0]), 64)
		if err != nil {
			return nil, false, "enter a number"
		}
		if err := rules.validateNumber(parsed); err != nil {
			return nil, false, err.Error()
		}
		return parsed, true, ""
	case FieldTypeArray:
		items := make([]any, 0, len(raw))
		for _, item := range raw {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			if field.Required {
				return nil, false, "required"
			}
			return nil, false, ""
		}
		if err := rules.validateArray(items); err != nil {
			return nil, false, err.Error()
		}
		return items, true, ""
	default:
		value := raw[0]
		if err := rules.validateString(value); err != nil {
			return nil, false, err.Error()
		}
		return value, true, ""
	}
}

func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}

// Values renders cleaned data back into url.Values, the inverse of Bind for
// storage and revalidation flows.
func Values(cleaned map[string]any) url.Values {
	out := url.Values{}
	for name, value := range cleaned {
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				out.Add(name, fmt.Sprint(item))
			}
		case []string:
			for _, item := range v {
				out.Add(name, item)
			}
		case bool:
			if v {
				out.Set(name, "true")
			}
		case nil:
			// skip
		default:
			out.Set(name, fmt.Sprint(v))
		}
	}
	return out
}
