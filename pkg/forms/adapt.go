package forms

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formbind/pkg/argspec"
)

// Adapt binds a form to an argument spec so form validation behaves
// seamlessly with the spec's validation:
//
//   - lazy fields are resolved against the form plus the supplied default
//     arguments;
//   - every field gains a check that partially validates the spec with just
//     that field's value;
//   - the form gains a cleaner that partially validates the spec with the
//     default arguments merged under the cleaned data.
//
// Adaptation is additive; existing checks and cleaners are preserved. The
// default arguments are the values the view supplies when calling the spec
// (request-scoped objects and the like) and are available to lazy field
// loaders under their own names plus the form itself under "form".
func Adapt(ctx context.Context, form *Form, fn *argspec.Func, defaults map[string]any) error {
	if form == nil {
		return fmt.Errorf("forms: form is required")
	}
	if fn == nil {
		return fmt.Errorf("forms: argument spec is required")
	}

	loaderArgs := make(map[string]any, len(defaults)+1)
	for key, value := range defaults {
		loaderArgs[key] = value
	}
	loaderArgs["form"] = form

	for i := range form.Fields {
		if form.Fields[i].Lazy == nil {
			continue
		}
		loaded, err := form.Fields[i].Lazy.Load(ctx, loaderArgs)
		if err != nil {
			return fmt.Errorf("forms: load lazy field %q: %w", form.Fields[i].Name, err)
		}
		resolved, err := coerceLazyField(loaded)
		if err != nil {
			return fmt.Errorf("forms: lazy field %q: %w", form.Fields[i].Name, err)
		}
		if resolved.Name == "" {
			resolved.Name = form.Fields[i].Name
		}
		resolved.checks = form.Fields[i].checks
		form.Fields[i] = resolved
	}

	for i := range form.Fields {
		form.Fields[i].AddCheck(fieldCheck(fn, form.Fields[i].Name))
	}

	form.AddCleaner(func(ctx context.Context, cleaned map[string]any) error {
		merged := make(map[string]any, len(defaults)+len(cleaned))
		for key, value := range defaults {
			merged[key] = value
		}
		for key, value := range cleaned {
			merged[key] = value
		}
		return fn.ValidatePartial(ctx, merged)
	})

	return nil
}

// fieldCheck validates a single value through the spec: only validators that
// need nothing beyond this argument run.
func fieldCheck(fn *argspec.Func, name string) FieldCheck {
	return func(ctx context.Context, value any) error {
		return fn.ValidatePartial(ctx, map[string]any{name: value})
	}
}

func coerceLazyField(value any) (Field, error) {
	switch v := value.(type) {
	case Field:
		return v, nil
	case *Field:
		if v == nil {
			return Field{}, fmt.Errorf("loader returned nil field")
		}
		return *v, nil
	default:
		return Field{}, fmt.Errorf("loader returned %T, want forms.Field", value)
	}
}
