package forms

import (
	"fmt"

	"github.com/goliatone/go-formbind/pkg/argspec"
)

// BuildOption customises FromFunc.
type BuildOption func(*buildConfig)

type buildConfig struct {
	excluded map[string]struct{}
	labeler  Labeler
	method   string
	action   string
	name     string
}

// WithExcluded skips the named arguments when deriving fields. Views use this
// for arguments they supply themselves (request-scoped objects and the like).
func WithExcluded(names ...string) BuildOption {
	return func(cfg *buildConfig) {
		for _, name := range names {
			cfg.excluded[name] = struct{}{}
		}
	}
}

// WithLabeler overrides the label derivation for fields without an explicit
// label.
func WithLabeler(labeler Labeler) BuildOption {
	return func(cfg *buildConfig) {
		if labeler != nil {
			cfg.labeler = labeler
		}
	}
}

// WithMethod sets the form submission method.
func WithMethod(method string) BuildOption {
	return func(cfg *buildConfig) { cfg.method = method }
}

// WithAction sets the form submission target.
func WithAction(action string) BuildOption {
	return func(cfg *buildConfig) { cfg.action = action }
}

// WithName overrides the form name derived from the spec.
func WithName(name string) BuildOption {
	return func(cfg *buildConfig) { cfg.name = name }
}

// FromFunc derives a Form from an argument spec: one field per declared
// argument in declaration order, carrying the argument's kind, label,
// description, default, and enum. Arguments with an object kind cannot be
// rendered as flat fields and must be excluded or supplied as defaults.
func FromFunc(fn *argspec.Func, options ...BuildOption) (Form, error) {
	if fn == nil {
		return Form{}, fmt.Errorf("forms: argument spec is required")
	}

	cfg := buildConfig{
		excluded: make(map[string]struct{}),
		labeler:  DefaultLabeler,
		method:   "POST",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	form := Form{
		Name:   fn.Name(),
		Method: cfg.method,
		Action: cfg.action,
	}
	if cfg.name != "" {
		form.Name = cfg.name
	}

	for _, arg := range fn.Args() {
		if _, skip := cfg.excluded[arg.Name]; skip {
			continue
		}
		fieldType, err := fieldTypeForKind(arg)
		if err != nil {
			return Form{}, err
		}

		field := Field{
			Name:        arg.Name,
			Type:        fieldType,
			Required:    arg.Required,
			Label:       arg.Label,
			Placeholder: arg.Placeholder,
			Description: arg.Description,
			Default:     arg.Default,
			Metadata:    cloneStringMap(arg.Metadata),
		}
		if field.Label == "" {
			field.Label = cfg.labeler(arg.Name)
		}
		if len(arg.Enum) > 0 {
			field.Enum = append([]any(nil), arg.Enum...)
		}
		form.Fields = append(form.Fields, field)
	}

	return form, nil
}

func fieldTypeForKind(arg argspec.Arg) (FieldType, error) {
	switch arg.Kind {
	case argspec.KindString, "":
		return FieldTypeString, nil
	case argspec.KindInteger:
		return FieldTypeInteger, nil
	case argspec.KindNumber:
		return FieldTypeNumber, nil
	case argspec.KindBoolean:
		return FieldTypeBoolean, nil
	case argspec.KindArray:
		return FieldTypeArray, nil
	default:
		return "", fmt.Errorf("forms: argument %q has kind %q which cannot be rendered as a flat field; exclude it or supply it as a default", arg.Name, arg.Kind)
	}
}

func cloneStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
