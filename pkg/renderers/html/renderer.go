package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbind/pkg/forms"
	"github.com/goliatone/go-formbind/pkg/render"
	rendertemplate "github.com/goliatone/go-formbind/pkg/render/template"
	"github.com/goliatone/go-formbind/pkg/render/template/pongo"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	submitLabel      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithSubmitLabel overrides the submit button text. Defaults to "Submit".
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			cfg.submitLabel = trimmed
		}
	}
}

// Renderer produces server-rendered HTML forms. Descriptions may carry HTML
// and are sanitised before they reach the template.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	sanitizer   *bluemonday.Policy
	submitLabel string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:  TemplatesFS(),
		submitLabel: "Submit",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:   renderer,
		sanitizer:   bluemonday.UGCPolicy(),
		submitLabel: cfg.submitLabel,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form markup. RenderOptions supply per-request state:
// bound values, validation errors, hidden fields, and method overrides.
func (r *Renderer) Render(_ context.Context, form forms.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	method, hidden := resolveMethod(form, options)

	fields := make([]map[string]any, 0, len(form.Fields))
	for _, field := range form.Fields {
		fields = append(fields, r.fieldContext(field, options))
	}

	hiddenFields := make([]map[string]any, 0, len(hidden))
	for _, field := range render.SortedHiddenFields(hidden) {
		hiddenFields = append(hiddenFields, map[string]any{
			"name":  field.Name,
			"value": field.Value,
		})
	}

	result, err := r.templates.RenderTemplate("templates/form.html", map[string]any{
		"form": map[string]any{
			"name":        form.Name,
			"summary":     form.Summary,
			"description": r.sanitize(form.Description),
		},
		"action":        resolveAction(form, options),
		"method":        method,
		"fields":        fields,
		"hidden_fields": hiddenFields,
		"form_errors":   options.FormErrors,
		"submit_label":  r.submitLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) fieldContext(field forms.Field, options render.RenderOptions) map[string]any {
	value, hasValue := options.Values[field.Name]

	ctx := map[string]any{
		"name":        field.Name,
		"type":        string(field.Type),
		"label":       fieldLabel(field),
		"required":    field.Required,
		"placeholder": field.Placeholder,
		"description": r.sanitize(field.Description),
		"errors":      options.Errors[field.Name],
	}

	switch {
	case field.Type == forms.FieldTypeBoolean:
		ctx["control"] = "checkbox"
		ctx["checked"] = isTruthy(value)
	case len(field.Enum) > 0:
		ctx["control"] = "select"
		ctx["multiple"] = field.Type == forms.FieldTypeArray
		ctx["options"] = enumStrings(field.Enum)
		ctx["selected"] = selectedStrings(value, hasValue, field.Default)
	default:
		ctx["control"] = controlOverride(field)
		ctx["input_type"] = inputType(field)
		ctx["value"] = displayValue(value, hasValue, field.Default)
		if field.Type == forms.FieldTypeNumber {
			ctx["step"] = "any"
		}
	}

	return ctx
}

func (r *Renderer) sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return r.sanitizer.Sanitize(raw)
}

func fieldLabel(field forms.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return forms.DefaultLabeler(field.Name)
}

func resolveAction(form forms.Form, options render.RenderOptions) string {
	if options.Action != "" {
		return options.Action
	}
	return form.Action
}

// resolveMethod maps PATCH/PUT/DELETE onto a POST submission plus a hidden
// _method input so plain browsers can submit them.
func resolveMethod(form forms.Form, options render.RenderOptions) (string, map[string]string) {
	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = strings.ToUpper(strings.TrimSpace(form.Method))
	}
	if method == "" {
		method = "POST"
	}

	hidden := options.Hidden
	if method != "GET" && method != "POST" {
		hidden = render.MergeHiddenFields(hidden, render.MethodOverride(method))
		method = "POST"
	}
	return method, hidden
}

func controlOverride(field forms.Field) string {
	if field.Metadata != nil && field.Metadata["widget"] == "textarea" {
		return "textarea"
	}
	return "input"
}

func inputType(field forms.Field) string {
	switch field.Type {
	case forms.FieldTypeInteger, forms.FieldTypeNumber:
		return "number"
	default:
		if field.Metadata != nil {
			switch field.Metadata["widget"] {
			case "password":
				return "password"
			case "email":
				return "email"
			}
		}
		return "text"
	}
}

func isTruthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "on" || v == "1"
	default:
		return false
	}
}

func enumStrings(enum []any) []string {
	out := make([]string, 0, len(enum))
	for _, value := range enum {
		out = append(out, fmt.Sprint(value))
	}
	return out
}

func selectedStrings(value any, hasValue bool, fallback any) []string {
	if !hasValue {
		if fallback == nil {
			return nil
		}
		value = fallback
	}

	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return v
	default:
		return []string{fmt.Sprint(v)}
	}
}

func displayValue(value any, hasValue bool, fallback any) string {
	if !hasValue {
		if fallback == nil {
			return ""
		}
		value = fallback
	}
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
