package formbind

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formbind/pkg/argspec"
	"github.com/goliatone/go-formbind/pkg/forms"
	"github.com/goliatone/go-formbind/pkg/openapi"
	"github.com/goliatone/go-formbind/pkg/render"
	"github.com/goliatone/go-formbind/pkg/renderers/html"
)

// Form is the flat form model shared by renderers and views.
type Form = forms.Form

// Field is an individual form input.
type Field = forms.Field

// Func is a function spec: runner plus argument and validator metadata.
type Func = argspec.Func

// Arg declares one named argument of a Func.
type Arg = argspec.Arg

// RenderOptions describe per-request overrides renderers use to prefill
// values or surface validation errors.
type RenderOptions = render.RenderOptions

// FieldSubset selects fields by name or tag for partial rendering.
type FieldSubset = render.FieldSubset

// FormFromOpenAPI loads an OpenAPI document, finds the operation, and builds
// a form from its request body. It is the simplest entry point for
// schema-sourced forms.
func FormFromOpenAPI(ctx context.Context, source openapi.Source, operationID string, options ...openapi.FormOption) (forms.Form, error) {
	doc, err := NewLoader().Load(ctx, source)
	if err != nil {
		return forms.Form{}, fmt.Errorf("formbind: load document: %w", err)
	}

	operations, err := NewParser().Operations(ctx, doc)
	if err != nil {
		return forms.Form{}, fmt.Errorf("formbind: parse document: %w", err)
	}

	operation, ok := operations[operationID]
	if !ok {
		return forms.Form{}, fmt.Errorf("formbind: operation %q not found in %s", operationID, doc.Location())
	}

	return openapi.FormFromOperation(operation, options...)
}

// RenderHTML renders a form with the built-in HTML renderer. Callers that
// need custom templates or a different output should construct a renderer
// directly.
func RenderHTML(ctx context.Context, form forms.Form, options RenderOptions) ([]byte, error) {
	renderer, err := html.New()
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, form, options)
}
