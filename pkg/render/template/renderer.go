package template

import (
	"io"
)

// TemplateRenderer is the seam renderers rely on. Render dispatches between
// named templates and inline template content; RenderString always treats its
// first argument as template source.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
