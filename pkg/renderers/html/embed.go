package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle for consumers that want
// the built-in markup out of the box, or as a starting point for overrides.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
