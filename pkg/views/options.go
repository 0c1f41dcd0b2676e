package views

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-formbind/pkg/objects"
	"github.com/goliatone/go-formbind/pkg/render"
	"github.com/goliatone/go-formbind/pkg/render/template"
)

const (
	defaultRoutePath      = "/"
	defaultCSRFFieldName  = "_csrf"
	defaultCSRFCookieName = "formbind_csrf"
	defaultFlashCookie    = "formbind_flash"
)

// GuardFunc runs before the view handles a request. Returning an error aborts
// the request; errors implementing HTTPError choose the response status.
type GuardFunc func(r *http.Request) error

// DefaultArgsFunc supplies request-scoped arguments. They are merged under the
// cleaned form data when the bound function runs, and lazy field loaders see
// them during adaptation.
type DefaultArgsFunc func(r *http.Request) (map[string]any, error)

// ObjectBinding resolves a single record from a query parameter into a
// default argument. A missing or unknown key yields 404.
type ObjectBinding struct {
	Queryset objects.Queryset
	ArgName  string // defaults to "object"
	Param    string // defaults to "pk"
}

func (b ObjectBinding) normalized() ObjectBinding {
	if strings.TrimSpace(b.ArgName) == "" {
		b.ArgName = "object"
	}
	if strings.TrimSpace(b.Param) == "" {
		b.Param = "pk"
	}
	return b
}

// ObjectsBinding resolves repeated query parameters into a slice of records.
// Every key must resolve or the request yields 404.
type ObjectsBinding struct {
	Queryset objects.Queryset
	ArgName  string // defaults to "objects"
	Param    string // defaults to "pk"
}

func (b ObjectsBinding) normalized() ObjectsBinding {
	if strings.TrimSpace(b.ArgName) == "" {
		b.ArgName = "objects"
	}
	if strings.TrimSpace(b.Param) == "" {
		b.Param = "pk"
	}
	return b
}

// Options configure a FormView.
type Options struct {
	// RoutePath is where RegisterRoutes mounts the view, relative to the
	// base path.
	RoutePath string
	// SuccessURL receives the redirect after a successful run. Empty
	// redirects back to the request URI.
	SuccessURL string
	// SuccessMessage, when set, is rendered as a template over the call
	// arguments plus "results" and flashed on the redirect.
	SuccessMessage string
	// RaiseRunErrors propagates run failures as HTTP errors instead of
	// folding them into the form's errors.
	RaiseRunErrors bool
	// Renderer produces the form markup. Defaults to the HTML renderer.
	Renderer render.Renderer
	// Messages renders SuccessMessage. Defaults to the pongo engine.
	Messages template.TemplateRenderer

	Guard       GuardFunc
	DefaultArgs DefaultArgsFunc
	Object      *ObjectBinding
	Objects     *ObjectsBinding

	// DisableCSRF skips token issuance and verification.
	DisableCSRF     bool
	CSRFFieldName   string
	CSRFCookieName  string
	FlashCookieName string
}

// OptionFn mutates Options during construction.
type OptionFn func(*Options)

// DefaultOptions returns the baseline configuration.
func DefaultOptions() Options {
	return Options{
		RoutePath:       defaultRoutePath,
		CSRFFieldName:   defaultCSRFFieldName,
		CSRFCookieName:  defaultCSRFCookieName,
		FlashCookieName: defaultFlashCookie,
	}
}

// NewOptions applies fns over the defaults and normalises the result.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}

	opts.RoutePath = strings.TrimSpace(opts.RoutePath)
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	if !strings.HasPrefix(opts.RoutePath, "/") {
		opts.RoutePath = "/" + opts.RoutePath
	}

	if strings.TrimSpace(opts.CSRFFieldName) == "" {
		opts.CSRFFieldName = defaultCSRFFieldName
	}
	if strings.TrimSpace(opts.CSRFCookieName) == "" {
		opts.CSRFCookieName = defaultCSRFCookieName
	}
	if strings.TrimSpace(opts.FlashCookieName) == "" {
		opts.FlashCookieName = defaultFlashCookie
	}

	if opts.Object != nil {
		binding := opts.Object.normalized()
		opts.Object = &binding
	}
	if opts.Objects != nil {
		binding := opts.Objects.normalized()
		opts.Objects = &binding
	}

	return opts
}

// WithRoutePath sets the path RegisterRoutes mounts the view at.
func WithRoutePath(path string) OptionFn {
	return func(o *Options) { o.RoutePath = path }
}

// WithSuccessURL sets the redirect target after a successful run.
func WithSuccessURL(url string) OptionFn {
	return func(o *Options) { o.SuccessURL = strings.TrimSpace(url) }
}

// WithSuccessMessage sets the flashed message template. The template sees the
// call arguments plus the run's return value under "results".
func WithSuccessMessage(message string) OptionFn {
	return func(o *Options) { o.SuccessMessage = message }
}

// WithRaiseRunErrors propagates run failures instead of rendering them as
// form errors.
func WithRaiseRunErrors(raise bool) OptionFn {
	return func(o *Options) { o.RaiseRunErrors = raise }
}

// WithRenderer overrides the form renderer.
func WithRenderer(renderer render.Renderer) OptionFn {
	return func(o *Options) {
		if renderer != nil {
			o.Renderer = renderer
		}
	}
}

// WithMessageRenderer overrides the template renderer used for success
// messages.
func WithMessageRenderer(renderer template.TemplateRenderer) OptionFn {
	return func(o *Options) {
		if renderer != nil {
			o.Messages = renderer
		}
	}
}

// WithGuard installs a request guard.
func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

// WithDefaultArgs installs the per-request default argument callback.
func WithDefaultArgs(fn DefaultArgsFunc) OptionFn {
	return func(o *Options) { o.DefaultArgs = fn }
}

// WithObject resolves a single record from the "pk" query parameter into the
// "object" default argument.
func WithObject(qs objects.Queryset) OptionFn {
	return func(o *Options) { o.Object = &ObjectBinding{Queryset: qs} }
}

// WithObjectBinding resolves a single record with explicit names.
func WithObjectBinding(binding ObjectBinding) OptionFn {
	return func(o *Options) { o.Object = &binding }
}

// WithObjects resolves repeated "pk" query parameters into the "objects"
// default argument.
func WithObjects(qs objects.Queryset) OptionFn {
	return func(o *Options) { o.Objects = &ObjectsBinding{Queryset: qs} }
}

// WithObjectsBinding resolves multiple records with explicit names.
func WithObjectsBinding(binding ObjectsBinding) OptionFn {
	return func(o *Options) { o.Objects = &binding }
}

// WithoutCSRF disables token issuance and verification. Intended for tests
// and non-browser clients.
func WithoutCSRF() OptionFn {
	return func(o *Options) { o.DisableCSRF = true }
}

// WithCSRFNames overrides the hidden field and cookie names.
func WithCSRFNames(fieldName, cookieName string) OptionFn {
	return func(o *Options) {
		o.CSRFFieldName = strings.TrimSpace(fieldName)
		o.CSRFCookieName = strings.TrimSpace(cookieName)
	}
}

// WithFlashCookie overrides the flash message cookie name.
func WithFlashCookie(name string) OptionFn {
	return func(o *Options) { o.FlashCookieName = strings.TrimSpace(name) }
}
