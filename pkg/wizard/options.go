package wizard

import (
	"strings"

	"github.com/goliatone/go-formbind/pkg/objects"
	"github.com/goliatone/go-formbind/pkg/render"
	"github.com/goliatone/go-formbind/pkg/render/template"
	"github.com/goliatone/go-formbind/pkg/views"
)

const (
	defaultRoutePath     = "/"
	defaultStepFieldName = "wizard_step"
	defaultSessionCookie = "formbind_wizard"
	defaultCSRFField     = "_csrf"
	defaultCSRFCookie    = "formbind_csrf"
	defaultFlashCookie   = "formbind_flash"
)

// Options configure a WizardView.
type Options struct {
	// RoutePath is where RegisterRoutes mounts the wizard, relative to the
	// base path.
	RoutePath string
	// SuccessURL receives the redirect after the bound function ran.
	// Required.
	SuccessURL string
	// SuccessMessage, when set, is rendered as a template over the full
	// argument set plus "results" and flashed on the redirect.
	SuccessMessage string
	// RaiseRunErrors propagates run failures as HTTP errors instead of
	// folding them into the final step's errors.
	RaiseRunErrors bool
	// Renderer produces each step's markup. Defaults to the HTML renderer.
	Renderer render.Renderer
	// Messages renders SuccessMessage. Defaults to the pongo engine.
	Messages template.TemplateRenderer

	Guard       views.GuardFunc
	DefaultArgs views.DefaultArgsFunc
	Object      *views.ObjectBinding
	Objects     *views.ObjectsBinding

	// Storage persists per-session progress. Defaults to in-memory.
	Storage Storage

	// StepFieldName is the hidden input naming the submitted step.
	StepFieldName string
	// SessionCookieName carries the wizard session id.
	SessionCookieName string

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
		RoutePath:         defaultRoutePath,
		StepFieldName:     defaultStepFieldName,
		SessionCookieName: defaultSessionCookie,
		CSRFFieldName:     defaultCSRFField,
		CSRFCookieName:    defaultCSRFCookie,
		FlashCookieName:   defaultFlashCookie,
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

	if strings.TrimSpace(opts.StepFieldName) == "" {
		opts.StepFieldName = defaultStepFieldName
	}
	if strings.TrimSpace(opts.SessionCookieName) == "" {
		opts.SessionCookieName = defaultSessionCookie
	}
	if strings.TrimSpace(opts.CSRFFieldName) == "" {
		opts.CSRFFieldName = defaultCSRFField
	}
	if strings.TrimSpace(opts.CSRFCookieName) == "" {
		opts.CSRFCookieName = defaultCSRFCookie
	}
	if strings.TrimSpace(opts.FlashCookieName) == "" {
		opts.FlashCookieName = defaultFlashCookie
	}

	return opts
}

// WithRoutePath sets the path RegisterRoutes mounts the wizard at.
func WithRoutePath(path string) OptionFn {
	return func(o *Options) { o.RoutePath = path }
}

// WithSuccessURL sets the redirect target after completion.
func WithSuccessURL(url string) OptionFn {
	return func(o *Options) { o.SuccessURL = strings.TrimSpace(url) }
}

// WithSuccessMessage sets the flashed message template.
func WithSuccessMessage(message string) OptionFn {
	return func(o *Options) { o.SuccessMessage = message }
}

// WithRaiseRunErrors propagates run failures instead of rendering them as
// step errors.
func WithRaiseRunErrors(raise bool) OptionFn {
	return func(o *Options) { o.RaiseRunErrors = raise }
}

// WithRenderer overrides the step renderer.
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
func WithGuard(guard views.GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

// WithDefaultArgs installs the per-request default argument callback.
func WithDefaultArgs(fn views.DefaultArgsFunc) OptionFn {
	return func(o *Options) { o.DefaultArgs = fn }
}

// WithObject resolves a single record from the "pk" query parameter into the
// "object" default argument on every wizard request.
func WithObject(qs objects.Queryset) OptionFn {
	return func(o *Options) { o.Object = &views.ObjectBinding{Queryset: qs} }
}

// WithObjectBinding resolves a single record with explicit names.
func WithObjectBinding(binding views.ObjectBinding) OptionFn {
	return func(o *Options) { o.Object = &binding }
}

// WithObjects resolves repeated "pk" query parameters into the "objects"
// default argument.
func WithObjects(qs objects.Queryset) OptionFn {
	return func(o *Options) { o.Objects = &views.ObjectsBinding{Queryset: qs} }
}

// WithObjectsBinding resolves multiple records with explicit names.
func WithObjectsBinding(binding views.ObjectsBinding) OptionFn {
	return func(o *Options) { o.Objects = &binding }
}

// WithStorage overrides the state store.
func WithStorage(storage Storage) OptionFn {
	return func(o *Options) {
		if storage != nil {
			o.Storage = storage
		}
	}
}

// WithSessionCookie overrides the session id cookie name.
func WithSessionCookie(name string) OptionFn {
	return func(o *Options) { o.SessionCookieName = strings.TrimSpace(name) }
}

// WithoutCSRF disables token issuance and verification.
func WithoutCSRF() OptionFn {
	return func(o *Options) { o.DisableCSRF = true }
}

// WithFlashCookie overrides the flash message cookie name.
func WithFlashCookie(name string) OptionFn {
	return func(o *Options) { o.FlashCookieName = strings.TrimSpace(name) }
}
