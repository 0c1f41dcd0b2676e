package render

// RenderOptions describe per-request data that renderers use to customise
// their output without mutating the form itself.
type RenderOptions struct {
	// Method overrides the HTTP method declared by the form. Renderers are
	// responsible for translating unsupported verbs (PATCH/PUT/DELETE) into
	// browser-friendly POST submissions plus a hidden _method input.
	Method string
	// Action overrides the form's submission URL.
	Action string
	// Values pre-populates rendered controls, keyed by field name. Bound
	// values and raw submission strings are both accepted.
	Values map[string]any
	// Errors surfaces validation feedback keyed by field name. Form-level
	// messages live under FormErrors.
	Errors map[string][]string
	// FormErrors carries messages not attributable to a single field.
	FormErrors []string
	// Hidden fields are emitted alongside the visible controls, sorted by
	// name for deterministic output. CSRF tokens and method overrides are
	// the usual tenants.
	Hidden map[string]string
}
