package wizard

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/goliatone/go-formbind/pkg/argspec"
	"github.com/goliatone/go-formbind/pkg/forms"
	"github.com/goliatone/go-formbind/pkg/render"
	"github.com/goliatone/go-formbind/pkg/render/template"
	"github.com/goliatone/go-formbind/pkg/render/template/pongo"
	"github.com/goliatone/go-formbind/pkg/renderers/html"
	"github.com/goliatone/go-formbind/pkg/views"
)

// WizardView is an http.Handler running a function across a sequence of form
// steps. GET renders the session's current step; POST binds the submitted
// step, stores its cleaned data, and advances. After the last included step
// every step is revalidated and the function runs with the combined data.
type WizardView struct {
	steps    []Step
	fn       *argspec.Func
	opts     Options
	storage  Storage
	renderer render.Renderer
	messages template.TemplateRenderer
}

// NewWizardView binds steps to fn. Step forms are cloned; a success URL is
// required because completion always redirects.
func NewWizardView(steps []Step, fn *argspec.Func, fns ...OptionFn) (*WizardView, error) {
	if fn == nil {
		return nil, fmt.Errorf("wizard: function is required")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("wizard: at least one step is required")
	}

	opts := NewOptions(fns...)
	if opts.SuccessURL == "" {
		return nil, fmt.Errorf("wizard: success URL is required")
	}

	owned := make([]Step, len(steps))
	seen := make(map[string]struct{}, len(steps))
	for i, step := range steps {
		name := strings.TrimSpace(step.Name)
		if name == "" {
			return nil, fmt.Errorf("wizard: step %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("wizard: duplicate step %q", name)
		}
		seen[name] = struct{}{}
		if len(step.Form.Fields) == 0 {
			return nil, fmt.Errorf("wizard: step %q has no fields", name)
		}
		owned[i] = step
		owned[i].Name = name
		owned[i].Form = step.Form.Clone()
	}

	storage := opts.Storage
	if storage == nil {
		storage = NewMemoryStorage()
	}

	renderer := opts.Renderer
	if renderer == nil {
		var err error
		renderer, err = html.New()
		if err != nil {
			return nil, fmt.Errorf("wizard: configure renderer: %w", err)
		}
	}

	messages := opts.Messages
	if messages == nil && opts.SuccessMessage != "" {
		// Only RenderString is used, so the loader directory never matters.
		engine, err := pongo.New(pongo.WithBaseDir("."))
		if err != nil {
			return nil, fmt.Errorf("wizard: configure message renderer: %w", err)
		}
		messages = engine
	}

	return &WizardView{
		steps:    owned,
		fn:       fn,
		opts:     opts,
		storage:  storage,
		renderer: renderer,
		messages: messages,
	}, nil
}

func (v *WizardView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if v.opts.Guard != nil {
		if err := v.opts.Guard(r); err != nil {
			writeError(w, err)
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		v.handleGet(w, r)
	case http.MethodPost:
		v.handlePost(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// RegisterRoutes mounts the wizard on mux at basePath joined with the route
// path.
func (v *WizardView) RegisterRoutes(mux views.Mux, basePath string) {
	mux.Handle(v.MountPath(basePath), v)
}

// MountPath reports where RegisterRoutes would mount the wizard.
func (v *WizardView) MountPath(basePath string) string {
	joined := path.Join("/", basePath, v.opts.RoutePath)
	if joined == "" {
		return "/"
	}
	return joined
}

func (v *WizardView) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sid, err := sessionID(w, r, v.opts.SessionCookieName)
	if err != nil {
		writeError(w, err)
		return
	}
	defaults, err := v.defaultArgs(r)
	if err != nil {
		writeError(w, err)
		return
	}
	state, err := v.loadState(ctx, sid)
	if err != nil {
		writeError(w, err)
		return
	}

	gated := v.stepList(ctx, r, defaults, state, "")
	if len(gated) == 0 {
		writeError(w, fmt.Errorf("wizard: no steps apply to this request"))
		return
	}

	step := v.currentStep(gated, state)
	form, err := v.adaptedStep(ctx, step, v.argsBefore(ctx, r, defaults, state, step.Name))
	if err != nil {
		writeError(w, err)
		return
	}

	if state.Current != step.Name {
		state.Current = step.Name
		if err := v.storage.Save(ctx, sid, state); err != nil {
			writeError(w, err)
			return
		}
	}

	v.renderStep(w, r, step, form, render.RenderOptions{
		Values: anyValues(state.Data[step.Name]),
	}, http.StatusOK)
}

func (v *WizardView) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sid, err := sessionID(w, r, v.opts.SessionCookieName)
	if err != nil {
		writeError(w, err)
		return
	}
	defaults, err := v.defaultArgs(r)
	if err != nil {
		writeError(w, err)
		return
	}
	state, err := v.loadState(ctx, sid)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, &views.StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("wizard: parse form: %w", err)})
		return
	}
	if !v.opts.DisableCSRF && !views.VerifyCSRF(r, v.opts.CSRFCookieName, v.opts.CSRFFieldName) {
		writeError(w, &views.StatusError{Code: http.StatusForbidden, Err: fmt.Errorf("wizard: csrf token mismatch")})
		return
	}

	stepName := strings.TrimSpace(r.PostFormValue(v.opts.StepFieldName))
	if stepName == "" {
		writeError(w, &views.StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("wizard: missing %q field", v.opts.StepFieldName)})
		return
	}

	gated := v.stepList(ctx, r, defaults, state, "")
	step, ok := findStep(gated, stepName)
	if !ok {
		writeError(w, &views.StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("wizard: unknown step %q", stepName)})
		return
	}

	form, err := v.adaptedStep(ctx, step, v.argsBefore(ctx, r, defaults, state, step.Name))
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := form.Bind(ctx, r.PostForm)
	if err != nil {
		writeError(w, err)
		return
	}
	if !result.Valid() {
		v.renderStep(w, r, step, form, render.RenderOptions{
			Values:     anyValues(stringValues(r.PostForm, form)),
			Errors:     result.FieldErrors,
			FormErrors: result.FormErrors,
		}, http.StatusOK)
		return
	}

	state.Data[step.Name] = result.CleanedData
	state.Current = step.Name

	// Re-gate with the fresh data: the answer may have toggled later steps.
	gated = v.stepList(ctx, r, defaults, state, "")
	if next, ok := nextStep(gated, step.Name, state); ok {
		state.Current = next.Name
		if err := v.storage.Save(ctx, sid, state); err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, r.URL.RequestURI(), http.StatusSeeOther)
		return
	}

	v.done(w, r, sid, defaults, state, gated)
}

// done revalidates every included step against its stored data, runs the
// function with the combined arguments, and redirects. A step failing
// revalidation becomes the current step again with its errors rendered.
func (v *WizardView) done(w http.ResponseWriter, r *http.Request, sid string, defaults map[string]any, state *State, gated []Step) {
	ctx := r.Context()

	args := make(map[string]any, len(defaults))
	for key, value := range defaults {
		args[key] = value
	}

	for _, step := range gated {
		form, err := v.adaptedStep(ctx, step, args)
		if err != nil {
			writeError(w, err)
			return
		}
		result, err := form.Bind(ctx, forms.Values(state.Data[step.Name]))
		if err != nil {
			writeError(w, err)
			return
		}
		if !result.Valid() {
			v.failStep(w, r, sid, state, step, form, result)
			return
		}
		for key, value := range result.CleanedData {
			args[key] = value
		}
	}

	out, err := v.fn.Call(ctx, args)
	if err != nil {
		if v.opts.RaiseRunErrors {
			writeError(w, err)
			return
		}
		v.failRun(w, r, sid, defaults, state, gated, err)
		return
	}

	if err := v.storage.Delete(ctx, sid); err != nil {
		writeError(w, err)
		return
	}

	message, err := v.successMessage(args, out)
	if err != nil {
		writeError(w, err)
		return
	}
	if message != "" {
		views.SetFlash(w, v.opts.FlashCookieName, message)
	}
	http.Redirect(w, r, v.opts.SuccessURL, http.StatusSeeOther)
}

// failStep routes the user back to a step whose stored data no longer
// validates.
func (v *WizardView) failStep(w http.ResponseWriter, r *http.Request, sid string, state *State, step Step, form forms.Form, result *forms.BindResult) {
	state.Current = step.Name
	if err := v.storage.Save(r.Context(), sid, state); err != nil {
		writeError(w, err)
		return
	}

	v.renderStep(w, r, step, form, render.RenderOptions{
		Values:     anyValues(state.Data[step.Name]),
		Errors:     result.FieldErrors,
		FormErrors: result.FormErrors,
	}, http.StatusOK)
}

// failRun folds a run failure into the step owning the offending field, or
// the final step when the error carries no attribution.
func (v *WizardView) failRun(w http.ResponseWriter, r *http.Request, sid string, defaults map[string]any, state *State, gated []Step, runErr error) {
	ctx := r.Context()

	step := gated[len(gated)-1]
	fieldErrors := map[string][]string{}
	var formErrors []string

	if verr, ok := argspec.AsValidation(runErr); ok && verr.Arg != "" {
		for _, candidate := range gated {
			if _, exists := candidate.Form.Field(verr.Arg); exists {
				step = candidate
				fieldErrors[verr.Arg] = []string{verr.Error()}
				break
			}
		}
	}
	if len(fieldErrors) == 0 {
		formErrors = []string{runErr.Error()}
	}

	state.Current = step.Name
	if err := v.storage.Save(ctx, sid, state); err != nil {
		writeError(w, err)
		return
	}

	form, err := v.adaptedStep(ctx, step, v.argsBefore(ctx, r, defaults, state, step.Name))
	if err != nil {
		writeError(w, err)
		return
	}

	v.renderStep(w, r, step, form, render.RenderOptions{
		Values:     anyValues(state.Data[step.Name]),
		Errors:     fieldErrors,
		FormErrors: formErrors,
	}, http.StatusOK)
}

// stepList returns the steps whose conditions hold, evaluating each condition
// against the default arguments merged with the cleaned data of the included
// steps before it. until, when non-empty, stops the list before that step so
// a step's own condition never sees its own data.
func (v *WizardView) stepList(ctx context.Context, r *http.Request, defaults map[string]any, state *State, until string) []Step {
	args := make(map[string]any, len(defaults))
	for key, value := range defaults {
		args[key] = value
	}

	var included []Step
	for _, step := range v.steps {
		if until != "" && step.Name == until {
			break
		}
		if !step.included(ctx, r, args) {
			continue
		}
		included = append(included, step)
		for key, value := range state.Data[step.Name] {
			args[key] = value
		}
	}
	return included
}

// argsBefore merges the defaults with the cleaned data of every included step
// preceding name.
func (v *WizardView) argsBefore(ctx context.Context, r *http.Request, defaults map[string]any, state *State, name string) map[string]any {
	args := make(map[string]any, len(defaults))
	for key, value := range defaults {
		args[key] = value
	}
	for _, step := range v.stepList(ctx, r, defaults, state, name) {
		for key, value := range state.Data[step.Name] {
			args[key] = value
		}
	}
	return args
}

// currentStep resolves the step to render: the stored position when it is
// still included, otherwise the first included step without data.
func (v *WizardView) currentStep(gated []Step, state *State) Step {
	if state.Current != "" {
		if step, ok := findStep(gated, state.Current); ok {
			return step
		}
	}
	for _, step := range gated {
		if _, done := state.Data[step.Name]; !done {
			return step
		}
	}
	return gated[len(gated)-1]
}

func (v *WizardView) adaptedStep(ctx context.Context, step Step, args map[string]any) (forms.Form, error) {
	form := step.Form.Clone()
	if err := forms.Adapt(ctx, &form, v.fn, args); err != nil {
		return forms.Form{}, err
	}
	return form, nil
}

func (v *WizardView) renderStep(w http.ResponseWriter, r *http.Request, step Step, form forms.Form, opts render.RenderOptions, status int) {
	hidden := []render.HiddenField{render.Hidden(v.opts.StepFieldName, step.Name)}
	if !v.opts.DisableCSRF {
		token, err := views.IssueCSRFToken(w, r, v.opts.CSRFCookieName)
		if err != nil {
			writeError(w, err)
			return
		}
		hidden = append(hidden, render.CSRFToken(v.opts.CSRFFieldName, token))
	}
	opts.Hidden = render.MergeHiddenFields(opts.Hidden, hidden...)

	if opts.Action == "" {
		opts.Action = r.URL.RequestURI()
	}

	payload, err := v.renderer.Render(r.Context(), form, opts)
	if err != nil {
		writeError(w, fmt.Errorf("wizard: render step %q: %w", step.Name, err))
		return
	}

	w.Header().Set("Content-Type", v.renderer.ContentType())
	w.WriteHeader(status)
	w.Write(payload)
}

func (v *WizardView) loadState(ctx context.Context, sid string) (*State, error) {
	state, err := v.storage.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = newState()
	}
	if state.Data == nil {
		state.Data = make(map[string]map[string]any)
	}
	return state, nil
}

// defaultArgs assembles the request's default arguments: the callback's
// values plus any bound object resolutions.
func (v *WizardView) defaultArgs(r *http.Request) (map[string]any, error) {
	args := map[string]any{}
	if v.opts.DefaultArgs != nil {
		extra, err := v.opts.DefaultArgs(r)
		if err != nil {
			return nil, err
		}
		for key, value := range extra {
			args[key] = value
		}
	}
	if err := views.ResolveObjectArgs(r, args, v.opts.Object, v.opts.Objects); err != nil {
		return nil, err
	}
	return args, nil
}

func (v *WizardView) successMessage(args map[string]any, result any) (string, error) {
	if v.opts.SuccessMessage == "" || v.messages == nil {
		return "", nil
	}

	data := make(map[string]any, len(args)+1)
	for key, value := range args {
		data[key] = value
	}
	data["results"] = result

	message, err := v.messages.RenderString(v.opts.SuccessMessage, data)
	if err != nil {
		return "", fmt.Errorf("wizard: render success message: %w", err)
	}
	return strings.TrimSpace(message), nil
}

func findStep(steps []Step, name string) (Step, bool) {
	for _, step := range steps {
		if step.Name == name {
			return step, true
		}
	}
	return Step{}, false
}

// nextStep returns the first included step after name lacking stored data.
func nextStep(steps []Step, name string, state *State) (Step, bool) {
	passed := false
	for _, step := range steps {
		if step.Name == name {
			passed = true
			continue
		}
		if !passed {
			continue
		}
		if _, done := state.Data[step.Name]; !done {
			return step, true
		}
	}
	return Step{}, false
}

func anyValues(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	return data
}

// stringValues echoes the raw submission for the form's fields.
func stringValues(values map[string][]string, form forms.Form) map[string]any {
	out := make(map[string]any, len(form.Fields))
	for _, field := range form.Fields {
		raw, ok := values[field.Name]
		if !ok || len(raw) == 0 {
			continue
		}
		if field.Type == forms.FieldTypeArray {
			out[field.Name] = raw
			continue
		}
		out[field.Name] = raw[0]
	}
	return out
}
