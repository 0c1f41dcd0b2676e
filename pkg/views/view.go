package views

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbind/pkg/argspec"
	"github.com/goliatone/go-formbind/pkg/forms"
	"github.com/goliatone/go-formbind/pkg/objects"
	"github.com/goliatone/go-formbind/pkg/render"
	"github.com/goliatone/go-formbind/pkg/render/template"
	"github.com/goliatone/go-formbind/pkg/render/template/pongo"
	"github.com/goliatone/go-formbind/pkg/renderers/html"
)

// FormView is an http.Handler serving a form bound to a function. The view
// keeps a pristine form prototype and adapts a fresh clone per request, so
// lazy fields and attached checks always see that request's default
// arguments.
type FormView struct {
	form     forms.Form
	fn       *argspec.Func
	opts     Options
	renderer render.Renderer
	messages template.TemplateRenderer
}

// NewFormView binds form to fn. The form is cloned; later mutations of the
// caller's copy do not affect the view.
func NewFormView(form forms.Form, fn *argspec.Func, fns ...OptionFn) (*FormView, error) {
	if fn == nil {
		return nil, fmt.Errorf("views: function is required")
	}
	if len(form.Fields) == 0 {
		return nil, fmt.Errorf("views: form %q has no fields", form.Name)
	}

	opts := NewOptions(fns...)

	renderer := opts.Renderer
	if renderer == nil {
		var err error
		renderer, err = html.New()
		if err != nil {
			return nil, fmt.Errorf("views: configure renderer: %w", err)
		}
	}

	messages := opts.Messages
	if messages == nil && opts.SuccessMessage != "" {
		// Only RenderString is used, so the loader directory never matters.
		engine, err := pongo.New(pongo.WithBaseDir("."))
		if err != nil {
			return nil, fmt.Errorf("views: configure message renderer: %w", err)
		}
		messages = engine
	}

	return &FormView{
		form:     form.Clone(),
		fn:       fn,
		opts:     opts,
		renderer: renderer,
		messages: messages,
	}, nil
}

func (v *FormView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

func (v *FormView) handleGet(w http.ResponseWriter, r *http.Request) {
	defaults, err := v.defaultArgs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	form, err := v.adaptedForm(r.Context(), defaults)
	if err != nil {
		writeError(w, err)
		return
	}

	hidden, err := v.hiddenFields(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	v.renderForm(w, r, form, render.RenderOptions{Hidden: hidden}, http.StatusOK)
}

func (v *FormView) handlePost(w http.ResponseWriter, r *http.Request) {
	defaults, err := v.defaultArgs(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, &StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("views: parse form: %w", err)})
		return
	}
	if !v.opts.DisableCSRF && !VerifyCSRF(r, v.opts.CSRFCookieName, v.opts.CSRFFieldName) {
		writeError(w, &StatusError{Code: http.StatusForbidden, Err: fmt.Errorf("views: csrf token mismatch")})
		return
	}

	form, err := v.adaptedForm(r.Context(), defaults)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := form.Bind(r.Context(), r.PostForm)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Valid() {
		args := make(map[string]any, len(defaults)+len(result.CleanedData))
		for key, value := range defaults {
			args[key] = value
		}
		for key, value := range result.CleanedData {
			args[key] = value
		}

		out, runErr := v.fn.Call(r.Context(), args)
		if runErr == nil {
			message, msgErr := v.successMessage(args, out)
			if msgErr != nil {
				writeError(w, msgErr)
				return
			}
			if message != "" {
				SetFlash(w, v.opts.FlashCookieName, message)
			}
			http.Redirect(w, r, v.successURL(r), http.StatusSeeOther)
			return
		}
		if v.opts.RaiseRunErrors {
			writeError(w, runErr)
			return
		}
		recordRunError(&form, result, runErr)
	}

	hidden, err := v.hiddenFields(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	v.renderForm(w, r, form, render.RenderOptions{
		Values:     submittedValues(form, r.PostForm),
		Errors:     result.FieldErrors,
		FormErrors: result.FormErrors,
		Hidden:     hidden,
	}, http.StatusOK)
}

// defaultArgs assembles the request's default arguments: the callback's
// values plus any bound object resolutions.
func (v *FormView) defaultArgs(r *http.Request) (map[string]any, error) {
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

	if err := ResolveObjectArgs(r, args, v.opts.Object, v.opts.Objects); err != nil {
		return nil, err
	}

	return args, nil
}

// ResolveObjectArgs looks up the configured object bindings against the
// request's query parameters and injects the resolved records into args. A
// missing parameter or unknown primary key yields a 404 StatusError. Nil
// bindings are skipped.
func ResolveObjectArgs(r *http.Request, args map[string]any, object *ObjectBinding, many *ObjectsBinding) error {
	if object != nil {
		binding := object.normalized()
		raw := strings.TrimSpace(r.URL.Query().Get(binding.Param))
		if raw == "" {
			return &StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("views: missing %q parameter", binding.Param)}
		}
		record, err := objects.ResolveOne(r.Context(), binding.Queryset, pkValue(raw))
		if err != nil {
			return notFoundStatus(err)
		}
		args[binding.ArgName] = record
	}

	if many != nil {
		binding := many.normalized()
		var pks []any
		for _, raw := range r.URL.Query()[binding.Param] {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			pks = append(pks, pkValue(raw))
		}
		if len(pks) == 0 {
			return &StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("views: missing %q parameters", binding.Param)}
		}
		records, err := objects.ResolveMany(r.Context(), binding.Queryset, pks)
		if err != nil {
			return notFoundStatus(err)
		}
		args[binding.ArgName] = records
	}

	return nil
}

func (v *FormView) adaptedForm(ctx context.Context, defaults map[string]any) (forms.Form, error) {
	form := v.form.Clone()
	if err := forms.Adapt(ctx, &form, v.fn, defaults); err != nil {
		return forms.Form{}, err
	}
	return form, nil
}

func (v *FormView) hiddenFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	if v.opts.DisableCSRF {
		return nil, nil
	}
	token, err := IssueCSRFToken(w, r, v.opts.CSRFCookieName)
	if err != nil {
		return nil, err
	}
	return map[string]string{v.opts.CSRFFieldName: token}, nil
}

func (v *FormView) renderForm(w http.ResponseWriter, r *http.Request, form forms.Form, opts render.RenderOptions, status int) {
	if opts.Action == "" {
		opts.Action = r.URL.RequestURI()
	}

	payload, err := v.renderer.Render(r.Context(), form, opts)
	if err != nil {
		writeError(w, fmt.Errorf("views: render form: %w", err))
		return
	}

	w.Header().Set("Content-Type", v.renderer.ContentType())
	w.WriteHeader(status)
	w.Write(payload)
}

func (v *FormView) successMessage(args map[string]any, result any) (string, error) {
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
		return "", fmt.Errorf("views: render success message: %w", err)
	}
	return strings.TrimSpace(message), nil
}

func (v *FormView) successURL(r *http.Request) string {
	if v.opts.SuccessURL != "" {
		return v.opts.SuccessURL
	}
	return r.URL.RequestURI()
}

// recordRunError folds a run failure into the form's errors. Validation
// errors attributed to a rendered field land on that field; everything else
// becomes a form-level message.
func recordRunError(form *forms.Form, result *forms.BindResult, err error) {
	if verr, ok := argspec.AsValidation(err); ok && verr.Arg != "" {
		if _, exists := form.Field(verr.Arg); exists {
			result.AddFieldError(verr.Arg, verr.Error())
			return
		}
	}
	result.AddFormError(err.Error())
}

// submittedValues echoes the raw submission back into the renderer so the
// user's input survives a failed validation round.
func submittedValues(form forms.Form, values url.Values) map[string]any {
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

func notFoundStatus(err error) error {
	if objects.IsNotFound(err) {
		return &StatusError{Code: http.StatusNotFound, Err: err}
	}
	return err
}

// pkValue keeps integer primary keys typed so the queryset's filter matches
// INTEGER columns.
func pkValue(raw string) any {
	if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return parsed
	}
	return raw
}
