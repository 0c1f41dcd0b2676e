package wizard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formbind/pkg/argspec"
	"github.com/goliatone/go-formbind/pkg/forms"
	"github.com/goliatone/go-formbind/pkg/objects"
	"github.com/goliatone/go-formbind/pkg/views"
	"github.com/goliatone/go-formbind/pkg/wizard"
)

// client replays cookies between requests the way a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, handler http.Handler) *client {
	t.Helper()
	return &client{t: t, handler: handler, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) post(target string, data url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func signupSteps() []wizard.Step {
	return []wizard.Step{
		{
			Name: "account",
			Form: forms.Form{
				Name: "account",
				Fields: []forms.Field{
					{Name: "username", Type: forms.FieldTypeString, Required: true},
					{Name: "plan", Type: forms.FieldTypeString, Required: true, Enum: []any{"basic", "pro"}},
				},
			},
		},
		{
			Name: "billing",
			Form: forms.Form{
				Name: "billing",
				Fields: []forms.Field{
					{Name: "card", Type: forms.FieldTypeString, Required: true},
				},
			},
			Condition: argspec.LazyFunc(func(_ context.Context, args map[string]any) (any, error) {
				plan, ok := args["plan"]
				if !ok {
					return nil, errors.New("plan not answered yet")
				}
				return plan == "pro", nil
			}),
		},
		{
			Name: "confirm",
			Form: forms.Form{
				Name: "confirm",
				Fields: []forms.Field{
					{Name: "agree", Type: forms.FieldTypeBoolean},
				},
			},
		},
	}
}

func signupFunc(t *testing.T, calls *[]map[string]any, runErr error) *argspec.Func {
	t.Helper()

	fn, err := argspec.New("signup",
		func(_ context.Context, args map[string]any) (any, error) {
			if runErr != nil {
				return nil, runErr
			}
			if calls != nil {
				*calls = append(*calls, args)
			}
			return args["username"], nil
		},
		argspec.WithArg(argspec.Arg{Name: "username", Kind: argspec.KindString, Required: true}),
		argspec.WithArg(argspec.Arg{Name: "plan", Kind: argspec.KindString, Required: true}),
		argspec.WithArg(argspec.Arg{Name: "card", Kind: argspec.KindString, Default: ""}),
		argspec.WithArg(argspec.Arg{Name: "agree", Kind: argspec.KindBoolean, Required: true}),
	)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return fn
}

func newSignupWizard(t *testing.T, calls *[]map[string]any, runErr error, fns ...wizard.OptionFn) *wizard.WizardView {
	t.Helper()

	options := append([]wizard.OptionFn{
		wizard.WithSuccessURL("/welcome"),
		wizard.WithoutCSRF(),
	}, fns...)

	view, err := wizard.NewWizardView(signupSteps(), signupFunc(t, calls, runErr), options...)
	if err != nil {
		t.Fatalf("NewWizardView() returned error: %v", err)
	}
	return view
}

func TestWizardSkipsConditionalStep(t *testing.T) {
	var calls []map[string]any
	view := newSignupWizard(t, &calls, nil,
		wizard.WithSuccessMessage("welcome {{ results }}"),
	)
	browser := newClient(t, view)

	rec := browser.get("/signup")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); !strings.Contains(body, `name="wizard_step" value="account"`) {
		t.Fatalf("first step should be account:\n%s", body)
	}

	rec = browser.post("/signup", url.Values{
		"wizard_step": {"account"},
		"username":    {"ada"},
		"plan":        {"basic"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST status = %d: %s", rec.Code, rec.Body.String())
	}

	// basic plan excludes the billing step
	rec = browser.get("/signup")
	if body := rec.Body.String(); !strings.Contains(body, `name="wizard_step" value="confirm"`) {
		t.Fatalf("expected confirm step:\n%s", body)
	}

	rec = browser.post("/signup", url.Values{
		"wizard_step": {"confirm"},
		"agree":       {"true"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("final POST status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/welcome" {
		t.Fatalf("Location = %q, want /welcome", got)
	}

	if len(calls) != 1 {
		t.Fatalf("runner called %d times, want 1", len(calls))
	}
	args := calls[0]
	if args["username"] != "ada" || args["plan"] != "basic" || args["card"] != "" || args["agree"] != true {
		t.Fatalf("runner args = %v", args)
	}

	flash, ok := browser.cookies["formbind_flash"]
	if !ok {
		t.Fatal("flash cookie was not set")
	}
	follow := httptest.NewRequest(http.MethodGet, "/welcome", nil)
	follow.AddCookie(flash)
	if got := views.PopFlash(httptest.NewRecorder(), follow, "formbind_flash"); got != "welcome ada" {
		t.Fatalf("flash = %q, want %q", got, "welcome ada")
	}
}

func TestWizardIncludesConditionalStep(t *testing.T) {
	var calls []map[string]any
	view := newSignupWizard(t, &calls, nil)
	browser := newClient(t, view)

	browser.get("/signup")
	rec := browser.post("/signup", url.Values{
		"wizard_step": {"account"},
		"username":    {"grace"},
		"plan":        {"pro"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = browser.get("/signup")
	body := rec.Body.String()
	if !strings.Contains(body, `name="wizard_step" value="billing"`) {
		t.Fatalf("pro plan should include billing:\n%s", body)
	}
	if !strings.Contains(body, `name="card"`) {
		t.Fatalf("billing step should render the card field:\n%s", body)
	}

	browser.post("/signup", url.Values{
		"wizard_step": {"billing"},
		"card":        {"4242"},
	})
	rec = browser.post("/signup", url.Values{
		"wizard_step": {"confirm"},
		"agree":       {"true"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("final POST status = %d: %s", rec.Code, rec.Body.String())
	}

	if len(calls) != 1 {
		t.Fatalf("runner called %d times, want 1", len(calls))
	}
	if calls[0]["card"] != "4242" {
		t.Fatalf("runner args = %v", calls[0])
	}
}

func TestWizardValidationErrorsRerenderStep(t *testing.T) {
	view := newSignupWizard(t, nil, nil)
	browser := newClient(t, view)

	browser.get("/signup")
	rec := browser.post("/signup", url.Values{
		"wizard_step": {"account"},
		"plan":        {"basic"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "required") {
		t.Fatalf("body missing required error:\n%s", body)
	}
	if !strings.Contains(body, `name="wizard_step" value="account"`) {
		t.Fatalf("should stay on account step:\n%s", body)
	}
}

func TestWizardRunErrorRoutesToOwningStep(t *testing.T) {
	runErr := argspec.Wrap("username", errors.New("already registered"))
	view := newSignupWizard(t, nil, runErr)
	browser := newClient(t, view)

	browser.get("/signup")
	browser.post("/signup", url.Values{
		"wizard_step": {"account"},
		"username":    {"ada"},
		"plan":        {"basic"},
	})
	rec := browser.post("/signup", url.Values{
		"wizard_step": {"confirm"},
		"agree":       {"true"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="wizard_step" value="account"`) {
		t.Fatalf("run error should route back to the account step:\n%s", body)
	}
	if !strings.Contains(body, "already registered") {
		t.Fatalf("body missing run error:\n%s", body)
	}
}

func TestWizardRaiseRunErrors(t *testing.T) {
	view := newSignupWizard(t, nil, errors.New("provisioning down"),
		wizard.WithRaiseRunErrors(true),
	)
	browser := newClient(t, view)

	browser.get("/signup")
	browser.post("/signup", url.Values{
		"wizard_step": {"account"},
		"username":    {"ada"},
		"plan":        {"basic"},
	})
	rec := browser.post("/signup", url.Values{
		"wizard_step": {"confirm"},
		"agree":       {"true"},
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestWizardRejectsMissingCSRF(t *testing.T) {
	view, err := wizard.NewWizardView(signupSteps(), signupFunc(t, nil, nil),
		wizard.WithSuccessURL("/welcome"),
	)
	if err != nil {
		t.Fatalf("NewWizardView() returned error: %v", err)
	}
	browser := newClient(t, view)

	rec := browser.get("/signup")
	if !strings.Contains(rec.Body.String(), `name="_csrf"`) {
		t.Fatalf("step should carry a csrf field:\n%s", rec.Body.String())
	}

	rec = browser.post("/signup", url.Values{
		"wizard_step": {"account"},
		"username":    {"ada"},
		"plan":        {"basic"},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	token := browser.cookies["formbind_csrf"]
	rec = browser.post("/signup", url.Values{
		"wizard_step": {"account"},
		"username":    {"ada"},
		"plan":        {"basic"},
		"_csrf":       {token.Value},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
}

func TestWizardRejectsUnknownStep(t *testing.T) {
	view := newSignupWizard(t, nil, nil)
	browser := newClient(t, view)

	rec := browser.post("/signup", url.Values{
		"wizard_step": {"payment"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWizardObjectResolution(t *testing.T) {
	db, err := objects.Open(filepath.Join(t.TempDir(), "wizard.db"))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE accounts (id INTEGER PRIMARY KEY, owner TEXT NOT NULL);
INSERT INTO accounts (id, owner) VALUES (1, 'ada'), (2, 'grace');`); err != nil {
		t.Fatalf("seed schema: %v", err)
	}

	qs, err := objects.NewQueryset(db, "accounts")
	if err != nil {
		t.Fatalf("NewQueryset() returned error: %v", err)
	}

	var calls []map[string]any
	fn, err := argspec.New("close-account",
		func(_ context.Context, args map[string]any) (any, error) {
			calls = append(calls, args)
			return nil, nil
		},
		argspec.WithArg(argspec.Arg{Name: "object", Kind: argspec.KindObject, Required: true}),
		argspec.WithArg(argspec.Arg{Name: "reason", Kind: argspec.KindString, Required: true}),
		argspec.WithArg(argspec.Arg{Name: "confirmed", Kind: argspec.KindBoolean, Required: true}),
	)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	steps := []wizard.Step{
		{
			Name: "reason",
			Form: forms.Form{
				Name: "reason",
				Fields: []forms.Field{
					{Name: "reason", Type: forms.FieldTypeString, Required: true},
				},
			},
		},
		{
			Name: "confirm",
			Form: forms.Form{
				Name: "confirm",
				Fields: []forms.Field{
					{Name: "confirmed", Type: forms.FieldTypeBoolean, Required: true},
				},
			},
		},
	}

	view, err := wizard.NewWizardView(steps, fn,
		wizard.WithSuccessURL("/closed"),
		wizard.WithObject(qs),
		wizard.WithoutCSRF(),
	)
	if err != nil {
		t.Fatalf("NewWizardView() returned error: %v", err)
	}
	browser := newClient(t, view)

	if rec := browser.get("/close?pk=99"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown pk status = %d, want 404", rec.Code)
	}
	if rec := browser.get("/close"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing pk status = %d, want 404", rec.Code)
	}

	rec := browser.get("/close?pk=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = browser.post("/close?pk=2", url.Values{
		"wizard_step": {"reason"},
		"reason":      {"duplicate account"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST status = %d: %s", rec.Code, rec.Body.String())
	}
	// the redirect keeps the query string so the binding survives the flow
	if got := rec.Header().Get("Location"); got != "/close?pk=2" {
		t.Fatalf("Location = %q, want /close?pk=2", got)
	}

	rec = browser.post("/close?pk=2", url.Values{
		"wizard_step": {"confirm"},
		"confirmed":   {"true"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("final POST status = %d: %s", rec.Code, rec.Body.String())
	}

	if len(calls) != 1 {
		t.Fatalf("runner called %d times, want 1", len(calls))
	}
	record, ok := calls[0]["object"].(objects.Record)
	if !ok {
		t.Fatalf("object arg = %T, want objects.Record", calls[0]["object"])
	}
	if record["owner"] != "grace" {
		t.Fatalf("record = %v, want owner grace", record)
	}
}

func TestNewWizardViewRejectsBadConfigs(t *testing.T) {
	fn := signupFunc(t, nil, nil)

	if _, err := wizard.NewWizardView(signupSteps(), fn); err == nil {
		t.Fatal("missing success URL should error")
	}

	steps := signupSteps()
	steps[1].Name = "account"
	if _, err := wizard.NewWizardView(steps, fn, wizard.WithSuccessURL("/done")); err == nil {
		t.Fatal("duplicate step names should error")
	}

	if _, err := wizard.NewWizardView(nil, fn, wizard.WithSuccessURL("/done")); err == nil {
		t.Fatal("empty step list should error")
	}
}

func TestWizardMountPath(t *testing.T) {
	view := newSignupWizard(t, nil, nil, wizard.WithRoutePath("/signup"))

	if got := view.MountPath("/onboarding"); got != "/onboarding/signup" {
		t.Fatalf("MountPath = %q", got)
	}

	mux := http.NewServeMux()
	view.RegisterRoutes(mux, "/onboarding")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/onboarding/signup", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
