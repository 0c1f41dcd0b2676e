package forms_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/forms"
)

func signupForm() forms.Form {
	return forms.Form{
		Name:   "signup",
		Method: "POST",
		Fields: []forms.Field{
			{Name: "username", Type: forms.FieldTypeString, Required: true, Validations: []forms.ValidationRule{forms.MinLength("3"), forms.Pattern(`^[a-z0-9_]+$`)}},
			{Name: "age", Type: forms.FieldTypeInteger, Validations: []forms.ValidationRule{forms.Min("13")}},
			{Name: "score", Type: forms.FieldTypeNumber},
			{Name: "newsletter", Type: forms.FieldTypeBoolean},
			{Name: "topics", Type: forms.FieldTypeArray, Enum: []any{"go", "python", "rust"}},
			{Name: "plan", Type: forms.FieldTypeString, Default: "free"},
		},
	}
}

func TestBindCoercesTypes(t *testing.T) {
	form := signupForm()

	result, err := form.Bind(context.Background(), url.Values{
		"username":   {"gopher_1"},
		"age":        {"21"},
		"score":      {"3.5"},
		"newsletter": {"on"},
		"topics":     {"go", "rust"},
	})
	if err != nil {
		t.Fatalf("Bind() returned error: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("Bind() produced errors: fields=%v form=%v", result.FieldErrors, result.FormErrors)
	}

	want := map[string]any{
		"username":   "gopher_1",
		"age":        int64(21),
		"score":      3.5,
		"newsletter": true,
		"topics":     []any{"go", "rust"},
		"plan":       "free",
	}
	if diff := cmp.Diff(want, result.CleanedData); diff != "" {
		t.Fatalf("cleaned data mismatch (-want +got):\n%s", diff)
	}
}

func TestBindCollectsFieldErrors(t *testing.T) {
	form := signupForm()

	result, err := form.Bind(context.Background(), url.Values{
		"username": {"X!"},
		"age":      {"12"},
		"topics":   {"basic"},
	})
	if err != nil {
		t.Fatalf("Bind() returned error: %v", err)
	}
	if result.Valid() {
		t.Fatal("Bind() reported valid, want errors")
	}

	for _, field := range []string{"username", "age", "topics"} {
		if len(result.FieldErrors[field]) == 0 {
			t.Errorf("expected an error for field %q, got none (all: %v)", field, result.FieldErrors)
		}
	}
}

func TestBindRequiredAndAbsentFields(t *testing.T) {
	form := signupForm()

	result, err := form.Bind(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("Bind() returned error: %v", err)
	}

	if got := result.FieldErrors["username"]; len(got) != 1 || got[0] != "required" {
		t.Fatalf("username errors = %v, want [required]", got)
	}
	// Unchecked checkbox binds to false; optional fields without defaults are
	// omitted.
	if value, ok := result.CleanedData["newsletter"]; !ok || value != false {
		t.Fatalf("newsletter = %v (present=%v), want false", value, ok)
	}
	if _, ok := result.CleanedData["age"]; ok {
		t.Fatal("age should be omitted when not submitted")
	}
	if result.CleanedData["plan"] != "free" {
		t.Fatalf("plan = %v, want default %q", result.CleanedData["plan"], "free")
	}
}

func TestBindRunsChecksAndCleaners(t *testing.T) {
	form := signupForm()
	field, _ := form.Field("username")
	field.AddCheck(func(_ context.Context, value any) error {
		if value == "admin" {
			return errors.New("username is reserved")
		}
		return nil
	})

	cleanerRan := false
	form.AddCleaner(func(_ context.Context, cleaned map[string]any) error {
		cleanerRan = true
		return nil
	})

	result, err := form.Bind(context.Background(), url.Values{"username": {"admin"}})
	if err != nil {
		t.Fatalf("Bind() returned error: %v", err)
	}
	if got := result.FieldErrors["username"]; len(got) != 1 || got[0] != "username is reserved" {
		t.Fatalf("username errors = %v, want [username is reserved]", got)
	}
	if cleanerRan {
		t.Fatal("cleaner ran despite field errors")
	}

	result, err = form.Bind(context.Background(), url.Values{"username": {"gopher"}})
	if err != nil {
		t.Fatalf("Bind() returned error: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("Bind() produced errors: %v %v", result.FieldErrors, result.FormErrors)
	}
	if !cleanerRan {
		t.Fatal("cleaner did not run on a valid submission")
	}
}

func TestValuesRoundTrip(t *testing.T) {
	values := forms.Values(map[string]any{
		"username": "gopher",
		"age":      int64(30),
		"flag":     true,
		"topics":   []any{"go", "rust"},
	})

	want := url.Values{
		"username": {"gopher"},
		"age":      {"30"},
		"flag":     {"true"},
		"topics":   {"go", "rust"},
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
