package openapi_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbind/pkg/forms"
	"github.com/goliatone/go-formbind/pkg/openapi"
)

func float(v float64) *float64 { return &v }
func intp(v int) *int          { return &v }

func registerOperation() openapi.Operation {
	return openapi.Operation{
		ID:      "registerUser",
		Method:  "POST",
		Path:    "/users",
		Summary: "Register a user",
		RequestBody: openapi.Schema{
			Type:     "object",
			Required: []string{"username"},
			Properties: map[string]openapi.Schema{
				"username": {Type: "string", MinLength: intp(3), Pattern: "^[a-z0-9_]+$"},
				"age":      {Type: "integer", Minimum: float(13)},
				"plan":     {Type: "string", Enum: []any{"free", "pro"}, Default: "free"},
				"token":    {Type: "string", Format: "password"},
				"tenant":   {Type: "object"},
			},
		},
	}
}

func TestFormFromOperation(t *testing.T) {
	form, err := openapi.FormFromOperation(registerOperation(), openapi.WithExcludedProperties("tenant"))
	if err != nil {
		t.Fatalf("FormFromOperation() returned error: %v", err)
	}

	want := forms.Form{
		Name:    "registerUser",
		Method:  "POST",
		Action:  "/users",
		Summary: "Register a user",
		Fields: []forms.Field{
			{Name: "age", Type: forms.FieldTypeInteger, Label: "Age", Validations: []forms.ValidationRule{forms.Min("13")}},
			{Name: "plan", Type: forms.FieldTypeString, Label: "Plan", Default: "free", Enum: []any{"free", "pro"}},
			{Name: "token", Type: forms.FieldTypeString, Label: "Token", Metadata: map[string]string{"widget": "password"}},
			{Name: "username", Type: forms.FieldTypeString, Required: true, Label: "Username", Validations: []forms.ValidationRule{forms.MinLength("3"), forms.Pattern("^[a-z0-9_]+$")}},
		},
	}
	if diff := cmp.Diff(want, form, cmpopts.IgnoreUnexported(forms.Form{}, forms.Field{})); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestFormFromOperationRejectsNestedObjects(t *testing.T) {
	if _, err := openapi.FormFromOperation(registerOperation()); err == nil {
		t.Fatal("FormFromOperation() = nil error, want nested-object rejection")
	}
}

func TestFormFromOperationRejectsNonObjectBody(t *testing.T) {
	op := openapi.Operation{
		ID:          "upload",
		Method:      "POST",
		Path:        "/upload",
		RequestBody: openapi.Schema{Type: "string", Format: "binary"},
	}
	if _, err := openapi.FormFromOperation(op); err == nil {
		t.Fatal("FormFromOperation() = nil error, want non-object rejection")
	}
}
