package forms_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formbind/pkg/argspec"
	"github.com/goliatone/go-formbind/pkg/forms"
)

func TestFromFuncDerivesFields(t *testing.T) {
	fn, err := argspec.New("publish_article", func(context.Context, map[string]any) (any, error) { return nil, nil },
		argspec.WithArg(argspec.Arg{Name: "request", Kind: argspec.KindObject}),
		argspec.WithArg(argspec.Arg{Name: "title", Kind: argspec.KindString, Required: true, Placeholder: "My article"}),
		argspec.WithArg(argspec.Arg{Name: "word_count", Kind: argspec.KindInteger, Default: 500}),
		argspec.WithArg(argspec.Arg{Name: "visibility", Kind: argspec.KindString, Enum: []any{"public", "private"}}),
	)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	form, err := forms.FromFunc(fn, forms.WithExcluded("request"), forms.WithAction("/articles"))
	if err != nil {
		t.Fatalf("FromFunc() returned error: %v", err)
	}

	want := forms.Form{
		Name:   "publish_article",
		Method: "POST",
		Action: "/articles",
		Fields: []forms.Field{
			{Name: "title", Type: forms.FieldTypeString, Required: true, Label: "Title", Placeholder: "My article"},
			{Name: "word_count", Type: forms.FieldTypeInteger, Label: "Word Count", Default: 500},
			{Name: "visibility", Type: forms.FieldTypeString, Label: "Visibility", Enum: []any{"public", "private"}},
		},
	}
	if diff := cmp.Diff(want, form, cmpopts.IgnoreUnexported(forms.Form{}, forms.Field{})); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestFromFuncRejectsObjectFields(t *testing.T) {
	fn, err := argspec.New("thing", func(context.Context, map[string]any) (any, error) { return nil, nil },
		argspec.WithArg(argspec.Arg{Name: "payload", Kind: argspec.KindObject}),
	)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if _, err := forms.FromFunc(fn); err == nil {
		t.Fatal("FromFunc() = nil error, want object-kind rejection")
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"word_count":  "Word Count",
		"authorEmail": "Author email",
		"x-api-key":   "X Api Key",
		"":            "",
	}
	for input, want := range cases {
		if got := forms.DefaultLabeler(input); got != want {
			t.Errorf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}
