package argspec_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/argspec"
)

func grantSpec(t *testing.T) *argspec.Func {
	t.Helper()

	fn, err := argspec.New("grant_access", func(_ context.Context, args map[string]any) (any, error) {
		return map[string]any{"granted": args["level"]}, nil
	},
		argspec.WithArg(argspec.Arg{Name: "email", Kind: argspec.KindString, Required: true}),
		argspec.WithArg(argspec.Arg{Name: "level", Kind: argspec.KindInteger, Default: 1}),
		argspec.WithArg(argspec.Arg{Name: "reason", Kind: argspec.KindString}),
		argspec.WithValidator(func(_ context.Context, args map[string]any) error {
			email, _ := args["email"].(string)
			if email == "blocked@example.com" {
				return errors.New("email is blocked")
			}
			return nil
		}, "email"),
		argspec.WithValidator(func(_ context.Context, args map[string]any) error {
			level, _ := args["level"].(int)
			if level > 5 {
				return errors.New("level above 5 requires a reason")
			}
			return nil
		}, "level", "reason"),
	)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return fn
}

func TestNewRejectsBadSpecs(t *testing.T) {
	run := func(_ context.Context, _ map[string]any) (any, error) { return nil, nil }

	cases := []struct {
		name    string
		builder func() (*argspec.Func, error)
	}{
		{"empty name", func() (*argspec.Func, error) {
			return argspec.New("  ", run)
		}},
		{"nil runner", func() (*argspec.Func, error) {
			return argspec.New("thing", nil)
		}},
		{"duplicate argument", func() (*argspec.Func, error) {
			return argspec.New("thing", run,
				argspec.WithArg(argspec.Arg{Name: "a"}),
				argspec.WithArg(argspec.Arg{Name: "a"}),
			)
		}},
		{"validator on unknown argument", func() (*argspec.Func, error) {
			return argspec.New("thing", run,
				argspec.WithArg(argspec.Arg{Name: "a"}),
				argspec.WithValidator(func(context.Context, map[string]any) error { return nil }, "missing"),
			)
		}},
		{"validator without args", func() (*argspec.Func, error) {
			return argspec.New("thing", run,
				argspec.WithValidator(func(context.Context, map[string]any) error { return nil }),
			)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.builder(); err == nil {
				t.Fatal("expected construction error, got nil")
			}
		})
	}
}

func TestValidatePartialRunsOnlySatisfiedChecks(t *testing.T) {
	fn := grantSpec(t)
	ctx := context.Background()

	// The level/reason validator needs both args; only email should run here.
	if err := fn.ValidatePartial(ctx, map[string]any{"email": "ok@example.com", "level": 9}); err != nil {
		t.Fatalf("ValidatePartial() = %v, want nil", err)
	}

	err := fn.ValidatePartial(ctx, map[string]any{"email": "blocked@example.com"})
	verr, ok := argspec.AsValidation(err)
	if !ok {
		t.Fatalf("ValidatePartial() = %v, want *ValidationError", err)
	}
	if verr.Arg != "email" {
		t.Fatalf("validation error attributed to %q, want %q", verr.Arg, "email")
	}

	err = fn.ValidatePartial(ctx, map[string]any{"level": 9, "reason": ""})
	if _, ok := argspec.AsValidation(err); !ok {
		t.Fatalf("ValidatePartial() = %v, want *ValidationError", err)
	}
}

func TestValidateRequiresAllArgs(t *testing.T) {
	fn := grantSpec(t)

	err := fn.Validate(context.Background(), map[string]any{"email": "ok@example.com"})
	if err == nil {
		t.Fatal("Validate() = nil, want missing-argument error")
	}
	if _, ok := argspec.AsValidation(err); ok {
		t.Fatalf("missing argument should not be a validation error: %v", err)
	}
}

func TestCallResolvesDefaultsAndRuns(t *testing.T) {
	fn := grantSpec(t)

	result, err := fn.Call(context.Background(), map[string]any{
		"email":  "ok@example.com",
		"reason": "",
	})
	if err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}

	want := map[string]any{"granted": 1}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("Call() result mismatch (-want +got):\n%s", diff)
	}
}

func TestCallMissingRequiredArg(t *testing.T) {
	fn := grantSpec(t)

	_, err := fn.Call(context.Background(), map[string]any{"reason": ""})
	verr, ok := argspec.AsValidation(err)
	if !ok {
		t.Fatalf("Call() = %v, want *ValidationError", err)
	}
	if verr.Arg != "email" || verr.Message != "required" {
		t.Fatalf("unexpected validation error: %+v", verr)
	}
}

func TestCallLazyDefaultsSeeEarlierArgs(t *testing.T) {
	var got map[string]any
	fn, err := argspec.New("rename", func(_ context.Context, args map[string]any) (any, error) {
		got = args
		return nil, nil
	},
		argspec.WithArg(argspec.Arg{Name: "name", Kind: argspec.KindString, Required: true}),
		argspec.WithArg(argspec.Arg{Name: "slug", Kind: argspec.KindString, LazyDefault: argspec.Ref("name")}),
	)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	if _, err := fn.Call(context.Background(), map[string]any{"name": "widget"}); err != nil {
		t.Fatalf("Call() returned error: %v", err)
	}
	if got["slug"] != "widget" {
		t.Fatalf("slug = %v, want %q", got["slug"], "widget")
	}
}
