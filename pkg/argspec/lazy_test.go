package argspec_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-formbind/pkg/argspec"
)

func TestResolvePassesLiteralsThrough(t *testing.T) {
	got, err := argspec.Resolve(context.Background(), 42, nil)
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if got != 42 {
		t.Fatalf("Resolve() = %v, want 42", got)
	}
}

func TestResolveEvaluatesLazyValues(t *testing.T) {
	lazy := argspec.LazyFunc(func(_ context.Context, args map[string]any) (any, error) {
		return args["count"].(int) * 2, nil
	})

	got, err := argspec.Resolve(context.Background(), lazy, map[string]any{"count": 3})
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if got != 6 {
		t.Fatalf("Resolve() = %v, want 6", got)
	}
}

func TestRefFailsOnMissingArgument(t *testing.T) {
	if _, err := argspec.Ref("absent").Load(context.Background(), map[string]any{}); err == nil {
		t.Fatal("Load() = nil, want error for missing argument")
	}
}
