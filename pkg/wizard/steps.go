package wizard

import (
	"context"
	"net/http"

	"github.com/goliatone/go-formbind/pkg/argspec"
	"github.com/goliatone/go-formbind/pkg/forms"
)

// Step is one page of a wizard: a named form plus optional gating.
type Step struct {
	Name string
	Form forms.Form

	// When gates the step on the request alone.
	When func(r *http.Request) bool

	// Condition gates the step on the default arguments merged with the
	// cleaned data of the steps before it. An evaluation failure keeps the
	// step included until enough data exists to decide; a falsy value
	// excludes it.
	Condition argspec.Lazy
}

func (s Step) included(ctx context.Context, r *http.Request, args map[string]any) bool {
	if s.When != nil && !s.When(r) {
		return false
	}
	if s.Condition == nil {
		return true
	}
	value, err := s.Condition.Load(ctx, args)
	if err != nil {
		return true
	}
	return conditionHolds(value)
}

func conditionHolds(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}
