package argspec

import (
	"context"
	"fmt"
)

// Lazy is a value resolved at call time against the arguments gathered so
// far. Form fields, defaults, and wizard step conditions all accept Lazy
// values so expensive lookups run only when their inputs exist.
type Lazy interface {
	Load(ctx context.Context, args map[string]any) (any, error)
}

// LazyFunc adapts a plain function into a Lazy.
type LazyFunc func(ctx context.Context, args map[string]any) (any, error)

// Load implements Lazy.
func (fn LazyFunc) Load(ctx context.Context, args map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fn(ctx, args)
}

// Ref returns a Lazy reading another argument by name. Resolution fails when
// the argument is absent.
func Ref(name string) Lazy {
	return LazyFunc(func(_ context.Context, args map[string]any) (any, error) {
		value, ok := args[name]
		if !ok {
			return nil, fmt.Errorf("argspec: argument %q is not available", name)
		}
		return value, nil
	})
}

// Resolve evaluates value if it is Lazy, otherwise returns it unchanged.
func Resolve(ctx context.Context, value any, args map[string]any) (any, error) {
	if lazy, ok := value.(Lazy); ok {
		return lazy.Load(ctx, args)
	}
	return value, nil
}
