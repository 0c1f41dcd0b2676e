package argspec

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind is the simplified enum for argument value kinds. It intentionally
// mirrors the field kinds understood by the forms package so specs can be
// projected onto forms without a translation table.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Arg declares a single named argument of a Func.
type Arg struct {
	Name        string
	Kind        Kind
	Required    bool
	Label       string
	Description string
	Placeholder string
	Default     any
	// LazyDefault is resolved at call time against the arguments gathered so
	// far. It wins over Default when both are set.
	LazyDefault Lazy
	Enum        []any
	Metadata    map[string]string
}

// RunFunc is the function a spec wraps. Arguments arrive as a name-keyed map
// after defaults have been resolved and validators have passed.
type RunFunc func(ctx context.Context, args map[string]any) (any, error)

// CheckFunc validates a subset of arguments. Returning any error fails
// validation; errors that are not already a *ValidationError are wrapped into
// one so form plumbing can surface them uniformly.
type CheckFunc func(ctx context.Context, args map[string]any) error

// Validator pairs a check with the argument names it consumes. During partial
// validation a check only runs once every named argument is available.
type Validator struct {
	Args  []string
	Check CheckFunc
}

// Func is a function spec: a runner plus the argument and validator metadata
// needed to derive forms from it and to invoke it from view plumbing.
type Func struct {
	name       string
	args       []Arg
	index      map[string]int
	validators []Validator
	run        RunFunc
}

// Option customises a Func during construction.
type Option func(*Func)

// WithArg declares an argument. Declaration order is preserved and becomes
// field order when a form is derived from the spec.
func WithArg(arg Arg) Option {
	return func(f *Func) {
		f.args = append(f.args, arg)
	}
}

// WithDefault sets a literal default on a previously declared argument.
func WithDefault(name string, value any) Option {
	return func(f *Func) {
		for i := range f.args {
			if f.args[i].Name == name {
				f.args[i].Default = value
				return
			}
		}
	}
}

// WithLazyDefault sets a lazily resolved default on a previously declared
// argument.
func WithLazyDefault(name string, lazy Lazy) Option {
	return func(f *Func) {
		for i := range f.args {
			if f.args[i].Name == name {
				f.args[i].LazyDefault = lazy
				return
			}
		}
	}
}

// WithValidator attaches a validator. Validators run in attachment order.
func WithValidator(check CheckFunc, args ...string) Option {
	return func(f *Func) {
		f.validators = append(f.validators, Validator{Args: args, Check: check})
	}
}

// New constructs a Func, validating the declared metadata. The runner is
// required; argument names must be unique and validators may only reference
// declared arguments.
func New(name string, run RunFunc, options ...Option) (*Func, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("argspec: name is required")
	}
	if run == nil {
		return nil, errors.New("argspec: run function is required")
	}

	f := &Func{name: name, run: run}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}

	f.index = make(map[string]int, len(f.args))
	for i, arg := range f.args {
		trimmed := strings.TrimSpace(arg.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("argspec: argument %d has no name", i)
		}
		if _, exists := f.index[trimmed]; exists {
			return nil, fmt.Errorf("argspec: duplicate argument %q", trimmed)
		}
		f.args[i].Name = trimmed
		f.index[trimmed] = i
	}

	for _, v := range f.validators {
		if v.Check == nil {
			return nil, errors.New("argspec: validator check is required")
		}
		if len(v.Args) == 0 {
			return nil, errors.New("argspec: validator must name at least one argument")
		}
		for _, argName := range v.Args {
			if _, ok := f.index[argName]; !ok {
				return nil, fmt.Errorf("argspec: validator references unknown argument %q", argName)
			}
		}
	}

	return f, nil
}

// MustNew panics on construction failure. Useful for package-level specs.
func MustNew(name string, run RunFunc, options ...Option) *Func {
	f, err := New(name, run, options...)
	if err != nil {
		panic(err)
	}
	return f
}

// Name reports the spec identifier.
func (f *Func) Name() string { return f.name }

// Args returns a copy of the declared arguments in declaration order.
func (f *Func) Args() []Arg {
	out := make([]Arg, len(f.args))
	copy(out, f.args)
	return out
}

// Arg looks up a declared argument by name.
func (f *Func) Arg(name string) (Arg, bool) {
	idx, ok := f.index[name]
	if !ok {
		return Arg{}, false
	}
	return f.args[idx], true
}

// Validators returns a copy of the attached validators.
func (f *Func) Validators() []Validator {
	out := make([]Validator, len(f.validators))
	copy(out, f.validators)
	return out
}

// ValidatePartial runs exactly the validators whose named arguments are all
// present in args. Unknown keys in args are ignored. The first failure is
// returned as a *ValidationError attributed to the validator's first argument.
func (f *Func) ValidatePartial(ctx context.Context, args map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, v := range f.validators {
		if !hasAll(args, v.Args) {
			continue
		}
		if err := v.Check(ctx, args); err != nil {
			return Wrap(v.Args[0], err)
		}
	}
	return nil
}

// Validate runs every validator. Missing arguments are an error rather than a
// skip, so callers get a definitive answer before invoking the runner.
func (f *Func) Validate(ctx context.Context, args map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, v := range f.validators {
		for _, name := range v.Args {
			if _, ok := args[name]; !ok {
				return fmt.Errorf("argspec: %s: missing argument %q", f.name, name)
			}
		}
		if err := v.Check(ctx, args); err != nil {
			return Wrap(v.Args[0], err)
		}
	}
	return nil
}

// Call resolves defaults, validates every argument, and invokes the runner.
// The supplied map is not mutated. Lazy defaults resolve in declaration order
// against the arguments gathered so far, so later defaults can read earlier
// ones.
func (f *Func) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(f.args)+len(args))
	for key, value := range args {
		merged[key] = value
	}

	for _, arg := range f.args {
		if _, ok := merged[arg.Name]; ok {
			continue
		}
		switch {
		case arg.LazyDefault != nil:
			value, err := arg.LazyDefault.Load(ctx, merged)
			if err != nil {
				return nil, fmt.Errorf("argspec: %s: resolve default for %q: %w", f.name, arg.Name, err)
			}
			merged[arg.Name] = value
		case arg.Default != nil:
			merged[arg.Name] = arg.Default
		case arg.Required:
			return nil, &ValidationError{Arg: arg.Name, Message: "required"}
		}
	}

	if err := f.Validate(ctx, merged); err != nil {
		return nil, err
	}

	return f.run(ctx, merged)
}

func hasAll(args map[string]any, names []string) bool {
	for _, name := range names {
		if _, ok := args[name]; !ok {
			return false
		}
	}
	return true
}
