package argspec

import "errors"

// ValidationError marks a failed argument check. Form plumbing surfaces these
// as field or form errors instead of hard failures, so validator code can
// return plain errors and still participate in form rendering.
type ValidationError struct {
	// Arg names the argument the failure is attributed to. Empty means the
	// failure applies to the argument set as a whole.
	Arg     string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "invalid value"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Wrap coerces err into a *ValidationError attributed to arg. Errors that
// already are validation errors pass through untouched so their attribution
// survives.
func Wrap(arg string, err error) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return &ValidationError{Arg: arg, Message: err.Error(), Err: err}
}

// AsValidation unwraps err into a *ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
