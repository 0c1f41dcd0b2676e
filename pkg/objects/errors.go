package objects

import (
	"errors"
	"fmt"
)

// NotFoundError reports primary keys that did not resolve to rows. Views map
// it to a 404 response.
type NotFoundError struct {
	Table   string
	Missing []any
}

func (e *NotFoundError) Error() string {
	if len(e.Missing) == 1 {
		return fmt.Sprintf("objects: %s: no row with key %v", e.Table, e.Missing[0])
	}
	return fmt.Sprintf("objects: %s: no rows with keys %v", e.Table, e.Missing)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
