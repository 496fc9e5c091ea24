package services

import (
	"errors"

	"github.com/jkoskela/nakkikone/pkg/core/model"
)

// isNotFound reports whether err is one of the not-found members of the
// domain taxonomy, as opposed to a storage failure.
func isNotFound(err error) bool {
	return errors.Is(err, model.ErrProgramNotFound) ||
		errors.Is(err, model.ErrShiftNotFound) ||
		errors.Is(err, model.ErrBookingNotFound)
}
