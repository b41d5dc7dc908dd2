package binding

import (
	"strconv"

	"github.com/ygrebnov/errorc"

	"github.com/feather-lang/parselmouth/errors"
)

// CheckStatus translates the status code of a numerical routine. Zero is
// success; any other value is returned as ErrNumericalStatus carrying the
// routine name and the status.
func CheckStatus(routine string, status int) error {
	if status == 0 {
		return nil
	}
	return errorc.With(
		errors.ErrNumericalStatus,
		errorc.String(errors.FieldRoutine, routine),
		errorc.String(errors.FieldStatus, strconv.Itoa(status)),
	)
}
