package export

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/field-reports/internal/constants"
	"github.com/kozaktomas/field-reports/internal/report"
)

// Error is a failure to construct an artifact. Op names the step that
// failed, e.g. "create archive" or "copy photo".
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// UserMessage returns the text shown to a client for err. Outside debug
// mode construction failures collapse to a generic message.
func UserMessage(err error, debug bool) string {
	if errors.Is(err, report.ErrNoReports) {
		return constants.NoReportsMessage
	}
	if debug {
		return err.Error()
	}
	return constants.ExportFailedMessage
}
