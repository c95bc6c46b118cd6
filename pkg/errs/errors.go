// Package errs defines the error kinds surfaced by the client: local
// precondition failures, missing credentials, unknown symbols/positions, and
// remote exchange failures. Callers match kinds with errors.Is / errors.As.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrValidation      = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrSymbolNotFound  = errors.New("symbol not found")
	ErrNoPosition      = errors.New("no open position")
)

func Validationf(format string, args ...any) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

func Unauthenticatedf(format string, args ...any) error {
	return errors.Wrapf(ErrUnauthenticated, format, args...)
}

func SymbolNotFoundf(format string, args ...any) error {
	return errors.Wrapf(ErrSymbolNotFound, format, args...)
}

func NoPositionf(format string, args ...any) error {
	return errors.Wrapf(ErrNoPosition, format, args...)
}

// RemoteError carries an exchange or transport failure with the remote
// detail preserved unmodified.
type RemoteError struct {
	Status string // HTTP status or exchange-level status ("err")
	Detail string // raw remote payload or message
}

func (e *RemoteError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("remote error: %s", e.Detail)
	}
	return fmt.Sprintf("remote error (%s): %s", e.Status, e.Detail)
}

func Remote(status, detail string) *RemoteError {
	return &RemoteError{Status: status, Detail: detail}
}

func Remotef(status, format string, args ...any) *RemoteError {
	return &RemoteError{Status: status, Detail: fmt.Sprintf(format, args...)}
}

// IsRemote reports whether any error in err's chain is a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
