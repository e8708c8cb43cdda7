package registry

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnregisteredURL is matched by every *UnregisteredURLError.
	ErrUnregisteredURL = errors.New("unregistered URL")

	// ErrTypeMismatch is returned when a value cannot be coerced to a Key.
	ErrTypeMismatch = errors.New("type mismatch")
)

const notFoundFormat = `No registered URL matches the request.

  Registered URLs:
    - %s

  Requested URL:
    %s`

// UnregisteredURLError reports a request that matched no registration.
// It carries the full registry dump so the failing test shows what was
// configured.
type UnregisteredURLError struct {
	Registered []string
	Requested  string
}

func (e *UnregisteredURLError) Error() string {
	registered := strings.Join(e.Registered, "\n    - ")
	if registered == "" {
		registered = "(None)"
	}
	return fmt.Sprintf(notFoundFormat, registered, e.Requested)
}

// Is makes errors.Is(err, ErrUnregisteredURL) true.
func (e *UnregisteredURLError) Is(target error) bool {
	return target == ErrUnregisteredURL
}

// IsUnregistered reports whether err, or anything it wraps (including the
// *url.Error returned by http.Client), is an unregistered URL failure.
func IsUnregistered(err error) bool {
	return errors.Is(err, ErrUnregisteredURL)
}
