package catalog

import "errors"

var (
	// ErrProviderUnavailable is returned when the provider cannot be reached,
	// answers with a server error, or sends a body that cannot be decoded.
	ErrProviderUnavailable = errors.New("catalog provider unavailable")

	// ErrProviderRejected is returned on a non-success client-side response,
	// e.g. bad credentials or an expired bearer token.
	ErrProviderRejected = errors.New("catalog provider rejected the request")

	// ErrValidationUnavailable is the validator's terminal failure. It always
	// wraps the provider error that caused it.
	ErrValidationUnavailable = errors.New("genre validation unavailable")
)
