package plugin

import "errors"

var (
	// ErrNotFound means no index entry matched the requested plugin.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyInstalled means both the install link and the checkout exist.
	ErrAlreadyInstalled = errors.New("already installed")

	// ErrNotInstalled means the plugin has no install link or no checkout.
	ErrNotInstalled = errors.New("not installed")

	// ErrIndexUnavailable means there is no cached index to read from.
	ErrIndexUnavailable = errors.New("plugin index unavailable")
)

// IsReported reports whether err is an expected precondition failure that
// should be shown to the user without failing the command.
func IsReported(err error) bool {
	return errors.Is(err, ErrAlreadyInstalled) || errors.Is(err, ErrNotInstalled)
}
