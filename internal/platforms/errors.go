package platforms

import (
	"errors"

	"github.com/pricekart/compare-service/internal/types"
)

// CredentialAcquisitionError reports a failed handshake step. Step names the
// phase inside the handshake so logs pinpoint where the flow broke.
type CredentialAcquisitionError struct {
	Platform types.Platform
	Step     string
	Err      error
}

func (e *CredentialAcquisitionError) Error() string {
	msg := string(e.Platform) + " credential acquisition failed at " + e.Step
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CredentialAcquisitionError) Unwrap() error {
	return e.Err
}

// ParseError reports an upstream payload whose shape did not match what the
// handler expected. Storefronts change their private APIs without notice, so
// these errors are routine rather than exceptional.
type ParseError struct {
	Platform types.Platform
	Msg      string
}

func (e *ParseError) Error() string {
	return string(e.Platform) + " response parse: " + e.Msg
}

// NonServiceableError signals that the storefront refuses to deliver to the
// requested location. It is not retried; the verdict is recorded in the
// credential instead.
type NonServiceableError struct {
	Platform types.Platform
}

func (e *NonServiceableError) Error() string {
	return string(e.Platform) + ": location not serviceable"
}

// IsNonServiceable reports whether err wraps a NonServiceableError.
func IsNonServiceable(err error) bool {
	var e *NonServiceableError
	return errors.As(err, &e)
}

// errWrongCredential trips the re-acquire path when a handler is handed a
// credential minted for a different platform.
var errWrongCredential = errors.New("wrong credential type for platform")
