package ipfs_pinata

import (
	"errors"
	"fmt"
)

var ErrMissingCredentials = errors.New("pinata credentials are not configured")
var ErrAuthenticationFailed = errors.New("pinata rejected the credentials")
var ErrMissingContentId = errors.New("pinata response did not include an IpfsHash")

// TransportError is returned when a request to the pinning service or its
// gateway fails, either on the network (StatusCode is 0) or with a non-2xx
// response. The underlying cause, when there is one, is available through
// errors.Unwrap.
type TransportError struct {
	Operation  string
	Url        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("pinata %s: request to %s failed: %v", e.Operation, e.Url, e.Err)
	}
	msg := fmt.Sprintf("pinata %s: %s responded with status %d", e.Operation, e.Url, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += " (" + e.Err.Error() + ")"
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is, or wraps, a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
