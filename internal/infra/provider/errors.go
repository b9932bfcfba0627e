package provider

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNetwork
	KindDecode
	KindRejected
	KindUnsupportedMethod
	KindEncode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindRejected:
		return "rejected"
	case KindUnsupportedMethod:
		return "unsupported_method"
	case KindEncode:
		return "encode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// GatewayError is the opt-in error channel behind the boolean API.
// StatusCode and Body are only set for KindRejected.
type GatewayError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	cause      error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Kind == KindRejected:
		return fmt.Sprintf("gateway rejected request: HTTP %d", e.StatusCode)
	case e.cause != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.cause)
	default:
		return fmt.Sprintf("%s error", e.Kind)
	}
}

func (e *GatewayError) Cause() error  { return e.cause }
func (e *GatewayError) Unwrap() error { return e.cause }

func newGatewayError(kind ErrorKind, cause error, msg string) *GatewayError {
	if cause != nil {
		cause = errors.Wrap(cause, msg)
	} else {
		cause = errors.New(msg)
	}
	return &GatewayError{Kind: kind, cause: cause}
}

// KindOf reports the kind of the first GatewayError in err's chain. Other
// errors count as network failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return KindNetwork
}
