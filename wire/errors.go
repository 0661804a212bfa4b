package wire

import (
	"errors"
	"fmt"
)

// ErrorKind classifies wire protocol errors.
type ErrorKind int

const (
	// ErrorTruncated indicates the stream ended inside a message.
	ErrorTruncated ErrorKind = iota
	// ErrorTooLarge indicates a frame exceeding MaxFrameSize.
	ErrorTooLarge
	// ErrorDecode indicates a malformed payload (unknown tag, invalid UTF-8,
	// trailing bytes).
	ErrorDecode
)

// ProtocolError represents a wire protocol violation. There is no
// resynchronization: the connection that produced one is abandoned.
type ProtocolError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err is (or wraps) a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// RejectionError is a server-issued rejection (UnauthorizedAccess or
// IndexOutOfBounds) surfaced as an error on the client side.
type RejectionError struct {
	Result Result
}

func (e *RejectionError) Error() string {
	switch e.Result {
	case ResultUnauthorizedAccess:
		return "request rejected: unauthorized access"
	case ResultIndexOutOfBounds:
		return "request rejected: index out of bounds"
	default:
		return fmt.Sprintf("request rejected: result %d", uint32(e.Result))
	}
}
