package mutex

import "fmt"

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is returned by the few operations of this package that can fail in an
// expected way. Contract violations are never reported as an Error.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCSharedOwners:
		errorCode = "SharedOwners"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("MutexError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess      RetCode = iota // 0: Operation succeeded.
	RetCSharedOwners                // 1: Other owners of a shared mutex remain.
)
