package lockmgr

import "fmt"

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is returned by the lock manager for invalid requests.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInvalidKey:
		errorCode = "InvalidKey"
	case RetCNotOwner:
		errorCode = "NotOwner"
	case RetCOwnerID:
		errorCode = "OwnerID"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("LockError (code %s): %s", errorCode, e.Msg)
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
	RetCSuccess    RetCode = iota // 0: Operation succeeded.
	RetCInvalidKey                // 1: The key is empty.
	RetCNotOwner                  // 2: The owner ID does not match the holder.
	RetCOwnerID                   // 3: No owner ID could be generated.
)
