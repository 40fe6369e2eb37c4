package nadoerr

type Error struct {
	errorCode string
	msgToUser string // public
	dbgInfo   error  // private, for debugging

	exitCode int // optional, for process exit status
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfo
}

func (e *Error) Unwrap() error {
	return e.dbgInfo
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfo = err
	return e
}

func (e *Error) ExitCode() int {
	if e.exitCode == 0 {
		return 2
	}
	return e.exitCode
}

func (e *Error) SetExitCode(code int) *Error {
	e.exitCode = code
	return e
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

const ErrCodeInternalError = "internal_error"

func ErrInternal() *Error {
	return New(
		ErrCodeInternalError,
		"internal harness error",
	)
}
