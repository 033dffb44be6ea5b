package apperror

// AppError is an error with the HTTP status and message the client sees.
// Err holds the cause and is never rendered.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code and message, so a copy made by With still satisfies
// errors.Is against its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// With returns a copy of the sentinel e that records cause for logging.
func (e *AppError) With(cause error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: cause}
}

func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}
