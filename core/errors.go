package core

import "github.com/pkg/errors"

// FieldError attaches an input error to the struct field that caused it.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries a rejected input, either as a whole (Err) or
// per field (Fields). API layers render it as a 400 response.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldMap returns the per-field errors keyed by field name, or nil when
// the error applies to the input as a whole.
func (err ValidationError) FieldMap() map[string]string {
	if err.Fields == nil {
		return nil
	}
	flds := make(map[string]string, len(err.Fields))
	for _, fErr := range err.Fields {
		flds[fErr.Field] = fErr.Error
	}
	return flds
}

type shutdown struct {
	message string
}

// NewShutdownError signals that data integrity has been compromised and
// the server should stop serving.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
