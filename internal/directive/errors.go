package directive

import (
	"errors"
	"fmt"
)

// BindingErrorCode categorizes binding errors.
type BindingErrorCode string

const (
	// ErrCodeGrammar indicates the directive string matches neither binding form.
	ErrCodeGrammar BindingErrorCode = "GRAMMAR"

	// ErrCodeRootPlacement indicates the host node is not inside an element.
	ErrCodeRootPlacement BindingErrorCode = "ROOT_PLACEMENT"

	// ErrCodeNotCollection indicates the bound value is present but not a collection.
	ErrCodeNotCollection BindingErrorCode = "NOT_COLLECTION"

	// ErrCodeSource indicates the source expression cannot be evaluated.
	ErrCodeSource BindingErrorCode = "SOURCE"

	// ErrCodeRender indicates a render-tree operation failed.
	ErrCodeRender BindingErrorCode = "RENDER"
)

// BindingError is a configuration or rendering error raised by a list binding.
//
// Every BindingError is fatal: the binding performs no partial rendering
// after returning one, and callers must not retry.
type BindingError struct {
	// Code identifies the error category.
	Code BindingErrorCode

	// Message is a human-readable description.
	Message string

	// Directive is the raw directive string, when known.
	Directive string

	// Near is the offending substring for grammar errors.
	Near string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Near != "" {
		msg = fmt.Sprintf("%s near %q", msg, e.Near)
	}
	if e.Directive != "" {
		msg = fmt.Sprintf("%s (directive=%q)", msg, e.Directive)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *BindingError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code BindingErrorCode) bool {
	var be *BindingError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// IsGrammarError reports whether err is a directive grammar error.
func IsGrammarError(err error) bool { return hasCode(err, ErrCodeGrammar) }

// IsRootPlacementError reports whether err is a root placement error.
func IsRootPlacementError(err error) bool { return hasCode(err, ErrCodeRootPlacement) }

// IsSourceError reports whether err is a source evaluation error.
func IsSourceError(err error) bool { return hasCode(err, ErrCodeSource) }

// IsNotCollectionError reports whether err is a collection type error.
func IsNotCollectionError(err error) bool { return hasCode(err, ErrCodeNotCollection) }

func newGrammarError(directive, near, message string) *BindingError {
	return &BindingError{
		Code:      ErrCodeGrammar,
		Message:   message,
		Directive: directive,
		Near:      near,
	}
}

func newRenderError(directive, op string, err error) *BindingError {
	return &BindingError{
		Code:      ErrCodeRender,
		Message:   op + " failed",
		Directive: directive,
		Err:       err,
	}
}
