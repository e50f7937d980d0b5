// Package scholarerr defines the error taxonomy shared across the pipeline.
//
// Page-local failures are absorbed into warnings carried on a pipeline
// Result; only InputError, EmptyDocument and IOError surface as returned
// errors from the top-level entry points (pipeline.Run also returns the
// context's error when cancelled).
package scholarerr

import "fmt"

// Kind tags an error with the taxonomy bucket it belongs to.
type Kind string

const (
	KindInput               Kind = "InputError"
	KindMalformedPage       Kind = "MalformedPage"
	KindEmptyDocument       Kind = "EmptyDocument"
	KindDictionaryLoad      Kind = "DictionaryLoadError"
	KindStructureValidation Kind = "StructureValidationFailure"
	KindIO                  Kind = "IOError"
)

// Error wraps an underlying cause with a taxonomy Kind so callers can
// branch on classification with errors.As without string matching.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged Error without an underlying cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds a tagged Error around an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Warning is a non-fatal, page-scoped problem recorded on a Result rather
// than returned as an error. The pipeline keeps processing after one.
type Warning struct {
	Kind    Kind
	Page    int // 0 if document-scoped rather than page-scoped
	Message string
	RunID   string // correlates this warning with the pipeline run that raised it
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("[%s] run %s page %d: %s", w.Kind, w.RunID, w.Page, w.Message)
	}
	return fmt.Sprintf("[%s] run %s: %s", w.Kind, w.RunID, w.Message)
}
