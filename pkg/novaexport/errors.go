package novaexport

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by Parse and ParseFile is a *ParseError
// whose Kind is one of these, so callers can match with errors.Is.
var (
	ErrNoHeaderFound     = errors.New("no header row with time and potential columns")
	ErrEmptyOrTooShort   = errors.New("file is empty or has fewer than 2 data rows")
	ErrMissingTimeColumn = errors.New("file has no time column")
	ErrUnreadableFile    = errors.New("file could not be read")
)

// ParseError reports why a single export was rejected.
type ParseError struct {
	Path string
	Kind error
	Err  error // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Kind)
}

func (e *ParseError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Title is the short heading shown to the operator for this kind of failure.
func (e *ParseError) Title() string {
	switch e.Kind {
	case ErrNoHeaderFound:
		return "No header"
	case ErrEmptyOrTooShort:
		return "Empty file"
	case ErrMissingTimeColumn:
		return "Invalid file"
	default:
		return "Error"
	}
}

// Message is the operator-facing explanation, naming the file.
func (e *ParseError) Message() string {
	switch e.Kind {
	case ErrNoHeaderFound:
		return fmt.Sprintf("No header row with %q and %q was found, the file will be skipped:\n%s",
			headerMarkerTime, headerMarkerPotential, e.Path)
	case ErrEmptyOrTooShort:
		return fmt.Sprintf("The file is empty or unusable and will be skipped:\n%s", e.Path)
	case ErrMissingTimeColumn:
		return fmt.Sprintf("The file does not contain a valid time column:\n%s", e.Path)
	default:
		msg := fmt.Sprintf("Error loading file:\n%s", e.Path)
		if e.Err != nil {
			msg += "\n\n" + e.Err.Error()
		}
		return msg
	}
}

func newParseError(path string, kind, cause error) *ParseError {
	return &ParseError{Path: path, Kind: kind, Err: cause}
}
