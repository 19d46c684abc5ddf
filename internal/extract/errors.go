package extract

import (
	"errors"
	"fmt"
)

var (
	ErrStructureMismatch       = errors.New("summary is not \"(price)(format)title\"")
	ErrPriceFormatUnrecognized = errors.New("price format unrecognized")
	ErrPriceAmount             = errors.New("price amount conversion failed")
	ErrFormatUnrecognized      = errors.New("live format unrecognized")
	ErrPlatformUnrecognized    = errors.New("platform category unrecognized")
	ErrStartTimeFormat         = errors.New("start time value unsupported")
	ErrUnknownTimezone         = errors.New("timezone identifier unknown")
	ErrAmbiguousLocalTime      = errors.New("local time is ambiguous or invalid")
	ErrNonexistentLocalTime    = fmt.Errorf("%w: no such wall-clock time in zone", ErrAmbiguousLocalTime)

	ErrLinkNotFound = errors.New("link not found")
	ErrMalformedURL = errors.New("malformed url")
)

// FieldError reports a failed extraction of a field the concert record
// cannot do without. Text is the offending raw input.
type FieldError struct {
	Field string
	Text  string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v, the text is %q", e.Field, e.Err, e.Text)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldError(field, text string, err error) *FieldError {
	return &FieldError{Field: field, Text: text, Err: err}
}

// LinkError reports an optional link that could not be recovered. It is
// never fatal to the record it belongs to.
type LinkError struct {
	Link string
	Err  error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s link: %v", e.Link, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }
