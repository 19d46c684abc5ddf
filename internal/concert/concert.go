// Package concert assembles a model.Concert from one calendar entry.
//
// Required fields (summary, category, description, start time) abort the
// record on failure. The five links are best-effort and only ever become
// nil; the two paths never share an error type.
package concert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"livecal/internal/extract"
	appLog "livecal/internal/log"
	"livecal/internal/model"
)

// Event is the per-entry view the calendar parser must provide. The bool
// results report whether the property is present at all.
type Event interface {
	Summary() (string, bool)
	Category() (string, bool)
	Description() (string, bool)
	// Attachment is the raw ATTACH value, consulted only for the image.
	Attachment() (string, bool)
	// Start returns the raw DTSTART value and its TZID parameter.
	Start() (value, tzid string, ok bool)
}

var ErrMissingRequiredField = errors.New("missing required field")

// Error is returned when a required field cannot be produced. Field names
// the failing field; Err wraps ErrMissingRequiredField or an
// *extract.FieldError.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("concert %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func missing(field string) *Error {
	return &Error{Field: field, Err: ErrMissingRequiredField}
}

// FromEvent builds a concert from ev, or reports the first required field
// that failed. A fresh ID is assigned on every successful call.
func FromEvent(ev Event) (model.Concert, error) {
	summary, ok := ev.Summary()
	if !ok {
		return model.Concert{}, missing(extract.FieldSummary)
	}
	category, ok := ev.Category()
	if !ok {
		return model.Concert{}, missing(extract.FieldCategory)
	}

	title, price, format, err := extract.SplitSummary(strings.TrimSpace(summary))
	if err != nil {
		return model.Concert{}, &Error{Field: extract.FieldSummary, Err: err}
	}
	platform, err := extract.ParsePlatform(category)
	if err != nil {
		return model.Concert{}, &Error{Field: extract.FieldCategory, Err: err}
	}

	rawDescription, ok := ev.Description()
	if !ok {
		return model.Concert{}, missing(extract.FieldDescription)
	}
	description := extract.SanitizeDescription(rawDescription)

	value, tzid, ok := ev.Start()
	if !ok {
		return model.Concert{}, missing(extract.FieldStartTime)
	}
	st, err := extract.ParseStartTime(value, tzid)
	if err != nil {
		return model.Concert{}, &Error{Field: extract.FieldStartTime, Err: err}
	}
	start, err := extract.ResolveStart(st)
	if err != nil {
		return model.Concert{}, &Error{Field: extract.FieldStartTime, Err: err}
	}

	attachment, _ := ev.Attachment()

	return model.Concert{
		ID:          uuid.New().String(),
		Title:       title,
		Format:      format,
		Price:       price,
		Platform:    platform,
		Description: description,
		StartTime:   start,
		ImageURL:    optionalLink(title, func() (string, error) { return extract.ImageURL(description, attachment) }),
		TwitterURL:  optionalLink(title, func() (string, error) { return extract.TwitterURL(description) }),
		YoutubeURL:  optionalLink(title, func() (string, error) { return extract.YoutubeURL(description) }),
		TicketURL:   optionalLink(title, func() (string, error) { return extract.TicketURL(description) }),
		OfficialURL: optionalLink(title, func() (string, error) { return extract.OfficialURL(description) }),
	}, nil
}

// optionalLink turns a link extraction failure into nil. Only LinkErrors
// are swallowed; anything else is a programming error and panics.
func optionalLink(title string, find func() (string, error)) *string {
	u, err := find()
	if err == nil {
		return &u
	}

	var le *extract.LinkError
	if !errors.As(err, &le) {
		panic(fmt.Sprintf("concert: unexpected link error type %T: %v", err, err))
	}
	appLog.Info("returning null for link", "link", le.Link, "reason", le.Err, "title", title)
	return nil
}
