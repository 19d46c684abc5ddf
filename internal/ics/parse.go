package ics

import (
	"bytes"
	"errors"
	"strings"

	ical "github.com/arran4/golang-ical"

	appLog "livecal/internal/log"
)

// Event is one VEVENT of a feed document. It exposes the raw property
// values the concert aggregator asks for; it does no interpretation of its
// own beyond trimming the short single-line properties.
type Event struct {
	Source Source
	UID    string

	ve *ical.VEvent
}

// ParseICS splits a feed document into its events. VEVENTs without a UID
// are logged and skipped; the rest of the document is still returned.
func ParseICS(src Source, body []byte) ([]Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]Event, 0)
	for _, ve := range cal.Events() {
		uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
		if uidProp == nil || uidProp.Value == "" {
			appLog.Error("ics vevent skipped", errors.New("missing UID"), "id", src.ID)
			continue
		}
		events = append(events, Event{Source: src, UID: uidProp.Value, ve: ve})
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "event_count", len(events))
	return events, nil
}

func (e Event) value(p ical.ComponentProperty) (string, bool) {
	prop := e.ve.GetProperty(p)
	if prop == nil {
		return "", false
	}
	return prop.Value, true
}

func (e Event) Summary() (string, bool) {
	v, ok := e.value(ical.ComponentPropertySummary)
	return strings.TrimSpace(v), ok
}

func (e Event) Category() (string, bool) {
	v, ok := e.value(ical.ComponentPropertyCategories)
	return strings.TrimSpace(v), ok
}

// Description is returned with its ICS escapes intact.
func (e Event) Description() (string, bool) {
	return e.value(ical.ComponentPropertyDescription)
}

// Attachment returns the first ATTACH that is a reference rather than
// inline binary data.
func (e Event) Attachment() (string, bool) {
	for _, p := range e.ve.GetProperties(ical.ComponentPropertyAttach) {
		if hasParam(p, "VALUE", "BINARY") || hasParam(p, "ENCODING", "BASE64") {
			continue
		}
		if v := strings.TrimSpace(p.Value); v != "" {
			return v, true
		}
	}
	return "", false
}

func (e Event) Start() (string, string, bool) {
	p := e.ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return "", "", false
	}
	var tzid string
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		tzid = tzs[0]
	}
	return p.Value, tzid, true
}

// RRule returns the raw recurrence rule, or "" for one-off events.
func (e Event) RRule() string {
	v, _ := e.value(ical.ComponentPropertyRrule)
	return strings.TrimSpace(v)
}

func hasParam(p *ical.IANAProperty, name, value string) bool {
	for _, v := range p.ICalParameters[name] {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
