// Package extract recovers typed concert fields from the loosely formatted
// text of a calendar entry. Every function here is pure; compiled patterns
// are package-level and only ever read.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"livecal/internal/model"
)

const (
	FieldSummary     = "summary"
	FieldPrice       = "price"
	FieldFormat      = "format"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldStartTime   = "start_time"
)

// (price)(format)title
var summaryPattern = regexp.MustCompile(`^\(([^()]*)\)\(([^()]*)\)(.+)$`)

// SplitSummary decomposes a summary line into its title, price and format.
// Price and format failures are returned as-is from their classifiers.
func SplitSummary(summary string) (string, model.Price, model.Format, error) {
	m := summaryPattern.FindStringSubmatch(summary)
	if m == nil {
		return "", model.Price{}, 0, fieldError(FieldSummary, summary, ErrStructureMismatch)
	}
	title := strings.TrimSpace(m[3])
	if title == "" {
		return "", model.Price{}, 0, fieldError(FieldSummary, summary, ErrStructureMismatch)
	}

	price, err := ParsePrice(m[1])
	if err != nil {
		return "", model.Price{}, 0, err
	}
	format, err := ParseFormat(m[2])
	if err != nil {
		return "", model.Price{}, 0, err
	}
	return title, price, format, nil
}

var (
	fixedPricePattern     = regexp.MustCompile(`^[¥￥](\d+)$`)
	multiTierPricePattern = regexp.MustCompile(`^[¥￥](\d+)\+$`)
)

// ParsePrice classifies a price token. Checks run in a fixed order:
// tba/tbd, free, "¥N", "¥N+".
func ParsePrice(token string) (model.Price, error) {
	lower := strings.ToLower(token)
	switch {
	case strings.Contains(lower, "tba"), strings.Contains(lower, "tbd"):
		return model.Undetermined(), nil
	case strings.Contains(lower, "free"):
		return model.Free(), nil
	}

	if m := fixedPricePattern.FindStringSubmatch(token); m != nil {
		n, err := parseAmount(m[1])
		if err != nil {
			return model.Price{}, err
		}
		return model.Fixed(n), nil
	}
	if m := multiTierPricePattern.FindStringSubmatch(token); m != nil {
		n, err := parseAmount(m[1])
		if err != nil {
			return model.Price{}, err
		}
		return model.MultiTier(n), nil
	}

	return model.Price{}, fieldError(FieldPrice, token, ErrPriceFormatUnrecognized)
}

// parseAmount only fails when the digit run overflows an int.
func parseAmount(digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fieldError(FieldPrice, digits, ErrPriceAmount)
	}
	return n, nil
}

const (
	onlineMarker   = "🌐"
	inPersonMarker = "🪑"
)

// ParseFormat classifies a format token by its two markers.
func ParseFormat(token string) (model.Format, error) {
	online := strings.Contains(token, onlineMarker)
	inPerson := strings.Contains(token, inPersonMarker)

	switch {
	case online && inPerson:
		return model.FormatHybrid, nil
	case online:
		return model.FormatOnline, nil
	case inPerson:
		return model.FormatInPerson, nil
	default:
		return 0, fieldError(FieldFormat, token, ErrFormatUnrecognized)
	}
}

var platformByTag = map[string]model.Platform{
	"nico nico douga": model.PlatformNicoNicoDouga,
	"spwn":            model.PlatformSpwn,
	"tba":             model.PlatformToBeAnnounced,
	"youtube":         model.PlatformYoutube,
	"z-an":            model.PlatformZan,
	"zaiko":           model.PlatformZaiko,
	"other":           model.PlatformOther,
}

// ParsePlatform maps a category tag to its platform. Matching is exact
// after trimming and lowercasing.
func ParsePlatform(tag string) (model.Platform, error) {
	if p, ok := platformByTag[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return p, nil
	}
	return 0, fieldError(FieldCategory, tag, ErrPlatformUnrecognized)
}
