package extract

import "strings"

const submissionFormTrailer = "Event Suggestion Submission form: https://forms.gle/tZwY1M19YUgUhn9i6"

// escapedNewline is the two-character "\n" left behind by ICS text escaping.
const escapedNewline = `\n`

// SanitizeDescription drops the submission-form boilerplate and any trailing
// escaped newlines and whitespace. It is idempotent.
func SanitizeDescription(description string) string {
	s := description
	// Removing one occurrence can splice a new one together, so loop.
	for strings.Contains(s, submissionFormTrailer) {
		s = strings.ReplaceAll(s, submissionFormTrailer, "")
	}
	for {
		trimmed := strings.TrimSpace(s)
		trimmed = strings.TrimSuffix(trimmed, escapedNewline)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
