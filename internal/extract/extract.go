// Package extract pulls company and user identifiers out of freeform chat
// text. Extraction is best-effort: the first match for each label wins, and
// absence is not an error, just a signal that submission has to be gated
// behind the identifier dialog.
package extract

import "regexp"

// Label patterns take a hyphen, underscore, or space between the label words
// and an optional colon before the identifier token.
var (
	companyIDPattern = regexp.MustCompile(`(?i)company[-_\s]id\s*:?\s*([a-zA-Z0-9-_]+)`)
	compIDPattern    = regexp.MustCompile(`(?i)comp[-_\s]id\s*:?\s*([a-zA-Z0-9-_]+)`)
	userIDPattern    = regexp.MustCompile(`(?i)user[-_\s]id\s*:?\s*([a-zA-Z0-9-_]+)`)
)

// IDs holds the identifiers found in a message. An empty string means the
// corresponding label was not present.
type IDs struct {
	CompanyID string
	UserID    string
}

// Complete reports whether both identifiers were found.
func (ids IDs) Complete() bool {
	return ids.CompanyID != "" && ids.UserID != ""
}

// Extract scans text for company and user identifier labels. The token
// grammar is alphanumeric plus hyphen and underscore; no further validation
// is applied.
func Extract(text string) IDs {
	var ids IDs
	if m := companyIDPattern.FindStringSubmatch(text); m != nil {
		ids.CompanyID = m[1]
	} else if m := compIDPattern.FindStringSubmatch(text); m != nil {
		ids.CompanyID = m[1]
	}
	if m := userIDPattern.FindStringSubmatch(text); m != nil {
		ids.UserID = m[1]
	}
	return ids
}
