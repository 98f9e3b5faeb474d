package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	pkgerrors "user-service/pkg/errors"
)

// MaxSearchQueryLength is the maximum number of characters in a search term.
const MaxSearchQueryLength = 100

// markupPatterns match script injection attempts in terms that end up echoed
// back to browsers.
var markupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*script`),
	regexp.MustCompile(`(?i)\b(javascript|vbscript)\s*:`),
	regexp.MustCompile(`(?i)\bon(load|error|click|mouseover)\s*=`),
}

// ValidateSearchQuery trims a search term and checks it is short and only
// uses safe characters. field names the parameter in error messages.
func ValidateSearchQuery(field, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", pkgerrors.NewValidationError(field,
			fmt.Sprintf("%s must be shorter than or equal to %d characters", field, MaxSearchQueryLength))
	}

	invalid := pkgerrors.NewValidationError(field, field+" contains invalid characters")

	for _, pattern := range markupPatterns {
		if pattern.MatchString(query) {
			return "", invalid
		}
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", invalid
		}
	}

	return query, nil
}

// isValidSearchChar allows letters, digits, spaces and the punctuation found
// in names and email addresses.
func isValidSearchChar(char rune) bool {
	if unicode.IsLetter(char) || unicode.IsNumber(char) || unicode.IsMark(char) {
		return true
	}
	return strings.ContainsRune(" -_.@+'", char)
}
