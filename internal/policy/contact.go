package policy

import (
	"regexp"
	"strings"
)

// ContactExtractor decides whether a message supplies contact details.
type ContactExtractor interface {
	Supplied(message string) bool
}

var (
	phonePattern = regexp.MustCompile(`\d{10,11}`)
	namePattern  = regexp.MustCompile(`[가-힣]{2,4}|[a-zA-Z]{2,10}`)
)

var phoneSeparators = strings.NewReplacer("-", "", " ", "", ".", "", "(", "", ")", "")

// BroadContactExtractor accepts a 10-11 digit phone number or any name-shaped
// token (2-4 Hangul syllables or 2-10 Latin letters). Almost every short Korean
// reply matches the name shape, so after a contact request nearly any answer is
// treated as contact info.
type BroadContactExtractor struct{}

func (BroadContactExtractor) Supplied(message string) bool {
	return hasPhone(message) || namePattern.MatchString(message)
}

// PhoneContactExtractor only accepts a phone number.
type PhoneContactExtractor struct{}

func (PhoneContactExtractor) Supplied(message string) bool {
	return hasPhone(message)
}

func hasPhone(message string) bool {
	return phonePattern.MatchString(phoneSeparators.Replace(message))
}
