package signal

import (
	"strings"
	"unicode"
)

// Normalize strips all whitespace and lower-cases text.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// HasAny reports whether the normalized text contains any cue of the set.
func HasAny(text string, set CueSet) bool {
	return hasAnyNormalized(Normalize(text), set)
}

// CountHits counts how many distinct cues of the set occur in the normalized text.
func CountHits(text string, set CueSet) int {
	norm := Normalize(text)
	hits := 0
	for _, cue := range set {
		if strings.Contains(norm, cue) {
			hits++
		}
	}
	return hits
}

// AnyContains reports whether any of the texts contains a cue of the set.
func AnyContains(texts []string, set CueSet) bool {
	for _, t := range texts {
		if HasAny(t, set) {
			return true
		}
	}
	return false
}

func hasAnyNormalized(norm string, set CueSet) bool {
	if norm == "" {
		return false
	}
	for _, cue := range set {
		if strings.Contains(norm, cue) {
			return true
		}
	}
	return false
}

// IsGreeting reports whether text carries a greeting cue.
func (c Cues) IsGreeting(text string) bool {
	return HasAny(text, c.Greeting)
}

// IsEndRequest reports whether message asks to stop. Thankful closings only
// count once the history has at least PositiveEndMinTurns turns.
func (c Cues) IsEndRequest(message string, historyLen int) bool {
	norm := Normalize(message)
	if hasAnyNormalized(norm, c.EndKeywords) {
		return true
	}
	return historyLen >= PositiveEndMinTurns && hasAnyNormalized(norm, c.PositiveEndKeywords)
}

// HasSuicideCue reports whether text directly contains a high or mid suicide cue.
func (c Cues) HasSuicideCue(text string) bool {
	norm := Normalize(text)
	return hasAnyNormalized(norm, c.SuicideHigh) || hasAnyNormalized(norm, c.SuicideMid)
}

// IsShortNegative reports whether the trimmed text is exactly a short negative response.
func (c Cues) IsShortNegative(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	norm := Normalize(trimmed)
	for _, cue := range c.ShortNegativeResponses {
		if norm == cue {
			return true
		}
	}
	return false
}
