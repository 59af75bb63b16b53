package policy

import (
	"strings"
	"unicode/utf8"

	"maumcare/internal/signal"
)

// State is everything the rules need to know about the recent window,
// computed once per request.
type State struct {
	// contact handoff
	AskedContactInfo bool
	ContactSupplied  bool

	// crisis sub-dialogue
	CrisisOffered      bool
	CrisisAskedContact bool
	Agreement          bool
	Refusal            bool

	// bullying sub-dialogue
	OfferedConnection         bool
	AskedContactRecently      bool
	AskedSafety               bool
	AskedFrequency            bool
	AskedBullyingSituation    bool
	ReportedFrequency         bool
	DisclosedSpecificViolence bool

	// medium distress
	DisclosedSituation   bool
	ProbedSituation      bool
	ProbedSafety         bool
	ProbedFrequency      bool
	ShortNegativeMessage bool

	// follow-ups after a disclosure
	SuicideInHistory      bool
	NegativeBelief        bool
	BullyingInHistory     bool
	GivingUp              bool
	RepeatedShortNegative bool
	SpecificContent       bool
	ViolenceMentioned     bool
	ShortRecentReply      bool
	GenericReplyUsed      bool
}

func deriveState(w RecentWindow, cues signal.Cues, lex Lexicon, contacts ContactExtractor) State {
	msg := []string{w.Message()}
	var s State

	s.AskedContactInfo = containsAny(w.Assistant(contactWindow), lex.ContactRequest)
	s.ContactSupplied = contacts != nil && contacts.Supplied(w.Message())

	crisisAI := w.Assistant(crisisWindow)
	s.CrisisOffered = containsAny(crisisAI, lex.CrisisOffer)
	s.CrisisAskedContact = containsAny(crisisAI, lex.ContactAsked)
	s.Agreement = containsAny(msg, lex.Agreement)
	s.Refusal = containsAny(msg, cues.ShortNegativeResponses) || containsAny(msg, lex.Refusal)

	bullyAI := w.Assistant(bullyingAIWin)
	bullyUsers := w.Users(bullyingUsrWin)
	s.OfferedConnection = containsAny(bullyAI, lex.ConnectionOffer)
	s.AskedContactRecently = containsAny(bullyAI, lex.ContactAsked)
	s.AskedSafety = containsAny(bullyAI, lex.SafetyAsked)
	s.AskedFrequency = containsAny(bullyAI, lex.FrequencyAsked)
	s.AskedBullyingSituation = containsAny(bullyAI, lex.BullyingProbe)
	s.ReportedFrequency = containsAny(bullyUsers, lex.Frequency)
	s.DisclosedSpecificViolence = containsAny(bullyUsers, lex.SpecificViolence)

	distressAI := w.Assistant(distressWindow)
	s.DisclosedSituation = containsAny(w.Users(distressWindow), lex.SituationDisclosed)
	s.ProbedSituation = containsAny(distressAI, lex.SituationAsked)
	s.ProbedSafety = containsAny(distressAI, lex.SafetyAsked)
	s.ProbedFrequency = containsAny(distressAI, lex.FrequencyAsked)
	s.ShortNegativeMessage = containsAny(msg, cues.ShortNegativeResponses)

	recentUsers := w.Users(recentUserWin)
	s.SuicideInHistory = containsAny(recentUsers, lex.SuicideHistory)
	s.NegativeBelief = containsAny(msg, lex.NegativeBelief)
	s.BullyingInHistory = containsAny(recentUsers, lex.BullyingHistory)
	s.GivingUp = containsAny(msg, cues.GivingUp)

	shortNeg := 0
	for _, t := range w.LastUserTurns(shortNegTurns) {
		if cues.IsShortNegative(t) {
			shortNeg++
		}
	}
	s.RepeatedShortNegative = shortNeg >= 2

	withMsg := w.UsersWithMessage(recentUserWin)
	s.SpecificContent = containsAny(withMsg, lex.SpecificContent)
	s.ViolenceMentioned = containsAny(withMsg, lex.Violence)
	s.GenericReplyUsed = containsAny(w.Assistant(recentAIWin), lex.GenericReply)
	for _, t := range w.LastUserTurns(shortReplyTurns) {
		if isShortReply(t, lex) {
			s.ShortRecentReply = true
			break
		}
	}
	return s
}

func isShortReply(text string, lex Lexicon) bool {
	trimmed := strings.TrimSpace(text)
	for _, exempt := range lex.ShortReplyExempt {
		if trimmed == exempt {
			return false
		}
	}
	return utf8.RuneCountInString(trimmed) < lex.ShortReplyRunes
}
