package policy

import (
	"fmt"
	"strings"

	"maumcare/internal/models"
	"maumcare/internal/risk"
)

// Rule names, in evaluation order.
const (
	RuleContactHandoff    = "contact_handoff"
	RuleSuicideCrisis     = "suicide_crisis"
	RuleEndRequest        = "end_request"
	RuleGreeting          = "greeting"
	RuleBullying          = "bullying"
	RuleNegativeBelief    = "negative_belief"
	RuleHighDistress      = "high_distress"
	RuleMediumDistress    = "medium_distress"
	RuleGivingUp          = "giving_up"
	RuleRepeatedNegative  = "repeated_short_negative"
	RuleShortReply        = "short_reply"
	RuleDisclosedFollowup = "disclosed_followup"
	RuleAcknowledge       = "acknowledge"
)

// Rule is one (predicate, handler) pair of the policy table.
type Rule struct {
	Name    string
	Applies func(*input) bool
	Reply   func(*input) string
}

type input struct {
	window     RecentWindow
	assessment risk.Assessment
	state      State
}

// escalateMinTurns and escalateMinScore gate offering to connect a bullying victim with help.
const (
	escalateMinTurns = 4
	escalateMinScore = 60
)

func always(*input) bool { return true }

func (c *Composer) buildRules() []Rule {
	return []Rule{
		{RuleContactHandoff, c.matchContactHandoff, c.replyContactHandoff},
		{RuleSuicideCrisis, c.matchCrisis, c.replyCrisis},
		{RuleEndRequest, c.matchEndRequest, c.replyClosing},
		{RuleGreeting, c.matchGreeting, c.replyGreeting},
		{RuleBullying, c.matchBullying, c.replyBullying},
		{RuleNegativeBelief, c.matchNegativeBelief, c.replyNegativeBelief},
		{RuleHighDistress, c.matchHighDistress, c.replyHighDistress},
		{RuleMediumDistress, c.matchMediumDistress, c.replyMediumDistress},
		{RuleGivingUp, c.matchGivingUp, c.replyGivingUp},
		{RuleRepeatedNegative, c.matchRepeatedNegative, c.replyRepeatedNegative},
		{RuleShortReply, c.matchShortReply, c.replyShortReply},
		{RuleDisclosedFollowup, c.matchDisclosedFollowup, c.replyDisclosedFollowup},
		{RuleAcknowledge, always, c.replyAcknowledge},
	}
}

func (c *Composer) matchContactHandoff(in *input) bool {
	return in.state.AskedContactInfo && in.state.ContactSupplied
}

func (c *Composer) replyContactHandoff(*input) string {
	return c.replies.HandoffComplete
}

func (c *Composer) matchCrisis(in *input) bool {
	return in.assessment.SuicideSignal.Elevated() || c.cues.HasSuicideCue(in.window.Message())
}

func (c *Composer) replyCrisis(in *input) string {
	s := in.state
	switch {
	case s.CrisisAskedContact && s.ContactSupplied:
		return c.replies.CrisisClose
	case s.CrisisOffered && s.Refusal:
		return c.replies.CrisisRefusal
	case s.CrisisOffered && s.Agreement:
		return c.replies.AskContact
	default:
		return c.replies.CrisisOffer
	}
}

func (c *Composer) matchEndRequest(in *input) bool {
	sig := in.assessment.SuicideSignal
	if sig != models.SuicideNone && sig != models.SuicideLow {
		return false
	}
	return c.cues.IsEndRequest(in.window.Message(), in.window.Len())
}

func (c *Composer) replyClosing(in *input) string {
	return PickNonRepeating(c.replies.Closings, in.window.Assistant(closingWindow))
}

func (c *Composer) matchGreeting(in *input) bool {
	return c.cues.IsGreeting(in.window.Message())
}

func (c *Composer) replyGreeting(in *input) string {
	variants := c.replies.Greetings
	if len(variants) == 0 {
		return c.replies.Acknowledge
	}
	count := 0
	for _, t := range in.window.LastUserTurns(greetingUserTurns) {
		if c.cues.IsGreeting(t) {
			count++
		}
	}
	idx := count - 1
	if idx < 0 {
		idx = 0
	}
	return variants[idx%len(variants)]
}

func (c *Composer) matchBullying(in *input) bool {
	return containsAny([]string{in.window.Message()}, c.cues.Bullying)
}

func (c *Composer) replyBullying(in *input) string {
	s := in.state
	recentAI := in.window.Assistant(bullyingAIWin)
	switch {
	case s.AskedContactRecently:
		return c.replies.BullyingHandoff
	case s.Agreement && s.OfferedConnection:
		return c.replies.AskContact
	case s.DisclosedSpecificViolence:
		if in.window.Len() >= escalateMinTurns && in.assessment.RiskScore >= escalateMinScore && !s.OfferedConnection {
			return PickNonRepeating(c.replies.BullyingOffer, recentAI)
		}
		return PickNonRepeating(c.replies.BullyingSupport, recentAI)
	case s.AskedBullyingSituation:
		return PickNonRepeating(c.replies.BullyingComfort, recentAI)
	}

	var candidates []string
	switch {
	case s.ReportedFrequency && !s.AskedFrequency:
		candidates = c.replies.FrequencyFirst
	case s.ReportedFrequency:
		candidates = c.replies.FrequencyFollowup
	default:
		candidates = c.replies.BullyingAskDetail
	}
	if s.AskedSafety {
		candidates = without(candidates, "안전")
	}
	return PickNonRepeating(candidates, recentAI)
}

func (c *Composer) matchNegativeBelief(in *input) bool {
	return in.state.SuicideInHistory && in.state.NegativeBelief
}

func (c *Composer) replyNegativeBelief(*input) string {
	return c.replies.NegativeBeliefCorrection
}

func (c *Composer) matchHighDistress(in *input) bool {
	return in.assessment.Distress == models.DistressHigh
}

func (c *Composer) replyHighDistress(in *input) string {
	recentAI := in.window.Assistant(highAIWindow)
	if containsAny(recentAI, c.lexicon.ElaborationAsked) {
		return PickNonRepeating(c.replies.HighDistressMoment, recentAI)
	}

	first, second := c.replies.MirrorFirstPlain, c.replies.MirrorSecondPlain
	if said := c.mirrorText(in.window); said != "" {
		first = fmt.Sprintf(c.replies.MirrorFirst, said)
		second = fmt.Sprintf(c.replies.MirrorSecond, said)
	}
	if n := len(recentAI); n > 0 {
		switch recentAI[n-1] {
		case first:
			return second
		case second:
			return first
		}
	}
	return first
}

// mirrorText is the user's latest words: the pending message, or the previous
// user turn when the message is blank.
func (c *Composer) mirrorText(w RecentWindow) string {
	if said := strings.TrimSpace(w.Message()); said != "" {
		return said
	}
	if prev, ok := w.PreviousUser(); ok {
		return strings.TrimSpace(prev)
	}
	return ""
}

func (c *Composer) matchMediumDistress(in *input) bool {
	return in.assessment.Distress == models.DistressMedium
}

func (c *Composer) replyMediumDistress(in *input) string {
	s := in.state
	recentAI := in.window.Assistant(distressWindow)
	switch {
	case s.DisclosedSituation && !s.ProbedSituation:
		candidates := c.replies.SafetyFrequency
		if s.ProbedSafety {
			candidates = without(candidates, "안전")
		}
		if s.ProbedFrequency {
			candidates = without(candidates, "얼마나 자주")
		}
		return PickNonRepeating(candidates, recentAI)
	case s.DisclosedSituation:
		return PickNonRepeating(c.replies.AdultDisclosure, recentAI)
	case s.ShortNegativeMessage:
		return PickNonRepeating(c.replies.ShiftTopic, recentAI)
	default:
		return PickNonRepeating(c.replies.ProbeSituation, recentAI)
	}
}

func (c *Composer) matchGivingUp(in *input) bool {
	return in.state.BullyingInHistory && in.state.GivingUp
}

func (c *Composer) replyGivingUp(*input) string {
	return c.replies.GivingUpResponse
}

func (c *Composer) matchRepeatedNegative(in *input) bool {
	return in.state.RepeatedShortNegative
}

func (c *Composer) replyRepeatedNegative(in *input) string {
	if in.state.SpecificContent {
		return c.replies.ResourceOffer
	}
	return c.replies.OneWordPrompt
}

func (c *Composer) matchShortReply(in *input) bool {
	return in.state.ShortRecentReply
}

func (c *Composer) replyShortReply(in *input) string {
	s := in.state
	switch {
	case s.ViolenceMentioned:
		return c.replies.ViolenceFollow
	case s.SpecificContent:
		return c.replies.ContentFollow
	case s.GenericReplyUsed:
		return c.replies.OneWordPrompt
	default:
		return c.replies.GentlePrompt
	}
}

func (c *Composer) matchDisclosedFollowup(in *input) bool {
	return in.state.SpecificContent || in.state.GenericReplyUsed
}

func (c *Composer) replyDisclosedFollowup(in *input) string {
	s := in.state
	switch {
	case s.SpecificContent && s.GenericReplyUsed:
		return c.replies.ElaborateDetail
	case s.SpecificContent:
		return c.replies.ShareMore
	default:
		return c.replies.OneWordPrompt
	}
}

func (c *Composer) replyAcknowledge(*input) string {
	return c.replies.Acknowledge
}
