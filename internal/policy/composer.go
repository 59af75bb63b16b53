package policy

import (
	"maumcare/internal/models"
	"maumcare/internal/risk"
	"maumcare/internal/signal"
)

// Composer picks the assistant's next utterance by walking an ordered rule table.
type Composer struct {
	cues     signal.Cues
	lexicon  Lexicon
	replies  Replies
	contacts ContactExtractor
	rules    []Rule
}

// Option customizes a Composer.
type Option func(*Composer)

// WithCues replaces the cue tables.
func WithCues(cues signal.Cues) Option {
	return func(c *Composer) { c.cues = cues }
}

// WithLexicon replaces the look-back phrase sets.
func WithLexicon(lex Lexicon) Option {
	return func(c *Composer) { c.lexicon = lex }
}

// WithReplies replaces the reply texts.
func WithReplies(r Replies) Option {
	return func(c *Composer) { c.replies = r }
}

// WithContactExtractor replaces the contact-info extractor.
func WithContactExtractor(x ContactExtractor) Option {
	return func(c *Composer) {
		if x != nil {
			c.contacts = x
		}
	}
}

// NewComposer builds a composer with the default Korean tables.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		cues:     signal.DefaultCues(),
		lexicon:  DefaultLexicon(),
		replies:  DefaultReplies(),
		contacts: BroadContactExtractor{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rules = c.buildRules()
	return c
}

// Decision is the reply together with the rule that produced it.
type Decision struct {
	Rule  string
	Reply string
}

// Compose returns the reply for message given the prior history and the
// cumulative assessment.
func (c *Composer) Compose(history []models.Turn, message string, a risk.Assessment) string {
	return c.Decide(history, message, a).Reply
}

// Decide evaluates the rule table top-down and returns the first match.
func (c *Composer) Decide(history []models.Turn, message string, a risk.Assessment) Decision {
	in := &input{
		window:     NewWindow(history, message),
		assessment: a,
	}
	in.state = deriveState(in.window, c.cues, c.lexicon, c.contacts)
	for _, r := range c.rules {
		if r.Applies(in) {
			return Decision{Rule: r.Name, Reply: r.Reply(in)}
		}
	}
	return Decision{Rule: RuleAcknowledge, Reply: c.replies.Acknowledge}
}

// ContactHandoff reports whether the assistant recently asked for contact
// details and the message supplies them.
func (c *Composer) ContactHandoff(history []models.Turn, message string) bool {
	w := NewWindow(history, message)
	return containsAny(w.Assistant(contactWindow), c.lexicon.ContactRequest) && c.contacts.Supplied(message)
}

// ShouldEnd reports whether the conversation should close after this message:
// a completed contact handoff or an explicit end request. Risk never ends a
// conversation on its own.
func (c *Composer) ShouldEnd(history []models.Turn, riskScore int, distress models.DistressLevel, message string) bool {
	if c.ContactHandoff(history, message) {
		return true
	}
	return c.cues.IsEndRequest(message, len(history))
}

// Rules lists the rule names in evaluation order.
func (c *Composer) Rules() []string {
	names := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		names = append(names, r.Name)
	}
	return names
}
