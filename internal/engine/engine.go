package engine

import (
	"maumcare/internal/history"
	"maumcare/internal/models"
	"maumcare/internal/policy"
	"maumcare/internal/report"
	"maumcare/internal/risk"
)

// ApologyReply is returned when no reply could be produced.
const ApologyReply = "죄송해요, 잠시 문제가 생겼어요. 다시 말해줄 수 있을까?"

// SafeDefault is the analysis used when classification itself fails.
func SafeDefault() models.Analysis {
	return models.Analysis{
		Distress:      models.DistressLow,
		SuicideSignal: models.SuicideNone,
		RiskScore:     risk.DefaultWeights().Base,
		NextAction:    models.ActionGeneral,
		Reply:         ApologyReply,
	}
}

// Engine is the stateless classification core. It is safe for concurrent use.
type Engine struct {
	scorer   *risk.Scorer
	composer *policy.Composer
	analyzer *history.Analyzer
	reports  *report.Builder
}

// Option customizes an Engine.
type Option func(*Engine)

// WithScorer replaces the risk scorer.
func WithScorer(s *risk.Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithComposer replaces the reply composer.
func WithComposer(c *policy.Composer) Option {
	return func(e *Engine) { e.composer = c }
}

// WithReportBuilder replaces the end report builder.
func WithReportBuilder(b *report.Builder) Option {
	return func(e *Engine) { e.reports = b }
}

// New creates an engine with the default tables.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.scorer == nil {
		e.scorer = risk.Default()
	}
	if e.composer == nil {
		e.composer = policy.NewComposer(policy.WithCues(e.scorer.Cues()))
	}
	if e.reports == nil {
		e.reports = report.NewBuilder()
	}
	e.analyzer = history.NewAnalyzer(e.scorer, e.reports)
	return e
}

// Classify scores the conversation so far and composes the reply for message.
func (e *Engine) Classify(turns []models.Turn, message string) models.Analysis {
	a := e.scorer.AssessConversation(turns, message)
	return models.Analysis{
		Distress:      a.Distress,
		SuicideSignal: a.SuicideSignal,
		RiskScore:     a.RiskScore,
		NextAction:    a.NextAction,
		Reply:         e.composer.Compose(turns, message, a),
	}
}

// Explain is Classify plus the name of the rule that produced the reply.
func (e *Engine) Explain(turns []models.Turn, message string) (models.Analysis, string) {
	a := e.scorer.AssessConversation(turns, message)
	d := e.composer.Decide(turns, message, a)
	return models.Analysis{
		Distress:      a.Distress,
		SuicideSignal: a.SuicideSignal,
		RiskScore:     a.RiskScore,
		NextAction:    a.NextAction,
		Reply:         d.Reply,
	}, d.Rule
}

// ReanalyzeHistory returns the per-user-turn trace of the conversation.
func (e *Engine) ReanalyzeHistory(turns []models.Turn, currentMessage string) []models.TurnAnalysis {
	return e.analyzer.Reanalyze(turns, currentMessage)
}

// ShouldEnd reports whether the conversation closes after message.
func (e *Engine) ShouldEnd(turns []models.Turn, riskScore int, distress models.DistressLevel, message string) bool {
	return e.composer.ShouldEnd(turns, riskScore, distress, message)
}

// BuildEndReport summarizes a finished conversation.
func (e *Engine) BuildEndReport(turns []models.Turn, riskScore int, distress models.DistressLevel, sig models.SuicideSignal) models.EndReport {
	return e.reports.Build(turns, riskScore, distress, sig)
}

// ContactHandoff reports whether message completes a pending contact request.
func (e *Engine) ContactHandoff(turns []models.Turn, message string) bool {
	return e.composer.ContactHandoff(turns, message)
}

// HasSuicideCue reports whether text directly contains a suicide cue.
func (e *Engine) HasSuicideCue(text string) bool {
	return e.scorer.Cues().HasSuicideCue(text)
}

// EnrichHistory attaches per-turn snapshots for archiving.
func (e *Engine) EnrichHistory(turns []models.Turn, current string, includeCurrent bool) []models.StoredTurn {
	return e.analyzer.Enrich(turns, current, includeCurrent)
}
