package risk

import (
	"strings"

	"maumcare/internal/models"
	"maumcare/internal/signal"
)

// Weights are the additive contributions of each level to the risk score.
type Weights struct {
	Base           int
	DistressMedium int
	DistressHigh   int
	SuicideLow     int
	SuicideMedium  int
	SuicideHigh    int
	Max            int
}

// DefaultWeights returns the production weights.
func DefaultWeights() Weights {
	return Weights{
		Base:           10,
		DistressMedium: 20,
		DistressHigh:   35,
		SuicideLow:     20,
		SuicideMedium:  45,
		SuicideHigh:    70,
		Max:            100,
	}
}

// Action thresholds on the risk score.
const (
	ImmediateThreshold  = 80
	SpecialistThreshold = 60
	CautionThreshold    = 35
)

// Weak heuristic: a death token and a wish token anywhere in the text.
const (
	deathToken = "죽"
	wishToken  = "싶"
)

// Scorer estimates distress, suicide signal and risk from user text.
type Scorer struct {
	cues    signal.Cues
	weights Weights
}

// NewScorer creates a scorer over the given cue tables and weights.
func NewScorer(cues signal.Cues, weights Weights) *Scorer {
	return &Scorer{cues: cues, weights: weights}
}

// Default returns a scorer with the default cue tables and weights.
func Default() *Scorer {
	return NewScorer(signal.DefaultCues(), DefaultWeights())
}

// Cues exposes the cue tables the scorer was built with.
func (s *Scorer) Cues() signal.Cues { return s.cues }

// EstimateDistress maps distress cue hits and intensifiers to a level.
func (s *Scorer) EstimateDistress(text string) models.DistressLevel {
	hits := signal.CountHits(text, s.cues.Distress)
	intense := signal.HasAny(text, s.cues.Intensifiers)
	switch {
	case hits >= 3 || (hits >= 2 && intense):
		return models.DistressHigh
	case hits >= 1 || intense:
		return models.DistressMedium
	default:
		return models.DistressLow
	}
}

// EstimateSuicideSignal maps suicide cues to a signal level.
func (s *Scorer) EstimateSuicideSignal(text string) models.SuicideSignal {
	norm := signal.Normalize(text)
	switch {
	case signal.HasAny(norm, s.cues.SuicideHigh):
		return models.SuicideHigh
	case signal.HasAny(norm, s.cues.SuicideMid):
		return models.SuicideMedium
	case strings.Contains(norm, deathToken) && strings.Contains(norm, wishToken):
		return models.SuicideLow
	default:
		return models.SuicideNone
	}
}

// EstimateRiskScore adds both dimensions on top of the base and clamps the result.
func (s *Scorer) EstimateRiskScore(distress models.DistressLevel, suicide models.SuicideSignal) int {
	w := s.weights
	score := w.Base
	switch distress {
	case models.DistressMedium:
		score += w.DistressMedium
	case models.DistressHigh:
		score += w.DistressHigh
	}
	switch suicide {
	case models.SuicideLow:
		score += w.SuicideLow
	case models.SuicideMedium:
		score += w.SuicideMedium
	case models.SuicideHigh:
		score += w.SuicideHigh
	}
	if w.Max > 0 && score > w.Max {
		score = w.Max
	}
	return score
}

// NextAction is a step function of the risk score.
func NextAction(score int) models.NextAction {
	switch {
	case score >= ImmediateThreshold:
		return models.ActionImmediate
	case score >= SpecialistThreshold:
		return models.ActionSpecialistHandoff
	case score >= CautionThreshold:
		return models.ActionCaution
	default:
		return models.ActionGeneral
	}
}

// Assessment is the score part of an Analysis.
type Assessment struct {
	Distress      models.DistressLevel
	SuicideSignal models.SuicideSignal
	RiskScore     int
	NextAction    models.NextAction
}

// Assess evaluates already concatenated user text.
func (s *Scorer) Assess(text string) Assessment {
	d := s.EstimateDistress(text)
	sig := s.EstimateSuicideSignal(text)
	score := s.EstimateRiskScore(d, sig)
	return Assessment{Distress: d, SuicideSignal: sig, RiskScore: score, NextAction: NextAction(score)}
}

// AssessConversation evaluates all user turns of history plus the pending message.
func (s *Scorer) AssessConversation(history []models.Turn, message string) Assessment {
	return s.Assess(CumulativeUserText(history, message))
}

// CumulativeUserText concatenates every user turn and the pending message.
func CumulativeUserText(history []models.Turn, message string) string {
	var b strings.Builder
	for _, t := range history {
		if t.Role == models.RoleUser {
			b.WriteString(t.Content)
		}
	}
	b.WriteString(message)
	return b.String()
}
