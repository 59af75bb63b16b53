package models

// DistressLevel estimates general emotional strain.
type DistressLevel string

const (
	DistressLow    DistressLevel = "low"
	DistressMedium DistressLevel = "medium"
	DistressHigh   DistressLevel = "high"
)

// Rank orders distress levels, low < medium < high.
func (d DistressLevel) Rank() int {
	switch d {
	case DistressMedium:
		return 1
	case DistressHigh:
		return 2
	default:
		return 0
	}
}

// SuicideSignal estimates self-harm risk.
type SuicideSignal string

const (
	SuicideNone   SuicideSignal = "none"
	SuicideLow    SuicideSignal = "low"
	SuicideMedium SuicideSignal = "medium"
	SuicideHigh   SuicideSignal = "high"
)

// Rank orders suicide signals, none < low < medium < high.
func (s SuicideSignal) Rank() int {
	switch s {
	case SuicideLow:
		return 1
	case SuicideMedium:
		return 2
	case SuicideHigh:
		return 3
	default:
		return 0
	}
}

// Elevated reports whether the signal is medium or high.
func (s SuicideSignal) Elevated() bool {
	return s == SuicideMedium || s == SuicideHigh
}

// NextAction is the recommended follow-up for a risk score.
type NextAction string

const (
	ActionGeneral           NextAction = "general"
	ActionCaution           NextAction = "caution"
	ActionSpecialistHandoff NextAction = "specialist_handoff"
	ActionImmediate         NextAction = "immediate_response"
)

// Analysis is the per-request classification result.
type Analysis struct {
	Distress      DistressLevel `json:"emotional_distress"`
	SuicideSignal SuicideSignal `json:"suicide_signal"`
	RiskScore     int           `json:"risk_score"`
	NextAction    NextAction    `json:"next_action"`
	Reply         string        `json:"reply"`
}

// TurnAnalysis is the classification snapshot at one user turn.
type TurnAnalysis struct {
	TurnIndex      int           `json:"turn_index"`
	UserMessage    string        `json:"user_message"`
	AssistantReply *string       `json:"ai_reply,omitempty"`
	Distress       DistressLevel `json:"emotional_distress"`
	SuicideSignal  SuicideSignal `json:"suicide_signal"`
	RiskScore      int           `json:"risk_score"`
	NextAction     NextAction    `json:"next_action"`
}

// EndReport summarizes a finished conversation.
type EndReport struct {
	Summary       string        `json:"summary"`
	RiskScore     int           `json:"risk_score"`
	Trend         string        `json:"trend"`
	NextGuidance  string        `json:"next_guidance"`
	Distress      DistressLevel `json:"distress_level"`
	SuicideSignal SuicideSignal `json:"suicide_signal"`
	TurnCount     int           `json:"conversation_turns"`
	KeyTopics     []string      `json:"key_topics"`
}
