package models

import "time"

// TurnSnapshot is the analysis attached to a stored user turn.
type TurnSnapshot struct {
	Distress      DistressLevel `json:"emotional_distress"`
	SuicideSignal SuicideSignal `json:"suicide_signal"`
	RiskScore     int           `json:"risk_score"`
	NextAction    NextAction    `json:"next_action"`
	Trend         string        `json:"trend,omitempty"`
	TurnCount     int           `json:"conversation_turns,omitempty"`
	KeyTopics     []string      `json:"key_topics,omitempty"`
}

// StoredTurn is a turn as persisted, user turns carry their snapshot.
type StoredTurn struct {
	Role     Role          `json:"role"`
	Content  string        `json:"content"`
	Analysis *TurnSnapshot `json:"analysis,omitempty"`
}

// AnalysisSummary is the final analysis without the reply text.
type AnalysisSummary struct {
	Distress      DistressLevel `json:"emotional_distress"`
	SuicideSignal SuicideSignal `json:"suicide_signal"`
	RiskScore     int           `json:"risk_score"`
	NextAction    NextAction    `json:"next_action"`
}

// ConversationRecord is one archived chat request.
type ConversationRecord struct {
	Key       string          `json:"key"`
	Timestamp time.Time       `json:"timestamp"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	IsTest    bool            `json:"is_test"`
	History   []StoredTurn    `json:"history"`
	Analysis  AnalysisSummary `json:"analysis"`
	EndReport *EndReport      `json:"end_report"`
}

// ConversationSummary is a listing row for the admin view.
type ConversationSummary struct {
	Key       string        `json:"key"`
	Date      string        `json:"date"`
	Time      string        `json:"time"`
	Timestamp time.Time     `json:"timestamp"`
	Summary   string        `json:"summary"`
	RiskScore int           `json:"risk_score"`
	Distress  DistressLevel `json:"distress_level"`
	IsTest    bool          `json:"is_test"`
}
