package report

import (
	"strings"

	"maumcare/internal/models"
	"maumcare/internal/risk"
	"maumcare/internal/signal"
)

const (
	TrendAtRisk       = "위험"
	TrendNeedsCare    = "주의 필요"
	TrendStabilizing  = "안정화 중"
	TrendNeedsWatch   = "관찰 필요"
	EmptySummary      = "대화 요약 없음"
	GeneralCounseling = "일반 상담"
)

const (
	guidanceImmediate  = "즉시 전문가 상담이 필요합니다. 1388 청소년 상담전화 또는 응급실을 방문하세요."
	guidanceSpecialist = "전문 상담사나 신뢰할 수 있는 어른과 상담하는 것을 권장합니다."
	guidanceFollowUp   = "다음 대화에서는 구체적인 상황과 감정을 더 자세히 나눠보면 좋겠어요."
	guidanceRoutine    = "긍정적인 루틴을 유지하고, 필요할 때 언제든 다시 대화해요."
)

// summaryMinTurns is the number of user messages from which the summary keeps
// only the first and the last one.
const summaryMinTurns = 3

// Topic tags a conversation when any of its cues appears in the user text.
type Topic struct {
	Name string
	Cues signal.CueSet
}

// DefaultTopics returns the topic tags in report order.
func DefaultTopics() []Topic {
	return []Topic{
		{Name: "학교폭력/또래관계", Cues: signal.NewCueSet("괴롭", "따돌", "폭력", "때렸")},
		{Name: "가정 문제", Cues: signal.NewCueSet("가족", "부모", "집")},
		{Name: "학업 스트레스", Cues: signal.NewCueSet("성적", "공부", "시험", "학업")},
		{Name: "정서적 어려움", Cues: signal.NewCueSet("우울", "외로", "불안")},
		{Name: "자살 사고", Cues: signal.NewCueSet("죽", "자살", "끝내")},
	}
}

// Builder produces end-of-conversation reports.
type Builder struct {
	topics []Topic
}

// NewBuilder creates a builder; with no topics the defaults are used.
func NewBuilder(topics ...Topic) *Builder {
	if len(topics) == 0 {
		topics = DefaultTopics()
	}
	return &Builder{topics: topics}
}

// Build summarizes history. It is a pure function of its arguments.
func (b *Builder) Build(history []models.Turn, riskScore int, distress models.DistressLevel, sig models.SuicideSignal) models.EndReport {
	return models.EndReport{
		Summary:       Summary(history),
		RiskScore:     riskScore,
		Trend:         Trend(riskScore, distress),
		NextGuidance:  Guidance(riskScore, distress),
		Distress:      distress,
		SuicideSignal: sig,
		TurnCount:     len(history),
		KeyTopics:     b.KeyTopics(history),
	}
}

// KeyTopics scans every user turn for topic cues. It never returns an empty list.
func (b *Builder) KeyTopics(history []models.Turn) []string {
	text := strings.Join(userMessages(history), " ")
	var topics []string
	for _, t := range b.topics {
		if signal.HasAny(text, t.Cues) {
			topics = append(topics, t.Name)
		}
	}
	if len(topics) == 0 {
		return []string{GeneralCounseling}
	}
	return topics
}

// Summary keeps the first and last user message of longer conversations and
// joins all of them otherwise.
func Summary(history []models.Turn) string {
	msgs := userMessages(history)
	switch {
	case len(msgs) >= summaryMinTurns:
		return "주요 고민: " + msgs[0] + " → " + msgs[len(msgs)-1]
	case len(msgs) > 0:
		return strings.Join(msgs, " / ")
	default:
		return EmptySummary
	}
}

// Trend classifies the state of the conversation.
func Trend(riskScore int, distress models.DistressLevel) string {
	switch {
	case riskScore >= risk.ImmediateThreshold:
		return TrendAtRisk
	case riskScore >= risk.SpecialistThreshold:
		return TrendNeedsCare
	case distress == models.DistressLow && riskScore < risk.CautionThreshold:
		return TrendStabilizing
	default:
		return TrendNeedsWatch
	}
}

// Guidance is the next-step advice shown with the report.
func Guidance(riskScore int, distress models.DistressLevel) string {
	switch {
	case riskScore >= risk.ImmediateThreshold:
		return guidanceImmediate
	case riskScore >= risk.SpecialistThreshold:
		return guidanceSpecialist
	case distress != models.DistressLow:
		return guidanceFollowUp
	default:
		return guidanceRoutine
	}
}

func userMessages(history []models.Turn) []string {
	var out []string
	for _, t := range history {
		if t.Role == models.RoleUser {
			out = append(out, t.Content)
		}
	}
	return out
}
