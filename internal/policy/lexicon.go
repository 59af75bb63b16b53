package policy

import (
	"strings"

	"maumcare/internal/signal"
)

// Lexicon holds the phrase sets used to read the recent window: what the
// assistant already asked or offered and what the user already disclosed.
type Lexicon struct {
	ContactRequest     signal.CueSet // assistant asked for contact details or offered to call
	ContactAsked       signal.CueSet // assistant asked for name or phone
	CrisisOffer        signal.CueSet // assistant offered to connect during a crisis
	ConnectionOffer    signal.CueSet // assistant offered to connect during bullying talk
	Agreement          signal.CueSet
	Refusal            signal.CueSet
	Frequency          signal.CueSet // user said it happens often
	FrequencyAsked     signal.CueSet
	SafetyAsked        signal.CueSet
	SpecificViolence   signal.CueSet
	BullyingProbe      signal.CueSet // assistant already asked what happened
	SuicideHistory     signal.CueSet
	NegativeBelief     signal.CueSet
	ElaborationAsked   signal.CueSet
	SituationDisclosed signal.CueSet
	SituationAsked     signal.CueSet
	BullyingHistory    signal.CueSet
	GenericReply       signal.CueSet
	SpecificContent    signal.CueSet
	Violence           signal.CueSet

	// ShortReplyExempt are short user turns that never count as terse answers.
	ShortReplyExempt []string
	// ShortReplyRunes is the exclusive length bound of a terse answer.
	ShortReplyRunes int
}

// DefaultLexicon returns the Korean phrase sets.
func DefaultLexicon() Lexicon {
	return Lexicon{
		ContactRequest:     signal.NewCueSet("이름", "전화번호", "연락처", "전화해줄까"),
		ContactAsked:       signal.NewCueSet("이름", "전화번호", "연락처"),
		CrisisOffer:        signal.NewCueSet("연결", "연락", "괜찮을까", "도와줄까", "전화해줄까"),
		ConnectionOffer:    signal.NewCueSet("연결", "연락", "괜찮을까", "도와줄까"),
		Agreement:          signal.NewCueSet("응", "네", "좋아", "괜찮아", "그래", "해줘", "도와줘"),
		Refusal:            signal.NewCueSet("싫어", "안돼", "괜찮아", "아니", "거절", "원하지"),
		Frequency:          signal.NewCueSet("매일", "자주", "계속", "항상", "맨날"),
		FrequencyAsked:     signal.NewCueSet("얼마나 자주", "매일", "자주", "계속", "항상", "맨날"),
		SafetyAsked:        signal.NewCueSet("안전", "괜찮은 곳", "지금은 괜찮"),
		SpecificViolence:   signal.NewCueSet("맞았", "때렸", "때려", "괴롭혔", "괴롭혀", "때린", "맞아", "때려서", "맞아서"),
		BullyingProbe:      signal.NewCueSet("어떤 상황", "조금만 더 말해줄래", "어떤 일이 있었는지"),
		SuicideHistory:     signal.NewCueSet("자살", "죽고", "죽을", "끝내", "살고 싶지"),
		NegativeBelief:     signal.NewCueSet("경찰", "어른", "도와줄", "없", "못", "아무것도", "소용없", "할 수 있는"),
		ElaborationAsked:   signal.NewCueSet("어떤 상황", "조금만 더 얘기", "어떤 일이 있었는지"),
		SituationDisclosed: signal.NewCueSet("때려", "괴롭", "폭력", "왕따", "따돌", "때린", "괴롭혀"),
		SituationAsked:     signal.NewCueSet("어떤 상황", "어떤 일이", "조금 더 말해줄래", "힘들었는지"),
		BullyingHistory:    signal.NewCueSet("괴롭", "때려", "맞았", "폭력", "왕따", "따돌", "괴롭혀"),
		GenericReply:       signal.NewCueSet("알려줘서 고마워", "천천히 말해도", "편하게 얘기해줘", "어떤 일이 있었는지", "어떤 기분인지"),
		SpecificContent:    signal.NewCueSet("때려", "괴롭", "폭력", "왕따", "힘들어", "불안", "피곤", "지쳤", "얘기하고 싶어", "학교"),
		Violence:           signal.NewCueSet("때려", "괴롭", "폭력", "왕따"),
		ShortReplyExempt:   []string{"안녕", "고마워", "?"},
		ShortReplyRunes:    5,
	}
}

// containsAny reports whether any text contains a phrase of the set after normalization.
func containsAny(texts []string, set signal.CueSet) bool {
	return signal.AnyContains(texts, set)
}

func containsAnyRaw(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
