package signal

// CueSet is an ordered, read-only list of normalized cue substrings.
type CueSet []string

// Cues groups every cue set used by the detector, scorer and policy.
// Entries are stored normalized (no whitespace, lower case).
type Cues struct {
	SuicideHigh            CueSet
	SuicideMid             CueSet
	Distress               CueSet
	Intensifiers           CueSet
	Greeting               CueSet
	Bullying               CueSet
	GivingUp               CueSet
	ShortNegativeResponses CueSet
	EndKeywords            CueSet
	PositiveEndKeywords    CueSet
}

// PositiveEndMinTurns is the history length from which thankful closings count as end requests.
const PositiveEndMinTurns = 6

// DefaultCues returns the Korean cue tables. Each call returns fresh slices.
func DefaultCues() Cues {
	return Cues{
		SuicideHigh: normalizeAll(
			"자살", "죽고 싶", "죽고싶", "죽고싶어", "죽을래", "끝내고 싶", "끝내고싶",
			"목숨", "살고 싶지", "살고싶지",
		),
		SuicideMid: normalizeAll("사라지고 싶", "포기하고 싶", "의미없", "그만 살"),
		Distress: normalizeAll(
			"힘들", "괴롭", "불안", "우울", "외롭", "짜증", "분노", "무시", "따돌", "괴롭힘", "헛소문",
		),
		Intensifiers: normalizeAll("너무", "정말", "진짜", "완전", "계속"),
		Greeting:     normalizeAll("안녕", "하이", "헬로", "hey", "hi"),
		Bullying: normalizeAll(
			"괴롭힘", "괴롭", "따돌", "폭력", "폭행", "때렸", "맞았", "맞아", "두들겨",
		),
		GivingUp: normalizeAll(
			"이대로 지내", "그냥 지내", "참고 살", "참고 지내", "그냥 살", "포기", "그만",
			"그냥 이대로", "낫지 않을까", "그냥 참고",
		),
		ShortNegativeResponses: normalizeAll("싫어", "없어", "몰라", "아니야", "안돼"),
		EndKeywords: normalizeAll(
			"그만", "종료", "끝낼래", "끝", "다음에", "나중에", "그만할래", "끝내자", "대화 끝",
		),
		PositiveEndKeywords: normalizeAll("고마워", "도움됐어", "이제 괜찮아", "좋아졌어", "감사해", "고마웠어"),
	}
}

func normalizeAll(cues ...string) CueSet {
	out := make(CueSet, 0, len(cues))
	seen := make(map[string]struct{}, len(cues))
	for _, c := range cues {
		n := Normalize(c)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// NewCueSet builds a normalized cue set from raw phrases.
func NewCueSet(phrases ...string) CueSet {
	return normalizeAll(phrases...)
}
