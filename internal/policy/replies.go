package policy

// Replies holds every reply text the composer can return. Lists are ordered
// candidates for non-repeating selection.
type Replies struct {
	HandoffComplete string
	CrisisClose     string
	CrisisRefusal   string
	AskContact      string
	CrisisOffer     string

	Closings  []string
	Greetings []string

	BullyingHandoff   string
	BullyingOffer     []string
	BullyingSupport   []string
	BullyingComfort   []string
	FrequencyFirst    []string
	FrequencyFollowup []string
	BullyingAskDetail []string

	NegativeBeliefCorrection string

	// MirrorFirst and MirrorSecond have a single %s for the user's words.
	MirrorFirst        string
	MirrorSecond       string
	MirrorFirstPlain   string
	MirrorSecondPlain  string
	HighDistressMoment []string

	SafetyFrequency  []string
	AdultDisclosure  []string
	ShiftTopic       []string
	ProbeSituation   []string
	GivingUpResponse string

	ResourceOffer   string
	OneWordPrompt   string
	ViolenceFollow  string
	ContentFollow   string
	GentlePrompt    string
	ElaborateDetail string
	ShareMore       string
	Acknowledge     string
}

// DefaultReplies returns the Korean reply texts.
func DefaultReplies() Replies {
	return Replies{
		HandoffComplete: "알겠어. 조금만 기다려줘. 지금 바로 연락을 취해볼게. 너 편이야, 혼자 버티지 말고 도움을 받아야 해. 곧 연락이 갈 거야.",
		CrisisClose:     "알겠어. 조금만 기다려줘. 지금 바로 연락을 취할게. 너 편이야, 혼자 버티지 말고 도움을 받아야 해. 곧 연락이 갈 거야.",
		CrisisRefusal: "알겠어. 지금 바로 연결하는 건 부담스러울 수 있지. 억지로 안 할게. " +
			"그럼 지금은 여기서 얘기만 해도 괜찮아. " +
			"조금이라도 편해지도록 같이 정리해보자. 지금 가장 힘든 순간이 언제였는지 말해줄래?",
		AskContact: "알겠어. 조금만 기다려줘. 대신 전화해줄게. 이름하고 전화번호 알려줄래?",
		CrisisOffer: "지금 많이 힘들어 보인다. 혼자 버티지 말고 즉시 도움을 받아야 해. " +
			"112(응급)이나 1388 청소년 상담전화(24시간 무료)에 전화할 수 있어. " +
			"내가 대신 전화해줄까? 이름하고 전화번호 알려줄래?",

		Closings: []string{
			"오늘 얘기해줘서 고마워. 필요하면 언제든 다시 와줘. 난 여기 있을게.",
			"여기까지 할게. 지금 마음이 조금이라도 가벼워졌으면 좋겠다. 언제든 또 얘기하자.",
			"응, 여기서 마칠게. 고마워. 다음에 또 마음 풀고 싶을 때 와줘.",
		},
		Greetings: []string{
			"안녕! 반가워. 오늘 어떤 일 있었는지 편하게 말해줄래?",
			"안녕, 괜찮아. 지금 마음 상태가 어때? 한 단어로 말해줘도 돼.",
			"말하기 어렵다면 '힘들어'처럼 한마디로 시작해도 괜찮아.",
			"오늘 있었던 일 중 하나만 골라서 말해줘도 좋아.",
			"지금 가장 신경 쓰이는 게 뭐야? 짧게 말해줘도 돼.",
			"내가 들어줄게. 오늘 마음이 어떤지부터 알려줄래?",
		},

		BullyingHandoff: "알겠어. 조금만 기다려줘. 곧 연락이 갈 거야. 너 편이야, 혼자 버티지 말고 도움을 받아야 해.",
		BullyingOffer: []string{
			"그런 일을 겪었다니 정말 무서웠고 힘들었을 것 같아. 혼자 버티지 말고 도움을 받아야 해. " +
				"선생님이나 부모님께 말씀드리는 것도 방법이야. 내가 연결 시켜줘도 괜찮을까?",
			"그 얘기 들으니 걱정돼. 너 혼자 버티게 하고 싶지 않아. " +
				"선생님이나 부모님에게 같이 말해볼까? 내가 도와줘도 될까?",
		},
		BullyingSupport: []string{
			"그런 일을 겪었다니 정말 무서웠고 힘들었을 것 같아. 혼자 버티지 말고 도움을 받아야 해. " +
				"선생님이나 부모님께 말씀드리는 것도 방법이야. 너 편이야, 같이 방법을 찾아보자.",
			"네가 겪는 게 너무 힘들어 보여. 혼자 버티지 않아도 돼. " +
				"믿을 수 있는 어른에게 이야기하는 것도 방법이야. 나는 네 편이야.",
		},
		BullyingComfort: []string{
			"말하기 어려운 일이구나. 그런 일을 겪었다니 정말 힘들었을 것 같아. " +
				"혼자 버티지 말고 도움을 받아야 해. 선생님이나 부모님께도 말씀드릴 수 있어. 너 편이야.",
			"쉽게 말하기 힘든 거 알아. 그래도 너 혼자 두고 싶지 않아. " +
				"믿을 만한 어른에게 얘기할 수 있을까? 나는 네 편이야.",
		},
		FrequencyFirst: []string{
			"매일 그런 일이 있다면 정말 힘들었겠다. 지금은 안전한 곳에 있어? " +
				"요즘 특히 제일 힘든 순간이 언제였는지 말해줄래?",
			"매일 겪는다는 말이 너무 마음 아프다. 지금은 괜찮은 장소에 있어? " +
				"도움받을 수 있는 어른이 떠오르는지 이야기해줄래?",
		},
		FrequencyFollowup: []string{
			"매일 겪는다는 말이 너무 마음 아파. 지금 네가 제일 힘든 순간이 언제인지 말해줄래?",
			"매일이라고 하니까 더 걱정돼. 오늘 있었던 일 중에 가장 힘들었던 순간 하나만 말해줄래?",
		},
		BullyingAskDetail: []string{
			"그런 일을 겪었다니 많이 힘들었겠다. 지금은 안전한 곳에 있어? " +
				"어떤 상황이었는지 조금만 더 말해줄래?",
			"그 얘기 들으니 마음이 아프다. 지금은 안전한 곳이야? " +
				"어떤 일이 있었는지 편하게 말해줄래?",
		},

		NegativeBeliefCorrection: "아니야, 경찰이랑 어른들이 무조건 도와줄 거야. 너를 지켜줄 사람들이 있어. " +
			"1388 청소년 상담전화(24시간 무료)나 112(응급)에 전화해볼 수 있어. " +
			"선생님이나 부모님께도 말씀드릴 수 있어. 너 편이야, 혼자 버티지 말고 같이 방법을 찾아보자.",

		MirrorFirst: "%s 라고 말해준 거 보니까 정말 많이 힘들었겠다는 생각이 들어. " +
			"지금 네가 버티고 있는 상황이 어떤지, 조금만 더 얘기해줄 수 있어? 내가 네 편에서 같이 들어줄게.",
		MirrorSecond: "%s 라고 느낄 만큼 진짜 많이 힘들었겠다. " +
			"요즘 특히 언제가 제일 괴롭다고 느껴져? 친구한테 털어놓는다고 생각하고 편하게 말해줘.",
		MirrorFirstPlain:  "지금 많이 힘들다는 게 느껴져. 어떤 상황인지 조금만 더 얘기해줄 수 있어? 내가 네 편에서 같이 들어줄게.",
		MirrorSecondPlain: "요즘 특히 언제가 제일 괴롭다고 느껴져? 친구한테 털어놓는다고 생각하고 편하게 말해줘.",
		HighDistressMoment: []string{
			"지금 가장 힘든 순간이 언제인지 하나만 말해줄래? 내가 네 편이야.",
			"오늘 있었던 일 중에 제일 괴로웠던 장면 하나만 알려줄래? 같이 정리해보자.",
		},

		SafetyFrequency: []string{
			"그런 일을 겪었다니 정말 힘들었을 것 같아. 지금은 안전한 곳에 있어? 얼마나 자주 일어나는 일이야?",
			"그 얘기 들으니 마음이 아프다. 지금은 괜찮은 곳이야? 요즘 얼마나 자주 있어?",
		},
		AdultDisclosure: []string{
			"그런 일을 겪었다니 정말 무서웠을 것 같아. 선생님이나 부모님께 말해본 적 있어? 혼자 버티지 말고 같이 방법을 찾아보자.",
			"혼자 버티는 게 너무 힘들었겠다. 믿을 수 있는 어른에게 얘기해본 적 있어? 내가 같이 방법을 찾아줄게.",
		},
		ShiftTopic: []string{
			"괜찮아, 지금 말하기 어렵다면 괜찮아. 그럼 지금 당장 필요한 게 뭔지 하나만 말해줄래?",
			"말하기 힘든 거 이해해. 그럼 오늘은 어떤 도움을 받고 싶은지부터 말해줄래?",
		},
		ProbeSituation: []string{
			"그랬구나, 정말 힘들었겠어. 어떤 일이 있었는지 조금 더 말해줄래?",
			"그 말이 마음에 남아. 오늘 있었던 일 중에 제일 힘들었던 순간을 하나만 알려줄래?",
		},
		GivingUpResponse: "아니야, 그렇게 참고 지내면 안 돼. 그런 일을 겪고 있는데 혼자 버티면 더 힘들어질 수 있어. " +
			"부모님이나 선생님께 꼭 말씀드려야 해. 1388 청소년 상담전화(24시간 무료)에 전화해서 도움을 받을 수도 있어. " +
			"혼자 해결하려고 하지 말고 어른들의 도움을 받는 게 중요해. 너 편이야, 같이 방법을 찾아보자.",

		ResourceOffer: "말하기 어려운 일이구나. 하지만 혼자 버티지 말고 도움을 받을 수 있어. " +
			"1388 청소년 상담전화(24시간 무료)나 112(응급)에 전화해볼 수 있어. " +
			"선생님이나 부모님께도 말씀드릴 수 있어. 너 편이야.",
		OneWordPrompt:   "괜찮아, 말하기 어려울 수 있어. 한 단어로만 말해도 돼. 힘들어? 불안해? 피곤해?",
		ViolenceFollow:  "그렇구나. 그럼 지금 상황이 얼마나 심각한지, 어떻게 하고 싶은지 같이 생각해볼까? 혼자 버티지 말고 같이 방법을 찾아보자.",
		ContentFollow:   "그랬구나. 더 자세히 얘기해줄래? 어떤 기분이 드는지, 어떤 일이 있었는지 편하게 말해줘.",
		GentlePrompt:    "괜찮아, 천천히 말해도 돼. 어떤 기분이 드는지 편하게 얘기해줘.",
		ElaborateDetail: "그랬구나. 더 자세히 얘기해줄래? 어떤 일이 있었는지, 어떤 기분인지 편하게 말해줘.",
		ShareMore:       "그랬구나. 더 말하고 싶은 게 있으면 편하게 얘기해줘.",
		Acknowledge:     "알려줘서 고마워. 지금 필요한 게 있으면 편하게 말해줘.",
	}
}
