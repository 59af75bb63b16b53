package policy

import (
	"fmt"
	"strings"
	"testing"

	"maumcare/internal/models"
	"maumcare/internal/risk"
)

func decide(t *testing.T, c *Composer, history []models.Turn, message string) Decision {
	t.Helper()
	a := risk.Default().AssessConversation(history, message)
	return c.Decide(history, message, a)
}

func TestGreetingOnEmptyHistory(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()

	d := decide(t, c, nil, "안녕")
	if d.Rule != RuleGreeting {
		t.Fatalf("expected greeting rule, got %s", d.Rule)
	}
	if d.Reply != replies.Greetings[0] {
		t.Fatalf("expected first greeting, got %q", d.Reply)
	}
}

func TestGreetingRotates(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()
	history := []models.Turn{
		models.UserTurn("안녕"),
		models.AssistantTurn(replies.Greetings[0]),
	}

	d := decide(t, c, history, "안녕")
	if d.Reply != replies.Greetings[1] {
		t.Fatalf("expected second greeting, got %q", d.Reply)
	}
}

func TestSuicideCueOffersHotline(t *testing.T) {
	c := NewComposer()
	a := risk.Default().AssessConversation(nil, "죽고 싶어")
	if a.SuicideSignal != models.SuicideHigh || a.RiskScore < 80 || a.NextAction != models.ActionImmediate {
		t.Fatalf("unexpected assessment %+v", a)
	}

	d := c.Decide(nil, "죽고 싶어", a)
	if d.Rule != RuleSuicideCrisis {
		t.Fatalf("expected crisis rule, got %s", d.Rule)
	}
	for _, want := range []string{"1388", "112", "이름", "전화번호"} {
		if !strings.Contains(d.Reply, want) {
			t.Fatalf("crisis reply missing %q: %q", want, d.Reply)
		}
	}
}

func TestPhoneNumberCompletesHandoff(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()
	history := []models.Turn{
		models.UserTurn("죽고 싶어"),
		models.AssistantTurn(replies.CrisisOffer),
	}

	d := decide(t, c, history, "01012345678")
	if d.Rule != RuleContactHandoff || d.Reply != replies.HandoffComplete {
		t.Fatalf("expected handoff, got %s %q", d.Rule, d.Reply)
	}
	a := risk.Default().AssessConversation(history, "01012345678")
	if a.SuicideSignal != models.SuicideHigh {
		t.Fatalf("earlier crisis signal lost: %s", a.SuicideSignal)
	}
	if !c.ShouldEnd(history, a.RiskScore, a.Distress, "01012345678") {
		t.Fatalf("expected conversation to end after handoff")
	}
}

func TestCrisisRefusalAndAgreement(t *testing.T) {
	c := NewComposer(WithContactExtractor(PhoneContactExtractor{}))
	replies := DefaultReplies()
	history := []models.Turn{
		models.UserTurn("죽고 싶어"),
		models.AssistantTurn(replies.CrisisOffer),
	}

	if d := decide(t, c, history, "싫어"); d.Reply != replies.CrisisRefusal {
		t.Fatalf("expected refusal branch, got %s %q", d.Rule, d.Reply)
	}
	if d := decide(t, c, history, "응 도와줘"); d.Reply != replies.AskContact {
		t.Fatalf("expected agreement branch, got %s %q", d.Rule, d.Reply)
	}
}

func TestBroadExtractorTreatsShortReplyAsContact(t *testing.T) {
	history := []models.Turn{models.AssistantTurn("이름하고 전화번호 알려줄래?")}

	if !NewComposer().ContactHandoff(history, "몰라") {
		t.Fatalf("broad extractor should accept a name-shaped reply")
	}
	strict := NewComposer(WithContactExtractor(PhoneContactExtractor{}))
	if strict.ContactHandoff(history, "몰라") {
		t.Fatalf("phone extractor should reject a reply without digits")
	}
	if !strict.ContactHandoff(history, "010-1234-5678") {
		t.Fatalf("phone extractor should accept a dashed number")
	}
}

func TestRepeatedShortNegativeAfterBullying(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()
	history := []models.Turn{
		models.UserTurn("애들이 나를 때려"),
		models.AssistantTurn(replies.Acknowledge),
		models.UserTurn("싫어"),
		models.AssistantTurn(replies.OneWordPrompt),
	}

	d := decide(t, c, history, "싫어")
	if d.Rule != RuleRepeatedNegative {
		t.Fatalf("expected repeated negative rule, got %s", d.Rule)
	}
	if d.Reply != replies.ResourceOffer {
		t.Fatalf("expected resource offer, got %q", d.Reply)
	}
	if d.Reply == replies.OneWordPrompt {
		t.Fatalf("must not fall back to the one-word prompt")
	}
}

func TestEndKeywordClosesWithoutRepeating(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()
	history := []models.Turn{
		models.UserTurn("오늘 학교 갔어"),
		models.AssistantTurn(replies.Acknowledge),
		models.UserTurn("그냥 그래"),
		models.AssistantTurn(replies.Closings[0]),
	}

	d := decide(t, c, history, "그만")
	if d.Rule != RuleEndRequest {
		t.Fatalf("expected end rule, got %s", d.Rule)
	}
	if d.Reply != replies.Closings[1] {
		t.Fatalf("expected second closing, got %q", d.Reply)
	}
}

func TestShouldEndIgnoresRisk(t *testing.T) {
	c := NewComposer()
	for _, score := range []int{10, 35, 60, 80, 100} {
		if !c.ShouldEnd(nil, score, models.DistressHigh, "이제 그만할래") {
			t.Fatalf("expected end at score %d", score)
		}
	}
	if c.ShouldEnd(nil, 10, models.DistressLow, "오늘 학교 갔어") {
		t.Fatalf("ordinary message should not end the conversation")
	}
}

func TestPositiveClosingNeedsLongHistory(t *testing.T) {
	c := NewComposer()
	short := []models.Turn{models.UserTurn("힘들어"), models.AssistantTurn("그랬구나")}
	if c.ShouldEnd(short, 30, models.DistressMedium, "고마워") {
		t.Fatalf("thanks should not end a short conversation")
	}

	var long []models.Turn
	for i := 0; i < 3; i++ {
		long = append(long, models.UserTurn(fmt.Sprintf("얘기 %d", i)), models.AssistantTurn("응"))
	}
	if !c.ShouldEnd(long, 30, models.DistressMedium, "고마워") {
		t.Fatalf("thanks should end a conversation of %d turns", len(long))
	}
}

func TestBullyingAsksForDetailFirst(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()

	d := decide(t, c, nil, "친구들이 나를 괴롭혀")
	if d.Rule != RuleBullying || d.Reply != replies.BullyingAskDetail[0] {
		t.Fatalf("expected detail question, got %s %q", d.Rule, d.Reply)
	}

	history := []models.Turn{
		models.UserTurn("친구들이 나를 괴롭혀"),
		models.AssistantTurn(d.Reply),
	}
	d = decide(t, c, history, "매일 괴롭혀")
	if d.Reply != replies.BullyingSupport[0] {
		t.Fatalf("expected supportive reply after disclosed violence, got %q", d.Reply)
	}
}

func TestBullyingFrequencyAvoidsRepeatedSafetyQuestion(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()

	history := []models.Turn{
		models.UserTurn("매일 따돌림 당해"),
		models.AssistantTurn(replies.Acknowledge),
	}
	if d := decide(t, c, history, "오늘도 따돌림 당했어"); d.Reply != replies.FrequencyFirst[0] {
		t.Fatalf("expected first frequency reply, got %q", d.Reply)
	}

	history[1] = models.AssistantTurn("지금은 안전한 곳에 있어?")
	d := decide(t, c, history, "오늘도 따돌림 당했어")
	if strings.Contains(d.Reply, "안전") {
		t.Fatalf("safety question repeated: %q", d.Reply)
	}
	if d.Reply != replies.FrequencyFirst[1] {
		t.Fatalf("expected second frequency reply, got %q", d.Reply)
	}
}

func TestFrequencyInPendingMessageStillAsksForDetail(t *testing.T) {
	d := decide(t, NewComposer(), nil, "매일 맞아")
	if d.Rule != RuleBullying || d.Reply != DefaultReplies().BullyingAskDetail[0] {
		t.Fatalf("expected detail question, got %s %q", d.Rule, d.Reply)
	}
}

func TestPolicyBranches(t *testing.T) {
	replies := DefaultReplies()
	escalated := risk.Assessment{
		Distress:      models.DistressHigh,
		SuicideSignal: models.SuicideLow,
		RiskScore:     65,
		NextAction:    models.ActionSpecialistHandoff,
	}
	violentHistory := []models.Turn{
		models.UserTurn("반 애들이 나를 때렸어"),
		models.AssistantTurn(replies.Acknowledge),
		models.UserTurn("오늘도 그랬어"),
		models.AssistantTurn(replies.Acknowledge),
	}

	tests := []struct {
		name     string
		opts     []Option
		history  []models.Turn
		message  string
		override *risk.Assessment
		rule     string
		reply    string
	}{
		{
			name:     "bullying escalates to an offer",
			history:  violentHistory,
			message:  "또 맞았어",
			override: &escalated,
			rule:     RuleBullying,
			reply:    replies.BullyingOffer[0],
		},
		{
			name:    "bullying below the escalation score stays supportive",
			history: violentHistory,
			message: "또 맞았어",
			rule:    RuleBullying,
			reply:   replies.BullyingSupport[0],
		},
		{
			name: "bullying contact request closes",
			opts: []Option{WithContactExtractor(PhoneContactExtractor{})},
			history: []models.Turn{
				models.UserTurn("애들이 때렸어"),
				models.AssistantTurn(replies.AskContact),
			},
			message: "또 맞았어",
			rule:    RuleBullying,
			reply:   replies.BullyingHandoff,
		},
		{
			name: "bullying comfort after the situation was asked",
			history: []models.Turn{
				models.UserTurn("친구들이 따돌려"),
				models.AssistantTurn(replies.BullyingAskDetail[0]),
			},
			message: "따돌림 당했어",
			rule:    RuleBullying,
			reply:   replies.BullyingComfort[0],
		},
		{
			name: "frequency already asked",
			history: []models.Turn{
				models.UserTurn("매일 따돌림 당해"),
				models.AssistantTurn("얼마나 자주 그래?"),
			},
			message: "오늘도 따돌림 당했어",
			rule:    RuleBullying,
			reply:   replies.FrequencyFollowup[0],
		},
		{
			name: "giving up after bullying",
			history: []models.Turn{
				models.UserTurn("애들이 때려"),
				models.AssistantTurn(replies.Acknowledge),
			},
			message: "그냥 참고 지낼래",
			rule:    RuleGivingUp,
			reply:   replies.GivingUpResponse,
		},
		{
			name: "medium distress after a disclosed situation",
			history: []models.Turn{
				models.UserTurn("왕따 당하고 있어"),
				models.AssistantTurn(replies.Acknowledge),
			},
			message: "힘들어",
			rule:    RuleMediumDistress,
			reply:   replies.SafetyFrequency[0],
		},
		{
			name: "medium distress after the situation was probed",
			history: []models.Turn{
				models.UserTurn("왕따 당하고 있어"),
				models.AssistantTurn(replies.ProbeSituation[0]),
			},
			message: "힘들어",
			rule:    RuleMediumDistress,
			reply:   replies.AdultDisclosure[0],
		},
		{
			name: "medium distress with a short negative",
			history: []models.Turn{
				models.UserTurn("요즘 힘들어"),
				models.AssistantTurn(replies.ProbeSituation[0]),
			},
			message: "몰라",
			rule:    RuleMediumDistress,
			reply:   replies.ShiftTopic[0],
		},
		{
			name: "crisis contact supplied after an older request",
			history: []models.Turn{
				models.UserTurn("죽고 싶어"),
				models.AssistantTurn(replies.CrisisOffer),
				models.UserTurn("잠깐만"),
				models.AssistantTurn("응, 기다릴게."),
				models.UserTurn("생각 중이야"),
			},
			message: "01012345678",
			rule:    RuleSuicideCrisis,
			reply:   replies.CrisisClose,
		},
		{
			name: "short reply after violence",
			history: []models.Turn{
				models.UserTurn("왕따 당했어"),
				models.AssistantTurn(replies.Acknowledge),
			},
			message: "응",
			rule:    RuleShortReply,
			reply:   replies.ViolenceFollow,
		},
		{
			name: "short reply after specific content",
			history: []models.Turn{
				models.UserTurn("학교 얘기야"),
				models.AssistantTurn(replies.Acknowledge),
			},
			message: "응",
			rule:    RuleShortReply,
			reply:   replies.ContentFollow,
		},
		{
			name: "disclosure after a generic reply",
			history: []models.Turn{
				models.UserTurn("학교에서 있었던 일이야"),
				models.AssistantTurn(replies.Acknowledge),
			},
			message: "선생님한테 혼났는데 속상했어",
			rule:    RuleDisclosedFollowup,
			reply:   replies.ElaborateDetail,
		},
		{
			name: "disclosure without a generic reply",
			history: []models.Turn{
				models.UserTurn("학교에서 있었던 일이야"),
				models.AssistantTurn("그랬구나."),
			},
			message: "선생님한테 혼났는데 속상했어",
			rule:    RuleDisclosedFollowup,
			reply:   replies.ShareMore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComposer(tt.opts...)
			a := risk.Default().AssessConversation(tt.history, tt.message)
			if tt.override != nil {
				a = *tt.override
			}
			d := c.Decide(tt.history, tt.message, a)
			if d.Rule != tt.rule {
				t.Fatalf("expected rule %s, got %s (%q)", tt.rule, d.Rule, d.Reply)
			}
			if d.Reply != tt.reply {
				t.Fatalf("unexpected reply %q", d.Reply)
			}
		})
	}
}

func TestNegativeBeliefAfterSuicideMention(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()
	history := []models.Turn{
		models.UserTurn("어제 죽을 뻔했어"),
		models.AssistantTurn(replies.Acknowledge),
	}

	d := decide(t, c, history, "아무도 도와줄 수 없어")
	if d.Rule != RuleNegativeBelief || d.Reply != replies.NegativeBeliefCorrection {
		t.Fatalf("expected correction, got %s %q", d.Rule, d.Reply)
	}
}

func TestHighDistressMirrorsAndAlternates(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()
	msg := "너무 힘들고 불안해"

	d := decide(t, c, nil, msg)
	first := fmt.Sprintf(replies.MirrorFirst, msg)
	if d.Rule != RuleHighDistress || d.Reply != first {
		t.Fatalf("expected mirrored reply, got %s %q", d.Rule, d.Reply)
	}

	second := fmt.Sprintf(replies.MirrorSecond, msg)
	history := []models.Turn{models.UserTurn(msg), models.AssistantTurn(second)}
	if d = decide(t, c, history, msg); d.Reply != first {
		t.Fatalf("expected alternate phrasing, got %q", d.Reply)
	}

	history = []models.Turn{models.UserTurn(msg), models.AssistantTurn(first)}
	if d = decide(t, c, history, msg); d.Reply != replies.HighDistressMoment[0] {
		t.Fatalf("expected a one-moment question after elaboration was asked, got %q", d.Reply)
	}
}

func TestMediumDistressProbes(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()

	d := decide(t, c, nil, "좀 힘들어")
	if d.Rule != RuleMediumDistress || d.Reply != replies.ProbeSituation[0] {
		t.Fatalf("expected situation probe, got %s %q", d.Rule, d.Reply)
	}

	history := []models.Turn{models.UserTurn("좀 힘들어"), models.AssistantTurn(d.Reply)}
	d = decide(t, c, history, "그냥 힘들어")
	if d.Reply != replies.ProbeSituation[1] {
		t.Fatalf("expected a different probe, got %q", d.Reply)
	}
}

func TestShortReplyAndFallback(t *testing.T) {
	c := NewComposer()
	replies := DefaultReplies()

	if d := decide(t, c, nil, "응"); d.Rule != RuleShortReply || d.Reply != replies.GentlePrompt {
		t.Fatalf("expected gentle prompt, got %s %q", d.Rule, d.Reply)
	}
	if d := decide(t, c, nil, "오늘 점심 맛있었어"); d.Rule != RuleAcknowledge || d.Reply != replies.Acknowledge {
		t.Fatalf("expected acknowledgment, got %s %q", d.Rule, d.Reply)
	}
}

func TestRulesOrder(t *testing.T) {
	rules := NewComposer().Rules()
	if len(rules) != 13 {
		t.Fatalf("expected 13 rules, got %d", len(rules))
	}
	if rules[0] != RuleContactHandoff || rules[1] != RuleSuicideCrisis || rules[len(rules)-1] != RuleAcknowledge {
		t.Fatalf("unexpected rule order %v", rules)
	}
}

func TestPickNonRepeating(t *testing.T) {
	candidates := []string{"a", "b", "c"}
	if got := PickNonRepeating(candidates, []string{"a"}); got != "b" {
		t.Fatalf("expected b, got %s", got)
	}
	if got := PickNonRepeating(candidates, []string{"a", "b", "c"}); got != "a" {
		t.Fatalf("expected first candidate when all used, got %s", got)
	}
	if got := PickNonRepeating([]string{"only"}, []string{"only"}); got != "only" {
		t.Fatalf("expected the single candidate, got %s", got)
	}
	if got := PickNonRepeating(nil, nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
