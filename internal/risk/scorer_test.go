package risk

import (
	"testing"

	"maumcare/internal/models"
)

func TestEstimateDistress(t *testing.T) {
	s := Default()
	cases := []struct {
		text string
		want models.DistressLevel
	}{
		{"오늘 점심 맛있었어", models.DistressLow},
		{"좀 힘들어", models.DistressMedium},
		{"진짜 배고파", models.DistressMedium},
		{"힘들고 불안해", models.DistressMedium},
		{"너무 힘들고 불안해", models.DistressHigh},
		{"힘들고 불안하고 우울해", models.DistressHigh},
		{"", models.DistressLow},
	}
	for _, tc := range cases {
		if got := s.EstimateDistress(tc.text); got != tc.want {
			t.Fatalf("EstimateDistress(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestEstimateSuicideSignal(t *testing.T) {
	s := Default()
	cases := []struct {
		text string
		want models.SuicideSignal
	}{
		{"죽고 싶어", models.SuicideHigh},
		{"자 살", models.SuicideHigh},
		{"그냥 사라지고 싶다", models.SuicideMedium},
		{"죽을 것 같은데 쉬고 싶다", models.SuicideLow},
		{"배고파 죽겠다", models.SuicideNone},
		{"", models.SuicideNone},
	}
	for _, tc := range cases {
		if got := s.EstimateSuicideSignal(tc.text); got != tc.want {
			t.Fatalf("EstimateSuicideSignal(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestEstimateRiskScoreIsAdditiveAndClamped(t *testing.T) {
	s := Default()
	distress := []models.DistressLevel{models.DistressLow, models.DistressMedium, models.DistressHigh}
	signals := []models.SuicideSignal{models.SuicideNone, models.SuicideLow, models.SuicideMedium, models.SuicideHigh}
	for _, d := range distress {
		for _, sig := range signals {
			score := s.EstimateRiskScore(d, sig)
			if score < 10 || score > 100 {
				t.Fatalf("score %d out of range for %s/%s", score, d, sig)
			}
		}
	}
	if got := s.EstimateRiskScore(models.DistressMedium, models.SuicideLow); got != 50 {
		t.Fatalf("expected additive 10+20+20=50, got %d", got)
	}
	if got := s.EstimateRiskScore(models.DistressHigh, models.SuicideHigh); got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
	if got := s.EstimateRiskScore(models.DistressLow, models.SuicideNone); got != 10 {
		t.Fatalf("expected base 10, got %d", got)
	}
}

func TestNextActionThresholds(t *testing.T) {
	cases := map[int]models.NextAction{
		10:  models.ActionGeneral,
		34:  models.ActionGeneral,
		35:  models.ActionCaution,
		59:  models.ActionCaution,
		60:  models.ActionSpecialistHandoff,
		79:  models.ActionSpecialistHandoff,
		80:  models.ActionImmediate,
		100: models.ActionImmediate,
	}
	for score, want := range cases {
		if got := NextAction(score); got != want {
			t.Fatalf("NextAction(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestAssessConversationIsMonotone(t *testing.T) {
	s := Default()
	userTurns := []string{
		"안녕",
		"요즘 학교에서 힘들어",
		"죽고 싶다는 생각도 해",
		"01012345678",
		"그냥 괜찮아",
		"너무 불안하고 우울해",
	}
	var history []models.Turn
	prev := s.AssessConversation(nil, "")
	for _, msg := range userTurns {
		history = append(history, models.UserTurn(msg), models.AssistantTurn("응, 듣고 있어."))
		cur := s.AssessConversation(history, "")
		if cur.Distress.Rank() < prev.Distress.Rank() {
			t.Fatalf("distress decreased after %q: %s -> %s", msg, prev.Distress, cur.Distress)
		}
		if cur.SuicideSignal.Rank() < prev.SuicideSignal.Rank() {
			t.Fatalf("suicide signal decreased after %q: %s -> %s", msg, prev.SuicideSignal, cur.SuicideSignal)
		}
		if cur.RiskScore < prev.RiskScore {
			t.Fatalf("risk score decreased after %q: %d -> %d", msg, prev.RiskScore, cur.RiskScore)
		}
		prev = cur
	}
	if prev.SuicideSignal != models.SuicideHigh {
		t.Fatalf("earlier crisis signal must survive later turns, got %s", prev.SuicideSignal)
	}
}

func TestAssessConversationIgnoresAssistantTurns(t *testing.T) {
	s := Default()
	history := []models.Turn{
		models.UserTurn("그냥 그래"),
		models.AssistantTurn("죽고 싶다는 마음이 들 때도 있어?"),
	}
	got := s.AssessConversation(history, "아니")
	if got.SuicideSignal != models.SuicideNone {
		t.Fatalf("assistant text must not be scored, got %s", got.SuicideSignal)
	}
}
