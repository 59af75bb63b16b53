package history

import (
	"strings"
	"testing"

	"maumcare/internal/models"
	"maumcare/internal/report"
	"maumcare/internal/risk"
)

type panicAssessor struct {
	trigger string
	inner   *risk.Scorer
}

func (p panicAssessor) Assess(text string) risk.Assessment {
	if strings.HasSuffix(text, p.trigger) {
		panic("boom")
	}
	return p.inner.Assess(text)
}

func sampleConversation() []models.Turn {
	return []models.Turn{
		models.UserTurn("요즘 좀 힘들어"),
		models.AssistantTurn("그랬구나"),
		models.UserTurn("죽고 싶어"),
		models.AssistantTurn("지금 많이 힘들어 보인다"),
	}
}

func TestReanalyzeIsMonotone(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	got := a.Reanalyze(sampleConversation(), "01012345678")
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}

	if got[0].TurnIndex != 0 || got[1].TurnIndex != 2 || got[2].TurnIndex != 4 {
		t.Fatalf("unexpected turn indexes %d %d %d", got[0].TurnIndex, got[1].TurnIndex, got[2].TurnIndex)
	}
	if got[0].AssistantReply == nil || *got[0].AssistantReply != "그랬구나" {
		t.Fatalf("expected following reply on first record")
	}
	if got[2].AssistantReply != nil {
		t.Fatalf("pending message has no reply yet")
	}
	if got[0].SuicideSignal != models.SuicideNone || got[1].SuicideSignal != models.SuicideHigh {
		t.Fatalf("unexpected signals %s %s", got[0].SuicideSignal, got[1].SuicideSignal)
	}
	for i := 1; i < len(got); i++ {
		if got[i].RiskScore < got[i-1].RiskScore {
			t.Fatalf("risk decreased at record %d: %d < %d", i, got[i].RiskScore, got[i-1].RiskScore)
		}
		if got[i].SuicideSignal.Rank() < got[i-1].SuicideSignal.Rank() {
			t.Fatalf("signal decreased at record %d", i)
		}
	}
}

func TestReanalyzeSkipsFailedTurn(t *testing.T) {
	a := NewAnalyzer(panicAssessor{trigger: "죽고 싶어", inner: risk.Default()}, nil)
	got := a.Reanalyze(sampleConversation(), "고마워")
	if len(got) != 2 {
		t.Fatalf("expected the failing turn to be skipped, got %d records", len(got))
	}
	if got[0].UserMessage != "요즘 좀 힘들어" || got[1].UserMessage != "고마워" {
		t.Fatalf("unexpected records %+v", got)
	}
	if got[1].SuicideSignal != models.SuicideHigh {
		t.Fatalf("later turn should still see the earlier text, got %s", got[1].SuicideSignal)
	}
}

func TestEnrich(t *testing.T) {
	a := NewAnalyzer(nil, report.NewBuilder())
	history := append(sampleConversation(), models.UserTurn(""))
	got := a.Enrich(history, "01012345678", true)
	if len(got) != 6 {
		t.Fatalf("expected 6 stored turns, got %d", len(got))
	}
	if got[1].Analysis != nil || got[4].Analysis != nil {
		t.Fatalf("assistant and empty turns carry no analysis")
	}
	first, crisis, last := got[0].Analysis, got[2].Analysis, got[5].Analysis
	if first == nil || crisis == nil || last == nil {
		t.Fatalf("user turns must be enriched")
	}
	if first.TurnCount != 1 || crisis.TurnCount != 3 || last.TurnCount != 6 {
		t.Fatalf("unexpected turn counts %d %d %d", first.TurnCount, crisis.TurnCount, last.TurnCount)
	}
	if crisis.Trend != report.TrendAtRisk {
		t.Fatalf("expected at-risk trend, got %q", crisis.Trend)
	}
	if last.SuicideSignal != models.SuicideHigh {
		t.Fatalf("phone number must not erase the crisis signal")
	}
}

func TestEnrichWithoutCurrent(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	got := a.Enrich(sampleConversation(), "ignored", false)
	if len(got) != 4 {
		t.Fatalf("expected 4 stored turns, got %d", len(got))
	}
}

func TestEnrichFallsBackOnFailure(t *testing.T) {
	a := NewAnalyzer(panicAssessor{trigger: "힘들어", inner: risk.Default()}, nil)
	got := a.Enrich([]models.Turn{models.UserTurn("요즘 좀 힘들어")}, "", false)
	s := got[0].Analysis
	if s == nil || s.RiskScore != 10 || s.SuicideSignal != models.SuicideNone || s.NextAction != models.ActionGeneral {
		t.Fatalf("expected safe default snapshot, got %+v", s)
	}
}

func TestDedupe(t *testing.T) {
	in := []models.Turn{
		models.UserTurn("안녕"),
		models.UserTurn("안녕"),
		models.AssistantTurn("안녕!"),
		models.UserTurn("안녕"),
	}
	got := Dedupe(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(got))
	}
	if !EndsWith(got, "안녕") || EndsWith(got, "잘가") || EndsWith(nil, "안녕") {
		t.Fatalf("unexpected EndsWith results")
	}
}
