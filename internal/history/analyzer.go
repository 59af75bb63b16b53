package history

import (
	"log"
	"strings"

	"maumcare/internal/models"
	"maumcare/internal/report"
	"maumcare/internal/risk"
)

// Assessor scores concatenated user text.
type Assessor interface {
	Assess(text string) risk.Assessment
}

// Analyzer replays a conversation turn by turn.
type Analyzer struct {
	assessor Assessor
	reports  *report.Builder
}

// NewAnalyzer creates an analyzer. A nil assessor or builder falls back to the defaults.
func NewAnalyzer(assessor Assessor, reports *report.Builder) *Analyzer {
	if assessor == nil {
		assessor = risk.Default()
	}
	if reports == nil {
		reports = report.NewBuilder()
	}
	return &Analyzer{assessor: assessor, reports: reports}
}

// Reanalyze produces one record per user turn of history followed by current.
// Each record is scored over the user text up to and including that turn, so
// the trace never decreases. A turn whose scoring fails is left out.
func (a *Analyzer) Reanalyze(history []models.Turn, current string) []models.TurnAnalysis {
	turns := make([]models.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, models.UserTurn(current))

	var (
		out    []models.TurnAnalysis
		prefix strings.Builder
	)
	for idx, turn := range turns {
		if turn.Role != models.RoleUser {
			continue
		}
		prefix.WriteString(turn.Content)
		assessment, ok := a.safeAssess(prefix.String())
		if !ok {
			log.Printf("history: skip turn %d: scoring failed", idx)
			continue
		}
		out = append(out, models.TurnAnalysis{
			TurnIndex:      idx,
			UserMessage:    turn.Content,
			AssistantReply: nextAssistantReply(turns, idx),
			Distress:       assessment.Distress,
			SuicideSignal:  assessment.SuicideSignal,
			RiskScore:      assessment.RiskScore,
			NextAction:     assessment.NextAction,
		})
	}
	return out
}

// Enrich converts history into stored turns, attaching to every non-empty user
// turn the snapshot of the conversation up to that point. When includeCurrent
// is set, current is appended as the final user turn first.
func (a *Analyzer) Enrich(history []models.Turn, current string, includeCurrent bool) []models.StoredTurn {
	turns := make([]models.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	if includeCurrent && current != "" {
		turns = append(turns, models.UserTurn(current))
	}

	out := make([]models.StoredTurn, 0, len(turns))
	var prefix strings.Builder
	for idx, turn := range turns {
		stored := models.StoredTurn{Role: turn.Role, Content: turn.Content}
		if turn.Role == models.RoleUser && turn.Content != "" {
			prefix.WriteString(turn.Content)
			stored.Analysis = a.snapshot(turns[:idx+1], prefix.String())
		}
		out = append(out, stored)
	}
	return out
}

func (a *Analyzer) snapshot(slice []models.Turn, userText string) *models.TurnSnapshot {
	assessment, ok := a.safeAssess(userText)
	if !ok {
		log.Printf("history: snapshot failed at turn %d, using safe default", len(slice)-1)
		return &models.TurnSnapshot{
			Distress:      models.DistressLow,
			SuicideSignal: models.SuicideNone,
			RiskScore:     risk.DefaultWeights().Base,
			NextAction:    models.ActionGeneral,
		}
	}
	return &models.TurnSnapshot{
		Distress:      assessment.Distress,
		SuicideSignal: assessment.SuicideSignal,
		RiskScore:     assessment.RiskScore,
		NextAction:    assessment.NextAction,
		Trend:         report.Trend(assessment.RiskScore, assessment.Distress),
		TurnCount:     len(slice),
		KeyTopics:     a.reports.KeyTopics(slice),
	}
}

func (a *Analyzer) safeAssess(text string) (assessment risk.Assessment, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("history: assess panic: %v", r)
			ok = false
		}
	}()
	return a.assessor.Assess(text), true
}

func nextAssistantReply(turns []models.Turn, idx int) *string {
	for j := idx + 1; j < len(turns); j++ {
		if turns[j].Role == models.RoleAssistant {
			reply := turns[j].Content
			return &reply
		}
	}
	return nil
}

// Dedupe drops turns that repeat the previous turn verbatim.
func Dedupe(history []models.Turn) []models.Turn {
	out := make([]models.Turn, 0, len(history))
	for i, t := range history {
		if i > 0 && t == history[i-1] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// EndsWith reports whether the last turn is the user saying message.
func EndsWith(history []models.Turn, message string) bool {
	if len(history) == 0 {
		return false
	}
	last := history[len(history)-1]
	return last.Role == models.RoleUser && last.Content == message
}
