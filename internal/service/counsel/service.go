package counsel

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"maumcare/internal/engine"
	"maumcare/internal/history"
	"maumcare/internal/models"
	"maumcare/internal/signal"
	"maumcare/internal/worker"
)

const (
	// recentHistoryTurns is how far back a suicide word in user turns keeps the core reply in charge.
	recentHistoryTurns = 5
	saveTimeout        = 10 * time.Second
)

// Core is the classification engine as seen by the chat service.
type Core interface {
	Classify(history []models.Turn, message string) models.Analysis
	ContactHandoff(history []models.Turn, message string) bool
	HasSuicideCue(text string) bool
	ShouldEnd(history []models.Turn, riskScore int, distress models.DistressLevel, message string) bool
	BuildEndReport(history []models.Turn, riskScore int, distress models.DistressLevel, sig models.SuicideSignal) models.EndReport
	ReanalyzeHistory(history []models.Turn, currentMessage string) []models.TurnAnalysis
	EnrichHistory(history []models.Turn, current string, includeCurrent bool) []models.StoredTurn
}

// Archiver runs save jobs in the background.
type Archiver interface {
	Submit(job worker.Job) error
}

// ReportPublisher announces finished conversations.
type ReportPublisher interface {
	PublishEndReport(ctx context.Context, key string, report models.EndReport) error
}

type ChatRequest struct {
	History                []models.Turn `json:"history"`
	Message                string        `json:"message"`
	IsAdmin                bool          `json:"is_admin"`
	IncludeHistoryAnalysis bool          `json:"include_history_analysis"`

	// ClientID groups archive jobs per caller.
	ClientID string `json:"-"`
	// Throttled callers get the core reply only; calm exchanges are not archived.
	Throttled bool `json:"-"`
}

type ChatResponse struct {
	Reply           string                `json:"reply"`
	Distress        models.DistressLevel  `json:"emotional_distress"`
	SuicideSignal   models.SuicideSignal  `json:"suicide_signal"`
	RiskScore       int                   `json:"risk_score"`
	NextAction      models.NextAction     `json:"next_action"`
	ConversationEnd bool                  `json:"conversation_end"`
	EndReport       *models.EndReport     `json:"end_report"`
	HistoryAnalysis []models.TurnAnalysis `json:"history_analysis"`
}

// Service combines the rule-based core with an optional generator and
// archives every exchange.
type Service struct {
	core      Core
	generator engine.Generator
	store     engine.Store
	archive   Archiver
	events    ReportPublisher

	// user words that keep the core reply in charge when seen in recent history
	crisisWords signal.CueSet
	saveTimeout time.Duration
}

type Option func(*Service)

func WithGenerator(g engine.Generator) Option {
	return func(s *Service) { s.generator = g }
}

func WithStore(st engine.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithArchiver hands saves to a background pool instead of saving inline.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archive = a }
}

func WithPublisher(p ReportPublisher) Option {
	return func(s *Service) { s.events = p }
}

func NewService(core Core, opts ...Option) *Service {
	if core == nil {
		core = engine.New()
	}
	s := &Service{
		core:        core,
		crisisWords: signal.NewCueSet("자살", "죽고", "죽을", "끝내", "살고 싶지"),
		saveTimeout: saveTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat answers one user message. It never fails: collaborator errors are
// logged and the rule-based reply is used instead.
func (s *Service) Chat(ctx context.Context, req ChatRequest) ChatResponse {
	analysis := guard("analysis", engine.SafeDefault(), func() models.Analysis {
		return s.core.Classify(req.History, req.Message)
	})

	coreOnly := s.coreReplyRequired(req, analysis)
	reply := analysis.Reply
	if !coreOnly && !req.Throttled {
		if text := s.generate(ctx, req.History, req.Message); text != "" {
			reply = text
		}
	}
	if strings.TrimSpace(reply) == "" {
		reply = engine.ApologyReply
	}

	ended := guard("conversation end check", false, func() bool {
		return s.core.ShouldEnd(req.History, analysis.RiskScore, analysis.Distress, req.Message)
	})
	var endReport *models.EndReport
	if ended {
		endReport = guard[*models.EndReport]("end report", nil, func() *models.EndReport {
			turns := append(append([]models.Turn(nil), req.History...), models.UserTurn(req.Message))
			r := s.core.BuildEndReport(turns, analysis.RiskScore, analysis.Distress, analysis.SuicideSignal)
			return &r
		})
	}

	if req.Throttled && !coreOnly {
		log.Printf("client %s over chat limit, exchange not archived", req.ClientID)
		if endReport != nil {
			s.publish(ctx, "", *endReport)
		}
	} else {
		s.archiveExchange(ctx, req, analysis, reply, endReport)
	}

	resp := ChatResponse{
		Reply:           reply,
		Distress:        analysis.Distress,
		SuicideSignal:   analysis.SuicideSignal,
		RiskScore:       analysis.RiskScore,
		NextAction:      analysis.NextAction,
		ConversationEnd: ended,
		EndReport:       endReport,
	}
	if req.IncludeHistoryAnalysis {
		resp.HistoryAnalysis = s.AnalyzeHistory(req.History, req.Message)
	}
	return resp
}

// AnalyzeHistory returns the per-turn trace, or nil when it cannot be built.
func (s *Service) AnalyzeHistory(turns []models.Turn, message string) []models.TurnAnalysis {
	return guard[[]models.TurnAnalysis]("history analysis", nil, func() []models.TurnAnalysis {
		return s.core.ReanalyzeHistory(turns, message)
	})
}

func (s *Service) generate(ctx context.Context, turns []models.Turn, message string) string {
	if s.generator == nil {
		return ""
	}
	text, err := s.generator.Generate(ctx, turns, message)
	if err != nil {
		log.Printf("llm call failed, using rule reply: %v", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// coreReplyRequired reports whether the rule reply must be used as is: contact
// details were just handed over or any suicide indication is present. The
// generator is not consulted in that case.
func (s *Service) coreReplyRequired(req ChatRequest, analysis models.Analysis) bool {
	handoff := guard("contact handoff check", false, func() bool {
		return s.core.ContactHandoff(req.History, req.Message)
	})
	switch {
	case handoff, analysis.SuicideSignal.Elevated():
		return true
	case guard("suicide cue check", false, func() bool { return s.core.HasSuicideCue(req.Message) }):
		return true
	default:
		return s.recentCrisisWords(req.History)
	}
}

func (s *Service) recentCrisisWords(turns []models.Turn) bool {
	if len(turns) > recentHistoryTurns {
		turns = turns[len(turns)-recentHistoryTurns:]
	}
	var users []string
	for _, t := range turns {
		if t.Role == models.RoleUser {
			users = append(users, t.Content)
		}
	}
	return signal.HasAny(strings.Join(users, " "), s.crisisWords)
}

func (s *Service) archiveExchange(ctx context.Context, req ChatRequest, analysis models.Analysis, reply string, endReport *models.EndReport) {
	if s.store == nil {
		if endReport != nil {
			s.publish(ctx, "", *endReport)
		}
		return
	}
	record := s.buildRecord(req, analysis, reply, endReport)
	save := func(ctx context.Context) error {
		key, err := s.store.Save(ctx, record)
		if endReport != nil {
			s.publish(ctx, key, *endReport)
		}
		return err
	}

	if s.archive != nil {
		err := s.archive.Submit(worker.Job{
			ClientID: req.ClientID,
			Name:     "save-conversation",
			Task: func(ctx context.Context) error {
				if err := save(ctx); err != nil {
					log.Printf("conversation save failed: %v", err)
					return err
				}
				return nil
			},
		})
		if err == nil {
			return
		}
		if !errors.Is(err, worker.ErrDispatcherBusy) && !errors.Is(err, worker.ErrDispatcherClosed) {
			log.Printf("archive submit failed: %v", err)
			return
		}
		log.Printf("archive pool unavailable (%v), saving inline", err)
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	defer cancel()
	if err := save(saveCtx); err != nil {
		log.Printf("conversation save failed: %v", err)
	}
}

func (s *Service) buildRecord(req ChatRequest, analysis models.Analysis, reply string, endReport *models.EndReport) *models.ConversationRecord {
	deduped := history.Dedupe(req.History)
	includeCurrent := !history.EndsWith(deduped, req.Message)
	stored := guard[[]models.StoredTurn]("history enrichment", nil, func() []models.StoredTurn {
		return s.core.EnrichHistory(deduped, req.Message, includeCurrent)
	})
	if stored == nil {
		stored = plainTurns(deduped, req.Message, includeCurrent)
	}
	stored = append(stored, models.StoredTurn{Role: models.RoleAssistant, Content: reply})

	return &models.ConversationRecord{
		IsTest:  req.IsAdmin,
		History: dedupeStored(stored),
		Analysis: models.AnalysisSummary{
			Distress:      analysis.Distress,
			SuicideSignal: analysis.SuicideSignal,
			RiskScore:     analysis.RiskScore,
			NextAction:    analysis.NextAction,
		},
		EndReport: endReport,
	}
}

func (s *Service) publish(ctx context.Context, key string, report models.EndReport) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEndReport(ctx, key, report); err != nil {
		log.Printf("end report publish failed: %v", err)
	}
}

func plainTurns(turns []models.Turn, current string, includeCurrent bool) []models.StoredTurn {
	out := make([]models.StoredTurn, 0, len(turns)+1)
	for _, t := range turns {
		out = append(out, models.StoredTurn{Role: t.Role, Content: t.Content})
	}
	if includeCurrent && current != "" {
		out = append(out, models.StoredTurn{Role: models.RoleUser, Content: current})
	}
	return out
}

func dedupeStored(turns []models.StoredTurn) []models.StoredTurn {
	out := make([]models.StoredTurn, 0, len(turns))
	for i, t := range turns {
		if i > 0 && t.Role == turns[i-1].Role && t.Content == turns[i-1].Content {
			continue
		}
		out = append(out, t)
	}
	return out
}

// guard runs fn and returns fallback if it panics.
func guard[T any](what string, fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s failed: %v", what, r)
			out = fallback
		}
	}()
	return fn()
}
