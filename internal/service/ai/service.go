package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maumcare/internal/config"
	"maumcare/internal/models"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

const (
	DefaultTimeout = 20 * time.Second
	// maxHistoryTurns bounds how much of the conversation is sent to the model.
	maxHistoryTurns = 20
	claudeMaxTokens = 1024
)

// SystemPrompt frames the model as a peer-level counsellor for teenagers.
const SystemPrompt = `너는 청소년을 돕는 따뜻한 상담 친구야.
- 반말로, 두세 문장 이내로 짧게 답해.
- 판단하거나 훈계하지 말고 먼저 감정을 받아줘.
- 진단, 약물, 구체적인 방법에 대한 이야기는 하지 마.
- 위험해 보이면 혼자 두지 않겠다고 말하고 믿을 수 있는 어른이나 109(자살예방상담전화), 1388(청소년상담전화)을 안내해.
- 모르는 것은 지어내지 말고 더 이야기해 달라고 부탁해.`

var ErrEmptyMessage = errors.New("message cannot be empty")

// Generator produces free-form counselling replies with an eino chat model.
type Generator struct {
	model   model.BaseChatModel
	prompt  string
	timeout time.Duration
}

// NewGenerator builds the chat model for provider from its config entry.
func NewGenerator(ctx context.Context, provider string, provCfg config.ProviderConfig, timeout time.Duration) (*Generator, error) {
	if provCfg.APIKey == "" {
		return nil, fmt.Errorf("provider %s: api key missing", provider)
	}
	var (
		chatModel model.BaseChatModel
		err       error
	)
	switch provider {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   provCfg.Model,
			APIKey:  provCfg.APIKey,
		})
	case "gemini":
		client, cerr := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: provCfg.APIKey,
		})
		if cerr != nil {
			return nil, fmt.Errorf("new gemini client: %w", cerr)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  provCfg.Model,
			ThinkingConfig: &genai.ThinkingConfig{
				IncludeThoughts: false,
			},
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    provCfg.APIKey,
			Model:     provCfg.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: claudeMaxTokens,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", provider, err)
	}
	return NewGeneratorWithModel(chatModel, timeout), nil
}

// NewGeneratorWithModel wraps an existing chat model.
func NewGeneratorWithModel(chatModel model.BaseChatModel, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{model: chatModel, prompt: SystemPrompt, timeout: timeout}
}

// Generate asks the model for a reply to message. The returned text is trimmed;
// an empty completion is reported as an error.
func (g *Generator) Generate(ctx context.Context, history []models.Turn, message string) (string, error) {
	if g == nil || g.model == nil {
		return "", errors.New("generator not configured")
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.model.Generate(ctx, g.convertMessages(history, message))
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	if resp == nil {
		return "", errors.New("empty model response")
	}
	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", errors.New("empty model response")
	}
	return reply, nil
}

func (g *Generator) convertMessages(history []models.Turn, message string) []*schema.Message {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(g.prompt))
	for _, turn := range history {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		switch turn.Role {
		case models.RoleUser:
			msgs = append(msgs, schema.UserMessage(turn.Content))
		case models.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Content, nil))
		}
	}
	// the current message may already close the history
	if n := len(history); n == 0 || history[n-1].Role != models.RoleUser || history[n-1].Content != message {
		msgs = append(msgs, schema.UserMessage(message))
	}
	return msgs
}
