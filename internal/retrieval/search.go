package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"maumcare/internal/config"
	"maumcare/internal/models"

	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino-ext/components/tool/googlesearch"
	"github.com/cloudwego/eino/components/tool"
)

const (
	WebSearchTimeout = 10 * time.Second
	webMaxResults    = 3
	// queries are steered towards support resources rather than raw web content
	resourceSuffix = " 청소년 상담 도움"
)

var ErrNoSearchProvider = errors.New("no search provider succeeded")

// SearchRetriever looks up help resources on the web. Google is tried first
// when credentials exist, DuckDuckGo otherwise or on failure.
type SearchRetriever struct {
	google tool.InvokableTool
	duck   tool.InvokableTool
}

// NewSearchRetriever builds the web search tools from the retrieval config.
// It returns nil when no provider could be initialised.
func NewSearchRetriever(ctx context.Context, cfg config.RetrievalConfig) *SearchRetriever {
	s := &SearchRetriever{
		google: newGoogleSearch(ctx, cfg),
		duck:   newDDGSearch(ctx),
	}
	if s.google == nil && s.duck == nil {
		log.Printf("web search disabled: no search providers available")
		return nil
	}
	return s
}

func newDDGSearch(ctx context.Context) tool.InvokableTool {
	duckTool, err := duckduckgo.NewTextSearchTool(ctx, &duckduckgo.Config{
		ToolName:   "resource_search_ddg",
		ToolDesc:   "DuckDuckGo search for counselling resources",
		MaxResults: webMaxResults,
		Region:     duckduckgo.RegionWT,
		Timeout:    WebSearchTimeout,
	})
	if err != nil {
		log.Printf("duckduckgo search disabled: %v", err)
		return nil
	}
	return duckTool
}

func newGoogleSearch(ctx context.Context, cfg config.RetrievalConfig) tool.InvokableTool {
	if cfg.GoogleAPIKey == "" || cfg.GoogleSearchEngineID == "" {
		return nil
	}
	googleTool, err := googlesearch.NewTool(ctx, &googlesearch.Config{
		ToolName:       "resource_search_google",
		ToolDesc:       "Google search for counselling resources",
		APIKey:         cfg.GoogleAPIKey,
		SearchEngineID: cfg.GoogleSearchEngineID,
		Lang:           "ko",
		Num:            webMaxResults,
	})
	if err != nil {
		log.Printf("google search disabled: %v", err)
		return nil
	}
	return googleTool
}

// Search queries the web with the recent conversation.
func (s *SearchRetriever) Search(ctx context.Context, message string, history []models.Turn) ([]models.Passage, error) {
	query := strings.TrimSpace(message)
	if query == "" {
		query = QueryText("", history)
	}
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	payload, err := json.Marshal(map[string]string{"query": query + resourceSuffix})
	if err != nil {
		return nil, fmt.Errorf("marshal search params: %w", err)
	}

	for _, provider := range []struct {
		name string
		tool tool.InvokableTool
	}{{"google", s.google}, {"duckduckgo", s.duck}} {
		if provider.tool == nil {
			continue
		}
		raw, err := provider.tool.InvokableRun(ctx, string(payload))
		if err != nil {
			log.Printf("%s search failed: %v", provider.name, err)
			continue
		}
		return parseResults(provider.name, raw), nil
	}
	return nil, ErrNoSearchProvider
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Link    string `json:"link"`
	Summary string `json:"summary"`
	Snippet string `json:"snippet"`
	Desc    string `json:"desc"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
	Items   []searchResult `json:"items"`
}

// parseResults accepts the result shapes of both search tools. Unrecognised
// output is returned as a single passage.
func parseResults(source, raw string) []models.Passage {
	var resp searchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		if text := strings.TrimSpace(raw); text != "" {
			return []models.Passage{{Text: text, Source: source}}
		}
		return nil
	}
	results := append(resp.Results, resp.Items...)
	out := make([]models.Passage, 0, len(results))
	for i, r := range results {
		body := firstNonEmpty(r.Summary, r.Snippet, r.Desc)
		text := strings.TrimSpace(strings.Join([]string{r.Title, body}, "\n"))
		if text == "" {
			continue
		}
		src := firstNonEmpty(r.URL, r.Link, source)
		out = append(out, models.Passage{Text: text, Source: src, Score: float64(len(results) - i)})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
