package retrieval

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"maumcare/internal/models"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
)

const (
	DefaultTopK       = 3
	DefaultCollection = "counseling_manual"
	// chunks shorter than this are folded into the previous one
	minChunkRunes = 100
	// recentUserTurns is how many user turns join the query.
	recentUserTurns = 3
	defaultSection  = "기타"
)

var ErrManualNotLoaded = errors.New("manual not loaded")

// Chunk is one section of the crisis-response manual.
type Chunk struct {
	ID      int    `json:"id"`
	Section string `json:"section"`
	Text    string `json:"text"`
}

// Info describes the loaded manual index.
type Info struct {
	Path       string `json:"path"`
	Collection string `json:"collection"`
	ChunkCount int    `json:"chunk_count"`
	Exists     bool   `json:"exists"`
}

// ManualIndex is an in-memory, keyword-ranked index over a text manual.
type ManualIndex struct {
	path       string
	collection string
	topK       int
	loader     *file.FileLoader

	mu     sync.RWMutex
	chunks []Chunk
	terms  [][]string
}

// NewManualIndex prepares an index over the manual at path. Call Load before searching.
func NewManualIndex(ctx context.Context, path, collection string, topK int) (*ManualIndex, error) {
	parserExt, err := parser.NewExtParser(ctx, &parser.ExtParserConfig{
		FallbackParser: parser.TextParser{},
	})
	if err != nil {
		return nil, fmt.Errorf("init manual parser: %w", err)
	}
	loader, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
		UseNameAsID: true,
		Parser:      parserExt,
	})
	if err != nil {
		return nil, fmt.Errorf("init manual loader: %w", err)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ManualIndex{path: path, collection: collection, topK: topK, loader: loader}, nil
}

// Load (re)reads the manual file and rebuilds the chunks. A missing file
// leaves the index empty and returns an error wrapping os.ErrNotExist.
func (m *ManualIndex) Load(ctx context.Context) error {
	if m.path == "" {
		return fmt.Errorf("manual path: %w", os.ErrNotExist)
	}
	if _, err := os.Stat(m.path); err != nil {
		return fmt.Errorf("stat manual: %w", err)
	}
	docs, err := m.loader.Load(ctx, document.Source{URI: m.path})
	if err != nil {
		return fmt.Errorf("load manual: %w", err)
	}
	var builder strings.Builder
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		builder.WriteString(doc.Content)
		builder.WriteString("\n")
	}
	chunks := ChunkManual(builder.String())
	terms := make([][]string, len(chunks))
	for i, c := range chunks {
		terms[i] = tokenize(c.Text)
	}

	m.mu.Lock()
	m.chunks = chunks
	m.terms = terms
	m.mu.Unlock()
	return nil
}

// Info reports where the manual lives and how many chunks are indexed.
func (m *ManualIndex) Info() Info {
	m.mu.RLock()
	n := len(m.chunks)
	m.mu.RUnlock()
	return Info{Path: m.path, Collection: m.collection, ChunkCount: n, Exists: n > 0}
}

// Chunks returns a copy of the indexed chunks.
func (m *ManualIndex) Chunks() []Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Chunk(nil), m.chunks...)
}

// Search ranks chunks against the message and the most recent user turns.
// An empty index yields no passages and no error.
func (m *ManualIndex) Search(ctx context.Context, message string, history []models.Turn) ([]models.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := tokenize(QueryText(message, history))
	if len(query) == 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	for i := range m.chunks {
		if s := overlap(query, m.terms[i]); s > 0 {
			hits = append(hits, scored{idx: i, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > m.topK {
		hits = hits[:m.topK]
	}
	out := make([]models.Passage, 0, len(hits))
	for _, h := range hits {
		c := m.chunks[h.idx]
		out = append(out, models.Passage{Text: c.Text, Source: c.Section, Score: h.score})
	}
	return out, nil
}

// QueryText joins the last few user turns with the current message.
func QueryText(message string, history []models.Turn) string {
	var recent []string
	for i := len(history) - 1; i >= 0 && len(recent) < recentUserTurns; i-- {
		if history[i].Role == models.RoleUser && strings.TrimSpace(history[i].Content) != "" {
			recent = append(recent, history[i].Content)
		}
	}
	parts := make([]string, 0, len(recent)+1)
	for i := len(recent) - 1; i >= 0; i-- {
		parts = append(parts, recent[i])
	}
	parts = append(parts, message)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ChunkManual splits manual text into sections. A line mentioning 1단계, 2단계
// or 3단계, or one mentioning 자살 together with 징후, 위험 or 개입, opens a
// new section. Separator and page lines are dropped and short chunks are
// merged into their predecessor.
func ChunkManual(text string) []Chunk {
	var (
		chunks  []Chunk
		section string
		content []string
	)
	flush := func() {
		if len(content) == 0 {
			return
		}
		name := section
		if name == "" {
			name = defaultSection
		}
		chunks = append(chunks, Chunk{ID: len(chunks), Section: name, Text: strings.Join(content, "\n")})
		content = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case isSectionHeader(line):
			flush()
			section = line
			content = append(content, line)
		case line == "", strings.HasPrefix(line, "==="), strings.HasPrefix(line, "Page"):
		default:
			content = append(content, line)
		}
	}
	flush()

	merged := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if n := len(merged); n > 0 && utf8.RuneCountInString(c.Text) < minChunkRunes {
			merged[n-1].Text += "\n\n" + c.Text
			merged[n-1].Section = c.Section
			continue
		}
		c.ID = len(merged)
		merged = append(merged, c)
	}
	return merged
}

func isSectionHeader(line string) bool {
	if strings.Contains(line, "1단계") || strings.Contains(line, "2단계") || strings.Contains(line, "3단계") {
		return true
	}
	return strings.Contains(line, "자살") &&
		(strings.Contains(line, "징후") || strings.Contains(line, "위험") || strings.Contains(line, "개입"))
}

// tokenize lower-cases text and splits it on anything that is not a letter
// or digit. Single-rune tokens are dropped.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

// overlap scores how many query tokens occur in the chunk. A full token hit
// counts 1, a hit on its two-rune stem counts 0.5.
func overlap(query, chunk []string) float64 {
	if len(chunk) == 0 {
		return 0
	}
	var score float64
	seen := make(map[string]struct{}, len(query))
	for _, q := range query {
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		switch {
		case containsToken(chunk, q):
			score++
		case utf8.RuneCountInString(q) > 2 && containsToken(chunk, string([]rune(q)[:2])):
			score += 0.5
		}
	}
	return score
}

func containsToken(chunk []string, q string) bool {
	for _, t := range chunk {
		if strings.Contains(t, q) {
			return true
		}
	}
	return false
}
