package retrieval

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"maumcare/internal/models"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

const sampleManual = `=== 학생 자살 위기 대응 매뉴얼 ===
Page 1
자살 위험 징후 알아차리기
학생이 죽고 싶다는 말을 반복하거나 소지품을 정리하고 주변 사람에게 작별 인사를 하는 경우 위기 신호로 보고 즉시 관심을 기울인다. 평소와 다른 행동 변화도 함께 살핀다.
1단계 관계 형성
학생의 이야기를 끝까지 듣고 감정을 인정해 준다. 비난하거나 훈계하지 않고 안전한 분위기를 만든다. 학생이 혼자가 아니라는 것을 분명히 알려 주고 신뢰를 쌓는다.
2단계 위험성 평가
짧은 메모
3단계 연계 및 보호
위기 수준이 높으면 보호자와 전문기관에 즉시 연계한다. 자살예방상담전화 109, 청소년상담전화 1388을 안내하고 학생이 안전해질 때까지 혼자 두지 않는다. 학교 위기관리위원회에 보고한다.
`

func writeManual(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manual.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manual: %v", err)
	}
	return path
}

func TestChunkManualSections(t *testing.T) {
	chunks := ChunkManual(sampleManual)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Section != "자살 위험 징후 알아차리기" {
		t.Fatalf("unexpected first section %q", chunks[0].Section)
	}
	for _, c := range chunks {
		if strings.Contains(c.Text, "===") || strings.Contains(c.Text, "Page 1") {
			t.Fatalf("separator lines should be dropped: %q", c.Text)
		}
	}
	// the short 2단계 chunk is folded into 1단계
	if !strings.Contains(chunks[1].Text, "짧은 메모") || chunks[1].Section != "2단계 위험성 평가" {
		t.Fatalf("short chunk not merged: %+v", chunks[1])
	}
	if chunks[2].ID != 2 {
		t.Fatalf("expected ids renumbered after merge, got %d", chunks[2].ID)
	}
}

func TestChunkManualWithoutHeaders(t *testing.T) {
	chunks := ChunkManual("그냥 메모\n\n두 번째 줄")
	if len(chunks) != 1 || chunks[0].Section != defaultSection {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
}

func TestManualIndexLoadAndSearch(t *testing.T) {
	ctx := context.Background()
	idx, err := NewManualIndex(ctx, writeManual(t, sampleManual), "", 2)
	if err != nil {
		t.Fatalf("NewManualIndex: %v", err)
	}
	if info := idx.Info(); info.Exists || info.ChunkCount != 0 {
		t.Fatalf("index should be empty before Load: %+v", info)
	}
	if err := idx.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	info := idx.Info()
	if !info.Exists || info.ChunkCount != 3 || info.Collection != DefaultCollection {
		t.Fatalf("unexpected info %+v", info)
	}

	history := []models.Turn{
		models.UserTurn("요즘 너무 힘들어"),
		models.AssistantTurn("무슨 일이 있었어?"),
	}
	passages, err := idx.Search(ctx, "상담전화 번호 알려줘", history)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(passages) == 0 || passages[0].Source != "3단계 연계 및 보호" {
		t.Fatalf("expected the referral section first, got %+v", passages)
	}
	if len(passages) > 2 {
		t.Fatalf("top-k not applied: %d", len(passages))
	}
}

func TestManualIndexMissingFile(t *testing.T) {
	ctx := context.Background()
	idx, err := NewManualIndex(ctx, filepath.Join(t.TempDir(), "none.txt"), "c", 0)
	if err != nil {
		t.Fatalf("NewManualIndex: %v", err)
	}
	if err := idx.Load(ctx); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	passages, err := idx.Search(ctx, "자살", nil)
	if err != nil || len(passages) != 0 {
		t.Fatalf("empty index should return nothing, got %v %v", passages, err)
	}
}

func TestQueryTextUsesRecentUserTurns(t *testing.T) {
	history := []models.Turn{
		models.UserTurn("하나"),
		models.UserTurn("둘"),
		models.AssistantTurn("응"),
		models.UserTurn("셋"),
		models.UserTurn("넷"),
	}
	if got := QueryText("다섯", history); got != "둘 셋 넷 다섯" {
		t.Fatalf("unexpected query %q", got)
	}
}

type fakeTool struct {
	out   string
	err   error
	calls int
	args  string
}

func (f *fakeTool) Info(context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: "fake"}, nil
}

func (f *fakeTool) InvokableRun(_ context.Context, args string, _ ...tool.Option) (string, error) {
	f.calls++
	f.args = args
	return f.out, f.err
}

func TestSearchRetrieverFallsBack(t *testing.T) {
	google := &fakeTool{err: errors.New("quota")}
	duck := &fakeTool{out: `{"results":[{"title":"청소년상담 1388","url":"https://example.org/1388","summary":"24시간 상담"}]}`}
	s := &SearchRetriever{google: google, duck: duck}

	passages, err := s.Search(context.Background(), "상담 받을 곳", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if google.calls != 1 || duck.calls != 1 {
		t.Fatalf("expected both providers to be tried, got %d/%d", google.calls, duck.calls)
	}
	if !strings.Contains(duck.args, "상담 받을 곳") {
		t.Fatalf("query not forwarded: %s", duck.args)
	}
	if len(passages) != 1 || passages[0].Source != "https://example.org/1388" {
		t.Fatalf("unexpected passages %+v", passages)
	}
}

func TestSearchRetrieverNoProvider(t *testing.T) {
	s := &SearchRetriever{duck: &fakeTool{err: errors.New("down")}}
	if _, err := s.Search(context.Background(), "도움", nil); !errors.Is(err, ErrNoSearchProvider) {
		t.Fatalf("expected ErrNoSearchProvider, got %v", err)
	}
}

func TestParseResultsRawText(t *testing.T) {
	passages := parseResults("google", "plain answer")
	if len(passages) != 1 || passages[0].Text != "plain answer" || passages[0].Source != "google" {
		t.Fatalf("unexpected passages %+v", passages)
	}
}
