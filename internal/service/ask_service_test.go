package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/puran2003gupta/ragassist/internal/config"
	"github.com/puran2003gupta/ragassist/internal/domain"
	"github.com/puran2003gupta/ragassist/internal/repository"
)

type mockRetriever struct {
	chunks []domain.RetrievedChunk
	err    error
}

func (m *mockRetriever) Retrieve(context.Context, string, int) ([]domain.RetrievedChunk, error) {
	return m.chunks, m.err
}

type mockGenerator struct {
	result    domain.AnswerResult
	err       error
	gotQuery  string
	gotChunks []domain.RetrievedChunk
}

func (m *mockGenerator) Generate(_ context.Context, query string, chunks []domain.RetrievedChunk) (domain.AnswerResult, error) {
	m.gotQuery = query
	m.gotChunks = chunks
	return m.result, m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Chat: config.ChatConfig{
			MaxHistoryMessages: 8,
			MaxHistoryChars:    400,
			RetrieveK:          4,
		},
	}
}

func newAskService(t *testing.T, retriever Retriever, generator *mockGenerator) *AskService {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "chats.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := repository.NewConversationRepository(db)
	return NewAskService(testConfig(), retriever, generator, repo, zap.NewNop())
}

func TestAskEmptyHistoryUsesRawQuery(t *testing.T) {
	gen := &mockGenerator{result: domain.AnswerResult{Answer: "ok"}}
	svc := newAskService(t, &mockRetriever{}, gen)

	_, err := svc.Ask(context.Background(), &domain.AskRequest{Query: "What is X?"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if gen.gotQuery != "What is X?" {
		t.Errorf("empty history must leave query untouched, got %q", gen.gotQuery)
	}
}

func TestAskRendersLastEightMessages(t *testing.T) {
	var history []domain.Message
	for i := 1; i <= 10; i++ {
		role := domain.RoleUser
		if i%2 == 0 {
			role = domain.RoleAssistant
		}
		history = append(history, domain.Message{Role: role, Content: fmt.Sprintf("msg-%02d", i)})
	}

	gen := &mockGenerator{result: domain.AnswerResult{Answer: "ok"}}
	svc := newAskService(t, &mockRetriever{}, gen)

	_, err := svc.Ask(context.Background(), &domain.AskRequest{Query: "q", History: history})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if strings.Contains(gen.gotQuery, "msg-01") || strings.Contains(gen.gotQuery, "msg-02") {
		t.Errorf("oldest messages should be dropped:\n%s", gen.gotQuery)
	}
	if !strings.HasPrefix(gen.gotQuery, "Conversation history:\n") {
		t.Errorf("missing history header:\n%s", gen.gotQuery)
	}
	if !strings.HasSuffix(gen.gotQuery, "\n\nCurrent question:\nq") {
		t.Errorf("missing current question footer:\n%s", gen.gotQuery)
	}

	// Last 8 messages in original order, with roles rendered.
	last := gen.gotQuery
	for i := 3; i <= 10; i++ {
		want := fmt.Sprintf("msg-%02d", i)
		idx := strings.Index(last, want)
		if idx < 0 {
			t.Fatalf("message %s missing from transcript:\n%s", want, gen.gotQuery)
		}
		last = last[idx:]
	}
	if !strings.Contains(gen.gotQuery, "User: msg-03") || !strings.Contains(gen.gotQuery, "Assistant: msg-04") {
		t.Errorf("roles not rendered:\n%s", gen.gotQuery)
	}
}

func TestTruncateHistoryIdempotent(t *testing.T) {
	var history []domain.Message
	for i := 0; i < 12; i++ {
		history = append(history, domain.Message{
			Role:    domain.RoleUser,
			Content: strings.Repeat("x", 1000),
		})
	}

	once := truncateHistory(history, 8, 400)
	twice := truncateHistory(once, 8, 400)

	if len(once) != 8 {
		t.Fatalf("expected 8 messages, got %d", len(once))
	}
	for i, msg := range once {
		if len(msg.Content) != 400 {
			t.Errorf("message %d not capped at 400 chars: %d", i, len(msg.Content))
		}
		if !strings.HasSuffix(msg.Content, truncationMarker) {
			t.Errorf("message %d missing truncation marker", i)
		}
	}
	if !reflect.DeepEqual(once, twice) {
		t.Error("truncation is not idempotent")
	}
	if len(history[0].Content) != 1000 {
		t.Error("input history was mutated")
	}
}

func TestRenderTranscriptRoles(t *testing.T) {
	got := renderTranscript([]domain.Message{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: "system", Content: "note"},
	})
	want := "User: hi\nAssistant: note"
	if got != want {
		t.Errorf("renderTranscript = %q, want %q", got, want)
	}
}

func TestAskRetrievalFailureDegrades(t *testing.T) {
	gen := &mockGenerator{result: domain.AnswerResult{Answer: "ok"}}
	svc := newAskService(t, &mockRetriever{err: errors.New("store offline")}, gen)

	resp, err := svc.Ask(context.Background(), &domain.AskRequest{Query: "q"})
	if err != nil {
		t.Fatalf("retrieval failure must not fail the request: %v", err)
	}
	if len(gen.gotChunks) != 0 {
		t.Errorf("expected generation with zero chunks, got %d", len(gen.gotChunks))
	}
	if resp.Answer.Answer != "ok" {
		t.Errorf("unexpected answer %q", resp.Answer.Answer)
	}
}

func TestAskGenerationFailureFatal(t *testing.T) {
	gen := &mockGenerator{err: errors.New("model rejected request")}
	svc := newAskService(t, &mockRetriever{}, gen)

	if _, err := svc.Ask(context.Background(), &domain.AskRequest{Query: "q"}); err == nil {
		t.Error("generation failure must fail the request")
	}
}

func TestAskPersistsExchange(t *testing.T) {
	gen := &mockGenerator{result: domain.AnswerResult{Answer: "the answer"}}
	svc := newAskService(t, &mockRetriever{}, gen)

	_, err := svc.Ask(context.Background(), &domain.AskRequest{Query: "the question", ConversationID: "conv-abc-def"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	conv, err := svc.LoadChat("conv-abc-def")
	if err != nil {
		t.Fatalf("LoadChat failed: %v", err)
	}
	if len(conv.History) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(conv.History))
	}
	if conv.History[0].Role != domain.RoleUser || conv.History[0].Content != "the question" {
		t.Errorf("user message not persisted: %+v", conv.History[0])
	}
	if conv.History[1].Role != domain.RoleAssistant || conv.History[1].Content != "the answer" {
		t.Errorf("assistant message not persisted: %+v", conv.History[1])
	}
	if conv.History[0].Timestamp == "" {
		t.Error("persisted message missing timestamp")
	}
}

func TestNormalizeSources(t *testing.T) {
	chunk := func(source string, score float64) domain.RetrievedChunk {
		return domain.RetrievedChunk{
			Chunk: domain.Chunk{Content: "c", Metadata: domain.ChunkMetadata{Source: source}},
			Score: score,
		}
	}

	tests := []struct {
		name    string
		sources []string
		chunks  []domain.RetrievedChunk
		want    []string
	}{
		{
			"generator sources win",
			[]string{"a", "b"},
			[]domain.RetrievedChunk{chunk("x", 1)},
			[]string{"a", "b"},
		},
		{
			"derived from labels and fallbacks",
			nil,
			[]domain.RetrievedChunk{chunk("PDF: doc.pdf", 0.9), chunk("", 0.5), chunk("", 0)},
			[]string{"PDF: doc.pdf", "0.5000", "chunk_3"},
		},
		{
			"no chunks",
			nil,
			nil,
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeSources(tt.sources, tt.chunks)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeSources = %v, want %v", got, tt.want)
			}
		})
	}
}
