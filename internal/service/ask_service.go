// Package service orchestrates retrieval, generation, and conversation
// persistence behind the HTTP handlers.
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/puran2003gupta/ragassist/internal/config"
	"github.com/puran2003gupta/ragassist/internal/domain"
	"github.com/puran2003gupta/ragassist/internal/llm"
	"github.com/puran2003gupta/ragassist/internal/repository"
)

// truncationMarker flags history messages that were cut to the length cap.
const truncationMarker = "...(truncated)"

// Retriever finds stored chunks relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}

// AskService answers questions: it retrieves relevant chunks for the raw
// query, generates an answer from the history-augmented query, and
// optionally persists the exchange.
type AskService struct {
	cfg       *config.Config
	retriever Retriever
	generator llm.Generator
	convRepo  *repository.ConversationRepository
	logger    *zap.Logger
}

// NewAskService creates a new ask service
func NewAskService(
	cfg *config.Config,
	retriever Retriever,
	generator llm.Generator,
	convRepo *repository.ConversationRepository,
	logger *zap.Logger,
) *AskService {
	return &AskService{
		cfg:       cfg,
		retriever: retriever,
		generator: generator,
		convRepo:  convRepo,
		logger:    logger,
	}
}

// Ask handles one question. Retrieval failures degrade to answering without
// context; generation failures fail the request.
func (s *AskService) Ask(ctx context.Context, req *domain.AskRequest) (*domain.AskResponse, error) {
	history := truncateHistory(req.History, s.cfg.Chat.MaxHistoryMessages, s.cfg.Chat.MaxHistoryChars)
	augmented := augmentQuery(req.Query, renderTranscript(history))

	// Retrieval uses the raw query so conversation framing does not skew
	// similarity search.
	chunks, err := s.retriever.Retrieve(ctx, req.Query, s.cfg.Chat.RetrieveK)
	if err != nil {
		s.logger.Warn("retrieval failed, answering without context", zap.Error(err))
		chunks = nil
	}

	result, err := s.generator.Generate(ctx, augmented, chunks)
	if err != nil {
		return nil, err
	}
	result.Sources = normalizeSources(result.Sources, chunks)

	if req.ConversationID != "" {
		now := time.Now().UTC().Format(time.RFC3339)
		err := s.convRepo.AppendExchange(req.ConversationID,
			domain.Message{Role: domain.RoleUser, Content: req.Query, Timestamp: now},
			domain.Message{Role: domain.RoleAssistant, Content: result.Answer, Timestamp: now},
		)
		if err != nil {
			s.logger.Warn("failed to persist exchange",
				zap.String("conversation_id", req.ConversationID), zap.Error(err))
		}
	}

	return &domain.AskResponse{Answer: result}, nil
}

// SaveChat stores a client-supplied history as a new conversation.
func (s *AskService) SaveChat(req *domain.SaveChatRequest) (*domain.Conversation, error) {
	return s.convRepo.Save(req.Name, req.History)
}

// LoadChat returns a conversation with its history.
func (s *AskService) LoadChat(id string) (*domain.Conversation, error) {
	return s.convRepo.Get(id)
}

// ListChats returns metadata for all stored conversations.
func (s *AskService) ListChats() ([]domain.ConversationInfo, error) {
	return s.convRepo.List()
}

// DeleteChat removes a conversation.
func (s *AskService) DeleteChat(id string) error {
	return s.convRepo.Delete(id)
}

// truncateHistory keeps the last maxMessages messages and caps each message
// at maxChars characters, marker included. Idempotent: truncating an
// already-truncated history returns an identical result. The input slice is
// never mutated.
func truncateHistory(history []domain.Message, maxMessages, maxChars int) []domain.Message {
	if maxMessages > 0 && len(history) > maxMessages {
		history = history[len(history)-maxMessages:]
	}

	out := make([]domain.Message, len(history))
	for i, msg := range history {
		if maxChars > len(truncationMarker) && len(msg.Content) > maxChars {
			msg.Content = msg.Content[:maxChars-len(truncationMarker)] + truncationMarker
		}
		out[i] = msg
	}
	return out
}

// renderTranscript formats history as alternating "User:"/"Assistant:"
// lines. Any role other than "user" renders as the assistant.
func renderTranscript(history []domain.Message) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		prefix := "Assistant: "
		if msg.Role == domain.RoleUser {
			prefix = "User: "
		}
		lines = append(lines, prefix+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// augmentQuery prefixes the query with the rendered transcript. An empty
// transcript leaves the query untouched, with no history header.
func augmentQuery(query, transcript string) string {
	if transcript == "" {
		return query
	}
	return "Conversation history:\n" + transcript + "\n\nCurrent question:\n" + query
}

// normalizeSources fills in provenance when the generator returned none,
// derived positionally from the retrieved chunks: source label, then score,
// then a positional placeholder. Never fails on missing metadata.
func normalizeSources(sources []string, chunks []domain.RetrievedChunk) []string {
	if len(sources) > 0 {
		return sources
	}

	out := make([]string, 0, len(chunks))
	for i, c := range chunks {
		switch {
		case c.Metadata.Source != "":
			out = append(out, c.Metadata.Source)
		case c.Score != 0:
			out = append(out, strconv.FormatFloat(c.Score, 'f', 4, 64))
		default:
			out = append(out, fmt.Sprintf("chunk_%d", i+1))
		}
	}
	return out
}
