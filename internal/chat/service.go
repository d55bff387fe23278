// Package chat owns chat sessions and the turn pipeline: assemble context,
// generate a reply under a deadline, persist the exchange atomically.
package chat

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"secondbrain/internal/models"
)

// ErrEmptyMessage rejects a turn whose text is blank, before anything is
// written.
var ErrEmptyMessage = errors.New("message text is empty")

// SessionStore is the persistence the service needs for session lifecycle
// and the append-only transcript.
type SessionStore interface {
	CreateSession(ctx context.Context, ownerID string) (*models.ChatSession, error)
	GetSession(ctx context.Context, id int64, ownerID string) (*models.ChatSession, error)
	ListSessionsByOwner(ctx context.Context, ownerID string) ([]models.ChatSession, error)
	GetMessages(ctx context.Context, sessionID int64, ownerID string) ([]models.Message, error)
	AppendTurn(ctx context.Context, sessionID int64, userText, assistantText string) (*models.Message, *models.Message, error)
}

// Generator produces a single reply for an assembled prompt, bounded by the
// gateway's deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	store     SessionStore
	generator Generator
	assembler *Assembler
	logger    *zap.Logger
}

func NewService(store SessionStore, generator Generator, assembler *Assembler, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		generator: generator,
		assembler: assembler,
		logger:    logger,
	}
}

func (s *Service) CreateSession(ctx context.Context, ownerID string) (*models.ChatSession, error) {
	return s.store.CreateSession(ctx, ownerID)
}

func (s *Service) ListSessions(ctx context.Context, ownerID string) ([]models.ChatSession, error) {
	return s.store.ListSessionsByOwner(ctx, ownerID)
}

func (s *Service) GetMessages(ctx context.Context, sessionID int64, ownerID string) ([]models.Message, error) {
	return s.store.GetMessages(ctx, sessionID, ownerID)
}

// Turn is one completed exchange.
type Turn struct {
	UserMessage      *models.Message `json:"user_message"`
	AssistantMessage *models.Message `json:"assistant_message"`
}

// StartTurn runs one chat turn. The generation call happens strictly before
// any transcript write, so a timeout or provider failure leaves the session
// untouched and no lock is ever held across the network call. On success
// both messages land in one atomic append.
func (s *Service) StartTurn(ctx context.Context, ownerID string, sessionID int64, text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.store.GetSession(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}

	prompt, err := s.assembler.BuildPrompt(ctx, session, text)
	if err != nil {
		return nil, err
	}

	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generation failed, transcript left untouched",
			zap.Int64("session_id", sessionID),
			zap.Error(err))
		return nil, err
	}

	userMsg, assistantMsg, err := s.store.AppendTurn(ctx, sessionID, text, reply)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("chat turn completed",
		zap.Int64("session_id", sessionID),
		zap.Int64("user_message_id", userMsg.ID),
		zap.Int64("assistant_message_id", assistantMsg.ID))

	return &Turn{UserMessage: userMsg, AssistantMessage: assistantMsg}, nil
}
