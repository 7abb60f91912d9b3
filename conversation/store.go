// Package conversation keeps the bounded per-session message history.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/storage"
)

// DefaultHistoryPairs is how many user/assistant exchanges History reads back.
const DefaultHistoryPairs = 5

// Store reads and appends conversation messages.
type Store struct {
	repo         storage.ConversationRepository
	historyPairs int
	logger       *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryPairs sets how many exchanges History returns.
func WithHistoryPairs(n int) Option {
	return func(s *Store) {
		s.historyPairs = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore creates a Store over a repository.
func NewStore(repo storage.ConversationRepository, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, errors.New("conversation repository is required")
	}
	s := &Store{
		repo:         repo,
		historyPairs: DefaultHistoryPairs,
		logger:       slog.Default().With("component", "conversation-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.historyPairs < 0 {
		return nil, fmt.Errorf("history pairs must not be negative: %d", s.historyPairs)
	}
	return s, nil
}

// History returns up to 2×historyPairs of the newest messages of a session in
// chronological order. An unknown session has no history.
func (s *Store) History(ctx context.Context, sessionID string) ([]*core.ConversationMessage, error) {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.RecentMessages(ctx, sessionID, 2*s.historyPairs)
	if err != nil {
		return nil, fmt.Errorf("failed to read history for session %s: %w", sessionID, err)
	}
	slices.Reverse(msgs)
	return msgs, nil
}

// Save appends one message and returns the timestamp it was stored under.
func (s *Store) Save(ctx context.Context, sessionID string, role core.Role, content string, documentIDs []string) (int64, error) {
	stored, err := s.repo.AppendMessage(ctx, &core.ConversationMessage{
		SessionID:   sessionID,
		Role:        role,
		Content:     content,
		DocumentIDs: documentIDs,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save %s message: %w", role, err)
	}
	s.logger.Debug("saved message", "session", sessionID, "role", role, "timestamp", stored.Timestamp)
	return stored.Timestamp, nil
}

// Feedback records a rating or free text on a stored message.
func (s *Store) Feedback(ctx context.Context, sessionID string, timestamp int64, feedback core.Feedback) error {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return err
	}
	if _, err := s.repo.UpdateFeedback(ctx, sessionID, timestamp, feedback); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	s.logger.Info("recorded feedback", "session", sessionID, "timestamp", timestamp, "rating", feedback.Rating)
	return nil
}
