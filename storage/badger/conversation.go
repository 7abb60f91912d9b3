package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/storage"
)

// ConversationRepository implements storage.ConversationRepository for BadgerDB.
type ConversationRepository struct {
	backend *Backend
	now     func() time.Time
	logger  *slog.Logger
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (storage.ConversationRepository, error) {
	return newConversationRepository(backend, time.Now)
}

func newConversationRepository(backend *Backend, now func() time.Time) (*ConversationRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &ConversationRepository{
		backend: backend,
		now:     now,
		logger:  slog.Default().With("component", "conversation-repository"),
	}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *ConversationRepository) Close() error {
	return nil
}

// AppendMessage stores a message under (session, timestamp).
func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *core.ConversationMessage) (*core.ConversationMessage, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: message is nil", core.ErrInvalidMessage)
	}

	stored := *msg
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		ts, err := r.nextTimestamp(tx, msg.SessionID, msg.Timestamp)
		if err != nil {
			return err
		}
		stored.Timestamp = ts
		if err := core.ValidateMessage(&stored); err != nil {
			return err
		}
		return tx.Set(makeMessageKey(stored.SessionID, stored.Timestamp), storage.MarshalMessage(&stored))
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// nextTimestamp picks the message timestamp: the requested one, or the clock when
// zero, bumped past the newest stored message of the session.
func (r *ConversationRepository) nextTimestamp(tx *badger.Txn, sessionID string, requested int64) (int64, error) {
	ts := requested
	if ts == 0 {
		ts = r.now().UnixMilli()
	}

	last, found, err := r.lastTimestamp(tx, sessionID)
	if err != nil {
		return 0, err
	}
	if found && ts <= last {
		ts = last + 1
	}
	return ts, nil
}

func (r *ConversationRepository) lastTimestamp(tx *badger.Txn, sessionID string) (int64, bool, error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	prefix := makeSessionPrefix(sessionID)
	iter.Seek(makeSessionEndKey(sessionID))
	if !iter.ValidForPrefix(prefix) {
		return 0, false, nil
	}
	return messageTimestamp(iter.Item().Key()), true, nil
}

// RecentMessages returns up to limit messages of a session, newest first.
func (r *ConversationRepository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]*core.ConversationMessage, error) {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	var results []*core.ConversationMessage
	err := r.backend.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := makeSessionPrefix(sessionID)
		for iter.Seek(makeSessionEndKey(sessionID)); iter.ValidForPrefix(prefix) && len(results) < limit; iter.Next() {
			msg, err := readMessage(iter.Item())
			if err != nil {
				return err
			}
			results = append(results, msg)
		}
		return nil
	})

	return results, err
}

// GetMessage retrieves a single message.
func (r *ConversationRepository) GetMessage(ctx context.Context, sessionID string, timestamp int64) (*core.ConversationMessage, error) {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	var result *core.ConversationMessage
	err := r.backend.view(func(tx *badger.Txn) error {
		var err error
		result, err = r.readMessageByKey(tx, makeMessageKey(sessionID, timestamp))
		return err
	})
	return result, err
}

// UpdateFeedback records a thumb rating or free text on a stored message.
func (r *ConversationRepository) UpdateFeedback(ctx context.Context, sessionID string, timestamp int64, feedback core.Feedback) (*core.ConversationMessage, error) {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if err := core.ValidateFeedback(feedback); err != nil {
		return nil, err
	}

	var result *core.ConversationMessage
	err := r.backend.update(ctx, func(tx *badger.Txn) error {
		key := makeMessageKey(sessionID, timestamp)
		msg, err := r.readMessageByKey(tx, key)
		if err != nil {
			return err
		}

		if feedback.IsThumb() {
			msg.ThumbRating = feedback.Rating
		} else {
			msg.FeedbackText = feedback.Text
		}

		result = msg
		return tx.Set(key, storage.MarshalMessage(msg))
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("feedback recorded", "session", sessionID, "timestamp", timestamp, "thumb", feedback.IsThumb())
	return result, nil
}

// readMessageByKey reads a message, returning storage.ErrNotFound when absent.
func (r *ConversationRepository) readMessageByKey(tx *badger.Txn, key []byte) (*core.ConversationMessage, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return readMessage(item)
}

func readMessage(item *badger.Item) (*core.ConversationMessage, error) {
	var msg *core.ConversationMessage
	err := item.Value(func(val []byte) error {
		var err error
		msg, err = storage.UnmarshalMessage(val)
		return err
	})
	return msg, err
}
