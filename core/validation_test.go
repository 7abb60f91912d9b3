package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     *ConversationMessage
		wantErr error
	}{
		{
			name: "valid user message",
			msg: &ConversationMessage{
				SessionID: "s1",
				Timestamp: 1700000000000,
				Role:      RoleUser,
				Content:   "What happened at the meeting?",
			},
			wantErr: nil,
		},
		{
			name: "valid assistant message with documents",
			msg: &ConversationMessage{
				SessionID:   "s1",
				Timestamp:   1700000000001,
				Role:        RoleAssistant,
				Content:     "The board voted.",
				DocumentIDs: []string{"d1"},
			},
			wantErr: nil,
		},
		{
			name:    "nil message",
			msg:     nil,
			wantErr: ErrInvalidMessage,
		},
		{
			name: "empty session",
			msg: &ConversationMessage{
				Timestamp: 1,
				Role:      RoleUser,
				Content:   "hi",
			},
			wantErr: ErrEmptySessionID,
		},
		{
			name: "oversize session",
			msg: &ConversationMessage{
				SessionID: strings.Repeat("s", 70000),
				Timestamp: 1,
				Role:      RoleUser,
				Content:   "hi",
			},
			wantErr: ErrSessionIDTooLong,
		},
		{
			name: "invalid role",
			msg: &ConversationMessage{
				SessionID: "s1",
				Timestamp: 1,
				Role:      "system",
				Content:   "hi",
			},
			wantErr: ErrInvalidRole,
		},
		{
			name: "empty content",
			msg: &ConversationMessage{
				SessionID: "s1",
				Timestamp: 1,
				Role:      RoleUser,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "zero timestamp",
			msg: &ConversationMessage{
				SessionID: "s1",
				Role:      RoleUser,
				Content:   "hi",
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.msg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMessage() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessage() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("ValidateMessage() error should wrap ErrInvalidMessage, got %v", err)
			}
		})
	}
}

func TestValidateCandidate(t *testing.T) {
	tests := []struct {
		name      string
		candidate *Candidate
		wantErr   error
	}{
		{name: "valid", candidate: &Candidate{Passage: "p", Type: DocTypePDF}},
		{name: "nil", candidate: nil, wantErr: ErrInvalidCandidate},
		{name: "empty passage", candidate: &Candidate{Type: DocTypePDF}, wantErr: ErrEmptyPassage},
		{name: "bad type", candidate: &Candidate{Passage: "p", Type: "slides"}, wantErr: ErrInvalidDocType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCandidate(tt.candidate)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCandidate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCandidate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery("budget vote"); err != nil {
		t.Errorf("ValidateQuery() unexpected error = %v", err)
	}
	if err := ValidateQuery("   \t"); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("ValidateQuery() error = %v, want %v", err, ErrEmptyQuery)
	}
}

func TestValidateFeedback(t *testing.T) {
	if err := ValidateFeedback(Feedback{Rating: RatingThumbsUp}); err != nil {
		t.Errorf("ValidateFeedback() unexpected error = %v", err)
	}
	if err := ValidateFeedback(Feedback{Text: "helpful"}); err != nil {
		t.Errorf("ValidateFeedback() unexpected error = %v", err)
	}
	if err := ValidateFeedback(Feedback{}); !errors.Is(err, ErrEmptyFeedback) {
		t.Errorf("ValidateFeedback() error = %v, want %v", err, ErrEmptyFeedback)
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"uuid", "6f1c2d4e-9a0b-4c3d-8e7f-112233445566", nil},
		{"at limit", strings.Repeat("a", MaxSessionIDLength), nil},
		{"empty", "", ErrEmptySessionID},
		{"one over", strings.Repeat("a", MaxSessionIDLength+1), ErrSessionIDTooLong},
		{"past key length field", strings.Repeat("a", 1<<16), ErrSessionIDTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSessionID() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
