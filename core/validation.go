// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateMessage validates a ConversationMessage according to domain rules.
//
// Validation rules:
//   - SessionID must be present and at most MaxSessionIDLength bytes
//   - Role must be user or assistant
//   - Content must not be empty
//   - Timestamp must be positive
//
// NOT validated:
//   - DocumentIDs (user turns carry none)
//   - ThumbRating and FeedbackText (set later by feedback)
func ValidateMessage(msg *ConversationMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if err := ValidateSessionID(msg.SessionID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if msg.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if msg.Timestamp <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateCandidate validates a Candidate returned by an index.
func ValidateCandidate(c *Candidate) error {
	if c == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if c.Passage == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyPassage)
	}

	if err := ValidateDocType(c.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %q", ErrInvalidRole, role)
	}
	return nil
}

// ValidateDocType validates that a DocType has a valid value.
func ValidateDocType(t DocType) error {
	switch t {
	case DocTypeText, DocTypePDF, DocTypeVideo, DocTypePodcast:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidDocType, t)
}

// MaxSessionIDLength bounds session ids in bytes. Storage keys embed the id
// behind a two-byte length, and minted ids are 36-byte UUIDs.
const MaxSessionIDLength = 256

// ValidateSessionID checks that a session id is present and within MaxSessionIDLength.
func ValidateSessionID(sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if len(sessionID) > MaxSessionIDLength {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrSessionIDTooLong, len(sessionID), MaxSessionIDLength)
	}
	return nil
}

// ValidateQuery checks that a user query carries some non-whitespace text.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// ValidateFeedback checks that feedback carries a rating or text.
func ValidateFeedback(fb Feedback) error {
	if fb.Rating == "" && fb.Text == "" {
		return ErrEmptyFeedback
	}
	return nil
}
