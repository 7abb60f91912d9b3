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
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocType identifies the kind of source a passage was cut from.
type DocType string

const (
	DocTypeText    DocType = "text"
	DocTypePDF     DocType = "pdf"
	DocTypeVideo   DocType = "video"
	DocTypePodcast DocType = "podcast"
)

// IsTimed reports whether passages of this type carry a playback offset.
func (t DocType) IsTimed() bool {
	return t == DocTypeVideo || t == DocTypePodcast
}

// Metadata holds the index fields stored alongside a passage.
type Metadata struct {
	DocID            string
	VideoID          string
	PodcastID        string
	SourceURL        string
	MemberContent    bool    // Access flag; true means subscriber-only
	StartTime        float64 // Seconds into the media (video/podcast only)
	PageNumber       int     // 1-based page (pdf only)
	ParentFolderName string  // Meeting grouping, may be empty
	ParentFolderURL  string
}

// Candidate is one retrieved passage. Candidates live for a single request.
type Candidate struct {
	ID       string
	Score    float64 // Retriever-specific scale
	Passage  string
	Type     DocType
	Metadata Metadata
}

// Key returns the identity used to merge the same passage across retrieval signals.
// The index identifier is preferred; without one the document id and passage are hashed.
func (c *Candidate) Key() string {
	if c.ID != "" {
		return c.ID
	}
	id := IDFromContent(c.Metadata.DocID + "\x00" + c.Passage)
	return strconv.FormatUint(uint64(id), 16)
}

// RankedCandidate is a Candidate carrying its fused score.
type RankedCandidate struct {
	Candidate
	LexicalScore  float64 // Lexical contribution after normalization or rank transform
	SemanticScore float64 // Semantic contribution after normalization or rank transform
	FusedScore    float64
}

// ReferenceToken is an opaque, request-scoped stand-in for a selected document.
type ReferenceToken string

// TokenLength is the number of hex characters in a ReferenceToken.
const TokenLength = 8

// Valid reports whether the token is exactly 8 lowercase hex characters.
func (t ReferenceToken) Valid() bool {
	if len(t) != TokenLength {
		return false
	}
	for i := 0; i < len(t); i++ {
		c := t[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// SourceEntry binds one token to everything known about its document.
// The passage and the citation data travel together so nothing relies on
// two collections being iterated in the same order.
type SourceEntry struct {
	Token            ReferenceToken
	DocumentID       string // Candidate.Key() of the source passage
	DocumentName     string
	Passage          string
	Title            string
	SourceURL        string
	DocType          DocType
	StartTime        *float64 // Set for video and podcast only
	MemberContent    bool
	ParentFolderName string
	ParentFolderURL  string
}

// HasMeeting reports whether the entry belongs to a meeting grouping.
func (e *SourceEntry) HasMeeting() bool {
	return e.ParentFolderName != "" && e.ParentFolderURL != ""
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the role as it is written into prompts ("User", "Assistant").
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// ConversationMessage is one stored turn of a session.
type ConversationMessage struct {
	SessionID    string
	Timestamp    int64 // Milliseconds since epoch; the per-session sort key
	Role         Role
	Content      string
	DocumentIDs  []string // Documents cited by an assistant turn
	ThumbRating  string   // Set by feedback
	FeedbackText string   // Set by feedback
}

// Feedback ratings that are stored as a thumb rating rather than free text.
const (
	RatingThumbsUp   = "thumbs_up"
	RatingThumbsDown = "thumbs_down"
)

// Feedback is a user reaction to an assistant message.
type Feedback struct {
	Rating string
	Text   string
}

// IsThumb reports whether the feedback is a thumb rating.
func (f Feedback) IsThumb() bool {
	return f.Rating == RatingThumbsUp || f.Rating == RatingThumbsDown
}
