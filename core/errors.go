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

import "errors"

// Domain validation errors
var (
	// ErrInvalidMessage indicates a ConversationMessage failed validation.
	ErrInvalidMessage = errors.New("invalid conversation message")

	// ErrInvalidCandidate indicates a Candidate failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptySessionID indicates a session id is missing.
	ErrEmptySessionID = errors.New("session id cannot be empty")

	// ErrSessionIDTooLong indicates a session id over MaxSessionIDLength bytes.
	ErrSessionIDTooLong = errors.New("session id too long")

	// ErrEmptyQuery indicates the user query is empty or whitespace.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidRole indicates a Role other than user or assistant.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidTimestamp indicates a non-positive message timestamp.
	ErrInvalidTimestamp = errors.New("timestamp must be positive")

	// ErrInvalidDocType indicates an unknown DocType value.
	ErrInvalidDocType = errors.New("invalid document type")

	// ErrEmptyPassage indicates a candidate with no passage text.
	ErrEmptyPassage = errors.New("passage cannot be empty")

	// ErrEmptyFeedback indicates feedback with neither rating nor text.
	ErrEmptyFeedback = errors.New("feedback cannot be empty")
)
