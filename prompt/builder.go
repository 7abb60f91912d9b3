// Package prompt assembles the single text prompt sent to the generator.
package prompt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/ragchat/citation"
	"github.com/poiesic/ragchat/core"
	"github.com/tmc/langchaingo/prompts"
)

const (
	// DefaultHistoryTurns is how many recent messages are shown to the model.
	DefaultHistoryTurns = 4
	// DefaultMaxHistoryCharacters bounds the content of the history block.
	DefaultMaxHistoryCharacters = 100000
)

// Template slots filled by Build.
const (
	SlotDocuments = "documents"
	SlotCitations = "citations"
)

// DefaultTemplate is used when no template is configured.
const DefaultTemplate = `

You are a research assistant answering questions about a library of documents,
meeting recordings and podcasts. Answer using only the documents below.

Each document has a token, a document_name and a passage. When a sentence relies on a
document, cite it by writing its token in angle brackets right after the sentence,
for example <0a1b2c3d>. Only use tokens that appear in the citations map. Never write
links yourself and never invent tokens. If the documents do not answer the question,
say so plainly.

Documents:
{documents}

Citations:
{citations}
`

var ErrMissingSlot = errors.New("prompt template must contain {documents} and {citations}")

// Builder renders history, query and selected sources into a prompt.
type Builder struct {
	template        prompts.PromptTemplate
	historyTurns    int
	maxHistoryChars int
	logger          *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithHistoryTurns sets how many of the most recent messages are included.
func WithHistoryTurns(n int) Option {
	return func(b *Builder) {
		b.historyTurns = n
	}
}

// WithMaxHistoryCharacters bounds the total message content in the history block.
// Zero disables the bound.
func WithMaxHistoryCharacters(n int) Option {
	return func(b *Builder) {
		b.maxHistoryChars = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// NewBuilder creates a Builder for an f-string template with {documents} and
// {citations} slots. An empty template selects DefaultTemplate.
func NewBuilder(template string, opts ...Option) (*Builder, error) {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	if !strings.Contains(template, "{"+SlotDocuments+"}") || !strings.Contains(template, "{"+SlotCitations+"}") {
		return nil, ErrMissingSlot
	}

	b := &Builder{
		template: prompts.PromptTemplate{
			Template:       template,
			InputVariables: []string{SlotDocuments, SlotCitations},
			TemplateFormat: prompts.TemplateFormatFString,
		},
		historyTurns:    DefaultHistoryTurns,
		maxHistoryChars: DefaultMaxHistoryCharacters,
		logger:          slog.Default().With("component", "prompt-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.historyTurns < 0 || b.maxHistoryChars < 0 {
		return nil, fmt.Errorf("history bounds must not be negative: turns=%d chars=%d", b.historyTurns, b.maxHistoryChars)
	}
	return b, nil
}

// Build renders the prompt. history must be in chronological order.
func (b *Builder) Build(history []*core.ConversationMessage, query string, sources *citation.Sources) (string, error) {
	documents, err := encodeJSON(sources.ModelDocuments())
	if err != nil {
		return "", fmt.Errorf("failed to encode documents: %w", err)
	}
	citations, err := encodeJSON(sources.CitationTargets())
	if err != nil {
		return "", fmt.Errorf("failed to encode citations: %w", err)
	}

	filled, err := b.template.Format(map[string]any{
		SlotDocuments: documents,
		SlotCitations: citations,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fill prompt template: %w", err)
	}

	var sb strings.Builder
	if shown := b.window(history); len(shown) > 0 {
		sb.WriteString("<conversation_history>\n")
		for _, msg := range shown {
			sb.WriteString(msg.Role.Label())
			sb.WriteString(": ")
			sb.WriteString(msg.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("</conversation_history>\n\n")
	}
	sb.WriteString("User: ")
	sb.WriteString(query)
	sb.WriteString(filled)

	b.logger.Debug("built prompt",
		"history", len(history),
		"documents", sources.Len(),
		"length", sb.Len())
	return sb.String(), nil
}

// window keeps the most recent historyTurns messages, then drops the oldest
// until their content fits maxHistoryChars.
func (b *Builder) window(history []*core.ConversationMessage) []*core.ConversationMessage {
	shown := history
	if len(shown) > b.historyTurns {
		shown = shown[len(shown)-b.historyTurns:]
	}
	if b.maxHistoryChars == 0 {
		return shown
	}

	total := 0
	for _, msg := range shown {
		total += len(msg.Content)
	}
	for len(shown) > 0 && total > b.maxHistoryChars {
		total -= len(shown[0].Content)
		shown = shown[1:]
	}
	return shown
}

// encodeJSON renders v on one line with <, > and & left as written, since
// the model reads passages verbatim.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
