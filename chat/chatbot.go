package chat

import (
	"context"
	"log/slog"

	"github.com/poiesic/ragchat/ai"
	"github.com/poiesic/ragchat/citation"
	"github.com/poiesic/ragchat/conversation"
	"github.com/poiesic/ragchat/core"
	"github.com/poiesic/ragchat/prompt"
	"github.com/poiesic/ragchat/ranking"
	"github.com/poiesic/ragchat/retrieval"
)

// NoAnswerMessage replaces the answer when the model produced no text.
const NoAnswerMessage = "Sorry, I could not generate an answer to your question. Please try again."

// Response is the result of one Respond call.
type Response struct {
	Text      string
	SessionID string
	Timestamp int64 // Assistant turn timestamp; zero when nothing was stored
	Degraded  bool  // True when Text is NoAnswerMessage
}

// Components are the stages a Chatbot runs, in order.
type Components struct {
	Retriever *retrieval.Retriever
	Fuser     *ranking.Fuser
	Selector  *ranking.Selector
	Tokenizer *citation.Tokenizer
	Builder   *prompt.Builder
	Generator ai.Generator
	Resolver  *citation.Resolver
	Store     *conversation.Store
}

// Chatbot answers queries with cited sources and keeps session history.
type Chatbot struct {
	Components
	monitor Monitor
	logger  *slog.Logger
}

// Option configures a Chatbot.
type Option func(*Chatbot) error

// WithMonitor installs a Monitor that observes every Respond call.
func WithMonitor(m Monitor) Option {
	return func(c *Chatbot) error {
		if m == nil {
			m = &noopMonitor{}
		}
		c.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chatbot) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChatbot creates a Chatbot. Tokenizer and Resolver default to plain instances.
func NewChatbot(components Components, opts ...Option) (*Chatbot, error) {
	if components.Retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if components.Generator == nil {
		return nil, ErrGeneratorRequired
	}
	if components.Store == nil {
		return nil, ErrStoreRequired
	}
	if components.Fuser == nil || components.Selector == nil || components.Builder == nil {
		return nil, ErrPipelineRequired
	}

	c := &Chatbot{
		Components: components,
		monitor:    &noopMonitor{},
		logger:     slog.Default().With("component", "chatbot"),
	}
	if c.Tokenizer == nil {
		c.Tokenizer = citation.NewTokenizer()
	}
	if c.Resolver == nil {
		c.Resolver = citation.NewResolver(nil)
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Respond answers query within a session. Upstream failures are returned
// unchanged in kind; an empty generation yields a degraded Response and no error.
func (c *Chatbot) Respond(ctx context.Context, sessionID, query string) (*Response, error) {
	if err := core.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}

	c.monitor.Start(sessionID, query)

	hits, err := c.Retriever.Retrieve(ctx, query)
	if err != nil {
		c.logger.Error("error retrieving candidates", "session", sessionID, "err", err)
		return nil, err
	}
	c.monitor.AfterRetrieval(hits)

	pool := c.Fuser.Fuse(hits.Lexical, hits.Semantic)
	c.monitor.AfterFusion(pool)

	selected := c.Selector.Select(pool)
	c.monitor.AfterSelection(selected)

	sources := c.Tokenizer.Tokenize(ctx, selected)
	c.monitor.AfterTokenization(sources)

	history, err := c.Store.History(ctx, sessionID)
	if err != nil {
		c.logger.Error("error reading history", "session", sessionID, "err", err)
		return nil, err
	}
	c.monitor.AfterHistory(history)

	text, err := c.Builder.Build(history, query, sources)
	if err != nil {
		c.logger.Error("error building prompt", "session", sessionID, "err", err)
		return nil, err
	}
	c.monitor.AfterPrompt(text)

	generation := c.Generator.Generate(ctx, text)
	c.monitor.AfterGeneration(generation)

	if !generation.OK() {
		c.logger.Warn("generation produced no answer", "session", sessionID, "err", generation.Err())
		resp := &Response{Text: NoAnswerMessage, SessionID: sessionID, Degraded: true}
		c.monitor.Finish(resp)
		return resp, nil
	}

	answer := c.Resolver.Resolve(generation.Text(), sources)

	if _, err := c.Store.Save(ctx, sessionID, core.RoleUser, query, nil); err != nil {
		c.logger.Error("error saving user turn", "session", sessionID, "err", err)
		return nil, err
	}
	timestamp, err := c.Store.Save(ctx, sessionID, core.RoleAssistant, answer, sources.DocumentIDs())
	if err != nil {
		c.logger.Error("error saving assistant turn", "session", sessionID, "err", err)
		return nil, err
	}

	resp := &Response{Text: answer, SessionID: sessionID, Timestamp: timestamp}
	c.logger.Info("answered query",
		"session", sessionID,
		"candidates", len(pool),
		"selected", len(selected),
		"history", len(history))
	c.monitor.Finish(resp)
	return resp, nil
}

// Feedback records a rating or free text on a stored assistant message.
func (c *Chatbot) Feedback(ctx context.Context, sessionID string, timestamp int64, feedback core.Feedback) error {
	return c.Store.Feedback(ctx, sessionID, timestamp, feedback)
}
