// Package server exposes a Chatbot over HTTP.
//
// Routes:
//
//	POST /chat-response  {"query", "session_id"?} -> {"response", "session_id", "timestamp"}
//	POST /feedback       {"session_id", "timestamp", "rating", "feedback_text"} -> {"message"}
//	GET  /health
//
// Any failure, including a malformed body, answers 500 with one fixed body
// per route. Callers are not told why a request failed.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/poiesic/ragchat/chat"
	"github.com/poiesic/ragchat/core"
)

// Failure bodies.
const (
	ChatErrorBody     = "Error processing message"
	FeedbackErrorBody = "Error saving feedback"
)

const shutdownTimeout = 10 * time.Second

// Responder is the part of chat.Chatbot the server needs.
type Responder interface {
	Respond(ctx context.Context, sessionID, query string) (*chat.Response, error)
	Feedback(ctx context.Context, sessionID string, timestamp int64, feedback core.Feedback) error
}

// ChatRequest is the body of POST /chat-response.
type ChatRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the success body of POST /chat-response.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Timestamp int64  `json:"timestamp"`
}

// FeedbackRequest is the body of POST /feedback.
type FeedbackRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	Timestamp    int64  `json:"timestamp" binding:"required"`
	Rating       string `json:"rating"`
	FeedbackText string `json:"feedback_text"`
}

// Server routes HTTP requests to a Responder.
type Server struct {
	bot          Responder
	allowOrigin  string
	newSessionID func() string
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAllowOrigin sets the Access-Control-Allow-Origin value.
func WithAllowOrigin(origin string) Option {
	return func(s *Server) {
		s.allowOrigin = origin
	}
}

// WithSessionIDs replaces the session id generator used when a request has none.
func WithSessionIDs(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newSessionID = fn
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates a Server.
func New(bot Responder, opts ...Option) *Server {
	s := &Server{
		bot:          bot,
		allowOrigin:  "*",
		newSessionID: uuid.NewString,
		logger:       slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine serving all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/chat-response", s.chatResponse)
	r.POST("/feedback", s.feedback)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) chatResponse(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("malformed chat request", "err", err)
		c.JSON(http.StatusInternalServerError, ChatErrorBody)
		return
	}
	if req.SessionID == "" {
		req.SessionID = s.newSessionID()
	}

	resp, err := s.bot.Respond(c.Request.Context(), req.SessionID, req.Query)
	if err != nil {
		s.logger.Error("error answering chat request", "session", req.SessionID, "err", err)
		c.JSON(http.StatusInternalServerError, ChatErrorBody)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Response:  resp.Text,
		SessionID: resp.SessionID,
		Timestamp: resp.Timestamp,
	})
}

func (s *Server) feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("malformed feedback request", "err", err)
		c.JSON(http.StatusInternalServerError, FeedbackErrorBody)
		return
	}

	fb := core.Feedback{Rating: req.Rating, Text: req.FeedbackText}
	if err := s.bot.Feedback(c.Request.Context(), req.SessionID, req.Timestamp, fb); err != nil {
		s.logger.Error("error saving feedback", "session", req.SessionID, "timestamp", req.Timestamp, "err", err)
		c.JSON(http.StatusInternalServerError, FeedbackErrorBody)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback saved"})
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", s.allowOrigin)
		h.Set("Access-Control-Allow-Headers", "Content-Type,X-Amz-Date,Authorization,X-Api-Key")
		h.Set("Access-Control-Allow-Methods", "OPTIONS,GET,POST")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("handled request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
