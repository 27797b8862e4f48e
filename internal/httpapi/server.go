// Package httpapi provides the HTTP API for docchat.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docchat/internal/conversation"
	"github.com/fyrsmithlabs/docchat/internal/index"
	"github.com/fyrsmithlabs/docchat/internal/ingest"
)

// Ingestor extracts chunks and images from a PDF on disk.
type Ingestor interface {
	Ingest(ctx context.Context, pdfPath string) (*ingest.Result, error)
}

// Indexer appends ingested content to the knowledge base.
type Indexer interface {
	IndexText(ctx context.Context, chunks []ingest.Chunk) (int, error)
	IndexImages(ctx context.Context, records []ingest.ImageRecord) (*index.ImageIndexResult, error)
	Reinitialize(ctx context.Context) error
}

// Chat handles one user message in a conversation.
type Chat interface {
	Handle(ctx context.Context, message, conversationName string) (answer, name string, err error)
}

// Server provides HTTP endpoints for docchat.
type Server struct {
	echo          *echo.Echo
	ingestor      Ingestor
	indexer       Indexer
	chat          Chat
	conversations *conversation.Store
	logger        *zap.Logger
	config        *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(ingestor Ingestor, indexer Indexer, chat Chat, conversations *conversation.Store, logger *zap.Logger, cfg *Config) (*Server, error) {
	if ingestor == nil {
		return nil, fmt.Errorf("ingestor cannot be nil")
	}
	if indexer == nil {
		return nil, fmt.Errorf("indexer cannot be nil")
	}
	if chat == nil {
		return nil, fmt.Errorf("chat handler cannot be nil")
	}
	if conversations == nil {
		return nil, fmt.Errorf("conversation store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8080,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:          e,
		ingestor:      ingestor,
		indexer:       indexer,
		chat:          chat,
		conversations: conversations,
		logger:        logger,
		config:        cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/documents", s.handleIngestDocument)
	v1.POST("/admin/wipe", s.handleWipe)
	v1.POST("/chat", s.handleChat)
	v1.POST("/conversations", s.handleCreateConversation)
	v1.GET("/conversations", s.handleListConversations)
	v1.GET("/conversations/:name", s.handleGetConversation)
	v1.PUT("/conversations/:name/scope", s.handleSetScope)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleIngestDocument ingests a PDF from a local path and indexes its
// text chunks and captioned images.
func (s *Server) handleIngestDocument(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid ingest request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path field is required")
	}

	ctx := c.Request().Context()

	result, err := s.ingestor.Ingest(ctx, req.Path)
	if err != nil {
		s.logger.Error("ingest failed", zap.String("path", req.Path), zap.Error(err))
		return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("ingesting %s: %v", req.Path, err))
	}

	indexed, err := s.indexer.IndexText(ctx, result.Chunks)
	if err != nil {
		s.logger.Error("indexing text failed", zap.String("path", req.Path), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "indexing text failed")
	}

	imageResult, err := s.indexer.IndexImages(ctx, result.Images)
	if err != nil {
		s.logger.Error("indexing images failed", zap.String("path", req.Path), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "indexing images failed")
	}

	skips := make([]SkipDetail, 0, len(result.Skips)+len(imageResult.Skips))
	for _, sk := range result.Skips {
		skips = append(skips, SkipDetail{Page: sk.Page, Reason: sk.Reason})
	}
	for _, sk := range imageResult.Skips {
		skips = append(skips, SkipDetail{Page: sk.Page, Reason: sk.Reason})
	}

	return c.JSON(http.StatusOK, IngestResponse{
		ChunksIndexed: indexed,
		ImagesIndexed: imageResult.Indexed,
		Skips:         skips,
	})
}

// handleWipe destroys and recreates the knowledge base.
func (s *Server) handleWipe(c echo.Context) error {
	if err := s.indexer.Reinitialize(c.Request().Context()); err != nil {
		s.logger.Error("wipe failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "reinitializing knowledge base failed")
	}

	s.logger.Info("knowledge base reinitialized")
	return c.JSON(http.StatusOK, WipeResponse{Status: "reinitialized"})
}

// handleChat processes one user message and returns the answer together
// with the conversation name that was used.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid chat request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message field is required")
	}

	answer, name, err := s.chat.Handle(c.Request().Context(), req.Message, req.Conversation)
	if err != nil {
		s.logger.Error("chat failed",
			zap.String("conversation", req.Conversation),
			zap.Error(err),
		)
		return echo.NewHTTPError(http.StatusBadGateway, "answering message failed")
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Answer:       answer,
		Conversation: name,
	})
}

// handleCreateConversation creates or returns a conversation. An empty or
// absent name always creates a fresh conversation with a generated name.
func (s *Server) handleCreateConversation(c echo.Context) error {
	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid conversation request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	convo, created := s.conversations.Resolve(req.Name)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	return c.JSON(status, ConversationResponse{
		Name:    convo.Name(),
		Created: created,
		Scope:   convo.Scope(),
	})
}

// handleListConversations returns the names of all conversations.
func (s *Server) handleListConversations(c echo.Context) error {
	return c.JSON(http.StatusOK, ListConversationsResponse{
		Conversations: s.conversations.List(),
	})
}

// handleGetConversation returns a conversation's full display history.
func (s *Server) handleGetConversation(c echo.Context) error {
	name := c.Param("name")

	convo, ok := s.conversations.Get(name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("conversation %q not found", name))
	}

	history := convo.History()
	turns := make([]TurnDetail, len(history))
	for i, t := range history {
		turns[i] = TurnDetail{Role: string(t.Role), Content: t.Content}
	}

	return c.JSON(http.StatusOK, ConversationDetailResponse{
		Name:    convo.Name(),
		Scope:   convo.Scope(),
		History: turns,
	})
}

// handleSetScope replaces a conversation's source scope wholesale,
// creating the conversation if it does not exist yet.
func (s *Server) handleSetScope(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation name is required")
	}

	var req SetScopeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid scope request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	convo := s.conversations.SetScope(name, req.Sources)

	s.logger.Info("conversation scope updated",
		zap.String("conversation", name),
		zap.Strings("sources", req.Sources),
	)

	return c.JSON(http.StatusOK, ConversationResponse{
		Name:  convo.Name(),
		Scope: convo.Scope(),
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
