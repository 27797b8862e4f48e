// Docchat is a document-grounded chat server.
//
// It ingests PDF documents into an embedded vector index, extracting text
// chunks and captioned images, and answers questions about them over a
// retrieval-augmented HTTP chat API.
//
// Configuration is loaded from environment variables. See internal/config
// for details.
//
// Usage:
//
//	# Start server
//	OPENAI_API_KEY=... EMBEDDING_MODEL=text-embedding-3-small \
//	COMPLETION_MODEL=gpt-4o-mini CHUNK_SIZE=1000 CHUNK_OVERLAP=200 \
//	RETRIEVAL_K=4 MAX_TOKENS=2000 docchat
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docchat/internal/ai"
	"github.com/fyrsmithlabs/docchat/internal/config"
	"github.com/fyrsmithlabs/docchat/internal/conversation"
	"github.com/fyrsmithlabs/docchat/internal/httpapi"
	"github.com/fyrsmithlabs/docchat/internal/index"
	"github.com/fyrsmithlabs/docchat/internal/ingest"
	"github.com/fyrsmithlabs/docchat/internal/logging"
	"github.com/fyrsmithlabs/docchat/internal/orchestrator"
	"github.com/fyrsmithlabs/docchat/internal/retrieval"
	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  docchat           Start the docchat server\n")
			fmt.Fprintf(os.Stderr, "  docchat version   Show version information\n")
			os.Exit(1)
		}
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("docchat\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the docchat server and blocks until context is cancelled.
//
// This function initializes all dependencies and services:
//  1. Loads and validates configuration
//  2. Initializes the structured logger
//  3. Opens the persistent vector index
//  4. Wires the ingestion pipeline, indexer, retriever and orchestrator
//  5. Starts the HTTP server
//  6. Performs graceful shutdown on context cancellation
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// A missing required setting is fatal.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("Starting docchat",
		zap.Int("port", cfg.ServerPort),
		zap.String("embedding_model", cfg.EmbeddingModel),
		zap.String("completion_model", cfg.CompletionModel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout))

	aiClient := ai.NewClient(ai.Config{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		EmbeddingModel:  cfg.EmbeddingModel,
		CompletionModel: cfg.CompletionModel,
		CaptionModel:    cfg.CaptionModel,
	})

	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path:       cfg.StorePath,
		Collection: cfg.StoreCollection,
	}, aiClient, logger)
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("reading vector index: %w", err)
	}
	logger.Info("Vector index opened",
		zap.String("path", cfg.StorePath),
		zap.String("collection", cfg.StoreCollection),
		zap.Int("items", count))

	pipeline := ingest.NewPipeline(ingest.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		ImageDir:     cfg.ImageDir,
	}, logger)

	indexer := index.NewIndexer(store, aiClient, logger)
	retriever := retrieval.NewRetriever(store, cfg.RetrievalK, logger)

	conversations := conversation.NewStore(cfg.MaxTokens, summarizerAdapter{client: aiClient}, logger)
	orch := orchestrator.New(conversations, retriever, aiClient, logger)

	srv, err := httpapi.NewServer(pipeline, indexer, orch, conversations, logger, &httpapi.Config{
		Host: "0.0.0.0",
		Port: cfg.ServerPort,
	})
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// summarizerAdapter bridges the conversation memory's summarizer contract
// to the completion client.
type summarizerAdapter struct {
	client *ai.Client
}

func (a summarizerAdapter) Summarize(ctx context.Context, previous string, evicted []conversation.Turn) (string, error) {
	turns := make([]ai.ChatTurn, len(evicted))
	for i, t := range evicted {
		turns[i] = ai.ChatTurn{Role: string(t.Role), Content: t.Content}
	}
	return a.client.Summarize(ctx, previous, turns)
}
