// File path: cmd/lms-assistant/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/advisor"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/api"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
	ctxbuilder "github.com/itzdazk/lms-ai-pay-sub000/internal/context"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/distcache"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/llm"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/search"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/semantic"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/store"
	"github.com/itzdazk/lms-ai-pay-sub000/internal/transcript"
)

func main() {
	logger := common.Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("assistant: .env file not loaded", "error", err)
	} else {
		logger.Info("assistant: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	dbPath := flag.String("db", defaultDBPath(), "path to the SQLite catalog database")
	mediaRoot := flag.String("media", defaultMediaRoot(), "root directory for transcript artifacts")
	flag.Parse()

	logger.Info("assistant: startup initiated", "addr", *addr, "db", *dbPath, "media", *mediaRoot)

	catalog, err := store.Open(*dbPath)
	if err != nil {
		logger.Error("assistant: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer catalog.Close()

	artifacts, err := store.NewFileArtifacts(*mediaRoot)
	if err != nil {
		logger.Error("assistant: media root unavailable", "error", err)
		fmt.Println("media root error:", err)
		os.Exit(1)
	}

	transcripts := transcript.NewCache(artifacts)
	transcriptSearch := search.NewTranscriptSearcher(catalog, artifacts, transcripts)
	lessonSearch := search.NewLessonSearcher(catalog)

	rankerOpts := []advisor.RankerOption{}

	embedder := llm.NewEmbedderFromEnv()
	if embedder == nil {
		logger.Info("assistant: semantic search not configured")
	} else {
		semanticClient, err := semantic.NewFromEnv(ctx, embedder)
		if err != nil {
			logger.Warn("assistant: semantic client init failed", "error", err)
		} else if semanticClient.Available() {
			logger.Info("assistant: semantic search available")
			rankerOpts = append(rankerOpts, advisor.WithSemanticSearch(semanticClient))
		} else {
			logger.Warn("assistant: semantic search unreachable")
		}
	}

	if redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); redisAddr != "" {
		shared, err := distcache.Connect(ctx, distcache.LoadConfig())
		if err != nil {
			logger.Warn("assistant: redis unreachable, continuing without shared cache", "error", err)
		} else {
			logger.Info("assistant: shared cache connected", "addr", redisAddr)
			defer shared.Close()
			rankerOpts = append(rankerOpts, advisor.WithSharedCache(shared))
		}
	} else {
		logger.Info("assistant: shared cache not configured")
	}

	ranker := advisor.NewRanker(catalog, rankerOpts...)

	builder, err := ctxbuilder.NewBuilder(ctxbuilder.DefaultConfig(), ctxbuilder.Dependencies{
		Lessons:       catalog,
		Courses:       catalog,
		Enrollments:   catalog,
		Conversations: catalog,
		Transcripts:   transcriptSearch,
		LessonSearch:  lessonSearch,
		Ranker:        ranker,
	})
	if err != nil {
		logger.Error("assistant: context builder init failed", "error", err)
		fmt.Println("context builder error:", err)
		os.Exit(1)
	}

	server, err := api.NewServer(builder)
	if err != nil {
		logger.Error("assistant: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	httpServer := &http.Server{Addr: *addr, Handler: server}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	logger.Info("assistant: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("assistant: server stopped", "error", err)
			fmt.Println("server stopped:", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("assistant: shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("assistant: graceful shutdown failed", "error", err)
		}
	}
}

func defaultDBPath() string {
	return filepath.Join("data", "lms.db")
}

func defaultMediaRoot() string {
	return filepath.Join("data", "media")
}
