package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/taskintel/taskintel/internal/commits"
	"github.com/taskintel/taskintel/internal/common"
	"github.com/taskintel/taskintel/internal/llm/gemini"
	"github.com/taskintel/taskintel/internal/pipeline"
	"github.com/taskintel/taskintel/internal/repository"
	"github.com/taskintel/taskintel/internal/server"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	// Env (.env is optional; real deployments set the environment directly)
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := repository.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}
	defer db.Close()
	log.Infow("DB ready", "path", cfg.Database.Path)

	// Producer client
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	client, err := gemini.NewClient(gemini.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
	}, slogger)
	if err != nil {
		log.Fatalf("gemini client: %v", err)
	}

	// Pipeline + services
	extractions := repository.NewExtractionRepository(db)
	stage := pipeline.NewExtractStage(slogger, pipeline.Config{
		CheckEvidence: cfg.Pipeline.CheckEvidence,
	}, client, extractions)
	commitsSvc := commits.NewService(repository.NewCommitRepository(db), logger)

	// HTTP server
	srv := server.New(logger, stage, commitsSvc, extractions)
	e := srv.Routes()

	go func() {
		log.Infof("HTTP serving on %s", cfg.Server.HTTPAddr)
		if err := e.Start(cfg.Server.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown: %v", err)
	}
}
