// Command extract runs one document through the extraction pipeline and
// prints the validated result. Useful for prompt/schema debugging without
// the HTTP surface or a database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/taskintel/taskintel/internal/common"
	"github.com/taskintel/taskintel/internal/llm"
	"github.com/taskintel/taskintel/internal/llm/gemini"
	"github.com/taskintel/taskintel/internal/pipeline"
)

func main() {
	file := flag.String("file", "", "document to extract from (default: stdin)")
	model := flag.String("model", "", "override GEMINI_MODEL")
	flag.Parse()

	_ = godotenv.Load()

	if err := run(*file, *model); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(file, model string) error {
	var (
		doc []byte
		err error
	)
	if file != "" {
		doc, err = os.ReadFile(file)
	} else {
		doc, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	cfg := common.LoadConfig()
	if model != "" {
		cfg.LLM.Model = model
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client, err := gemini.NewClient(gemini.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
	}, logger)
	if err != nil {
		return err
	}

	stage := pipeline.NewExtractStage(logger, pipeline.Config{
		CheckEvidence: cfg.Pipeline.CheckEvidence,
	}, client, nil)

	result, err := stage.Run(context.Background(), llm.ExtractRequest{DocumentText: string(doc)})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result.Extraction, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))
	if result.NeedsReview {
		fmt.Fprintln(os.Stderr, "warning: evidence check failed for at least one task; result flagged for review")
	}
	return nil
}
