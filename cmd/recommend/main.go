// Command recommend asks the configured model provider which service fits a
// free-text description and prints the answer. It is a manual smoke test for
// provider credentials.
//
//	go run ./cmd/recommend "tight shoulders after running"
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/lumiere-booking/cmd/mainconfig"
	"github.com/wolfman30/lumiere-booking/internal/app/bootstrap"
	"github.com/wolfman30/lumiere-booking/internal/catalog"
	appconfig "github.com/wolfman30/lumiere-booking/internal/config"
	"github.com/wolfman30/lumiere-booking/internal/recommend"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	query := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: recommend <description of what you need>")
		os.Exit(2)
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	client, closeClient, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build model client", "error", err)
		os.Exit(1)
	}
	defer closeClient()

	suggester := bootstrap.BuildSuggester(client, cfg, nil, logger)
	if suggester == nil {
		fmt.Println("No model provider configured (set LLM_PROVIDER and its credentials)")
		os.Exit(1)
	}

	start := time.Now()
	rec, ok := suggester.Suggest(ctx, query)
	printResult(os.Stdout, query, rec, ok, time.Since(start))
}

func printResult(w io.Writer, query string, rec recommend.Recommendation, ok bool, elapsed time.Duration) {
	fmt.Fprintf(w, "Query:   %s\n", query)
	fmt.Fprintf(w, "Elapsed: %v\n", elapsed.Round(time.Millisecond))
	if !ok {
		fmt.Fprintln(w, "No recommendation (see logs for the reason)")
		return
	}
	name := rec.ServiceID
	if svc, found := catalog.ServiceByID(rec.ServiceID); found {
		name = fmt.Sprintf("%s (%s, %d mins, $%s)", svc.Name, svc.Category, svc.DurationMin, svc.Price.StringFixed(2))
	}
	fmt.Fprintf(w, "Service: %s\n", name)
	fmt.Fprintf(w, "Why:     %s\n", rec.Reasoning)
}
