// Command rule-engine wires configuration, logging, the corpus, and the
// synthesis engine, runs one query, and prints the result as JSON. It stands
// in for whatever transport the surrounding service chooses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/upb/governance-engine/config"
	"github.com/upb/governance-engine/corpus"
	"github.com/upb/governance-engine/internal/observability"
	"github.com/upb/governance-engine/services/audit"
	"github.com/upb/governance-engine/services/drafting"
	"github.com/upb/governance-engine/services/embedding"
	"github.com/upb/governance-engine/services/synthesis"
)

func main() {
	corpusPath := flag.String("corpus", "corpus.yaml", "path to the principle corpus YAML file")
	query := flag.String("query", "", "governance query to synthesize a rule for")
	riskThreshold := flag.Float64("risk-threshold", -1, "risk score bound injected into the rule (negative = unset)")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: rule-engine -query <text> [-corpus corpus.yaml] [-risk-threshold 0.4]")
		os.Exit(2)
	}

	if err := run(*corpusPath, *query, *riskThreshold); err != nil {
		fmt.Fprintf(os.Stderr, "rule-engine: %v\n", err)
		os.Exit(1)
	}
}

func run(corpusPath, query string, riskThreshold float64) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	principles, err := corpus.Load(corpusPath)
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg, logger)
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	var auditor *audit.Service
	if cfg.Audit.Enabled {
		auditor = audit.NewService(audit.NewMemoryRepository(), logger, audit.Config{
			BufferSize:  cfg.Audit.BufferSize,
			WorkerCount: cfg.Audit.WorkerCount,
		})
		if err := auditor.Start(); err != nil {
			return err
		}
		defer func() { _ = auditor.Stop(5 * time.Second) }()
	}

	engine, err := synthesis.NewService(principles, embedder, synthesis.Config{
		RetrievalThreshold:  cfg.Engine.RetrievalThreshold,
		ConfidenceThreshold: cfg.Engine.ConfidenceThreshold,
		TopK:                cfg.Engine.TopK,
		DraftTimeout:        cfg.Engine.DraftTimeout,
		ComplianceHash:      cfg.Engine.ComplianceHash,
		Scoring:             drafting.DefaultScoringConfig(),
	}, logger, metrics, auditor)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := engine.Initialize(ctx); err != nil {
		return err
	}

	req := synthesis.SynthesisRequest{Query: query}
	if riskThreshold >= 0 {
		req.RiskThreshold = &riskThreshold
	}

	result := engine.GenerateRule(ctx, req)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// buildEmbedder selects the embedding backend from configuration
func buildEmbedder(cfg *config.Config, logger *zap.Logger) (embedding.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			CacheSize:  cfg.Embedding.CacheSize,
		}, logger)
	default:
		return embedding.NewHashEmbedder(cfg.Embedding.Dimensions), nil
	}
}
