// Package synthesis implements the RAG orchestrator: it builds the retrieval
// index from the principle corpus, retrieves the principles most relevant to a
// query, drafts a policy rule from the best match, gates the result on
// confidence, and owns the degenerate fallback path.
package synthesis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/governance-engine/internal/observability"
	"github.com/upb/governance-engine/models"
	"github.com/upb/governance-engine/services"
	"github.com/upb/governance-engine/services/audit"
	"github.com/upb/governance-engine/services/drafting"
	"github.com/upb/governance-engine/services/embedding"
	"github.com/upb/governance-engine/services/retrieval"
)

const (
	// DefaultConfidenceThreshold gates human review. Results scoring below it
	// must not be auto-enacted.
	DefaultConfidenceThreshold = 0.7

	// DefaultTopK is how many principles retrieval surfaces per query.
	DefaultTopK = 3

	// DefaultDraftTimeout bounds one retrieval+drafting pass. A timeout is
	// treated like any other drafting failure: degrade to fallback.
	DefaultDraftTimeout = 10 * time.Second

	// FallbackConfidence is forced on every fallback result. Kept below 0.5
	// so fallback output always reads as low-confidence.
	FallbackConfidence = 0.30
)

// Path labels for metrics
const (
	pathNormal   = "normal"
	pathFallback = "fallback"
)

// Config holds orchestrator configuration. The confidence threshold lives
// here, not in the drafting engine, so operators can tune review gating
// without touching drafting logic.
type Config struct {
	RetrievalThreshold  float64
	ConfidenceThreshold float64
	TopK                int
	DraftTimeout        time.Duration
	ComplianceHash      string
	Scoring             drafting.ScoringConfig
}

// DefaultConfig returns the default orchestrator configuration
func DefaultConfig() Config {
	return Config{
		RetrievalThreshold:  retrieval.DefaultThreshold,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		TopK:                DefaultTopK,
		DraftTimeout:        DefaultDraftTimeout,
		ComplianceHash:      models.DefaultComplianceHash,
		Scoring:             drafting.DefaultScoringConfig(),
	}
}

// SynthesisRequest carries one rule-generation query
type SynthesisRequest struct {
	Query string

	// Context carries caller-supplied values recorded for audit.
	Context map[string]interface{}

	// RiskThreshold, when set, parameterizes the drafted rule body.
	RiskThreshold *float64
}

// Service is the RAG orchestrator façade. Metrics and auditor are optional;
// pass nil to disable them.
type Service struct {
	corpus      []models.ConstitutionalPrinciple
	index       *retrieval.Index
	drafter     *drafting.Engine
	embedder    embedding.Embedder
	config      Config
	logger      *zap.Logger
	metrics     *observability.Metrics
	auditor     *audit.Service
	initialized bool
}

// NewService creates the orchestrator. Configuration problems (empty
// compliance hash, thresholds outside [0,1]) surface here or at Initialize —
// never from GenerateRule.
func NewService(
	corpus []models.ConstitutionalPrinciple,
	embedder embedding.Embedder,
	config Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
	auditor *audit.Service,
) (*Service, error) {
	if config.ComplianceHash == "" {
		return nil, services.ErrMissingCompliance
	}
	if config.ConfidenceThreshold < 0 || config.ConfidenceThreshold > 1 {
		return nil, services.NewDomainError(services.ErrorTypeConfiguration,
			fmt.Sprintf("confidence threshold %.2f outside [0,1]", config.ConfidenceThreshold), nil)
	}
	if config.TopK <= 0 {
		config.TopK = DefaultTopK
	}
	if config.DraftTimeout <= 0 {
		config.DraftTimeout = DefaultDraftTimeout
	}

	drafter, err := drafting.NewEngine(config.ComplianceHash, config.Scoring, logger)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeConfiguration, "failed to create drafting engine", err)
	}

	return &Service{
		corpus:   corpus,
		index:    retrieval.NewIndex(embedder, config.RetrievalThreshold, logger),
		drafter:  drafter,
		embedder: embedder,
		config:   config,
		logger:   logger,
		metrics:  metrics,
		auditor:  auditor,
	}, nil
}

// Initialize builds the retrieval index from the corpus. Malformed corpus
// entries fail fast here; the engine cannot operate on a partial index.
func (s *Service) Initialize(ctx context.Context) error {
	if err := s.index.Build(ctx, s.corpus); err != nil {
		return fmt.Errorf("failed to initialize retrieval index: %w", err)
	}
	s.initialized = true
	s.logger.Info("synthesis engine initialized",
		zap.Int("corpus_size", len(s.corpus)),
		zap.String("embedding_model", s.embedder.Model()),
		zap.Float64("confidence_threshold", s.config.ConfidenceThreshold))
	return nil
}

// GenerateRule synthesizes a policy rule for the query. It never returns an
// error: retrieval or drafting failures — including timeouts — degrade to the
// fallback result with the failure reason recorded in Reasoning. Callers
// always receive a well-formed result.
func (s *Service) GenerateRule(ctx context.Context, req SynthesisRequest) *models.RuleSynthesisResult {
	start := time.Now()

	if !s.initialized {
		return s.finish(req, s.fallbackResult("engine not initialized"), start)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.DraftTimeout)
	defer cancel()

	retrieved, err := s.index.Retrieve(ctx, req.Query, s.config.TopK)
	if err != nil {
		s.logger.Error("retrieval failed, using fallback", zap.Error(err), zap.String("query", req.Query))
		return s.finish(req, s.fallbackResult(fmt.Sprintf("retrieval failed: %v", err)), start)
	}
	if len(retrieved) == 0 {
		return s.finish(req, s.fallbackResult("no principle cleared the similarity threshold"), start)
	}

	top := retrieved[0]
	draft, err := s.drafter.Draft(top.Content, &drafting.Context{
		RiskThreshold: req.RiskThreshold,
		Overrides:     req.Context,
	})
	if err != nil {
		s.logger.Error("drafting failed, using fallback", zap.Error(err), zap.String("principle_id", top.PrincipleID))
		return s.finish(req, s.fallbackResult(fmt.Sprintf("drafting failed: %v", err)), start)
	}

	sources := make([]string, 0, len(retrieved))
	for _, r := range retrieved {
		sources = append(sources, r.PrincipleID)
	}

	requiresReview := draft.Confidence < s.config.ConfidenceThreshold

	reasoning := make([]string, 0, len(draft.Reasoning)+2)
	reasoning = append(reasoning, fmt.Sprintf(
		"retrieved %d principle(s); best match %s with similarity %.2f",
		len(retrieved), top.PrincipleID, top.Similarity))
	reasoning = append(reasoning, draft.Reasoning...)
	reasoning = append(reasoning, fmt.Sprintf(
		"confidence %.2f against threshold %.2f: human review %s",
		draft.Confidence, s.config.ConfidenceThreshold, reviewWord(requiresReview)))

	result := &models.RuleSynthesisResult{
		RuleID:              models.RuleIDPrefix + uuid.NewString(),
		RuleContent:         draft.Content,
		ConfidenceScore:     draft.Confidence,
		SourcePrinciples:    sources,
		Reasoning:           reasoning,
		RequiresHumanReview: requiresReview,
		GeneratedAt:         time.Now().UTC(),
	}

	return s.finish(req, result, start)
}

// GetMetrics exposes operational state for dashboards, not control flow.
func (s *Service) GetMetrics() map[string]interface{} {
	cacheSize := 0
	if c, ok := s.embedder.(interface{ CacheLen() int }); ok {
		cacheSize = c.CacheLen()
	}

	return map[string]interface{}{
		"corpus_size":          len(s.corpus),
		"embedded_principles":  s.index.Size(),
		"confidence_threshold": s.config.ConfidenceThreshold,
		"compliance_hash":      s.config.ComplianceHash,
		"real_backend_active":  s.embedder.Model() != embedding.HashModel,
		"embedding_cache_size": cacheSize,
	}
}

// fallbackResult builds the safety-net result: fallback-prefixed ID, minimal
// fallback rule, forced low confidence, forced human review, no sources.
// This path never raises.
func (s *Service) fallbackResult(reason string) *models.RuleSynthesisResult {
	draft := s.drafter.FallbackDraft()

	reasoning := make([]string, 0, len(draft.Reasoning)+1)
	reasoning = append(reasoning, reason)
	reasoning = append(reasoning, draft.Reasoning...)

	return &models.RuleSynthesisResult{
		RuleID:              models.FallbackRuleIDPrefix + uuid.NewString(),
		RuleContent:         draft.Content,
		ConfidenceScore:     FallbackConfidence,
		SourcePrinciples:    []string{},
		Reasoning:           reasoning,
		RequiresHumanReview: true,
		GeneratedAt:         time.Now().UTC(),
	}
}

// finish records metrics, audit, and logging for a completed call
func (s *Service) finish(req SynthesisRequest, result *models.RuleSynthesisResult, start time.Time) *models.RuleSynthesisResult {
	elapsed := time.Since(start)
	path := pathNormal
	category := categoryOf(result.RuleContent)
	if result.IsFallback() {
		path = pathFallback
	}

	if s.metrics != nil {
		s.metrics.RecordSynthesis(path, category, result.RequiresHumanReview, elapsed)
	}
	if s.auditor != nil {
		s.auditor.Submit(&audit.Record{
			RuleID:              result.RuleID,
			Query:               req.Query,
			Category:            category,
			Confidence:          result.ConfidenceScore,
			RequiresHumanReview: result.RequiresHumanReview,
			FallbackUsed:        result.IsFallback(),
			SourcePrinciples:    result.SourcePrinciples,
			CreatedAt:           result.GeneratedAt,
		})
	}

	s.logger.Info("rule synthesized",
		zap.String("rule_id", result.RuleID),
		zap.String("path", path),
		zap.String("category", category),
		zap.Float64("confidence", result.ConfidenceScore),
		zap.Bool("requires_human_review", result.RequiresHumanReview),
		zap.Duration("elapsed", elapsed))

	return result
}

// categoryOf extracts the category from the rule's package header.
func categoryOf(ruleContent string) string {
	const prefix = "package governance."
	if len(ruleContent) <= len(prefix) || ruleContent[:len(prefix)] != prefix {
		return "unknown"
	}
	rest := ruleContent[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\n' || rest[i] == '\r' {
			return rest[:i]
		}
	}
	return rest
}

func reviewWord(required bool) string {
	if required {
		return "required"
	}
	return "not required"
}
