package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adocavo/adocavo-api/internal/ai"
	"github.com/adocavo/adocavo-api/internal/circuitbreaker"
	"github.com/adocavo/adocavo-api/internal/metrics"
)

const analysisSystemPrompt = `You analyze competitor short-video ad copy. Respond with strict JSON only: {"hook_type": string, "strengths": [string], "weaknesses": [string], "suggestions": [string]}. No markdown, no commentary.`

// Analysis is the structured verdict on a competitor ad.
type Analysis struct {
	HookType    string   `json:"hook_type"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}

// AnalysisService runs competitor-ad analysis. Authenticated callers pay a
// credit; guests are admitted on the tighter anonymous quota without one.
type AnalysisService struct {
	credits CreditLedger
	ai      Generator
	breaker *circuitbreaker.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewAnalysisService(credits CreditLedger, gen Generator, breaker *circuitbreaker.Breaker, m *metrics.Metrics, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		credits: credits,
		ai:      gen,
		breaker: breaker,
		metrics: m,
		logger:  logger,
	}
}

// Analyze runs the competitor analysis. userID may be empty for guest-mode
// callers.
func (s *AnalysisService) Analyze(ctx context.Context, userID, adText string) (*Analysis, error) {
	if userID != "" {
		ok, err := s.credits.SpendCredit(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("spend credit: %w", err)
		}
		if !ok {
			return nil, ErrNoCredits
		}
		if s.metrics != nil {
			s.metrics.CreditsSpentTotal.Inc()
		}
	}

	analysis, err := s.run(ctx, adText)
	if err != nil && userID != "" {
		if refundErr := s.credits.GrantCredits(ctx, userID, 1); refundErr != nil {
			s.logger.Error("credit refund failed after analysis error",
				"user_id", userID, "error", refundErr)
		}
	}
	return analysis, err
}

func (s *AnalysisService) run(ctx context.Context, adText string) (*Analysis, error) {
	prompt := "Analyze this competitor ad copy:\n\n" + adText

	start := time.Now()
	var raw string
	err := s.breaker.Do(func() error {
		var aiErr error
		raw, aiErr = s.ai.Complete(ctx, analysisSystemPrompt, prompt)
		return aiErr
	}, func(err error) bool {
		return errors.Is(err, ai.ErrUnavailable)
	})
	if s.metrics != nil {
		s.metrics.AIRequestDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if s.metrics != nil {
			s.metrics.AIRequestsTotal.WithLabelValues("error").Inc()
		}
		if errors.Is(err, circuitbreaker.ErrOpen) {
			return nil, fmt.Errorf("%w: circuit open", ai.ErrUnavailable)
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AIRequestsTotal.WithLabelValues("success").Inc()
	}

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	var analysis Analysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrInvalidResponse, err)
	}
	if analysis.HookType == "" {
		return nil, fmt.Errorf("%w: missing hook_type", ai.ErrInvalidResponse)
	}

	return &analysis, nil
}
