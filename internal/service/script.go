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
	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/adocavo/adocavo-api/internal/repository"
	"github.com/google/uuid"
)

// Generator is the slice of the inference client the script service needs.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// CreditLedger is the slice of the user repository the script and analysis
// services need for credit accounting.
type CreditLedger interface {
	SpendCredit(ctx context.Context, id string) (bool, error)
	GrantCredits(ctx context.Context, id string, amount int) error
}

const scriptSystemPrompt = `You are a short-form video ad copywriter. Respond with strict JSON only: an array of exactly 3 objects, each {"title": string, "body": string}. No markdown, no commentary.`

const scriptVariants = 3

type GenerateRequest struct {
	Product  string
	Tone     string
	Platform string
	HookID   *uuid.UUID
	HookText string
}

type ScriptService struct {
	scripts *repository.ScriptRepository
	credits CreditLedger
	ai      Generator
	breaker *circuitbreaker.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewScriptService(
	scripts *repository.ScriptRepository,
	credits CreditLedger,
	gen Generator,
	breaker *circuitbreaker.Breaker,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ScriptService {
	return &ScriptService{
		scripts: scripts,
		credits: credits,
		ai:      gen,
		breaker: breaker,
		metrics: m,
		logger:  logger,
	}
}

// Generate produces script variants for a product brief, deducting one
// credit. The credit is taken up front (atomic guard against concurrent
// generations) and refunded if inference fails.
func (s *ScriptService) Generate(ctx context.Context, userID uuid.UUID, req GenerateRequest) ([]models.Script, error) {
	ok, err := s.credits.SpendCredit(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("spend credit: %w", err)
	}
	if !ok {
		return nil, ErrNoCredits
	}
	if s.metrics != nil {
		s.metrics.CreditsSpentTotal.Inc()
	}

	variants, err := s.generateVariants(ctx, req)
	if err != nil {
		if refundErr := s.credits.GrantCredits(ctx, userID.String(), 1); refundErr != nil {
			s.logger.Error("credit refund failed after generation error",
				"user_id", userID.String(), "error", refundErr)
		}
		return nil, err
	}

	scripts := make([]*models.Script, 0, len(variants))
	for _, v := range variants {
		scripts = append(scripts, &models.Script{
			UserID:   userID,
			HookID:   req.HookID,
			Product:  req.Product,
			Tone:     req.Tone,
			Platform: req.Platform,
			Title:    v.Title,
			Body:     v.Body,
		})
	}

	if err := s.scripts.CreateBatch(ctx, scripts); err != nil {
		return nil, fmt.Errorf("persist scripts: %w", err)
	}

	out := make([]models.Script, 0, len(scripts))
	for _, sc := range scripts {
		out = append(out, *sc)
	}
	return out, nil
}

type scriptVariant struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *ScriptService) generateVariants(ctx context.Context, req GenerateRequest) ([]scriptVariant, error) {
	prompt := buildScriptPrompt(req)

	start := time.Now()
	var raw string
	err := s.breaker.Do(func() error {
		var aiErr error
		raw, aiErr = s.ai.Complete(ctx, scriptSystemPrompt, prompt)
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

	variants, err := parseScriptVariants(raw)
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func buildScriptPrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d distinct short-video ad scripts.\n", scriptVariants)
	fmt.Fprintf(&b, "Product: %s\n", req.Product)
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	}
	if req.Platform != "" {
		fmt.Fprintf(&b, "Platform: %s\n", req.Platform)
	}
	if req.HookText != "" {
		fmt.Fprintf(&b, "Open each script with a variation of this hook: %q\n", req.HookText)
	}
	b.WriteString("Each script should run 20-40 seconds when read aloud.")
	return b.String()
}

// parseScriptVariants parses the model's JSON, tolerating a fenced code
// block around it but nothing else.
func parseScriptVariants(raw string) ([]scriptVariant, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var variants []scriptVariant
	if err := json.Unmarshal([]byte(cleaned), &variants); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrInvalidResponse, err)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("%w: no variants", ai.ErrInvalidResponse)
	}
	if len(variants) > scriptVariants {
		variants = variants[:scriptVariants]
	}
	for i, v := range variants {
		if strings.TrimSpace(v.Body) == "" {
			return nil, fmt.Errorf("%w: variant %d has empty body", ai.ErrInvalidResponse, i)
		}
	}
	return variants, nil
}

func (s *ScriptService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Script, error) {
	return s.scripts.ListByUser(ctx, userID, limit, offset)
}

func (s *ScriptService) Get(ctx context.Context, id string, userID uuid.UUID) (*models.Script, error) {
	script, err := s.scripts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if script == nil || script.UserID != userID {
		return nil, ErrNotFound
	}
	return script, nil
}

func (s *ScriptService) Delete(ctx context.Context, id string, userID uuid.UUID) error {
	deleted, err := s.scripts.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ExportText renders a script as plain text for download.
func ExportText(script *models.Script) string {
	var b strings.Builder
	if script.Title != "" {
		b.WriteString(script.Title)
		b.WriteString("\n")
		b.WriteString(strings.Repeat("=", len(script.Title)))
		b.WriteString("\n\n")
	}
	b.WriteString(script.Body)
	b.WriteString("\n")
	return b.String()
}
