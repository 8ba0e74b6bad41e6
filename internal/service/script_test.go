package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/adocavo/adocavo-api/internal/ai"
	"github.com/adocavo/adocavo-api/internal/circuitbreaker"
	"github.com/adocavo/adocavo-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	credits int
	spends  int
	grants  int
}

func (f *fakeLedger) SpendCredit(ctx context.Context, id string) (bool, error) {
	f.spends++
	if f.credits <= 0 {
		return false, nil
	}
	f.credits--
	return true, nil
}

func (f *fakeLedger) GrantCredits(ctx context.Context, id string, amount int) error {
	f.grants++
	f.credits += amount
	return nil
}

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScriptService(ledger *fakeLedger, gen *fakeGenerator) *ScriptService {
	return NewScriptService(nil, ledger, gen, circuitbreaker.New(circuitbreaker.Config{}), nil, discardLogger())
}

func TestGenerateWithoutCredits(t *testing.T) {
	ledger := &fakeLedger{credits: 0}
	gen := &fakeGenerator{}
	svc := newTestScriptService(ledger, gen)

	_, err := svc.Generate(context.Background(), uuid.New(), GenerateRequest{Product: "widget"})

	assert.ErrorIs(t, err, ErrNoCredits)
	assert.Zero(t, gen.calls, "no inference call without a credit")
}

func TestGenerateRefundsCreditOnInferenceFailure(t *testing.T) {
	ledger := &fakeLedger{credits: 5}
	gen := &fakeGenerator{err: ai.ErrUnavailable}
	svc := newTestScriptService(ledger, gen)

	_, err := svc.Generate(context.Background(), uuid.New(), GenerateRequest{Product: "widget"})

	assert.ErrorIs(t, err, ai.ErrUnavailable)
	assert.Equal(t, 1, ledger.grants, "failed generation must refund the credit")
	assert.Equal(t, 5, ledger.credits)
}

func TestGenerateRefundsCreditOnUnparseableResponse(t *testing.T) {
	ledger := &fakeLedger{credits: 5}
	gen := &fakeGenerator{response: "sorry, I can't do that"}
	svc := newTestScriptService(ledger, gen)

	_, err := svc.Generate(context.Background(), uuid.New(), GenerateRequest{Product: "widget"})

	assert.ErrorIs(t, err, ai.ErrInvalidResponse)
	assert.Equal(t, 5, ledger.credits)
}

func TestGenerateMapsOpenBreakerToUnavailable(t *testing.T) {
	ledger := &fakeLedger{credits: 100}
	gen := &fakeGenerator{err: ai.ErrUnavailable}
	breaker := circuitbreaker.New(circuitbreaker.Config{MaxFailures: 1, CoolDown: time.Minute})
	svc := NewScriptService(nil, ledger, gen, breaker, nil, discardLogger())

	_, err := svc.Generate(context.Background(), uuid.New(), GenerateRequest{Product: "widget"})
	require.ErrorIs(t, err, ai.ErrUnavailable)
	require.Equal(t, 1, gen.calls)

	// Breaker is open now; the generator must not be reached again.
	_, err = svc.Generate(context.Background(), uuid.New(), GenerateRequest{Product: "widget"})
	assert.ErrorIs(t, err, ai.ErrUnavailable)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 100, ledger.credits, "every failed attempt refunds")
}

func TestBreakerIgnoresInvalidResponses(t *testing.T) {
	ledger := &fakeLedger{credits: 100}
	gen := &fakeGenerator{response: "not json"}
	breaker := circuitbreaker.New(circuitbreaker.Config{MaxFailures: 2, CoolDown: time.Minute})
	svc := NewScriptService(nil, ledger, gen, breaker, nil, discardLogger())

	// Unusable output is a model problem, not an availability problem.
	for i := 0; i < 5; i++ {
		_, err := svc.Generate(context.Background(), uuid.New(), GenerateRequest{Product: "widget"})
		require.ErrorIs(t, err, ai.ErrInvalidResponse)
	}
	assert.Equal(t, 5, gen.calls)
}

func TestParseScriptVariants(t *testing.T) {
	valid := `[{"title":"A","body":"first"},{"title":"B","body":"second"},{"title":"C","body":"third"}]`

	t.Run("plain json", func(t *testing.T) {
		variants, err := parseScriptVariants(valid)
		require.NoError(t, err)
		require.Len(t, variants, 3)
		assert.Equal(t, "A", variants[0].Title)
		assert.Equal(t, "third", variants[2].Body)
	})

	t.Run("fenced json", func(t *testing.T) {
		variants, err := parseScriptVariants("```json\n" + valid + "\n```")
		require.NoError(t, err)
		assert.Len(t, variants, 3)
	})

	t.Run("bare fence", func(t *testing.T) {
		variants, err := parseScriptVariants("```\n" + valid + "\n```")
		require.NoError(t, err)
		assert.Len(t, variants, 3)
	})

	t.Run("extra variants are truncated", func(t *testing.T) {
		variants, err := parseScriptVariants(`[{"body":"1"},{"body":"2"},{"body":"3"},{"body":"4"}]`)
		require.NoError(t, err)
		assert.Len(t, variants, 3)
	})

	t.Run("empty array", func(t *testing.T) {
		_, err := parseScriptVariants("[]")
		assert.ErrorIs(t, err, ai.ErrInvalidResponse)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := parseScriptVariants(`[{"title":"A","body":"  "}]`)
		assert.ErrorIs(t, err, ai.ErrInvalidResponse)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := parseScriptVariants("here are your scripts!")
		assert.ErrorIs(t, err, ai.ErrInvalidResponse)
	})
}

func TestExportText(t *testing.T) {
	script := &models.Script{Title: "Morning Routine", Body: "Start with the hook."}
	text := ExportText(script)
	assert.Equal(t, "Morning Routine\n===============\n\nStart with the hook.\n", text)
}

func TestExportTextWithoutTitle(t *testing.T) {
	script := &models.Script{Body: "Body only."}
	assert.Equal(t, "Body only.\n", ExportText(script))
}
