package specialists

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/marketdata"
	"github.com/ternarybob/verdict/internal/models"
)

// stubLLM returns a canned reply or error without touching a provider.
type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return s.reply, s.err
}

func (s *stubLLM) HealthCheck(ctx context.Context) error { return nil }
func (s *stubLLM) Close() error                          { return nil }

// newUnreachableServer gives clients a base URL that always refuses, so data
// collection exercises its skip path without real network access.
func newUnreachableServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestMacroSpecialist_ParsesPayload(t *testing.T) {
	logger := arbor.NewLogger()
	llm := &stubLLM{reply: `{"summary": "Policy easing supports risk assets.", "outlook": "bullish", "confidence": 0.8, "key_factors": ["rate cuts"]}`}
	economic := marketdata.NewEconomicClient("", logger)
	news := marketdata.NewNewsClient(logger, marketdata.WithNewsBaseURL(newUnreachableServer(t)))

	s := NewMacroSpecialist(llm, economic, news, nil, logger)
	assert.Equal(t, models.AgentMacro, s.Name())

	result, err := s.Analyze(context.Background(), "outlook for BTC", interfaces.AnalysisContext{
		AssetSymbol: "BTC",
		Timeframe:   models.TimeframeMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AgentMacro, result.AgentName)
	assert.Equal(t, "Policy easing supports risk assets.", result.Summary)
	assert.Equal(t, "bullish", result.Signal)
	assert.Equal(t, 0.8, result.Confidence)
	assert.Contains(t, result.KeyFactors, "rate cuts")
	// Indicator baselines are available even without a FRED key.
	assert.Contains(t, result.DataSources, "economic")
}

func TestMacroSpecialist_FallbackOnLLMFailure(t *testing.T) {
	logger := arbor.NewLogger()
	llm := &stubLLM{err: errors.New("provider unavailable")}
	economic := marketdata.NewEconomicClient("", logger)
	news := marketdata.NewNewsClient(logger, marketdata.WithNewsBaseURL(newUnreachableServer(t)))

	s := NewMacroSpecialist(llm, economic, news, nil, logger)

	result, err := s.Analyze(context.Background(), "outlook for BTC", interfaces.AnalysisContext{AssetSymbol: "BTC"})
	require.NoError(t, err)
	assert.Equal(t, 0.1, result.Confidence)
	assert.Equal(t, "neutral", result.Signal)
	assert.Contains(t, result.Summary, "Unable to perform macroeconomic analysis")
}

func TestSentimentSpecialist_FallbackOnMalformedPayload(t *testing.T) {
	logger := arbor.NewLogger()
	llm := &stubLLM{reply: "i cannot answer in json right now"}
	news := marketdata.NewNewsClient(logger, marketdata.WithNewsBaseURL(newUnreachableServer(t)))

	s := NewSentimentSpecialist(llm, news, logger)
	assert.Equal(t, models.AgentSentiment, s.Name())

	result, err := s.Analyze(context.Background(), "how is ETH sentiment", interfaces.AnalysisContext{AssetSymbol: "ETH"})
	require.NoError(t, err)
	assert.Equal(t, 0.3, result.Confidence)
	assert.Equal(t, "neutral", result.Signal)
	assert.Contains(t, result.Summary, "Limited sentiment analysis available for ETH")
}

func TestTechnicalSpecialist_FreeTextTreatedAsSummary(t *testing.T) {
	logger := arbor.NewLogger()
	llm := &stubLLM{reply: "Price action looks constructive above the 20-day average."}
	crypto := marketdata.NewCoinGeckoClient(logger, marketdata.WithCoinGeckoBaseURL(newUnreachableServer(t)))

	s := NewTechnicalSpecialist(llm, crypto, nil, logger)
	assert.Equal(t, models.AgentTechnical, s.Name())

	result, err := s.Analyze(context.Background(), "BTC trend", interfaces.AnalysisContext{
		AssetSymbol: "BTC",
		Timeframe:   models.TimeframeShort,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.6, result.Confidence)
	assert.Equal(t, "Price action looks constructive above the 20-day average.", result.Summary)
	assert.Empty(t, result.Signal)
}

func TestBuildMessages_IncludesConversationContext(t *testing.T) {
	messages := buildMessages(macroSystemPrompt, "should I buy?", interfaces.AnalysisContext{
		AssetSymbol:         "BTC",
		Timeframe:           models.TimeframeMedium,
		ConversationContext: "Previous analysis for BTC: outlook=bullish, action=buy, confidence=0.70",
	}, []string{"Economic indicators:\n- Federal Funds Rate: 4.50 percent"})

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, messages[1].Content, "Previous analysis for BTC")
	assert.Contains(t, messages[1].Content, "should I buy?")
	assert.Contains(t, messages[1].Content, "Federal Funds Rate")
}
