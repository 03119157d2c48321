package specialists

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/marketdata"
	"github.com/ternarybob/verdict/internal/models"
)

// TechnicalSpecialist analyzes price action: current quote, moving averages,
// RSI and momentum over the request's timeframe.
type TechnicalSpecialist struct {
	crypto *marketdata.CoinGeckoClient
	yahoo  *marketdata.YahooClient
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewTechnicalSpecialist creates a new technical analysis specialist. The
// yahoo client may be nil when the equity fallback is not configured.
func NewTechnicalSpecialist(llm interfaces.LLMService, crypto *marketdata.CoinGeckoClient, yahoo *marketdata.YahooClient, logger arbor.ILogger) *TechnicalSpecialist {
	return &TechnicalSpecialist{
		crypto: crypto,
		yahoo:  yahoo,
		llm:    llm,
		logger: logger,
	}
}

// Name returns the fixed agent name.
func (s *TechnicalSpecialist) Name() string {
	return models.AgentTechnical
}

// Analyze runs the technical analysis for a query. Price data is fetched
// crypto-first with an equity fallback; indicator sections are skipped when
// no history is available.
func (s *TechnicalSpecialist) Analyze(ctx context.Context, query string, actx interfaces.AnalysisContext) (*models.SpecialistResult, error) {
	s.logger.Info().
		Str("asset", actx.AssetSymbol).
		Msg("Technical Analyst analyzing")

	dataSources := map[string]interface{}{}
	var sections []string

	quote, history := s.fetchPriceData(ctx, actx)
	if quote != nil {
		sections = append(sections, renderQuote(quote))
		dataSources["quote"] = quote
	}
	if len(history) > 0 {
		sections = append(sections, renderIndicatorReadings(history))
		dataSources["history_points"] = len(history)
	}

	messages := buildMessages(technicalSystemPrompt, query, actx, sections)
	raw, err := s.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("technical analysis failed: %w", err)
	}

	payload, err := parsePayload(raw, s.logger)
	if err != nil {
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("technical analysis returned empty response")
		}
		// Free-text replies still carry usable judgment, just less certainty.
		payload = &specialistPayload{Summary: strings.TrimSpace(raw), Confidence: 0.6}
	}

	return &models.SpecialistResult{
		AgentName:        s.Name(),
		Summary:          payload.Summary,
		Confidence:       payload.Confidence,
		Signal:           payload.Trend,
		KeyFactors:       payload.KeyFactors,
		BullishFactors:   payload.BullishFactors,
		BearishFactors:   payload.BearishFactors,
		KeyRisks:         payload.Risks,
		RiskMitigations:  payload.RiskMitigations,
		InvestmentThesis: payload.InvestmentThesis,
		DataSources:      dataSources,
	}, nil
}

// fetchPriceData tries CoinGecko first, then Yahoo Finance for non-crypto
// symbols. Both failing leaves the LLM to reason from the query alone.
func (s *TechnicalSpecialist) fetchPriceData(ctx context.Context, actx interfaces.AnalysisContext) (*marketdata.Quote, []marketdata.PricePoint) {
	days := actx.Timeframe.Days()

	quote, err := s.crypto.GetQuote(ctx, actx.AssetSymbol)
	if err == nil {
		history, histErr := s.crypto.GetHistory(ctx, actx.AssetSymbol, days)
		if histErr != nil {
			s.logger.Warn().Err(histErr).Str("asset", actx.AssetSymbol).Msg("Crypto history unavailable")
		}
		return quote, history
	}
	s.logger.Debug().Err(err).Str("asset", actx.AssetSymbol).Msg("Not resolvable as crypto, trying equity quote")

	if s.yahoo == nil {
		return nil, nil
	}
	quote, err = s.yahoo.GetQuote(ctx, actx.AssetSymbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("asset", actx.AssetSymbol).Msg("Price data unavailable")
		return nil, nil
	}
	history, histErr := s.yahoo.GetHistory(ctx, actx.AssetSymbol, days)
	if histErr != nil {
		s.logger.Warn().Err(histErr).Str("asset", actx.AssetSymbol).Msg("Equity history unavailable")
	}
	return quote, history
}

func renderQuote(q *marketdata.Quote) string {
	return fmt.Sprintf("Current market data (%s):\n- Price: %s\n- 24h change: %.2f%%\n- 24h high/low: %s / %s\n- Volume: %d",
		q.Source, q.Price.StringFixed(2), q.Change24hPct, q.High.StringFixed(2), q.Low.StringFixed(2), q.Volume)
}

func renderIndicatorReadings(history []marketdata.PricePoint) string {
	var b strings.Builder
	b.WriteString("Technical indicators:")
	fmt.Fprintf(&b, "\n- SMA(7): %s", marketdata.SMA(history, 7).StringFixed(2))
	fmt.Fprintf(&b, "\n- SMA(20): %s", marketdata.SMA(history, 20).StringFixed(2))
	fmt.Fprintf(&b, "\n- RSI(14): %.1f", marketdata.RSI(history, 14))
	fmt.Fprintf(&b, "\n- Momentum(7): %.2f%%", marketdata.Momentum(history, 7))
	return b.String()
}

// Ensure TechnicalSpecialist implements the Specialist interface
var _ interfaces.Specialist = (*TechnicalSpecialist)(nil)
