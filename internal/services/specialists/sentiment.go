package specialists

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/marketdata"
	"github.com/ternarybob/verdict/internal/models"
)

// SentimentSpecialist gauges market mood from recent news coverage.
type SentimentSpecialist struct {
	news   *marketdata.NewsClient
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewSentimentSpecialist creates a new sentiment analysis specialist.
func NewSentimentSpecialist(llm interfaces.LLMService, news *marketdata.NewsClient, logger arbor.ILogger) *SentimentSpecialist {
	return &SentimentSpecialist{
		news:   news,
		llm:    llm,
		logger: logger,
	}
}

// Name returns the fixed agent name.
func (s *SentimentSpecialist) Name() string {
	return models.AgentSentiment
}

// Analyze runs the sentiment analysis for a query. Missing headlines are not
// fatal; the model falls back to reasoning from the query alone, and LLM or
// payload failures degrade to a deterministic neutral result.
func (s *SentimentSpecialist) Analyze(ctx context.Context, query string, actx interfaces.AnalysisContext) (*models.SpecialistResult, error) {
	s.logger.Info().
		Str("asset", actx.AssetSymbol).
		Msg("Sentiment Analyst analyzing")

	dataSources := map[string]interface{}{}
	var sections []string

	articles, err := s.news.SearchAsset(ctx, actx.AssetSymbol, 8)
	if err != nil {
		s.logger.Warn().Err(err).Str("asset", actx.AssetSymbol).Msg("News headlines unavailable")
	} else if len(articles) > 0 {
		sections = append(sections, renderHeadlines("Recent headlines", articles))
		dataSources["headline_count"] = len(articles)
	}

	messages := buildMessages(sentimentSystemPrompt, query, actx, sections)
	raw, err := s.llm.Chat(ctx, messages)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Sentiment analysis LLM call failed, using fallback")
		return s.fallbackResult(actx.AssetSymbol, dataSources), nil
	}

	payload, err := parsePayload(raw, s.logger)
	if err != nil {
		return s.fallbackResult(actx.AssetSymbol, dataSources), nil
	}

	return &models.SpecialistResult{
		AgentName:        s.Name(),
		Summary:          payload.Summary,
		Confidence:       payload.Confidence,
		Signal:           payload.SentimentLabel,
		KeyFactors:       payload.KeyFactors,
		BullishFactors:   payload.BullishFactors,
		BearishFactors:   payload.BearishFactors,
		KeyRisks:         payload.Risks,
		RiskMitigations:  payload.RiskMitigations,
		InvestmentThesis: payload.InvestmentThesis,
		DataSources:      dataSources,
	}, nil
}

func (s *SentimentSpecialist) fallbackResult(assetSymbol string, dataSources map[string]interface{}) *models.SpecialistResult {
	return &models.SpecialistResult{
		AgentName:   s.Name(),
		Summary:     fmt.Sprintf("Limited sentiment analysis available for %s due to data constraints.", assetSymbol),
		Confidence:  0.3,
		Signal:      "neutral",
		KeyFactors:  []string{"Data availability", "Market conditions"},
		KeyRisks:    []string{"Limited data", "Potential inaccuracies"},
		DataSources: dataSources,
	}
}

// Ensure SentimentSpecialist implements the Specialist interface
var _ interfaces.Specialist = (*SentimentSpecialist)(nil)
