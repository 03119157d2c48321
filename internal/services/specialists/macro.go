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

// MacroSpecialist analyzes macroeconomic conditions: central bank policy,
// inflation and growth readings, plus macro-relevant news flow.
type MacroSpecialist struct {
	llm      interfaces.LLMService
	economic *marketdata.EconomicClient
	news     *marketdata.NewsClient
	defi     *marketdata.DefiLlamaClient
	logger   arbor.ILogger
}

// NewMacroSpecialist creates a new macro analysis specialist. The defi
// client may be nil when on-chain fundamentals are not configured.
func NewMacroSpecialist(llm interfaces.LLMService, economic *marketdata.EconomicClient, news *marketdata.NewsClient, defi *marketdata.DefiLlamaClient, logger arbor.ILogger) *MacroSpecialist {
	return &MacroSpecialist{
		llm:      llm,
		economic: economic,
		news:     news,
		defi:     defi,
		logger:   logger,
	}
}

// Name returns the fixed agent name.
func (s *MacroSpecialist) Name() string {
	return models.AgentMacro
}

// Analyze runs the macro analysis for a query. Data source failures are
// logged and skipped; LLM or payload failures fall back to a deterministic
// low-confidence result rather than erroring out.
func (s *MacroSpecialist) Analyze(ctx context.Context, query string, actx interfaces.AnalysisContext) (*models.SpecialistResult, error) {
	s.logger.Info().
		Str("asset", actx.AssetSymbol).
		Msg("Macro Analyst analyzing")

	dataSources := map[string]interface{}{}
	var sections []string

	indicators, err := s.economic.GetIndicators(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Economic indicators unavailable")
	} else {
		sections = append(sections, renderIndicators(indicators))
		dataSources["economic"] = indicators
	}

	articles, err := s.news.Search(ctx, "federal reserve inflation "+actx.AssetSymbol, 5)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Macro news unavailable")
	} else if len(articles) > 0 {
		sections = append(sections, renderHeadlines("Recent macro headlines", articles))
		dataSources["news"] = articles
	}

	if s.defi != nil {
		tvl, err := s.defi.GetAssetTVL(ctx, actx.AssetSymbol)
		if err != nil {
			s.logger.Warn().Err(err).Str("asset", actx.AssetSymbol).Msg("Protocol TVL unavailable")
		} else if tvl != nil {
			sections = append(sections, renderTVL(tvl))
			dataSources["tvl"] = tvl
		}
	}

	messages := buildMessages(macroSystemPrompt, query, actx, sections)
	raw, err := s.llm.Chat(ctx, messages)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Macro analysis LLM call failed, using fallback")
		return s.fallbackResult(query, dataSources), nil
	}

	payload, err := parsePayload(raw, s.logger)
	if err != nil {
		return s.fallbackResult(query, dataSources), nil
	}

	return &models.SpecialistResult{
		AgentName:        s.Name(),
		Summary:          payload.Summary,
		Confidence:       payload.Confidence,
		Signal:           payload.Outlook,
		KeyFactors:       payload.KeyFactors,
		BullishFactors:   payload.BullishFactors,
		BearishFactors:   payload.BearishFactors,
		KeyRisks:         payload.Risks,
		RiskMitigations:  payload.RiskMitigations,
		InvestmentThesis: payload.InvestmentThesis,
		DataSources:      dataSources,
	}, nil
}

// fallbackResult is the deterministic stand-in when the model cannot
// produce a usable payload. Low confidence keeps its weight in synthesis
// small without zeroing it out.
func (s *MacroSpecialist) fallbackResult(query string, dataSources map[string]interface{}) *models.SpecialistResult {
	return &models.SpecialistResult{
		AgentName:   s.Name(),
		Summary:     fmt.Sprintf("Unable to perform macroeconomic analysis for '%s' due to technical issues.", query),
		Confidence:  0.1,
		Signal:      "neutral",
		KeyFactors:  []string{"Technical error", "Data unavailability"},
		KeyRisks:    []string{"System failure", "Data unavailability"},
		DataSources: dataSources,
	}
}

func renderIndicators(indicators []marketdata.EconomicIndicator) string {
	var b strings.Builder
	b.WriteString("Economic indicators:")
	for _, ind := range indicators {
		fmt.Fprintf(&b, "\n- %s: %.2f %s", ind.Name, ind.Value, ind.Unit)
		if ind.Static {
			b.WriteString(" (baseline)")
		}
	}
	return b.String()
}

func renderTVL(tvl *marketdata.ProtocolTVL) string {
	return fmt.Sprintf("On-chain fundamentals (%s):\n- TVL: $%.0f\n- 1d change: %.2f%%\n- 7d change: %.2f%%",
		tvl.Protocol, tvl.TVL, tvl.Change1d, tvl.Change7d)
}

func renderHeadlines(title string, articles []marketdata.NewsArticle) string {
	var b strings.Builder
	b.WriteString(title + ":")
	for _, a := range articles {
		fmt.Fprintf(&b, "\n- %s", a.Title)
		if a.Source != "" {
			fmt.Fprintf(&b, " (%s)", a.Source)
		}
	}
	return b.String()
}

// Ensure MacroSpecialist implements the Specialist interface
var _ interfaces.Specialist = (*MacroSpecialist)(nil)
