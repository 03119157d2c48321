// Package orchestrator coordinates one analysis request end to end: cache
// lookup, conversation context injection, concurrent specialist fan-out,
// synthesis and best-effort persistence.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/common"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/models"
	"github.com/ternarybob/verdict/internal/synthesis"
)

// DefaultSpecialistTimeout bounds each specialist's run; a specialist that
// exceeds it is replaced by a degraded result.
const DefaultSpecialistTimeout = 90 * time.Second

// Service implements interfaces.AnalysisService.
type Service struct {
	macro     interfaces.Specialist
	technical interfaces.Specialist
	sentiment interfaces.Specialist

	conversation interfaces.ConversationService
	cache        interfaces.ResultCache
	analyses     interfaces.AnalysisStorage

	validate          *validator.Validate
	specialistTimeout time.Duration
	logger            arbor.ILogger

	persist sync.WaitGroup
}

// NewService creates the orchestrator. The conversation service and analysis
// storage may be nil; the corresponding steps are skipped.
func NewService(
	macro, technical, sentiment interfaces.Specialist,
	conversation interfaces.ConversationService,
	cache interfaces.ResultCache,
	analyses interfaces.AnalysisStorage,
	config *common.AnalysisConfig,
	logger arbor.ILogger,
) *Service {
	timeout := DefaultSpecialistTimeout
	if config != nil && config.SpecialistTimeout != "" {
		if parsed, err := time.ParseDuration(config.SpecialistTimeout); err == nil && parsed > 0 {
			timeout = parsed
		} else {
			logger.Warn().
				Str("specialist_timeout", config.SpecialistTimeout).
				Msg("Invalid specialist timeout, using default")
		}
	}

	return &Service{
		macro:             macro,
		technical:         technical,
		sentiment:         sentiment,
		conversation:      conversation,
		cache:             cache,
		analyses:          analyses,
		validate:          validator.New(),
		specialistTimeout: timeout,
		logger:            logger,
	}
}

// Analyze runs the full pipeline for one request. Specialist failures are
// absorbed as degraded sections of the result; an error return means the
// request itself was rejected or the session it names does not exist.
func (s *Service) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.Analysis, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("asset", req.AssetSymbol).
		Str("timeframe", req.Timeframe.String()).
		Msg("Starting analysis")

	// Resolve conversation identity first so the cache key reflects the
	// minted conversation id, not the blank one.
	resolved := *req
	conversationContext := ""
	contextAsset := ""
	if req.SessionID != "" && s.conversation != nil {
		conv, err := s.conversation.GetOrCreateConversation(ctx, req.SessionID, req.AssetSymbol, req.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("resolve conversation: %w", err)
		}
		resolved.ConversationID = conv.ConversationID
		contextAsset = conv.AssetSymbol

		injection, err := s.conversation.ContextInjection(ctx, req.SessionID, conv.ConversationID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Context injection unavailable")
		} else {
			conversationContext = injection
		}
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, &resolved, contextAsset)
		if err == nil {
			s.logger.Info().
				Str("asset", req.AssetSymbol).
				Msg("Cache hit for analysis")
			return cached, nil
		}
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("Cache lookup failed")
		}
	}

	enrichedQuery := resolved.Query
	if conversationContext != "" {
		enrichedQuery = fmt.Sprintf("%s\n\n[Previous context:\n%s]", resolved.Query, conversationContext)
	}

	actx := interfaces.AnalysisContext{
		AssetSymbol:         resolved.AssetSymbol,
		Timeframe:           resolved.Timeframe,
		ConversationContext: conversationContext,
	}

	macro, technical, sentiment := s.fanOut(ctx, enrichedQuery, actx)

	merged := synthesis.Merge(macro, technical, sentiment)

	analysis := &models.Analysis{
		ID:                common.NewAnalysisID(),
		Query:             resolved.Query,
		AssetSymbol:       resolved.AssetSymbol,
		Timeframe:         resolved.Timeframe,
		Synthesis:         *merged,
		Macro:             *macro,
		Technical:         *technical,
		Sentiment:         *sentiment,
		OverallConfidence: merged.Confidence,
		RiskScore:         1 - merged.Confidence,
		RiskLevel:         models.RiskLevelFromScore(1 - merged.Confidence),
		CreatedAt:         time.Now().UTC(),
	}

	s.persist.Add(1)
	go s.persistAnalysis(&resolved, contextAsset, analysis)

	return analysis, nil
}

// Flush blocks until pending background persistence has settled.
func (s *Service) Flush() {
	s.persist.Wait()
}

func (s *Service) validateRequest(req *models.AnalysisRequest) error {
	if req == nil {
		return fmt.Errorf("analysis request is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid analysis request: %w", err)
	}
	timeframe, err := models.ParseTimeframe(string(req.Timeframe))
	if err != nil {
		return fmt.Errorf("invalid analysis request: %w", err)
	}
	req.Timeframe = timeframe
	return nil
}

// fanOut runs the three specialists concurrently, each under its own
// timeout. Failures and panics become degraded results so the join barrier
// always yields three sections.
func (s *Service) fanOut(ctx context.Context, query string, actx interfaces.AnalysisContext) (macro, technical, sentiment *models.SpecialistResult) {
	results := make([]*models.SpecialistResult, 3)
	specialists := []interfaces.Specialist{s.macro, s.technical, s.sentiment}

	var wg sync.WaitGroup
	for i, specialist := range specialists {
		wg.Add(1)
		go func(i int, specialist interfaces.Specialist) {
			defer wg.Done()
			results[i] = s.runSpecialist(ctx, specialist, query, actx)
		}(i, specialist)
	}
	wg.Wait()

	return results[0], results[1], results[2]
}

func (s *Service) runSpecialist(ctx context.Context, specialist interfaces.Specialist, query string, actx interfaces.AnalysisContext) (result *models.SpecialistResult) {
	name := specialist.Name()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("specialist", name).
				Msg(fmt.Sprintf("Specialist panicked: %v", r))
			result = models.DegradedResult(name, fmt.Errorf("panic: %v", r))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.specialistTimeout)
	defer cancel()

	r, err := specialist.Analyze(runCtx, query, actx)
	if err != nil {
		s.logger.Error().
			Str("specialist", name).
			Err(err).
			Msg("Specialist failed")
		return models.DegradedResult(name, err)
	}
	if r == nil {
		return models.DegradedResult(name, fmt.Errorf("no result produced"))
	}
	return r
}

// persistAnalysis writes the cache entry, the durable analysis record and
// the conversation turns. Every step is best-effort; failures are logged
// and never surfaced to the caller, who already has the result.
func (s *Service) persistAnalysis(req *models.AnalysisRequest, contextAsset string, analysis *models.Analysis) {
	defer s.persist.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.cache != nil {
		if err := s.cache.Put(ctx, req, contextAsset, analysis); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to cache analysis")
		}
	}

	if s.analyses != nil {
		if err := s.analyses.SaveAnalysis(ctx, analysis); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to store analysis")
		}
	}

	if req.SessionID == "" || req.ConversationID == "" || s.conversation == nil {
		return
	}

	if _, err := s.conversation.AddMessage(ctx, req.SessionID, req.ConversationID, models.RoleUser, req.Query,
		map[string]interface{}{"asset_symbol": req.AssetSymbol}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record user message")
	}

	assistantResponse := analysis.Synthesis.FinalResponse()
	if _, err := s.conversation.AddMessage(ctx, req.SessionID, req.ConversationID, models.RoleAssistant, assistantResponse,
		map[string]interface{}{
			"outlook":    string(analysis.Synthesis.Outlook),
			"confidence": analysis.Synthesis.Confidence,
			"action":     string(analysis.Synthesis.TradingAction),
		}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record assistant message")
	}

	if err := s.conversation.UpdateContext(ctx, req.SessionID, req.ConversationID,
		string(analysis.Synthesis.Outlook), analysis.Synthesis.Confidence, string(analysis.Synthesis.TradingAction)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to update conversation context")
	}
}

// Ensure Service implements the AnalysisService interface
var _ interfaces.AnalysisService = (*Service)(nil)
