// Package app wires configuration, storage, data clients, specialists and
// services into one application instance.
package app

import (
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/common"
	"github.com/ternarybob/verdict/internal/handlers"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/marketdata"
	"github.com/ternarybob/verdict/internal/services/conversation"
	"github.com/ternarybob/verdict/internal/services/llm"
	"github.com/ternarybob/verdict/internal/services/orchestrator"
	"github.com/ternarybob/verdict/internal/services/resultcache"
	"github.com/ternarybob/verdict/internal/services/scheduler"
	"github.com/ternarybob/verdict/internal/services/specialists"
	"github.com/ternarybob/verdict/internal/storage"
)

// App holds all application services and handlers.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Storage      interfaces.StorageManager
	LLM          interfaces.LLMService
	Conversation interfaces.ConversationService
	Analysis     interfaces.AnalysisService
	Sweeper      *scheduler.Sweeper

	AnalysisHandler *handlers.AnalysisHandler
	SessionHandler  *handlers.SessionHandler
	APIHandler      *handlers.APIHandler
}

// New initializes the application in dependency order: storage, LLM
// provider, market data clients, specialists, then the orchestrator and its
// handlers. The maintenance sweep is scheduled before returning.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, err
	}

	llmService, err := llm.NewLLMService(&config.LLM, logger)
	if err != nil {
		storageManager.Close()
		return nil, err
	}

	crypto, yahoo, news, economic, defi := buildMarketDataClients(config, logger)

	macro := specialists.NewMacroSpecialist(llmService, economic, news, defi, logger)
	technical := specialists.NewTechnicalSpecialist(llmService, crypto, yahoo, logger)
	sentiment := specialists.NewSentimentSpecialist(llmService, news, logger)

	conversationService := conversation.NewService(storageManager.SessionStorage(), &config.Conversation, logger)

	cacheTTL := time.Duration(config.Analysis.CacheTTLSeconds) * time.Second
	resultCache := resultcache.NewService(storageManager.CacheStorage(), cacheTTL, logger)

	analysisService := orchestrator.NewService(
		macro, technical, sentiment,
		conversationService,
		resultCache,
		storageManager.AnalysisStorage(),
		&config.Analysis,
		logger,
	)

	sessionTTL := conversation.DefaultSessionTTL
	if config.Conversation.SessionTTLDays > 0 {
		sessionTTL = time.Duration(config.Conversation.SessionTTLDays) * 24 * time.Hour
	}
	sweeper := scheduler.NewSweeper(conversationService, storageManager, sessionTTL, logger)
	if err := sweeper.Start(config.Conversation.SweepSchedule); err != nil {
		llmService.Close()
		storageManager.Close()
		return nil, err
	}

	app := &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		LLM:             llmService,
		Conversation:    conversationService,
		Analysis:        analysisService,
		Sweeper:         sweeper,
		AnalysisHandler: handlers.NewAnalysisHandler(analysisService, storageManager.AnalysisStorage(), logger),
		SessionHandler:  handlers.NewSessionHandler(conversationService, logger),
		APIHandler:      handlers.NewAPIHandler(llmService, logger),
	}

	logger.Info().
		Str("storage", config.Storage.Type).
		Str("llm_provider", string(config.LLM.Provider)).
		Msg("Application initialized")

	return app, nil
}

func buildMarketDataClients(config *common.Config, logger arbor.ILogger) (*marketdata.CoinGeckoClient, *marketdata.YahooClient, *marketdata.NewsClient, *marketdata.EconomicClient, *marketdata.DefiLlamaClient) {
	md := config.MarketData

	timeout := time.Duration(0)
	if md.RequestTimeout != "" {
		parsed, err := time.ParseDuration(md.RequestTimeout)
		if err != nil {
			logger.Warn().Err(err).Str("request_timeout", md.RequestTimeout).Msg("Invalid market data timeout, using default")
		} else {
			timeout = parsed
		}
	}

	var coingeckoOpts []marketdata.CoinGeckoOption
	if timeout > 0 {
		coingeckoOpts = append(coingeckoOpts, marketdata.WithCoinGeckoTimeout(timeout))
	}
	if md.CoinGeckoBaseURL != "" {
		coingeckoOpts = append(coingeckoOpts, marketdata.WithCoinGeckoBaseURL(md.CoinGeckoBaseURL))
	}
	if md.CoinGeckoAPIKey != "" {
		coingeckoOpts = append(coingeckoOpts, marketdata.WithCoinGeckoAPIKey(md.CoinGeckoAPIKey))
	}
	if md.RateLimit > 0 {
		coingeckoOpts = append(coingeckoOpts, marketdata.WithCoinGeckoRateLimit(md.RateLimit))
	}
	crypto := marketdata.NewCoinGeckoClient(logger, coingeckoOpts...)

	yahoo := marketdata.NewYahooClient(logger)

	var newsOpts []marketdata.NewsOption
	if timeout > 0 {
		newsOpts = append(newsOpts, marketdata.WithNewsTimeout(timeout))
	}
	if md.NewsBaseURL != "" {
		newsOpts = append(newsOpts, marketdata.WithNewsBaseURL(md.NewsBaseURL))
	}
	news := marketdata.NewNewsClient(logger, newsOpts...)

	var economicOpts []marketdata.EconomicOption
	if timeout > 0 {
		economicOpts = append(economicOpts, marketdata.WithFredTimeout(timeout))
	}
	if md.FredBaseURL != "" {
		economicOpts = append(economicOpts, marketdata.WithFredBaseURL(md.FredBaseURL))
	}
	economic := marketdata.NewEconomicClient(md.FredAPIKey, logger, economicOpts...)

	var defiOpts []marketdata.DefiLlamaOption
	if timeout > 0 {
		defiOpts = append(defiOpts, marketdata.WithDefiLlamaTimeout(timeout))
	}
	if md.DefiLlamaBaseURL != "" {
		defiOpts = append(defiOpts, marketdata.WithDefiLlamaBaseURL(md.DefiLlamaBaseURL))
	}
	defi := marketdata.NewDefiLlamaClient(logger, defiOpts...)

	return crypto, yahoo, news, economic, defi
}

// Close shuts the application down: stop the sweep, wait for pending
// persistence, then release the LLM client and storage.
func (a *App) Close() {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
	if a.Analysis != nil {
		a.Analysis.Flush()
	}
	if a.LLM != nil {
		if err := a.LLM.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("LLM client close failed")
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Storage close failed")
		}
	}
	a.Logger.Info().Msg("Application closed")
}
