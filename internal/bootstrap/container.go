package bootstrap

import (
	"context"
	"fmt"

	"ai-meetnotes/internal/cache"
	"ai-meetnotes/internal/config"
	"ai-meetnotes/internal/constant"
	"ai-meetnotes/internal/controller"
	"ai-meetnotes/internal/handler"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/internal/pkg/serverutils"
	"ai-meetnotes/internal/repository/memory"
	"ai-meetnotes/internal/repository/unitofwork"
	"ai-meetnotes/internal/service"
	"ai-meetnotes/internal/websocket"
	"ai-meetnotes/pkg/ai/assembler"
	"ai-meetnotes/pkg/ai/commit"
	"ai-meetnotes/pkg/ai/mention"
	"ai-meetnotes/pkg/ai/pipeline"
	"ai-meetnotes/pkg/ai/prompt"
	"ai-meetnotes/pkg/ai/quota"
	"ai-meetnotes/pkg/ai/stream"
	"ai-meetnotes/pkg/analytics"
	"ai-meetnotes/pkg/events"
	"ai-meetnotes/pkg/llm"
	"ai-meetnotes/pkg/llm/factory"
	"ai-meetnotes/pkg/llm/tokens"
	pktNats "ai-meetnotes/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const analyticsDurable = "analytics-log-sink"

type Container struct {
	// Controllers
	SessionController controller.ISessionController
	ChatController    controller.IChatController
	EnhanceController controller.IEnhanceController
	SearchController  controller.ISearchController

	// Services, also driven directly by notectl
	SessionService service.ISessionService
	ChatService    service.IChatService
	EnhanceService service.IEnhanceService
	SearchService  service.ISearchService

	// Background Services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Broker fans out every live-state change
	Broker *memory.Broker

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub

	Logger logger.ILogger

	natsSub *pktNats.Subscriber
	closers []func()
}

// Options replace infrastructure normally built from config. Tests use them.
type Options struct {
	Logger      logger.ILogger
	LLMProvider llm.LLMProvider
	Redis       *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config, opts Options) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := opts.Logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}
	serverutils.SetJwtSecret(cfg.App.JwtSecret)

	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// NATS carries analytics; without it events are only logged.
	var analyticsPublisher analytics.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			analyticsPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
		} else {
			c.natsSub = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	rdb := opts.Redis
	if rdb == nil && cfg.App.RedisURL != "" {
		rdb = connectRedis(cfg.App.RedisURL, sysLogger)
		if rdb != nil {
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	var listCache cache.SessionListCache
	if rdb != nil {
		listCache = cache.NewRedisSessionListCache(rdb, cfg.Cache.SessionListTTL)
	} else {
		listCache = cache.NewLocalSessionListCache(cfg.Cache.SessionListTTL)
	}

	// 4. Live state
	broker := memory.NewBroker()
	sessions := memory.NewSessionStore(broker)
	messages := memory.NewMessageStore(broker)
	streams := memory.NewStreamStates(broker)
	ongoing := memory.NewOngoingSession()

	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	c.closers = append(c.closers, wsHub.Attach(broker))

	// 5. AI stack
	llmProvider := opts.LLMProvider
	if llmProvider == nil {
		p, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.BaseURL, cfg.Keys.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("init llm provider: %w", err)
		}
		llmProvider = p
		sysLogger.Info("BOOTSTRAP", "Using LLM provider", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"model":    cfg.Ai.LLMModel,
		})
	}

	data := service.NewDataStore(uowFactory, cfg)
	renderer := prompt.NewRenderer(constant.PromptTemplates())
	resolver := mention.NewResolver(data, sysLogger)

	var assemblerOpts []assembler.Option
	if cfg.Ai.WordsTokenBudget > 0 {
		counter, err := tokens.NewTiktokenCounter(cfg.Ai.TokenEncoding)
		if err != nil {
			return nil, fmt.Errorf("init token counter: %w", err)
		}
		assemblerOpts = append(assemblerOpts, assembler.WithWordsBudget(counter, cfg.Ai.WordsTokenBudget))
	}
	promptAssembler := assembler.New(data, renderer, resolver, sysLogger, assemblerOpts...)
	orchestrator := stream.NewOrchestrator(llmProvider, cfg.Ai.StreamTimeout, sysLogger)

	tracker := analytics.NewBusTracker(analyticsPublisher, sysLogger)
	guard := quota.NewGuard(cfg.Ai.ChatMessageLimit, data, tracker, broker, sysLogger)

	publisherService := service.NewPublisherService(pubSub, cfg.App.InvalidationTopic)
	consumerService := service.NewConsumerService(pubSub, cfg.App.InvalidationTopic, listCache, sysLogger)

	committer := commit.NewCommitter(data, data, sessions, publisherService, sysLogger)

	chatPipeline := pipeline.NewChatPipeline(pipeline.ChatDeps{
		Assembler:    promptAssembler,
		Orchestrator: orchestrator,
		Committer:    committer,
		Quota:        guard,
		Tracker:      tracker,
		Chats:        data,
		Messages:     messages,
		Sessions:     sessions,
		Streams:      streams,
		Logger:       sysLogger,
	})
	enhancePipeline := pipeline.NewEnhancePipeline(pipeline.EnhanceDeps{
		Source:       data,
		Renderer:     renderer,
		Orchestrator: orchestrator,
		Committer:    committer,
		Tracker:      tracker,
		Sessions:     sessions,
		Streams:      streams,
		Logger:       sysLogger,
	})

	// 6. Services
	sessionService := service.NewSessionService(uowFactory, data, sessions, messages, ongoing, publisherService, listCache, sysLogger)
	chatService := service.NewChatService(chatPipeline, data, sessions, messages, broker, cfg.Ai.ChatMessageLimit)
	enhanceService := service.NewEnhanceService(enhancePipeline, data, sessions, sysLogger)
	searchService := service.NewSearchService(data, sysLogger)

	// 7. Controllers
	c.SessionController = controller.NewSessionController(sessionService)
	c.ChatController = controller.NewChatController(chatService)
	c.EnhanceController = controller.NewEnhanceController(enhanceService)
	c.SearchController = controller.NewSearchController(searchService)
	c.RealtimeHandler = handler.NewRealtimeHandler(wsHub, wsLogger)
	c.WebSocketHub = wsHub
	c.SessionService = sessionService
	c.ChatService = chatService
	c.EnhanceService = enhanceService
	c.SearchService = searchService
	c.ConsumerService = consumerService
	c.Broker = broker

	return c, nil
}

// Start launches the background workers. They stop when ctx ends.
func (c *Container) Start(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start cache invalidation consumer: %w", err)
	}

	go c.WebSocketHub.Run(ctx)

	if c.natsSub != nil {
		subject := "events." + events.AnalyticsPrefix + ">"
		if err := c.natsSub.Subscribe(ctx, subject, analyticsDurable, analytics.LogSink(c.Logger)); err != nil {
			c.Logger.Warn("BOOTSTRAP", "Analytics sink not subscribed", map[string]interface{}{
				"subject": subject,
				"error":   err.Error(),
			})
		}
	}
	return nil
}

// Close waits for running enhancements, then releases connections.
func (c *Container) Close() {
	c.EnhanceService.Wait()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func connectRedis(url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unreachable, falling back to single-instance mode", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
