package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"taxitalk/internal/agent"
	"taxitalk/internal/channel"
	"taxitalk/internal/config"
	"taxitalk/internal/embedding"
	"taxitalk/internal/eventbus"
	"taxitalk/internal/llm"
	"taxitalk/internal/memory"
	"taxitalk/internal/observability"
	"taxitalk/internal/query"
	"taxitalk/internal/security"
	"taxitalk/internal/warehouse"
)

// App wires configuration, the warehouse, the model providers, the semantic
// index and the channels into a running assistant.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg       *config.Config
	bus       *eventbus.Bus
	keyStore  *security.KeyStore
	sanitizer *security.Sanitizer
	engine    warehouse.Engine
	store     memory.Store
	sessions  *agent.SessionManager
	chanMgr   *channel.Manager

	metricsSrv *http.Server
}

func NewApp() *App {
	return &App{
		bus: eventbus.New(),
	}
}

// startup loads configuration and brings every component up. Missing
// required configuration is fatal here; per-turn failures never are.
func (a *App) startup(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.ctx = ctx
	a.cancel = cancel

	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		log.Printf("[app] failed to load config, using defaults: %v", err)
		cfg = config.Defaults()
	}
	config.ApplyEnv(cfg)
	a.cfg = cfg

	ks, err := security.NewKeyStore(nil)
	if err != nil {
		log.Printf("[app] keyring unavailable: %v", err)
	} else {
		a.keyStore = ks
		if err := a.resolveSecrets(); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if cfg.Security.PIIFiltering.Enabled {
		a.sanitizer = security.NewSanitizer(cfg.Security.PIIFiltering)
	}

	// Warehouse. The schema read doubles as a connectivity check so a bad
	// path or empty table fails before the first question.
	engine, err := newEngine(cfg.Warehouse)
	if err != nil {
		return fmt.Errorf("warehouse: %w", err)
	}
	a.engine = engine
	columns, err := engine.Columns(ctx)
	if err != nil {
		return fmt.Errorf("warehouse schema: %w", err)
	}
	log.Printf("[app] warehouse ready: %s (%d columns)", cfg.Warehouse.Table, len(columns))
	systemPrompt := agent.BuildSystemPrompt(cfg.Warehouse.Table, columns)

	// Semantic index.
	embedder, err := embedding.NewEngine(ctx, embedding.Config{
		Provider:       cfg.Memory.EmbedProvider,
		GenAIAPIKey:    embeddingAPIKey(cfg),
		GenAIModel:     cfg.Memory.EmbedModel,
		OllamaEndpoint: cfg.Memory.OllamaEndpoint,
		OllamaModel:    cfg.Memory.EmbedModel,
	})
	if err != nil {
		return fmt.Errorf("embedding engine: %w", err)
	}
	store, err := memory.NewVectorStore(cfg.Memory.Path, cfg.Memory.Collection, embedder)
	if err != nil {
		return fmt.Errorf("memory store: %w", err)
	}
	a.store = store

	// Model provider with optional fallback.
	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}
	if cfg.FallbackLLM != nil && cfg.FallbackLLM.APIKey != "" {
		if fallback, err := llm.NewProvider(ctx, *cfg.FallbackLLM); err == nil {
			provider = llm.NewFallbackProvider(provider, fallback)
		} else {
			log.Printf("[app] fallback provider unavailable: %v", err)
		}
	}

	runner := query.NewRunner(engine, cfg.Warehouse.RowLimit)
	a.sessions = agent.NewSessionManager(func() *agent.Orchestrator {
		o := agent.New(cfg.Agent, provider, runner, store, a.bus, systemPrompt, cfg.LLM.MaxRetries)
		if a.sanitizer != nil {
			o.SetFilter(a.sanitizer)
		}
		return o
	})

	if cfg.Metrics.Enabled {
		a.startMetrics(cfg.Metrics.Addr)
	}

	a.chanMgr = channel.NewManager()
	a.chanMgr.Register(channel.NewConsoleChannel())
	if cfg.Channels.Telegram != nil && cfg.Channels.Telegram.Token != "" {
		a.chanMgr.Register(channel.NewTelegramChannel(channel.TelegramConfig{
			Token:      cfg.Channels.Telegram.Token,
			AllowedIDs: cfg.Channels.Telegram.AllowedIDs,
		}))
	}
	a.attachChannels()
	return a.chanMgr.StartAll(ctx)
}

// resolveSecrets expands keyring: references in credential fields.
func (a *App) resolveSecrets() error {
	var err error
	if a.cfg.LLM.APIKey, err = a.keyStore.Resolve(a.cfg.LLM.APIKey); err != nil {
		return err
	}
	if a.cfg.FallbackLLM != nil {
		if a.cfg.FallbackLLM.APIKey, err = a.keyStore.Resolve(a.cfg.FallbackLLM.APIKey); err != nil {
			return err
		}
	}
	if a.cfg.Channels.Telegram != nil {
		if a.cfg.Channels.Telegram.Token, err = a.keyStore.Resolve(a.cfg.Channels.Telegram.Token); err != nil {
			return err
		}
	}
	return nil
}

// attachChannels routes every inbound question to the per-chat orchestrator
// and sends the reply back through the channel it arrived on.
func (a *App) attachChannels() {
	for name := range a.chanMgr.List() {
		ch, _ := a.chanMgr.Get(name)
		ch.OnMessage(func(msg channel.InboundMessage) {
			go a.handleMessage(ch, msg)
		})
	}
}

func (a *App) handleMessage(ch channel.Channel, msg channel.InboundMessage) {
	session := a.sessions.Session(msg.ChatID)

	var reply string
	switch strings.TrimSpace(msg.Text) {
	case "/clear":
		if err := session.Clear(a.ctx); err != nil {
			log.Printf("[app] clear failed for chat %s: %v", msg.ChatID, err)
			reply = "No pude borrar la memoria. Intenta de nuevo."
		} else {
			if a.sanitizer != nil {
				a.sanitizer.Reset()
			}
			reply = "Memoria borrada. Empezamos de cero."
		}
	case "/memoria":
		reply = fmt.Sprintf("Tengo %d interacciones guardadas.", session.MemoryCount(a.ctx))
	default:
		reply = session.Answer(a.ctx, msg.Text)
	}

	if err := ch.Send(a.ctx, channel.OutboundMessage{ChatID: msg.ChatID, Text: reply}); err != nil {
		log.Printf("[app] send failed on %s: %v", ch.Name(), err)
	}
}

func (a *App) startMetrics(addr string) {
	reg := prometheus.NewRegistry()
	observability.NewRecorder(observability.NewMetrics(reg)).Attach(a.bus)

	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler(reg))
	a.metricsSrv = &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Printf("[app] metrics listening on %s", addr)
		if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[app] metrics server: %v", err)
		}
	}()
}

func (a *App) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.chanMgr != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.chanMgr.StopAll(ctx)
	}
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metricsSrv.Shutdown(ctx)
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.engine != nil {
		a.engine.Close()
	}
}

func newEngine(cfg config.WarehouseConfig) (warehouse.Engine, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return warehouse.NewSQLiteEngine(cfg.Path, cfg.Table)
	default:
		return nil, fmt.Errorf("unsupported warehouse driver: %s", cfg.Driver)
	}
}

// embeddingAPIKey prefers a dedicated GEMINI_API_KEY and falls back to the
// main provider key when that provider is already Gemini.
func embeddingAPIKey(cfg *config.Config) string {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	if cfg.LLM.Provider == "gemini" {
		return cfg.LLM.APIKey
	}
	return ""
}
