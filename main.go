package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/restaurant-assistant/agent/agents/orchestrator"
	"github.com/tanpawarit/restaurant-assistant/agent/agents/roster"
	contractx "github.com/tanpawarit/restaurant-assistant/agent/contract"
	"github.com/tanpawarit/restaurant-assistant/agent/dispatch"
	"github.com/tanpawarit/restaurant-assistant/agent/knowledge"
	llmx "github.com/tanpawarit/restaurant-assistant/agent/llm"
	promptx "github.com/tanpawarit/restaurant-assistant/agent/prompt"
	statex "github.com/tanpawarit/restaurant-assistant/agent/state"
	toolx "github.com/tanpawarit/restaurant-assistant/agent/tool"
	configx "github.com/tanpawarit/restaurant-assistant/pkg/config"
	_ "github.com/tanpawarit/restaurant-assistant/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/restaurant-assistant/pkg/openrouter"
	qstashx "github.com/tanpawarit/restaurant-assistant/pkg/qstash"
	"github.com/tanpawarit/restaurant-assistant/restaurant"
	"github.com/tanpawarit/restaurant-assistant/restaurant/seed"
	"github.com/tanpawarit/restaurant-assistant/restaurant/sqlstore"
)

type AppConfig struct {
	DataStore    string `envconfig:"DATA_STORE" default:"memory"`
	SessionStore string `envconfig:"SESSION_STORE" default:"memory"`
	SeedFile     string `envconfig:"SEED_FILE" default:"data/seed.yaml"`
	MetricsAddr  string `envconfig:"METRICS_ADDR"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	store, closeStore := mustDataStore(ctx, *appCfg)
	defer closeStore()
	mustSeed(ctx, store, appCfg.SeedFile)

	kb := mustKnowledge(*llmCfg, store)

	deps := toolx.Deps{Store: store, Knowledge: kb}
	if qstashCfg := configx.MustNew[qstashx.Config]("QSTASH"); qstashCfg.Enabled() {
		deps.Notifier = qstashx.MustNew(*qstashCfg)
	}
	catalog, err := toolx.NewCatalog(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("build tool catalog")
	}

	models := func(ctx context.Context, kind contractx.AgentKind) (einomodel.ToolCallingChatModel, error) {
		cfg := llmCfg.OpenRouterFor(kind)
		return cfg.New(ctx)
	}
	agents, err := roster.New(ctx, roster.Definitions, catalog, promptx.LoadPromptSet(), models)
	if err != nil {
		log.Fatal().Err(err).Msg("build agent roster")
	}

	loop := dispatch.New(agents, catalog, *configx.MustNew[dispatch.Config]("ASSISTANT"))
	sessions, closeSessions := mustSessionStore(*appCfg)
	defer closeSessions()

	assistant, err := orchestrator.New(sessions, loop, *configx.MustNew[orchestrator.Config]("ASSISTANT"))
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	if appCfg.MetricsAddr != "" {
		go serveMetrics(appCfg.MetricsAddr)
	}

	repl(ctx, assistant)
}

func mustDataStore(ctx context.Context, cfg AppConfig) (restaurant.Store, func()) {
	switch strings.ToLower(cfg.DataStore) {
	case "memory", "":
		return restaurant.NewMemoryStore(), func() {}
	case "sql":
		dbCfg := configx.MustNew[sqlstore.Config]("DATABASE")
		db, err := sqlstore.Open(*dbCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		store := sqlstore.New(db)
		if err := store.CreateSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("create database schema")
		}
		return store, func() { _ = store.Close() }
	default:
		log.Fatal().Str("data_store", cfg.DataStore).Msg("unknown data store")
		return nil, nil
	}
}

// mustSeed loads the seed file into an empty store only.
func mustSeed(ctx context.Context, store restaurant.Store, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	_, err := store.GetInfo(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, restaurant.ErrNotFound) {
		log.Fatal().Err(err).Msg("check restaurant data")
	}
	stats, err := seed.LoadFile(ctx, store, path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("load seed data")
	}
	log.Info().
		Int("categories", stats.Categories).
		Int("items", stats.Items).
		Int("offers", stats.Offers).
		Int("faqs", stats.FAQs).
		Msg("seed data loaded")
}

func mustKnowledge(llmCfg llmx.Config, store restaurant.Store) *knowledge.Base {
	cfg := configx.MustNew[knowledge.Config]("KNOWLEDGE")

	var opts []knowledge.Option
	if cfg.Embedder == knowledge.EmbedderOpenAI {
		client := openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.AgentInformation))
		if client == nil {
			log.Fatal().Msg("llm api key is required for the openai embedder")
		}
		embedder, err := knowledge.NewOpenAIEmbedder(client, cfg.EmbeddingModel)
		if err != nil {
			log.Fatal().Err(err).Msg("build embedder")
		}
		opts = append(opts, knowledge.WithEmbedder(embedder))
	}

	kb, err := knowledge.New(store, *cfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("build knowledge base")
	}
	return kb
}

func mustSessionStore(cfg AppConfig) (statex.Store, func()) {
	switch strings.ToLower(cfg.SessionStore) {
	case "memory", "":
		return statex.NewMemoryStore(), func() {}
	case "redis":
		redisCfg := configx.MustNew[statex.RedisConfig]("REDIS")
		client := statex.NewRedisClient(*redisCfg)
		store, err := statex.NewRedisStore(client,
			statex.WithKeyPrefix(redisCfg.KeyPrefix),
			statex.WithTTL(redisCfg.TTL),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("build redis session store")
		}
		return store, func() { _ = client.Close() }
	default:
		log.Fatal().Str("session_store", cfg.SessionStore).Msg("unknown session store")
		return nil, nil
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}

func repl(ctx context.Context, assistant *orchestrator.Orchestrator) {
	fmt.Println("Welcome to Poligon Smaków! Type /reset to start over, /quit to leave.")

	var token string
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "/quit", "/exit":
			return
		case "/reset":
			if err := assistant.Reset(ctx, token); err != nil {
				log.Error().Err(err).Msg("reset session")
			}
			token = ""
			fmt.Println("Conversation cleared.")
			continue
		}

		reply, err := assistant.HandleMessage(ctx, token, text)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("handle message")
			fmt.Println("I'm sorry, something went wrong on my side. Please try again.")
			continue
		}
		token = reply.Token
		fmt.Printf("[%s] %s\n", reply.Agent, reply.Text)
	}
}
