package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/techstore/support-api/internal/agent"
	"github.com/techstore/support-api/internal/ai"
	"github.com/techstore/support-api/internal/chat"
	"github.com/techstore/support-api/internal/config"
	"github.com/techstore/support-api/internal/db"
	"github.com/techstore/support-api/internal/eval"
	"github.com/techstore/support-api/internal/guard"
	"github.com/techstore/support-api/internal/httpapi"
	"github.com/techstore/support-api/internal/httpapi/handlers"
	"github.com/techstore/support-api/internal/mcptools"
	"github.com/techstore/support-api/internal/store/gormstore"
	"github.com/techstore/support-api/internal/store/memstore"
	"github.com/techstore/support-api/internal/store/rabbitmq"
	"github.com/techstore/support-api/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	var conversations chat.ConversationStore
	var evals eval.Store
	switch strings.ToLower(cfg.StoreDriver) {
	case "", "memory":
		ms := memstore.New()
		conversations, evals = ms, ms
	case "mysql", "sqlite":
		gdb := db.Connect(cfg.StoreDriver, cfg.DBDSN)
		gs := gormstore.New(gdb)
		if err := gs.AutoMigrate(); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		conversations, evals = gs, gs
	default:
		log.Fatalf("unsupported STORE_DRIVER=%q", cfg.StoreDriver)
	}

	var provider ai.Provider
	switch strings.ToLower(cfg.AIProvider) {
	case "", "openai":
		provider = ai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "ollama":
		provider = ai.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel)
	default:
		log.Fatalf("unsupported AI_PROVIDER=%q", cfg.AIProvider)
	}

	var tools agent.ToolSource
	if cfg.MCPServerURL != "" {
		tools = mcptools.NewSource(cfg.MCPServerURL)
		log.Printf("MCP tools enabled endpoint=%s", cfg.MCPServerURL)
	} else {
		log.Printf("MCP_SERVER_URL not set, agent runs without tools")
	}

	ag := agent.New(provider, tools, cfg.AgentTimeout, cfg.AgentMaxTurns)
	chatSvc := chat.NewService(guard.NewDetector(), ag, conversations)

	// The judge always runs on an OpenAI-compatible endpoint because it
	// needs JSON-mode responses.
	judge := eval.NewJudge(ai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.JudgeModel))

	var rds *redisstore.Store
	if cfg.RedisAddr != "" {
		rds = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rds.Close()
	}

	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatalf("rabbit publisher: %v", err)
		}
		publisher = p
		defer publisher.Close()
	}

	h := handlers.NewHandler(cfg, chatSvc, conversations, evals, judge, publisher)
	r := httpapi.NewRouter(cfg, h, rds)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server listening addr=%s store=%s provider=%s", cfg.HTTPAddr, cfg.StoreDriver, cfg.AIProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
