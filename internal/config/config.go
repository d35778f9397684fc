package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// Storage: "memory" keeps everything in-process (development defaults,
	// known to grow without bound); "mysql"/"sqlite" select the gorm store.
	StoreDriver string
	DBDSN       string

	JWTSecret      string
	AllowedOrigins []string

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	ChatRatePerMinute int

	// Agent
	MCPServerURL  string
	AgentTimeout  time.Duration
	AgentMaxTurns int

	// AI provider
	AIProvider    string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OllamaBaseURL string
	OllamaModel   string
	JudgeModel    string

	// rabbitMQ (async evaluation; empty URL disables it)
	RabbitURL   string
	RabbitQueue string
}

func Load() Config {
	addr := getenvDefault("HTTP_ADDR", ":8000")

	storeDriver := getenvDefault("STORE_DRIVER", "memory")

	// DSN demo：
	// app:apppass@tcp(127.0.0.1:3306)/techstore_support?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "app:apppass@tcp(127.0.0.1:3306)/techstore_support?charset=utf8mb4&parseTime=true&loc=Local"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	origins := strings.Split(getenvDefault("ALLOWED_ORIGINS", "http://localhost:3000"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	ratePerMinute := 0
	if v := os.Getenv("CHAT_RATE_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ratePerMinute = n
		}
	}

	agentTimeout := 60 * time.Second
	if v := os.Getenv("AGENT_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			agentTimeout = time.Duration(n) * time.Second
		}
	}

	maxTurns := 8
	if v := os.Getenv("AGENT_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxTurns = n
		}
	}

	return Config{
		HTTPAddr: addr,

		StoreDriver: storeDriver,
		DBDSN:       dsn,

		JWTSecret:      secret,
		AllowedOrigins: origins,

		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		ChatRatePerMinute: ratePerMinute,

		MCPServerURL:  os.Getenv("MCP_SERVER_URL"),
		AgentTimeout:  agentTimeout,
		AgentMaxTurns: maxTurns,

		AIProvider:    getenvDefault("AI_PROVIDER", "openai"),
		OpenAIBaseURL: getenvDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OllamaBaseURL: getenvDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getenvDefault("OLLAMA_MODEL", "llama3:latest"),
		JudgeModel:    getenvDefault("JUDGE_MODEL", "gpt-4o-mini"),

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: getenvDefault("RABBIT_QUEUE", "evaluation_jobs"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
