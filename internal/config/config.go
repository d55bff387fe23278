package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	DBPath string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	Model         string

	GenerationTimeout time.Duration

	// AuthTokens maps bearer tokens to owner ids, parsed from
	// AUTH_TOKENS="token1:alice,token2:bob".
	AuthTokens map[string]string
}

// Load reads configuration from the environment, with .env support.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8100"),
		DBPath:            getEnv("DATABASE_PATH", "secondbrain.db"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "http://localhost:11434/v1/"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		Model:             getEnv("MODEL", "llama3.1:8b"),
		GenerationTimeout: time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 30)) * time.Second,
		AuthTokens:        parseAuthTokens(getEnv("AUTH_TOKENS", "")),
	}
}

func parseAuthTokens(raw string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		token, owner, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || owner == "" {
			continue
		}
		tokens[token] = owner
	}
	return tokens
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
