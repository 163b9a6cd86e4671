package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Root             string
	SourceLanguage   string
	TargetLanguage   string
	SkipUntranslated bool
	WorkerCount      int
	LogLevel         string
	DatabaseURL      string
	Neo4jURI         string
	Neo4jUser        string
	Neo4jPassword    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		Root:             getEnv("KVLOC_ROOT", "."),
		SourceLanguage:   getEnv("KVLOC_SOURCE_LANGUAGE", "english"),
		TargetLanguage:   getEnv("KVLOC_TARGET_LANGUAGE", ""),
		SkipUntranslated: getEnvBool("KVLOC_SKIP_UNTRANSLATED", false),
		WorkerCount:      getEnvInt("KVLOC_WORKER_COUNT", 4),
		LogLevel:         getEnv("KVLOC_LOG_LEVEL", "info"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/kvloc?sslmode=disable"),
		Neo4jURI:         getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:        getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:    getEnv("NEO4J_PASSWORD", "password"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
