package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            int
	DataDir         string
	TokenBudget     int
	LogLevel        string
	CredentialsPath string
	SpreadsheetID   string
	SheetName       string
	DatabaseURL     string
	NatsURL         string
	NatsToken       string
	MCPEnabled      bool
}

func Load() Config {
	return Config{
		Port:            envInt("PORT", 3000),
		DataDir:         envStr("DATA_DIR", "public"),
		TokenBudget:     envInt("TOKEN_BUDGET", 800),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		CredentialsPath: envStr("GOOGLE_SHEETS_CREDENTIALS", "credentials.json"),
		SpreadsheetID:   envStr("SPREADSHEET_ID", ""),
		SheetName:       envStr("SHEET_NAME", "Conversation Logs"),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		MCPEnabled:      envBool("MCP_ENABLED", true),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
