package bootstrap

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	StaticDir string
	IndexHTML string

	SessionName string
	LocalURL    string

	TunnelEnabled      bool
	TunnelTarget       string
	TunnelLocalAddr    string
	TunnelRestartDelay time.Duration
	ShortenerURL       string
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":3000"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		StaticDir: getEnv("STATIC_DIR", "./public"),
		IndexHTML: getEnv("INDEX_HTML", "./public/index.html"),

		SessionName: getEnv("SESSION_NAME", "Classroom Session"),
		LocalURL:    getEnv("LOCAL_URL", "http://localhost:3000"),

		TunnelEnabled:      getEnv("TUNNEL_ENABLED", "true") == "true",
		TunnelTarget:       getEnv("TUNNEL_TARGET", "nokey@localhost.run"),
		TunnelLocalAddr:    getEnv("TUNNEL_LOCAL_ADDR", "127.0.0.1:3000"),
		TunnelRestartDelay: time.Duration(getEnvInt("TUNNEL_RESTART_DELAY_SECONDS", 5)) * time.Second,
		ShortenerURL:       getEnv("SHORTENER_URL", "https://is.gd/create.php"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
