package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type OpenAI struct {
	APIKey string
	APIURL string
	Model  string
}

type Instagram struct {
	AccessToken  string
	AccountID    string
	GraphBaseURL string
	PollInterval int // seconds between container status checks
	PollTimeout  int // seconds before giving up on a container
}

type Config struct {
	Port        string
	PostgresURI string
	RedisURI    string
	SecretKey   string
	CookieName  string
	R2          R2
	OpenAI      OpenAI
	Instagram   Instagram
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", "127.0.0.1:6379"),
		SecretKey:   getEnv("SECRET_KEY", ""),
		CookieName:  getEnv("COOKIE_NAME", "oweru_session"),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		OpenAI: OpenAI{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			APIURL: getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
			Model:  getEnv("OPENAI_MODEL", "gpt-4"),
		},
		Instagram: Instagram{
			AccessToken:  getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
			AccountID:    getEnv("INSTAGRAM_ACCOUNT_ID", ""),
			GraphBaseURL: getEnv("INSTAGRAM_GRAPH_BASE_URL", "https://graph.facebook.com/v18.0"),
			PollInterval: getEnvInt("INSTAGRAM_POLL_INTERVAL", 5),
			PollTimeout:  getEnvInt("INSTAGRAM_POLL_TIMEOUT", 120),
		},
	}
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
