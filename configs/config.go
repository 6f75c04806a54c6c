package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Delegate struct {
	ServiceName string
	BaseURL     string
	APIKey      string
	Marker      string
}

type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	PostgresURI        string
	RedisURI           string
	FrontendURL        string
	AgentURL           string
	Dispatcher         string
	PollInterval       string
	R2                 R2
	Delegate           Delegate
	SecretKey          string
	CookieName         string
}

func LoadConfig() *Config {
	return &Config{
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", ""),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		AgentURL:           getEnv("AGENT_URL", "http://localhost:4500"),
		Dispatcher:         getEnv("DISPATCHER", "poller"),
		PollInterval:       getEnv("POLL_INTERVAL", "@every 0h1m0s"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Delegate: Delegate{
			ServiceName: getEnv("DELEGATE_SERVICE_NAME", "postiz"),
			BaseURL:     getEnv("DELEGATE_URL", ""),
			APIKey:      getEnv("DELEGATE_API_KEY", ""),
			Marker:      getEnv("DELEGATE_MARKER", "managed"),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "postpilot_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
