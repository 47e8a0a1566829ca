package config

import "os"

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	UserCollection string
	APIKeySecret   string
	RedisAddr      string
	RedisPassword  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	VisionBackend  string // "gemini" or "moondream"
	GeminiAPIKey   string
	GeminiModel    string
	MoondreamKey   string
	STTServiceURL  string
	TTSServiceURL  string
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "vision_assist"),
		UserCollection: getenv("USER_COLLECTION", "users"),
		APIKeySecret:   getenv("API_KEY_SECRET", "default_secret"),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "assist-audio"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		VisionBackend:  getenv("VISION_BACKEND", "gemini"),
		GeminiAPIKey:   getenv("GEMINI_API_KEY", ""),
		GeminiModel:    getenv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		MoondreamKey:   getenv("MOON_DREAM_KEY", ""),
		STTServiceURL:  getenv("STT_SERVICE_URL", "http://stt-service:8001"),
		TTSServiceURL:  getenv("TTS_SERVICE_URL", "http://tts-service:8002"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
