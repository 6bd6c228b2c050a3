package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port string

	// Chat model (OpenAI-compatible) configuration
	ChatAPIKey      string
	ChatBaseURL     string
	ChatModel       string
	ChatMaxTokens   int
	ChatTemperature float64

	// Voice API configuration (TTS/ASR); optional, voice features are
	// disabled when the key is empty
	VoiceAPIKey   string
	VoiceBaseURL  string
	TTSVoiceType  string
	TTSEncoding   string
	TTSSpeedRatio float64

	// Storage
	DataPath        string
	StaticAudioPath string
	TempAudioPath   string
	SessionPath     string

	// Session and memory management
	SessionMaxHistory  int
	SessionExpiryHours int

	// Per-collaborator dispatch timeouts
	TaskTimeout     time.Duration
	SystemTimeout   time.Duration
	ScheduleTimeout time.Duration
	ChatTimeout     time.Duration

	// Analytics
	AnalyticsSampleCap int

	// Safe mode restricts the application launcher to its allowlist
	EnableSafeMode bool
}

// TasksFile returns the path of the task store file.
func (c *Config) TasksFile() string {
	return filepath.Join(c.DataPath, "tasks.json")
}

// ScheduleFile returns the path of the schedule store file.
func (c *Config) ScheduleFile() string {
	return filepath.Join(c.DataPath, "schedule.json")
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		ChatAPIKey:         getEnv("CHAT_API_KEY", ""),
		ChatBaseURL:        getEnv("CHAT_BASE_URL", "https://openrouter.ai/api/v1"),
		ChatModel:          getEnv("CHAT_MODEL", "deepseek/deepseek-r1:free"),
		ChatMaxTokens:      getEnvInt("CHAT_MAX_TOKENS", 2000),
		ChatTemperature:    getEnvFloat("CHAT_TEMPERATURE", 0.53),
		VoiceAPIKey:        getEnv("VOICE_API_KEY", ""),
		VoiceBaseURL:       getEnv("VOICE_BASE_URL", "https://openai.qiniu.com/v1"),
		TTSVoiceType:       getEnv("TTS_VOICE_TYPE", "qiniu_en_female_wwxkjx"),
		TTSEncoding:        getEnv("TTS_ENCODING", "mp3"),
		TTSSpeedRatio:      getEnvFloat("TTS_SPEED_RATIO", 1.0),
		DataPath:           getEnv("DATA_PATH", "./data"),
		StaticAudioPath:    getEnv("STATIC_AUDIO_PATH", "./static/audio"),
		TempAudioPath:      getEnv("TEMP_AUDIO_PATH", "./temp"),
		SessionPath:        getEnv("SESSION_PATH", "./data/sessions"),
		SessionMaxHistory:  getEnvInt("SESSION_MAX_HISTORY", 50),
		SessionExpiryHours: getEnvInt("SESSION_EXPIRY_HOURS", 72),
		TaskTimeout:        getEnvSeconds("TASK_TIMEOUT_SECONDS", 10),
		SystemTimeout:      getEnvSeconds("SYSTEM_TIMEOUT_SECONDS", 5),
		ScheduleTimeout:    getEnvSeconds("SCHEDULE_TIMEOUT_SECONDS", 5),
		ChatTimeout:        getEnvSeconds("CHAT_TIMEOUT_SECONDS", 15),
		AnalyticsSampleCap: getEnvInt("ANALYTICS_SAMPLE_CAP", 1000),
		EnableSafeMode:     getEnvBool("ENABLE_SAFE_MODE", true),
	}

	// Validate required configuration
	if cfg.ChatAPIKey == "" {
		return nil, fmt.Errorf("CHAT_API_KEY is required")
	}

	// Ensure directories exist
	for _, dir := range []string{cfg.DataPath, cfg.StaticAudioPath, cfg.TempAudioPath, cfg.SessionPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// Helper functions for getting environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Second
}
