package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setStorageEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_PATH", filepath.Join(dir, "data"))
	t.Setenv("STATIC_AUDIO_PATH", filepath.Join(dir, "static"))
	t.Setenv("TEMP_AUDIO_PATH", filepath.Join(dir, "temp"))
	t.Setenv("SESSION_PATH", filepath.Join(dir, "sessions"))
}

func TestLoad(t *testing.T) {
	setStorageEnv(t)

	// Test with missing API key
	os.Unsetenv("CHAT_API_KEY")
	if _, err := Load(); err == nil {
		t.Error("Expected error when CHAT_API_KEY is missing")
	}

	// Test with valid API key
	t.Setenv("CHAT_API_KEY", "test-api-key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error with valid API key, got: %v", err)
	}

	if cfg.ChatAPIKey != "test-api-key" {
		t.Errorf("Expected ChatAPIKey to be 'test-api-key', got: %s", cfg.ChatAPIKey)
	}
}

func TestConfigDefaults(t *testing.T) {
	setStorageEnv(t)
	t.Setenv("CHAT_API_KEY", "test-key")

	os.Unsetenv("PORT")
	os.Unsetenv("CHAT_BASE_URL")
	os.Unsetenv("TASK_TIMEOUT_SECONDS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got: %s", cfg.Port)
	}

	if cfg.ChatBaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("Expected default chat base URL, got: %s", cfg.ChatBaseURL)
	}

	if cfg.TaskTimeout != 10*time.Second {
		t.Errorf("Expected default task timeout 10s, got: %v", cfg.TaskTimeout)
	}

	if cfg.ChatTimeout != 15*time.Second {
		t.Errorf("Expected default chat timeout 15s, got: %v", cfg.ChatTimeout)
	}

	if cfg.AnalyticsSampleCap != 1000 {
		t.Errorf("Expected default sample cap 1000, got: %d", cfg.AnalyticsSampleCap)
	}

	if !cfg.EnableSafeMode {
		t.Error("Expected safe mode to be enabled by default")
	}
}

func TestSafeModeOverride(t *testing.T) {
	setStorageEnv(t)
	t.Setenv("CHAT_API_KEY", "test-key")
	t.Setenv("ENABLE_SAFE_MODE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.EnableSafeMode {
		t.Error("Expected safe mode to be disabled via ENABLE_SAFE_MODE=false")
	}
}

func TestConfigStoragePaths(t *testing.T) {
	setStorageEnv(t)
	t.Setenv("CHAT_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	for _, dir := range []string{cfg.DataPath, cfg.StaticAudioPath, cfg.TempAudioPath, cfg.SessionPath} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("Expected directory %s to exist: %v", dir, err)
		}
	}

	if filepath.Dir(cfg.TasksFile()) != cfg.DataPath {
		t.Errorf("Expected tasks file under data path, got: %s", cfg.TasksFile())
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_KEY", "test-value")

	result := getEnv("TEST_KEY", "default")
	if result != "test-value" {
		t.Errorf("Expected 'test-value', got: %s", result)
	}

	result = getEnv("NON_EXISTENT_KEY", "default")
	if result != "default" {
		t.Errorf("Expected 'default', got: %s", result)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")

	result := getEnvInt("TEST_INT", 0)
	if result != 42 {
		t.Errorf("Expected 42, got: %d", result)
	}

	result = getEnvInt("NON_EXISTENT_INT", 10)
	if result != 10 {
		t.Errorf("Expected 10, got: %d", result)
	}

	t.Setenv("INVALID_INT", "not-a-number")
	result = getEnvInt("INVALID_INT", 5)
	if result != 5 {
		t.Errorf("Expected default value 5 for invalid int, got: %d", result)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "3.14")

	result := getEnvFloat("TEST_FLOAT", 0.0)
	if result != 3.14 {
		t.Errorf("Expected 3.14, got: %f", result)
	}

	result = getEnvFloat("NON_EXISTENT_FLOAT", 1.0)
	if result != 1.0 {
		t.Errorf("Expected 1.0, got: %f", result)
	}
}
