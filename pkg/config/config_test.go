package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Data.Backend != "sqlite" {
		t.Errorf("Expected Data.Backend to be sqlite, got %s", cfg.Data.Backend)
	}

	if cfg.Database.MaxConns != 25 {
		t.Errorf("Expected DB MaxConns to be 25, got %d", cfg.Database.MaxConns)
	}

	if cfg.Sweep.Workers != 0 {
		t.Errorf("Expected Sweep.Workers to be 0, got %d", cfg.Sweep.Workers)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	// Set custom environment variables
	os.Setenv("ENV", "production")
	os.Setenv("DATA_BACKEND", "parquet")
	os.Setenv("DATA_DIR", "/var/lib/bars")
	os.Setenv("DB_MAX_CONNS", "50")
	os.Setenv("SWEEP_WORKERS", "8")
	os.Setenv("LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("ENV")
		os.Unsetenv("DATA_BACKEND")
		os.Unsetenv("DATA_DIR")
		os.Unsetenv("DB_MAX_CONNS")
		os.Unsetenv("SWEEP_WORKERS")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Data.Backend != "parquet" {
		t.Errorf("Expected Data.Backend to be parquet, got %s", cfg.Data.Backend)
	}

	if cfg.Data.Dir != "/var/lib/bars" {
		t.Errorf("Expected Data.Dir to be /var/lib/bars, got %s", cfg.Data.Dir)
	}

	if cfg.Database.MaxConns != 50 {
		t.Errorf("Expected DB MaxConns to be 50, got %d", cfg.Database.MaxConns)
	}

	if cfg.Sweep.Workers != 8 {
		t.Errorf("Expected Sweep.Workers to be 8, got %d", cfg.Sweep.Workers)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
}

func TestValidatePostgresRequiresURL(t *testing.T) {
	os.Setenv("DATA_BACKEND", "postgres")
	os.Unsetenv("DATABASE_URL")

	defer os.Unsetenv("DATA_BACKEND")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DATA_BACKEND=postgres without DATABASE_URL, got nil")
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateInvalidBackend(t *testing.T) {
	os.Setenv("DATA_BACKEND", "mongodb")
	defer os.Unsetenv("DATA_BACKEND")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DATA_BACKEND is invalid, got nil")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}
