package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "negative robots timeout", mutate: func(c *Config) { c.RobotsTimeout = -time.Second }, wantErr: true},
		{name: "zero robots ttl", mutate: func(c *Config) { c.RobotsTTL = 0 }, wantErr: true},
		{name: "zero preview limit", mutate: func(c *Config) { c.PreviewLimit = 0 }, wantErr: true},
		{name: "zero chunk size", mutate: func(c *Config) { c.ChunkSize = 0 }, wantErr: true},
		{name: "negative chunk delay", mutate: func(c *Config) { c.ChunkDelay = -time.Millisecond }, wantErr: true},
		{name: "zero chunk delay allowed", mutate: func(c *Config) { c.ChunkDelay = 0 }, wantErr: false},
		{name: "zero image size limit", mutate: func(c *Config) { c.ImageMaxBytes = 0 }, wantErr: true},
		{name: "zero image dimension", mutate: func(c *Config) { c.ImageMaxDim = 0 }, wantErr: true},
		{name: "quality above range", mutate: func(c *Config) { c.ImageQuality = 101 }, wantErr: true},
		{name: "empty upload dir", mutate: func(c *Config) { c.UploadDir = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEnvString(t *testing.T) {
	t.Setenv("SCRAPER_TEST_STRING", "  hello  ")
	value, ok := EnvString("SCRAPER_TEST_STRING")
	if !ok || value != "hello" {
		t.Fatalf("EnvString = %q, %v; want hello, true", value, ok)
	}

	t.Setenv("SCRAPER_TEST_STRING", "   ")
	if _, ok := EnvString("SCRAPER_TEST_STRING"); ok {
		t.Fatal("blank value should report unset")
	}

	if _, ok := EnvString("SCRAPER_TEST_MISSING"); ok {
		t.Fatal("missing variable should report unset")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SCRAPER_TEST_INT", "42")
	value, ok, err := EnvInt("SCRAPER_TEST_INT")
	if err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt = %d, %v, %v; want 42, true, nil", value, ok, err)
	}

	t.Setenv("SCRAPER_TEST_INT", "forty-two")
	if _, _, err := EnvInt("SCRAPER_TEST_INT"); err == nil {
		t.Fatal("expected error for non-integer value")
	}

	if _, ok, err := EnvInt("SCRAPER_TEST_MISSING"); ok || err != nil {
		t.Fatalf("missing variable = %v, %v; want false, nil", ok, err)
	}
}
