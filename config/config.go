// Package config holds scraper engine configuration.
package config

import (
	"fmt"
	"time"
)

// Config holds engine configuration.
type Config struct {
	Timeout       time.Duration // listing page and image fetches
	RobotsTimeout time.Duration // robots.txt fetch; kept short
	RobotsTTL     time.Duration // robots.txt cache lifetime per host

	PreviewLimit int           // analyze preview cap
	ChunkSize    int           // candidates processed between cooldowns
	ChunkDelay   time.Duration // cooldown between chunks

	ImageMaxBytes int
	ImageMaxDim   int
	ImageQuality  int

	UploadDir    string // base directory for stored images
	DatabasePath string // SQLite catalog; empty selects the in-memory store
	MetricsAddr  string
	Verbose      bool
}

// DefaultConfig returns the defaults the admin tooling ships with.
func DefaultConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		RobotsTimeout: 10 * time.Second,
		RobotsTTL:     30 * time.Minute,
		PreviewLimit:  10,
		ChunkSize:     10,
		ChunkDelay:    time.Second,
		ImageMaxBytes: 10 << 20,
		ImageMaxDim:   800,
		ImageQuality:  85,
		UploadDir:     "public",
		DatabasePath:  "",
		MetricsAddr:   "",
		Verbose:       false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RobotsTimeout <= 0 {
		return fmt.Errorf("robots timeout must be positive")
	}
	if c.RobotsTTL <= 0 {
		return fmt.Errorf("robots cache TTL must be positive")
	}
	if c.PreviewLimit <= 0 {
		return fmt.Errorf("preview limit must be positive")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.ChunkDelay < 0 {
		return fmt.Errorf("chunk delay cannot be negative")
	}
	if c.ImageMaxBytes <= 0 {
		return fmt.Errorf("image size limit must be positive")
	}
	if c.ImageMaxDim <= 0 {
		return fmt.Errorf("image dimension limit must be positive")
	}
	if c.ImageQuality <= 0 || c.ImageQuality > 100 {
		return fmt.Errorf("image quality must be between 1 and 100")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("upload directory cannot be empty")
	}
	return nil
}
