package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MinCount is 6", func(t *testing.T) {
		t.Parallel()
		if cfg.MinCount != 6 {
			t.Errorf("MinCount = %d", cfg.MinCount)
		}
	})

	t.Run("default Concurrency is 8", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 8 {
			t.Errorf("Concurrency = %d", cfg.Concurrency)
		}
	})

	t.Run("default ProbeTimeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.ProbeTimeout != 10*time.Second {
			t.Errorf("ProbeTimeout = %v", cfg.ProbeTimeout)
		}
	})

	t.Run("default rules are present", func(t *testing.T) {
		t.Parallel()
		if cfg.Rules == nil {
			t.Fatal("Rules is nil")
		}
		if len(cfg.Rules.Rewrites) == 0 {
			t.Error("default rewrites missing")
		}
	})
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	t.Run("derives cache paths from the site directory", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.SiteDir = "/site"
		cfg.ApplyDefaults()

		if cfg.CountCachePath != filepath.Join("/site", DefaultCountCacheName) {
			t.Errorf("CountCachePath = %q", cfg.CountCachePath)
		}
		if cfg.URLCachePath != filepath.Join("/site", DefaultURLCacheName) {
			t.Errorf("URLCachePath = %q", cfg.URLCachePath)
		}
	})

	t.Run("explicit paths are kept", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.SiteDir = "/site"
		cfg.CountCachePath = "/elsewhere/counts"
		cfg.ApplyDefaults()

		if cfg.CountCachePath != "/elsewhere/counts" {
			t.Errorf("CountCachePath = %q", cfg.CountCachePath)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.SiteDir = "/site"
		cfg.BaseURL = "https://example.com"
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing site dir returns ErrNoSiteDir", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.SiteDir = ""
		if err := cfg.Validate(); !errors.Is(err, ErrNoSiteDir) {
			t.Errorf("err = %v, want ErrNoSiteDir", err)
		}
	})

	t.Run("missing base URL returns ErrNoBaseURL", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.BaseURL = ""
		if err := cfg.Validate(); !errors.Is(err, ErrNoBaseURL) {
			t.Errorf("err = %v, want ErrNoBaseURL", err)
		}
	})

	t.Run("schemeless base URL returns ErrInvalidBaseURL", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.BaseURL = "example.com"
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("err = %v, want ErrInvalidBaseURL", err)
		}
	})

	t.Run("zero MinCount is valid", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.MinCount = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("negative MinCount returns ErrInvalidMinCount", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.MinCount = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMinCount) {
			t.Errorf("err = %v, want ErrInvalidMinCount", err)
		}
	})

	t.Run("zero concurrency returns ErrInvalidConcurrency", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.Concurrency = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("err = %v, want ErrInvalidConcurrency", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.ProbeTimeout = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("err = %v, want ErrInvalidTimeout", err)
		}
	})
}
