package config

import "testing"

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8000, Mode: "release"},
		Storage: StorageConfig{Type: "local"},
		Credits: CreditsConfig{Backend: "memory"},
		Mix:     MixConfig{SegmentPolicy: "keep"},
		Music:   MusicConfig{Variants: 3, MaxAttempts: 4},
		Media:   MediaConfig{MaxConcurrent: 2},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "invalid mode", mutate: func(c *Config) { c.Server.Mode = "prod" }, wantErr: true},
		{name: "unsupported storage", mutate: func(c *Config) { c.Storage.Type = "s3" }, wantErr: true},
		{name: "unknown credits backend", mutate: func(c *Config) { c.Credits.Backend = "supabase" }, wantErr: true},
		{name: "unknown segment policy", mutate: func(c *Config) { c.Mix.SegmentPolicy = "trim" }, wantErr: true},
		{name: "too many variants", mutate: func(c *Config) { c.Music.Variants = 4 }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.Music.MaxAttempts = 0 }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Media.MaxConcurrent = 0 }, wantErr: true},
		{name: "redis credits", mutate: func(c *Config) { c.Credits.Backend = "redis" }},
		{name: "clamp policy", mutate: func(c *Config) { c.Mix.SegmentPolicy = "clamp" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
