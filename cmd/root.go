package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vibesync/internal/config"
	"vibesync/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vibesync",
	Short: "VibeSync - AI soundtrack service for short videos",
	Long: `VibeSync analyzes a video, generates matching music variations and
mixes the chosen track back into the video with loudness-aware ducking.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.vibesync")
	}

	// 环境变量设置，如 VIBESYNC_AI_API_KEY
	viper.SetEnvPrefix("VIBESYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "60s")
	viper.SetDefault("server.write_timeout", "10m")
	viper.SetDefault("server.backend_url", "http://localhost:8000")
	viper.SetDefault("server.frontend_url", "http://localhost:3000")

	// AI
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.model", "gpt-4o")
	viper.SetDefault("ai.timeout", "120s")
	viper.SetDefault("ai.options.temperature", 0.4)
	viper.SetDefault("ai.options.max_tokens", 4096)
	viper.SetDefault("ai.options.top_p", 1.0)

	// Music
	viper.SetDefault("music.location", "us-central1")
	viper.SetDefault("music.model", "lyria-002")
	viper.SetDefault("music.timeout", "120s")
	viper.SetDefault("music.max_attempts", 4)
	viper.SetDefault("music.prompt_budget", 2000)
	viper.SetDefault("music.variants", 3)
	viper.SetDefault("music.mp3_bitrate", "320k")

	// Media
	viper.SetDefault("media.timeout", "5m")
	viper.SetDefault("media.max_concurrent", 2)
	viper.SetDefault("media.work_dir", os.TempDir())

	// Mix
	viper.SetDefault("mix.default_mode", "balanced")
	viper.SetDefault("mix.fade_in", 0.5)
	viper.SetDefault("mix.fade_out", 1.0)
	viper.SetDefault("mix.audio_bitrate", "256k")
	viper.SetDefault("mix.segment_policy", "keep")

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB / Redis 默认不启用
	viper.SetDefault("mongo.uri", "")
	viper.SetDefault("mongo.database", "vibesync")
	viper.SetDefault("mongo.max_pool_size", 100)
	viper.SetDefault("mongo.min_pool_size", 10)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)

	// Auth
	viper.SetDefault("auth.jwt_secret", "")

	// Credits
	viper.SetDefault("credits.backend", "memory")
	viper.SetDefault("credits.free_on_signup", 3)
	viper.SetDefault("credits.per_purchase", 50)
	viper.SetDefault("credits.webhook_secret", "")

	// Storage
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.redirect_downloads", false)
	viper.SetDefault("storage.local.base_path", "./data")
	viper.SetDefault("storage.local.presign_expiry", 3600)

	// Janitor
	viper.SetDefault("janitor.enabled", true)
	viper.SetDefault("janitor.interval", "1h")
	viper.SetDefault("janitor.retention", "24h")

	// Limits
	viper.SetDefault("limits.max_video_size_mb", 100)
	viper.SetDefault("limits.max_video_duration_seconds", 120)
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
