package config

import (
	"errors"
	"fmt"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	AI      AIConfig      `mapstructure:"ai"`
	Music   MusicConfig   `mapstructure:"music"`
	Media   MediaConfig   `mapstructure:"media"`
	Mix     MixConfig     `mapstructure:"mix"`
	Log     LogConfig     `mapstructure:"log"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Credits CreditsConfig `mapstructure:"credits"`
	Storage StorageConfig `mapstructure:"storage"`
	Janitor JanitorConfig `mapstructure:"janitor"`
	Limits  LimitsConfig  `mapstructure:"limits"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BackendURL   string        `mapstructure:"backend_url"`  // 对外访问地址（用于拼接下载链接）
	FrontendURL  string        `mapstructure:"frontend_url"` // 允许跨域的前端地址
}

// AIConfig 视频分析大模型配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"`
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Timeout  time.Duration   `mapstructure:"timeout"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// MusicConfig 音乐生成服务配置（Vertex AI Lyria）
type MusicConfig struct {
	Project      string        `mapstructure:"project"`       // GCP 项目
	Location     string        `mapstructure:"location"`      // 区域，默认 us-central1
	Model        string        `mapstructure:"model"`         // 模型，默认 lyria-002
	Endpoint     string        `mapstructure:"endpoint"`      // 自定义 endpoint（测试/代理）
	AccessToken  string        `mapstructure:"access_token"`  // 静态访问令牌（为空时使用 ADC）
	Timeout      time.Duration `mapstructure:"timeout"`       // 单次生成超时
	MaxAttempts  int           `mapstructure:"max_attempts"`  // 每个风格的最大尝试次数
	PromptBudget int           `mapstructure:"prompt_budget"` // 提示词最大字符数
	Variants     int           `mapstructure:"variants"`      // 每次请求生成的风格数（≤3）
	MP3Bitrate   string        `mapstructure:"mp3_bitrate"`   // 320k
}

// MediaConfig FFmpeg 执行配置
type MediaConfig struct {
	FFmpegPath    string        `mapstructure:"ffmpeg_path"`
	FFprobePath   string        `mapstructure:"ffprobe_path"`
	Timeout       time.Duration `mapstructure:"timeout"`        // 单次 ffmpeg 调用超时
	MaxConcurrent int           `mapstructure:"max_concurrent"` // 同时运行的 ffmpeg 进程上限
	WorkDir       string        `mapstructure:"work_dir"`       // 临时工作目录
}

// MixConfig 混音配置
type MixConfig struct {
	DefaultMode   string  `mapstructure:"default_mode"`
	FadeIn        float64 `mapstructure:"fade_in"`
	FadeOut       float64 `mapstructure:"fade_out"`
	AudioBitrate  string  `mapstructure:"audio_bitrate"`  // 256k
	SegmentPolicy string  `mapstructure:"segment_policy"` // keep / clamp / reject
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"` // 为空时使用 X-User-Id 请求头识别用户
}

// CreditsConfig 积分配置
type CreditsConfig struct {
	Backend       string `mapstructure:"backend"`        // memory / redis / mongo
	FreeOnSignup  int    `mapstructure:"free_on_signup"` // 新用户赠送积分
	PerPurchase   int    `mapstructure:"per_purchase"`   // 每次购买增加的积分
	WebhookSecret string `mapstructure:"webhook_secret"` // 支付回调签名密钥
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type              string       `mapstructure:"type"`               // local, oss
	RedirectDownloads bool         `mapstructure:"redirect_downloads"` // oss 下载跳转到预签名地址
	Local             *LocalConfig `mapstructure:"local,omitempty"`
	OSS               *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath      string `mapstructure:"base_path"`      // 基础路径
	BaseURL       string `mapstructure:"base_url"`       // 基础URL（用于生成访问URL）
	PresignExpiry int    `mapstructure:"presign_expiry"` // 预签名URL过期时间（秒）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
	PresignExpiry   int    `mapstructure:"presign_expiry"`    // 预签名URL过期时间（秒）
}

// JanitorConfig 过期文件清理配置
type JanitorConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Retention time.Duration `mapstructure:"retention"`
}

// LimitsConfig 上传限制
type LimitsConfig struct {
	MaxVideoSizeMB          int `mapstructure:"max_video_size_mb"`
	MaxVideoDurationSeconds int `mapstructure:"max_video_duration_seconds"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	return c.ValidateCore()
}

// ValidateCore 验证与 HTTP 无关的配置（CLI 命令也会调用）
func (c *Config) ValidateCore() error {
	switch c.Storage.Type {
	case "local", "oss":
	default:
		return fmt.Errorf("invalid storage type %q, must be local/oss", c.Storage.Type)
	}

	switch c.Credits.Backend {
	case "memory", "redis", "mongo":
	default:
		return fmt.Errorf("invalid credits backend %q, must be memory/redis/mongo", c.Credits.Backend)
	}

	switch c.Mix.SegmentPolicy {
	case "keep", "clamp", "reject":
	default:
		return fmt.Errorf("invalid segment policy %q, must be keep/clamp/reject", c.Mix.SegmentPolicy)
	}

	if c.Music.Variants < 1 || c.Music.Variants > 3 {
		return errors.New("music.variants must be between 1 and 3")
	}
	if c.Music.MaxAttempts < 1 {
		return errors.New("music.max_attempts must be positive")
	}
	if c.Media.MaxConcurrent < 1 {
		return errors.New("media.max_concurrent must be positive")
	}

	return nil
}
