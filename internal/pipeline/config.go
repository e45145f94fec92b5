package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ozoops/health5070/internal/ports/adapters/openaiapi"
	"github.com/ozoops/health5070/internal/retry"
)

const (
	TTSOpenAI  = "openai"
	TTSCommand = "command"
)

type Config struct {
	OutDir string `yaml:"out_dir"`
	// WorkDir is the base directory for per-run intermediates.
	// If empty, defaults to ".cache".
	WorkDir string `yaml:"work_dir"`

	Width            int    `yaml:"width"`
	Height           int    `yaml:"height"`
	FPS              int    `yaml:"fps"`
	Language         string `yaml:"language"`
	Concurrency      int    `yaml:"concurrency"`
	PurgeSceneImages bool   `yaml:"purge_scene_images"`

	FFmpegPath  string   `yaml:"ffmpeg_path"`
	FFprobePath string   `yaml:"ffprobe_path"`
	Fonts       []string `yaml:"fonts"`

	ImageRetry retry.Policy `yaml:"image_retry"`
	Encode     EncodeConfig `yaml:"encode"`
	OpenAI     OpenAIConfig `yaml:"openai"`
	TTS        TTSConfig    `yaml:"tts"`
	Store      StoreConfig  `yaml:"store"`
	Drive      DriveConfig  `yaml:"drive"`
	Server     ServerConfig `yaml:"server"`

	Logger *zap.Logger `yaml:"-"`
}

type EncodeConfig struct {
	Preset       string        `yaml:"preset"`
	VideoBitrate string        `yaml:"video_bitrate"`
	AudioBitrate string        `yaml:"audio_bitrate"`
	Threads      int           `yaml:"threads"`
	FadeOut      time.Duration `yaml:"fade_out"`
}

type OpenAIConfig struct {
	APIKey       string   `yaml:"api_key"`
	BaseURL      string   `yaml:"base_url"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	ChatModel    string   `yaml:"chat_model"`
	ImageModel   string   `yaml:"image_model"`
	ImageSize    string   `yaml:"image_size"`
	ImageQuality string   `yaml:"image_quality"`
}

type TTSConfig struct {
	Provider string   `yaml:"provider"`
	Command  string   `yaml:"command"`
	Args     []string `yaml:"args"`
	Model    string   `yaml:"model"`
	Voice    string   `yaml:"voice"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type DriveConfig struct {
	Enabled         bool   `yaml:"enabled"`
	FolderID        string `yaml:"folder_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the production settings: 1280x720 at 30 fps, Korean
// narration through gtts-cli, OpenAI for text and images.
func Default() Config {
	return Config{
		OutDir:      "generated_videos",
		WorkDir:     ".cache",
		Width:       1280,
		Height:      720,
		FPS:         30,
		Language:    "ko",
		Concurrency: 3,
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		ImageRetry:  retry.Default(),
		Encode: EncodeConfig{
			Preset:       "medium",
			VideoBitrate: "3000k",
			AudioBitrate: "192k",
			Threads:      4,
			FadeOut:      500 * time.Millisecond,
		},
		OpenAI: OpenAIConfig{
			ChatModel:    "gpt-3.5-turbo",
			ImageModel:   "dall-e-3",
			ImageSize:    "1792x1024",
			ImageQuality: "standard",
		},
		TTS:    TTSConfig{Provider: TTSCommand, Command: "gtts-cli"},
		Store:  StoreConfig{Path: "generated_videos/videos.jsonl"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadFile overlays the YAML file at path onto Default().
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment. Unset variables leave
// the current value alone.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup("OPENAI_API_KEY"); ok && v != "" {
		c.OpenAI.APIKey = v
	}
	if v, ok := lookup("OPENAI_BASE_URL"); ok && v != "" {
		c.OpenAI.BaseURL = v
	}
	if v, ok := lookup("OPENAI_ALLOWED_HOSTS"); ok && v != "" {
		c.OpenAI.AllowedHosts = splitList(v)
	}
	if v, ok := lookup("HEALTH5070_OUT_DIR"); ok && v != "" {
		c.OutDir = v
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.OutDir) == "" {
		return errors.New("out dir is empty")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("frame size must be > 0, got %dx%d", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("frame size must be even, got %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be > 0")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0")
	}
	if c.ImageRetry.MaxAttempts <= 0 {
		return fmt.Errorf("image_retry.attempts must be > 0")
	}
	if c.ImageRetry.Delay < 0 {
		return fmt.Errorf("image_retry.delay must be >= 0")
	}
	if c.Encode.Threads < 0 {
		return fmt.Errorf("encode.threads must be >= 0")
	}
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required (set it in .env)")
	}
	switch c.TTS.Provider {
	case TTSOpenAI:
	case TTSCommand:
		if strings.TrimSpace(c.TTS.Command) == "" {
			return errors.New("tts.command is required for the command provider")
		}
	default:
		return fmt.Errorf("unknown tts provider %q", c.TTS.Provider)
	}
	if c.Drive.Enabled && (c.Drive.FolderID == "" || c.Drive.CredentialsFile == "") {
		return errors.New("drive.folder_id and drive.credentials_file are required when drive is enabled")
	}
	return openaiapi.ValidateBaseURL(c.OpenAI.BaseURL, c.OpenAI.AllowedHosts)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
