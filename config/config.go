package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	RecordingsDir    string // default private save location
	StateDir         string // settings, session state, logs
	InputFormat      string // ffmpeg demuxer, empty picks one for the OS
	InputDevice      string
	FFmpegPath       string
	FFplayPath       string
	LogLevel         string
	ProgressInterval time.Duration
}

type fileConfig struct {
	RecordingsDir    string `toml:"recordings_dir"`
	StateDir         string `toml:"state_dir"`
	InputFormat      string `toml:"input_format"`
	InputDevice      string `toml:"input_device"`
	FFmpegPath       string `toml:"ffmpeg_path"`
	FFplayPath       string `toml:"ffplay_path"`
	LogLevel         string `toml:"log_level"`
	ProgressInterval string `toml:"progress_interval"`
}

func Load() (*Config, error) {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	cfg := &Config{
		RecordingsDir:    defaultRecordingsDir(),
		StateDir:         defaultStateDir(),
		FFmpegPath:       "ffmpeg",
		FFplayPath:       "ffplay",
		LogLevel:         "info",
		ProgressInterval: time.Second,
	}

	if configPath := configFilePath(); configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(configPath, &fc); err == nil {
			applyFile(cfg, fc)
		}
	}

	applyEnvOverrides(cfg)

	// Ensure directories exist
	for _, dir := range []string{cfg.RecordingsDir, cfg.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func applyFile(cfg *Config, fc fileConfig) {
	if fc.RecordingsDir != "" {
		cfg.RecordingsDir = expandTilde(fc.RecordingsDir)
	}
	if fc.StateDir != "" {
		cfg.StateDir = expandTilde(fc.StateDir)
	}
	cfg.InputFormat = fc.InputFormat
	cfg.InputDevice = fc.InputDevice
	if fc.FFmpegPath != "" {
		cfg.FFmpegPath = fc.FFmpegPath
	}
	if fc.FFplayPath != "" {
		cfg.FFplayPath = fc.FFplayPath
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if d, err := time.ParseDuration(fc.ProgressInterval); err == nil && d > 0 {
		cfg.ProgressInterval = d
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REC_RECORDINGS_DIR"); v != "" {
		cfg.RecordingsDir = expandTilde(v)
	}
	if v := os.Getenv("REC_STATE_DIR"); v != "" {
		cfg.StateDir = expandTilde(v)
	}
	if v := os.Getenv("REC_INPUT_FORMAT"); v != "" {
		cfg.InputFormat = v
	}
	if v := os.Getenv("REC_INPUT_DEVICE"); v != "" {
		cfg.InputDevice = v
	}
	if v := os.Getenv("REC_FFMPEG"); v != "" {
		cfg.FFmpegPath = v
	}
	if v := os.Getenv("REC_FFPLAY"); v != "" {
		cfg.FFplayPath = v
	}
	if v := os.Getenv("REC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// TempDir holds capture files until they are saved.
func (c *Config) TempDir() string {
	return filepath.Join(c.StateDir, "tmp")
}

func (c *Config) StatePath() string {
	return filepath.Join(c.StateDir, "state.toml")
}

func (c *Config) LogPath() string {
	return filepath.Join(c.StateDir, "rec.log")
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "rec")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "rec")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// defaultRecordingsDir is the app's private storage.
func defaultRecordingsDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "rec", "recordings")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "rec", "recordings")
	}
	return filepath.Join(".", "recordings")
}

func defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "rec")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "rec")
	}
	return filepath.Join(".", ".rec")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
