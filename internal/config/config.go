package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config captures everything the client needs at start-up. It is built once
// and passed explicitly to the components that need it.
type Config struct {
	BaseURL         string
	CookieName      string
	RequestTimeout  time.Duration
	PollEvery       time.Duration
	LogLevel        string
	LogPath         string
	CredentialsPath string
	PrefsPath       string
}

// LoadOptions select the config file and optional flag overrides.
type LoadOptions struct {
	Path  string         // empty uses ~/.config/practice-tracker/config.toml
	Flags *pflag.FlagSet // flags named base-url, poll, log-level override file and env
}

const (
	envPrefix = "PRACTICE"

	defaultConfigPath      = "~/.config/practice-tracker/config.toml"
	defaultCredentialsPath = "~/.config/practice-tracker/credentials.toml"
	defaultPrefsPath       = "~/.config/practice-tracker/prefs.toml"
	defaultLogPath         = "~/.local/state/practice-tracker/practice-tracker.log"
	defaultBaseURL         = "http://127.0.0.1:8000"
	defaultCookieName      = "pt_session"
	defaultLogLevel        = "info"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"base-url":  "base_url",
	"poll":      "poll",
	"log-level": "log_level",
}

// Load resolves configuration from defaults, the TOML file, PRACTICE_*
// environment variables and flags, in increasing precedence. A missing file
// is not an error.
func Load(opts LoadOptions) (Config, error) {
	resolved, err := resolvePath(opts.Path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetConfigFile(resolved)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := Config{
		BaseURL:         strings.TrimSpace(v.GetString("base_url")),
		CookieName:      strings.TrimSpace(v.GetString("cookie_name")),
		RequestTimeout:  v.GetDuration("request_timeout"),
		PollEvery:       time.Duration(v.GetInt("poll")) * time.Second,
		LogLevel:        strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogPath:         strings.TrimSpace(v.GetString("log_path")),
		CredentialsPath: strings.TrimSpace(v.GetString("credentials_path")),
		PrefsPath:       strings.TrimSpace(v.GetString("prefs_path")),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	if cfg.PollEvery < 0 {
		cfg.PollEvery = 0
	}
	cfg.LogPath = mustExpand(orDefault(cfg.LogPath, defaultLogPath))
	cfg.CredentialsPath = mustExpand(orDefault(cfg.CredentialsPath, defaultCredentialsPath))
	cfg.PrefsPath = mustExpand(orDefault(cfg.PrefsPath, defaultPrefsPath))

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", defaultBaseURL)
	v.SetDefault("cookie_name", defaultCookieName)
	v.SetDefault("request_timeout", "0s")
	v.SetDefault("poll", 0)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_path", defaultLogPath)
	v.SetDefault("credentials_path", defaultCredentialsPath)
	v.SetDefault("prefs_path", defaultPrefsPath)
}

// DefaultPath returns the unexpanded default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
