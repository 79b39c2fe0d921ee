package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout string `toml:"request_timeout"`
	DetailLikePath bool   `toml:"detail_like_path"`
}

type StorageConfig struct {
	Backend string `toml:"backend"`
}

type SubmitConfig struct {
	RedirectDelay string `toml:"redirect_delay"`
}

type UserConfig struct {
	Backend BackendConfig `toml:"backend"`
	Storage StorageConfig `toml:"storage"`
	Submit  SubmitConfig  `toml:"submit"`
}

// Storage backends understood by storage.OpenKV.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type Config struct {
	DataDirectory  string
	APIBase        string
	RequestTimeout time.Duration // zero means no client-side timeout
	DetailLikePath bool
	StorageBackend string
	RedirectDelay  time.Duration
	Keybindings    *KeyBindingsConfig
}

// Overrides carries command-line flags. Empty fields leave the loaded value alone.
type Overrides struct {
	APIBase        string
	DataDirectory  string
	StorageBackend string
	Ephemeral      bool
	Debug          bool
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if base := os.Getenv("SPRINGBOARD_API_BASE"); base != "" {
		c.APIBase = base
	}
	if dataDir := os.Getenv("SPRINGBOARD_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if backend := os.Getenv("SPRINGBOARD_STORAGE"); backend != "" {
		c.StorageBackend = backend
	}
}

func (c *Config) applyFlagOverrides(o Overrides) {
	if o.APIBase != "" {
		c.APIBase = o.APIBase
	}
	if o.DataDirectory != "" {
		c.DataDirectory = o.DataDirectory
	}
	if o.StorageBackend != "" {
		c.StorageBackend = o.StorageBackend
	}
	if o.Ephemeral {
		c.StorageBackend = StorageMemory
	}
}

func (c *Config) applyUserConfig(userCfg *UserConfig) error {
	if userCfg.Backend.BaseURL != "" {
		c.APIBase = userCfg.Backend.BaseURL
	}
	c.DetailLikePath = userCfg.Backend.DetailLikePath
	if userCfg.Storage.Backend != "" {
		c.StorageBackend = userCfg.Storage.Backend
	}

	timeout, err := parseOptionalDuration(userCfg.Backend.RequestTimeout)
	if err != nil {
		return fmt.Errorf("invalid backend.request_timeout: %w", err)
	}
	c.RequestTimeout = timeout

	if userCfg.Submit.RedirectDelay != "" {
		delay, err := time.ParseDuration(userCfg.Submit.RedirectDelay)
		if err != nil {
			return fmt.Errorf("invalid submit.redirect_delay: %w", err)
		}
		c.RedirectDelay = delay
	}

	return nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (want file, sqlite or memory)", c.StorageBackend)
	}
	if !strings.HasPrefix(c.APIBase, "http://") && !strings.HasPrefix(c.APIBase, "https://") {
		return fmt.Errorf("backend base URL must start with http:// or https://: %q", c.APIBase)
	}
	return nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func CheckDebug() bool {
	debug := os.Getenv("SPRINGBOARD_DEBUG")
	return debug == "true" || debug == "1"
}

// Load builds the effective configuration: defaults, then settings.toml and
// config.toml, then environment variables, then flags.
func Load(o Overrides) (*Config, error) {
	cfg := &Config{
		DataDirectory:  "~/.local/share/springboard",
		APIBase:        DefaultAPIBase,
		StorageBackend: StorageFile,
		RedirectDelay:  DefaultRedirectDelay,
	}

	// Data directory has to be known before config.toml can be found.
	if o.DataDirectory == "" && os.Getenv("SPRINGBOARD_DATA_DIR") == "" {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory
	}
	cfg.applyEnvOverrides()
	cfg.applyFlagOverrides(o)

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	InitDebugLog(dataDir, o.Debug || CheckDebug())

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if err := cfg.applyUserConfig(userCfg); err != nil {
		return nil, err
	}

	// Env and flags win over config.toml.
	cfg.applyEnvOverrides()
	cfg.applyFlagOverrides(o)

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load keybindings: %w", err)
	}
	cfg.Keybindings = kb

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
