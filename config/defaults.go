package config

import "time"

const (
	DefaultAPIBase       = "http://localhost:8080"
	DefaultRedirectDelay = time.Second
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/springboard",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Backend: BackendConfig{
			BaseURL: DefaultAPIBase,
		},
		Storage: StorageConfig{
			Backend: StorageFile,
		},
		Submit: SubmitConfig{
			RedirectDelay: DefaultRedirectDelay.String(),
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Springboard System Configuration
# Location: ~/.config/springboard/settings.toml
# This file uses TOML format: https://toml.io

# Directory where chat history and user config are stored
data_directory = "~/.local/share/springboard"
`
}

func GenerateUserConfigTemplate() string {
	return `# Springboard User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[backend]
# Springboard backend base URL
base_url = "http://localhost:8080"

# Per-request timeout, e.g. "30s". Empty means no client-side timeout.
request_timeout = ""

# Like result cards through POST /api/{name}/like instead of /apis/{name}/like
detail_like_path = false

[storage]
# Where chat history is cached: "file" or "sqlite"
backend = "file"

[submit]
# Delay before returning to the chat panel after a successful submission
redirect_delay = "1s"
`
}
