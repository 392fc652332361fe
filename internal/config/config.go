package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "config/config.toml"

var defaultModels = map[string]string{
	"gemini": "gemini-2.5-flash",
	"openai": "gpt-4o-mini",
	"claude": "claude-3-5-haiku-latest",
	"ollama": "llama3.1",
}

var ErrMissingAPIKey = errors.New("llm api key is not set (LLM_API_KEY or API_KEY)")

type LLMConfig struct {
	Provider          string  `toml:"provider"`
	Model             string  `toml:"model"`
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Temperature       float32 `toml:"temperature"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NeedsAPIKey reports whether the provider authenticates with a key.
// Ollama is served locally and ignores it.
func (c LLMConfig) NeedsAPIKey() bool {
	return strings.ToLower(c.Provider) != "ollama"
}

type PredictionPrompts struct {
	Match string `toml:"match"`
}

type ServerConfig struct {
	Addr              string `toml:"addr"`
	SessionTTLMinutes int    `toml:"session_ttl_minutes"`
}

func (c ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

type TelegramConfig struct {
	Token string `toml:"token"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	LLM      LLMConfig         `toml:"llm"`
	Prompts  PredictionPrompts `toml:"prompts"`
	Server   ServerConfig      `toml:"server"`
	Telegram TelegramConfig    `toml:"telegram"`
	Log      LogConfig         `toml:"log"`

	// envErr holds environment values ApplyEnv could not parse; Validate
	// reports it.
	envErr error
}

func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          "gemini",
			Temperature:       0.3,
			TimeoutSeconds:    30,
			RequestsPerSecond: 2,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			SessionTTLMinutes: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with the environment. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	} else if v := getenv("API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := getenv("LLM_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			c.envErr = errors.Join(c.envErr, fmt.Errorf("LLM_TEMPERATURE %q is not a number", v))
		} else {
			c.LLM.Temperature = float32(t)
		}
	}
	if v := getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}

	provider := strings.ToLower(c.LLM.Provider)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultModels[provider]
	}
	if provider == "ollama" && c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434"
	}
}

// Validate fails fast on settings no component can run without.
func (c *Config) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "gemini", "openai", "claude", "ollama":
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return errors.New("llm model is not set")
	}
	if c.LLM.NeedsAPIKey() && strings.TrimSpace(c.LLM.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature %.2f out of range [0, 2]", c.LLM.Temperature)
	}
	if c.Prompts.Match != "" {
		if err := checkPrompt(c.Prompts.Match); err != nil {
			return err
		}
	}
	return nil
}

// checkPrompt renders the template with two team names. A wrong verb, a
// stray % or a verb count other than two leaves a %! marker in the output.
func checkPrompt(tmpl string) error {
	out := fmt.Sprintf(tmpl, "team A", "team B")
	if strings.Contains(out, "%!") {
		return fmt.Errorf("prompts.match must take exactly two %%s verbs (team A, team B), write a literal percent sign as %%%%: renders as %q", out)
	}
	return nil
}

// Resolve builds the process configuration: the TOML file at path when it
// exists, then the environment, then validation. A missing file is not an
// error; a malformed one is.
func Resolve(path string, getenv func(string) string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
