package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the triage service.  It is read once at
// startup and passed to constructors; nothing reads the environment later.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Referral ReferralConfig `yaml:"referral"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type OpenAIConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url,omitempty"`
	ChatModel       string `yaml:"chat_model"`
	TranscribeModel string `yaml:"transcribe_model"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
}

type ReferralConfig struct {
	TeleconsultURL string `yaml:"teleconsult_url"`
	// LLMPhrasing lets the model word the SMS; the template is used when off.
	LLMPhrasing bool `yaml:"llm_phrasing"`
}

type AnalysisConfig struct {
	// UseLLM sends transcripts to the model before extraction.  Ignored when no
	// API key is configured.
	UseLLM bool `yaml:"use_llm"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns a config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		OpenAI: OpenAIConfig{
			ChatModel:       "gpt-4o-mini",
			TranscribeModel: "whisper-1",
		},
		Twilio:   TwilioConfig{From: "+15005550006"},
		Referral: ReferralConfig{TeleconsultURL: "https://teleclinic.ng/consult"},
		Analysis: AnalysisConfig{UseLLM: true},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file values with any environment variables that are set.
func applyEnv(cfg *Config, getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	setString(&cfg.OpenAI.APIKey, getenv("OPENAI_API_KEY"))
	setString(&cfg.OpenAI.BaseURL, getenv("OPENAI_BASE_URL"))
	setString(&cfg.OpenAI.ChatModel, getenv("OPENAI_MODEL_CHAT"))
	setString(&cfg.OpenAI.TranscribeModel, getenv("OPENAI_MODEL_TRANSCRIBE"))
	setString(&cfg.Twilio.AccountSID, getenv("TWILIO_SID"))
	setString(&cfg.Twilio.AuthToken, getenv("TWILIO_TOKEN"))
	setString(&cfg.Twilio.From, getenv("TWILIO_NUMBER"))
	setString(&cfg.Twilio.From, getenv("TWILIO_FROM"))
	setString(&cfg.Referral.TeleconsultURL, getenv("TELECONSULT_URL"))
	setBool(&cfg.Referral.LLMPhrasing, getenv("REFERRAL_LLM_PHRASING"))
	setBool(&cfg.Analysis.UseLLM, getenv("ANALYSIS_USE_LLM"))
	setString(&cfg.Log.Level, getenv("LOG_LEVEL"))
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v string) {
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		*dst = b
	}
}

// Validate checks for half-configured credentials and bad values.
func (c Config) Validate() error {
	if (c.Twilio.AccountSID == "") != (c.Twilio.AuthToken == "") {
		return fmt.Errorf("twilio: account_sid and auth_token must be set together")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server: addr must not be empty")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// HasSMSCredentials reports whether live SMS dispatch is possible.
func (c Config) HasSMSCredentials() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != ""
}

// HasLLM reports whether an OpenAI API key is configured.
func (c Config) HasLLM() bool {
	return c.OpenAI.APIKey != ""
}

// SlogLevel parses Log.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return lvl, fmt.Errorf("log: invalid level %q", c.Log.Level)
	}
	return lvl, nil
}

// Save writes the config as YAML, used by the init command.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
