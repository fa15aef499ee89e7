// Package config provides Viper-based configuration loading for the Functopus bot.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DiscordConfig holds chat-platform connection settings.
type DiscordConfig struct {
	// Token is the bot authentication token.
	Token string `mapstructure:"token"`
	// Prefix is the command prefix, e.g. "!".
	Prefix string `mapstructure:"prefix"`
	// WelcomeChannel is the preferred channel name for member-join greetings.
	WelcomeChannel string `mapstructure:"welcome_channel"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds PostgreSQL connection settings for the leaderboard.
// The database is optional; when Enabled is false the bot runs without it.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AIConfig holds generative AI provider settings.
type AIConfig struct {
	// APIKey is the Anthropic API key; empty disables AI features.
	APIKey string `mapstructure:"api_key"`
	// Model is the model identifier used for chat and word generation.
	Model string `mapstructure:"model"`
	// MaxTokens bounds chat responses.
	MaxTokens int64 `mapstructure:"max_tokens"`
	// RequestTimeout bounds a single chat request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// WordsConfig holds secret-word resolution settings for the guessing game.
type WordsConfig struct {
	// GenerativeTimeout bounds the generative provider attempt.
	GenerativeTimeout time.Duration `mapstructure:"generative_timeout"`
	// LookupTimeout bounds the random-word API attempt.
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
	// ListPath is the YAML file holding the static fallback word list.
	// When the file is missing the compiled-in default list is used.
	ListPath string `mapstructure:"list_path"`
}

// GamesConfig holds turn-based game timing settings.
type GamesConfig struct {
	// ChoiceTimeout bounds the truth-or-dare choice wait per turn.
	ChoiceTimeout time.Duration `mapstructure:"choice_timeout"`
	// CompletionTimeout bounds the done-signal wait per turn.
	CompletionTimeout time.Duration `mapstructure:"completion_timeout"`
	// TurnDelay is the fixed pause between turns.
	TurnDelay time.Duration `mapstructure:"turn_delay"`
	// ReactionWindow is how long never-have-i-ever rounds collect reactions.
	ReactionWindow time.Duration `mapstructure:"reaction_window"`
}

// ContentConfig holds third-party content API settings. Base URLs are
// configurable so tests can point the client at local servers.
type ContentConfig struct {
	TruthOrDareURL string        `mapstructure:"truth_or_dare_url"`
	RandomWordURL  string        `mapstructure:"random_word_url"`
	JokeURL        string        `mapstructure:"joke_url"`
	FactURL        string        `mapstructure:"fact_url"`
	MemeURL        string        `mapstructure:"meme_url"`
	ComplimentURL  string        `mapstructure:"compliment_url"`
	InsultURL      string        `mapstructure:"insult_url"`
	TenorURL       string        `mapstructure:"tenor_url"`
	TenorKey       string        `mapstructure:"tenor_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// FunConfig holds behavior knobs for the fun commands.
type FunConfig struct {
	// RoastExcludeInvoker drops the command invoker from @everyone roasts.
	RoastExcludeInvoker bool `mapstructure:"roast_exclude_invoker"`
}

// Config is the top-level application configuration.
type Config struct {
	Discord  DiscordConfig  `mapstructure:"discord"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	AI       AIConfig       `mapstructure:"ai"`
	Words    WordsConfig    `mapstructure:"words"`
	Games    GamesConfig    `mapstructure:"games"`
	Content  ContentConfig  `mapstructure:"content"`
	Fun      FunConfig      `mapstructure:"fun"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDiscord(c.Discord); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateGames(c.Games); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWords(c.Words); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Content.RequestTimeout <= 0 {
		errs = append(errs, "content.request_timeout must be positive")
	}
	if c.AI.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("ai.max_tokens must be >= 1, got %d", c.AI.MaxTokens))
	}
	if c.AI.RequestTimeout <= 0 {
		errs = append(errs, "ai.request_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDiscord(d DiscordConfig) error {
	var errs []string
	if d.Token == "" {
		errs = append(errs, "discord.token must not be empty")
	}
	if d.Prefix == "" {
		errs = append(errs, "discord.prefix must not be empty")
	}
	if strings.ContainsAny(d.Prefix, " \t") {
		errs = append(errs, "discord.prefix must not contain whitespace")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGames(g GamesConfig) error {
	var errs []string
	if g.ChoiceTimeout <= 0 {
		errs = append(errs, "games.choice_timeout must be positive")
	}
	if g.CompletionTimeout <= 0 {
		errs = append(errs, "games.completion_timeout must be positive")
	}
	if g.TurnDelay < 0 {
		errs = append(errs, "games.turn_delay must not be negative")
	}
	if g.ReactionWindow <= 0 {
		errs = append(errs, "games.reaction_window must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWords(w WordsConfig) error {
	var errs []string
	if w.GenerativeTimeout <= 0 {
		errs = append(errs, "words.generative_timeout must be positive")
	}
	if w.LookupTimeout <= 0 {
		errs = append(errs, "words.lookup_timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with FUNCTOPUS_ prefix
	v.SetEnvPrefix("FUNCTOPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	if v == nil {
		return Config{}, errors.New("nil viper instance")
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.prefix", "!")
	v.SetDefault("discord.welcome_channel", "general")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "functopus")
	v.SetDefault("database.password", "functopus")
	v.SetDefault("database.name", "functopus")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("ai.model", "claude-3-5-haiku-latest")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.request_timeout", "30s")

	v.SetDefault("words.generative_timeout", "10s")
	v.SetDefault("words.lookup_timeout", "5s")
	v.SetDefault("words.list_path", "content/words.yaml")

	v.SetDefault("games.choice_timeout", "30s")
	v.SetDefault("games.completion_timeout", "5m")
	v.SetDefault("games.turn_delay", "2s")
	v.SetDefault("games.reaction_window", "30s")

	v.SetDefault("content.truth_or_dare_url", "https://api.truthordarebot.xyz/v1")
	v.SetDefault("content.random_word_url", "https://random-word-api.herokuapp.com/word")
	v.SetDefault("content.joke_url", "https://official-joke-api.appspot.com/jokes/random")
	v.SetDefault("content.fact_url", "https://uselessfacts.jsph.pl/random.json?language=en")
	v.SetDefault("content.meme_url", "https://meme-api.com/gimme")
	v.SetDefault("content.compliment_url", "https://compliments-api.vercel.app/random")
	v.SetDefault("content.insult_url", "https://evilinsult.com/generate_insult.php?lang=en&type=json")
	v.SetDefault("content.tenor_url", "https://tenor.googleapis.com/v2/search")
	v.SetDefault("content.request_timeout", "10s")

	v.SetDefault("fun.roast_exclude_invoker", false)
}
