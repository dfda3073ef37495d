package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-tailor/internal/ai/gemini"
	"github.com/spigell/resume-tailor/internal/history"
	"github.com/spigell/resume-tailor/internal/jobposting"
)

const (
	app = "resume-tailor"
)

type Config struct {
	AI         *AIConfig         `mapstructure:"ai" validate:"required"`
	History    *HistoryConfig    `mapstructure:"history" validate:"required"`
	Fetch      *FetchConfig      `mapstructure:"fetch" validate:"required"`
	HeadHunter *HeadHunterConfig `mapstructure:"headhunter"`
	Filter     *FilterConfig     `mapstructure:"filter"`
}

type AIConfig struct {
	Provider    string                 `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Concurrency int                    `mapstructure:"concurrency" validate:"gte=1,lte=16"`
	Gemini      *GeminiConfig          `mapstructure:"gemini" validate:"required"`
	Prompt      gemini.PromptOverrides `mapstructure:"prompt"`
}

type GeminiConfig struct {
	APIKey          string   `mapstructure:"api-key" json:"-"`
	APIKeyFile      string   `mapstructure:"api-key-file"`
	Model           string   `mapstructure:"model"`
	Temperature     *float32 `mapstructure:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxOutputTokens int32    `mapstructure:"max-output-tokens" validate:"gte=0"`
	MaxRetries      int      `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength    int      `mapstructure:"max-log-length" validate:"gte=0"`
}

type HistoryConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=file sqlite"`
	Path   string `mapstructure:"path"`
}

type FetchConfig struct {
	UserAgent     string        `mapstructure:"user-agent"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RatePerSecond float64       `mapstructure:"rate-per-second" validate:"gte=0"`
}

type HeadHunterConfig struct {
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
}

type FilterConfig struct {
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-tailor asks an AI model how to tailor a resume to job postings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"headhunter.token-file":  "HH_TOKEN_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-tailor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.concurrency", 2)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-pro")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("history.driver", history.DriverFile)
	viper.SetDefault("fetch.timeout", jobposting.DefaultTimeout)
	viper.SetDefault("fetch.rate-per-second", jobposting.DefaultRate)
	viper.SetDefault("fetch.user-agent", jobposting.DefaultUserAgent)
}

func initConfig() {
	// A missing .env is fine, variables may come from the real environment.
	_ = godotenv.Load()

	viper.SetEnvPrefix(strings.ReplaceAll(app, "-", "_"))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicit config must parse. Without one, defaults and environment are enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}

	if err := validator.New().Struct(config); err != nil {
		return config, err
	}

	return config, nil
}
