package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	BackendURL       string        `env:"BACKEND_URL"`
	CallbackAddress  string        `env:"CALLBACK_ADDRESS"`
	ProviderAuthURL  string        `env:"PROVIDER_AUTH_URL"`
	CredentialsFile  string        `env:"CREDENTIALS_FILE"`
	SettleInterval   time.Duration `env:"SETTLE_POLL_INTERVAL"`
	SettleMaxRetries uint          `env:"SETTLE_MAX_ATTEMPTS"`

	// Параметры запрошенной операции (аналог входящей навигации браузера).
	CompetitionID string `env:"-"`
	TicketCount   int    `env:"-"`
	UseBalance    bool   `env:"-"`
	AcceptTerms   bool   `env:"-"`
	HandoffCode   string `env:"-"`
	SettleSession string `env:"-"`
}

func LoadConfig() (*Config, error) {
	// .env опционален, его отсутствие не ошибка.
	_ = godotenv.Load()

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.BackendURL == "" {
		return nil, errors.New("backend URL is not set")
	}
	return conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.BackendURL, "b", "", "Backend API base URL")
	flag.StringVar(&flagConfig.CallbackAddress, "l", "localhost:8971", "Local callback listen address host:port")
	flag.StringVar(&flagConfig.ProviderAuthURL, "p", "", "External login provider URL")
	flag.StringVar(&flagConfig.CredentialsFile, "f", defaultCredentialsPath(), "Credentials file path")
	flag.DurationVar(&flagConfig.SettleInterval, "i", 2*time.Second, "Settlement poll interval")
	flag.UintVar(&flagConfig.SettleMaxRetries, "r", 10, "Settlement poll attempt budget")

	flag.StringVar(&flagConfig.CompetitionID, "c", "", "Competition ID to buy tickets for")
	flag.IntVar(&flagConfig.TicketCount, "n", 1, "Requested ticket quantity")
	flag.BoolVar(&flagConfig.UseBalance, "use-balance", false, "Offset price with account balance")
	flag.BoolVar(&flagConfig.AcceptTerms, "accept-terms", false, "Accept the competition terms")
	flag.StringVar(&flagConfig.HandoffCode, "handoff", "", "Pending external login handoff code")
	flag.StringVar(&flagConfig.SettleSession, "session", "", "Checkout session id to settle directly")

	flag.Parse()
}

func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := &Config{
		BackendURL:       defaultIfBlank(envConfig.BackendURL, flagsConfig.BackendURL),
		CallbackAddress:  defaultIfBlank(envConfig.CallbackAddress, flagsConfig.CallbackAddress),
		ProviderAuthURL:  defaultIfBlank(envConfig.ProviderAuthURL, flagsConfig.ProviderAuthURL),
		CredentialsFile:  defaultIfBlank(envConfig.CredentialsFile, flagsConfig.CredentialsFile),
		SettleInterval:   envConfig.SettleInterval,
		SettleMaxRetries: envConfig.SettleMaxRetries,

		CompetitionID: flagsConfig.CompetitionID,
		TicketCount:   flagsConfig.TicketCount,
		UseBalance:    flagsConfig.UseBalance,
		AcceptTerms:   flagsConfig.AcceptTerms,
		HandoffCode:   flagsConfig.HandoffCode,
		SettleSession: flagsConfig.SettleSession,
	}

	if conf.SettleInterval == 0 {
		conf.SettleInterval = flagsConfig.SettleInterval
	}
	if conf.SettleMaxRetries == 0 {
		conf.SettleMaxRetries = flagsConfig.SettleMaxRetries
	}
	return conf
}

func defaultCredentialsPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".raffly-credentials.json"
	}
	return filepath.Join(configDir, "raffly", "credentials.json")
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
