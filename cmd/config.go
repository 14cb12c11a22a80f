package main

import (
	"log"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

var logLevels = map[uint8]slog.Level{
	0: slog.LevelDebug,
	1: slog.LevelInfo,
	2: slog.LevelWarn,
	3: slog.LevelError,
}

type System struct {
	Port            string `env:"SYSTEM_PORT" envDefault:"3001"`
	AdminAuthTokens string `env:"SYSTEM_ADMIN_AUTH_TOKENS" envDefault:""`
	LogLevel        uint8  `env:"SYSTEM_LOG_LEVEL" envDefault:"1"` // 0 - debug, 1 - info, 2 - warn, 3 - error
	BodyLimit       int    `env:"SYSTEM_BODY_LIMIT" envDefault:"1073741824"`
	AllowedOrigins  string `env:"SYSTEM_ALLOWED_ORIGINS" envDefault:"*"`
}

type Metrics struct {
	Namespace        string `env:"NAMESPACE" envDefault:"ai-marketplace"`
	ServerSubsystem  string `env:"SERVER_SUBSYSTEM" envDefault:"server"`
	ClientsSubsystem string `env:"CLIENTS_SUBSYSTEM" envDefault:"clients"`
	WorkersSubsystem string `env:"WORKERS_SUBSYSTEM" envDefault:"workers"`
}

type IPFS struct {
	Token      string        `env:"WEB3_STORAGE_TOKEN,required"`
	APIURL     string        `env:"IPFS_API_URL" envDefault:"https://api.web3.storage"`
	GatewayURL string        `env:"IPFS_GATEWAY_URL" envDefault:"https://w3s.link"`
	Timeout    time.Duration `env:"IPFS_TIMEOUT" envDefault:"5m"`
	CacheTTL   time.Duration `env:"IPFS_CACHE_TTL" envDefault:"1h"`
	CacheSize  int           `env:"IPFS_CACHE_SIZE" envDefault:"1024"`
}

type TON struct {
	Network                  string        `env:"TON_NETWORK" envDefault:"testnet"`
	ConfigURL                string        `env:"TON_CONFIG_URL"`
	ContractAddress          string        `env:"CONTRACT_ADDRESS,required"`
	ContractName             string        `env:"CONTRACT_NAME" envDefault:"ai-marketplace"`
	PrivateKey               string        `env:"PRIVATE_KEY,required"`
	ListingAttachAmount      string        `env:"LISTING_ATTACH_AMOUNT" envDefault:"0.05"`
	ConfirmationTimeout      time.Duration `env:"CONFIRMATION_TIMEOUT" envDefault:"2m"`
	ConfirmationPollInterval time.Duration `env:"CONFIRMATION_POLL_INTERVAL" envDefault:"3s"`
	WalletMinBalance         string        `env:"WALLET_MIN_BALANCE" envDefault:"1"`
}

type Config struct {
	System  System
	Metrics Metrics
	IPFS    IPFS
	TON     TON
}

func loadConfig() *Config {
	cfg := &Config{}
	if err := env.Parse(&cfg.System); err != nil {
		log.Fatalf("Failed to parse system config: %v", err)
	}
	if err := env.Parse(&cfg.Metrics); err != nil {
		log.Fatalf("Failed to parse metrics config: %v", err)
	}
	if err := env.Parse(&cfg.IPFS); err != nil {
		log.Fatalf("Failed to parse IPFS config: %v", err)
	}
	if err := env.Parse(&cfg.TON); err != nil {
		log.Fatalf("Failed to parse TON config: %v", err)
	}

	return cfg
}
