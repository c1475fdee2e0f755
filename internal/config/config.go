package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/core-coin/go-core/v2/common"
	"github.com/joho/godotenv"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Network configuration
	NetworkID *big.Int

	// Collection constants, fixed at startup
	CollectionName   string
	CollectionSymbol string
	FeeReceiver      string
	FeeBasisPoints   int64

	// Access guard
	AdminAddress string
	// ServiceAddress is the spender buyers approve payment-token allowances
	// for. Defaults to the admin address.
	ServiceAddress string

	// Metadata
	BaseURI string
	// LockIssuedItems blocks updateToken for already-issued ids when true.
	LockIssuedItems bool

	// Notification configuration
	TelegramBotToken string
	TelegramChatID   string

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string
	OpsEmail     string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:      getEnvAsBool("DEVELOPMENT", false),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "vendere"),
		NetworkID:        getEnvAsBigInt("NETWORK_ID", big.NewInt(1)), // Default to Mainnet ID

		CollectionName:   getEnv("COLLECTION_NAME", "Vendere"),
		CollectionSymbol: getEnv("COLLECTION_SYMBOL", "VND"),
		FeeReceiver:      getEnv("FEE_RECEIVER", ""),
		FeeBasisPoints:   int64(getEnvAsInt("FEE_BASIS_POINTS", 500)),

		AdminAddress:   getEnv("ADMIN_ADDRESS", ""),
		ServiceAddress: getEnv("SERVICE_ADDRESS", ""),

		BaseURI:         getEnv("BASE_URI", ""),
		LockIssuedItems: getEnvAsBool("LOCK_ISSUED_ITEMS", false),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPSender:   getEnv("SMTP_SENDER", ""),
		OpsEmail:     getEnv("OPS_EMAIL", ""),

		APIPort: getEnvAsInt("API_PORT", 6542),
	}

	if cfg.ServiceAddress == "" {
		cfg.ServiceAddress = cfg.AdminAddress
	}

	// Set default network ID before validation (required for address validation)
	common.DefaultNetworkID = common.NetworkID(cfg.NetworkID.Int64())

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.AdminAddress == "" {
		return fmt.Errorf("ADMIN_ADDRESS is required")
	}

	if _, err := common.HexToAddress(c.AdminAddress); err != nil {
		return fmt.Errorf("invalid ADMIN_ADDRESS format: %w", err)
	}

	if c.FeeReceiver == "" {
		return fmt.Errorf("FEE_RECEIVER is required")
	}

	if _, err := common.HexToAddress(c.FeeReceiver); err != nil {
		return fmt.Errorf("invalid FEE_RECEIVER format: %w", err)
	}

	if _, err := common.HexToAddress(c.ServiceAddress); err != nil {
		return fmt.Errorf("invalid SERVICE_ADDRESS format: %w", err)
	}

	if c.FeeBasisPoints < 0 || c.FeeBasisPoints > 10000 {
		return fmt.Errorf("FEE_BASIS_POINTS must be between 0 and 10000, got %d", c.FeeBasisPoints)
	}

	if !c.Development {
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required")
		}

		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBigInt(name string, defaultValue *big.Int) *big.Int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, ok := new(big.Int).SetString(valueStr, 10); ok {
			return value
		}
	}
	return defaultValue
}
