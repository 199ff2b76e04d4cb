// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Story       StoryConfig
	IPFS        IPFSConfig
	AWS         AWSConfig
	MCP         MCPConfig
	RateLimit   RateLimitConfig
	I18n        I18nConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
	// APIKeyHashes are bcrypt hashes of operator API keys that may be
	// exchanged for access tokens.
	APIKeyHashes []string
}

// StoryConfig holds the chain endpoint, the signer and the protocol
// contract addresses. Addresses default to the Story deployments and can be
// overridden per network.
type StoryConfig struct {
	Network                string
	RPCURL                 string
	ChainID                int64
	PrivateKey             string
	ExplorerURL            string
	ReceiptTimeout         time.Duration
	ReceiptPollInterval    time.Duration
	WIPToken               string
	RoyaltyPolicyLAP       string
	RoyaltyModule          string
	LicensingModule        string
	PILicenseTemplate      string
	IPAssetRegistry        string
	RegistrationWorkflows  string
	CoreMetadataModule     string
	DefaultSPGNFTContract  string
	DefaultMaxRevenueShare int64
	DefaultLicenseTermsURI string
	TokenShortcutOverrides map[string]string
}

type IPFSConfig struct {
	PinataJWT     string
	PinataAPIURL  string
	GatewayURL    string
	UploadTimeout time.Duration
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type MCPConfig struct {
	Name      string
	Version   string
	Transport string // stdio | http
	Path      string
}

type RateLimitConfig struct {
	GeneralPerSecond float64
	GeneralBurst     int
	WritePerMinute   float64
	WriteBurst       int
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 120),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvAsBool("DB_ENABLED", false),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "story_mcp"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", ""),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
			APIKeyHashes:   getEnvAsList("API_KEY_HASHES"),
		},
		Story: StoryConfig{
			Network:                getEnv("STORY_NETWORK", "aeneid"),
			RPCURL:                 getEnv("STORY_RPC_URL", "https://aeneid.storyrpc.io"),
			ChainID:                int64(getEnvAsInt("STORY_CHAIN_ID", 1315)),
			PrivateKey:             getEnv("WALLET_PRIVATE_KEY", ""),
			ExplorerURL:            getEnv("STORY_EXPLORER_URL", "https://aeneid.storyscan.io"),
			ReceiptTimeout:         time.Duration(getEnvAsInt("STORY_RECEIPT_TIMEOUT_SEC", 120)) * time.Second,
			ReceiptPollInterval:    time.Duration(getEnvAsInt("STORY_RECEIPT_POLL_MS", 1500)) * time.Millisecond,
			WIPToken:               getEnv("STORY_WIP_TOKEN", "0x1514000000000000000000000000000000000000"),
			RoyaltyPolicyLAP:       getEnv("STORY_ROYALTY_POLICY_LAP", "0xBe54FB168b3c982b7AaE60dB6CF75Bd8447b390E"),
			RoyaltyModule:          getEnv("STORY_ROYALTY_MODULE", "0xD2f60c40fEbccf6311f8B47c4f2Ec6b040400086"),
			LicensingModule:        getEnv("STORY_LICENSING_MODULE", "0x04fbd8a2e56dd85CFD5500A4A4DfA955B9f1dE6f"),
			PILicenseTemplate:      getEnv("STORY_PIL_TEMPLATE", "0x2E896b0b2Fdb7457499B56AAaA4AE55BCB4Cd316"),
			IPAssetRegistry:        getEnv("STORY_IP_ASSET_REGISTRY", "0x77319B4031e6eF1250907aa00018B8B1c67a244b"),
			RegistrationWorkflows:  getEnv("STORY_REGISTRATION_WORKFLOWS", "0xbe39E1C756e921BD25DF86e7AAa31106d1eb0424"),
			CoreMetadataModule:     getEnv("STORY_CORE_METADATA_MODULE", "0x6E81a25C99C6e8430aeC7353325EB138aFE5DC16"),
			DefaultSPGNFTContract:  getEnv("STORY_SPG_NFT_CONTRACT", ""),
			DefaultMaxRevenueShare: int64(getEnvAsInt("STORY_MAX_REVENUE_SHARE", 100)),
			DefaultLicenseTermsURI: getEnv("STORY_LICENSE_TERMS_URI", ""),
			TokenShortcutOverrides: getEnvAsMap("STORY_TOKEN_SHORTCUTS"),
		},
		IPFS: IPFSConfig{
			PinataJWT:     getEnv("PINATA_JWT", ""),
			PinataAPIURL:  getEnv("PINATA_API_URL", "https://api.pinata.cloud"),
			GatewayURL:    getEnv("IPFS_GATEWAY_URL", "https://ipfs.io/ipfs"),
			UploadTimeout: time.Duration(getEnvAsInt("IPFS_UPLOAD_TIMEOUT_SEC", 60)) * time.Second,
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		MCP: MCPConfig{
			Name:      getEnv("MCP_SERVER_NAME", "story-mcp"),
			Version:   getEnv("MCP_SERVER_VERSION", "1.0.0"),
			Transport: strings.ToLower(getEnv("MCP_TRANSPORT", "http")),
			Path:      getEnv("MCP_HTTP_PATH", "/mcp"),
		},
		RateLimit: RateLimitConfig{
			GeneralPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
			GeneralBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
			WritePerMinute:   getEnvAsFloat("RATE_LIMIT_WRITES_PER_MINUTE", 10),
			WriteBurst:       getEnvAsInt("RATE_LIMIT_WRITE_BURST", 5),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			LocalesPath:   getEnv("LOCALES_PATH", "./internal/i18n/locales"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
	}

	return config, config.Validate()
}

// DSN builds the Postgres connection string for the audit store.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s application_name=story-mcp",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

func (c *Config) Validate() error {
	if c.Story.RPCURL == "" {
		return fmt.Errorf("STORY_RPC_URL is required")
	}

	if c.Story.PrivateKey != "" {
		key := strings.TrimPrefix(c.Story.PrivateKey, "0x")
		if len(key) != 64 {
			return fmt.Errorf("WALLET_PRIVATE_KEY must be 32 bytes of hex")
		}
	}

	addresses := map[string]string{
		"STORY_WIP_TOKEN":              c.Story.WIPToken,
		"STORY_ROYALTY_POLICY_LAP":     c.Story.RoyaltyPolicyLAP,
		"STORY_ROYALTY_MODULE":         c.Story.RoyaltyModule,
		"STORY_LICENSING_MODULE":       c.Story.LicensingModule,
		"STORY_PIL_TEMPLATE":           c.Story.PILicenseTemplate,
		"STORY_IP_ASSET_REGISTRY":      c.Story.IPAssetRegistry,
		"STORY_REGISTRATION_WORKFLOWS": c.Story.RegistrationWorkflows,
		"STORY_CORE_METADATA_MODULE":   c.Story.CoreMetadataModule,
	}
	for name, value := range addresses {
		if !common.IsHexAddress(value) {
			return fmt.Errorf("%s is not a valid address: %q", name, value)
		}
	}
	if c.Story.DefaultSPGNFTContract != "" && !common.IsHexAddress(c.Story.DefaultSPGNFTContract) {
		return fmt.Errorf("STORY_SPG_NFT_CONTRACT is not a valid address: %q", c.Story.DefaultSPGNFTContract)
	}
	for symbol, value := range c.Story.TokenShortcutOverrides {
		if !common.IsHexAddress(value) {
			return fmt.Errorf("token shortcut %s is not a valid address: %q", symbol, value)
		}
	}

	if c.Story.DefaultMaxRevenueShare < 0 || c.Story.DefaultMaxRevenueShare > 100 {
		return fmt.Errorf("STORY_MAX_REVENUE_SHARE must be between 0 and 100")
	}

	if len(c.JWT.APIKeyHashes) > 0 && c.JWT.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET is required when API_KEY_HASHES is set")
	}

	if c.MCP.Transport != "stdio" && c.MCP.Transport != "http" {
		return fmt.Errorf("MCP_TRANSPORT must be stdio or http, got %q", c.MCP.Transport)
	}

	if c.Database.Enabled && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAsMap parses "KEY=value,KEY2=value2".
func getEnvAsMap(key string) map[string]string {
	out := make(map[string]string)
	for _, pair := range getEnvAsList(key) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}
