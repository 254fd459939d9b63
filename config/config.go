package config

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	AWS    AWSConfig
	Chat   ChatConfig
	Client ClientConfig
	Logger LoggerConfig
}

type ServerConfig struct {
	Port           string
	Environment    string
	AllowedOrigins []string
}

type AWSConfig struct {
	Region            string
	Endpoint          string // Local DynamoDB / S3 override
	MessagesTable     string
	MatchesTable      string
	UsersTable        string
	InteractionsTable string
	PhotoBucket       string
}

type ChatConfig struct {
	ReconcileDelay        time.Duration
	CategorizeConcurrency int
	SortByRecency         bool
	RefreshOnFocus        bool
	MaxStaleness          time.Duration
	DedupeTolerance       time.Duration
}

type ClientConfig struct {
	BaseURL string
	UserID  string
	Timeout time.Duration
}

type LoggerConfig struct {
	Level       string
	Development bool
}

// New returns a viper instance with defaults and VIBIN_ environment overrides.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowedOrigins", []string{"*"})

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.messagesTable", "Messages")
	v.SetDefault("aws.matchesTable", "Matches")
	v.SetDefault("aws.usersTable", "Users")
	v.SetDefault("aws.interactionsTable", "Interactions")

	v.SetDefault("chat.reconcileDelay", time.Second)
	v.SetDefault("chat.categorizeConcurrency", 8)
	v.SetDefault("chat.sortByRecency", false)
	v.SetDefault("chat.refreshOnFocus", true)
	v.SetDefault("chat.maxStaleness", time.Duration(0))
	v.SetDefault("chat.dedupeTolerance", 2*time.Second)

	v.SetDefault("client.baseURL", "http://localhost:8080")
	v.SetDefault("client.timeout", 10*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.development", true)

	v.SetEnvPrefix("vibin")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the named yaml file from ./config (and the working
// directory) into v. A missing file is not an error.
func LoadConfig(v *viper.Viper, filename string) error {
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Debug().Str("file", filename).Msg("⚠️ config file not found, using defaults")
			return nil
		}
		return err
	}
	return nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c)
	if err != nil {
		log.Error().Err(err).Msg("❌ Unable to unmarshal config")
		return nil, err
	}
	return &c, nil
}
