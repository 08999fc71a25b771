package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath = "."

	defaultMaxRequestBodySize = "1M"

	defaultRedisPrefix = "authsvc:"
	defaultRedisTTL    = 5 * time.Minute

	defaultSlowQueryThreshold = 200 * time.Millisecond

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	QueryLogSilent = "silent"
	QueryLogError  = "error"
	QueryLogWarn   = "warn"
	QueryLogInfo   = "info"

	PasswordSchemeSHA256 = "sha256"
	PasswordSchemeBcrypt = "bcrypt"

	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port" validate:"gte=0,lte=65535"`

		// MaxRequestBodySize uses echo's size notation, e.g. "1M".
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`

		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Database DatabaseConfig `json:"database" yaml:"database"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres" validate:"-"`

	// JWT holds the signing configuration shared by every token operation.
	JWT JWTConfig `json:"jwt" yaml:"jwt"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// PubSub is optional; without it identity events are dropped.
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub" mapstructure:"pubsub"`

	// Redis enables the user lookup cache when present.
	Redis *RedisConfig `json:"redis" yaml:"redis" mapstructure:"redis"`
}

// DatabaseConfig selects the storage backend for the user store.
type DatabaseConfig struct {
	Driver      string `json:"driver" yaml:"driver" validate:"oneof=postgres sqlite"`
	SQLitePath  string `json:"sqlitePath" yaml:"sqlitePath"`
	AutoMigrate bool   `json:"autoMigrate" yaml:"autoMigrate"`

	// QueryLog picks the GORM log level. Empty means info in debug mode and warn otherwise.
	QueryLog string `json:"queryLog" yaml:"queryLog" validate:"omitempty,oneof=silent error warn info"`
	// SlowQueryThreshold is the elapsed time above which a statement is logged as slow.
	SlowQueryThreshold time.Duration `json:"slowQueryThreshold" yaml:"slowQueryThreshold" validate:"gte=0"`
}

// JWTConfig is the signing configuration: secret key material, issuer, audience and lifetime.
type JWTConfig struct {
	Secret              string `json:"secret" yaml:"secret" validate:"required,min=16"`
	ExpirationInMinutes int    `json:"expirationInMinutes" yaml:"expirationInMinutes" validate:"gt=0"`
	Issuer              string `json:"issuer" yaml:"issuer" validate:"required"`
	Audience            string `json:"audience" yaml:"audience" validate:"required"`
}

// Expiration returns the token lifetime as a duration.
func (c JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationInMinutes) * time.Minute
}

// AuthConfig defines credential hashing configuration
type AuthConfig struct {
	PasswordScheme string `json:"passwordScheme" yaml:"passwordScheme" validate:"omitempty,oneof=sha256 bcrypt"`
	BcryptCost     int    `json:"bcryptCost" yaml:"bcryptCost" validate:"omitempty,gte=4,lte=31"`
}

// PubSubConfig selects where identity events are published.
type PubSubConfig struct {
	Provider        string `json:"provider" yaml:"provider" validate:"omitempty,oneof=local google"`
	ProjectID       string `json:"projectId" yaml:"projectId"`
	TopicID         string `json:"topicId" yaml:"topicId"`
	CredentialsFile string `json:"credentialsFile" yaml:"credentialsFile"`
	LocalEndpoint   string `json:"localEndpoint" yaml:"localEndpoint" validate:"omitempty,url"`
}

// RedisConfig configures the read-through cache in front of the user store.
type RedisConfig struct {
	Addr     string        `json:"addr" yaml:"addr" validate:"required,hostname_port"`
	Password string        `json:"password" yaml:"password"`
	DB       int           `json:"db" yaml:"db" validate:"gte=0"`
	Prefix   string        `json:"prefix" yaml:"prefix"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" validate:"gte=0"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}

	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment variables override the file. JWT_EXPIRATIONINMINUTES -> jwt.expirationInMinutes
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if strings.TrimSpace(cfg.Database.Driver) == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = defaultSlowQueryThreshold
	}
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.PasswordScheme == "" {
		cfg.Auth.PasswordScheme = PasswordSchemeSHA256
	}
	if cfg.Redis != nil {
		if cfg.Redis.Prefix == "" {
			cfg.Redis.Prefix = defaultRedisPrefix
		}
		if cfg.Redis.TTL == 0 {
			cfg.Redis.TTL = defaultRedisTTL
		}
	}
}

// Validate fails fast on configuration the service cannot start with.
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Postgres == nil {
			return errors.New("invalid configuration: postgres section is required for the postgres driver")
		}
	case DriverSQLite:
		if strings.TrimSpace(cfg.Database.SQLitePath) == "" {
			return errors.New("invalid configuration: database.sqlitePath is required for the sqlite driver")
		}
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
