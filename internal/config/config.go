package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted by store.backend.
const (
	BackendS3     = "s3"
	BackendFile   = "file"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	S3        S3Config        `mapstructure:"s3"`
	File      FileConfig      `mapstructure:"file"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Lock      LockConfig      `mapstructure:"lock"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StoreConfig selects the document backend and its concurrency controls.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Key     string `mapstructure:"key"`
	// OptimisticConcurrency makes every write conditional on the version read.
	OptimisticConcurrency bool `mapstructure:"optimistic_concurrency"`
	MaxRetries            int  `mapstructure:"max_retries"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// Missing lists the settings the object store cannot work without.
func (c S3Config) Missing() []string {
	var missing []string
	if c.Region == "" {
		missing = append(missing, "region")
	}
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.AccessKeyID == "" {
		missing = append(missing, "access_key_id")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "secret_access_key")
	}
	if c.BucketName == "" {
		missing = append(missing, "bucket_name")
	}
	return missing
}

type FileConfig struct {
	DataDir   string `mapstructure:"data_dir"`
	Retention int    `mapstructure:"retention"`
}

type DatabaseConfig struct {
	URI        string `mapstructure:"uri"`
	Name       string `mapstructure:"name"`
	Collection string `mapstructure:"collection"`
}

// LockConfig enables the cross-process advisory lock when RedisURL is set.
type LockConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	TTL         time.Duration `mapstructure:"ttl"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text or json
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
}

// BootstrapConfig seeds an administrator into a brand-new document. Nothing is seeded
// unless both the email and the password hash are set.
type BootstrapConfig struct {
	AdminEmail        string `mapstructure:"admin_email"`
	AdminName         string `mapstructure:"admin_name"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"`
}

// legacyEnv maps config keys to the environment names used by earlier deployments.
var legacyEnv = map[string][]string{
	"s3.region":            {"WASABI_REGION", "VITE_WASABI_REGION"},
	"s3.endpoint":          {"WASABI_ENDPOINT", "VITE_WASABI_ENDPOINT"},
	"s3.access_key_id":     {"WASABI_ACCESS_KEY", "VITE_WASABI_ACCESS_KEY"},
	"s3.secret_access_key": {"WASABI_SECRET_KEY", "VITE_WASABI_SECRET_KEY"},
	"s3.bucket_name":       {"WASABI_BUCKET", "VITE_WASABI_BUCKET"},
}

// LoadConfig reads configuration from <path>/.env, <path>/config.yaml and the
// environment, in increasing order of precedence.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	for key, names := range legacyEnv {
		upper := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err = v.BindEnv(append([]string{key, upper}, names...)...); err != nil {
			return config, err
		}
	}
	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	config.Store.Backend = strings.ToLower(strings.TrimSpace(config.Store.Backend))
	switch config.Store.Backend {
	case BackendS3, BackendFile, BackendMongo, BackendMemory:
	default:
		return config, fmt.Errorf("unknown store.backend %q", config.Store.Backend)
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("store.backend", BackendS3)
	v.SetDefault("store.key", "metadata/videosplus-data.json")
	v.SetDefault("store.optimistic_concurrency", false)
	v.SetDefault("store.max_retries", 5)
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_expiry", "1h")
	v.SetDefault("file.data_dir", DefaultDataDir())
	v.SetDefault("file.retention", 5)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "videosplus")
	v.SetDefault("database.collection", "documents")
	v.SetDefault("lock.ttl", "30s")
	v.SetDefault("lock.wait_timeout", "10s")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("tracing.service_name", "videosplus-api")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("bootstrap.admin_name", "Administrator")
	// Registered so AutomaticEnv can see them during Unmarshal.
	for _, key := range []string{
		"s3.endpoint", "s3.region", "s3.access_key_id", "s3.secret_access_key", "s3.bucket_name",
		"lock.redis_url", "jwt.secret", "log.file", "tracing.endpoint",
		"bootstrap.admin_email", "bootstrap.admin_password_hash",
	} {
		v.SetDefault(key, "")
	}
}

// DefaultDataDir is where the file backend keeps the document when file.data_dir is unset.
func DefaultDataDir() string {
	xdg.Reload()
	return filepath.Join(xdg.DataHome, "videosplus")
}
