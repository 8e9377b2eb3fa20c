// Config loading for the lpgtrack CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys. Dotted keys address the nested blocks in config.yaml.
	cfgKeyStore          = "store"
	cfgKeyCacheTTL       = "cache_ttl"
	cfgKeyDataDir        = "data_dir"
	cfgKeyAudit          = "audit"
	cfgKeyCSVPath        = "csv.path"
	cfgKeyCSVReadOnly    = "csv.read_only"
	cfgKeySQLitePath     = "sqlite.path"
	cfgKeyPostgresDSN    = "postgres.dsn"
	cfgKeySheetPath      = "sheet.path"
	cfgKeySheetWorksheet = "sheet.worksheet"
	cfgKeyS3Bucket       = "s3.bucket"
	cfgKeyS3Key          = "s3.key"
	cfgKeyS3Region       = "s3.region"
	cfgKeyS3Endpoint     = "s3.endpoint"
	cfgKeyS3PathStyle    = "s3.path_style"
	cfgKeyS3AccessKey    = "s3.access_key_id"
	cfgKeyS3SecretKey    = "s3.secret_access_key"
	cfgKeyServerAddr     = "server.addr"
	cfgKeyServerDebug    = "server.debug"

	defaultStore      = types.StoreCSV
	defaultCacheTTL   = "60s"
	defaultServerAddr = ":8080"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# lpgtrack configuration

# Store backend: csv | sqlite | postgres | sheet | s3 | memory
store: csv

# How long a loaded cylinder table stays cached. 0s disables the cache.
cache_ttl: 60s

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Record every mutation in <data-dir>/audit.jsonl
audit: true

csv:
  path: ""          # default <data-dir>/cylinders.csv
  read_only: false

sqlite:
  path: ""          # default <data-dir>/lpgtrack.db

postgres:
  dsn: ""           # or LPGTRACK_POSTGRES_DSN

sheet:
  path: ""          # default <data-dir>/cylinders.xlsx
  worksheet: Cylinders

s3:
  bucket: ""        # required when store: s3
  key: cylinders.csv
  region: ""
  endpoint: ""      # set for MinIO and other S3-compatible servers
  path_style: false

server:
  addr: ":8080"
  debug: false
`

// cfgViper holds the loaded configuration. Set by the root command before any
// subcommand runs.
var cfgViper *viper.Viper

// envOr returns the LPGTRACK_<name> environment value, or fallback when the
// variable is unset or empty.
func envOr(name, fallback string) string {
	if v := os.Getenv("LPGTRACK_" + name); v != "" {
		return v
	}
	return fallback
}

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
//
// Defaults are seeded from LPGTRACK_* environment variables so the effective
// precedence is flags > config.yaml > environment > built-in defaults.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyStore, envOr("STORE", defaultStore))
	v.SetDefault(cfgKeyCacheTTL, envOr("CACHE_TTL", defaultCacheTTL))
	v.SetDefault(cfgKeyAudit, envOr("AUDIT", "true"))
	v.SetDefault(cfgKeyCSVPath, envOr("CSV_PATH", ""))
	v.SetDefault(cfgKeyCSVReadOnly, envOr("CSV_READ_ONLY", "false"))
	v.SetDefault(cfgKeySQLitePath, envOr("SQLITE_PATH", ""))
	v.SetDefault(cfgKeyPostgresDSN, envOr("POSTGRES_DSN", ""))
	v.SetDefault(cfgKeySheetPath, envOr("SHEET_PATH", ""))
	v.SetDefault(cfgKeySheetWorksheet, envOr("SHEET_WORKSHEET", ""))
	v.SetDefault(cfgKeyS3Bucket, envOr("S3_BUCKET", ""))
	v.SetDefault(cfgKeyS3Key, envOr("S3_KEY", ""))
	v.SetDefault(cfgKeyS3Region, envOr("S3_REGION", ""))
	v.SetDefault(cfgKeyS3Endpoint, envOr("S3_ENDPOINT", ""))
	v.SetDefault(cfgKeyS3PathStyle, envOr("S3_PATH_STYLE", "false"))
	v.SetDefault(cfgKeyS3AccessKey, envOr("S3_ACCESS_KEY_ID", ""))
	v.SetDefault(cfgKeyS3SecretKey, envOr("S3_SECRET_ACCESS_KEY", ""))
	v.SetDefault(cfgKeyServerAddr, envOr("SERVER_ADDR", defaultServerAddr))
	v.SetDefault(cfgKeyServerDebug, envOr("SERVER_DEBUG", "false"))
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Missing config.yaml is not an error.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		// File already exists.
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// buildConfig assembles the effective types.Config from the loaded viper
// settings, the resolved data directory and the command-line overrides, then
// validates it.
func buildConfig() (types.Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Store:    cfgViper.GetString(cfgKeyStore),
		CacheTTL: cfgViper.GetDuration(cfgKeyCacheTTL),
		DataDir:  dataDir,
		Audit:    cfgViper.GetBool(cfgKeyAudit),
		CSV: types.CSVConfig{
			Path:     cfgViper.GetString(cfgKeyCSVPath),
			ReadOnly: cfgViper.GetBool(cfgKeyCSVReadOnly),
		},
		SQLite: types.SQLiteConfig{
			Path: cfgViper.GetString(cfgKeySQLitePath),
		},
		Postgres: types.PostgresConfig{
			DSN: cfgViper.GetString(cfgKeyPostgresDSN),
		},
		Sheet: types.SheetConfig{
			Path:      cfgViper.GetString(cfgKeySheetPath),
			Worksheet: cfgViper.GetString(cfgKeySheetWorksheet),
		},
		S3: types.S3Config{
			Bucket:          cfgViper.GetString(cfgKeyS3Bucket),
			Key:             cfgViper.GetString(cfgKeyS3Key),
			Region:          cfgViper.GetString(cfgKeyS3Region),
			Endpoint:        cfgViper.GetString(cfgKeyS3Endpoint),
			PathStyle:       cfgViper.GetBool(cfgKeyS3PathStyle),
			AccessKeyID:     cfgViper.GetString(cfgKeyS3AccessKey),
			SecretAccessKey: cfgViper.GetString(cfgKeyS3SecretKey),
		},
		Server: types.ServerConfig{
			Addr:  cfgViper.GetString(cfgKeyServerAddr),
			Debug: cfgViper.GetBool(cfgKeyServerDebug),
		},
	}

	if flagStore != "" {
		cfg.Store = flagStore
	}

	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
