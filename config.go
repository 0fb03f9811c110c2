package destiin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// OCRConfig configures the external receipt parsing service.
type OCRConfig struct {
	URL     string        `mapstructure:"url" env:"URL"`         // Endpoint receiving the multipart upload.
	Timeout time.Duration `mapstructure:"timeout" env:"TIMEOUT"` // Upper bound for a single parse call.
}

// Config is the service configuration. It is read from config.yaml in the config directory,
// then overridden by DESTIIN_* environment variables.
type Config struct {
	viper           *viper.Viper
	ConfigDir       string    `mapstructure:"config_dir"`
	ListenAddress   string    `mapstructure:"listen_address" env:"DESTIIN_LISTEN_ADDRESS"`
	DatabasePath    string    `mapstructure:"database_path" env:"DESTIIN_DATABASE_PATH"`
	FilesDir        string    `mapstructure:"files_dir" env:"DESTIIN_FILES_DIR"`
	OCR             OCRConfig `mapstructure:"ocr" envPrefix:"DESTIIN_OCR_"`
	Company         string    `mapstructure:"company" env:"DESTIIN_COMPANY"`                    // Company of auto-created employees.
	ExpenseApprover string    `mapstructure:"expense_approver" env:"DESTIIN_EXPENSE_APPROVER"`  // Approver of auto-created claims.
	APIKeys         []string  `mapstructure:"api_keys" env:"DESTIIN_API_KEYS" envSeparator:","` // "key:secret" pairs.
	TLSCert         string    `mapstructure:"tls_cert" env:"DESTIIN_TLS_CERT"`
	TLSKey          string    `mapstructure:"tls_key" env:"DESTIIN_TLS_KEY"`
	Debug           bool      `mapstructure:"debug" env:"DESTIIN_DEBUG"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *Config {
	return &Config{
		ListenAddress:   "127.0.0.1:8000",
		DatabasePath:    "destiin.db",
		FilesDir:        "public/files",
		OCR:             OCRConfig{URL: "http://127.0.0.1:8080/parse-receipt", Timeout: 90 * time.Second},
		Company:         "Destiin",
		ExpenseApprover: "",
		APIKeys:         []string{},
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("listen_address", def.ListenAddress)
	v.SetDefault("database_path", def.DatabasePath)
	v.SetDefault("files_dir", def.FilesDir)
	v.SetDefault("ocr.url", def.OCR.URL)
	v.SetDefault("ocr.timeout", def.OCR.Timeout.String())
	v.SetDefault("company", def.Company)
	v.SetDefault("expense_approver", def.ExpenseApprover)
	v.SetDefault("api_keys", def.APIKeys)
	v.SetDefault("tls_cert", "")
	v.SetDefault("tls_key", "")
	v.SetDefault("debug", false)
}

// LoadConfig reads config.yaml from configDir, creating the directory and a default file on first run.
// Relative paths in the file are resolved against configDir.
func LoadConfig(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config dir %s: %w", configDir, err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file : %w", err)
		}
		if err := v.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("writing config file : %w", err)
		}
	}

	cfg := &Config{viper: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct : %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment overrides: %w", err)
	}

	cfg.ConfigDir = configDir
	cfg.DatabasePath = resolvePath(configDir, cfg.DatabasePath)
	cfg.FilesDir = resolvePath(configDir, cfg.FilesDir)
	if cfg.TLSCert != "" {
		cfg.TLSCert = resolvePath(configDir, cfg.TLSCert)
	}
	if cfg.TLSKey != "" {
		cfg.TLSKey = resolvePath(configDir, cfg.TLSKey)
	}
	return cfg, nil
}

func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// AddAPIKey appends a "key:secret" pair and persists the file.
func (cfg *Config) AddAPIKey(pair string) error {
	if _, _, ok := splitAPIKey(pair); !ok {
		return errors.New("api key must have the form key:secret")
	}
	if slices.Contains(cfg.APIKeys, pair) {
		return nil
	}
	cfg.APIKeys = append(cfg.APIKeys, pair)
	return cfg.saveAPIKeys()
}

// RemoveAPIKey deletes every pair whose key part matches and persists the file.
func (cfg *Config) RemoveAPIKey(key string) error {
	cfg.APIKeys = slices.DeleteFunc(cfg.APIKeys, func(pair string) bool {
		k, _, _ := splitAPIKey(pair)
		return k == key
	})
	return cfg.saveAPIKeys()
}

func (cfg *Config) saveAPIKeys() error {
	if cfg.viper == nil {
		return errors.New("config was not loaded from a file")
	}
	cfg.viper.Set("api_keys", cfg.APIKeys)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// APIKeyPairs returns the configured keys mapped to their secrets. Malformed entries are skipped.
func (cfg *Config) APIKeyPairs() map[string]string {
	pairs := make(map[string]string, len(cfg.APIKeys))
	for _, pair := range cfg.APIKeys {
		if key, secret, ok := splitAPIKey(pair); ok {
			pairs[key] = secret
		}
	}
	return pairs
}

func splitAPIKey(pair string) (key, secret string, ok bool) {
	key, secret, ok = strings.Cut(pair, ":")
	return key, secret, ok && key != "" && secret != ""
}
