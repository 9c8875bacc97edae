package briqclient

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/elusion/briq-go/internal/constants"
	"github.com/elusion/briq-go/pkg/briq"
)

type loadOptions struct {
	configFile string
	dotEnvFile string
	searchDirs []string
}

// LoadOption customizes LoadConfig.
type LoadOption func(*loadOptions)

// WithConfigFile reads settings from path. A missing file is an error.
func WithConfigFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.configFile = path
	}
}

// WithDotEnvFile loads path instead of ".env". An empty path disables .env
// loading.
func WithDotEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.dotEnvFile = path
	}
}

// WithConfigSearchDirs replaces the directories searched for briq.yaml.
func WithConfigSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.searchDirs = dirs
	}
}

// LoadConfig builds a Config from, in decreasing precedence, BRIQ_*
// environment variables, a .env file, and a briq.yaml config file found in
// the working directory or ~/.briq. Variables already set in the environment
// are never overridden by the .env file.
//
// Recognized keys: api_key, base_url, timeout_seconds, max_connections,
// user_agent, debug.
func LoadConfig(opts ...LoadOption) (*briq.Config, error) {
	options := &loadOptions{
		dotEnvFile: constants.DefaultDotEnvFile,
		searchDirs: defaultSearchDirs(),
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.dotEnvFile != "" {
		if _, err := os.Stat(options.dotEnvFile); err == nil {
			err = godotenv.Load(options.dotEnvFile)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", options.dotEnvFile, err)
			}
		}
	}

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(constants.ConfigKeyBaseURL, constants.DefaultBaseURL)
	v.SetDefault(constants.ConfigKeyTimeout, constants.DefaultHTTPTimeout.Seconds())
	v.SetDefault(constants.ConfigKeyMaxConns, constants.DefaultMaxConnections)
	v.SetDefault(constants.ConfigKeyUserAgent, constants.DefaultUserAgent)
	v.SetDefault(constants.ConfigKeyDebug, false)

	err := readConfigFile(v, options)
	if err != nil {
		return nil, err
	}

	config := &briq.Config{
		APIKey:         v.GetString(constants.ConfigKeyAPIKey),
		BaseURL:        v.GetString(constants.ConfigKeyBaseURL),
		Timeout:        time.Duration(v.GetFloat64(constants.ConfigKeyTimeout) * float64(time.Second)),
		MaxConnections: v.GetInt(constants.ConfigKeyMaxConns),
		UserAgent:      v.GetString(constants.ConfigKeyUserAgent),
		Debug:          v.GetBool(constants.ConfigKeyDebug),
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: set %s_%s", briq.ErrAPIKeyRequired, constants.EnvPrefix, "API_KEY")
	}

	return config, nil
}

func readConfigFile(v *viper.Viper, options *loadOptions) error {
	if options.configFile != "" {
		v.SetConfigFile(options.configFile)

		err := v.ReadInConfig()
		if err != nil {
			return fmt.Errorf("reading config file %s: %w", options.configFile, err)
		}

		return nil
	}

	if len(options.searchDirs) == 0 {
		return nil
	}

	for _, dir := range options.searchDirs {
		v.AddConfigPath(dir)
	}

	v.SetConfigName(constants.DefaultConfigName)
	v.SetConfigType("yaml")

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("reading config file: %w", err)
	}

	return nil
}

func defaultSearchDirs() []string {
	dirs := []string{"."}

	home, err := os.UserHomeDir()
	if err == nil {
		dirs = append(dirs, filepath.Join(home, constants.DefaultConfigDirName))
	}

	return dirs
}
