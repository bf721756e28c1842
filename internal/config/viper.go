// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EntityConfig describes one legal entity whose exports are processed.
type EntityConfig struct {
	Code    string `mapstructure:"code" yaml:"code" validate:"required,oneof=SL LLC"`
	Label   string `mapstructure:"label" yaml:"label"`
	DataDir string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
}

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter" validate:"required,len=1"`
	} `mapstructure:"csv" yaml:"csv"`

	FX struct {
		BaseCurrency    string `mapstructure:"base_currency" yaml:"base_currency" validate:"required,len=3"`
		APIURL          string `mapstructure:"api_url" yaml:"api_url" validate:"required,url"`
		TimeoutSeconds  int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds" validate:"min=1"`
		MaxWalkbackDays int    `mapstructure:"max_walkback_days" yaml:"max_walkback_days" validate:"min=0,max=31"`
		FallbackFile    string `mapstructure:"fallback_file" yaml:"fallback_file" validate:"required"`
	} `mapstructure:"fx" yaml:"fx"`

	Validation struct {
		ProfitabilityThreshold float64 `mapstructure:"profitability_threshold" yaml:"profitability_threshold" validate:"gt=0,lte=1"`
	} `mapstructure:"validation" yaml:"validation"`

	Output struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
		Format    string `mapstructure:"format" yaml:"format" validate:"oneof=json csv"`
	} `mapstructure:"output" yaml:"output"`

	Entities []EntityConfig `mapstructure:"entities" yaml:"entities" validate:"required,min=1,dive"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then an optional config file, then BOOKING_* environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.booking-reports")
	v.AddConfigPath(".booking-reports")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BOOKING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file not found is fine, an unreadable one is worth a warning
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("fx.base_currency", "EUR")
	v.SetDefault("fx.api_url", "https://api.exchangerate.host/v4/historical")
	v.SetDefault("fx.timeout_seconds", 10)
	v.SetDefault("fx.max_walkback_days", 7)
	v.SetDefault("fx.fallback_file", "fallback_fx.yaml")

	v.SetDefault("validation.profitability_threshold", 0.9)

	v.SetDefault("output.directory", "output")
	v.SetDefault("output.format", "csv")

	v.SetDefault("entities", []map[string]interface{}{
		{"code": "SL", "label": "España", "data_dir": "data/espana"},
		{"code": "LLC", "label": "México", "data_dir": "data/mexico"},
	})
}

// ValidateConfig checks the configuration against its struct-tag constraints.
func ValidateConfig(config *Config) error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("field '%s' failed rule '%s'", first.Namespace(), first.Tag())
		}
		return err
	}
	return nil
}
