package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	config := &Config{}
	config.CSV.Delimiter = ","
	config.FX.BaseCurrency = "EUR"
	config.FX.APIURL = "https://api.exchangerate.host/v4/historical"
	config.FX.TimeoutSeconds = 10
	config.FX.MaxWalkbackDays = 7
	config.FX.FallbackFile = "fallback_fx.yaml"
	config.Validation.ProfitabilityThreshold = 0.9
	config.Output.Format = "csv"
	config.Entities = []EntityConfig{
		{Code: "SL", Label: "España", DataDir: "data/espana"},
	}
	return config
}

func TestInitializeConfigDefaults(t *testing.T) {
	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "EUR", config.FX.BaseCurrency)
	assert.Equal(t, 7, config.FX.MaxWalkbackDays)
	assert.Equal(t, 10, config.FX.TimeoutSeconds)
	assert.Equal(t, "fallback_fx.yaml", config.FX.FallbackFile)
	assert.Equal(t, 0.9, config.Validation.ProfitabilityThreshold)
	assert.Equal(t, "csv", config.Output.Format)
	require.Len(t, config.Entities, 2)
	assert.Equal(t, "SL", config.Entities[0].Code)
	assert.Equal(t, "LLC", config.Entities[1].Code)
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, ValidateConfig(validConfig()))
}

func TestValidateConfigRejectsBadEntityCode(t *testing.T) {
	config := validConfig()
	config.Entities[0].Code = "GMBH"

	err := ValidateConfig(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code")
}

func TestValidateConfigRejectsOutOfRangeThreshold(t *testing.T) {
	config := validConfig()
	config.Validation.ProfitabilityThreshold = 1.5

	assert.Error(t, ValidateConfig(config))

	config.Validation.ProfitabilityThreshold = 0
	assert.Error(t, ValidateConfig(config))
}

func TestValidateConfigRejectsBadOutputFormat(t *testing.T) {
	config := validConfig()
	config.Output.Format = "xml"

	assert.Error(t, ValidateConfig(config))
}

func TestValidateConfigRequiresEntities(t *testing.T) {
	config := validConfig()
	config.Entities = nil

	assert.Error(t, ValidateConfig(config))
}

func TestValidateConfigRejectsBadAPIURL(t *testing.T) {
	config := validConfig()
	config.FX.APIURL = "not a url"

	assert.Error(t, ValidateConfig(config))
}
