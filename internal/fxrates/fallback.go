package fxrates

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"gannet/booking-reports/internal/parsererror"
)

// FallbackFile is the static FX configuration loaded once per run: a
// per-currency default rate-to-base plus the currency alias corrections.
// It is read-only after loading.
type FallbackFile struct {
	Rates   map[string]decimal.Decimal
	Aliases map[string]string
}

type fallbackYAML struct {
	Rates   map[string]float64 `yaml:"rates"`
	Aliases map[string]string  `yaml:"aliases"`
}

// FindConfigFile looks for a configuration file in standard locations.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".config", "booking-reports", filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadFallbackFile loads and validates the fallback table. A missing or
// unparseable file is a fatal configuration error: the run must not start
// without a safety net under the remote feed.
func LoadFallbackFile(filename, baseCurrency string) (*FallbackFile, error) {
	path, err := FindConfigFile(filename)
	if err != nil {
		return nil, &parsererror.ConfigError{
			Item:   filename,
			Reason: "fallback FX table not found",
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &parsererror.ConfigError{
			Item:   path,
			Reason: fmt.Sprintf("cannot read fallback FX table: %v", err),
		}
	}

	var raw fallbackYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &parsererror.ConfigError{
			Item:   path,
			Reason: fmt.Sprintf("cannot parse fallback FX table: %v", err),
		}
	}

	if len(raw.Rates) == 0 {
		return nil, &parsererror.ConfigError{
			Item:   path,
			Reason: "fallback FX table has no rates",
		}
	}

	rates := make(map[string]decimal.Decimal, len(raw.Rates))
	for code, value := range raw.Rates {
		if value <= 0 {
			return nil, &parsererror.ConfigError{
				Item:   path,
				Reason: fmt.Sprintf("non-positive fallback rate for %s", code),
			}
		}
		rates[code] = decimal.NewFromFloat(value)
	}

	// USD must be present: every run derives USD amounts via the base/USD
	// cross rate, and the fallback has to cover a dead remote.
	if _, ok := rates["USD"]; !ok && baseCurrency != "USD" {
		return nil, &parsererror.ConfigError{
			Item:   path,
			Reason: "fallback FX table missing USD",
		}
	}

	return &FallbackFile{Rates: rates, Aliases: raw.Aliases}, nil
}
