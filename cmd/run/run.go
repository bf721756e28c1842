// Package run contains the command that executes the full pipeline.
package run

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gannet/booking-reports/cmd/root"
	"gannet/booking-reports/internal/common"
	"gannet/booking-reports/internal/config"
	"gannet/booking-reports/internal/crmparser"
	"gannet/booking-reports/internal/currencyutils"
	"gannet/booking-reports/internal/fileutils"
	"gannet/booking-reports/internal/fxrates"
	"gannet/booking-reports/internal/logging"
	"gannet/booking-reports/internal/models"
	"gannet/booking-reports/internal/parsererror"
	"gannet/booking-reports/internal/pipeline"
	"gannet/booking-reports/internal/report"
)

var (
	entityFlag string
	outputFlag string
	formatFlag string

	// Cmd is the run command
	Cmd = &cobra.Command{
		Use:   "run",
		Short: "Run the enrichment pipeline over every configured entity",
		RunE:  runPipeline,
	}
)

func init() {
	Cmd.Flags().StringVarP(&entityFlag, "entity", "e", "", "process only this entity code (SL or LLC)")
	Cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output directory (defaults to configuration)")
	Cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "output format: json or csv (defaults to configuration)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	log := logging.NewLogrusAdapterFromLogger(root.Log)

	cfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}

	outputDir := cfg.Output.Directory
	if outputFlag != "" {
		outputDir = outputFlag
	}
	format := cfg.Output.Format
	if formatFlag != "" {
		format = formatFlag
	}
	if format != "json" && format != "csv" {
		return fmt.Errorf("unsupported output format: %s (expected json or csv)", format)
	}

	if delim := []rune(cfg.CSV.Delimiter); len(delim) > 0 && delim[0] != common.Delimiter {
		log.Debug("Setting CSV delimiter from configuration",
			logging.Field{Key: "delimiter", Value: cfg.CSV.Delimiter})
		common.SetDelimiter(delim[0])
	}

	fallback, err := fxrates.LoadFallbackFile(cfg.FX.FallbackFile, cfg.FX.BaseCurrency)
	if err != nil {
		return err
	}

	aliases := make(map[string]string, len(currencyutils.DefaultAliases)+len(fallback.Aliases))
	for bad, good := range currencyutils.DefaultAliases {
		aliases[bad] = good
	}
	for bad, good := range fallback.Aliases {
		aliases[bad] = good
	}

	source := fxrates.NewHTTPSource(cfg.FX.APIURL, cfg.FX.BaseCurrency,
		time.Duration(cfg.FX.TimeoutSeconds)*time.Second, log)
	resolver := fxrates.NewResolver(source, fallback.Rates, fxrates.ResolverOptions{
		BaseCurrency:    cfg.FX.BaseCurrency,
		MaxWalkbackDays: cfg.FX.MaxWalkbackDays,
		Aliases:         aliases,
	}, log)

	pipe := pipeline.New(resolver, cfg.Validation.ProfitabilityThreshold, aliases, log)
	generator := report.NewGenerator(log)

	processed := 0
	for _, entityCfg := range cfg.Entities {
		if entityFlag != "" && !strings.EqualFold(entityFlag, entityCfg.Code) {
			continue
		}

		entityLog := log.WithField(logging.FieldEntity, entityCfg.Code)
		if !fileutils.DirectoryExists(entityCfg.DataDir) {
			entityLog.Warn("Data directory not found, skipping entity",
				logging.Field{Key: logging.FieldFile, Value: entityCfg.DataDir})
			continue
		}

		result, err := processEntity(cmd, pipe, entityCfg)
		if err != nil {
			return err
		}

		if err := render(generator, result, format, filepath.Join(outputDir, strings.ToLower(entityCfg.Code))); err != nil {
			return err
		}
		processed++
	}

	if processed == 0 {
		return &parsererror.ConfigError{
			Item:   "entities",
			Reason: "no entity produced any output",
		}
	}

	log.Info("Run complete", logging.Field{Key: "entities", Value: processed})
	return nil
}

func processEntity(cmd *cobra.Command, pipe *pipeline.Pipeline, entityCfg config.EntityConfig) (*pipeline.Result, error) {
	headerPath, err := fileutils.FindInputCSV(entityCfg.DataDir, "reserva")
	if err != nil {
		return nil, &parsererror.ConfigError{Item: entityCfg.Code, Reason: err.Error()}
	}
	linePath, err := fileutils.FindInputCSV(entityCfg.DataDir, "dreserva")
	if err != nil {
		return nil, &parsererror.ConfigError{Item: entityCfg.Code, Reason: err.Error()}
	}

	headers, err := crmparser.ParseHeaderFile(headerPath)
	if err != nil {
		return nil, err
	}
	lines, err := crmparser.ParseLineFile(linePath)
	if err != nil {
		return nil, err
	}

	return pipe.Run(cmd.Context(), models.Entity(entityCfg.Code), headers, lines)
}

func render(generator *report.Generator, result *pipeline.Result, format, dir string) error {
	if format == "csv" {
		return generator.WriteCSV(result, dir)
	}

	data, err := generator.GenerateJSON(result)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "run_report.json"), data, models.PermissionReportFile)
}
