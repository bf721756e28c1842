// Package pipeline wires the processing stages together for one run:
// normalize raw rows, enrich with FX rates, then validate and aggregate
// over the same immutable enriched sequence.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"gannet/booking-reports/internal/bookingwindow"
	"gannet/booking-reports/internal/crmparser"
	"gannet/booking-reports/internal/enricher"
	"gannet/booking-reports/internal/fxrates"
	"gannet/booking-reports/internal/logging"
	"gannet/booking-reports/internal/models"
	"gannet/booking-reports/internal/parsererror"
	"gannet/booking-reports/internal/validator"
)

// Result is the complete output of one pipeline run for one entity. All
// slices are immutable once Run returns; the presentation layer only reads.
type Result struct {
	Entity    models.Entity
	Records   []models.EnrichedRecord
	Anomalies []models.Anomaly
	Matrix    *bookingwindow.Matrix
	Skipped   []parsererror.RowError
}

// Pipeline runs the record flow for entities sharing one FX resolver, so
// every entity in a run sees identical rates for identical (date, currency)
// pairs.
type Pipeline struct {
	resolver  *fxrates.Resolver
	enricher  *enricher.Enricher
	validator *validator.Validator
	aliases   map[string]string
	logger    logging.Logger
}

// New creates a Pipeline. profitabilityThreshold is the validator's
// excessive-profitability cutoff; aliases is the currency correction table.
func New(resolver *fxrates.Resolver, profitabilityThreshold float64, aliases map[string]string, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Pipeline{
		resolver:  resolver,
		enricher:  enricher.NewEnricher(resolver, logger),
		validator: validator.NewValidator(profitabilityThreshold, resolver.KnownCurrency, logger),
		aliases:   aliases,
		logger:    logger,
	}
}

// Run processes one entity's raw rows end to end. Records flow in input
// order through normalization and enrichment; the validator and the
// aggregator then read the enriched slice concurrently, which is safe
// because both are read-only and the FX cache is fully populated before
// either starts. An entity with no header rows at all is a fatal
// configuration error.
func (p *Pipeline) Run(ctx context.Context, entity models.Entity, headers []crmparser.ReservationCSVRow, lines []crmparser.ReservationLineCSVRow) (*Result, error) {
	log := p.logger.WithField(logging.FieldEntity, string(entity))

	if len(headers) == 0 {
		return nil, &parsererror.ConfigError{
			Item:   fmt.Sprintf("entity %s", entity),
			Reason: "no reservation rows in input",
		}
	}

	records, skipped := crmparser.Normalize(headers, lines, entity, p.aliases)
	for _, skip := range skipped {
		log.Warn("Skipped malformed row",
			logging.Field{Key: logging.FieldReservationID, Value: skip.ReservationID},
			logging.Field{Key: logging.FieldReason, Value: skip.Reason})
	}

	enriched := p.enricher.EnrichAll(ctx, records)

	var (
		anomalies []models.Anomaly
		matrix    *bookingwindow.Matrix
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		anomalies = p.validator.Validate(enriched)
	}()
	go func() {
		defer wg.Done()
		matrix = bookingwindow.Aggregate(enriched)
	}()
	wg.Wait()

	log.Info("Pipeline run complete",
		logging.Field{Key: logging.FieldCount, Value: len(enriched)},
		logging.Field{Key: "anomalies", Value: len(anomalies)},
		logging.Field{Key: logging.FieldSkipped, Value: len(skipped)})

	return &Result{
		Entity:    entity,
		Records:   enriched,
		Anomalies: anomalies,
		Matrix:    matrix,
		Skipped:   skipped,
	}, nil
}
