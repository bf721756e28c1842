// Package enricher attaches converted monetary amounts and the
// profitability ratio to canonical records. Conversion uses the FX rate
// matching each record's creation date; both target amounts for a
// (date, currency) pair derive from the same dated rate snapshot, so two
// records sharing that pair can never disagree.
package enricher

import (
	"context"
	"time"

	"gannet/booking-reports/internal/currencyutils"
	"gannet/booking-reports/internal/dateutils"
	"gannet/booking-reports/internal/fxrates"
	"gannet/booking-reports/internal/logging"
	"gannet/booking-reports/internal/models"
)

// Enricher converts record amounts into EUR and USD and computes derived
// fields. It is pure given the resolver's FX state: the same record and
// rates always produce the same output.
type Enricher struct {
	resolver *fxrates.Resolver
	logger   logging.Logger
}

// NewEnricher creates an Enricher over a resolver.
func NewEnricher(resolver *fxrates.Resolver, logger logging.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Enricher{
		resolver: resolver,
		logger:   logger,
	}
}

// Enrich converts one canonical record. The EUR amount comes from the
// record currency's rate-to-base; the USD amount crosses through the same
// date's base/USD quote. Amounts are rounded half-up to 2 decimal places.
func (e *Enricher) Enrich(ctx context.Context, record models.CanonicalRecord) models.EnrichedRecord {
	toBase := e.resolver.Resolve(ctx, record.CreationDate, record.CurrencyCode)
	usdPerBase := e.resolver.Resolve(ctx, record.CreationDate, models.CurrencyUSD)

	amountEUR := record.GrossAmount.Mul(toBase.ToBase)
	amountUSD := amountEUR.Div(usdPerBase.ToBase)
	costEUR := record.CostAmount.Mul(toBase.ToBase)
	costUSD := costEUR.Div(usdPerBase.ToBase)

	enriched := models.EnrichedRecord{
		CanonicalRecord: record,
		AmountEUR:       currencyutils.RoundCents(amountEUR),
		AmountUSD:       currencyutils.RoundCents(amountUSD),
		CostEUR:         currencyutils.RoundCents(costEUR),
		CostUSD:         currencyutils.RoundCents(costUSD),
		SaleWeek:        dateutils.ISOWeek(record.CreationDate),
		SaleMonth:       record.CreationDate.Month(),
		SaleYear:        record.CreationDate.Year(),
		RateProvenance:  combineProvenance(toBase, usdPerBase),
	}

	// The ratio is defined only for positive gross amounts; zero or
	// negative revenue leaves it undefined and the validator flags the
	// record instead.
	if record.GrossAmount.IsPositive() {
		ratio := record.GrossAmount.Sub(record.CostAmount).Div(record.GrossAmount)
		enriched.ProfitabilityRatio = &ratio
	}

	if enriched.RateProvenance == models.ProvenanceFallback {
		e.logger.Debug("Record priced from fallback rates",
			logging.Field{Key: logging.FieldReservationID, Value: record.ReservationID},
			logging.Field{Key: logging.FieldProvenance, Value: string(models.ProvenanceFallback)})
	}

	return enriched
}

// EnrichAll converts records in input order after warming the FX cache
// with every distinct creation date, so the two read-only consumers of the
// output never trigger remote calls.
func (e *Enricher) EnrichAll(ctx context.Context, records []models.CanonicalRecord) []models.EnrichedRecord {
	dates := make([]time.Time, 0, len(records))
	for _, record := range records {
		dates = append(dates, record.CreationDate)
	}
	e.resolver.PreloadDates(ctx, dates)

	enriched := make([]models.EnrichedRecord, 0, len(records))
	for _, record := range records {
		enriched = append(enriched, e.Enrich(ctx, record))
	}

	e.logger.Info("Enriched records", logging.Field{Key: logging.FieldCount, Value: len(enriched)})
	return enriched
}

// combineProvenance marks a record as fallback-priced when either leg of
// its conversion came from the static table.
func combineProvenance(rates ...fxrates.Rate) models.RateProvenance {
	for _, rate := range rates {
		if rate.Provenance == models.ProvenanceFallback {
			return models.ProvenanceFallback
		}
	}
	return models.ProvenanceRemote
}
