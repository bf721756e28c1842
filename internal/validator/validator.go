// Package validator inspects enriched records for business-integrity
// anomalies. Validation is purely observational: it never mutates or
// discards records, it only emits findings for operators. A finding is
// not an error; records that produce one stay in every downstream view.
package validator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gannet/booking-reports/internal/logging"
	"gannet/booking-reports/internal/models"
)

// DefaultProfitabilityThreshold flags ratios above it as likely cost
// data-entry errors rather than genuine margin.
const DefaultProfitabilityThreshold = 0.9

// Validator detects data-quality anomalies in enriched records.
type Validator struct {
	profitabilityThreshold decimal.Decimal
	knownCurrency          func(code string) bool
	logger                 logging.Logger
}

// NewValidator creates a Validator. knownCurrency reports whether a code is
// covered by the FX configuration; nil disables the unknown-currency check.
// A non-positive threshold selects DefaultProfitabilityThreshold.
func NewValidator(profitabilityThreshold float64, knownCurrency func(code string) bool, logger logging.Logger) *Validator {
	if profitabilityThreshold <= 0 {
		profitabilityThreshold = DefaultProfitabilityThreshold
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Validator{
		profitabilityThreshold: decimal.NewFromFloat(profitabilityThreshold),
		knownCurrency:          knownCurrency,
		logger:                 logger,
	}
}

// Validate emits anomalies for a record sequence. Findings follow input
// record order; one record may produce zero, one or several findings.
func (v *Validator) Validate(records []models.EnrichedRecord) []models.Anomaly {
	var anomalies []models.Anomaly
	for _, record := range records {
		anomalies = append(anomalies, v.validateRecord(record)...)
	}

	v.logger.Info("Validated records",
		logging.Field{Key: logging.FieldCount, Value: len(records)},
		logging.Field{Key: "anomalies", Value: len(anomalies)})
	return anomalies
}

func (v *Validator) validateRecord(record models.EnrichedRecord) []models.Anomaly {
	var findings []models.Anomaly

	flag := func(kind models.AnomalyKind, detail string) {
		findings = append(findings, models.Anomaly{
			Kind:          kind,
			ReservationID: record.ReservationID,
			Entity:        record.Entity,
			SalespersonID: record.SalespersonID,
			Detail:        detail,
		})
	}

	if record.GrossAmount.IsNegative() || record.AmountUSD.IsNegative() {
		flag(models.AnomalyNegativeAmount,
			fmt.Sprintf("negative amount (gross %s %s, %s USD)",
				record.GrossAmount, record.CurrencyCode, record.AmountUSD))
	}

	// Every active reservation must eventually travel; a missing departure
	// date signals a data-entry gap.
	if record.Status == models.StatusActive && !record.HasDeparture() {
		flag(models.AnomalyMissingDepartureDate, "active reservation without departure date")
	}

	if record.ProfitabilityRatio != nil && record.ProfitabilityRatio.GreaterThan(v.profitabilityThreshold) {
		flag(models.AnomalyExcessiveProfitability,
			fmt.Sprintf("profitability ratio %s exceeds threshold %s",
				record.ProfitabilityRatio.StringFixed(4), v.profitabilityThreshold))
	}

	if v.knownCurrency != nil && !v.knownCurrency(record.CurrencyCode) {
		flag(models.AnomalyUnknownCurrency,
			fmt.Sprintf("unknown currency '%s'", record.CurrencyCode))
	}

	if record.GrossAmount.IsZero() && !record.CostAmount.IsZero() {
		flag(models.AnomalyCostWithoutGross,
			fmt.Sprintf("zero gross amount but nonzero cost (%s)", record.CostAmount))
	}

	return findings
}
