package models

// AnomalyKind classifies a data-quality finding.
type AnomalyKind string

const (
	AnomalyNegativeAmount         AnomalyKind = "negative_amount"
	AnomalyMissingDepartureDate   AnomalyKind = "missing_departure_date"
	AnomalyExcessiveProfitability AnomalyKind = "excessive_profitability"
	AnomalyUnknownCurrency        AnomalyKind = "unknown_currency"
	AnomalyCostWithoutGross       AnomalyKind = "cost_without_gross"
	AnomalyOther                  AnomalyKind = "other"
)

// Anomaly is a flagged data-quality finding. Anomalies are first-class
// pipeline output, not errors: the record that produced one stays in the
// run untouched and the finding is surfaced to operators alongside it.
type Anomaly struct {
	Kind          AnomalyKind
	ReservationID string
	Entity        Entity
	SalespersonID string
	Detail        string
}
