// Package models defines the canonical data types shared by every stage of
// the booking pipeline. Raw CSV rows are normalized into CanonicalRecord,
// enriched into EnrichedRecord, and consumed read-only from there on.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalRecord is the unit of truth after normalization.
// It is created once per pipeline run and never mutated afterwards.
// ReservationID is unique within an entity; the pair (ReservationID, Entity)
// is unique across a run.
type CanonicalRecord struct {
	ReservationID string
	Entity        Entity
	Status        Status
	Closed        bool
	CreationDate  time.Time
	DepartureDate *time.Time
	ReturnDate    *time.Time
	SalespersonID string
	Guests        int
	GrossAmount   decimal.Decimal
	CurrencyCode  string
	CostAmount    decimal.Decimal
	Notes         string
}

// HasDeparture reports whether the record carries a departure date.
func (r CanonicalRecord) HasDeparture() bool {
	return r.DepartureDate != nil
}

// EnrichedRecord is a CanonicalRecord plus converted amounts, the
// profitability ratio and the time buckets derived from its dates.
// ProfitabilityRatio is nil when GrossAmount is not positive.
type EnrichedRecord struct {
	CanonicalRecord

	AmountEUR decimal.Decimal
	AmountUSD decimal.Decimal
	CostEUR   decimal.Decimal
	CostUSD   decimal.Decimal

	ProfitabilityRatio *decimal.Decimal

	SaleWeek  int
	SaleMonth time.Month
	SaleYear  int

	RateProvenance RateProvenance
}

// DepartureMonth returns the (month, year) bucket of the departure date.
// The second return value is false when no departure date is set.
func (r EnrichedRecord) DepartureMonth() (time.Month, int, bool) {
	if r.DepartureDate == nil {
		return 0, 0, false
	}
	return r.DepartureDate.Month(), r.DepartureDate.Year(), true
}
