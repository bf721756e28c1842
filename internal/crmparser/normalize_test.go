package crmparser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gannet/booking-reports/internal/currencyutils"
	"gannet/booking-reports/internal/models"
)

func TestNormalizeJoinsCostsByFolio(t *testing.T) {
	headers := []ReservationCSVRow{
		{Folio: "R-1", Date: "2026-01-15", StartDate: "2026-03-10", TotalAmount: "1500.00", Currency: "EUR", Salesperson: "ana", Guests: "2"},
		{Folio: "R-2", Date: "2026-01-16", TotalAmount: "200.00", Currency: "USD", Salesperson: "luis"},
	}
	lines := []ReservationLineCSVRow{
		{Folio: "R-1", CommissionAmount: "100.00"},
		{Folio: "R-1", CommissionAmount: "50.00"},
	}

	records, skipped := Normalize(headers, lines, models.EntitySL, currencyutils.DefaultAliases)
	require.Empty(t, skipped)
	require.Len(t, records, 2)

	assert.Equal(t, "R-1", records[0].ReservationID)
	assert.Equal(t, models.EntitySL, records[0].Entity)
	assert.True(t, records[0].GrossAmount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, records[0].CostAmount.Equal(decimal.NewFromInt(1350)), "cost is gross minus the 150 in commissions")
	assert.True(t, records[0].HasDeparture())
	assert.Equal(t, 2, records[0].Guests)

	assert.True(t, records[1].CostAmount.Equal(records[1].GrossAmount),
		"header with no detail lines has zero margin, so cost equals gross")
	assert.False(t, records[1].HasDeparture())
}

func TestNormalizeDropsCancelledReservations(t *testing.T) {
	headers := []ReservationCSVRow{
		{Folio: "R-1", Cancelled: "1", Date: "2026-01-15", TotalAmount: "100", Currency: "EUR"},
		{Folio: "R-2", Cancelled: "0", Date: "2026-01-15", TotalAmount: "200", Currency: "EUR"},
	}

	records, skipped := Normalize(headers, nil, models.EntitySL, nil)

	assert.Empty(t, skipped, "cancellations are routine, not data-quality findings")
	require.Len(t, records, 1)
	assert.Equal(t, "R-2", records[0].ReservationID)
}

func TestNormalizeSkipsRowsWithBadDatesOrAmounts(t *testing.T) {
	headers := []ReservationCSVRow{
		{Folio: "R-1", Date: "", TotalAmount: "100", Currency: "EUR"},
		{Folio: "R-2", Date: "not-a-date", TotalAmount: "100", Currency: "EUR"},
		{Folio: "R-3", Date: "2026-01-15", TotalAmount: "garbage", Currency: "EUR"},
		{Folio: "", Date: "2026-01-15", TotalAmount: "100", Currency: "EUR"},
		{Folio: "R-5", Date: "2026-01-15", TotalAmount: "100", Currency: "EUR"},
	}

	records, skipped := Normalize(headers, nil, models.EntityLLC, nil)

	require.Len(t, records, 1)
	assert.Equal(t, "R-5", records[0].ReservationID)
	require.Len(t, skipped, 4)
	assert.Equal(t, "R-1", skipped[0].ReservationID)
	assert.Contains(t, skipped[2].Reason, "total amount")
}

func TestNormalizeCorrectsCurrencyTypos(t *testing.T) {
	headers := []ReservationCSVRow{
		{Folio: "R-1", Date: "2026-01-15", TotalAmount: "100", Currency: " gpb "},
	}

	records, _ := Normalize(headers, nil, models.EntitySL, currencyutils.DefaultAliases)

	require.Len(t, records, 1)
	assert.Equal(t, "GBP", records[0].CurrencyCode)
}

func TestNormalizeTreatsUnparseableDepartureAsAbsent(t *testing.T) {
	headers := []ReservationCSVRow{
		{Folio: "R-1", Date: "2026-01-15", StartDate: "soon", TotalAmount: "100", Currency: "EUR"},
	}

	records, skipped := Normalize(headers, nil, models.EntitySL, nil)

	require.Empty(t, skipped)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].DepartureDate)
}

func TestNormalizeParsesEuropeanDates(t *testing.T) {
	headers := []ReservationCSVRow{
		{Folio: "R-1", Date: "15/01/2026", StartDate: "10/03/2026", TotalAmount: "100", Currency: "EUR"},
	}

	records, skipped := Normalize(headers, nil, models.EntitySL, nil)

	require.Empty(t, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-01-15", records[0].CreationDate.Format("2006-01-02"))
	assert.Equal(t, "2026-03-10", records[0].DepartureDate.Format("2006-01-02"))
}
