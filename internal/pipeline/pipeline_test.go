package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gannet/booking-reports/internal/crmparser"
	"gannet/booking-reports/internal/currencyutils"
	"gannet/booking-reports/internal/fxrates"
	"gannet/booking-reports/internal/logging"
	"gannet/booking-reports/internal/models"
	"gannet/booking-reports/internal/parsererror"
)

type stubSource struct {
	days map[string]map[string]decimal.Decimal
}

func (s *stubSource) FetchDate(_ context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	rates, ok := s.days[date.Format("2006-01-02")]
	if !ok {
		return nil, fxrates.ErrDateNotFound
	}
	return rates, nil
}

func testRates() *stubSource {
	return &stubSource{days: map[string]map[string]decimal.Decimal{
		"2026-01-15": {
			"USD": decimal.NewFromFloat(1.25),
			"GBP": decimal.NewFromFloat(0.8),
		},
	}}
}

func newTestPipeline(source fxrates.RateSource) *Pipeline {
	fallback := map[string]decimal.Decimal{
		"USD": decimal.NewFromFloat(0.86),
		"GBP": decimal.NewFromFloat(1.15),
	}
	resolver := fxrates.NewResolver(source, fallback, fxrates.ResolverOptions{}, &logging.MockLogger{})
	return New(resolver, 0.9, currencyutils.DefaultAliases, &logging.MockLogger{})
}

func testHeaders() []crmparser.ReservationCSVRow {
	return []crmparser.ReservationCSVRow{
		{Folio: "R-1", Date: "2026-01-15", StartDate: "2026-03-10", TotalAmount: "100.00", Currency: "EUR", Salesperson: "ana"},
		{Folio: "R-2", Cancelled: "1", Date: "2026-01-15", TotalAmount: "999.00", Currency: "EUR"},
		{Folio: "R-3", Date: "2026-01-15", TotalAmount: "-50.00", Currency: "EUR", Salesperson: "luis"},
		{Folio: "R-4", Date: "bad-date", TotalAmount: "10.00", Currency: "EUR"},
	}
}

func testLines() []crmparser.ReservationLineCSVRow {
	return []crmparser.ReservationLineCSVRow{
		{Folio: "R-1", CommissionAmount: "20.00"},
	}
}

func TestRunEndToEnd(t *testing.T) {
	p := newTestPipeline(testRates())

	result, err := p.Run(context.Background(), models.EntitySL, testHeaders(), testLines())
	require.NoError(t, err)

	// R-2 is cancelled and R-4 unparseable; R-1 and R-3 survive.
	require.Len(t, result.Records, 2)
	assert.Equal(t, "R-1", result.Records[0].ReservationID)
	assert.Equal(t, "R-3", result.Records[1].ReservationID)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "R-4", result.Skipped[0].ReservationID)

	assert.Equal(t, "100.00", result.Records[0].AmountEUR.StringFixed(2))
	assert.Equal(t, "125.00", result.Records[0].AmountUSD.StringFixed(2))
	assert.True(t, result.Records[0].CostAmount.Equal(decimal.NewFromInt(80)),
		"cost is gross minus the 20 in commissions")

	// R-3 is negative and has no departure date.
	kinds := make([]models.AnomalyKind, 0, len(result.Anomalies))
	for _, anomaly := range result.Anomalies {
		kinds = append(kinds, anomaly.Kind)
	}
	assert.Equal(t, []models.AnomalyKind{
		models.AnomalyNegativeAmount,
		models.AnomalyMissingDepartureDate,
	}, kinds)

	// Only R-1 carries a departure date, so it alone reaches the matrix.
	assert.True(t, result.Matrix.Total().Equal(result.Records[0].AmountUSD))
}

func TestRunEmptyInputIsFatal(t *testing.T) {
	p := newTestPipeline(testRates())

	_, err := p.Run(context.Background(), models.EntitySL, nil, nil)

	var configErr *parsererror.ConfigError
	require.ErrorAs(t, err, &configErr)
}

func TestRunIsDeterministic(t *testing.T) {
	p := newTestPipeline(testRates())

	first, err := p.Run(context.Background(), models.EntitySL, testHeaders(), testLines())
	require.NoError(t, err)
	second, err := p.Run(context.Background(), models.EntitySL, testHeaders(), testLines())
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Anomalies, second.Anomalies)
	assert.Equal(t, first.Matrix.Cells(), second.Matrix.Cells())
}

func TestRunMatrixTotalMatchesDepartingRecords(t *testing.T) {
	p := newTestPipeline(testRates())

	result, err := p.Run(context.Background(), models.EntitySL, testHeaders(), testLines())
	require.NoError(t, err)

	expected := decimal.Zero
	for _, record := range result.Records {
		if record.HasDeparture() {
			expected = expected.Add(record.AmountUSD)
		}
	}
	assert.True(t, result.Matrix.Total().Equal(expected))
}

func TestRunProfitabilityComesFromCommissions(t *testing.T) {
	headers := []crmparser.ReservationCSVRow{
		{Folio: "NO-LINES", Date: "2026-01-15", StartDate: "2026-03-10", TotalAmount: "100.00", Currency: "EUR"},
		{Folio: "HIGH-MARGIN", Date: "2026-01-15", StartDate: "2026-03-12", TotalAmount: "100.00", Currency: "EUR"},
	}
	lines := []crmparser.ReservationLineCSVRow{
		{Folio: "HIGH-MARGIN", CommissionAmount: "95.00"},
	}
	p := newTestPipeline(testRates())

	result, err := p.Run(context.Background(), models.EntitySL, headers, lines)
	require.NoError(t, err)

	flagged := make(map[string]bool)
	for _, anomaly := range result.Anomalies {
		if anomaly.Kind == models.AnomalyExcessiveProfitability {
			flagged[anomaly.ReservationID] = true
		}
	}

	require.False(t, flagged["NO-LINES"],
		"a reservation with no commission lines has zero margin and must not be flagged")
	require.True(t, flagged["HIGH-MARGIN"],
		"commissions at 95 percent of gross cross the 0.9 threshold")

	require.NotNil(t, result.Records[0].ProfitabilityRatio)
	assert.Equal(t, "0.0000", result.Records[0].ProfitabilityRatio.StringFixed(4))
	require.NotNil(t, result.Records[1].ProfitabilityRatio)
	assert.Equal(t, "0.9500", result.Records[1].ProfitabilityRatio.StringFixed(4))
}

func TestRunFlagsFallbackPricedCurrencies(t *testing.T) {
	headers := []crmparser.ReservationCSVRow{
		{Folio: "R-1", Date: "2026-01-15", StartDate: "2026-03-10", TotalAmount: "100.00", Currency: "CLP"},
	}
	lines := []crmparser.ReservationLineCSVRow{
		{Folio: "R-1", CommissionAmount: "30.00"},
	}
	p := newTestPipeline(testRates())

	result, err := p.Run(context.Background(), models.EntitySL, headers, lines)
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, models.ProvenanceFallback, result.Records[0].RateProvenance)

	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, models.AnomalyUnknownCurrency, result.Anomalies[0].Kind)
}
