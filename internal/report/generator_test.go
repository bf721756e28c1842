package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gannet/booking-reports/internal/bookingwindow"
	"gannet/booking-reports/internal/logging"
	"gannet/booking-reports/internal/models"
	"gannet/booking-reports/internal/pipeline"
)

func testResult() *pipeline.Result {
	departure := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	ratio := decimal.RequireFromString("0.8")

	record := models.EnrichedRecord{
		CanonicalRecord: models.CanonicalRecord{
			ReservationID: "R-1",
			Entity:        models.EntitySL,
			Status:        models.StatusActive,
			CreationDate:  time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
			DepartureDate: &departure,
			SalespersonID: "ana",
			GrossAmount:   decimal.RequireFromString("100"),
			CostAmount:    decimal.RequireFromString("20"),
			CurrencyCode:  "EUR",
		},
		AmountEUR:          decimal.RequireFromString("100"),
		AmountUSD:          decimal.RequireFromString("125"),
		CostEUR:            decimal.RequireFromString("20"),
		CostUSD:            decimal.RequireFromString("25"),
		ProfitabilityRatio: &ratio,
		SaleWeek:           3,
		RateProvenance:     models.ProvenanceRemote,
	}

	matrix := bookingwindow.NewMatrix()
	matrix.Add(3, bookingwindow.MonthKey{Year: 2026, Month: time.March}, record.AmountUSD)

	return &pipeline.Result{
		Entity:  models.EntitySL,
		Records: []models.EnrichedRecord{record},
		Anomalies: []models.Anomaly{{
			Kind:          models.AnomalyMissingDepartureDate,
			ReservationID: "R-2",
			Entity:        models.EntitySL,
			SalespersonID: "luis",
			Detail:        "active reservation without departure date",
		}},
		Matrix: matrix,
	}
}

func TestGenerateJSON(t *testing.T) {
	g := NewGenerator(&logging.MockLogger{})

	data, err := g.GenerateJSON(testResult())
	require.NoError(t, err)

	var report RunReport
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, "SL", report.Entity)
	assert.Equal(t, 1, report.RecordCount)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "R-1", report.Records[0].ReservationID)
	assert.Equal(t, "2026-01-15", report.Records[0].CreationDate)
	assert.Equal(t, "2026-03-10", report.Records[0].DepartureDate)
	assert.Equal(t, "125.00", report.Records[0].AmountUSD)
	assert.Equal(t, "0.8000", report.Records[0].ProfitabilityRatio)
	assert.Equal(t, "remote", report.Records[0].FXProvenance)

	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, "missing_departure_date", report.Anomalies[0].Kind)

	require.Len(t, report.BookingCells, 1)
	assert.Equal(t, 3, report.BookingCells[0].SaleWeek)
	assert.Equal(t, "2026-03", report.BookingCells[0].DepartureMonth)
	assert.Equal(t, "125.00", report.BookingCells[0].AmountUSD)
	assert.Equal(t, "125.00", report.TotalUSD)
}

func TestGenerateJSONIsDeterministic(t *testing.T) {
	g := NewGenerator(&logging.MockLogger{})

	first, err := g.GenerateJSON(testResult())
	require.NoError(t, err)
	second, err := g.GenerateJSON(testResult())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWriteCSV(t *testing.T) {
	g := NewGenerator(&logging.MockLogger{})
	dir := t.TempDir()

	require.NoError(t, g.WriteCSV(testResult(), dir))

	records, err := os.ReadFile(filepath.Join(dir, "records.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(records), "reservation_id")
	assert.Contains(t, string(records), "R-1")

	anomalies, err := os.ReadFile(filepath.Join(dir, "anomalies.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(anomalies), "missing_departure_date")

	matrix, err := os.ReadFile(filepath.Join(dir, "booking_window.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(matrix)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "sale_week,2026-03,total_usd", lines[0])
	assert.Equal(t, "3,125.00,125.00", lines[1])
}

func TestWriteCSVDenseMatrix(t *testing.T) {
	g := NewGenerator(&logging.MockLogger{})
	dir := t.TempDir()

	result := testResult()
	result.Matrix.Add(5, bookingwindow.MonthKey{Year: 2026, Month: time.April}, decimal.NewFromInt(50))

	require.NoError(t, g.WriteCSV(result, dir))

	matrix, err := os.ReadFile(filepath.Join(dir, "booking_window.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(matrix)), "\n")
	require.Len(t, lines, 4, "weeks 5 down to 3, plus header")

	assert.Equal(t, "sale_week,2026-03,2026-04,total_usd", lines[0])
	assert.Equal(t, "5,0.00,50.00,50.00", lines[1])
	assert.Equal(t, "4,0.00,0.00,0.00", lines[2], "empty weeks inside the window render as zeros")
	assert.Equal(t, "3,125.00,0.00,125.00", lines[3])
}
