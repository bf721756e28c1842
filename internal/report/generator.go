// Package report renders pipeline results for delivery. It is the output
// collaborator: the core hands it the enriched records, the anomalies and
// the booking-window matrix, and it owns how they are serialized.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gannet/booking-reports/internal/bookingwindow"
	"gannet/booking-reports/internal/common"
	"gannet/booking-reports/internal/dateutils"
	"gannet/booking-reports/internal/logging"
	"gannet/booking-reports/internal/models"
	"gannet/booking-reports/internal/pipeline"
)

// Generator renders run results to JSON or CSV.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Generator{logger: logger}
}

// RecordRow is the flat render of one enriched record.
type RecordRow struct {
	Entity             string `csv:"entity" json:"entity"`
	ReservationID      string `csv:"reservation_id" json:"reservation_id"`
	CreationDate       string `csv:"creation_date" json:"creation_date"`
	DepartureDate      string `csv:"departure_date" json:"departure_date,omitempty"`
	SalespersonID      string `csv:"salesperson" json:"salesperson"`
	GrossAmount        string `csv:"gross_amount" json:"gross_amount"`
	Currency           string `csv:"currency" json:"currency"`
	AmountEUR          string `csv:"amount_eur" json:"amount_eur"`
	AmountUSD          string `csv:"amount_usd" json:"amount_usd"`
	CostAmount         string `csv:"cost_amount" json:"cost_amount"`
	ProfitabilityRatio string `csv:"profitability_ratio" json:"profitability_ratio,omitempty"`
	SaleWeek           int    `csv:"sale_week" json:"sale_week"`
	FXProvenance       string `csv:"fx_provenance" json:"fx_provenance"`
}

// AnomalyRow is the flat render of one anomaly.
type AnomalyRow struct {
	Kind          string `csv:"kind" json:"kind"`
	ReservationID string `csv:"reservation_id" json:"reservation_id"`
	Entity        string `csv:"entity" json:"entity"`
	SalespersonID string `csv:"salesperson" json:"salesperson"`
	Detail        string `csv:"detail" json:"detail"`
}

// RunReport is the JSON shape of a complete run.
type RunReport struct {
	Entity       string        `json:"entity"`
	RecordCount  int           `json:"record_count"`
	SkippedCount int           `json:"skipped_count"`
	Records      []RecordRow   `json:"records"`
	Anomalies    []AnomalyRow  `json:"anomalies"`
	BookingCells []BookingCell `json:"booking_window"`
	TotalUSD     string        `json:"booking_window_total_usd"`
}

// BookingCell is one non-zero booking-window cell in the JSON render.
type BookingCell struct {
	SaleWeek       int    `json:"sale_week"`
	DepartureMonth string `json:"departure_month"`
	AmountUSD      string `json:"amount_usd"`
}

// GenerateJSON renders a run result as indented JSON.
func (g *Generator) GenerateJSON(result *pipeline.Result) ([]byte, error) {
	report := RunReport{
		Entity:       string(result.Entity),
		RecordCount:  len(result.Records),
		SkippedCount: len(result.Skipped),
		Records:      recordRows(result.Records),
		Anomalies:    anomalyRows(result.Anomalies),
		BookingCells: bookingCells(result.Matrix),
		TotalUSD:     result.Matrix.Total().StringFixed(2),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return data, nil
}

// WriteCSV renders a run result as three CSV files under dir:
// records.csv, anomalies.csv and booking_window.csv.
func (g *Generator) WriteCSV(result *pipeline.Result, dir string) error {
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	recordsFile := filepath.Join(dir, "records.csv")
	if err := common.WriteCSVFile(recordRows(result.Records), recordsFile); err != nil {
		return err
	}
	g.logger.Info("Wrote records CSV",
		logging.Field{Key: logging.FieldOutputFile, Value: recordsFile},
		logging.Field{Key: logging.FieldCount, Value: len(result.Records)})

	anomaliesFile := filepath.Join(dir, "anomalies.csv")
	if err := common.WriteCSVFile(anomalyRows(result.Anomalies), anomaliesFile); err != nil {
		return err
	}
	g.logger.Info("Wrote anomalies CSV",
		logging.Field{Key: logging.FieldOutputFile, Value: anomaliesFile},
		logging.Field{Key: logging.FieldCount, Value: len(result.Anomalies)})

	matrixFile := filepath.Join(dir, "booking_window.csv")
	if err := writeMatrixCSV(result.Matrix, matrixFile); err != nil {
		return err
	}
	g.logger.Info("Wrote booking window CSV",
		logging.Field{Key: logging.FieldOutputFile, Value: matrixFile})

	return nil
}

func recordRows(records []models.EnrichedRecord) []RecordRow {
	rows := make([]RecordRow, 0, len(records))
	for _, r := range records {
		row := RecordRow{
			Entity:        string(r.Entity),
			ReservationID: r.ReservationID,
			CreationDate:  dateutils.ToISODate(r.CreationDate),
			SalespersonID: r.SalespersonID,
			GrossAmount:   r.GrossAmount.StringFixed(2),
			Currency:      r.CurrencyCode,
			AmountEUR:     r.AmountEUR.StringFixed(2),
			AmountUSD:     r.AmountUSD.StringFixed(2),
			CostAmount:    r.CostAmount.StringFixed(2),
			SaleWeek:      r.SaleWeek,
			FXProvenance:  string(r.RateProvenance),
		}
		if r.DepartureDate != nil {
			row.DepartureDate = dateutils.ToISODate(*r.DepartureDate)
		}
		if r.ProfitabilityRatio != nil {
			row.ProfitabilityRatio = r.ProfitabilityRatio.StringFixed(4)
		}
		rows = append(rows, row)
	}
	return rows
}

func anomalyRows(anomalies []models.Anomaly) []AnomalyRow {
	rows := make([]AnomalyRow, 0, len(anomalies))
	for _, a := range anomalies {
		rows = append(rows, AnomalyRow{
			Kind:          string(a.Kind),
			ReservationID: a.ReservationID,
			Entity:        string(a.Entity),
			SalespersonID: a.SalespersonID,
			Detail:        a.Detail,
		})
	}
	return rows
}

func bookingCells(matrix *bookingwindow.Matrix) []BookingCell {
	values := matrix.Cells()
	cells := make([]BookingCell, 0, len(values))
	for _, v := range values {
		cells = append(cells, BookingCell{
			SaleWeek:       v.Key.Week,
			DepartureMonth: v.Key.Month.String(),
			AmountUSD:      v.AmountUSD.StringFixed(2),
		})
	}
	return cells
}

// writeMatrixCSV renders the dense matrix: one row per sale week
// (descending), one column per departure month (ascending), zero-valued
// cells included, plus a per-week total column.
func writeMatrixCSV(matrix *bookingwindow.Matrix, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	writer := csv.NewWriter(file)
	writer.Comma = common.Delimiter

	months := matrix.Months()
	header := []string{"sale_week"}
	for _, month := range months {
		header = append(header, month.String())
	}
	header = append(header, "total_usd")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, week := range matrix.Weeks() {
		row := []string{fmt.Sprintf("%d", week)}
		for _, month := range months {
			row = append(row, matrix.Cell(week, month).StringFixed(2))
		}
		row = append(row, matrix.WeekTotal(week).StringFixed(2))
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
