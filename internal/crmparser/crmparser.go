// Package crmparser provides functionality to parse CRM reservation export
// CSV files and normalize them into canonical records. Exports come in two
// linked shapes: reservation headers ("reserva") and per-service detail
// lines ("dreserva") joined by the reservation folio.
package crmparser

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"gannet/booking-reports/internal/common"
	"gannet/booking-reports/internal/currencyutils"
	"gannet/booking-reports/internal/parsererror"
)

var log = logrus.New()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// ReservationCSVRow represents a single header row in a reserva CSV export.
// All fields arrive as strings; typing happens during normalization.
type ReservationCSVRow struct {
	Folio       string `csv:"folio"`
	Cancelled   string `csv:"cancelada"`
	Closed      string `csv:"cerrada"`
	Date        string `csv:"fecha"`
	StartDate   string `csv:"fecha_inicio"`
	EndDate     string `csv:"fecha_fin"`
	Salesperson string `csv:"vendedor"`
	Guests      string `csv:"usuarios_invitados"`
	TotalAmount string `csv:"total_cliente"`
	Currency    string `csv:"moneda"`
	Notes       string `csv:"observaciones"`
}

// ReservationLineCSVRow represents a single detail line in a dreserva CSV
// export. Older exports name the commission column comision_monto.
type ReservationLineCSVRow struct {
	Folio            string `csv:"folio"`
	Service          string `csv:"servicio"`
	CommissionAmount string `csv:"monto_comision"`
	CommissionLegacy string `csv:"comision_monto"`
}

// Commission returns the commission value regardless of which column
// variant the export used.
func (r ReservationLineCSVRow) Commission() string {
	if strings.TrimSpace(r.CommissionAmount) != "" {
		return r.CommissionAmount
	}
	return r.CommissionLegacy
}

// requiredHeaderColumns are the columns a reserva export must carry.
var requiredHeaderColumns = []string{"folio", "cancelada", "fecha", "total_cliente", "moneda"}

// requiredLineColumns are the columns a dreserva export must carry;
// the commission column is checked separately because of its two names.
var requiredLineColumns = []string{"folio"}

// ParseHeaderFile parses a reserva CSV file into raw header rows.
func ParseHeaderFile(filePath string) ([]ReservationCSVRow, error) {
	log.WithField("file", filePath).Info("Parsing reservation header CSV")

	if err := validateColumns(filePath, requiredHeaderColumns, nil); err != nil {
		return nil, err
	}

	rows, err := common.ReadCSVFile[ReservationCSVRow](filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading reservation CSV: %w", err)
	}

	log.WithField("count", len(rows)).Info("Read reservation header rows")
	return rows, nil
}

// ParseLineFile parses a dreserva CSV file into raw detail rows.
func ParseLineFile(filePath string) ([]ReservationLineCSVRow, error) {
	log.WithField("file", filePath).Info("Parsing reservation line CSV")

	if err := validateColumns(filePath, requiredLineColumns, []string{"monto_comision", "comision_monto"}); err != nil {
		return nil, err
	}

	rows, err := common.ReadCSVFile[ReservationLineCSVRow](filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading reservation line CSV: %w", err)
	}

	log.WithField("count", len(rows)).Info("Read reservation line rows")
	return rows, nil
}

// validateColumns checks the CSV header for required columns before a full
// parse. anyOf, when non-empty, requires at least one of the listed names.
func validateColumns(filePath string, required, anyOf []string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error opening file for validation: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	reader := csv.NewReader(file)
	reader.Comma = common.Delimiter
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("error reading CSV header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[strings.TrimSpace(strings.ToLower(col))] = true
	}

	for _, col := range required {
		if !present[col] {
			return &parsererror.ValidationError{
				FilePath: filePath,
				Reason:   fmt.Sprintf("missing required column %q", col),
			}
		}
	}

	if len(anyOf) > 0 {
		found := false
		for _, col := range anyOf {
			if present[col] {
				found = true
				break
			}
		}
		if !found {
			return &parsererror.ValidationError{
				FilePath: filePath,
				Reason:   fmt.Sprintf("missing commission column (%s)", strings.Join(anyOf, " or ")),
			}
		}
	}

	return nil
}

// sumCommissions totals commission amounts by folio across detail lines.
func sumCommissions(lines []ReservationLineCSVRow) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, line := range lines {
		folio := strings.TrimSpace(line.Folio)
		if folio == "" {
			continue
		}
		amount, err := parseOptionalAmount(line.Commission())
		if err != nil {
			log.WithField("folio", folio).Warnf("Unparseable commission amount '%s', counted as zero", line.Commission())
			continue
		}
		totals[folio] = totals[folio].Add(amount)
	}
	return totals
}

func parseOptionalAmount(value string) (decimal.Decimal, error) {
	amount, err := currencyutils.ParseAmount(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &parsererror.ParseError{
			Parser: "crmparser",
			Field:  "monto_comision",
			Value:  value,
			Err:    err,
		}
	}
	return amount, nil
}

func parseIntOr(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "si", "sí":
		return true
	}
	return false
}
