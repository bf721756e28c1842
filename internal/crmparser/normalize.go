package crmparser

import (
	"strings"
	"time"

	"gannet/booking-reports/internal/currencyutils"
	"gannet/booking-reports/internal/dateutils"
	"gannet/booking-reports/internal/models"
	"gannet/booking-reports/internal/parsererror"
)

// Normalize joins header and detail rows by folio and produces canonical
// records in input order. Cancelled reservations are dropped here and never
// reach enrichment: they represent withdrawn revenue and must not appear in
// any financial total. Rows whose creation date is missing or unparseable
// are skipped with a diagnostic.
//
// The detail lines carry per-service commissions, which are the margin the
// agency keeps on a reservation. Cost is therefore gross minus the summed
// commissions: a header with no matching detail lines has cost equal to
// gross and zero margin.
func Normalize(headers []ReservationCSVRow, lines []ReservationLineCSVRow, entity models.Entity, aliases map[string]string) ([]models.CanonicalRecord, []parsererror.RowError) {
	commissions := sumCommissions(lines)

	records := make([]models.CanonicalRecord, 0, len(headers))
	var skipped []parsererror.RowError
	cancelled := 0

	for _, row := range headers {
		folio := strings.TrimSpace(row.Folio)
		if folio == "" {
			skipped = append(skipped, parsererror.RowError{
				ReservationID: "",
				Reason:        "missing folio",
			})
			continue
		}

		if isTruthy(row.Cancelled) {
			cancelled++
			continue
		}

		creation, ok := parseRequiredDate(row.Date)
		if !ok {
			skip := parsererror.RowError{
				ReservationID: folio,
				Reason:        "missing or unparseable creation date '" + row.Date + "'",
			}
			skipped = append(skipped, skip)
			log.WithField("folio", folio).Warn(skip.Reason)
			continue
		}

		gross, err := currencyutils.ParseAmount(strings.TrimSpace(row.TotalAmount))
		if err != nil {
			skip := parsererror.RowError{
				ReservationID: folio,
				Reason:        "unparseable total amount '" + row.TotalAmount + "'",
			}
			skipped = append(skipped, skip)
			log.WithField("folio", folio).Warn(skip.Reason)
			continue
		}

		records = append(records, models.CanonicalRecord{
			ReservationID: folio,
			Entity:        entity,
			Status:        models.StatusActive,
			Closed:        isTruthy(row.Closed),
			CreationDate:  creation,
			DepartureDate: parseOptionalDate(row.StartDate, folio, "fecha_inicio"),
			ReturnDate:    parseOptionalDate(row.EndDate, folio, "fecha_fin"),
			SalespersonID: strings.TrimSpace(row.Salesperson),
			Guests:        parseIntOr(row.Guests, 0),
			GrossAmount:   gross,
			CurrencyCode:  currencyutils.NormalizeCode(row.Currency, aliases),
			CostAmount:    gross.Sub(commissions[folio]),
			Notes:         strings.TrimSpace(row.Notes),
		})
	}

	log.WithFields(map[string]interface{}{
		"total":     len(headers),
		"cancelled": cancelled,
		"skipped":   len(skipped),
		"records":   len(records),
	}).Info("Normalized reservation rows")

	return records, skipped
}

func parseRequiredDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, _, err := dateutils.ParseDate(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseOptionalDate returns nil for empty or unparseable values; an
// unparseable value is logged since absence of a departure date is a
// data-quality finding downstream.
func parseOptionalDate(value, folio, field string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, _, err := dateutils.ParseDate(value)
	if err != nil {
		log.WithField("folio", folio).Debugf("Unparseable %s '%s', treated as absent", field, value)
		return nil
	}
	return &t
}
