// Package bookingwindow builds the booking-window matrix: for each ISO
// week a sale was made, how that revenue distributes across the months in
// which customers will eventually depart. Values are summed USD amounts.
package bookingwindow

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gannet/booking-reports/internal/models"
)

// MonthKey identifies a calendar month within a year.
type MonthKey struct {
	Year  int
	Month time.Month
}

// Before reports whether m precedes other chronologically.
func (m MonthKey) Before(other MonthKey) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Next returns the month after m.
func (m MonthKey) Next() MonthKey {
	if m.Month == time.December {
		return MonthKey{Year: m.Year + 1, Month: time.January}
	}
	return MonthKey{Year: m.Year, Month: m.Month + 1}
}

// String formats the key as "2026-01".
func (m MonthKey) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// CellKey addresses one matrix cell: (week of sale, month of departure).
type CellKey struct {
	Week  int
	Month MonthKey
}

// Matrix is the booking window. The matrix is conceptually dense: every
// (week, month) combination inside the observed reporting window is
// defined, and combinations with no contributing records are zero.
type Matrix struct {
	cells map[CellKey]decimal.Decimal

	minWeek, maxWeek   int
	minMonth, maxMonth MonthKey
	hasData            bool
}

// NewMatrix creates an empty booking-window matrix.
func NewMatrix() *Matrix {
	return &Matrix{cells: make(map[CellKey]decimal.Decimal)}
}

// Aggregate builds the matrix from enriched records. Records without a
// departure date cannot be bucketed and are excluded here; they remain
// visible to the validator. Summation is order-independent.
func Aggregate(records []models.EnrichedRecord) *Matrix {
	m := NewMatrix()
	for _, record := range records {
		month, year, ok := record.DepartureMonth()
		if !ok {
			continue
		}
		m.Add(record.SaleWeek, MonthKey{Year: year, Month: month}, record.AmountUSD)
	}
	return m
}

// Add accumulates an amount into the cell for (week, month) and widens the
// observed reporting window to include it.
func (m *Matrix) Add(week int, month MonthKey, amountUSD decimal.Decimal) {
	key := CellKey{Week: week, Month: month}
	m.cells[key] = m.cells[key].Add(amountUSD)

	if !m.hasData {
		m.minWeek, m.maxWeek = week, week
		m.minMonth, m.maxMonth = month, month
		m.hasData = true
		return
	}
	if week < m.minWeek {
		m.minWeek = week
	}
	if week > m.maxWeek {
		m.maxWeek = week
	}
	if month.Before(m.minMonth) {
		m.minMonth = month
	}
	if m.maxMonth.Before(month) {
		m.maxMonth = month
	}
}

// Cell returns the accumulated USD total for (week, month); zero when no
// record landed there.
func (m *Matrix) Cell(week int, month MonthKey) decimal.Decimal {
	return m.cells[CellKey{Week: week, Month: month}]
}

// Weeks returns every sale week in the observed window, descending, the
// order the weekly export lists them in.
func (m *Matrix) Weeks() []int {
	if !m.hasData {
		return nil
	}
	weeks := make([]int, 0, m.maxWeek-m.minWeek+1)
	for week := m.maxWeek; week >= m.minWeek; week-- {
		weeks = append(weeks, week)
	}
	return weeks
}

// Months returns every departure month in the observed window, ascending.
func (m *Matrix) Months() []MonthKey {
	if !m.hasData {
		return nil
	}
	var months []MonthKey
	for month := m.minMonth; !m.maxMonth.Before(month); month = month.Next() {
		months = append(months, month)
	}
	return months
}

// WeekTotal sums all cells for one sale week.
func (m *Matrix) WeekTotal(week int) decimal.Decimal {
	total := decimal.Zero
	for key, value := range m.cells {
		if key.Week == week {
			total = total.Add(value)
		}
	}
	return total
}

// Total sums every cell in the matrix. It equals the sum of AmountUSD over
// all enriched records that carry a departure date.
func (m *Matrix) Total() decimal.Decimal {
	total := decimal.Zero
	for _, value := range m.cells {
		total = total.Add(value)
	}
	return total
}

// Cells returns all non-zero cells sorted by week descending then month
// ascending, for renderers that want a stable flat view.
func (m *Matrix) Cells() []CellValue {
	values := make([]CellValue, 0, len(m.cells))
	for key, value := range m.cells {
		values = append(values, CellValue{Key: key, AmountUSD: value})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Key.Week != values[j].Key.Week {
			return values[i].Key.Week > values[j].Key.Week
		}
		return values[i].Key.Month.Before(values[j].Key.Month)
	})
	return values
}

// CellValue pairs a cell key with its accumulated total.
type CellValue struct {
	Key       CellKey
	AmountUSD decimal.Decimal
}
