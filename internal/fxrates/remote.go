package fxrates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gannet/booking-reports/internal/logging"
)

// ErrDateNotFound indicates the feed has no published rates for a date,
// which is normal for weekends and market holidays.
var ErrDateNotFound = errors.New("no rates published for date")

// HTTPSource fetches daily historical rates from an exchangerate-API style
// JSON endpoint: GET {baseURL}/{YYYY-MM-DD}?base={code} returning
// {"date": "...", "rates": {"USD": 1.16, ...}} quoted against the base.
type HTTPSource struct {
	client  *http.Client
	baseURL string
	base    string
	logger  logging.Logger
}

// NewHTTPSource creates an HTTPSource with an explicit overall timeout.
// On expiry the in-flight call fails and the resolver switches to its
// static fallback instead of blocking the run.
func NewHTTPSource(baseURL, baseCurrency string, timeout time.Duration, logger logging.Logger) *HTTPSource {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &HTTPSource{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    baseCurrency,
		logger:  logger,
	}
}

type feedResponse struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// FetchDate implements RateSource over the HTTP feed.
func (s *HTTPSource) FetchDate(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s?base=%s", s.baseURL, date.Format("2006-01-02"), s.base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building FX request: %w", err)
	}

	s.logger.Debug("Fetching FX rates", logging.Field{Key: logging.FieldDate, Value: date.Format("2006-01-02")})

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FX feed request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrDateNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FX feed returned status %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding FX feed response: %w", err)
	}

	if len(feed.Rates) == 0 {
		return nil, ErrDateNotFound
	}

	rates := make(map[string]decimal.Decimal, len(feed.Rates))
	for code, value := range feed.Rates {
		rates[strings.ToUpper(code)] = decimal.NewFromFloat(value)
	}
	return rates, nil
}
