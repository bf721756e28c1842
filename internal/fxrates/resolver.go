// Package fxrates resolves historical foreign-exchange rates by date and
// currency. Rates come from a remote daily feed quoted against the base
// currency; weekends and holidays publish no rate, so the resolver walks
// back to the most recent prior day within a bounded window, and a static
// fallback table covers remote failures. Every resolution is cached for
// the lifetime of the run.
package fxrates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gannet/booking-reports/internal/currencyutils"
	"gannet/booking-reports/internal/dateutils"
	"gannet/booking-reports/internal/logging"
	"gannet/booking-reports/internal/models"
)

// DefaultMaxWalkbackDays bounds the backward day-walk when the remote feed
// has no rate for the requested date.
const DefaultMaxWalkbackDays = 7

// Rate is the result of resolving (date, currency): the value of one unit
// of Currency in the base currency, with the provenance of the quote and
// the feed date actually used.
type Rate struct {
	Currency     string
	RequestDate  time.Time
	ResolvedDate time.Time
	ToBase       decimal.Decimal
	Provenance   models.RateProvenance
}

// RateSource supplies base-quoted rates for a single calendar date:
// one unit of the base currency equals rates[code] units of code.
// Implementations return ErrDateNotFound for dates with no published rates.
type RateSource interface {
	FetchDate(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error)
}

// ResolverOptions tune a Resolver. Zero values select the defaults:
// EUR base, DefaultMaxWalkbackDays, currencyutils.DefaultAliases.
type ResolverOptions struct {
	BaseCurrency    string
	MaxWalkbackDays int
	Aliases         map[string]string
}

// Resolver resolves (date, currency) pairs to rates. It is built once per
// run and is the single writer of its caches; a run resolves sequentially
// during enrichment, so no locking is needed.
type Resolver struct {
	source      RateSource
	fallback    map[string]decimal.Decimal
	aliases     map[string]string
	base        string
	maxWalkback int
	logger      logging.Logger

	rates map[string]Rate
	days  map[string]daySnapshot

	remoteCalls int
}

type daySnapshot struct {
	rates map[string]decimal.Decimal
	err   error
}

// NewResolver creates a Resolver over the given remote source and static
// fallback table (currency code to rate-to-base).
func NewResolver(source RateSource, fallback map[string]decimal.Decimal, opts ResolverOptions, logger logging.Logger) *Resolver {
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = models.CurrencyEUR
	}
	if opts.MaxWalkbackDays == 0 {
		opts.MaxWalkbackDays = DefaultMaxWalkbackDays
	}
	if opts.Aliases == nil {
		opts.Aliases = currencyutils.DefaultAliases
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Resolver{
		source:      source,
		fallback:    fallback,
		aliases:     opts.Aliases,
		base:        opts.BaseCurrency,
		maxWalkback: opts.MaxWalkbackDays,
		logger:      logger,
		rates:       make(map[string]Rate),
		days:        make(map[string]daySnapshot),
	}
}

// BaseCurrency returns the currency all rates are quoted against.
func (r *Resolver) BaseCurrency() string {
	return r.base
}

// KnownCurrency reports whether a code (after alias correction) is either
// the base currency or covered by the fallback table.
func (r *Resolver) KnownCurrency(code string) bool {
	code = currencyutils.NormalizeCode(code, r.aliases)
	if code == r.base {
		return true
	}
	_, ok := r.fallback[code]
	return ok
}

// Resolve returns the rate-to-base for a currency on a date. It never
// fails: a remote miss walks back up to MaxWalkbackDays, a remote error or
// an unknown currency falls back to the static table, and the result is
// cached so the same (date, currency) always yields the same rate within
// a run.
func (r *Resolver) Resolve(ctx context.Context, date time.Time, currency string) Rate {
	code := currencyutils.NormalizeCode(currency, r.aliases)

	// The base currency is always exactly 1.0 and never hits the remote.
	if code == r.base {
		return Rate{
			Currency:     code,
			RequestDate:  date,
			ResolvedDate: date,
			ToBase:       decimal.NewFromInt(1),
			Provenance:   models.ProvenanceRemote,
		}
	}

	key := cacheKey(date, code)
	if cached, ok := r.rates[key]; ok {
		return cached
	}

	rate := r.resolveRemote(ctx, date, code)
	r.rates[key] = rate
	return rate
}

// PreloadDates warms the per-date cache for a set of record creation dates
// so enrichment does not interleave remote calls with record processing.
func (r *Resolver) PreloadDates(ctx context.Context, dates []time.Time) {
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		iso := dateutils.ToISODate(d)
		if seen[iso] {
			continue
		}
		seen[iso] = true
		r.day(ctx, d)
	}
	r.logger.Info("Preloaded FX dates", logging.Field{Key: logging.FieldCount, Value: len(seen)})
}

// RemoteCalls returns the number of calls made to the remote source.
func (r *Resolver) RemoteCalls() int {
	return r.remoteCalls
}

func (r *Resolver) resolveRemote(ctx context.Context, date time.Time, code string) Rate {
	for i := 0; i <= r.maxWalkback; i++ {
		day := date.AddDate(0, 0, -i)
		snapshot := r.day(ctx, day)

		if snapshot.err != nil {
			if errors.Is(snapshot.err, ErrDateNotFound) {
				continue
			}
			// Transient remote failure: use the static table for this pair.
			r.logger.WithError(snapshot.err).Warn("FX remote lookup failed, using fallback rate",
				logging.Field{Key: logging.FieldCurrency, Value: code},
				logging.Field{Key: logging.FieldDate, Value: dateutils.ToISODate(date)})
			return r.fallbackRate(date, code)
		}

		quoted, ok := snapshot.rates[code]
		if !ok || !quoted.IsPositive() {
			// The feed covers this day but not this currency.
			r.logger.Warn("Currency missing from FX feed, using fallback rate",
				logging.Field{Key: logging.FieldCurrency, Value: code},
				logging.Field{Key: logging.FieldDate, Value: dateutils.ToISODate(day)})
			return r.fallbackRate(date, code)
		}

		// Feed quotes 1 base = quoted units of code; invert for rate-to-base.
		return Rate{
			Currency:     code,
			RequestDate:  date,
			ResolvedDate: day,
			ToBase:       decimal.NewFromInt(1).Div(quoted),
			Provenance:   models.ProvenanceRemote,
		}
	}

	r.logger.Warn("No FX rate within walk-back window, using fallback rate",
		logging.Field{Key: logging.FieldCurrency, Value: code},
		logging.Field{Key: logging.FieldDate, Value: dateutils.ToISODate(date)})
	return r.fallbackRate(date, code)
}

func (r *Resolver) day(ctx context.Context, date time.Time) daySnapshot {
	iso := dateutils.ToISODate(date)
	if snapshot, ok := r.days[iso]; ok {
		return snapshot
	}

	r.remoteCalls++
	rates, err := r.source.FetchDate(ctx, date)
	snapshot := daySnapshot{rates: rates, err: err}
	r.days[iso] = snapshot
	return snapshot
}

func (r *Resolver) fallbackRate(date time.Time, code string) Rate {
	value, ok := r.fallback[code]
	if !ok {
		// Unknown currency with no fallback entry: treat as base so the
		// record survives conversion; the validator flags the code.
		r.logger.Warn("No fallback rate for currency, treating as base",
			logging.Field{Key: logging.FieldCurrency, Value: code})
		value = decimal.NewFromInt(1)
	}
	return Rate{
		Currency:     code,
		RequestDate:  date,
		ResolvedDate: date,
		ToBase:       value,
		Provenance:   models.ProvenanceFallback,
	}
}

func cacheKey(date time.Time, code string) string {
	return fmt.Sprintf("%s|%s", dateutils.ToISODate(date), code)
}
