package models

// Entity identifies the legal business a reservation belongs to.
type Entity string

// Originating legal entities.
const (
	EntitySL  Entity = "SL"  // Spain
	EntityLLC Entity = "LLC" // Mexico
)

// Status is the lifecycle state of a reservation.
type Status string

// Reservation statuses. Cancelled reservations never enter enrichment.
const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// RateProvenance distinguishes a rate obtained from the live remote source
// from one obtained from static fallback configuration.
type RateProvenance string

const (
	ProvenanceRemote   RateProvenance = "remote"
	ProvenanceFallback RateProvenance = "fallback"
)

// Default currencies used across the pipeline.
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

// File permissions
const (
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
