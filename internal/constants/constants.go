// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort        = "8080"
	DefaultDBPath      = "yearspin.db"
	DefaultCatalogURL  = "https://api.discogs.com"
	DefaultCatalogSite = "https://www.discogs.com"

	DefaultStreamingURL      = "https://api.spotify.com/v1"
	DefaultStreamingTokenURL = "https://accounts.spotify.com/api/token"
)

// Catalog client
const (
	CatalogRequestInterval = 1000 * time.Millisecond
	CatalogHTTPTimeout     = 10 * time.Second

	SearchPageSize       = 10
	ArtistSearchPageSize = 20
)

// Streaming client
const (
	StreamingHTTPTimeout = 10 * time.Second
	PlaylistPageSize     = 50
	// TokenExpiryMargin forces a refresh when the cached token is within the
	// final second of its expires_in window.
	TokenExpiryMargin = 1 * time.Second
)

// Resolver
const (
	MinMatchScore = 80
	MinValidYear  = 1900
	NotAvailable  = "N/A"
)

// Job store
const (
	JobTTL = 1 * time.Hour
)

// Lookup cache
const (
	LookupCacheTTL = 12 * time.Hour
)

// Event stream
const (
	StreamPollInterval = 1 * time.Second
	StreamMaxLifetime  = 60 * time.Second
)

// Queue
const (
	SignatureHeader  = "X-Queue-Signature"
	QueueHTTPTimeout = 10 * time.Second
)

// Quiz sampling
const (
	DefaultQuizSize = 10
	MaxQuizSize     = 50
)
