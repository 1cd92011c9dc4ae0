// Package resolver turns a streaming song into its original release year.
// It asks the discography catalog first and falls back to the streaming
// metadata when the catalog has no acceptable answer.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/yearspin/internal/catalog"
	"github.com/cesargomez89/yearspin/internal/constants"
	"github.com/cesargomez89/yearspin/internal/domain"
	"github.com/cesargomez89/yearspin/internal/logger"
)

// CatalogAPI is the slice of the catalog client the resolver needs.
type CatalogAPI interface {
	Search(ctx context.Context, query string, opts catalog.SearchOptions) ([]catalog.SearchResult, error)
	GetMaster(ctx context.Context, id int) (*catalog.Master, error)
	GetRelease(ctx context.Context, id int) (*catalog.Release, error)
	MasterURL(id int) string
}

// LookupCache persists resolved songs across jobs. May be nil, in which case
// every song costs catalog requests.
type LookupCache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
}

// Editions pressed for promotion rather than sale; their dates predate or
// postdate the real release and must not override the master year.
var promoDescriptions = map[string]bool{
	"promo":         true,
	"sampler":       true,
	"test pressing": true,
	"advance":       true,
	"acetate":       true,
}

type Resolver struct {
	catalog CatalogAPI
	cache   LookupCache
	log     *logger.Logger
}

func New(catalogAPI CatalogAPI, cache LookupCache, log *logger.Logger) *Resolver {
	return &Resolver{
		catalog: catalogAPI,
		cache:   cache,
		log:     log.WithComponent("resolver"),
	}
}

// Resolve never fails: when the catalog cannot produce an acceptable answer
// the streaming metadata fills in, and a catalog outage additionally sets
// the Error field on the result.
func (r *Resolver) Resolve(ctx context.Context, song domain.Song) domain.ProcessedSong {
	log := r.log.WithSong(song.Artist, song.Title)

	normArtist := Normalize(song.Artist)
	normTitle := Normalize(song.Title)
	cacheKey := fmt.Sprintf("resolve:%s|%s", normArtist, normTitle)

	if cached, ok := r.fromCache(cacheKey, song); ok {
		log.Debug("resolved from lookup cache")
		return cached
	}

	best, err := r.findMatch(ctx, normArtist, normTitle)
	if err != nil {
		log.Warn("catalog lookup failed, falling back to streaming metadata", "error", err)
		processed := FallbackToStreaming(song)
		processed.Error = err.Error()
		return processed
	}
	if best == nil {
		log.Info("no acceptable catalog match, falling back to streaming metadata")
		return FallbackToStreaming(song)
	}

	master, err := r.catalog.GetMaster(ctx, best.ID)
	if err != nil {
		log.Warn("failed to fetch master, falling back to streaming metadata", "error", err, "master_id", best.ID)
		processed := FallbackToStreaming(song)
		processed.Error = err.Error()
		return processed
	}

	year := strconv.Itoa(master.Year)
	month, day := constants.NotAvailable, constants.NotAvailable

	// The master year is the year of first release; the main release often
	// carries a full date for the same edition. A promotional main release
	// predates the real one, so its date cannot be trusted and neither can
	// the master it hangs off.
	if master.MainReleaseID > 0 {
		release, err := r.catalog.GetRelease(ctx, master.MainReleaseID)
		if err != nil {
			log.Warn("failed to fetch main release, falling back to streaming metadata", "error", err, "release_id", master.MainReleaseID)
			processed := FallbackToStreaming(song)
			processed.Error = err.Error()
			return processed
		}
		if isPromoRelease(release) {
			log.Info("main release is promotional, falling back to streaming metadata")
			return FallbackToStreaming(song)
		}
		if release.Released != "" {
			year, month, day = parseReleased(release.Released)
		}
	}

	if !domain.ValidYear(year) {
		log.Info("catalog match has no plausible year, falling back to streaming metadata", "year", year)
		return FallbackToStreaming(song)
	}

	processed := domain.ProcessedSong{
		Song:         song,
		ReleaseYear:  year,
		ReleaseMonth: domain.MonthName(month),
		ReleaseDay:   day,
		Source:       domain.SourceCatalog,
		SourceURL:    r.catalog.MasterURL(best.ID),
	}

	r.toCache(cacheKey, processed)
	log.Info("resolved from catalog", "year", processed.ReleaseYear, "master_id", best.ID)
	return processed
}

// findMatch searches for "<artist> <title>" over a narrow page, widening to
// an artist-only query when the first search comes back empty. Scoring runs
// on whichever result set arrived; sorting by year ascending means ties
// resolve to the oldest master.
func (r *Resolver) findMatch(ctx context.Context, normArtist, normTitle string) (*catalog.SearchResult, error) {
	results, err := r.catalog.Search(ctx, normArtist+" "+normTitle, catalog.SearchOptions{
		Type:    "master",
		PerPage: constants.SearchPageSize,
		Sort:    "year,asc",
	})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		results, err = r.catalog.Search(ctx, fmt.Sprintf("artist:%q", normArtist), catalog.SearchOptions{
			Type:    "master",
			PerPage: constants.ArtistSearchPageSize,
			Sort:    "year,asc",
		})
		if err != nil {
			return nil, err
		}
	}

	if best, ok := pickBestMatch(results, normArtist, normTitle); ok {
		return &best, nil
	}
	return nil, nil
}

func (r *Resolver) fromCache(key string, song domain.Song) (domain.ProcessedSong, bool) {
	if r.cache == nil {
		return domain.ProcessedSong{}, false
	}
	data, err := r.cache.GetCache(key)
	if err != nil {
		r.log.Warn("lookup cache read failed", "error", err, "key", key)
		return domain.ProcessedSong{}, false
	}
	if data == nil {
		return domain.ProcessedSong{}, false
	}

	var cached domain.ProcessedSong
	if err := json.Unmarshal(data, &cached); err != nil {
		r.log.Warn("lookup cache entry is corrupt", "error", err, "key", key)
		return domain.ProcessedSong{}, false
	}
	// The cached entry may come from another playlist; the streaming-side
	// fields belong to this song.
	cached.Song = song
	return cached, true
}

func (r *Resolver) toCache(key string, processed domain.ProcessedSong) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(processed)
	if err != nil {
		return
	}
	if err := r.cache.SetCache(key, data, constants.LookupCacheTTL); err != nil {
		r.log.Warn("lookup cache write failed", "error", err, "key", key)
	}
}

func isPromoRelease(release *catalog.Release) bool {
	if len(release.Formats) == 0 {
		return false
	}
	for _, desc := range release.Formats[0].Descriptions {
		if promoDescriptions[strings.ToLower(desc)] {
			return true
		}
	}
	return false
}

// parseReleased splits a catalog date, which may be YYYY, YYYY-MM, or
// YYYY-MM-DD. Missing parts come back as "N/A".
func parseReleased(released string) (year, month, day string) {
	year, month, day = constants.NotAvailable, constants.NotAvailable, constants.NotAvailable
	if released == "" {
		return
	}
	parts := strings.Split(released, "-")
	year = parts[0]
	if len(parts) > 1 && parts[1] != "" && parts[1] != "00" {
		month = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" && parts[2] != "00" {
		day = parts[2]
	}
	return
}
