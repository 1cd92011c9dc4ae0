package resolver

import (
	"strings"

	"github.com/cesargomez89/yearspin/internal/constants"
	"github.com/cesargomez89/yearspin/internal/domain"
)

// FallbackToStreaming builds a ProcessedSong from the streaming metadata the
// song already carries. The streaming release date reflects the edition on
// the platform, not the original release, so this is the answer of last
// resort.
func FallbackToStreaming(song domain.Song) domain.ProcessedSong {
	processed := domain.ProcessedSong{
		Song:         song,
		ReleaseYear:  constants.NotAvailable,
		ReleaseMonth: constants.NotAvailable,
		ReleaseDay:   constants.NotAvailable,
		Source:       domain.SourceStreaming,
		SourceURL:    song.SpotifyURL,
	}

	parts := strings.Split(song.CurrentReleaseDate, "-")
	if len(parts) > 0 && domain.ValidYear(parts[0]) {
		processed.ReleaseYear = parts[0]
	}
	if len(parts) > 1 {
		processed.ReleaseMonth = domain.MonthName(parts[1])
	}
	if len(parts) > 2 && parts[2] != "" {
		processed.ReleaseDay = parts[2]
	}

	return processed
}
