// Package sampler turns a playlist reference into a randomized candidate
// set of songs for a quiz round.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"

	"github.com/cesargomez89/yearspin/internal/constants"
	"github.com/cesargomez89/yearspin/internal/domain"
)

var ErrEmptyPlaylist = errors.New("playlist has no usable tracks")

var playlistIDPattern = regexp.MustCompile(`playlist[/:]([A-Za-z0-9]+)`)
var bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// PlaylistSource is the slice of the streaming client the sampler needs.
type PlaylistSource interface {
	GetPlaylistTotal(ctx context.Context, playlistID string) (int, error)
	GetPlaylistTracks(ctx context.Context, playlistID string, offset, limit int) ([]domain.Song, error)
}

type Sampler struct {
	source PlaylistSource
	// rng is swappable so tests can pin the shuffle.
	rng *rand.Rand
}

func New(source PlaylistSource) *Sampler {
	return &Sampler{
		source: source,
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}
}

// ParsePlaylistID extracts the playlist token from a playlist URL or URI.
// A bare token is accepted as-is.
func ParsePlaylistID(ref string) (string, error) {
	if m := playlistIDPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if bareIDPattern.MatchString(ref) {
		return ref, nil
	}
	return "", fmt.Errorf("not a playlist reference: %q", ref)
}

// Sample fetches the playlist, shuffles it, and returns up to n songs split
// into the baseline song and the remainder. n is clamped to
// [1, constants.MaxQuizSize].
func (s *Sampler) Sample(ctx context.Context, playlistID string, n int) (domain.Song, []domain.Song, error) {
	if n < 1 {
		n = constants.DefaultQuizSize
	}
	if n > constants.MaxQuizSize {
		n = constants.MaxQuizSize
	}

	total, err := s.source.GetPlaylistTotal(ctx, playlistID)
	if err != nil {
		return domain.Song{}, nil, fmt.Errorf("failed to read playlist size: %w", err)
	}
	if total == 0 {
		return domain.Song{}, nil, ErrEmptyPlaylist
	}

	songs := make([]domain.Song, 0, total)
	for offset := 0; offset < total; offset += constants.PlaylistPageSize {
		page, err := s.source.GetPlaylistTracks(ctx, playlistID, offset, constants.PlaylistPageSize)
		if err != nil {
			return domain.Song{}, nil, fmt.Errorf("failed to read playlist page at %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		songs = append(songs, page...)
	}

	if len(songs) == 0 {
		return domain.Song{}, nil, ErrEmptyPlaylist
	}

	s.rng.Shuffle(len(songs), func(i, j int) {
		songs[i], songs[j] = songs[j], songs[i]
	})

	if n > len(songs) {
		n = len(songs)
	}
	return songs[0], songs[1:n], nil
}
