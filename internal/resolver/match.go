package resolver

import (
	"strings"

	"github.com/cesargomez89/yearspin/internal/catalog"
	"github.com/cesargomez89/yearspin/internal/constants"
	"github.com/cesargomez89/yearspin/internal/domain"
)

// scoreCandidate rates how well a search result matches the song we are
// looking for, 0-100. Catalog search titles come in "Artist - Title" form;
// a result without that shape scores zero.
//
//	artist: exact 40, candidate contains the wanted artist 20
//	title:  exact 40, candidate contains the wanted title 20
//	year:   plausible release year 20
func scoreCandidate(result catalog.SearchResult, wantArtist, wantTitle string) int {
	candArtist, candTitle, found := strings.Cut(result.Title, " - ")
	if !found {
		return 0
	}
	candArtist = Normalize(candArtist)
	candTitle = Normalize(candTitle)

	score := 0
	score += fieldScore(candArtist, wantArtist)
	score += fieldScore(candTitle, wantTitle)
	if domain.ValidYear(result.Year) {
		score += 20
	}
	return score
}

func fieldScore(got, want string) int {
	if got == "" || want == "" {
		return 0
	}
	if got == want {
		return 40
	}
	// Containment only counts in one direction: a candidate naming more than
	// we asked for ("the beatles anthology") still matches, but a candidate
	// naming less ("beatles" for "the beatles") is a different entity.
	if strings.Contains(got, want) {
		return 20
	}
	return 0
}

// pickBestMatch returns the highest scoring candidate at or above the match
// threshold. Ties keep the earliest candidate, which matters because search
// results arrive sorted by year ascending: the oldest plausible master wins.
func pickBestMatch(results []catalog.SearchResult, wantArtist, wantTitle string) (catalog.SearchResult, bool) {
	var best catalog.SearchResult
	bestScore := 0
	for _, result := range results {
		if score := scoreCandidate(result, wantArtist, wantTitle); score > bestScore {
			best = result
			bestScore = score
		}
	}
	return best, bestScore >= constants.MinMatchScore
}
