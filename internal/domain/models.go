package domain

import (
	"strconv"
	"time"

	"github.com/cesargomez89/yearspin/internal/constants"
)

type JobStatus string

const (
	JobStatusQueued        JobStatus = "queued"
	JobStatusProcessing    JobStatus = "processing"
	JobStatusComplete      JobStatus = "complete"
	JobStatusPublishFailed JobStatus = "publish_failed"
	JobStatusWorkerFailed  JobStatus = "worker_failed"
)

// IsTerminal reports whether a job in this status will never produce more results.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusComplete, JobStatusPublishFailed, JobStatusWorkerFailed:
		return true
	}
	return false
}

// Source identifies which upstream supplied a song's release date.
type Source string

const (
	SourceCatalog   Source = "catalog"
	SourceStreaming Source = "streaming"
)

// Song is a track as it arrives from the streaming service, before the
// original release year has been resolved.
type Song struct {
	Artist             string `json:"artist"`
	Title              string `json:"title"`
	SpotifyURL         string `json:"spotifyUrl"`
	CurrentReleaseDate string `json:"currentReleaseDate"`
}

// ProcessedSong is a Song augmented with a resolved release date.
// ReleaseYear is either a four-digit year in [1900, currentYear] or "N/A";
// ReleaseMonth is an English month name or "N/A"; ReleaseDay is a numeric
// day string or "N/A".
type ProcessedSong struct {
	Song
	ReleaseYear  string `json:"releaseYear"`
	ReleaseMonth string `json:"releaseMonth"`
	ReleaseDay   string `json:"releaseDay"`
	Source       Source `json:"source"`
	SourceURL    string `json:"sourceUrl,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ValidYear reports whether a year string is a four-digit year within
// [1900, currentYear].
func ValidYear(year string) bool {
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}
	return y >= constants.MinValidYear && y <= time.Now().Year()
}

// MonthName converts a numeric month string ("1".."12", leading zero
// allowed) to its English name. Anything else yields "N/A".
func MonthName(month string) string {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return constants.NotAvailable
	}
	return time.Month(m).String()
}
