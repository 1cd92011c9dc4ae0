package dto

import (
	"github.com/cesargomez89/yearspin/internal/domain"
)

// SampleRequest asks for a random draw of songs from a playlist.
type SampleRequest struct {
	PlaylistURL string `json:"playlistUrl"`
	Size        int    `json:"size"`
}

func (r *SampleRequest) Validate() []ValidationError {
	var errs []ValidationError
	if r.PlaylistURL == "" {
		errs = append(errs, ValidationError{Field: "playlistUrl", Message: "is required"})
	}
	return errs
}

// SampleResponse is the sampled draw: the quiz opener plus the songs the
// caller should submit for processing.
type SampleResponse struct {
	FirstSong      domain.Song   `json:"firstSong"`
	RemainingSongs []domain.Song `json:"remainingSongs"`
}

// ProcessRequest starts a quiz job. The first song resolves inline so the
// quiz can open immediately; the remaining songs go to the worker.
type ProcessRequest struct {
	FirstSong      domain.Song   `json:"firstSong"`
	RemainingSongs []domain.Song `json:"remainingSongs"`
}

func (r *ProcessRequest) Validate() []ValidationError {
	errs := validateSong("firstSong", &r.FirstSong)
	for i := range r.RemainingSongs {
		errs = append(errs, validateSong(indexedField("remainingSongs", i), &r.RemainingSongs[i])...)
	}
	return errs
}

// ProcessResponse acknowledges a started job with the inline-resolved
// first song; the rest arrives over the stream.
type ProcessResponse struct {
	ProcessedSong domain.ProcessedSong `json:"processedSong"`
	JobID         string               `json:"jobId"`
}

// WorkerRequest is the queue-delivered payload the worker endpoint receives.
type WorkerRequest struct {
	JobID          string        `json:"jobId"`
	SongsToProcess []domain.Song `json:"songsToProcess"`
}

func (r *WorkerRequest) Validate() []ValidationError {
	var errs []ValidationError
	if r.JobID == "" {
		errs = append(errs, ValidationError{Field: "jobId", Message: "is required"})
	}
	for i := range r.SongsToProcess {
		errs = append(errs, validateSong(indexedField("songsToProcess", i), &r.SongsToProcess[i])...)
	}
	return errs
}
