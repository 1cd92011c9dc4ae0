// Package worker drains a job's remaining songs: each one is resolved and
// appended to the job in completion order while clients watch the stream.
package worker

import (
	"context"
	"fmt"

	"github.com/cesargomez89/yearspin/internal/domain"
	"github.com/cesargomez89/yearspin/internal/logger"
	"github.com/cesargomez89/yearspin/internal/resolver"
)

type Resolver interface {
	Resolve(ctx context.Context, song domain.Song) domain.ProcessedSong
}

type JobStore interface {
	SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error
	AppendResult(ctx context.Context, jobID string, song domain.ProcessedSong) (bool, error)
}

type Worker struct {
	resolver Resolver
	store    JobStore
	log      *logger.Logger
}

func New(res Resolver, store JobStore, log *logger.Logger) *Worker {
	return &Worker{
		resolver: res,
		store:    store,
		log:      log.WithComponent("worker"),
	}
}

// ProcessJob resolves every song and appends the results to the job. One
// bad song never sinks the batch: a resolution panic downgrades that song
// to its streaming metadata and processing moves on. Only a failing job
// store ends the job early, as worker_failed.
func (w *Worker) ProcessJob(ctx context.Context, jobID string, songs []domain.Song) error {
	log := w.log.WithJob(jobID)
	log.Info("processing job", "songs", len(songs))

	if err := w.store.SetStatus(ctx, jobID, domain.JobStatusProcessing); err != nil {
		w.failJob(ctx, log, jobID)
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	for _, song := range songs {
		processed := w.resolveSafe(ctx, song)

		appended, err := w.store.AppendResult(ctx, jobID, processed)
		if err != nil {
			log.Error("failed to append result, abandoning job", "error", err)
			w.failJob(ctx, log, jobID)
			return fmt.Errorf("failed to append result: %w", err)
		}
		if !appended {
			log.WithSong(song.Artist, song.Title).Debug("skipped song, release year already taken")
		}
	}

	if err := w.store.SetStatus(ctx, jobID, domain.JobStatusComplete); err != nil {
		w.failJob(ctx, log, jobID)
		return fmt.Errorf("failed to mark job complete: %w", err)
	}
	log.Info("job complete")
	return nil
}

// failJob best-effort marks the job worker_failed so stream clients get a
// terminal status instead of waiting out the job TTL.
func (w *Worker) failJob(ctx context.Context, log *logger.Logger, jobID string) {
	if err := w.store.SetStatus(ctx, jobID, domain.JobStatusWorkerFailed); err != nil {
		log.Error("failed to mark job worker_failed", "error", err)
	}
}

func (w *Worker) resolveSafe(ctx context.Context, song domain.Song) (processed domain.ProcessedSong) {
	defer func() {
		if r := recover(); r != nil {
			w.log.WithSong(song.Artist, song.Title).Error("panic while resolving song", "panic", r)
			processed = resolver.FallbackToStreaming(song)
			processed.Error = fmt.Sprintf("internal error while resolving: %v", r)
		}
	}()
	return w.resolver.Resolve(ctx, song)
}
