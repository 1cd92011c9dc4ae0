// Package jobstore keeps per-job state in Redis. Each job owns three keys:
// a status string, a list of processed songs in completion order, and a set
// of release years used to keep the quiz free of duplicate answers. All
// three expire one hour after the last write.
package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cesargomez89/yearspin/internal/constants"
	"github.com/cesargomez89/yearspin/internal/domain"
)

var ErrJobNotFound = errors.New("job not found")

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func statusKey(jobID string) string  { return fmt.Sprintf("job:%s:status", jobID) }
func resultsKey(jobID string) string { return fmt.Sprintf("job:%s:results", jobID) }
func yearsKey(jobID string) string   { return fmt.Sprintf("job:%s:years", jobID) }

// InitJob creates a fresh job in status queued. The first song is answered
// inline and never enters the results list, but its release year seeds the
// year set so the worker cannot hand out a duplicate answer.
func (s *Store) InitJob(ctx context.Context, jobID, firstYear string) error {
	if err := s.rdb.Set(ctx, statusKey(jobID), string(domain.JobStatusQueued), constants.JobTTL).Err(); err != nil {
		return fmt.Errorf("failed to init job: %w", err)
	}
	if err := s.rdb.Del(ctx, resultsKey(jobID)).Err(); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}
	if err := s.rdb.SAdd(ctx, yearsKey(jobID), firstYear).Err(); err != nil {
		return fmt.Errorf("failed to seed years: %w", err)
	}
	if err := s.rdb.Expire(ctx, yearsKey(jobID), constants.JobTTL).Err(); err != nil {
		return fmt.Errorf("failed to set years TTL: %w", err)
	}
	return nil
}

// SetStatus updates the job status and pushes every key's expiry out,
// so a slow job never loses its results mid-flight.
func (s *Store) SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	if err := s.rdb.Set(ctx, statusKey(jobID), string(status), constants.JobTTL).Err(); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	s.rdb.Expire(ctx, resultsKey(jobID), constants.JobTTL)
	s.rdb.Expire(ctx, yearsKey(jobID), constants.JobTTL)
	return nil
}

// GetStatus returns the job's current status, or ErrJobNotFound once the
// keys have expired or never existed.
func (s *Store) GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error) {
	val, err := s.rdb.Get(ctx, statusKey(jobID)).Result()
	if err == redis.Nil {
		return "", ErrJobNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	return domain.JobStatus(val), nil
}

// AppendResult adds a processed song to the job, unless its release year is
// already taken by an earlier song. The year set is the guard: SADD reports
// whether the year was new, and only a new year earns a slot in the results
// list. "N/A" is a year like any other, so at most one song without a usable
// year makes it into the quiz. Reports whether the song was appended.
func (s *Store) AppendResult(ctx context.Context, jobID string, song domain.ProcessedSong) (bool, error) {
	added, err := s.rdb.SAdd(ctx, yearsKey(jobID), song.ReleaseYear).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim year: %w", err)
	}
	if added == 0 {
		return false, nil
	}
	s.rdb.Expire(ctx, yearsKey(jobID), constants.JobTTL)

	data, err := json.Marshal(song)
	if err != nil {
		return false, fmt.Errorf("failed to marshal song: %w", err)
	}
	if err := s.rdb.RPush(ctx, resultsKey(jobID), data).Err(); err != nil {
		return false, fmt.Errorf("failed to append result: %w", err)
	}
	s.rdb.Expire(ctx, resultsKey(jobID), constants.JobTTL)
	return true, nil
}

// ListResults returns the processed songs starting at index from, in the
// order they were appended.
func (s *Store) ListResults(ctx context.Context, jobID string, from int) ([]domain.ProcessedSong, error) {
	items, err := s.rdb.LRange(ctx, resultsKey(jobID), int64(from), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	songs := make([]domain.ProcessedSong, 0, len(items))
	for _, item := range items {
		var song domain.ProcessedSong
		if err := json.Unmarshal([]byte(item), &song); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, nil
}

// Delete removes all keys belonging to a job.
func (s *Store) Delete(ctx context.Context, jobID string) error {
	if err := s.rdb.Del(ctx, statusKey(jobID), resultsKey(jobID), yearsKey(jobID)).Err(); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}
