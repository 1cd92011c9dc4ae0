// Package httpapp wires the quiz pipeline into an HTTP API.
package httpapp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/cesargomez89/yearspin/internal/constants"
	"github.com/cesargomez89/yearspin/internal/domain"
	"github.com/cesargomez89/yearspin/internal/logger"
	"github.com/cesargomez89/yearspin/internal/queue"
)

type Sampler interface {
	Sample(ctx context.Context, playlistID string, n int) (domain.Song, []domain.Song, error)
}

type Resolver interface {
	Resolve(ctx context.Context, song domain.Song) domain.ProcessedSong
}

type JobStore interface {
	InitJob(ctx context.Context, jobID, firstYear string) error
	SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error
	GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error)
	AppendResult(ctx context.Context, jobID string, song domain.ProcessedSong) (bool, error)
	ListResults(ctx context.Context, jobID string, from int) ([]domain.ProcessedSong, error)
}

type Publisher interface {
	Publish(ctx context.Context, payload any) error
}

type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string, songs []domain.Song) error
}

type Handler struct {
	Sampler     Sampler
	Resolver    Resolver
	Jobs        JobStore
	Publisher   Publisher
	Processor   JobProcessor
	Redis       *redis.Client
	QueueSecret string
	Logger      *logger.Logger

	pollInterval   time.Duration
	streamLifetime time.Duration
}

func NewHandler(sampler Sampler, res Resolver, jobs JobStore, pub Publisher, proc JobProcessor, rdb *redis.Client, queueSecret string, log *logger.Logger) *Handler {
	return &Handler{
		Sampler:        sampler,
		Resolver:       res,
		Jobs:           jobs,
		Publisher:      pub,
		Processor:      proc,
		Redis:          rdb,
		QueueSecret:    queueSecret,
		Logger:         log.WithComponent("http"),
		pollInterval:   constants.StreamPollInterval,
		streamLifetime: constants.StreamMaxLifetime,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Healthz)
	r.Post("/sample", h.Sample)
	r.Post("/process", h.Process)
	r.With(queue.VerifySignature(h.QueueSecret)).Post("/worker", h.Worker)
	r.Get("/stream", h.Stream)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
