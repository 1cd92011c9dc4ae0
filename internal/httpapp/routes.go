package httpapp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/cesargomez89/yearspin/internal/domain"
	"github.com/cesargomez89/yearspin/internal/dto"
	"github.com/cesargomez89/yearspin/internal/jobstore"
	"github.com/cesargomez89/yearspin/internal/sampler"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.Redis.Ping(r.Context()).Err(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "redis unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	var req dto.SampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		respondError(w, http.StatusBadRequest, dto.ToResponse(errs))
		return
	}

	playlistID, err := sampler.ParsePlaylistID(req.PlaylistURL)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	first, remaining, err := h.Sampler.Sample(r.Context(), playlistID, req.Size)
	if err != nil {
		if errors.Is(err, sampler.ErrEmptyPlaylist) {
			respondError(w, http.StatusUnprocessableEntity, "playlist has no usable tracks")
			return
		}
		h.Logger.Error("failed to sample playlist", "error", err, "playlist_id", playlistID)
		respondError(w, http.StatusBadGateway, "failed to fetch playlist")
		return
	}

	respondJSON(w, http.StatusOK, dto.SampleResponse{
		FirstSong:      first,
		RemainingSongs: remaining,
	})
}

// Process opens a quiz job: the first song resolves inline so the caller can
// show a question immediately, the rest of the batch is queued for the
// worker. A queue outage is not fatal to the response; the job is marked
// publish_failed and the caller still gets the first song.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		respondError(w, http.StatusBadRequest, dto.ToResponse(errs))
		return
	}

	ctx := r.Context()
	first := h.Resolver.Resolve(ctx, req.FirstSong)

	jobID := uuid.NewString()
	log := h.Logger.WithJob(jobID)

	// The first song never enters the results list; its year seeds the
	// job's dedupe set.
	if err := h.Jobs.InitJob(ctx, jobID, first.ReleaseYear); err != nil {
		log.Error("failed to init job", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	if len(req.RemainingSongs) == 0 {
		// With nothing left to process the job must end complete here, or
		// stream clients wait out the TTL on a job stuck in queued.
		if err := h.Jobs.SetStatus(ctx, jobID, domain.JobStatusComplete); err != nil {
			log.Error("failed to mark job complete", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to create job")
			return
		}
	} else {
		payload := dto.WorkerRequest{JobID: jobID, SongsToProcess: req.RemainingSongs}
		if err := h.Publisher.Publish(ctx, payload); err != nil {
			log.Error("failed to publish job", "error", err)
			if setErr := h.Jobs.SetStatus(ctx, jobID, domain.JobStatusPublishFailed); setErr != nil {
				log.Error("failed to mark job publish_failed", "error", setErr)
			}
		}
	}

	respondJSON(w, http.StatusOK, dto.ProcessResponse{
		ProcessedSong: first,
		JobID:         jobID,
	})
}

// Worker is the queue's delivery endpoint; the signature middleware has
// already vouched for the body.
func (h *Handler) Worker(w http.ResponseWriter, r *http.Request) {
	var req dto.WorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		respondError(w, http.StatusBadRequest, dto.ToResponse(errs))
		return
	}

	if err := h.Processor.ProcessJob(r.Context(), req.JobID, req.SongsToProcess); err != nil {
		h.Logger.WithJob(req.JobID).Error("job processing failed", "error", err)
		respondError(w, http.StatusInternalServerError, "job processing failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) jobExists(w http.ResponseWriter, r *http.Request, jobID string) bool {
	_, err := h.Jobs.GetStatus(r.Context(), jobID)
	if err == nil {
		return true
	}
	if errors.Is(err, jobstore.ErrJobNotFound) {
		respondError(w, http.StatusNotFound, "job not found")
	} else {
		respondError(w, http.StatusInternalServerError, "failed to look up job")
	}
	return false
}
