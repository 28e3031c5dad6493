package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/feedback/backend/internal/service"
	"github.com/itchan-dev/feedback/shared/errors"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	feedback      service.FeedbackService
	health        HealthChecker
	viewLocation  *time.Location
	secureCookies bool
	now           func() time.Time
}

func New(feedback service.FeedbackService, health HealthChecker, viewLocation *time.Location, secureCookies bool) *Handler {
	return &Handler{
		feedback:      feedback,
		health:        health,
		viewLocation:  viewLocation,
		secureCookies: secureCookies,
		now:           time.Now,
	}
}

// idParam parses a numeric chi URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Validation("invalid %s id: must be an integer", name)
	}
	return id, nil
}

func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
}
