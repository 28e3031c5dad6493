package service

import (
	"context"
	"strconv"

	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/itchan-dev/feedback/shared/errors"
)

// RegisterView counts a view unless the caller already holds today's marker.
// The marker is advisory; the increment itself is atomic in the repository.
// Views do not clear the list cache, so listed counts lag by up to one TTL.
func (s *Feedback) RegisterView(ctx context.Context, id domain.ThreadId, markerPresent bool) (domain.ViewResult, error) {
	if id <= 0 {
		return domain.ViewResult{}, errors.NotFound("Thread")
	}

	var (
		views int64
		err   error
	)
	if markerPresent {
		views, err = s.repo.GetViewCount(ctx, id)
	} else {
		views, err = s.repo.IncrementViewCount(ctx, id)
	}
	if err != nil {
		return domain.ViewResult{}, storageError(err)
	}

	counted := !markerPresent
	threadViews.WithLabelValues(strconv.FormatBool(counted)).Inc()
	return domain.ViewResult{Counted: counted, Views: views}, nil
}
