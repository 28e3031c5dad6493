package service

import (
	"context"
	"strconv"

	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/itchan-dev/feedback/shared/errors"
)

type CreateThreadInput struct {
	Title    string
	Body     string
	Category *domain.Category
}

type EditThreadInput struct {
	Title    *string
	Body     *string
	Category *domain.Category
}

const listKey = "threads"

// GetAllThreads serves the list from cache while fresh. Concurrent misses
// share one repository fetch. The returned slice is shared; do not modify it.
func (s *Feedback) GetAllThreads(ctx context.Context) ([]domain.ThreadListItem, error) {
	if !s.cache.IsStale(s.cacheTTL) {
		if threads, _, ok := s.cache.Get(); ok {
			threadCacheRequests.WithLabelValues("hit").Inc()
			return threads, nil
		}
	}
	threadCacheRequests.WithLabelValues("miss").Inc()

	// keyed by generation so a read issued after a mutation never joins a
	// fetch that started before it
	gen := s.cache.Generation()
	v, err, _ := s.group.Do(listKey+":"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		threads, err := s.repo.ListActiveThreads(ctx)
		if err != nil {
			return nil, err
		}
		// a mutation during the fetch wins; the next read refetches
		s.cache.SetIfGeneration(gen, threads)
		return threads, nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	return v.([]domain.ThreadListItem), nil
}

func (s *Feedback) GetThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	if id <= 0 {
		return nil, errors.NotFound("Thread")
	}
	thread, err := s.repo.FindThreadById(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if thread == nil {
		return nil, errors.NotFound("Thread")
	}
	return thread, nil
}

func (s *Feedback) CreateThread(ctx context.Context, input CreateThreadInput) (domain.ThreadId, error) {
	user, err := s.caller(ctx)
	if err != nil {
		return 0, err
	}

	title := s.validator.Sanitize(input.Title)
	body := s.validator.Sanitize(input.Body)
	category := domain.DefaultCategory
	if input.Category != nil {
		category = *input.Category
	}

	if err := s.validator.Title(title); err != nil {
		return 0, err
	}
	if err := s.validator.Body(body); err != nil {
		return 0, err
	}
	if err := s.validator.Category(category); err != nil {
		return 0, err
	}

	id, err := s.repo.CreateThread(ctx, domain.ThreadCreationData{
		Title:    title,
		Body:     body,
		Category: category,
		Author:   *user,
	})
	if err != nil {
		return 0, storageError(err)
	}

	s.log.Info("thread created", "thread_id", id, "user_id", user.Id)
	s.invalidate(ctx, id)
	return id, nil
}

// EditThread returns the applied patch, holding the stored (sanitized) values.
func (s *Feedback) EditThread(ctx context.Context, id domain.ThreadId, input EditThreadInput) (domain.ThreadPatch, error) {
	user, err := s.caller(ctx)
	if err != nil {
		return domain.ThreadPatch{}, err
	}

	if input.Title == nil && input.Body == nil && input.Category == nil {
		return domain.ThreadPatch{}, errors.Validation("Nothing to update")
	}
	var patch domain.ThreadPatch
	if input.Title != nil {
		title := s.validator.Sanitize(*input.Title)
		if err := s.validator.Title(title); err != nil {
			return domain.ThreadPatch{}, err
		}
		patch.Title = &title
	}
	if input.Body != nil {
		body := s.validator.Sanitize(*input.Body)
		if err := s.validator.Body(body); err != nil {
			return domain.ThreadPatch{}, err
		}
		patch.Body = &body
	}
	if input.Category != nil {
		if err := s.validator.Category(*input.Category); err != nil {
			return domain.ThreadPatch{}, err
		}
		patch.Category = input.Category
	}

	if id <= 0 {
		return domain.ThreadPatch{}, errors.NotFound("Thread")
	}
	if err := s.repo.UpdateThreadByAuthor(ctx, id, user.Id, patch); err != nil {
		return domain.ThreadPatch{}, storageError(err)
	}

	s.log.Info("thread edited", "thread_id", id, "user_id", user.Id)
	s.invalidate(ctx, id)
	return patch, nil
}

func (s *Feedback) DeleteThread(ctx context.Context, id domain.ThreadId, hard bool) error {
	user, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if id <= 0 {
		return errors.NotFound("Thread")
	}

	if hard {
		err = s.repo.HardDeleteThreadByAuthor(ctx, id, user.Id)
	} else {
		err = s.repo.SoftDeleteThreadByAuthor(ctx, id, user.Id)
	}
	if err != nil {
		return storageError(err)
	}

	s.log.Info("thread deleted", "thread_id", id, "user_id", user.Id, "hard", hard)
	s.invalidate(ctx, id)
	return nil
}
