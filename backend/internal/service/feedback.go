package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/itchan-dev/feedback/backend/internal/revalidate"
	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/itchan-dev/feedback/shared/errors"
	"github.com/itchan-dev/feedback/shared/logger"
	"golang.org/x/sync/singleflight"
)

type FeedbackService interface {
	GetAllThreads(ctx context.Context) ([]domain.ThreadListItem, error)
	GetThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	CreateThread(ctx context.Context, input CreateThreadInput) (domain.ThreadId, error)
	EditThread(ctx context.Context, id domain.ThreadId, input EditThreadInput) (domain.ThreadPatch, error)
	DeleteThread(ctx context.Context, id domain.ThreadId, hard bool) error
	CreateReply(ctx context.Context, threadId domain.ThreadId, body domain.Body) (domain.Reply, error)
	EditReply(ctx context.Context, id domain.ReplyId, body domain.Body) (domain.Reply, error)
	DeleteReply(ctx context.Context, id domain.ReplyId) error
	RegisterView(ctx context.Context, id domain.ThreadId, markerPresent bool) (domain.ViewResult, error)
}

type Repository interface {
	ListActiveThreads(ctx context.Context) ([]domain.ThreadListItem, error)
	FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error)
	UpdateThreadByAuthor(ctx context.Context, id domain.ThreadId, authorId domain.UserId, patch domain.ThreadPatch) error
	SoftDeleteThreadByAuthor(ctx context.Context, id domain.ThreadId, authorId domain.UserId) error
	HardDeleteThreadByAuthor(ctx context.Context, id domain.ThreadId, authorId domain.UserId) error
	CreateReply(ctx context.Context, data domain.ReplyCreationData) (domain.Reply, error)
	UpdateReplyByAuthor(ctx context.Context, id domain.ReplyId, authorId domain.UserId, body domain.Body) (domain.ThreadId, error)
	DeleteReplyByAuthor(ctx context.Context, id domain.ReplyId, authorId domain.UserId) (domain.ThreadId, error)
	IncrementViewCount(ctx context.Context, id domain.ThreadId) (int64, error)
	GetViewCount(ctx context.Context, id domain.ThreadId) (int64, error)
}

type ThreadCache interface {
	Get() ([]domain.ThreadListItem, time.Time, bool)
	Generation() uint64
	SetIfGeneration(gen uint64, threads []domain.ThreadListItem) bool
	Clear()
	IsStale(ttl time.Duration) bool
}

// IdentityResolver returns the signed-in caller, or nil.
type IdentityResolver interface {
	Caller(ctx context.Context) *domain.User
}

type Validator interface {
	Sanitize(s string) string
	Title(title domain.ThreadTitle) error
	Body(body domain.Body) error
	Category(category domain.Category) error
	ThreadId(id domain.ThreadId) error
}

type Feedback struct {
	repo        Repository
	cache       ThreadCache
	revalidator revalidate.Revalidator
	identity    IdentityResolver
	validator   Validator
	cacheTTL    time.Duration
	group       singleflight.Group
	log         *slog.Logger
}

func NewFeedback(repo Repository, cache ThreadCache, revalidator revalidate.Revalidator, identity IdentityResolver, validator Validator, cacheTTL time.Duration) *Feedback {
	return &Feedback{
		repo:        repo,
		cache:       cache,
		revalidator: revalidator,
		identity:    identity,
		validator:   validator,
		cacheTTL:    cacheTTL,
		log:         logger.Component("feedback"),
	}
}

// caller fails closed: mutations without a signed-in user are rejected
// before any input is looked at.
func (s *Feedback) caller(ctx context.Context) (*domain.User, error) {
	user := s.identity.Caller(ctx)
	if user == nil || user.Id == "" {
		return nil, errors.ErrAuthenticationRequired
	}
	return user, nil
}

// invalidate runs after a successful commit. The cache is always cleared;
// revalidation failures are only logged because the write already happened.
func (s *Feedback) invalidate(ctx context.Context, threadId domain.ThreadId) {
	s.cache.Clear()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := s.revalidator.RevalidateTag(ctx, revalidate.ThreadsTag); err != nil {
		s.log.Error("failed to revalidate tag", "tag", revalidate.ThreadsTag, "error", err)
	}
	for _, path := range []string{revalidate.FeedbackPath, revalidate.ThreadPath(threadId)} {
		if err := s.revalidator.RevalidatePath(ctx, path); err != nil {
			s.log.Error("failed to revalidate path", "path", path, "error", err)
		}
	}
}

// storageError keeps not-found and other classified errors as they are and
// hides everything else behind a generic persistence failure.
func storageError(err error) error {
	if errors.HasStatus(err) {
		return err
	}
	return errors.Persistence(err)
}
