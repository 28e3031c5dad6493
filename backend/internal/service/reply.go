package service

import (
	"context"

	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/itchan-dev/feedback/shared/errors"
)

func (s *Feedback) CreateReply(ctx context.Context, threadId domain.ThreadId, body domain.Body) (domain.Reply, error) {
	user, err := s.caller(ctx)
	if err != nil {
		return domain.Reply{}, err
	}

	body = s.validator.Sanitize(body)
	if err := s.validator.ThreadId(threadId); err != nil {
		return domain.Reply{}, err
	}
	if err := s.validator.Body(body); err != nil {
		return domain.Reply{}, err
	}

	reply, err := s.repo.CreateReply(ctx, domain.ReplyCreationData{
		ThreadId: threadId,
		Body:     body,
		Author:   *user,
	})
	if err != nil {
		return domain.Reply{}, storageError(err)
	}

	s.log.Info("reply created", "reply_id", reply.Id, "thread_id", threadId, "user_id", user.Id)
	s.invalidate(ctx, threadId)
	return reply, nil
}

// EditReply returns the reply's id, thread and stored body. Author and
// timestamps are left empty.
func (s *Feedback) EditReply(ctx context.Context, id domain.ReplyId, body domain.Body) (domain.Reply, error) {
	user, err := s.caller(ctx)
	if err != nil {
		return domain.Reply{}, err
	}

	body = s.validator.Sanitize(body)
	if err := s.validator.Body(body); err != nil {
		return domain.Reply{}, err
	}
	if id <= 0 {
		return domain.Reply{}, errors.NotFound("Reply")
	}

	threadId, err := s.repo.UpdateReplyByAuthor(ctx, id, user.Id, body)
	if err != nil {
		return domain.Reply{}, storageError(err)
	}

	s.log.Info("reply edited", "reply_id", id, "thread_id", threadId, "user_id", user.Id)
	s.invalidate(ctx, threadId)
	return domain.Reply{Id: id, ThreadId: threadId, Body: body}, nil
}

func (s *Feedback) DeleteReply(ctx context.Context, id domain.ReplyId) error {
	user, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if id <= 0 {
		return errors.NotFound("Reply")
	}

	threadId, err := s.repo.DeleteReplyByAuthor(ctx, id, user.Id)
	if err != nil {
		return storageError(err)
	}

	s.log.Info("reply deleted", "reply_id", id, "thread_id", threadId, "user_id", user.Id)
	s.invalidate(ctx, threadId)
	return nil
}
