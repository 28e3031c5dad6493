package threadview

import (
	"maps"
	"slices"
	"time"

	"github.com/itchan-dev/feedback/shared/domain"
)

// Action is a state transition. The set is closed.
type Action interface {
	apply(State) State
}

// Load replaces the thread with the server's copy. Replies still pending
// stay at the end so in-flight submissions are not lost.
type Load struct{ Thread domain.Thread }

// AppendPending adds an optimistic reply and clears the composer.
type AppendPending struct{ Reply domain.Reply }

// ConfirmPending swaps the temporary id for the stored reply in place.
type ConfirmPending struct {
	TempId domain.ReplyId
	Reply  domain.Reply
}

// RollbackPending removes a failed optimistic reply. With RestoreDraft the
// body goes back into the composer, but only if the user hasn't typed since.
type RollbackPending struct {
	TempId       domain.ReplyId
	RestoreDraft bool
}

type SetComposer struct{ Text string }

type StartReplyEdit struct{ Id domain.ReplyId }

type UpdateReplyEdit struct {
	Id   domain.ReplyId
	Text string
}

type CancelReplyEdit struct{ Id domain.ReplyId }

// ReplaceBody applies a confirmed reply edit and closes its buffer.
type ReplaceBody struct {
	Id        domain.ReplyId
	Body      domain.Body
	UpdatedAt time.Time
}

// RemoveReply drops a reply whose deletion was confirmed.
type RemoveReply struct{ Id domain.ReplyId }

type StartThreadEdit struct{}

type UpdateThreadEdit struct{ Draft ThreadDraft }

type CancelThreadEdit struct{}

// EditThread applies a confirmed thread edit and closes the buffer.
type EditThread struct {
	Draft     ThreadDraft
	UpdatedAt time.Time
}

type SetViews struct{ Views int64 }

// MarkDeleted records that the thread's deletion was confirmed.
type MarkDeleted struct{}

func Reduce(s State, a Action) State {
	return a.apply(s)
}

func withReplies(s State, replies []domain.Reply) State {
	s.Thread.Replies = replies
	confirmed := 0
	for _, r := range replies {
		if !IsPending(r) {
			confirmed++
		}
	}
	s.Thread.ReplyCount = confirmed
	return s
}

func (a Load) apply(s State) State {
	replies := slices.Clone(a.Thread.Replies)
	for _, r := range s.Thread.Replies {
		if IsPending(r) {
			replies = append(replies, r)
		}
	}
	s.Thread = a.Thread
	return withReplies(s, replies)
}

func (a AppendPending) apply(s State) State {
	s = withReplies(s, append(slices.Clone(s.Thread.Replies), a.Reply))
	s.Composer = ""
	return s
}

func (a ConfirmPending) apply(s State) State {
	i := s.replyIndex(a.TempId)
	if i < 0 {
		return s
	}
	replies := slices.Clone(s.Thread.Replies)
	if s.replyIndex(a.Reply.Id) >= 0 {
		// already delivered by a reload
		return withReplies(s, slices.Delete(replies, i, i+1))
	}
	replies[i] = a.Reply
	return withReplies(s, replies)
}

func (a RollbackPending) apply(s State) State {
	i := s.replyIndex(a.TempId)
	if i < 0 {
		return s
	}
	body := s.Thread.Replies[i].Body
	s = withReplies(s, slices.Delete(slices.Clone(s.Thread.Replies), i, i+1))
	if a.RestoreDraft && s.Composer == "" {
		s.Composer = body
	}
	return s
}

func (a SetComposer) apply(s State) State {
	s.Composer = a.Text
	return s
}

func (a StartReplyEdit) apply(s State) State {
	r, ok := s.Reply(a.Id)
	if !ok || IsPending(r) {
		return s
	}
	s.ReplyEdits = maps.Clone(s.ReplyEdits)
	if s.ReplyEdits == nil {
		s.ReplyEdits = make(map[domain.ReplyId]string)
	}
	s.ReplyEdits[a.Id] = r.Body
	return s
}

func (a UpdateReplyEdit) apply(s State) State {
	if _, ok := s.ReplyEdits[a.Id]; !ok {
		return s
	}
	s.ReplyEdits = maps.Clone(s.ReplyEdits)
	s.ReplyEdits[a.Id] = a.Text
	return s
}

func (a CancelReplyEdit) apply(s State) State {
	if _, ok := s.ReplyEdits[a.Id]; !ok {
		return s
	}
	s.ReplyEdits = maps.Clone(s.ReplyEdits)
	delete(s.ReplyEdits, a.Id)
	return s
}

func (a ReplaceBody) apply(s State) State {
	s = CancelReplyEdit{Id: a.Id}.apply(s)
	i := s.replyIndex(a.Id)
	if i < 0 {
		return s
	}
	replies := slices.Clone(s.Thread.Replies)
	updatedAt := a.UpdatedAt
	replies[i].Body = a.Body
	replies[i].UpdatedAt = &updatedAt
	return withReplies(s, replies)
}

func (a RemoveReply) apply(s State) State {
	s = CancelReplyEdit{Id: a.Id}.apply(s)
	i := s.replyIndex(a.Id)
	if i < 0 {
		return s
	}
	return withReplies(s, slices.Delete(slices.Clone(s.Thread.Replies), i, i+1))
}

func (StartThreadEdit) apply(s State) State {
	s.ThreadEdit = &ThreadDraft{Title: s.Thread.Title, Body: s.Thread.Body, Category: s.Thread.Category}
	return s
}

func (a UpdateThreadEdit) apply(s State) State {
	if s.ThreadEdit == nil {
		return s
	}
	draft := a.Draft
	s.ThreadEdit = &draft
	return s
}

func (CancelThreadEdit) apply(s State) State {
	s.ThreadEdit = nil
	return s
}

func (a EditThread) apply(s State) State {
	updatedAt := a.UpdatedAt
	s.Thread.Title = a.Draft.Title
	s.Thread.Body = a.Draft.Body
	s.Thread.Category = a.Draft.Category
	s.Thread.UpdatedAt = &updatedAt
	s.ThreadEdit = nil
	return s
}

func (a SetViews) apply(s State) State {
	s.Thread.ViewsCount = a.Views
	return s
}

func (MarkDeleted) apply(s State) State {
	s.Deleted = true
	s.Thread.IsActive = false
	s.ThreadEdit = nil
	s.ReplyEdits = nil
	return s
}
