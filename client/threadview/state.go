// Package threadview keeps the client-side state of one open thread and
// reconciles optimistic changes with the server's answers.
//
// All state changes go through Reduce, which is pure. View drives Reduce
// from user intents and backend results.
package threadview

import (
	"github.com/itchan-dev/feedback/shared/domain"
)

// ThreadDraft is the edit buffer for the thread itself.
type ThreadDraft struct {
	Title    string
	Body     string
	Category domain.Category
}

type State struct {
	Thread   domain.Thread
	Composer string
	Deleted  bool

	// Edit buffers, separate from the displayed values. A reply is being
	// edited while it has an entry here.
	ReplyEdits map[domain.ReplyId]string
	ThreadEdit *ThreadDraft
}

// IsPending reports whether r is an optimistic entry not yet confirmed.
func IsPending(r domain.Reply) bool {
	return r.Id < 0
}

func (s State) replyIndex(id domain.ReplyId) int {
	for i, r := range s.Thread.Replies {
		if r.Id == id {
			return i
		}
	}
	return -1
}

// Reply returns the displayed reply with id.
func (s State) Reply(id domain.ReplyId) (domain.Reply, bool) {
	if i := s.replyIndex(id); i >= 0 {
		return s.Thread.Replies[i], true
	}
	return domain.Reply{}, false
}

// PendingCount is the number of replies awaiting confirmation.
func (s State) PendingCount() int {
	n := 0
	for _, r := range s.Thread.Replies {
		if IsPending(r) {
			n++
		}
	}
	return n
}
