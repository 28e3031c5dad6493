package threadview

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/itchan-dev/feedback/shared/api"
	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/itchan-dev/feedback/shared/errors"
	"github.com/itchan-dev/feedback/shared/viewmarker"
)

// Backend is the server side of the protocol. *apiclient.APIClient implements it.
type Backend interface {
	CreateReply(ctx context.Context, threadId domain.ThreadId, body domain.Body) (api.CreateReplyResponse, error)
	EditReply(ctx context.Context, id domain.ReplyId, body domain.Body) (api.EditReplyResponse, error)
	DeleteReply(ctx context.Context, id domain.ReplyId) error
	EditThread(ctx context.Context, id domain.ThreadId, req api.EditThreadRequest) (api.EditThreadResponse, error)
	DeleteThread(ctx context.Context, id domain.ThreadId, hard bool) error
	RegisterView(ctx context.Context, id domain.ThreadId) (domain.ViewResult, error)
}

// Notifier shows a single human-readable message to the user.
type Notifier interface {
	Notify(message string)
}

type Options struct {
	// RestoreDraft puts a failed reply back into an empty composer.
	RestoreDraft bool
	// Location defines the calendar day for view markers.
	Location *time.Location
	Now      func() time.Time
}

// View is one mounted thread page.
type View struct {
	mu      sync.Mutex
	state   State
	mounted bool

	me       domain.User
	backend  Backend
	notifier Notifier
	markers  MarkerStore
	ids      *TempIds
	opts     Options
}

func New(thread domain.Thread, me domain.User, backend Backend, notifier Notifier, markers MarkerStore, opts Options) *View {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	v := &View{
		me:       me,
		backend:  backend,
		notifier: notifier,
		markers:  markers,
		ids:      NewTempIds(),
		opts:     opts,
	}
	v.state = Reduce(State{}, Load{Thread: thread})
	return v
}

// State returns a snapshot. Slices and maps in it must not be modified.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) dispatch(a Action) State {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = Reduce(v.state, a)
	return v.state
}

func (v *View) fail(err error) error {
	v.notifier.Notify(errors.Message(err))
	return err
}

func (v *View) threadId() domain.ThreadId {
	return v.State().Thread.Id
}

func (v *View) Load(thread domain.Thread) {
	v.dispatch(Load{Thread: thread})
}

func (v *View) SetComposer(text string) {
	v.dispatch(SetComposer{Text: text})
}

// Submit sends the composer's text as a reply. The reply shows up at once
// under a temporary id and is either confirmed in place or rolled back.
func (v *View) Submit(ctx context.Context) error {
	v.mu.Lock()
	body := v.state.Composer
	threadId := v.state.Thread.Id
	v.mu.Unlock()
	if strings.TrimSpace(body) == "" {
		return nil
	}

	tempId := v.ids.Next()
	pending := domain.Reply{
		Id:        tempId,
		ThreadId:  threadId,
		Body:      body,
		Author:    v.me,
		CreatedAt: v.opts.Now(),
	}
	v.dispatch(AppendPending{Reply: pending})

	created, err := v.backend.CreateReply(ctx, threadId, body)
	if err != nil {
		v.dispatch(RollbackPending{TempId: tempId, RestoreDraft: v.opts.RestoreDraft})
		return v.fail(err)
	}

	// the server's copy of the body may differ after sanitizing
	confirmed := pending
	confirmed.Id = created.Id
	confirmed.Body = created.Body
	confirmed.CreatedAt = created.CreatedAt
	v.dispatch(ConfirmPending{TempId: tempId, Reply: confirmed})
	return nil
}

func (v *View) BeginEdit(id domain.ReplyId) {
	v.dispatch(StartReplyEdit{Id: id})
}

func (v *View) UpdateEdit(id domain.ReplyId, text string) {
	v.dispatch(UpdateReplyEdit{Id: id, Text: text})
}

func (v *View) CancelEdit(id domain.ReplyId) {
	v.dispatch(CancelReplyEdit{Id: id})
}

// CommitEdit saves the reply's edit buffer. The displayed body changes only
// after the server accepts it; on failure the buffer stays open.
func (v *View) CommitEdit(ctx context.Context, id domain.ReplyId) error {
	v.mu.Lock()
	body, editing := v.state.ReplyEdits[id]
	v.mu.Unlock()
	if !editing {
		return nil
	}

	edited, err := v.backend.EditReply(ctx, id, body)
	if err != nil {
		return v.fail(err)
	}
	v.dispatch(ReplaceBody{Id: id, Body: edited.Body, UpdatedAt: v.opts.Now()})
	return nil
}

func (v *View) BeginThreadEdit() {
	v.dispatch(StartThreadEdit{})
}

func (v *View) UpdateThreadEdit(draft ThreadDraft) {
	v.dispatch(UpdateThreadEdit{Draft: draft})
}

func (v *View) CancelThreadEdit() {
	v.dispatch(CancelThreadEdit{})
}

// CommitThreadEdit sends the fields that differ from the displayed thread.
func (v *View) CommitThreadEdit(ctx context.Context) error {
	s := v.State()
	if s.ThreadEdit == nil {
		return nil
	}
	draft := *s.ThreadEdit

	var req api.EditThreadRequest
	if draft.Title != s.Thread.Title {
		req.Title = &draft.Title
	}
	if draft.Body != s.Thread.Body {
		req.Body = &draft.Body
	}
	if draft.Category != s.Thread.Category {
		req.Category = &draft.Category
	}
	if req.Title == nil && req.Body == nil && req.Category == nil {
		v.dispatch(CancelThreadEdit{})
		return nil
	}

	edited, err := v.backend.EditThread(ctx, s.Thread.Id, req)
	if err != nil {
		return v.fail(err)
	}
	stored := ThreadDraft{Title: s.Thread.Title, Body: s.Thread.Body, Category: s.Thread.Category}
	if edited.Title != nil {
		stored.Title = *edited.Title
	}
	if edited.Body != nil {
		stored.Body = *edited.Body
	}
	if edited.Category != nil {
		stored.Category = *edited.Category
	}
	v.dispatch(EditThread{Draft: stored, UpdatedAt: v.opts.Now()})
	return nil
}

// DeleteReply removes the reply once the server confirms.
func (v *View) DeleteReply(ctx context.Context, id domain.ReplyId) error {
	if err := v.backend.DeleteReply(ctx, id); err != nil {
		return v.fail(err)
	}
	v.dispatch(RemoveReply{Id: id})
	return nil
}

func (v *View) DeleteThread(ctx context.Context, hard bool) error {
	if err := v.backend.DeleteThread(ctx, v.threadId(), hard); err != nil {
		return v.fail(err)
	}
	v.dispatch(MarkDeleted{})
	return nil
}

// Mount registers a view at most once per View and once per local day
// marker. Failures are returned but not shown; view counts are best-effort.
func (v *View) Mount(ctx context.Context) error {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return nil
	}
	v.mounted = true
	threadId := v.state.Thread.Id
	v.mu.Unlock()

	key := viewmarker.Key(threadId, v.opts.Now(), v.opts.Location)
	if v.markers.Has(key) {
		return nil
	}

	result, err := v.backend.RegisterView(ctx, threadId)
	if err != nil {
		return err
	}
	v.dispatch(SetViews{Views: result.Views})
	return v.markers.Set(key)
}
