package service

import (
	"context"
	"testing"
	"time"

	"github.com/itchan-dev/feedback/backend/internal/cache"
	"github.com/itchan-dev/feedback/backend/internal/revalidate"
	"github.com/itchan-dev/feedback/backend/internal/storage/sqldb"
	"github.com/itchan-dev/feedback/backend/internal/utils"
	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/itchan-dev/feedback/shared/errors"
	"github.com/itchan-dev/feedback/shared/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end scenarios against an in-memory database. The caller is taken
// from the context, the same way the HTTP layer provides it.

func newSqliteService(t *testing.T) *Feedback {
	t.Helper()
	storage, err := sqldb.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Cleanup() })

	// zero TTL: only invalidation can refresh the list
	return NewFeedback(storage, cache.NewThreadList(), revalidate.NewLog(), middleware.ContextCaller{}, utils.NewValidator(), 0)
}

func as(user domain.User) context.Context {
	return middleware.WithUser(context.Background(), &user)
}

func TestScenario_CreateAndRead(t *testing.T) {
	s := newSqliteService(t)
	alice := as(domain.User{Id: "alice", Name: "Alice"})

	id, err := s.CreateThread(alice, CreateThreadInput{
		Title:    "Add dark mode",
		Body:     "Please add a toggle",
		Category: category(domain.CategoryFeatures),
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	thread, err := s.GetThreadById(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Add dark mode", thread.Title)
	assert.Equal(t, "Please add a toggle", thread.Body)
	assert.Equal(t, domain.CategoryFeatures, thread.Category)
	assert.Zero(t, thread.ViewsCount)
	assert.Empty(t, thread.Replies)
}

func TestScenario_ReplyByAnotherAuthor(t *testing.T) {
	s := newSqliteService(t)
	alice := as(domain.User{Id: "alice", Name: "Alice"})
	bob := as(domain.User{Id: "bob", Name: "Bob"})

	id, err := s.CreateThread(alice, CreateThreadInput{Title: "Bug in login", Body: "It loops"})
	require.NoError(t, err)

	reply, err := s.CreateReply(bob, id, "+1")
	require.NoError(t, err)

	thread, err := s.GetThreadById(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, thread.ReplyCount)
	assert.Equal(t, "Bob", thread.Replies[0].Author.Name)

	// the thread's author cannot touch someone else's reply
	_, err = s.EditReply(alice, reply.Id, "edited by alice")
	assert.True(t, errors.IsNotFound(err))
	err = s.DeleteReply(alice, reply.Id)
	assert.True(t, errors.IsNotFound(err))

	_, err = s.EditReply(bob, reply.Id, "+1 from me")
	require.NoError(t, err)
}

func TestScenario_ListReflectsMutationsWithinTTL(t *testing.T) {
	s := newSqliteService(t)
	alice := as(domain.User{Id: "alice", Name: "Alice"})
	ctx := context.Background()

	threads, err := s.GetAllThreads(ctx)
	require.NoError(t, err)
	assert.Empty(t, threads)

	id, err := s.CreateThread(alice, CreateThreadInput{Title: "First", Body: "b"})
	require.NoError(t, err)

	threads, err = s.GetAllThreads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, id, threads[0].Id)
	assert.Equal(t, 0, threads[0].ReplyCount)

	_, err = s.CreateReply(alice, id, "self reply")
	require.NoError(t, err)
	threads, err = s.GetAllThreads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, threads[0].ReplyCount)

	_, err = s.EditThread(alice, id, EditThreadInput{Title: str("First, edited")})
	require.NoError(t, err)
	threads, err = s.GetAllThreads(ctx)
	require.NoError(t, err)
	assert.Equal(t, "First, edited", threads[0].Title)

	require.NoError(t, s.DeleteThread(alice, id, false))
	threads, err = s.GetAllThreads(ctx)
	require.NoError(t, err)
	assert.Empty(t, threads)

	_, err = s.GetThreadById(ctx, id)
	assert.True(t, errors.IsNotFound(err))
}

func TestScenario_ViewsOncePerMarker(t *testing.T) {
	s := newSqliteService(t)
	alice := as(domain.User{Id: "alice", Name: "Alice"})
	ctx := context.Background()

	id, err := s.CreateThread(alice, CreateThreadInput{Title: "Popular", Body: "b"})
	require.NoError(t, err)

	first, err := s.RegisterView(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ViewResult{Counted: true, Views: 1}, first)

	repeat, err := s.RegisterView(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ViewResult{Counted: false, Views: 1}, repeat)

	// another client without a marker
	other, err := s.RegisterView(ctx, id, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, other.Views)

	require.NoError(t, s.DeleteThread(alice, id, true))
	_, err = s.RegisterView(ctx, id, false)
	assert.True(t, errors.IsNotFound(err))
}

func TestScenario_EditTimestamps(t *testing.T) {
	s := newSqliteService(t)
	alice := as(domain.User{Id: "alice", Name: "Alice"})

	id, err := s.CreateThread(alice, CreateThreadInput{Title: "Timestamps", Body: "b"})
	require.NoError(t, err)
	before, err := s.GetThreadById(context.Background(), id)
	require.NoError(t, err)
	require.Nil(t, before.UpdatedAt)

	time.Sleep(time.Millisecond)
	_, err = s.EditThread(alice, id, EditThreadInput{Category: category(domain.CategoryFeedback)})
	require.NoError(t, err)

	after, err := s.GetThreadById(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, after.UpdatedAt)
	assert.True(t, after.UpdatedAt.After(after.CreatedAt))
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, domain.CategoryFeedback, after.Category)
}
