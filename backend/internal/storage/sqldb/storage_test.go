package sqldb

import (
	"context"
	"sync"
	"testing"

	"github.com/itchan-dev/feedback/shared/domain"
	internal_errors "github.com/itchan-dev/feedback/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.User{Id: "u-alice", Name: "Alice", Image: "https://img/alice.png"}
	bob   = domain.User{Id: "u-bob", Name: "Bob"}
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Cleanup() })
	return storage
}

func createThread(t *testing.T, s *Storage, title string, author domain.User) domain.ThreadId {
	t.Helper()
	id, err := s.CreateThread(context.Background(), domain.ThreadCreationData{
		Title:  title,
		Body:   "body of " + title,
		Author: author,
	})
	require.NoError(t, err)
	return id
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestCreateAndFindThread(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	id, err := s.CreateThread(ctx, domain.ThreadCreationData{
		Title:    "Dark mode",
		Body:     "Please add it",
		Category: domain.CategoryFeatures,
		Author:   alice,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	thread, err := s.FindThreadById(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, thread)
	assert.Equal(t, "Dark mode", thread.Title)
	assert.Equal(t, "Please add it", thread.Body)
	assert.Equal(t, domain.CategoryFeatures, thread.Category)
	assert.Equal(t, alice, thread.Author)
	assert.True(t, thread.IsActive)
	assert.Zero(t, thread.ViewsCount)
	assert.Nil(t, thread.UpdatedAt)
	assert.Equal(t, thread.CreatedAt, thread.LastActivityAt)
	assert.Empty(t, thread.Replies)
}

func TestCreateThread_DefaultCategory(t *testing.T) {
	s := newTestStorage(t)
	id := createThread(t, s, "No category", alice)

	thread, err := s.FindThreadById(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryGeneral, thread.Category)
}

func TestFindThreadById_Missing(t *testing.T) {
	s := newTestStorage(t)
	thread, err := s.FindThreadById(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, thread)
}

func TestListActiveThreads(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first := createThread(t, s, "First", alice)
	second := createThread(t, s, "Second", bob)
	hidden := createThread(t, s, "Hidden", alice)
	require.NoError(t, s.SoftDeleteThreadByAuthor(ctx, hidden, alice.Id))

	for i := 0; i < 2; i++ {
		_, err := s.CreateReply(ctx, domain.ReplyCreationData{ThreadId: first, Body: "reply", Author: bob})
		require.NoError(t, err)
	}

	threads, err := s.ListActiveThreads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	// newest first
	assert.Equal(t, second, threads[0].Id)
	assert.Equal(t, "Bob", threads[0].Author.Name)
	assert.Equal(t, 0, threads[0].ReplyCount)
	assert.Equal(t, first, threads[1].Id)
	assert.Equal(t, 2, threads[1].ReplyCount)
}

func TestListActiveThreads_Empty(t *testing.T) {
	s := newTestStorage(t)
	threads, err := s.ListActiveThreads(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)
}

func TestUpdateThreadByAuthor(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	id := createThread(t, s, "Original", alice)

	title := "Edited"
	category := domain.CategoryBugs
	require.NoError(t, s.UpdateThreadByAuthor(ctx, id, alice.Id, domain.ThreadPatch{Title: &title, Category: &category}))

	thread, err := s.FindThreadById(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Edited", thread.Title)
	assert.Equal(t, "body of Original", thread.Body)
	assert.Equal(t, domain.CategoryBugs, thread.Category)
	assert.NotNil(t, thread.UpdatedAt)

	t.Run("other author is not found", func(t *testing.T) {
		err := s.UpdateThreadByAuthor(ctx, id, bob.Id, domain.ThreadPatch{Title: &title})
		assert.True(t, internal_errors.IsNotFound(err))
		assert.Equal(t, "Thread not found", err.Error())
	})

	t.Run("soft-deleted thread is not found", func(t *testing.T) {
		require.NoError(t, s.SoftDeleteThreadByAuthor(ctx, id, alice.Id))
		err := s.UpdateThreadByAuthor(ctx, id, alice.Id, domain.ThreadPatch{Title: &title})
		assert.True(t, internal_errors.IsNotFound(err))
	})
}

func TestSoftDeleteThreadByAuthor(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	id := createThread(t, s, "Soft", alice)

	err := s.SoftDeleteThreadByAuthor(ctx, id, bob.Id)
	assert.True(t, internal_errors.IsNotFound(err))

	require.NoError(t, s.SoftDeleteThreadByAuthor(ctx, id, alice.Id))

	thread, err := s.FindThreadById(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, thread)

	// row is retained
	var active bool
	require.NoError(t, s.db.GetContext(ctx, &active, s.db.Rebind("SELECT is_active FROM threads WHERE id = ?"), id))
	assert.False(t, active)

	err = s.SoftDeleteThreadByAuthor(ctx, id, alice.Id)
	assert.True(t, internal_errors.IsNotFound(err), "deleting twice reports not found")
}

func TestHardDeleteThreadByAuthor(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	id := createThread(t, s, "Hard", alice)
	_, err := s.CreateReply(ctx, domain.ReplyCreationData{ThreadId: id, Body: "r1", Author: bob})
	require.NoError(t, err)

	t.Run("other author leaves everything in place", func(t *testing.T) {
		err := s.HardDeleteThreadByAuthor(ctx, id, bob.Id)
		assert.True(t, internal_errors.IsNotFound(err))

		thread, err := s.FindThreadById(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, thread)
		assert.Len(t, thread.Replies, 1)
	})

	require.NoError(t, s.HardDeleteThreadByAuthor(ctx, id, alice.Id))

	var threads, replies int
	require.NoError(t, s.db.GetContext(ctx, &threads, "SELECT COUNT(*) FROM threads"))
	require.NoError(t, s.db.GetContext(ctx, &replies, "SELECT COUNT(*) FROM replies"))
	assert.Zero(t, threads)
	assert.Zero(t, replies)
}

func TestCreateReply(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	id := createThread(t, s, "Replies", alice)

	before, err := s.FindThreadById(ctx, id)
	require.NoError(t, err)

	first, err := s.CreateReply(ctx, domain.ReplyCreationData{ThreadId: id, Body: "first", Author: bob})
	require.NoError(t, err)
	second, err := s.CreateReply(ctx, domain.ReplyCreationData{ThreadId: id, Body: "second", Author: alice})
	require.NoError(t, err)
	assert.Greater(t, second.Id, first.Id)
	assert.Equal(t, bob, first.Author)

	thread, err := s.FindThreadById(ctx, id)
	require.NoError(t, err)
	require.Len(t, thread.Replies, 2)
	assert.Equal(t, 2, thread.ReplyCount)
	assert.Equal(t, first.Id, thread.Replies[0].Id)
	assert.Equal(t, "Bob", thread.Replies[0].Author.Name)
	assert.Equal(t, first.CreatedAt, thread.Replies[0].CreatedAt)
	assert.Equal(t, second.Id, thread.Replies[1].Id)
	assert.False(t, thread.LastActivityAt.Before(before.LastActivityAt))
	assert.Equal(t, second.CreatedAt, thread.LastActivityAt)
}

func TestCreateReply_InactiveOrMissingThread(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	id := createThread(t, s, "Gone", alice)
	require.NoError(t, s.SoftDeleteThreadByAuthor(ctx, id, alice.Id))

	for _, threadId := range []domain.ThreadId{id, 999} {
		_, err := s.CreateReply(ctx, domain.ReplyCreationData{ThreadId: threadId, Body: "late", Author: bob})
		assert.True(t, internal_errors.IsNotFound(err))
		assert.Equal(t, "Thread not found", err.Error())
	}

	var replies int
	require.NoError(t, s.db.GetContext(ctx, &replies, "SELECT COUNT(*) FROM replies"))
	assert.Zero(t, replies)
}

func TestUpdateReplyByAuthor(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	threadId := createThread(t, s, "Edit replies", alice)
	reply, err := s.CreateReply(ctx, domain.ReplyCreationData{ThreadId: threadId, Body: "tyop", Author: bob})
	require.NoError(t, err)

	_, err = s.UpdateReplyByAuthor(ctx, reply.Id, alice.Id, "hijack")
	assert.True(t, internal_errors.IsNotFound(err))
	assert.Equal(t, "Reply not found", err.Error())

	got, err := s.UpdateReplyByAuthor(ctx, reply.Id, bob.Id, "typo")
	require.NoError(t, err)
	assert.Equal(t, threadId, got)

	thread, err := s.FindThreadById(ctx, threadId)
	require.NoError(t, err)
	assert.Equal(t, "typo", thread.Replies[0].Body)
	assert.NotNil(t, thread.Replies[0].UpdatedAt)
}

func TestDeleteReplyByAuthor(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	threadId := createThread(t, s, "Delete replies", alice)
	reply, err := s.CreateReply(ctx, domain.ReplyCreationData{ThreadId: threadId, Body: "bye", Author: bob})
	require.NoError(t, err)

	_, err = s.DeleteReplyByAuthor(ctx, reply.Id, alice.Id)
	assert.True(t, internal_errors.IsNotFound(err))

	got, err := s.DeleteReplyByAuthor(ctx, reply.Id, bob.Id)
	require.NoError(t, err)
	assert.Equal(t, threadId, got)

	_, err = s.DeleteReplyByAuthor(ctx, reply.Id, bob.Id)
	assert.True(t, internal_errors.IsNotFound(err))

	thread, err := s.FindThreadById(ctx, threadId)
	require.NoError(t, err)
	assert.Empty(t, thread.Replies)
}

func TestViewCount(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	id := createThread(t, s, "Views", alice)

	views, err := s.IncrementViewCount(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, views)

	views, err = s.GetViewCount(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, views)

	_, err = s.IncrementViewCount(ctx, 999)
	assert.True(t, internal_errors.IsNotFound(err))
	_, err = s.GetViewCount(ctx, 999)
	assert.True(t, internal_errors.IsNotFound(err))

	require.NoError(t, s.SoftDeleteThreadByAuthor(ctx, id, alice.Id))
	_, err = s.IncrementViewCount(ctx, id)
	assert.True(t, internal_errors.IsNotFound(err))
}

func TestIncrementViewCount_Concurrent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	id := createThread(t, s, "Busy", alice)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.IncrementViewCount(ctx, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	views, err := s.GetViewCount(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, n, views)
}

func TestUpsertUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	id := createThread(t, s, "Rename", alice)

	require.NoError(t, s.UpsertUser(ctx, domain.User{Id: alice.Id, Name: "Alice B."}))

	thread, err := s.FindThreadById(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", thread.Author.Name)
	assert.Empty(t, thread.Author.Image)
}
