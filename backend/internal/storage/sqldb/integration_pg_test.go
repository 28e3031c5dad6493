//go:build integration

package sqldb

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/itchan-dev/feedback/shared/config"
	"github.com/itchan-dev/feedback/shared/domain"
	internal_errors "github.com/itchan-dev/feedback/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newPgStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	dbName, dbUser, dbPassword := "feedback", "user", "password"
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			// the server restarts once after init
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	mapped, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	port, err := strconv.Atoi(mapped.Port())
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	pg := config.Pg{Host: host, Port: port, User: dbUser, Password: dbPassword, Dbname: dbName}
	storage, err := New(ctx, "postgres", pg.ConnString())
	require.NoError(t, err, "failed to connect to postgres container")
	t.Cleanup(func() { storage.Cleanup() })
	return storage
}

func TestPostgresRepository(t *testing.T) {
	s := newPgStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx), "schema must be re-runnable")

	category := domain.CategoryFeedback
	id, err := s.CreateThread(ctx, domain.ThreadCreationData{Title: "On pg", Body: "body", Category: category, Author: alice})
	require.NoError(t, err)

	reply, err := s.CreateReply(ctx, domain.ReplyCreationData{ThreadId: id, Body: "hello", Author: bob})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		thread, err := s.FindThreadById(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, thread)
		assert.Equal(t, category, thread.Category)
		assert.Equal(t, alice, thread.Author)
		require.Len(t, thread.Replies, 1)
		assert.Equal(t, reply.Id, thread.Replies[0].Id)
		assert.Equal(t, reply.CreatedAt, thread.Replies[0].CreatedAt)

		list, err := s.ListActiveThreads(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 1, list[0].ReplyCount)
	})

	t.Run("concurrent views are not lost", func(t *testing.T) {
		const n = 50
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
	})

	t.Run("author scoping", func(t *testing.T) {
		_, err := s.DeleteReplyByAuthor(ctx, reply.Id, alice.Id)
		assert.True(t, internal_errors.IsNotFound(err))

		err = s.HardDeleteThreadByAuthor(ctx, id, bob.Id)
		assert.True(t, internal_errors.IsNotFound(err))

		require.NoError(t, s.HardDeleteThreadByAuthor(ctx, id, alice.Id))
		thread, err := s.FindThreadById(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, thread)
	})
}
