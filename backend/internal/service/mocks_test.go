package service

import (
	"context"
	"sync"

	"github.com/itchan-dev/feedback/shared/domain"
)

// --- Mocks ---

type MockRepository struct {
	listActiveThreadsFunc        func(ctx context.Context) ([]domain.ThreadListItem, error)
	findThreadByIdFunc           func(ctx context.Context, id domain.ThreadId) (*domain.Thread, error)
	createThreadFunc             func(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error)
	updateThreadByAuthorFunc     func(ctx context.Context, id domain.ThreadId, authorId domain.UserId, patch domain.ThreadPatch) error
	softDeleteThreadByAuthorFunc func(ctx context.Context, id domain.ThreadId, authorId domain.UserId) error
	hardDeleteThreadByAuthorFunc func(ctx context.Context, id domain.ThreadId, authorId domain.UserId) error
	createReplyFunc              func(ctx context.Context, data domain.ReplyCreationData) (domain.Reply, error)
	updateReplyByAuthorFunc      func(ctx context.Context, id domain.ReplyId, authorId domain.UserId, body domain.Body) (domain.ThreadId, error)
	deleteReplyByAuthorFunc      func(ctx context.Context, id domain.ReplyId, authorId domain.UserId) (domain.ThreadId, error)
	incrementViewCountFunc       func(ctx context.Context, id domain.ThreadId) (int64, error)
	getViewCountFunc             func(ctx context.Context, id domain.ThreadId) (int64, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockRepository) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

func (m *MockRepository) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockRepository) ListActiveThreads(ctx context.Context) ([]domain.ThreadListItem, error) {
	m.record("ListActiveThreads")
	if m.listActiveThreadsFunc != nil {
		return m.listActiveThreadsFunc(ctx)
	}
	return []domain.ThreadListItem{}, nil
}

func (m *MockRepository) FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	m.record("FindThreadById")
	if m.findThreadByIdFunc != nil {
		return m.findThreadByIdFunc(ctx, id)
	}
	return &domain.Thread{Id: id, IsActive: true}, nil
}

func (m *MockRepository) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	m.record("CreateThread")
	if m.createThreadFunc != nil {
		return m.createThreadFunc(ctx, data)
	}
	return 1, nil
}

func (m *MockRepository) UpdateThreadByAuthor(ctx context.Context, id domain.ThreadId, authorId domain.UserId, patch domain.ThreadPatch) error {
	m.record("UpdateThreadByAuthor")
	if m.updateThreadByAuthorFunc != nil {
		return m.updateThreadByAuthorFunc(ctx, id, authorId, patch)
	}
	return nil
}

func (m *MockRepository) SoftDeleteThreadByAuthor(ctx context.Context, id domain.ThreadId, authorId domain.UserId) error {
	m.record("SoftDeleteThreadByAuthor")
	if m.softDeleteThreadByAuthorFunc != nil {
		return m.softDeleteThreadByAuthorFunc(ctx, id, authorId)
	}
	return nil
}

func (m *MockRepository) HardDeleteThreadByAuthor(ctx context.Context, id domain.ThreadId, authorId domain.UserId) error {
	m.record("HardDeleteThreadByAuthor")
	if m.hardDeleteThreadByAuthorFunc != nil {
		return m.hardDeleteThreadByAuthorFunc(ctx, id, authorId)
	}
	return nil
}

func (m *MockRepository) CreateReply(ctx context.Context, data domain.ReplyCreationData) (domain.Reply, error) {
	m.record("CreateReply")
	if m.createReplyFunc != nil {
		return m.createReplyFunc(ctx, data)
	}
	return domain.Reply{Id: 1, ThreadId: data.ThreadId, Body: data.Body, Author: data.Author}, nil
}

func (m *MockRepository) UpdateReplyByAuthor(ctx context.Context, id domain.ReplyId, authorId domain.UserId, body domain.Body) (domain.ThreadId, error) {
	m.record("UpdateReplyByAuthor")
	if m.updateReplyByAuthorFunc != nil {
		return m.updateReplyByAuthorFunc(ctx, id, authorId, body)
	}
	return 1, nil
}

func (m *MockRepository) DeleteReplyByAuthor(ctx context.Context, id domain.ReplyId, authorId domain.UserId) (domain.ThreadId, error) {
	m.record("DeleteReplyByAuthor")
	if m.deleteReplyByAuthorFunc != nil {
		return m.deleteReplyByAuthorFunc(ctx, id, authorId)
	}
	return 1, nil
}

func (m *MockRepository) IncrementViewCount(ctx context.Context, id domain.ThreadId) (int64, error) {
	m.record("IncrementViewCount")
	if m.incrementViewCountFunc != nil {
		return m.incrementViewCountFunc(ctx, id)
	}
	return 1, nil
}

func (m *MockRepository) GetViewCount(ctx context.Context, id domain.ThreadId) (int64, error) {
	m.record("GetViewCount")
	if m.getViewCountFunc != nil {
		return m.getViewCountFunc(ctx, id)
	}
	return 0, nil
}

// MockRevalidator records every signal it is asked to send.
type MockRevalidator struct {
	err error

	mu    sync.Mutex
	tags  []string
	paths []string
}

func (m *MockRevalidator) RevalidateTag(_ context.Context, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags = append(m.tags, tag)
	return m.err
}

func (m *MockRevalidator) RevalidatePath(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
	return m.err
}

type fixedCaller struct {
	user *domain.User
}

func (c fixedCaller) Caller(context.Context) *domain.User {
	return c.user
}
