package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itchan-dev/feedback/shared/domain"
	internal_errors "github.com/itchan-dev/feedback/shared/errors"
)

type threadRow struct {
	Id             int64        `db:"id"`
	Title          string       `db:"title"`
	Body           string       `db:"body"`
	Category       string       `db:"category"`
	AuthorId       string       `db:"author_id"`
	AuthorName     string       `db:"author_name"`
	AuthorImage    string       `db:"author_image"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      sql.NullTime `db:"updated_at"`
	LastActivityAt time.Time    `db:"last_activity_at"`
	IsActive       bool         `db:"is_active"`
	ViewsCount     int64        `db:"views_count"`
	ReplyCount     int          `db:"reply_count"`
}

func (r threadRow) toDomain() domain.Thread {
	return domain.Thread{
		Id:             r.Id,
		Title:          r.Title,
		Body:           r.Body,
		Category:       domain.Category(r.Category),
		Author:         domain.User{Id: r.AuthorId, Name: r.AuthorName, Image: r.AuthorImage},
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      nullTime(r.UpdatedAt),
		LastActivityAt: r.LastActivityAt.UTC(),
		IsActive:       r.IsActive,
		ViewsCount:     r.ViewsCount,
		ReplyCount:     r.ReplyCount,
	}
}

func (r threadRow) toListItem() domain.ThreadListItem {
	return domain.ThreadListItem{
		Id:         r.Id,
		Title:      r.Title,
		Author:     domain.User{Id: r.AuthorId, Name: r.AuthorName, Image: r.AuthorImage},
		Category:   domain.Category(r.Category),
		ViewsCount: r.ViewsCount,
		ReplyCount: r.ReplyCount,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

const threadColumns = `
    t.id, t.title, t.body, t.category, t.author_id,
    COALESCE(u.name, '') AS author_name, COALESCE(u.image, '') AS author_image,
    t.created_at, t.updated_at, t.last_activity_at, t.is_active, t.views_count,
    (SELECT COUNT(*) FROM replies r WHERE r.thread_id = t.id) AS reply_count`

func (s *Storage) ListActiveThreads(ctx context.Context) ([]domain.ThreadListItem, error) {
	var rows []threadRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
        SELECT `+threadColumns+`
        FROM threads t
        LEFT JOIN users u ON u.id = t.author_id
        WHERE t.is_active = TRUE
        ORDER BY t.created_at DESC, t.id DESC
    `))
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	threads := make([]domain.ThreadListItem, 0, len(rows))
	for _, row := range rows {
		threads = append(threads, row.toListItem())
	}
	return threads, nil
}

// FindThreadById returns nil when the thread is missing or soft-deleted.
func (s *Storage) FindThreadById(ctx context.Context, id domain.ThreadId) (*domain.Thread, error) {
	var row threadRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
        SELECT `+threadColumns+`
        FROM threads t
        LEFT JOIN users u ON u.id = t.author_id
        WHERE t.id = ? AND t.is_active = TRUE
    `), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}

	replies, err := s.listReplies(ctx, id)
	if err != nil {
		return nil, err
	}
	thread := row.toDomain()
	thread.Replies = replies
	thread.ReplyCount = len(replies)
	return &thread, nil
}

func (s *Storage) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return -1, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	if err := upsertUser(ctx, tx, data.Author, ts); err != nil {
		return -1, err
	}

	category := data.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	var id domain.ThreadId
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
        INSERT INTO threads (title, body, category, author_id, created_at, last_activity_at)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id
    `), data.Title, data.Body, string(category), data.Author.Id, ts, ts).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert thread: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return -1, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// UpdateThreadByAuthor applies the non-nil fields of patch. A thread that is
// missing, inactive or owned by someone else is reported as not found.
func (s *Storage) UpdateThreadByAuthor(ctx context.Context, id domain.ThreadId, authorId domain.UserId, patch domain.ThreadPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Body != nil {
		sets = append(sets, "body = ?")
		args = append(args, *patch.Body)
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, string(*patch.Category))
	}
	args = append(args, id, authorId)

	query := "UPDATE threads SET " + strings.Join(sets, ", ") +
		" WHERE id = ? AND author_id = ? AND is_active = TRUE"
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update thread: %w", err)
	}
	return expectAffected(result, "Thread")
}

func (s *Storage) SoftDeleteThreadByAuthor(ctx context.Context, id domain.ThreadId, authorId domain.UserId) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
        UPDATE threads SET is_active = FALSE, updated_at = ?
        WHERE id = ? AND author_id = ? AND is_active = TRUE
    `), now(), id, authorId)
	if err != nil {
		return fmt.Errorf("failed to soft delete thread: %w", err)
	}
	return expectAffected(result, "Thread")
}

// HardDeleteThreadByAuthor removes the thread and its replies. Soft-deleted
// threads can still be purged by their author.
func (s *Storage) HardDeleteThreadByAuthor(ctx context.Context, id domain.ThreadId, authorId domain.UserId) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
        DELETE FROM replies
        WHERE thread_id IN (SELECT id FROM threads WHERE id = ? AND author_id = ?)
    `), id, authorId)
	if err != nil {
		return fmt.Errorf("failed to delete replies: %w", err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(
		"DELETE FROM threads WHERE id = ? AND author_id = ?",
	), id, authorId)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	if err := expectAffected(result, "Thread"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Storage) IncrementViewCount(ctx context.Context, id domain.ThreadId) (int64, error) {
	var views int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
        UPDATE threads SET views_count = views_count + 1
        WHERE id = ? AND is_active = TRUE
        RETURNING views_count
    `), id).Scan(&views)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, internal_errors.NotFound("Thread")
		}
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	return views, nil
}

func (s *Storage) GetViewCount(ctx context.Context, id domain.ThreadId) (int64, error) {
	var views int64
	err := s.db.GetContext(ctx, &views, s.db.Rebind(
		"SELECT views_count FROM threads WHERE id = ? AND is_active = TRUE",
	), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, internal_errors.NotFound("Thread")
		}
		return 0, fmt.Errorf("failed to read views: %w", err)
	}
	return views, nil
}

func expectAffected(result sql.Result, entity string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return internal_errors.NotFound(entity)
	}
	return nil
}
