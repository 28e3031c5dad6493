package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/itchan-dev/feedback/shared/domain"
	internal_errors "github.com/itchan-dev/feedback/shared/errors"
)

type replyRow struct {
	Id          int64        `db:"id"`
	ThreadId    int64        `db:"thread_id"`
	Body        string       `db:"body"`
	AuthorId    string       `db:"author_id"`
	AuthorName  string       `db:"author_name"`
	AuthorImage string       `db:"author_image"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   sql.NullTime `db:"updated_at"`
}

func (r replyRow) toDomain() domain.Reply {
	return domain.Reply{
		Id:        r.Id,
		ThreadId:  r.ThreadId,
		Body:      r.Body,
		Author:    domain.User{Id: r.AuthorId, Name: r.AuthorName, Image: r.AuthorImage},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: nullTime(r.UpdatedAt),
	}
}

func (s *Storage) listReplies(ctx context.Context, threadId domain.ThreadId) ([]domain.Reply, error) {
	var rows []replyRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
        SELECT
            r.id, r.thread_id, r.body, r.author_id,
            COALESCE(u.name, '') AS author_name, COALESCE(u.image, '') AS author_image,
            r.created_at, r.updated_at
        FROM replies r
        LEFT JOIN users u ON u.id = r.author_id
        WHERE r.thread_id = ?
        ORDER BY r.created_at, r.id
    `), threadId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch replies: %w", err)
	}

	replies := make([]domain.Reply, 0, len(rows))
	for _, row := range rows {
		replies = append(replies, row.toDomain())
	}
	return replies, nil
}

// CreateReply attaches a reply to an active thread. Bumping the thread's
// activity and inserting share one transaction, so a concurrent soft delete
// either wins before the bump (not found) or waits for the commit.
func (s *Storage) CreateReply(ctx context.Context, data domain.ReplyCreationData) (domain.Reply, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	result, err := tx.ExecContext(ctx, tx.Rebind(
		"UPDATE threads SET last_activity_at = ? WHERE id = ? AND is_active = TRUE",
	), ts, data.ThreadId)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to bump thread: %w", err)
	}
	if err := expectAffected(result, "Thread"); err != nil {
		return domain.Reply{}, err
	}

	if err := upsertUser(ctx, tx, data.Author, ts); err != nil {
		return domain.Reply{}, err
	}

	var id domain.ReplyId
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
        INSERT INTO replies (thread_id, body, author_id, created_at)
        VALUES (?, ?, ?, ?)
        RETURNING id
    `), data.ThreadId, data.Body, data.Author.Id, ts).Scan(&id)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("failed to insert reply: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Reply{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return domain.Reply{
		Id:        id,
		ThreadId:  data.ThreadId,
		Body:      data.Body,
		Author:    data.Author,
		CreatedAt: ts,
	}, nil
}

// UpdateReplyByAuthor returns the thread the reply belongs to.
func (s *Storage) UpdateReplyByAuthor(ctx context.Context, id domain.ReplyId, authorId domain.UserId, body domain.Body) (domain.ThreadId, error) {
	var threadId domain.ThreadId
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
        UPDATE replies SET body = ?, updated_at = ?
        WHERE id = ? AND author_id = ?
        RETURNING thread_id
    `), body, now(), id, authorId).Scan(&threadId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, internal_errors.NotFound("Reply")
		}
		return 0, fmt.Errorf("failed to update reply: %w", err)
	}
	return threadId, nil
}

func (s *Storage) DeleteReplyByAuthor(ctx context.Context, id domain.ReplyId, authorId domain.UserId) (domain.ThreadId, error) {
	var threadId domain.ThreadId
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
        DELETE FROM replies
        WHERE id = ? AND author_id = ?
        RETURNING thread_id
    `), id, authorId).Scan(&threadId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, internal_errors.NotFound("Reply")
		}
		return 0, fmt.Errorf("failed to delete reply: %w", err)
	}
	return threadId, nil
}
