package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/jmoiron/sqlx"
)

// UpsertUser stores the display fields of a caller so listings can join them.
func (s *Storage) UpsertUser(ctx context.Context, user domain.User) error {
	return upsertUser(ctx, s.db, user, now())
}

func upsertUser(ctx context.Context, q sqlx.ExtContext, user domain.User, ts time.Time) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
        INSERT INTO users (id, name, image, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE
        SET name = excluded.name, image = excluded.image, updated_at = excluded.updated_at
    `), user.Id, user.Name, user.Image, ts)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
