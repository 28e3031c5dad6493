// Package revalidate tells the page-rendering layer that cached pages are out
// of date. Signals are fire-and-forget: the board's data is already committed
// when they are sent.
package revalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/itchan-dev/feedback/shared/domain"
	"github.com/itchan-dev/feedback/shared/logger"
	goredis "github.com/redis/go-redis/v9"
)

const (
	ThreadsTag   = "threads"
	FeedbackPath = "/feedback"
)

// ThreadPath is the page that renders a single thread.
func ThreadPath(id domain.ThreadId) string {
	return fmt.Sprintf("%s/%d", FeedbackPath, id)
}

type Kind string

const (
	KindTag  Kind = "tag"
	KindPath Kind = "path"
)

// Signal is the payload published for each invalidation.
type Signal struct {
	Kind  Kind      `json:"kind"`
	Value string    `json:"value"`
	At    time.Time `json:"at"`
}

type Revalidator interface {
	RevalidateTag(ctx context.Context, tag string) error
	RevalidatePath(ctx context.Context, path string) error
}

// publisher is the subset of *goredis.Client used here.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

type Redis struct {
	client  publisher
	channel string
	log     *slog.Logger
}

// NewRedis publishes signals on channel. The connection is checked once.
func NewRedis(ctx context.Context, addr, password, channel string) (*Redis, *goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedis(rdb, channel), rdb, nil
}

func newRedis(client publisher, channel string) *Redis {
	return &Redis{
		client:  client,
		channel: channel,
		log:     logger.Component("revalidate"),
	}
}

func (r *Redis) RevalidateTag(ctx context.Context, tag string) error {
	return r.publish(ctx, Signal{Kind: KindTag, Value: tag})
}

func (r *Redis) RevalidatePath(ctx context.Context, path string) error {
	return r.publish(ctx, Signal{Kind: KindPath, Value: path})
}

func (r *Redis) publish(ctx context.Context, signal Signal) error {
	signal.At = time.Now().UTC()
	raw, err := json.Marshal(signal)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s %q: %w", signal.Kind, signal.Value, err)
	}
	r.log.Debug("signal published", "kind", signal.Kind, "value", signal.Value)
	return nil
}

// Log only records signals. Used when no rendering layer listens.
type Log struct {
	log *slog.Logger
}

func NewLog() *Log {
	return &Log{log: logger.Component("revalidate")}
}

func (l *Log) RevalidateTag(_ context.Context, tag string) error {
	l.log.Info("revalidate tag", "tag", tag)
	return nil
}

func (l *Log) RevalidatePath(_ context.Context, path string) error {
	l.log.Info("revalidate path", "path", path)
	return nil
}
