package api

import (
	"time"

	"github.com/itchan-dev/feedback/shared/domain"
)

type CreateReplyRequest struct {
	ThreadId domain.ThreadId `json:"thread_id"`
	Body     string          `json:"body" validate:"max=200000"`
}

type EditReplyRequest struct {
	Body string `json:"body" validate:"max=200000"`
}

// CreateReplyResponse returns the stored reply so clients can swap their
// temporary entry for the real one.
type CreateReplyResponse struct {
	Id        domain.ReplyId `json:"id"`
	Body      domain.Body    `json:"body"`
	CreatedAt time.Time      `json:"created_at"`
}

// EditReplyResponse carries the body as stored, after sanitizing.
type EditReplyResponse struct {
	Id   domain.ReplyId `json:"id"`
	Body domain.Body    `json:"body"`
}
