package api

import (
	"github.com/itchan-dev/feedback/shared/domain"
)

// Request DTOs. The max tags only cap raw input; content rules are
// enforced by the service after sanitizing.

type CreateThreadRequest struct {
	Title    string           `json:"title" validate:"max=2000"`
	Body     string           `json:"body" validate:"max=200000"`
	Category *domain.Category `json:"category,omitempty"`
}

// EditThreadRequest carries only the fields being changed.
type EditThreadRequest struct {
	Title    *string          `json:"title,omitempty" validate:"omitempty,max=2000"`
	Body     *string          `json:"body,omitempty" validate:"omitempty,max=200000"`
	Category *domain.Category `json:"category,omitempty"`
}

// Response DTOs

// EditThreadResponse echoes the changed fields as stored.
type EditThreadResponse struct {
	Id       domain.ThreadId     `json:"id"`
	Title    *domain.ThreadTitle `json:"title,omitempty"`
	Body     *domain.Body        `json:"body,omitempty"`
	Category *domain.Category    `json:"category,omitempty"`
}

type IdResponse struct {
	Id int64 `json:"id"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}

type ThreadListResponse struct {
	Threads []domain.ThreadListItem `json:"threads"`
}

// ThreadResponse wraps a full thread with replies
type ThreadResponse struct {
	domain.Thread
}
