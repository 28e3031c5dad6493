package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Title    ThreadTitle
	Body     Body
	Category Category
	Author   User
}

// ThreadPatch holds the fields of an edit. Nil means "leave unchanged".
type ThreadPatch struct {
	Title    *ThreadTitle
	Body     *Body
	Category *Category
}

func (p ThreadPatch) Empty() bool {
	return p.Title == nil && p.Body == nil && p.Category == nil
}

// ThreadListItem is the denormalized projection served by the thread list.
type ThreadListItem struct {
	Id         ThreadId    `json:"id"`
	Title      ThreadTitle `json:"title"`
	Author     User        `json:"author"`
	Category   Category    `json:"category"`
	ViewsCount int64       `json:"views_count"`
	ReplyCount int         `json:"reply_count"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Thread struct {
	Id             ThreadId    `json:"id"`
	Title          ThreadTitle `json:"title"`
	Body           Body        `json:"body"`
	Category       Category    `json:"category"`
	Author         User        `json:"author"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      *time.Time  `json:"updated_at,omitempty"`
	LastActivityAt time.Time   `json:"last_activity_at"`
	IsActive       bool        `json:"is_active"`
	ViewsCount     int64       `json:"views_count"`
	ReplyCount     int         `json:"reply_count"`
	Replies        []Reply     `json:"replies"`
}

// ViewResult is the outcome of registering a thread view.
type ViewResult struct {
	Counted bool  `json:"counted"`
	Views   int64 `json:"views"`
}
