package domain

import "time"

type ReplyCreationData struct {
	ThreadId ThreadId
	Body     Body
	Author   User
}

type Reply struct {
	Id        ReplyId    `json:"id"`
	ThreadId  ThreadId   `json:"thread_id"`
	Body      Body       `json:"body"`
	Author    User       `json:"author"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
