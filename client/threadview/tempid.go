package threadview

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/feedback/shared/domain"
)

// TempIds hands out temporary reply ids. They are negative, so they never
// collide with ids assigned by the store, and strictly decreasing.
type TempIds struct {
	mu   sync.Mutex
	last domain.ReplyId
	now  func() time.Time
}

func NewTempIds() *TempIds {
	return &TempIds{now: time.Now}
}

func (g *TempIds) Next() domain.ReplyId {
	g.mu.Lock()
	defer g.mu.Unlock()

	// microsecond timestamp with three random digits appended
	id := -(g.now().UnixMicro()*1000 + int64(uuid.New().ID()%1000))
	if id >= g.last {
		id = g.last - 1
	}
	g.last = id
	return id
}
