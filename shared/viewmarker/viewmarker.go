// Package viewmarker derives the per-thread, per-day marker used to avoid
// counting a repeat view from the same client twice in one calendar day.
// The marker is advisory: clients can drop it at will.
package viewmarker

import (
	"fmt"
	"net/http"
	"time"

	"github.com/itchan-dev/feedback/shared/domain"
)

const (
	cookiePrefix = "thread_view_"
	dayLayout    = "2006-01-02"
	MaxAge       = 24 * time.Hour
)

// Day formats t as a calendar day in loc.
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// Key identifies (thread, day); clients use it for their local marker store.
func Key(threadId domain.ThreadId, t time.Time, loc *time.Location) string {
	return fmt.Sprintf("%d:%s", threadId, Day(t, loc))
}

func CookieName(threadId domain.ThreadId) string {
	return fmt.Sprintf("%s%d", cookiePrefix, threadId)
}

// Present reports whether r carries today's marker for threadId. A cookie
// left over from a previous day does not count.
func Present(r *http.Request, threadId domain.ThreadId, now time.Time, loc *time.Location) bool {
	c, err := r.Cookie(CookieName(threadId))
	if err != nil {
		return false
	}
	return c.Value == Day(now, loc)
}

// Set writes today's marker cookie for threadId.
func Set(w http.ResponseWriter, threadId domain.ThreadId, now time.Time, loc *time.Location, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(threadId),
		Value:    Day(now, loc),
		Path:     "/",
		MaxAge:   int(MaxAge.Seconds()),
		Expires:  now.Add(MaxAge),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
