package handler

import (
	"net/http"

	"github.com/itchan-dev/feedback/shared/utils"
	"github.com/itchan-dev/feedback/shared/viewmarker"
)

// RegisterView counts one view per thread per client per day. The day marker
// travels as a cookie and is only written when the view was counted.
func (h *Handler) RegisterView(w http.ResponseWriter, r *http.Request) {
	threadId, err := idParam(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	now := h.now()
	present := viewmarker.Present(r, threadId, now, h.viewLocation)
	result, err := h.feedback.RegisterView(r.Context(), threadId, present)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if result.Counted {
		viewmarker.Set(w, threadId, now, h.viewLocation, h.secureCookies)
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
