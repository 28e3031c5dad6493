package handler

import (
	"net/http"

	"github.com/itchan-dev/feedback/backend/internal/service"
	"github.com/itchan-dev/feedback/shared/api"
	"github.com/itchan-dev/feedback/shared/utils"
)

func (h *Handler) GetAllThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.feedback.GetAllThreads(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ThreadListResponse{Threads: threads})
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := idParam(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.feedback.GetThreadById(r.Context(), threadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.ThreadResponse{Thread: *thread})
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	threadId, err := h.feedback.CreateThread(r.Context(), service.CreateThreadInput{
		Title:    body.Title,
		Body:     body.Body,
		Category: body.Category,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.IdResponse{Id: threadId})
}

func (h *Handler) EditThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := idParam(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	limitBody(w, r)
	var body api.EditThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	applied, err := h.feedback.EditThread(r.Context(), threadId, service.EditThreadInput{
		Title:    body.Title,
		Body:     body.Body,
		Category: body.Category,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.EditThreadResponse{
		Id:       threadId,
		Title:    applied.Title,
		Body:     applied.Body,
		Category: applied.Category,
	})
}

// DeleteThread soft-deletes unless ?hard=true is given.
func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	threadId, err := idParam(r, "thread")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.feedback.DeleteThread(r.Context(), threadId, utils.BoolQuery(r, "hard")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.OkResponse{Ok: true})
}
