package handler

import (
	"net/http"

	"github.com/itchan-dev/feedback/shared/api"
	"github.com/itchan-dev/feedback/shared/utils"
)

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	var body api.CreateReplyRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	reply, err := h.feedback.CreateReply(r.Context(), body.ThreadId, body.Body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.CreateReplyResponse{Id: reply.Id, Body: reply.Body, CreatedAt: reply.CreatedAt})
}

func (h *Handler) EditReply(w http.ResponseWriter, r *http.Request) {
	replyId, err := idParam(r, "reply")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	limitBody(w, r)
	var body api.EditReplyRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	reply, err := h.feedback.EditReply(r.Context(), replyId, body.Body)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.EditReplyResponse{Id: reply.Id, Body: reply.Body})
}

func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	replyId, err := idParam(r, "reply")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.feedback.DeleteReply(r.Context(), replyId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.OkResponse{Ok: true})
}
