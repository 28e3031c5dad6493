package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/itchan-dev/feedback/shared/api"
	"github.com/itchan-dev/feedback/shared/domain"
)

func (c *APIClient) CreateReply(ctx context.Context, threadId domain.ThreadId, body domain.Body) (api.CreateReplyResponse, error) {
	var resp api.CreateReplyResponse
	req := api.CreateReplyRequest{ThreadId: threadId, Body: body}
	if err := c.call(ctx, http.MethodPost, "/v1/replies", req, &resp); err != nil {
		return api.CreateReplyResponse{}, err
	}
	return resp, nil
}

func (c *APIClient) EditReply(ctx context.Context, id domain.ReplyId, body domain.Body) (api.EditReplyResponse, error) {
	var resp api.EditReplyResponse
	if err := c.call(ctx, http.MethodPatch, fmt.Sprintf("/v1/replies/%d", id), api.EditReplyRequest{Body: body}, &resp); err != nil {
		return api.EditReplyResponse{}, err
	}
	return resp, nil
}

func (c *APIClient) DeleteReply(ctx context.Context, id domain.ReplyId) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/v1/replies/%d", id), nil, &api.OkResponse{})
}
