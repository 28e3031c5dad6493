package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/itchan-dev/feedback/shared/api"
	"github.com/itchan-dev/feedback/shared/domain"
)

func (c *APIClient) GetAllThreads(ctx context.Context) ([]domain.ThreadListItem, error) {
	var resp api.ThreadListResponse
	if err := c.call(ctx, http.MethodGet, "/v1/threads", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Threads, nil
}

func (c *APIClient) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	var resp api.ThreadResponse
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/v1/threads/%d", id), nil, &resp); err != nil {
		return domain.Thread{}, err
	}
	return resp.Thread, nil
}

func (c *APIClient) CreateThread(ctx context.Context, req api.CreateThreadRequest) (domain.ThreadId, error) {
	var resp api.IdResponse
	if err := c.call(ctx, http.MethodPost, "/v1/threads", req, &resp); err != nil {
		return 0, err
	}
	return resp.Id, nil
}

func (c *APIClient) EditThread(ctx context.Context, id domain.ThreadId, req api.EditThreadRequest) (api.EditThreadResponse, error) {
	var resp api.EditThreadResponse
	if err := c.call(ctx, http.MethodPatch, fmt.Sprintf("/v1/threads/%d", id), req, &resp); err != nil {
		return api.EditThreadResponse{}, err
	}
	return resp, nil
}

func (c *APIClient) DeleteThread(ctx context.Context, id domain.ThreadId, hard bool) error {
	path := fmt.Sprintf("/v1/threads/%d", id)
	if hard {
		path += "?hard=true"
	}
	return c.call(ctx, http.MethodDelete, path, nil, &api.OkResponse{})
}

func (c *APIClient) RegisterView(ctx context.Context, id domain.ThreadId) (domain.ViewResult, error) {
	var resp domain.ViewResult
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/v1/threads/%d/views", id), nil, &resp); err != nil {
		return domain.ViewResult{}, err
	}
	return resp, nil
}
