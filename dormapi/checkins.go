package dormapi

import (
	"context"
	"io"
	"net/http"

	"github.com/ktxhub/ktxclient/transport"
)

const checkinsPath = "/checkins"

// UploadCheckinImage streams an evidence image through the check-in upload
// endpoint. Same accepted types and returned URL shape as [Client.UploadImage].
func (c *Client) UploadCheckinImage(ctx context.Context, filename string, content io.Reader) (*Upload, error) {
	return c.uploadImage(ctx, checkinsPath+"/upload", filename, content)
}

// CreateCheckin files a check-in or check-out request for the active
// identity.
func (c *Client) CreateCheckin(ctx context.Context, in CheckinCreate) (*Checkin, error) {
	if in.Type != "checkin" && in.Type != "checkout" {
		return nil, ErrTypeRequired
	}

	var out Checkin
	err := c.api.RequestJSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   checkinsPath,
		Body:   jsonBody(in),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MyCheckins lists the active identity's own check-in requests.
func (c *Client) MyCheckins(ctx context.Context) ([]Checkin, error) {
	var out []Checkin
	err := c.api.RequestJSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   checkinsPath + "/mine",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListCheckins lists every check-in request. Admin only; the server
// enforces the role.
func (c *Client) ListCheckins(ctx context.Context) ([]Checkin, error) {
	var out []Checkin
	err := c.api.RequestJSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   checkinsPath,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCheckin approves or rejects a check-in request. Admin only.
func (c *Client) UpdateCheckin(ctx context.Context, id int64, in CheckinUpdate) (*Checkin, error) {
	var out Checkin
	err := c.api.RequestJSON(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   pathWithID(checkinsPath, id),
		Body:   jsonBody(in),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
