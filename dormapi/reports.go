package dormapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ktxhub/ktxclient/transport"
)

const reportsPath = "/reports"

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// CreateReport files a new report for the active identity.
func (c *Client) CreateReport(ctx context.Context, in ReportCreate) (*Report, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}

	var out Report
	err := c.api.RequestJSON(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   reportsPath,
		Body:   jsonBody(in),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MyReports lists the active identity's own reports, newest first.
func (c *Client) MyReports(ctx context.Context) ([]Report, error) {
	var out []Report
	err := c.api.RequestJSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   reportsPath + "/mine",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListReports lists every report. Admin only; the server enforces the role.
func (c *Client) ListReports(ctx context.Context) ([]Report, error) {
	var out []Report
	err := c.api.RequestJSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   reportsPath,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetReport fetches one report by id. Admin only.
func (c *Client) GetReport(ctx context.Context, id int64) (*Report, error) {
	var out Report
	err := c.api.RequestJSON(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   pathWithID(reportsPath, id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateReport patches a report's status, reply, or location. Admin only.
func (c *Client) UpdateReport(ctx context.Context, id int64, in ReportUpdate) (*Report, error) {
	var out Report
	err := c.api.RequestJSON(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   pathWithID(reportsPath, id),
		Body:   jsonBody(in),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReport removes a report. Admin only.
func (c *Client) DeleteReport(ctx context.Context, id int64) error {
	resp, err := c.api.Request(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   pathWithID(reportsPath, id),
	})
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// UploadImage streams an illustration image through the report upload
// endpoint and returns the URL to place in [ReportCreate].ImageURL. Only
// JPG, PNG, WebP, and GIF filenames are accepted; the extension check
// mirrors server-side validation so obvious rejects never leave the client.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (*Upload, error) {
	return c.uploadImage(ctx, reportsPath+"/upload", filename, content)
}

func (c *Client) uploadImage(ctx context.Context, path, filename string, content io.Reader) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return nil, fmt.Errorf("unsupported image type %q", ext)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var out Upload
	err = c.api.RequestJSON(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        body,
		ContentType: writer.FormDataContentType(),
		Binary:      true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
