package dormapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ktxhub/ktxclient/transport"
)

// ErrTypeRequired is returned for a check-in create without a valid type.
var ErrTypeRequired = errors.New("type must be \"checkin\" or \"checkout\"")

// ErrTitleRequired is returned for a report create without a title.
var ErrTitleRequired = errors.New("report title required")

// Dispatcher is the authenticated request surface this package rides on.
// *ktxclient.Client satisfies it.
type Dispatcher interface {
	Request(ctx context.Context, req transport.Request) (*http.Response, error)
	RequestJSON(ctx context.Context, req transport.Request, out any) error
}

// Client issues report and check-in calls through an authenticated
// dispatcher.
type Client struct {
	api Dispatcher
}

// New returns a [Client] on top of api.
func New(api Dispatcher) *Client {
	return &Client{api: api}
}

func jsonBody(v any) io.Reader {
	buf := &bytes.Buffer{}
	json.NewEncoder(buf).Encode(v)
	return buf
}

func pathWithID(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
