// Package club implements the HTTP client for the upstream club API.
// The client performs no retries and no backoff; failures are the
// caller's responsibility to handle.
package club

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kiwisport/clubboard/core"
	"github.com/kiwisport/clubboard/core/member"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "clubboard_upstream_request_duration_seconds",
	Help: "Latency of requests to the upstream club API, by method.",
}, []string{"method"})

type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: conf.Club.BaseURL,
		hc:      &http.Client{Timeout: conf.Club.Timeout},
	}
}

// APIError is a non-2xx upstream response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("club API returned %d: %s", e.StatusCode, e.Body)
}

// IsAPIError reports whether err (or its cause) is an upstream
// non-2xx response, as opposed to a transport failure.
func IsAPIError(err error) bool {
	_, ok := errors.Cause(err).(*APIError)
	return ok
}

func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.hc.Do(req)
	requestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		return errors.Wrap(err, "sending request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out != nil && len(body) > 0 {
		if err = json.Unmarshal(body, out); err != nil {
			return errors.Wrap(err, "decoding response")
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encoding request")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// sendForm submits a multipart form. Fields are written in sorted key
// order; a nil file leaves the stored image untouched upstream.
func (c *Client) sendForm(ctx context.Context, method, path string, fields map[string]string, file *member.Upload, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return errors.Wrap(err, "writing form field")
		}
	}
	if file != nil {
		part, err := w.CreateFormFile("image", file.Filename)
		if err != nil {
			return errors.Wrap(err, "creating form file")
		}
		if _, err = part.Write(file.Content); err != nil {
			return errors.Wrap(err, "writing form file")
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "closing form")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	return c.do(req, nil)
}
