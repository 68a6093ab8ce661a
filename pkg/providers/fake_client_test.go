package providers

import (
	"context"
	"errors"
	"net/http"
)

type fakeResponse struct {
	code int
	body []byte
}

func (r fakeResponse) StatusCode() int { return r.code }
func (r fakeResponse) Body() []byte    { return r.body }

// fakeClient serves canned bodies in request order and records every URL it saw.
type fakeClient struct {
	responses []fakeResponse
	errs      []error
	urls      []string
	headers   []map[string]string
}

func (c *fakeClient) Get(_ context.Context, url string, headers map[string]string) (HTTPResponse, error) {
	idx := len(c.urls)
	c.urls = append(c.urls, url)
	c.headers = append(c.headers, headers)

	if idx < len(c.errs) && c.errs[idx] != nil {
		return nil, c.errs[idx]
	}
	if idx >= len(c.responses) {
		return nil, errors.New("unexpected request")
	}
	return c.responses[idx], nil
}

func okBody(body string) fakeResponse {
	return fakeResponse{code: http.StatusOK, body: []byte(body)}
}
