package gitlab_test

import (
	"context"
	"net/http"
	"sync"

	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
)

// fakeClient answers endpoints from a handler and records every call.
type fakeClient struct {
	mu      sync.Mutex
	calls   []*gitlab.Endpoint
	handler func(call int, endpoint *gitlab.Endpoint) (*gitlab.RawResponse, error)
}

func newFakeClient(handler func(call int, endpoint *gitlab.Endpoint) (*gitlab.RawResponse, error)) *fakeClient {
	return &fakeClient{handler: handler}
}

// respondWith returns a client that always answers with status and body.
func respondWith(status int, body string) *fakeClient {
	return newFakeClient(func(int, *gitlab.Endpoint) (*gitlab.RawResponse, error) {
		return rawResponse(status, body, nil), nil
	})
}

func rawResponse(status int, body string, header http.Header) *gitlab.RawResponse {
	if header == nil {
		header = make(http.Header)
	}

	return &gitlab.RawResponse{StatusCode: status, Header: header, Body: []byte(body)}
}

func (f *fakeClient) Do(_ context.Context, endpoint *gitlab.Endpoint) (*gitlab.RawResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	call := len(f.calls)
	f.mu.Unlock()

	return f.handler(call, endpoint)
}

func (f *fakeClient) BaseURL() string {
	return "https://gitlab.example.com"
}

func (f *fakeClient) Calls() []*gitlab.Endpoint {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*gitlab.Endpoint(nil), f.calls...)
}
