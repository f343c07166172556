package main

import (
	"io"
	"strings"
	"sync"

	http "github.com/bogdanfinn/fhttp"
)

type fakeRoute struct {
	status int
	body   string
	err    error
}

type recordedRequest struct {
	method string
	url    string
	header http.Header
	body   string
}

// fakeDoer answers requests from a route table keyed by "METHOD URL" and
// records every request it sees. Unknown routes get a 404.
type fakeDoer struct {
	mu       sync.Mutex
	routes   map[string]fakeRoute
	requests []recordedRequest
}

func newFakeDoer(routes map[string]fakeRoute) *fakeDoer {
	return &fakeDoer{routes: routes}
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method: req.Method,
		url:    req.URL.String(),
		header: req.Header.Clone(),
		body:   body,
	})
	route, ok := f.routes[req.Method+" "+req.URL.String()]
	f.mu.Unlock()

	if !ok {
		route = fakeRoute{status: http.StatusNotFound, body: "not found"}
	}
	if route.err != nil {
		return nil, route.err
	}
	return &http.Response{
		StatusCode: route.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(route.body)),
		Request:    req,
	}, nil
}

func (f *fakeDoer) calls() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeDoer) called(method, url string) bool {
	for _, r := range f.calls() {
		if r.method == method && r.url == url {
			return true
		}
	}
	return false
}

// lineRecorder collects pipeline log lines.
type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineRecorder) add(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

func (l *lineRecorder) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func (l *lineRecorder) last() string {
	all := l.all()
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}
