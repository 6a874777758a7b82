package whttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendHTTPRequest_BasicAuthAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "s3cret", pass)
		assert.Equal(t, "2", r.URL.Query().Get("offset"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, USER_AGENT, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)

	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{
		Method:    http.MethodGet,
		URL:       server.URL + "/x",
		Query:     url.Values{"offset": {"2"}},
		BasicAuth: &BasicAuth{Username: "alice", Password: "s3cret"},
	}, client)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, `{"ok":true}`, res.BodyString)
}

func TestSendHTTPRequest_ServerErrorIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{Method: http.MethodGet, URL: server.URL}, client)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Equal(t, "upstream down", res.BodyString)
	assert.Equal(t, 1, calls)
}

func TestNewClient_InvalidProxy(t *testing.T) {
	_, err := NewClient(ClientOptions{Proxy: "://bad"})
	assert.Error(t, err)
}
