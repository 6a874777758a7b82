package whttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const USER_AGENT = "curaudit/1.0"

type BasicAuth struct {
	Username string
	Password string
}

type WHTTPReq struct {
	URL       string
	Method    string
	Query     url.Values
	BasicAuth *BasicAuth
}

type WHTTPRes struct {
	StatusCode int
	BodyString string
}

// ClientOptions configures the shared HTTP session.
type ClientOptions struct {
	// Timeout bounds a single request, zero means no limit.
	Timeout time.Duration
	// Proxy is an optional HTTP proxy URL, useful for debugging.
	Proxy string
}

// NewClient builds a session that sends every request exactly once.
// Non-2xx responses are handed back to the caller instead of being turned into errors.
func NewClient(opts ClientOptions) (*retryablehttp.Client, error) {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = 0
	client.CheckRetry = noRetryPolicy
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = opts.Timeout

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport, ok := client.HTTPClient.Transport.(*http.Transport)
		if !ok {
			transport = http.DefaultTransport.(*http.Transport).Clone()
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		client.HTTPClient.Transport = transport
	}
	return client, nil
}

// noRetryPolicy never asks for another attempt, so status handling stays with the caller.
func noRetryPolicy(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (wRes *WHTTPRes, err error) {
	target := wReq.URL
	if len(wReq.Query) > 0 {
		target += "?" + wReq.Query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, wReq.Method, target, nil)
	if err != nil {
		return nil, err
	}

	// Set common headers
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept", "application/json")

	if wReq.BasicAuth != nil {
		req.SetBasicAuth(wReq.BasicAuth.Username, wReq.BasicAuth.Password)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &WHTTPRes{
		StatusCode: resp.StatusCode,
		BodyString: string(bodyBytes),
	}, nil
}
