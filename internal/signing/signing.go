// Package signing is the client for the external HTTP signature service some
// platforms require on content-creation requests. The service is a black box:
// given a request URI and payload plus the session token pair, it returns a
// signature and timestamp.
package signing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/video-publisher/internal/wait"
)

// Signature is the token pair attached to a signed request.
type Signature struct {
	XS string `json:"x-s"`
	XT string `json:"x-t"`
}

// SigningError means the service exhausted its retry budget. Fatal for the
// one content-creation call it was signing.
type SigningError struct {
	URI   string
	Cause error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed for %s: %v", e.URI, e.Cause)
}

func (e *SigningError) Unwrap() error { return e.Cause }

// Client calls the signature service over HTTP.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts int
	backoff  time.Duration
}

// NewClient builds a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		attempts: 5,
		backoff:  2 * time.Second,
	}
}

type signRequest struct {
	URI        string `json:"uri"`
	Data       any    `json:"data"`
	TokenA     string `json:"a1"`
	WebSession string `json:"web_session"`
}

// Sign requests a signature for one content-creation request, retrying
// transient failures up to the client's attempt budget.
func (c *Client) Sign(ctx context.Context, uri string, payload any, tokenA, webSession string) (Signature, error) {
	var sig Signature

	err := wait.Do(ctx, "sign request", func(ctx context.Context) error {
		body, err := json.Marshal(signRequest{URI: uri, Data: payload, TokenA: tokenA, WebSession: webSession})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sign", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("sign service returned %d: %s", resp.StatusCode, snippet)
		}
		return json.NewDecoder(resp.Body).Decode(&sig)
	}, wait.RetryOptions{Attempts: c.attempts, Backoff: c.backoff})

	if err != nil {
		return Signature{}, &SigningError{URI: uri, Cause: err}
	}
	if sig.XS == "" {
		return Signature{}, &SigningError{URI: uri, Cause: fmt.Errorf("service returned empty signature")}
	}
	return sig, nil
}
