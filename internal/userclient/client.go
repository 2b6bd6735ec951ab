package userclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
	"github.com/AlexandruMarc/Easy-Shops/pkg/httpclient"
)

const serviceName = "user-service"

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client checks user existence against the user directory.
type Client struct {
	http    HTTPDoer
	baseURL string
}

// New creates a user directory client. An empty baseURL disables lookups:
// every user is then assumed to exist.
func New(doer HTTPDoer, baseURL string) *Client {
	return &Client{http: doer, baseURL: strings.TrimRight(baseURL, "/")}
}

// Enabled reports whether lookups go to a remote directory.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Exists returns nil when the user is known, a NotFound AppError when the
// directory answers 404, and the mapped downstream error otherwise.
func (c *Client) Exists(ctx context.Context, userID int64) error {
	if !c.Enabled() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/users/%d", c.baseURL, userID), nil)
	if err != nil {
		return fmt.Errorf("create user lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call user service: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Body.Close()
	}

	err = httpclient.ParseResponseError(resp, serviceName)
	if apperrors.IsNotFound(err) {
		return apperrors.NotFound("User", userID)
	}
	return err
}
