package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/austerelabs/stockfinder/internal/config"
)

// Client posts notifications to an ntfy topic. Any 2xx response counts
// as delivered; everything else is a failed send for the caller to
// retry on a later tick.
type Client struct {
	serverURL  string
	topic      string
	priority   string
	httpClient *http.Client
}

// NewClient creates an ntfy client from configuration
func NewClient(cfg config.NtfyConfig) *Client {
	return &Client{
		serverURL: strings.TrimRight(cfg.ServerURL, "/"),
		topic:     cfg.Topic,
		priority:  cfg.Priority,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send posts the message body to the configured topic
func (c *Client) Send(ctx context.Context, title, body string) error {
	endpoint := c.serverURL + "/" + c.topic

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Title", title)
	if c.priority != "" {
		req.Header.Set("Priority", c.priority)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}
	return nil
}
