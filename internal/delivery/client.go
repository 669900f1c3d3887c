package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-bulk-sender/pkg/models"
)

const defaultTimeout = 10 * time.Second

var ErrInvalidURL = errors.New("invalid delivery webhook URL")

// Client posts one JSON message per call to the delivery webhook (an n8n
// style flow that forwards to WhatsApp). The response body is not consumed
// beyond the status code.
type Client struct {
	URL        string
	HTTPClient *http.Client
	log        zerolog.Logger
}

func NewClient(webhookURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		URL:        webhookURL,
		HTTPClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "delivery").Str("host", u.Host).Logger(),
	}, nil
}

// --- Helper Functions ---

func (c *Client) sendRequest(ctx context.Context, method, url string, body interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook error: %s - %s", resp.Status, string(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// --- Messaging Methods ---

// Deliver sends one rendered message. Transport errors and non-2xx responses
// are both failures.
func (c *Client) Deliver(ctx context.Context, msg models.DeliveryRequest) error {
	start := time.Now()
	if err := c.sendRequest(ctx, http.MethodPost, c.URL, msg); err != nil {
		return err
	}
	c.log.Debug().Str("phone", msg.Phone).Dur("took", time.Since(start)).Msg("message posted")
	return nil
}
