package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Client mirrors submissions into the headless CMS so editors can see them.
// The CMS copy is best-effort: Mirror never returns an error, only a
// success/failure flag, and failure detail goes to the log. The primary store
// row is always the canonical record.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

func New(baseURL, token string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Enabled reports whether mirror credentials are configured. Running without
// them is an expected deployment mode, not an error.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.token != ""
}

// Mirror posts one denormalized submission copy to the CMS collection.
// No retries; the caller records the outcome.
func (c *Client) Mirror(ctx context.Context, resource string, data map[string]any) bool {
	if !c.Enabled() {
		c.logger.WithField("resource", resource).Debug("cms mirror skipped, no credentials configured")
		return false
	}

	body, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		c.logger.WithError(err).WithField("resource", resource).Error("failed to encode cms mirror payload")
		return false
	}

	url := fmt.Sprintf("%s/api/%s", c.baseURL, resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.WithError(err).WithField("resource", resource).Error("failed to build cms mirror request")
		return false
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("resource", resource).Error("cms mirror request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.WithFields(logrus.Fields{
			"resource": resource,
			"status":   resp.StatusCode,
			"body":     string(detail),
		}).Error("cms mirror rejected")
		return false
	}

	return true
}
