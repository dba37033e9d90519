// Package publication talks to the remote site plugin and runs the
// publication jobs handed off after a purchase commits.
package publication

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/pkg/clients"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
	postsPath     = "/wp-json/linkmarket/v1/posts"
)

type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Slug    string `json:"slug"`
}

type publishResponse struct {
	Success bool   `json:"success"`
	PostID  int    `json:"post_id"`
	Error   string `json:"error,omitempty"`
}

type Client struct {
	client        clients.HTTPClientI
	retryInterval time.Duration
}

func NewClient(client clients.HTTPClientI) *Client {
	return &Client{client: client, retryInterval: retryInterval}
}

func postsURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + postsPath
}

func headers(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-API-Key", apiKey)
	return h
}

// send retries transport errors and 5xx answers with a linear backoff.
func (c *Client) send(ctx context.Context, method, url, apiKey string, body []byte) (int, []byte, error) {
	var (
		status int
		resp   []byte
		err    error
	)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		status, resp, err = c.client.Send(ctx, method, url, headers(apiKey), body)
		if err == nil && status < http.StatusInternalServerError && status != http.StatusTooManyRequests {
			return status, resp, nil
		}
		if attempt == maxRetries {
			break
		}
		zap.L().Warn("publication call failed, retrying",
			zap.String("url", url), zap.Int("status", status), zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		case <-time.After(c.retryInterval * time.Duration(attempt)):
		}
	}
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s after %d attempts: %w", method, url, maxRetries, err)
	}
	return status, resp, fmt.Errorf("%s %s after %d attempts: status %d", method, url, maxRetries, status)
}

// Publish creates the post and returns its remote id.
func (c *Client) Publish(ctx context.Context, siteURL, apiKey string, post Post) (int, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return 0, fmt.Errorf("marshal post: %w", err)
	}
	status, raw, err := c.send(ctx, http.MethodPost, postsURL(siteURL), apiKey, body)
	if err != nil {
		return 0, err
	}
	var resp publishResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("parse publish response (status %d): %w", status, err)
	}
	if status >= http.StatusBadRequest || !resp.Success {
		return 0, fmt.Errorf("publish rejected with status %d: %s", status, resp.Error)
	}
	return resp.PostID, nil
}

// Delete removes a remote post. A post that is already gone counts as deleted.
func (c *Client) Delete(ctx context.Context, siteURL, apiKey string, postID int) error {
	status, _, err := c.send(ctx, http.MethodDelete, postsURL(siteURL)+"/"+strconv.Itoa(postID), apiKey, nil)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		zap.L().Info("remote post already deleted", zap.Int("post_id", postID))
		return nil
	case status >= http.StatusBadRequest:
		return fmt.Errorf("delete post %d: status %d", postID, status)
	}
	return nil
}
