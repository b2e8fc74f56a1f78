package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"feed-service/internal/models"
)

// Client talks to the feed HTTP API. It is the store collaborator behind
// both the cache's page fetches and the editor's mutations.
type Client struct {
	baseURL string
	userID  string
	http    *http.Client
}

// NewClient builds an API client acting as the given user.
func NewClient(baseURL string, userID string) *Client {
	return &Client{
		baseURL: baseURL,
		userID:  userID,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

var _ PageFetcher = (*Client)(nil)
var _ MutationStore = (*Client)(nil)

// FetchPage requests one page of the room feed.
func (c *Client) FetchPage(ctx context.Context, roomID string, cursor string, limit int) (models.Page, error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	endpoint := fmt.Sprintf("%s/rooms/%s/messages", c.baseURL, url.PathEscape(roomID))
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var page models.Page
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return models.Page{}, err
	}
	return page, nil
}

// UpdateMessage edits a message's content.
func (c *Client) UpdateMessage(ctx context.Context, roomID string, messageID string, content string) (models.Message, error) {
	endpoint := fmt.Sprintf("%s/rooms/%s/messages/%s", c.baseURL, url.PathEscape(roomID), url.PathEscape(messageID))
	var msg models.Message
	if err := c.do(ctx, http.MethodPatch, endpoint, map[string]string{"content": content}, &msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, roomID string, messageID string) error {
	endpoint := fmt.Sprintf("%s/rooms/%s/messages/%s", c.baseURL, url.PathEscape(roomID), url.PathEscape(messageID))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// CreateMessage posts a new message to the room.
func (c *Client) CreateMessage(ctx context.Context, roomID string, content string) (models.Message, error) {
	endpoint := fmt.Sprintf("%s/rooms/%s/messages", c.baseURL, url.PathEscape(roomID))
	var msg models.Message
	if err := c.do(ctx, http.MethodPost, endpoint, map[string]string{"content": content}, &msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

func (c *Client) do(ctx context.Context, method string, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-User-ID", c.userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, endpoint, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
