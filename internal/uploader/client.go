package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the upload service from the main application, currently
// only for cascade deletes. Uploads go straight from the browser to the
// service.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// RemoveImage deletes an uploaded image by its public URL. The delete
// endpoint is chosen from the URL's category directory. A 404 from the
// service counts as success since the goal is absence.
func (c *Client) RemoveImage(ctx context.Context, imageURL string) error {
	var endpoint string
	var body interface{}

	switch {
	case strings.HasPrefix(imageURL, "/images/avatars/"):
		endpoint = "/delete-avatar"
		body = map[string]string{"avatarUrl": imageURL}
	case strings.HasPrefix(imageURL, "/images/news/"):
		endpoint = "/delete-news"
		body = map[string][]string{"imageUrls": {imageURL}}
	case strings.HasPrefix(imageURL, "/images/covers/"):
		endpoint = "/delete-cover"
		body = map[string]string{"coverUrl": imageURL}
	default:
		return fmt.Errorf("not a managed image URL: %s", imageURL)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("upload service returned %d for %s", resp.StatusCode, endpoint)
}
