package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edgard/breadbot/internal/config"
)

// APIError represents an error response from the Graph API.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s (type: %s, code: %d)", e.Message, e.Type, e.Code)
}

type apiErrorEnvelope struct {
	Error *APIError `json:"error"`
}

// httpClient is the live Graph API implementation of Client.
type httpClient struct {
	http        *http.Client
	log         *slog.Logger
	baseURL     string
	accessToken string
	accountID   string
	username    string
}

// NewClient creates a live Instagram Graph API client from configuration.
func NewClient(cfg config.InstagramConfig, log *slog.Logger) (Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("instagram access token is required")
	}
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("instagram account id is required")
	}

	return &httpClient{
		http:        &http.Client{Timeout: cfg.Timeout},
		log:         log.With("component", "instagram_client"),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		accountID:   cfg.AccountID,
		username:    cfg.Username,
	}, nil
}

func (c *httpClient) Username() string { return c.username }

// Verify confirms the access token resolves to the configured account.
func (c *httpClient) Verify(ctx context.Context) error {
	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := c.doGet(ctx, "/me", url.Values{"fields": {"id,username"}}, &me); err != nil {
		return fmt.Errorf("failed to verify instagram credentials: %w", err)
	}
	if me.Username != "" && c.username != "" && !strings.EqualFold(me.Username, c.username) {
		c.log.Warn("Configured username differs from token identity", "configured", c.username, "actual", me.Username)
		c.username = me.Username
	}
	c.log.InfoContext(ctx, "Instagram credentials verified", "account_id", me.ID, "username", me.Username)
	return nil
}

// PublishPhoto uploads the photo as a media container and publishes it.
func (c *httpClient) PublishPhoto(ctx context.Context, data []byte, mimeType, caption string) (*PublishResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: media bytes are empty", ErrPublish)
	}

	var container struct {
		ID string `json:"id"`
	}
	if err := c.doUpload(ctx, "/"+c.accountID+"/media", data, mimeType, caption, &container); err != nil {
		return nil, fmt.Errorf("%w: media container creation: %w", ErrPublish, err)
	}

	var published struct {
		ID string `json:"id"`
	}
	form := url.Values{"creation_id": {container.ID}}
	if err := c.doPost(ctx, "/"+c.accountID+"/media_publish", form, &published); err != nil {
		return nil, fmt.Errorf("%w: media publish: %w", ErrPublish, err)
	}

	result := &PublishResult{PostID: published.ID, Timestamp: time.Now().UTC()}
	c.log.InfoContext(ctx, "Photo published", "post_id", result.PostID)
	return result, nil
}

// FetchComments returns the current comments on a post.
func (c *httpClient) FetchComments(ctx context.Context, postID string) ([]Comment, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is empty", ErrFetch)
	}

	var resp struct {
		Data []struct {
			ID        string    `json:"id"`
			Username  string    `json:"username"`
			Text      string    `json:"text"`
			Timestamp time.Time `json:"timestamp"`
		} `json:"data"`
	}
	params := url.Values{"fields": {"id,username,text,timestamp"}}
	if err := c.doGet(ctx, "/"+postID+"/comments", params, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	comments := make([]Comment, 0, len(resp.Data))
	for _, d := range resp.Data {
		comments = append(comments, Comment{
			ID:        d.ID,
			Username:  d.Username,
			Text:      d.Text,
			CreatedAt: d.Timestamp,
		})
	}
	return comments, nil
}

// PostReply posts a comment on the given post.
func (c *httpClient) PostReply(ctx context.Context, postID, text string) error {
	if postID == "" {
		return fmt.Errorf("%w: post id is empty", ErrReply)
	}

	var resp struct {
		ID string `json:"id"`
	}
	form := url.Values{"message": {text}}
	if err := c.doPost(ctx, "/"+postID+"/comments", form, &resp); err != nil {
		return fmt.Errorf("%w: %w", ErrReply, err)
	}
	c.log.DebugContext(ctx, "Reply posted", "post_id", postID, "comment_id", resp.ID)
	return nil
}

func (c *httpClient) doGet(ctx context.Context, path string, params url.Values, response any) error {
	params.Set("access_token", c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, response)
}

func (c *httpClient) doPost(ctx context.Context, path string, form url.Values, response any) error {
	form.Set("access_token", c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, response)
}

func (c *httpClient) doUpload(ctx context.Context, path string, data []byte, mimeType, caption string, response any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("access_token", c.accessToken); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.WriteField("caption", caption); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	part, err := writer.CreateFormFile("image", "photo"+extensionForMime(mimeType))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write media bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, response)
}

// do executes the request and decodes the JSON response, surfacing Graph API
// error envelopes as *APIError.
func (c *httpClient) do(req *http.Request, response any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope apiErrorEnvelope
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
			return envelope.Error
		}
		return fmt.Errorf("API error with status %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}
	if err := json.Unmarshal(raw, response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
