package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// APIError carries the server's error payload alongside the status code
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client is the HTTP implementation of Service. It is safe for concurrent
// use once the token is set.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token used on every subsequent request
func (c *Client) SetToken(token string) {
	c.token = token
}

// LoginResponse is returned by Login and Register
type LoginResponse struct {
	Token string  `json:"token"`
	User  Contact `json:"user"`
}

// Register creates an account and stores the session token on success
func (c *Client) Register(ctx context.Context, email, password, name string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// Login authenticates and stores the session token on success
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) ListChats(ctx context.Context) ([]ChatSummary, error) {
	var out []ChatSummary
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateChat(ctx context.Context, otherUserID string) (*ChatInfo, error) {
	body := map[string]string{"otherUserId": otherUserID}
	var out ChatInfo
	if err := c.do(ctx, http.MethodPost, "/api/chats", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LeaveChat(ctx context.Context, chatID string) error {
	return c.do(ctx, http.MethodDelete, "/api/chats/"+url.PathEscape(chatID), nil, nil)
}

func (c *Client) History(ctx context.Context, chatID string) ([]Message, error) {
	var out []Message
	path := "/api/chats/" + url.PathEscape(chatID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID string, req SendRequest) (*Message, error) {
	var out Message
	path := "/api/chats/" + url.PathEscape(chatID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID string) error {
	path := "/api/chats/" + url.PathEscape(chatID) + "/messages/" + url.PathEscape(messageID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CounterpartLastSeen returns nil when the counterpart has never reported
// presence; callers must not treat nil as offline-since-now.
func (c *Client) CounterpartLastSeen(ctx context.Context, chatID string) (*time.Time, error) {
	var out struct {
		LastSeenAt *time.Time `json:"lastSeenAt"`
	}
	path := "/api/chats/" + url.PathEscape(chatID) + "/presence"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.LastSeenAt, nil
}

func (c *Client) SetPresence(ctx context.Context, online bool) error {
	body := map[string]bool{"online": online}
	return c.do(ctx, http.MethodPost, "/api/presence", body, nil)
}

func (c *Client) ListContacts(ctx context.Context) ([]Contact, error) {
	var out []Contact
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var out struct {
		Results []SearchResult `json:"results"`
	}
	path := "/api/chats/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
