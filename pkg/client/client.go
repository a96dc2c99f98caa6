// Package client is a typed Go client for the menushare HTTP API.
//
// Owner calls take an explicit *Session. When the server rejects an expired
// access token the client refreshes the session once and retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/menushare/internal/models"
	"github.com/Skotchmaster/menushare/internal/transport"
)

type (
	LoginRequest       = transport.LoginRequest
	CreateMenuRequest  = transport.CreateMenuRequest
	MenuItemRequest    = transport.MenuItemRequest
	UpdateMenuRequest  = transport.UpdateMenuRequest
	SubmitOrderRequest = transport.SubmitOrderRequest
	CreateMenuResponse = transport.CreateMenuResponse
	MenuResponse       = transport.MenuResponse
	SearchResponse     = transport.SearchResponse
	Menu               = models.Menu
	MenuSummary        = models.MenuSummary
	Order              = models.Order
)

// Session holds the credentials of a logged-in owner.
type Session struct {
	mu           sync.Mutex
	UserID       string
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (s *Session) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.AccessToken, s.RefreshToken
}

func (s *Session) update(r transport.TokenResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AccessToken = r.AccessToken
	s.RefreshToken = r.RefreshToken
	s.AccessExp = time.Unix(r.AccessExpiresAt, 0)
	s.RefreshExp = time.Unix(r.RefreshExpiresAt, 0)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("menushare: %d %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doSession sends an owner request and retries once after refreshing s on 401.
func (c *Client) doSession(ctx context.Context, s *Session, method, path string, body, out any) error {
	if s == nil {
		return &APIError{Status: http.StatusUnauthorized, Message: "no session"}
	}
	access, refresh := s.tokens()
	err := c.do(ctx, method, path, access, body, out)
	if StatusCode(err) != http.StatusUnauthorized || refresh == "" {
		return err
	}
	if rerr := c.Refresh(ctx, s); rerr != nil {
		return err
	}
	access, _ = s.tokens()
	return c.do(ctx, method, path, access, body, out)
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	var resp transport.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	s := &Session{UserID: req.UserID}
	s.update(resp)
	return s, nil
}

func (c *Client) Refresh(ctx context.Context, s *Session) error {
	_, refresh := s.tokens()
	var resp transport.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", "", transport.RefreshRequest{RefreshToken: refresh}, &resp); err != nil {
		return err
	}
	s.update(resp)
	return nil
}

func (c *Client) Logout(ctx context.Context, s *Session) error {
	_, refresh := s.tokens()
	return c.do(ctx, http.MethodPost, "/api/auth/logout", "", transport.RefreshRequest{RefreshToken: refresh}, nil)
}

func (c *Client) ListMenus(ctx context.Context, s *Session, userID string) ([]MenuSummary, error) {
	var menus []MenuSummary
	path := "/api/menus?userId=" + url.QueryEscape(userID)
	if err := c.doSession(ctx, s, http.MethodGet, path, nil, &menus); err != nil {
		return nil, err
	}
	return menus, nil
}

func (c *Client) SearchMenus(ctx context.Context, s *Session, userID, query string, page, size int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var resp SearchResponse
	if err := c.doSession(ctx, s, http.MethodGet, "/api/menus/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateMenu(ctx context.Context, s *Session, req CreateMenuRequest) (*CreateMenuResponse, error) {
	var resp CreateMenuResponse
	if err := c.doSession(ctx, s, http.MethodPost, "/api/menus", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetMenuByToken(ctx context.Context, token string) (*MenuResponse, error) {
	var resp MenuResponse
	if err := c.do(ctx, http.MethodGet, "/api/menus/"+url.PathEscape(token), "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateMenu(ctx context.Context, s *Session, id uuid.UUID, req UpdateMenuRequest) (*Menu, error) {
	var menu Menu
	if err := c.doSession(ctx, s, http.MethodPatch, "/api/menus/"+id.String(), req, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

func (c *Client) DeleteMenu(ctx context.Context, s *Session, id uuid.UUID) error {
	return c.doSession(ctx, s, http.MethodDelete, "/api/menus/"+id.String(), nil, nil)
}

// SubmitOrder needs no session; anyone holding the menu id can order.
func (c *Client) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (uuid.UUID, error) {
	var resp transport.SubmitOrderResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", "", req, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.ID, nil
}

func (c *Client) ListOrders(ctx context.Context, s *Session, menuID uuid.UUID) ([]Order, error) {
	var orders []Order
	if err := c.doSession(ctx, s, http.MethodGet, "/api/menus/"+menuID.String()+"/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
