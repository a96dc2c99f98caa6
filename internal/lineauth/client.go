package lineauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrInvalidIDToken = errors.New("invalid id token")

// Profile is the subset of verified ID-token claims used at login.
type Profile struct {
	Issuer   string `json:"iss"`
	Subject  string `json:"sub"`
	Audience string `json:"aud"`
	Expires  int64  `json:"exp"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}

type Client struct {
	verifyURL  string
	channelID  string
	httpClient *http.Client
}

func NewClient(verifyURL, channelID string) *Client {
	return &Client{
		verifyURL: verifyURL,
		channelID: channelID,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Verify asks the LINE platform to validate idToken for this channel.
func (c *Client) Verify(ctx context.Context, idToken string) (*Profile, error) {
	form := url.Values{}
	form.Set("id_token", idToken)
	form.Set("client_id", c.channelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		var e struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, fmt.Errorf("%w: %s", ErrInvalidIDToken, e.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify failed with status: %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if p.Audience != c.channelID {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidIDToken)
	}
	return &p, nil
}
