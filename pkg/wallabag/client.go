package wallabag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
)

// Client talks to a wallabag server over its JSON REST API.
// The server base URL is configuration, not a constant, so any
// deployment can be targeted.
type Client struct {
	baseURL string
	perPage int
	client  *http.Client
}

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	PerPage int
}

// New creates a wallabag API client
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PerPage == 0 {
		cfg.PerPage = 30
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		perPage: cfg.PerPage,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// tokenResponse is the success payload of the oauth token endpoint
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// oauthError is the failure payload of the oauth token endpoint
type oauthError struct {
	Err         string `json:"error"`
	Description string `json:"error_description"`
}

// Auth performs the oauth password grant and returns a bearer token.
// The success and failure payloads are decoded separately depending on the
// response status, so no runtime probing of an ambiguous shape is needed.
// Returns *AuthError when the server rejects the request; no retry.
func (c *Client) Auth(ctx context.Context, creds domain.Credentials) (*domain.Token, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":    "password",
		"client_id":     creds.ClientID,
		"client_secret": creds.ClientSecret,
		"username":      creds.Username,
		"password":      creds.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/v2/token", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post token request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var oe oauthError
		if err := json.Unmarshal(data, &oe); err != nil || oe.Err == "" {
			return nil, &AuthError{Code: resp.StatusCode}
		}
		return nil, &AuthError{Code: resp.StatusCode, Err: oe.Err, Description: oe.Description}
	}

	var tr tokenResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, &AuthError{Code: resp.StatusCode, Err: "empty access token"}
	}

	lgr.Printf("[DEBUG] authenticated with %s, token expires in %ds", c.baseURL, tr.ExpiresIn)
	return &domain.Token{
		AccessToken:  tr.AccessToken,
		ExpiresIn:    tr.ExpiresIn,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}, nil
}

// FetchEntries retrieves all entries, walking every page of the paginated
// listing in order. Returns *FetchError on non-success or malformed
// responses; no retry.
func (c *Client) FetchEntries(ctx context.Context, token *domain.Token) ([]domain.Entry, error) {
	var entries []domain.Entry

	page, pages := 1, 1
	for page <= pages {
		ep, err := c.fetchPage(ctx, token, page)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ep.Entries...)
		pages = ep.Pages
		page++
	}

	lgr.Printf("[DEBUG] fetched %d entries in %d pages from %s", len(entries), pages, c.baseURL)
	return entries, nil
}

// fetchPage retrieves one page of the entries listing
func (c *Client) fetchPage(ctx context.Context, token *domain.Token, page int) (*domain.EntryPage, error) {
	url := fmt.Sprintf("%s/api/entries.json?page=%d&perPage=%d", c.baseURL, page, c.perPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create entries request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{Code: resp.StatusCode, Reason: strings.TrimSpace(string(body))}
	}

	var wp wirePage
	if err := json.NewDecoder(resp.Body).Decode(&wp); err != nil {
		return nil, &FetchError{Reason: fmt.Sprintf("decode entries page %d: %v", page, err)}
	}

	ep := &domain.EntryPage{
		Page:    wp.Page,
		Pages:   wp.Pages,
		Limit:   wp.Limit,
		Entries: make([]domain.Entry, 0, len(wp.Embedded.Items)),
	}
	for _, item := range wp.Embedded.Items {
		ep.Entries = append(ep.Entries, item.toDomain())
	}
	return ep, nil
}
