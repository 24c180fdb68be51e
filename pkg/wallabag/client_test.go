package wallabag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
)

func TestClient_Auth(t *testing.T) {
	t.Run("successful authentication", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/oauth/v2/token", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "password", body["grant_type"])
			assert.Equal(t, "my-client", body["client_id"])
			assert.Equal(t, "my-secret", body["client_secret"])
			assert.Equal(t, "alice", body["username"])
			assert.Equal(t, "s3cret", body["password"])

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"tok123","expires_in":3600,"refresh_token":"ref456","token_type":"bearer"}`)
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		token, err := client.Auth(context.Background(), domain.Credentials{
			ClientID: "my-client", ClientSecret: "my-secret", Username: "alice", Password: "s3cret",
		})
		require.NoError(t, err)
		assert.Equal(t, "tok123", token.AccessToken)
		assert.Equal(t, 3600, token.ExpiresIn)
		assert.Equal(t, "ref456", token.RefreshToken)
		assert.Equal(t, "bearer", token.TokenType)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Invalid username and password combination"}`)
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		token, err := client.Auth(context.Background(), domain.Credentials{Username: "alice", Password: "wrong"})
		require.Error(t, err)
		assert.Nil(t, token)

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusBadRequest, authErr.Code)
		assert.Equal(t, "invalid_grant", authErr.Err)
		assert.Contains(t, err.Error(), "authentication failed: Invalid username and password combination")
	})

	t.Run("non-json error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream exploded")
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		_, err := client.Auth(context.Background(), domain.Credentials{})
		require.Error(t, err)

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusBadGateway, authErr.Code)
	})

	t.Run("missing access token in payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"token_type":"bearer"}`)
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		_, err := client.Auth(context.Background(), domain.Credentials{})
		require.Error(t, err)

		var authErr *AuthError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL, Timeout: 10 * time.Millisecond})
		_, err := client.Auth(context.Background(), domain.Credentials{})
		require.Error(t, err)
	})
}

func TestClient_FetchEntries(t *testing.T) {
	t.Run("single page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/entries.json", r.URL.Path)
			assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))

			fmt.Fprint(w, `{
				"page": 1, "pages": 1, "limit": 30,
				"_embedded": {"items": [
					{"id": 1, "title": "First", "url": "https://example.com/1", "domain_name": "example.com",
					 "created_at": "2023-05-01T10:00:00+0200", "content": "<p>Hello</p>",
					 "tags": ["TO_READ"], "is_archived": 0, "is_starred": 1},
					{"id": 2, "title": "Second", "url": "https://example.com/2", "domain_name": "example.com",
					 "created_at": "2023-05-02T11:30:00+0200", "content": "<p>World</p>",
					 "tags": [], "is_archived": 1, "is_starred": 0}
				]}
			}`)
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		entries, err := client.FetchEntries(context.Background(), &domain.Token{AccessToken: "tok123"})
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, int64(1), entries[0].ID)
		assert.Equal(t, "First", entries[0].Title)
		assert.Equal(t, "https://example.com/1", entries[0].URL)
		assert.Equal(t, "example.com", entries[0].Domain)
		assert.Equal(t, "<p>Hello</p>", entries[0].Content)
		assert.Equal(t, []string{"TO_READ"}, entries[0].Tags)
		assert.False(t, entries[0].Archived)
		assert.True(t, entries[0].Starred)
		assert.False(t, entries[0].CreatedAt.IsZero())

		assert.True(t, entries[1].Archived)
		assert.False(t, entries[1].Starred)
	})

	t.Run("multiple pages accumulated in order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page := r.URL.Query().Get("page")
			assert.Equal(t, "10", r.URL.Query().Get("perPage"))
			switch page {
			case "1":
				fmt.Fprint(w, `{"page":1,"pages":3,"limit":10,"_embedded":{"items":[{"id":1,"title":"a"}]}}`)
			case "2":
				fmt.Fprint(w, `{"page":2,"pages":3,"limit":10,"_embedded":{"items":[{"id":2,"title":"b"}]}}`)
			case "3":
				fmt.Fprint(w, `{"page":3,"pages":3,"limit":10,"_embedded":{"items":[{"id":3,"title":"c"}]}}`)
			default:
				t.Errorf("unexpected page request: %s", page)
			}
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL, PerPage: 10})
		entries, err := client.FetchEntries(context.Background(), &domain.Token{AccessToken: "tok"})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{entries[0].ID, entries[1].ID, entries[2].ID})
	})

	t.Run("tag objects accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"page":1,"pages":1,"limit":30,"_embedded":{"items":[
				{"id":1,"title":"tagged","tags":[{"id":5,"label":"golang","slug":"golang"},{"id":6,"label":"TO_READ","slug":"to-read"}]}
			]}}`)
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		entries, err := client.FetchEntries(context.Background(), &domain.Token{AccessToken: "tok"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, []string{"golang", "TO_READ"}, entries[0].Tags)
	})

	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"access_denied"}`)
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		entries, err := client.FetchEntries(context.Background(), &domain.Token{AccessToken: "bad"})
		require.Error(t, err)
		assert.Nil(t, entries)

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusUnauthorized, fetchErr.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "not json at all")
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		entries, err := client.FetchEntries(context.Background(), &domain.Token{AccessToken: "tok"})
		require.Error(t, err)
		assert.Nil(t, entries)

		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("connection refused", func(t *testing.T) {
		client := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: 100 * time.Millisecond})
		entries, err := client.FetchEntries(context.Background(), &domain.Token{AccessToken: "tok"})
		require.Error(t, err)
		assert.Nil(t, entries)

		var fetchErr *FetchError
		assert.True(t, errors.As(err, &fetchErr))
	})
}
