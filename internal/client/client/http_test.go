package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockd/clockd/internal/client/models"
	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/syncapi"
)

func TestLogin_StoresTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		var req syncapi.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)

		json.NewEncoder(w).Encode(syncapi.TokenResponse{
			UserID: "u1", AccessToken: "at", RefreshToken: "rt",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	userID, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "at", c.accessToken)
	assert.Equal(t, "rt", c.refreshToken)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(syncapi.PingResponse{Status: "ok"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   syncapi.ErrorResponse
		want   error
	}{
		{"conflict", http.StatusConflict, syncapi.ErrorResponse{Error: "already exists"}, common.ErrorAlreadyExists},
		{"unauthorized", http.StatusUnauthorized, syncapi.ErrorResponse{Error: "unauthorized"}, common.ErrorUnauthorized},
		{"not found", http.StatusNotFound, syncapi.ErrorResponse{Error: "not found"}, common.ErrorNotFound},
		{"bad gateway", http.StatusBadGateway, syncapi.ErrorResponse{}, common.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL)
			err := c.Register(context.Background(), "alice", "secret")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnreachableServerIsUnavailable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1")
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestExpiredTokenRefreshedAndRetried(t *testing.T) {
	var itemCalls, refreshCalls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh":
			refreshCalls++
			var req syncapi.RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "rt-old", req.RefreshToken)
			json.NewEncoder(w).Encode(syncapi.TokenResponse{
				UserID: "u1", AccessToken: "at-new", RefreshToken: "rt-new",
			})
		case "/api/items":
			itemCalls++
			if r.Header.Get("Authorization") != "Bearer at-new" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(syncapi.ErrorResponse{Error: common.ErrTokenExpired.Error()})
				return
			}
			json.NewEncoder(w).Encode(syncapi.FetchItemsResponse{
				Items: []syncapi.Item{{ItemID: "i1", UserID: "u1", Name: "Reading", LastModified: 42}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.accessToken = "at-old"
	c.refreshToken = "rt-old"

	items, err := c.FetchItemsSince(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "i1", items[0].ItemID)

	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, 2, itemCalls)
	assert.Equal(t, "rt-new", c.refreshToken)
}

func TestPushItems_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req syncapi.PushItemsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 1)

		// the server stamps its own clock
		req.Items[0].LastModified = 5000
		json.NewEncoder(w).Encode(syncapi.PushItemsResponse{Items: req.Items})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	stamped, err := c.PushItems(context.Background(), []*models.Item{
		{ItemID: "i1", UserID: "u1", Name: "Reading", LastModified: 100},
	})
	require.NoError(t, err)
	require.Len(t, stamped, 1)
	assert.Equal(t, int64(5000), stamped[0].LastModified)
}
