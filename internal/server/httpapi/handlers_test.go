package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/logging"
	"github.com/clockd/clockd/internal/server/config"
	"github.com/clockd/clockd/internal/server/models"
	"github.com/clockd/clockd/internal/server/services"
	"github.com/clockd/clockd/internal/syncapi"
)

type memUserRepo struct {
	byUsername map[string]*models.User
}

func (m *memUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.byUsername[user.Username]; ok {
		return common.ErrorAlreadyExists
	}
	m.byUsername[user.Username] = user
	return nil
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := m.byUsername[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

type memTokenRepo struct {
	tokens map[string]*models.RefreshToken
}

func (m *memTokenRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	m.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiresAt: time.Now().Add(validity)}
	return nil
}

func (m *memTokenRepo) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rt, nil
}

func (m *memTokenRepo) Delete(ctx context.Context, token string) error {
	delete(m.tokens, token)
	return nil
}

type memItemRepo struct {
	byID map[string]*models.Item
}

func (m *memItemRepo) Upsert(ctx context.Context, item *models.Item) error {
	if old, ok := m.byID[item.ItemID]; ok && old.UserID != item.UserID {
		return common.ErrorUnauthorized
	}
	cp := *item
	m.byID[item.ItemID] = &cp
	return nil
}

func (m *memItemRepo) SelectUpdated(ctx context.Context, userID string, since int64) ([]*models.Item, error) {
	var out []*models.Item
	for _, item := range m.byID {
		if item.UserID == userID && item.LastModified > since {
			out = append(out, item)
		}
	}
	return out, nil
}

type memRecordRepo struct {
	byID map[string]*models.Record
}

func (m *memRecordRepo) Upsert(ctx context.Context, record *models.Record) error {
	cp := *record
	m.byID[record.RecordID] = &cp
	return nil
}

func (m *memRecordRepo) SelectUpdated(ctx context.Context, userID string, since int64) ([]*models.Record, error) {
	var out []*models.Record
	for _, record := range m.byID {
		if record.UserID == userID && record.LastModified > since {
			out = append(out, record)
		}
	}
	return out, nil
}

type testEnv struct {
	srv   *httptest.Server
	items *memItemRepo
}

func setupAPI(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	users := services.NewUserService(
		&memUserRepo{byUsername: map[string]*models.User{}},
		&memTokenRepo{tokens: map[string]*models.RefreshToken{}},
		cfg,
	)
	items := &memItemRepo{byID: map[string]*models.Item{}}
	sync := services.NewSyncService(items, &memRecordRepo{byID: map[string]*models.Record{}})
	logger := logging.NewJSON(io.Discard)

	srv := httptest.NewServer(NewRouter(cfg, users, sync, logger))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, items: items}
}

func (e *testEnv) post(t *testing.T, path, token string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) registerAndLogin(t *testing.T, username string) syncapi.TokenResponse {
	t.Helper()
	resp := e.post(t, "/api/auth/register", "", syncapi.RegisterRequest{Username: username, Password: "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = e.post(t, "/api/auth/login", "", syncapi.LoginRequest{Username: username, Password: "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[syncapi.TokenResponse](t, resp)
}

func TestPing(t *testing.T) {
	env := setupAPI(t)
	resp := env.get(t, "/api/ping", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[syncapi.PingResponse](t, resp).Status)
}

func TestRegister_Validation(t *testing.T) {
	env := setupAPI(t)
	resp := env.post(t, "/api/auth/register", "", syncapi.RegisterRequest{Username: "", Password: ""})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_Duplicate(t *testing.T) {
	env := setupAPI(t)
	env.registerAndLogin(t, "alice")

	resp := env.post(t, "/api/auth/register", "", syncapi.RegisterRequest{Username: "alice", Password: "x"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := setupAPI(t)
	env.registerAndLogin(t, "alice")

	resp := env.post(t, "/api/auth/login", "", syncapi.LoginRequest{Username: "alice", Password: "wrong"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefresh_Rotation(t *testing.T) {
	env := setupAPI(t)
	tokens := env.registerAndLogin(t, "alice")

	resp := env.post(t, "/api/auth/refresh", "", syncapi.RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	next := decode[syncapi.TokenResponse](t, resp)
	assert.Equal(t, tokens.UserID, next.UserID)
	assert.NotEqual(t, tokens.RefreshToken, next.RefreshToken)

	// the rotated-out token is dead
	resp = env.post(t, "/api/auth/refresh", "", syncapi.RefreshRequest{RefreshToken: tokens.RefreshToken})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestItems_RequireAuth(t *testing.T) {
	env := setupAPI(t)

	resp := env.get(t, "/api/items", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.get(t, "/api/items", "garbage")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPushAndFetchItems(t *testing.T) {
	env := setupAPI(t)
	tokens := env.registerAndLogin(t, "alice")

	resp := env.post(t, "/api/items", tokens.AccessToken, syncapi.PushItemsRequest{
		Items: []syncapi.Item{{ItemID: "i1", Name: "Reading", ClockInCount: 2, LastModified: 1}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pushed := decode[syncapi.PushItemsResponse](t, resp)
	require.Len(t, pushed.Items, 1)
	assert.Equal(t, tokens.UserID, pushed.Items[0].UserID)
	assert.Greater(t, pushed.Items[0].LastModified, int64(1), "server stamps its own clock")

	resp = env.get(t, "/api/items?since=0", tokens.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[syncapi.FetchItemsResponse](t, resp)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, "i1", fetched.Items[0].ItemID)

	// nothing changed after the push stamp
	resp = env.get(t, "/api/items?since="+strconv.FormatInt(pushed.Items[0].LastModified, 10), tokens.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched = decode[syncapi.FetchItemsResponse](t, resp)
	assert.Empty(t, fetched.Items)
}

func TestFetchItems_BadSince(t *testing.T) {
	env := setupAPI(t)
	tokens := env.registerAndLogin(t, "alice")

	resp := env.get(t, "/api/items?since=abc", tokens.AccessToken)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFetchItems_ScopedToUser(t *testing.T) {
	env := setupAPI(t)
	alice := env.registerAndLogin(t, "alice")
	bob := env.registerAndLogin(t, "bob")

	resp := env.post(t, "/api/items", alice.AccessToken, syncapi.PushItemsRequest{
		Items: []syncapi.Item{{ItemID: "i1", Name: "Reading"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.get(t, "/api/items?since=0", bob.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[syncapi.FetchItemsResponse](t, resp)
	assert.Empty(t, fetched.Items)
}

func TestPushItems_ForeignIDRejected(t *testing.T) {
	env := setupAPI(t)
	alice := env.registerAndLogin(t, "alice")
	bob := env.registerAndLogin(t, "bob")

	resp := env.post(t, "/api/items", alice.AccessToken, syncapi.PushItemsRequest{
		Items: []syncapi.Item{{ItemID: "i1", Name: "Reading"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.post(t, "/api/items", bob.AccessToken, syncapi.PushItemsRequest{
		Items: []syncapi.Item{{ItemID: "i1", Name: "Hijack"}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPushAndFetchRecords(t *testing.T) {
	env := setupAPI(t)
	tokens := env.registerAndLogin(t, "alice")

	resp := env.post(t, "/api/records", tokens.AccessToken, syncapi.PushRecordsRequest{
		Records: []syncapi.Record{{RecordID: "r1", ItemID: "i1", Timestamp: 100, Deleted: true}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pushed := decode[syncapi.PushRecordsResponse](t, resp)
	require.Len(t, pushed.Records, 1)
	assert.True(t, pushed.Records[0].Deleted, "tombstones travel like any other document")

	resp = env.get(t, "/api/records?since=0", tokens.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[syncapi.FetchRecordsResponse](t, resp)
	require.Len(t, fetched.Records, 1)
	assert.Equal(t, "r1", fetched.Records[0].RecordID)
}
