package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	credentials "vault/internal/auth"
	"vault/internal/repository/memory"
	authsvc "vault/internal/service/auth"
	docsysService "vault/internal/service/docsystem"
	"vault/internal/service/docsystem/converter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore()
	userRepo := memory.NewUserRepository(store)
	docRepo := memory.NewDocumentRepository(store)
	tagRepo := memory.NewTagRepository(store)
	tx := memory.NewTransactionManager(store)

	tokens, err := credentials.NewJWTTokenIssuer("0123456789abcdef0123456789abcdef", 15*time.Minute, 7*24*time.Hour, logger)
	require.NoError(t, err)
	sessions := authsvc.NewSessionService(userRepo, credentials.NewBcryptCredentialStore(bcrypt.MinCost), tokens, logger)

	authorizer := authsvc.NewOwnerBasedAuthorizer(docRepo, tagRepo)
	reconciler := docsysService.NewTagReconciler(tagRepo, tx, logger)
	docs := docsysService.NewDocumentService(docRepo, tagRepo, tx, reconciler, authorizer, converter.NewMarkdownRenderer(), logger)

	mux := NewRouter(RouterConfig{
		Auth:          NewAuthHandler(sessions, CookieConfig{Secure: true, MaxAge: 7 * 24 * time.Hour}, logger),
		Documents:     NewDocumentHandler(docs, logger),
		Tags:          NewTagHandler(docsysService.NewTagService(tagRepo, authorizer, logger), logger),
		Import:        NewImportHandler(docsysService.NewImportService(docs, converter.NewConverterRegistry(), logger), logger),
		System:        NewSystemHandler(docs, "test", "test"),
		Authenticator: sessions,
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func (c *apiClient) do(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	c.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.send(req)
}

func (c *apiClient) send(req *http.Request) (*http.Response, map[string]interface{}) {
	c.t.Helper()

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (c *apiClient) register(username string) {
	c.t.Helper()
	resp, body := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    username + "@x.com",
		"username": username,
		"password": "Passw0rd",
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)
	c.token = body["tokens"].(map[string]interface{})["access_token"].(string)
}

func (c *apiClient) createDocument(title string, tags ...string) string {
	c.t.Helper()
	resp, body := c.do(http.MethodPost, "/api/v1/documents", map[string]interface{}{
		"title":   title,
		"content": "Some **content**",
		"tags":    tags,
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func TestHealth(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}

	resp, body := client.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["environment"])
}

func TestAliceScenario(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}

	resp, body := client.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "alice@x.com", "username": "alice", "password": "Passw0rd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password_hash")

	resp, body = client.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "alice@x.com", "password": "Passw0rd",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tokens := body["tokens"].(map[string]interface{})
	assert.Equal(t, "bearer", tokens["token_type"])
	client.token = tokens["access_token"].(string)

	resp, body = client.do(http.MethodPost, "/api/v1/documents", map[string]interface{}{
		"title": "Note A",
		"tags":  []string{"idea", "draft"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)

	resp, body = client.do(http.MethodGet, "/api/v1/documents?query=Note", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, []interface{}{"draft", "idea"}, items[0].(map[string]interface{})["tags"])

	resp, _ = client.do(http.MethodPost, "/api/v1/documents/"+id+"/archive", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = client.do(http.MethodGet, "/api/v1/documents", nil)
	assert.EqualValues(t, 0, body["total"])
	assert.Empty(t, body["items"])

	_, body = client.do(http.MethodGet, "/api/v1/documents?is_archived=true", nil)
	assert.EqualValues(t, 1, body["total"])
}

func TestRegisterErrors(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}
	client.register("alice")

	resp, body := client.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "ALICE@x.com", "username": "other", "password": "Passw0rd",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", body["code"])
	assert.Equal(t, "email", body["field"])

	resp, body = client.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "not-an-email", "username": "x", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "validation_error", body["code"])
	assert.Len(t, body["errors"], 3)

	resp, body = client.do(http.MethodPost, "/api/v1/auth/register", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad_request", body["code"])
}

func TestLoginFailuresMatch(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}
	client.register("alice")

	wrongPassword, wrongBody := client.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "alice@x.com", "password": "Wrong0000",
	})
	unknownEmail, unknownBody := client.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "nobody@x.com", "password": "Passw0rd",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	assert.Equal(t, wrongBody["detail"], unknownBody["detail"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}

	resp, body := client.do(http.MethodGet, "/api/v1/documents", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	assert.Equal(t, "unauthorized", body["code"])

	client.token = "garbage"
	resp, _ = client.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshFromCookie(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}
	resp, _ := client.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "alice@x.com", "username": "alice", "password": "Passw0rd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var refresh *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == RefreshCookieName {
			refresh = cookie
		}
	}
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)
	assert.True(t, refresh.Secure)
	assert.Equal(t, "/api/v1/auth", refresh.Path)

	req, err := http.NewRequest(http.MethodPost, client.server.URL+"/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: refresh.Value})
	resp, body := client.send(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])

	// An access token is not accepted as a refresh token
	resp, _ = client.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"refresh_token": body["access_token"].(string)})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = client.do(http.MethodPost, "/api/v1/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfileAndPassword(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}
	client.register("alice")

	resp, body := client.do(http.MethodPatch, "/api/v1/auth/me", map[string]interface{}{
		"username": "Alice_2",
		"settings": map[string]string{"theme": "dark"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice_2", body["username"])

	resp, body = client.do(http.MethodPost, "/api/v1/auth/password", map[string]string{
		"old_password": "nope", "new_password": "N3wPassword",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "bad_request", body["code"])

	resp, _ = client.do(http.MethodPost, "/api/v1/auth/password", map[string]string{
		"old_password": "Passw0rd", "new_password": "N3wPassword",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = client.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDocumentOwnership(t *testing.T) {
	server := newTestServer(t)
	alice := &apiClient{t: t, server: server}
	alice.register("alice")
	bob := &apiClient{t: t, server: server}
	bob.register("bob")

	id := alice.createDocument("private")

	resp, body := bob.do(http.MethodGet, "/api/v1/documents/"+id, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", body["code"])

	resp, _ = bob.do(http.MethodDelete, "/api/v1/documents/"+id, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = alice.do(http.MethodGet, "/api/v1/documents/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["code"])

	malformed := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/documents/abc"},
		{http.MethodPost, "/api/v1/documents/abc/archive"},
		{http.MethodDelete, "/api/v1/tags/abc"},
	}
	for _, tt := range malformed {
		resp, body = alice.do(tt.method, tt.path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tt.path)
		assert.Equal(t, "not_found", body["code"], tt.path)
	}

	resp, _ = alice.do(http.MethodDelete, "/api/v1/documents/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestUpdateDocumentClearsSourceURL(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}
	client.register("alice")

	resp, body := client.do(http.MethodPost, "/api/v1/documents", map[string]interface{}{
		"title":      "Link",
		"source_url": "https://example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)

	resp, body = client.do(http.MethodPatch, "/api/v1/documents/"+id, `{"title":"Renamed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", body["title"])
	assert.Equal(t, "https://example.com", body["source_url"])

	resp, body = client.do(http.MethodPatch, "/api/v1/documents/"+id, `{"source_url":null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["source_url"])

	resp, body = client.do(http.MethodPatch, "/api/v1/documents/"+id, `{"title":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "validation_error", body["code"])
}

func TestListDocumentsQueryParams(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}
	client.register("alice")

	for _, title := range []string{"c", "a", "b"} {
		client.createDocument(title, "shared")
	}
	client.createDocument("lonely")

	resp, body := client.do(http.MethodGet, "/api/v1/documents?tags=shared&sort_by=title&sort_order=asc&limit=2&page=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 2, body["pages"])
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].(map[string]interface{})["title"])

	resp, body = client.do(http.MethodGet, "/api/v1/documents?is_pinned=maybe&page=zero&date_from=yesterday", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, body["errors"], 3)

	resp, _ = client.do(http.MethodGet, "/api/v1/documents?limit=500", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = client.do(http.MethodGet, "/api/v1/documents?page=100000000000000000&limit=100", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, body["errors"], 1)

	resp, _ = client.do(http.MethodGet, "/api/v1/documents?date_from=2020-01-01&sort_by=bogus", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTagsAndStats(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}
	client.register("alice")
	id := client.createDocument("tagged", "Work", "work ")

	resp, _ := client.do(http.MethodPost, "/api/v1/documents/"+id+"/pin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, client.server.URL+"/api/v1/tags", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+client.token)
	raw, err := client.server.Client().Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	var tags []map[string]interface{}
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&tags))
	require.Len(t, tags, 1)
	assert.Equal(t, "work", tags[0]["name"])
	tagID := tags[0]["id"].(string)

	resp, body := client.do(http.MethodPatch, "/api/v1/tags/"+tagID, map[string]string{"color": "blue"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, body["errors"], 1)

	resp, body = client.do(http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["documents_count"])
	assert.EqualValues(t, 1, body["pinned_count"])
	assert.EqualValues(t, 1, body["tags_count"])

	resp, _ = client.do(http.MethodDelete, "/api/v1/tags/"+tagID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestImport(t *testing.T) {
	client := &apiClient{t: t, server: newTestServer(t)}
	client.register("alice")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for name, content := range map[string]string{
		"one.md":    "---\ntitle: First\ntags: [imported]\n---\nhello",
		"notes.exe": "binary",
	} {
		part, err := form.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	req, err := http.NewRequest(http.MethodPost, client.server.URL+"/api/v1/documents/import", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+client.token)

	resp, body := client.send(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	summary := body["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["created"])
	assert.EqualValues(t, 1, summary["failed"])

	resp, _ = client.do(http.MethodPost, "/api/v1/documents/import", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
