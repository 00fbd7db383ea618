package mockbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusorient/discovery-sync/config"
	"github.com/campusorient/discovery-sync/internal/domain/model"
)

func testConfig() config.MockBackendConfig {
	return config.MockBackendConfig{
		Addr:      ":0",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		RateLimit: 0,
	}
}

func newBackend(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(testConfig(), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func seedUser(t *testing.T, srv *Server) model.User {
	t.Helper()
	user, err := srv.Store().CreateUser(model.User{
		Username:      "amina",
		Email:         "amina@example.com",
		FirstName:     "Amina",
		LastName:      "Diallo",
		Role:          model.RoleUser,
		SavedPrograms: []int64{1, 2, 3},
	}, "password123")
	require.NoError(t, err)
	return user
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func loginToken(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, ts.URL+"/auth/login", map[string]string{
		"email":    "amina@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func authedRequest(t *testing.T, method, url, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestServer_LoginAndProfile(t *testing.T) {
	t.Parallel()

	srv, ts := newBackend(t)
	seedUser(t, srv)

	token := loginToken(t, ts)

	resp := authedRequest(t, http.MethodGet, ts.URL+"/auth/profile", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "amina@example.com", body["email"])
	assert.Equal(t, "Amina", body["first_name"])
}

func TestServer_LoginBadCredentials(t *testing.T) {
	t.Parallel()

	srv, ts := newBackend(t)
	seedUser(t, srv)

	for _, creds := range []map[string]string{
		{"email": "amina@example.com", "password": "wrong"},
		{"email": "nobody@example.com", "password": "password123"},
	} {
		resp := postJSON(t, ts.URL+"/auth/login", creds)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		// Unknown user and bad password answer identically.
		assert.Equal(t, "Invalid credentials", body["message"])
	}
}

func TestServer_Register(t *testing.T) {
	t.Parallel()

	_, ts := newBackend(t)

	resp := postJSON(t, ts.URL+"/auth/register", map[string]string{
		"first_name":            "Jean",
		"last_name":             "Dupont",
		"email":                 "jean.dupont@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["access_token"])
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	assert.Equal(t, "jean.dupont", user["username"])
}

func TestServer_RegisterValidation(t *testing.T) {
	t.Parallel()

	_, ts := newBackend(t)

	resp := postJSON(t, ts.URL+"/auth/register", map[string]string{
		"email":                 "",
		"password":              "short",
		"password_confirmation": "different",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	fields, _ := body["errors"].(map[string]any)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "password_confirmation")
}

func TestServer_RegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	srv, ts := newBackend(t)
	seedUser(t, srv)

	resp := postJSON(t, ts.URL+"/auth/register", map[string]string{
		"email":                 "amina@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "User already exists", body["message"])
}

func TestServer_RequireAuth(t *testing.T) {
	t.Parallel()

	_, ts := newBackend(t)

	resp, err := http.Get(ts.URL + "/auth/profile")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "No token provided", body["message"])

	resp = authedRequest(t, http.MethodGet, ts.URL+"/auth/profile", "not-a-jwt", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "Invalid token", body["message"])
}

func TestServer_ListUniversitiesPagination(t *testing.T) {
	t.Parallel()

	srv, ts := newBackend(t)
	total := len(srv.Store().Universities())
	require.Greater(t, total, 2)

	resp, err := http.Get(ts.URL + "/universities/?page=2&limit=2")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(total), body["count"])
	results, _ := body["results"].([]any)
	assert.Len(t, results, min(2, total-2))
}

func TestServer_GetUniversityNotFound(t *testing.T) {
	t.Parallel()

	_, ts := newBackend(t)

	resp, err := http.Get(ts.URL + "/universities/999/")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "University not found", body["message"])
}

func TestServer_ListProgramsFiltered(t *testing.T) {
	t.Parallel()

	srv, ts := newBackend(t)

	resp, err := http.Get(ts.URL + "/programs/?level=master")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	results, _ := body["results"].([]any)
	require.NotEmpty(t, results)
	for _, item := range results {
		p, _ := item.(map[string]any)
		assert.Equal(t, "master", p["degree_level"])
	}

	// Sanity: the filter actually narrowed the catalog.
	assert.Less(t, len(results), len(srv.Store().Programs()))
}

func TestServer_GlobalSearch(t *testing.T) {
	t.Parallel()

	_, ts := newBackend(t)

	resp, err := http.Get(ts.URL + "/search/global?q=informatique")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	_, hasU := body["universities"].([]any)
	programs, hasP := body["programs"].([]any)
	assert.True(t, hasU)
	assert.True(t, hasP)
	require.NotEmpty(t, programs)

	metadata, _ := body["metadata"].(map[string]any)
	require.NotNil(t, metadata)
	filters, _ := metadata["filters_available"].(map[string]any)
	require.NotNil(t, filters)
	assert.Contains(t, filters, "degree_levels")
	assert.Contains(t, filters, "tuition_range")
}

func TestServer_UpdateProfilePartialEcho(t *testing.T) {
	t.Parallel()

	srv, ts := newBackend(t)
	seedUser(t, srv)
	token := loginToken(t, ts)

	body := strings.NewReader(`{"first_name": "Aminata", "role": "admin"}`)
	resp := authedRequest(t, http.MethodPatch, ts.URL+"/auth/profile/update", token, body, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	echo := decodeBody(t, resp)
	assert.Equal(t, "Aminata", echo["first_name"])
	// Identity block always comes back; untouched fields do not.
	assert.Contains(t, echo, "id")
	assert.Contains(t, echo, "email")
	assert.NotContains(t, echo, "saved_programs")
	assert.NotContains(t, echo, "last_name")
	// The whitelisted patch dropped the role escalation.
	assert.Equal(t, "user", echo["role"])
}

func TestServer_UpdateProfileEmptyFirstName(t *testing.T) {
	t.Parallel()

	srv, ts := newBackend(t)
	seedUser(t, srv)
	token := loginToken(t, ts)

	body := strings.NewReader(`{"first_name": ""}`)
	resp := authedRequest(t, http.MethodPut, ts.URL+"/auth/profile/update", token, body, "application/json")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	out := decodeBody(t, resp)
	fields, _ := out["errors"].(map[string]any)
	assert.Contains(t, fields, "first_name")
}

func multipartFile(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestServer_TranscriptUploadAndDelete(t *testing.T) {
	t.Parallel()

	srv, ts := newBackend(t)
	seedUser(t, srv)
	token := loginToken(t, ts)

	body, contentType := multipartFile(t, "file", "releve.pdf", "pdf-bytes")
	resp := authedRequest(t, http.MethodPost, ts.URL+"/auth/profile/transcript-upload", token, body, contentType)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decodeBody(t, resp)
	file, _ := out["file"].(map[string]any)
	require.NotNil(t, file)
	assert.Equal(t, "releve.pdf", file["name"])
	fileURL, _ := file["url"].(string)
	require.NotEmpty(t, fileURL)

	del := strings.NewReader(fmt.Sprintf(`{"file_url": %q}`, fileURL))
	resp = authedRequest(t, http.MethodDelete, ts.URL+"/auth/profile/transcript-delete", token, del, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Deleting the same URL again is a 404.
	del = strings.NewReader(fmt.Sprintf(`{"file_url": %q}`, fileURL))
	resp = authedRequest(t, http.MethodDelete, ts.URL+"/auth/profile/transcript-delete", token, del, "application/json")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_TranscriptDeleteRequiresURL(t *testing.T) {
	t.Parallel()

	srv, ts := newBackend(t)
	seedUser(t, srv)
	token := loginToken(t, ts)

	resp := authedRequest(t, http.MethodDelete, ts.URL+"/auth/profile/transcript-delete", token,
		strings.NewReader(`{}`), "application/json")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}
