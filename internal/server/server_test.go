package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/artpar/portfolio/internal/auth"
	authsqlite "github.com/artpar/portfolio/internal/auth/sqlite"
	"github.com/artpar/portfolio/internal/blob"
	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/content/sqlite"
	"github.com/artpar/portfolio/internal/portfolio"
	"github.com/artpar/portfolio/internal/star"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@site.io"
	adminPassword = "correct horse"
)

type harness struct {
	srv   *Server
	svc   *portfolio.Service
	store *sqlite.Store
	token string
}

func newHarness(t *testing.T, opts ...ConfigOption) *harness {
	t.Helper()
	store, err := sqlite.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	authStore, err := authsqlite.NewWithDB(store.DB())
	require.NoError(t, err)
	authSvc := auth.NewService(authStore, auth.WithBcryptCost(bcrypt.MinCost))
	_, err = authSvc.CreateUser(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	settings := portfolio.DefaultSettings()
	settings.PrivatePassword = "open-sesame"
	svc := portfolio.New(store,
		portfolio.WithBlobStore(blob.NewMemoryStore("https://cdn.test")),
		portfolio.WithSettings(settings))

	h := &harness{srv: New(svc, authSvc, nil, nil, opts...), svc: svc, store: store}
	h.token = h.signIn(t)
	return h
}

func (h *harness) signIn(t *testing.T) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/auth/sign-in", "", jsonBody(t, map[string]string{
		"email": adminEmail, "password": adminPassword,
	}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func (h *harness) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (h *harness) admin(t *testing.T, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if v != nil {
		body = jsonBody(t, v)
	}
	return h.do(t, method, path, h.token, body, "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func multipartItem(t *testing.T, categoryID string, tagIDs ...string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("category_id", categoryID))
	for _, id := range tagIDs {
		require.NoError(t, mw.WriteField("tag_ids", id))
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="thumb.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAdmin_RequiresSession(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/admin/categories", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/admin/categories", "bogus", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/auth/session", h.token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, adminEmail, decode[auth.Session](t, rec).Email)

	rec = h.do(t, http.MethodPost, "/api/auth/sign-out", h.token, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/admin/categories", h.token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignIn_BadPassword(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/auth/sign-in", "", jsonBody(t, map[string]string{
		"email": adminEmail, "password": "wrong",
	}), "application/json")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode[errorBody](t, rec).Error)
}

func TestCategoriesAndItems(t *testing.T) {
	h := newHarness(t)

	rec := h.admin(t, http.MethodPost, "/api/admin/categories", portfolio.CategoryInput{Name: "Gaming"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cat := decode[content.Category](t, rec)
	assert.Equal(t, "gaming", cat.Slug)

	rec = h.admin(t, http.MethodPost, "/api/admin/tags", portfolio.TagInput{Name: "Minecraft"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tag := decode[content.Tag](t, rec)

	body, ct := multipartItem(t, cat.ID, tag.ID)
	rec = h.do(t, http.MethodPost, "/api/admin/items", h.token, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[content.Item](t, rec)
	assert.Equal(t, content.FileImage, item.FileType)

	rec = h.do(t, http.MethodGet, "/api/categories", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]content.Category](t, rec), 1)

	rec = h.do(t, http.MethodGet, "/api/items?category=gaming&q=minecraft", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode[portfolio.Gallery](t, rec)
	require.Len(t, g.Items, 1)
	assert.Equal(t, item.ID, g.Items[0].ID)
	assert.Equal(t, []string{"Minecraft"}, g.Items[0].TagNames())

	rec = h.do(t, http.MethodPost, "/api/items/"+item.ID+"/click", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[countBody](t, rec).Count)

	rec = h.do(t, http.MethodPost, "/api/items/missing/click", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.admin(t, http.MethodPost, "/api/admin/items/"+item.ID+"/star", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[portfolio.StarResult](t, rec).Item.IsStarred)

	rec = h.admin(t, http.MethodPut, "/api/admin/categories/"+cat.ID+"/visibility", map[string]bool{"is_hidden": true})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/items", "", nil, "")
	assert.Empty(t, decode[portfolio.Gallery](t, rec).Items)

	rec = h.admin(t, http.MethodDelete, "/api/admin/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.admin(t, http.MethodDelete, "/api/admin/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationIsBadRequest(t *testing.T) {
	h := newHarness(t)

	rec := h.admin(t, http.MethodPost, "/api/admin/faqs", portfolio.FAQInput{Question: "q"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in both question and answer", decode[errorBody](t, rec).Error)

	rec = h.do(t, http.MethodPost, "/api/admin/faqs", h.token, bytes.NewBufferString("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.admin(t, http.MethodPost, "/api/admin/reorder/site_analytics", map[string]string{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReorderEndpoint(t *testing.T) {
	h := newHarness(t)

	var ids []string
	for _, q := range []string{"a", "b", "c"} {
		rec := h.admin(t, http.MethodPost, "/api/admin/faqs", portfolio.FAQInput{Question: q, Answer: "x"})
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode[content.FAQ](t, rec).ID)
	}

	rec := h.admin(t, http.MethodPost, "/api/admin/reorder/faqs", map[string]string{
		"moved_id": ids[0], "target_id": ids[2],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/faqs", "", nil, "")
	faqs := decode[[]content.FAQ](t, rec)
	require.Len(t, faqs, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{faqs[0].Question, faqs[1].Question, faqs[2].Question})
}

func TestPrivateAccess(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/private/verify", "", jsonBody(t, map[string]string{"password": "nope"}), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/private/verify", "", jsonBody(t, map[string]string{"password": "open-sesame"}), "application/json")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/private/submissions", "", jsonBody(t, portfolio.PrivateForm{
		Password: "open-sesame", Name: "Ana", Email: "ana@site.io", Message: "hello",
	}), "application/json")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = h.admin(t, http.MethodGet, "/api/admin/submissions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]content.PrivateSubmission](t, rec), 1)
}

func TestProgressAndDashboard(t *testing.T) {
	h := newHarness(t)

	rec := h.admin(t, http.MethodPut, "/api/admin/progress", map[string]int{"thumbnails_in_progress": 9})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/progress", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[portfolio.ProgressEstimate](t, rec)
	assert.Equal(t, int64(9), p.ThumbnailsInProgress)
	assert.Equal(t, "30 hours", p.Estimate.TimeLabel)

	rec = h.do(t, http.MethodPost, "/api/visits", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.admin(t, http.MethodGet, "/api/admin/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[portfolio.Dashboard](t, rec)
	assert.Equal(t, int64(1), d.TotalVisits)
	assert.Equal(t, int64(1), d.TodayVisits)

	rec = h.admin(t, http.MethodGet, "/api/admin/analytics/counts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, portfolio.Counts{}, decode[portfolio.Counts](t, rec))
}

func TestTrackingIsRateLimited(t *testing.T) {
	h := newHarness(t, WithRateLimit(0.001, 2))

	for range 2 {
		rec := h.do(t, http.MethodPost, "/api/visits", "", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := h.do(t, http.MethodPost, "/api/visits", "", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not limited.
	rec = h.do(t, http.MethodGet, "/api/faqs", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrackingLimit_IgnoresForwardedFor(t *testing.T) {
	visit := func(h *harness, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/visits", nil)
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		h.srv.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	h := newHarness(t, WithRateLimit(0.001, 1))
	assert.Equal(t, http.StatusOK, visit(h, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, visit(h, "203.0.113.2"))

	h = newHarness(t, WithRateLimit(0.001, 1), WithTrustProxy(true))
	assert.Equal(t, http.StatusOK, visit(h, "203.0.113.1"))
	assert.Equal(t, http.StatusOK, visit(h, "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, visit(h, "203.0.113.2"))
}

func TestIPLimiter_PerClient(t *testing.T) {
	l := newIPLimiter(0.001, 1)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))

	now = now.Add(visitorIdle + 2*time.Minute)
	l.allow("10.0.0.3")
	l.mu.Lock()
	_, kept := l.visitors["10.0.0.1"]
	l.mu.Unlock()
	assert.False(t, kept)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&portfolio.ValidationError{Field: "name", Message: "is required"}, http.StatusBadRequest},
		{auth.ErrNoSession, http.StatusUnauthorized},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", content.ErrNotFound), http.StatusNotFound},
		{star.ErrLimitReached, http.StatusConflict},
		{auth.ErrUserExists, http.StatusConflict},
		{&portfolio.OpError{Action: "saving FAQ", Err: errors.New("disk full")}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, msg := statusFor(tt.err)
		assert.Equal(t, tt.status, status, "%v", tt.err)
		assert.NotContains(t, msg, "disk full")
	}

	_, msg := statusFor(&portfolio.OpError{Action: "saving FAQ", Err: errors.New("disk full")})
	assert.Equal(t, "Error saving FAQ. Please try again.", msg)
}

func TestServer_StartStop(t *testing.T) {
	h := newHarness(t, WithListenAddr("127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, h.srv.Start(ctx))
	assert.True(t, h.srv.IsRunning())
	assert.Error(t, h.srv.Start(ctx))

	resp, err := http.Get("http://" + h.srv.ListenAddr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, h.srv.Stop())
	assert.False(t, h.srv.IsRunning())
	require.NoError(t, h.srv.Stop())
}
