package letterpress

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/letterpress/newsletter"
)

type testClient struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T, cfg Config) *testClient {
	t.Helper()
	dir := t.TempDir()
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(dir, "letterpress.db")
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(dir, "exports")
	}
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"

	app := New(cfg, WithLogger(zerolog.Nop()))
	require.NoError(t, app.Setup())
	t.Cleanup(func() { app.Close() })
	return &testClient{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (tc *testClient) send(req *http.Request) *httptest.ResponseRecorder {
	tc.t.Helper()
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	tc.app.Echo.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		tc.cookies[c.Name] = c
	}
	return rec
}

func (tc *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	tc.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(tc.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return tc.send(req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (tc *testClient) createNewsletter(title string) newsletterResponse {
	tc.t.Helper()
	rec := tc.do(http.MethodPost, "/api/newsletters", map[string]string{"title": title})
	require.Equal(tc.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[newsletterResponse](tc.t, rec)
}

func (tc *testClient) createPost(newsletterID int64, body map[string]any) postResponse {
	tc.t.Helper()
	rec := tc.do(http.MethodPost, fmt.Sprintf("/api/newsletters/%d/posts", newsletterID), body)
	require.Equal(tc.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[postResponse](tc.t, rec)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	tc := newTestApp(t, Config{})
	rec := tc.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestNewsletterLifecycle(t *testing.T) {
	tc := newTestApp(t, Config{})

	created := tc.createNewsletter("  Weekly Digest ")
	assert.Equal(t, "Weekly Digest", created.Title)
	assert.Equal(t, "draft", created.Status)
	assert.Nil(t, created.PublishedAt)

	rec := tc.do(http.MethodGet, "/api/newsletters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]summaryResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	path := fmt.Sprintf("/api/newsletters/%d", created.ID)
	rec = tc.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ws := decode[workspaceResponse](t, rec)
	assert.Equal(t, created.ID, ws.ID)
	assert.NotNil(t, ws.Posts)
	assert.Empty(t, ws.Posts)

	logo := newsletter.NewImage("image/png", pngBytes(t, 2, 2)).String()
	rec = tc.do(http.MethodPut, path, map[string]any{
		"title":       "Weekly",
		"status":      "published",
		"header_logo": logo,
		"footer_text": "Unsubscribe anytime",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[newsletterResponse](t, rec)
	assert.Equal(t, "Weekly", updated.Title)
	assert.Equal(t, "published", updated.Status)
	assert.NotNil(t, updated.PublishedAt)
	assert.Equal(t, logo, updated.HeaderLogo)

	rec = tc.do(http.MethodPut, path, map[string]any{"title": "Weekly", "status": "draft"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[newsletterResponse](t, rec).PublishedAt)

	rec = tc.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = tc.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = tc.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestErrors(t *testing.T) {
	tc := newTestApp(t, Config{})
	n := tc.createNewsletter("Weekly")
	path := fmt.Sprintf("/api/newsletters/%d", n.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
		field  string
	}{
		{"missing title", http.MethodPost, "/api/newsletters", map[string]string{}, http.StatusBadRequest, "title"},
		{"blank title", http.MethodPost, "/api/newsletters", map[string]string{"title": "   "}, http.StatusBadRequest, "title"},
		{"malformed json", http.MethodPost, "/api/newsletters", `{"title":`, http.StatusBadRequest, ""},
		{"bad id", http.MethodGet, "/api/newsletters/abc", nil, http.StatusBadRequest, "id"},
		{"zero id", http.MethodGet, "/api/newsletters/0", nil, http.StatusBadRequest, "id"},
		{"unknown newsletter", http.MethodGet, "/api/newsletters/999", nil, http.StatusNotFound, ""},
		{"bad status", http.MethodPut, path, map[string]any{"title": "x", "status": "archived"}, http.StatusBadRequest, "status"},
		{"bad logo", http.MethodPut, path, map[string]any{"title": "x", "header_logo": "http://example.com/a.png"}, http.StatusBadRequest, "header_logo"},
		{"logo with injected attribute", http.MethodPut, path, map[string]any{"title": "x", "header_logo": `data:image/png" onerror="alert(1);base64,AAAA`}, http.StatusBadRequest, "header_logo"},
		{"post image with injected attribute", http.MethodPost, path + "/posts", map[string]any{"layout": "double", "image": `data:image/png;base64,AAAA" onload="x`}, http.StatusBadRequest, "image"},
		{"unknown layout", http.MethodPost, path + "/posts", map[string]any{"layout": "triple"}, http.StatusBadRequest, "layout"},
		{"stack width", http.MethodPost, path + "/posts", map[string]any{"layout": "double", "stack_width": 100}, http.StatusBadRequest, "stack_width"},
		{"single-pair without second block", http.MethodPost, path + "/posts", map[string]any{"layout": "single-pair", "title": "a"}, http.StatusBadRequest, "title2"},
		{"post on unknown newsletter", http.MethodPost, "/api/newsletters/999/posts", map[string]any{"layout": "double"}, http.StatusNotFound, ""},
		{"unknown post", http.MethodPut, "/api/posts/999", map[string]any{"layout": "double"}, http.StatusNotFound, ""},
		{"bad direction", http.MethodPost, "/api/posts/1/move", map[string]any{"direction": "sideways"}, http.StatusBadRequest, "direction"},
		{"unknown route", http.MethodGet, "/api/nothing", nil, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tc.do(tt.method, tt.path, tt.body)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			body := decode[errorResponse](t, rec)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.field, body.Field)
		})
	}
}

func TestPostEndpoints(t *testing.T) {
	tc := newTestApp(t, Config{})
	n := tc.createNewsletter("Weekly")

	first := tc.createPost(n.ID, map[string]any{"layout": "double", "title": "One", "stack_width": 30})
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 30, first.StackWidth)
	assert.Nil(t, first.Title2)

	second := tc.createPost(n.ID, map[string]any{"layout": "full-width", "title": "Two"})
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, newsletter.FullStackWidth, second.StackWidth)

	third := tc.createPost(n.ID, map[string]any{
		"layout": "single-pair", "title": "L", "title2": "R", "position": 7,
	})
	assert.Equal(t, 7, third.Position)
	assert.Equal(t, newsletter.DefaultStackWidth, third.StackWidth)
	require.NotNil(t, third.Title2)
	assert.Equal(t, "R", *third.Title2)

	rec := tc.do(http.MethodPut, fmt.Sprintf("/api/posts/%d", first.ID), map[string]any{
		"layout": "double", "title": "One, edited", "content": "<p>hi</p>",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decode[postResponse](t, rec)
	assert.Equal(t, "One, edited", edited.Title)
	assert.Equal(t, 0, edited.Position, "position is kept unless given")
	assert.Equal(t, newsletter.DefaultStackWidth, edited.StackWidth)

	rec = tc.do(http.MethodDelete, fmt.Sprintf("/api/posts/%d", second.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = tc.do(http.MethodDelete, fmt.Sprintf("/api/posts/%d", second.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = tc.do(http.MethodGet, fmt.Sprintf("/api/newsletters/%d", n.ID), nil)
	ws := decode[workspaceResponse](t, rec)
	require.Len(t, ws.Posts, 2)
	assert.Equal(t, []int64{first.ID, third.ID}, []int64{ws.Posts[0].ID, ws.Posts[1].ID})
}

func TestMovePost(t *testing.T) {
	tc := newTestApp(t, Config{})
	n := tc.createNewsletter("Weekly")
	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		ids = append(ids, tc.createPost(n.ID, map[string]any{"layout": "full-width", "title": title}).ID)
	}

	move := func(id int64, dir string) []postResponse {
		t.Helper()
		rec := tc.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/move", id), map[string]string{"direction": dir})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[[]postResponse](t, rec)
	}
	order := func(posts []postResponse) []int64 {
		out := make([]int64, len(posts))
		for i, p := range posts {
			out[i] = p.ID
		}
		return out
	}

	assert.Equal(t, []int64{ids[0], ids[2], ids[1]}, order(move(ids[2], "up")))
	assert.Equal(t, []int64{ids[2], ids[0], ids[1]}, order(move(ids[2], "up")))
	// already first
	assert.Equal(t, []int64{ids[2], ids[0], ids[1]}, order(move(ids[2], "up")))
	// already last
	assert.Equal(t, []int64{ids[2], ids[0], ids[1]}, order(move(ids[1], "down")))

	posts := move(ids[0], "down")
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, order(posts))
	for i, p := range posts {
		assert.Equal(t, i, p.Position)
	}
}

func TestMovePostWithTiedPositions(t *testing.T) {
	tc := newTestApp(t, Config{})
	n := tc.createNewsletter("Weekly")
	a := tc.createPost(n.ID, map[string]any{"layout": "full-width", "position": 0})
	b := tc.createPost(n.ID, map[string]any{"layout": "full-width", "position": 0})

	rec := tc.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/move", b.ID), map[string]string{"direction": "up"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	posts := decode[[]postResponse](t, rec)
	require.Len(t, posts, 2)
	assert.Equal(t, []int64{a.ID, b.ID}, []int64{posts[0].ID, posts[1].ID})
	assert.Equal(t, []int{0, 0}, []int{posts[0].Position, posts[1].Position})
}

func TestDuplicateEndpoint(t *testing.T) {
	tc := newTestApp(t, Config{})
	n := tc.createNewsletter("Weekly")
	tc.createPost(n.ID, map[string]any{"layout": "double", "title": "a"})
	tc.createPost(n.ID, map[string]any{"layout": "full-width", "title": "b"})

	rec := tc.do(http.MethodPost, fmt.Sprintf("/api/newsletters/%d/duplicate", n.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dup := decode[newsletterResponse](t, rec)
	assert.Equal(t, "Weekly (Copy)", dup.Title)
	assert.Equal(t, "draft", dup.Status)

	rec = tc.do(http.MethodGet, fmt.Sprintf("/api/newsletters/%d", dup.ID), nil)
	ws := decode[workspaceResponse](t, rec)
	require.Len(t, ws.Posts, 2)
	assert.Equal(t, "a", ws.Posts[0].Title)
	assert.Equal(t, "b", ws.Posts[1].Title)

	rec = tc.do(http.MethodPost, "/api/newsletters/999/duplicate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportEndpoints(t *testing.T) {
	tc := newTestApp(t, Config{})
	n := tc.createNewsletter("Weekly Digest")
	tc.createPost(n.ID, map[string]any{"layout": "full-width", "title": "Hello", "content": "World"})
	path := fmt.Sprintf("/api/newsletters/%d/export", n.ID)

	rec := tc.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Empty(t, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Contains(t, rec.Body.String(), "<title>Weekly Digest</title>")
	assert.Contains(t, rec.Body.String(), "Hello")

	rec = tc.do(http.MethodGet, path+"?download=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		fmt.Sprintf(`attachment; filename=weekly-digest-%d.html`, n.ID),
		rec.Header().Get(echo.HeaderContentDisposition))

	// edits invalidate the cached document
	tc.do(http.MethodPut, fmt.Sprintf("/api/newsletters/%d", n.ID), map[string]any{
		"title": "Weekly Digest", "footer_text": "See you next week",
	})
	rec = tc.do(http.MethodGet, path, nil)
	assert.Contains(t, rec.Body.String(), "See you next week")

	rec = tc.do(http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[exportFileResponse](t, rec)
	assert.Equal(t, filepath.Join(tc.app.Config.ExportDir, fmt.Sprintf("weekly-digest-%d.html", n.ID)), out.Path)
	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Len(t, data, out.Bytes)
	assert.Contains(t, string(data), "See you next week")

	rec = tc.do(http.MethodGet, "/api/newsletters/999/export", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportToFileExplicitPath(t *testing.T) {
	tc := newTestApp(t, Config{})
	n := tc.createNewsletter("Weekly")

	target := filepath.Join(t.TempDir(), "nested", "out.html")
	path, size, err := tc.app.ExportToFile(t.Context(), n.ID, target)
	require.NoError(t, err)
	assert.Equal(t, target, path)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, int64(size), info.Size())

	_, _, err = tc.app.ExportToFile(t.Context(), 999, "")
	assert.ErrorIs(t, err, newsletter.ErrNotFound)
}

func TestWorkspaceFollowsSession(t *testing.T) {
	tc := newTestApp(t, Config{})
	a := tc.createNewsletter("A")
	b := tc.createNewsletter("B")

	rec := tc.do(http.MethodGet, "/api/workspace", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	tc.do(http.MethodGet, fmt.Sprintf("/api/newsletters/%d", a.ID), nil)
	rec = tc.do(http.MethodGet, "/api/workspace", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, a.ID, decode[workspaceResponse](t, rec).ID)

	tc.do(http.MethodGet, fmt.Sprintf("/api/newsletters/%d", b.ID), nil)
	rec = tc.do(http.MethodGet, "/api/workspace", nil)
	assert.Equal(t, b.ID, decode[workspaceResponse](t, rec).ID)

	// deleting another newsletter keeps the session
	tc.do(http.MethodDelete, fmt.Sprintf("/api/newsletters/%d", a.ID), nil)
	rec = tc.do(http.MethodGet, "/api/workspace", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	tc.do(http.MethodDelete, fmt.Sprintf("/api/newsletters/%d", b.ID), nil)
	rec = tc.do(http.MethodGet, "/api/workspace", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaleSessionCookieIsReplaced(t *testing.T) {
	tc := newTestApp(t, Config{})
	n := tc.createNewsletter("Weekly")

	// a cookie signed with the secret of an earlier process
	other := sessions.NewCookieStore([]byte("an-older-secret-an-older-secret!"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	sess, err := other.New(req, sessionName)
	require.NoError(t, err)
	sess.Values[currentNewsletterKey] = n.ID
	require.NoError(t, sess.Save(req, rec))
	stale := rec.Result().Cookies()
	require.Len(t, stale, 1)
	tc.cookies[sessionName] = stale[0]

	rec = tc.do(http.MethodGet, "/api/workspace", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = tc.do(http.MethodGet, fmt.Sprintf("/api/newsletters/%d", n.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEqual(t, stale[0].Value, tc.cookies[sessionName].Value)

	rec = tc.do(http.MethodGet, "/api/workspace", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, n.ID, decode[workspaceResponse](t, rec).ID)

	// deleting works with a stale cookie too
	tc.cookies[sessionName] = stale[0]
	rec = tc.do(http.MethodDelete, fmt.Sprintf("/api/newsletters/%d", n.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func uploadRequest(t *testing.T, path, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func TestImageUpload(t *testing.T) {
	tc := newTestApp(t, Config{})
	data := pngBytes(t, 40, 20)

	rec := tc.send(uploadRequest(t, "/api/images", "logo.png", data))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[imageResponse](t, rec)
	assert.Equal(t, "image/png", out.MIMEType)
	assert.Equal(t, 40, out.Width)
	assert.Equal(t, 20, out.Height)
	assert.Equal(t, len(data), out.Size)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data), out.DataURI)

	rec = tc.send(uploadRequest(t, "/api/images", "notes.txt", []byte("plain text")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "image", decode[errorResponse](t, rec).Field)

	rec = tc.send(uploadRequest(t, "/api/images", "empty.png", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tc.do(http.MethodPost, "/api/images", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImageToBase64(t *testing.T) {
	tc := newTestApp(t, Config{})
	data := pngBytes(t, 4, 4)
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	tests := []struct {
		name  string
		input string
		code  int
	}{
		{"bare base64", base64.StdEncoding.EncodeToString(data), http.StatusOK},
		{"data uri", want, http.StatusOK},
		{"wrong declared type", "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), http.StatusOK},
		{"not base64", "%%%", http.StatusBadRequest},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello")), http.StatusBadRequest},
		{"empty", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tc.do(http.MethodPost, "/api/image-to-base64", map[string]string{"imageData": tt.input})
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.code == http.StatusOK {
				assert.Equal(t, want, decode[map[string]string](t, rec)["base64"])
			} else {
				assert.Equal(t, "imageData", decode[errorResponse](t, rec).Field)
			}
		})
	}
}

func TestImageRateLimit(t *testing.T) {
	tc := newTestApp(t, Config{UploadRateLimit: 2})
	body := map[string]string{"imageData": base64.StdEncoding.EncodeToString(pngBytes(t, 2, 2))}

	for i := 0; i < 2; i++ {
		rec := tc.do(http.MethodPost, "/api/image-to-base64", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := tc.do(http.MethodPost, "/api/image-to-base64", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// other routes are not limited
	rec = tc.do(http.MethodGet, "/api/newsletters", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics(t *testing.T) {
	tc := newTestApp(t, Config{MetricsAddr: ":0"})
	require.NotNil(t, tc.app.Metrics)

	n := tc.createNewsletter("Weekly")
	tc.do(http.MethodGet, fmt.Sprintf("/api/newsletters/%d/export", n.ID), nil)
	tc.do(http.MethodGet, fmt.Sprintf("/api/newsletters/%d/export?download=true", n.ID), nil)

	rec := httptest.NewRecorder()
	tc.app.Metrics.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `letterpress_exports_total{destination="preview"} 1`)
	assert.Contains(t, body, `letterpress_exports_total{destination="download"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsDisabled(t *testing.T) {
	tc := newTestApp(t, Config{})
	assert.Nil(t, tc.app.Metrics)
	rec := tc.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetupIsIdempotent(t *testing.T) {
	tc := newTestApp(t, Config{})
	routes := len(tc.app.Echo.Routes())
	require.NoError(t, tc.app.Setup())
	assert.Len(t, tc.app.Echo.Routes(), routes)
}

func TestWithStoreLeavesStoreOpen(t *testing.T) {
	s := newTestStore(t)
	app := New(Config{}, WithStore(s), WithLogger(zerolog.Nop()))
	require.NoError(t, app.Setup())
	require.NoError(t, app.Close())
	assert.NoError(t, s.Ping(t.Context()))
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &newsletter.ValidationError{Field: "title", Reason: "is required"}, http.StatusBadRequest},
		{"not found", &newsletter.NotFoundError{Kind: "post", ID: 3}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", &newsletter.NotFoundError{Kind: "post", ID: 3}), http.StatusNotFound},
		{"partial ordering", &newsletter.PartialOrderingError{Saved: 1, Failed: 2, Err: errors.New("disk")}, http.StatusConflict},
		{"http error", echo.NewHTTPError(http.StatusTeapot), http.StatusTeapot},
		{"persistence", &newsletter.PersistenceError{Op: "insert", Err: errors.New("disk")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := errorStatus(tt.err)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, body.Error)
		})
	}

	// internal details stay out of 500 responses
	_, body := errorStatus(&newsletter.PersistenceError{Op: "insert", Err: errors.New("disk on fire")})
	assert.NotContains(t, body.Error, "disk")
}
