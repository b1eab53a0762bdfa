package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/collegecms/internal/config"
	"github.com/collegecms/internal/db"
	"github.com/collegecms/internal/handler"
	"github.com/collegecms/internal/router"
	"github.com/collegecms/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler   http.Handler
	public    httpClient
	admin     httpClient
	baseURL   string
	mediaDir  string
	adminUser string
	adminPass string
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("anonymous writes are rejected", suite.testAnonymousWrites)
	suite.login(t)
	t.Run("pages and navigation", suite.testPagesAndNavigation)
	t.Run("contents and carousel", suite.testContentsAndCarousel)
	t.Run("news", suite.testNews)
	t.Run("uploads", suite.testUploads)
	t.Run("index and health", suite.testIndexAndHealth)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := db.EnsureUser(gdb, "registrar", "e2e-secret"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	mediaDir := t.TempDir()
	cfg := config.AppConfig{
		SessionSecret:  "test-session-secret",
		MediaDir:       mediaDir,
		MediaURLPath:   "/media",
		SiteBaseURL:    "http://example.test",
		StorageBackend: storage.BackendLocal,
	}
	store, err := storage.NewLocal(storage.LocalConfig{Dir: mediaDir, URLPrefix: cfg.MediaURLPath})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	engine := router.SetupRouter(cfg, handler.NewAPI(gdb, store, cfg.SiteBaseURL))

	return &e2eSuite{
		handler:   engine,
		public:    newLocalClient(engine, false),
		admin:     newLocalClient(engine, true),
		baseURL:   "http://example.test",
		mediaDir:  mediaDir,
		adminUser: "registrar",
		adminPass: "e2e-secret",
	}
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/auth/login/", map[string]interface{}{
		"username": s.adminUser,
		"password": s.adminPass,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed, status %d: %s", resp.StatusCode, readBody(t, resp))
	}
}

func (s *e2eSuite) testAnonymousWrites(t *testing.T) {
	resp := s.mustRequestJSON(t, s.public, http.MethodPost, "/api/pages/", map[string]interface{}{"title": "Sneaky"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for anonymous write, got %d", resp.StatusCode)
	}

	list := s.mustRequest(t, s.public, http.MethodGet, "/api/pages/", nil, nil)
	defer list.Body.Close()
	if list.StatusCode != http.StatusOK {
		t.Fatalf("expected anonymous read to succeed, got %d", list.StatusCode)
	}
}

func (s *e2eSuite) testPagesAndNavigation(t *testing.T) {
	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/pages/", map[string]interface{}{
		"title":    "Academics",
		"template": "standard",
		"children": []map[string]interface{}{
			{"title": "Undergraduate"},
			{"title": "Postgraduate", "is_published": false},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create page failed: %d %s", resp.StatusCode, readBody(t, resp))
	}
	var created struct {
		ID       string `json:"id"`
		Slug     string `json:"slug"`
		Children []struct {
			Slug string `json:"slug"`
		} `json:"children"`
	}
	decodeJSON(t, resp, &created)
	if created.Slug != "academics" || len(created.Children) != 1 || created.Children[0].Slug != "undergraduate" {
		t.Fatalf("unexpected created page %+v", created)
	}

	nav := s.mustRequest(t, s.public, http.MethodGet, "/api/page-navigation/", nil, nil)
	var nodes []struct {
		ID       string `json:"id"`
		Slug     string `json:"slug"`
		Children []struct {
			Slug string `json:"slug"`
		} `json:"children"`
	}
	decodeJSON(t, nav, &nodes)
	if len(nodes) != 1 || nodes[0].ID != created.ID || len(nodes[0].Children) != 1 {
		t.Fatalf("unexpected navigation %+v", nodes)
	}

	dup := s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/pages/", map[string]interface{}{"title": "Academics"})
	defer dup.Body.Close()
	if dup.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected duplicate slug to be rejected, got %d", dup.StatusCode)
	}

	publish := s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/pages/bulk-publish/", map[string]interface{}{
		"ids":          []string{created.ID},
		"is_published": false,
	})
	defer publish.Body.Close()
	if publish.StatusCode != http.StatusOK {
		t.Fatalf("bulk publish failed: %d", publish.StatusCode)
	}

	nav = s.mustRequest(t, s.public, http.MethodGet, "/api/page-navigation/", nil, nil)
	if body := strings.TrimSpace(readBody(t, nav)); body != "[]" {
		t.Fatalf("expected empty navigation after unpublishing, got %s", body)
	}

	del := s.mustRequest(t, s.admin, http.MethodDelete, "/api/pages/academics/", nil, nil)
	defer del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete page failed: %d", del.StatusCode)
	}
	gone := s.mustRequest(t, s.public, http.MethodGet, "/api/pages/undergraduate/", nil, nil)
	defer gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Fatalf("expected child page to be deleted, got %d", gone.StatusCode)
	}
}

func (s *e2eSuite) testContentsAndCarousel(t *testing.T) {
	tagResp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/tags/", map[string]interface{}{"name": "Campus Life"})
	var tag struct {
		ID   uint   `json:"id"`
		Slug string `json:"slug"`
	}
	decodeJSON(t, tagResp, &tag)
	if tag.Slug != "campus-life" {
		t.Fatalf("unexpected tag slug %q", tag.Slug)
	}

	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/contents/", map[string]interface{}{
		"title":      "Spring Gallery",
		"role":       "carousel",
		"tag_ids":    []uint{tag.ID},
		"images":     []map[string]interface{}{{"image": "b.jpg", "order": 2}, {"image": "a.jpg", "order": 0}},
		"texts":      []map[string]interface{}{{"text": "<p>Welcome</p>", "order": 0}},
		"isCarousel": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create content failed: %d %s", resp.StatusCode, readBody(t, resp))
	}

	carousel := s.mustRequest(t, s.public, http.MethodGet, "/api/carousel/", nil, nil)
	var page struct {
		Count   int `json:"count"`
		Results []struct {
			Images []struct {
				Order    int    `json:"order"`
				ImageURL string `json:"image_url"`
			} `json:"images"`
		} `json:"results"`
	}
	decodeJSON(t, carousel, &page)
	if page.Count != 1 || len(page.Results[0].Images) != 2 || page.Results[0].Images[0].Order != 0 {
		t.Fatalf("unexpected carousel %+v", page)
	}
	if page.Results[0].Images[0].ImageURL != "/media/a.jpg" {
		t.Fatalf("unexpected image url %q", page.Results[0].Images[0].ImageURL)
	}

	byTag := s.mustRequest(t, s.public, http.MethodGet, "/api/contents/?tag=campus-life", nil, nil)
	decodeJSON(t, byTag, &page)
	if page.Count != 1 {
		t.Fatalf("expected tag filter to match one content, got %d", page.Count)
	}
}

func (s *e2eSuite) testNews(t *testing.T) {
	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/api/news/", map[string]interface{}{
		"title": "Convocation 2025",
		"body":  "Ceremony starts at **10am**.",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create news failed: %d %s", resp.StatusCode, readBody(t, resp))
	}

	detail := s.mustRequest(t, s.public, http.MethodGet, "/api/news/convocation-2025/", nil, nil)
	var news struct {
		URL      string `json:"url"`
		BodyHTML string `json:"body_html"`
	}
	decodeJSON(t, detail, &news)
	if news.URL != "http://example.test/api/news/convocation-2025/" {
		t.Fatalf("unexpected news url %q", news.URL)
	}
	if !strings.Contains(news.BodyHTML, "<strong>10am</strong>") {
		t.Fatalf("unexpected body_html %q", news.BodyHTML)
	}

	zh := s.mustRequest(t, s.public, http.MethodGet, "/api/news/missing/", nil, map[string]string{"Accept-Language": "zh-CN"})
	var envelope struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	decodeJSON(t, zh, &envelope)
	if zh.StatusCode != http.StatusNotFound || envelope.Kind != "not_found" || envelope.Error != "新闻不存在" {
		t.Fatalf("unexpected localized error %d %+v", zh.StatusCode, envelope)
	}
}

func (s *e2eSuite) testUploads(t *testing.T) {
	resp := s.uploadTestImage(t)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload failed: %d %s", resp.StatusCode, readBody(t, resp))
	}
	var uploaded struct {
		File   string `json:"file"`
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	decodeJSON(t, resp, &uploaded)
	if uploaded.Width != 4 || uploaded.Height != 4 {
		t.Fatalf("unexpected dimensions %+v", uploaded)
	}
	if _, err := os.Stat(filepath.Join(s.mediaDir, filepath.FromSlash(uploaded.File))); err != nil {
		t.Fatalf("uploaded file missing on disk: %v", err)
	}

	served := s.mustRequest(t, s.public, http.MethodGet, "/media/"+uploaded.File, nil, nil)
	defer served.Body.Close()
	if served.StatusCode != http.StatusOK {
		t.Fatalf("expected media to be served, got %d", served.StatusCode)
	}
}

func (s *e2eSuite) testIndexAndHealth(t *testing.T) {
	index := s.mustRequest(t, s.public, http.MethodGet, "/api/", nil, nil)
	var endpoints map[string]string
	decodeJSON(t, index, &endpoints)
	if endpoints["pages"] != "http://example.test/api/pages/" {
		t.Fatalf("unexpected index %v", endpoints)
	}

	ping := s.mustRequest(t, s.public, http.MethodGet, "/ping", nil, nil)
	if body := readBody(t, ping); !strings.Contains(body, "pong") {
		t.Fatalf("unexpected ping body %q", body)
	}
}

func (s *e2eSuite) uploadTestImage(t *testing.T) *http.Response {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "test.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(buf.Bytes()); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	headers := map[string]string{
		"Content-Type": writer.FormDataContentType(),
	}
	return s.mustRequest(t, s.admin, http.MethodPost, "/api/uploads/", body, headers)
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}
