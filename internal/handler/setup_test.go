package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/collegecms/internal/db"
	"github.com/collegecms/internal/storage"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*API, func()) {
	t.Helper()
	api, _, cleanup := setupTestAPI(t)
	return api, cleanup
}

// setupTestAPI 同 setupTestDB，额外返回底层连接供测试注册回调
func setupTestAPI(t *testing.T) (*API, *gorm.DB, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.DriverSQLite, dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := db.EnsureUser(gdb, "staff", "staff-pass"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	store, err := storage.NewLocal(storage.LocalConfig{Dir: t.TempDir(), URLPrefix: "/media"})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	return NewAPI(gdb, store, ""), gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// injectSlugRace 在下一次向 table 插入前抢先写入同 slug 的行
func injectSlugRace(t *testing.T, gdb *gorm.DB, table, name, slug string) {
	t.Helper()
	fired := false
	err := gdb.Callback().Create().Before("gorm:create").Register("test:slug_race", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO "+table+" (name, slug) VALUES (?, ?)", name, slug).Error; err != nil {
			_ = tx.AddError(err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

// newTestEngine 挂载会话与语言中间件，路由与线上保持一致的前缀
func newTestEngine(api *API) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(LocaleMiddleware())

	group := r.Group("/api")
	group.POST("/auth/login/", api.Login)
	group.POST("/auth/logout/", api.Logout)
	group.GET("/auth/me/", api.Me)

	protected := group.Group("")
	protected.Use(api.StaffRequired())
	protected.GET("/pages/", api.ListPages)
	protected.POST("/pages/", api.CreatePage)
	protected.GET("/pages/:slug/", api.GetPage)
	protected.GET("/tags/", api.ListTags)
	protected.POST("/tags/", api.CreateTag)
	return r
}

func newJSONContext(method, target string, payload any) (*gin.Context, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, &body)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func login(t *testing.T, r http.Handler, username, password string) []*http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}
