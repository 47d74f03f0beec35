package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/handler"
	"github.com/schoolsite/internal/logging"
	"github.com/schoolsite/internal/mail"
	"github.com/schoolsite/internal/middleware"
	"github.com/schoolsite/internal/router"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminEmail    = "admin@shkolla.test"
	testAdminPassword = "sekret-i-forte"
)

var (
	ginOnce   sync.Once
	testDBSeq atomic.Int64
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	api    *handler.API
	db     *gorm.DB
	mailer *mail.LogSender
}

type serverOption func(*router.Options)

func withLimiter(limiter *middleware.IPRateLimiter) serverOption {
	return func(opts *router.Options) {
		opts.Limiter = limiter
	}
}

func withTrustedProxies(proxies ...string) serverOption {
	return func(opts *router.Options) {
		opts.TrustedProxies = proxies
	}
}

func newTestServer(t *testing.T, options ...serverOption) *testServer {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.EnsureAdmin(gdb, testAdminEmail, testAdminPassword); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	logs := logging.Discard()
	mailer := mail.NewLogSender(logs)
	uploadDir := t.TempDir()
	api := handler.NewAPI(gdb, handler.Options{
		Logger:    logs,
		Mailer:    mailer,
		UploadDir: uploadDir,
		UploadURL: "/uploads",
		JWTSecret: "test-jwt-secret",
	})

	routerOpts := router.Options{
		SessionSecret:  "test-session-secret",
		UploadDir:      uploadDir,
		UploadURL:      "/uploads",
		Logger:         logs,
		RateLimitRate:  1000,
		RateLimitBurst: 1000,
	}
	for _, option := range options {
		option(&routerOpts)
	}

	return &testServer{
		t:      t,
		engine: router.SetupRouter(api, routerOpts),
		api:    api,
		db:     gdb,
		mailer: mailer,
	}
}

// request 发送请求，body 非 nil 时编码为 JSON。
func (s *testServer) request(method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, fn := range mutate {
		fn(req)
	}
	rr := httptest.NewRecorder()
	s.engine.ServeHTTP(rr, req)
	return rr
}

// login 以测试管理员登录，返回会话 cookie。
func (s *testServer) login() []*http.Cookie {
	s.t.Helper()
	rr := s.request(http.MethodPost, "/admin/login", map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	if rr.Code != http.StatusOK {
		s.t.Fatalf("login failed: %d %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		s.t.Fatalf("login did not set a session cookie")
	}
	return cookies
}

func withCookies(cookies []*http.Cookie) func(*http.Request) {
	return func(req *http.Request) {
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
	}
}

func withHeader(key, value string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
