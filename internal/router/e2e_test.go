package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/handler"
	"github.com/schoolsite/internal/logging"
	"github.com/schoolsite/internal/realtime"
	"github.com/schoolsite/internal/seed"
	"gorm.io/gorm/logger"
)

const (
	e2eAdminEmail    = "drejtoria@shkolla.test"
	e2eAdminPassword = "e2e-sekret-forte"
)

type e2eSuite struct {
	server *httptest.Server
	public *http.Client
	admin  *http.Client
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(db.Options{
		Path:     filepath.Join(t.TempDir(), "e2e.db"),
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	if err := db.EnsureAdmin(gdb, e2eAdminEmail, e2eAdminPassword); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	if _, err := seed.Run(gdb, logging.Discard()); err != nil {
		t.Fatalf("failed to seed content: %v", err)
	}

	uploadDir := t.TempDir()
	api := handler.NewAPI(gdb, handler.Options{
		Logger:    logging.Discard(),
		UploadDir: uploadDir,
		UploadURL: "/uploads",
	})
	engine := SetupRouter(api, Options{
		SessionSecret: "e2e-session-secret",
		UploadDir:     uploadDir,
		UploadURL:     "/uploads",
		Logger:        logging.Discard(),
	})

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &e2eSuite{
		server: server,
		public: server.Client(),
		admin:  &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
}

func TestE2E_SeededSiteAndChat(t *testing.T) {
	suite := newE2ESuite(t)
	suite.login(t)

	t.Run("landing payload", suite.testLanding)
	t.Run("admin hides program", suite.testHideProgram)
	t.Run("live chat", suite.testLiveChat)
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	resp := s.mustRequestJSON(t, s.admin, http.MethodPost, "/admin/login", map[string]interface{}{
		"email":    e2eAdminEmail,
		"password": e2eAdminPassword,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed, status %d, body=%s", resp.StatusCode, readBody(t, resp))
	}
}

func (s *e2eSuite) testLanding(t *testing.T) {
	resp := s.mustRequest(t, s.public, http.MethodGet, "/api/site", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("site expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Programs    []db.Program      `json:"programs"`
		FAQ         []db.FAQItem      `json:"faq"`
		ContactInfo []db.ContactInfo  `json:"contact_info"`
		Sections    map[string]string `json:"sections"`
	}
	decodeJSON(t, resp, &payload)
	if len(payload.Programs) != 6 {
		t.Fatalf("expected 6 seeded programs, got %d", len(payload.Programs))
	}
	if len(payload.FAQ) == 0 || len(payload.ContactInfo) == 0 {
		t.Fatalf("seeded faq/contact info missing: %+v", payload)
	}
	if payload.Sections["hero_title"] == "" {
		t.Fatalf("hero_title section missing: %v", payload.Sections)
	}
}

func (s *e2eSuite) testHideProgram(t *testing.T) {
	resp := s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/programs", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin programs expected 200, got %d", resp.StatusCode)
	}
	var list struct {
		Items []db.Program `json:"items"`
	}
	decodeJSON(t, resp, &list)
	if len(list.Items) == 0 {
		t.Fatal("admin program list is empty")
	}
	target := list.Items[0]

	resp = s.mustRequestJSON(t, s.admin, http.MethodPut, "/admin/api/programs/"+strconv.FormatUint(uint64(target.ID), 10), map[string]interface{}{
		"title":     target.Title,
		"is_active": false,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update program expected 200, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/programs", nil, nil)
	defer resp.Body.Close()
	var public struct {
		Items []db.Program `json:"items"`
	}
	decodeJSON(t, resp, &public)
	for _, program := range public.Items {
		if program.ID == target.ID {
			t.Fatalf("hidden program %q still listed publicly", target.Title)
		}
	}
}

func (s *e2eSuite) testLiveChat(t *testing.T) {
	resp := s.mustRequest(t, s.public, http.MethodPost, "/api/chat/sessions", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start chat expected 201, got %d", resp.StatusCode)
	}
	var started struct {
		SessionID string `json:"session_id"`
	}
	decodeJSON(t, resp, &started)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/api/chat/sessions/" + started.SessionID + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial chat websocket: %v", err)
	}
	defer conn.CloseNow()

	// 访客通过 websocket 发消息，收到自己的消息说明订阅已建立
	if err := wsjson.Write(ctx, conn, map[string]string{"message": "Përshëndetje, kam një pyetje", "sender_name": "Arta"}); err != nil {
		t.Fatalf("failed to send chat message: %v", err)
	}
	var echo realtime.Event
	if err := wsjson.Read(ctx, conn, &echo); err != nil {
		t.Fatalf("failed to read echo: %v", err)
	}
	if echo.Type != realtime.EventChat || echo.Message != "Përshëndetje, kam një pyetje" {
		t.Fatalf("unexpected echo event: %+v", echo)
	}

	resp = s.mustRequestJSON(t, s.admin, http.MethodPost, "/admin/api/chat/sessions/"+started.SessionID+"/reply", map[string]interface{}{
		"message": "Mirëdita! Si mund t'ju ndihmojmë?",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reply expected 201, got %d, body=%s", resp.StatusCode, readBody(t, resp))
	}

	var reply realtime.Event
	if err := wsjson.Read(ctx, conn, &reply); err != nil {
		t.Fatalf("failed to read reply: %v", err)
	}
	if reply.Message != "Mirëdita! Si mund t'ju ndihmojmë?" {
		t.Fatalf("unexpected reply event: %+v", reply)
	}
	conn.Close(websocket.StatusNormalClosure, "")

	resp = s.mustRequest(t, s.admin, http.MethodGet, "/admin/api/chat/sessions", nil, nil)
	defer resp.Body.Close()
	var sessions struct {
		Unread int64 `json:"unread"`
	}
	decodeJSON(t, resp, &sessions)
	if sessions.Unread != 1 {
		t.Fatalf("expected 1 unread visitor message, got %d", sessions.Unread)
	}
}

func (s *e2eSuite) mustRequest(t *testing.T, client *http.Client, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.server.URL+path, body)
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

func (s *e2eSuite) mustRequestJSON(t *testing.T, client *http.Client, method, path string, payload map[string]interface{}) *http.Response {
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
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}
