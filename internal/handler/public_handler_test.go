package handler_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/middleware"
)

func TestGetSiteReturnsOnlyActiveContent(t *testing.T) {
	srv := newTestServer(t)

	members := []db.TeamMember{
		{FullName: "Arta Krasniqi", Position: "Drejtoreshë", Ordering: db.Ordering{IsActive: true, SortOrder: 0}},
		{FullName: "Hidden Person", Position: "Teacher", Ordering: db.Ordering{IsActive: false, SortOrder: 1}},
	}
	if err := srv.db.Create(&members).Error; err != nil {
		t.Fatalf("failed to seed team: %v", err)
	}

	rr := srv.request(http.MethodGet, "/api/site", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Arta Krasniqi") {
		t.Fatalf("expected active member in payload: %s", body)
	}
	if strings.Contains(body, "Hidden Person") {
		t.Fatalf("inactive member leaked into payload: %s", body)
	}

	var visitorCookie bool
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == middleware.VisitorCookieName && cookie.Value != "" {
			visitorCookie = true
		}
	}
	if !visitorCookie {
		t.Fatalf("expected visitor cookie to be issued")
	}

	var snapshots int64
	if err := srv.db.Model(&db.SiteHourlySnapshot{}).Count(&snapshots).Error; err != nil {
		t.Fatalf("failed to count snapshots: %v", err)
	}
	if snapshots != 1 {
		t.Fatalf("expected one hourly snapshot, got %d", snapshots)
	}
}

func TestPublicCollectionExcludesInactive(t *testing.T) {
	srv := newTestServer(t)

	faq := []db.FAQItem{
		{Question: "Kur fillon viti shkollor?", Answer: "Në shtator.", Category: "general", Ordering: db.Ordering{IsActive: true}},
		{Question: "Draft question", Answer: "n/a", Category: "general", Ordering: db.Ordering{IsActive: false}},
	}
	if err := srv.db.Create(&faq).Error; err != nil {
		t.Fatalf("failed to seed faq: %v", err)
	}

	rr := srv.request(http.MethodGet, "/api/faq?category=general", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	payload := decodeBody[struct {
		Items []db.FAQItem `json:"items"`
	}](t, rr)
	if len(payload.Items) != 1 || payload.Items[0].Question != "Kur fillon viti shkollor?" {
		t.Fatalf("unexpected faq items: %+v", payload.Items)
	}
}

func TestContactValidationReturnsFieldErrors(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.request(http.MethodPost, "/api/contact", map[string]string{
		"name":    "Besa",
		"email":   "not-an-email",
		"message": "Përshëndetje",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	payload := decodeBody[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, rr)
	if payload.Error != "Ju lutem kontrolloni fushat e formularit" {
		t.Fatalf("expected albanian message by default, got %q", payload.Error)
	}
	if _, ok := payload.Fields["email"]; !ok {
		t.Fatalf("expected email field error, got %+v", payload.Fields)
	}
}

func TestContactSubmitUsesRequestLanguage(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.request(http.MethodPost, "/api/contact", map[string]string{
		"name":    "Besa Hoxha",
		"email":   "besa@example.com",
		"subject": "Regjistrimi",
		"message": "A ka ende vende të lira?",
	}, withHeader("Accept-Language", "en-US,en;q=0.9"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	payload := decodeBody[map[string]any](t, rr)
	if payload["message"] != "Your message has been sent" {
		t.Fatalf("expected english message, got %v", payload["message"])
	}
	if got := rr.Header().Get("Content-Language"); got != "en-US" {
		t.Fatalf("expected Content-Language en-US, got %q", got)
	}

	var stored db.ContactMessage
	if err := srv.db.First(&stored).Error; err != nil {
		t.Fatalf("expected stored message: %v", err)
	}
	if stored.IsRead {
		t.Fatalf("new messages must be unread")
	}
}

func TestNewsletterDuplicateConflicts(t *testing.T) {
	srv := newTestServer(t)

	body := map[string]string{"email": "prind@example.com"}
	if rr := srv.request(http.MethodPost, "/api/newsletter", body); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr := srv.request(http.MethodPost, "/api/newsletter", map[string]string{"email": "PRIND@example.com"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate subscription, got %d", rr.Code)
	}

	if rr := srv.request(http.MethodPost, "/api/newsletter/unsubscribe", body); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on unsubscribe, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestFeedbackRatingOutOfRange(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.request(http.MethodPost, "/api/feedback", map[string]any{"category": "teaching", "rating": 6})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	payload := decodeBody[struct {
		Fields map[string]string `json:"fields"`
	}](t, rr)
	if _, ok := payload.Fields["rating"]; !ok {
		t.Fatalf("expected rating field error, got %+v", payload.Fields)
	}

	rr = srv.request(http.MethodPost, "/api/feedback", map[string]any{"category": "teaching", "rating": 5, "is_anonymous": true})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestApplicationSubmitStartsPending(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.request(http.MethodPost, "/api/applications", map[string]any{
		"applicant_name":  "Dren Gashi",
		"applicant_email": "dren@example.com",
		"parent_name":     "Agim Gashi",
		"parent_phone":    "+383 44 123 456",
		"grade_level":     "10",
		"program":         "Teknologji Informative",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	payload := decodeBody[map[string]any](t, rr)
	if payload["status"] != db.ApplicationPending {
		t.Fatalf("expected pending status, got %v", payload["status"])
	}

	rr = srv.request(http.MethodPost, "/api/applications", map[string]any{
		"applicant_name":  "Dren Gashi",
		"applicant_email": "dren@example.com",
		"parent_name":     "Agim Gashi",
		"parent_phone":    "abc",
		"grade_level":     "10",
		"program":         "Teknologji Informative",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid phone, got %d", rr.Code)
	}
}

func TestNewsDetailHidesDrafts(t *testing.T) {
	srv := newTestServer(t)

	now := time.Now().UTC()
	published := db.NewsItem{Title: "Dita e hapur", Content: "**Mirë se vini**", IsPublished: true, PublishedAt: &now}
	draft := db.NewsItem{Title: "Draft", Content: "secret"}
	if err := srv.db.Create(&published).Error; err != nil {
		t.Fatalf("failed to seed news: %v", err)
	}
	if err := srv.db.Create(&draft).Error; err != nil {
		t.Fatalf("failed to seed draft: %v", err)
	}

	rr := srv.request(http.MethodGet, "/api/news/"+uintString(published.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	detail := decodeBody[struct {
		Item struct {
			Title string `json:"title"`
			HTML  string `json:"html"`
		} `json:"item"`
	}](t, rr)
	if !strings.Contains(detail.Item.HTML, "<strong>Mirë se vini</strong>") {
		t.Fatalf("expected rendered markdown, got %q", detail.Item.HTML)
	}

	if rr := srv.request(http.MethodGet, "/api/news/"+uintString(draft.ID), nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for draft, got %d", rr.Code)
	}
	if rr := srv.request(http.MethodGet, "/api/news/abc", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rr.Code)
	}

	rr = srv.request(http.MethodGet, "/api/news", nil)
	list := decodeBody[struct {
		Items []db.NewsItem `json:"items"`
		Total int64         `json:"total"`
	}](t, rr)
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("expected only the published item, got %+v", list)
	}
}

func TestCalendarRange(t *testing.T) {
	srv := newTestServer(t)

	events := []db.CalendarEvent{
		{Title: "Fillimi i vitit", EventType: db.EventTypeAcademic, StartDate: time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)},
		{Title: "Pushimet dimërore", EventType: db.EventTypeHoliday, StartDate: time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)},
	}
	if err := srv.db.Create(&events).Error; err != nil {
		t.Fatalf("failed to seed events: %v", err)
	}

	rr := srv.request(http.MethodGet, "/api/calendar?from=2025-09-01&to=2025-09-30", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	payload := decodeBody[struct {
		Items []db.CalendarEvent `json:"items"`
	}](t, rr)
	if len(payload.Items) != 1 || payload.Items[0].Title != "Fillimi i vitit" {
		t.Fatalf("unexpected events: %+v", payload.Items)
	}

	if rr := srv.request(http.MethodGet, "/api/calendar?from=yesterday", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid date, got %d", rr.Code)
	}
	if rr := srv.request(http.MethodGet, "/api/calendar?from=2025-10-01&to=2025-09-01", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", rr.Code)
	}
}

func TestPublicFormsAreRateLimited(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(0.001, 1)
	srv := newTestServer(t, withLimiter(limiter))

	body := map[string]any{"category": "general", "rating": 4}
	if rr := srv.request(http.MethodPost, "/api/feedback", body); rr.Code != http.StatusCreated {
		t.Fatalf("expected first request to pass, got %d", rr.Code)
	}
	rr := srv.request(http.MethodPost, "/api/feedback", body, withHeader("Accept-Language", "en"))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Too many requests") {
		t.Fatalf("expected localized 429 body, got %s", rr.Body.String())
	}

	if rr := srv.request(http.MethodGet, "/api/site", nil); rr.Code != http.StatusOK {
		t.Fatalf("reads must not be rate limited, got %d", rr.Code)
	}
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(0.001, 1)
	srv := newTestServer(t, withLimiter(limiter))

	credentials := map[string]string{"email": testAdminEmail, "password": "wrong-password"}
	limited := 0
	for i := 0; i < 5; i++ {
		rr := srv.request(http.MethodPost, "/admin/login", credentials,
			withHeader("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1)))
		if rr.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 4 {
		t.Fatalf("expected 4 of 5 spoofed logins to be limited, got %d", limited)
	}
	if limiter.Len() != 1 {
		t.Fatalf("spoofed headers must not allocate buckets, got %d", limiter.Len())
	}
}

func TestRateLimitUsesForwardedForFromTrustedProxy(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(0.001, 1)
	// httptest 请求的来源地址是 192.0.2.1
	srv := newTestServer(t, withLimiter(limiter), withTrustedProxies("192.0.2.1"))

	body := map[string]any{"category": "general", "rating": 5}
	for i := 0; i < 3; i++ {
		rr := srv.request(http.MethodPost, "/api/feedback", body,
			withHeader("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1)))
		if rr.Code != http.StatusCreated {
			t.Fatalf("client %d behind the proxy should have its own bucket, got %d", i+1, rr.Code)
		}
	}
	if limiter.Len() != 3 {
		t.Fatalf("expected one bucket per forwarded client, got %d", limiter.Len())
	}
}

func TestChatSessionFlow(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.request(http.MethodPost, "/api/chat/sessions", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	session := decodeBody[map[string]string](t, rr)["session_id"]
	if session == "" {
		t.Fatalf("expected session id")
	}

	rr = srv.request(http.MethodPost, "/api/chat/sessions/"+session+"/messages", map[string]string{
		"message":     "Përshëndetje, kam një pyetje",
		"sender_name": "Vizitor",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = srv.request(http.MethodGet, "/api/chat/sessions/"+session+"/messages", nil)
	payload := decodeBody[struct {
		Items []db.ChatMessage `json:"items"`
	}](t, rr)
	if len(payload.Items) != 1 || payload.Items[0].IsFromAdmin {
		t.Fatalf("unexpected chat messages: %+v", payload.Items)
	}

	if rr := srv.request(http.MethodGet, "/api/chat/sessions/not-a-uuid/messages", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid session, got %d", rr.Code)
	}

	if len(srv.api.Hub().Recent()) == 0 {
		t.Fatalf("expected chat notification on the admin topic")
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.request(http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"database":"up"`) {
		t.Fatalf("unexpected health body: %s", rr.Body.String())
	}
}
