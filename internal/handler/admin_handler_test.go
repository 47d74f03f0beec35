package handler_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/realtime"
	"github.com/schoolsite/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemResponse[T any] struct {
	Item T `json:"item"`
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

func TestAdminAPIRequiresAuthentication(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.request(http.MethodGet, "/admin/api/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = srv.request(http.MethodGet, "/admin/api/dashboard", nil, withHeader("Authorization", "Bearer not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRejectsBadCredentialsAndNonAdmins(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.request(http.MethodPost, "/admin/login", map[string]string{"email": testAdminEmail, "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	_, err := service.NewAuthService(srv.db).CreateUser("mesues@shkolla.test", "fjalekalim-123", "Mësues", db.RoleTeacher)
	require.NoError(t, err)

	rr = srv.request(http.MethodPost, "/admin/login", map[string]string{"email": "mesues@shkolla.test", "password": "fjalekalim-123"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, rr.Result().Cookies(), "non-admins must not receive a session")
}

func TestSessionLoginAndLogout(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login()

	rr := srv.request(http.MethodGet, "/admin/me", nil, withCookies(cookies))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	me := decodeBody[struct {
		User db.User `json:"user"`
	}](t, rr)
	assert.Equal(t, testAdminEmail, me.User.Email)
	assert.Equal(t, db.RoleAdmin, me.User.Role)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = srv.request(http.MethodPost, "/admin/logout", nil, withCookies(cookies))
	require.Equal(t, http.StatusOK, rr.Code)
	cleared := rr.Result().Cookies()
	rr = srv.request(http.MethodGet, "/admin/me", nil, withCookies(cleared))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBearerTokenGrantsAdminAccess(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.request(http.MethodPost, "/admin/token", map[string]string{"email": testAdminEmail, "password": testAdminPassword})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	token := decodeBody[struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}](t, rr)
	require.NotEmpty(t, token.Token)
	assert.Equal(t, "Bearer", token.TokenType)

	rr = srv.request(http.MethodGet, "/admin/api/dashboard", nil, withHeader("Authorization", "Bearer "+token.Token))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestAdminAccessFollowsCurrentRole(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login()

	rr := srv.request(http.MethodPost, "/admin/token", map[string]string{"email": testAdminEmail, "password": testAdminPassword})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	token := decodeBody[struct {
		Token string `json:"token"`
	}](t, rr).Token
	bearer := withHeader("Authorization", "Bearer "+token)

	rr = srv.request(http.MethodGet, "/admin/api/dashboard", nil, withCookies(cookies))
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, srv.db.Model(&db.User{}).Where("email = ?", testAdminEmail).Update("role", db.RoleTeacher).Error)

	rr = srv.request(http.MethodGet, "/admin/api/dashboard", nil, withCookies(cookies))
	assert.Equal(t, http.StatusForbidden, rr.Code, "session of a demoted account")
	rr = srv.request(http.MethodGet, "/admin/api/dashboard", nil, bearer)
	assert.Equal(t, http.StatusForbidden, rr.Code, "token of a demoted account")

	require.NoError(t, srv.db.Where("email = ?", testAdminEmail).Delete(&db.User{}).Error)

	rr = srv.request(http.MethodDelete, "/admin/api/programs/1", nil, withCookies(cookies))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "session of a deleted account")
	rr = srv.request(http.MethodDelete, "/admin/api/programs/1", nil, bearer)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "token of a deleted account")
}

func TestContentCollectionCRUDAndReorder(t *testing.T) {
	srv := newTestServer(t)
	auth := withCookies(srv.login())

	create := func(title string) db.Program {
		rr := srv.request(http.MethodPost, "/admin/api/programs", map[string]string{"title": title}, auth)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		return decodeBody[itemResponse[db.Program]](t, rr).Item
	}
	first := create("Teknologji Informative")
	second := create("Mekatronikë")
	assert.True(t, first.IsActive)
	assert.Less(t, first.SortOrder, second.SortOrder)

	// 首页缓存先被填充，后续修改必须使其失效
	rr := srv.request(http.MethodGet, "/api/site", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.request(http.MethodPost, "/admin/api/programs/reorder", map[string][]uint{"ids": {second.ID, first.ID}}, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = srv.request(http.MethodGet, "/api/programs", nil)
	programs := decodeBody[itemsResponse[db.Program]](t, rr).Items
	require.Len(t, programs, 2)
	assert.Equal(t, second.ID, programs[0].ID)
	assert.Equal(t, first.ID, programs[1].ID)

	rr = srv.request(http.MethodPut, "/admin/api/programs/"+uintString(first.ID), map[string]any{"title": "Teknologji Informative", "is_active": false}, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = srv.request(http.MethodGet, "/api/site", nil)
	site := decodeBody[service.LandingPayload](t, rr)
	require.Len(t, site.Programs, 1)
	assert.Equal(t, "Mekatronikë", site.Programs[0].Title)

	rr = srv.request(http.MethodGet, "/admin/api/programs", nil, auth)
	assert.Len(t, decodeBody[itemsResponse[db.Program]](t, rr).Items, 2, "admin list includes inactive rows")

	rr = srv.request(http.MethodPost, "/admin/api/programs/reorder", map[string][]uint{"ids": {second.ID, 9999}}, auth)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = srv.request(http.MethodDelete, "/admin/api/programs/"+uintString(first.ID), nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = srv.request(http.MethodDelete, "/admin/api/programs/"+uintString(first.ID), nil, auth)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = srv.request(http.MethodPost, "/admin/api/programs", map[string]string{"description": "missing title"}, auth)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSiteContentUpsert(t *testing.T) {
	srv := newTestServer(t)
	auth := withCookies(srv.login())

	rr := srv.request(http.MethodPut, "/admin/api/site-content/hero_title", map[string]string{"content": "Mirë se vini"}, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = srv.request(http.MethodGet, "/api/content", nil)
	sections := decodeBody[struct {
		Sections map[string]string `json:"sections"`
	}](t, rr).Sections
	assert.Equal(t, "Mirë se vini", sections["hero_title"])

	rr = srv.request(http.MethodDelete, "/admin/api/site-content/hero_title", nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = srv.request(http.MethodGet, "/api/content/hero_title", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminNewsLifecycle(t *testing.T) {
	srv := newTestServer(t)
	auth := withCookies(srv.login())

	rr := srv.request(http.MethodPost, "/admin/api/news", map[string]any{
		"title":   "Regjistrimet për vitin e ri",
		"content": "Afati i fundit është **30 qershor**.",
	}, auth)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	draft := decodeBody[itemResponse[db.NewsItem]](t, rr).Item
	assert.False(t, draft.IsPublished)
	assert.Nil(t, draft.PublishedAt)
	assert.NotEmpty(t, draft.Excerpt)

	rr = srv.request(http.MethodGet, "/api/news/"+uintString(draft.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = srv.request(http.MethodPut, "/admin/api/news/"+uintString(draft.ID), map[string]any{
		"title":        draft.Title,
		"content":      draft.Content,
		"is_published": true,
		"is_featured":  true,
	}, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	published := decodeBody[itemResponse[db.NewsItem]](t, rr).Item
	require.NotNil(t, published.PublishedAt)

	rr = srv.request(http.MethodGet, "/api/news/featured", nil)
	assert.Len(t, decodeBody[itemsResponse[db.NewsItem]](t, rr).Items, 1)

	rr = srv.request(http.MethodGet, "/admin/api/news?published=false", nil, auth)
	assert.Empty(t, decodeBody[itemsResponse[db.NewsItem]](t, rr).Items)

	rr = srv.request(http.MethodPost, "/admin/api/news/preview", map[string]string{"content": "<script>alert(1)</script>\n\n**ok**"}, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	preview := decodeBody[map[string]string](t, rr)
	assert.NotContains(t, preview["html"], "<script>")
	assert.Contains(t, preview["html"], "<strong>ok</strong>")
}

func TestCalendarCreateRecordsAuthor(t *testing.T) {
	srv := newTestServer(t)
	auth := withCookies(srv.login())

	rr := srv.request(http.MethodPost, "/admin/api/calendar", map[string]any{
		"title":      "Provimet e maturës",
		"event_type": "academic",
		"start_date": "2026-06-10",
		"end_date":   "2026-06-20",
		"is_all_day": true,
	}, auth)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	event := decodeBody[itemResponse[db.CalendarEvent]](t, rr).Item
	require.NotNil(t, event.CreatedBy)
	require.NotNil(t, event.EndDate)
	assert.Equal(t, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), event.StartDate.UTC())

	rr = srv.request(http.MethodPost, "/admin/api/calendar", map[string]any{
		"title":      "Bad type",
		"event_type": "party",
		"start_date": "2026-06-10",
	}, auth)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = srv.request(http.MethodPost, "/admin/api/calendar", map[string]any{
		"title":      "Bad range",
		"event_type": "event",
		"start_date": "2026-06-10",
		"end_date":   "2026-06-01",
	}, auth)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApplicationReview(t *testing.T) {
	srv := newTestServer(t)
	auth := withCookies(srv.login())

	app := db.StudentApplication{
		ApplicantName:  "Era Berisha",
		ApplicantEmail: "era@example.com",
		ParentName:     "Ilir Berisha",
		ParentPhone:    "+383 44 000 111",
		GradeLevel:     "10",
		Program:        "Ekonomi",
		Status:         db.ApplicationPending,
		SubmittedAt:    time.Now().UTC(),
	}
	require.NoError(t, srv.db.Create(&app).Error)

	rr := srv.request(http.MethodPatch, "/admin/api/applications/"+uintString(app.ID), map[string]string{"status": "approved", "notes": "Dokumentet në rregull"}, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	reviewed := decodeBody[itemResponse[db.StudentApplication]](t, rr).Item
	assert.Equal(t, db.ApplicationApproved, reviewed.Status)
	assert.NotNil(t, reviewed.ReviewedAt)

	rr = srv.request(http.MethodPatch, "/admin/api/applications/"+uintString(app.ID), map[string]string{"status": "bogus"}, auth)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = srv.request(http.MethodGet, "/admin/api/applications?status=approved", nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[struct {
		Items  []db.StudentApplication `json:"items"`
		Counts map[string]int64        `json:"counts"`
	}](t, rr)
	assert.Len(t, list.Items, 1)
	assert.EqualValues(t, 1, list.Counts[db.ApplicationApproved])
}

func TestContactInboxAndNotifications(t *testing.T) {
	srv := newTestServer(t)
	auth := withCookies(srv.login())

	rr := srv.request(http.MethodPut, "/admin/api/settings", map[string]string{
		"site_name":          "Shkolla Profesionale",
		"notification_email": "zyra@shkolla.test",
		"default_language":   "en",
	}, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = srv.request(http.MethodPost, "/api/contact", map[string]string{
		"name":    "Lule",
		"email":   "lule@example.com",
		"message": "Pyetje për orarin",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "Your message has been sent", decodeBody[map[string]any](t, rr)["message"], "falls back to the configured default language")

	sent := srv.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "zyra@shkolla.test", sent[0].To[0].Address)

	rr = srv.request(http.MethodGet, "/admin/api/notifications", nil, auth)
	events := decodeBody[itemsResponse[realtime.Event]](t, rr).Items
	require.NotEmpty(t, events)
	assert.Equal(t, realtime.EventContact, events[0].Type)

	rr = srv.request(http.MethodGet, "/admin/api/messages?unread=true", nil, auth)
	inbox := decodeBody[struct {
		Items  []db.ContactMessage `json:"items"`
		Unread int64               `json:"unread"`
	}](t, rr)
	require.Len(t, inbox.Items, 1)
	assert.EqualValues(t, 1, inbox.Unread)

	rr = srv.request(http.MethodPatch, "/admin/api/messages/"+uintString(inbox.Items[0].ID), map[string]bool{"is_read": true}, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = srv.request(http.MethodGet, "/admin/api/messages?unread=true", nil, auth)
	assert.Empty(t, decodeBody[itemsResponse[db.ContactMessage]](t, rr).Items)

	rr = srv.request(http.MethodGet, "/api/site", nil)
	site := decodeBody[service.LandingPayload](t, rr)
	assert.Empty(t, site.Settings.NotificationEmail, "notification email stays private")

	rr = srv.request(http.MethodDelete, "/admin/api/notifications", nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, srv.api.Hub().Recent())
}

func TestAdminChatReply(t *testing.T) {
	srv := newTestServer(t)
	auth := withCookies(srv.login())

	session := decodeBody[map[string]string](t, srv.request(http.MethodPost, "/api/chat/sessions", nil))["session_id"]
	rr := srv.request(http.MethodPost, "/api/chat/sessions/"+session+"/messages", map[string]string{"message": "A keni konvikt?"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	sub := srv.api.Hub().Subscribe(realtime.ChatTopic(session))
	defer sub.Close()

	rr = srv.request(http.MethodGet, "/admin/api/chat/sessions", nil, auth)
	sessions := decodeBody[struct {
		Items  []service.ChatSession `json:"items"`
		Unread int64                 `json:"unread"`
	}](t, rr)
	require.Len(t, sessions.Items, 1)
	assert.Equal(t, 1, sessions.Items[0].Unread)

	rr = srv.request(http.MethodPost, "/admin/api/chat/sessions/"+session+"/reply", map[string]string{"message": "Po, kemi."}, auth)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	reply := decodeBody[itemResponse[db.ChatMessage]](t, rr).Item
	assert.True(t, reply.IsFromAdmin)
	assert.Equal(t, testAdminEmail, reply.SenderName)

	select {
	case event := <-sub.C:
		assert.Equal(t, realtime.EventChat, event.Type)
		assert.Equal(t, "Po, kemi.", event.Message)
	case <-time.After(time.Second):
		t.Fatal("expected reply to be pushed to the chat topic")
	}

	rr = srv.request(http.MethodPost, "/admin/api/chat/sessions/"+session+"/read", nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = srv.request(http.MethodGet, "/admin/api/chat/sessions", nil, auth)
	assert.EqualValues(t, 0, decodeBody[map[string]any](t, rr)["unread"])

	rr = srv.request(http.MethodDelete, "/admin/api/chat/sessions/"+session, nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = srv.request(http.MethodPost, "/admin/api/chat/sessions/"+session+"/reply", map[string]string{"message": "late"}, auth)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadImage(t *testing.T) {
	srv := newTestServer(t)
	auth := withCookies(srv.login())

	upload := func(name string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, writer.WriteField("folder", "gallery"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/admin/api/uploads", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		auth(req)
		rr := httptest.NewRecorder()
		srv.engine.ServeHTTP(rr, req)
		return rr
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var pngData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, img))

	rr := upload("photo.png", pngData.Bytes())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	stored := decodeBody[itemResponse[service.StoredMedia]](t, rr).Item
	assert.Equal(t, 4, stored.Width)
	assert.Equal(t, 3, stored.Height)

	rr = srv.request(http.MethodGet, stored.URL, nil)
	assert.Equal(t, http.StatusOK, rr.Code, "uploads are served statically")

	rr = upload("notes.png", []byte("just some text"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	rr = srv.request(http.MethodDelete, "/admin/api/uploads", map[string]string{"url": stored.URL}, auth)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestDashboardAndTraffic(t *testing.T) {
	srv := newTestServer(t)
	auth := withCookies(srv.login())

	srv.request(http.MethodPost, "/api/visits", nil)

	rr := srv.request(http.MethodGet, "/admin/api/dashboard", nil, auth)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	dashboard := decodeBody[service.Dashboard](t, rr)
	assert.EqualValues(t, 1, dashboard.PageViews24h)

	rr = srv.request(http.MethodGet, "/admin/api/analytics/traffic?hours=6", nil, auth)
	require.Equal(t, http.StatusOK, rr.Code)
	traffic := decodeBody[struct {
		Items []service.HourlyTrafficPoint `json:"items"`
		Hours int                          `json:"hours"`
	}](t, rr)
	assert.Equal(t, 6, traffic.Hours)
	assert.Len(t, traffic.Items, 6)
}
