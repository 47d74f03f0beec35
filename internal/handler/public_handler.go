package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/db"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/middleware"
	"github.com/schoolsite/internal/service"
)

// GetSite 返回首页所需的全部公开内容，同时记录一次访问。
func (a *API) GetSite(c *gin.Context) {
	payload, err := a.landing.Load(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.recordVisit(c)
	c.JSON(http.StatusOK, payload)
}

// RecordVisit 供前端在路由切换时上报页面访问。
func (a *API) RecordVisit(c *gin.Context) {
	a.recordVisit(c)
	c.Status(http.StatusNoContent)
}

func (a *API) recordVisit(c *gin.Context) {
	visitorID := middleware.EnsureVisitorID(c)
	if err := a.analytics.RecordSiteVisit(visitorID, a.now().UTC()); err != nil {
		a.logger.Warn("record site visit failed", "error", err)
	}
}

// ListGallery 支持 ?category= 与 ?type=image|video 过滤。
func (a *API) ListGallery(c *gin.Context) {
	items, err := a.gallery.ListActiveByCategory(c.Query("category"), c.Query("type"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GalleryCategories 返回可见图库的分类列表。
func (a *API) GalleryCategories(c *gin.Context) {
	categories, err := a.gallery.Categories()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": categories})
}

// ListFAQ 支持 ?category= 过滤。
func (a *API) ListFAQ(c *gin.Context) {
	items, err := a.faq.ListActiveByCategory(c.Query("category"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetContentMap 返回 section_key 到内容的映射。
func (a *API) GetContentMap(c *gin.Context) {
	sections, err := a.content.All()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

type newsView struct {
	db.NewsItem
	HTML string `json:"html"`
}

// ListNews 分页返回已发布新闻。
func (a *API) ListNews(c *gin.Context) {
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		published := true
		result, err := a.news.List(service.NewsFilter{
			Category:  category,
			Published: &published,
			Page:      parsePositiveInt(c.Query("page"), 1),
			PerPage:   parsePositiveInt(c.Query("per_page"), 9),
		})
		if err != nil {
			a.respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	result, err := a.news.ListPublished(parsePositiveInt(c.Query("page"), 1), parsePositiveInt(c.Query("per_page"), 9))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListFeaturedNews 返回精选新闻。
func (a *API) ListFeaturedNews(c *gin.Context) {
	items, err := a.news.ListFeatured(parsePositiveInt(c.Query("limit"), 3))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetNews 返回单篇已发布新闻及渲染后的 HTML。
func (a *API) GetNews(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	item, err := a.news.GetPublished(id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	rendered, err := service.RenderMarkdown(item.Content)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": newsView{NewsItem: *item, HTML: rendered}})
}

// ListCalendar 返回 [from, to] 内的事件，缺省为当前月份。
func (a *API) ListCalendar(c *gin.Context) {
	now := a.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from, okFrom := parseDateParam(c.Query("from"), monthStart)
	to, okTo := parseDateParam(c.Query("to"), monthStart.AddDate(0, 1, 0).Add(-time.Second))
	// 只有日期的 to 包含当天
	if raw := strings.TrimSpace(c.Query("to")); okTo && len(raw) == len("2006-01-02") {
		to = to.Add(24*time.Hour - time.Second)
	}
	if !okFrom || !okTo {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  locale.T(a.lang(c), locale.MsgValidationFailed),
			"fields": gin.H{"from": "must be YYYY-MM-DD or RFC3339", "to": "must be YYYY-MM-DD or RFC3339"},
		})
		return
	}
	events, err := a.calendar.ListRange(from, to, c.Query("type"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": events, "from": from, "to": to})
}

// ListUpcomingEvents 返回即将到来的事件。
func (a *API) ListUpcomingEvents(c *gin.Context) {
	events, err := a.calendar.ListUpcoming(a.now(), parsePositiveInt(c.Query("limit"), 5))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": events})
}

// parseDateParam 接受 YYYY-MM-DD 或 RFC3339；空值返回 fallback。
func parseDateParam(raw string, fallback time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, true
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), true
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=120"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"max=255"`
	Message string `json:"message" binding:"required,max=5000"`
}

// SubmitContact 保存联系表单。
func (a *API) SubmitContact(c *gin.Context) {
	var payload contactRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	msg, err := a.contacts.Submit(c.Request.Context(), service.ContactInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Subject: payload.Subject,
		Message: payload.Message,
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusCreated, locale.MsgContactSent, gin.H{"id": msg.ID})
}

type newsletterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	FullName string `json:"full_name" binding:"max=120"`
}

// Subscribe 订阅新闻通讯。
func (a *API) Subscribe(c *gin.Context) {
	var payload newsletterRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	if _, err := a.newsletter.Subscribe(c.Request.Context(), payload.Email, payload.FullName); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusCreated, locale.MsgSubscribed, nil)
}

type unsubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Unsubscribe 取消订阅。
func (a *API) Unsubscribe(c *gin.Context) {
	var payload unsubscribeRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	if err := a.newsletter.Unsubscribe(payload.Email); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusOK, locale.MsgUnsubscribed, nil)
}

type applicationDocumentRequest struct {
	Name string `json:"name" binding:"max=200"`
	URL  string `json:"url" binding:"required,max=500"`
}

type applicationRequest struct {
	ApplicantName  string                       `json:"applicant_name" binding:"required,max=160"`
	ApplicantEmail string                       `json:"applicant_email" binding:"required,email,max=255"`
	ApplicantPhone string                       `json:"applicant_phone" binding:"omitempty,phone"`
	ParentName     string                       `json:"parent_name" binding:"required,max=160"`
	ParentPhone    string                       `json:"parent_phone" binding:"required,phone"`
	GradeLevel     string                       `json:"grade_level" binding:"required,max=40"`
	Program        string                       `json:"program" binding:"required,max=160"`
	PreviousSchool string                       `json:"previous_school" binding:"max=200"`
	Notes          string                       `json:"notes" binding:"max=5000"`
	Documents      []applicationDocumentRequest `json:"documents" binding:"max=10,dive"`
}

// SubmitApplication 保存入学申请。
func (a *API) SubmitApplication(c *gin.Context) {
	var payload applicationRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	documents := make([]db.ApplicationDocument, 0, len(payload.Documents))
	for _, doc := range payload.Documents {
		documents = append(documents, db.ApplicationDocument{Name: doc.Name, URL: doc.URL})
	}
	app, err := a.applications.Submit(c.Request.Context(), service.ApplicationInput{
		ApplicantName:  payload.ApplicantName,
		ApplicantEmail: payload.ApplicantEmail,
		ApplicantPhone: payload.ApplicantPhone,
		ParentName:     payload.ParentName,
		ParentPhone:    payload.ParentPhone,
		GradeLevel:     payload.GradeLevel,
		Program:        payload.Program,
		PreviousSchool: payload.PreviousSchool,
		Notes:          payload.Notes,
		Documents:      documents,
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusCreated, locale.MsgApplicationSent, gin.H{"id": app.ID, "status": app.Status})
}

// UploadApplicationDocument 申请表附件上传，只接受图片（证件扫描件）。
func (a *API) UploadApplicationDocument(c *gin.Context) {
	a.saveUpload(c, "applications")
}

type feedbackRequest struct {
	Category    string `json:"category" binding:"required,max=80"`
	Rating      int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment     string `json:"comment" binding:"max=2000"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// SubmitFeedback 保存评分。
func (a *API) SubmitFeedback(c *gin.Context) {
	var payload feedbackRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	if _, err := a.feedback.Submit(service.FeedbackInput{
		Category:    payload.Category,
		Rating:      payload.Rating,
		Comment:     payload.Comment,
		IsAnonymous: payload.IsAnonymous,
	}); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusCreated, locale.MsgFeedbackSent, nil)
}

// TooManyRequests 是限流中间件的本地化响应。
func (a *API) TooManyRequests(c *gin.Context) {
	respondError(c, http.StatusTooManyRequests, locale.T(a.lang(c), locale.MsgTooManyRequests))
}
