package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/service"
)

// ListContactMessages 支持 ?unread=true 只看未读。
func (a *API) ListContactMessages(c *gin.Context) {
	unreadOnly := false
	if unread := queryBool(c, "unread"); unread != nil {
		unreadOnly = *unread
	}
	messages, err := a.contacts.List(unreadOnly)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	total, unread, err := a.contacts.Count()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": messages, "total": total, "unread": unread})
}

type readRequest struct {
	IsRead *bool `json:"is_read" binding:"required"`
}

// MarkContactMessage 设置已读状态
func (a *API) MarkContactMessage(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	var payload readRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	if err := a.contacts.MarkRead(id, *payload.IsRead); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusOK, locale.MsgSaved, nil)
}

// DeleteContactMessage 删除留言
func (a *API) DeleteContactMessage(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	if err := a.contacts.Delete(id); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

// ListSubscribers 支持 ?active=true 只看有效订阅。
func (a *API) ListSubscribers(c *gin.Context) {
	activeOnly := false
	if active := queryBool(c, "active"); active != nil {
		activeOnly = *active
	}
	subscribers, err := a.newsletter.List(activeOnly)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": subscribers})
}

// DeleteSubscriber 删除订阅者
func (a *API) DeleteSubscriber(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	if err := a.newsletter.Delete(id); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

// ListApplications 支持 status/search 过滤与分页。
func (a *API) ListApplications(c *gin.Context) {
	result, err := a.applications.List(service.ApplicationFilter{
		Status:  c.Query("status"),
		Search:  c.Query("search"),
		Page:    parsePositiveInt(c.Query("page"), 1),
		PerPage: parsePositiveInt(c.Query("per_page"), 20),
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	counts, err := a.applications.CountByStatus()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"counts":      counts,
	})
}

// GetApplication 返回单个申请
func (a *API) GetApplication(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	app, err := a.applications.Get(id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": app})
}

type applicationStatusRequest struct {
	Status string  `json:"status" binding:"required,oneof=pending reviewing approved rejected"`
	Notes  *string `json:"notes" binding:"omitempty,max=5000"`
}

// UpdateApplicationStatus 审核申请，离开 pending 时写入 reviewed_at。
func (a *API) UpdateApplicationStatus(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	var payload applicationStatusRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	app, err := a.applications.UpdateStatus(id, payload.Status, payload.Notes)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": app})
}

// DeleteApplication 删除申请
func (a *API) DeleteApplication(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	if err := a.applications.Delete(id); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

// ListFeedback 支持 ?category= 过滤。
func (a *API) ListFeedback(c *gin.Context) {
	items, err := a.feedback.List(c.Query("category"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// FeedbackSummary 按分类返回数量与平均分。
func (a *API) FeedbackSummary(c *gin.Context) {
	summary, err := a.feedback.Summary()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": summary})
}

// DeleteFeedback 删除评分
func (a *API) DeleteFeedback(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	if err := a.feedback.Delete(id); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

// RegisterInboxAdmin 挂载留言、订阅、申请与评分路由。
func (a *API) RegisterInboxAdmin(group *gin.RouterGroup) {
	group.GET("/messages", a.ListContactMessages)
	group.PATCH("/messages/:id", a.MarkContactMessage)
	group.DELETE("/messages/:id", a.DeleteContactMessage)

	group.GET("/subscribers", a.ListSubscribers)
	group.DELETE("/subscribers/:id", a.DeleteSubscriber)

	group.GET("/applications", a.ListApplications)
	group.GET("/applications/:id", a.GetApplication)
	group.PATCH("/applications/:id", a.UpdateApplicationStatus)
	group.DELETE("/applications/:id", a.DeleteApplication)

	group.GET("/feedback", a.ListFeedback)
	group.GET("/feedback/summary", a.FeedbackSummary)
	group.DELETE("/feedback/:id", a.DeleteFeedback)
}
