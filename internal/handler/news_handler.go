package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/service"
)

type newsRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Excerpt     string `json:"excerpt" binding:"max=1000"`
	Content     string `json:"content" binding:"required"`
	Category    string `json:"category" binding:"max=80"`
	ImageURL    string `json:"image_url" binding:"max=500"`
	IsPublished bool   `json:"is_published"`
	IsFeatured  bool   `json:"is_featured"`
}

func (r newsRequest) toInput() service.NewsInput {
	return service.NewsInput{
		Title:       r.Title,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		IsPublished: r.IsPublished,
		IsFeatured:  r.IsFeatured,
	}
}

// AdminListNews 后台新闻列表，支持 search/category/published 过滤与分页。
func (a *API) AdminListNews(c *gin.Context) {
	result, err := a.news.List(service.NewsFilter{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		Published: queryBool(c, "published"),
		Page:      parsePositiveInt(c.Query("page"), 1),
		PerPage:   parsePositiveInt(c.Query("per_page"), 20),
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdminGetNews 返回新闻，包括未发布的草稿。
func (a *API) AdminGetNews(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	item, err := a.news.Get(id)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// CreateNews 新建新闻。
func (a *API) CreateNews(c *gin.Context) {
	var payload newsRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	item, err := a.news.Create(payload.toInput())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.contentChanged(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// UpdateNews 更新新闻，首次发布时写入 published_at。
func (a *API) UpdateNews(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	var payload newsRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	item, err := a.news.Update(id, payload.toInput())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.contentChanged(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeleteNews 删除新闻
func (a *API) DeleteNews(c *gin.Context) {
	id, ok := a.idParam(c)
	if !ok {
		return
	}
	if err := a.news.Delete(id); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.contentChanged(c.Request.Context())
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

type previewRequest struct {
	Content string `json:"content"`
}

// PreviewNews 渲染编辑器中的 Markdown，不落库。
func (a *API) PreviewNews(c *gin.Context) {
	var payload previewRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	rendered, err := service.RenderMarkdown(payload.Content)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"html":    rendered,
		"excerpt": service.DeriveExcerpt(payload.Content, 200),
	})
}

// RegisterNewsAdmin 挂载后台新闻路由。
func (a *API) RegisterNewsAdmin(group *gin.RouterGroup) {
	group.GET("/news", a.AdminListNews)
	group.POST("/news", a.CreateNews)
	group.POST("/news/preview", a.PreviewNews)
	group.GET("/news/:id", a.AdminGetNews)
	group.PUT("/news/:id", a.UpdateNews)
	group.DELETE("/news/:id", a.DeleteNews)
}
