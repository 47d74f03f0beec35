package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/locale"
)

// collectionService 是所有可排序内容表共有的操作。
type collectionService[T any, I any] interface {
	ListActive() ([]T, error)
	ListAll() ([]T, error)
	Get(id uint) (*T, error)
	Create(input I) (*T, error)
	Update(id uint, input I) (*T, error)
	Delete(id uint) error
	Reorder(ids []uint) error
}

// inputRequest 是请求体到 service 输入的转换。
type inputRequest[I any] interface {
	toInput() I
}

type reorderRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// resource 为一张内容表提供后台 CRUD 与公开列表。
type resource[T any, I any, P inputRequest[I]] struct {
	api *API
	svc collectionService[T, I]
}

func newResource[T any, I any, P inputRequest[I]](api *API, svc collectionService[T, I]) resource[T, I, P] {
	return resource[T, I, P]{api: api, svc: svc}
}

func (r resource[T, I, P]) register(group *gin.RouterGroup, path string) {
	group.GET(path, r.list)
	group.POST(path, r.create)
	group.POST(path+"/reorder", r.reorder)
	group.GET(path+"/:id", r.get)
	group.PUT(path+"/:id", r.update)
	group.DELETE(path+"/:id", r.remove)
}

func (r resource[T, I, P]) listActive(c *gin.Context) {
	items, err := r.svc.ListActive()
	if err != nil {
		r.api.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (r resource[T, I, P]) list(c *gin.Context) {
	items, err := r.svc.ListAll()
	if err != nil {
		r.api.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (r resource[T, I, P]) get(c *gin.Context) {
	id, ok := r.api.idParam(c)
	if !ok {
		return
	}
	item, err := r.svc.Get(id)
	if err != nil {
		r.api.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (r resource[T, I, P]) create(c *gin.Context) {
	var payload P
	if !r.api.bindJSON(c, &payload) {
		return
	}
	item, err := r.svc.Create(payload.toInput())
	if err != nil {
		r.api.respondServiceError(c, err)
		return
	}
	r.api.contentChanged(c.Request.Context())
	r.api.respondMessage(c, http.StatusCreated, locale.MsgSaved, gin.H{"item": item})
}

func (r resource[T, I, P]) update(c *gin.Context) {
	id, ok := r.api.idParam(c)
	if !ok {
		return
	}
	var payload P
	if !r.api.bindJSON(c, &payload) {
		return
	}
	item, err := r.svc.Update(id, payload.toInput())
	if err != nil {
		r.api.respondServiceError(c, err)
		return
	}
	r.api.contentChanged(c.Request.Context())
	r.api.respondMessage(c, http.StatusOK, locale.MsgSaved, gin.H{"item": item})
}

func (r resource[T, I, P]) remove(c *gin.Context) {
	id, ok := r.api.idParam(c)
	if !ok {
		return
	}
	if err := r.svc.Delete(id); err != nil {
		r.api.respondServiceError(c, err)
		return
	}
	r.api.contentChanged(c.Request.Context())
	r.api.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}

func (r resource[T, I, P]) reorder(c *gin.Context) {
	var payload reorderRequest
	if !r.api.bindJSON(c, &payload) {
		return
	}
	if err := r.svc.Reorder(payload.IDs); err != nil {
		r.api.respondServiceError(c, err)
		return
	}
	r.api.contentChanged(c.Request.Context())
	r.api.respondMessage(c, http.StatusOK, locale.MsgSaved, nil)
}
