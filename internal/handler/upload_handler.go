package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/service"
)

// UploadImage 处理后台图片上传，表单字段为 file，可选 folder。
func (a *API) UploadImage(c *gin.Context) {
	a.saveUpload(c, c.PostForm("folder"))
}

func (a *API) saveUpload(c *gin.Context, folder string) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  locale.T(a.lang(c), locale.MsgValidationFailed),
			"fields": gin.H{"file": "is required"},
		})
		return
	}
	if header.Size > service.MaxUploadSize {
		a.respondServiceError(c, service.ErrFileTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	defer file.Close()

	stored, err := a.media.Save(file, folder)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": stored, "url": stored.URL})
}

type deleteUploadRequest struct {
	URL string `json:"url" binding:"required"`
}

// DeleteUpload 删除之前上传的文件。
func (a *API) DeleteUpload(c *gin.Context) {
	var payload deleteUploadRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	if err := a.media.Delete(payload.URL); err != nil {
		a.respondServiceError(c, err)
		return
	}
	a.respondMessage(c, http.StatusOK, locale.MsgDeleted, nil)
}
