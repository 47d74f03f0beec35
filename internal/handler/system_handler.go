package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/service"
)

// HealthCheck 提供负载均衡与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type systemSettingsRequest struct {
	SiteName          string `json:"site_name" binding:"max=120"`
	SiteLogoURL       string `json:"site_logo_url" binding:"max=500"`
	NotificationEmail string `json:"notification_email" binding:"omitempty,email"`
	DefaultLanguage   string `json:"default_language" binding:"omitempty,oneof=sq en"`
}

func (r systemSettingsRequest) toInput() service.SystemSettingsInput {
	return service.SystemSettingsInput{
		SiteName:          r.SiteName,
		SiteLogoURL:       r.SiteLogoURL,
		NotificationEmail: r.NotificationEmail,
		DefaultLanguage:   r.DefaultLanguage,
	}
}

// GetSystemSettings 返回当前系统设置。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSystemSettings 保存系统设置。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var payload systemSettingsRequest
	if !a.bindJSON(c, &payload) {
		return
	}

	settings, err := a.system.UpdateSettings(payload.toInput())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	a.contentChanged(c.Request.Context())
	a.respondMessage(c, http.StatusOK, locale.MsgSaved, gin.H{"settings": settings})
}
