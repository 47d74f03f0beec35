package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxTrafficHours = 24 * 14

// Dashboard 返回后台首页统计。
func (a *API) Dashboard(c *gin.Context) {
	dashboard, err := a.analytics.Dashboard(a.now())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Traffic 返回最近 ?hours= 小时的 PV/UV，默认 24，最多两周。
func (a *API) Traffic(c *gin.Context) {
	hours := parsePositiveInt(c.Query("hours"), 24)
	if hours > maxTrafficHours {
		hours = maxTrafficHours
	}
	points, err := a.analytics.HourlyTrafficTrend(a.now(), hours)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": points, "hours": hours})
}
