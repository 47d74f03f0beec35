package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/report"
)

// Recovery 捕获 panic 并上报，然后返回 500。
func Recovery(reporter report.Reporter) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if reporter != nil {
			reporter.Panic(c.Request, recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
	})
}

// ReportErrors 上报 handler 通过 c.Error 记录且最终返回 5xx 的错误。
func ReportErrors(reporter report.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if reporter == nil || c.Writer.Status() < http.StatusInternalServerError {
			return
		}
		for _, ginErr := range c.Errors {
			reporter.Error(c.Request, ginErr.Err)
		}
	}
}
