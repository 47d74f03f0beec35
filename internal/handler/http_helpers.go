package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/locale"
	"github.com/schoolsite/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func (a *API) respondMessage(c *gin.Context, status int, key string, extra gin.H) {
	payload := gin.H{"message": locale.T(a.lang(c), key)}
	for k, v := range extra {
		payload[k] = v
	}
	c.JSON(status, payload)
}

// bindJSON 解析请求体，校验失败时返回 400 以及按 JSON 字段名组织的 fields。
func (a *API) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		lang := a.lang(c)
		if fields := fieldErrors(err); len(fields) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  locale.T(lang, locale.MsgValidationFailed),
				"fields": fields,
			})
			return false
		}
		respondError(c, http.StatusBadRequest, locale.T(lang, locale.MsgInvalidRequest))
		return false
	}
	return true
}

// respondServiceError 把 service 层的哨兵错误映射为状态码与本地化消息。
func (a *API) respondServiceError(c *gin.Context, err error) {
	lang := a.lang(c)

	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  locale.T(lang, locale.MsgValidationFailed),
			"fields": gin.H{validation.Field: validation.Reason},
		})
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, locale.T(lang, locale.MsgInvalidRequest))
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, locale.T(lang, locale.MsgNotFound))
	case errors.Is(err, service.ErrAlreadySubscribed):
		respondError(c, http.StatusConflict, locale.T(lang, locale.MsgAlreadySubscribed))
	case errors.Is(err, service.ErrDuplicate):
		respondError(c, http.StatusConflict, locale.T(lang, locale.MsgDuplicate))
	case errors.Is(err, service.ErrInvalidSession):
		respondError(c, http.StatusBadRequest, locale.T(lang, locale.MsgInvalidSession))
	case errors.Is(err, service.ErrFileTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, locale.T(lang, locale.MsgFileTooLarge))
	case errors.Is(err, service.ErrUnsupportedMedia):
		respondError(c, http.StatusUnsupportedMediaType, locale.T(lang, locale.MsgUnsupportedMedia))
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, locale.T(lang, locale.MsgInvalidCredentials))
	case errors.Is(err, service.ErrNotAdmin):
		respondError(c, http.StatusForbidden, locale.T(lang, locale.MsgNotAdmin))
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, locale.T(lang, locale.MsgServerError))
	}
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// idParam 读取 :id，无效时直接写回 400。
func (a *API) idParam(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, locale.T(a.lang(c), locale.MsgInvalidRequest))
		return 0, false
	}
	return id, true
}

func parsePositiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// queryBool 解析 1/true/yes，缺省时返回 nil。
func queryBool(c *gin.Context, key string) *bool {
	raw, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		value = strings.EqualFold(strings.TrimSpace(raw), "yes")
	}
	return &value
}

// originPatterns 把允许的 Origin 转为 websocket 使用的 host 模式。
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			patterns = append(patterns, parsed.Host)
			continue
		}
		patterns = append(patterns, origin)
	}
	return patterns
}
