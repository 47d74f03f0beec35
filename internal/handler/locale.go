package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schoolsite/internal/locale"
)

const (
	localeContextKey     = "__request_locale"
	languageCookieName   = "ss_lang"
	languageCookieMaxAge = 365 * 24 * 60 * 60
)

// LocaleMiddleware resolves request language and sets headers for downstream caching.
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		pref := a.requestLocale(c)
		c.Header("Content-Language", pref.HTMLLang)
		varyHeaders := []string{"Accept-Language"}
		if readLanguageCookie(c) != "" || locale.NormalizeLanguage(c.Query("lang")) != "" {
			varyHeaders = append(varyHeaders, "Cookie")
		}
		appendVaryHeader(c, varyHeaders...)
		c.Next()
	}
}

func (a *API) lang(c *gin.Context) string {
	return a.requestLocale(c).Language
}

func (a *API) requestLocale(c *gin.Context) locale.Preference {
	if cached, exists := c.Get(localeContextKey); exists {
		if pref, ok := cached.(locale.Preference); ok {
			return pref
		}
	}
	language, persist := a.resolveLanguage(c)
	pref := locale.PreferenceForLanguage(language)
	if persist {
		persistLanguage(c, pref.Language)
	}
	c.Set(localeContextKey, pref)
	return pref
}

// resolveLanguage 依次检查 ?lang、cookie、Accept-Language 与系统默认语言。
func (a *API) resolveLanguage(c *gin.Context) (string, bool) {
	if override := locale.NormalizeLanguage(c.Query("lang")); override != "" {
		return override, true
	}
	if cookie := readLanguageCookie(c); cookie != "" {
		return cookie, false
	}
	if fromHeader := locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language")); fromHeader != "" {
		return fromHeader, false
	}
	if a != nil && a.system != nil {
		settings, err := a.system.GetSettings()
		if err != nil {
			_ = c.Error(err)
		} else if settings.DefaultLanguage != "" {
			return settings.DefaultLanguage, false
		}
	}
	return locale.LanguageAlbanian, false
}

func readLanguageCookie(c *gin.Context) string {
	value, err := c.Cookie(languageCookieName)
	if err != nil {
		return ""
	}
	return locale.NormalizeLanguage(value)
}

func persistLanguage(c *gin.Context, language string) {
	normalized := locale.NormalizeLanguage(language)
	if normalized == "" {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     languageCookieName,
		Value:    normalized,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https"),
		MaxAge:   languageCookieMaxAge,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
}

func appendVaryHeader(c *gin.Context, headers ...string) {
	existing := c.Writer.Header().Get("Vary")
	seen := make(map[string]struct{})
	order := make([]string, 0, len(headers))
	for _, token := range append(strings.Split(existing, ","), headers...) {
		trimmed := strings.TrimSpace(token)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		order = append(order, trimmed)
	}
	if len(order) > 0 {
		c.Header("Vary", strings.Join(order, ", "))
	}
}
