// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/story-mcp/internal/i18n"
)

func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	if defaultLang == "" {
		defaultLang = "en"
	}

	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			lang = parseAcceptLanguage(c.GetHeader("Accept-Language"))
		}
		if lang == "" || !i18n.IsSupported(lang) {
			lang = defaultLang
		}

		c.Set("lang", lang)
		c.Next()
	}
}

// parseAcceptLanguage handles values like "zh-TW,zh;q=0.9,en;q=0.8" by
// taking the first preference.
func parseAcceptLanguage(header string) string {
	if header == "" {
		return ""
	}
	first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
	switch first {
	case "zh-TW", "zh-Hant", "zh_TW", "zh":
		return "zh_TW"
	case "en", "en-US", "en-GB":
		return "en"
	default:
		return first
	}
}
