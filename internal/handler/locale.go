package handler

import (
	"strings"

	"github.com/collegecms/internal/locale"
	"github.com/gin-gonic/gin"
)

// LocaleMiddleware resolves the response language and advertises it to caches.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		pref := locale.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
		c.Header("Content-Language", pref.ContentLanguage)
		appendVaryHeader(c, "Accept-Language")
		c.Next()
	}
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
