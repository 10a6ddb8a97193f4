package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// OriginLoopback in the allow list admits any browser origin served from
// localhost, 127.0.0.1 or ::1 on any port.
const OriginLoopback = "loopback"

type originPolicy struct {
	any      bool
	loopback bool
	exact    map[string]struct{}
}

func newOriginPolicy(allowedOrigins []string) originPolicy {
	policy := originPolicy{exact: make(map[string]struct{}, len(allowedOrigins))}
	if len(allowedOrigins) == 0 {
		policy.loopback = true
	}
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		switch origin {
		case "":
		case "*":
			policy.any = true
		case OriginLoopback:
			policy.loopback = true
		default:
			policy.exact[strings.TrimSuffix(origin, "/")] = struct{}{}
		}
	}
	return policy
}

// allow returns the Access-Control-Allow-Origin value for origin, or "".
func (p originPolicy) allow(origin string) string {
	if p.any {
		return "*"
	}
	if _, ok := p.exact[origin]; ok {
		return origin
	}
	if p.loopback && isLoopbackOrigin(origin) {
		return origin
	}
	return ""
}

func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// CORS lets browser dashboards drive the daemon. With no configured origins
// only loopback pages are admitted. Preflights from other origins get 403.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	policy := newOriginPolicy(allowedOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := ""
		if origin != "" {
			allowed = policy.allow(origin)
			if allowed != "" {
				c.Header("Access-Control-Allow-Origin", allowed)
			}
			if allowed != "*" {
				c.Header("Vary", "Origin")
			}
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}

		if origin != "" && allowed == "" {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization,Content-Type")
		c.Header("Access-Control-Max-Age", "86400")
		c.AbortWithStatus(http.StatusNoContent)
	}
}
