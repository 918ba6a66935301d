package webhook

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"agency_portal_backend/platform/httpkit"
	"agency_portal_backend/platform/logger"
)

const contextAPIKeyID = "webhook_api_key_id"

// HeaderAPIKey carries the webhook credential on form submissions.
const HeaderAPIKey = "X-Webhook-API-Key"

// APIKeyAuthMiddleware authenticates form submissions with the API key
// header and enforces the key's allowed-domain list against the Origin
// (or Referer) of the request.
func APIKeyAuthMiddleware(store Store, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		plaintext := c.GetHeader(HeaderAPIKey)
		if plaintext == "" {
			httpkit.Error(c, http.StatusUnauthorized, "missing API key", nil)
			c.Abort()
			return
		}

		key, err := store.GetByHash(c.Request.Context(), HashKey(plaintext))
		if err != nil {
			log.Warn("webhook auth rejected", "remote_ip", c.ClientIP())
			httpkit.Error(c, http.StatusUnauthorized, "invalid API key", nil)
			c.Abort()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = c.GetHeader("Referer")
		}
		if !isDomainAllowed(origin, key.AllowedDomains) {
			log.Warn("webhook origin rejected", "origin", origin, "key_prefix", key.KeyPrefix)
			httpkit.Error(c, http.StatusForbidden, "origin not allowed for this key", nil)
			c.Abort()
			return
		}

		c.Set(contextAPIKeyID, key.ID.String())
		c.Next()
	}
}

// isDomainAllowed reports whether the request origin matches any entry
// in the key's allow list. An empty list allows all origins. Entries
// may be bare hosts ("example.com") or wildcards ("*.example.com").
func isDomainAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	if origin == "" {
		return false
	}

	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(host)

	for _, entry := range allowed {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if wild, ok := strings.CutPrefix(entry, "*."); ok {
			if host == wild || strings.HasSuffix(host, "."+wild) {
				return true
			}
			continue
		}
		if host == entry {
			return true
		}
	}
	return false
}
