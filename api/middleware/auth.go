package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/jobscout/models"
)

// ErrCodeUnauthorized is reported when a status request lacks a valid key.
const ErrCodeUnauthorized = "UNAUTHORIZED"

// Auth guards the progress endpoints with the keys from JOBSCOUT_STATUS_API_KEYS.
// A key is accepted from X-API-Key or an Authorization bearer token. With no
// keys configured the status server is open, which suits a loopback address.
func Auth(apiKeys []string) gin.HandlerFunc {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}
	if len(keys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if presented := requestKey(c.Request); presented != "" && knownKey(keys, presented) {
			c.Next()
			return
		}
		c.Header("WWW-Authenticate", `Bearer realm="jobscout"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, &models.ErrorDetail{
			Code:    ErrCodeUnauthorized,
			Message: "progress requires a status API key",
		})
	}
}

// knownKey compares against every key so timing does not reveal which matched.
func knownKey(keys [][]byte, presented string) bool {
	p := []byte(presented)
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, p)
	}
	return found == 1
}

func requestKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
