package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dogame-art/nfc-gateway/internal/auth"
	"github.com/dogame-art/nfc-gateway/internal/classifier"
)

// DeviceAuth enforces the bearer credential on trusted-device requests.
// Generic callers pass through untouched; their path never reads artwork
// data. Absent, malformed and wrong credentials all produce the same 401.
func DeviceAuth(authenticator *auth.DeviceAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ClassFromContext(c) != classifier.TrustedDevice {
			c.Next()
			return
		}

		if !authenticator.Authenticate(c.GetHeader("Authorization")) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		c.Next()
	}
}
