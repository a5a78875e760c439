package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dogame-art/nfc-gateway/internal/classifier"
)

// Classify partitions the caller and blocks bots outright. The class is
// recomputed on every request; nothing is remembered between calls.
func Classify(cls *classifier.Classifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		class := cls.Classify(
			c.Request.UserAgent(),
			c.GetHeader(classifier.DeviceTypeHeader),
		)
		c.Set(ContextKeyClass, class)

		if class == classifier.Bot {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Forbidden",
			})
			return
		}

		c.Next()
	}
}
