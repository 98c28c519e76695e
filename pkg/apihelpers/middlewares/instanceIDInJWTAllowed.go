package middlewares

import (
	"log/slog"
	"net/http"

	jwthandling "github.com/friendlylabs/surveyr-app-sub000/pkg/jwt-handling"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
)

func IsInstanceIDInJWTAllowed(allowedInstanceIDs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the validated token from the context
		parsedToken, ok := c.Get("validatedToken")
		if !ok {
			slog.Warn("validatedToken not found in context")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validatedToken not found in context"})
			return
		}

		instanceID := parsedToken.(*jwthandling.RespondentClaims).InstanceID

		if !utils.ContainsString(allowedInstanceIDs, instanceID) {
			slog.Warn("instanceID not allowed", slog.String("instanceID", instanceID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "instanceID not allowed"})
			return
		}
	}
}
