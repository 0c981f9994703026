package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/readbridge/ufli-progress-api/internal/middleware"
	"github.com/readbridge/ufli-progress-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// siteFromContext resolves the caller's site scope from the validated token.
func siteFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.SiteID
}
