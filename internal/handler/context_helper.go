package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/breakthefear/fees-api/internal/middleware"
	"github.com/breakthefear/fees-api/internal/models"
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

// actorFromContext resolves the acting user's email for the activity trail.
// Unauthenticated callers never reach mutating routes, but the fallback keeps
// the trail readable if that ever changes.
func actorFromContext(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.Email
	}
	return "system"
}
