package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mindsetu-api/internal/middleware"
	"github.com/noah-isme/mindsetu-api/internal/models"
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

// actorFromContext rebuilds the acting user from JWT claims. Tokens are only
// issued to activated accounts, so the actor is treated as active.
func actorFromContext(c *gin.Context) (models.User, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.User{}, false
	}
	return models.User{
		ID:            claims.UserID,
		Email:         claims.Email,
		UserType:      claims.UserType,
		InstituteName: claims.InstituteName,
		IsActivated:   true,
	}, true
}
