package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/aethra-press/publishing-api/internal/middleware"
	"github.com/aethra-press/publishing-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.EditorClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.EditorClaims)
	if !ok {
		return nil
	}
	return claims
}
