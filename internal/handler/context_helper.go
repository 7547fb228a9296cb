package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gradeview-api/internal/middleware"
	appErrors "github.com/noah-isme/gradeview-api/pkg/errors"
	"github.com/noah-isme/gradeview-api/pkg/response"
)

// studentFromContext returns the authenticated student id, writing a 401 when absent.
func studentFromContext(c *gin.Context) (string, bool) {
	claims := middleware.Claims(c)
	if claims == nil || claims.StudentID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.StudentID, true
}
