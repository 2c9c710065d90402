package middleware

import (
	"net/http"

	"github.com/derslik/derslik-backend/internal/model"
	"github.com/derslik/derslik-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireRole checks that the authenticated user holds one of the given
// roles.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		code := response.ErrForbidden
		if len(roles) == 1 {
			switch roles[0] {
			case model.RoleStudent:
				code = response.ErrStudentAccessOnly
			case model.RoleTeacher:
				code = response.ErrTeacherAccessOnly
			}
		}
		response.AbortFail(c, http.StatusForbidden, code)
	}
}

// RequirePrivileged admits teachers and admins.
func RequirePrivileged() gin.HandlerFunc {
	return RequireRole(model.RoleTeacher, model.RoleAdmin)
}
