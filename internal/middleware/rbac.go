package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	appErrors "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/errors"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/response"
)

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return roleGuard("", roles)
}

// RequireRolesOrSelf also admits a caller whose user id equals the named path
// parameter, e.g. a student reading their own attendance summary.
func RequireRolesOrSelf(param string, roles ...models.UserRole) gin.HandlerFunc {
	return roleGuard(param, roles)
}

func roleGuard(selfParam string, roles []models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[actor.Role]; ok {
			c.Next()
			return
		}
		if selfParam != "" && c.Param(selfParam) != "" && c.Param(selfParam) == actor.UserID {
			c.Next()
			return
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
