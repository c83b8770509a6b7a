package middlewares

import (
	"strings"

	"restaurant/pkg/resp"
	"restaurant/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware checks the bearer token and, when roles are given, requires one of them.
func AuthMiddleware(secret string, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			resp.Unauthorized(c, "Authentication required")
			return
		}
		authorize(c, strings.TrimPrefix(h, "Bearer "), secret, requiredRoles)
	}
}

// WSAuthMiddleware also accepts the token from the "token" query parameter,
// since browsers cannot set headers on websocket upgrades.
func WSAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tokenStr = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if tokenStr == "" {
			resp.Unauthorized(c, "Authentication required")
			return
		}
		authorize(c, tokenStr, secret, nil)
	}
}

// RequireRole gates a route that already sits behind AuthMiddleware on the
// role carried by the verified claims.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.CurrentClaims(c) == nil {
			resp.Unauthorized(c, "Authentication required")
			return
		}
		if !hasRole(utils.CurrentRole(c), roles) {
			resp.Forbidden(c, "forbidden")
			return
		}
		c.Next()
	}
}

func authorize(c *gin.Context, tokenStr, secret string, requiredRoles []string) {
	claims, err := utils.ParseToken(tokenStr, secret)
	if err != nil {
		resp.Unauthorized(c, "Invalid token")
		return
	}
	utils.SetClaims(c, claims)

	if len(requiredRoles) > 0 && !hasRole(claims.Role, requiredRoles) {
		resp.Forbidden(c, "forbidden")
		return
	}

	c.Next()
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
