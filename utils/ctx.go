package utils

import "github.com/gin-gonic/gin"

const claimsKey = "claims"

// SetClaims stores verified claims on the request context.
func SetClaims(c *gin.Context, claims *Claims) {
	c.Set(claimsKey, claims)
	c.Set("userId", claims.UserID)
	c.Set("role", claims.Role)
}

// CurrentClaims returns the claims set by the auth middleware, or nil.
func CurrentClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(claimsKey); ok {
		if cl, ok := v.(*Claims); ok {
			return cl
		}
	}
	return nil
}

func CurrentUserID(c *gin.Context) uint {
	if cl := CurrentClaims(c); cl != nil {
		return cl.UserID
	}
	return 0
}

func CurrentRole(c *gin.Context) string {
	if cl := CurrentClaims(c); cl != nil {
		return cl.Role
	}
	return ""
}
