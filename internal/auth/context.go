package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(ctxUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUserRole returns the authenticated user's role or empty string.
func GetUserRole(c *gin.Context) Role {
	if v, ok := c.Get(ctxUserRole); ok {
		if r, ok := v.(Role); ok {
			return r
		}
	}
	return ""
}

// CurrentActor returns the identity of the caller. The zero Actor means unauthenticated.
func CurrentActor(c *gin.Context) Actor {
	return Actor{ID: GetUserID(c), Role: GetUserRole(c)}
}

// SetActor stores an identity in the gin context. Used by AuthRequired and tests.
func SetActor(c *gin.Context, a Actor) {
	c.Set(ctxUserID, a.ID)
	c.Set(ctxUserRole, a.Role)
}
