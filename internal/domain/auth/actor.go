package auth

import "github.com/gin-gonic/gin"

// Actor is whoever performs an operation: an authenticated user or nobody.
type Actor struct {
	UserID int64
	Role   UserRole
}

// Anonymous is the actor of unauthenticated requests.
var Anonymous = Actor{}

func (a Actor) IsAnonymous() bool { return a.UserID == 0 }

func (a Actor) IsAdmin() bool { return a.UserID != 0 && a.Role == RoleAdmin }

// Owns reports whether the actor is the owner referenced by ownerID.
func (a Actor) Owns(ownerID *int64) bool {
	return a.UserID != 0 && ownerID != nil && *ownerID == a.UserID
}

// ActorFromContext reads the identity the auth middleware stored on c.
func ActorFromContext(c *gin.Context) Actor {
	id := c.GetInt64("user_id")
	if id == 0 {
		return Anonymous
	}
	return Actor{UserID: id, Role: UserRole(c.GetString("role"))}
}
