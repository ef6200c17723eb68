package feed

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"dndinfo/internal/domain/auth"
	"dndinfo/internal/pkg/jwt"
	"dndinfo/internal/pkg/response"
)

type tokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type Handler struct {
	hub      *Hub
	tokens   tokenValidator
	upgrader websocket.Upgrader
}

// NewHandler accepts connections from origins; an empty list allows any origin.
func NewHandler(hub *Hub, tokens tokenValidator, origins []string) *Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Handler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// Subscribe godoc
// @Summary		Moderation feed
// @Description	WebSocket stream of moderation queue events. Browsers pass the token as ?token=
// @Tags		Admin
// @Param		token	query	string	false	"JWT when no Authorization header can be sent"
// @Success		101	{string}	string	"switching protocols"
// @Failure		401	{object}	response.Envelope
// @Failure		403	{object}	response.Envelope
// @Router		/admin/feed [get]
func (h *Handler) Subscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	}
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Token is required")
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	if auth.UserRole(claims.Role) != auth.RoleAdmin {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		return
	}
	h.hub.Serve(conn, claims.UserID)
}
