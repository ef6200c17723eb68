package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dndinfo/internal/pkg/response"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service  *Service
	tokenTTL time.Duration
}

func NewHandler(service *Service, tokenTTL time.Duration) *Handler {
	return &Handler{service: service, tokenTTL: tokenTTL}
}

// Register регистрирует нового пользователя.
// @Summary		Register
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	RegisterRequest	true	"payload"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

// Login выдаёт access токен по email и паролю.
// @Summary		Login
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	LoginRequest	true	"payload"
// @Success		200	{object}	TokenResponse
// @Failure		401	{object}	map[string]interface{}
// @Router		/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokenTTL.Seconds()),
		User:        toUserResponse(result.User),
	})
}

// GetMe возвращает текущего пользователя.
// @Summary		Current user
// @Tags		Auth
// @Produce		json
// @Security	BearerAuth
// @Success		200	{object}	UserResponse
// @Router		/auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.GetMe(c.Request.Context(), ActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user")
		}
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(user))
}
