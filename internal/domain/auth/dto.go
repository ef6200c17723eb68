package auth

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=2,max=150"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

func toUserResponse(u *User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}
