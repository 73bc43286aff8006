package dto

import "time"

type RegisterRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=150"`
	FirstName    string `json:"first_name" binding:"required,min=2,max=40"`
	LastName     string `json:"last_name" binding:"omitempty,max=50"`
	Email        string `json:"email" binding:"omitempty,email"`
	MobileNumber string `json:"mobile_number" binding:"omitempty,min=10,max=15"`
	Password     string `json:"password" binding:"required"`
	Role         string `json:"role" binding:"required"`
	CityID       *uint  `json:"city_id"`
}

type UpdateUserRequest struct {
	FirstName    string `json:"first_name" binding:"omitempty,min=2,max=40"`
	LastName     string `json:"last_name" binding:"omitempty,max=50"`
	MobileNumber string `json:"mobile_number" binding:"omitempty,min=10,max=15"`
	CityID       *uint  `json:"city_id"`
}

type UserResponse struct {
	ID                  uint      `json:"id"`
	Username            string    `json:"username"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	Email               string    `json:"email"`
	MobileNumber        string    `json:"mobile_number,omitempty"`
	IsActive            bool      `json:"is_active"`
	IsEmailVerified     bool      `json:"is_email_verified"`
	HasCompletedProfile bool      `json:"has_completed_profile"`
	Role                string    `json:"role,omitempty"`
	Badge               string    `json:"badge,omitempty"`
	Gems                int       `json:"gems"`
	LastLogin           time.Time `json:"last_login"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// LoginRequest accepts either username (or email) plus password, or a short
// auth code on its own.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	AuthCode string `json:"auth_code"`
}

type LoginResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access token expiry in seconds
	User         UserResponse `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RefreshTokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// UserFilter narrows GET /users
type UserFilter struct {
	IsActive  *bool  `query:"is_active"`
	IsDeleted *bool  `query:"is_deleted"`
	Role      string `query:"role"`
}
