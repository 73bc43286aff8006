package dto

import "time"

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Password length and strength rules live in the password policy, which
// reports every violated rule at once; binding only enforces presence.
type PasswordResetConfirmRequest struct {
	VerificationCode string `json:"verification_code" binding:"required"`
	Password1        string `json:"password_1" binding:"required"`
	Password2        string `json:"password_2" binding:"required"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Password1       string `json:"password_1" binding:"required"`
	Password2       string `json:"password_2" binding:"required"`
}

type PasswordSetRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password1 string `json:"password_1" binding:"required"`
	Password2 string `json:"password_2" binding:"required"`
}

type EmailChangeRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
}

type EmailChangeResponse struct {
	NewEmail  string    `json:"new_email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type DeleteAccountRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=2048"`
}

type DeleteAccountResponse struct {
	Identifier  string    `json:"identifier"`
	RequestedAt time.Time `json:"requested_at"`
}

type SendDeleteEmailRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Reason string `json:"reason" binding:"omitempty,max=2048"`
}

// DeliveryEvent is the payload the mail provider posts to the delivery
// webhook.
type DeliveryEvent struct {
	MessageID string                 `json:"message_id" binding:"required"`
	Email     string                 `json:"email" binding:"required,email"`
	Event     string                 `json:"event" binding:"required"`
	Payload   map[string]interface{} `json:"payload"`
}

type EmailHistoryResponse struct {
	ID        uint      `json:"id"`
	EmailType string    `json:"email_type"`
	MessageID string    `json:"message_id"`
	Status    string    `json:"status"`
	Email     string    `json:"email"`
	FromEmail string    `json:"from_email"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionResponse struct {
	ID             uint       `json:"id"`
	OS             string     `json:"os"`
	OSVersion      string     `json:"os_version"`
	IPAddress      string     `json:"ip_address"`
	Browser        string     `json:"browser"`
	BrowserVersion string     `json:"browser_version"`
	DeviceType     string     `json:"device_type"`
	Device         string     `json:"device"`
	LastLogin      time.Time  `json:"last_login"`
	LastLogout     *time.Time `json:"last_logout"`
}
